package handlers_content

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/wasiahamad/Portfolio/internal/models/clcontent"
	"github.com/wasiahamad/Portfolio/internal/models/cllog"
	"gorm.io/gorm"
)

type record[T any] interface {
	*T
	Meta() *clcontent.Model
	Validate() error
}

// Resource expose le CRUD JSON d'un type de contenu (projets, blogs, expériences)
type Resource[T any, PT record[T]] struct {
	repo *clcontent.Repository[T]
	name string
	// filtre de liste lu depuis la query string
	scope func(c *gin.Context) func(*gorm.DB) *gorm.DB
}

func NewResource[T any, PT record[T]](repo *clcontent.Repository[T], name string) *Resource[T, PT] {
	return &Resource[T, PT]{repo: repo, name: name}
}

func NewProjects(db *gorm.DB) *Resource[clcontent.Project, *clcontent.Project] {
	return NewResource[clcontent.Project](clcontent.NewProjectRepository(db), "Project")
}

func NewExperiences(db *gorm.DB) *Resource[clcontent.Experience, *clcontent.Experience] {
	return NewResource[clcontent.Experience](clcontent.NewExperienceRepository(db), "Experience")
}

// NewBlogs accepte ?published=true et ?category=
func NewBlogs(db *gorm.DB) *Resource[clcontent.Blog, *clcontent.Blog] {
	r := NewResource[clcontent.Blog](clcontent.NewBlogRepository(db), "Blog")
	r.scope = func(c *gin.Context) func(*gorm.DB) *gorm.DB {
		return clcontent.BlogFilter{
			PublishedOnly: c.Query("published") == "true",
			Category:      strings.TrimSpace(c.Query("category")),
		}.Scope
	}
	return r
}

func (r *Resource[T, PT]) List(c *gin.Context) {
	var scopes []func(*gorm.DB) *gorm.DB
	if r.scope != nil {
		scopes = append(scopes, r.scope(c))
	}

	items, err := r.repo.List(c.Request.Context(), scopes...)
	if err != nil {
		r.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (r *Resource[T, PT]) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	item, err := r.repo.Get(c.Request.Context(), id)
	if err != nil {
		r.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (r *Resource[T, PT]) Create(c *gin.Context) {
	item := PT(new(T))
	if err := c.ShouldBindJSON(item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}
	*item.Meta() = clcontent.Model{}

	if err := item.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	if err := r.repo.Create(c.Request.Context(), (*T)(item)); err != nil {
		r.serverError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// Update applique les champs reçus sur l'élément existant
func (r *Resource[T, PT]) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	current, err := r.repo.Get(c.Request.Context(), id)
	if err != nil {
		r.fail(c, err)
		return
	}

	item := PT(current)
	keys := *item.Meta()
	if err := c.ShouldBindJSON(item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}
	*item.Meta() = keys

	if err := item.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	if err := r.repo.Save(c.Request.Context(), current); err != nil {
		r.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (r *Resource[T, PT]) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := r.repo.Delete(c.Request.Context(), id); err != nil {
		r.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": r.name + " deleted"})
}

func (r *Resource[T, PT]) fail(c *gin.Context, err error) {
	if errors.Is(err, clcontent.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": r.name + " not found"})
		return
	}
	r.serverError(c, err)
}

func (r *Resource[T, PT]) serverError(c *gin.Context, err error) {
	cllog.Ctx(c.Request.Context()).Error().Err(err).Str("resource", r.name).Msg("Erreur base de données")
	c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid id"})
		return 0, false
	}
	return uint(id), true
}
