package handlers_content

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wasiahamad/Portfolio/internal/models/clcontent"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(clcontent.Models()...))
	return db
}

func setupTestRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	register := func(path string, list, get, create, update, del gin.HandlerFunc) {
		r.GET(path, list)
		r.GET(path+"/:id", get)
		r.POST(path, create)
		r.PUT(path+"/:id", update)
		r.DELETE(path+"/:id", del)
	}
	projects := NewProjects(db)
	register("/api/projects", projects.List, projects.Get, projects.Create, projects.Update, projects.Delete)
	blogs := NewBlogs(db)
	register("/api/blogs", blogs.List, blogs.Get, blogs.Create, blogs.Update, blogs.Delete)
	experiences := NewExperiences(db)
	register("/api/experience", experiences.List, experiences.Get, experiences.Create, experiences.Update, experiences.Delete)

	profile := NewProfileHandler(clcontent.NewProfileStore(db))
	r.GET("/api/profile", profile.Get)
	r.POST("/api/profile", profile.Update)
	r.PUT("/api/profile", profile.Update)
	return r
}

func doJSON(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestProjectCRUD(t *testing.T) {
	r := setupTestRouter(setupTestDB(t))

	w := doJSON(r, http.MethodPost, "/api/projects", gin.H{
		"id":           42,
		"title":        "Portfolio",
		"description":  "Personal site",
		"technologies": []string{"Go", "React"},
		"liveUrl":      "https://example.com",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created clcontent.Project
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotEqual(t, uint(42), created.ID)
	assert.Equal(t, []string{"Go", "React"}, created.TechnologiesList)

	// mise à jour partielle : les champs absents sont conservés
	w = doJSON(r, http.MethodPut, fmt.Sprintf("/api/projects/%d", created.ID), gin.H{"title": "Portfolio v2"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodGet, fmt.Sprintf("/api/projects/%d", created.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got clcontent.Project
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "Portfolio v2", got.Title)
	assert.Equal(t, "Personal site", got.Description)
	assert.Equal(t, []string{"Go", "React"}, got.TechnologiesList)
	assert.Equal(t, created.CreatedAt.Unix(), got.CreatedAt.Unix())

	w = doJSON(r, http.MethodDelete, fmt.Sprintf("/api/projects/%d", created.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Project deleted"}`, w.Body.String())

	w = doJSON(r, http.MethodGet, fmt.Sprintf("/api/projects/%d", created.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"message":"Project not found"}`, w.Body.String())
}

func TestCreateValidation(t *testing.T) {
	r := setupTestRouter(setupTestDB(t))

	w := doJSON(r, http.MethodPost, "/api/projects", gin.H{"title": "No description"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "description")

	w = doJSON(r, http.MethodPost, "/api/blogs", gin.H{"title": "Empty"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/experience", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateErrors(t *testing.T) {
	r := setupTestRouter(setupTestDB(t))

	assert.Equal(t, http.StatusBadRequest, doJSON(r, http.MethodPut, "/api/blogs/abc", gin.H{}).Code)
	assert.Equal(t, http.StatusNotFound, doJSON(r, http.MethodPut, "/api/blogs/7", gin.H{"title": "x"}).Code)
	assert.Equal(t, http.StatusNotFound, doJSON(r, http.MethodDelete, "/api/experience/7", nil).Code)
}

func TestBlogFilters(t *testing.T) {
	r := setupTestRouter(setupTestDB(t))

	for _, b := range []gin.H{
		{"title": "Go tips", "content": "Use **Go**.", "category": "Tech", "tags": []string{"go"}},
		{"title": "Draft", "content": "Soon", "category": "Tech", "published": false},
		{"title": "Trip", "content": "Travel notes", "category": "Life"},
	} {
		require.Equal(t, http.StatusCreated, doJSON(r, http.MethodPost, "/api/blogs", b).Code)
	}

	var all []clcontent.Blog
	w := doJSON(r, http.MethodGet, "/api/blogs", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
	assert.Len(t, all, 3)

	var published []clcontent.Blog
	w = doJSON(r, http.MethodGet, "/api/blogs?published=true&category=Tech", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &published))
	require.Len(t, published, 1)
	assert.Equal(t, "Go tips", published[0].Title)
	assert.Equal(t, []string{"go"}, published[0].TagsList)
	assert.Contains(t, string(published[0].ContentHTML), "<strong>Go</strong>")
	assert.NotEmpty(t, published[0].ReadTime)
}

func TestExperienceOrder(t *testing.T) {
	r := setupTestRouter(setupTestDB(t))

	require.Equal(t, http.StatusCreated, doJSON(r, http.MethodPost, "/api/experience", gin.H{
		"role": "Engineer", "company": "Acme", "description": "Backend", "order": 2,
	}).Code)
	require.Equal(t, http.StatusCreated, doJSON(r, http.MethodPost, "/api/experience", gin.H{
		"position": "Lead", "company": "Globex", "description": "Platform", "order": 1,
	}).Code)

	var list []clcontent.Experience
	w := doJSON(r, http.MethodGet, "/api/experience", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, "Globex", list[0].Company)
	assert.Equal(t, "Lead", list[0].Role)
}

func TestProfile(t *testing.T) {
	r := setupTestRouter(setupTestDB(t))

	w := doJSON(r, http.MethodGet, "/api/profile", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var p clcontent.Profile
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	assert.Equal(t, "Your Name", p.Name)

	w = doJSON(r, http.MethodPut, "/api/profile", gin.H{"id": 9, "name": "Wasi", "skills": gin.H{"backend": "Go"}})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	assert.Equal(t, uint(1), p.ID)
	assert.Equal(t, "Wasi", p.Name)
	assert.Equal(t, "Go", p.Skills.Backend)
	assert.Equal(t, "Figma, Motion, UI/UX", p.Skills.Design)

	w = doJSON(r, http.MethodPost, "/api/profile", gin.H{"title": "Go Developer"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	assert.Equal(t, "Wasi", p.Name)
	assert.Equal(t, "Go Developer", p.Title)

	req := httptest.NewRequest(http.MethodPut, "/api/profile", bytes.NewBufferString("not json"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
