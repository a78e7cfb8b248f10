package handlers_content

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wasiahamad/Portfolio/internal/models/clcontent"
	"github.com/wasiahamad/Portfolio/internal/models/cllog"
)

var errBadBody = errors.New("corps invalide")

type ProfileHandler struct {
	store *clcontent.ProfileStore
}

func NewProfileHandler(store *clcontent.ProfileStore) *ProfileHandler {
	return &ProfileHandler{store: store}
}

func (h *ProfileHandler) Get(c *gin.Context) {
	p, err := h.store.Get(c.Request.Context())
	if err != nil {
		cllog.Ctx(c.Request.Context()).Error().Err(err).Msg("Erreur lecture profil")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, p)
}

// Update sert POST et PUT : les champs reçus remplacent ceux du profil
func (h *ProfileHandler) Update(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil || !json.Valid(body) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	p, err := h.store.Update(c.Request.Context(), func(p *clcontent.Profile) error {
		if err := json.Unmarshal(body, p); err != nil {
			return errBadBody
		}
		return nil
	})
	if errors.Is(err, errBadBody) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}
	if err != nil {
		cllog.Ctx(c.Request.Context()).Error().Err(err).Msg("Erreur mise à jour profil")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, p)
}
