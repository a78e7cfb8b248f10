package handlers_auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/wasiahamad/Portfolio/internal/models/clauth"
	"github.com/wasiahamad/Portfolio/internal/models/cllog"
)

type AuthHandler struct {
	auth *clauth.Authenticator
}

// LoginRequest accepte email ou username comme identifiant
type LoginRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func NewAuthHandler(auth *clauth.Authenticator) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	login := strings.TrimSpace(req.Email)
	if login == "" {
		login = strings.TrimSpace(req.Username)
	}
	if login == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email and password are required"})
		return
	}

	token, err := h.auth.Login(login, req.Password)
	if errors.Is(err, clauth.ErrInvalidCredentials) {
		cllog.Ctx(c.Request.Context()).Warn().Str("login", login).Msg("Échec de connexion")
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid credentials"})
		return
	}
	if err != nil {
		cllog.Ctx(c.Request.Context()).Error().Err(err).Msg("Erreur génération token")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"admin": h.auth.Admin(),
	})
}

// Me retourne l'administrateur du token courant
func (h *AuthHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"admin": h.auth.Admin()})
}
