package handlers_auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wasiahamad/Portfolio/internal/clmiddleware"
	"github.com/wasiahamad/Portfolio/internal/models/clauth"
	"github.com/wasiahamad/Portfolio/internal/models/clconfig"
)

func setupTestRouter(t *testing.T) *gin.Engine {
	hash, err := clauth.HashPassword("correct-horse")
	require.NoError(t, err)
	auth := clauth.New(
		clconfig.UserConfig{Login: "admin@example.com", Name: "Wasi", Hash: hash},
		clconfig.AuthConfig{JWTSecret: "test-secret", TTLHours: 1},
	)
	h := NewAuthHandler(auth)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/auth/login", h.Login)
	r.GET("/api/auth/me", clmiddleware.AuthRequired(auth), h.Me)
	return r
}

func login(r http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLogin(t *testing.T) {
	r := setupTestRouter(t)

	w := login(r, `{"email":"Admin@Example.com","password":"correct-horse"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Token string       `json:"token"`
		Admin clauth.Admin `json:"admin"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "Wasi", resp.Admin.Name)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+resp.Token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "admin@example.com")
}

func TestLoginWithUsername(t *testing.T) {
	r := setupTestRouter(t)
	assert.Equal(t, http.StatusOK, login(r, `{"username":"admin@example.com","password":"correct-horse"}`).Code)
}

func TestLoginRejected(t *testing.T) {
	r := setupTestRouter(t)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"wrong password", `{"email":"admin@example.com","password":"nope-nope"}`, "Invalid credentials"},
		{"unknown user", `{"email":"other@example.com","password":"correct-horse"}`, "Invalid credentials"},
		{"missing password", `{"email":"admin@example.com"}`, "required"},
		{"bad json", `{`, "Invalid request body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := login(r, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), tt.want)
		})
	}
}
