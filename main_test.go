package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wasiahamad/Portfolio/internal/models/clauth"
	"github.com/wasiahamad/Portfolio/internal/models/clconfig"
	"github.com/wasiahamad/Portfolio/internal/models/clcontent"
	"github.com/wasiahamad/Portfolio/internal/models/clportfolio"
)

const (
	testLogin = "admin@example.com"
	testPass  = "correct-horse"
)

// ============= Setup =============

func setupTestConfig(t *testing.T) *clconfig.Config {
	conf := &clconfig.Config{
		Database: clconfig.DatabaseConfig{Db: "sqlite", Path: filepath.Join(t.TempDir(), "portfolio.db")},
		User:     clconfig.UserConfig{Login: testLogin, Name: "Wasi", Pass: testPass},
		Site:     clconfig.SiteConfig{Name: "Wasi", URL: "https://wasi.dev"},
		Contact:  clconfig.ContactConfig{RateLimit: 100},
	}
	_, err := prepareCredentials(conf)
	require.NoError(t, err)
	require.NoError(t, clconfig.Normalize(conf))
	return conf
}

func setupTestServer(t *testing.T) *gin.Engine {
	return setupTestServerWith(t, func(*clconfig.Config) {})
}

func setupTestServerWith(t *testing.T, tweak func(*clconfig.Config)) *gin.Engine {
	gin.SetMode(gin.TestMode)
	conf := setupTestConfig(t)
	tweak(conf)

	p, err := clportfolio.Init(conf, VERSION, "test")
	require.NoError(t, err)
	t.Cleanup(func() { p.Close() })

	r := newServer(conf)
	setRoutes(r, p)
	return r
}

func doRequest(r http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func loginToken(t *testing.T, r http.Handler) string {
	w := doRequest(r, http.MethodPost, "/api/auth/login", "", gin.H{"email": testLogin, "password": testPass})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

// ============= Tests =============

func TestPrepareCredentials(t *testing.T) {
	conf := &clconfig.Config{User: clconfig.UserConfig{Login: testLogin, Pass: testPass}}

	changed, err := prepareCredentials(conf)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Empty(t, conf.User.Pass)
	assert.NotEmpty(t, conf.User.Hash)
	assert.Len(t, conf.Auth.JWTSecret, 64)

	auth := clauth.New(conf.User, conf.Auth)
	_, err = auth.Login(testLogin, testPass)
	assert.NoError(t, err)

	changed, err = prepareCredentials(conf)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestPrepareCredentialsErrors(t *testing.T) {
	_, err := prepareCredentials(&clconfig.Config{User: clconfig.UserConfig{Login: testLogin}})
	assert.Error(t, err)

	_, err = prepareCredentials(&clconfig.Config{User: clconfig.UserConfig{Login: testLogin, Pass: "short"}})
	assert.ErrorIs(t, err, clauth.ErrPasswordTooShort)
}

func TestHealth(t *testing.T) {
	r := setupTestServer(t)

	for _, path := range []string{"/", "/api/health"} {
		w := doRequest(r, http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"ok"`)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	}

	w := doRequest(r, http.MethodGet, "/api/nothing", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminRoutesRequireToken(t *testing.T) {
	r := setupTestServer(t)

	routes := []struct{ method, path string }{
		{http.MethodGet, "/api/contacts"},
		{http.MethodGet, "/api/analytics/stats"},
		{http.MethodPost, "/api/projects"},
		{http.MethodPut, "/api/profile"},
		{http.MethodDelete, "/api/blogs/1"},
	}
	for _, rt := range routes {
		w := doRequest(r, rt.method, rt.path, "", gin.H{})
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", rt.method, rt.path)
	}

	w := doRequest(r, http.MethodGet, "/api/contacts", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid token")
}

func TestContentWorkflow(t *testing.T) {
	r := setupTestServer(t)
	token := loginToken(t, r)

	w := doRequest(r, http.MethodPost, "/api/blogs", token, gin.H{
		"title":    "Hello Go",
		"content":  "A **first** post about Go.",
		"category": "Tech",
		"tags":     []string{"go", "api"},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(r, http.MethodGet, "/api/blogs?published=true", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var blogs []clcontent.Blog
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &blogs))
	require.Len(t, blogs, 1)
	assert.Equal(t, []string{"go", "api"}, blogs[0].TagsList)

	w = doRequest(r, http.MethodGet, "/rss.xml/tech", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<title>Hello Go</title>")

	w = doRequest(r, http.MethodPut, "/api/profile", token, gin.H{"name": "Wasi Ahamad"})
	require.Equal(t, http.StatusOK, w.Code)
	w = doRequest(r, http.MethodGet, "/api/profile", "", nil)
	assert.Contains(t, w.Body.String(), `"name":"Wasi Ahamad"`)
}

func TestContactWorkflow(t *testing.T) {
	r := setupTestServer(t)
	token := loginToken(t, r)

	w := doRequest(r, http.MethodPost, "/api/contacts", "", gin.H{
		"name": "Jane", "email": "jane@example.com", "message": "Hello!",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"skipped"`)

	w = doRequest(r, http.MethodGet, "/api/contacts", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var contacts []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &contacts))
	require.Len(t, contacts, 1)

	// email non configuré : la réponse échoue en 503 avec le contact en repli
	w = doRequest(r, http.MethodPost, "/api/contacts/reply/1", token, gin.H{"message": "Thanks"})
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "EMAIL_NOT_CONFIGURED")
	assert.Contains(t, w.Body.String(), "jane@example.com")
}

func TestAnalyticsWorkflow(t *testing.T) {
	r := setupTestServer(t)
	token := loginToken(t, r)

	req := httptest.NewRequest(http.MethodPost, "/api/analytics/track", bytes.NewBufferString(`{"page":"/"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Forwarded-For", "203.0.113.10")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(r, http.MethodGet, "/api/analytics/stats", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"totalVisits":1`)
}

func TestRateLimitsAreIndependent(t *testing.T) {
	r := setupTestServerWith(t, func(conf *clconfig.Config) {
		conf.Contact.RateLimit = 1
		conf.Auth.RateLimit = 3
	})

	contact := gin.H{"name": "Jane", "email": "jane@example.com", "message": "Hello!"}
	require.Equal(t, http.StatusCreated, doRequest(r, http.MethodPost, "/api/contacts", "", contact).Code)
	assert.Equal(t, http.StatusTooManyRequests, doRequest(r, http.MethodPost, "/api/contacts", "", contact).Code)

	// la limite du formulaire de contact ne s'applique pas à la connexion
	for i := 0; i < 3; i++ {
		loginToken(t, r)
	}
	w := doRequest(r, http.MethodPost, "/api/auth/login", "", gin.H{"email": testLogin, "password": testPass})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}
