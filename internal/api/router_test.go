package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/nebari-dev/modelconfig/internal/api/handlers"
	"github.com/nebari-dev/modelconfig/internal/auth"
	"github.com/nebari-dev/modelconfig/internal/config"
	"github.com/nebari-dev/modelconfig/internal/configstore"
	"github.com/nebari-dev/modelconfig/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupRouter(t *testing.T, mutate func(*config.Config)) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "router.db")), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Configuration{}))

	hash, err := auth.HashPassword("password123")
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.User{Username: "alice", Email: "alice@test.com", PasswordHash: hash}).Error)

	cfg := &config.Config{
		Server: config.ServerConfig{Mode: "development", CORSOrigins: []string{"*"}},
		Configuration: config.ConfigurationConfig{
			RegisterRoutes:           true,
			RoutePrefix:              "api",
			AllowCaseInsensitiveKeys: true,
		},
	}
	if mutate != nil {
		mutate(cfg)
	}

	store := configstore.NewDefault(db, configstore.Options{})
	return NewRouter(cfg, auth.NewAuthenticator(db, "test-secret"), handlers.NewConfigurationHandler(store, nil))
}

func request(r http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, r http.Handler, prefix string) string {
	t.Helper()
	w := request(r, "POST", prefix+"/auth/login", "", `{"username":"alice","password":"password123"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data auth.LoginResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.Token)
	return resp.Data.Token
}

func TestRouter_AuthenticatedRoundTrip(t *testing.T) {
	r := setupRouter(t, nil)
	token := login(t, r, "/api")

	w := request(r, "POST", "/api/configurations", token, `{"key":"theme","value":"dark","type":"string"}`)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = request(r, "GET", "/api/configurations/theme", token, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = request(r, "GET", "/api/configurations", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_BadLogin(t *testing.T) {
	r := setupRouter(t, nil)

	w := request(r, "POST", "/api/auth/login", "", `{"username":"alice","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = request(r, "POST", "/api/auth/login", "", `{"username":"alice"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestRouter_RoutePrefix(t *testing.T) {
	r := setupRouter(t, func(c *config.Config) { c.Configuration.RoutePrefix = "settings/v1" })
	token := login(t, r, "/settings/v1")

	assert.Equal(t, http.StatusOK, request(r, "GET", "/settings/v1/health", "", "").Code)
	assert.Equal(t, http.StatusOK, request(r, "GET", "/settings/v1/configurations", token, "").Code)
	assert.Equal(t, http.StatusNotFound, request(r, "GET", "/api/configurations", token, "").Code)
}

func TestRouter_RoutesDisabled(t *testing.T) {
	r := setupRouter(t, func(c *config.Config) { c.Configuration.RegisterRoutes = false })
	token := login(t, r, "/api")

	assert.Equal(t, http.StatusOK, request(r, "GET", "/api/health", "", "").Code)
	assert.Equal(t, http.StatusNotFound, request(r, "GET", "/api/configurations", token, "").Code)
	assert.Equal(t, http.StatusNotFound, request(r, "POST", "/api/configurations", token, `{}`).Code)
}

func TestRouter_RequestIDAndCORS(t *testing.T) {
	r := setupRouter(t, nil)

	w := request(r, "GET", "/api/health", "", "")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	req, _ := http.NewRequest("OPTIONS", "/api/configurations", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
