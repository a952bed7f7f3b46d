package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/turtacn/cyberrisk/internal/application/dto"
	"github.com/turtacn/cyberrisk/internal/config"
	"github.com/turtacn/cyberrisk/internal/mockapi"
	"github.com/turtacn/cyberrisk/pkg/logger"
)

func newAuthEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logger.NewNoopLogger()
	backend, err := mockapi.New(context.Background(), config.Default().MockAPI, log,
		mockapi.WithPasswordCost(bcrypt.MinCost))
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })

	h := NewAuthHandler(backend, log)
	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.POST("/auth/register", h.Register)
	r.GET("/auth/health", h.Health)
	return r
}

func post(r http.Handler, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func errorOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["error"]
}

func TestAuthHandler_Login(t *testing.T) {
	r := newAuthEngine(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantError  string
	}{
		{"malformed body", `{"username":`, http.StatusBadRequest, "Invalid username or password"},
		{"missing password", `{"username":"user"}`, http.StatusBadRequest, "Invalid username or password"},
		{"wrong password", `{"username":"user","password":"nope"}`, http.StatusBadRequest, "Invalid username or password"},
		{"unknown user", `{"username":"ghost","password":"user123"}`, http.StatusBadRequest, "Invalid username or password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(r, "/auth/login", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantError, errorOf(t, w))
		})
	}

	w := post(r, "/auth/login", `{"username":"admin","password":"admin123"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "admin", resp.Username)
	assert.Equal(t, "Bearer", resp.Type)
}

func TestAuthHandler_Register(t *testing.T) {
	r := newAuthEngine(t)

	w := post(r, "/auth/register", `{"username":"eve","email":"not-an-email","password":"secret1","firstName":"Eve","lastName":"Doe"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.True(t, strings.HasPrefix(errorOf(t, w), "Registration failed: "))

	w = post(r, "/auth/register", `{"username":"user","email":"eve@example.com","password":"secret1","firstName":"Eve","lastName":"Doe"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Username already exists", errorOf(t, w))

	w = post(r, "/auth/register", `{"username":"eve","email":"eve@example.com","password":"secret1","firstName":"Eve","lastName":"Doe","organization":"Initech"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Initech", resp.Organization)
	assert.NotEmpty(t, resp.Token)
}

func TestAuthHandler_Health(t *testing.T) {
	r := newAuthEngine(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"UP"`)
}
