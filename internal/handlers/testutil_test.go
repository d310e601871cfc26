package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goaltrace-dev/goaltrace/db"
	"github.com/goaltrace-dev/goaltrace/internal/auth"
	"github.com/goaltrace-dev/goaltrace/internal/router"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupRouter wires the full router against a fresh in-memory database.
func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)
	t.Setenv("JWT_SECRET", "test-secret-key")
	require.NoError(t, auth.InitJWTSecret())

	// A named shared-cache DB keeps every pooled connection on the same
	// in-memory database.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))

	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	db.DB = conn
	require.NoError(t, db.MigrateDatabase())

	return router.NewRouter()
}

func doJSON(t *testing.T, r http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader

	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

// registerUser creates an account through the API and returns its session
// token.
func registerUser(t *testing.T, r http.Handler, name, email, username string) string {
	t.Helper()

	w := doJSON(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"name":     name,
		"email":    email,
		"username": username,
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == "token" && cookie.Value != "" {
			return cookie.Value
		}
	}

	t.Fatal("register response did not set a session token")
	return ""
}

// createTrace makes a trace through the API and returns its id.
func createTrace(t *testing.T, r http.Handler, token, title, tags string) uint {
	t.Helper()

	w := doJSON(t, r, http.MethodPost, "/api/traces", token, gin.H{
		"title": title,
		"tags":  tags,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		ID uint `json:"id"`
	}
	decodeBody(t, w, &created)
	require.NotZero(t, created.ID)
	return created.ID
}

// addNode makes a node through the API and returns its id.
func addNode(t *testing.T, r http.Handler, token string, traceID uint, heading string, body gin.H) uint {
	t.Helper()

	if body == nil {
		body = gin.H{}
	}
	body["heading"] = heading

	w := doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/traces/%d/nodes", traceID), token, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		ID uint `json:"id"`
	}
	decodeBody(t, w, &created)
	require.NotZero(t, created.ID)
	return created.ID
}
