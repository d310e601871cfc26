package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goaltrace-dev/goaltrace/internal/dispatcher"
	"github.com/goaltrace-dev/goaltrace/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTriggerDeadlineDispatchRequiresServiceKey(t *testing.T) {
	r := setupRouter(t)
	t.Setenv("SERVICE_KEY", "job-secret")

	// Missing key.
	w := doJSON(t, r, http.MethodPost, "/api/jobs/deadline-notifications", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Wrong key.
	req := httptest.NewRequest(http.MethodPost, "/api/jobs/deadline-notifications", nil)
	req.Header.Set("X-Service-Key", "wrong")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// A user session is not a service key.
	token := registerUser(t, r, "Alice", "alice@example.com", "alice")
	w = doJSON(t, r, http.MethodPost, "/api/jobs/deadline-notifications", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTriggerDeadlineDispatchUnconfigured(t *testing.T) {
	r := setupRouter(t)
	t.Setenv("SERVICE_KEY", "")

	w := doJSON(t, r, http.MethodPost, "/api/jobs/deadline-notifications", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestTriggerDeadlineDispatchRunsBatch(t *testing.T) {
	r := setupRouter(t)
	t.Setenv("SERVICE_KEY", "job-secret")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	dispatcher.Initialize(services.NewPushClientWithEndpoint("app-id", "api-key", srv.URL), time.Hour)
	t.Cleanup(dispatcher.Shutdown)

	req := httptest.NewRequest(http.MethodPost, "/api/jobs/deadline-notifications", nil)
	req.Header.Set("X-Service-Key", "job-secret")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Sent int `json:"sent"`
	}
	decodeBody(t, w, &resp)
	assert.Equal(t, 0, resp.Sent)
}
