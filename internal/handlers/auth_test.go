package handlers_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goaltrace-dev/goaltrace/db"
	"github.com/goaltrace-dev/goaltrace/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	r := setupRouter(t)

	token := registerUser(t, r, "Alice", "alice@example.com", "alice")
	require.NotEmpty(t, token)

	w := doJSON(t, r, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var me struct {
		User struct {
			Name     string `json:"name"`
			Email    string `json:"email"`
			Username string `json:"username"`
			PushSet  bool   `json:"push_registered"`
		} `json:"user"`
	}
	decodeBody(t, w, &me)

	assert.Equal(t, "Alice", me.User.Name)
	assert.Equal(t, "alice@example.com", me.User.Email)
	assert.Equal(t, "alice", me.User.Username)
	assert.False(t, me.User.PushSet)

	// Fresh login works with the stored hash.
	w = doJSON(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "alice@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	// Wrong password is rejected without leaking which field was wrong.
	w = doJSON(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "alice@example.com",
		"password": "wrongpassword",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	r := setupRouter(t)
	registerUser(t, r, "Alice", "alice@example.com", "alice")

	w := doJSON(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"name":     "Other",
		"email":    "alice@example.com",
		"username": "other",
		"password": "password123",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	r := setupRouter(t)
	registerUser(t, r, "Alice", "alice@example.com", "alice")

	w := doJSON(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"name":     "Other",
		"email":    "other@example.com",
		"username": "alice",
		"password": "password123",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterDefaultsUsernameFromEmail(t *testing.T) {
	r := setupRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"name":     "Carol",
		"email":    "carol@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var user models.User
	require.NoError(t, db.DB.Where("email = ?", "carol@example.com").First(&user).Error)
	assert.Equal(t, "carol", user.Username)
}

func TestUpdateProfile(t *testing.T) {
	r := setupRouter(t)
	token := registerUser(t, r, "Alice", "alice@example.com", "alice")
	registerUser(t, r, "Bob", "bob@example.com", "bob")

	// Taken username is rejected before any write.
	w := doJSON(t, r, http.MethodPatch, "/api/auth/me", token, gin.H{"username": "bob"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Username change plus push subscriber registration.
	w = doJSON(t, r, http.MethodPatch, "/api/auth/me", token, gin.H{
		"username":     "alice2",
		"onesignal_id": "player-123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var user models.User
	require.NoError(t, db.DB.Where("email = ?", "alice@example.com").First(&user).Error)
	assert.Equal(t, "alice2", user.Username)
	assert.Equal(t, "player-123", user.OneSignalID)
}

func TestLogoutClearsCookie(t *testing.T) {
	r := setupRouter(t)
	token := registerUser(t, r, "Alice", "alice@example.com", "alice")

	w := doJSON(t, r, http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	cleared := false
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == "token" && cookie.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared)
}
