package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/goal-community-api/internal/dto"
	apierrors "github.com/yukikurage/goal-community-api/internal/errors"
)

func TestAuthHandler_RegisterLoginMe(t *testing.T) {
	env := setupTestEnv(t)

	w := env.request(t, http.MethodPost, "/auth/register", "", map[string]string{
		"email":    "new@example.com",
		"userName": "newuser",
		"password": "supersecret",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.request(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "new@example.com",
		"password": "supersecret",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, w.Result().Cookies(), "expected session cookie to be set")

	var login struct {
		Token string      `json:"token"`
		User  dto.UserDTO `json:"user"`
	}
	decode(t, w, &login)
	require.NotEmpty(t, login.Token)
	assert.Equal(t, "newuser", login.User.Username)

	w = env.request(t, http.MethodGet, "/auth/me", login.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var me dto.UserDTO
	decode(t, w, &me)
	assert.Equal(t, login.User.ID, me.ID)
}

func TestAuthHandler_RegisterErrors(t *testing.T) {
	env := setupTestEnv(t)
	env.createUser(t, "taken")

	tests := []struct {
		name string
		body map[string]string
		code int
	}{
		{"missing fields", map[string]string{"email": "a@example.com"}, http.StatusBadRequest},
		{"short password", map[string]string{"email": "a@example.com", "userName": "a", "password": "123"}, http.StatusBadRequest},
		{"duplicate username", map[string]string{"email": "a@example.com", "userName": "taken", "password": "secret123"}, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.request(t, http.MethodPost, "/auth/register", "", tt.body)
			assert.Equal(t, tt.code, w.Code)
		})
	}
}

func TestAuthHandler_LoginRejectsBadPassword(t *testing.T) {
	env := setupTestEnv(t)
	env.createUser(t, "alice")

	w := env.request(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "wrong-password",
	})

	require.Equal(t, http.StatusUnauthorized, w.Code)
	var body apierrors.APIError
	decode(t, w, &body)
	assert.Equal(t, apierrors.ErrCodeUnauthorized, body.Code)
}

func TestAuthHandler_MeRequiresAuth(t *testing.T) {
	env := setupTestEnv(t)

	w := env.request(t, http.MethodGet, "/auth/me", "", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHealth(t *testing.T) {
	env := setupTestEnv(t)

	w := env.request(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	decode(t, w, &body)
	assert.Equal(t, "ok", body["status"])
}
