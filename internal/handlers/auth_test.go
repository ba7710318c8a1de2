package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, http.MethodPost, "/api/auth/register", gin.H{
		"username":         "ab",
		"email":            "not-an-email",
		"password":         "short",
		"confirm_password": "different",
	}, "")
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]string
	decodeJSON(t, w, &body)
	assert.Contains(t, body, "username")
	assert.Contains(t, body, "email")
	assert.Contains(t, body, "password")
}

func TestRegisterDuplicateUsername(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "aibek", "aibek@example.com", "password123")

	w := env.request(t, http.MethodPost, "/api/auth/register", gin.H{
		"username":         "aibek",
		"email":            "other@example.com",
		"password":         "password123",
		"confirm_password": "password123",
	}, "")
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]string
	decodeJSON(t, w, &body)
	assert.Contains(t, body, "username")
}

func TestLoginByUsernameAndEmail(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "aibek", "aibek@example.com", "password123")

	// The login field is an email exactly when it contains "@"
	for _, login := range []string{"aibek", "aibek@example.com"} {
		w := env.request(t, http.MethodPost, "/api/auth/login", gin.H{
			"login":    login,
			"password": "password123",
		}, "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp struct {
			Access  string `json:"access"`
			Refresh string `json:"refresh"`
		}
		decodeJSON(t, w, &resp)
		assert.NotEmpty(t, resp.Access)
		assert.NotEmpty(t, resp.Refresh)
	}
}

func TestLoginWrongPasswordIsGeneric(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "aibek", "aibek@example.com", "password123")

	for _, attempt := range []gin.H{
		{"login": "aibek", "password": "wrong"},
		{"login": "nosuchuser", "password": "password123"},
	} {
		w := env.request(t, http.MethodPost, "/api/auth/login", attempt, "")
		require.Equal(t, http.StatusBadRequest, w.Code)

		var body map[string]string
		decodeJSON(t, w, &body)
		assert.Equal(t, "Invalid credentials.", body["detail"])
	}
}

func TestMeRequiresToken(t *testing.T) {
	env := newTestEnv(t)
	access, _ := env.registerUser(t, "aibek", "aibek@example.com", "password123")

	w := env.request(t, http.MethodGet, "/api/user/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.request(t, http.MethodGet, "/api/user/me", nil, access)
	require.Equal(t, http.StatusOK, w.Code)

	var me struct {
		Username string `json:"username"`
	}
	decodeJSON(t, w, &me)
	assert.Equal(t, "aibek", me.Username)
}

func TestLogoutRevokesRefresh(t *testing.T) {
	env := newTestEnv(t)
	_, refresh := env.registerUser(t, "aibek", "aibek@example.com", "password123")

	// Refresh works before logout
	w := env.request(t, http.MethodPost, "/api/auth/token/refresh", gin.H{"refresh": refresh}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.request(t, http.MethodPost, "/api/auth/logout", gin.H{"refresh": refresh}, "")
	require.Equal(t, http.StatusResetContent, w.Code)

	// The revoked jti is rejected afterwards
	w = env.request(t, http.MethodPost, "/api/auth/token/refresh", gin.H{"refresh": refresh}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPasswordRecoveryFlow(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "aibek", "aibek@example.com", "password123")

	// Unknown email is a field-keyed 400
	w := env.request(t, http.MethodPost, "/api/auth/forgot-password", gin.H{"email": "nobody@example.com"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.request(t, http.MethodPost, "/api/auth/forgot-password", gin.H{"email": "aibek@example.com"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "aibek@example.com", env.mail.to)

	var resp struct {
		Token string `json:"token"`
	}
	decodeJSON(t, w, &resp)
	require.NotEmpty(t, resp.Token)

	w = env.request(t, http.MethodPost, "/api/auth/reset-password", gin.H{
		"token":            resp.Token,
		"new_password":     "newpassword456",
		"confirm_password": "newpassword456",
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// The token is single use
	w = env.request(t, http.MethodPost, "/api/auth/reset-password", gin.H{
		"token":            resp.Token,
		"new_password":     "anotherpass789",
		"confirm_password": "anotherpass789",
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Old password no longer works, new one does
	w = env.request(t, http.MethodPost, "/api/auth/login", gin.H{"login": "aibek", "password": "password123"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = env.request(t, http.MethodPost, "/api/auth/login", gin.H{"login": "aibek", "password": "newpassword456"}, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestResetPasswordFieldNames(t *testing.T) {
	env := newTestEnv(t)

	// The body carries new_password, not password
	w := env.request(t, http.MethodPost, "/api/auth/reset-password", gin.H{
		"token":            "whatever",
		"password":         "newpassword456",
		"confirm_password": "newpassword456",
	}, "")
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]string
	decodeJSON(t, w, &body)
	assert.Contains(t, body, "new_password")
	assert.NotContains(t, body, "password")
}

func TestResetTokenExpiresAfterTTL(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "aibek", "aibek@example.com", "password123")

	w := env.request(t, http.MethodPost, "/api/auth/forgot-password", gin.H{"email": "aibek@example.com"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	decodeJSON(t, w, &resp)
	require.NotEmpty(t, resp.Token)

	// One minute past the 1-hour lifetime
	start := time.Now()
	env.cache.SetClock(func() time.Time { return start.Add(time.Hour + time.Minute) })

	w = env.request(t, http.MethodPost, "/api/auth/reset-password", gin.H{
		"token":            resp.Token,
		"new_password":     "newpassword456",
		"confirm_password": "newpassword456",
	}, "")
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]string
	decodeJSON(t, w, &body)
	assert.Equal(t, "Invalid or expired token.", body["token"])

	// The old password still works
	w = env.request(t, http.MethodPost, "/api/auth/login", gin.H{"login": "aibek", "password": "password123"}, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestChangePassword(t *testing.T) {
	env := newTestEnv(t)
	access, _ := env.registerUser(t, "aibek", "aibek@example.com", "password123")

	w := env.request(t, http.MethodPost, "/api/auth/change-password", gin.H{
		"old_password":     "wrong",
		"new_password":     "newpassword456",
		"confirm_password": "newpassword456",
	}, access)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = env.request(t, http.MethodPost, "/api/auth/change-password", gin.H{
		"old_password":     "password123",
		"new_password":     "newpassword456",
		"confirm_password": "newpassword456",
	}, access)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.request(t, http.MethodPost, "/api/auth/login", gin.H{"login": "aibek", "password": "newpassword456"}, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStaffGate(t *testing.T) {
	env := newTestEnv(t)
	access, _ := env.registerUser(t, "aibek", "aibek@example.com", "password123")

	// Ordinary users cannot reach staff endpoints
	w := env.request(t, http.MethodGet, "/api/admin/stats", nil, access)
	assert.Equal(t, http.StatusForbidden, w.Code)

	env.promoteToStaff(t, "aibek")
	// The new flag takes effect on the next issued token's lookup; the
	// middleware reloads the user each request, so the same token now passes
	w = env.request(t, http.MethodGet, "/api/admin/stats", nil, access)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}
