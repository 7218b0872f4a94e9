package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo-api/internal/auth"
	"todo-api/internal/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTokenManager(ttl time.Duration) *auth.TokenManager {
	return auth.NewTokenManager(&config.Config{JWTSecret: "test-secret", TokenTTL: ttl})
}

// scopeEcho reports the resolved scope back as JSON for assertions.
func scopeEcho(c *gin.Context) {
	scope := Scope(c)
	uid, owned := scope.UserID()
	c.JSON(http.StatusOK, gin.H{"owned": owned, "user_id": uid})
}

func TestRequireAuth_MissingHeader(t *testing.T) {
	tm := newTokenManager(time.Hour)
	r := gin.New()
	r.GET("/me", RequireAuth(tm), scopeEcho)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuth_InvalidToken(t *testing.T) {
	tm := newTokenManager(time.Hour)
	r := gin.New()
	r.GET("/me", RequireAuth(tm), scopeEcho)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuth_ExpiredToken(t *testing.T) {
	expired := newTokenManager(-time.Second)
	token, err := expired.Issue("u1")
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", RequireAuth(newTokenManager(time.Hour)), scopeEcho)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireAuth_ValidToken(t *testing.T) {
	tm := newTokenManager(time.Hour)
	token, err := tm.Issue("user-123")
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", RequireAuth(tm), scopeEcho)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"owned": true, "user_id": "user-123"}`, w.Body.String())
}

func TestOptionalAuth_NoToken(t *testing.T) {
	tm := newTokenManager(time.Hour)
	r := gin.New()
	r.GET("/todos", OptionalAuth(tm), scopeEcho)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/todos", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"owned": false, "user_id": ""}`, w.Body.String())
}

func TestOptionalAuth_InvalidTokenProceedsAsGuest(t *testing.T) {
	tm := newTokenManager(time.Hour)
	r := gin.New()
	r.GET("/todos", OptionalAuth(tm), scopeEcho)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/todos", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"owned": false, "user_id": ""}`, w.Body.String())
}

func TestOptionalAuth_ValidToken(t *testing.T) {
	tm := newTokenManager(time.Hour)
	token, err := tm.Issue("user-9")
	require.NoError(t, err)

	r := gin.New()
	r.GET("/todos", OptionalAuth(tm), scopeEcho)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/todos", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"owned": true, "user_id": "user-9"}`, w.Body.String())
}

func TestAuthRateLimit(t *testing.T) {
	r := gin.New()
	r.POST("/auth/login", AuthRateLimit(2, 15*time.Minute), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/login", nil))
		assert.Equal(t, http.StatusOK, w.Code, "request %d should pass", i+1)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/login", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}
