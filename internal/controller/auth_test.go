package controller

import (
	"bytes"
	"encoding/json"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo-api/internal/auth"
	"todo-api/internal/config"
	"todo-api/internal/middleware"
	"todo-api/internal/repository"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testTokens() *auth.TokenManager {
	return auth.NewTokenManager(&config.Config{JWTSecret: "test-secret", TokenTTL: time.Hour})
}

func newAuthRouter(t *testing.T) (*gin.Engine, sqlmock.Sqlmock, *auth.TokenManager, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	tokens := testTokens()
	ctl := NewAuthController(repository.NewUserRepository(db), tokens)

	r := gin.New()
	r.POST("/auth/register", ctl.Register)
	r.POST("/auth/login", ctl.Login)
	r.GET("/auth/me", middleware.RequireAuth(tokens), ctl.Me)
	return r, mock, tokens, db
}

func postJSON(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestRegister_MissingFields(t *testing.T) {
	r, _, _, db := newAuthRouter(t)
	defer db.Close()

	w := postJSON(r, "/auth/register", `{"username": "alice"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "required")
}

func TestRegister_ShortPassword(t *testing.T) {
	r, _, _, db := newAuthRouter(t)
	defer db.Close()

	w := postJSON(r, "/auth/register", `{"username": "alice", "email": "a@x.com", "password": "abc"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "at least 6 characters")
}

func TestRegister_Duplicate(t *testing.T) {
	r, mock, _, db := newAuthRouter(t)
	defer db.Close()

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})

	w := postJSON(r, "/auth/register", `{"username": "alice", "email": "a@x.com", "password": "secret1"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "already exists")
}

func TestRegister_Success(t *testing.T) {
	r, mock, tokens, db := newAuthRouter(t)
	defer db.Close()

	mock.ExpectExec("INSERT INTO users").
		WithArgs(sqlmock.AnyArg(), "alice", "a@x.com", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := postJSON(r, "/auth/register", `{"username": "alice", "email": "a@x.com", "password": "secret1"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"token"`)
	assert.Contains(t, w.Body.String(), `"username":"alice"`)
	assert.NotContains(t, w.Body.String(), "password", "password hash must never be serialized")

	var resp struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	userID, err := tokens.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, userID)
}

func TestLogin_UnknownUser(t *testing.T) {
	r, mock, _, db := newAuthRouter(t)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM users WHERE username =").
		WithArgs("nobody").
		WillReturnError(sql.ErrNoRows)

	w := postJSON(r, "/auth/login", `{"usernameOrEmail": "nobody", "password": "secret1"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid credentials")
}

func TestLogin_WrongPassword(t *testing.T) {
	r, mock, _, db := newAuthRouter(t)
	defer db.Close()

	digest, err := auth.HashPassword("rightpass")
	require.NoError(t, err)
	mock.ExpectQuery("SELECT (.+) FROM users WHERE username =").
		WithArgs("alice").
		WillReturnRows(userRow("u1", "alice", "a@x.com", digest))

	w := postJSON(r, "/auth/login", `{"usernameOrEmail": "alice", "password": "wrongpass"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	// Same body as the unknown-user case: the response must not reveal
	// which part was wrong.
	assert.Contains(t, w.Body.String(), "Invalid credentials")
}

func TestLogin_Success(t *testing.T) {
	r, mock, tokens, db := newAuthRouter(t)
	defer db.Close()

	digest, err := auth.HashPassword("secret1")
	require.NoError(t, err)
	mock.ExpectQuery("SELECT (.+) FROM users WHERE username =").
		WithArgs("alice").
		WillReturnRows(userRow("u1", "alice", "a@x.com", digest))

	w := postJSON(r, "/auth/login", `{"usernameOrEmail": "alice", "password": "secret1"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	userID, err := tokens.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)
}

func TestMe_Success(t *testing.T) {
	r, mock, tokens, db := newAuthRouter(t)
	defer db.Close()

	token, err := tokens.Issue("u1")
	require.NoError(t, err)
	mock.ExpectQuery("SELECT (.+) FROM users WHERE id =").
		WithArgs("u1").
		WillReturnRows(userRow("u1", "alice", "a@x.com", "digest"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"alice"`)
}

func TestMe_UserVanished(t *testing.T) {
	r, mock, tokens, db := newAuthRouter(t)
	defer db.Close()

	token, err := tokens.Issue("gone")
	require.NoError(t, err)
	mock.ExpectQuery("SELECT (.+) FROM users WHERE id =").
		WithArgs("gone").
		WillReturnError(sql.ErrNoRows)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func userRow(id, username, email, digest string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "username", "email", "password_hash", "created_at"}).
		AddRow(id, username, email, digest, time.Now())
}
