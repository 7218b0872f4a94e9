package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"todo-api/internal/apperr"
	"todo-api/internal/auth"
	"todo-api/internal/middleware"
	"todo-api/internal/repository"
	"todo-api/pkg/logger"
)

const minPasswordLength = 6

// AuthController serves registration, login and the current-user lookup.
type AuthController struct {
	users  *repository.UserRepository
	tokens *auth.TokenManager
}

func NewAuthController(users *repository.UserRepository, tokens *auth.TokenManager) *AuthController {
	return &AuthController{users: users, tokens: tokens}
}

// Register creates a new account and logs it in immediately.
func (a *AuthController) Register(c *gin.Context) {
	ctx := c.Request.Context()
	var body struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if body.Username == "" || body.Email == "" || body.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username, email, and password are required"})
		return
	}
	if len(body.Password) < minPasswordLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be at least 6 characters long"})
		return
	}

	digest, err := auth.HashPassword(body.Password)
	if err != nil {
		logger.Error(ctx, "Password hashing failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	user, err := a.users.Create(ctx, body.Username, body.Email, digest)
	if err != nil {
		if errors.Is(err, apperr.ErrDuplicateUser) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username or email already exists"})
			return
		}
		logger.Error(ctx, "Register failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	token, err := a.tokens.Issue(user.ID)
	if err != nil {
		logger.Error(ctx, "Token issue failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user":    user,
		"token":   token,
	})
}

// Login authenticates by username or email. Unknown users and wrong
// passwords produce the same response.
func (a *AuthController) Login(c *gin.Context) {
	ctx := c.Request.Context()
	var body struct {
		UsernameOrEmail string `json:"usernameOrEmail"`
		Password        string `json:"password"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if body.UsernameOrEmail == "" || body.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username/email and password are required"})
		return
	}

	user, err := a.users.FindByUsernameOrEmail(ctx, body.UsernameOrEmail)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		logger.Error(ctx, "Login lookup failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if !auth.CheckPassword(body.Password, user.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := a.tokens.Issue(user.ID)
	if err != nil {
		logger.Error(ctx, "Token issue failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user":    user,
		"token":   token,
	})
}

// Me returns the authenticated user's account. Requires RequireAuth.
func (a *AuthController) Me(c *gin.Context) {
	ctx := c.Request.Context()
	userID, ok := middleware.Scope(c).UserID()
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Access token required"})
		return
	}

	user, err := a.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		logger.Error(ctx, "Me lookup failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
