package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/basit/sharelink/auth"
	"github.com/basit/sharelink/models"
	"github.com/basit/sharelink/repository"
	"github.com/basit/sharelink/service"
)

// AuthHandler is the email/password login surface. OAuth lives in auth/Oauth.
type AuthHandler struct {
	users         *repository.UserRepository
	tokens        *auth.Tokens
	secureCookies bool
	log           *zap.Logger
}

func NewAuthHandler(users *repository.UserRepository, tokens *auth.Tokens, secureCookies bool, log *zap.Logger) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens, secureCookies: secureCookies, log: log}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type userView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name, a valid email and a password of at least 8 characters are required"})
		return
	}

	ctx := c.Request.Context()
	email := service.NormalizeEmail(req.Email)
	existing, err := h.users.FindByEmail(ctx, email)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "An account with this email already exists"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}
	hashed := string(hash)
	user := &models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: &hashed,
	}
	if err := h.users.Create(ctx, user); err != nil {
		respondError(c, h.log, err)
		return
	}

	h.issueTokens(c, http.StatusCreated, user)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}

	user, err := h.users.FindByEmail(c.Request.Context(), service.NormalizeEmail(req.Email))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	// OAuth-only accounts have no password.
	if user == nil || user.PasswordHash == nil ||
		bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	h.issueTokens(c, http.StatusOK, user)
}

// Refresh trades the refresh cookie for a new token pair.
func (h *AuthHandler) Refresh(c *gin.Context) {
	refreshToken, err := c.Cookie(auth.RefreshCookieName)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Refresh token missing"})
		return
	}

	claims, err := h.tokens.ValidateToken(refreshToken, auth.TypeRefresh)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	}
	userID, err := claims.UserID()
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	}

	user, err := h.users.FindByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User no longer exists"})
		return
	}

	h.issueTokens(c, http.StatusOK, user)
}

func (h *AuthHandler) issueTokens(c *gin.Context, status int, user *models.User) {
	accessToken, refreshToken, err := h.tokens.GenerateTokens(user.ID, user.Email)
	if err != nil {
		h.log.Error("Token generation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate tokens"})
		return
	}

	http.SetCookie(c.Writer, h.tokens.RefreshCookie(refreshToken, h.secureCookies))
	c.JSON(status, gin.H{
		"accessToken": accessToken,
		"user":        userView{ID: user.ID.String(), Name: user.Name, Email: user.Email},
	})
}
