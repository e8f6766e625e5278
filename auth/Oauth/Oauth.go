package Oauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/github"
	"github.com/markbates/goth/providers/google"
	"go.uber.org/zap"

	"github.com/basit/sharelink/auth"
	"github.com/basit/sharelink/config"
	"github.com/basit/sharelink/models"
	"github.com/basit/sharelink/repository"
	"github.com/basit/sharelink/service"
)

const SessionName = "fileshare_session"

var errNoEmail = errors.New("the provider did not return an email address")

// InitStore registers the configured providers with goth and returns the
// cookie store that backs both gothic and the gin session middleware.
func InitStore(cfg *config.Config) cookie.Store {
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   strings.HasPrefix(cfg.BaseURL, "https://"),
	})
	gothic.Store = store

	var providers []goth.Provider
	if cfg.GoogleClientID != "" {
		provider := google.New(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL, "email", "profile")
		providers = append(providers, provider)
	}
	if cfg.GitHubClientID != "" {
		providers = append(providers, github.New(cfg.GitHubClientID, cfg.GitHubClientSecret, cfg.GitHubRedirectURL, "user:email"))
	}
	goth.UseProviders(providers...)

	return store
}

type Handler struct {
	users   *repository.UserRepository
	tokens  *auth.Tokens
	baseURL string
	log     *zap.Logger
}

func NewHandler(users *repository.UserRepository, tokens *auth.Tokens, baseURL string, log *zap.Logger) *Handler {
	return &Handler{users: users, tokens: tokens, baseURL: baseURL, log: log}
}

// Begin redirects to the provider's consent screen.
func (h *Handler) Begin(c *gin.Context) {
	// Goth reads the provider from the query string.
	q := c.Request.URL.Query()
	q.Set("provider", c.Param("provider"))
	c.Request.URL.RawQuery = q.Encode()

	gothic.BeginAuthHandler(c.Writer, c.Request)
}

// Complete finishes the OAuth dance and redirects to the frontend with an
// access token; the refresh token goes into an HTTP-only cookie.
func (h *Handler) Complete(c *gin.Context) {
	q := c.Request.URL.Query()
	q.Set("provider", c.Param("provider"))
	c.Request.URL.RawQuery = q.Encode()

	gothUser, err := gothic.CompleteUserAuth(c.Writer, c.Request)
	if err != nil {
		h.log.Warn("OAuth completion failed", zap.String("provider", c.Param("provider")), zap.Error(err))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication failed"})
		return
	}

	user, err := h.findOrCreateOAuthUser(c.Request.Context(), gothUser)
	if errors.Is(err, errNoEmail) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		h.log.Error("Failed to process OAuth user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process user data"})
		return
	}

	accessToken, refreshToken, err := h.tokens.GenerateTokens(user.ID, user.Email)
	if err != nil {
		h.log.Error("Token generation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate tokens"})
		return
	}
	http.SetCookie(c.Writer, h.tokens.RefreshCookie(refreshToken, strings.HasPrefix(h.baseURL, "https://")))

	session := sessions.Default(c)
	session.Set("user_id", user.ID.String())
	if err := session.Save(); err != nil {
		// The JWT is what matters; the session only carries OAuth state.
		h.log.Warn("Session save failed", zap.Error(err))
	}

	h.log.Info("OAuth login", zap.String("provider", gothUser.Provider), zap.String("user_id", user.ID.String()))
	c.Redirect(http.StatusTemporaryRedirect, h.baseURL+"/auth/success?token="+url.QueryEscape(accessToken))
}

// findOrCreateOAuthUser matches on the provider's user ID first, then links
// an existing account with the same email, and only then creates a user.
func (h *Handler) findOrCreateOAuthUser(ctx context.Context, gothUser goth.User) (*models.User, error) {
	user, err := h.users.FindByProviderID(ctx, gothUser.Provider, gothUser.UserID)
	if err != nil {
		return nil, fmt.Errorf("database query error: %w", err)
	}
	if user != nil {
		if gothUser.Name != "" && gothUser.Name != user.Name {
			if err := h.users.Updates(ctx, user, map[string]interface{}{"name": gothUser.Name}); err != nil {
				return nil, fmt.Errorf("failed to update user: %w", err)
			}
		}
		return user, nil
	}

	email := service.NormalizeEmail(gothUser.Email)
	if email == "" {
		return nil, errNoEmail
	}

	user, err = h.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("database query error: %w", err)
	}
	if user != nil {
		updates := map[string]interface{}{"provider": gothUser.Provider}
		switch gothUser.Provider {
		case "google":
			updates["google_id"] = gothUser.UserID
		case "github":
			updates["git_hub_id"] = gothUser.UserID
		}
		if err := h.users.Updates(ctx, user, updates); err != nil {
			return nil, fmt.Errorf("failed to link OAuth account: %w", err)
		}
		return user, nil
	}

	provider := gothUser.Provider
	providerUserID := gothUser.UserID
	user = &models.User{
		Name:     gothUser.Name,
		Email:    email,
		Provider: &provider,
	}
	switch provider {
	case "google":
		user.GoogleID = &providerUserID
	case "github":
		user.GitHubID = &providerUserID
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
	if err := h.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}
