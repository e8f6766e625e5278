package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// Claims identify a user. Email is carried so that share checks need no
// extra user lookup per request.
type Claims struct {
	Email string `json:"email"`
	Type  string `json:"typ"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim.
func (c *Claims) UserID() (uuid.UUID, error) {
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid sub claim: %w", err)
	}
	return id, nil
}

// Tokens issues and validates HS256 access/refresh token pairs.
type Tokens struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokens(secret string, accessTTL, refreshTTL time.Duration) *Tokens {
	return &Tokens{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

func (t *Tokens) GenerateTokens(userID uuid.UUID, email string) (accessToken string, refreshToken string, err error) {
	accessToken, err = t.sign(userID, email, TypeAccess, t.accessTTL)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshToken, err = t.sign(userID, email, TypeRefresh, t.refreshTTL)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return accessToken, refreshToken, nil
}

func (t *Tokens) sign(userID uuid.UUID, email, typ string, ttl time.Duration) (string, error) {
	now := t.now()
	claims := Claims{
		Email: email,
		Type:  typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// ValidateToken checks signature, expiry and that the token is of the
// expected type.
func (t *Tokens) ValidateToken(tokenStr, wantType string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Type != wantType {
		return nil, fmt.Errorf("expected %s token, got %q", wantType, claims.Type)
	}
	if _, err := claims.UserID(); err != nil {
		return nil, err
	}
	return claims, nil
}

const (
	RefreshCookieName = "refresh_token"
	RefreshCookiePath = "/api/auth/refresh"
)

// RefreshCookie wraps a refresh token in an HTTP-only cookie scoped to the
// refresh endpoint.
func (t *Tokens) RefreshCookie(refreshToken string, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     RefreshCookieName,
		Value:    refreshToken,
		HttpOnly: true,
		Secure:   secure,
		Path:     RefreshCookiePath,
		SameSite: http.SameSiteStrictMode,
		Expires:  t.now().Add(t.refreshTTL),
	}
}
