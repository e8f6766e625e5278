package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/time/rate"

	"github.com/basit/sharelink/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(tokens *auth.Tokens, guard gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.GET("/whoami", guard, func(c *gin.Context) {
		userID, email, ok := CurrentUser(c)
		if !ok {
			c.JSON(http.StatusOK, gin.H{"anonymous": true})
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": userID.String(), "email": email})
	})
	return r
}

func TestAuthRequired(t *testing.T) {
	tokens := auth.NewTokens("test-secret", time.Minute, time.Hour)
	userID := uuid.New()
	access, refresh, err := tokens.GenerateTokens(userID, "a@example.com")
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"valid token", "Bearer " + access, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"invalid format", "Token " + access, http.StatusUnauthorized},
		{"refresh token", "Bearer " + refresh, http.StatusUnauthorized},
		{"garbage token", "Bearer abc", http.StatusUnauthorized},
	}

	router := newTestRouter(tokens, AuthRequired(tokens))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Contains(t, w.Body.String(), userID.String())
				assert.Contains(t, w.Body.String(), "a@example.com")
			}
		})
	}
}

func TestAuthOptional(t *testing.T) {
	tokens := auth.NewTokens("test-secret", time.Minute, time.Hour)
	access, _, err := tokens.GenerateTokens(uuid.New(), "a@example.com")
	require.NoError(t, err)
	router := newTestRouter(tokens, AuthOptional(tokens))

	for _, header := range []string{"", "Bearer broken"} {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", header)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "anonymous")
	}

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "a@example.com")
}

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(0.001, 2)
	r := gin.New()
	r.Use(limiter.Middleware())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	do := func(remote string) int {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = remote
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, do("198.51.100.1:1000"))
	assert.Equal(t, http.StatusOK, do("198.51.100.1:1001"))
	assert.Equal(t, http.StatusTooManyRequests, do("198.51.100.1:1002"))
	// Another client has its own bucket.
	assert.Equal(t, http.StatusOK, do("198.51.100.2:1000"))
}

// Concurrent first requests from one client share a single bucket.
func TestRateLimiter_ConcurrentFirstRequests(t *testing.T) {
	const workers = 50
	limiter := NewRateLimiter(0.001, 3)

	var (
		wg      sync.WaitGroup
		allowed atomic.Int32
		got     = make([]*rate.Limiter, workers)
	)
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			got[i] = limiter.limiter("198.51.100.7")
			if got[i].Allow() {
				allowed.Add(1)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	for _, l := range got {
		assert.Same(t, got[0], l)
	}
	assert.Equal(t, int32(3), allowed.Load())
}

func TestGinZapLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.Use(GinZapLogger(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	for _, path := range []string{"/ok", "/missing", "/boom"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zap.InfoLevel, entries[0].Level)
	assert.Equal(t, zap.WarnLevel, entries[1].Level)
	assert.Equal(t, zap.ErrorLevel, entries[2].Level)
	assert.Equal(t, "/missing", entries[1].ContextMap()["path"])
}
