package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/basit/sharelink/auth"
	"github.com/basit/sharelink/auth/Oauth"
	"github.com/basit/sharelink/auth/middleware"
	"github.com/basit/sharelink/handlers"
)

// Deps is everything the router needs. OAuth and SessionStore are nil when
// no provider is configured.
type Deps struct {
	Files          *handlers.FileHandler
	Public         *handlers.PublicHandler
	Auth           *handlers.AuthHandler
	OAuth          *Oauth.Handler
	SessionStore   cookie.Store
	Tokens         *auth.Tokens
	RateLimiter    *middleware.RateLimiter
	CORSOrigins    []string
	// TrustedProxies may set X-Forwarded-For. Nil trusts no proxy.
	TrustedProxies []string
	Log            *zap.Logger
}

func NewRouter(d Deps) *gin.Engine {
	router := gin.New()
	// ClientIP feeds the activity log and the rate limiter, so forwarded
	// headers are only honoured from configured proxies.
	if err := router.SetTrustedProxies(d.TrustedProxies); err != nil {
		d.Log.Error("Invalid trusted proxies, trusting none", zap.Error(err))
		_ = router.SetTrustedProxies(nil)
	}
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     d.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(
		middleware.GinZapLogger(d.Log),
		middleware.Metrics(),
	)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	if d.RateLimiter != nil {
		api.Use(d.RateLimiter.Middleware())
	}

	RegisterAuthRoutes(api, d.Auth, d.OAuth, d.SessionStore)
	RegisterFileRoutes(api, d.Files, d.Tokens)
	RegisterPublicRoutes(api, d.Public, d.Tokens)
	return router
}
