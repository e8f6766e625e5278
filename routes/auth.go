package routes

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"github.com/basit/sharelink/auth/Oauth"
	"github.com/basit/sharelink/handlers"
)

// RegisterAuthRoutes wires password login and, when oauth is non-nil, the
// provider redirects.
func RegisterAuthRoutes(api *gin.RouterGroup, h *handlers.AuthHandler, oauth *Oauth.Handler, store cookie.Store) {
	authGroup := api.Group("/auth")
	authGroup.POST("/register", h.Register)
	authGroup.POST("/login", h.Login)
	authGroup.POST("/refresh", h.Refresh)

	if oauth == nil {
		return
	}
	providers := authGroup.Group("", sessions.Sessions(Oauth.SessionName, store))
	providers.GET("/:provider", oauth.Begin)
	providers.GET("/:provider/callback", oauth.Complete)
}
