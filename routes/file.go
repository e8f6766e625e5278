package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/basit/sharelink/auth"
	"github.com/basit/sharelink/auth/middleware"
	"github.com/basit/sharelink/handlers"
)

func RegisterFileRoutes(api *gin.RouterGroup, h *handlers.FileHandler, tokens *auth.Tokens) {
	fileGroup := api.Group("/files")
	fileGroup.Use(middleware.AuthRequired(tokens)) // protect all file endpoints

	fileGroup.POST("/upload", h.UploadFiles)
	fileGroup.GET("", h.ListFiles)
	fileGroup.GET("/shared-with-me", h.SharedWithMe)

	fileGroup.GET("/:id", h.GetFile)
	fileGroup.GET("/:id/download", h.DownloadFile)
	fileGroup.GET("/:id/content", h.FileContent)
	fileGroup.POST("/:id/share", h.ShareFile)
	fileGroup.GET("/:id/shares", h.ListShares)
	fileGroup.PATCH("/:id/settings", h.UpdateSettings)
	fileGroup.GET("/:id/activity", h.FileActivity)
	fileGroup.GET("/:id/qr", h.FileQRCode)
}

// RegisterPublicRoutes serves public links. A token is optional: signed-in
// visitors are recorded by name.
func RegisterPublicRoutes(api *gin.RouterGroup, h *handlers.PublicHandler, tokens *auth.Tokens) {
	publicGroup := api.Group("/public")
	publicGroup.Use(middleware.AuthOptional(tokens))

	publicGroup.GET("/:token", h.GetFile)
	publicGroup.GET("/:token/download", h.DownloadFile)
	publicGroup.GET("/:token/content", h.FileContent)
}
