package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/basit/sharelink/service"
)

// respondError maps service errors onto HTTP statuses. Unexpected errors are
// logged and hidden from the client.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrNotFoundOrDenied):
		c.JSON(http.StatusNotFound, gin.H{"error": service.ErrNotFoundOrDenied.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": service.ErrNotFound.Error()})
	case errors.Is(err, service.ErrLinkExpired):
		c.JSON(http.StatusGone, gin.H{"error": service.ErrLinkExpired.Error()})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": service.ErrForbidden.Error()})
	case errors.Is(err, service.ErrInvalidArgument):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrStorage):
		log.Error("Object storage failure", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": service.ErrStorage.Error()})
	default:
		log.Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
	_ = c.Error(err)
}
