package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/basit/sharelink/service"
)

// PublicHandler serves /api/public/:token. Callers may be anonymous.
type PublicHandler struct {
	resolver *service.Resolver
	baseURL  string
	log      *zap.Logger
}

func NewPublicHandler(resolver *service.Resolver, baseURL string, log *zap.Logger) *PublicHandler {
	return &PublicHandler{resolver: resolver, baseURL: baseURL, log: log}
}

// GetFile points downloadUrl at the API download route so that every
// download goes through the expiry check and is recorded.
func (h *PublicHandler) GetFile(c *gin.Context) {
	token := c.Param("token")
	grant, err := h.resolver.ResolvePublic(c.Request.Context(), token, optionalRequester(c), c.ClientIP())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	view, err := newFileView(c.Request.Context(), grant, "/api/public/"+token+"/download", h.baseURL)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Header("Cache-Control", "no-store, private")
	c.JSON(http.StatusOK, view)
}

func (h *PublicHandler) DownloadFile(c *gin.Context) {
	grant, err := h.resolver.DownloadPublic(c.Request.Context(), c.Param("token"), optionalRequester(c), c.ClientIP())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	redirectToGrant(c, h.log, grant)
}

func (h *PublicHandler) FileContent(c *gin.Context) {
	grant, err := h.resolver.Resolve(c.Request.Context(), service.Public{
		Token:         c.Param("token"),
		Requester:     optionalRequester(c),
		Intent:        service.IntentStream,
		SourceAddress: c.ClientIP(),
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	streamGrant(c, h.log, grant)
}
