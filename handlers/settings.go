package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

var errMissingExpiry = errors.New("linkExpiresAt is required")

// settingsRequest sets the public link expiry. The key must be present; an
// explicit null removes the expiry.
type settingsRequest struct {
	LinkExpiresAt json.RawMessage `json:"linkExpiresAt"`
}

func (r settingsRequest) expiry() (*time.Time, error) {
	if len(r.LinkExpiresAt) == 0 {
		return nil, errMissingExpiry
	}
	if string(r.LinkExpiresAt) == "null" {
		return nil, nil
	}
	var t time.Time
	if err := json.Unmarshal(r.LinkExpiresAt, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (h *FileHandler) UpdateSettings(c *gin.Context) {
	id, ok := fileID(c)
	if !ok {
		return
	}

	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "linkExpiresAt must be an RFC 3339 timestamp or null"})
		return
	}
	expiresAt, err := req.expiry()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "linkExpiresAt must be an RFC 3339 timestamp or null"})
		return
	}

	if err := h.settings.UpdateLinkExpiry(c.Request.Context(), id, requester(c).UserID, expiresAt, c.ClientIP()); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *FileHandler) FileActivity(c *gin.Context) {
	id, ok := fileID(c)
	if !ok {
		return
	}

	entries, err := h.activity.List(c.Request.Context(), id, requester(c).UserID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"activity": newActivityViews(entries)})
}

// FileQRCode renders the public link as a PNG for the owner.
func (h *FileHandler) FileQRCode(c *gin.Context) {
	id, ok := fileID(c)
	if !ok {
		return
	}

	file, err := h.settings.Describe(c.Request.Context(), id, requester(c).UserID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	png, err := qrcode.Encode(publicLink(h.baseURL, file.PublicToken), qrcode.Medium, 256)
	if err != nil {
		h.log.Error("QR code generation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate QR code"})
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
