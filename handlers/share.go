package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type inviteRequest struct {
	Email string `json:"email" binding:"required"`
}

func (h *FileHandler) ShareFile(c *gin.Context) {
	id, ok := fileID(c)
	if !ok {
		return
	}

	var req inviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email is required"})
		return
	}

	share, err := h.sharing.Invite(c.Request.Context(), id, requester(c).UserID, req.Email, c.ClientIP())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Invite sent to " + share.InvitedEmail,
		"share":   newShareView(*share),
	})
}

func (h *FileHandler) SharedWithMe(c *gin.Context) {
	shared, err := h.sharing.ListSharedWithMe(c.Request.Context(), requester(c).Email)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"files": newSharedFileViews(shared)})
}

func (h *FileHandler) ListShares(c *gin.Context) {
	id, ok := fileID(c)
	if !ok {
		return
	}

	shares, err := h.sharing.ListShares(c.Request.Context(), id, requester(c).UserID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	views := make([]shareView, 0, len(shares))
	for _, s := range shares {
		views = append(views, newShareView(s))
	}
	c.JSON(http.StatusOK, gin.H{"shares": views})
}
