package handlers

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/basit/sharelink/models"
	"github.com/basit/sharelink/service"
	"github.com/basit/sharelink/storage"
)

// fileView is what a viewer of a single file gets. Link settings are only
// filled in for the owner.
type fileView struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Size          int64      `json:"size"`
	Type          string     `json:"type"`
	Category      string     `json:"category"`
	Date          time.Time  `json:"date"`
	PreviewURL    string     `json:"previewUrl"`
	DownloadURL   string     `json:"downloadUrl"`
	IsOwner       bool       `json:"isOwner"`
	PublicToken   string     `json:"publicToken,omitempty"`
	PublicURL     string     `json:"publicUrl,omitempty"`
	LinkExpiresAt *time.Time `json:"linkExpiresAt,omitempty"`
}

// newFileView presigns the preview URL. When downloadURL is empty an
// attachment URL is presigned as well.
func newFileView(ctx context.Context, grant *service.Grant, downloadURL, baseURL string) (*fileView, error) {
	preview, err := grant.SignedURL(ctx, storage.Inline)
	if err != nil {
		return nil, err
	}
	if downloadURL == "" {
		downloadURL, err = grant.SignedURL(ctx, storage.Attachment)
		if err != nil {
			return nil, err
		}
	}

	f := grant.File
	view := &fileView{
		ID:          f.ID.String(),
		Name:        f.DisplayName,
		Size:        f.SizeBytes,
		Type:        f.ContentType,
		Category:    f.MimeCategory,
		Date:        f.UploadedAt,
		PreviewURL:  preview,
		DownloadURL: downloadURL,
		IsOwner:     grant.IsOwner,
	}
	if grant.IsOwner {
		view.PublicToken = f.PublicToken
		view.PublicURL = publicLink(baseURL, f.PublicToken)
		view.LinkExpiresAt = f.LinkExpiresAt
	}
	return view, nil
}

type fileSummary struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Size          int64      `json:"size"`
	Type          string     `json:"type"`
	Category      string     `json:"category"`
	Date          time.Time  `json:"date"`
	PublicToken   string     `json:"publicToken"`
	LinkExpiresAt *time.Time `json:"linkExpiresAt,omitempty"`
}

func newFileSummaries(files []models.File) []fileSummary {
	out := make([]fileSummary, 0, len(files))
	for _, f := range files {
		out = append(out, fileSummary{
			ID:            f.ID.String(),
			Name:          f.DisplayName,
			Size:          f.SizeBytes,
			Type:          f.ContentType,
			Category:      f.MimeCategory,
			Date:          f.UploadedAt,
			PublicToken:   f.PublicToken,
			LinkExpiresAt: f.LinkExpiresAt,
		})
	}
	return out
}

type sharedFileView struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Size       int64      `json:"size"`
	Type       string     `json:"type"`
	Category   string     `json:"category"`
	Date       time.Time  `json:"date"`
	Owner      string     `json:"owner"`
	OwnerEmail string     `json:"ownerEmail"`
	SharedAt   time.Time  `json:"sharedAt"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
}

func newSharedFileViews(shared []service.SharedFile) []sharedFileView {
	out := make([]sharedFileView, 0, len(shared))
	for _, s := range shared {
		out = append(out, sharedFileView{
			ID:         s.File.ID.String(),
			Name:       s.File.DisplayName,
			Size:       s.File.SizeBytes,
			Type:       s.File.ContentType,
			Category:   s.File.MimeCategory,
			Date:       s.File.UploadedAt,
			Owner:      s.OwnerName,
			OwnerEmail: s.OwnerEmail,
			SharedAt:   s.SharedAt,
			ExpiresAt:  s.ExpiresAt,
		})
	}
	return out
}

type shareView struct {
	ID        string     `json:"id"`
	FileID    string     `json:"fileId"`
	Email     string     `json:"email"`
	CreatedAt time.Time  `json:"createdAt"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

func newShareView(s models.Share) shareView {
	return shareView{
		ID:        s.ID.String(),
		FileID:    s.FileID.String(),
		Email:     s.InvitedEmail,
		CreatedAt: s.CreatedAt,
		ExpiresAt: s.ExpiresAt,
	}
}

type activityView struct {
	ID        string     `json:"id"`
	Action    string     `json:"action"`
	Details   string     `json:"details"`
	UserID    *uuid.UUID `json:"userId"`
	IPAddress string     `json:"ipAddress"`
	CreatedAt time.Time  `json:"createdAt"`
}

func newActivityViews(entries []models.ActivityLog) []activityView {
	out := make([]activityView, 0, len(entries))
	for _, e := range entries {
		out = append(out, activityView{
			ID:        e.ID.String(),
			Action:    string(e.Action),
			Details:   e.Details,
			UserID:    e.UserID,
			IPAddress: e.IPAddress,
			CreatedAt: e.CreatedAt,
		})
	}
	return out
}

// publicLink is the frontend page that opens a public token.
func publicLink(baseURL, token string) string {
	return baseURL + "/shared/" + token
}
