package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/basit/sharelink/auth/middleware"
	"github.com/basit/sharelink/service"
	"github.com/basit/sharelink/storage"
)

// FileHandler serves the authenticated /api/files routes.
type FileHandler struct {
	library  *service.FileLibrary
	resolver *service.Resolver
	sharing  *service.ShareService
	settings *service.LinkSettings
	activity *service.ActivityLogger
	baseURL  string
	log      *zap.Logger
}

func NewFileHandler(
	library *service.FileLibrary,
	resolver *service.Resolver,
	sharing *service.ShareService,
	settings *service.LinkSettings,
	activity *service.ActivityLogger,
	baseURL string,
	log *zap.Logger,
) *FileHandler {
	return &FileHandler{
		library:  library,
		resolver: resolver,
		sharing:  sharing,
		settings: settings,
		activity: activity,
		baseURL:  baseURL,
		log:      log,
	}
}

// requester is the authenticated caller. Routes using it sit behind
// AuthRequired.
func requester(c *gin.Context) service.Identity {
	userID, email, _ := middleware.CurrentUser(c)
	return service.Identity{UserID: userID, Email: email}
}

// optionalRequester is nil for anonymous callers.
func optionalRequester(c *gin.Context) *service.Identity {
	userID, email, ok := middleware.CurrentUser(c)
	if !ok {
		return nil
	}
	return &service.Identity{UserID: userID, Email: email}
}

// fileID parses the :id parameter. A malformed ID is answered like a
// missing file.
func fileID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": service.ErrNotFound.Error()})
		return uuid.Nil, false
	}
	return id, true
}

func (h *FileHandler) UploadFiles(c *gin.Context) {
	// Oversized bodies are cut off while streaming, before they reach disk.
	limit := h.library.MaxRequestBytes()
	if c.Request.ContentLength > limit {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Upload is too large"})
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)

	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Upload is too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	headers := append(form.File["files"], form.File["file"]...)

	inputs := make([]service.UploadInput, 0, len(headers))
	for _, fh := range headers {
		inputs = append(inputs, service.UploadInput{
			Filename:    fh.Filename,
			Size:        fh.Size,
			ContentType: fh.Header.Get("Content-Type"),
			Open: func() (io.ReadCloser, error) {
				return fh.Open()
			},
		})
	}

	files, err := h.library.Upload(c.Request.Context(), requester(c).UserID, inputs)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"files": newFileSummaries(files)})
}

func (h *FileHandler) ListFiles(c *gin.Context) {
	files, err := h.library.ListMine(c.Request.Context(), requester(c).UserID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"files": newFileSummaries(files)})
}

// GetFile is the owner/invitee view with fresh preview and download URLs.
func (h *FileHandler) GetFile(c *gin.Context) {
	id, ok := fileID(c)
	if !ok {
		return
	}

	grant, err := h.resolver.ResolveProtected(c.Request.Context(), id, requester(c), c.ClientIP())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	view, err := newFileView(c.Request.Context(), grant, "", h.baseURL)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Header("Cache-Control", "no-store, private")
	c.JSON(http.StatusOK, view)
}

func (h *FileHandler) DownloadFile(c *gin.Context) {
	id, ok := fileID(c)
	if !ok {
		return
	}

	grant, err := h.resolver.Resolve(c.Request.Context(), service.Protected{
		FileID:        id,
		Requester:     requester(c),
		Intent:        service.IntentDownload,
		SourceAddress: c.ClientIP(),
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	redirectToGrant(c, h.log, grant)
}

// FileContent proxies the bytes so that the browser can render them from
// the API origin.
func (h *FileHandler) FileContent(c *gin.Context) {
	id, ok := fileID(c)
	if !ok {
		return
	}

	grant, err := h.resolver.Resolve(c.Request.Context(), service.Protected{
		FileID:        id,
		Requester:     requester(c),
		Intent:        service.IntentStream,
		SourceAddress: c.ClientIP(),
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	streamGrant(c, h.log, grant)
}

func redirectToGrant(c *gin.Context, log *zap.Logger, grant *service.Grant) {
	url, err := grant.URL(c.Request.Context())
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.Header("Cache-Control", "no-store, private")
	c.Redirect(http.StatusFound, url)
}

func streamGrant(c *gin.Context, log *zap.Logger, grant *service.Grant) {
	body, err := grant.Open(c.Request.Context())
	if err != nil {
		respondError(c, log, err)
		return
	}
	defer body.Close()

	contentType := grant.File.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	disposition := storage.Disposition{Kind: storage.Inline, Filename: grant.File.DisplayName}
	c.DataFromReader(http.StatusOK, grant.File.SizeBytes, contentType, body, map[string]string{
		"Content-Disposition": disposition.Header(),
		"Cache-Control":       "no-store, private",
	})
}
