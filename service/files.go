package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/lithammer/shortuuid/v4"
	"go.uber.org/zap"

	"github.com/basit/sharelink/models"
	"github.com/basit/sharelink/storage"
)

// UploadInput is one file of an upload request. Open may be called more
// than once.
type UploadInput struct {
	Filename    string
	Size        int64
	ContentType string
	Open        func() (io.ReadCloser, error)
}

const (
	// MaxFilesPerUpload caps the number of files in one upload request.
	MaxFilesPerUpload = 20
	// multipartOverhead allows for part headers and boundaries.
	multipartOverhead = 1 << 20
)

// FileLibrary stores new files and lists a user's own files.
type FileLibrary struct {
	files    FileRegistry
	gateway  storage.Gateway
	maxBytes int64
	log      *zap.Logger
	now      Clock
}

func NewFileLibrary(files FileRegistry, gateway storage.Gateway, maxBytes int64, log *zap.Logger, clock Clock) *FileLibrary {
	if clock == nil {
		clock = SystemClock
	}
	return &FileLibrary{files: files, gateway: gateway, maxBytes: maxBytes, log: log, now: clock}
}

// Upload stores every input under ownerID. Inputs are validated up front so
// an oversized file rejects the whole request before anything is stored.
func (l *FileLibrary) Upload(ctx context.Context, ownerID uuid.UUID, inputs []UploadInput) ([]models.File, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: no files uploaded", ErrInvalidArgument)
	}
	if len(inputs) > MaxFilesPerUpload {
		return nil, fmt.Errorf("%w: at most %d files per upload", ErrInvalidArgument, MaxFilesPerUpload)
	}
	for _, in := range inputs {
		if strings.TrimSpace(in.Filename) == "" {
			return nil, fmt.Errorf("%w: file name is required", ErrInvalidArgument)
		}
		if in.Size > l.maxBytes {
			return nil, fmt.Errorf("%w: %s exceeds the %d MB limit", ErrInvalidArgument, in.Filename, l.maxBytes>>20)
		}
	}

	uploaded := make([]models.File, 0, len(inputs))
	for _, in := range inputs {
		file, err := l.store(ctx, ownerID, in)
		if err != nil {
			return nil, err
		}
		uploaded = append(uploaded, *file)
	}
	return uploaded, nil
}

// MaxRequestBytes bounds an upload request body: every allowed file at the
// size limit plus multipart framing.
func (l *FileLibrary) MaxRequestBytes() int64 {
	return l.maxBytes*MaxFilesPerUpload + multipartOverhead
}

func (l *FileLibrary) store(ctx context.Context, ownerID uuid.UUID, in UploadInput) (*models.File, error) {
	contentType, err := sniffContentType(in)
	if err != nil {
		return nil, err
	}

	body, err := in.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", in.Filename, err)
	}
	defer body.Close()

	key, err := l.gateway.Put(ctx, body, contentType, in.Filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	file := &models.File{
		UserID:       ownerID,
		DisplayName:  in.Filename,
		StorageKey:   key,
		ContentType:  contentType,
		MimeCategory: MimeCategory(contentType),
		SizeBytes:    in.Size,
		UploadedAt:   l.now(),
		PublicToken:  shortuuid.New(),
	}
	if err := l.files.Create(ctx, file); err != nil {
		l.log.Warn("Stored object has no file record", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("failed to save file metadata: %w", err)
	}
	return file, nil
}

// ListMine returns the owner's files, newest first.
func (l *FileLibrary) ListMine(ctx context.Context, ownerID uuid.UUID) ([]models.File, error) {
	files, err := l.files.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch files: %w", err)
	}
	return files, nil
}

// sniffContentType trusts the bytes over the client's header, falling back
// to the header only when the content is not recognised.
func sniffContentType(in UploadInput) (string, error) {
	body, err := in.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", in.Filename, err)
	}
	defer body.Close()

	detected, err := mimetype.DetectReader(body)
	if err != nil {
		return "", fmt.Errorf("failed to detect type of %s: %w", in.Filename, err)
	}
	if detected.Is("application/octet-stream") && in.ContentType != "" {
		return in.ContentType, nil
	}
	return detected.String(), nil
}

var documentTypes = map[string]bool{
	"application/msword":            true,
	"application/vnd.ms-excel":      true,
	"application/vnd.ms-powerpoint": true,
	"application/rtf":               true,
}

var archiveTypes = map[string]bool{
	"application/zip":              true,
	"application/gzip":             true,
	"application/x-tar":            true,
	"application/x-7z-compressed":  true,
	"application/vnd.rar":          true,
	"application/x-rar-compressed": true,
	"application/x-bzip2":          true,
}

// MimeCategory groups a content type into what the dashboard shows:
// image, video, audio, pdf, text, archive, document or other.
func MimeCategory(contentType string) string {
	base, _, _ := strings.Cut(contentType, ";")
	base = strings.ToLower(strings.TrimSpace(base))

	switch {
	case strings.HasPrefix(base, "image/"):
		return "image"
	case strings.HasPrefix(base, "video/"):
		return "video"
	case strings.HasPrefix(base, "audio/"):
		return "audio"
	case base == "application/pdf":
		return "pdf"
	case strings.HasPrefix(base, "text/"), base == "application/json", base == "application/xml":
		return "text"
	case archiveTypes[base]:
		return "archive"
	case documentTypes[base],
		strings.HasPrefix(base, "application/vnd.openxmlformats-officedocument."),
		strings.HasPrefix(base, "application/vnd.oasis.opendocument."):
		return "document"
	default:
		return "other"
	}
}
