// Package storage puts, reads and presigns objects in an S3-compatible bucket.
// How keys are named is private to this package.
package storage

import (
	"context"
	"io"
	"strings"
	"time"
)

type DispositionKind string

const (
	Inline     DispositionKind = "inline"
	Attachment DispositionKind = "attachment"
)

// Disposition is the Content-Disposition a signed URL is scoped to.
type Disposition struct {
	Kind     DispositionKind
	Filename string
}

var filenameEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\r", "", "\n", "")

// Header renders the Content-Disposition header value, for example
// `attachment; filename="report.pdf"`.
func (d Disposition) Header() string {
	return string(d.Kind) + `; filename="` + filenameEscaper.Replace(d.Filename) + `"`
}

// Gateway is the object storage capability the rest of the service depends on.
type Gateway interface {
	// Put stores body and returns the key it was stored under.
	Put(ctx context.Context, body io.Reader, contentType, filename string) (string, error)
	// Presign returns a GET URL valid for ttl that serves the object with
	// the given disposition.
	Presign(ctx context.Context, key string, disposition Disposition, ttl time.Duration) (string, error)
	// GetStream opens the object for reading. The caller closes it.
	GetStream(ctx context.Context, key string) (io.ReadCloser, error)
}
