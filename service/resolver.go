package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/basit/sharelink/models"
	"github.com/basit/sharelink/storage"
)

// Intent is what the caller wants to do once access is granted.
type Intent int

const (
	// IntentView records a view and hands out an inline URL.
	IntentView Intent = iota
	// IntentDownload records a download and hands out an attachment URL.
	IntentDownload
	// IntentStream proxies the bytes; nothing is recorded.
	IntentStream
)

// AccessMode is either Protected or Public.
type AccessMode interface {
	accessMode() string
}

// Protected access needs an authenticated owner or invitee. Link expiry
// does not apply.
type Protected struct {
	FileID        uuid.UUID
	Requester     Identity
	Intent        Intent
	SourceAddress string
}

// Public access needs only the token, while the link has not expired.
// Requester is nil for anonymous visitors.
type Public struct {
	Token         string
	Requester     *Identity
	Intent        Intent
	SourceAddress string
}

func (Protected) accessMode() string { return "protected" }
func (Public) accessMode() string    { return "public" }

// Grant is a successful resolution. The URLs a view or download needs are
// signed before access is recorded; resolve again once they expire.
type Grant struct {
	File *models.File
	// IsOwner is true when the requester owns the file.
	IsOwner bool
	// Disposition is the one matching the resolved intent.
	Disposition storage.DispositionKind

	gateway storage.Gateway
	ttl     time.Duration
	urls    map[storage.DispositionKind]string
}

// SignedURL returns the URL signed during resolution for kind, presigning
// it now if resolution did not need it.
func (g *Grant) SignedURL(ctx context.Context, kind storage.DispositionKind) (string, error) {
	if url, ok := g.urls[kind]; ok {
		return url, nil
	}
	url, err := g.gateway.Presign(ctx, g.File.StorageKey, storage.Disposition{
		Kind:     kind,
		Filename: g.File.DisplayName,
	}, g.ttl)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrStorage, err)
	}
	if g.urls == nil {
		g.urls = make(map[storage.DispositionKind]string, 2)
	}
	g.urls[kind] = url
	return url, nil
}

// sign presigns every kind up front so that a storage failure aborts the
// request before anything is recorded.
func (g *Grant) sign(ctx context.Context, kinds ...storage.DispositionKind) error {
	for _, kind := range kinds {
		if _, err := g.SignedURL(ctx, kind); err != nil {
			return err
		}
	}
	return nil
}

// URL is the signed URL for the grant's own disposition.
func (g *Grant) URL(ctx context.Context) (string, error) {
	return g.SignedURL(ctx, g.Disposition)
}

// Open streams the file content. The caller closes the reader.
func (g *Grant) Open(ctx context.Context) (io.ReadCloser, error) {
	body, err := g.gateway.GetStream(ctx, g.File.StorageKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return body, nil
}

// Resolver decides whether a request may read a file.
type Resolver struct {
	files    FileRegistry
	shares   ShareRegistry
	gateway  storage.Gateway
	activity *ActivityLogger
	urlTTL   time.Duration
	now      Clock
}

func NewResolver(files FileRegistry, shares ShareRegistry, gateway storage.Gateway, activity *ActivityLogger, urlTTL time.Duration, clock Clock) *Resolver {
	if clock == nil {
		clock = SystemClock
	}
	return &Resolver{
		files:    files,
		shares:   shares,
		gateway:  gateway,
		activity: activity,
		urlTTL:   urlTTL,
		now:      clock,
	}
}

// Resolve dispatches on the access mode.
func (r *Resolver) Resolve(ctx context.Context, mode AccessMode) (*Grant, error) {
	var (
		grant *Grant
		err   error
	)
	switch m := mode.(type) {
	case Protected:
		grant, err = r.resolveProtected(ctx, m)
	case Public:
		grant, err = r.resolvePublic(ctx, m)
	default:
		return nil, fmt.Errorf("unsupported access mode %T", mode)
	}
	accessDecisionsTotal.WithLabelValues(mode.accessMode(), outcome(err)).Inc()
	return grant, err
}

// ResolveProtected is the owner/invitee view of a file.
func (r *Resolver) ResolveProtected(ctx context.Context, fileID uuid.UUID, requester Identity, source string) (*Grant, error) {
	return r.Resolve(ctx, Protected{FileID: fileID, Requester: requester, Intent: IntentView, SourceAddress: source})
}

// ResolvePublic is the public-link view of a file.
func (r *Resolver) ResolvePublic(ctx context.Context, token string, requester *Identity, source string) (*Grant, error) {
	return r.Resolve(ctx, Public{Token: token, Requester: requester, Intent: IntentView, SourceAddress: source})
}

// DownloadPublic is ResolvePublic for an explicit download.
func (r *Resolver) DownloadPublic(ctx context.Context, token string, requester *Identity, source string) (*Grant, error) {
	return r.Resolve(ctx, Public{Token: token, Requester: requester, Intent: IntentDownload, SourceAddress: source})
}

func (r *Resolver) resolveProtected(ctx context.Context, m Protected) (*Grant, error) {
	file, err := r.files.FindByID(ctx, m.FileID)
	if err != nil {
		return nil, fmt.Errorf("failed to load file: %w", err)
	}
	if file == nil {
		return nil, ErrNotFoundOrDenied
	}

	isOwner := file.UserID == m.Requester.UserID
	how := "by owner"
	if !isOwner {
		email := NormalizeEmail(m.Requester.Email)
		if email == "" {
			return nil, ErrNotFoundOrDenied
		}
		share, err := r.shares.FindActive(ctx, file.ID, email, r.now())
		if err != nil {
			return nil, fmt.Errorf("failed to check shares: %w", err)
		}
		if share == nil {
			return nil, ErrNotFoundOrDenied
		}
		how = "via invite"
	}

	grant := r.grant(file, isOwner, m.Intent)
	// The protected view links straight to storage for both preview and download.
	kinds := []storage.DispositionKind{grant.Disposition}
	if m.Intent == IntentView {
		kinds = append(kinds, storage.Attachment)
	}
	if err := r.signFor(ctx, grant, m.Intent, kinds...); err != nil {
		return nil, err
	}

	actor := m.Requester.UserID
	r.record(ctx, file, &actor, m.Intent, how, m.SourceAddress)
	return grant, nil
}

func (r *Resolver) resolvePublic(ctx context.Context, m Public) (*Grant, error) {
	if m.Token == "" {
		return nil, ErrNotFound
	}
	file, err := r.files.FindByPublicToken(ctx, m.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to load file: %w", err)
	}
	if file == nil {
		return nil, ErrNotFound
	}
	if file.LinkExpired(r.now()) {
		return nil, ErrLinkExpired
	}

	var actor *uuid.UUID
	isOwner := false
	if m.Requester != nil {
		id := m.Requester.UserID
		actor = &id
		isOwner = file.UserID == id
	}
	grant := r.grant(file, isOwner, m.Intent)
	if err := r.signFor(ctx, grant, m.Intent, grant.Disposition); err != nil {
		return nil, err
	}

	r.record(ctx, file, actor, m.Intent, "via public link", m.SourceAddress)
	return grant, nil
}

// signFor signs the grant's URLs unless the bytes are streamed through the API.
func (r *Resolver) signFor(ctx context.Context, grant *Grant, intent Intent, kinds ...storage.DispositionKind) error {
	if intent == IntentStream {
		return nil
	}
	return grant.sign(ctx, kinds...)
}

func (r *Resolver) record(ctx context.Context, file *models.File, actor *uuid.UUID, intent Intent, how, source string) {
	switch intent {
	case IntentView:
		r.activity.Append(ctx, file.ID, actor, models.ActionView, "Viewed "+how, source)
	case IntentDownload:
		r.activity.Append(ctx, file.ID, actor, models.ActionDownload, "Downloaded "+how, source)
	}
}

func (r *Resolver) grant(file *models.File, isOwner bool, intent Intent) *Grant {
	kind := storage.Inline
	if intent == IntentDownload {
		kind = storage.Attachment
	}
	return &Grant{
		File:        file,
		IsOwner:     isOwner,
		Disposition: kind,
		gateway:     r.gateway,
		ttl:         r.urlTTL,
	}
}

func outcome(err error) string {
	switch err {
	case nil:
		return "allow"
	case ErrNotFoundOrDenied:
		return "denied"
	case ErrNotFound:
		return "not_found"
	case ErrLinkExpired:
		return "expired"
	default:
		return "error"
	}
}
