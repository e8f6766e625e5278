package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lithammer/shortuuid/v4"
	"go.uber.org/zap"

	"github.com/basit/sharelink/models"
	"github.com/basit/sharelink/storage"
)

// --- in-memory registries ---

type memFiles struct {
	mu    sync.Mutex
	files map[uuid.UUID]*models.File
}

func newMemFiles() *memFiles { return &memFiles{files: map[uuid.UUID]*models.File{}} }

func (m *memFiles) Create(_ context.Context, f *models.File) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	cp := *f
	m.files[f.ID] = &cp
	return nil
}

func (m *memFiles) FindByID(_ context.Context, id uuid.UUID) (*models.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.files[id]; ok {
		cp := *f
		return &cp, nil
	}
	return nil, nil
}

func (m *memFiles) FindByPublicToken(_ context.Context, token string) (*models.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.files {
		if f.PublicToken == token {
			cp := *f
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memFiles) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]models.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.File
	for _, f := range m.files {
		if f.UserID == ownerID {
			out = append(out, *f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.After(out[j].UploadedAt) })
	return out, nil
}

func (m *memFiles) UpdateLinkExpiry(_ context.Context, id uuid.UUID, expiresAt *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.files[id]; ok {
		f.LinkExpiresAt = expiresAt
	}
	return nil
}

type memShares struct {
	mu     sync.Mutex
	shares []models.Share
	files  *memFiles
	users  *memUsers
}

func (m *memShares) Create(_ context.Context, s *models.Share) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	m.shares = append(m.shares, *s)
	return nil
}

func (m *memShares) FindActive(_ context.Context, fileID uuid.UUID, email string, now time.Time) (*models.Share, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.shares {
		if s.FileID == fileID && s.InvitedEmail == email && s.Active(now) {
			cp := s
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memShares) ListActiveByEmail(ctx context.Context, email string, now time.Time) ([]models.Share, error) {
	m.mu.Lock()
	var out []models.Share
	for _, s := range m.shares {
		if s.InvitedEmail == email && s.Active(now) {
			out = append(out, s)
		}
	}
	m.mu.Unlock()

	for i := range out {
		f, _ := m.files.FindByID(ctx, out[i].FileID)
		if f != nil {
			out[i].File = *f
			if u, _ := m.users.FindByID(ctx, f.UserID); u != nil {
				out[i].File.User = *u
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memShares) ListByFile(_ context.Context, fileID uuid.UUID) ([]models.Share, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Share
	for _, s := range m.shares {
		if s.FileID == fileID {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type memActivity struct {
	mu      sync.Mutex
	entries []models.ActivityLog
	fail    bool
}

func (m *memActivity) Create(_ context.Context, e *models.ActivityLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("activity table unavailable")
	}
	m.entries = append(m.entries, *e)
	return nil
}

func (m *memActivity) ListByFile(_ context.Context, fileID uuid.UUID) ([]models.ActivityLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ActivityLog
	for _, e := range m.entries {
		if e.FileID == fileID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memActivity) count(fileID uuid.UUID, action models.Action) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.entries {
		if e.FileID == fileID && e.Action == action {
			n++
		}
	}
	return n
}

type memUsers struct {
	users map[uuid.UUID]*models.User
}

func (m *memUsers) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

// --- storage ---

type presignCall struct {
	Key         string
	Disposition storage.Disposition
	TTL         time.Duration
}

type fakeGateway struct {
	mu       sync.Mutex
	objects  map[string][]byte
	presigns []presignCall
	fail     bool
}

func newFakeGateway() *fakeGateway { return &fakeGateway{objects: map[string][]byte{}} }

func (g *fakeGateway) Put(_ context.Context, body io.Reader, _, filename string) (string, error) {
	if g.fail {
		return "", errors.New("bucket unreachable")
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	key := "files/" + uuid.NewString() + "-" + filename
	g.objects[key] = data
	return key, nil
}

func (g *fakeGateway) Presign(_ context.Context, key string, d storage.Disposition, ttl time.Duration) (string, error) {
	if g.fail {
		return "", errors.New("bucket unreachable")
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.presigns = append(g.presigns, presignCall{Key: key, Disposition: d, TTL: ttl})
	return fmt.Sprintf("https://storage.test/%s?disposition=%s", key, d.Kind), nil
}

func (g *fakeGateway) GetStream(_ context.Context, key string) (io.ReadCloser, error) {
	if g.fail {
		return nil, errors.New("bucket unreachable")
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	data, ok := g.objects[key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// --- clock ---

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// --- fixture ---

type fixture struct {
	clock    *testClock
	files    *memFiles
	shares   *memShares
	activity *memActivity
	users    *memUsers
	gateway  *fakeGateway

	logger   *ActivityLogger
	resolver *Resolver
	sharing  *ShareService
	settings *LinkSettings
	library  *FileLibrary
}

var t0 = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func newFixture() *fixture {
	f := &fixture{
		clock:    &testClock{now: t0},
		files:    newMemFiles(),
		activity: &memActivity{},
		users:    &memUsers{users: map[uuid.UUID]*models.User{}},
		gateway:  newFakeGateway(),
	}
	f.shares = &memShares{files: f.files, users: f.users}
	f.logger = NewActivityLogger(f.activity, f.files, zap.NewNop(), f.clock.Now)
	f.resolver = NewResolver(f.files, f.shares, f.gateway, f.logger, time.Hour, f.clock.Now)
	f.sharing = NewShareService(f.files, f.shares, f.users, f.logger, f.clock.Now)
	f.settings = NewLinkSettings(f.files, f.logger)
	f.library = NewFileLibrary(f.files, f.gateway, 50<<20, zap.NewNop(), f.clock.Now)
	return f
}

func (f *fixture) addUser(name, email string) Identity {
	u := &models.User{ID: uuid.New(), Name: name, Email: email}
	f.users.users[u.ID] = u
	return Identity{UserID: u.ID, Email: email}
}

func (f *fixture) addFile(owner Identity, name string) *models.File {
	file := &models.File{
		ID:          uuid.New(),
		UserID:      owner.UserID,
		DisplayName: name,
		StorageKey:  "files/" + uuid.NewString(),
		SizeBytes:   10,
		UploadedAt:  f.clock.Now(),
		PublicToken: shortuuid.New(),
	}
	_ = f.files.Create(context.Background(), file)
	f.gateway.objects[file.StorageKey] = []byte("content of " + name)
	return file
}
