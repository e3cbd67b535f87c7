package service

import (
	"context"
	"slices"
	"sync"

	"github.com/fluxai/fluxgen/internal/core/domain"
	"github.com/fluxai/fluxgen/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Profile store
// ---------------------------------------------------------------------------

type stubProfileRepo struct {
	mu      sync.Mutex
	records map[string]*domain.EntitlementRecord
	getErr  error
	getErrs []error // consumed one per read, before getErr
	setErrs []error // consumed one per write
	gets    int
	creates int
	updates int
}

func newStubProfileRepo() *stubProfileRepo {
	return &stubProfileRepo{records: make(map[string]*domain.EntitlementRecord)}
}

func cloneRecord(r *domain.EntitlementRecord) *domain.EntitlementRecord {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}

func (r *stubProfileRepo) writes() int { return r.creates + r.updates }

func (r *stubProfileRepo) nextWriteErr() error {
	if len(r.setErrs) == 0 {
		return nil
	}
	err := r.setErrs[0]
	r.setErrs = r.setErrs[1:]
	return err
}

func (r *stubProfileRepo) Get(_ context.Context, id string) (*domain.EntitlementRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gets++
	if len(r.getErrs) > 0 {
		err := r.getErrs[0]
		r.getErrs = r.getErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	if r.getErr != nil {
		return nil, r.getErr
	}
	rec, ok := r.records[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneRecord(rec), nil
}

func (r *stubProfileRepo) Create(_ context.Context, rec *domain.EntitlementRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.nextWriteErr(); err != nil {
		return err
	}
	r.creates++
	if _, exists := r.records[rec.ID]; !exists {
		r.records[rec.ID] = cloneRecord(rec)
	}
	return nil
}

func (r *stubProfileRepo) SetTier(_ context.Context, id string, tier domain.Tier) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.nextWriteErr(); err != nil {
		return err
	}
	r.updates++
	rec, ok := r.records[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	rec.SubscriptionTier = tier
	return nil
}

func (r *stubProfileRepo) ListByEmail(_ context.Context, email string) ([]*domain.EntitlementRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.EntitlementRecord
	for _, rec := range r.records {
		if rec.Email == email {
			out = append(out, cloneRecord(rec))
		}
	}
	slices.SortFunc(out, func(a, b *domain.EntitlementRecord) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

func (r *stubProfileRepo) List(_ context.Context) ([]*domain.EntitlementRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.EntitlementRecord, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, cloneRecord(rec))
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Entitlement cache and bus
// ---------------------------------------------------------------------------

type stubCache struct {
	records     map[string]*domain.EntitlementRecord
	getErr      error
	invalidated []string
}

func newStubCache() *stubCache {
	return &stubCache{records: make(map[string]*domain.EntitlementRecord)}
}

func (c *stubCache) Get(_ context.Context, id string) (*domain.EntitlementRecord, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	rec, ok := c.records[id]
	return cloneRecord(rec), ok, nil
}

func (c *stubCache) Put(_ context.Context, rec *domain.EntitlementRecord) error {
	c.records[rec.ID] = cloneRecord(rec)
	return nil
}

func (c *stubCache) Invalidate(_ context.Context, id string) error {
	delete(c.records, id)
	c.invalidated = append(c.invalidated, id)
	return nil
}

type recordingPublisher struct {
	changes []ports.EntitlementChange
}

func (p *recordingPublisher) Publish(change ports.EntitlementChange) {
	p.changes = append(p.changes, change)
}

// ---------------------------------------------------------------------------
// Generation collaborators
// ---------------------------------------------------------------------------

type stubResolver struct {
	state domain.EntitlementState
	err   error
	calls int
}

func (r *stubResolver) Resolve(_ context.Context, identity *domain.UserIdentity) (domain.EntitlementState, error) {
	r.calls++
	if identity == nil {
		return domain.Unauthenticated(), nil
	}
	return r.state, r.err
}

type stubMarkers struct {
	set    map[string]bool
	getErr error
	setErr error
}

func newStubMarkers() *stubMarkers {
	return &stubMarkers{set: make(map[string]bool)}
}

func (m *stubMarkers) IsSet(_ context.Context, deviceID string) (bool, error) {
	if m.getErr != nil {
		return false, m.getErr
	}
	return m.set[deviceID], nil
}

func (m *stubMarkers) Set(_ context.Context, deviceID string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.set[deviceID] = true
	return nil
}

type stubGenerator struct {
	url     string
	err     error
	calls   int
	prompts []string
}

func (g *stubGenerator) Generate(_ context.Context, _ domain.ModelID, prompt string) (string, error) {
	g.calls++
	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return "", g.err
	}
	return g.url, nil
}

type stubGallery struct {
	records   []domain.GenerationRecord
	appendErr []error // consumed one per call
	appends   int
	listErr   error
}

func (g *stubGallery) Append(_ context.Context, rec *domain.GenerationRecord) error {
	g.appends++
	if len(g.appendErr) > 0 {
		err := g.appendErr[0]
		g.appendErr = g.appendErr[1:]
		if err != nil {
			return err
		}
	}
	g.records = append(g.records, *rec)
	return nil
}

func (g *stubGallery) ListRecent(_ context.Context, limit int) ([]domain.GenerationRecord, error) {
	if g.listErr != nil {
		return nil, g.listErr
	}
	out := make([]domain.GenerationRecord, len(g.records))
	copy(out, g.records)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
