package optimization

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/autopilot-backend/internal/platform/logger"
)

var testLog = logger.NewNop()

type memConfigStore struct {
	mu        sync.Mutex
	docs      map[string]*Document
	replaces  int
	creates   int
	conflicts int // next N replaces fail with ErrVersionConflict
	failGet   error
}

func newMemConfigStore() *memConfigStore {
	return &memConfigStore{docs: map[string]*Document{}}
}

func (m *memConfigStore) GetDocument(ctx context.Context, key string) (*Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet != nil {
		return nil, m.failGet
	}
	d, ok := m.docs[key]
	if !ok {
		return nil, nil
	}
	cp := *d
	cp.Body = append(json.RawMessage(nil), d.Body...)
	return &cp, nil
}

func (m *memConfigStore) CreateDocument(ctx context.Context, key string, body json.RawMessage) (*Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[key]; ok {
		return nil, ErrDocumentExists
	}
	m.creates++
	d := &Document{Key: key, Body: append(json.RawMessage(nil), body...), Version: 1}
	m.docs[key] = d
	cp := *d
	return &cp, nil
}

func (m *memConfigStore) ReplaceDocument(ctx context.Context, key string, body json.RawMessage, expected int) (*Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[key]
	if !ok {
		return nil, ErrNotFound
	}
	if m.conflicts > 0 {
		m.conflicts--
		d.Version++
		return nil, ErrVersionConflict
	}
	if d.Version != expected {
		return nil, ErrVersionConflict
	}
	m.replaces++
	d.Body = append(json.RawMessage(nil), body...)
	d.Version++
	cp := *d
	return &cp, nil
}

func (m *memConfigStore) put(key, body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[key] = &Document{Key: key, Body: json.RawMessage(body), Version: 1}
}

func (m *memConfigStore) body(key string) map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[key]
	if !ok {
		return nil
	}
	var out map[string]interface{}
	_ = json.Unmarshal(d.Body, &out)
	return out
}

type fakeProduct struct {
	entity  Entity
	records []AnalyticsRecord
	assets  int
	err     error
}

type fakeCatalog struct {
	mu       sync.Mutex
	products []*fakeProduct
	setErr   map[uuid.UUID]error
	listErr  error
}

func (c *fakeCatalog) add(title string, assets int, revenues ...float64) *fakeProduct {
	p := &fakeProduct{
		entity:  Entity{ID: uuid.New(), Title: title, Status: StatusActive},
		records: recordsFor(revenues...),
		assets:  assets,
	}
	c.products = append(c.products, p)
	return p
}

func (c *fakeCatalog) find(id uuid.UUID) *fakeProduct {
	for _, p := range c.products {
		if p.entity.ID == id {
			return p
		}
	}
	return nil
}

func (c *fakeCatalog) ListActive(ctx context.Context) ([]Entity, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.listErr != nil {
		return nil, c.listErr
	}
	var out []Entity
	for _, p := range c.products {
		if p.entity.Status == StatusActive {
			out = append(out, p.entity)
		}
	}
	return out, nil
}

func (c *fakeCatalog) Get(ctx context.Context, id uuid.UUID) (*Entity, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := c.find(id)
	if p == nil {
		return nil, ErrNotFound
	}
	e := p.entity
	return &e, nil
}

func (c *fakeCatalog) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.setErr[id]; err != nil {
		return err
	}
	p := c.find(id)
	if p == nil {
		return ErrNotFound
	}
	p.entity.Status = status
	return nil
}

func (c *fakeCatalog) ListAnalytics(ctx context.Context, id uuid.UUID) ([]AnalyticsRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := c.find(id)
	if p == nil {
		return nil, ErrNotFound
	}
	if p.err != nil {
		return nil, p.err
	}
	return p.records, nil
}

func (c *fakeCatalog) AssetCount(ctx context.Context, id uuid.UUID) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := c.find(id)
	if p == nil {
		return 0, ErrNotFound
	}
	return p.assets, nil
}

func (c *fakeCatalog) status(p *fakeProduct) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return p.entity.Status
}

// recordsFor builds daily records in chronological order; the last revenue is
// the most recent day.
func recordsFor(revenues ...float64) []AnalyticsRecord {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]AnalyticsRecord, 0, len(revenues))
	for i, r := range revenues {
		out = append(out, AnalyticsRecord{
			Date:        base.AddDate(0, 0, i),
			Revenue:     r,
			Clicks:      10,
			Conversions: 1,
		})
	}
	return out
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

type fakeSampler struct {
	counts map[string][2]VariantCounts
	errs   map[string]error
}

func (s *fakeSampler) Counts(ctx context.Context, testID string) (VariantCounts, VariantCounts, error) {
	if err := s.errs[testID]; err != nil {
		return VariantCounts{}, VariantCounts{}, err
	}
	c := s.counts[testID]
	return c[0], c[1], nil
}

var errBoom = errors.New("boom")

func near(got, want float64) bool { return math.Abs(got-want) < 1e-9 }
