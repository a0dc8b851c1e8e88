package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/autopilot-backend/internal/data/repos"
	types "github.com/yungbote/autopilot-backend/internal/domain"
	"github.com/yungbote/autopilot-backend/internal/modules/optimization"
	pkgerrors "github.com/yungbote/autopilot-backend/internal/pkg/errors"
	"github.com/yungbote/autopilot-backend/internal/pkg/dbctx"
	"github.com/yungbote/autopilot-backend/internal/platform/logger"
)

// CatalogEntityStore exposes products as optimization entities.
type CatalogEntityStore struct {
	log      *logger.Logger
	products repos.ProductRepo
	now      func() time.Time
}

func NewCatalogEntityStore(baseLog *logger.Logger, products repos.ProductRepo) *CatalogEntityStore {
	return &CatalogEntityStore{
		log:      baseLog.With("service", "CatalogEntityStore"),
		products: products,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *CatalogEntityStore) ListActive(ctx context.Context) ([]optimization.Entity, error) {
	rows, err := s.products.ListByStatus(dbctx.Of(ctx), types.ProductStatusActive)
	if err != nil {
		return nil, fmt.Errorf("list active products: %w", err)
	}
	out := make([]optimization.Entity, 0, len(rows))
	for _, p := range rows {
		out = append(out, toEntity(p))
	}
	return out, nil
}

func (s *CatalogEntityStore) Get(ctx context.Context, id uuid.UUID) (*optimization.Entity, error) {
	rows, err := s.products.GetByIDs(dbctx.Of(ctx), []uuid.UUID{id})
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("product %s: %w", id, optimization.ErrNotFound)
	}
	e := toEntity(rows[0])
	return &e, nil
}

// SetStatus only supports archiving; products are reactivated by the onboarding flow.
func (s *CatalogEntityStore) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	if status != optimization.StatusArchived {
		return fmt.Errorf("unsupported status %q: %w", status, optimization.ErrInvalidArgument)
	}
	changed, err := s.products.Archive(dbctx.Of(ctx), id, s.now())
	if err != nil {
		return fmt.Errorf("archive product: %w", err)
	}
	if !changed {
		s.log.Debug("archive was a no-op", "product_id", id)
	}
	return nil
}

func toEntity(p *types.Product) optimization.Entity {
	return optimization.Entity{ID: p.ID, Title: p.Title, Status: p.Status}
}

// CatalogMetricsReader reads product analytics and published asset counts.
type CatalogMetricsReader struct {
	analytics repos.ProductAnalyticsRepo
	videos    repos.ProductVideoRepo
}

func NewCatalogMetricsReader(analytics repos.ProductAnalyticsRepo, videos repos.ProductVideoRepo) *CatalogMetricsReader {
	return &CatalogMetricsReader{analytics: analytics, videos: videos}
}

func (r *CatalogMetricsReader) ListAnalytics(ctx context.Context, entityID uuid.UUID) ([]optimization.AnalyticsRecord, error) {
	rows, err := r.analytics.ListRecent(dbctx.Of(ctx), entityID, 0)
	if err != nil {
		return nil, fmt.Errorf("list analytics: %w", err)
	}
	out := make([]optimization.AnalyticsRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, optimization.AnalyticsRecord{
			Date:        row.Date,
			Revenue:     row.Revenue,
			Clicks:      row.Clicks,
			Conversions: row.Conversions,
		})
	}
	return out, nil
}

func (r *CatalogMetricsReader) AssetCount(ctx context.Context, entityID uuid.UUID) (int, error) {
	n, err := r.videos.CountByProduct(dbctx.Of(ctx), entityID)
	if err != nil {
		return 0, fmt.Errorf("count videos: %w", err)
	}
	return int(n), nil
}

// ConfigDocumentStore backs the optimization documents with the config_document table.
type ConfigDocumentStore struct {
	log  *logger.Logger
	docs repos.ConfigDocumentRepo
	// onConflict observes rejected replaces; nil is allowed.
	onConflict func(key string)
}

func NewConfigDocumentStore(baseLog *logger.Logger, docs repos.ConfigDocumentRepo, onConflict func(key string)) *ConfigDocumentStore {
	return &ConfigDocumentStore{
		log:        baseLog.With("service", "ConfigDocumentStore"),
		docs:       docs,
		onConflict: onConflict,
	}
}

func (s *ConfigDocumentStore) GetDocument(ctx context.Context, key string) (*optimization.Document, error) {
	row, err := s.docs.GetByKey(dbctx.Of(ctx), key)
	if err != nil {
		return nil, fmt.Errorf("get config document %q: %w", key, err)
	}
	if row == nil {
		return nil, nil
	}
	return toDocument(row), nil
}

func (s *ConfigDocumentStore) CreateDocument(ctx context.Context, key string, body json.RawMessage) (*optimization.Document, error) {
	row, err := s.docs.Create(dbctx.Of(ctx), key, body)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrAlreadyExists) {
			return nil, fmt.Errorf("create %q: %w", key, optimization.ErrDocumentExists)
		}
		return nil, fmt.Errorf("create config document %q: %w", key, err)
	}
	return toDocument(row), nil
}

func (s *ConfigDocumentStore) ReplaceDocument(ctx context.Context, key string, body json.RawMessage, expectedVersion int) (*optimization.Document, error) {
	ok, err := s.docs.ReplaceIfVersion(dbctx.Of(ctx), key, body, expectedVersion)
	if err != nil {
		return nil, fmt.Errorf("replace config document %q: %w", key, err)
	}
	if !ok {
		if s.onConflict != nil {
			s.onConflict(key)
		}
		return nil, fmt.Errorf("replace %q at version %d: %w", key, expectedVersion, optimization.ErrVersionConflict)
	}
	return &optimization.Document{Key: key, Body: body, Version: expectedVersion + 1}, nil
}

func toDocument(row *types.ConfigDocument) *optimization.Document {
	return &optimization.Document{
		Key:     row.Key,
		Body:    json.RawMessage(row.Value),
		Version: row.Version,
	}
}

// EventVariantSampler aggregates recorded ab_test_event rows per variant.
type EventVariantSampler struct {
	events repos.ABTestEventRepo
}

func NewEventVariantSampler(events repos.ABTestEventRepo) *EventVariantSampler {
	return &EventVariantSampler{events: events}
}

func (s *EventVariantSampler) Counts(ctx context.Context, testID string) (optimization.VariantCounts, optimization.VariantCounts, error) {
	var a, b optimization.VariantCounts
	rows, err := s.events.CountsByTest(dbctx.Of(ctx), testID)
	if err != nil {
		return a, b, fmt.Errorf("count events for %s: %w", testID, err)
	}
	for _, row := range rows {
		vc := optimization.VariantCounts{
			Exposures:   row.Exposures,
			Clicks:      row.Clicks,
			Conversions: row.Conversions,
			Views:       row.Views,
		}
		switch row.Variant {
		case optimization.VariantA:
			a = vc
		case optimization.VariantB:
			b = vc
		}
	}
	return a, b, nil
}

var (
	_ optimization.EntityStore    = (*CatalogEntityStore)(nil)
	_ optimization.MetricsReader  = (*CatalogMetricsReader)(nil)
	_ optimization.ConfigStore    = (*ConfigDocumentStore)(nil)
	_ optimization.VariantSampler = (*EventVariantSampler)(nil)
)

