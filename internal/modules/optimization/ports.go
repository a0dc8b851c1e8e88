package optimization

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/yungbote/autopilot-backend/internal/pkg/errors"
)

var (
	ErrVersionConflict = fmt.Errorf("config document version conflict: %w", pkgerrors.ErrConflict)
	ErrDocumentExists  = fmt.Errorf("config document already exists: %w", pkgerrors.ErrAlreadyExists)
	ErrNotFound        = fmt.Errorf("optimization: %w", pkgerrors.ErrNotFound)
	ErrInvalidArgument = fmt.Errorf("optimization: %w", pkgerrors.ErrInvalidArgument)
)

// IsNotFound reports whether err means a referenced entity, test or version is absent.
func IsNotFound(err error) bool {
	return errors.Is(err, pkgerrors.ErrNotFound)
}

const (
	StatusActive   = "ACTIVE"
	StatusArchived = "ARCHIVED"
)

type AnalyticsRecord struct {
	Date        time.Time `json:"date"`
	Revenue     float64   `json:"revenue"`
	Clicks      int       `json:"clicks"`
	Conversions int       `json:"conversions"`
}

type Entity struct {
	ID     uuid.UUID `json:"id"`
	Title  string    `json:"title"`
	Status string    `json:"status"`
}

// MetricsReader supplies the performance history of managed entities.
type MetricsReader interface {
	// ListAnalytics may return records in any order.
	ListAnalytics(ctx context.Context, entityID uuid.UUID) ([]AnalyticsRecord, error)
	AssetCount(ctx context.Context, entityID uuid.UUID) (int, error)
}

type EntityStore interface {
	ListActive(ctx context.Context) ([]Entity, error)
	// Get returns ErrNotFound when the entity does not exist.
	Get(ctx context.Context, id uuid.UUID) (*Entity, error)
	SetStatus(ctx context.Context, id uuid.UUID, status string) error
}

// Document is one versioned JSON document of the ConfigStore.
type Document struct {
	Key     string          `json:"key"`
	Body    json.RawMessage `json:"body"`
	Version int             `json:"version"`
}

type ConfigStore interface {
	// GetDocument returns nil, nil when key has no document.
	GetDocument(ctx context.Context, key string) (*Document, error)
	// CreateDocument fails with ErrDocumentExists when key is taken.
	CreateDocument(ctx context.Context, key string, body json.RawMessage) (*Document, error)
	// ReplaceDocument fails with ErrVersionConflict unless the stored version
	// equals expectedVersion.
	ReplaceDocument(ctx context.Context, key string, body json.RawMessage, expectedVersion int) (*Document, error)
}

// VariantCounts aggregates the observed events of one test arm.
type VariantCounts struct {
	Exposures   int64 `json:"exposures"`
	Clicks      int64 `json:"clicks"`
	Conversions int64 `json:"conversions"`
	Views       int64 `json:"views"`
}

type VariantSampler interface {
	Counts(ctx context.Context, testID string) (a VariantCounts, b VariantCounts, err error)
}
