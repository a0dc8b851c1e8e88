package optimization

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Snapshot is an entity together with its analytics, newest record first.
type Snapshot struct {
	Entity     Entity
	Analytics  []AnalyticsRecord
	AssetCount int
}

func (s Snapshot) TotalRevenue() float64 {
	total := 0.0
	for _, r := range s.Analytics {
		total += r.Revenue
	}
	return total
}

func (s Snapshot) TotalConversions() int {
	total := 0
	for _, r := range s.Analytics {
		total += r.Conversions
	}
	return total
}

// NewSnapshot copies records and sorts them by date descending.
func NewSnapshot(e Entity, records []AnalyticsRecord, assetCount int) Snapshot {
	sorted := make([]AnalyticsRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})
	return Snapshot{Entity: e, Analytics: sorted, AssetCount: assetCount}
}

type snapshotResult struct {
	Snapshot Snapshot
	Err      error
}

// EntityFailure records an entity a batch operation could not process.
type EntityFailure struct {
	ProductID uuid.UUID `json:"productId"`
	Title     string    `json:"title"`
	Error     string    `json:"error"`
}

func loadSnapshot(ctx context.Context, metrics MetricsReader, e Entity) (Snapshot, error) {
	records, err := metrics.ListAnalytics(ctx, e.ID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("list analytics: %w", err)
	}
	for i, r := range records {
		if math.IsNaN(r.Revenue) || math.IsInf(r.Revenue, 0) {
			return Snapshot{}, fmt.Errorf("analytics record %d has invalid revenue %v", i, r.Revenue)
		}
		if r.Date.IsZero() {
			return Snapshot{}, fmt.Errorf("analytics record %d has no date", i)
		}
	}
	assets, err := metrics.AssetCount(ctx, e.ID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("asset count: %w", err)
	}
	return NewSnapshot(e, records, assets), nil
}

// loadSnapshots reads every entity with bounded concurrency. Per-entity errors
// are returned in place; only cancellation of ctx fails the call.
func loadSnapshots(ctx context.Context, metrics MetricsReader, entities []Entity, limit int) ([]snapshotResult, error) {
	out := make([]snapshotResult, len(entities))
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i := range entities {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				out[i] = snapshotResult{Snapshot: Snapshot{Entity: entities[i]}, Err: err}
				return nil
			}
			snap, err := loadSnapshot(gctx, metrics, entities[i])
			if err != nil {
				snap.Entity = entities[i]
			}
			out[i] = snapshotResult{Snapshot: snap, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
