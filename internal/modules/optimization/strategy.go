package optimization

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/yungbote/autopilot-backend/internal/platform/logger"
)

type Action string

const (
	ActionKill     Action = "kill"
	ActionScale    Action = "scale"
	ActionOptimize Action = "optimize"
	ActionMaintain Action = "maintain"
)

type Trend string

const (
	TrendUp      Trend = "up"
	TrendDown    Trend = "down"
	TrendNeutral Trend = "neutral"
)

// Priorities of the decision table. Higher runs first.
const (
	PriorityKill     = 10
	PriorityScale    = 9
	PriorityOptimize = 7
	PriorityMaintain = 3
)

const (
	killROIBelow     = 0.5
	scaleROIAbove    = 2.0
	optimizeROIBelow = 1.0
	trendUpFactor    = 1.1
	trendDownFactor  = 0.9
)

type RecommendationMetrics struct {
	ROI         float64 `json:"roi"`
	Revenue     float64 `json:"revenue"`
	Conversions int     `json:"conversions"`
	Trend       Trend   `json:"trend"`
}

type Recommendation struct {
	ProductID    uuid.UUID             `json:"productId"`
	ProductTitle string                `json:"productTitle"`
	Action       Action                `json:"action"`
	Reason       string                `json:"reason"`
	Priority     int                   `json:"priority"`
	Metrics      RecommendationMetrics `json:"metrics"`
}

type KillResult struct {
	Killed     int             `json:"killed"`
	Products   []string        `json:"products"`
	ProductIDs []uuid.UUID     `json:"productIds"`
	Evaluated  int             `json:"evaluated"`
	Skipped    int             `json:"skipped"`
	Protected  int             `json:"protected"`
	Failed     int             `json:"failed"`
	Failures   []EntityFailure `json:"failures,omitempty"`
}

type StrategyOptimizer struct {
	entities EntityStore
	metrics  MetricsReader
	cfg      Config
	log      *logger.Logger
}

func NewStrategyOptimizer(entities EntityStore, metrics MetricsReader, cfg Config, baseLog *logger.Logger) *StrategyOptimizer {
	return &StrategyOptimizer{
		entities: entities,
		metrics:  metrics,
		cfg:      cfg.withDefaults(),
		log:      baseLog.With("module", "StrategyOptimizer"),
	}
}

// KillLowPerformers archives every active entity with enough history whose ROI is
// below threshold. Entities without assets carry no cost and are never archived.
func (s *StrategyOptimizer) KillLowPerformers(ctx context.Context, threshold float64) (*KillResult, error) {
	active, err := s.entities.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active entities: %w", err)
	}
	snaps, err := loadSnapshots(ctx, s.metrics, active, s.cfg.Concurrency)
	if err != nil {
		return nil, err
	}

	res := &KillResult{Products: []string{}, ProductIDs: []uuid.UUID{}}
	for _, sr := range snaps {
		e := sr.Snapshot.Entity
		if sr.Err != nil {
			s.fail(res, e, sr.Err)
			continue
		}
		snap := sr.Snapshot
		if len(snap.Analytics) < s.cfg.MinHistory {
			res.Skipped++
			continue
		}
		res.Evaluated++
		if snap.AssetCount == 0 {
			res.Protected++
			continue
		}
		roi := s.cfg.Costs.ROI(snap.TotalRevenue(), snap.AssetCount)
		if roi >= threshold {
			continue
		}
		if err := s.entities.SetStatus(ctx, e.ID, StatusArchived); err != nil {
			s.fail(res, e, fmt.Errorf("archive: %w", err))
			continue
		}
		s.log.Info("product killed", "product_id", e.ID, "title", e.Title, "roi", roi, "threshold", threshold)
		res.Killed++
		res.Products = append(res.Products, e.Title)
		res.ProductIDs = append(res.ProductIDs, e.ID)
	}
	return res, nil
}

func (s *StrategyOptimizer) fail(res *KillResult, e Entity, err error) {
	s.log.Warn("kill evaluation failed", "product_id", e.ID, "title", e.Title, "error", err)
	res.Failed++
	res.Failures = append(res.Failures, EntityFailure{ProductID: e.ID, Title: e.Title, Error: err.Error()})
}

// AnalyzeProduct classifies one entity, or returns nil when there are too few
// records to compute a trend.
func (s *StrategyOptimizer) AnalyzeProduct(snap Snapshot) *Recommendation {
	if len(snap.Analytics) < s.cfg.MinTrendHistory {
		return nil
	}
	revenue := snap.TotalRevenue()
	roi := s.cfg.Costs.ROI(revenue, snap.AssetCount)
	trend := revenueTrend(snap.Analytics)

	rec := &Recommendation{
		ProductID:    snap.Entity.ID,
		ProductTitle: snap.Entity.Title,
		Metrics: RecommendationMetrics{
			ROI:         roi,
			Revenue:     revenue,
			Conversions: snap.TotalConversions(),
			Trend:       trend,
		},
	}
	switch {
	case roi < killROIBelow:
		rec.Action, rec.Priority = ActionKill, PriorityKill
		rec.Reason = fmt.Sprintf("ROI %.2f is below %.1f", roi, killROIBelow)
	case roi > scaleROIAbove && trend == TrendUp:
		rec.Action, rec.Priority = ActionScale, PriorityScale
		rec.Reason = fmt.Sprintf("ROI %.2f with revenue trending up", roi)
	case roi < optimizeROIBelow && trend == TrendDown:
		rec.Action, rec.Priority = ActionOptimize, PriorityOptimize
		rec.Reason = fmt.Sprintf("ROI %.2f with revenue trending down", roi)
	default:
		rec.Action, rec.Priority = ActionMaintain, PriorityMaintain
		rec.Reason = "Performance is stable"
	}
	return rec
}

// AnalyzeProductByID loads the entity and its history before classifying it.
func (s *StrategyOptimizer) AnalyzeProductByID(ctx context.Context, id uuid.UUID) (*Recommendation, error) {
	e, err := s.entities.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, ErrNotFound
	}
	snap, err := loadSnapshot(ctx, s.metrics, *e)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", id, err)
	}
	return s.AnalyzeProduct(snap), nil
}

// RankAllProducts analyzes every active entity and orders the result by priority,
// then ROI.
func (s *StrategyOptimizer) RankAllProducts(ctx context.Context) ([]Recommendation, error) {
	active, err := s.entities.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active entities: %w", err)
	}
	snaps, err := loadSnapshots(ctx, s.metrics, active, s.cfg.Concurrency)
	if err != nil {
		return nil, err
	}
	out := make([]Recommendation, 0, len(snaps))
	for _, sr := range snaps {
		if sr.Err != nil {
			s.log.Warn("rank: analysis failed", "product_id", sr.Snapshot.Entity.ID, "error", sr.Err)
			continue
		}
		if rec := s.AnalyzeProduct(sr.Snapshot); rec != nil {
			out = append(out, *rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].Metrics.ROI > out[j].Metrics.ROI
	})
	return out, nil
}

func revenueTrend(desc []AnalyticsRecord) Trend {
	mid := len(desc) / 2
	recent, previous := 0.0, 0.0
	for i, r := range desc {
		if i < mid {
			recent += r.Revenue
		} else {
			previous += r.Revenue
		}
	}
	switch {
	case recent > previous*trendUpFactor:
		return TrendUp
	case recent < previous*trendDownFactor:
		return TrendDown
	default:
		return TrendNeutral
	}
}
