package optimization

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/yungbote/autopilot-backend/internal/platform/logger"
)

const (
	PriorityHigh   = "high"
	PriorityNormal = "normal"
)

// ScaleEntry is the per-product slice of the scaling config document.
type ScaleEntry struct {
	Multiplier    float64 `json:"multiplier"`
	VideosPerWeek float64 `json:"videosPerWeek"`
	Priority      string  `json:"priority"`
	AutoScale     bool    `json:"autoScale"`
}

type ScaledProduct struct {
	ProductID     uuid.UUID `json:"productId"`
	Title         string    `json:"title"`
	ROI           float64   `json:"roi"`
	Multiplier    float64   `json:"multiplier"`
	VideosPerWeek float64   `json:"videosPerWeek"`
}

type ScaleResult struct {
	Scaled    int             `json:"scaled"`
	Products  []ScaledProduct `json:"products"`
	Evaluated int             `json:"evaluated"`
	Skipped   int             `json:"skipped"`
	Failed    int             `json:"failed"`
	Failures  []EntityFailure `json:"failures,omitempty"`
}

type ScaleRecommendation struct {
	ProductID         uuid.UUID `json:"productId"`
	ProductTitle      string    `json:"productTitle"`
	ROI               float64   `json:"roi"`
	CurrentVideos     int       `json:"currentVideos"`
	RecommendedVideos int       `json:"recommendedVideos"`
	Multiplier        float64   `json:"multiplier"`
	Action            Action    `json:"action"`
}

// MultiplierFor maps ROI to a production multiplier. It is a non-decreasing step
// function capped at 2.0.
func MultiplierFor(roi float64) float64 {
	switch {
	case roi > 5.0:
		return 2.0
	case roi > 3.0:
		return 1.5
	case roi > 2.0:
		return 1.3
	default:
		return 1.0
	}
}

type AutoScaler struct {
	entities EntityStore
	metrics  MetricsReader
	docs     documentEditor
	cfg      Config
	log      *logger.Logger
}

func NewAutoScaler(entities EntityStore, metrics MetricsReader, configs ConfigStore, cfg Config, baseLog *logger.Logger) *AutoScaler {
	cfg = cfg.withDefaults()
	log := baseLog.With("module", "AutoScaler")
	return &AutoScaler{
		entities: entities,
		metrics:  metrics,
		docs:     documentEditor{store: configs, maxAttempts: cfg.MaxWriteAttempts, log: log},
		cfg:      cfg,
		log:      log,
	}
}

type scaleCandidate struct {
	snap       Snapshot
	roi        float64
	multiplier float64
}

func (a *AutoScaler) candidates(ctx context.Context, threshold float64, res *ScaleResult) ([]scaleCandidate, error) {
	active, err := a.entities.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active entities: %w", err)
	}
	snaps, err := loadSnapshots(ctx, a.metrics, active, a.cfg.Concurrency)
	if err != nil {
		return nil, err
	}
	var out []scaleCandidate
	for _, sr := range snaps {
		if sr.Err != nil {
			a.log.Warn("scale evaluation failed", "product_id", sr.Snapshot.Entity.ID, "error", sr.Err)
			if res != nil {
				res.Failed++
				res.Failures = append(res.Failures, EntityFailure{
					ProductID: sr.Snapshot.Entity.ID,
					Title:     sr.Snapshot.Entity.Title,
					Error:     sr.Err.Error(),
				})
			}
			continue
		}
		if len(sr.Snapshot.Analytics) < a.cfg.MinHistory {
			if res != nil {
				res.Skipped++
			}
			continue
		}
		if res != nil {
			res.Evaluated++
		}
		roi := a.cfg.Costs.ROI(sr.Snapshot.TotalRevenue(), sr.Snapshot.AssetCount)
		if roi <= threshold {
			continue
		}
		out = append(out, scaleCandidate{snap: sr.Snapshot, roi: roi, multiplier: MultiplierFor(roi)})
	}
	return out, nil
}

// ScaleWinners raises the weekly production target of every entity whose ROI
// exceeds threshold. All targets are written in one version-checked update of
// the scaling config document.
func (a *AutoScaler) ScaleWinners(ctx context.Context, threshold float64) (*ScaleResult, error) {
	res := &ScaleResult{Products: []ScaledProduct{}}
	cands, err := a.candidates(ctx, threshold, res)
	if err != nil {
		return nil, err
	}
	if len(cands) == 0 {
		return res, nil
	}

	var scaled []ScaledProduct
	err = a.docs.update(ctx, KeySystemConfig, true, func(f fields) (bool, error) {
		products := map[string]map[string]json.RawMessage{}
		if err := f.decode(fieldProducts, &products); err != nil {
			return false, err
		}
		if products == nil {
			products = map[string]map[string]json.RawMessage{}
		}
		scaled = scaled[:0]
		for _, c := range cands {
			key := c.snap.Entity.ID.String()
			entry := products[key]
			if entry == nil {
				entry = map[string]json.RawMessage{}
			}
			current := a.cfg.DefaultVideosPerWeek
			if raw, ok := entry["videosPerWeek"]; ok {
				var v float64
				if err := json.Unmarshal(raw, &v); err == nil && v > 0 {
					current = v
				}
			}
			vpw := math.Min(current*c.multiplier, a.cfg.MaxVideosPerWeek)
			if err := setEntryFields(entry, ScaleEntry{
				Multiplier:    c.multiplier,
				VideosPerWeek: vpw,
				Priority:      PriorityHigh,
				AutoScale:     true,
			}); err != nil {
				return false, err
			}
			products[key] = entry
			scaled = append(scaled, ScaledProduct{
				ProductID:     c.snap.Entity.ID,
				Title:         c.snap.Entity.Title,
				ROI:           c.roi,
				Multiplier:    c.multiplier,
				VideosPerWeek: vpw,
			})
		}
		return true, f.encode(fieldProducts, products)
	})
	if err != nil {
		return nil, err
	}

	for _, p := range scaled {
		a.log.Info("product scaled", "product_id", p.ProductID, "title", p.Title, "multiplier", p.Multiplier, "videos_per_week", p.VideosPerWeek)
	}
	res.Products = append(res.Products, scaled...)
	res.Scaled = len(scaled)
	return res, nil
}

// setEntryFields overwrites the scaling keys of entry and keeps any others.
func setEntryFields(entry map[string]json.RawMessage, se ScaleEntry) error {
	raw, err := json.Marshal(se)
	if err != nil {
		return err
	}
	var owned map[string]json.RawMessage
	if err := json.Unmarshal(raw, &owned); err != nil {
		return err
	}
	for k, v := range owned {
		entry[k] = v
	}
	return nil
}

// GetRecommendations is the read-only counterpart of ScaleWinners at the
// configured scale threshold.
func (a *AutoScaler) GetRecommendations(ctx context.Context) ([]ScaleRecommendation, error) {
	cands, err := a.candidates(ctx, a.cfg.ScaleThreshold, nil)
	if err != nil {
		return nil, err
	}
	out := make([]ScaleRecommendation, 0, len(cands))
	for _, c := range cands {
		out = append(out, ScaleRecommendation{
			ProductID:         c.snap.Entity.ID,
			ProductTitle:      c.snap.Entity.Title,
			ROI:               c.roi,
			CurrentVideos:     c.snap.AssetCount,
			RecommendedVideos: int(math.Round(float64(c.snap.AssetCount) * c.multiplier)),
			Multiplier:        c.multiplier,
			Action:            ActionScale,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ROI > out[j].ROI })
	return out, nil
}

// ScalingConfig reads the per-product scaling entries.
func (a *AutoScaler) ScalingConfig(ctx context.Context) (map[string]ScaleEntry, error) {
	_, f, err := a.docs.load(ctx, KeySystemConfig, false)
	if err != nil {
		return nil, err
	}
	out := map[string]ScaleEntry{}
	if f == nil {
		return out, nil
	}
	if err := f.decode(fieldProducts, &out); err != nil {
		return nil, err
	}
	return out, nil
}
