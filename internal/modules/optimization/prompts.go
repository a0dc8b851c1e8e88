package optimization

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/autopilot-backend/internal/platform/logger"
)

type PromptPerformance struct {
	Uses           int     `json:"uses"`
	AvgCTR         float64 `json:"avgCTR"`
	AvgConversions float64 `json:"avgConversions"`
	AvgRevenue     float64 `json:"avgRevenue"`
}

type PromptVersion struct {
	ID          string                 `json:"id"`
	Version     int                    `json:"version"`
	Template    string                 `json:"template"`
	Parameters  map[string]interface{} `json:"parameters"`
	Performance PromptPerformance      `json:"performance"`
	CreatedAt   time.Time              `json:"createdAt"`
}

// UsageSample is one observation of a prompt version in production.
type UsageSample struct {
	CTR         float64 `json:"ctr"`
	Conversions float64 `json:"conversions"`
	Revenue     float64 `json:"revenue"`
}

// OptimizeResult is either a bootstrap (Created and Versions set) or one
// iteration (BestVersion, NewVersion and Improvement set).
type OptimizeResult struct {
	Created     int             `json:"created,omitempty"`
	Versions    []PromptVersion `json:"versions,omitempty"`
	BestVersion *PromptVersion  `json:"bestVersion,omitempty"`
	NewVersion  *PromptVersion  `json:"newVersion,omitempty"`
	Improvement float64         `json:"improvement"`
}

type PerformanceSummary struct {
	Total    int             `json:"total"`
	Best     *PromptVersion  `json:"best"`
	Worst    *PromptVersion  `json:"worst"`
	Versions []PromptVersion `json:"versions"`
}

var seedPrompts = []struct {
	template   string
	parameters map[string]interface{}
}{
	{"enthusiastic", map[string]interface{}{"tone": "enthusiastic", "style": "energetic", "hook": "question"}},
	{"educational", map[string]interface{}{"tone": "educational", "style": "informative", "hook": "statistic"}},
	{"storytelling", map[string]interface{}{"tone": "storytelling", "style": "narrative", "hook": "story"}},
}

type PromptVersioningEngine struct {
	docs documentEditor
	log  *logger.Logger
	now  func() time.Time
}

func NewPromptVersioningEngine(configs ConfigStore, cfg Config, baseLog *logger.Logger) *PromptVersioningEngine {
	cfg = cfg.withDefaults()
	log := baseLog.With("module", "PromptVersioningEngine")
	return &PromptVersioningEngine{
		docs: documentEditor{store: configs, maxAttempts: cfg.MaxWriteAttempts, log: log},
		log:  log,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (p *PromptVersioningEngine) GetPromptVersions(ctx context.Context) ([]PromptVersion, error) {
	_, f, err := p.docs.load(ctx, KeyPromptVersioning, true)
	if err != nil {
		return nil, err
	}
	var versions []PromptVersion
	if err := f.decode(fieldPromptVersions, &versions); err != nil {
		return nil, err
	}
	if versions == nil {
		versions = []PromptVersion{}
	}
	return versions, nil
}

// OptimizePrompts seeds three versions into an empty store, or appends one new
// version derived from the current best performer.
func (p *PromptVersioningEngine) OptimizePrompts(ctx context.Context) (*OptimizeResult, error) {
	var out *OptimizeResult
	err := p.docs.update(ctx, KeyPromptVersioning, true, func(f fields) (bool, error) {
		var versions []PromptVersion
		if err := f.decode(fieldPromptVersions, &versions); err != nil {
			return false, err
		}
		if len(versions) == 0 {
			seeds := p.seedVersions()
			out = &OptimizeResult{Created: len(seeds), Versions: seeds}
			return true, f.encode(fieldPromptVersions, seeds)
		}

		best := bestByRevenue(versions)
		next := PromptVersion{
			ID:         uuid.NewString(),
			Version:    maxVersion(versions) + 1,
			Template:   best.Template + "-variant",
			Parameters: derivedParameters(best),
			CreatedAt:  p.now(),
		}
		improvement := revenueImprovement(versions)
		bestCopy := best
		out = &OptimizeResult{BestVersion: &bestCopy, NewVersion: &next, Improvement: improvement}
		versions = append(versions, next)
		return true, f.encode(fieldPromptVersions, versions)
	})
	if err != nil {
		return nil, err
	}
	if out.NewVersion != nil {
		p.log.Info("prompt version created", "version", out.NewVersion.Version, "based_on", out.BestVersion.Version, "improvement", out.Improvement)
	} else {
		p.log.Info("prompt versions seeded", "created", out.Created)
	}
	return out, nil
}

func (p *PromptVersioningEngine) seedVersions() []PromptVersion {
	now := p.now()
	out := make([]PromptVersion, 0, len(seedPrompts))
	for i, s := range seedPrompts {
		params := make(map[string]interface{}, len(s.parameters))
		for k, v := range s.parameters {
			params[k] = v
		}
		out = append(out, PromptVersion{
			ID:         uuid.NewString(),
			Version:    i + 1,
			Template:   s.template,
			Parameters: params,
			CreatedAt:  now,
		})
	}
	return out
}

// TrackUsage folds one sample into the rolling averages of a version. It reports
// false, and writes nothing, when the version does not exist.
func (p *PromptVersioningEngine) TrackUsage(ctx context.Context, versionID string, sample UsageSample) (bool, error) {
	found := false
	err := p.docs.update(ctx, KeyPromptVersioning, false, func(f fields) (bool, error) {
		var versions []PromptVersion
		if err := f.decode(fieldPromptVersions, &versions); err != nil {
			return false, err
		}
		found = false
		for i := range versions {
			if versions[i].ID != versionID {
				continue
			}
			versions[i].Performance = versions[i].Performance.observe(sample)
			found = true
			break
		}
		if !found {
			return false, nil
		}
		return true, f.encode(fieldPromptVersions, versions)
	})
	if err != nil {
		return false, err
	}
	if !found {
		p.log.Debug("track usage for unknown prompt version", "version_id", versionID)
	}
	return found, nil
}

func (pp PromptPerformance) observe(s UsageSample) PromptPerformance {
	n := float64(pp.Uses)
	return PromptPerformance{
		Uses:           pp.Uses + 1,
		AvgCTR:         (pp.AvgCTR*n + s.CTR) / (n + 1),
		AvgConversions: (pp.AvgConversions*n + s.Conversions) / (n + 1),
		AvgRevenue:     (pp.AvgRevenue*n + s.Revenue) / (n + 1),
	}
}

func (p *PromptVersioningEngine) GetPerformance(ctx context.Context) (*PerformanceSummary, error) {
	versions, err := p.GetPromptVersions(ctx)
	if err != nil {
		return nil, err
	}
	sorted := make([]PromptVersion, len(versions))
	copy(sorted, versions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Performance.AvgRevenue > sorted[j].Performance.AvgRevenue
	})
	out := &PerformanceSummary{Total: len(sorted), Versions: sorted}
	if len(sorted) > 0 {
		best, worst := sorted[0], sorted[len(sorted)-1]
		out.Best, out.Worst = &best, &worst
	}
	return out, nil
}

// GetVersion returns ErrNotFound for an unknown id.
func (p *PromptVersioningEngine) GetVersion(ctx context.Context, id string) (*PromptVersion, error) {
	versions, err := p.GetPromptVersions(ctx)
	if err != nil {
		return nil, err
	}
	for i := range versions {
		if versions[i].ID == id {
			return &versions[i], nil
		}
	}
	return nil, fmt.Errorf("prompt version %q: %w", id, ErrNotFound)
}

// bestByRevenue keeps the earliest entry on ties.
func bestByRevenue(versions []PromptVersion) PromptVersion {
	best := versions[0]
	for _, v := range versions[1:] {
		if v.Performance.AvgRevenue > best.Performance.AvgRevenue {
			best = v
		}
	}
	return best
}

func maxVersion(versions []PromptVersion) int {
	m := 0
	for _, v := range versions {
		if v.Version > m {
			m = v.Version
		}
	}
	return m
}

func derivedParameters(best PromptVersion) map[string]interface{} {
	params := make(map[string]interface{}, len(best.Parameters)+2)
	for k, v := range best.Parameters {
		params[k] = v
	}
	params["optimized"] = true
	params["basedOn"] = best.Version
	return params
}

// revenueImprovement is the percentage change of avgRevenue from the earliest to
// the latest version.
func revenueImprovement(versions []PromptVersion) float64 {
	if len(versions) < 2 {
		return 0
	}
	ordered := make([]PromptVersion, len(versions))
	copy(ordered, versions)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
		}
		return ordered[i].Version < ordered[j].Version
	})
	first := ordered[0].Performance.AvgRevenue
	last := ordered[len(ordered)-1].Performance.AvgRevenue
	if first == 0 {
		return 0
	}
	return math.Round((last-first)/first*10000) / 100
}
