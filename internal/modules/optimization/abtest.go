package optimization

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/autopilot-backend/internal/platform/logger"
)

const (
	TestStatusRunning   = "running"
	TestStatusCompleted = "completed"

	VariantA = "A"
	VariantB = "B"
)

// Interval is a 95% Wilson score interval on a variant's rate.
type Interval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

type ABTestResults struct {
	VariantAValue  float64 `json:"variantAValue"`
	VariantBValue  float64 `json:"variantBValue"`
	// Set only for rate metrics (ctr, conversions).
	VariantAInterval *Interval `json:"variantAInterval,omitempty"`
	VariantBInterval *Interval `json:"variantBInterval,omitempty"`
	Winner         string  `json:"winner"`
	Confidence     float64 `json:"confidence"`
	Recommendation string  `json:"recommendation"`
}

type ABTest struct {
	ID          string                 `json:"id"`
	Name        string                 `json:"name"`
	VariantA    map[string]interface{} `json:"variantA"`
	VariantB    map[string]interface{} `json:"variantB"`
	Metric      Metric                 `json:"metric"`
	Status      string                 `json:"status"`
	CreatedAt   time.Time              `json:"createdAt"`
	CompletedAt *time.Time             `json:"completedAt,omitempty"`
	Results     *ABTestResults         `json:"results,omitempty"`
}

type CreateTestInput struct {
	Name     string                 `json:"name"`
	VariantA map[string]interface{} `json:"variantA"`
	VariantB map[string]interface{} `json:"variantB"`
	Metric   Metric                 `json:"metric"`
}

type AnalysisResult struct {
	TestID  string        `json:"testId"`
	Name    string        `json:"name"`
	Metric  Metric        `json:"metric"`
	Status  string        `json:"status"`
	Results ABTestResults `json:"results"`
}

type AnalyzeResult struct {
	Analyzed  int              `json:"analyzed"`
	Completed int              `json:"completed"`
	Failed    int              `json:"failed"`
	Results   []AnalysisResult `json:"results"`
}

type TestSummary struct {
	Total     int      `json:"total"`
	Running   int      `json:"running"`
	Completed int      `json:"completed"`
	Tests     []ABTest `json:"tests"`
}

type CommonTestsResult struct {
	Created int      `json:"created"`
	Tests   []ABTest `json:"tests"`
}

type ABTestingEngine struct {
	docs    documentEditor
	sampler VariantSampler
	cfg     Config
	log     *logger.Logger
	now     func() time.Time
}

func NewABTestingEngine(configs ConfigStore, sampler VariantSampler, cfg Config, baseLog *logger.Logger) *ABTestingEngine {
	cfg = cfg.withDefaults()
	log := baseLog.With("module", "ABTestingEngine")
	return &ABTestingEngine{
		docs:    documentEditor{store: configs, maxAttempts: cfg.MaxWriteAttempts, log: log},
		sampler: sampler,
		cfg:     cfg,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (e *ABTestingEngine) CreateTest(ctx context.Context, in CreateTestInput) (*ABTest, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: test name is required", ErrInvalidArgument)
	}
	metric, err := ParseMetric(string(in.Metric))
	if err != nil {
		return nil, err
	}
	test := ABTest{
		ID:        "test_" + uuid.NewString(),
		Name:      name,
		VariantA:  nonNilPayload(in.VariantA),
		VariantB:  nonNilPayload(in.VariantB),
		Metric:    metric,
		Status:    TestStatusRunning,
		CreatedAt: e.now(),
	}
	err = e.docs.update(ctx, KeyABTestingConfig, true, func(f fields) (bool, error) {
		var tests []ABTest
		if err := f.decode(fieldABTests, &tests); err != nil {
			return false, err
		}
		tests = append(tests, test)
		return true, f.encode(fieldABTests, tests)
	})
	if err != nil {
		return nil, err
	}
	e.log.Info("ab test created", "test_id", test.ID, "name", test.Name, "metric", test.Metric)
	return &test, nil
}

// AnalyzeTests evaluates every running test against its observed events. Tests
// whose confidence exceeds the deploy threshold are completed and their results
// persisted in a single document write; the rest are only reported.
func (e *ABTestingEngine) AnalyzeTests(ctx context.Context) (*AnalyzeResult, error) {
	_, f, err := e.docs.load(ctx, KeyABTestingConfig, true)
	if err != nil {
		return nil, err
	}
	var tests []ABTest
	if err := f.decode(fieldABTests, &tests); err != nil {
		return nil, err
	}

	res := &AnalyzeResult{Results: []AnalysisResult{}}
	finished := map[string]ABTestResults{}
	for _, t := range tests {
		if t.Status != TestStatusRunning {
			continue
		}
		results, err := e.evaluate(ctx, t)
		if err != nil {
			e.log.Warn("ab test analysis failed", "test_id", t.ID, "error", err)
			res.Failed++
			continue
		}
		res.Analyzed++
		status := TestStatusRunning
		if results.Confidence > e.cfg.DeployConfidence {
			status = TestStatusCompleted
			finished[t.ID] = results
		}
		res.Results = append(res.Results, AnalysisResult{
			TestID:  t.ID,
			Name:    t.Name,
			Metric:  t.Metric,
			Status:  status,
			Results: results,
		})
	}
	if len(finished) == 0 {
		return res, nil
	}

	completedAt := e.now()
	completed := 0
	err = e.docs.update(ctx, KeyABTestingConfig, true, func(f fields) (bool, error) {
		var current []ABTest
		if err := f.decode(fieldABTests, &current); err != nil {
			return false, err
		}
		completed = 0
		for i := range current {
			results, ok := finished[current[i].ID]
			if !ok || current[i].Status != TestStatusRunning {
				continue
			}
			r := results
			current[i].Status = TestStatusCompleted
			current[i].Results = &r
			current[i].CompletedAt = &completedAt
			completed++
		}
		if completed == 0 {
			return false, nil
		}
		return true, f.encode(fieldABTests, current)
	})
	if err != nil {
		return nil, err
	}
	res.Completed = completed
	for id, r := range finished {
		e.log.Info("ab test completed", "test_id", id, "winner", r.Winner, "confidence", r.Confidence)
	}
	return res, nil
}

func (e *ABTestingEngine) evaluate(ctx context.Context, t ABTest) (ABTestResults, error) {
	a, b, err := e.sampler.Counts(ctx, t.ID)
	if err != nil {
		return ABTestResults{}, fmt.Errorf("sample variants: %w", err)
	}
	cmp, err := t.Metric.compare(a, b)
	if err != nil {
		return ABTestResults{}, err
	}
	winner := VariantB
	if cmp.AValue > cmp.BValue {
		winner = VariantA
	}
	confidence := confidencePercent(cmp.PAHigher)
	rec := fmt.Sprintf("Continue testing — confidence at %s%%", strconv.FormatFloat(confidence, 'f', -1, 64))
	if confidence > e.cfg.DeployConfidence {
		rec = "Deploy variant " + winner
	}
	return ABTestResults{
		VariantAValue:    cmp.AValue,
		VariantBValue:    cmp.BValue,
		VariantAInterval: cmp.AInterval,
		VariantBInterval: cmp.BInterval,
		Winner:           winner,
		Confidence:       confidence,
		Recommendation:   rec,
	}, nil
}

// confidencePercent turns P(A>B) into the probability of whichever arm leads,
// as a percentage in [50, 100] rounded to one decimal.
func confidencePercent(pAHigher float64) float64 {
	if math.IsNaN(pAHigher) {
		return 50
	}
	p := math.Max(pAHigher, 1-pAHigher) * 100
	p = math.Round(p*10) / 10
	return math.Min(100, math.Max(50, p))
}

func (e *ABTestingEngine) GetResults(ctx context.Context) (*TestSummary, error) {
	_, f, err := e.docs.load(ctx, KeyABTestingConfig, false)
	if err != nil {
		return nil, err
	}
	out := &TestSummary{Tests: []ABTest{}}
	if f == nil {
		return out, nil
	}
	if err := f.decode(fieldABTests, &out.Tests); err != nil {
		return nil, err
	}
	if out.Tests == nil {
		out.Tests = []ABTest{}
	}
	out.Total = len(out.Tests)
	for _, t := range out.Tests {
		switch t.Status {
		case TestStatusRunning:
			out.Running++
		case TestStatusCompleted:
			out.Completed++
		}
	}
	return out, nil
}

// GetTest returns ErrNotFound for an unknown id.
func (e *ABTestingEngine) GetTest(ctx context.Context, id string) (*ABTest, error) {
	summary, err := e.GetResults(ctx)
	if err != nil {
		return nil, err
	}
	for i := range summary.Tests {
		if summary.Tests[i].ID == id {
			return &summary.Tests[i], nil
		}
	}
	return nil, fmt.Errorf("ab test %q: %w", id, ErrNotFound)
}

// CommonTests are the bootstrap experiments every new deployment starts with.
func CommonTests() []CreateTestInput {
	return []CreateTestInput{
		{
			Name:     "Voice Tone: Enthusiastic vs Educational",
			VariantA: map[string]interface{}{"tone": "enthusiastic"},
			VariantB: map[string]interface{}{"tone": "educational"},
			Metric:   MetricCTR,
		},
		{
			Name:     "CTA Position: Start vs End",
			VariantA: map[string]interface{}{"ctaPosition": "start"},
			VariantB: map[string]interface{}{"ctaPosition": "end"},
			Metric:   MetricConversions,
		},
		{
			Name:     "Video Length: 30s vs 60s",
			VariantA: map[string]interface{}{"durationSeconds": 30},
			VariantB: map[string]interface{}{"durationSeconds": 60},
			Metric:   MetricViews,
		},
		{
			Name:     "Thumbnail Style: Product vs Lifestyle",
			VariantA: map[string]interface{}{"thumbnailStyle": "product"},
			VariantB: map[string]interface{}{"thumbnailStyle": "lifestyle"},
			Metric:   MetricCTR,
		},
	}
}

func (e *ABTestingEngine) CreateCommonTests(ctx context.Context) (*CommonTestsResult, error) {
	out := &CommonTestsResult{Tests: []ABTest{}}
	for _, in := range CommonTests() {
		t, err := e.CreateTest(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("create %q: %w", in.Name, err)
		}
		out.Tests = append(out.Tests, *t)
	}
	out.Created = len(out.Tests)
	return out, nil
}

func nonNilPayload(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return map[string]interface{}{}
	}
	return m
}
