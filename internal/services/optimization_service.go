package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	redisbus "github.com/yungbote/autopilot-backend/internal/clients/redis"
	"github.com/yungbote/autopilot-backend/internal/data/repos"
	types "github.com/yungbote/autopilot-backend/internal/domain"
	"github.com/yungbote/autopilot-backend/internal/modules/optimization"
	"github.com/yungbote/autopilot-backend/internal/observability"
	"github.com/yungbote/autopilot-backend/internal/pkg/dbctx"
	"github.com/yungbote/autopilot-backend/internal/platform/ctxutil"
	"github.com/yungbote/autopilot-backend/internal/platform/logger"
)

// DecisionPublisher is the slice of the redis decision bus the service needs.
type DecisionPublisher interface {
	Publish(ctx context.Context, ev redisbus.DecisionEvent) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, redisbus.DecisionEvent) error { return nil }

// CycleResult is one kill pass followed by one scale pass.
type CycleResult struct {
	Kill  *optimization.KillResult  `json:"kill"`
	Scale *optimization.ScaleResult `json:"scale"`
}

type OptimizationService interface {
	Config() optimization.Config

	KillLowPerformers(ctx context.Context, threshold float64) (*optimization.KillResult, error)
	ScaleWinners(ctx context.Context, threshold float64) (*optimization.ScaleResult, error)
	RunCycle(ctx context.Context) (*CycleResult, error)
	ScaleRecommendations(ctx context.Context) ([]optimization.ScaleRecommendation, error)
	RankProducts(ctx context.Context) ([]optimization.Recommendation, error)
	AnalyzeProduct(ctx context.Context, id uuid.UUID) (*optimization.Recommendation, error)

	CreateTest(ctx context.Context, in optimization.CreateTestInput) (*optimization.ABTest, error)
	CreateCommonTests(ctx context.Context) (*optimization.CommonTestsResult, error)
	AnalyzeTests(ctx context.Context) (*optimization.AnalyzeResult, error)
	TestResults(ctx context.Context) (*optimization.TestSummary, error)
	RecordEvent(ctx context.Context, testID, variant, event string) error

	PromptVersions(ctx context.Context) ([]optimization.PromptVersion, error)
	OptimizePrompts(ctx context.Context) (*optimization.OptimizeResult, error)
	TrackUsage(ctx context.Context, versionID string, sample optimization.UsageSample) (bool, error)
	PromptPerformance(ctx context.Context) (*optimization.PerformanceSummary, error)
}

type optimizationService struct {
	log       *logger.Logger
	cfg       optimization.Config
	strategy  *optimization.StrategyOptimizer
	scaler    *optimization.AutoScaler
	abtests   *optimization.ABTestingEngine
	prompts   *optimization.PromptVersioningEngine
	events    repos.ABTestEventRepo
	publisher DecisionPublisher
	metrics   *observability.Metrics
}

type OptimizationDeps struct {
	Entities  optimization.EntityStore
	Metrics   optimization.MetricsReader
	Configs   optimization.ConfigStore
	Sampler   optimization.VariantSampler
	Events    repos.ABTestEventRepo
	Publisher DecisionPublisher
	Telemetry *observability.Metrics
}

func NewOptimizationService(baseLog *logger.Logger, cfg optimization.Config, deps OptimizationDeps) OptimizationService {
	pub := deps.Publisher
	if pub == nil {
		pub = nopPublisher{}
	}
	return &optimizationService{
		log:       baseLog.With("service", "OptimizationService"),
		cfg:       cfg,
		strategy:  optimization.NewStrategyOptimizer(deps.Entities, deps.Metrics, cfg, baseLog),
		scaler:    optimization.NewAutoScaler(deps.Entities, deps.Metrics, deps.Configs, cfg, baseLog),
		abtests:   optimization.NewABTestingEngine(deps.Configs, deps.Sampler, cfg, baseLog),
		prompts:   optimization.NewPromptVersioningEngine(deps.Configs, cfg, baseLog),
		events:    deps.Events,
		publisher: pub,
		metrics:   deps.Telemetry,
	}
}

func (s *optimizationService) Config() optimization.Config { return s.cfg }

// observe wraps one engine operation in a span and records its outcome.
func observe[T any](ctx context.Context, s *optimizationService, op string, fn func(ctx context.Context) (T, error), attrs ...attribute.KeyValue) (T, error) {
	ctx, span := observability.StartSpan(ctx, "optimization."+op, attrs...)
	start := time.Now()
	out, err := fn(ctx)
	observability.EndSpan(span, err)
	s.metrics.ObserveEngineRun(op, err, time.Since(start))
	if err != nil {
		s.log.Warn("optimization operation failed", "operation", op, "error", err)
	}
	return out, err
}

func (s *optimizationService) KillLowPerformers(ctx context.Context, threshold float64) (*optimization.KillResult, error) {
	res, err := observe(ctx, s, "kill_low_performers", func(ctx context.Context) (*optimization.KillResult, error) {
		return s.strategy.KillLowPerformers(ctx, threshold)
	}, attribute.Float64("threshold", threshold))
	if err != nil {
		return nil, err
	}
	s.metrics.AddDecisions("killed", res.Killed)
	s.metrics.AddDecisions("protected", res.Protected)
	s.metrics.AddDecisions("skipped", res.Skipped)
	s.metrics.AddDecisions("failed", res.Failed)
	for i, id := range res.ProductIDs {
		title := ""
		if i < len(res.Products) {
			title = res.Products[i]
		}
		s.publish(ctx, redisbus.EventProductKilled, id.String(), map[string]interface{}{
			"title":     title,
			"threshold": threshold,
		})
	}
	return res, nil
}

func (s *optimizationService) ScaleWinners(ctx context.Context, threshold float64) (*optimization.ScaleResult, error) {
	res, err := observe(ctx, s, "scale_winners", func(ctx context.Context) (*optimization.ScaleResult, error) {
		return s.scaler.ScaleWinners(ctx, threshold)
	}, attribute.Float64("threshold", threshold))
	if err != nil {
		return nil, err
	}
	s.metrics.AddDecisions("scaled", res.Scaled)
	for _, p := range res.Products {
		s.publish(ctx, redisbus.EventProductScaled, p.ProductID.String(), map[string]interface{}{
			"title":         p.Title,
			"multiplier":    p.Multiplier,
			"videosPerWeek": p.VideosPerWeek,
		})
	}
	return res, nil
}

// RunCycle kills before it scales so an archived product never receives a scaling entry.
func (s *optimizationService) RunCycle(ctx context.Context) (*CycleResult, error) {
	kill, err := s.KillLowPerformers(ctx, s.cfg.KillThreshold)
	if err != nil {
		return nil, fmt.Errorf("kill pass: %w", err)
	}
	scale, err := s.ScaleWinners(ctx, s.cfg.ScaleThreshold)
	if err != nil {
		return &CycleResult{Kill: kill}, fmt.Errorf("scale pass: %w", err)
	}
	return &CycleResult{Kill: kill, Scale: scale}, nil
}

func (s *optimizationService) ScaleRecommendations(ctx context.Context) ([]optimization.ScaleRecommendation, error) {
	return observe(ctx, s, "scale_recommendations", s.scaler.GetRecommendations)
}

func (s *optimizationService) RankProducts(ctx context.Context) ([]optimization.Recommendation, error) {
	return observe(ctx, s, "rank_products", s.strategy.RankAllProducts)
}

func (s *optimizationService) AnalyzeProduct(ctx context.Context, id uuid.UUID) (*optimization.Recommendation, error) {
	return observe(ctx, s, "analyze_product", func(ctx context.Context) (*optimization.Recommendation, error) {
		return s.strategy.AnalyzeProductByID(ctx, id)
	}, attribute.String("product_id", id.String()))
}

func (s *optimizationService) CreateTest(ctx context.Context, in optimization.CreateTestInput) (*optimization.ABTest, error) {
	t, err := observe(ctx, s, "create_ab_test", func(ctx context.Context) (*optimization.ABTest, error) {
		return s.abtests.CreateTest(ctx, in)
	})
	if err == nil {
		s.metrics.IncABTest("created")
	}
	return t, err
}

func (s *optimizationService) CreateCommonTests(ctx context.Context) (*optimization.CommonTestsResult, error) {
	res, err := observe(ctx, s, "create_common_ab_tests", s.abtests.CreateCommonTests)
	if err == nil {
		for range res.Tests {
			s.metrics.IncABTest("created")
		}
	}
	return res, err
}

func (s *optimizationService) AnalyzeTests(ctx context.Context) (*optimization.AnalyzeResult, error) {
	res, err := observe(ctx, s, "analyze_ab_tests", s.abtests.AnalyzeTests)
	if err != nil {
		return nil, err
	}
	for _, r := range res.Results {
		s.metrics.ObserveABConfidence(r.Results.Confidence)
		if r.Status != optimization.TestStatusCompleted {
			continue
		}
		s.metrics.IncABTest("completed")
		s.publish(ctx, redisbus.EventABTestCompleted, r.TestID, map[string]interface{}{
			"name":       r.Name,
			"winner":     r.Results.Winner,
			"confidence": r.Results.Confidence,
		})
	}
	return res, nil
}

func (s *optimizationService) TestResults(ctx context.Context) (*optimization.TestSummary, error) {
	return observe(ctx, s, "ab_test_results", s.abtests.GetResults)
}

// RecordEvent stores one observed sample for a running test.
func (s *optimizationService) RecordEvent(ctx context.Context, testID, variant, event string) error {
	variant = strings.ToUpper(strings.TrimSpace(variant))
	event = strings.ToLower(strings.TrimSpace(event))
	if variant != optimization.VariantA && variant != optimization.VariantB {
		return fmt.Errorf("%w: variant must be A or B", optimization.ErrInvalidArgument)
	}
	switch event {
	case types.EventExposure, types.EventClick, types.EventConversion, types.EventView:
	default:
		return fmt.Errorf("%w: unknown event %q", optimization.ErrInvalidArgument, event)
	}
	t, err := s.abtests.GetTest(ctx, testID)
	if err != nil {
		return err
	}
	if t.Status != optimization.TestStatusRunning {
		return fmt.Errorf("%w: test %s is %s", optimization.ErrInvalidArgument, testID, t.Status)
	}
	if s.events == nil {
		return fmt.Errorf("event recording not configured")
	}
	if _, err := s.events.Create(dbctx.Of(ctx), []*types.ABTestEvent{{
		TestID:  t.ID,
		Variant: variant,
		Event:   event,
	}}); err != nil {
		return fmt.Errorf("record ab test event: %w", err)
	}
	s.metrics.IncABEvent(variant, event)
	return nil
}

func (s *optimizationService) PromptVersions(ctx context.Context) ([]optimization.PromptVersion, error) {
	return observe(ctx, s, "prompt_versions", s.prompts.GetPromptVersions)
}

func (s *optimizationService) OptimizePrompts(ctx context.Context) (*optimization.OptimizeResult, error) {
	res, err := observe(ctx, s, "optimize_prompts", s.prompts.OptimizePrompts)
	if err != nil {
		return nil, err
	}
	created := res.Versions
	if res.NewVersion != nil {
		created = []optimization.PromptVersion{*res.NewVersion}
	}
	s.metrics.AddPromptVersions(len(created))
	for _, v := range created {
		s.publish(ctx, redisbus.EventPromptVersionCreated, v.ID, map[string]interface{}{
			"version":  v.Version,
			"template": v.Template,
		})
	}
	return res, nil
}

func (s *optimizationService) TrackUsage(ctx context.Context, versionID string, sample optimization.UsageSample) (bool, error) {
	found, err := observe(ctx, s, "track_prompt_usage", func(ctx context.Context) (bool, error) {
		return s.prompts.TrackUsage(ctx, versionID, sample)
	}, attribute.String("version_id", versionID))
	if err == nil && found {
		s.metrics.IncPromptUsage()
	}
	return found, err
}

func (s *optimizationService) PromptPerformance(ctx context.Context) (*optimization.PerformanceSummary, error) {
	return observe(ctx, s, "prompt_performance", s.prompts.GetPerformance)
}

// publish never fails the decision that triggered it.
func (s *optimizationService) publish(ctx context.Context, eventType, subjectID string, data map[string]interface{}) {
	ev := redisbus.DecisionEvent{
		Type:       eventType,
		SubjectID:  subjectID,
		Data:       data,
		OccurredAt: time.Now().UTC(),
	}
	if td := ctxutil.GetTraceData(ctx); td != nil {
		ev.TraceID = td.TraceID
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.log.Warn("decision event publish failed", "type", eventType, "subject_id", subjectID, "error", err)
	}
}
