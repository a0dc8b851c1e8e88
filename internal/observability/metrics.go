package observability

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	types "github.com/yungbote/autopilot-backend/internal/domain"
	"github.com/yungbote/autopilot-backend/internal/platform/logger"
)

const namespace = "autopilot"

// Metrics owns a private Prometheus registry. All methods are safe on a nil
// receiver so callers can run with metrics disabled.
type Metrics struct {
	registry *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge

	engineRuns     *prometheus.CounterVec
	engineDuration *prometheus.HistogramVec
	decisions      *prometheus.CounterVec
	docConflicts   *prometheus.CounterVec

	abTests      *prometheus.CounterVec
	abConfidence prometheus.Histogram
	abEvents     *prometheus.CounterVec

	promptVersions prometheus.Counter
	promptUsage    prometheus.Counter

	workerJobs *prometheus.CounterVec
	queueDepth *prometheus.GaugeVec
	pgStats    *prometheus.GaugeVec
	redisUp    prometheus.Gauge
	redisPing  prometheus.Gauge

	scrapeInterval time.Duration
}

var (
	initOnce sync.Once
	instance *Metrics
)

// Init builds the process-wide Metrics once.
func Init(log *logger.Logger) *Metrics {
	initOnce.Do(func() {
		instance = New()
		if log != nil {
			log.Info("prometheus metrics initialized")
		}
	})
	return instance
}

func Current() *Metrics {
	return instance
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "api", Name: "requests_total", Help: "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		apiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "api", Name: "request_duration_seconds", Help: "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		apiInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "api", Name: "inflight_requests", Help: "Requests currently being served.",
		}),
		engineRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "engine", Name: "runs_total", Help: "Optimization operations by outcome.",
		}, []string{"operation", "status"}),
		engineDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "engine", Name: "run_duration_seconds", Help: "Optimization operation latency.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"operation"}),
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "engine", Name: "decisions_total", Help: "Per-entity decisions of the kill and scale passes.",
		}, []string{"decision"}),
		docConflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "config", Name: "version_conflicts_total", Help: "Config document writes rejected for a stale version.",
		}, []string{"key"}),
		abTests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "ab", Name: "tests_total", Help: "A/B tests created and completed.",
		}, []string{"event"}),
		abConfidence: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "ab", Name: "confidence_percent", Help: "Confidence of analyzed A/B tests.",
			Buckets: []float64{50, 60, 70, 80, 90, 95, 99, 100},
		}),
		abEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "ab", Name: "events_recorded_total", Help: "Observed variant events.",
		}, []string{"variant", "event"}),
		promptVersions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "prompts", Name: "versions_created_total", Help: "Prompt versions created.",
		}),
		promptUsage: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "prompts", Name: "usage_samples_total", Help: "Usage samples folded into prompt performance.",
		}),
		workerJobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "worker", Name: "jobs_total", Help: "Jobs finished by the worker.",
		}, []string{"job_type", "status"}),
		queueDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "worker", Name: "queue_depth", Help: "Job runs by status.",
		}, []string{"status"}),
		pgStats: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "db", Name: "pool", Help: "database/sql pool statistics.",
		}, []string{"stat"}),
		redisUp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "redis", Name: "up", Help: "1 when the last redis ping succeeded.",
		}),
		redisPing: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "redis", Name: "ping_seconds", Help: "Latency of the last redis ping.",
		}),
		scrapeInterval: 15 * time.Second,
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.engineRuns, m.engineDuration, m.decisions, m.docConflicts,
		m.abTests, m.abConfidence, m.abEvents,
		m.promptVersions, m.promptUsage,
		m.workerJobs, m.queueDepth, m.pgStats, m.redisUp, m.redisPing,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) SetScrapeInterval(d time.Duration) {
	if m == nil || d <= 0 {
		return
	}
	m.scrapeInterval = d
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.apiRequests.WithLabelValues(method, route, status).Inc()
	m.apiLatency.WithLabelValues(method, route).Observe(dur.Seconds())
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) ObserveEngineRun(operation string, err error, dur time.Duration) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.engineRuns.WithLabelValues(operation, status).Inc()
	m.engineDuration.WithLabelValues(operation).Observe(dur.Seconds())
}

func (m *Metrics) AddDecisions(decision string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.decisions.WithLabelValues(decision).Add(float64(n))
}

func (m *Metrics) IncVersionConflict(key string) {
	if m == nil {
		return
	}
	m.docConflicts.WithLabelValues(key).Inc()
}

func (m *Metrics) IncABTest(event string) {
	if m == nil {
		return
	}
	m.abTests.WithLabelValues(event).Inc()
}

func (m *Metrics) ObserveABConfidence(confidence float64) {
	if m == nil {
		return
	}
	m.abConfidence.Observe(confidence)
}

func (m *Metrics) IncABEvent(variant, event string) {
	if m == nil {
		return
	}
	m.abEvents.WithLabelValues(variant, event).Inc()
}

func (m *Metrics) AddPromptVersions(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.promptVersions.Add(float64(n))
}

func (m *Metrics) IncPromptUsage() {
	if m == nil {
		return
	}
	m.promptUsage.Inc()
}

func (m *Metrics) IncWorkerJob(jobType, status string) {
	if m == nil {
		return
	}
	m.workerJobs.WithLabelValues(jobType, status).Inc()
}

func (m *Metrics) StartPostgresCollector(ctx context.Context, log *logger.Logger, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(m.scrapeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sqlDB, err := db.DB()
				if err != nil {
					if log != nil {
						log.Warn("metrics: db stats unavailable", "error", err)
					}
					continue
				}
				stats := sqlDB.Stats()
				m.pgStats.WithLabelValues("open_connections").Set(float64(stats.OpenConnections))
				m.pgStats.WithLabelValues("in_use").Set(float64(stats.InUse))
				m.pgStats.WithLabelValues("idle").Set(float64(stats.Idle))
				m.pgStats.WithLabelValues("wait_count").Set(float64(stats.WaitCount))
				m.pgStats.WithLabelValues("wait_duration_seconds").Set(stats.WaitDuration.Seconds())
				m.pgStats.WithLabelValues("max_open_connections").Set(float64(stats.MaxOpenConnections))
			}
		}
	}()
}

type pinger interface {
	Ping(ctx context.Context) error
}

func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, p pinger) {
	if m == nil || p == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(m.scrapeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				start := time.Now()
				if err := p.Ping(ctx); err != nil {
					m.redisUp.Set(0)
					if log != nil {
						log.Warn("metrics: redis ping failed", "error", err)
					}
					continue
				}
				m.redisUp.Set(1)
				m.redisPing.Set(time.Since(start).Seconds())
			}
		}
	}()
}

func (m *Metrics) StartJobQueueCollector(ctx context.Context, log *logger.Logger, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	statuses := []string{types.JobStatusQueued, types.JobStatusRunning, types.JobStatusSucceeded, types.JobStatusFailed}
	go func() {
		ticker := time.NewTicker(m.scrapeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.collectQueueDepth(ctx, log, db, statuses)
			}
		}
	}()
}

func (m *Metrics) collectQueueDepth(ctx context.Context, log *logger.Logger, db *gorm.DB, statuses []string) {
	for _, s := range statuses {
		m.queueDepth.WithLabelValues(s).Set(0)
	}
	var rows []struct {
		Status string
		Count  int64
	}
	if err := db.WithContext(ctx).
		Model(&types.JobRun{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error; err != nil {
		if log != nil {
			log.Warn("metrics: job queue depth query failed", "error", err)
		}
		return
	}
	for _, row := range rows {
		status := strings.TrimSpace(row.Status)
		if status == "" {
			status = "unknown"
		}
		m.queueDepth.WithLabelValues(status).Set(float64(row.Count))
	}
}
