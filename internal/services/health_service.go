package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/autopilot-backend/internal/platform/cache"
	"github.com/yungbote/autopilot-backend/internal/platform/logger"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type DependencyStatus struct {
	Name      string    `json:"name"`
	OK        bool      `json:"ok"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

type HealthReport struct {
	OK           bool               `json:"ok"`
	Dependencies []DependencyStatus `json:"dependencies"`
}

type HealthService struct {
	log     *logger.Logger
	checks  map[string]Pinger
	order   []string
	results *cache.TTL[string, DependencyStatus]
	now     func() time.Time
}

// NewHealthService caches each dependency probe for ttl so frequent liveness
// checks do not hammer the database or redis.
func NewHealthService(baseLog *logger.Logger, ttl time.Duration, now func() time.Time) *HealthService {
	if now == nil {
		now = time.Now
	}
	return &HealthService{
		log:     baseLog.With("service", "HealthService"),
		checks:  map[string]Pinger{},
		results: cache.NewTTL[string, DependencyStatus](ttl, now),
		now:     now,
	}
}

func (h *HealthService) Register(name string, p Pinger) {
	if p == nil {
		return
	}
	if _, ok := h.checks[name]; !ok {
		h.order = append(h.order, name)
	}
	h.checks[name] = p
}

func (h *HealthService) Check(ctx context.Context) HealthReport {
	report := HealthReport{OK: true, Dependencies: make([]DependencyStatus, 0, len(h.order))}
	for _, name := range h.order {
		st, ok := h.results.Get(name)
		if !ok {
			st = h.probe(ctx, name, h.checks[name])
			h.results.Set(name, st)
		}
		if !st.OK {
			report.OK = false
		}
		report.Dependencies = append(report.Dependencies, st)
	}
	return report
}

func (h *HealthService) probe(ctx context.Context, name string, p Pinger) DependencyStatus {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	st := DependencyStatus{Name: name, OK: true, CheckedAt: h.now().UTC()}
	if err := p.Ping(ctx); err != nil {
		st.OK = false
		st.Error = err.Error()
		h.log.Warn("health probe failed", "dependency", name, "error", err)
	}
	return st
}

// GormPinger adapts a gorm handle to Pinger.
type GormPinger struct{ DB *gorm.DB }

func (g GormPinger) Ping(ctx context.Context) error {
	sqlDB, err := g.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
