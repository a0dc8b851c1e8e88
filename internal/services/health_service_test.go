package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yungbote/autopilot-backend/internal/data/repos/testutil"
)

type countingPinger struct {
	calls int
	err   error
}

func (p *countingPinger) Ping(context.Context) error {
	p.calls++
	return p.err
}

func TestHealthServiceCachesProbesUntilTTL(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	db := testutil.DB(t)
	redis := &countingPinger{err: errors.New("connection refused")}
	svc := NewHealthService(testutil.Logger(t), 5*time.Second, clock)
	svc.Register("postgres", GormPinger{DB: db})
	svc.Register("redis", redis)

	report := svc.Check(context.Background())
	if report.OK {
		t.Fatalf("report should be degraded while redis is down")
	}
	if len(report.Dependencies) != 2 || !report.Dependencies[0].OK || report.Dependencies[1].OK {
		t.Fatalf("dependencies: %+v", report.Dependencies)
	}

	svc.Check(context.Background())
	if redis.calls != 1 {
		t.Fatalf("probe should be cached: calls=%d", redis.calls)
	}

	now = now.Add(5 * time.Second)
	redis.err = nil
	if report := svc.Check(context.Background()); !report.OK {
		t.Fatalf("report should recover after ttl: %+v", report)
	}
	if redis.calls != 2 {
		t.Fatalf("probe after ttl: calls=%d", redis.calls)
	}
}
