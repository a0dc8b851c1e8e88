package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/autopilot-backend/internal/platform/logger"
)

const (
	EventProductKilled        = "product.killed"
	EventProductScaled        = "product.scaled"
	EventABTestCompleted      = "abtest.completed"
	EventPromptVersionCreated = "prompt.version_created"
)

// DecisionEvent announces an optimization decision to downstream publishers.
type DecisionEvent struct {
	Type       string                 `json:"type"`
	SubjectID  string                 `json:"subject_id"`
	Data       map[string]interface{} `json:"data,omitempty"`
	TraceID    string                 `json:"trace_id,omitempty"`
	OccurredAt time.Time              `json:"occurred_at"`
}

type DecisionBus interface {
	Publish(ctx context.Context, ev DecisionEvent) error
	StartForwarder(ctx context.Context, onEvent func(ev DecisionEvent)) error
	Ping(ctx context.Context) error
	Close() error
}

type Options struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

type decisionBus struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
}

func NewDecisionBus(opts Options, log *logger.Logger) (DecisionBus, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(opts.Addr)
	if addr == "" {
		return nil, fmt.Errorf("missing redis addr")
	}
	ch := strings.TrimSpace(opts.Channel)
	if ch == "" {
		ch = "autopilot.decisions"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &decisionBus{
		log:     log.With("service", "RedisDecisionBus"),
		rdb:     rdb,
		channel: ch,
	}, nil
}

func (b *decisionBus) Publish(ctx context.Context, ev DecisionEvent) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis decision bus not initialized")
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	raw, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, raw).Err()
}

func (b *decisionBus) StartForwarder(ctx context.Context, onEvent func(ev DecisionEvent)) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis decision bus not initialized")
	}
	sub := b.rdb.Subscribe(ctx, b.channel)

	// ensures subscription actually started
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					return
				}
				var ev DecisionEvent
				if err := json.Unmarshal([]byte(m.Payload), &ev); err != nil {
					b.log.Warn("bad decision event payload", "error", err)
					continue
				}
				onEvent(ev)
			}
		}
	}()

	return nil
}

func (b *decisionBus) Ping(ctx context.Context) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis decision bus not initialized")
	}
	return b.rdb.Ping(ctx).Err()
}

func (b *decisionBus) Close() error {
	if b == nil || b.rdb == nil {
		return nil
	}
	return b.rdb.Close()
}
