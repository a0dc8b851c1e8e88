package app

import (
	"strings"

	redisbus "github.com/yungbote/autopilot-backend/internal/clients/redis"
	"github.com/yungbote/autopilot-backend/internal/platform/logger"
)

type Clients struct {
	// Bus is nil when REDIS_ADDR is unset; decisions are then only logged.
	Bus redisbus.DecisionBus
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	if strings.TrimSpace(cfg.Redis.Addr) == "" {
		log.Warn("REDIS_ADDR not set; decision events will not be published")
		return Clients{}, nil
	}
	bus, err := redisbus.NewDecisionBus(redisbus.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		Channel:  cfg.Redis.Channel,
	}, log)
	if err != nil {
		return Clients{}, err
	}
	return Clients{Bus: bus}, nil
}

func (c Clients) Close() {
	if c.Bus != nil {
		_ = c.Bus.Close()
	}
}
