package optimization

const (
	DefaultKillThreshold  = 0.5
	DefaultScaleThreshold = 2.0
)

type Config struct {
	Costs CostModel `yaml:"costs"`

	// MinHistory is the number of analytics records an entity needs before the
	// kill and scale passes will touch it.
	MinHistory      int `yaml:"min_history"`
	MinTrendHistory int `yaml:"min_trend_history"`

	KillThreshold  float64 `yaml:"kill_threshold"`
	ScaleThreshold float64 `yaml:"scale_threshold"`

	DefaultVideosPerWeek float64 `yaml:"default_videos_per_week"`
	MaxVideosPerWeek     float64 `yaml:"max_videos_per_week"`

	// DeployConfidence is the percentage a test must exceed to complete.
	DeployConfidence float64 `yaml:"deploy_confidence"`

	MaxWriteAttempts int `yaml:"max_write_attempts"`
	Concurrency      int `yaml:"concurrency"`
}

func DefaultConfig() Config {
	return Config{
		Costs:                DefaultCostModel(),
		MinHistory:           5,
		MinTrendHistory:      2,
		KillThreshold:        DefaultKillThreshold,
		ScaleThreshold:       DefaultScaleThreshold,
		DefaultVideosPerWeek: 7,
		MaxVideosPerWeek:     14,
		DeployConfidence:     95,
		MaxWriteAttempts:     3,
		Concurrency:          4,
	}
}

// withDefaults fills zero fields so a partially populated Config is usable.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Costs == (CostModel{}) {
		c.Costs = d.Costs
	}
	if c.MinHistory <= 0 {
		c.MinHistory = d.MinHistory
	}
	if c.MinTrendHistory <= 0 {
		c.MinTrendHistory = d.MinTrendHistory
	}
	if c.KillThreshold == 0 {
		c.KillThreshold = d.KillThreshold
	}
	if c.ScaleThreshold == 0 {
		c.ScaleThreshold = d.ScaleThreshold
	}
	if c.DefaultVideosPerWeek <= 0 {
		c.DefaultVideosPerWeek = d.DefaultVideosPerWeek
	}
	if c.MaxVideosPerWeek <= 0 {
		c.MaxVideosPerWeek = d.MaxVideosPerWeek
	}
	if c.DeployConfidence <= 0 {
		c.DeployConfidence = d.DeployConfidence
	}
	if c.MaxWriteAttempts <= 0 {
		c.MaxWriteAttempts = d.MaxWriteAttempts
	}
	if c.Concurrency <= 0 {
		c.Concurrency = d.Concurrency
	}
	return c
}
