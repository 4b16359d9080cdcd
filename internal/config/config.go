package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Redis      RedisConfig      `yaml:"redis"`
	Postgres   PostgresConfig   `yaml:"postgres"`
	Kafka      KafkaConfig      `yaml:"kafka"`
	ClickHouse ClickHouseConfig `yaml:"clickhouse"`
	GeoIP      GeoIPConfig      `yaml:"geoip"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
	Cache      CacheConfig      `yaml:"cache"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Session    SessionConfig    `yaml:"session"`
	Scoring    ScoringConfig    `yaml:"scoring"`
}

type ServerConfig struct {
	HTTPPort int `yaml:"http_port"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

type KafkaConfig struct {
	Brokers []string          `yaml:"brokers"`
	Topics  map[string]string `yaml:"topics"`
}

type ClickHouseConfig struct {
	Addr         string `yaml:"addr"`
	Database     string `yaml:"database"`
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
}

type GeoIPConfig struct {
	DatabasePath string `yaml:"database_path"`
}

type RateLimitConfig struct {
	RequestsPerSecond int `yaml:"requests_per_second"`
}

type CacheConfig struct {
	ProfileTTL time.Duration `yaml:"profile_ttl"`
}

type TelemetryConfig struct {
	BatchSize     int           `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
}

type SessionConfig struct {
	UpdateInterval time.Duration `yaml:"update_interval"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
}

// ScoringConfig groups every tunable heuristic constant used by the engines.
// The values are hand-tuned with no stated empirical derivation; they are
// exposed here so deployments can override them, not because better values
// are known.
type ScoringConfig struct {
	Persona    PersonaWeights   `yaml:"persona"`
	Intent     IntentConfig     `yaml:"intent"`
	Adaptation AdaptationConfig `yaml:"adaptation"`
}

// PersonaWeights are the per-signal weights for persona matching. They must
// sum to 1.0.
type PersonaWeights struct {
	ClickSpeed       float64 `yaml:"click_speed"`
	ScrollPattern    float64 `yaml:"scroll_pattern"`
	NavigationDepth  float64 `yaml:"navigation_depth"`
	TimeDistribution float64 `yaml:"time_distribution"`
	InteractionStyle float64 `yaml:"interaction_style"`
}

// Sum returns the total of all weights.
func (w PersonaWeights) Sum() float64 {
	return w.ClickSpeed + w.ScrollPattern + w.NavigationDepth + w.TimeDistribution + w.InteractionStyle
}

// IntentWeights are the per-subscore weights for intent scoring. They must
// sum to 1.0.
type IntentWeights struct {
	PageSequence       float64 `yaml:"page_sequence"`
	TimeAllocation     float64 `yaml:"time_allocation"`
	InteractionDepth   float64 `yaml:"interaction_depth"`
	ContentConsumption float64 `yaml:"content_consumption"`
	RepeatVisits       float64 `yaml:"repeat_visits"`
}

type IntentConfig struct {
	Weights IntentWeights `yaml:"weights"`

	// Funnel stage thresholds on the final 0-100 score.
	PurchaseThreshold      float64 `yaml:"purchase_threshold"`
	DecisionThreshold      float64 `yaml:"decision_threshold"`
	ConsiderationThreshold float64 `yaml:"consideration_threshold"`

	// Reference dwell time a page visit is normalized against.
	DwellReferenceSec float64 `yaml:"dwell_reference_sec"`

	// Interactions-per-minute thresholds for urgency.
	HighUrgencyRate   float64 `yaml:"high_urgency_rate"`
	MediumUrgencyRate float64 `yaml:"medium_urgency_rate"`
}

type AdaptationConfig struct {
	SlowLoadMs          float64 `yaml:"slow_load_ms"`
	CriticalLoadMs      float64 `yaml:"critical_load_ms"`
	SlowRenderMs        float64 `yaml:"slow_render_ms"`
	LowScrollDepth      float64 `yaml:"low_scroll_depth"`
	HighBounceRate      float64 `yaml:"high_bounce_rate"`
	LowConversionRate   float64 `yaml:"low_conversion_rate"`
	HighAbandonmentRate float64 `yaml:"high_abandonment_rate"`

	// Learning loop bounds over the outcome history.
	HistorySize      int     `yaml:"history_size"`
	RegressionFloor  float64 `yaml:"regression_floor"`
	ReinforceCeiling float64 `yaml:"reinforce_ceiling"`
}

// DefaultScoring returns the hand-tuned scoring constants.
func DefaultScoring() ScoringConfig {
	return ScoringConfig{
		Persona: PersonaWeights{
			ClickSpeed:       0.15,
			ScrollPattern:    0.20,
			NavigationDepth:  0.25,
			TimeDistribution: 0.20,
			InteractionStyle: 0.20,
		},
		Intent: IntentConfig{
			Weights: IntentWeights{
				PageSequence:       0.30,
				TimeAllocation:     0.25,
				InteractionDepth:   0.20,
				ContentConsumption: 0.15,
				RepeatVisits:       0.10,
			},
			PurchaseThreshold:      80,
			DecisionThreshold:      60,
			ConsiderationThreshold: 40,
			DwellReferenceSec:      60,
			HighUrgencyRate:        10,
			MediumUrgencyRate:      5,
		},
		Adaptation: AdaptationConfig{
			SlowLoadMs:          3000,
			CriticalLoadMs:      5000,
			SlowRenderMs:        1500,
			LowScrollDepth:      0.3,
			HighBounceRate:      0.6,
			LowConversionRate:   0.02,
			HighAbandonmentRate: 0.5,
			HistorySize:         100,
			RegressionFloor:     0.1,
			ReinforceCeiling:    0.3,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.HTTPPort == 0 {
		cfg.Server.HTTPPort = 8080
	}
	if cfg.RateLimit.RequestsPerSecond == 0 {
		cfg.RateLimit.RequestsPerSecond = 100
	}
	if cfg.Cache.ProfileTTL == 0 {
		cfg.Cache.ProfileTTL = 30 * time.Minute
	}
	if cfg.Telemetry.BatchSize == 0 {
		cfg.Telemetry.BatchSize = 100
	}
	if cfg.Telemetry.FlushInterval == 0 {
		cfg.Telemetry.FlushInterval = 5 * time.Second
	}
	if cfg.Session.UpdateInterval == 0 {
		cfg.Session.UpdateInterval = 5 * time.Second
	}
	if cfg.Session.IdleTimeout == 0 {
		cfg.Session.IdleTimeout = 30 * time.Minute
	}
	if cfg.ClickHouse.MaxOpenConns == 0 {
		cfg.ClickHouse.MaxOpenConns = 10
	}
	if cfg.ClickHouse.MaxIdleConns == 0 {
		cfg.ClickHouse.MaxIdleConns = 5
	}

	def := DefaultScoring()
	if cfg.Scoring.Persona.Sum() == 0 {
		cfg.Scoring.Persona = def.Persona
	}
	if cfg.Scoring.Intent.Weights == (IntentWeights{}) {
		cfg.Scoring.Intent.Weights = def.Intent.Weights
	}
	if cfg.Scoring.Intent.PurchaseThreshold == 0 {
		cfg.Scoring.Intent.PurchaseThreshold = def.Intent.PurchaseThreshold
	}
	if cfg.Scoring.Intent.DecisionThreshold == 0 {
		cfg.Scoring.Intent.DecisionThreshold = def.Intent.DecisionThreshold
	}
	if cfg.Scoring.Intent.ConsiderationThreshold == 0 {
		cfg.Scoring.Intent.ConsiderationThreshold = def.Intent.ConsiderationThreshold
	}
	if cfg.Scoring.Intent.DwellReferenceSec == 0 {
		cfg.Scoring.Intent.DwellReferenceSec = def.Intent.DwellReferenceSec
	}
	if cfg.Scoring.Intent.HighUrgencyRate == 0 {
		cfg.Scoring.Intent.HighUrgencyRate = def.Intent.HighUrgencyRate
	}
	if cfg.Scoring.Intent.MediumUrgencyRate == 0 {
		cfg.Scoring.Intent.MediumUrgencyRate = def.Intent.MediumUrgencyRate
	}
	if cfg.Scoring.Adaptation.SlowLoadMs == 0 {
		cfg.Scoring.Adaptation.SlowLoadMs = def.Adaptation.SlowLoadMs
	}
	if cfg.Scoring.Adaptation.CriticalLoadMs == 0 {
		cfg.Scoring.Adaptation.CriticalLoadMs = def.Adaptation.CriticalLoadMs
	}
	if cfg.Scoring.Adaptation.SlowRenderMs == 0 {
		cfg.Scoring.Adaptation.SlowRenderMs = def.Adaptation.SlowRenderMs
	}
	if cfg.Scoring.Adaptation.LowScrollDepth == 0 {
		cfg.Scoring.Adaptation.LowScrollDepth = def.Adaptation.LowScrollDepth
	}
	if cfg.Scoring.Adaptation.HighBounceRate == 0 {
		cfg.Scoring.Adaptation.HighBounceRate = def.Adaptation.HighBounceRate
	}
	if cfg.Scoring.Adaptation.LowConversionRate == 0 {
		cfg.Scoring.Adaptation.LowConversionRate = def.Adaptation.LowConversionRate
	}
	if cfg.Scoring.Adaptation.HighAbandonmentRate == 0 {
		cfg.Scoring.Adaptation.HighAbandonmentRate = def.Adaptation.HighAbandonmentRate
	}
	if cfg.Scoring.Adaptation.HistorySize == 0 {
		cfg.Scoring.Adaptation.HistorySize = def.Adaptation.HistorySize
	}
	if cfg.Scoring.Adaptation.RegressionFloor == 0 {
		cfg.Scoring.Adaptation.RegressionFloor = def.Adaptation.RegressionFloor
	}
	if cfg.Scoring.Adaptation.ReinforceCeiling == 0 {
		cfg.Scoring.Adaptation.ReinforceCeiling = def.Adaptation.ReinforceCeiling
	}
}
