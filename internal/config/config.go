package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all kinship configuration. Defaults come from Default();
// a YAML file and KINSHIP_* environment variables layer on top.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Feed     FeedConfig     `yaml:"feed"`
	Scoring  ScoringConfig  `yaml:"scoring"`
}

type ServerConfig struct {
	Bind string `yaml:"bind" env:"KINSHIP_BIND"`
	Port int    `yaml:"port" env:"KINSHIP_PORT"`
}

type DatabaseConfig struct {
	Path string `yaml:"path" env:"KINSHIP_DB_PATH"` // empty: resolved via store.DefaultDBPath()
}

type FeedConfig struct {
	URL            string `yaml:"url" env:"KINSHIP_FEED_URL"`
	TimeoutSeconds int    `yaml:"timeout_seconds" env:"KINSHIP_FEED_TIMEOUT"`
	PaceMillis     int    `yaml:"pace_millis" env:"KINSHIP_FEED_PACE"` // min spacing between feed calls
}

type ScoringConfig struct {
	DecayFactor        float64 `yaml:"decay_factor" env:"KINSHIP_DECAY_FACTOR"`
	MessageWeight      float64 `yaml:"message_weight" env:"KINSHIP_MESSAGE_WEIGHT"`
	LoanDivisor        float64 `yaml:"loan_divisor" env:"KINSHIP_LOAN_DIVISOR"`
	ContractDivisor    float64 `yaml:"contract_divisor" env:"KINSHIP_CONTRACT_DIVISOR"`
	TransactionDivisor float64 `yaml:"transaction_divisor" env:"KINSHIP_TRANSACTION_DIVISOR"`
	WindowHours        int     `yaml:"window_hours" env:"KINSHIP_WINDOW_HOURS"`
}

// Default returns a Config with the simulation's tuned constants.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Bind: "127.0.0.1",
			Port: 8642,
		},
		Feed: FeedConfig{
			URL:            "http://127.0.0.1:9321",
			TimeoutSeconds: 10,
			PaceMillis:     250,
		},
		Scoring: ScoringConfig{
			DecayFactor:        0.75,
			MessageWeight:      1.0,
			LoanDivisor:        100.0,
			ContractDivisor:    100.0,
			TransactionDivisor: 10.0,
			WindowHours:        24,
		},
	}
}

// Load returns defaults overlaid with the YAML file at path (when given)
// and environment variables.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		return cfg, nil
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return cfg, fmt.Errorf("read env config: %w", err)
	}
	return cfg, nil
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}

// FeedTimeout returns the feed request timeout as a duration.
func (c *Config) FeedTimeout() time.Duration {
	return time.Duration(c.Feed.TimeoutSeconds) * time.Second
}

// FeedPace returns the minimum spacing between feed calls.
func (c *Config) FeedPace() time.Duration {
	return time.Duration(c.Feed.PaceMillis) * time.Millisecond
}

// Window returns the evidence recency window.
func (c *Config) Window() time.Duration {
	return time.Duration(c.Scoring.WindowHours) * time.Hour
}
