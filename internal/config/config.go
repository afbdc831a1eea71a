package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "manestream"

type Config struct {
	DatabaseURL string `envconfig:"DATABASE_URL" default:"postgres://localhost:5432/manestream?sslmode=disable" flag:"database-url"`

	NATSURL       string        `envconfig:"NATS_URL" default:"nats://127.0.0.1:4222" flag:"nats-url"`
	NATSInit      bool          `envconfig:"NATS_INIT" flag:"nats-init"`
	PlacesBucket  string        `envconfig:"NATS_PLACES_BUCKET" default:"manestream-places"`
	PlaceCacheTTL time.Duration `envconfig:"PLACE_CACHE_TTL" default:"24h"`

	GooglePlacesKey string `envconfig:"GOOGLE_PLACES_KEY"`
	GooglePlacesURL string `envconfig:"GOOGLE_PLACES_URL" default:"https://maps.googleapis.com"`

	FanoutConcurrency int    `envconfig:"FANOUT_CONCURRENCY" default:"8" flag:"fanout-concurrency"`
	MetricsAddr       string `envconfig:"METRICS_ADDR" default:":8080" flag:"metrics-addr"`
	LogLevel          string `envconfig:"LOG_LEVEL" default:"info" flag:"log-level"`

	// Command arguments, only set from flags.
	ActorID string `ignored:"true" flag:"actor"`
	PostID  string `ignored:"true" flag:"post"`
	UserID  string `ignored:"true" flag:"user"`
	Viewer  string `ignored:"true" flag:"viewer"`
	State   string `ignored:"true" flag:"state"`
}

// Load reads the configuration from MANESTREAM_* variables, falling back to the
// unprefixed names and then to the defaults.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// PostgresDSN returns the connection string handed to the postgres driver.
func (c *Config) PostgresDSN() string {
	return c.DatabaseURL
}
