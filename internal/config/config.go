package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Addr           string        `env:"ADDR" envDefault:":8080"`
	AllowedOrigins []string      `env:"ALLOWED_ORIGINS" envDefault:"http://localhost:5173"`
	FormingTTL     time.Duration `env:"FORMING_TTL" envDefault:"10m"`
	SweepEvery     time.Duration `env:"SWEEP_EVERY" envDefault:"1m"`

	// Admission-control knobs. Declared for a future rate-limiting
	// collaborator; no handler consults them yet.
	GameLimit        int `env:"GAME_LIMIT" envDefault:"100"`
	BucketCapacity   int `env:"BUCKET_CAPACITY" envDefault:"100"`
	InitialTokens    int `env:"INITIAL_TOKENS" envDefault:"20"`
	RefillRateMinute int `env:"REFILL_RATE_MINUTE" envDefault:"4"`
}

// Load reads configuration from the environment, layering a local .env
// file underneath when present.
func Load() (Config, error) {
	_ = godotenv.Load()
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
