// Package config loads service configuration from the environment, with
// an optional .env file for local development.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every tunable the server reads at startup.
type Config struct {
	ListenAddr string `env:"CAMELUP_LISTEN_ADDR" envDefault:":8080"`
	LogLevel   string `env:"CAMELUP_LOG_LEVEL" envDefault:"info"`

	JWTSecret string `env:"CAMELUP_JWT_SECRET,required"`

	// DatabaseURL is optional; persistence is skipped when empty.
	DatabaseURL string `env:"CAMELUP_DATABASE_URL"`
	// RedisAddr is optional; action history logging is skipped when empty.
	RedisAddr     string `env:"CAMELUP_REDIS_ADDR"`
	RedisPassword string `env:"CAMELUP_REDIS_PASSWORD"`
	RedisDB       int    `env:"CAMELUP_REDIS_DB" envDefault:"0"`

	// TurnTimerSec bounds how long a player may sit on their turn
	// before the coordinator rolls for them. 0 disables the timer.
	TurnTimerSec int `env:"CAMELUP_TURN_TIMER_SEC" envDefault:"30"`
}

// Load reads .env (if present) and parses the environment.
func Load() (Config, error) {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
