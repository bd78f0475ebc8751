package config

import (
	"github.com/caarlos0/env/v11"
)

// Config is the process configuration, parsed from the environment
// (after main loads .env via godotenv).
type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`
	JWTSecret   string `env:"JWT_SECRET,required"`
	FrontendURL string `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`

	ResendAPIKey string `env:"RESEND_API_KEY"`
	FromEmail    string `env:"FROM_EMAIL" envDefault:"no-reply@calendrierfamille.com"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
