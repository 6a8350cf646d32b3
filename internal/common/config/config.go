package config

import (
	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Debug bool `env:"DEBUG" envDefault:"false"`

	Server struct {
		Port   int    `env:"PORT" envDefault:"8080"`
		Origin string `env:"ORIGIN" envDefault:"http://localhost:3000"`
	}

	Redis struct {
		Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
		Password string `env:"REDIS_PASSWORD" envDefault:""`
		DB       int    `env:"REDIS_DB" envDefault:"0"`
	}

	Chat struct {
		GatewayURL string `env:"CHAT_GATEWAY_URL,required"`
		Token      string `env:"CHAT_GATEWAY_TOKEN" envDefault:""`
	}

	Storage struct {
		// Namespace scopes every persisted key so several bot modules can
		// share one Redis database.
		Namespace string `env:"STORAGE_NAMESPACE" envDefault:"giveaways"`
	}
}

func Load() *Config {
	// A missing .env file is fine; production sets variables directly.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		panic(err)
	}

	return cfg
}
