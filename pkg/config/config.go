package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/docker/go-units"
)

// Size is a byte count read from strings like "512k" or "8M".
type Size int64

func (s *Size) UnmarshalText(t []byte) error {
	v, err := units.RAMInBytes(string(t))
	*s = Size(v)
	return err
}

func (s Size) String() string {
	return units.BytesSize(float64(s))
}

type Config struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// solver
	Workers       int           `env:"SSSG_WORKERS"`
	CheckInterval uint64        `env:"SSSG_CHECK_INTERVAL" envDefault:"10000"`
	Namespace     string        `env:"SSSG_NAMESPACE" envDefault:"window"`
	Function      string        `env:"SSSG_FUNCTION" envDefault:"sssg_challenge"`
	SolveTimeout  time.Duration `env:"SOLVE_TIMEOUT"`

	// http client
	APIPrefix   string        `env:"SSSG_API_PREFIX" envDefault:"/.sssg/api"`
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT" envDefault:"30s"`
	MaxBodySize Size          `env:"MAX_BODY_SIZE" envDefault:"8M"`
	UserAgent   string        `env:"USER_AGENT"`

	// gate emulator
	ListenAddr    string        `env:"LISTEN_ADDR" envDefault:":8080"`
	PoWDifficulty int           `env:"POW_DIFFICULTY" envDefault:"18"`
	PoWTTL        time.Duration `env:"POW_TTL" envDefault:"60s"`
	ShutdownWait  time.Duration `env:"SHUTDOWN_WAIT" envDefault:"5s"`
}

func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env config: %w", err)
	}
	return cfg, nil
}
