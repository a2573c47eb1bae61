package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// ClientEnv configures the command line tools that talk to a running API.
type ClientEnv struct {
	APIURL   string `env:"SAFEWALK_API_URL" envDefault:"http://localhost:8080"`
	Token    string `env:"SAFEWALK_TOKEN"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
