package app

import (
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/maxbolgarin/errm"

	"github.com/maxbolgarin/prtriage/internal/classify"
	"github.com/maxbolgarin/prtriage/internal/provider"
	"github.com/maxbolgarin/prtriage/internal/reviewer"
	"github.com/maxbolgarin/prtriage/internal/server"
	"github.com/maxbolgarin/prtriage/internal/storage"
)

// Config represents the main application configuration.
type Config struct {
	Server     server.Config        `yaml:"server"`
	Provider   provider.Config      `yaml:"provider"`
	Storage    storage.Config       `yaml:"storage"`
	Classifier classify.ActorConfig `yaml:"classifier"`
	Review     reviewer.Config      `yaml:"review"`

	PolicyPath string `yaml:"policy_path" env:"POLICY_PATH"`
	LogLevel   string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
}

// LoadConfig reads configuration from an optional YAML file with
// environment variable overrides. A missing path loads from the
// environment alone.
func LoadConfig(path string) (Config, error) {
	var cfg Config

	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return cfg, errm.Wrap(err, "read config from env")
		}
		return cfg, nil
	}

	if _, err := os.Stat(path); err != nil {
		return cfg, errm.Wrap(err, "config file is not readable")
	}
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return cfg, errm.Wrap(err, "read config file")
	}
	return cfg, nil
}
