// Package provider holds the code-host client configuration and the error
// taxonomy shared by its implementations.
package provider

import (
	"time"

	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/lang"
)

const (
	defaultRESTTimeout    = 10 * time.Second
	defaultGraphQLTimeout = 30 * time.Second
	defaultMaxRetries     = 3
	defaultRetryBase      = time.Second
	defaultRetryCap       = 10 * time.Second
)

// Config represents code-host provider configuration.
type Config struct {
	BaseURL       string `yaml:"base_url" env:"PROVIDER_BASE_URL"`
	Token         string `yaml:"token" env:"PROVIDER_TOKEN"`
	WebhookSecret string `yaml:"webhook_secret" env:"PROVIDER_WEBHOOK_SECRET"`
	BotUsername   string `yaml:"bot_username" env:"PROVIDER_BOT_USERNAME"`
	DryRun        bool   `yaml:"dry_run" env:"PROVIDER_DRY_RUN"`

	RESTTimeout    time.Duration `yaml:"rest_timeout" env:"PROVIDER_REST_TIMEOUT"`
	GraphQLTimeout time.Duration `yaml:"graphql_timeout" env:"PROVIDER_GRAPHQL_TIMEOUT"`
	MaxRetries     int           `yaml:"max_retries" env:"PROVIDER_MAX_RETRIES"`
	RetryBase      time.Duration `yaml:"retry_base" env:"PROVIDER_RETRY_BASE"`
	RetryCap       time.Duration `yaml:"retry_cap" env:"PROVIDER_RETRY_CAP"`
}

func (c *Config) PrepareAndValidate() error {
	if c.Token == "" {
		return errm.New("token is required")
	}
	c.RESTTimeout = lang.Check(c.RESTTimeout, defaultRESTTimeout)
	c.GraphQLTimeout = lang.Check(c.GraphQLTimeout, defaultGraphQLTimeout)
	c.MaxRetries = lang.Check(c.MaxRetries, defaultMaxRetries)
	c.RetryBase = lang.Check(c.RetryBase, defaultRetryBase)
	c.RetryCap = lang.Check(c.RetryCap, defaultRetryCap)
	return nil
}
