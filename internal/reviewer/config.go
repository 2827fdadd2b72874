package reviewer

import (
	"github.com/maxbolgarin/lang"
)

const (
	defaultPoolSize      = 10
	defaultPriorityLimit = 5
)

// Config represents review orchestration configuration.
type Config struct {
	PoolSize      int  `yaml:"pool_size" env:"REVIEW_POOL_SIZE"`
	PriorityLimit int  `yaml:"priority_limit" env:"REVIEW_PRIORITY_LIMIT"`
	Verbose       bool `yaml:"verbose" env:"REVIEW_VERBOSE"`
}

func (c *Config) PrepareAndValidate() error {
	c.PoolSize = lang.Check(c.PoolSize, defaultPoolSize)
	c.PriorityLimit = lang.Check(c.PriorityLimit, defaultPriorityLimit)
	return nil
}
