package classify

import (
	"regexp"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/lang"
	"github.com/maxbolgarin/logze/v2"
	"github.com/maxbolgarin/prtriage/internal/model"
)

const (
	defaultCacheTTL  = 5 * time.Minute
	defaultCacheSize = 1024
)

// DefaultBotPatterns lists well-known automated reviewers. Used when no
// patterns are configured; configured patterns are appended to this set.
var DefaultBotPatterns = []string{
	"dependabot",
	"github-actions",
	"renovate",
	"snyk-bot",
	"semantic-release-bot",
	"codecov",
	"trivy-bot",
	"amazon-q",
	"cursor",
	"copilot",
	"openai-codex",
	"aider",
	"sweep-ai",
	"codiumai",
	"sonarqube",
	"codeql",
}

// ActorConfig configures the actor classifier.
type ActorConfig struct {
	BotPatterns []string      `yaml:"bot_patterns" env:"CLASSIFY_BOT_PATTERNS"`
	CacheTTL    time.Duration `yaml:"cache_ttl" env:"CLASSIFY_CACHE_TTL"`
	CacheSize   int           `yaml:"cache_size" env:"CLASSIFY_CACHE_SIZE"`
	NoCache     bool          `yaml:"no_cache" env:"CLASSIFY_NO_CACHE"`
}

func (c *ActorConfig) PrepareAndValidate() error {
	c.CacheTTL = lang.Check(c.CacheTTL, defaultCacheTTL)
	c.CacheSize = lang.Check(c.CacheSize, defaultCacheSize)
	if len(c.BotPatterns) == 0 {
		c.BotPatterns = DefaultBotPatterns
	}
	return nil
}

// ActorClassifier deterministically classifies actors as bot or human.
// Results depend only on (login, name, configured patterns); the cache is a
// performance optimization and never changes the outcome.
type ActorClassifier struct {
	patterns []*regexp.Regexp
	sources  []string
	cache    *lru.LRU[string, model.Classification]
	log      logze.Logger
}

// NewActorClassifier compiles the configured patterns. Malformed patterns
// fail here, never at classify time.
func NewActorClassifier(cfg ActorConfig) (*ActorClassifier, error) {
	if err := cfg.PrepareAndValidate(); err != nil {
		return nil, errm.Wrap(err, "validate config")
	}

	c := &ActorClassifier{
		patterns: make([]*regexp.Regexp, 0, len(cfg.BotPatterns)),
		sources:  make([]string, 0, len(cfg.BotPatterns)),
		log:      logze.With("component", "actor_classifier"),
	}
	for _, pattern := range cfg.BotPatterns {
		re, err := regexp.Compile("(?i)" + pattern)
		if err != nil {
			return nil, errm.Wrap(err, "compile bot pattern "+pattern)
		}
		c.patterns = append(c.patterns, re)
		c.sources = append(c.sources, pattern)
	}

	if !cfg.NoCache {
		c.cache = lru.NewLRU[string, model.Classification](cfg.CacheSize, nil, cfg.CacheTTL)
	}

	return c, nil
}

// Classify returns the actor classification for a login and optional
// display name. Rules fire in strict priority order; first match wins.
func (c *ActorClassifier) Classify(login, name string) model.Classification {
	key := login + ":" + name
	if c.cache != nil {
		if cached, ok := c.cache.Get(key); ok {
			return cached
		}
	}

	result := c.classify(login, name)

	if c.cache != nil {
		c.cache.Add(key, result)
	}
	return result
}

func (c *ActorClassifier) classify(login, name string) model.Classification {
	normalized := strings.ToLower(login)

	switch {
	case strings.HasSuffix(normalized, "[bot]"):
		return model.Classification{ActorType: model.ActorTypeBot, Reason: "[bot] suffix", MatchedRule: "suffix"}
	case strings.HasSuffix(normalized, "-bot"):
		return model.Classification{ActorType: model.ActorTypeBot, Reason: "-bot suffix", MatchedRule: "suffix"}
	}

	for i, re := range c.patterns {
		if re.MatchString(login) {
			return model.Classification{
				ActorType:   model.ActorTypeBot,
				Reason:      "matched configured pattern",
				MatchedRule: c.sources[i],
			}
		}
	}
	if name != "" {
		for i, re := range c.patterns {
			if re.MatchString(name) {
				return model.Classification{
					ActorType:   model.ActorTypeBot,
					Reason:      "matched name pattern",
					MatchedRule: c.sources[i],
				}
			}
		}
	}

	return model.Classification{ActorType: model.ActorTypeHuman, Reason: "no bot pattern matched"}
}
