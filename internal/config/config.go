// Package config loads and validates relay configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Search    SearchConfig    `mapstructure:"search"`
	Translate TranslateConfig `mapstructure:"translate"`
	Relay     RelayConfig     `mapstructure:"relay"`
	Sink      SinkConfig      `mapstructure:"sink"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// SearchConfig parameterizes the arXiv search window.
type SearchConfig struct {
	DateStart   string  `mapstructure:"date_start"` // YYYY-MM-DD, inclusive
	DateEnd     string  `mapstructure:"date_end"`   // YYYY-MM-DD, exclusive
	Keywords    string  `mapstructure:"keywords"`   // comma-separated
	Categories  string  `mapstructure:"categories"` // comma-separated
	MaxArticles int     `mapstructure:"max_articles"`
	PageSize    int     `mapstructure:"page_size"`
	MaxParallel int     `mapstructure:"max_parallel"`
	RateQPS     float64 `mapstructure:"rate_qps"`
	Endpoint    string  `mapstructure:"endpoint"`
	UserAgent   string  `mapstructure:"user_agent"`
}

// TranslateConfig governs the translation driver.
type TranslateConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	LangFrom       string `mapstructure:"lang_from"`
	LangTo         string `mapstructure:"lang_to"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// RelayConfig controls the delivery orchestrator.
type RelayConfig struct {
	Concurrency        int `mapstructure:"concurrency"`
	TaskTimeoutSeconds int `mapstructure:"task_timeout_seconds"`
}

// SinkConfig selects and parameterizes the delivery target.
type SinkConfig struct {
	Type   string       `mapstructure:"type"` // slack, pubsub or log
	Slack  SlackConfig  `mapstructure:"slack"`
	PubSub PubSubConfig `mapstructure:"pubsub"`
}

// SlackConfig holds the incoming webhook settings.
type SlackConfig struct {
	WebhookURL     string `mapstructure:"webhook_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// PubSubConfig holds the Pub/Sub topic settings.
type PubSubConfig struct {
	ProjectID string `mapstructure:"project_id"`
	Topic     string `mapstructure:"topic"`
}

// MetricsConfig enables the optional Prometheus listener.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"` // empty disables the listener
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

// Load builds a Config from disk and environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("ARXIV_RELAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("search.date_start", daysAgo(2))
	v.SetDefault("search.date_end", daysAgo(1))
	v.SetDefault("search.keywords", "galaxy,galaxies")
	v.SetDefault("search.categories", "astro-ph.GA")
	v.SetDefault("search.max_articles", 1000)
	v.SetDefault("search.page_size", 100)
	v.SetDefault("search.max_parallel", 1)
	v.SetDefault("search.rate_qps", 0)
	v.SetDefault("search.user_agent", "arxiv-relay/0.1")
	v.SetDefault("translate.enabled", true)
	v.SetDefault("translate.lang_from", "en")
	v.SetDefault("translate.lang_to", "auto")
	v.SetDefault("translate.timeout_seconds", 60)
	v.SetDefault("relay.concurrency", 2)
	v.SetDefault("relay.task_timeout_seconds", 60)
	v.SetDefault("sink.type", "slack")
	v.SetDefault("sink.slack.timeout_seconds", 10)
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.level", "warn")
}

// Validate enforces required values before any I/O happens.
func (c Config) Validate() error {
	start, err := time.Parse(time.DateOnly, c.Search.DateStart)
	if err != nil {
		return fmt.Errorf("search.date_start: %w", err)
	}
	end, err := time.Parse(time.DateOnly, c.Search.DateEnd)
	if err != nil {
		return fmt.Errorf("search.date_end: %w", err)
	}
	if !start.Before(end) {
		return fmt.Errorf("search.date_start %s must be before search.date_end %s",
			c.Search.DateStart, c.Search.DateEnd)
	}
	if c.Search.PageSize <= 0 {
		return fmt.Errorf("search.page_size must be > 0")
	}
	if c.Search.MaxParallel < 1 {
		return fmt.Errorf("search.max_parallel must be >= 1")
	}
	if c.Relay.Concurrency < 1 {
		return fmt.Errorf("relay.concurrency must be >= 1")
	}

	switch c.Sink.Type {
	case "slack":
		if c.Sink.Slack.WebhookURL == "" {
			return fmt.Errorf("sink.slack.webhook_url must be set when sink.type is slack")
		}
	case "pubsub":
		if c.Sink.PubSub.ProjectID == "" || c.Sink.PubSub.Topic == "" {
			return fmt.Errorf("sink.pubsub.project_id and sink.pubsub.topic must be set when sink.type is pubsub")
		}
	case "log":
	default:
		return fmt.Errorf("unknown sink.type %q", c.Sink.Type)
	}
	return nil
}

// Dates returns the parsed search window bounds. Call after Validate.
func (c Config) Dates() (time.Time, time.Time) {
	start, _ := time.Parse(time.DateOnly, c.Search.DateStart)
	end, _ := time.Parse(time.DateOnly, c.Search.DateEnd)
	return start, end
}

// SplitList parses a comma-separated value, dropping empty entries.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// TranslateTimeout converts the configured translation budget.
func (c Config) TranslateTimeout() time.Duration {
	return time.Duration(c.Translate.TimeoutSeconds) * time.Second
}

// TaskTimeout converts the configured per-task budget.
func (c Config) TaskTimeout() time.Duration {
	return time.Duration(c.Relay.TaskTimeoutSeconds) * time.Second
}

// daysAgo returns the date n days before today in YYYY-MM-DD.
func daysAgo(n int) string {
	return time.Now().AddDate(0, 0, -n).Format(time.DateOnly)
}
