package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
sink:
  type: log
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "galaxy,galaxies", cfg.Search.Keywords)
	require.Equal(t, "astro-ph.GA", cfg.Search.Categories)
	require.Equal(t, 1000, cfg.Search.MaxArticles)
	require.Equal(t, 100, cfg.Search.PageSize)
	require.Equal(t, 1, cfg.Search.MaxParallel)
	require.True(t, cfg.Translate.Enabled)
	require.Equal(t, "en", cfg.Translate.LangFrom)
	require.Equal(t, "auto", cfg.Translate.LangTo)
	require.Equal(t, 2, cfg.Relay.Concurrency)

	start, end := cfg.Dates()
	require.True(t, start.Before(end))
}

func TestLoadWithFileOverrides(t *testing.T) {
	path := writeConfig(t, `
search:
  date_start: "2024-01-01"
  date_end: "2024-01-02"
  keywords: "pulsar"
  categories: "astro-ph.HE"
  max_articles: 250
  page_size: 50
  max_parallel: 3
translate:
  enabled: false
relay:
  concurrency: 4
  task_timeout_seconds: 30
sink:
  type: slack
  slack:
    webhook_url: https://hooks.slack.com/services/T/B/X
logging:
  development: false
  level: info
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, []string{"pulsar"}, SplitList(cfg.Search.Keywords))
	require.Equal(t, 250, cfg.Search.MaxArticles)
	require.Equal(t, 3, cfg.Search.MaxParallel)
	require.False(t, cfg.Translate.Enabled)
	require.Equal(t, 4, cfg.Relay.Concurrency)
	require.Equal(t, "slack", cfg.Sink.Type)
	require.False(t, cfg.Logging.Development)
}

func TestValidateRejectsMissingWebhook(t *testing.T) {
	path := writeConfig(t, `
sink:
  type: slack
`)
	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "webhook_url")
}

func TestValidateRejectsInvertedDates(t *testing.T) {
	path := writeConfig(t, `
search:
  date_start: "2024-01-02"
  date_end: "2024-01-01"
sink:
  type: log
`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestValidateRejectsUnknownSink(t *testing.T) {
	path := writeConfig(t, `
sink:
  type: carrier-pigeon
`)
	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "carrier-pigeon")
}

func TestValidateRejectsIncompletePubSub(t *testing.T) {
	path := writeConfig(t, `
sink:
  type: pubsub
  pubsub:
    project_id: my-project
`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestSplitList(t *testing.T) {
	t.Parallel()

	require.Equal(t, []string{"galaxy", "galaxies"}, SplitList("galaxy,galaxies"))
	require.Equal(t, []string{"a", "b"}, SplitList(" a , b ,"))
	require.Nil(t, SplitList(""))
	require.Nil(t, SplitList(" , "))
}
