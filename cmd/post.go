package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arxiv-relay/arxiv-relay/internal/arxiv"
	"github.com/arxiv-relay/arxiv-relay/internal/config"
	"github.com/arxiv-relay/arxiv-relay/internal/logging"
	"github.com/arxiv-relay/arxiv-relay/internal/metrics"
	"github.com/arxiv-relay/arxiv-relay/internal/relay"
	"github.com/arxiv-relay/arxiv-relay/internal/sink"
	"github.com/arxiv-relay/arxiv-relay/internal/translate"
)

// newPostCmd creates the 'post' subcommand, which runs one pass of the
// fetch-translate-deliver pipeline.
func newPostCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "post",
		Short: "Search arXiv and post matching articles to the sink",
		Long: `Searches arXiv for articles submitted in the configured date window,
translates each title and abstract when translation is enabled, and posts
every article to the configured delivery sink. Individual article failures
are reported without aborting the run.`,
		RunE: runPostCommand,
	}
}

func runPostCommand(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Development, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	metrics.Init()
	if cfg.Metrics.Addr != "" {
		startMetricsListener(cfg.Metrics.Addr, logger)
	}

	ctx := cmd.Context()
	window, err := buildWindow(cfg)
	if err != nil {
		return err
	}

	client := arxiv.NewClient(arxiv.ClientConfig{
		Endpoint:  cfg.Search.Endpoint,
		UserAgent: cfg.Search.UserAgent,
		RateQPS:   cfg.Search.RateQPS,
	}, logger.Named("arxiv"))

	translator, closeTranslator, err := buildTranslator(cfg, logger)
	if err != nil {
		return err
	}
	defer closeTranslator()

	target, closeSink, err := buildSink(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("init sink: %w", err)
	}
	defer closeSink()

	orchestrator := relay.New(translator, target, relay.Config{
		Concurrency: cfg.Relay.Concurrency,
		TaskTimeout: cfg.TaskTimeout(),
	}, logger.Named("relay"))

	report, err := orchestrator.Run(ctx, client.Search(ctx, window))
	if err != nil {
		return err
	}

	for _, failure := range report.Failures {
		logger.Warn("article not delivered",
			zap.String("title", failure.Title),
			zap.String("url", failure.URL),
			zap.Error(failure.Err),
		)
	}
	logger.Info("post finished",
		zap.Int("scheduled", report.Scheduled),
		zap.Int("delivered", report.Delivered),
		zap.Int("failed", report.Failed),
	)
	return nil
}

func buildWindow(cfg config.Config) (arxiv.Window, error) {
	dateStart, dateEnd := cfg.Dates()
	window := arxiv.Window{
		DateStart:   dateStart,
		DateEnd:     dateEnd,
		Keywords:    config.SplitList(cfg.Search.Keywords),
		Categories:  config.SplitList(cfg.Search.Categories),
		MaxArticles: cfg.Search.MaxArticles,
		PageSize:    cfg.Search.PageSize,
		MaxParallel: cfg.Search.MaxParallel,
	}
	if err := window.Validate(); err != nil {
		return arxiv.Window{}, fmt.Errorf("search window: %w", err)
	}
	return window, nil
}

func buildTranslator(cfg config.Config, logger *zap.Logger) (*translate.Driver, func(), error) {
	if !cfg.Translate.Enabled {
		return nil, func() {}, nil
	}

	from, err := translate.ParseLanguage(cfg.Translate.LangFrom)
	if err != nil {
		return nil, nil, fmt.Errorf("translate.lang_from: %w", err)
	}
	to, err := translate.ParseLanguage(cfg.Translate.LangTo)
	if err != nil {
		return nil, nil, fmt.Errorf("translate.lang_to: %w", err)
	}

	factory := translate.NewChromeFactory(cfg.Search.UserAgent)
	driver := translate.NewDriver(factory, translate.Config{
		From:    from,
		To:      to,
		Timeout: cfg.TranslateTimeout(),
	}, logger.Named("translate"))
	return driver, factory.Close, nil
}

func buildSink(ctx context.Context, cfg config.Config, logger *zap.Logger) (sink.Sink, func(), error) {
	switch cfg.Sink.Type {
	case "slack":
		timeout := time.Duration(cfg.Sink.Slack.TimeoutSeconds) * time.Second
		return sink.NewSlack(cfg.Sink.Slack.WebhookURL, timeout), func() {}, nil
	case "pubsub":
		target, err := sink.NewPubSub(ctx, cfg.Sink.PubSub.ProjectID, cfg.Sink.PubSub.Topic)
		if err != nil {
			return nil, nil, err
		}
		return target, func() {
			if err := target.Close(); err != nil {
				logger.Warn("close pubsub sink", zap.Error(err))
			}
		}, nil
	case "log":
		return sink.NewLog(logger.Named("sink")), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown sink.type %q", cfg.Sink.Type)
	}
}

func startMetricsListener(addr string, logger *zap.Logger) {
	mux := chi.NewRouter()
	mux.Handle("/metrics", metrics.Handler())
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics listener stopped", zap.Error(err))
		}
	}()
}
