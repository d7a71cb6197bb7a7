// Package relay executes the fetch-translate-deliver pipeline.
package relay

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arxiv-relay/arxiv-relay/internal/arxiv"
	"github.com/arxiv-relay/arxiv-relay/internal/metrics"
	"github.com/arxiv-relay/arxiv-relay/internal/sink"
	"github.com/arxiv-relay/arxiv-relay/internal/translate"
)

// Stream is a finite sequence of articles whose terminal error becomes
// readable once the channel closes. Satisfied by *arxiv.Stream.
type Stream interface {
	Articles() <-chan arxiv.Article
	Err() error
}

// Config controls Orchestrator behavior.
type Config struct {
	// Concurrency caps simultaneous in-flight delivery tasks.
	Concurrency int
	// TaskTimeout bounds one article's translate-and-deliver work.
	TaskTimeout time.Duration
}

// Orchestrator consumes an article stream and dispatches each article to
// the sink, optionally translating it first. Task failures are isolated:
// one slow or failing article never cancels its siblings or stops
// consumption of the rest of the stream.
type Orchestrator struct {
	translator *translate.Driver // nil delivers articles untranslated
	target     sink.Sink
	cfg        Config
	logger     *zap.Logger
	runID      string
}

// New builds an Orchestrator. A nil translator skips translation.
func New(translator *translate.Driver, target sink.Sink, cfg Config, logger *zap.Logger) *Orchestrator {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.TaskTimeout <= 0 {
		cfg.TaskTimeout = 60 * time.Second
	}
	return &Orchestrator{
		translator: translator,
		target:     target,
		cfg:        cfg,
		logger:     logger,
		runID:      uuid.NewString(),
	}
}

// Run streams articles into delivery tasks and blocks until every scheduled
// task reached a terminal state. The returned error is non-nil only for
// fatal causes: a stream (page fetch) failure or context cancellation.
// Item-scoped failures are recorded in the Report instead.
func (o *Orchestrator) Run(ctx context.Context, stream Stream) (Report, error) {
	var (
		wg      sync.WaitGroup
		report  = newReport()
		sem     = make(chan struct{}, o.cfg.Concurrency)
		aborted error
	)

consume:
	for article := range stream.Articles() {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			aborted = ctx.Err()
			break consume
		}

		wg.Add(1)
		report.scheduled()
		go func(article arxiv.Article) {
			defer wg.Done()
			defer func() { <-sem }()
			o.process(ctx, article, report)
		}(article)
	}
	wg.Wait()

	summary := report.snapshot()
	o.logger.Info("run finished",
		zap.String("run_id", o.runID),
		zap.String("sink", o.target.Name()),
		zap.Int("scheduled", summary.Scheduled),
		zap.Int("delivered", summary.Delivered),
		zap.Int("failed", summary.Failed),
	)

	if aborted != nil {
		return summary, fmt.Errorf("run aborted: %w", aborted)
	}
	if err := stream.Err(); err != nil {
		return summary, fmt.Errorf("fetch articles: %w", err)
	}
	return summary, nil
}

// process runs one delivery task under its own timeout.
func (o *Orchestrator) process(ctx context.Context, article arxiv.Article, report *report) {
	taskCtx, cancel := context.WithTimeout(ctx, o.cfg.TaskTimeout)
	defer cancel()

	taskID := uuid.NewString()
	start := time.Now()

	if err := o.deliver(taskCtx, article); err != nil {
		report.failure(article, err)
		metrics.ObserveDelivery("failure", time.Since(start))
		o.logger.Warn("delivery task failed",
			zap.String("run_id", o.runID),
			zap.String("task_id", taskID),
			zap.String("title", article.Title),
			zap.Error(err),
		)
		return
	}

	report.success()
	metrics.ObserveDelivery("success", time.Since(start))
	o.logger.Debug("article delivered",
		zap.String("run_id", o.runID),
		zap.String("task_id", taskID),
		zap.String("title", article.Title),
		zap.Duration("duration", time.Since(start)),
	)
}

func (o *Orchestrator) deliver(ctx context.Context, article arxiv.Article) error {
	if o.translator != nil {
		translated, err := translate.TranslateValue(ctx, o.translator, article)
		if err != nil {
			metrics.ObserveTranslationFailure(translationReason(err))
			return fmt.Errorf("translate: %w", err)
		}
		article = translated
	}

	msg := sink.Message{
		RunID:   o.runID,
		Title:   article.Title,
		Authors: article.Authors,
		Summary: article.Summary,
		URL:     article.URL,
		SentAt:  time.Now().UTC(),
	}
	if err := o.target.Deliver(ctx, msg); err != nil {
		return fmt.Errorf("deliver to %s: %w", o.target.Name(), err)
	}
	return nil
}

func translationReason(err error) string {
	switch {
	case errors.Is(err, translate.ErrTimeout):
		return "timeout"
	case errors.Is(err, translate.ErrUnavailable):
		return "unavailable"
	default:
		return "other"
	}
}
