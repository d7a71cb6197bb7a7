package sink

import (
	"context"

	"go.uber.org/zap"
)

// Log writes articles to the logger instead of an external target. Used for
// dry runs and when no delivery endpoint is configured.
type Log struct {
	logger *zap.Logger
}

// NewLog builds the logging sink.
func NewLog(logger *zap.Logger) *Log {
	return &Log{logger: logger}
}

// Name implements Sink.
func (l *Log) Name() string { return "log" }

// Deliver logs one article at info level.
func (l *Log) Deliver(_ context.Context, msg Message) error {
	l.logger.Info("article",
		zap.String("title", msg.Title),
		zap.Strings("authors", msg.Authors),
		zap.String("url", msg.URL),
		zap.String("summary", msg.Summary),
	)
	return nil
}
