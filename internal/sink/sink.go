// Package sink contains delivery targets for relayed articles.
package sink

import (
	"context"
	"time"
)

// Message is one formatted article handed to a sink.
type Message struct {
	RunID   string    `json:"run_id"`
	Title   string    `json:"title"`
	Authors []string  `json:"authors"`
	Summary string    `json:"summary"`
	URL     string    `json:"url"`
	SentAt  time.Time `json:"sent_at"`
}

// Sink delivers one message at a time. Deliver must be usable
// independently per call; timeouts are applied by the caller through ctx.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, msg Message) error
}
