package sink

import (
	"context"
	"sync"
)

// Memory records delivered messages for inspection in tests.
type Memory struct {
	mu       sync.RWMutex
	messages []Message
}

// NewMemory returns an empty memory sink.
func NewMemory() *Memory {
	return &Memory{}
}

// Name implements Sink.
func (m *Memory) Name() string { return "memory" }

// Deliver records the message.
func (m *Memory) Deliver(_ context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
	return nil
}

// Messages returns a copy of everything delivered so far.
func (m *Memory) Messages() []Message {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Message, len(m.messages))
	copy(out, m.messages)
	return out
}
