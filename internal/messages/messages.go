// Package messages collects user-facing notices raised while checking
// repositories, such as an overdue scheduled refresh.
package messages

import (
	"crypto/rand"
	"slices"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Level is the severity of a message.
type Level string

// Message levels.
const (
	LevelError   Level = "error"
	LevelWarning Level = "warning"
	LevelInfo    Level = "info"
)

// Message is one notice.
type Message struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Level     Level     `json:"level"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Collector is a concurrency-safe list of messages. Codes are unique: adding
// a code that is already present replaces the earlier message.
type Collector struct {
	mu       sync.Mutex
	messages []Message
	entropy  *ulid.MonotonicEntropy
	now      func() time.Time
}

// NewCollector returns an empty collector.
func NewCollector() *Collector {
	return &Collector{
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
	}
}

// Add records a message and returns it.
func (c *Collector) Add(level Level, code, text string) Message {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	msg := Message{
		ID:        ulid.MustNew(ulid.Timestamp(now), c.entropy).String(),
		Code:      code,
		Level:     level,
		Text:      text,
		CreatedAt: now,
	}

	c.messages = slices.DeleteFunc(c.messages, func(m Message) bool { return m.Code == code })
	c.messages = append(c.messages, msg)
	return msg
}

// Error records an error-level message.
func (c *Collector) Error(code, text string) Message {
	return c.Add(LevelError, code, text)
}

// List returns a copy of the messages in the order they were added.
func (c *Collector) List() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.messages)
}

// Has reports whether a message with code is present.
func (c *Collector) Has(code string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.ContainsFunc(c.messages, func(m Message) bool { return m.Code == code })
}

// Clear removes all messages.
func (c *Collector) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = nil
}
