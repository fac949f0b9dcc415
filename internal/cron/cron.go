// Package cron tracks the scheduled background refresh events and warns when
// one of them has not run for a day.
package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/rshade/gitupdater/internal/logging"
	"github.com/rshade/gitupdater/internal/messages"
	"github.com/rshade/gitupdater/internal/store"
)

const (
	// OptionKey is the store key holding the schedule.
	OptionKey = "cron"
	// OverdueAfter is how late an event may run before it is reported.
	OverdueAfter = 24 * time.Hour
	// CodeOverdue is the message code raised for overdue events.
	CodeOverdue = "cron_error"
	// OverdueText is the message raised for overdue events.
	OverdueText = "There may be a problem with scheduled tasks. A gitupdater refresh event is overdue."
)

// Event is one scheduled hook.
type Event struct {
	Hook      string    `json:"hook"`
	Timestamp time.Time `json:"timestamp"`
}

// Schedule is the ordered list of pending events.
type Schedule struct {
	Events []Event `json:"events"`
}

// Load reads the schedule from s. A missing row is an empty schedule.
func Load(ctx context.Context, s store.Store) (*Schedule, error) {
	data, ok, err := s.Get(ctx, OptionKey)
	if err != nil {
		return nil, fmt.Errorf("loading schedule: %w", err)
	}
	sched := &Schedule{}
	if !ok {
		return sched, nil
	}
	if err = json.Unmarshal(data, sched); err != nil {
		return nil, fmt.Errorf("decoding schedule: %w", err)
	}
	sched.sort()
	return sched, nil
}

// Save writes the schedule to s.
func (s *Schedule) Save(ctx context.Context, st store.Store) error {
	s.sort()
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding schedule: %w", err)
	}
	if err = st.Set(ctx, OptionKey, data); err != nil {
		return fmt.Errorf("saving schedule: %w", err)
	}
	return nil
}

// Add schedules hook at ts.
func (s *Schedule) Add(hook string, ts time.Time) {
	s.Events = append(s.Events, Event{Hook: hook, Timestamp: ts})
	s.sort()
}

// Remove drops every event for hook and reports how many were removed.
func (s *Schedule) Remove(hook string) int {
	before := len(s.Events)
	s.Events = slices.DeleteFunc(s.Events, func(e Event) bool { return e.Hook == hook })
	return before - len(s.Events)
}

func (s *Schedule) sort() {
	slices.SortStableFunc(s.Events, func(a, b Event) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
}

// Checker inspects a schedule and reports problems to a message collector.
type Checker struct {
	messages *messages.Collector
	now      func() time.Time
}

// NewChecker returns a checker reporting to collector.
func NewChecker(collector *messages.Collector) *Checker {
	return &Checker{messages: collector, now: time.Now}
}

// IsDuplicateEvent reports whether hook is already scheduled. The earliest
// matching event is also checked for being overdue.
func (c *Checker) IsDuplicateEvent(ctx context.Context, events []Event, hook string) bool {
	for _, e := range events {
		if e.Hook != hook {
			continue
		}
		c.CheckOverdue(ctx, e)
		return true
	}
	return false
}

// CheckOverdue reports whether e is more than a day late and, if so, adds a
// cron_error message.
func (c *Checker) CheckOverdue(ctx context.Context, e Event) bool {
	late := c.now().Sub(e.Timestamp)
	if late <= OverdueAfter {
		return false
	}

	logger := logging.FromContext(ctx)
	logger.Warn().
		Str("component", "cron").
		Str("operation", "check_overdue").
		Str("hook", e.Hook).
		Dur("late", late).
		Msg("scheduled event is overdue")

	if c.messages != nil {
		c.messages.Error(CodeOverdue, OverdueText)
	}
	return true
}
