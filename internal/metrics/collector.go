// Package metrics implements the event-sourced collectors: an
// append-only log of (time, category, kind, subject, payload) records,
// written only by coordinators and resource managers, queried by
// internal/report to assemble KPIs.
package metrics

import (
	"github.com/popupsim/popupsim/internal/domain"
	"github.com/popupsim/popupsim/internal/engine"
)

// Recorder is the small interface passed down into coordinators and domain
// helpers so nothing needs a back-reference to a concrete Collector.
type Recorder interface {
	Record(category domain.EventCategory, kind, subject string, payload map[string]any)
}

// Collector is an append-only event log timestamped from the kernel clock.
type Collector struct {
	kernel *engine.Kernel
	events []domain.Event
}

// NewCollector creates a collector that timestamps every record from k.Now().
func NewCollector(k *engine.Kernel) *Collector {
	return &Collector{kernel: k}
}

// Record appends a new event at the current simulation time. payload may be
// nil.
func (c *Collector) Record(category domain.EventCategory, kind, subject string, payload map[string]any) {
	e := domain.NewEvent(c.kernel.Now(), category, kind, subject)
	for k, v := range payload {
		e.Payload[k] = v
	}
	c.events = append(c.events, e)
}

// Events returns every recorded event, in emission order.
func (c *Collector) Events() []domain.Event {
	return c.events
}

// ByCategory returns events of the given category, in emission order.
func (c *Collector) ByCategory(category domain.EventCategory) []domain.Event {
	out := make([]domain.Event, 0)
	for _, e := range c.events {
		if e.Category == category {
			out = append(out, e)
		}
	}
	return out
}

// BySubject returns events concerning the given subject id, in emission
// order. Used to verify per-subject monotone timelines.
func (c *Collector) BySubject(subject string) []domain.Event {
	out := make([]domain.Event, 0)
	for _, e := range c.events {
		if e.Subject == subject {
			out = append(out, e)
		}
	}
	return out
}
