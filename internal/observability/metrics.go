package observability

import (
	"fmt"
	"time"
)

// Metrics holds calculated metrics derived from the event log.
type Metrics struct {
	EmailsProcessed int            `json:"emails_processed"`
	EmailsFailed    int            `json:"emails_failed"`
	EmailsByIntent  map[string]int `json:"emails_by_intent"`
	BatchRuns       int            `json:"batch_runs"`
	Interceptions   int            `json:"interceptions"`
	ToolInvocations int            `json:"tool_invocations"`
	EventCount      int            `json:"event_count"`
	OldestEvent     *time.Time     `json:"oldest_event,omitempty"`
	NewestEvent     *time.Time     `json:"newest_event,omitempty"`
}

// MetricsCalculator derives metrics from the event log.
type MetricsCalculator interface {
	Calculate(since time.Time) (*Metrics, error)
}

// metricsCalculator implements MetricsCalculator by reading from an EventLog.
type metricsCalculator struct {
	eventLog EventLog
}

// NewMetricsCalculator creates a new MetricsCalculator that reads from the given EventLog.
func NewMetricsCalculator(eventLog EventLog) MetricsCalculator {
	return &metricsCalculator{eventLog: eventLog}
}

// Calculate reads all events since the given time and aggregates them into metrics.
func (mc *metricsCalculator) Calculate(since time.Time) (*Metrics, error) {
	events, err := mc.eventLog.Read(EventFilter{Since: &since})
	if err != nil {
		return nil, fmt.Errorf("reading events for metrics: %w", err)
	}

	m := &Metrics{
		EmailsByIntent: make(map[string]int),
	}

	m.EventCount = len(events)

	for i, event := range events {
		if i == 0 {
			t := event.Time
			m.OldestEvent = &t
		}
		t := event.Time
		m.NewestEvent = &t

		switch event.Type {
		case "email.processed":
			m.EmailsProcessed++
			if intent, ok := event.Data["intent"].(string); ok {
				m.EmailsByIntent[intent]++
			}
		case "email.failed":
			m.EmailsFailed++
		case "batch.started":
			m.BatchRuns++
		case "order.intercepted":
			m.Interceptions++
		case "tool.invoked":
			m.ToolInvocations++
		}
	}

	return m, nil
}
