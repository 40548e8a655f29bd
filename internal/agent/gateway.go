// Package agent defines the gateway between email processing and the
// reasoning backend, plus a deterministic scripted backend for offline use.
package agent

import (
	"context"

	"github.com/valter-silva-au/mail-triage/internal/stream"
)

// EventStream yields agent events one at a time. Next returns false when
// the stream is exhausted.
type EventStream interface {
	Next() (stream.Event, bool)
}

// Gateway turns one customer email into a stream of agent events. The
// customer email address identifies the sender when the email body does
// not.
type Gateway interface {
	Process(ctx context.Context, emailContent, customerEmail string) (EventStream, error)
}

// sliceStream replays a pre-computed event slice.
type sliceStream struct {
	events []stream.Event
	pos    int
}

func (s *sliceStream) Next() (stream.Event, bool) {
	if s.pos >= len(s.events) {
		return stream.Event{}, false
	}
	e := s.events[s.pos]
	s.pos++
	return e, true
}
