package services

import (
	"github.com/google/uuid"
)

type EventKind string

const (
	EventRequestCreated    EventKind = "request_created"
	EventRequestUpdated    EventKind = "request_updated"
	EventAssignmentChanged EventKind = "assignment_changed"
	EventMessageSent       EventKind = "message_sent"
)

// Event is a lifecycle notification addressed to the specific users affected.
// Recipients never leave the process boundary; only Kind and Payload are
// written to the wire.
type Event struct {
	Kind       EventKind   `json:"kind"`
	Payload    interface{} `json:"payload"`
	Recipients []uuid.UUID `json:"-"`
}

// Publisher delivers events post-commit, at-least-once, best-effort. Publish
// must never block the calling command and must never surface a failure to it.
type Publisher interface {
	Publish(event Event)
}

// NopPublisher drops everything. Used where no delivery channel is wired yet.
type NopPublisher struct{}

func (NopPublisher) Publish(Event) {}

func recipients(ids ...uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
