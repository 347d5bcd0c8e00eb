// Package events defines the domain events the engine emits and the
// publishers that hand them to the notification collaborator. Formatting
// and delivery of user-facing notifications are the collaborator's
// responsibility, not the engine's.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Kind identifies the domain event.
type Kind string

const (
	KindSuggestionCreated    Kind = "suggestion-created"
	KindSuggestionResurfaced Kind = "suggestion-resurfaced"
	KindAllocationLocked     Kind = "allocation-locked"
)

// Event is a domain event scoped to a single owner.
type Event struct {
	Kind       Kind                   `json:"kind"`
	OwnerID    uuid.UUID              `json:"ownerId"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
	OccurredAt time.Time              `json:"occurredAt"`
}

// New returns an event with the occurrence time set to now.
func New(kind Kind, ownerID uuid.UUID, payload map[string]interface{}) Event {
	return Event{
		Kind:       kind,
		OwnerID:    ownerID,
		Payload:    payload,
		OccurredAt: time.Now().In(time.UTC),
	}
}

// Publisher delivers domain events to the notification collaborator.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// LogPublisher writes events to the log. It is the sink when no message
// broker is configured.
type LogPublisher struct {
	Logger zerolog.Logger
}

func (p LogPublisher) Publish(_ context.Context, event Event) error {
	p.Logger.Info().
		Str("kind", string(event.Kind)).
		Str("owner-id", event.OwnerID.String()).
		Fields(map[string]interface{}{"payload": event.Payload}).
		Msg("domain event")

	return nil
}
