package events

import (
	"context"

	"github.com/nats-io/nats.go"

	"github.com/Glossick/akasha-sub001/pkg/natsutil"
)

// wireEvent is the JSON-serializable form of an Event published to NATS.
// Payload is carried as-is; subscribers on the far side know its shape from
// the subject they subscribed to.
type wireEvent struct {
	Type    Type   `json:"type"`
	ScopeID string `json:"scopeId"`
	Payload any    `json:"payload"`
}

const natsSubjectNamespace = "akasha.events"

// BridgeToNATS forwards every event the Emitter produces onto NATS, one
// subject per event type, so out-of-process subscribers can observe the
// same lifecycle notifications in-process handlers see. The bridge itself
// is just another handler: it never blocks Emit, and a publish failure is
// swallowed the same way natsutil.Subscribe drops malformed messages.
func BridgeToNATS(e *Emitter, nc *nats.Conn) {
	for _, t := range allTypes {
		t := t
		subject := natsutil.Subject(natsSubjectNamespace, string(t))
		e.On(t, func(ev Event) {
			_ = natsutil.Publish(context.Background(), nc, subject, wireEvent{
				Type:    ev.Type,
				ScopeID: ev.ScopeID,
				Payload: ev.Payload,
			})
		})
	}
}

var allTypes = []Type{
	EntityCreated, EntityUpdated, EntityDeleted,
	RelationshipCreated, RelationshipUpdated, RelationshipDeleted,
	DocumentCreated, DocumentUpdated, DocumentDeleted,
	LearnStarted, LearnCompleted, LearnFailed,
	ExtractionStarted, ExtractionCompleted,
	QueryStarted, QueryCompleted,
	BatchProgress, BatchCompleted,
}
