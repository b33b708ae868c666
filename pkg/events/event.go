package events

import "time"

// Event is anything published on the telemetry bus.
type Event interface {
	// EventType is the subject suffix, e.g. "chat.message_created".
	EventType() string
	Payload() map[string]interface{}
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

const (
	TypeChatMessageCreated = "chat.message_created"
	TypeChatSessionCreated = "chat.session_created"
)

// ChatMessageCreated is emitted once per stored message.
func ChatMessageCreated(sessionID, messageID, role string, degraded bool, at time.Time) BaseEvent {
	return BaseEvent{
		Type: TypeChatMessageCreated,
		Data: map[string]interface{}{
			"session_id": sessionID,
			"message_id": messageID,
			"role":       role,
			"degraded":   degraded,
			"created_at": at.UTC().Format(time.RFC3339Nano),
		},
		OccurredAt: at,
	}
}

func ChatSessionCreated(sessionID, userID string, at time.Time) BaseEvent {
	return BaseEvent{
		Type: TypeChatSessionCreated,
		Data: map[string]interface{}{
			"session_id": sessionID,
			"user_id":    userID,
			"created_at": at.UTC().Format(time.RFC3339Nano),
		},
		OccurredAt: at,
	}
}
