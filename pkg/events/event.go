package events

import "time"

// Event is what travels over the bus between the pipeline, the feedback desk
// and the notification worker. EventType returns the bare registry code
// (STAFF_LOGIN, FEEDBACK_CREATED, FEEDBACK_REJECTED, SYSTEM_BROADCAST); the
// transport prefixes it onto the "events." subject space.
type Event interface {
	EventType() string

	// Payload returns the data associated with the event. Keys referenced by
	// notification templates ({rating}, {route}, ...) live here.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the plain implementation every producer in this codebase uses.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

// Now builds a BaseEvent stamped with the current time.
func Now(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{Type: eventType, Data: data, OccurredAt: time.Now()}
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
