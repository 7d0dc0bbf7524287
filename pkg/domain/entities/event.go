package entities

import "time"

// EventScope names the kind of record an audit event is about
type EventScope string

const (
	ScopeTruck  EventScope = "Truck"
	ScopeBale   EventScope = "Bale"
	ScopeSystem EventScope = "System"
)

// Event is an append-only audit log entry
type Event struct {
	EventID   string     `json:"eventId"`
	Scope     EventScope `json:"scope"`
	Actor     string     `json:"actor"`
	Change    string     `json:"change"`
	Timestamp time.Time  `json:"ts"`
}
