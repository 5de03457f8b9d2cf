package domain

import (
	"time"

	json "github.com/goccy/go-json"
)

// EventTypeOrderClosed is recorded when an order transitions to closed.
const EventTypeOrderClosed = "orders.closed"

// OutboxEvent is a domain event persisted in the same transaction as the
// state change that produced it. PublishedAt stays nil until an external
// publisher delivers the event.
type OutboxEvent struct {
	ID          string
	EventType   string
	OrderID     string
	TenantID    string
	Payload     json.RawMessage
	PublishedAt *time.Time
	CreatedAt   time.Time
}
