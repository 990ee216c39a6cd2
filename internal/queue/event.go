// Package queue defines message payloads exchanged over the message broker.
package queue

// TicketReservedQueue is the durable queue reservation events go to.
const TicketReservedQueue = "ticket.reserved"

// TicketReservedEvent is published after a reservation commits.  It
// carries enough for downstream consumers to log or notify without
// reading the store.  The card reference is never included.  EventID
// is unique per commit so consumers can drop redeliveries.
type TicketReservedEvent struct {
	EventID    string `json:"event_id"`
	TicketID   uint32 `json:"ticket_id"`
	Key        string `json:"key"`
	Version    uint64 `json:"version"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	ReservedAt string `json:"reserved_at"`
}
