package model

// Record is the versioned storage envelope wrapping a Ticket.  The JSON
// layout matches the items written by the population tooling: the key is
// repeated in ID and the version starts at zero.  Version increases by
// exactly one on every committed mutation.
type Record struct {
	Key     string `json:"Key"`     // "ticket-<id>"
	ID      string `json:"ID"`      // same as Key
	Version uint64 `json:"Version"` // optimistic concurrency counter
	Value   Ticket `json:"Value"`   // current ticket state
}

// NewRecord wraps a ticket in a fresh record at version 0.
func NewRecord(t Ticket) Record {
	key := TicketKey(t.ID)
	return Record{Key: key, ID: key, Version: 0, Value: t}
}

// Next returns the record that replaces r when t is committed: same key,
// version bumped by one.
func (r Record) Next(t Ticket) Record {
	return Record{Key: r.Key, ID: r.ID, Version: r.Version + 1, Value: t}
}
