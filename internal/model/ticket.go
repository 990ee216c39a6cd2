package model

import "strconv"

// keyPrefix is prepended to the numeric ticket id to form the storage key.
const keyPrefix = "ticket-"

// Ticket represents one reservable slot.  A ticket is created untaken
// and flips to taken exactly once, when a reservation commits.  The
// reservation fields are populated if and only if Taken is true.
//
// Fields:
//  ID       – immutable ticket number.
//  Taken    – whether the ticket has been claimed.
//  ResEmail – email of the holder (nil while untaken).
//  ResName  – name of the holder (nil while untaken).
//  ResCard  – card reference of the holder (nil while untaken).
type Ticket struct {
	ID       uint32  `json:"id"`        // ticket number
	Taken    bool    `json:"taken"`     // claimed flag
	ResEmail *string `json:"res_email"` // null until reserved
	ResName  *string `json:"res_name"`  // null until reserved
	ResCard  *string `json:"res_card"`  // null until reserved
}

// Reservation holds the identity fields supplied with a claim.
type Reservation struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Card  string `json:"card"`
}

// NewTicket returns an untaken ticket with the given id.
func NewTicket(id uint32) Ticket { return Ticket{ID: id} }

// Claim returns a taken copy of t carrying the reservation fields.  The
// receiver is not modified.
func (t Ticket) Claim(res Reservation) Ticket {
	email, name, card := res.Email, res.Name, res.Card
	return Ticket{
		ID:       t.ID,
		Taken:    true,
		ResEmail: &email,
		ResName:  &name,
		ResCard:  &card,
	}
}

// Reservation returns the reservation fields and true when the ticket is
// taken.  For an untaken ticket it returns the zero Reservation and false.
func (t Ticket) Reservation() (Reservation, bool) {
	if !t.Taken || t.ResEmail == nil || t.ResName == nil || t.ResCard == nil {
		return Reservation{}, false
	}
	return Reservation{Email: *t.ResEmail, Name: *t.ResName, Card: *t.ResCard}, true
}

// Valid reports whether the reservation fields are present exactly when
// the ticket is taken.
func (t Ticket) Valid() bool {
	present := t.ResEmail != nil && t.ResName != nil && t.ResCard != nil
	absent := t.ResEmail == nil && t.ResName == nil && t.ResCard == nil
	if t.Taken {
		return present
	}
	return absent
}

// TicketKey derives the storage key for a ticket id, e.g. "ticket-7".
func TicketKey(id uint32) string {
	return keyPrefix + strconv.FormatUint(uint64(id), 10)
}
