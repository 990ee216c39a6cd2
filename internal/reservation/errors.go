package reservation

import "errors"

// Outcomes of a reservation attempt.  Everything except
// ErrStoreUnavailable is a definitive business result; ErrStoreUnavailable
// wraps the underlying I/O error and signals an infrastructure fault.
var (
	// ErrNotFound is returned when no record exists for the ticket.
	ErrNotFound = errors.New("ticket not found")
	// ErrAlreadyTaken is returned when the ticket was reserved before
	// this attempt read it.
	ErrAlreadyTaken = errors.New("ticket already taken")
	// ErrInvalidEmail is returned when the email fails the syntax check.
	ErrInvalidEmail = errors.New("invalid email")
	// ErrFraudRejected is returned when the scoring gate declines.
	ErrFraudRejected = errors.New("fraud check rejected")
	// ErrVersionConflict is returned when another writer committed
	// between our read and our conditional write.
	ErrVersionConflict = errors.New("version conflict")
	// ErrStoreUnavailable wraps a failure of the underlying store.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Retryable reports whether repeating the attempt from the read step can
// succeed.  A lost race and a store fault are retryable; the other
// outcomes will not change on retry.
func Retryable(err error) bool {
	return errors.Is(err, ErrVersionConflict) || errors.Is(err, ErrStoreUnavailable)
}

// Reason maps an outcome to a stable snake_case code for clients.  A nil
// error maps to "reserved"; unknown errors map to "internal".
func Reason(err error) string {
	switch {
	case err == nil:
		return "reserved"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAlreadyTaken):
		return "already_taken"
	case errors.Is(err, ErrInvalidEmail):
		return "invalid_email"
	case errors.Is(err, ErrFraudRejected):
		return "fraud_rejected"
	case errors.Is(err, ErrVersionConflict):
		return "version_conflict"
	case errors.Is(err, ErrStoreUnavailable):
		return "store_unavailable"
	default:
		return "internal"
	}
}
