// Package rwset declares the storage footprint of a reservation request
// ahead of execution.  An external deterministic scheduler uses these
// read/write sets to order or batch conflicting requests without taking
// any runtime locks.  Extraction never touches the store.
package rwset

import (
	"sort"

	"github.com/iliyamo/radical-ticket/internal/model"
)

// Set is an immutable, sorted set of storage keys.
type Set struct {
	keys []string
}

// Of builds a Set from the given keys, dropping duplicates.
func Of(keys ...string) Set {
	if len(keys) == 0 {
		return Set{}
	}
	cp := append([]string(nil), keys...)
	sort.Strings(cp)
	out := cp[:1]
	for _, k := range cp[1:] {
		if k != out[len(out)-1] {
			out = append(out, k)
		}
	}
	return Set{keys: out}
}

// Keys returns the keys in ascending order.  The slice is a copy.
func (s Set) Keys() []string { return append([]string(nil), s.keys...) }

// Len returns the number of keys.
func (s Set) Len() int { return len(s.keys) }

// Contains reports whether key is part of the set.
func (s Set) Contains(key string) bool {
	i := sort.SearchStrings(s.keys, key)
	return i < len(s.keys) && s.keys[i] == key
}

// Equal reports whether both sets hold the same keys.
func (s Set) Equal(o Set) bool {
	if len(s.keys) != len(o.keys) {
		return false
	}
	for i := range s.keys {
		if s.keys[i] != o.keys[i] {
			return false
		}
	}
	return true
}

// Union returns the keys present in either set.
func (s Set) Union(o Set) Set {
	return Of(append(s.Keys(), o.keys...)...)
}

// Overlaps reports whether the sets share at least one key.
func (s Set) Overlaps(o Set) bool {
	i, j := 0, 0
	for i < len(s.keys) && j < len(o.keys) {
		switch {
		case s.keys[i] == o.keys[j]:
			return true
		case s.keys[i] < o.keys[j]:
			i++
		default:
			j++
		}
	}
	return false
}

// ReadWriteSet returns the keys a reservation for ticketID reads and
// writes.  The identity fields never influence the footprint; the single
// ticket key is exact for this domain.
func ReadWriteSet(ticketID uint32, email, name, card string) Set {
	return Of(model.TicketKey(ticketID))
}

// Conflicts reports whether two requests with footprints a and b must be
// ordered relative to each other.
func Conflicts(a, b Set) bool { return a.Overlaps(b) }
