package reservation

import (
	"context"
	"fmt"

	"github.com/iliyamo/radical-ticket/internal/model"
	"github.com/iliyamo/radical-ticket/internal/store"
)

// Populate creates untaken tickets 0..n-1 at version 0 and records n as
// the ticket count.  Tickets left over from a larger previous population
// are deleted so that Clear always covers every record.
func (c *Coordinator) Populate(ctx context.Context, n uint32) error {
	prev, err := c.backend.Count(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	recs := make([]model.Record, 0, n)
	for id := uint32(0); id < n; id++ {
		recs = append(recs, model.NewRecord(model.NewTicket(id)))
	}
	if bp, ok := c.backend.(store.BatchPutter); ok {
		err = bp.PutAll(ctx, recs)
	} else {
		for _, rec := range recs {
			if err = c.backend.Put(ctx, rec); err != nil {
				break
			}
		}
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	for id := uint64(n); id < prev; id++ {
		if err := c.backend.Delete(ctx, model.TicketKey(uint32(id))); err != nil {
			return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}
	}
	if err := c.backend.SetCount(ctx, uint64(n)); err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return nil
}

// Clear deletes every populated ticket and resets the count to zero.  It
// returns the number of tickets it removed.
func (c *Coordinator) Clear(ctx context.Context) (uint64, error) {
	n, err := c.backend.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	for id := uint64(0); id < n; id++ {
		if err := c.backend.Delete(ctx, model.TicketKey(uint32(id))); err != nil {
			return id, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}
	}
	if err := c.backend.SetCount(ctx, 0); err != nil {
		return n, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return n, nil
}

// Fetch returns the ticket with the given id, or false when absent.
func (c *Coordinator) Fetch(ctx context.Context, id uint32) (model.Ticket, bool, error) {
	rec, ok, err := c.backend.Get(ctx, model.TicketKey(id))
	if err != nil {
		return model.Ticket{}, false, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return rec.Value, ok, nil
}

// Available lists the populated tickets that are still untaken, in id
// order.
func (c *Coordinator) Available(ctx context.Context) ([]model.Ticket, error) {
	n, err := c.backend.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	out := make([]model.Ticket, 0)
	for id := uint64(0); id < n; id++ {
		t, ok, err := c.Fetch(ctx, uint32(id))
		if err != nil {
			return nil, err
		}
		if ok && !t.Taken {
			out = append(out, t)
		}
	}
	return out, nil
}
