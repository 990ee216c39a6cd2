package reservation

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/radical-ticket/internal/fraud"
	"github.com/iliyamo/radical-ticket/internal/model"
	"github.com/iliyamo/radical-ticket/internal/store"
)

// TestConcurrentReservations verifies that when many goroutines claim the
// same untaken ticket, exactly one wins and every loser observes either
// the committed claim or a lost race.
func TestConcurrentReservations(t *testing.T) {
	backends := map[string]func(t *testing.T) store.Backend{
		"memory": func(*testing.T) store.Backend { return store.NewMemory() },
		"redis": func(t *testing.T) store.Backend {
			mr := miniredis.RunT(t)
			rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
			t.Cleanup(func() { _ = rdb.Close() })
			return store.NewRedis(rdb, "")
		},
	}
	for name, mk := range backends {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			b := mk(t)
			c := New(b, WithScreener(fraud.Scorer{Depth: 8, Width: 32}))
			if err := c.Populate(ctx, 3); err != nil {
				t.Fatal(err)
			}

			const attempts = 24
			var wins, taken, conflicts atomic.Int32
			var wg sync.WaitGroup
			start := make(chan struct{})
			for i := 0; i < attempts; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					<-start
					err := c.Reserve(ctx, Request{TicketID: 1, Email: "racer@test.com", Name: "Racer", Card: "0000"})
					switch {
					case err == nil:
						wins.Add(1)
					case errors.Is(err, ErrAlreadyTaken):
						taken.Add(1)
					case errors.Is(err, ErrVersionConflict):
						conflicts.Add(1)
					default:
						t.Errorf("attempt %d: unexpected error %v", i, err)
					}
				}(i)
			}
			close(start)
			wg.Wait()

			if wins.Load() != 1 {
				t.Fatalf("expected exactly 1 winner, got %d (taken %d, conflicts %d)", wins.Load(), taken.Load(), conflicts.Load())
			}
			if wins.Load()+taken.Load()+conflicts.Load() != attempts {
				t.Errorf("outcomes do not add up to %d attempts", attempts)
			}
			rec, ok, err := b.Get(ctx, model.TicketKey(1))
			if err != nil || !ok {
				t.Fatal(err)
			}
			if rec.Version != 1 || !rec.Value.Taken {
				t.Errorf("final record = %+v, want version 1 and taken", rec)
			}
		})
	}
}

// TestConcurrentDistinctTickets checks that claims on different tickets
// do not interfere.
func TestConcurrentDistinctTickets(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	c := New(mem, WithScreener(fraud.Scorer{Depth: 4, Width: 16}))
	const n = 20
	if err := c.Populate(ctx, n); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := uint32(0); i < n; i++ {
		wg.Add(1)
		go func(id uint32) {
			defer wg.Done()
			errs[id] = c.Reserve(ctx, Request{TicketID: id, Email: "test@test.com", Name: "T", Card: "1"})
		}(i)
	}
	wg.Wait()

	for id, err := range errs {
		if err != nil {
			t.Errorf("ticket %d: %v", id, err)
		}
	}
	avail, err := c.Available(ctx)
	if err != nil || len(avail) != 0 {
		t.Errorf("Available() = %d tickets, %v; want none", len(avail), err)
	}
}
