// Package reservation orchestrates a single ticket claim: it reads the
// versioned record, screens the identity fields through the fraud gate
// and commits with a version-guarded write.  No lock is held between the
// read and the write; the store's compare-and-swap decides which of
// several concurrent attempts wins.
package reservation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/radical-ticket/internal/fraud"
	"github.com/iliyamo/radical-ticket/internal/model"
	"github.com/iliyamo/radical-ticket/internal/queue"
	"github.com/iliyamo/radical-ticket/internal/rwset"
	"github.com/iliyamo/radical-ticket/internal/store"
)

// publishTimeout bounds how long a committed reservation waits on the
// event broker.
const publishTimeout = 2 * time.Second

// Request is one claim on a ticket.  Seed, when set, overrides the
// derived per-request seed for the fraud gate.
type Request struct {
	TicketID uint32
	Email    string
	Name     string
	Card     string
	Seed     *uint64
}

// Screener evaluates identity fields.  fraud.Scorer is the production
// implementation.
type Screener interface {
	Evaluate(rng *rand.Rand, email, name, card string) fraud.Verdict
}

// Publisher receives an event for every committed reservation.
type Publisher interface {
	PublishTicketReserved(ctx context.Context, ev queue.TicketReservedEvent) error
}

// Coordinator composes the store, the fraud gate and the read/write set
// extractor.  It keeps no per-request state and is safe for concurrent
// use.
type Coordinator struct {
	backend   store.Backend
	screener  Screener
	seed      uint64
	publisher Publisher
	now       func() time.Time
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithScreener replaces the default fraud.Scorer.
func WithScreener(s Screener) Option { return func(c *Coordinator) { c.screener = s } }

// WithSeed sets the base seed mixed into every derived request seed.
func WithSeed(seed uint64) Option { return func(c *Coordinator) { c.seed = seed } }

// WithPublisher sets the sink for reservation events.
func WithPublisher(p Publisher) Option { return func(c *Coordinator) { c.publisher = p } }

// New returns a Coordinator over backend.
func New(backend store.Backend, opts ...Option) *Coordinator {
	if backend == nil {
		panic("nil backend passed to reservation.New")
	}
	c := &Coordinator{
		backend:  backend,
		screener: fraud.NewScorer(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ReadWriteSet declares the keys Reserve will touch for req.  It never
// consults the store.
func (c *Coordinator) ReadWriteSet(req Request) rwset.Set {
	return rwset.ReadWriteSet(req.TicketID, req.Email, req.Name, req.Card)
}

// Evaluate runs the fraud gate for req with its reproducible generator.
func (c *Coordinator) Evaluate(req Request) fraud.Verdict {
	return c.screener.Evaluate(fraud.NewRand(c.requestSeed(req)), req.Email, req.Name, req.Card)
}

// FraudGate is the boolean form of Evaluate.
func (c *Coordinator) FraudGate(req Request) bool {
	return c.Evaluate(req).Accepted
}

func (c *Coordinator) requestSeed(req Request) uint64 {
	if req.Seed != nil {
		return *req.Seed
	}
	return fraud.RequestSeed(c.seed, req.TicketID, req.Email, req.Name, req.Card)
}

// Reserve attempts to claim req.TicketID.  It returns nil when the claim
// committed, one of the package's sentinel errors otherwise.  Either the
// full claim commits or nothing changes.
func (c *Coordinator) Reserve(ctx context.Context, req Request) error {
	key := model.TicketKey(req.TicketID)

	rec, ok, err := c.backend.Get(ctx, key)
	if err != nil {
		log.Printf("reservation: read %s failed: %v", key, err)
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	if !ok {
		return ErrNotFound
	}
	if rec.Value.Taken {
		return ErrAlreadyTaken
	}

	switch v := c.Evaluate(req); {
	case v.Reason == fraud.ReasonInvalidEmail:
		return ErrInvalidEmail
	case !v.Accepted:
		return ErrFraudRejected
	}

	// An abandoned request must not reach the write phase.
	if err := ctx.Err(); err != nil {
		return err
	}

	next := rec.Next(rec.Value.Claim(model.Reservation{Email: req.Email, Name: req.Name, Card: req.Card}))
	won, err := c.backend.PutIfVersion(ctx, key, rec.Version, next)
	if err != nil {
		log.Printf("reservation: conditional write %s failed: %v", key, err)
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	if !won {
		return ErrVersionConflict
	}

	c.publish(ctx, req, next)
	return nil
}

// ReserveTicket is the boolean surface over Reserve.  Business
// rejections return (false, nil); only store faults and cancellation
// return an error.
func (c *Coordinator) ReserveTicket(ctx context.Context, req Request) (bool, error) {
	err := c.Reserve(ctx, req)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrStoreUnavailable), ctx.Err() != nil:
		return false, err
	default:
		return false, nil
	}
}

func (c *Coordinator) publish(ctx context.Context, req Request, rec model.Record) {
	if c.publisher == nil {
		return
	}
	ev := queue.TicketReservedEvent{
		EventID:    uuid.NewString(),
		TicketID:   req.TicketID,
		Key:        rec.Key,
		Version:    rec.Version,
		Email:      req.Email,
		Name:       req.Name,
		ReservedAt: c.now().UTC().Format(time.RFC3339),
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := c.publisher.PublishTicketReserved(pctx, ev); err != nil {
		log.Printf("reservation: publish %s failed: %v", rec.Key, err)
	}
}
