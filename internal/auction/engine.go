package auction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iliyamo/fantasy-auction/internal/lock"
	"github.com/iliyamo/fantasy-auction/internal/repository"
)

const defaultLockWait = 3 * time.Second

// msgConflict is returned when an optimistic version check lost.
const msgConflict = "The auction item changed while your request was processed. Please retry."

// Engine runs the auction operations.  All work on one lot is serialised
// through the per-item lock and, underneath it, the item's version
// column; different lots proceed in parallel.
type Engine struct {
	store    repository.Store
	locks    lock.Locker
	events   EventPublisher
	log      zerolog.Logger
	lockWait time.Duration
}

type Option func(*Engine)

// WithEvents sets the publisher that receives committed events.
func WithEvents(p EventPublisher) Option {
	return func(e *Engine) { e.events = p }
}

func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithLockWait bounds how long request paths wait for a busy lot.
func WithLockWait(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.lockWait = d
		}
	}
}

// New builds an Engine over store and locks.
func New(store repository.Store, locks lock.Locker, opts ...Option) *Engine {
	e := &Engine{
		store:    store,
		locks:    locks,
		events:   NopPublisher{},
		log:      zerolog.Nop(),
		lockWait: defaultLockWait,
	}
	for _, o := range opts {
		o(e)
	}
	e.log = e.log.With().Str("component", "auction").Logger()
	return e
}

// withLock runs fn while holding key.  Only the wait for the lock is
// bounded by lockWait; fn itself runs under ctx.
func (e *Engine) withLock(ctx context.Context, key string, fn func() error) error {
	wctx, cancel := context.WithTimeout(ctx, e.lockWait)
	release, err := e.locks.Acquire(wctx, key)
	cancel()
	if err != nil {
		return err
	}
	defer release()
	return fn()
}

// publish hands committed events to the publisher.  It never fails the
// operation.
func (e *Engine) publish(ctx context.Context, evs []Event) {
	for _, ev := range evs {
		if err := e.events.Publish(ctx, ev); err != nil {
			e.log.Warn().Err(err).Str("event", string(ev.Type)).Uint64("item_id", ev.ItemID).Msg("publish failed")
		}
	}
}

// conflictResult turns a lost version check into a retryable failure
// Result.  Other errors pass through wrapped with op.
func conflictResult(op string, err error) (Result, error) {
	if errors.Is(err, repository.ErrConflict) {
		return fail(msgConflict), nil
	}
	return Result{}, fmt.Errorf("%s: %w", op, err)
}

func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}
