// Package service contains the business logic for the travel journal.
// Services validate inputs, assign ids and timestamps, run multi-step writes
// in one transaction, and publish fresh snapshots to observers after every
// committed write. No SQL lives here.
package service

import (
	"context"
	"encoding/binary"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/trip-journal/internal/store"
	"github.com/pkordes/trip-journal/internal/watch"
)

// Core holds what every service shares: the store, the clock, the id
// source, the logger, and the change registry that drives observers.
// Construct one per process and pass it to each service constructor.
type Core struct {
	store   *store.Store
	log     *slog.Logger
	now     func() time.Time
	newID   func() int64
	changes *watch.Changes
}

// Option configures a Core.
type Option func(*Core)

// WithClock replaces time.Now. Tests use it to pin "today".
func WithClock(now func() time.Time) Option {
	return func(c *Core) { c.now = now }
}

// WithIDs replaces the random id generator.
func WithIDs(next func() int64) Option {
	return func(c *Core) { c.newID = next }
}

// WithLogger sets the logger. The default discards output.
func WithLogger(l *slog.Logger) Option {
	return func(c *Core) { c.log = l }
}

// NewCore builds a Core over st.
func NewCore(st *store.Store, opts ...Option) *Core {
	c := &Core{
		store:   st,
		log:     slog.New(slog.DiscardHandler),
		now:     time.Now,
		newID:   RandomID,
		changes: watch.NewChanges(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Store returns the underlying store.
func (c *Core) Store() *store.Store { return c.store }

// Changes returns the change registry services publish through.
func (c *Core) Changes() *watch.Changes { return c.changes }

// Now returns the current time in UTC.
func (c *Core) Now() time.Time { return c.now().UTC() }

// notify refreshes observers of tables after a committed write. Refreshes
// must not be cut short by the caller's context ending right after commit.
func (c *Core) notify(ctx context.Context, tables ...watch.Table) {
	c.changes.Notify(context.WithoutCancel(ctx), tables...)
}

// RandomID returns a positive 63-bit id drawn from a random UUID.
func RandomID() int64 {
	u := uuid.New()
	id := int64(binary.BigEndian.Uint64(u[:8]) &^ (1 << 63))
	if id == 0 {
		return 1
	}
	return id
}

// SequentialIDs returns a generator yielding start, start+1, ...
// Tests use it for readable ids.
func SequentialIDs(start int64) func() int64 {
	var next atomic.Int64
	next.Store(start - 1)
	return func() int64 { return next.Add(1) }
}
