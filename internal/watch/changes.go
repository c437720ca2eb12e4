package watch

import (
	"context"
	"slices"
	"sync"
)

// Table names a group of rows whose mutation invalidates some streams.
type Table string

const (
	Trips         Table = "trips"
	Entries       Table = "entries"
	Places        Table = "places"
	RoutePoints   Table = "route_points"
	Favorites     Table = "favorites"
	Tags          Table = "tags"
	Themes        Table = "themes"
	Settings      Table = "settings"
	SearchHistory Table = "search_history"
)

// Changes routes "table X changed" signals to the streams that depend on
// it. A trip delete cascades in the store, so it is reported as a change to
// trips, entries, places, route points and favorites together.
//
// Listeners run synchronously on the writer's goroutine, in registration
// order, each at most once per Notify.
type Changes struct {
	mu        sync.RWMutex
	listeners []listener
}

type listener struct {
	tables []Table
	fn     func(ctx context.Context)
}

// NewChanges returns an empty registry.
func NewChanges() *Changes {
	return &Changes{}
}

// On registers fn to run whenever any of tables changes.
func (c *Changes) On(fn func(ctx context.Context), tables ...Table) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, listener{tables: tables, fn: fn})
}

// Notify runs every listener registered for at least one of tables.
func (c *Changes) Notify(ctx context.Context, tables ...Table) {
	c.mu.RLock()
	var due []func(context.Context)
	for _, l := range c.listeners {
		for _, t := range tables {
			if slices.Contains(l.tables, t) {
				due = append(due, l.fn)
				break
			}
		}
	}
	c.mu.RUnlock()

	for _, fn := range due {
		fn(ctx)
	}
}
