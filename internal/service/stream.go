package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/pkordes/trip-journal/internal/watch"
)

// collection keeps a watch.Topic in sync with a loader. Loads and publishes
// happen under mu so snapshots reach subscribers in commit order.
type collection[V any] struct {
	name  string
	log   *slog.Logger
	load  func(ctx context.Context) (V, error)
	mu    sync.Mutex
	topic *watch.Topic[V]
}

func newCollection[V any](c *Core, name string, load func(context.Context) (V, error), tables ...watch.Table) *collection[V] {
	col := &collection[V]{name: name, log: c.log, load: load, topic: watch.NewTopic[V]()}
	c.changes.On(col.refresh, tables...)
	return col
}

func (col *collection[V]) observe(ctx context.Context) (*watch.Subscription[V], error) {
	col.mu.Lock()
	defer col.mu.Unlock()
	v, err := col.load(ctx)
	if err != nil {
		return nil, err
	}
	return col.topic.Subscribe(ctx, v), nil
}

func (col *collection[V]) refresh(ctx context.Context) {
	col.mu.Lock()
	defer col.mu.Unlock()
	if !col.topic.Active() {
		return
	}
	v, err := col.load(ctx)
	if err != nil {
		col.log.Error("stream refresh failed", "stream", col.name, "error", err)
		return
	}
	col.topic.Publish(v)
}

// keyedCollection is a collection per key, such as "entries of trip 7".
// Only keys with live subscribers are reloaded.
type keyedCollection[K comparable, V any] struct {
	name string
	log  *slog.Logger
	load func(ctx context.Context, key K) (V, error)
	mu   sync.Mutex
	hub  *watch.Hub[K, V]
}

func newKeyedCollection[K comparable, V any](c *Core, name string, load func(context.Context, K) (V, error), tables ...watch.Table) *keyedCollection[K, V] {
	col := &keyedCollection[K, V]{name: name, log: c.log, load: load, hub: watch.NewHub[K, V]()}
	c.changes.On(col.refresh, tables...)
	return col
}

func (col *keyedCollection[K, V]) observe(ctx context.Context, key K) (*watch.Subscription[V], error) {
	col.mu.Lock()
	defer col.mu.Unlock()
	v, err := col.load(ctx, key)
	if err != nil {
		return nil, err
	}
	return col.hub.Subscribe(ctx, key, v), nil
}

func (col *keyedCollection[K, V]) refresh(ctx context.Context) {
	col.mu.Lock()
	defer col.mu.Unlock()
	for _, key := range col.hub.Keys() {
		v, err := col.load(ctx, key)
		if err != nil {
			col.log.Error("stream refresh failed", "stream", col.name, "key", key, "error", err)
			continue
		}
		col.hub.Publish(key, v)
	}
}
