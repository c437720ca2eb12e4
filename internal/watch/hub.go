// Package watch provides the reactive read streams behind the journal's
// observe operations: subscribers receive a replacement snapshot whenever a
// write completes.
//
// Delivery is latest-wins. Each subscription buffers one value; a publish
// replaces an unread value instead of blocking the writer, so a slow reader
// only ever sees the newest snapshot. Values are delivered in publish order.
package watch

import (
	"context"
	"sync"
)

// Subscription is a cancelable stream of snapshots.
type Subscription[V any] struct {
	ch     chan V
	cancel func()
	once   sync.Once

	mu       sync.Mutex
	canceled bool
	stop     func() bool // releases the context.AfterFunc registration
}

// C returns the channel snapshots arrive on. It is closed by Cancel.
func (s *Subscription[V]) C() <-chan V { return s.ch }

// Cancel ends the subscription. Once Cancel returns, nothing further is
// received: any undelivered snapshot is discarded and C is closed.
// Cancel is safe to call more than once and from any goroutine.
func (s *Subscription[V]) Cancel() {
	s.once.Do(func() {
		s.mu.Lock()
		s.canceled = true
		stop := s.stop
		s.mu.Unlock()
		if stop != nil {
			stop()
		}
		s.cancel()
	})
}

func (s *Subscription[V]) setStop(stop func() bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.canceled {
		stop()
		return
	}
	s.stop = stop
}

// offer replaces any unread value with v. Callers hold the hub lock.
func (s *Subscription[V]) offer(v V) {
	select {
	case s.ch <- v:
		return
	default:
	}
	select {
	case <-s.ch:
	default:
	}
	select {
	case s.ch <- v:
	default:
	}
}

// Hub fans snapshots out to subscribers grouped by key, for example
// "entries of trip 7".
type Hub[K comparable, V any] struct {
	mu     sync.Mutex
	subs   map[K]map[*Subscription[V]]struct{}
	closed bool
}

// NewHub returns an empty hub.
func NewHub[K comparable, V any]() *Hub[K, V] {
	return &Hub[K, V]{subs: map[K]map[*Subscription[V]]struct{}{}}
}

// Subscribe registers a subscriber for key whose first value is initial.
// The subscription is canceled when ctx is done.
func (h *Hub[K, V]) Subscribe(ctx context.Context, key K, initial V) *Subscription[V] {
	sub := &Subscription[V]{ch: make(chan V, 1)}
	sub.cancel = func() { h.remove(key, sub) }

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(sub.ch)
		return sub
	}
	if h.subs[key] == nil {
		h.subs[key] = map[*Subscription[V]]struct{}{}
	}
	h.subs[key][sub] = struct{}{}
	sub.offer(initial)
	h.mu.Unlock()

	sub.setStop(context.AfterFunc(ctx, sub.Cancel))
	return sub
}

// Publish delivers v to every subscriber of key without blocking.
func (h *Hub[K, V]) Publish(key K, v V) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs[key] {
		sub.offer(v)
	}
}

// Keys returns the keys that currently have at least one subscriber.
func (h *Hub[K, V]) Keys() []K {
	h.mu.Lock()
	defer h.mu.Unlock()
	keys := make([]K, 0, len(h.subs))
	for k := range h.subs {
		keys = append(keys, k)
	}
	return keys
}

// Has reports whether key has at least one subscriber.
func (h *Hub[K, V]) Has(key K) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[key]) > 0
}

// Len returns the total number of live subscriptions.
func (h *Hub[K, V]) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, set := range h.subs {
		n += len(set)
	}
	return n
}

// Close cancels every subscription. Later Subscribe calls return an already
// closed subscription.
func (h *Hub[K, V]) Close() {
	h.mu.Lock()
	h.closed = true
	var all []*Subscription[V]
	for _, set := range h.subs {
		for sub := range set {
			all = append(all, sub)
		}
	}
	h.mu.Unlock()

	for _, sub := range all {
		sub.Cancel()
	}
}

func (h *Hub[K, V]) remove(key K, sub *Subscription[V]) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.subs[key]
	if !ok {
		return
	}
	if _, ok := set[sub]; !ok {
		return
	}
	delete(set, sub)
	if len(set) == 0 {
		delete(h.subs, key)
	}
	// Publishers only send while holding mu, so after this drain nothing
	// can reach the channel again.
	select {
	case <-sub.ch:
	default:
	}
	close(sub.ch)
}

// Topic is a Hub with a single key, for collections that are observed as a
// whole such as "all trips".
type Topic[V any] struct {
	hub *Hub[struct{}, V]
}

// NewTopic returns an empty topic.
func NewTopic[V any]() *Topic[V] {
	return &Topic[V]{hub: NewHub[struct{}, V]()}
}

// Subscribe registers a subscriber whose first value is initial.
func (t *Topic[V]) Subscribe(ctx context.Context, initial V) *Subscription[V] {
	return t.hub.Subscribe(ctx, struct{}{}, initial)
}

// Publish delivers v to every subscriber without blocking.
func (t *Topic[V]) Publish(v V) { t.hub.Publish(struct{}{}, v) }

// Active reports whether anyone is subscribed.
func (t *Topic[V]) Active() bool { return t.hub.Has(struct{}{}) }

// Len returns the number of live subscriptions.
func (t *Topic[V]) Len() int { return t.hub.Len() }

// Close cancels every subscription.
func (t *Topic[V]) Close() { t.hub.Close() }
