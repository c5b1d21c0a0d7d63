// Package cache provides the invalidation bus between the realtime layer and
// the polled REST caches owned by the view layer. Live events never mutate
// cached values directly; they invalidate a named key so the next poll
// refetches server truth.
package cache

import "sync"

// Key names one polled cache.
type Key string

const (
	KeyConversations       Key = "conversations"
	KeyUnreadCount         Key = "unread-count"
	KeyNotifications       Key = "notifications"
	KeyConnections         Key = "connections"
	KeyAcceptedConnections Key = "accepted-connections"
)

// Invalidator is the write side of the bus.
type Invalidator interface {
	Invalidate(keys ...Key)
}

// Bus fans invalidation signals out to subscribers. Callbacks run
// synchronously on the invalidating goroutine and must not block.
type Bus struct {
	mu   sync.Mutex
	next int
	subs map[Key]map[int]func(Key)
}

func NewBus() *Bus {
	return &Bus{subs: make(map[Key]map[int]func(Key))}
}

// Subscribe registers fn for the given key and returns an unsubscribe
// function.
func (b *Bus) Subscribe(key Key, fn func(Key)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	if b.subs[key] == nil {
		b.subs[key] = make(map[int]func(Key))
	}
	b.subs[key][id] = fn

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs[key], id)
	}
}

// Invalidate signals every subscriber of each key.
func (b *Bus) Invalidate(keys ...Key) {
	b.mu.Lock()
	var fns []func(Key)
	var fnKeys []Key
	for _, key := range keys {
		for _, fn := range b.subs[key] {
			fns = append(fns, fn)
			fnKeys = append(fnKeys, key)
		}
	}
	b.mu.Unlock()

	for i, fn := range fns {
		fn(fnKeys[i])
	}
}
