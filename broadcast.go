package main

import "sync"

// Broadcaster fans values out to subscribers and replays the latest value
// to each new subscriber. Every subscriber channel holds at most one pending
// value; a publish replaces an unread one so a slow reader only ever
// sees the newest value and never blocks the publisher.
type Broadcaster[T any] struct {
	mu        sync.Mutex
	latest    T
	hasLatest bool
	subs      map[int]chan T
	nextID    int
	closed    bool
}

// NewBroadcaster creates a broadcaster with no value yet
func NewBroadcaster[T any]() *Broadcaster[T] {
	return &Broadcaster[T]{subs: map[int]chan T{}}
}

// Publish records v as the latest value and delivers it to all subscribers
func (b *Broadcaster[T]) Publish(v T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.latest = v
	b.hasLatest = true
	for _, ch := range b.subs {
		deliver(ch, v)
	}
}

// Latest returns the most recently published value
func (b *Broadcaster[T]) Latest() (T, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.latest, b.hasLatest
}

// Subscribe returns a channel receiving the latest value (if any) followed by
// every later publish. The cancel func closes the channel and is safe to call twice.
func (b *Broadcaster[T]) Subscribe() (<-chan T, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan T, 1)
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	if b.hasLatest {
		ch <- b.latest
	}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if _, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(ch)
			}
		})
	}
}

// Close closes every subscriber channel; later publishes are dropped
func (b *Broadcaster[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		close(ch)
		delete(b.subs, id)
	}
}

// deliver must be called with the broadcaster lock held
func deliver[T any](ch chan T, v T) {
	select {
	case ch <- v:
		return
	default:
	}
	// Drop the unread value; only publishers send, so the retry cannot block
	select {
	case <-ch:
	default:
	}
	ch <- v
}
