// Package events is a small typed publish/subscribe bus used to connect the
// client core with its displays without either knowing the other.
package events

import "sync"

// Bus delivers each published value to every current subscriber, in
// subscription order, on the publisher's goroutine.
type Bus[T any] struct {
	mu     sync.Mutex
	nextID int
	subs   []subscription[T]
}

type subscription[T any] struct {
	id int
	fn func(T)
}

// Subscribe registers fn and returns a function that removes it.
func (b *Bus[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription[T]{id: id, fn: fn})
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, s := range b.subs {
			if s.id == id {
				b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
				return
			}
		}
	}
}

// Publish calls every subscriber with v.
func (b *Bus[T]) Publish(v T) {
	b.mu.Lock()
	subs := append([]subscription[T](nil), b.subs...)
	b.mu.Unlock()
	for _, s := range subs {
		s.fn(v)
	}
}

// CellClicked is emitted by a board display.
type CellClicked struct {
	Row, Col int
}

// HistoryClicked is emitted by a history display. Index -1 selects the
// initial position and history.Live the live one.
type HistoryClicked struct {
	Index int
}
