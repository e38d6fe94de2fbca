// Package event provides a typed, synchronous publish/subscribe bus.
//
// A Bus[T] delivers every published value to all current subscribers in
// subscription order, on the publishing goroutine. Subscribing and
// unsubscribing are safe from any goroutine; a handler that unsubscribes
// while a value is being delivered still receives that value.
//
//	adds := event.NewBus[annotation.Event]()
//	id := adds.Subscribe(func(e annotation.Event) { ... })
//	defer adds.Unsubscribe(id)
package event

import (
	"errors"
	"sync"

	"volmeasure/pkg/geom"
	"volmeasure/pkg/logging"
)

// Event type names.
const (
	AnnotationAdd                 = "annotationadd"
	AnnotationUpdate              = "annotationupdate"
	AnnotationRemove              = "annotationremove"
	AnnotationGroupEditableChange = "annotationgroupeditablechange"
	DrawCreate                    = "draw-create"
	DrawDelete                    = "draw-delete"
	DrawMove                      = "draw-move"
	DrawChange                    = "draw-change"
	PositionChanged               = "positionchange"
	SegmentColourChange           = "segmentcolourchange"
	SegmentRemove                 = "segmentremove"
	UndoAdd                       = "undoadd"
	Undo                          = "undo"
	Redo                          = "redo"
)

// PositionChange is the payload of a positionchange event: the new index
// and world position of a view.
type PositionChange struct {
	Index    geom.Index
	Position geom.Point
}

// ErrSubscriberNotFound is returned when Unsubscribe is called with an unknown id.
var ErrSubscriberNotFound = errors.New("subscriber id not found")

// Handler receives published values.
type Handler[T any] func(T)

// SubscriptionID identifies a subscription on one bus.
type SubscriptionID uint64

type subscriber[T any] struct {
	id      SubscriptionID
	handler Handler[T]
}

// Bus distributes values of type T. The zero value is ready to use.
type Bus[T any] struct {
	mu          sync.RWMutex
	nextID      SubscriptionID
	subscribers []subscriber[T]
}

// NewBus returns an empty bus.
func NewBus[T any]() *Bus[T] {
	return &Bus[T]{}
}

// Subscribe registers a handler. A nil handler is ignored and gets id 0.
func (b *Bus[T]) Subscribe(h Handler[T]) SubscriptionID {
	if h == nil {
		logging.Logger().Warn("event: ignoring nil handler")
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	b.subscribers = append(b.subscribers, subscriber[T]{id: b.nextID, handler: h})
	return b.nextID
}

// Unsubscribe removes a subscription.
func (b *Bus[T]) Unsubscribe(id SubscriptionID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subscribers {
		if s.id == id {
			// copy so snapshots held by Publish stay intact
			next := make([]subscriber[T], 0, len(b.subscribers)-1)
			next = append(next, b.subscribers[:i]...)
			b.subscribers = append(next, b.subscribers[i+1:]...)
			return nil
		}
	}
	return ErrSubscriberNotFound
}

// Publish delivers v to every subscriber.
func (b *Bus[T]) Publish(v T) {
	b.mu.RLock()
	subs := b.subscribers
	b.mu.RUnlock()

	for _, s := range subs {
		s.handler(v)
	}
}

// Len returns the number of subscribers.
func (b *Bus[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
