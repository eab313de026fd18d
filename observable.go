package launcherprefs

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// broadcaster signals store commits to subscribers. Each subscriber owns a
// one-slot channel; signals coalesce so a slow subscriber only ever sees the
// latest committed state, never a backlog.
type broadcaster struct {
	mu   sync.RWMutex
	subs map[string]chan struct{}
}

func newBroadcaster() *broadcaster {
	return &broadcaster{subs: make(map[string]chan struct{})}
}

func (b *broadcaster) subscribe() (<-chan struct{}, func()) {
	id := uuid.NewString()
	ch := make(chan struct{}, 1)

	b.mu.Lock()
	b.subs[id] = ch
	b.mu.Unlock()

	return ch, func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

func (b *broadcaster) publish() {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- struct{}{}:
		default:
			// A signal is already pending; the subscriber will read the latest state.
		}
	}
}

func (b *broadcaster) count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Observable is a multicast, last-value-cached view of one value derived from
// a store. New subscribers receive the current value immediately and again
// after every committed write. Streams never complete on their own.
type Observable[T any] struct {
	hub     *broadcaster
	current func() T
}

// NewObservable derives an Observable from a store's commit stream. It lets
// packages layered on top of a store (gesture points, widget placements)
// expose their decoded collections with the same replay semantics.
func NewObservable[T any](s *Store, current func() T) *Observable[T] {
	return &Observable[T]{hub: s.hub, current: current}
}

// Current returns the latest committed value.
func (o *Observable[T]) Current() T {
	return o.current()
}

// Subscribe returns a channel that replays the latest value and then emits on
// every commit. The channel is closed only when ctx is cancelled.
func (o *Observable[T]) Subscribe(ctx context.Context) <-chan T {
	out := make(chan T, 1)
	notify, cancel := o.hub.subscribe()

	go func() {
		defer close(out)
		defer cancel()
		for {
			select {
			case out <- o.current():
			case <-ctx.Done():
				return
			}
			select {
			case <-notify:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}
