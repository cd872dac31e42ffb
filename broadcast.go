package session

import (
	"sync"

	"github.com/google/uuid"
)

// broadcaster fans resolved snapshots out to subscribers. Callbacks run
// synchronously on the mutating goroutine, after the manager's lock is
// released, so a subscriber can safely call back into the manager.
type broadcaster struct {
	mu   sync.RWMutex
	subs map[uuid.UUID]func(Snapshot)
}

func newBroadcaster() *broadcaster {
	return &broadcaster{subs: map[uuid.UUID]func(Snapshot){}}
}

func (b *broadcaster) subscribe(fn func(Snapshot)) func() {
	id := uuid.New()

	b.mu.Lock()
	b.subs[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

func (b *broadcaster) publish(snapshot Snapshot) {
	b.mu.RLock()
	fns := make([]func(Snapshot), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.RUnlock()

	for _, fn := range fns {
		fn(snapshot)
	}
}
