package store

import (
	"sync"

	"github.com/google/uuid"
)

// Topic identifies which container changed.
type Topic string

const (
	TopicCases    Topic = "cases"
	TopicOffices  Topic = "offices"
	TopicClusters Topic = "clusters"
	TopicStats    Topic = "stats"
	TopicFilters  Topic = "filters"
)

// notifier fans change notifications out to subscribers. Callbacks run
// synchronously on the mutating goroutine, after the store lock is released,
// so a subscriber may read the store but must not block.
type notifier struct {
	mu   sync.RWMutex
	subs map[string]func(Topic)
}

func (n *notifier) subscribe(fn func(Topic)) func() {
	n.mu.Lock()
	if n.subs == nil {
		n.subs = make(map[string]func(Topic))
	}
	token := uuid.NewString()
	n.subs[token] = fn
	n.mu.Unlock()

	return func() {
		n.mu.Lock()
		delete(n.subs, token)
		n.mu.Unlock()
	}
}

func (n *notifier) publish(topic Topic) {
	n.mu.RLock()
	fns := make([]func(Topic), 0, len(n.subs))
	for _, fn := range n.subs {
		fns = append(fns, fn)
	}
	n.mu.RUnlock()

	for _, fn := range fns {
		fn(topic)
	}
}

// Subscribe registers a change callback and returns a cancel function.
// Views subscribe on mount and must cancel on teardown.
func (s *Store) Subscribe(fn func(Topic)) func() {
	return s.notifier.subscribe(fn)
}
