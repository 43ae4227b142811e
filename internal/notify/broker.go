// Package notify fans notices out from the store to any number of
// subscribers (the websocket layer, tests).
package notify

import (
	"sync"

	"github.com/dwagner/softphone/internal/types"
	"github.com/rs/zerolog"
)

const (
	// subscriberBuffer is the per-subscriber channel depth. A slow
	// subscriber drops notices rather than blocking the store.
	subscriberBuffer = 64

	// recentLimit caps the recent-notice buffer served to late joiners.
	recentLimit = 50
)

// Broker distributes notices to subscribers and keeps a bounded buffer
// of recent ones.
type Broker struct {
	mu          sync.RWMutex
	subscribers map[chan types.Notice]struct{}
	recent      []types.Notice
	logger      zerolog.Logger
}

// NewBroker creates a Broker.
func NewBroker(logger zerolog.Logger) *Broker {
	return &Broker{
		subscribers: make(map[chan types.Notice]struct{}),
		logger:      logger.With().Str("component", "notify").Logger(),
	}
}

// Publish delivers a notice to all subscribers without blocking.
func (b *Broker) Publish(notice types.Notice) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.recent = append(b.recent, notice)
	if len(b.recent) > recentLimit {
		b.recent = b.recent[len(b.recent)-recentLimit:]
	}

	for ch := range b.subscribers {
		select {
		case ch <- notice:
		default:
			b.logger.Warn().Str("title", notice.Title).Msg("subscriber buffer full, dropping notice")
		}
	}
}

// Subscribe registers a new subscriber and returns its channel plus an
// unsubscribe function.
func (b *Broker) Subscribe() (<-chan types.Notice, func()) {
	ch := make(chan types.Notice, subscriberBuffer)

	b.mu.Lock()
	b.subscribers[ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subscribers[ch]; ok {
			delete(b.subscribers, ch)
			close(ch)
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

// Recent returns a copy of the recent-notice buffer, oldest first.
func (b *Broker) Recent() []types.Notice {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]types.Notice, len(b.recent))
	copy(out, b.recent)
	return out
}

// SubscriberCount returns the number of active subscribers.
func (b *Broker) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
