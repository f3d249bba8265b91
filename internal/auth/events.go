package auth

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/postcraft/backend/pkg/logger"
)

type EventType string

const (
	EventSignedIn  EventType = "SIGNED_IN"
	EventSignedOut EventType = "SIGNED_OUT"
)

// Event is a session change for one user.
type Event struct {
	Type   EventType `json:"event"`
	UserID string    `json:"user_id"`
	At     time.Time `json:"at"`
}

// Broadcaster fans session events out to per-user subscribers. A subscriber
// that falls behind loses events rather than blocking the publisher.
type Broadcaster struct {
	mu     sync.RWMutex
	subs   map[string]map[uint64]chan Event
	nextID uint64
	buffer int
}

func NewBroadcaster(buffer int) *Broadcaster {
	if buffer <= 0 {
		buffer = 8
	}
	return &Broadcaster{
		subs:   make(map[string]map[uint64]chan Event),
		buffer: buffer,
	}
}

// Subscribe returns the event channel for userID and a function that ends
// the subscription and closes the channel. The function is safe to call
// more than once.
func (b *Broadcaster) Subscribe(userID string) (<-chan Event, func()) {
	ch := make(chan Event, b.buffer)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	if b.subs[userID] == nil {
		b.subs[userID] = make(map[uint64]chan Event)
	}
	b.subs[userID][id] = ch
	b.mu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()

			delete(b.subs[userID], id)
			if len(b.subs[userID]) == 0 {
				delete(b.subs, userID)
			}
			close(ch)
		})
	}

	return ch, unsubscribe
}

func (b *Broadcaster) Publish(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subs[event.UserID] {
		select {
		case ch <- event:
		default:
			logger.Warn("Dropping session event for slow subscriber",
				zap.String("user_id", event.UserID),
				zap.String("event", string(event.Type)),
			)
		}
	}
}

func (b *Broadcaster) Subscribers(userID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[userID])
}
