package app

import (
	"context"
	"sync"

	"pushups/internal/domain"
	"pushups/internal/logger"

	"github.com/google/uuid"
)

const subscriberBuffer = 16

type subscriber struct {
	group uuid.UUID
	ch    chan domain.LogChange
}

// ChangeHub fans the store's log change feed out to per-group subscribers.
// Slow subscribers drop events rather than stall the feed.
type ChangeHub struct {
	feed domain.LogChangeFeed

	mu     sync.Mutex
	nextID int
	subs   map[int]subscriber
}

// NewChangeHub creates a hub over feed.
func NewChangeHub(feed domain.LogChangeFeed) *ChangeHub {
	return &ChangeHub{feed: feed, subs: make(map[int]subscriber)}
}

// Run consumes the feed until ctx is done or the feed closes.
func (h *ChangeHub) Run(ctx context.Context) error {
	changes, err := h.feed.SubscribeLogChanges(ctx)
	if err != nil {
		return err
	}
	defer h.closeAll()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case c, ok := <-changes:
			if !ok {
				logger.Warn("log change feed closed")
				return nil
			}
			h.publish(c)
		}
	}
}

// Subscribe registers interest in changes to groupID's logs. The returned
// cancel func must be called to release the subscription.
func (h *ChangeHub) Subscribe(groupID uuid.UUID) (<-chan domain.LogChange, func()) {
	ch := make(chan domain.LogChange, subscriberBuffer)

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = subscriber{group: groupID, ch: ch}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			if s, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(s.ch)
			}
			h.mu.Unlock()
		})
	}
}

func (h *ChangeHub) publish(c domain.LogChange) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, s := range h.subs {
		if c.Op != domain.ChangeResync && s.group != c.GroupID {
			continue
		}
		select {
		case s.ch <- c:
		default:
		}
	}
}

func (h *ChangeHub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, s := range h.subs {
		close(s.ch)
		delete(h.subs, id)
	}
}
