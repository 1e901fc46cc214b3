package postgres

import (
	"context"
	"encoding/json"
	"time"

	"pushups/internal/domain"
	"pushups/internal/logger"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const (
	changeChannel   = "log_changes"
	minReconnect    = 2 * time.Second
	maxReconnect    = time.Minute
	listenerPingGap = 90 * time.Second
	changeBuffer    = 64
)

// ChangeFeed streams log mutations published by the notify_log_change trigger.
type ChangeFeed struct {
	connStr string
}

var _ domain.LogChangeFeed = (*ChangeFeed)(nil)

// NewChangeFeed creates a feed that opens its own listener connection.
func NewChangeFeed(connStr string) *ChangeFeed {
	return &ChangeFeed{connStr: connStr}
}

// SubscribeLogChanges listens on the change channel until ctx ends. After a
// reconnect a ChangeResync is emitted since notifications may have been lost.
func (f *ChangeFeed) SubscribeLogChanges(ctx context.Context) (<-chan domain.LogChange, error) {
	l := pq.NewListener(f.connStr, minReconnect, maxReconnect, func(ev pq.ListenerEventType, err error) {
		switch ev {
		case pq.ListenerEventDisconnected:
			logger.Warn("change feed disconnected: %v", err)
		case pq.ListenerEventReconnected:
			logger.Info("change feed reconnected")
		case pq.ListenerEventConnectionAttemptFailed:
			logger.Warn("change feed connect failed: %v", err)
		}
	})
	if err := l.Listen(changeChannel); err != nil {
		_ = l.Close()
		return nil, err
	}

	out := make(chan domain.LogChange, changeBuffer)
	go func() {
		defer close(out)
		defer l.Close() //nolint:errcheck

		ticker := time.NewTicker(listenerPingGap)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case n, ok := <-l.Notify:
				if !ok {
					return
				}
				var c domain.LogChange
				if n == nil {
					c = domain.LogChange{Op: domain.ChangeResync}
				} else {
					var err error
					c, err = decodeLogChange(n.Extra)
					if err != nil {
						logger.Warn("change feed: %v", err)
						continue
					}
				}
				select {
				case out <- c:
				case <-ctx.Done():
					return
				}
			case <-ticker.C:
				if err := l.Ping(); err != nil {
					logger.Warn("change feed ping: %v", err)
				}
			}
		}
	}()
	return out, nil
}

type changePayload struct {
	Op      string  `json:"op"`
	UserID  string  `json:"user_id"`
	GroupID *string `json:"group_id"`
	Date    string  `json:"date"`
}

func decodeLogChange(payload string) (domain.LogChange, error) {
	var p changePayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return domain.LogChange{}, domain.Malformed("change payload: %v", err)
	}

	op := domain.ChangeOp(p.Op)
	switch op {
	case domain.ChangeInsert, domain.ChangeUpdate, domain.ChangeDelete:
	default:
		return domain.LogChange{}, domain.Malformed("change payload: unknown op %q", p.Op)
	}

	userID, err := uuid.Parse(p.UserID)
	if err != nil {
		return domain.LogChange{}, domain.Malformed("change payload: user_id: %v", err)
	}
	// group_id is NULL when the profile row is already gone.
	var groupID uuid.UUID
	if p.GroupID != nil {
		if groupID, err = uuid.Parse(*p.GroupID); err != nil {
			return domain.LogChange{}, domain.Malformed("change payload: group_id: %v", err)
		}
	}
	if _, err := domain.ParseDateKey(p.Date); err != nil {
		return domain.LogChange{}, domain.Malformed("change payload: %v", err)
	}

	return domain.LogChange{Op: op, UserID: userID, GroupID: groupID, Date: p.Date}, nil
}
