package realtime

import (
	"context"
	"fmt"
	"strings"
	"time"

	cmap "github.com/orcaman/concurrent-map/v2"

	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/safe"
)

// TypingTable tracks at most one live typing entry per (conversation, user).
// Entries expire on their own through Sweep, so a client that disconnects
// mid-type never leaves a stale indicator behind. That expiry is a
// correctness property of the protocol, not a cleanup nicety.
type TypingTable struct {
	ttl     time.Duration
	entries cmap.ConcurrentMap[string, time.Time]
}

func NewTypingTable(ttl time.Duration) *TypingTable {
	return &TypingTable{
		ttl:     ttl,
		entries: cmap.New[time.Time](),
	}
}

func typingKey(conversationID, userID string) string {
	return fmt.Sprintf("%s|%s", conversationID, userID)
}

func splitTypingKey(key string) (conversationID, userID string) {
	parts := strings.SplitN(key, "|", 2)
	if len(parts) != 2 {
		return "", ""
	}
	return parts[0], parts[1]
}

// Start upserts the entry with a fresh expiry. Returns true when the entry is
// new, false on a refresh.
func (t *TypingTable) Start(conversationID, userID string) bool {
	key := typingKey(conversationID, userID)
	existed := t.entries.Has(key)
	t.entries.Set(key, time.Now().Add(t.ttl))
	return !existed
}

// Stop removes the entry. Returns false when there was nothing to stop, so
// callers can skip the redundant broadcast.
func (t *TypingTable) Stop(conversationID, userID string) bool {
	_, existed := t.entries.Pop(typingKey(conversationID, userID))
	return existed
}

// StopAllForUser clears every typing entry a user holds, used on the last
// session disconnect. Returns the affected conversation ids.
func (t *TypingTable) StopAllForUser(userID string) []string {
	var conversations []string
	for _, key := range t.entries.Keys() {
		c, u := splitTypingKey(key)
		if u != userID {
			continue
		}
		if _, removed := t.entries.Pop(key); removed {
			conversations = append(conversations, c)
		}
	}
	return conversations
}

// Sweep expires overdue entries and reports them.
func (t *TypingTable) Sweep(now time.Time) [][2]string {
	var expired [][2]string
	for key, expiresAt := range t.entries.Items() {
		if expiresAt.After(now) {
			continue
		}
		if _, removed := t.entries.Pop(key); removed {
			c, u := splitTypingKey(key)
			expired = append(expired, [2]string{c, u})
		}
	}
	return expired
}

func (t *TypingTable) Len() int {
	return t.entries.Count()
}

// RunSweeper drives Sweep on a fixed interval until ctx is cancelled,
// invoking onExpire for every entry that timed out. The sweeper runs
// independently of any request path.
func (t *TypingTable) RunSweeper(ctx context.Context, interval time.Duration, onExpire func(conversationID, userID string)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			safe.Run(func() {
				for _, e := range t.Sweep(now) {
					onExpire(e[0], e[1])
				}
			})
		}
	}
}
