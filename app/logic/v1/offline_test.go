package v1

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/realtime"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/types"
)

type fakeOfflineQueue struct {
	entries []types.OfflineQueueEntry
	deleted []int64
}

func (q *fakeOfflineQueue) ListForReplay(ctx context.Context, recipientUserID, conversationID string) ([]types.OfflineQueueEntry, error) {
	return lo.Filter(q.entries, func(e types.OfflineQueueEntry, _ int) bool {
		return e.RecipientUserID == recipientUserID && e.ConversationID == conversationID
	}), nil
}

func (q *fakeOfflineQueue) Delete(ctx context.Context, ids []int64) error {
	q.deleted = append(q.deleted, ids...)
	q.entries = lo.Filter(q.entries, func(e types.OfflineQueueEntry, _ int) bool {
		return !lo.Contains(ids, e.ID)
	})
	return nil
}

func (q *fakeOfflineQueue) CountForUser(ctx context.Context, recipientUserID string) (int64, error) {
	return int64(lo.CountBy(q.entries, func(e types.OfflineQueueEntry) bool {
		return e.RecipientUserID == recipientUserID
	})), nil
}

type fakeMessageLookup struct {
	messages map[string]*types.Message
}

func (s *fakeMessageLookup) ListByIDs(ctx context.Context, ids []string) ([]*types.Message, error) {
	var out []*types.Message
	for _, id := range ids {
		if m, ok := s.messages[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeReceiptLedger struct {
	receipts []*types.MessageReceipt
}

func (s *fakeReceiptLedger) MarkDelivered(ctx context.Context, messageIDs []string, userID string, deliveredAt int64) error {
	for _, id := range messageIDs {
		s.receipts = append(s.receipts, &types.MessageReceipt{
			MessageID:   id,
			UserID:      userID,
			DeliveredAt: deliveredAt,
		})
	}
	return nil
}

func (s *fakeReceiptLedger) ListByMessages(ctx context.Context, messageIDs []string) ([]*types.MessageReceipt, error) {
	return lo.Filter(s.receipts, func(r *types.MessageReceipt, _ int) bool {
		return lo.Contains(messageIDs, r.MessageID)
	}), nil
}

type publishedEvent struct {
	userID string
	event  types.WsEventType
	data   any
}

type fakeUserPublisher struct {
	events []publishedEvent
}

func (p *fakeUserPublisher) PublishToUser(userID string, event types.WsEventType, data any) error {
	p.events = append(p.events, publishedEvent{userID: userID, event: event, data: data})
	return nil
}

type noopOfflineMetrics struct{}

func (noopOfflineMetrics) ObserveOfflineReplay(size int) {}

func newTestOfflineLogic(queue *fakeOfflineQueue, messages *fakeMessageLookup, receipts *fakeReceiptLedger, publisher *fakeUserPublisher) *OfflineLogic {
	return &OfflineLogic{
		ctx:       context.Background(),
		queue:     queue,
		messages:  messages,
		receipts:  receipts,
		publisher: publisher,
		metrics:   noopOfflineMetrics{},
		transaction: func(ctx context.Context, fn func(ctx context.Context) error) error {
			return fn(ctx)
		},
	}
}

func storedMessage(id, conversationID, senderID string, sequence int64) *types.Message {
	return &types.Message{
		ID:             id,
		ConversationID: conversationID,
		UserID:         senderID,
		MsgType:        types.MESSAGE_TYPE_TEXT,
		Content:        "hello",
		Sequence:       sequence,
	}
}

func capturedSession(userID string, frames *[][]byte) *realtime.Session {
	session, _ := realtime.NewRegistry().Register("s1", userID, func(raw []byte) {
		*frames = append(*frames, raw)
	})
	return session
}

func decodeReplayFrames(t *testing.T, frames [][]byte) []types.Message {
	t.Helper()
	var out []types.Message
	for _, frame := range frames {
		var env struct {
			Type types.WsEventType `json:"type"`
			Data types.Message     `json:"data"`
		}
		require.NoError(t, json.Unmarshal(frame, &env))
		require.Equal(t, types.WS_EVENT_NEW_MESSAGE, env.Type)
		out = append(out, env.Data)
	}
	return out
}

func TestReplayToSession_OnlyDrainsJoinedConversation(t *testing.T) {
	queue := &fakeOfflineQueue{entries: []types.OfflineQueueEntry{
		{ID: 1, RecipientUserID: "uB", ConversationID: "convA", MessageID: "m1"},
		{ID: 2, RecipientUserID: "uB", ConversationID: "convA", MessageID: "m2"},
		{ID: 3, RecipientUserID: "uB", ConversationID: "convC", MessageID: "m3"},
		{ID: 4, RecipientUserID: "uOther", ConversationID: "convA", MessageID: "m4"},
	}}
	messages := &fakeMessageLookup{messages: map[string]*types.Message{
		"m1": storedMessage("m1", "convA", "uA", 1),
		"m2": storedMessage("m2", "convA", "uA", 2),
		"m3": storedMessage("m3", "convC", "uC", 1),
	}}
	receipts := &fakeReceiptLedger{}
	publisher := &fakeUserPublisher{}

	var frames [][]byte
	session := capturedSession("uB", &frames)

	err := newTestOfflineLogic(queue, messages, receipts, publisher).ReplayToSession(session, "convA")
	require.NoError(t, err)

	replayed := decodeReplayFrames(t, frames)
	require.Len(t, replayed, 2)
	assert.Equal(t, "m1", replayed[0].ID)
	assert.Equal(t, "m2", replayed[1].ID)

	// convC stays queued for its own join, the other recipient is untouched
	assert.ElementsMatch(t, []int64{1, 2}, queue.deleted)
	remaining, err := queue.ListForReplay(context.Background(), "uB", "convC")
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "m3", remaining[0].MessageID)
	others, err := queue.ListForReplay(context.Background(), "uOther", "convA")
	require.NoError(t, err)
	assert.Len(t, others, 1)
}

func TestReplayToSession_SecondReplayIsNoop(t *testing.T) {
	queue := &fakeOfflineQueue{entries: []types.OfflineQueueEntry{
		{ID: 1, RecipientUserID: "uB", ConversationID: "convA", MessageID: "m1"},
	}}
	messages := &fakeMessageLookup{messages: map[string]*types.Message{
		"m1": storedMessage("m1", "convA", "uA", 1),
	}}
	logic := newTestOfflineLogic(queue, messages, &fakeReceiptLedger{}, &fakeUserPublisher{})

	var frames [][]byte
	session := capturedSession("uB", &frames)

	require.NoError(t, logic.ReplayToSession(session, "convA"))
	require.Len(t, frames, 1)

	require.NoError(t, logic.ReplayToSession(session, "convA"))
	assert.Len(t, frames, 1, "a drained backlog must not deliver again")
}

func TestReplayToSession_EmptyBacklogIsNoop(t *testing.T) {
	queue := &fakeOfflineQueue{}
	receipts := &fakeReceiptLedger{}
	publisher := &fakeUserPublisher{}
	logic := newTestOfflineLogic(queue, &fakeMessageLookup{}, receipts, publisher)

	var frames [][]byte
	session := capturedSession("uB", &frames)

	require.NoError(t, logic.ReplayToSession(session, "convA"))
	assert.Empty(t, frames)
	assert.Empty(t, receipts.receipts)
	assert.Empty(t, publisher.events)
}

func TestReplayToSession_MarksDeliveredAndNotifiesSenders(t *testing.T) {
	queue := &fakeOfflineQueue{entries: []types.OfflineQueueEntry{
		{ID: 1, RecipientUserID: "uB", ConversationID: "convA", MessageID: "m1"},
	}}
	messages := &fakeMessageLookup{messages: map[string]*types.Message{
		"m1": storedMessage("m1", "convA", "uA", 1),
	}}
	receipts := &fakeReceiptLedger{}
	publisher := &fakeUserPublisher{}

	var frames [][]byte
	session := capturedSession("uB", &frames)

	err := newTestOfflineLogic(queue, messages, receipts, publisher).ReplayToSession(session, "convA")
	require.NoError(t, err)

	require.Len(t, receipts.receipts, 1)
	assert.Equal(t, "uB", receipts.receipts[0].UserID)
	assert.Greater(t, receipts.receipts[0].DeliveredAt, int64(0))

	require.Len(t, publisher.events, 1)
	assert.Equal(t, "uA", publisher.events[0].userID)
	assert.Equal(t, types.WS_EVENT_MESSAGE_DELIVERED, publisher.events[0].event)
	data, ok := publisher.events[0].data.(types.MessageDeliveredData)
	require.True(t, ok)
	assert.Equal(t, "m1", data.MessageID)
	assert.Equal(t, "uB", data.UserID)
	assert.Contains(t, data.DeliveredTo, "uB")
}

func TestReplayToSession_SkipsRemovedMessages(t *testing.T) {
	queue := &fakeOfflineQueue{entries: []types.OfflineQueueEntry{
		{ID: 1, RecipientUserID: "uB", ConversationID: "convA", MessageID: "m-gone"},
		{ID: 2, RecipientUserID: "uB", ConversationID: "convA", MessageID: "m2"},
	}}
	messages := &fakeMessageLookup{messages: map[string]*types.Message{
		"m2": storedMessage("m2", "convA", "uA", 2),
	}}
	logic := newTestOfflineLogic(queue, messages, &fakeReceiptLedger{}, &fakeUserPublisher{})

	var frames [][]byte
	session := capturedSession("uB", &frames)

	require.NoError(t, logic.ReplayToSession(session, "convA"))

	replayed := decodeReplayFrames(t, frames)
	require.Len(t, replayed, 1)
	assert.Equal(t, "m2", replayed[0].ID)
	// the dangling row is still removed so it never comes back
	assert.ElementsMatch(t, []int64{1, 2}, queue.deleted)
}
