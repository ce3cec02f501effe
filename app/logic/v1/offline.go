package v1

import (
	"context"

	"github.com/samber/lo"

	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/app/core"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/errors"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/i18n"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/realtime"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/types"
)

type offlineQueueStore interface {
	ListForReplay(ctx context.Context, recipientUserID, conversationID string) ([]types.OfflineQueueEntry, error)
	Delete(ctx context.Context, ids []int64) error
	CountForUser(ctx context.Context, recipientUserID string) (int64, error)
}

type offlineMessageStore interface {
	ListByIDs(ctx context.Context, ids []string) ([]*types.Message, error)
}

type offlineReceiptStore interface {
	MarkDelivered(ctx context.Context, messageIDs []string, userID string, deliveredAt int64) error
	ListByMessages(ctx context.Context, messageIDs []string) ([]*types.MessageReceipt, error)
}

type offlineMetrics interface {
	ObserveOfflineReplay(size int)
}

type receiptPublisher interface {
	PublishToUser(userID string, event types.WsEventType, data any) error
}

// OfflineLogic drains the durable backlog built up while a user had no live
// session, one conversation at a time as the user joins its room.
type OfflineLogic struct {
	ctx         context.Context
	queue       offlineQueueStore
	messages    offlineMessageStore
	receipts    offlineReceiptStore
	publisher   receiptPublisher
	metrics     offlineMetrics
	transaction func(ctx context.Context, fn func(ctx context.Context) error) error
}

func NewOfflineLogic(ctx context.Context, core *core.Core) *OfflineLogic {
	return &OfflineLogic{
		ctx:         ctx,
		queue:       core.Store().OfflineQueueStore(),
		messages:    core.Store().MessageStore(),
		receipts:    core.Store().MessageReceiptStore(),
		publisher:   core.Srv().Tower(),
		metrics:     core.Metrics(),
		transaction: core.Store().Transaction,
	}
}

// ReplayToSession hands the backlog for one conversation to the session that
// just joined its room, in enqueue order, then deletes the rows. A session
// only ever receives frames for conversations it joined, so rows of other
// conversations stay queued for their own future joins. Everything happens in
// one transaction with the rows locked, so deletion never precedes the
// handoff and a concurrent second device cannot replay the same rows.
func (l *OfflineLogic) ReplayToSession(session *realtime.Session, conversationID string) error {
	return l.transaction(l.ctx, func(ctx context.Context) error {
		entries, err := l.queue.ListForReplay(ctx, session.UserID, conversationID)
		if err != nil {
			return errors.New("OfflineLogic.ReplayToSession.ListForReplay", i18n.ERROR_INTERNAL, err)
		}
		if len(entries) == 0 {
			return nil
		}

		messageIDs := lo.Map(entries, func(e types.OfflineQueueEntry, _ int) string { return e.MessageID })
		messages, err := l.messages.ListByIDs(ctx, messageIDs)
		if err != nil {
			return errors.New("OfflineLogic.ReplayToSession.ListByIDs", i18n.ERROR_INTERNAL, err)
		}
		byID := lo.KeyBy(messages, func(m *types.Message) string { return m.ID })

		now := types.NowUnix()
		var delivered []string
		for _, entry := range entries {
			message, ok := byID[entry.MessageID]
			if !ok {
				// the message was hard-removed after enqueue, drop the row
				continue
			}
			session.Send(envelope(types.WS_EVENT_NEW_MESSAGE, message))
			delivered = append(delivered, message.ID)
		}

		if err = l.receipts.MarkDelivered(ctx, delivered, session.UserID, now); err != nil {
			return errors.New("OfflineLogic.ReplayToSession.MarkDelivered", i18n.ERROR_INTERNAL, err)
		}

		if err = l.queue.Delete(ctx, lo.Map(entries, func(e types.OfflineQueueEntry, _ int) int64 { return e.ID })); err != nil {
			return errors.New("OfflineLogic.ReplayToSession.Delete", i18n.ERROR_INTERNAL, err)
		}

		l.metrics.ObserveOfflineReplay(len(delivered))

		receipts, err := l.receipts.ListByMessages(ctx, delivered)
		if err != nil {
			return errors.New("OfflineLogic.ReplayToSession.ListByMessages", i18n.ERROR_INTERNAL, err)
		}

		// tell each sender their message reached the device, with the full
		// delivered set so clients can render the updated state directly
		for _, messageID := range delivered {
			message := byID[messageID]
			if message.UserID == session.UserID {
				continue
			}
			_ = l.publisher.PublishToUser(message.UserID, types.WS_EVENT_MESSAGE_DELIVERED, types.MessageDeliveredData{
				MessageID:   message.ID,
				UserID:      session.UserID,
				DeliveredAt: now,
				DeliveredTo: types.BuildDeliveryState(messageID, receipts).DeliveredTo,
			})
		}

		return nil
	})
}

func (l *OfflineLogic) PendingCount(userID string) (int64, error) {
	n, err := l.queue.CountForUser(l.ctx, userID)
	if err != nil {
		return 0, errors.New("OfflineLogic.PendingCount.CountForUser", i18n.ERROR_INTERNAL, err)
	}
	return n, nil
}
