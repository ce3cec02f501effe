package v1

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/samber/lo"

	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/app/core"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/app/core/srv"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/errors"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/i18n"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/safe"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/types"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/types/protocol"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/utils"
)

const MAX_MESSAGE_CONTENT_LENGTH = 4096

// DeliveryLogic owns the message write path: persist under the conversation
// row lock, then fan out to live sessions, offline queues and the
// notification queue. Persistence is transactional; fan-out is best effort
// and never rolls back a stored message.
type DeliveryLogic struct {
	ctx  context.Context
	core *core.Core
	UserInfo
}

func NewDeliveryLogic(ctx context.Context, core *core.Core) *DeliveryLogic {
	return &DeliveryLogic{
		ctx:      ctx,
		core:     core,
		UserInfo: SetupUserInfo(ctx, core),
	}
}

// envelope renders the event frame sessions receive over the socket,
// identical in shape to what the tower publishes on its topics.
func envelope(event types.WsEventType, data any) []byte {
	raw, err := json.Marshal(srv.PublishData{
		Subject: "conversation_event",
		Version: "v1",
		Type:    event,
		Data:    data,
	})
	if err != nil {
		slog.Error("failed to marshal ws envelope", slog.String("event", string(event)), slog.String("error", err.Error()))
		return nil
	}
	return raw
}

// SendMessage persists a message and returns it with its sequence assigned.
// originSessionID names the session that issued the operation so fan-out can
// exclude it. Empty originSessionID means the message came over HTTP.
func (l *DeliveryLogic) SendMessage(conversationID, originSessionID string, op types.SendMessageOpData) (*types.Message, error) {
	sender := l.GetUserInfo().User

	message := &types.Message{
		ID:             utils.GenSpecIDStr(),
		ConversationID: conversationID,
		UserID:         sender,
		MsgType:        types.MessageType(op.MsgType),
		Content:        op.Content,
		ReplyTo:        op.ReplyTo,
		SendTime:       types.NowUnix(),
	}

	if !message.ValidateContent() || len(op.Content) > MAX_MESSAGE_CONTENT_LENGTH {
		return nil, errors.New("DeliveryLogic.SendMessage.content", i18n.ERROR_INVALID_MESSAGE_CONTENT, nil).Code(http.StatusBadRequest)
	}

	var (
		conversation *types.Conversation
		recipients   []string
		offlineUsers []string
	)

	err := l.core.Store().Transaction(l.ctx, func(ctx context.Context) error {
		var err error
		conversation, err = l.core.Store().ConversationStore().GetConversationForUpdate(ctx, conversationID)
		if err != nil {
			if err == sql.ErrNoRows {
				return errors.New("DeliveryLogic.SendMessage.GetConversationForUpdate", i18n.ERROR_CONVERSATION_NOT_FOUND, err).Code(http.StatusNotFound)
			}
			return errors.New("DeliveryLogic.SendMessage.GetConversationForUpdate", i18n.ERROR_INTERNAL, err)
		}

		if _, err = l.core.Store().ConversationParticipantStore().GetParticipant(ctx, conversationID, sender); err != nil {
			if err == sql.ErrNoRows {
				return errors.New("DeliveryLogic.SendMessage.GetParticipant", i18n.ERROR_NOT_PARTICIPANT, err).Code(http.StatusForbidden)
			}
			return errors.New("DeliveryLogic.SendMessage.GetParticipant", i18n.ERROR_INTERNAL, err)
		}

		if op.ReplyTo != "" {
			ref, err := l.core.Store().MessageStore().GetMessage(ctx, op.ReplyTo)
			if err != nil && err != sql.ErrNoRows {
				return errors.New("DeliveryLogic.SendMessage.GetMessage.replyTo", i18n.ERROR_INTERNAL, err)
			}
			if ref == nil || ref.ConversationID != conversationID {
				return errors.New("DeliveryLogic.SendMessage.replyTo", i18n.ERROR_INVALID_MESSAGE_REFERENCE, nil).Code(http.StatusBadRequest)
			}
		}

		seq, err := l.core.Store().MessageStore().LatestSequence(ctx, conversationID)
		if err != nil {
			return errors.New("DeliveryLogic.SendMessage.LatestSequence", i18n.ERROR_INTERNAL, err)
		}
		message.Sequence = seq + 1

		if err = l.core.Store().MessageStore().Create(ctx, *message); err != nil {
			return errors.New("DeliveryLogic.SendMessage.MessageStore.Create", i18n.ERROR_INTERNAL, err)
		}

		if err = l.core.Store().ConversationStore().UpdateLastActivity(ctx, conversationID, message.SendTime); err != nil {
			return errors.New("DeliveryLogic.SendMessage.UpdateLastActivity", i18n.ERROR_INTERNAL, err)
		}

		participants, err := l.core.Store().ConversationParticipantStore().ListParticipants(ctx, conversationID)
		if err != nil {
			return errors.New("DeliveryLogic.SendMessage.ListParticipants", i18n.ERROR_INTERNAL, err)
		}

		recipients = lo.FilterMap(participants, func(p types.ConversationParticipant, _ int) (string, bool) {
			return p.UserID, p.UserID != sender
		})
		offlineUsers = lo.Filter(recipients, func(userID string, _ int) bool {
			return !l.core.Registry().IsUserOnline(userID)
		})

		// the offline enqueue shares the send transaction so a stored
		// message always has its queue rows
		entries := lo.Map(offlineUsers, func(userID string, _ int) types.OfflineQueueEntry {
			return types.OfflineQueueEntry{
				RecipientUserID: userID,
				ConversationID:  conversationID,
				MessageID:       message.ID,
				EnqueuedAt:      message.SendTime,
			}
		})
		if err = l.core.Store().OfflineQueueStore().BatchCreate(ctx, entries); err != nil {
			return errors.New("DeliveryLogic.SendMessage.OfflineQueueStore.BatchCreate", i18n.ERROR_INTERNAL, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	l.core.Metrics().MessageInc(string(conversation.Type))

	l.fanOutNewMessage(conversation, message, originSessionID, recipients)

	return message, nil
}

func (l *DeliveryLogic) fanOutNewMessage(conversation *types.Conversation, message *types.Message, originSessionID string, recipients []string) {
	raw := envelope(types.WS_EVENT_NEW_MESSAGE, message)

	delivered := make(map[string]struct{})
	for _, session := range l.core.Registry().SessionsInRoom(message.ConversationID) {
		if session.ID == originSessionID {
			continue
		}
		session.Send(raw)
		if session.UserID != message.UserID {
			delivered[session.UserID] = struct{}{}
		}
	}
	l.core.Metrics().WsEventInc(string(types.WS_EVENT_NEW_MESSAGE))

	// online recipients without the room open still learn about the message
	// on their user topic, for list reordering and badges
	for _, userID := range recipients {
		if _, inRoom := delivered[userID]; inRoom || !l.core.Registry().IsUserOnline(userID) {
			continue
		}
		if err := l.core.Srv().Tower().PublishToUser(userID, types.WS_EVENT_NEW_MESSAGE, message); err != nil {
			slog.Error("failed to publish new message to user topic",
				slog.String("user_id", userID), slog.String("error", err.Error()))
		}
		delivered[userID] = struct{}{}
	}

	for _, userID := range recipients {
		if _, err := l.core.Cache().IncrUnreadBadge(l.ctx, userID, message.ConversationID); err != nil {
			slog.Warn("failed to bump unread badge", slog.String("user_id", userID), slog.String("error", err.Error()))
		}
	}

	deliveredUsers := lo.Keys(delivered)
	if len(deliveredUsers) > 0 {
		now := types.NowUnix()
		var acked []string
		for _, userID := range deliveredUsers {
			if err := l.core.Store().MessageReceiptStore().MarkDelivered(l.ctx, []string{message.ID}, userID, now); err != nil {
				slog.Error("failed to mark message delivered",
					slog.String("message_id", message.ID), slog.String("user_id", userID), slog.String("error", err.Error()))
				continue
			}
			acked = append(acked, userID)
		}
		if len(acked) > 0 {
			deliveredTo := l.deliveredSet(message.ID)
			for _, userID := range acked {
				if err := l.core.Srv().Tower().PublishToUser(message.UserID, types.WS_EVENT_MESSAGE_DELIVERED, types.MessageDeliveredData{
					MessageID:   message.ID,
					UserID:      userID,
					DeliveredAt: now,
					DeliveredTo: deliveredTo,
				}); err != nil {
					slog.Error("failed to publish delivered receipt", slog.String("error", err.Error()))
				}
			}
		}
	}

	// push notifications go out for everyone who did not get the message on
	// a live session; the enqueue runs detached so the preference chain never
	// blocks the send path
	notifyUsers := lo.Filter(recipients, func(userID string, _ int) bool {
		_, ok := delivered[userID]
		return !ok
	})
	if len(notifyUsers) > 0 {
		notifLogic := NewNotificationLogic(context.WithoutCancel(l.ctx), l.core)
		safe.Go(func() {
			notifLogic.EnqueueForMessage(conversation, message, notifyUsers)
		})
	}
}

// deliveredSet returns the aggregated delivered_to set of one message.
func (l *DeliveryLogic) deliveredSet(messageID string) []string {
	receipts, err := l.core.Store().MessageReceiptStore().ListByMessages(l.ctx, []string{messageID})
	if err != nil {
		slog.Error("failed to load receipts for delivered set",
			slog.String("message_id", messageID), slog.String("error", err.Error()))
		return nil
	}
	return types.BuildDeliveryState(messageID, receipts).DeliveredTo
}

// MarkDelivered records that a recipient's device received messages, and
// tells each sender on their user topic.
func (l *DeliveryLogic) MarkDelivered(messageIDs []string) error {
	userID := l.GetUserInfo().User
	if len(messageIDs) == 0 {
		return nil
	}

	now := types.NowUnix()
	if err := l.core.Store().MessageReceiptStore().MarkDelivered(l.ctx, messageIDs, userID, now); err != nil {
		return errors.New("DeliveryLogic.MarkDelivered.MarkDelivered", i18n.ERROR_INTERNAL, err)
	}

	messages, err := l.core.Store().MessageStore().ListByIDs(l.ctx, messageIDs)
	if err != nil {
		return errors.New("DeliveryLogic.MarkDelivered.ListByIDs", i18n.ERROR_INTERNAL, err)
	}

	receipts, err := l.core.Store().MessageReceiptStore().ListByMessages(l.ctx, messageIDs)
	if err != nil {
		return errors.New("DeliveryLogic.MarkDelivered.ListByMessages", i18n.ERROR_INTERNAL, err)
	}

	for _, message := range messages {
		if message.UserID == userID {
			continue
		}
		if err := l.core.Srv().Tower().PublishToUser(message.UserID, types.WS_EVENT_MESSAGE_DELIVERED, types.MessageDeliveredData{
			MessageID:   message.ID,
			UserID:      userID,
			DeliveredAt: now,
			DeliveredTo: types.BuildDeliveryState(message.ID, receipts).DeliveredTo,
		}); err != nil {
			slog.Error("failed to publish delivered receipt", slog.String("error", err.Error()))
		}
	}
	return nil
}

// MarkRead upserts read receipts, resets the unread badge, notifies senders
// and mirrors the read state to the reader's other devices on every instance.
func (l *DeliveryLogic) MarkRead(conversationID string, messageIDs []string) error {
	userID := l.GetUserInfo().User
	if len(messageIDs) == 0 {
		return nil
	}

	if _, err := NewConversationLogic(l.ctx, l.core).CheckParticipant(conversationID, userID); err != nil {
		return err
	}

	now := types.NowUnix()
	if err := l.core.Store().MessageReceiptStore().MarkRead(l.ctx, messageIDs, userID, now); err != nil {
		return errors.New("DeliveryLogic.MarkRead.MarkRead", i18n.ERROR_INTERNAL, err)
	}

	if err := l.core.Cache().ResetUnreadBadge(l.ctx, userID, conversationID); err != nil {
		slog.Warn("failed to reset unread badge", slog.String("user_id", userID), slog.String("error", err.Error()))
	}

	// queued pushes for a conversation the user just read are stale
	if err := l.core.Store().NotificationQueueStore().CancelPendingForUser(l.ctx, userID, conversationID); err != nil {
		slog.Warn("failed to cancel stale notifications", slog.String("user_id", userID), slog.String("error", err.Error()))
	}

	messages, err := l.core.Store().MessageStore().ListByIDs(l.ctx, messageIDs)
	if err != nil {
		return errors.New("DeliveryLogic.MarkRead.ListByIDs", i18n.ERROR_INTERNAL, err)
	}

	receipts, err := l.core.Store().MessageReceiptStore().ListByMessages(l.ctx, messageIDs)
	if err != nil {
		return errors.New("DeliveryLogic.MarkRead.ListByMessages", i18n.ERROR_INTERNAL, err)
	}

	bySender := lo.GroupBy(messages, func(m *types.Message) string { return m.UserID })
	for sender, senderMessages := range bySender {
		if sender == userID {
			continue
		}
		senderIDs := lo.Map(senderMessages, func(m *types.Message, _ int) string { return m.ID })
		readBy := make(map[string][]string, len(senderIDs))
		for _, id := range senderIDs {
			readBy[id] = types.BuildDeliveryState(id, receipts).ReadBy
		}
		if err := l.core.Srv().Tower().PublishToUser(sender, types.WS_EVENT_MESSAGE_READ, types.MessagesReadData{
			ConversationID: conversationID,
			MessageIDs:     senderIDs,
			UserID:         userID,
			ReadAt:         now,
			ReadBy:         readBy,
		}); err != nil {
			slog.Error("failed to publish read receipt", slog.String("error", err.Error()))
		}
	}

	// other devices of the reader clear their badges too, on every instance
	if err := l.core.Cache().PublishSyncEvent(l.ctx, protocol.SyncEvent{
		TargetUserID:   userID,
		ConversationID: conversationID,
		MessageIDs:     messageIDs,
		Kind:           "read",
	}); err != nil {
		slog.Warn("failed to publish read sync event", slog.String("error", err.Error()))
	}

	return nil
}

// EditMessage replaces content in place. Only the author may edit, and a
// deleted message stays deleted.
func (l *DeliveryLogic) EditMessage(messageID, content string) (*types.Message, error) {
	userID := l.GetUserInfo().User

	message, err := l.core.Store().MessageStore().GetMessage(l.ctx, messageID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New("DeliveryLogic.EditMessage.GetMessage", i18n.ERROR_MESSAGE_NOT_FOUND, err).Code(http.StatusNotFound)
		}
		return nil, errors.New("DeliveryLogic.EditMessage.GetMessage", i18n.ERROR_INTERNAL, err)
	}

	if message.UserID != userID {
		return nil, errors.New("DeliveryLogic.EditMessage.owner", i18n.ERROR_MESSAGE_NOT_OWNER, nil).Code(http.StatusForbidden)
	}
	if message.IsDeleted == types.MESSAGE_IS_DELETED {
		return nil, errors.New("DeliveryLogic.EditMessage.deleted", i18n.ERROR_MESSAGE_NOT_FOUND, nil).Code(http.StatusNotFound)
	}

	message.Content = content
	message.EditedAt = types.NowUnix()
	if !message.ValidateContent() || len(content) > MAX_MESSAGE_CONTENT_LENGTH {
		return nil, errors.New("DeliveryLogic.EditMessage.content", i18n.ERROR_INVALID_MESSAGE_CONTENT, nil).Code(http.StatusBadRequest)
	}

	if err = l.core.Store().MessageStore().UpdateContent(l.ctx, messageID, content, message.EditedAt); err != nil {
		return nil, errors.New("DeliveryLogic.EditMessage.UpdateContent", i18n.ERROR_INTERNAL, err)
	}

	if err = l.core.Srv().Tower().PublishToConversation(message.ConversationID, types.WS_EVENT_MESSAGE_EDITED, message); err != nil {
		slog.Error("failed to publish edited message", slog.String("error", err.Error()))
	}
	l.core.Metrics().WsEventInc(string(types.WS_EVENT_MESSAGE_EDITED))

	return message, nil
}

// DeleteMessage flips the tombstone. The author may always delete their own
// message; conversation admins may moderate anyone's.
func (l *DeliveryLogic) DeleteMessage(messageID string) error {
	userID := l.GetUserInfo().User

	message, err := l.core.Store().MessageStore().GetMessage(l.ctx, messageID)
	if err != nil {
		if err == sql.ErrNoRows {
			return errors.New("DeliveryLogic.DeleteMessage.GetMessage", i18n.ERROR_MESSAGE_NOT_FOUND, err).Code(http.StatusNotFound)
		}
		return errors.New("DeliveryLogic.DeleteMessage.GetMessage", i18n.ERROR_INTERNAL, err)
	}

	if message.UserID != userID {
		participant, err := NewConversationLogic(l.ctx, l.core).CheckParticipant(message.ConversationID, userID)
		if err != nil {
			return err
		}
		if err := l.core.Srv().RBAC().CheckParticipant(participant, srv.PermissionModerate); err != nil {
			return err
		}
	}

	if err = l.core.Store().MessageStore().MarkDeleted(l.ctx, messageID, types.NowUnix()); err != nil {
		return errors.New("DeliveryLogic.DeleteMessage.MarkDeleted", i18n.ERROR_INTERNAL, err)
	}

	if err = l.core.Srv().Tower().PublishToConversation(message.ConversationID, types.WS_EVENT_MESSAGE_DELETED, types.DeletedEventData{
		MessageID:      messageID,
		ConversationID: message.ConversationID,
	}); err != nil {
		slog.Error("failed to publish deleted message", slog.String("error", err.Error()))
	}
	l.core.Metrics().WsEventInc(string(types.WS_EVENT_MESSAGE_DELETED))

	return nil
}

func (l *DeliveryLogic) ListMessages(conversationID string, afterSequence int64, limit uint64) ([]*types.Message, error) {
	if _, err := NewConversationLogic(l.ctx, l.core).CheckParticipant(conversationID, l.GetUserInfo().User); err != nil {
		return nil, err
	}

	if limit == 0 || limit > types.MAX_PAGE_SIZE {
		limit = types.DEFAULT_PAGE_SIZE
	}

	list, err := l.core.Store().MessageStore().ListMessages(l.ctx, types.ListMessageOptions{
		ConversationID: conversationID,
		AfterSequence:  afterSequence,
		Limit:          limit,
	})
	if err != nil {
		return nil, errors.New("DeliveryLogic.ListMessages.ListMessages", i18n.ERROR_INTERNAL, err)
	}
	return list, nil
}

// GetDeliveryStates aggregates receipts into the per-message delivered/read
// sets. Both sets only ever grow.
func (l *DeliveryLogic) GetDeliveryStates(conversationID string, messageIDs []string) ([]types.MessageDeliveryState, error) {
	if _, err := NewConversationLogic(l.ctx, l.core).CheckParticipant(conversationID, l.GetUserInfo().User); err != nil {
		return nil, err
	}

	receipts, err := l.core.Store().MessageReceiptStore().ListByMessages(l.ctx, messageIDs)
	if err != nil {
		return nil, errors.New("DeliveryLogic.GetDeliveryStates.ListByMessages", i18n.ERROR_INTERNAL, err)
	}

	return lo.Map(messageIDs, func(messageID string, _ int) types.MessageDeliveryState {
		return types.BuildDeliveryState(messageID, receipts)
	}), nil
}
