package v1

import (
	"context"
	"log/slog"

	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/app/core"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/errors"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/i18n"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/safe"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/types"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/types/protocol"
)

// PresenceLogic handles session lifecycle edges, room membership and typing
// indicators. Online/offline events only fire on the first and last session
// of a user, so a second device never re-announces presence.
type PresenceLogic struct {
	ctx  context.Context
	core *core.Core
	UserInfo
}

func NewPresenceLogic(ctx context.Context, core *core.Core) *PresenceLogic {
	return &PresenceLogic{
		ctx:      ctx,
		core:     core,
		UserInfo: SetupUserInfo(ctx, core),
	}
}

// SessionConnected announces the online edge to every conversation the user
// participates in.
func (l *PresenceLogic) SessionConnected(userID string, firstSession bool) {
	if !firstSession {
		return
	}
	l.announcePresence(userID, types.WS_EVENT_USER_ONLINE)
}

// AnnounceOnline serves the explicit client signal, for a device coming back
// from the background without reconnecting.
func (l *PresenceLogic) AnnounceOnline() {
	l.announcePresence(l.GetUserInfo().User, types.WS_EVENT_USER_ONLINE)
}

func (l *PresenceLogic) announcePresence(userID string, event types.WsEventType) {
	conversationIDs, err := l.core.Store().ConversationParticipantStore().ListUserConversationIDs(l.ctx, userID)
	if err != nil {
		slog.Error("failed to list conversations for presence broadcast",
			slog.String("user_id", userID), slog.String("error", err.Error()))
		return
	}

	for _, conversationID := range conversationIDs {
		if err := l.core.Srv().Tower().PublishToConversation(conversationID, event, types.PresenceEventData{
			UserID: userID,
		}); err != nil {
			slog.Error("failed to publish presence event", slog.String("error", err.Error()))
		}
	}
	l.core.Metrics().WsEventInc(string(event))
}

// SessionClosed handles transport close: typing entries the user held are
// withdrawn, and the last session announces the offline edge.
func (l *PresenceLogic) SessionClosed(userID string, lastSession bool) {
	if !lastSession {
		return
	}

	for _, conversationID := range l.core.Typing().StopAllForUser(userID) {
		l.broadcastTyping(conversationID, userID, false, "")
	}

	l.announcePresence(userID, types.WS_EVENT_USER_OFFLINE)
}

// JoinConversation authorizes the subscription, registers the room membership
// and replays the member's offline backlog to exactly this session.
func (l *PresenceLogic) JoinConversation(sessionID, conversationID string) error {
	userID := l.GetUserInfo().User

	if _, err := NewConversationLogic(l.ctx, l.core).CheckParticipant(conversationID, userID); err != nil {
		return err
	}

	session, ok := l.core.Registry().JoinRoom(sessionID, conversationID)
	if !ok {
		return errors.New("PresenceLogic.JoinConversation.JoinRoom", i18n.ERROR_INTERNAL, nil)
	}

	return NewOfflineLogic(l.ctx, l.core).ReplayToSession(session, conversationID)
}

func (l *PresenceLogic) LeaveConversation(sessionID, conversationID string) {
	l.core.Registry().LeaveRoom(sessionID, conversationID)
}

// StartTyping begins or refreshes the typing indicator. Only the transition
// into typing broadcasts; refreshes stay silent.
func (l *PresenceLogic) StartTyping(conversationID, originSessionID string) error {
	userID := l.GetUserInfo().User

	if _, err := NewConversationLogic(l.ctx, l.core).CheckParticipant(conversationID, userID); err != nil {
		return err
	}

	if l.core.Typing().Start(conversationID, userID) {
		l.broadcastTyping(conversationID, userID, true, originSessionID)
	}
	return nil
}

func (l *PresenceLogic) StopTyping(conversationID, originSessionID string) {
	userID := l.GetUserInfo().User
	if l.core.Typing().Stop(conversationID, userID) {
		l.broadcastTyping(conversationID, userID, false, originSessionID)
	}
}

// broadcastTyping reaches every room session except the author's own, so a
// user never watches their own indicator.
func (l *PresenceLogic) broadcastTyping(conversationID, userID string, isTyping bool, originSessionID string) {
	event := types.WS_EVENT_USER_TYPING
	raw := envelope(event, types.TypingEventData{
		UserID:         userID,
		ConversationID: conversationID,
		IsTyping:       isTyping,
	})

	for _, session := range l.core.Registry().SessionsInRoom(conversationID) {
		if session.ID == originSessionID || session.UserID == userID {
			continue
		}
		session.Send(raw)
	}
	l.core.Metrics().WsEventInc(string(event))
}

// RunTypingSweeper guarantees a typing indicator falls back to false after
// its TTL even when the client never sends typing-stop.
func RunTypingSweeper(ctx context.Context, core *core.Core) {
	safe.Go(func() {
		core.Typing().RunSweeper(ctx, core.Cfg().Realtime.SweepInterval(), func(conversationID, userID string) {
			raw := envelope(types.WS_EVENT_USER_TYPING, types.TypingEventData{
				UserID:         userID,
				ConversationID: conversationID,
				IsTyping:       false,
			})
			for _, session := range core.Registry().SessionsInRoom(conversationID) {
				if session.UserID == userID {
					continue
				}
				session.Send(raw)
			}
		})
	})
}

// ForwardSyncEvents bridges the redis read-sync channel onto local sessions
// of the target user. Every instance runs one forwarder.
func ForwardSyncEvents(ctx context.Context, core *core.Core) {
	core.Cache().SubscribeSyncEvents(ctx, func(event protocol.SyncEvent) {
		readBy := make(map[string][]string, len(event.MessageIDs))
		if receipts, err := core.Store().MessageReceiptStore().ListByMessages(ctx, event.MessageIDs); err != nil {
			slog.Warn("failed to load receipts for read sync event", slog.String("error", err.Error()))
		} else {
			for _, id := range event.MessageIDs {
				readBy[id] = types.BuildDeliveryState(id, receipts).ReadBy
			}
		}
		raw := envelope(types.WS_EVENT_MESSAGE_READ, types.MessagesReadData{
			ConversationID: event.ConversationID,
			MessageIDs:     event.MessageIDs,
			UserID:         event.TargetUserID,
			ReadAt:         types.NowUnix(),
			ReadBy:         readBy,
		})
		for _, session := range core.Registry().SessionsFor(event.TargetUserID) {
			session.Send(raw)
		}
	})
}
