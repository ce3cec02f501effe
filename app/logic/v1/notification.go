package v1

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/app/core"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/errors"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/i18n"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/notify"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/types"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/utils"
)

const NOTIFICATION_PREVIEW_LENGTH = 120

type NotificationLogic struct {
	ctx  context.Context
	core *core.Core
	UserInfo
}

func NewNotificationLogic(ctx context.Context, core *core.Core) *NotificationLogic {
	return &NotificationLogic{
		ctx:      ctx,
		core:     core,
		UserInfo: SetupUserInfo(ctx, core),
	}
}

// EnqueueForMessage runs the preference chain for every candidate recipient
// and queues one pending notification per user that passes. Enqueue failures
// are logged and skipped; the message itself is already stored.
func (l *NotificationLogic) EnqueueForMessage(conversation *types.Conversation, message *types.Message, userIDs []string) {
	notifType := types.NOTIFICATION_TYPE_MESSAGE
	if conversation.Type == types.CONVERSATION_TYPE_GROUP {
		notifType = types.NOTIFICATION_TYPE_GROUP
	}

	sender, err := l.core.Store().UserStore().GetUser(l.ctx, message.UserID)
	if err != nil {
		slog.Error("failed to load sender for notification", slog.String("user_id", message.UserID), slog.String("error", err.Error()))
		return
	}

	title := sender.Name
	body := preview(message.Content)
	if conversation.Type == types.CONVERSATION_TYPE_GROUP {
		title = conversation.Title
		body = sender.Name + ": " + body
	}

	now := time.Now()
	maxAttempts := l.core.Cfg().Notification.WithDefaults().MaxAttempts

	for _, userID := range userIDs {
		prefs, err := l.getPreferences(userID)
		if err != nil {
			slog.Error("failed to load notification preferences", slog.String("user_id", userID), slog.String("error", err.Error()))
			continue
		}
		setting, err := l.getConversationSetting(userID, conversation.ID)
		if err != nil {
			slog.Error("failed to load conversation setting", slog.String("user_id", userID), slog.String("error", err.Error()))
			continue
		}

		decision := notify.ShouldNotify(prefs, setting, notifType, now)
		if !decision.Allowed {
			slog.Debug("notification suppressed",
				slog.String("user_id", userID), slog.String("reason", decision.Reason))
			continue
		}

		if err = l.core.Store().NotificationQueueStore().Create(l.ctx, types.QueuedNotification{
			ID:     utils.GenSpecIDStr(),
			UserID: userID,
			Type:   notifType,
			Title:  title,
			Body:   body,
			Data: types.NotificationData{
				"conversation_id": conversation.ID,
				"message_id":      message.ID,
			},
			ScheduledFor: now.Unix(),
			MaxAttempts:  maxAttempts,
			Status:       types.NOTIFICATION_STATUS_PENDING,
		}); err != nil {
			slog.Error("failed to enqueue notification", slog.String("user_id", userID), slog.String("error", err.Error()))
		}
	}
}

func preview(content string) string {
	if utf8.RuneCountInString(content) <= NOTIFICATION_PREVIEW_LENGTH {
		return content
	}
	runes := []rune(content)
	return string(runes[:NOTIFICATION_PREVIEW_LENGTH]) + "…"
}

func (l *NotificationLogic) getPreferences(userID string) (*types.NotificationPreferences, error) {
	prefs, err := l.core.Store().NotificationPreferencesStore().Get(l.ctx, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return prefs, nil
}

func (l *NotificationLogic) getConversationSetting(userID, conversationID string) (*types.ConversationNotificationSetting, error) {
	setting, err := l.core.Store().ConversationSettingStore().Get(l.ctx, userID, conversationID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return setting, nil
}

// GetPreferences returns stored preferences, or the defaults when the user
// never saved any.
func (l *NotificationLogic) GetPreferences() (*types.NotificationPreferences, error) {
	userID := l.GetUserInfo().User
	prefs, err := l.getPreferences(userID)
	if err != nil {
		return nil, errors.New("NotificationLogic.GetPreferences.Get", i18n.ERROR_INTERNAL, err)
	}
	if prefs == nil {
		return types.DefaultNotificationPreferences(userID), nil
	}
	return prefs, nil
}

func (l *NotificationLogic) UpdatePreferences(prefs types.NotificationPreferences) error {
	prefs.UserID = l.GetUserInfo().User
	prefs.UpdatedAt = types.NowUnix()
	if err := l.core.Store().NotificationPreferencesStore().Upsert(l.ctx, prefs); err != nil {
		return errors.New("NotificationLogic.UpdatePreferences.Upsert", i18n.ERROR_INTERNAL, err)
	}
	return nil
}

// MuteConversation silences one conversation, forever when until is zero.
func (l *NotificationLogic) MuteConversation(conversationID string, until int64) error {
	userID := l.GetUserInfo().User

	if _, err := NewConversationLogic(l.ctx, l.core).CheckParticipant(conversationID, userID); err != nil {
		return err
	}

	if err := l.core.Store().ConversationSettingStore().Upsert(l.ctx, types.ConversationNotificationSetting{
		UserID:         userID,
		ConversationID: conversationID,
		IsMuted:        true,
		MutedUntil:     until,
	}); err != nil {
		return errors.New("NotificationLogic.MuteConversation.Upsert", i18n.ERROR_INTERNAL, err)
	}
	return nil
}

func (l *NotificationLogic) UnmuteConversation(conversationID string) error {
	userID := l.GetUserInfo().User

	if err := l.core.Store().ConversationSettingStore().Upsert(l.ctx, types.ConversationNotificationSetting{
		UserID:         userID,
		ConversationID: conversationID,
		IsMuted:        false,
	}); err != nil {
		return errors.New("NotificationLogic.UnmuteConversation.Upsert", i18n.ERROR_INTERNAL, err)
	}
	return nil
}

func (l *NotificationLogic) RegisterDevice(token string, platform types.DevicePlatform) error {
	if token == "" || !platform.Valid() {
		return errors.New("NotificationLogic.RegisterDevice.args", i18n.ERROR_DEVICE_PLATFORM_UNKNOWN, nil).Code(http.StatusBadRequest)
	}

	if err := l.core.Store().DeviceTokenStore().Register(l.ctx, types.DeviceToken{
		UserID:   l.GetUserInfo().User,
		Token:    token,
		Platform: platform,
	}); err != nil {
		return errors.New("NotificationLogic.RegisterDevice.Register", i18n.ERROR_INTERNAL, err)
	}
	return nil
}

// RemoveDevice deactivates one token so the dispatcher stops targeting it.
// The row stays for audit, matching the provider-invalid path.
func (l *NotificationLogic) RemoveDevice(token string) error {
	if token == "" {
		return errors.New("NotificationLogic.RemoveDevice.args", i18n.ERROR_INVALIDARGUMENT, nil).Code(http.StatusBadRequest)
	}
	if err := l.core.Store().DeviceTokenStore().Deactivate(l.ctx, []string{token}); err != nil {
		return errors.New("NotificationLogic.RemoveDevice.Deactivate", i18n.ERROR_INTERNAL, err)
	}
	return nil
}

func (l *NotificationLogic) ListDevices() ([]types.DeviceToken, error) {
	list, err := l.core.Store().DeviceTokenStore().ListActiveByUser(l.ctx, l.GetUserInfo().User)
	if err != nil {
		return nil, errors.New("NotificationLogic.ListDevices.ListActiveByUser", i18n.ERROR_INTERNAL, err)
	}
	return list, nil
}

func (l *NotificationLogic) ListNotifications(page, pageSize uint64) ([]types.QueuedNotification, error) {
	list, err := l.core.Store().NotificationQueueStore().ListByUser(l.ctx, l.GetUserInfo().User, page, pageSize)
	if err != nil {
		return nil, errors.New("NotificationLogic.ListNotifications.ListByUser", i18n.ERROR_INTERNAL, err)
	}
	return list, nil
}
