package store

import (
	"context"

	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/sqlstore"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/types"
)

type UserStore interface {
	sqlstore.SqlCommons
	Create(ctx context.Context, data types.User) error
	GetUser(ctx context.Context, id string) (*types.User, error)
	ListUsers(ctx context.Context, ids []string) ([]types.User, error)
	UpdateProfile(ctx context.Context, id, name, avatar string) error
}

type AccessTokenStore interface {
	sqlstore.SqlCommons
	Create(ctx context.Context, data types.AccessToken) error
	GetAccessToken(ctx context.Context, token string) (*types.AccessToken, error)
	ListUserTokens(ctx context.Context, userID string, page, pageSize uint64) ([]types.AccessToken, error)
	ClearUserTokens(ctx context.Context, userID string) error
	DeleteExpired(ctx context.Context, before int64) (int64, error)
}

type ConversationStore interface {
	sqlstore.SqlCommons
	Create(ctx context.Context, data types.Conversation) error
	GetConversation(ctx context.Context, id string) (*types.Conversation, error)
	// GetConversationForUpdate locks the row for the rest of the transaction.
	// The send path uses this lock to serialize sequence assignment.
	GetConversationForUpdate(ctx context.Context, id string) (*types.Conversation, error)
	List(ctx context.Context, opts types.ListConversationOptions, page, pageSize uint64) ([]types.Conversation, error)
	UpdateLastActivity(ctx context.Context, id string, lastActivity int64) error
	Delete(ctx context.Context, id string) error
}

type ConversationParticipantStore interface {
	sqlstore.SqlCommons
	Create(ctx context.Context, data types.ConversationParticipant) error
	BatchCreate(ctx context.Context, datas []types.ConversationParticipant) error
	GetParticipant(ctx context.Context, conversationID, userID string) (*types.ConversationParticipant, error)
	ListParticipants(ctx context.Context, conversationID string) ([]types.ConversationParticipant, error)
	ListUserConversationIDs(ctx context.Context, userID string) ([]string, error)
	UpdateRole(ctx context.Context, conversationID, userID string, role types.ParticipantRole) error
	Delete(ctx context.Context, conversationID, userID string) error
}

type MessageStore interface {
	sqlstore.SqlCommons
	Create(ctx context.Context, data types.Message) error
	GetMessage(ctx context.Context, id string) (*types.Message, error)
	// LatestSequence is only meaningful while the caller holds the
	// conversation row lock, otherwise two writers can read the same value.
	LatestSequence(ctx context.Context, conversationID string) (int64, error)
	ListMessages(ctx context.Context, opts types.ListMessageOptions) ([]*types.Message, error)
	ListByIDs(ctx context.Context, ids []string) ([]*types.Message, error)
	UpdateContent(ctx context.Context, id, content string, editedAt int64) error
	MarkDeleted(ctx context.Context, id string, deletedAt int64) error
	Total(ctx context.Context, conversationID string) (int64, error)
}

type MessageReceiptStore interface {
	sqlstore.SqlCommons
	// MarkDelivered upserts a delivery mark and never clears an existing one.
	MarkDelivered(ctx context.Context, messageIDs []string, userID string, deliveredAt int64) error
	// MarkRead upserts a read mark; it also sets delivered_at when missing
	// because a read message was necessarily delivered.
	MarkRead(ctx context.Context, messageIDs []string, userID string, readAt int64) error
	ListByMessages(ctx context.Context, messageIDs []string) ([]*types.MessageReceipt, error)
	GetReceipt(ctx context.Context, messageID, userID string) (*types.MessageReceipt, error)
}

type OfflineQueueStore interface {
	sqlstore.SqlCommons
	BatchCreate(ctx context.Context, entries []types.OfflineQueueEntry) error
	// ListForReplay locks the recipient's pending rows for one conversation in
	// enqueue order so concurrent replays of the same user cannot double
	// deliver. Rows of other conversations are untouched.
	ListForReplay(ctx context.Context, recipientUserID, conversationID string) ([]types.OfflineQueueEntry, error)
	Delete(ctx context.Context, ids []int64) error
	CountForUser(ctx context.Context, recipientUserID string) (int64, error)
}

type NotificationQueueStore interface {
	sqlstore.SqlCommons
	Create(ctx context.Context, data types.QueuedNotification) error
	GetNotification(ctx context.Context, id string) (*types.QueuedNotification, error)
	// ListDue returns pending rows whose scheduled_for has passed, oldest
	// first, locked with SKIP LOCKED so parallel dispatchers never collide.
	ListDue(ctx context.Context, now int64, limit uint64) ([]types.QueuedNotification, error)
	// ExtendSchedule leases rows by moving scheduled_for forward, leaving
	// attempts untouched.
	ExtendSchedule(ctx context.Context, ids []string, scheduledFor int64, updatedAt int64) error
	MarkStatus(ctx context.Context, ids []string, status types.NotificationStatus, updatedAt int64) error
	Reschedule(ctx context.Context, id string, scheduledFor int64, attempts int, updatedAt int64) error
	CancelPendingForUser(ctx context.Context, userID string, conversationID string) error
	DeleteBefore(ctx context.Context, statuses []types.NotificationStatus, before int64) (int64, error)
	ListByUser(ctx context.Context, userID string, page, pageSize uint64) ([]types.QueuedNotification, error)
}

type NotificationPreferencesStore interface {
	sqlstore.SqlCommons
	Get(ctx context.Context, userID string) (*types.NotificationPreferences, error)
	Upsert(ctx context.Context, data types.NotificationPreferences) error
}

type ConversationSettingStore interface {
	sqlstore.SqlCommons
	Get(ctx context.Context, userID, conversationID string) (*types.ConversationNotificationSetting, error)
	ListForUser(ctx context.Context, userID string) ([]types.ConversationNotificationSetting, error)
	Upsert(ctx context.Context, data types.ConversationNotificationSetting) error
}

type DeviceTokenStore interface {
	sqlstore.SqlCommons
	// Register upserts on the token value. A token moving between accounts is
	// rebound to the new user and reactivated.
	Register(ctx context.Context, data types.DeviceToken) error
	ListActiveByUser(ctx context.Context, userID string) ([]types.DeviceToken, error)
	Deactivate(ctx context.Context, tokens []string) error
	DeleteByUser(ctx context.Context, userID string) error
}
