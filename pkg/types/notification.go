package types

import (
	"encoding/json"
	"fmt"
)

type NotificationType string

const (
	NOTIFICATION_TYPE_MESSAGE NotificationType = "message"
	NOTIFICATION_TYPE_MENTION NotificationType = "mention"
	NOTIFICATION_TYPE_GROUP   NotificationType = "group"
)

type NotificationStatus string

const (
	NOTIFICATION_STATUS_PENDING   NotificationStatus = "pending"
	NOTIFICATION_STATUS_SENT      NotificationStatus = "sent"
	NOTIFICATION_STATUS_FAILED    NotificationStatus = "failed"
	NOTIFICATION_STATUS_CANCELLED NotificationStatus = "cancelled"
)

// QueuedNotification rows are created by the send path and mutated only by the
// dispatcher. Status transitions: pending -> sent | pending (retry) | failed.
type QueuedNotification struct {
	ID           string             `db:"id" json:"id"`
	UserID       string             `db:"user_id" json:"user_id"`
	Type         NotificationType   `db:"type" json:"type"`
	Title        string             `db:"title" json:"title"`
	Body         string             `db:"body" json:"body"`
	Data         NotificationData   `db:"data" json:"data"`
	ScheduledFor int64              `db:"scheduled_for" json:"scheduled_for"`
	Attempts     int                `db:"attempts" json:"attempts"`
	MaxAttempts  int                `db:"max_attempts" json:"max_attempts"`
	Status       NotificationStatus `db:"status" json:"status"`
	CreatedAt    int64              `db:"created_at" json:"created_at"`
	UpdatedAt    int64              `db:"updated_at" json:"updated_at"`
}

type NotificationData map[string]string

func (d NotificationData) String() string {
	if d == nil {
		return "{}"
	}
	raw, _ := json.Marshal(d)
	return string(raw)
}

func (d *NotificationData) Scan(src interface{}) error {
	switch src := src.(type) {
	case []byte:
		return d.scanBytes(src)
	case string:
		return d.scanBytes([]byte(src))
	case nil:
		*d = nil
		return nil
	}
	return fmt.Errorf("pq: cannot convert %T to NotificationData", src)
}

func (d *NotificationData) scanBytes(src []byte) error {
	if len(src) == 0 {
		*d = NotificationData{}
		return nil
	}
	return json.Unmarshal(src, d)
}

// NotificationPreferences with no row in the store means "push disabled":
// permissive defaults apply only to in-app display, never to push.
type NotificationPreferences struct {
	UserID               string `db:"user_id" json:"user_id"`
	PushEnabled          bool   `db:"push_enabled" json:"push_enabled"`
	MessageNotifications bool   `db:"message_notifications" json:"message_notifications"`
	GroupNotifications   bool   `db:"group_notifications" json:"group_notifications"`
	MentionNotifications bool   `db:"mention_notifications" json:"mention_notifications"`
	QuietHoursEnabled    bool   `db:"quiet_hours_enabled" json:"quiet_hours_enabled"`
	QuietHoursStart      string `db:"quiet_hours_start" json:"quiet_hours_start"`
	QuietHoursEnd        string `db:"quiet_hours_end" json:"quiet_hours_end"`
	Timezone             string `db:"timezone" json:"timezone"`
	UpdatedAt            int64  `db:"updated_at" json:"updated_at"`
}

func DefaultNotificationPreferences(userID string) *NotificationPreferences {
	return &NotificationPreferences{
		UserID:               userID,
		PushEnabled:          true,
		MessageNotifications: true,
		GroupNotifications:   true,
		MentionNotifications: true,
		Timezone:             "UTC",
	}
}

// ConversationNotificationSetting mutes one conversation for one user.
// MutedUntil == 0 while IsMuted means muted indefinitely; a MutedUntil in the
// past is treated as unmuted.
type ConversationNotificationSetting struct {
	UserID         string `db:"user_id" json:"user_id"`
	ConversationID string `db:"conversation_id" json:"conversation_id"`
	IsMuted        bool   `db:"is_muted" json:"is_muted"`
	MutedUntil     int64  `db:"muted_until" json:"muted_until"`
	UpdatedAt      int64  `db:"updated_at" json:"updated_at"`
}

func (s *ConversationNotificationSetting) MutedAt(now int64) bool {
	if s == nil || !s.IsMuted {
		return false
	}
	if s.MutedUntil == 0 {
		return true
	}
	return s.MutedUntil > now
}

type DevicePlatform string

const (
	DEVICE_PLATFORM_IOS     DevicePlatform = "ios"
	DEVICE_PLATFORM_ANDROID DevicePlatform = "android"
	DEVICE_PLATFORM_WEB     DevicePlatform = "web"
)

func (p DevicePlatform) Valid() bool {
	switch p {
	case DEVICE_PLATFORM_IOS, DEVICE_PLATFORM_ANDROID, DEVICE_PLATFORM_WEB:
		return true
	default:
		return false
	}
}

const (
	DEVICE_TOKEN_ACTIVE   int = 1
	DEVICE_TOKEN_INACTIVE int = 0
)

// DeviceToken is deactivated, never deleted, when the push provider reports it
// invalid, so future batches skip it while history stays auditable.
type DeviceToken struct {
	ID        int64          `db:"id" json:"id"`
	UserID    string         `db:"user_id" json:"user_id"`
	Token     string         `db:"token" json:"token"`
	Platform  DevicePlatform `db:"platform" json:"platform"`
	IsActive  int            `db:"is_active" json:"is_active"`
	CreatedAt int64          `db:"created_at" json:"created_at"`
	UpdatedAt int64          `db:"updated_at" json:"updated_at"`
}
