package notify

import (
	"time"

	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/types"
)

// Decision explains why a notification was or was not allowed through, so the
// enqueue path can log the verdict without re-deriving it.
type Decision struct {
	Allowed bool
	Reason  string
}

const (
	ReasonAllowed          = "allowed"
	ReasonNoPreferences    = "no_preferences"
	ReasonPushDisabled     = "push_disabled"
	ReasonCategoryDisabled = "category_disabled"
	ReasonConversationMute = "conversation_muted"
	ReasonQuietHours       = "quiet_hours"
)

// ShouldNotify applies the per-user preference chain to one candidate
// notification. Checks run cheapest first and every gate short-circuits.
// setting may be nil when the user never touched the conversation's bell.
func ShouldNotify(prefs *types.NotificationPreferences, setting *types.ConversationNotificationSetting, notifType types.NotificationType, now time.Time) Decision {
	if prefs == nil {
		return Decision{Reason: ReasonNoPreferences}
	}
	if !prefs.PushEnabled {
		return Decision{Reason: ReasonPushDisabled}
	}
	if !categoryEnabled(prefs, notifType) {
		return Decision{Reason: ReasonCategoryDisabled}
	}
	if setting.MutedAt(now.Unix()) {
		return Decision{Reason: ReasonConversationMute}
	}
	if inQuietHours(prefs, now) {
		return Decision{Reason: ReasonQuietHours}
	}
	return Decision{Allowed: true, Reason: ReasonAllowed}
}

func categoryEnabled(prefs *types.NotificationPreferences, notifType types.NotificationType) bool {
	switch notifType {
	case types.NOTIFICATION_TYPE_MESSAGE:
		return prefs.MessageNotifications
	case types.NOTIFICATION_TYPE_MENTION:
		return prefs.MentionNotifications
	case types.NOTIFICATION_TYPE_GROUP:
		return prefs.GroupNotifications
	default:
		return false
	}
}

// inQuietHours evaluates the [start, end) window in the user's own timezone.
// A window like 22:00-08:00 wraps midnight. An unparseable timezone or time
// fails open so a bad setting never silences a user forever.
func inQuietHours(prefs *types.NotificationPreferences, now time.Time) bool {
	if !prefs.QuietHoursEnabled {
		return false
	}

	loc, err := time.LoadLocation(prefs.Timezone)
	if err != nil {
		return false
	}

	start, err1 := minutesOfDay(prefs.QuietHoursStart)
	end, err2 := minutesOfDay(prefs.QuietHoursEnd)
	if err1 != nil || err2 != nil || start == end {
		return false
	}

	local := now.In(loc)
	cur := local.Hour()*60 + local.Minute()

	if start < end {
		return cur >= start && cur < end
	}
	// wrapping window, e.g. 22:00 -> 08:00
	return cur >= start || cur < end
}

func minutesOfDay(clock string) (int, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}
