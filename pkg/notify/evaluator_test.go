package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/types"
)

func basePrefs() *types.NotificationPreferences {
	return types.DefaultNotificationPreferences("alice")
}

func TestShouldNotifyGates(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("no preferences row means no push", func(t *testing.T) {
		d := ShouldNotify(nil, nil, types.NOTIFICATION_TYPE_MESSAGE, now)
		assert.False(t, d.Allowed)
		assert.Equal(t, ReasonNoPreferences, d.Reason)
	})

	t.Run("push master switch off", func(t *testing.T) {
		p := basePrefs()
		p.PushEnabled = false
		d := ShouldNotify(p, nil, types.NOTIFICATION_TYPE_MESSAGE, now)
		assert.Equal(t, ReasonPushDisabled, d.Reason)
	})

	t.Run("category disabled", func(t *testing.T) {
		p := basePrefs()
		p.MentionNotifications = false
		d := ShouldNotify(p, nil, types.NOTIFICATION_TYPE_MENTION, now)
		assert.Equal(t, ReasonCategoryDisabled, d.Reason)

		d = ShouldNotify(p, nil, types.NOTIFICATION_TYPE_MESSAGE, now)
		assert.True(t, d.Allowed, "other categories unaffected")
	})

	t.Run("unknown category rejected", func(t *testing.T) {
		d := ShouldNotify(basePrefs(), nil, types.NotificationType("promo"), now)
		assert.Equal(t, ReasonCategoryDisabled, d.Reason)
	})

	t.Run("allowed with defaults", func(t *testing.T) {
		d := ShouldNotify(basePrefs(), nil, types.NOTIFICATION_TYPE_MESSAGE, now)
		assert.True(t, d.Allowed)
		assert.Equal(t, ReasonAllowed, d.Reason)
	})
}

func TestShouldNotifyConversationMute(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("indefinite mute", func(t *testing.T) {
		s := &types.ConversationNotificationSetting{IsMuted: true}
		d := ShouldNotify(basePrefs(), s, types.NOTIFICATION_TYPE_MESSAGE, now)
		assert.Equal(t, ReasonConversationMute, d.Reason)
	})

	t.Run("timed mute still active", func(t *testing.T) {
		s := &types.ConversationNotificationSetting{IsMuted: true, MutedUntil: now.Unix() + 3600}
		d := ShouldNotify(basePrefs(), s, types.NOTIFICATION_TYPE_MESSAGE, now)
		assert.Equal(t, ReasonConversationMute, d.Reason)
	})

	t.Run("expired mute falls through", func(t *testing.T) {
		s := &types.ConversationNotificationSetting{IsMuted: true, MutedUntil: now.Unix() - 1}
		d := ShouldNotify(basePrefs(), s, types.NOTIFICATION_TYPE_MESSAGE, now)
		assert.True(t, d.Allowed)
	})
}

func TestShouldNotifyQuietHours(t *testing.T) {
	prefs := basePrefs()
	prefs.QuietHoursEnabled = true
	prefs.QuietHoursStart = "22:00"
	prefs.QuietHoursEnd = "08:00"
	prefs.Timezone = "UTC"

	at := func(hour, min int) time.Time {
		return time.Date(2025, 3, 10, hour, min, 0, 0, time.UTC)
	}

	t.Run("inside wrapping window before midnight", func(t *testing.T) {
		d := ShouldNotify(prefs, nil, types.NOTIFICATION_TYPE_MESSAGE, at(23, 30))
		assert.Equal(t, ReasonQuietHours, d.Reason)
	})

	t.Run("inside wrapping window after midnight", func(t *testing.T) {
		d := ShouldNotify(prefs, nil, types.NOTIFICATION_TYPE_MESSAGE, at(6, 15))
		assert.Equal(t, ReasonQuietHours, d.Reason)
	})

	t.Run("window end is exclusive", func(t *testing.T) {
		d := ShouldNotify(prefs, nil, types.NOTIFICATION_TYPE_MESSAGE, at(8, 0))
		assert.True(t, d.Allowed)
	})

	t.Run("outside the window", func(t *testing.T) {
		d := ShouldNotify(prefs, nil, types.NOTIFICATION_TYPE_MESSAGE, at(12, 0))
		assert.True(t, d.Allowed)
	})

	t.Run("respects the user timezone", func(t *testing.T) {
		p := *prefs
		p.Timezone = "Asia/Shanghai"
		// 15:30 UTC is 23:30 in Shanghai
		d := ShouldNotify(&p, nil, types.NOTIFICATION_TYPE_MESSAGE, at(15, 30))
		assert.Equal(t, ReasonQuietHours, d.Reason)
	})

	t.Run("bad timezone fails open", func(t *testing.T) {
		p := *prefs
		p.Timezone = "Not/AZone"
		d := ShouldNotify(&p, nil, types.NOTIFICATION_TYPE_MESSAGE, at(23, 30))
		assert.True(t, d.Allowed)
	})

	t.Run("bad clock string fails open", func(t *testing.T) {
		p := *prefs
		p.QuietHoursStart = "25:99"
		d := ShouldNotify(&p, nil, types.NOTIFICATION_TYPE_MESSAGE, at(23, 30))
		assert.True(t, d.Allowed)
	})
}
