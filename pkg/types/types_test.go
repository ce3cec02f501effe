package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateContent(t *testing.T) {
	msg := Message{MsgType: MESSAGE_TYPE_TEXT, Content: "hello"}
	assert.True(t, msg.ValidateContent())

	msg.Content = "   "
	assert.False(t, msg.ValidateContent())

	msg.Content = "hello"
	msg.MsgType = MessageType("voice")
	assert.False(t, msg.ValidateContent())
}

func TestBuildDeliveryState(t *testing.T) {
	receipts := []*MessageReceipt{
		{MessageID: "m1", UserID: "u1", DeliveredAt: 100},
		{MessageID: "m1", UserID: "u2", DeliveredAt: 100, ReadAt: 120},
		{MessageID: "m1", UserID: "u2", DeliveredAt: 100, ReadAt: 120},
		{MessageID: "m2", UserID: "u3", DeliveredAt: 100, ReadAt: 110},
	}

	state := BuildDeliveryState("m1", receipts)
	assert.Equal(t, "m1", state.MessageID)
	assert.ElementsMatch(t, []string{"u1", "u2"}, state.DeliveredTo)
	assert.Equal(t, []string{"u2"}, state.ReadBy)

	empty := BuildDeliveryState("m9", receipts)
	assert.NotNil(t, empty.DeliveredTo)
	assert.Empty(t, empty.DeliveredTo)
	assert.Empty(t, empty.ReadBy)
}

func TestMutedAt(t *testing.T) {
	now := time.Now().Unix()

	var nilSetting *ConversationNotificationSetting
	assert.False(t, nilSetting.MutedAt(now))

	s := &ConversationNotificationSetting{IsMuted: false}
	assert.False(t, s.MutedAt(now))

	s = &ConversationNotificationSetting{IsMuted: true}
	assert.True(t, s.MutedAt(now), "muted with no deadline is muted forever")

	s = &ConversationNotificationSetting{IsMuted: true, MutedUntil: now + 3600}
	assert.True(t, s.MutedAt(now))

	s = &ConversationNotificationSetting{IsMuted: true, MutedUntil: now - 1}
	assert.False(t, s.MutedAt(now), "expired mute counts as unmuted")
}

func TestNotificationDataScan(t *testing.T) {
	var d NotificationData
	require.NoError(t, d.Scan([]byte(`{"conversation_id":"c1","message_id":"m1"}`)))
	assert.Equal(t, "c1", d["conversation_id"])
	assert.Equal(t, "m1", d["message_id"])

	var empty NotificationData
	require.NoError(t, empty.Scan([]byte{}))
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	var fromNil NotificationData
	require.NoError(t, fromNil.Scan(nil))
	assert.Nil(t, fromNil)
	assert.Equal(t, "{}", fromNil.String())

	require.Error(t, d.Scan(42))
}

func TestTopicBuilders(t *testing.T) {
	assert.Equal(t, "/conversation/c1", ConversationTopic("c1"))
	assert.Equal(t, "/user/u1", UserTopic("u1"))
}

func TestDevicePlatformValid(t *testing.T) {
	assert.True(t, DEVICE_PLATFORM_IOS.Valid())
	assert.True(t, DEVICE_PLATFORM_ANDROID.Valid())
	assert.True(t, DEVICE_PLATFORM_WEB.Valid())
	assert.False(t, DevicePlatform("windows").Valid())
	assert.False(t, DevicePlatform("").Valid())
}
