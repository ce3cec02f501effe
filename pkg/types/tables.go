package types

import "fmt"

type TableName string

func (s TableName) Name() string {
	return fmt.Sprintf("%s%s", TABLE_PREFIX, s)
}

const TABLE_PREFIX = "chat_"

const (
	TABLE_USER                     = TableName("user")
	TABLE_ACCESS_TOKEN             = TableName("access_token")
	TABLE_CONVERSATION             = TableName("conversation")
	TABLE_CONVERSATION_PARTICIPANT = TableName("conversation_participant")
	TABLE_MESSAGE                  = TableName("message")
	TABLE_MESSAGE_RECEIPT          = TableName("message_receipt")
	TABLE_OFFLINE_QUEUE            = TableName("offline_queue")
	TABLE_NOTIFICATION_QUEUE       = TableName("notification_queue")
	TABLE_NOTIFICATION_PREFERENCES = TableName("notification_preferences")
	TABLE_CONVERSATION_SETTING     = TableName("conversation_setting")
	TABLE_DEVICE_TOKEN             = TableName("device_token")
)
