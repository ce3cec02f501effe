package types

import "fmt"

// WsEventType names every event the realtime tier emits to sessions.
type WsEventType string

const (
	WS_EVENT_NEW_MESSAGE       WsEventType = "new-message"
	WS_EVENT_MESSAGE_DELIVERED WsEventType = "message-delivered"
	WS_EVENT_MESSAGE_READ      WsEventType = "message-read"
	WS_EVENT_MESSAGE_EDITED    WsEventType = "message-edited"
	WS_EVENT_MESSAGE_DELETED   WsEventType = "message-deleted"
	WS_EVENT_USER_TYPING       WsEventType = "user-typing"
	WS_EVENT_USER_ONLINE       WsEventType = "user-online"
	WS_EVENT_USER_OFFLINE      WsEventType = "user-offline"
	WS_EVENT_ERROR             WsEventType = "error"
)

// Client-to-server operations carried on the firetower read path.
const (
	WS_OP_SEND_MESSAGE = "send-message"
	WS_OP_TYPING_START = "typing-start"
	WS_OP_TYPING_STOP  = "typing-stop"
	WS_OP_MARK_READ    = "mark-read"
	WS_OP_USER_ONLINE  = "user-online"
)

// Error codes surfaced to the originating session only.
const (
	WS_ERR_CONVERSATION_NOT_FOUND  = "CONVERSATION_NOT_FOUND"
	WS_ERR_UNAUTHORIZED            = "UNAUTHORIZED"
	WS_ERR_INVALID_MESSAGE_CONTENT = "INVALID_MESSAGE_CONTENT"
	WS_ERR_INVALID_REFERENCE       = "INVALID_REFERENCE"
	WS_ERR_INTERNAL                = "INTERNAL"
)

type WsErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type TypingEventData struct {
	UserID         string `json:"user_id"`
	ConversationID string `json:"conversation_id"`
	IsTyping       bool   `json:"is_typing"`
}

type PresenceEventData struct {
	UserID string `json:"user_id"`
}

type DeletedEventData struct {
	MessageID      string `json:"message_id"`
	ConversationID string `json:"conversation_id"`
}

// MessageDeliveredData carries the acking user plus the full delivered set
// after the ack, so clients replace their state instead of merging.
type MessageDeliveredData struct {
	MessageID   string   `json:"message_id"`
	UserID      string   `json:"user_id"`
	DeliveredAt int64    `json:"delivered_at"`
	DeliveredTo []string `json:"delivered_to"`
}

// MessagesReadData batches read acks per sender. ReadBy maps each message id
// to its full read set after the ack.
type MessagesReadData struct {
	ConversationID string              `json:"conversation_id"`
	MessageIDs     []string            `json:"message_ids"`
	UserID         string              `json:"user_id"`
	ReadAt         int64               `json:"read_at"`
	ReadBy         map[string][]string `json:"read_by"`
}

type SendMessageOpData struct {
	MsgType string `json:"msg_type"`
	Content string `json:"content"`
	ReplyTo string `json:"reply_to,omitempty"`
}

type MarkReadOpData struct {
	MessageIDs []string `json:"message_ids"`
}

const (
	TOPIC_PREFIX_CONVERSATION = "/conversation/"
	TOPIC_PREFIX_USER         = "/user/"
)

// ConversationTopic is the room channel: every session joined to the
// conversation subscribes to it.
func ConversationTopic(conversationID string) string {
	return fmt.Sprintf("%s%s", TOPIC_PREFIX_CONVERSATION, conversationID)
}

// UserTopic fans out to all of one user's sessions (multi-device).
func UserTopic(userID string) string {
	return fmt.Sprintf("%s%s", TOPIC_PREFIX_USER, userID)
}
