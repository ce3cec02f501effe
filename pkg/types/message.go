package types

import (
	"strings"
	"time"

	"github.com/samber/lo"
)

type MessageType string

const (
	MESSAGE_TYPE_TEXT   MessageType = "text"
	MESSAGE_TYPE_IMAGE  MessageType = "image"
	MESSAGE_TYPE_FILE   MessageType = "file"
	MESSAGE_TYPE_SYSTEM MessageType = "system"
)

func (t MessageType) Valid() bool {
	switch t {
	case MESSAGE_TYPE_TEXT, MESSAGE_TYPE_IMAGE, MESSAGE_TYPE_FILE, MESSAGE_TYPE_SYSTEM:
		return true
	default:
		return false
	}
}

const (
	MESSAGE_NOT_DELETED int = 0
	MESSAGE_IS_DELETED  int = 1
)

// Message content is immutable after creation except for edit/delete marks.
// Deleting only flips IsDeleted, the content stays for audit.
type Message struct {
	ID             string      `db:"id" json:"id"`
	ConversationID string      `db:"conversation_id" json:"conversation_id"`
	UserID         string      `db:"user_id" json:"user_id"`
	MsgType        MessageType `db:"msg_type" json:"msg_type"`
	Content        string      `db:"content" json:"content"`
	ReplyTo        string      `db:"reply_to" json:"reply_to,omitempty"`
	Sequence       int64       `db:"sequence" json:"sequence"`
	SendTime       int64       `db:"send_time" json:"send_time"`
	EditedAt       int64       `db:"edited_at" json:"edited_at,omitempty"`
	IsDeleted      int         `db:"is_deleted" json:"is_deleted"`
}

func (m *Message) ValidateContent() bool {
	if !m.MsgType.Valid() {
		return false
	}
	return strings.TrimSpace(m.Content) != ""
}

// MessageReceipt is one (message, recipient) delivery/read record. Rows are
// upserted and never downgraded, which keeps deliveredTo/readBy monotonic.
// ReadAt being set implies DeliveredAt is set (read implies delivered).
type MessageReceipt struct {
	MessageID   string `db:"message_id" json:"message_id"`
	UserID      string `db:"user_id" json:"user_id"`
	DeliveredAt int64  `db:"delivered_at" json:"delivered_at"`
	ReadAt      int64  `db:"read_at" json:"read_at"`
}

// MessageDeliveryState is the aggregated receipt view of one message.
type MessageDeliveryState struct {
	MessageID   string   `json:"message_id"`
	DeliveredTo []string `json:"delivered_to"`
	ReadBy      []string `json:"read_by"`
}

func BuildDeliveryState(messageID string, receipts []*MessageReceipt) MessageDeliveryState {
	state := MessageDeliveryState{
		MessageID:   messageID,
		DeliveredTo: []string{},
		ReadBy:      []string{},
	}
	for _, r := range receipts {
		if r.MessageID != messageID {
			continue
		}
		if r.DeliveredAt > 0 {
			state.DeliveredTo = append(state.DeliveredTo, r.UserID)
		}
		if r.ReadAt > 0 {
			state.ReadBy = append(state.ReadBy, r.UserID)
		}
	}
	state.DeliveredTo = lo.Uniq(state.DeliveredTo)
	state.ReadBy = lo.Uniq(state.ReadBy)
	return state
}

type OfflineQueueEntry struct {
	ID              int64  `db:"id" json:"id"`
	RecipientUserID string `db:"recipient_user_id" json:"recipient_user_id"`
	ConversationID  string `db:"conversation_id" json:"conversation_id"`
	MessageID       string `db:"message_id" json:"message_id"`
	EnqueuedAt      int64  `db:"enqueued_at" json:"enqueued_at"`
}

type ListMessageOptions struct {
	ConversationID string
	AfterSequence  int64
	Limit          uint64
}

func NowUnix() int64 {
	return time.Now().Unix()
}
