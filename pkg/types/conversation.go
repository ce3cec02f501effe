package types

type ConversationType string

const (
	CONVERSATION_TYPE_SINGLE ConversationType = "single"
	CONVERSATION_TYPE_GROUP  ConversationType = "group"
)

type Conversation struct {
	ID           string           `db:"id" json:"id"`
	Type         ConversationType `db:"type" json:"type"`
	Title        string           `db:"title" json:"title"`
	Avatar       string           `db:"avatar" json:"avatar"`
	Creator      string           `db:"creator" json:"creator"`
	LastActivity int64            `db:"last_activity" json:"last_activity"`
	CreatedAt    int64            `db:"created_at" json:"created_at"`
}

type ParticipantRole string

const (
	PARTICIPANT_ROLE_OWNER  ParticipantRole = "owner"
	PARTICIPANT_ROLE_ADMIN  ParticipantRole = "admin"
	PARTICIPANT_ROLE_MEMBER ParticipantRole = "member"
)

type ConversationParticipant struct {
	ConversationID string          `db:"conversation_id" json:"conversation_id"`
	UserID         string          `db:"user_id" json:"user_id"`
	Role           ParticipantRole `db:"role" json:"role"`
	JoinedAt       int64           `db:"joined_at" json:"joined_at"`
}

type ListConversationOptions struct {
	UserID string
	Type   *ConversationType
}
