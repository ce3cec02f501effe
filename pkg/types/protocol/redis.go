package protocol

import (
	"fmt"
	"strings"
)

const (
	RedisCacheKeyNamespaceSep = ":"

	RedisCacheKeyPrefixChat = "chatapp"
)

func GenChatCacheKey(fields ...string) string {
	return strings.Join(append([]string{RedisCacheKeyPrefixChat}, fields...), RedisCacheKeyNamespaceSep)
}

// GenUserTokenCacheKey chatapp:token:{md5}
func GenUserTokenCacheKey(tokenHash string) string {
	return GenChatCacheKey("token", tokenHash)
}

// GenUnreadBadgeCacheKey chatapp:badge:{user-id}:{conversation-id}
func GenUnreadBadgeCacheKey(userID, conversationID string) string {
	return GenChatCacheKey("badge", userID, conversationID)
}

// SyncChannel is the redis pub/sub channel mirroring read-state across
// devices and across service instances.
func SyncChannel() string {
	return GenChatCacheKey("sync")
}

// SyncEvent rides SyncChannel; every instance forwards it to the local
// sessions of TargetUserID via their user topic.
type SyncEvent struct {
	TargetUserID   string   `json:"target_user_id"`
	ConversationID string   `json:"conversation_id"`
	MessageIDs     []string `json:"message_ids"`
	Kind           string   `json:"kind"` // "read"
}

func (e SyncEvent) Key() string {
	return fmt.Sprintf("%s/%s", e.TargetUserID, e.Kind)
}
