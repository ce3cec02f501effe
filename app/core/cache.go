package core

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/safe"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/types/protocol"
)

// RedisCache implements types.Cache and carries the chat-specific redis
// operations: unread badges and the cross-instance read-state channel.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(cfg RedisConfig) *RedisCache {
	opts := &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if cfg.MinIdleConns > 0 {
		opts.MinIdleConns = cfg.MinIdleConns
	}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = time.Duration(cfg.DialTimeout) * time.Second
	}
	if cfg.ReadTimeout > 0 {
		opts.ReadTimeout = time.Duration(cfg.ReadTimeout) * time.Second
	}
	if cfg.WriteTimeout > 0 {
		opts.WriteTimeout = time.Duration(cfg.WriteTimeout) * time.Second
	}

	return &RedisCache{
		client: redis.NewClient(opts),
	}
}

func (c *RedisCache) Client() *redis.Client {
	return c.client
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	return c.client.Get(ctx, key).Result()
}

func (c *RedisCache) SetEx(ctx context.Context, key, value string, expiresAt time.Duration) error {
	return c.client.SetEx(ctx, key, value, expiresAt).Err()
}

func (c *RedisCache) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return c.client.Expire(ctx, key, expiration).Err()
}

// IncrUnreadBadge bumps the unread counter a recipient sees for one
// conversation. Badges are approximate by design, redis loss only resets a
// counter the next mark-read would reset anyway.
func (c *RedisCache) IncrUnreadBadge(ctx context.Context, userID, conversationID string) (int64, error) {
	return c.client.Incr(ctx, protocol.GenUnreadBadgeCacheKey(userID, conversationID)).Result()
}

func (c *RedisCache) ResetUnreadBadge(ctx context.Context, userID, conversationID string) error {
	return c.client.Del(ctx, protocol.GenUnreadBadgeCacheKey(userID, conversationID)).Err()
}

func (c *RedisCache) GetUnreadBadge(ctx context.Context, userID, conversationID string) (int64, error) {
	n, err := c.client.Get(ctx, protocol.GenUnreadBadgeCacheKey(userID, conversationID)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return n, err
}

// PublishSyncEvent mirrors a read-state change to every service instance.
func (c *RedisCache) PublishSyncEvent(ctx context.Context, event protocol.SyncEvent) error {
	raw, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return c.client.Publish(ctx, protocol.SyncChannel(), raw).Err()
}

// SubscribeSyncEvents forwards channel traffic to handler until ctx ends.
// go-redis reconnects the subscription on its own after network errors.
func (c *RedisCache) SubscribeSyncEvents(ctx context.Context, handler func(protocol.SyncEvent)) {
	sub := c.client.Subscribe(ctx, protocol.SyncChannel())

	safe.Go(func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var event protocol.SyncEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					slog.Error("invalid sync event payload", slog.String("error", err.Error()))
					continue
				}
				handler(event)
			}
		}
	})
}
