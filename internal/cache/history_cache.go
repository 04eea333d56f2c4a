package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"rolechat/internal/model"
)

// cachedMessage is the storage form for one history entry. Short tags keep
// the Redis payload small; the conversation id is implied by the key and
// restored on read.
type cachedMessage struct {
	ID        uint      `json:"id"`
	Role      string    `json:"r"`
	Content   string    `json:"c"`
	CreatedAt time.Time `json:"at"`
}

// HistoryCache keeps recently loaded conversation history in Redis so the
// chat page does not hit MySQL on every load. A short-lived dirty marker
// guards the window between a new message and the next DB read.
type HistoryCache struct {
	client         *redisv9.Client
	historyTTL     time.Duration
	dirtyMarkerTTL time.Duration
}

func NewHistoryCache(client *redisv9.Client, historyTTL, dirtyMarkerTTL time.Duration) *HistoryCache {
	if historyTTL <= 0 {
		historyTTL = 60 * time.Second
	}
	if dirtyMarkerTTL <= 0 {
		dirtyMarkerTTL = 5 * time.Second
	}
	return &HistoryCache{
		client:         client,
		historyTTL:     historyTTL,
		dirtyMarkerTTL: dirtyMarkerTTL,
	}
}

func (c *HistoryCache) GetHistory(ctx context.Context, conversationID uint) ([]model.Message, bool, error) {
	key := c.historyKey(conversationID)
	raw, err := c.client.Get(ctx, key).Result()
	if err == redisv9.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get history failed: %w", err)
	}

	var entries []cachedMessage
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached history failed: %w", err)
	}

	messages := make([]model.Message, 0, len(entries))
	for _, entry := range entries {
		messages = append(messages, model.Message{
			ID:             entry.ID,
			ConversationID: conversationID,
			Role:           entry.Role,
			Content:        entry.Content,
			CreatedAt:      entry.CreatedAt,
		})
	}
	return messages, true, nil
}

func (c *HistoryCache) SetHistory(ctx context.Context, conversationID uint, messages []model.Message) error {
	entries := make([]cachedMessage, 0, len(messages))
	for _, msg := range messages {
		entries = append(entries, cachedMessage{
			ID:        msg.ID,
			Role:      msg.Role,
			Content:   msg.Content,
			CreatedAt: msg.CreatedAt,
		})
	}

	payload, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshal history cache failed: %w", err)
	}
	if err := c.client.Set(ctx, c.historyKey(conversationID), payload, c.historyTTL).Err(); err != nil {
		return fmt.Errorf("redis set history failed: %w", err)
	}
	return nil
}

func (c *HistoryCache) DeleteHistory(ctx context.Context, conversationID uint) error {
	if err := c.client.Del(ctx, c.historyKey(conversationID)).Err(); err != nil {
		return fmt.Errorf("redis delete history failed: %w", err)
	}
	return nil
}

func (c *HistoryCache) MarkDirty(ctx context.Context, conversationID uint) error {
	if err := c.client.Set(ctx, c.dirtyKey(conversationID), "1", c.dirtyMarkerTTL).Err(); err != nil {
		return fmt.Errorf("redis set dirty marker failed: %w", err)
	}
	return nil
}

func (c *HistoryCache) IsDirty(ctx context.Context, conversationID uint) (bool, error) {
	exists, err := c.client.Exists(ctx, c.dirtyKey(conversationID)).Result()
	if err != nil {
		return false, fmt.Errorf("redis check dirty marker failed: %w", err)
	}
	return exists > 0, nil
}

func (c *HistoryCache) historyKey(conversationID uint) string {
	return fmt.Sprintf("rolechat:history:%d", conversationID)
}

func (c *HistoryCache) dirtyKey(conversationID uint) string {
	return fmt.Sprintf("rolechat:history:dirty:%d", conversationID)
}
