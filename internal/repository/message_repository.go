package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"rolechat/internal/model"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(message *model.Message) error {
	if err := r.db.Create(message).Error; err != nil {
		return fmt.Errorf("create message failed: %w", err)
	}
	return nil
}

func (r *MessageRepository) ListByConversationID(conversationID uint, limit int) ([]model.Message, error) {
	if limit <= 0 || limit > 500 {
		limit = 200
	}

	var messages []model.Message
	if err := r.db.Where("conversation_id = ?", conversationID).
		Order("created_at ASC, id ASC").
		Limit(limit).
		Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("list messages failed: %w", err)
	}
	return messages, nil
}

// ListRecentByConversationID returns the newest messages, oldest first.
func (r *MessageRepository) ListRecentByConversationID(conversationID uint, limit int) ([]model.Message, error) {
	if limit <= 0 {
		limit = 20
	}

	var recent []model.Message
	if err := r.db.Where("conversation_id = ?", conversationID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&recent).Error; err != nil {
		return nil, fmt.Errorf("list recent messages failed: %w", err)
	}

	for i, j := 0, len(recent)-1; i < j; i, j = i+1, j-1 {
		recent[i], recent[j] = recent[j], recent[i]
	}
	return recent, nil
}

func (r *MessageRepository) CountByConversationID(conversationID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&model.Message{}).Where("conversation_id = ?", conversationID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count messages failed: %w", err)
	}
	return count, nil
}

func (r *MessageRepository) LastByConversationID(conversationID uint) (*model.Message, error) {
	var message model.Message
	if err := r.db.Where("conversation_id = ?", conversationID).
		Order("created_at DESC, id DESC").
		First(&message).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query last message failed: %w", err)
	}
	return &message, nil
}
