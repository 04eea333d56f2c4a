package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"rolechat/internal/model"
)

type ConversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

func (r *ConversationRepository) Create(conversation *model.Conversation) error {
	if err := r.db.Create(conversation).Error; err != nil {
		return fmt.Errorf("create conversation failed: %w", err)
	}
	return nil
}

func (r *ConversationRepository) ListByUserID(userID uint) ([]model.Conversation, error) {
	var conversations []model.Conversation
	if err := r.db.Where("user_id = ?", userID).Order("updated_at DESC").Find(&conversations).Error; err != nil {
		return nil, fmt.Errorf("list conversations failed: %w", err)
	}
	return conversations, nil
}

func (r *ConversationRepository) GetByIDAndUserID(conversationID, userID uint) (*model.Conversation, error) {
	var conversation model.Conversation
	if err := r.db.Where("id = ? AND user_id = ?", conversationID, userID).First(&conversation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get conversation failed: %w", err)
	}
	return &conversation, nil
}

func (r *ConversationRepository) UpdateTitle(conversationID uint, title string) error {
	if err := r.db.Model(&model.Conversation{}).Where("id = ?", conversationID).Update("title", title).Error; err != nil {
		return fmt.Errorf("update conversation title failed: %w", err)
	}
	return nil
}

func (r *ConversationRepository) Touch(conversationID uint) error {
	if err := r.db.Model(&model.Conversation{}).Where("id = ?", conversationID).Update("updated_at", gorm.Expr("CURRENT_TIMESTAMP")).Error; err != nil {
		return fmt.Errorf("touch conversation failed: %w", err)
	}
	return nil
}

// DeleteWithMessages removes the conversation and every message in it as one
// transaction so a failed delete never leaves orphan rows.
func (r *ConversationRepository) DeleteWithMessages(conversationID, userID uint) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("conversation_id = ?", conversationID).Delete(&model.Message{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ? AND user_id = ?", conversationID, userID).Delete(&model.Conversation{}).Error
	})
	if err != nil {
		return fmt.Errorf("delete conversation failed: %w", err)
	}
	return nil
}
