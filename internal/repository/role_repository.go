package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"rolechat/internal/model"
)

type RoleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

func (r *RoleRepository) ListAll() ([]model.AIRole, error) {
	var roles []model.AIRole
	if err := r.db.Order("name ASC").Find(&roles).Error; err != nil {
		return nil, fmt.Errorf("list roles failed: %w", err)
	}
	return roles, nil
}

func (r *RoleRepository) GetByID(id uint) (*model.AIRole, error) {
	var role model.AIRole
	if err := r.db.First(&role, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query role by id failed: %w", err)
	}
	return &role, nil
}

func (r *RoleRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&model.AIRole{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count roles failed: %w", err)
	}
	return count, nil
}

// Upsert creates the role or refreshes its descriptions and prompt, keyed by
// the unique role name.
func (r *RoleRepository) Upsert(role *model.AIRole) error {
	var existing model.AIRole
	err := r.db.Where("name = ?", role.Name).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := r.db.Create(role).Error; err != nil {
			return fmt.Errorf("create role failed: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("query role by name failed: %w", err)
	}

	existing.ShortDescription = role.ShortDescription
	existing.LongDescription = role.LongDescription
	existing.SystemPrompt = role.SystemPrompt
	if err := r.db.Save(&existing).Error; err != nil {
		return fmt.Errorf("update role failed: %w", err)
	}
	role.ID = existing.ID
	return nil
}
