package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"rolechat/internal/model"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(user *model.User) error {
	if err := r.db.Create(user).Error; err != nil {
		return fmt.Errorf("create user failed: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByUsername(username string) (*model.User, error) {
	var user model.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query user by username failed: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) GetByID(id uint) (*model.User, error) {
	var user model.User
	if err := r.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query user by id failed: %w", err)
	}
	return &user, nil
}

// Taken reports which of the two registration identifiers already exist,
// in one query instead of one per field.
func (r *UserRepository) Taken(username, email string) (usernameTaken, emailTaken bool, err error) {
	var matches []model.User
	if err := r.db.Select("username", "email").
		Where("username = ? OR email = ?", username, email).
		Find(&matches).Error; err != nil {
		return false, false, fmt.Errorf("check user uniqueness failed: %w", err)
	}

	for _, match := range matches {
		if match.Username == username {
			usernameTaken = true
		}
		if match.Email == email {
			emailTaken = true
		}
	}
	return usernameTaken, emailTaken, nil
}
