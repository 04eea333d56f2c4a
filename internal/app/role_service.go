package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"rolechat/internal/catalog"
	"rolechat/internal/model"
	"rolechat/internal/repository"
)

var ErrRoleNotFound = errors.New("role not found")

type RoleService struct {
	roleRepo *repository.RoleRepository
}

// RoleView is a catalog entry: the stored role plus its derived category and
// icon, which the front end filters on client-side.
type RoleView struct {
	ID               uint   `json:"id"`
	Name             string `json:"name"`
	ShortDescription string `json:"short_description"`
	LongDescription  string `json:"long_description"`
	Category         string `json:"category"`
	Icon             string `json:"icon"`
}

type seedRole struct {
	Role             string `json:"role"`
	ShortDescription string `json:"short_description"`
	LongDescription  string `json:"long_description"`
	SystemPrompt     string `json:"system_prompt"`
}

func NewRoleService(roleRepo *repository.RoleRepository) *RoleService {
	return &RoleService{roleRepo: roleRepo}
}

// SeedFromFile loads the bundled role definitions and upserts them by name.
// Safe to run on every startup.
func (s *RoleService) SeedFromFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read roles seed file failed: %w", err)
	}

	var seeds []seedRole
	if err := json.Unmarshal(data, &seeds); err != nil {
		return 0, fmt.Errorf("unmarshal roles seed file failed: %w", err)
	}

	seeded := 0
	for _, seed := range seeds {
		if seed.Role == "" || seed.SystemPrompt == "" {
			continue
		}
		role := &model.AIRole{
			Name:             seed.Role,
			ShortDescription: seed.ShortDescription,
			LongDescription:  seed.LongDescription,
			SystemPrompt:     seed.SystemPrompt,
		}
		if err := s.roleRepo.Upsert(role); err != nil {
			return seeded, err
		}
		seeded++
	}
	return seeded, nil
}

func (s *RoleService) Catalog() ([]RoleView, []string, error) {
	roles, err := s.roleRepo.ListAll()
	if err != nil {
		return nil, nil, err
	}

	views := make([]RoleView, 0, len(roles))
	for _, role := range roles {
		views = append(views, RoleView{
			ID:               role.ID,
			Name:             role.Name,
			ShortDescription: role.ShortDescription,
			LongDescription:  role.LongDescription,
			Category:         catalog.Categorize(role.Name, role.ShortDescription, role.LongDescription),
			Icon:             catalog.Icon(role.Name),
		})
	}
	return views, catalog.AllCategories(), nil
}

func (s *RoleService) GetByID(id uint) (*model.AIRole, error) {
	if id == 0 {
		return nil, ErrInvalidInput
	}
	role, err := s.roleRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, ErrRoleNotFound
	}
	return role, nil
}
