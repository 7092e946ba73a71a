package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"stockwise-decd/internal/adapters/persistence/models"
	"stockwise-decd/internal/adapters/persistence/repositories"
	"stockwise-decd/internal/core/domain"
	"stockwise-decd/internal/pkg/password"
	"stockwise-decd/internal/pkg/validator"
)

// UserService handles user management business logic
type UserService struct {
	userRepo repositories.UserRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo repositories.UserRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
	}
}

// CreateUserInput represents a create-user request
type CreateUserInput struct {
	Name        string   `json:"name" validate:"required,min=2"`
	Username    string   `json:"username" validate:"required,min=3"`
	Password    string   `json:"password" validate:"required,min=6"`
	Role        string   `json:"role" validate:"required,oneof=admin user"`
	Permissions []string `json:"permissions" validate:"required,min=1"`
}

// CreateUser creates a new user with a hashed password and a validated
// capability set. Usernames are unique, compared case-insensitively.
func (s *UserService) CreateUser(ctx context.Context, input *CreateUserInput) (*models.User, error) {
	if err := validator.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	perms, err := domain.NewPermissionSet(input.Permissions)
	if err != nil {
		return nil, err
	}

	exists, err := s.userRepo.ExistsByUsername(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrUserAlreadyExists
	}

	hashed, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:        strings.TrimSpace(input.Name),
		Username:    strings.TrimSpace(input.Username),
		Password:    hashed,
		Role:        input.Role,
		Permissions: models.PermissionList(perms.Strings()),
		IsActive:    true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	log.Printf("✅ User created: %s (role=%s)", user.Username, user.Role)
	return user, nil
}

// UpdateUserInput represents a partial user edit.
// Role is intentionally absent: it is immutable after creation.
type UpdateUserInput struct {
	Name        *string  `json:"name"`
	Username    *string  `json:"username"`
	Password    *string  `json:"password"`
	Permissions []string `json:"permissions"`
	IsActive    *bool    `json:"is_active"`
}

// UpdateUser applies a partial edit to a user
func (s *UserService) UpdateUser(ctx context.Context, id uint, input *UpdateUserInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Username != nil && !strings.EqualFold(*input.Username, user.Username) {
		exists, err := s.userRepo.ExistsByUsername(ctx, *input.Username)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, domain.ErrUserAlreadyExists
		}
		user.Username = strings.TrimSpace(*input.Username)
	}
	if input.Name != nil {
		user.Name = strings.TrimSpace(*input.Name)
	}
	if input.Password != nil && *input.Password != "" {
		if len(*input.Password) < 6 {
			return nil, domain.ErrInvalidInput
		}
		hashed, err := password.Hash(*input.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hashed
	}
	if input.Permissions != nil {
		perms, err := domain.NewPermissionSet(input.Permissions)
		if err != nil {
			return nil, err
		}
		user.Permissions = models.PermissionList(perms.Strings())
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes a user. The last remaining admin cannot be deleted.
func (s *UserService) DeleteUser(ctx context.Context, id uint) error {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if user.Role == string(domain.RoleAdmin) {
		admins, err := s.userRepo.CountAdmins(ctx)
		if err != nil {
			return err
		}
		if admins <= 1 {
			return fmt.Errorf("%w: cannot delete the last admin", domain.ErrForbidden)
		}
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}
	log.Printf("🗑️ User %d (%s) deleted", id, user.Username)
	return nil
}

// GetUserByID returns a user by ID
func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// ListUsersInput represents pagination for user listing
type ListUsersInput struct {
	Page  int
	Limit int
}

// ListUsersResult represents a paginated user listing
type ListUsersResult struct {
	Users []*models.UserResponse `json:"users"`
	Total int64                  `json:"total"`
	Page  int                    `json:"page"`
	Limit int                    `json:"limit"`
}

// ListUsers lists users with pagination
func (s *UserService) ListUsers(ctx context.Context, input *ListUsersInput) (*ListUsersResult, error) {
	if input.Page < 1 {
		input.Page = 1
	}
	if input.Limit < 1 || input.Limit > 100 {
		input.Limit = 10
	}
	offset := (input.Page - 1) * input.Limit

	users, total, err := s.userRepo.List(ctx, offset, input.Limit)
	if err != nil {
		return nil, err
	}

	responses := make([]*models.UserResponse, len(users))
	for i, u := range users {
		responses[i] = u.ToResponse()
	}
	return &ListUsersResult{
		Users: responses,
		Total: total,
		Page:  input.Page,
		Limit: input.Limit,
	}, nil
}

// HasPermission checks a user's capability set by set membership
func (s *UserService) HasPermission(ctx context.Context, id uint, perm domain.Permission) (bool, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return false, nil
		}
		return false, err
	}
	perms, err := domain.NewPermissionSet(user.Permissions)
	if err != nil {
		return false, err
	}
	return perms.Has(perm), nil
}
