package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/printcloud/backend/internal/domain/identity"
	"github.com/printcloud/backend/internal/domain/shared"
)

// UserService handles operator account management
type UserService struct {
	userRepo identity.UserRepository
}

// NewUserService creates a new UserService
func NewUserService(userRepo identity.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// Register creates a new operator account
func (s *UserService) Register(ctx context.Context, tenantID uuid.UUID, req RegisterUserRequest) (*UserResponse, error) {
	taken, err := s.userRepo.ExistsByUsername(ctx, tenantID, req.Username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, shared.NewDomainError("USERNAME_TAKEN", "Username is already in use")
	}

	user, err := identity.NewUser(tenantID, req.Username, req.Password, req.DisplayName)
	if err != nil {
		return nil, err
	}
	if req.Email != "" {
		if err := user.SetEmail(req.Email); err != nil {
			return nil, err
		}
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	response := ToUserResponse(user)
	return &response, nil
}

// GetByID retrieves a user by ID
func (s *UserService) GetByID(ctx context.Context, tenantID, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByIDForTenant(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	response := ToUserResponse(user)
	return &response, nil
}

// List retrieves users for a tenant
func (s *UserService) List(ctx context.Context, tenantID uuid.UUID, page, pageSize int) ([]UserResponse, int64, error) {
	filter := shared.DefaultFilter()
	if page > 0 {
		filter.Page = page
	}
	if pageSize > 0 {
		filter.PageSize = pageSize
	}
	filter.OrderBy = "username"
	filter.OrderDir = "asc"

	users, err := s.userRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.userRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]UserResponse, len(users))
	for i := range users {
		responses[i] = ToUserResponse(&users[i])
	}
	return responses, total, nil
}

// Deactivate disables an account
func (s *UserService) Deactivate(ctx context.Context, tenantID, userID uuid.UUID) error {
	user, err := s.userRepo.FindByIDForTenant(ctx, tenantID, userID)
	if err != nil {
		return err
	}
	user.Deactivate()
	return s.userRepo.Save(ctx, user)
}

// Activate re-enables an account and clears any lockout
func (s *UserService) Activate(ctx context.Context, tenantID, userID uuid.UUID) error {
	user, err := s.userRepo.FindByIDForTenant(ctx, tenantID, userID)
	if err != nil {
		return err
	}
	user.Activate()
	return s.userRepo.Save(ctx, user)
}
