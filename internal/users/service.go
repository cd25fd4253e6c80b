package users

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/ledgerdesk/ledgerdesk/internal/shared"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	ListUsers(ctx context.Context) ([]User, error)
	GetUser(ctx context.Context, id int64) (User, error)
	CreateUser(ctx context.Context, u User) (User, error)
	UpdateUser(ctx context.Context, u User) (User, error)
	DeleteUser(ctx context.Context, id int64) error
}

// CreateInput groups fields accepted when creating a user.
type CreateInput struct {
	Username string
	Email    string
	Role     string
	Password string
}

// UpdateInput carries optional user mutations; nil fields keep previous
// values.
type UpdateInput struct {
	Username *string
	Email    *string
	Role     *string
	Password *string
}

// Service handles user business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ListUsers returns all users.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.ListUsers(ctx)
}

// GetUser returns one user by id.
func (s *Service) GetUser(ctx context.Context, id int64) (User, error) {
	return s.repo.GetUser(ctx, id)
}

// CreateUser hashes the password and inserts the user.
func (s *Service) CreateUser(ctx context.Context, in CreateInput) (User, error) {
	var missing []string
	if in.Username == "" {
		missing = append(missing, "username")
	}
	if in.Email == "" {
		missing = append(missing, "email")
	}
	if in.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return User{}, shared.NewValidationError(missing...)
	}
	role := in.Role
	if role == "" {
		role = "user"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}
	return s.repo.CreateUser(ctx, User{
		Username:     in.Username,
		Email:        in.Email,
		Role:         role,
		PasswordHash: string(hash),
	})
}

// UpdateUser applies the supplied mutations, keeping previous values
// for omitted fields.
func (s *Service) UpdateUser(ctx context.Context, id int64, in UpdateInput) (User, error) {
	current, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return User{}, err
	}
	if in.Username != nil {
		current.Username = *in.Username
	}
	if in.Email != nil {
		current.Email = *in.Email
	}
	if in.Role != nil {
		current.Role = *in.Role
	}
	if in.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return User{}, err
		}
		current.PasswordHash = string(hash)
	}
	return s.repo.UpdateUser(ctx, current)
}

// DeleteUser removes a user.
func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	return s.repo.DeleteUser(ctx, id)
}
