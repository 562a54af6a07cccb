package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/crm-service/internal/auth"
	"github.com/spec-kit/crm-service/internal/config"
	"github.com/spec-kit/crm-service/internal/domain"
	"github.com/spec-kit/crm-service/internal/repository"
	apperrors "github.com/spec-kit/crm-service/pkg/util"
)

// EmployeeService manages account provisioning and role assignment. Role
// enforcement happens at the route gate; this service assumes the caller was
// already authorized.
type EmployeeService struct {
	principals repository.PrincipalRepository
	bcryptCost int
}

// NewEmployeeService constructs the service.
func NewEmployeeService(cfg config.Config, principals repository.PrincipalRepository) *EmployeeService {
	return &EmployeeService{principals: principals, bcryptCost: cfg.Auth.BcryptCost}
}

// ProvisionInput describes a new account.
type ProvisionInput struct {
	DisplayName string
	Email       string
	Password    string
	Role        domain.Role
}

// Provision creates a new account with a hashed password.
func (s *EmployeeService) Provision(ctx context.Context, input ProvisionInput) (*domain.Principal, error) {
	if !input.Role.Valid() {
		return nil, apperrors.NewValidationError("unknown role", map[string]any{"role": string(input.Role)})
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if _, err := s.principals.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	principal := &domain.Principal{
		DisplayName:  input.DisplayName,
		Email:        email,
		PasswordHash: hash,
		Role:         input.Role,
		Active:       true,
	}
	if err := s.principals.Create(ctx, principal); err != nil {
		return nil, apperrors.MapError(err)
	}
	return principal, nil
}

// ChangeRole reassigns an account's role. The change is visible on the
// subject's next request because tokens carry no role claim.
func (s *EmployeeService) ChangeRole(ctx context.Context, principalID string, role domain.Role) (*domain.Principal, error) {
	if !role.Valid() {
		return nil, apperrors.NewValidationError("unknown role", map[string]any{"role": string(role)})
	}

	principal, err := s.principals.GetByID(ctx, principalID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("principal", nil)
		}
		return nil, apperrors.MapError(err)
	}
	principal.Role = role
	if err := s.principals.Update(ctx, principal); err != nil {
		return nil, apperrors.MapError(err)
	}
	return principal, nil
}

// List returns accounts matching the filter.
func (s *EmployeeService) List(ctx context.Context, filter repository.PrincipalFilter) ([]domain.Principal, error) {
	principals, err := s.principals.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return principals, nil
}
