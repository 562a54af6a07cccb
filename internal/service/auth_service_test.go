package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/crm-service/internal/auth"
	"github.com/spec-kit/crm-service/internal/config"
	"github.com/spec-kit/crm-service/internal/domain"
	"github.com/spec-kit/crm-service/internal/repository/repofake"
	"github.com/spec-kit/crm-service/internal/service"
	apperrors "github.com/spec-kit/crm-service/pkg/util"
)

const (
	testEmail    = "alice@example.com"
	testPassword = "correct horse battery"
)

type fixture struct {
	repo    *repofake.FakePrincipalRepo
	service *service.AuthService
}

func testConfig() config.Config {
	return config.Config{
		Auth: config.AuthConfig{
			JWTSecret:             "test-secret",
			AccessTokenTTLMinutes: 60,
			BcryptCost:            bcrypt.MinCost,
		},
	}
}

func setup(t *testing.T) *fixture {
	t.Helper()

	repo := repofake.NewFakePrincipalRepo()
	return &fixture{
		repo:    repo,
		service: service.NewAuthService(testConfig(), repo),
	}
}

func (f *fixture) createPrincipal(t *testing.T, email, password string, role domain.Role, active bool) *domain.Principal {
	t.Helper()

	hash, err := auth.HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)

	principal := &domain.Principal{
		DisplayName:  "Test Account",
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Active:       active,
	}
	require.NoError(t, f.repo.Create(context.Background(), principal))
	return principal
}

func errCode(t *testing.T, err error) string {
	t.Helper()
	var de *apperrors.DomainError
	require.True(t, errors.As(err, &de), "expected DomainError, got %v", err)
	return de.Code
}

func TestLoginIssuesResolvableToken(t *testing.T) {
	f := setup(t)
	created := f.createPrincipal(t, testEmail, testPassword, domain.RoleEmployee, true)

	principal, token, exp, err := f.service.Login(context.Background(), testEmail, testPassword)
	require.NoError(t, err)
	require.Equal(t, created.ID, principal.ID)
	require.True(t, exp.After(time.Now()))

	subject, err := f.service.TokenManager().ParseToken(token)
	require.NoError(t, err)
	require.Equal(t, created.ID, subject)
}

func TestLoginNormalizesEmail(t *testing.T) {
	f := setup(t)
	f.createPrincipal(t, testEmail, testPassword, domain.RoleEmployee, true)

	_, _, _, err := f.service.Login(context.Background(), "  Alice@Example.COM ", testPassword)
	require.NoError(t, err)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	f := setup(t)
	f.createPrincipal(t, testEmail, testPassword, domain.RoleEmployee, true)

	_, _, _, wrongPassword := f.service.Login(context.Background(), testEmail, "nope")
	_, _, _, unknownEmail := f.service.Login(context.Background(), "ghost@example.com", "nope")

	require.Error(t, wrongPassword)
	require.Error(t, unknownEmail)
	require.Equal(t, errCode(t, wrongPassword), errCode(t, unknownEmail))
	require.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestLoginInactiveAccount(t *testing.T) {
	f := setup(t)
	f.createPrincipal(t, testEmail, testPassword, domain.RoleEmployee, false)

	_, _, _, err := f.service.Login(context.Background(), testEmail, testPassword)
	require.Error(t, err)
	require.Equal(t, "INVALID_CREDENTIALS", errCode(t, err))
}

func TestChangePasswordRequiresCurrent(t *testing.T) {
	f := setup(t)
	created := f.createPrincipal(t, testEmail, testPassword, domain.RoleEmployee, true)

	err := f.service.ChangePassword(context.Background(), created.ID, "wrong", "new-password")
	require.Error(t, err)
	require.Equal(t, "INVALID_CREDENTIALS", errCode(t, err))

	// The old password still works.
	_, _, _, err = f.service.Login(context.Background(), testEmail, testPassword)
	require.NoError(t, err)
}

func TestChangePasswordRotatesHash(t *testing.T) {
	f := setup(t)
	created := f.createPrincipal(t, testEmail, testPassword, domain.RoleEmployee, true)

	require.NoError(t, f.service.ChangePassword(context.Background(), created.ID, testPassword, "new-password"))

	_, _, _, err := f.service.Login(context.Background(), testEmail, testPassword)
	require.Error(t, err)

	_, _, _, err = f.service.Login(context.Background(), testEmail, "new-password")
	require.NoError(t, err)
}
