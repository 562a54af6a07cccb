package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	nethttp "net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/crm-service/internal/api/http/handlers"
	"github.com/spec-kit/crm-service/internal/auth"
	"github.com/spec-kit/crm-service/internal/config"
	"github.com/spec-kit/crm-service/internal/domain"
	"github.com/spec-kit/crm-service/internal/observability"
	"github.com/spec-kit/crm-service/internal/persistence"
	"github.com/spec-kit/crm-service/internal/repository"
	"github.com/spec-kit/crm-service/internal/repository/repofake"
	"github.com/spec-kit/crm-service/internal/service"
)

// fakeLeadRepo is an in-memory LeadRepository for transport tests.
type fakeLeadRepo struct {
	mu    sync.RWMutex
	leads map[string]*domain.Lead
}

func newFakeLeadRepo() *fakeLeadRepo {
	return &fakeLeadRepo{leads: make(map[string]*domain.Lead)}
}

func (r *fakeLeadRepo) Create(_ context.Context, lead *domain.Lead) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	lead.ID = uuid.NewString()
	clone := *lead
	r.leads[lead.ID] = &clone
	return nil
}

func (r *fakeLeadRepo) GetByID(_ context.Context, id string) (*domain.Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	lead, ok := r.leads[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *lead
	return &clone, nil
}

func (r *fakeLeadRepo) ListByOwner(_ context.Context, ownerID string, _ repository.LeadFilter) ([]domain.Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Lead
	for _, lead := range r.leads {
		if lead.OwnerID == ownerID {
			result = append(result, *lead)
		}
	}
	return result, nil
}

type testEnv struct {
	app  *fiber.App
	repo *repofake.FakePrincipalRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := config.Config{
		App: config.AppConfig{Name: "crm-service-test", Version: "test"},
		Auth: config.AuthConfig{
			JWTSecret:             "test-secret",
			AccessTokenTTLMinutes: 60,
			BcryptCost:            bcrypt.MinCost,
		},
	}

	repo := repofake.NewFakePrincipalRepo()
	leadRepo := newFakeLeadRepo()

	authService := service.NewAuthService(cfg, repo)
	employeeService := service.NewEmployeeService(cfg, repo)
	leadService := service.NewLeadService(leadRepo)
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), repo)

	metrics := observability.NewMetrics(prometheus.NewRegistry())
	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), metrics, 0)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, &persistence.Postgres{}, &persistence.Redis{}),
		Auth:           handlers.NewAuthHandler(authService, metrics),
		Employees:      handlers.NewEmployeesHandler(employeeService),
		Leads:          handlers.NewLeadsHandler(leadService),
		AuthMiddleware: authMiddleware,
	})

	return &testEnv{app: app, repo: repo}
}

func (e *testEnv) createAccount(t *testing.T, email, password string, role domain.Role) *domain.Principal {
	t.Helper()

	hash, err := auth.HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)
	principal := &domain.Principal{
		DisplayName:  "Account " + email,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Active:       true,
	}
	require.NoError(t, e.repo.Create(context.Background(), principal))
	return principal
}

func (e *testEnv) request(t *testing.T, method, path, token string, body any) *nethttp.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, 5000)
	require.NoError(t, err)
	return resp
}

func (e *testEnv) login(t *testing.T, email, password string) string {
	t.Helper()

	resp := e.request(t, nethttp.MethodPost, "/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)

	var envelope struct {
		Data struct {
			Auth struct {
				Token string `json:"token"`
			} `json:"auth"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	require.NotEmpty(t, envelope.Data.Auth.Token)
	return envelope.Data.Auth.Token
}

func errorCode(t *testing.T, resp *nethttp.Response) string {
	t.Helper()

	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	return envelope.Error.Code
}

func TestLoginAndVerify(t *testing.T) {
	env := newTestEnv(t)
	created := env.createAccount(t, "alice@example.com", "pass-1234", domain.RoleEmployee)

	token := env.login(t, "alice@example.com", "pass-1234")

	resp := env.request(t, nethttp.MethodGet, "/auth/verify", token, nil)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)

	var envelope struct {
		Data struct {
			User struct {
				ID   string      `json:"id"`
				Role domain.Role `json:"role"`
			} `json:"user"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	require.Equal(t, created.ID, envelope.Data.User.ID)
	require.Equal(t, domain.RoleEmployee, envelope.Data.User.Role)
}

func TestLoginFailuresShareOneErrorShape(t *testing.T) {
	env := newTestEnv(t)
	env.createAccount(t, "alice@example.com", "pass-1234", domain.RoleEmployee)

	wrongPassword := env.request(t, nethttp.MethodPost, "/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "nope",
	})
	unknownEmail := env.request(t, nethttp.MethodPost, "/auth/login", "", map[string]string{
		"email": "ghost@example.com", "password": "nope",
	})

	require.Equal(t, nethttp.StatusUnauthorized, wrongPassword.StatusCode)
	require.Equal(t, nethttp.StatusUnauthorized, unknownEmail.StatusCode)
	require.Equal(t, errorCode(t, wrongPassword), errorCode(t, unknownEmail))
}

func TestProtectedRoutesRejectMissingOrBadTokens(t *testing.T) {
	env := newTestEnv(t)

	cases := []struct {
		name  string
		token string
	}{
		{"missing", ""},
		{"garbage", "not-a-jwt"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := env.request(t, nethttp.MethodGet, "/admin/employees", tc.token, nil)
			require.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)
			require.Equal(t, "UNAUTHENTICATED", errorCode(t, resp))
		})
	}
}

func TestRoleGateIsExactMatch(t *testing.T) {
	env := newTestEnv(t)
	env.createAccount(t, "admin@example.com", "pass-1234", domain.RoleAdmin)
	env.createAccount(t, "emp@example.com", "pass-1234", domain.RoleEmployee)

	adminToken := env.login(t, "admin@example.com", "pass-1234")
	employeeToken := env.login(t, "emp@example.com", "pass-1234")

	resp := env.request(t, nethttp.MethodGet, "/admin/employees", employeeToken, nil)
	require.Equal(t, nethttp.StatusForbidden, resp.StatusCode)
	require.Equal(t, "FORBIDDEN", errorCode(t, resp))

	resp = env.request(t, nethttp.MethodGet, "/admin/employees", adminToken, nil)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)

	// No hierarchy: the admin is locked out of the employee subtree too.
	resp = env.request(t, nethttp.MethodGet, "/employee/leads", adminToken, nil)
	require.Equal(t, nethttp.StatusForbidden, resp.StatusCode)
}

func TestRoleChangeAppliesToExistingToken(t *testing.T) {
	env := newTestEnv(t)
	env.createAccount(t, "admin@example.com", "pass-1234", domain.RoleAdmin)
	subject := env.createAccount(t, "emp@example.com", "pass-1234", domain.RoleEmployee)

	adminToken := env.login(t, "admin@example.com", "pass-1234")
	employeeToken := env.login(t, "emp@example.com", "pass-1234")

	resp := env.request(t, nethttp.MethodGet, "/admin/employees", employeeToken, nil)
	require.Equal(t, nethttp.StatusForbidden, resp.StatusCode)

	resp = env.request(t, nethttp.MethodPatch,
		fmt.Sprintf("/admin/employees/%s/role", subject.ID), adminToken,
		map[string]string{"role": string(domain.RoleAdmin)})
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)

	// Same token, new role: the gate re-reads the principal per request.
	resp = env.request(t, nethttp.MethodGet, "/admin/employees", employeeToken, nil)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
}

func TestDeletedPrincipalStopsAuthenticating(t *testing.T) {
	env := newTestEnv(t)
	created := env.createAccount(t, "alice@example.com", "pass-1234", domain.RoleEmployee)
	token := env.login(t, "alice@example.com", "pass-1234")

	env.repo.Delete(created.ID)

	resp := env.request(t, nethttp.MethodGet, "/auth/verify", token, nil)
	require.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "UNAUTHENTICATED", errorCode(t, resp))
}

func TestProvisionedAccountCanLogin(t *testing.T) {
	env := newTestEnv(t)
	env.createAccount(t, "admin@example.com", "pass-1234", domain.RoleAdmin)
	adminToken := env.login(t, "admin@example.com", "pass-1234")

	resp := env.request(t, nethttp.MethodPost, "/admin/employees", adminToken, map[string]string{
		"display_name": "New Hire",
		"email":        "Hire@Example.com",
		"password":     "hire-pass-1",
		"role":         string(domain.RoleEmployee),
	})
	require.Equal(t, nethttp.StatusCreated, resp.StatusCode)

	// Lookup is case-insensitive; the account was stored lowercase.
	token := env.login(t, "hire@example.com", "hire-pass-1")

	created := env.request(t, nethttp.MethodPost, "/employee/leads", token, map[string]string{
		"name":  "Big Corp",
		"phone": "+1-555-0100",
	})
	require.Equal(t, nethttp.StatusCreated, created.StatusCode)

	list := env.request(t, nethttp.MethodGet, "/employee/leads", token, nil)
	require.Equal(t, nethttp.StatusOK, list.StatusCode)

	var envelope struct {
		Data []struct {
			Name string `json:"name"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(list.Body).Decode(&envelope))
	require.Len(t, envelope.Data, 1)
	require.Equal(t, "Big Corp", envelope.Data[0].Name)
}
