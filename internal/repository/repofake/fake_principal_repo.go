package repofake

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/crm-service/internal/domain"
	"github.com/spec-kit/crm-service/internal/repository"
)

var _ repository.PrincipalRepository = (*FakePrincipalRepo)(nil)

// FakePrincipalRepo is an in-memory PrincipalRepository for tests. It mirrors
// the Postgres implementation's contract, including pgx.ErrNoRows on misses
// and lowercase email storage.
type FakePrincipalRepo struct {
	mu         sync.RWMutex
	principals map[string]*domain.Principal
	emailIDs   map[string]string
}

func NewFakePrincipalRepo() *FakePrincipalRepo {
	return &FakePrincipalRepo{
		principals: make(map[string]*domain.Principal),
		emailIDs:   make(map[string]string),
	}
}

func (r *FakePrincipalRepo) Create(_ context.Context, principal *domain.Principal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if principal.ID == "" {
		principal.ID = uuid.NewString()
	}
	principal.Email = strings.ToLower(principal.Email)
	clone := *principal
	r.principals[principal.ID] = &clone
	r.emailIDs[principal.Email] = principal.ID
	return nil
}

func (r *FakePrincipalRepo) Update(_ context.Context, principal *domain.Principal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.principals[principal.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	delete(r.emailIDs, stored.Email)
	principal.Email = strings.ToLower(principal.Email)
	clone := *principal
	r.principals[principal.ID] = &clone
	r.emailIDs[principal.Email] = principal.ID
	return nil
}

func (r *FakePrincipalRepo) GetByID(_ context.Context, id string) (*domain.Principal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.principals[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *stored
	return &clone, nil
}

func (r *FakePrincipalRepo) GetByEmail(_ context.Context, email string) (*domain.Principal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.emailIDs[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *r.principals[id]
	return &clone, nil
}

func (r *FakePrincipalRepo) List(_ context.Context, filter repository.PrincipalFilter) ([]domain.Principal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []domain.Principal
	for _, p := range r.principals {
		if filter.Role != nil && p.Role != *filter.Role {
			continue
		}
		if filter.Active != nil && p.Active != *filter.Active {
			continue
		}
		result = append(result, *p)
	}
	return result, nil
}

// Delete removes a principal; used to simulate accounts vanishing mid-session.
func (r *FakePrincipalRepo) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if stored, ok := r.principals[id]; ok {
		delete(r.emailIDs, stored.Email)
		delete(r.principals, id)
	}
}
