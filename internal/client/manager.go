package client

import (
	"context"
	"errors"

	"github.com/spec-kit/crm-service/internal/client/guard"
	"github.com/spec-kit/crm-service/internal/client/session"
	"github.com/spec-kit/crm-service/internal/domain"
)

// Manager combines the API client with the shared session store. It is the
// single owner of session writes on the client side; UI shells consume it
// instead of touching the store or the API directly.
type Manager struct {
	api   *API
	store *session.Store
}

// NewManager builds a manager.
func NewManager(api *API, store *session.Store) *Manager {
	return &Manager{api: api, store: store}
}

// Login authenticates against the server and persists the resulting session
// atomically. A failed login leaves the store untouched.
func (m *Manager) Login(ctx context.Context, email, password string) (domain.Snapshot, error) {
	snapshot, token, err := m.api.Login(ctx, email, password)
	if err != nil {
		return domain.Snapshot{}, err
	}
	if err := m.store.Set(ctx, snapshot, token); err != nil {
		return domain.Snapshot{}, err
	}
	return snapshot, nil
}

// Logout discards the local session. There is no server-side revocation; the
// token simply ages out.
func (m *Manager) Logout(ctx context.Context) error {
	return m.store.Clear(ctx)
}

// Resolve reads the stored session and reports the guard's view of it. Any
// store error reads as no session: the client fails closed.
func (m *Manager) Resolve(ctx context.Context) (guard.SessionView, *session.Session) {
	sess, err := m.store.Get(ctx)
	if err != nil || sess == nil {
		return guard.SessionView{State: guard.StateUnauthenticated}, nil
	}
	return guard.SessionView{State: guard.StateAuthenticated, Role: sess.Principal.Role}, sess
}

// Whoami re-validates the stored token against the server and returns the
// live principal snapshot. A rejected token clears the stored session.
func (m *Manager) Whoami(ctx context.Context) (domain.Snapshot, error) {
	sess, err := m.store.Get(ctx)
	if err != nil {
		return domain.Snapshot{}, err
	}
	if sess == nil {
		return domain.Snapshot{}, ErrUnauthenticated
	}

	snapshot, err := m.api.Verify(ctx, sess.Token)
	if err != nil {
		if errors.Is(err, ErrUnauthenticated) {
			_ = m.store.Clear(ctx)
		}
		return domain.Snapshot{}, err
	}
	return snapshot, nil
}
