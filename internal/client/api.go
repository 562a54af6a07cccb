// Package client is the Go SDK for the CRM service: a thin HTTP API wrapper
// plus a session manager that keeps the shared session store consistent.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spec-kit/crm-service/internal/domain"
)

// Sentinel errors surfaced from server responses.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrForbidden          = errors.New("forbidden")
)

// API calls the CRM service over HTTP.
type API struct {
	baseURL string
	http    *http.Client
}

// NewAPI builds an API client.
func NewAPI(baseURL string, timeout time.Duration) *API {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &API{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

type userEnvelope struct {
	Data struct {
		User domain.Snapshot `json:"user"`
		Auth struct {
			Token     string    `json:"token"`
			ExpiresAt time.Time `json:"expires_at"`
		} `json:"auth"`
	} `json:"data"`
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Login authenticates and returns the principal snapshot plus the token.
func (a *API) Login(ctx context.Context, email, password string) (domain.Snapshot, string, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return domain.Snapshot{}, "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/auth/login", bytes.NewReader(body))
	if err != nil {
		return domain.Snapshot{}, "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.http.Do(req)
	if err != nil {
		return domain.Snapshot{}, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Snapshot{}, "", decodeError(resp)
	}

	var envelope userEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return domain.Snapshot{}, "", err
	}
	return envelope.Data.User, envelope.Data.Auth.Token, nil
}

// Verify resolves a token to the current principal snapshot. A 401 maps to
// ErrUnauthenticated so callers can drop the local session.
func (a *API) Verify(ctx context.Context, token string) (domain.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/auth/verify", nil)
	if err != nil {
		return domain.Snapshot{}, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := a.http.Do(req)
	if err != nil {
		return domain.Snapshot{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Snapshot{}, decodeError(resp)
	}

	var envelope userEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return domain.Snapshot{}, err
	}
	return envelope.Data.User, nil
}

func decodeError(resp *http.Response) error {
	var envelope errorEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	switch envelope.Error.Code {
	case "INVALID_CREDENTIALS":
		return ErrInvalidCredentials
	case "UNAUTHENTICATED":
		return ErrUnauthenticated
	case "FORBIDDEN":
		return ErrForbidden
	default:
		return fmt.Errorf("server error %s: %s", envelope.Error.Code, envelope.Error.Message)
	}
}
