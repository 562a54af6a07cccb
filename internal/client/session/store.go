// Package session is the client-side session store shared by every CRM
// client process on a workstation. The token and the principal snapshot live
// under two co-located Redis keys that are always written and deleted inside
// one MULTI/EXEC pipeline, so no reader ever observes a token without its
// snapshot or vice versa. Writes publish a change notification that other
// processes pick up without polling.
package session

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/crm-service/internal/domain"
)

const (
	tokenKeySuffix     = ":token"
	principalKeySuffix = ":principal"
	channelSuffix      = ":changes"
)

// Session is the persisted client state: a token and the principal snapshot
// it was issued for.
type Session struct {
	Token     string          `json:"token"`
	Principal domain.Snapshot `json:"principal"`
}

// Store reads and writes the shared session.
type Store struct {
	rdb    *redis.Client
	prefix string
}

// NewStore builds a store rooted at the given key prefix.
func NewStore(rdb *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = "crm:session"
	}
	return &Store{rdb: rdb, prefix: prefix}
}

func (s *Store) tokenKey() string     { return s.prefix + tokenKeySuffix }
func (s *Store) principalKey() string { return s.prefix + principalKeySuffix }
func (s *Store) channel() string      { return s.prefix + channelSuffix }

// Set persists the token and principal snapshot together. Concurrent writers
// race with last-write-wins semantics; there is no merge.
func (s *Store) Set(ctx context.Context, principal domain.Snapshot, token string) error {
	payload, err := json.Marshal(principal)
	if err != nil {
		return err
	}

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, s.tokenKey(), token, 0)
	pipe.Set(ctx, s.principalKey(), payload, 0)
	pipe.Publish(ctx, s.channel(), string(ChangeSet))
	_, err = pipe.Exec(ctx)
	return err
}

// Get returns the current session, or nil when nobody is logged in. A
// half-present pair (a foreign writer bypassing the store) reads as empty:
// the store fails closed rather than hand out a token without its snapshot.
func (s *Store) Get(ctx context.Context) (*Session, error) {
	values, err := s.rdb.MGet(ctx, s.tokenKey(), s.principalKey()).Result()
	if err != nil {
		return nil, err
	}

	token, tokenOK := values[0].(string)
	payload, payloadOK := values[1].(string)
	if !tokenOK || !payloadOK || token == "" {
		return nil, nil
	}

	var principal domain.Snapshot
	if err := json.Unmarshal([]byte(payload), &principal); err != nil {
		return nil, nil
	}
	return &Session{Token: token, Principal: principal}, nil
}

// Clear removes both keys together and notifies watchers. Clearing an
// already-empty session is a no-op, so concurrent logouts are idempotent.
func (s *Store) Clear(ctx context.Context) error {
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, s.tokenKey(), s.principalKey())
	pipe.Publish(ctx, s.channel(), string(ChangeClear))
	_, err := pipe.Exec(ctx)
	return err
}

// Watch subscribes to session changes published by any process sharing this
// prefix. The returned cancel func closes the subscription and the channel.
func (s *Store) Watch(ctx context.Context) (<-chan Change, func(), error) {
	sub := s.rdb.Subscribe(ctx, s.channel())
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, err
	}

	out := make(chan Change, 8)
	go func() {
		defer close(out)
		for msg := range sub.Channel() {
			change := Change{Kind: ChangeKind(msg.Payload)}
			select {
			case out <- change:
			case <-ctx.Done():
				return
			}
		}
	}()

	cancel := func() { _ = sub.Close() }
	return out, cancel, nil
}
