package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/walletkit/walletkit/core"
	"github.com/walletkit/walletkit/ports"
)

const (
	sessionKey = "session"
	stateKey   = "handshake_state"

	// Correlation state outlives a single handshake attempt only by a
	// small margin; abandoned attempts expire on their own.
	stateTTL = 10 * time.Minute
)

// RedisStore is a Redis implementation of the session and state stores.
type RedisStore struct {
	client *redis.Client
	prefix string
}

var (
	_ ports.SessionStore = (*RedisStore)(nil)
	_ ports.StateStore   = (*RedisStore)(nil)
)

// NewRedisStore creates a new Redis store. The prefix namespaces keys so
// multiple SDK instances can share one Redis.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "walletkit:"
	}
	return &RedisStore{client: client, prefix: prefix}
}

// SaveSession stores the JSON-encoded session record with a TTL matching its
// expiry, so Redis reclaims dead sessions on its own.
func (s *RedisStore) SaveSession(ctx context.Context, session core.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		ttl = time.Minute
	}

	if err := s.client.Set(ctx, s.prefix+sessionKey, payload, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", core.ErrStoreOperationFailed, err)
	}
	return nil
}

// LoadSession returns the stored session. A missing or malformed record is
// reported as absent; a malformed record is also deleted.
func (s *RedisStore) LoadSession(ctx context.Context) (core.Session, bool, error) {
	payload, err := s.client.Get(ctx, s.prefix+sessionKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return core.Session{}, false, nil
		}
		return core.Session{}, false, fmt.Errorf("%w: %v", core.ErrStoreOperationFailed, err)
	}

	var session core.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		s.client.Del(ctx, s.prefix+sessionKey)
		return core.Session{}, false, nil
	}
	return session, true, nil
}

// ClearSession removes the session record.
func (s *RedisStore) ClearSession(ctx context.Context) error {
	if err := s.client.Del(ctx, s.prefix+sessionKey).Err(); err != nil {
		return fmt.Errorf("%w: %v", core.ErrStoreOperationFailed, err)
	}
	return nil
}

// SaveState stores the correlation state with a short TTL.
func (s *RedisStore) SaveState(ctx context.Context, state core.CorrelationState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode correlation state: %w", err)
	}
	if err := s.client.Set(ctx, s.prefix+stateKey, payload, stateTTL).Err(); err != nil {
		return fmt.Errorf("%w: %v", core.ErrStoreOperationFailed, err)
	}
	return nil
}

// LoadState returns the stored correlation state, if any.
func (s *RedisStore) LoadState(ctx context.Context) (core.CorrelationState, bool, error) {
	payload, err := s.client.Get(ctx, s.prefix+stateKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return core.CorrelationState{}, false, nil
		}
		return core.CorrelationState{}, false, fmt.Errorf("%w: %v", core.ErrStoreOperationFailed, err)
	}

	var state core.CorrelationState
	if err := json.Unmarshal(payload, &state); err != nil {
		s.client.Del(ctx, s.prefix+stateKey)
		return core.CorrelationState{}, false, nil
	}
	return state, true, nil
}

// ClearState removes the correlation state.
func (s *RedisStore) ClearState(ctx context.Context) error {
	if err := s.client.Del(ctx, s.prefix+stateKey).Err(); err != nil {
		return fmt.Errorf("%w: %v", core.ErrStoreOperationFailed, err)
	}
	return nil
}
