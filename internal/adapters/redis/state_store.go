// Package redis provides Redis-backed adapters for userdesk.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/target/userdesk/internal/core"
	"github.com/target/userdesk/internal/domain/userlist"
)

// DefaultPrefix namespaces console state keys.
const DefaultPrefix = "userdesk:state:"

const scanBatch = 100

// StateStore persists console state as JSON with a sliding TTL.
type StateStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

var _ core.StateStore = (*StateStore)(nil)

// StateStoreOptions configures NewStateStore.
type StateStoreOptions struct {
	Client redis.UniversalClient
	Prefix string
	TTL    time.Duration
}

// NewStateStore creates a Redis state store.
func NewStateStore(opts StateStoreOptions) *StateStore {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &StateStore{client: opts.Client, prefix: prefix, ttl: ttl}
}

// Load returns the session's state, or a fresh state when the key is missing.
func (s *StateStore) Load(ctx context.Context, session string) (userlist.State, error) {
	if session == "" {
		return userlist.New(), nil
	}

	data, err := s.client.Get(ctx, s.prefix+session).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return userlist.New(), nil
		}
		return userlist.State{}, fmt.Errorf("redis get: %w", err)
	}

	var st userlist.State
	if err := json.Unmarshal(data, &st); err != nil {
		return userlist.State{}, fmt.Errorf("unmarshal state: %w", err)
	}
	st.Normalize()
	return st, nil
}

// Save writes st and resets the key's TTL.
func (s *StateStore) Save(ctx context.Context, session string, st userlist.State) error {
	if strings.TrimSpace(session) == "" {
		return errors.New("session id cannot be empty")
	}
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	if err := s.client.Set(ctx, s.prefix+session, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete removes the session's state.
func (s *StateStore) Delete(ctx context.Context, session string) error {
	if session == "" {
		return nil
	}
	if err := s.client.Del(ctx, s.prefix+session).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// List scans every state key. Keys that vanish mid-scan are skipped.
func (s *StateStore) List(ctx context.Context) ([]core.SessionInfo, error) {
	var (
		out    []core.SessionInfo
		cursor uint64
	)
	for {
		keys, next, err := s.client.Scan(ctx, cursor, s.prefix+"*", scanBatch).Result()
		if err != nil {
			return nil, fmt.Errorf("redis scan: %w", err)
		}
		for _, key := range keys {
			info, ok, err := s.describe(ctx, key)
			if err != nil {
				return nil, err
			}
			if ok {
				out = append(out, info)
			}
		}
		if next == 0 {
			break
		}
		cursor = next
	}

	slices.SortFunc(out, func(a, b core.SessionInfo) int { return strings.Compare(a.ID, b.ID) })
	return out, nil
}

func (s *StateStore) describe(ctx context.Context, key string) (core.SessionInfo, bool, error) {
	id := strings.TrimPrefix(key, s.prefix)
	st, err := s.Load(ctx, id)
	if err != nil {
		return core.SessionInfo{}, false, err
	}
	ttl, err := s.client.TTL(ctx, key).Result()
	if err != nil {
		return core.SessionInfo{}, false, fmt.Errorf("redis ttl: %w", err)
	}
	if ttl == -2 {
		return core.SessionInfo{}, false, nil
	}

	info := core.SessionInfo{ID: id, Users: st.Count(), Editing: st.Form.Editing()}
	if ttl > 0 {
		info.ExpiresAt = time.Now().Add(ttl)
	}
	return info, true, nil
}
