package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"totem-quiz-bot/internal/domain"
)

// SessionStore keeps session contexts in Redis as JSON so any instance can
// serve the next update of a user. A zero ttl keeps entries until they are
// deleted, so a pending side-flow never times out.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func (s *SessionStore) Load(ctx context.Context, key domain.SessionKey) (domain.SessionContext, error) {
	raw, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.SessionContext{Key: key}, nil
	}
	if err != nil {
		return domain.SessionContext{}, fmt.Errorf("%w: load session %s: %w", domain.ErrStorage, key, err)
	}
	var sc domain.SessionContext
	if err := json.Unmarshal(raw, &sc); err != nil {
		return domain.SessionContext{}, fmt.Errorf("%w: decode session %s: %w", domain.ErrStorage, key, err)
	}
	sc.Key = key
	return sc, nil
}

func (s *SessionStore) Save(ctx context.Context, sc domain.SessionContext) error {
	raw, err := json.Marshal(sc)
	if err != nil {
		return fmt.Errorf("%w: encode session %s: %w", domain.ErrStorage, sc.Key, err)
	}
	if err := s.client.Set(ctx, s.key(sc.Key), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: save session %s: %w", domain.ErrStorage, sc.Key, err)
	}
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, key domain.SessionKey) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("%w: delete session %s: %w", domain.ErrStorage, key, err)
	}
	return nil
}

func (s *SessionStore) key(key domain.SessionKey) string {
	return "totem:session:" + key.String()
}
