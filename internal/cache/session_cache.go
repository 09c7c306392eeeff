package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"frictionstudy/internal/model"
)

var (
	ErrSessionExists = errors.New("session already exists")
	ErrLocked        = errors.New("session is busy")
)

const lockTTL = 30 * time.Second

// SessionStore holds participant sessions between interactions.
// Get returns nil, nil for an unknown id.
type SessionStore interface {
	Create(ctx context.Context, session *model.Session) error
	Get(ctx context.Context, id string) (*model.Session, error)
	Save(ctx context.Context, session *model.Session) error
	// Lock claims the session for one interaction. It fails fast with
	// ErrLocked instead of waiting.
	Lock(ctx context.Context, id string) (unlock func(), err error)
}

type sessionCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionCache creates a redis-backed session store
func NewSessionCache(client *redis.Client, ttl time.Duration) SessionStore {
	return &sessionCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *sessionCache) sessionKey(id string) string {
	return fmt.Sprintf("study:session:%s", id)
}

func (c *sessionCache) lockKey(id string) string {
	return fmt.Sprintf("study:session:%s:lock", id)
}

// unlockScript deletes the lock only if we still own it
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func (c *sessionCache) Create(ctx context.Context, session *model.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	ok, err := c.client.SetNX(ctx, c.sessionKey(session.ID), data, c.ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrSessionExists
	}
	return nil
}

func (c *sessionCache) Get(ctx context.Context, id string) (*model.Session, error) {
	data, err := c.client.Get(ctx, c.sessionKey(id)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var session model.Session
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *sessionCache) Save(ctx context.Context, session *model.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.sessionKey(session.ID), data, c.ttl).Err()
}

func (c *sessionCache) Lock(ctx context.Context, id string) (func(), error) {
	token := uuid.NewString()
	ok, err := c.client.SetNX(ctx, c.lockKey(id), token, lockTTL).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLocked
	}
	key := c.lockKey(id)
	return func() {
		// the request context may already be cancelled
		unlockScript.Run(context.Background(), c.client, []string{key}, token)
	}, nil
}
