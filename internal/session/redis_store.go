package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix = "nestegg:session:"
	sidLocalsKey   = "nestegg.session.id"
)

type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// RedisStore keeps session data server-side; the cookie only carries an
// opaque session id.
type RedisStore struct {
	client redisClient
	cookie CookieOptions
	newID  func() string
	now    func() time.Time
}

// NewRedisStore returns a store backed by client.
func NewRedisStore(client redis.UniversalClient, cookie CookieOptions) *RedisStore {
	return &RedisStore{
		client: client,
		cookie: cookie,
		newID:  uuid.NewString,
		now:    time.Now,
	}
}

// DialRedis connects to addr and verifies it with a ping.
func DialRedis(ctx context.Context, addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// Load fetches the session referenced by the cookie. Expired or unknown ids
// count as no session.
func (s *RedisStore) Load(c fiber.Ctx) (*Data, error) {
	sid := c.Cookies(s.cookie.name())
	if sid == "" {
		return nil, nil
	}
	if _, err := uuid.Parse(sid); err != nil {
		return nil, fmt.Errorf("%w: malformed session id", ErrInvalid)
	}

	raw, err := s.client.Get(c.Context(), redisKeyPrefix+sid).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var data Data
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	c.Locals(sidLocalsKey, sid)
	return &data, nil
}

// Save writes the session with a sliding expiry and refreshes the cookie.
func (s *RedisStore) Save(c fiber.Ctx, data *Data) error {
	sid, _ := c.Locals(sidLocalsKey).(string)
	if sid == "" {
		sid = s.newID()
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(c.Context(), redisKeyPrefix+sid, raw, s.cookie.ttl()).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	s.cookie.write(c, sid, s.now())
	return nil
}
