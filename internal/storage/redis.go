package storage

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOptions configures the Redis session store.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	// TTL bounds how long session keys live. It should exceed the
	// submission window so late submissions still see the session.
	TTL time.Duration
}

// RedisSessions stores sessions as Redis hashes:
//
//	session:{id} -> Hash{seed, created_at, completed}
//
// Keys expire on their own, so PurgeSessions has nothing to do.
type RedisSessions struct {
	client *redis.Client
	ttl    time.Duration
}

var _ SessionStore = (*RedisSessions)(nil)

// completeScript flips completed only if it is still "0".
// Returns -1 for a missing key, 0 if already completed, 1 on success.
var completeScript = redis.NewScript(`
local v = redis.call('HGET', KEYS[1], 'completed')
if not v then
	return -1
end
if v == '1' then
	return 0
end
redis.call('HSET', KEYS[1], 'completed', '1')
return 1
`)

// NewRedisSessions connects to Redis and verifies the connection.
func NewRedisSessions(ctx context.Context, opts RedisOptions) (*RedisSessions, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("storage: cannot connect to redis at %s: %w", opts.Addr, err)
	}

	return &RedisSessions{client: client, ttl: opts.TTL}, nil
}

func sessionKey(id string) string {
	return "session:" + id
}

// Close closes the Redis connection.
func (r *RedisSessions) Close() error {
	return r.client.Close()
}

// CreateSession writes the session hash and its TTL in one transaction.
func (r *RedisSessions) CreateSession(ctx context.Context, s Session) error {
	key := sessionKey(s.ID)
	completed := "0"
	if s.Completed {
		completed = "1"
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key,
			"seed", s.Seed,
			"created_at", s.CreatedAt.UnixMilli(),
			"completed", completed,
		)
		if r.ttl > 0 {
			pipe.Expire(ctx, key, r.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("storage: cannot create session: %w", err)
	}
	return nil
}

// Session loads a session by id.
func (r *RedisSessions) Session(ctx context.Context, id string) (Session, error) {
	fields, err := r.client.HGetAll(ctx, sessionKey(id)).Result()
	if err != nil {
		return Session{}, fmt.Errorf("storage: cannot get session: %w", err)
	}
	if len(fields) == 0 {
		return Session{}, ErrSessionNotFound
	}

	seed, err := strconv.ParseInt(fields["seed"], 10, 64)
	if err != nil {
		return Session{}, fmt.Errorf("storage: corrupt session %s seed: %w", id, err)
	}
	createdAt, err := strconv.ParseInt(fields["created_at"], 10, 64)
	if err != nil {
		return Session{}, fmt.Errorf("storage: corrupt session %s created_at: %w", id, err)
	}

	return Session{
		ID:        id,
		Seed:      seed,
		CreatedAt: time.UnixMilli(createdAt),
		Completed: fields["completed"] == "1",
	}, nil
}

// MarkCompleted runs the compare-and-set script.
func (r *RedisSessions) MarkCompleted(ctx context.Context, id string) error {
	res, err := completeScript.Run(ctx, r.client, []string{sessionKey(id)}).Int()
	if err != nil {
		return fmt.Errorf("storage: cannot complete session: %w", err)
	}

	switch res {
	case 1:
		return nil
	case 0:
		return ErrAlreadyCompleted
	default:
		return ErrSessionNotFound
	}
}

// PurgeSessions is a no-op; Redis expires session keys itself.
func (r *RedisSessions) PurgeSessions(context.Context, time.Time) (int64, error) {
	return 0, nil
}
