package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"fairplayServer/config"
	"fairplayServer/game"
	"fairplayServer/state"

	"github.com/redis/go-redis/v9"
)

// InitRedis connects to Redis and checks the connection.
func InitRedis(cfg *config.Config) (*redis.Client, error) {
	log.Println("🔌 Connecting to Redis...")

	addr := cfg.RedisURL
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Printf("✅ Redis connected successfully - URL: %s", addr)
	return client, nil
}

/* =========================
   SESSION STORE
   Redis Key: session:{userAddress} -> JSON Session
========================= */

// RedisSessionStore keeps sessions as JSON strings. Writers in this process
// are serialized by a local lock; writers in other processes are caught by
// WATCH and retried.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
	locks  *state.KeyedMutex
}

// NewRedisSessionStore refreshes ttl on every write. Zero disables expiry.
func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{
		client: client,
		ttl:    ttl,
		locks:  state.NewKeyedMutex(),
	}
}

func sessionKey(user string) string {
	return fmt.Sprintf(config.RedisSessionKey, user)
}

func decodeSession(user, data string) (state.Session, error) {
	var s state.Session
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return state.Session{}, fmt.Errorf("%w: corrupt session for %s: %v", game.ErrInternal, user, err)
	}
	return s, nil
}

func (r *RedisSessionStore) Get(ctx context.Context, user string) (state.Session, error) {
	return r.get(ctx, r.client, user)
}

// getter is satisfied by both the client and a watched transaction.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (r *RedisSessionStore) get(ctx context.Context, c getter, user string) (state.Session, error) {
	data, err := c.Get(ctx, sessionKey(user)).Result()
	if err == redis.Nil {
		return state.Session{}, fmt.Errorf("%w: %s", game.ErrSessionNotFound, user)
	}
	if err != nil {
		return state.Session{}, fmt.Errorf("%w: failed to get session: %v", game.ErrInternal, err)
	}
	return decodeSession(user, data)
}

func (r *RedisSessionStore) GetOrCreate(ctx context.Context, user string, create func() (state.Session, error)) (state.Session, bool, error) {
	unlock := r.locks.Lock(user)
	defer unlock()

	s, err := r.Get(ctx, user)
	if err == nil {
		return s, false, nil
	}
	if !errors.Is(err, game.ErrSessionNotFound) {
		return state.Session{}, false, err
	}

	s, err = create()
	if err != nil {
		return state.Session{}, false, err
	}
	data, err := json.Marshal(s)
	if err != nil {
		return state.Session{}, false, fmt.Errorf("%w: failed to marshal session: %v", game.ErrInternal, err)
	}

	created, err := r.client.SetNX(ctx, sessionKey(user), data, r.ttl).Result()
	if err != nil {
		return state.Session{}, false, fmt.Errorf("%w: failed to store session: %v", game.ErrInternal, err)
	}
	if !created {
		// Another instance got there first.
		existing, err := r.Get(ctx, user)
		return existing, false, err
	}
	return s, true, nil
}

func (r *RedisSessionStore) Replace(ctx context.Context, user string, s state.Session) (*state.Session, error) {
	unlock := r.locks.Lock(user)
	defer unlock()

	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to marshal session: %v", game.ErrInternal, err)
	}

	old, err := r.client.SetArgs(ctx, sessionKey(user), data, redis.SetArgs{Get: true, TTL: r.ttl}).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to store session: %v", game.ErrInternal, err)
	}

	previous, err := decodeSession(user, old)
	if err != nil {
		log.Printf("⚠️  Replaced unreadable session for %s: %v", user, err)
		return nil, nil
	}
	return &previous, nil
}

// AtomicUpdate runs fn inside a WATCH on the session key. fn may run more
// than once if another process writes the key in between.
func (r *RedisSessionStore) AtomicUpdate(ctx context.Context, user string, fn state.UpdateFunc) (state.Session, error) {
	unlock := r.locks.Lock(user)
	defer unlock()

	key := sessionKey(user)
	var committed state.Session

	txf := func(tx *redis.Tx) error {
		current, err := r.get(ctx, tx, user)
		if err != nil {
			return err
		}
		next, err := fn(current)
		if err != nil {
			return err
		}
		if err := state.CheckTransition(current, next); err != nil {
			return err
		}
		data, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("%w: failed to marshal session: %v", game.ErrInternal, err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, r.ttl)
			return nil
		})
		if err == nil {
			committed = next
		}
		return err
	}

	for attempt := 0; attempt < config.RedisMaxTxRetries; attempt++ {
		err := r.client.Watch(ctx, txf, key)
		if err == nil {
			return committed, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			log.Printf("🔁 Session %s changed during update, retrying (%d)", user, attempt+1)
			continue
		}
		return state.Session{}, err
	}

	return state.Session{}, fmt.Errorf("%w: session %s kept changing during update", game.ErrInternal, user)
}

/* =========================
   HEALTH CHECK
========================= */

// HealthCheck performs a Redis health check
func (r *RedisSessionStore) HealthCheck(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

var _ state.SessionStore = (*RedisSessionStore)(nil)
