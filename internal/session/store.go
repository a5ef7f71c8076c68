package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store persists sessions between requests, keyed by username.
type Store interface {
	Save(ctx context.Context, s Session) error
	Get(ctx context.Context, username string) (Session, bool)
	Delete(ctx context.Context, username string) error
	Close() error
}

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	TTL      time.Duration
}

func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Host: "localhost",
		Port: "6379",
		TTL:  30 * time.Minute,
	}
}

func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Host + ":" + cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisStore{client: client, ttl: cfg.TTL}, nil
}

func (s *RedisStore) Save(ctx context.Context, sess Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}

	// A token-level expiry overrides the configured TTL so the stored
	// session never outlives its token.
	ttl := s.ttl
	if t := sess.TTL(time.Now()); t > 0 && t < ttl {
		ttl = t
	}
	return s.client.Set(ctx, sessionKey(sess.Username), data, ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, username string) (Session, bool) {
	data, err := s.client.Get(ctx, sessionKey(username)).Bytes()
	if err != nil {
		return Session{}, false
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return Session{}, false
	}
	return sess, true
}

func (s *RedisStore) Delete(ctx context.Context, username string) error {
	return s.client.Del(ctx, sessionKey(username)).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func sessionKey(username string) string {
	return "session:" + username
}

// MemoryStore keeps sessions in process memory; the fallback when Redis is
// not configured.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]Session)}
}

func (s *MemoryStore) Save(ctx context.Context, sess Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.Username] = sess
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, username string) (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[username]
	if !ok || !sess.Valid(time.Now()) {
		return Session{}, false
	}
	return sess, true
}

func (s *MemoryStore) Delete(ctx context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, username)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
