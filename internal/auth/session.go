// Package auth handles staff sign-in and cookie sessions.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	SessionCookie = "session"
	DefaultTTL    = 14 * 24 * time.Hour
)

var ErrNoSession = errors.New("session not found")

const defaultAfterLogout = "/"

// StartSession opens a session for userID and sets its cookie on w.
func StartSession(ctx context.Context, w http.ResponseWriter, store SessionStore, userID string, secure bool) error {
	sessionID, err := store.Create(ctx, userID)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Logout deletes the caller's session, clears the cookie and redirects home.
func Logout(store SessionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(SessionCookie); err == nil {
			if err := store.Delete(r.Context(), cookie.Value); err != nil {
				slog.Warn("delete session failed", slog.Any("error", err))
			}
			http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "", Path: "/", MaxAge: -1})
		}
		http.Redirect(w, r, defaultAfterLogout, http.StatusSeeOther)
	}
}

// SessionStore maps opaque session IDs to user IDs.
type SessionStore interface {
	Create(ctx context.Context, userID string) (string, error)
	Get(ctx context.Context, sessionID string) (string, error)
	Delete(ctx context.Context, sessionID string) error
}

type memorySession struct {
	userID    string
	expiresAt time.Time
}

// MemoryStore keeps sessions in process memory.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]memorySession
	ttl      time.Duration
	now      func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{sessions: make(map[string]memorySession), ttl: ttl, now: time.Now}
}

func (m *MemoryStore) Create(_ context.Context, userID string) (string, error) {
	id := uuid.NewString()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = memorySession{userID: userID, expiresAt: m.now().Add(m.ttl)}
	return id, nil
}

func (m *MemoryStore) Get(_ context.Context, sessionID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return "", ErrNoSession
	}
	if !m.now().Before(s.expiresAt) {
		delete(m.sessions, sessionID)
		return "", ErrNoSession
	}
	return s.userID, nil
}

func (m *MemoryStore) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	return nil
}

// RedisStore keeps sessions in Redis with a TTL per key.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore connects to redisURL and pings it before returning.
func NewRedisStore(ctx context.Context, redisURL string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}
	return NewRedisStoreFromClient(rdb, ttl), nil
}

func NewRedisStoreFromClient(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func sessionKey(id string) string { return "session:" + id }

func (r *RedisStore) Create(ctx context.Context, userID string) (string, error) {
	id := uuid.NewString()
	if err := r.rdb.Set(ctx, sessionKey(id), userID, r.ttl).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return id, nil
}

func (r *RedisStore) Get(ctx context.Context, sessionID string) (string, error) {
	userID, err := r.rdb.Get(ctx, sessionKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNoSession
	}
	if err != nil {
		return "", fmt.Errorf("load session: %w", err)
	}
	return userID, nil
}

func (r *RedisStore) Delete(ctx context.Context, sessionID string) error {
	return r.rdb.Del(ctx, sessionKey(sessionID)).Err()
}

func (r *RedisStore) Close() error { return r.rdb.Close() }
