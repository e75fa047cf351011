package session

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/hms-api/internal/model"
)

// MemoryStore keeps sessions in a go-cache instance with per-item expiry.
type MemoryStore struct {
	mu    sync.Mutex
	cache *cache.Cache
	now   func() time.Time
}

func NewMemoryStore(cleanupInterval time.Duration) *MemoryStore {
	if cleanupInterval <= 0 {
		cleanupInterval = 10 * time.Minute
	}
	return &MemoryStore{
		cache: cache.New(cache.NoExpiration, cleanupInterval),
		now:   time.Now,
	}
}

func (m *MemoryStore) ttl(s *model.Session) time.Duration {
	if s.ExpiresAt.IsZero() {
		return cache.NoExpiration
	}
	return s.ExpiresAt.Sub(m.now())
}

func (m *MemoryStore) Save(ctx context.Context, s *model.Session) error {
	ttl := m.ttl(s)
	if ttl != cache.NoExpiration && ttl <= 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if prev, ok := m.cache.Get(UserKey(s.User.ID)); ok {
		m.cache.Delete(TokenKey(prev.(string)))
	}

	cp := *s
	user := *s.User
	cp.User = &user
	m.cache.Set(TokenKey(s.Token), &cp, ttl)
	m.cache.Set(UserKey(s.User.ID), s.Token, ttl)
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, token string) (*model.Session, error) {
	v, ok := m.cache.Get(TokenKey(token))
	if !ok {
		return nil, ErrNotFound
	}
	s := *v.(*model.Session)
	user := *s.User
	s.User = &user
	return &s, nil
}

func (m *MemoryStore) Delete(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.cache.Get(TokenKey(token))
	m.cache.Delete(TokenKey(token))
	if !ok {
		return nil
	}
	userKey := UserKey(v.(*model.Session).User.ID)
	if current, ok := m.cache.Get(userKey); ok && current.(string) == token {
		m.cache.Delete(userKey)
	}
	return nil
}

func (m *MemoryStore) TokenForUser(ctx context.Context, userID int64) (string, error) {
	v, ok := m.cache.Get(UserKey(userID))
	if !ok {
		return "", ErrNotFound
	}
	return v.(string), nil
}

func (m *MemoryStore) Ping(ctx context.Context) error {
	return nil
}
