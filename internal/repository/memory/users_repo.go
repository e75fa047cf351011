package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository"
)

type userRepo struct {
	mu     sync.RWMutex
	lastID int64
	byID   map[int64]model.User
}

func NewUserRepository() repository.UserRepository {
	return &userRepo{byID: make(map[int64]model.User)}
}

func (r *userRepo) Create(ctx context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[u.ID]; u.ID > 0 && exists {
		return repository.ErrDuplicate
	}
	for _, existing := range r.byID {
		if strings.EqualFold(existing.Username, u.Username) {
			return repository.ErrDuplicate
		}
	}
	u.ID = nextID(&r.lastID, u.ID)
	r.byID[u.ID] = *u
	return nil
}

func (r *userRepo) Get(ctx context.Context, id int64) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.byID {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userRepo) Update(ctx context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[u.ID]; !exists {
		return repository.ErrNotFound
	}
	r.byID[u.ID] = *u
	return nil
}

func (r *userRepo) List(ctx context.Context, filter model.UserFilter) ([]*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	q := strings.ToLower(strings.TrimSpace(filter.Search))
	out := make([]*model.User, 0, len(r.byID))
	for _, u := range r.byID {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if filter.ActiveOnly && !u.IsActive {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(u.FullName()), q) &&
			!strings.Contains(strings.ToLower(u.Username), q) {
			continue
		}
		u := u
		out = append(out, &u)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
