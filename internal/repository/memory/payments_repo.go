package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository"
)

type paymentRepo struct {
	mu     sync.RWMutex
	lastID int64
	byID   map[int64]model.Payment
}

func NewPaymentRepository() repository.PaymentRepository {
	return &paymentRepo{byID: make(map[int64]model.Payment)}
}

func (r *paymentRepo) Create(ctx context.Context, p *model.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[p.ID]; p.ID > 0 && exists {
		return repository.ErrDuplicate
	}
	p.ID = nextID(&r.lastID, p.ID)
	r.byID[p.ID] = *p
	return nil
}

func (r *paymentRepo) Get(ctx context.Context, id int64) (*model.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *paymentRepo) Update(ctx context.Context, p *model.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[p.ID]; !exists {
		return repository.ErrNotFound
	}
	r.byID[p.ID] = *p
	return nil
}

func (r *paymentRepo) List(ctx context.Context, filter model.PaymentFilter) ([]*model.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.Payment, 0, len(r.byID))
	for _, p := range r.byID {
		if filter.PatientID != nil && p.PatientID != *filter.PatientID {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.Day != "" && model.Day(p.CreatedAt) != filter.Day {
			continue
		}
		p := p
		out = append(out, &p)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
