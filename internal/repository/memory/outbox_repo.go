package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository"
)

type outboxRepo struct {
	mu   sync.Mutex
	byID map[uuid.UUID]model.OutboxEvent
	now  func() time.Time
}

func NewOutboxRepository() repository.OutboxRepository {
	return &outboxRepo{
		byID: make(map[uuid.UUID]model.OutboxEvent),
		now:  time.Now,
	}
}

func (r *outboxRepo) Create(ctx context.Context, e *model.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = r.now()
	}
	if e.Status == "" {
		e.Status = model.OutboxStatusPending
	}
	r.byID[e.ID] = *e
	return nil
}

func (r *outboxRepo) GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*model.OutboxEvent, 0)
	for _, e := range r.byID {
		if e.Status != model.OutboxStatusPending {
			continue
		}
		e := e
		out = append(out, &e)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *outboxRepo) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	now := r.now()
	e.Status = model.OutboxStatusProcessed
	e.Attempts++
	e.LastError = nil
	e.ProcessedAt = &now
	r.byID[id] = e
	return nil
}

func (r *outboxRepo) MarkFailed(ctx context.Context, id uuid.UUID, reason string, final bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	e.Attempts++
	e.LastError = &reason
	if final {
		e.Status = model.OutboxStatusFailed
	}
	r.byID[id] = e
	return nil
}

func (r *outboxRepo) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, e := range r.byID {
		if e.Status == model.OutboxStatusProcessed && e.ProcessedAt != nil && e.ProcessedAt.Before(before) {
			delete(r.byID, id)
			n++
		}
	}
	return n, nil
}
