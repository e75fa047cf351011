package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository"
)

type treatmentRepo struct {
	mu     sync.RWMutex
	lastID int64
	byID   map[int64]model.Treatment
}

func NewTreatmentRepository() repository.TreatmentRepository {
	return &treatmentRepo{byID: make(map[int64]model.Treatment)}
}

func (r *treatmentRepo) Create(ctx context.Context, t *model.Treatment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[t.ID]; t.ID > 0 && exists {
		return repository.ErrDuplicate
	}
	t.ID = nextID(&r.lastID, t.ID)
	cp := *t
	cp.Patient, cp.Doctor = nil, nil
	r.byID[t.ID] = cp
	return nil
}

func (r *treatmentRepo) Get(ctx context.Context, id int64) (*model.Treatment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (r *treatmentRepo) List(ctx context.Context, q repository.TreatmentQuery) ([]*model.Treatment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.Treatment, 0, len(r.byID))
	for _, t := range r.byID {
		if q.DoctorID != nil && t.DoctorID != *q.DoctorID {
			continue
		}
		if q.PatientID != nil && t.PatientID != *q.PatientID {
			continue
		}
		t := t
		out = append(out, &t)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
