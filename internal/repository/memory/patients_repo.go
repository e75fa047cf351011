package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository"
)

type patientRepo struct {
	mu     sync.RWMutex
	lastID int64
	byID   map[int64]model.Patient
}

func NewPatientRepository() repository.PatientRepository {
	return &patientRepo{byID: make(map[int64]model.Patient)}
}

func (r *patientRepo) Create(ctx context.Context, p *model.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[p.ID]; p.ID > 0 && exists {
		return repository.ErrDuplicate
	}
	if p.QueueNumber == 0 {
		day := model.Day(p.CreatedAt)
		highest := 0
		for _, existing := range r.byID {
			if model.Day(existing.CreatedAt) == day && existing.QueueNumber > highest {
				highest = existing.QueueNumber
			}
		}
		p.QueueNumber = highest + 1
	}
	p.ID = nextID(&r.lastID, p.ID)
	r.byID[p.ID] = stripPatient(p)
	return nil
}

func (r *patientRepo) Get(ctx context.Context, id int64) (*model.Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *patientRepo) Update(ctx context.Context, p *model.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[p.ID]; !exists {
		return repository.ErrNotFound
	}
	r.byID[p.ID] = stripPatient(p)
	return nil
}

func (r *patientRepo) List(ctx context.Context, filter model.PatientFilter) ([]*model.Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.Patient, 0, len(r.byID))
	for _, p := range r.byID {
		if filter.Day != "" && model.Day(p.CreatedAt) != filter.Day {
			continue
		}
		if filter.UnseenOnly && p.IsSeen {
			continue
		}
		if !p.Matches(filter.Search) {
			continue
		}
		p := p
		out = append(out, &p)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func stripPatient(p *model.Patient) model.Patient {
	cp := *p
	cp.AssignedDoctor = nil
	return cp
}
