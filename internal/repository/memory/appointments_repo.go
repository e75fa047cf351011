package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository"
)

type appointmentRepo struct {
	mu     sync.RWMutex
	lastID int64
	byID   map[int64]model.Appointment
}

func NewAppointmentRepository() repository.AppointmentRepository {
	return &appointmentRepo{byID: make(map[int64]model.Appointment)}
}

func (r *appointmentRepo) Create(ctx context.Context, a *model.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[a.ID]; a.ID > 0 && exists {
		return repository.ErrDuplicate
	}
	r.assignSeq(a)
	a.ID = nextID(&r.lastID, a.ID)
	r.byID[a.ID] = stripAppointment(a)
	return nil
}

// assignSeq must be called with r.mu held.
func (r *appointmentRepo) assignSeq(a *model.Appointment) {
	caseSeq := a.AppointmentType == model.AppointmentTypeFollowUp &&
		a.InitialAppointment != nil && a.CaseFollowupSeq == nil
	if a.TypeSeq != 0 && !caseSeq {
		return
	}

	typeN, caseN := 1, 1
	for _, existing := range r.byID {
		if existing.AppointmentType == a.AppointmentType {
			typeN++
		}
		if caseSeq && existing.InitialAppointment != nil && *existing.InitialAppointment == *a.InitialAppointment {
			caseN++
		}
	}
	if a.TypeSeq == 0 {
		a.TypeSeq = typeN
	}
	if caseSeq {
		a.CaseFollowupSeq = &caseN
	}
}

func (r *appointmentRepo) Get(ctx context.Context, id int64) (*model.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (r *appointmentRepo) Update(ctx context.Context, a *model.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[a.ID]; !exists {
		return repository.ErrNotFound
	}
	r.byID[a.ID] = stripAppointment(a)
	return nil
}

func (r *appointmentRepo) List(ctx context.Context, q repository.AppointmentQuery) ([]*model.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.Appointment, 0, len(r.byID))
	for _, a := range r.byID {
		if !matchAppointment(&a, q) {
			continue
		}
		a := a
		out = append(out, &a)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].AppointmentDate.Equal(out[j].AppointmentDate) {
			return out[i].ID < out[j].ID
		}
		return out[i].AppointmentDate.Before(out[j].AppointmentDate)
	})
	return out, nil
}

func (r *appointmentRepo) Count(ctx context.Context, q repository.AppointmentQuery) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, a := range r.byID {
		if matchAppointment(&a, q) {
			n++
		}
	}
	return n, nil
}

func matchAppointment(a *model.Appointment, q repository.AppointmentQuery) bool {
	if q.DoctorID != nil && a.DoctorID != *q.DoctorID {
		return false
	}
	if q.PatientID != nil && a.PatientID != *q.PatientID {
		return false
	}
	if q.InitialAppointmentID != nil && (a.InitialAppointment == nil || *a.InitialAppointment != *q.InitialAppointmentID) {
		return false
	}
	if q.Type != "" && a.AppointmentType != q.Type {
		return false
	}
	if q.Status != "" && a.Status != q.Status {
		return false
	}
	if q.Day != "" && model.Day(a.AppointmentDate) != q.Day {
		return false
	}
	return true
}

func stripAppointment(a *model.Appointment) model.Appointment {
	cp := *a
	cp.Patient = nil
	cp.Doctor = nil
	cp.Treatment = nil
	return cp
}
