// Package views fills the embedded records (doctor, patient, treatment)
// that API responses carry alongside stored ids.
package views

import (
	"context"
	"errors"
	"fmt"

	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository"
)

type Loader struct {
	users      repository.UserRepository
	patients   repository.PatientRepository
	treatments repository.TreatmentRepository
}

func NewLoader(store repository.Store) *Loader {
	return &Loader{
		users:      store.Users,
		patients:   store.Patients,
		treatments: store.Treatments,
	}
}

// batch memoises lookups for a single response.
type batch struct {
	l        *Loader
	users    map[int64]*model.User
	patients map[int64]*model.Patient
}

func (l *Loader) batch() *batch {
	return &batch{l: l, users: map[int64]*model.User{}, patients: map[int64]*model.Patient{}}
}

func (b *batch) user(ctx context.Context, id int64) (*model.User, error) {
	if u, ok := b.users[id]; ok {
		return u, nil
	}
	u, err := b.l.users.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		b.users[id] = nil
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user %d: %w", id, err)
	}
	b.users[id] = u
	return u, nil
}

func (b *batch) patient(ctx context.Context, id int64) (*model.Patient, error) {
	if p, ok := b.patients[id]; ok {
		return p, nil
	}
	p, err := b.l.patients.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		b.patients[id] = nil
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load patient %d: %w", id, err)
	}
	if err := b.fillPatient(ctx, p); err != nil {
		return nil, err
	}
	b.patients[id] = p
	return p, nil
}

func (b *batch) fillPatient(ctx context.Context, p *model.Patient) error {
	if p.AssignedDoctorID == nil {
		p.AssignedDoctor = nil
		return nil
	}
	doc, err := b.user(ctx, *p.AssignedDoctorID)
	if err != nil {
		return err
	}
	p.AssignedDoctor = doc
	return nil
}

func (b *batch) fillTreatment(ctx context.Context, t *model.Treatment) error {
	var err error
	if t.Patient, err = b.patient(ctx, t.PatientID); err != nil {
		return err
	}
	t.Doctor, err = b.user(ctx, t.DoctorID)
	return err
}

func (b *batch) fillAppointment(ctx context.Context, a *model.Appointment) error {
	var err error
	if a.Patient, err = b.patient(ctx, a.PatientID); err != nil {
		return err
	}
	if a.Doctor, err = b.user(ctx, a.DoctorID); err != nil {
		return err
	}
	a.Treatment = nil
	if a.TreatmentID != nil {
		t, err := b.l.treatments.Get(ctx, *a.TreatmentID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("failed to load treatment %d: %w", *a.TreatmentID, err)
		}
		if t != nil {
			if err := b.fillTreatment(ctx, t); err != nil {
				return err
			}
			a.Treatment = t
		}
	}
	return nil
}

func (l *Loader) Patients(ctx context.Context, patients ...*model.Patient) error {
	b := l.batch()
	for _, p := range patients {
		if err := b.fillPatient(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func (l *Loader) Appointments(ctx context.Context, appointments ...*model.Appointment) error {
	b := l.batch()
	for _, a := range appointments {
		if err := b.fillAppointment(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

func (l *Loader) Treatments(ctx context.Context, treatments ...*model.Treatment) error {
	b := l.batch()
	for _, t := range treatments {
		if err := b.fillTreatment(ctx, t); err != nil {
			return err
		}
	}
	return nil
}
