package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/hms-api/internal/model"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// AppointmentQuery narrows an appointment listing on stored columns.
type AppointmentQuery struct {
	DoctorID             *int64
	PatientID            *int64
	InitialAppointmentID *int64
	Type                 model.AppointmentType
	Status               model.AppointmentStatus
	Day                  string
}

// TreatmentQuery narrows a treatment listing.
type TreatmentQuery struct {
	DoctorID  *int64
	PatientID *int64
}

// All repository interfaces in one file
type (
	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id int64) (*model.User, error)
		GetByUsername(ctx context.Context, username string) (*model.User, error)
		Update(ctx context.Context, user *model.User) error
		List(ctx context.Context, filter model.UserFilter) ([]*model.User, error)
	}

	// PatientRepository assigns the queue number on Create when the patient
	// has none: one more than the highest number issued that day.
	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id int64) (*model.Patient, error)
		Update(ctx context.Context, patient *model.Patient) error
		List(ctx context.Context, filter model.PatientFilter) ([]*model.Patient, error)
	}

	// AppointmentRepository numbers appointments on Create. A zero TypeSeq
	// becomes one more than the count of that type, and a follow-up with no
	// CaseFollowupSeq gets one more than the follow-ups already in its case.
	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id int64) (*model.Appointment, error)
		Update(ctx context.Context, appointment *model.Appointment) error
		List(ctx context.Context, query AppointmentQuery) ([]*model.Appointment, error)
		Count(ctx context.Context, query AppointmentQuery) (int, error)
	}

	TreatmentRepository interface {
		Create(ctx context.Context, treatment *model.Treatment) error
		Get(ctx context.Context, id int64) (*model.Treatment, error)
		List(ctx context.Context, query TreatmentQuery) ([]*model.Treatment, error)
	}

	PaymentRepository interface {
		Create(ctx context.Context, payment *model.Payment) error
		Get(ctx context.Context, id int64) (*model.Payment, error)
		Update(ctx context.Context, payment *model.Payment) error
		List(ctx context.Context, filter model.PaymentFilter) ([]*model.Payment, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		MarkProcessed(ctx context.Context, id uuid.UUID) error
		// MarkFailed records an attempt. The event stays pending unless final.
		MarkFailed(ctx context.Context, id uuid.UUID, reason string, final bool) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)

// Store groups the repositories behind one backend.
type Store struct {
	Users        UserRepository
	Patients     PatientRepository
	Appointments AppointmentRepository
	Treatments   TreatmentRepository
	Payments     PaymentRepository
	Outbox       OutboxRepository

	// Ping reports backend health; nil means always healthy.
	Ping func(ctx context.Context) error
	// Close releases backend resources; may be nil.
	Close func() error
	// Atomic runs fn so that every write made with its context commits
	// or rolls back together. Nil means the backend has no transactions.
	Atomic func(ctx context.Context, fn func(ctx context.Context) error) error
}

// InTx runs fn through Atomic when the backend has one.
func (s Store) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.Atomic == nil {
		return fn(ctx)
	}
	return s.Atomic(ctx, fn)
}
