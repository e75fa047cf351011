// Package postgres implements the repositories on PostgreSQL through sqlx.
package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/hms-api/internal/repository"
	"github.com/jwalitptl/hms-api/pkg/metrics"
)

// NewStore wires every repository to db. Closing the store closes db.
func NewStore(db *sqlx.DB, m *metrics.Metrics) repository.Store {
	base := NewBaseRepository(db, m)
	return repository.Store{
		Users:        NewUserRepository(base),
		Patients:     NewPatientRepository(base),
		Appointments: NewAppointmentRepository(base),
		Treatments:   NewTreatmentRepository(base),
		Payments:     NewPaymentRepository(base),
		Outbox:       NewOutboxRepository(base),
		Ping: func(ctx context.Context) error {
			return db.PingContext(ctx)
		},
		Close:  db.Close,
		Atomic: base.Atomic,
	}
}
