// Package memory holds the default in-process repositories. Records are
// copied on the way in and out so callers never share state with the store.
package memory

import (
	"github.com/jwalitptl/hms-api/internal/repository"
)

// NewStore returns an empty in-memory store.
func NewStore() repository.Store {
	return repository.Store{
		Users:        NewUserRepository(),
		Patients:     NewPatientRepository(),
		Appointments: NewAppointmentRepository(),
		Treatments:   NewTreatmentRepository(),
		Payments:     NewPaymentRepository(),
		Outbox:       NewOutboxRepository(),
	}
}

// nextID keeps explicit ids and advances the counter past them.
func nextID(counter *int64, id int64) int64 {
	if id > 0 {
		if id > *counter {
			*counter = id
		}
		return id
	}
	*counter++
	return *counter
}
