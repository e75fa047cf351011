// Package seed provides the dataset the store starts from: the built-in
// demo hospital or a YAML fixture of the same shape.
package seed

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository"
	"github.com/jwalitptl/hms-api/pkg/security"
)

// UserFixture is a user plus an optional plain-text demo password. Users
// without a password exist but cannot log in.
type UserFixture struct {
	model.User `yaml:",inline"`
	Password   string `yaml:"password,omitempty"`
	Disabled   bool   `yaml:"disabled,omitempty"`
}

// Dataset is everything loaded into a fresh store.
type Dataset struct {
	Users        []UserFixture       `yaml:"users"`
	Patients     []model.Patient     `yaml:"patients"`
	Appointments []model.Appointment `yaml:"appointments"`
	Treatments   []model.Treatment   `yaml:"treatments"`
	Payments     []model.Payment     `yaml:"payments"`
}

// Load reads a YAML fixture from disk.
func Load(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML fixture and checks its references.
func Parse(data []byte) (*Dataset, error) {
	var ds Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("failed to parse seed data: %w", err)
	}
	for i := range ds.Users {
		ds.Users[i].IsActive = !ds.Users[i].Disabled
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return &ds, nil
}

// Validate checks ids, labels and foreign references.
func (ds *Dataset) Validate() error {
	users := make(map[int64]model.Role, len(ds.Users))
	for _, u := range ds.Users {
		if u.ID <= 0 || u.Username == "" {
			return fmt.Errorf("seed user %q: id and username are required", u.Username)
		}
		if !u.Role.Valid() {
			return fmt.Errorf("seed user %q: invalid role %q", u.Username, u.Role)
		}
		if _, dup := users[u.ID]; dup {
			return fmt.Errorf("seed user id %d is duplicated", u.ID)
		}
		users[u.ID] = u.Role
	}

	isDoctor := func(id int64) bool { return users[id] == model.RoleDoctor }

	patients := make(map[int64]bool, len(ds.Patients))
	for _, p := range ds.Patients {
		if p.ID <= 0 {
			return fmt.Errorf("seed patient %q: id is required", p.FullName())
		}
		if p.Gender != model.GenderMale && p.Gender != model.GenderFemale {
			return fmt.Errorf("seed patient %d: invalid gender %q", p.ID, p.Gender)
		}
		if p.AssignedDoctorID != nil && !isDoctor(*p.AssignedDoctorID) {
			return fmt.Errorf("seed patient %d: assigned doctor %d is not a doctor", p.ID, *p.AssignedDoctorID)
		}
		patients[p.ID] = true
	}

	appointments := make(map[int64]bool, len(ds.Appointments))
	for _, a := range ds.Appointments {
		appointments[a.ID] = true
	}
	for _, a := range ds.Appointments {
		if !patients[a.PatientID] {
			return fmt.Errorf("seed appointment %d: unknown patient %d", a.ID, a.PatientID)
		}
		if !isDoctor(a.DoctorID) {
			return fmt.Errorf("seed appointment %d: %d is not a doctor", a.ID, a.DoctorID)
		}
		if !a.Status.Valid() {
			return fmt.Errorf("seed appointment %d: invalid status %q", a.ID, a.Status)
		}
		if a.AppointmentType == model.AppointmentTypeFollowUp {
			if a.InitialAppointment == nil || !appointments[*a.InitialAppointment] {
				return fmt.Errorf("seed appointment %d: follow-up without a known initial appointment", a.ID)
			}
		}
	}

	for _, t := range ds.Treatments {
		if !appointments[t.AppointmentID] {
			return fmt.Errorf("seed treatment %d: unknown appointment %d", t.ID, t.AppointmentID)
		}
	}
	for _, p := range ds.Payments {
		if !patients[p.PatientID] {
			return fmt.Errorf("seed payment %d: unknown patient %d", p.ID, p.PatientID)
		}
	}
	return nil
}

// Apply writes the dataset into the store, hashing demo passwords. Records
// keep their fixture ids.
func Apply(ctx context.Context, store repository.Store, ds *Dataset, hasher security.PasswordHasher) error {
	for i := range ds.Users {
		u := ds.Users[i].User
		if ds.Users[i].Password != "" {
			hash, err := hasher.Hash(ds.Users[i].Password)
			if err != nil {
				return fmt.Errorf("failed to hash password for %s: %w", u.Username, err)
			}
			u.PasswordHash = hash
		}
		if err := store.Users.Create(ctx, &u); err != nil {
			return fmt.Errorf("failed to seed user %s: %w", u.Username, err)
		}
	}
	for i := range ds.Patients {
		p := ds.Patients[i]
		if err := store.Patients.Create(ctx, &p); err != nil {
			return fmt.Errorf("failed to seed patient %d: %w", p.ID, err)
		}
	}
	for i := range ds.Appointments {
		a := ds.Appointments[i]
		if err := store.Appointments.Create(ctx, &a); err != nil {
			return fmt.Errorf("failed to seed appointment %d: %w", a.ID, err)
		}
	}
	for i := range ds.Treatments {
		t := ds.Treatments[i]
		if err := store.Treatments.Create(ctx, &t); err != nil {
			return fmt.Errorf("failed to seed treatment %d: %w", t.ID, err)
		}
	}
	for i := range ds.Payments {
		p := ds.Payments[i]
		if err := store.Payments.Create(ctx, &p); err != nil {
			return fmt.Errorf("failed to seed payment %d: %w", p.ID, err)
		}
	}
	return nil
}
