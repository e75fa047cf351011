package seed

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository/memory"
	"github.com/jwalitptl/hms-api/pkg/security"
)

func TestDefaultDatasetShape(t *testing.T) {
	ds := Default()
	require.NoError(t, ds.Validate())

	assert.Len(t, ds.Users, 6)
	assert.Len(t, ds.Patients, 5)
	assert.Len(t, ds.Appointments, 5)
	assert.Len(t, ds.Treatments, 1)
	assert.Len(t, ds.Payments, 5)

	roles := map[model.Role]int{}
	withPassword := 0
	for _, u := range ds.Users {
		roles[u.Role]++
		if u.Password != "" {
			withPassword++
		}
	}
	assert.Equal(t, map[model.Role]int{model.RoleAdmin: 1, model.RoleDoctor: 3, model.RoleReceptionist: 2}, roles)
	assert.Equal(t, 3, withPassword)
}

func TestApplyDefault(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, Apply(ctx, store, Default(), security.NewBcryptHasher(bcrypt.MinCost)))

	admin, err := store.Users.GetByUsername(ctx, AdminUsername)
	require.NoError(t, err)
	assert.True(t, admin.CanLogin())

	sara, err := store.Users.GetByUsername(ctx, "dr_sara")
	require.NoError(t, err)
	assert.False(t, sara.CanLogin(), "accounts without demo credentials cannot log in")

	p, err := store.Patients.Get(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, p.QueueNumber)

	// New records continue after the seeded ids.
	next := &model.Payment{PatientID: 1}
	require.NoError(t, store.Payments.Create(ctx, next))
	assert.Equal(t, int64(6), next.ID)
}

func TestLoadFixture(t *testing.T) {
	ds, err := Load(filepath.Join("testdata", "fixture.yml"))
	require.NoError(t, err)

	require.Len(t, ds.Users, 3)
	assert.True(t, ds.Users[0].IsActive)
	assert.False(t, ds.Users[2].IsActive)
	require.NotNil(t, ds.Users[1].Specialty)
	assert.Equal(t, "Pediatrics", *ds.Users[1].Specialty)

	require.Len(t, ds.Patients, 1)
	require.NotNil(t, ds.Patients[0].AssignedDoctorID)
	assert.Equal(t, int64(2), *ds.Patients[0].AssignedDoctorID)
	assert.Equal(t, "2025-01-06", model.Day(ds.Patients[0].CreatedAt))

	require.Len(t, ds.Appointments, 1)
	assert.Equal(t, model.AppointmentTypeInitial, ds.Appointments[0].AppointmentType)
	assert.Equal(t, int64(500), ds.Payments[0].Amount)
}

func TestParseRejectsBadReferences(t *testing.T) {
	_, err := Parse([]byte(`
users:
  - id: 1
    username: admin
    role: admin
appointments:
  - id: 1
    patient: 9
    doctor: 1
    status: pending
`))
	assert.Error(t, err)

	_, err = Parse([]byte(`
users:
  - id: 1
    username: nurse
    role: nurse
`))
	assert.ErrorContains(t, err, "invalid role")

	_, err = Parse([]byte("users: [\n"))
	assert.ErrorContains(t, err, "failed to parse seed data")
}
