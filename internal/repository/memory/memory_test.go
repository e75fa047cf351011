package memory

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository"
)

var day1 = time.Date(2024, 12, 9, 8, 0, 0, 0, time.UTC)

func TestUserRepoUniqueUsername(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()

	u := &model.User{Username: "admin", Role: model.RoleAdmin}
	require.NoError(t, repo.Create(ctx, u))
	assert.Equal(t, int64(1), u.ID)

	err := repo.Create(ctx, &model.User{Username: "ADMIN"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	got, err := repo.GetByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestUserRepoReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()
	require.NoError(t, repo.Create(ctx, &model.User{Username: "rec_fatima", FirstName: "Fatima"}))

	got, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	got.FirstName = "changed"

	again, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Fatima", again.FirstName)
}

func TestExplicitIDsAdvanceCounter(t *testing.T) {
	ctx := context.Background()
	repo := NewPaymentRepository()

	require.NoError(t, repo.Create(ctx, &model.Payment{ID: 5}))
	p := &model.Payment{}
	require.NoError(t, repo.Create(ctx, p))
	assert.Equal(t, int64(6), p.ID)

	assert.ErrorIs(t, repo.Create(ctx, &model.Payment{ID: 5}), repository.ErrDuplicate)
}

func TestPatientQueueNumbersPerDay(t *testing.T) {
	ctx := context.Background()
	repo := NewPatientRepository()

	first := &model.Patient{Base: model.Base{CreatedAt: day1}}
	second := &model.Patient{Base: model.Base{CreatedAt: day1.Add(time.Hour)}}
	nextDay := &model.Patient{Base: model.Base{CreatedAt: day1.Add(24 * time.Hour)}}

	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))
	require.NoError(t, repo.Create(ctx, nextDay))

	assert.Equal(t, 1, first.QueueNumber)
	assert.Equal(t, 2, second.QueueNumber)
	assert.Equal(t, 1, nextDay.QueueNumber)
}

func TestPatientListFilter(t *testing.T) {
	ctx := context.Background()
	repo := NewPatientRepository()
	require.NoError(t, repo.Create(ctx, &model.Patient{Base: model.Base{CreatedAt: day1}, FirstName: "Meron", LastName: "Girma", ContactNumber: "+251911234567", IsSeen: true}))
	require.NoError(t, repo.Create(ctx, &model.Patient{Base: model.Base{CreatedAt: day1}, FirstName: "Yonas", LastName: "Tesfaye", ContactNumber: "+251922345678"}))

	byName, err := repo.List(ctx, model.PatientFilter{Search: "meron gir"})
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "Meron", byName[0].FirstName)

	byPhone, err := repo.List(ctx, model.PatientFilter{Search: "92234"})
	require.NoError(t, err)
	require.Len(t, byPhone, 1)
	assert.Equal(t, "Yonas", byPhone[0].FirstName)

	unseen, err := repo.List(ctx, model.PatientFilter{Day: "2024-12-09", UnseenOnly: true})
	require.NoError(t, err)
	assert.Len(t, unseen, 1)
}

func TestAppointmentQuery(t *testing.T) {
	ctx := context.Background()
	repo := NewAppointmentRepository()
	initial := int64(1)

	require.NoError(t, repo.Create(ctx, &model.Appointment{PatientID: 1, DoctorID: 2, AppointmentDate: day1.Add(2 * time.Hour), AppointmentType: model.AppointmentTypeInitial, Status: model.AppointmentStatusCompleted}))
	require.NoError(t, repo.Create(ctx, &model.Appointment{PatientID: 3, DoctorID: 2, AppointmentDate: day1.Add(time.Hour), AppointmentType: model.AppointmentTypeInitial, Status: model.AppointmentStatusPending}))
	require.NoError(t, repo.Create(ctx, &model.Appointment{PatientID: 1, DoctorID: 2, AppointmentDate: day1.AddDate(0, 0, 7), AppointmentType: model.AppointmentTypeFollowUp, InitialAppointment: &initial, Status: model.AppointmentStatusPending}))

	doctor := int64(2)
	all, err := repo.List(ctx, repository.AppointmentQuery{DoctorID: &doctor})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, int64(2), all[0].ID, "ordered by appointment date")

	today, err := repo.Count(ctx, repository.AppointmentQuery{Day: "2024-12-09"})
	require.NoError(t, err)
	assert.Equal(t, 2, today)

	followUps, err := repo.Count(ctx, repository.AppointmentQuery{InitialAppointmentID: &initial, Type: model.AppointmentTypeFollowUp})
	require.NoError(t, err)
	assert.Equal(t, 1, followUps)
}

func TestAppointmentSequencesUnderConcurrentCreates(t *testing.T) {
	ctx := context.Background()
	repo := NewAppointmentRepository()
	initial := &model.Appointment{PatientID: 1, DoctorID: 2, AppointmentDate: day1, AppointmentType: model.AppointmentTypeInitial}
	require.NoError(t, repo.Create(ctx, initial))
	assert.Equal(t, 1, initial.TypeSeq)
	assert.Nil(t, initial.CaseFollowupSeq)

	const n = 20
	created := make([]*model.Appointment, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a := &model.Appointment{
				PatientID:          1,
				DoctorID:           2,
				AppointmentDate:    day1.AddDate(0, 0, i+1),
				AppointmentType:    model.AppointmentTypeFollowUp,
				InitialAppointment: &initial.ID,
			}
			assert.NoError(t, repo.Create(ctx, a))
			created[i] = a
		}(i)
	}
	wg.Wait()

	var typeSeqs, caseSeqs []int
	for _, a := range created {
		require.NotNil(t, a.CaseFollowupSeq)
		typeSeqs = append(typeSeqs, a.TypeSeq)
		caseSeqs = append(caseSeqs, *a.CaseFollowupSeq)
	}
	sort.Ints(typeSeqs)
	sort.Ints(caseSeqs)
	for i := 0; i < n; i++ {
		assert.Equal(t, i+1, typeSeqs[i])
		assert.Equal(t, i+1, caseSeqs[i])
	}
}

func TestAppointmentKeepsExplicitSequences(t *testing.T) {
	ctx := context.Background()
	repo := NewAppointmentRepository()
	caseSeq := 4
	initial := int64(1)
	a := &model.Appointment{AppointmentType: model.AppointmentTypeFollowUp, InitialAppointment: &initial, TypeSeq: 9, CaseFollowupSeq: &caseSeq}
	require.NoError(t, repo.Create(ctx, a))

	got, err := repo.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 9, got.TypeSeq)
	assert.Equal(t, 4, *got.CaseFollowupSeq)
}

func TestAppointmentStoreDropsEmbeddedViews(t *testing.T) {
	ctx := context.Background()
	repo := NewAppointmentRepository()
	a := &model.Appointment{PatientID: 1, Patient: &model.Patient{FirstName: "x"}}
	require.NoError(t, repo.Create(ctx, a))

	got, err := repo.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Patient)
	assert.Equal(t, int64(1), got.PatientID)
}

func TestOutboxLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewOutboxRepository().(*outboxRepo)
	now := day1
	repo.now = func() time.Time { return now }

	e1 := &model.OutboxEvent{EventType: model.EventPatientRegistered, Payload: []byte(`{}`)}
	require.NoError(t, repo.Create(ctx, e1))
	now = now.Add(time.Second)
	e2 := &model.OutboxEvent{EventType: model.EventPaymentRecorded, Payload: []byte(`{}`)}
	require.NoError(t, repo.Create(ctx, e2))

	pending, err := repo.GetPendingEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, e1.ID, pending[0].ID)

	require.NoError(t, repo.MarkProcessed(ctx, e1.ID))
	require.NoError(t, repo.MarkFailed(ctx, e2.ID, "boom", false))

	pending, err = repo.GetPendingEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 1, pending[0].Attempts)

	require.NoError(t, repo.MarkFailed(ctx, e2.ID, "boom", true))
	pending, err = repo.GetPendingEvents(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	deleted, err := repo.DeleteProcessedBefore(ctx, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}
