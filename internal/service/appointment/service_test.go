package appointment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository"
	"github.com/jwalitptl/hms-api/internal/service/event"
	"github.com/jwalitptl/hms-api/internal/testutil"
	apperrors "github.com/jwalitptl/hms-api/pkg/errors"
)

type AppointmentServiceSuite struct {
	suite.Suite
	ctx    context.Context
	store  repository.Store
	svc    *Service
	admin  *model.User
	doctor *model.User
}

func (s *AppointmentServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = testutil.SeededStore(s.T())
	s.svc = NewService(s.store, event.NewService(s.store.Outbox, testutil.Clock()), testutil.Clock())

	var err error
	s.admin, err = s.store.Users.Get(s.ctx, 1)
	s.Require().NoError(err)
	s.doctor, err = s.store.Users.Get(s.ctx, 2)
	s.Require().NoError(err)
}

func TestAppointmentServiceSuite(t *testing.T) {
	suite.Run(t, new(AppointmentServiceSuite))
}

func ids(appointments []*model.Appointment) []int64 {
	out := make([]int64, 0, len(appointments))
	for _, a := range appointments {
		out = append(out, a.ID)
	}
	return out
}

func (s *AppointmentServiceSuite) TestListOrderedByDate() {
	all, err := s.svc.List(s.ctx, s.admin, model.AppointmentFilter{})
	s.Require().NoError(err)
	s.Equal([]int64{1, 2, 3, 4, 5}, ids(all))
	s.Require().NotNil(all[0].Patient)
	s.Equal("Meron", all[0].Patient.FirstName)
	s.Require().NotNil(all[0].Treatment)
	s.Equal(int64(1), all[0].Treatment.ID)
}

func (s *AppointmentServiceSuite) TestDoctorSeesOwnAppointments() {
	mine, err := s.svc.List(s.ctx, s.doctor, model.AppointmentFilter{})
	s.Require().NoError(err)
	s.Equal([]int64{1, 3, 5}, ids(mine))

	_, err = s.svc.Get(s.ctx, s.doctor, 2)
	s.True(apperrors.Is(err, apperrors.ErrNotFound))
}

func (s *AppointmentServiceSuite) TestListFilters() {
	followUps, err := s.svc.List(s.ctx, s.admin, model.AppointmentFilter{Tab: model.TabFollowUp})
	s.Require().NoError(err)
	s.Equal([]int64{5}, ids(followUps))

	completed, err := s.svc.List(s.ctx, s.admin, model.AppointmentFilter{Tab: model.TabCompleted})
	s.Require().NoError(err)
	s.Equal([]int64{1}, ids(completed))

	byDoctor, err := s.svc.List(s.ctx, s.admin, model.AppointmentFilter{Search: "sara"})
	s.Require().NoError(err)
	s.Equal([]int64{2}, ids(byDoctor))

	byPatient, err := s.svc.List(s.ctx, s.admin, model.AppointmentFilter{Search: "MERON"})
	s.Require().NoError(err)
	s.Equal([]int64{1, 5}, ids(byPatient))

	byDay, err := s.svc.List(s.ctx, s.admin, model.AppointmentFilter{Date: "2024-12-16"})
	s.Require().NoError(err)
	s.Equal([]int64{5}, ids(byDay))

	_, err = s.svc.List(s.ctx, s.admin, model.AppointmentFilter{Date: "tomorrow"})
	s.True(apperrors.Is(err, apperrors.ErrBadRequest))
}

func (s *AppointmentServiceSuite) TestStats() {
	all, err := s.svc.Stats(s.ctx, s.admin)
	s.Require().NoError(err)
	s.Equal(model.AppointmentStats{Total: 5, Pending: 4, Completed: 1}, *all)

	mine, err := s.svc.Stats(s.ctx, s.doctor)
	s.Require().NoError(err)
	s.Equal(model.AppointmentStats{Total: 3, Pending: 2, Completed: 1}, *mine)
}

func (s *AppointmentServiceSuite) TestCreate() {
	a, err := s.svc.Create(s.ctx, &model.CreateAppointmentRequest{
		PatientID:       2,
		DoctorID:        4,
		AppointmentDate: time.Date(2024, 12, 10, 9, 0, 0, 0, time.UTC),
		Notes:           " Review ",
	})
	s.Require().NoError(err)
	s.Equal(int64(6), a.ID)
	s.Equal(model.AppointmentTypeInitial, a.AppointmentType)
	s.Equal(5, a.TypeSeq)
	s.Equal(model.AppointmentStatusPending, a.Status)
	s.Equal("Review", a.Notes)
	s.Require().NotNil(a.Doctor)
	s.Equal("Michael", a.Doctor.FirstName)

	_, err = s.svc.Create(s.ctx, &model.CreateAppointmentRequest{
		PatientID: 2, DoctorID: 5, AppointmentDate: time.Date(2024, 12, 10, 9, 0, 0, 0, time.UTC),
	})
	s.True(apperrors.Is(err, apperrors.ErrBadRequest))

	_, err = s.svc.Create(s.ctx, &model.CreateAppointmentRequest{
		PatientID: 2, DoctorID: 4, AppointmentDate: time.Date(2024, 12, 8, 9, 0, 0, 0, time.UTC),
	})
	s.True(apperrors.Is(err, apperrors.ErrBadRequest))
}

func (s *AppointmentServiceSuite) TestUpdateAndCancel() {
	status := model.AppointmentStatusCompleted
	notes := "Seen early"
	a, err := s.svc.Update(s.ctx, 3, &model.UpdateAppointmentRequest{Status: &status, Notes: &notes})
	s.Require().NoError(err)
	s.Equal(model.AppointmentStatusCompleted, a.Status)
	s.Equal(notes, a.Notes)

	bad := model.AppointmentStatus("no_show")
	_, err = s.svc.Update(s.ctx, 3, &model.UpdateAppointmentRequest{Status: &bad})
	s.True(apperrors.Is(err, apperrors.ErrBadRequest))

	cancelled, err := s.svc.Cancel(s.ctx, 2)
	s.Require().NoError(err)
	s.Equal(model.AppointmentStatusCancelled, cancelled.Status)

	_, err = s.svc.Cancel(s.ctx, 1)
	s.True(apperrors.Is(err, apperrors.ErrConflict))
}

func (s *AppointmentServiceSuite) TestScheduleFollowUpContinuesCase() {
	a, err := s.svc.ScheduleFollowUp(s.ctx, s.doctor, 5, &model.FollowUpRequest{
		AppointmentDate: time.Date(2024, 12, 23, 9, 0, 0, 0, time.UTC),
		Notes:           "Second check",
	})
	s.Require().NoError(err)
	s.Equal(model.AppointmentTypeFollowUp, a.AppointmentType)
	s.Require().NotNil(a.InitialAppointment)
	s.Equal(int64(1), *a.InitialAppointment)
	s.Equal(2, a.TypeSeq)
	s.Require().NotNil(a.CaseFollowupSeq)
	s.Equal(2, *a.CaseFollowupSeq)
	s.Equal(int64(1), a.PatientID)
	s.Equal(int64(2), a.DoctorID)
}

func (s *AppointmentServiceSuite) TestScheduleFollowUpRules() {
	other, err := s.store.Users.Get(s.ctx, 3)
	s.Require().NoError(err)

	_, err = s.svc.ScheduleFollowUp(s.ctx, other, 1, &model.FollowUpRequest{
		AppointmentDate: time.Date(2024, 12, 20, 9, 0, 0, 0, time.UTC),
	})
	s.True(apperrors.Is(err, apperrors.ErrForbidden))

	_, err = s.svc.ScheduleFollowUp(s.ctx, s.doctor, 3, &model.FollowUpRequest{
		AppointmentDate: time.Date(2024, 12, 9, 10, 0, 0, 0, time.UTC),
	})
	appErr, ok := apperrors.As(err)
	s.Require().True(ok)
	s.Equal(MsgFollowUpBefore, appErr.Message)
}

func TestScopeLeavesStaffUnrestricted(t *testing.T) {
	q := scope(&model.User{Base: model.Base{ID: 5}, Role: model.RoleReceptionist}, repository.AppointmentQuery{})
	assert.Nil(t, q.DoctorID)

	q = scope(&model.User{Base: model.Base{ID: 2}, Role: model.RoleDoctor}, repository.AppointmentQuery{})
	require.NotNil(t, q.DoctorID)
	assert.Equal(t, int64(2), *q.DoctorID)
}

func TestCheckFollowUpDate(t *testing.T) {
	prev := &model.Appointment{AppointmentDate: time.Date(2024, 12, 9, 11, 0, 0, 0, time.UTC)}

	tests := []struct {
		name string
		date time.Time
		msg  string
	}{
		{"unset", time.Time{}, MsgDateRequired},
		{"same time", prev.AppointmentDate, MsgFollowUpBefore},
		{"earlier", prev.AppointmentDate.AddDate(0, 0, -8), MsgFollowUpBefore},
		{"later", prev.AppointmentDate.Add(time.Hour), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckFollowUpDate(prev, tt.date)
			if tt.msg == "" {
				assert.NoError(t, err)
				return
			}
			appErr, ok := apperrors.As(err)
			require.True(t, ok, "expected AppError, got %v", err)
			assert.Equal(t, tt.msg, appErr.Message)
		})
	}
}
