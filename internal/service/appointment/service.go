package appointment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/hms-api/internal/clock"
	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository"
	"github.com/jwalitptl/hms-api/internal/service/event"
	"github.com/jwalitptl/hms-api/internal/service/views"
	apperrors "github.com/jwalitptl/hms-api/pkg/errors"
)

const (
	MsgNotPending     = "only pending appointments can be changed"
	MsgInvalidDoctor  = "doctor must be an active doctor"
	MsgDateRequired   = "appointment_date is required"
	MsgDateInPast     = "appointment date cannot be in the past"
	MsgFollowUpBefore = "follow-up must be after the appointment it follows"
	MsgNotYourPatient = "appointment belongs to another doctor"
)

type AppointmentServicer interface {
	List(ctx context.Context, viewer *model.User, filter model.AppointmentFilter) ([]*model.Appointment, error)
	Stats(ctx context.Context, viewer *model.User) (*model.AppointmentStats, error)
	Get(ctx context.Context, viewer *model.User, id int64) (*model.Appointment, error)
	Create(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error)
	Update(ctx context.Context, id int64, req *model.UpdateAppointmentRequest) (*model.Appointment, error)
	Cancel(ctx context.Context, id int64) (*model.Appointment, error)
	ScheduleFollowUp(ctx context.Context, viewer *model.User, id int64, req *model.FollowUpRequest) (*model.Appointment, error)
}

type Service struct {
	repo     repository.AppointmentRepository
	patients repository.PatientRepository
	users    repository.UserRepository
	views    *views.Loader
	events   event.Emitter
	now      clock.Func
}

func NewService(store repository.Store, events event.Emitter, now clock.Func) *Service {
	if now == nil {
		now = clock.System
	}
	if events == nil {
		events = event.Nop{}
	}
	return &Service{
		repo:     store.Appointments,
		patients: store.Patients,
		users:    store.Users,
		views:    views.NewLoader(store),
		events:   events,
		now:      now,
	}
}

// scope restricts doctors to their own appointments.
func scope(viewer *model.User, q repository.AppointmentQuery) repository.AppointmentQuery {
	if viewer != nil && viewer.Role == model.RoleDoctor {
		id := viewer.ID
		q.DoctorID = &id
	}
	return q
}

func (s *Service) List(ctx context.Context, viewer *model.User, filter model.AppointmentFilter) ([]*model.Appointment, error) {
	if filter.Date != "" {
		if _, err := model.ParseDay(filter.Date); err != nil {
			return nil, apperrors.BadRequest("date must be YYYY-MM-DD", err)
		}
	}

	q := scope(viewer, repository.AppointmentQuery{
		DoctorID: filter.DoctorID,
		Status:   filter.Status,
		Day:      filter.Date,
	})
	appointments, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	if err := s.views.Appointments(ctx, appointments...); err != nil {
		return nil, err
	}

	search := strings.TrimSpace(filter.Search)
	out := appointments[:0]
	for _, a := range appointments {
		if a.MatchesTab(filter.Tab) && a.MatchesSearch(search) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *Service) Stats(ctx context.Context, viewer *model.User) (*model.AppointmentStats, error) {
	appointments, err := s.repo.List(ctx, scope(viewer, repository.AppointmentQuery{}))
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}

	stats := &model.AppointmentStats{Total: len(appointments)}
	for _, a := range appointments {
		switch a.Status {
		case model.AppointmentStatusPending:
			stats.Pending++
		case model.AppointmentStatusCompleted:
			stats.Completed++
		case model.AppointmentStatusCancelled:
			stats.Cancelled++
		}
	}
	return stats, nil
}

func (s *Service) get(ctx context.Context, id int64) (*model.Appointment, error) {
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("appointment", err)
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return a, nil
}

// Get returns the appointment with its patient, doctor and treatment. A
// doctor asking for someone else's appointment gets not found.
func (s *Service) Get(ctx context.Context, viewer *model.User, id int64) (*model.Appointment, error) {
	a, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if viewer != nil && viewer.Role == model.RoleDoctor && a.DoctorID != viewer.ID {
		return nil, apperrors.NotFound("appointment", nil)
	}
	if err := s.views.Appointments(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) Create(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	if req.AppointmentDate.IsZero() {
		return nil, apperrors.BadRequest(MsgDateRequired, nil)
	}
	if model.Day(req.AppointmentDate) < model.Day(s.now()) {
		return nil, apperrors.BadRequest(MsgDateInPast, nil)
	}
	if _, err := s.patients.Get(ctx, req.PatientID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("patient", err)
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	if err := s.checkDoctor(ctx, req.DoctorID); err != nil {
		return nil, err
	}

	now := s.now()
	a := &model.Appointment{
		Base:            model.Base{CreatedAt: now, UpdatedAt: now},
		PatientID:       req.PatientID,
		DoctorID:        req.DoctorID,
		AppointmentDate: req.AppointmentDate.UTC(),
		AppointmentType: model.AppointmentTypeInitial,
		Notes:           strings.TrimSpace(req.Notes),
		Status:          model.AppointmentStatusPending,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}

	s.events.Emit(ctx, model.EventAppointmentScheduled, a)
	return s.Get(ctx, nil, a.ID)
}

func (s *Service) checkDoctor(ctx context.Context, id int64) error {
	doc, err := s.users.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.BadRequest(MsgInvalidDoctor, err)
		}
		return fmt.Errorf("failed to get doctor: %w", err)
	}
	if doc.Role != model.RoleDoctor || !doc.IsActive {
		return apperrors.BadRequest(MsgInvalidDoctor, nil)
	}
	return nil
}

func (s *Service) Update(ctx context.Context, id int64, req *model.UpdateAppointmentRequest) (*model.Appointment, error) {
	a, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, apperrors.BadRequest(fmt.Sprintf("invalid status %q", *req.Status), nil)
		}
		a.Status = *req.Status
	}
	if req.Notes != nil {
		a.Notes = strings.TrimSpace(*req.Notes)
	}
	if req.AppointmentDate != nil {
		if req.AppointmentDate.IsZero() {
			return nil, apperrors.BadRequest(MsgDateRequired, nil)
		}
		a.AppointmentDate = req.AppointmentDate.UTC()
	}

	return s.save(ctx, a)
}

func (s *Service) Cancel(ctx context.Context, id int64) (*model.Appointment, error) {
	a, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status != model.AppointmentStatusPending {
		return nil, apperrors.Conflict(MsgNotPending, nil)
	}
	a.Status = model.AppointmentStatusCancelled
	return s.save(ctx, a)
}

func (s *Service) save(ctx context.Context, a *model.Appointment) (*model.Appointment, error) {
	a.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to update appointment: %w", err)
	}
	s.events.Emit(ctx, model.EventAppointmentUpdated, a)
	log.Info().Int64("appointment_id", a.ID).Str("status", string(a.Status)).Msg("Appointment updated")
	return s.Get(ctx, nil, a.ID)
}

// CheckFollowUpDate rejects a follow-up date that is unset or not after
// the appointment it follows.
func CheckFollowUpDate(prev *model.Appointment, date time.Time) error {
	if date.IsZero() {
		return apperrors.BadRequest(MsgDateRequired, nil)
	}
	if !date.After(prev.AppointmentDate) {
		return apperrors.BadRequest(MsgFollowUpBefore, nil)
	}
	return nil
}

// ScheduleFollowUp books another visit in the case that id belongs to. The
// case is identified by its initial appointment.
func (s *Service) ScheduleFollowUp(ctx context.Context, viewer *model.User, id int64, req *model.FollowUpRequest) (*model.Appointment, error) {
	prev, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if viewer != nil && viewer.Role == model.RoleDoctor && prev.DoctorID != viewer.ID {
		return nil, apperrors.Forbidden(MsgNotYourPatient)
	}
	if prev.Status == model.AppointmentStatusCancelled {
		return nil, apperrors.Conflict("cannot follow up a cancelled appointment", nil)
	}
	if err := CheckFollowUpDate(prev, req.AppointmentDate); err != nil {
		return nil, err
	}

	caseID := prev.ID
	if prev.InitialAppointment != nil {
		caseID = *prev.InitialAppointment
	}

	now := s.now()
	a := &model.Appointment{
		Base:               model.Base{CreatedAt: now, UpdatedAt: now},
		PatientID:          prev.PatientID,
		DoctorID:           prev.DoctorID,
		AppointmentDate:    req.AppointmentDate.UTC(),
		AppointmentType:    model.AppointmentTypeFollowUp,
		InitialAppointment: &caseID,
		Notes:              strings.TrimSpace(req.Notes),
		Status:             model.AppointmentStatusPending,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to create follow-up: %w", err)
	}

	s.events.Emit(ctx, model.EventAppointmentScheduled, a)
	log.Info().Int64("appointment_id", a.ID).Int64("case_id", caseID).Int("case_seq", *a.CaseFollowupSeq).Msg("Follow-up scheduled")
	return s.Get(ctx, nil, a.ID)
}
