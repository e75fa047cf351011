package treatment

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/hms-api/internal/clock"
	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository"
	"github.com/jwalitptl/hms-api/internal/service/appointment"
	"github.com/jwalitptl/hms-api/internal/service/event"
	"github.com/jwalitptl/hms-api/internal/service/views"
	apperrors "github.com/jwalitptl/hms-api/pkg/errors"
	"github.com/jwalitptl/hms-api/pkg/metrics"
	"github.com/jwalitptl/hms-api/pkg/simulate"
)

const (
	MsgNotesRequired    = "treatment notes are required"
	MsgAlreadyTreated   = "appointment already has a treatment"
	MsgCancelled        = "cannot treat a cancelled appointment"
	MsgFollowUpDateOnly = "follow_up_date requires follow_up_required"
)

type TreatmentServicer interface {
	Record(ctx context.Context, doctor *model.User, req *model.RecordTreatmentRequest) (*model.TreatmentRecord, error)
	ListForDoctor(ctx context.Context, doctorID int64) ([]*model.Treatment, error)
}

type Service struct {
	store        repository.Store
	repo         repository.TreatmentRepository
	appointments repository.AppointmentRepository
	patients     repository.PatientRepository
	scheduler    *appointment.Service
	views        *views.Loader
	events       event.Emitter
	metrics      *metrics.Metrics
	saveDelay    time.Duration
	now          clock.Func
}

func NewService(store repository.Store, scheduler *appointment.Service, events event.Emitter,
	m *metrics.Metrics, saveDelay time.Duration, now clock.Func) *Service {
	if now == nil {
		now = clock.System
	}
	if m == nil {
		m = metrics.NewNop()
	}
	if events == nil {
		events = event.Nop{}
	}
	return &Service{
		store:        store,
		repo:         store.Treatments,
		appointments: store.Appointments,
		patients:     store.Patients,
		scheduler:    scheduler,
		views:        views.NewLoader(store),
		events:       events,
		metrics:      m,
		saveDelay:    saveDelay,
		now:          now,
	}
}

// Record stores the doctor's notes for an appointment, completes it and
// marks the patient seen. A follow-up is booked when one is required and a
// date is given.
func (s *Service) Record(ctx context.Context, doctor *model.User, req *model.RecordTreatmentRequest) (*model.TreatmentRecord, error) {
	notes := strings.TrimSpace(req.Notes)
	if notes == "" {
		return nil, apperrors.BadRequest(MsgNotesRequired, nil)
	}
	if req.FollowUpDate != nil && !req.FollowUpRequired {
		return nil, apperrors.BadRequest(MsgFollowUpDateOnly, nil)
	}

	appt, err := s.appointments.Get(ctx, req.AppointmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("appointment", err)
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	if appt.DoctorID != doctor.ID {
		return nil, apperrors.Forbidden(appointment.MsgNotYourPatient)
	}
	if appt.TreatmentID != nil {
		return nil, apperrors.Conflict(MsgAlreadyTreated, nil)
	}
	if appt.Status == model.AppointmentStatusCancelled {
		return nil, apperrors.Conflict(MsgCancelled, nil)
	}
	followUp := req.FollowUpRequired && req.FollowUpDate != nil
	if followUp {
		if err := appointment.CheckFollowUpDate(appt, *req.FollowUpDate); err != nil {
			return nil, err
		}
	}

	if err := simulate.Wait(ctx, s.saveDelay); err != nil {
		return nil, err
	}

	now := s.now()
	t := &model.Treatment{
		PatientID:        appt.PatientID,
		DoctorID:         doctor.ID,
		AppointmentID:    appt.ID,
		Notes:            notes,
		Prescription:     trimmed(req.Prescription),
		FollowUpRequired: req.FollowUpRequired,
		CreatedAt:        now,
	}
	record := &model.TreatmentRecord{Treatment: t}
	err = s.store.InTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, t); err != nil {
			return fmt.Errorf("failed to create treatment: %w", err)
		}

		appt.TreatmentID = &t.ID
		appt.Status = model.AppointmentStatusCompleted
		appt.UpdatedAt = now
		if err := s.appointments.Update(ctx, appt); err != nil {
			return fmt.Errorf("failed to complete appointment: %w", err)
		}

		if err := s.markSeen(ctx, appt.PatientID); err != nil {
			return err
		}

		if followUp {
			next, err := s.scheduler.ScheduleFollowUp(ctx, doctor, appt.ID, &model.FollowUpRequest{
				AppointmentDate: *req.FollowUpDate,
				Notes:           req.FollowUpNotes,
			})
			if err != nil {
				return err
			}
			record.FollowUp = next
		}

		s.events.Emit(ctx, model.EventTreatmentRecorded, map[string]interface{}{
			"treatment_id":       t.ID,
			"appointment_id":     appt.ID,
			"patient_id":         appt.PatientID,
			"doctor_id":          doctor.ID,
			"follow_up_required": t.FollowUpRequired,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	if record.Appointment, err = s.scheduler.Get(ctx, doctor, appt.ID); err != nil {
		return nil, err
	}
	if err := s.views.Treatments(ctx, t); err != nil {
		return nil, err
	}

	s.metrics.TreatmentsRecorded.Inc()
	log.Info().Int64("treatment_id", t.ID).Int64("appointment_id", appt.ID).Msg("Treatment recorded")
	return record, nil
}

func (s *Service) markSeen(ctx context.Context, patientID int64) error {
	p, err := s.patients.Get(ctx, patientID)
	if err != nil {
		return fmt.Errorf("failed to get patient: %w", err)
	}
	if p.IsSeen {
		return nil
	}
	p.IsSeen = true
	p.UpdatedAt = s.now()
	if err := s.patients.Update(ctx, p); err != nil {
		return fmt.Errorf("failed to update patient: %w", err)
	}
	return nil
}

// ListForDoctor returns the doctor's treatments, newest first.
func (s *Service) ListForDoctor(ctx context.Context, doctorID int64) ([]*model.Treatment, error) {
	treatments, err := s.repo.List(ctx, repository.TreatmentQuery{DoctorID: &doctorID})
	if err != nil {
		return nil, fmt.Errorf("failed to list treatments: %w", err)
	}
	sort.SliceStable(treatments, func(i, j int) bool {
		return treatments[i].ID > treatments[j].ID
	})
	if err := s.views.Treatments(ctx, treatments...); err != nil {
		return nil, err
	}
	return treatments, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
