package patient

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
	"github.com/jwalitptl/hms-api/internal/service/payment"
	"github.com/jwalitptl/hms-api/internal/service/views"
	apperrors "github.com/jwalitptl/hms-api/pkg/errors"
	"github.com/jwalitptl/hms-api/pkg/metrics"
	"github.com/jwalitptl/hms-api/pkg/simulate"
)

const (
	MsgNameRequired    = "Name fields are required"
	MsgNoDoctors       = "no active doctor is available"
	MsgInvalidDoctor   = "assigned doctor must be an active doctor"
	MsgInvalidBirthday = "date_of_birth must be a past YYYY-MM-DD date"
)

type PatientServicer interface {
	Register(ctx context.Context, req *model.RegisterPatientRequest) (*model.Registration, error)
	List(ctx context.Context, query string) ([]*model.Patient, error)
	Get(ctx context.Context, id int64) (*model.Patient, error)
	Update(ctx context.Context, id int64, req *model.UpdatePatientRequest) (*model.Patient, error)
	Queue(ctx context.Context, day string) ([]*model.Patient, error)
	MarkSeen(ctx context.Context, id int64) (*model.Patient, error)
}

type Config struct {
	RegistrationFee   int64
	RegistrationDelay time.Duration
}

type Service struct {
	store    repository.Store
	repo     repository.PatientRepository
	users    repository.UserRepository
	payments *payment.Service
	views    *views.Loader
	events   event.Emitter
	metrics  *metrics.Metrics
	cfg      Config
	now      clock.Func
}

func NewService(store repository.Store, payments *payment.Service, events event.Emitter,
	m *metrics.Metrics, cfg Config, now clock.Func) *Service {
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
		store:    store,
		repo:     store.Patients,
		users:    store.Users,
		payments: payments,
		views:    views.NewLoader(store),
		events:   events,
		metrics:  m,
		cfg:      cfg,
		now:      now,
	}
}

// Register takes the registration fee and then records the patient with
// the next queue number of the day.
func (s *Service) Register(ctx context.Context, req *model.RegisterPatientRequest) (*model.Registration, error) {
	first, last := strings.TrimSpace(req.FirstName), strings.TrimSpace(req.LastName)
	if first == "" || last == "" {
		return nil, apperrors.BadRequest(MsgNameRequired, nil)
	}
	if strings.TrimSpace(req.ContactNumber) == "" {
		return nil, apperrors.BadRequest("contact_number is required", nil)
	}
	if req.Gender != model.GenderMale && req.Gender != model.GenderFemale {
		return nil, apperrors.BadRequest("gender must be M or F", nil)
	}
	if err := s.validateBirthday(req.DateOfBirth); err != nil {
		return nil, err
	}

	amount := s.cfg.RegistrationFee
	if req.Amount != nil {
		amount = *req.Amount
	}
	if amount <= 0 {
		return nil, apperrors.BadRequest("amount must be greater than zero", nil)
	}
	if err := payment.CheckMethod(req.PaymentMethod); err != nil {
		return nil, err
	}

	doctorID, err := s.resolveDoctor(ctx, req.AssignedDoctorID)
	if err != nil {
		return nil, err
	}

	if err := s.payments.Wait(ctx); err != nil {
		return nil, err
	}
	if err := simulate.Wait(ctx, s.cfg.RegistrationDelay); err != nil {
		return nil, err
	}

	now := s.now()
	p := &model.Patient{
		Base:             model.Base{CreatedAt: now, UpdatedAt: now},
		FirstName:        first,
		LastName:         last,
		DateOfBirth:      req.DateOfBirth,
		Gender:           req.Gender,
		ContactNumber:    strings.TrimSpace(req.ContactNumber),
		Address:          strings.TrimSpace(req.Address),
		AssignedDoctorID: &doctorID,
	}
	var pay *model.Payment
	err = s.store.InTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, p); err != nil {
			return fmt.Errorf("failed to create patient: %w", err)
		}

		created, err := s.payments.Create(ctx, p.ID, amount, req.PaymentMethod)
		if err != nil {
			return fmt.Errorf("failed to record registration fee: %w", err)
		}
		pay = created

		s.events.Emit(ctx, model.EventPatientRegistered, map[string]interface{}{
			"patient_id":   p.ID,
			"queue_number": p.QueueNumber,
			"doctor_id":    doctorID,
			"payment_id":   pay.ID,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.views.Patients(ctx, p); err != nil {
		return nil, err
	}

	s.metrics.PatientsRegistered.Inc()
	log.Info().Int64("patient_id", p.ID).Int("queue_number", p.QueueNumber).
		Int64("doctor_id", doctorID).Msg("Patient registered")

	return &model.Registration{Patient: p, Payment: pay, QueueNumber: p.QueueNumber}, nil
}

func (s *Service) validateBirthday(dob *string) error {
	if dob == nil || *dob == "" {
		return nil
	}
	t, err := model.ParseDay(*dob)
	if err != nil {
		return apperrors.BadRequest(MsgInvalidBirthday, err)
	}
	if t.After(s.now()) {
		return apperrors.BadRequest(MsgInvalidBirthday, nil)
	}
	return nil
}

// resolveDoctor checks a chosen doctor, or picks the active doctor with the
// fewest patients waiting today. Ties go to the lowest id.
func (s *Service) resolveDoctor(ctx context.Context, chosen *int64) (int64, error) {
	if chosen != nil {
		doc, err := s.users.Get(ctx, *chosen)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return 0, apperrors.BadRequest(MsgInvalidDoctor, err)
			}
			return 0, fmt.Errorf("failed to get doctor: %w", err)
		}
		if doc.Role != model.RoleDoctor || !doc.IsActive {
			return 0, apperrors.BadRequest(MsgInvalidDoctor, nil)
		}
		return doc.ID, nil
	}

	doctors, err := s.users.List(ctx, model.UserFilter{Role: model.RoleDoctor, ActiveOnly: true})
	if err != nil {
		return 0, fmt.Errorf("failed to list doctors: %w", err)
	}
	if len(doctors) == 0 {
		return 0, apperrors.BadRequest(MsgNoDoctors, nil)
	}

	waiting, err := s.repo.List(ctx, model.PatientFilter{Day: model.Day(s.now()), UnseenOnly: true})
	if err != nil {
		return 0, fmt.Errorf("failed to list waiting patients: %w", err)
	}
	load := make(map[int64]int, len(doctors))
	for _, p := range waiting {
		if p.AssignedDoctorID != nil {
			load[*p.AssignedDoctorID]++
		}
	}

	best := doctors[0]
	for _, d := range doctors[1:] {
		if load[d.ID] < load[best.ID] {
			best = d
		}
	}
	return best.ID, nil
}

// List searches patients by full name or contact number.
func (s *Service) List(ctx context.Context, query string) ([]*model.Patient, error) {
	patients, err := s.repo.List(ctx, model.PatientFilter{Search: strings.TrimSpace(query)})
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	if err := s.views.Patients(ctx, patients...); err != nil {
		return nil, err
	}
	return patients, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*model.Patient, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("patient", err)
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	if err := s.views.Patients(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Update(ctx context.Context, id int64, req *model.UpdatePatientRequest) (*model.Patient, error) {
	first, last := strings.TrimSpace(req.FirstName), strings.TrimSpace(req.LastName)
	if first == "" || last == "" {
		return nil, apperrors.BadRequest(MsgNameRequired, nil)
	}
	if err := s.validateBirthday(req.DateOfBirth); err != nil {
		return nil, err
	}

	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	p.FirstName = first
	p.LastName = last
	if req.DateOfBirth != nil {
		p.DateOfBirth = req.DateOfBirth
		if *req.DateOfBirth == "" {
			p.DateOfBirth = nil
		}
	}
	if req.Gender != nil {
		p.Gender = *req.Gender
	}
	if req.ContactNumber != nil {
		if strings.TrimSpace(*req.ContactNumber) == "" {
			return nil, apperrors.BadRequest("contact_number is required", nil)
		}
		p.ContactNumber = strings.TrimSpace(*req.ContactNumber)
	}
	if req.Address != nil {
		p.Address = strings.TrimSpace(*req.Address)
	}
	if req.AssignedDoctorID != nil {
		doctorID, err := s.resolveDoctor(ctx, req.AssignedDoctorID)
		if err != nil {
			return nil, err
		}
		p.AssignedDoctorID = &doctorID
	}
	p.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to update patient: %w", err)
	}
	if err := s.views.Patients(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Queue lists the patients registered on day who have not been seen, in
// queue order. An empty day means today.
func (s *Service) Queue(ctx context.Context, day string) ([]*model.Patient, error) {
	if day == "" {
		day = model.Day(s.now())
	} else if _, err := model.ParseDay(day); err != nil {
		return nil, apperrors.BadRequest("date must be YYYY-MM-DD", err)
	}

	patients, err := s.repo.List(ctx, model.PatientFilter{Day: day, UnseenOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to list queue: %w", err)
	}
	sortByQueue(patients)
	if err := s.views.Patients(ctx, patients...); err != nil {
		return nil, err
	}
	return patients, nil
}

func (s *Service) MarkSeen(ctx context.Context, id int64) (*model.Patient, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.IsSeen {
		return p, nil
	}
	p.IsSeen = true
	p.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to update patient: %w", err)
	}
	return p, nil
}
