package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/hms-api/internal/clock"
	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository"
	"github.com/jwalitptl/hms-api/internal/service/event"
	apperrors "github.com/jwalitptl/hms-api/pkg/errors"
	"github.com/jwalitptl/hms-api/pkg/metrics"
	"github.com/jwalitptl/hms-api/pkg/simulate"
)

const MsgNotPending = "payment is not pending"

type PaymentServicer interface {
	Record(ctx context.Context, req *model.RecordPaymentRequest) (*model.Payment, error)
	Confirm(ctx context.Context, id int64, success bool) (*model.Payment, error)
	Get(ctx context.Context, id int64) (*model.Payment, error)
	List(ctx context.Context, filter model.PaymentFilter) ([]*model.Payment, error)
	Summary(ctx context.Context, day string) (*model.PaymentSummary, error)
}

type Service struct {
	repo     repository.PaymentRepository
	patients repository.PatientRepository
	events   event.Emitter
	metrics  *metrics.Metrics
	delay    time.Duration
	now      clock.Func
}

func NewService(repo repository.PaymentRepository, patients repository.PatientRepository, events event.Emitter,
	m *metrics.Metrics, delay time.Duration, now clock.Func) *Service {
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
		repo:     repo,
		patients: patients,
		events:   events,
		metrics:  m,
		delay:    delay,
		now:      now,
	}
}

// Reference builds the receipt reference for a payment id.
func Reference(method model.PaymentMethod, id int64) string {
	prefix := "CASH"
	if method == model.PaymentMethodChapa {
		prefix = "CHP"
	}
	return fmt.Sprintf("%s-%03d", prefix, id)
}

// InitialStatus is paid for cash and pending for a Chapa checkout.
func InitialStatus(method model.PaymentMethod) model.PaymentStatus {
	if method == model.PaymentMethodChapa {
		return model.PaymentStatusPending
	}
	return model.PaymentStatusPaid
}

// CheckMethod rejects payment methods the desk cannot take.
func CheckMethod(method model.PaymentMethod) error {
	if method != model.PaymentMethodCash && method != model.PaymentMethodChapa {
		return apperrors.BadRequest(fmt.Sprintf("invalid payment method %q", method), nil)
	}
	return nil
}

// Wait applies the simulated checkout delay.
func (s *Service) Wait(ctx context.Context) error {
	return simulate.Wait(ctx, s.delay)
}

func (s *Service) Record(ctx context.Context, req *model.RecordPaymentRequest) (*model.Payment, error) {
	if req.Amount <= 0 {
		return nil, apperrors.BadRequest("amount must be greater than zero", nil)
	}
	if _, err := s.patients.Get(ctx, req.PatientID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("patient", err)
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	if err := s.Wait(ctx); err != nil {
		return nil, err
	}
	return s.Create(ctx, req.PatientID, req.Amount, req.PaymentMethod)
}

// Create stores a payment for an existing patient without the checkout
// delay. Registration uses it after it has waited on its own.
func (s *Service) Create(ctx context.Context, patientID, amount int64, method model.PaymentMethod) (*model.Payment, error) {
	if err := CheckMethod(method); err != nil {
		return nil, err
	}

	p := &model.Payment{
		PatientID:     patientID,
		Amount:        amount,
		PaymentMethod: method,
		Status:        InitialStatus(method),
		CreatedAt:     s.now(),
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	p.Reference = Reference(method, p.ID)
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to set payment reference: %w", err)
	}

	s.metrics.PaymentsRecorded.WithLabelValues(string(p.PaymentMethod), string(p.Status)).Inc()
	s.events.Emit(ctx, model.EventPaymentRecorded, p)
	log.Info().Int64("payment_id", p.ID).Int64("patient_id", patientID).
		Str("reference", p.Reference).Str("status", string(p.Status)).Msg("Payment recorded")
	return p, nil
}

func (s *Service) Confirm(ctx context.Context, id int64, success bool) (*model.Payment, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status != model.PaymentStatusPending {
		return nil, apperrors.Conflict(MsgNotPending, nil)
	}

	p.Status = model.PaymentStatusFailed
	if success {
		p.Status = model.PaymentStatusPaid
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to update payment: %w", err)
	}

	s.events.Emit(ctx, model.EventPaymentConfirmed, p)
	return p, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*model.Payment, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("payment", err)
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return p, nil
}

func (s *Service) List(ctx context.Context, filter model.PaymentFilter) ([]*model.Payment, error) {
	payments, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}

// Summary totals the payments made on day. An empty day means today.
func (s *Service) Summary(ctx context.Context, day string) (*model.PaymentSummary, error) {
	if day == "" {
		day = model.Day(s.now())
	} else if _, err := model.ParseDay(day); err != nil {
		return nil, apperrors.BadRequest("date must be YYYY-MM-DD", err)
	}

	payments, err := s.List(ctx, model.PaymentFilter{Day: day})
	if err != nil {
		return nil, err
	}

	sum := &model.PaymentSummary{Day: day, Count: len(payments)}
	for _, p := range payments {
		switch p.Status {
		case model.PaymentStatusPaid:
			sum.TotalCollected += p.Amount
		case model.PaymentStatusPending:
			sum.PendingAmount += p.Amount
		}
	}
	return sum, nil
}
