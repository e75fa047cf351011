package dashboard

import (
	"context"
	"fmt"
	"sort"

	"github.com/jwalitptl/hms-api/internal/clock"
	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository"
	"github.com/jwalitptl/hms-api/internal/service/appointment"
	"github.com/jwalitptl/hms-api/internal/service/patient"
	"github.com/jwalitptl/hms-api/internal/service/treatment"
	apperrors "github.com/jwalitptl/hms-api/pkg/errors"
)

// List lengths on each dashboard.
const (
	RecentLimit          = 5
	RecentTreatmentLimit = 4
)

type DashboardServicer interface {
	Get(ctx context.Context, user *model.User) (*model.Dashboard, error)
}

type Service struct {
	store        repository.Store
	appointments *appointment.Service
	patients     *patient.Service
	treatments   *treatment.Service
	now          clock.Func
}

func NewService(store repository.Store, appointments *appointment.Service, patients *patient.Service,
	treatments *treatment.Service, now clock.Func) *Service {
	if now == nil {
		now = clock.System
	}
	return &Service{
		store:        store,
		appointments: appointments,
		patients:     patients,
		treatments:   treatments,
		now:          now,
	}
}

// Get builds the landing view for the user's role.
func (s *Service) Get(ctx context.Context, user *model.User) (*model.Dashboard, error) {
	d := &model.Dashboard{Role: user.Role, Day: model.Day(s.now())}

	var err error
	switch user.Role {
	case model.RoleAdmin:
		err = s.admin(ctx, user, d)
	case model.RoleDoctor:
		err = s.doctor(ctx, user, d)
	case model.RoleReceptionist:
		err = s.receptionist(ctx, d)
	default:
		return nil, apperrors.Forbidden("unknown role")
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) AdminStats(ctx context.Context) (*model.AdminStats, error) {
	users, err := s.store.Users.List(ctx, model.UserFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	patients, err := s.store.Patients.List(ctx, model.PatientFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	today, err := s.store.Appointments.Count(ctx, repository.AppointmentQuery{Day: model.Day(s.now())})
	if err != nil {
		return nil, fmt.Errorf("failed to count appointments: %w", err)
	}
	pending, err := s.store.Appointments.Count(ctx, repository.AppointmentQuery{Status: model.AppointmentStatusPending})
	if err != nil {
		return nil, fmt.Errorf("failed to count appointments: %w", err)
	}

	stats := &model.AdminStats{
		TotalUsers:          len(users),
		TotalPatients:       len(patients),
		TodayAppointments:   today,
		PendingAppointments: pending,
	}
	for _, u := range users {
		switch u.Role {
		case model.RoleDoctor:
			stats.TotalDoctors++
		case model.RoleReceptionist:
			stats.TotalReceptionists++
		}
	}
	return stats, nil
}

func (s *Service) DoctorStats(ctx context.Context, doctorID int64) (*model.DoctorStats, error) {
	appointments, err := s.store.Appointments.List(ctx, repository.AppointmentQuery{DoctorID: &doctorID})
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}

	today := model.Day(s.now())
	stats := &model.DoctorStats{}
	patients := make(map[int64]struct{})
	for _, a := range appointments {
		patients[a.PatientID] = struct{}{}
		isToday := model.Day(a.AppointmentDate) == today
		if isToday {
			stats.TodayAppointments++
		}
		switch a.Status {
		case model.AppointmentStatusPending:
			stats.PendingAppointments++
		case model.AppointmentStatusCompleted:
			if isToday {
				stats.CompletedToday++
			}
		}
	}
	stats.TotalPatients = len(patients)
	return stats, nil
}

// ReceptionistStats counts today's front desk work. Pending payments are
// counted across all days so that unsettled checkouts stay visible.
func (s *Service) ReceptionistStats(ctx context.Context) (*model.ReceptionistStats, error) {
	today := model.Day(s.now())

	registered, err := s.store.Patients.List(ctx, model.PatientFilter{Day: today})
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	pending, err := s.store.Payments.List(ctx, model.PaymentFilter{Status: model.PaymentStatusPending})
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	paid, err := s.store.Payments.List(ctx, model.PaymentFilter{Status: model.PaymentStatusPaid, Day: today})
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	stats := &model.ReceptionistStats{
		TodayRegistrations: len(registered),
		PendingPayments:    len(pending),
	}
	for _, p := range registered {
		if !p.IsSeen {
			stats.QueueLength++
		}
	}
	for _, p := range paid {
		stats.TotalCollected += p.Amount
	}
	return stats, nil
}

func (s *Service) admin(ctx context.Context, user *model.User, d *model.Dashboard) error {
	stats, err := s.AdminStats(ctx)
	if err != nil {
		return err
	}
	d.Stats = stats

	users, err := s.store.Users.List(ctx, model.UserFilter{})
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}
	sort.SliceStable(users, func(i, j int) bool { return users[i].ID > users[j].ID })
	d.RecentUsers = head(users, RecentLimit)

	appointments, err := s.appointments.List(ctx, user, model.AppointmentFilter{})
	if err != nil {
		return err
	}
	sort.SliceStable(appointments, func(i, j int) bool { return appointments[i].ID > appointments[j].ID })
	d.RecentAppointments = head(appointments, RecentLimit)
	return nil
}

func (s *Service) doctor(ctx context.Context, user *model.User, d *model.Dashboard) error {
	stats, err := s.DoctorStats(ctx, user.ID)
	if err != nil {
		return err
	}
	d.Stats = stats

	pending, err := s.appointments.List(ctx, user, model.AppointmentFilter{Tab: model.TabPending})
	if err != nil {
		return err
	}
	d.PendingAppointments = pending

	treatments, err := s.treatments.ListForDoctor(ctx, user.ID)
	if err != nil {
		return err
	}
	d.RecentTreatments = head(treatments, RecentTreatmentLimit)
	return nil
}

func (s *Service) receptionist(ctx context.Context, d *model.Dashboard) error {
	stats, err := s.ReceptionistStats(ctx)
	if err != nil {
		return err
	}
	d.Stats = stats

	waiting, err := s.patients.Queue(ctx, "")
	if err != nil {
		return err
	}
	d.WaitingPatients = head(waiting, RecentLimit)

	payments, err := s.store.Payments.List(ctx, model.PaymentFilter{})
	if err != nil {
		return fmt.Errorf("failed to list payments: %w", err)
	}
	sort.SliceStable(payments, func(i, j int) bool { return payments[i].ID > payments[j].ID })
	d.RecentPayments = head(payments, RecentLimit)
	return nil
}

func head[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}
