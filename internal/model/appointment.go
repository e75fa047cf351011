package model

import (
	"strings"
	"time"
)

type AppointmentType string

const (
	AppointmentTypeInitial  AppointmentType = "initial"
	AppointmentTypeFollowUp AppointmentType = "follow_up"
)

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusPending, AppointmentStatusCompleted, AppointmentStatusCancelled:
		return true
	}
	return false
}

// Appointment tabs accepted by the list filter
const (
	TabAll       = "all"
	TabInitial   = "initial"
	TabFollowUp  = "follow_up"
	TabPending   = "pending"
	TabCompleted = "completed"
	TabCancelled = "cancelled"
)

// Appointment represents a scheduled visit. Patient, Doctor and Treatment
// are populated from their ids when the appointment is returned to callers.
type Appointment struct {
	Base               `yaml:",inline"`
	PatientID          int64             `json:"-" db:"patient_id" yaml:"patient"`
	Patient            *Patient          `json:"patient" db:"-" yaml:"-"`
	DoctorID           int64             `json:"-" db:"doctor_id" yaml:"doctor"`
	Doctor             *User             `json:"doctor" db:"-" yaml:"-"`
	AppointmentDate    time.Time         `json:"appointment_date" db:"appointment_date" yaml:"appointment_date"`
	AppointmentType    AppointmentType   `json:"appointment_type" db:"appointment_type" yaml:"appointment_type"`
	InitialAppointment *int64            `json:"initial_appointment" db:"initial_appointment_id" yaml:"initial_appointment"`
	TreatmentID        *int64            `json:"-" db:"treatment_id" yaml:"treatment"`
	Treatment          *Treatment        `json:"treatment" db:"-" yaml:"-"`
	TypeSeq            int               `json:"type_seq" db:"type_seq" yaml:"type_seq"`
	CaseFollowupSeq    *int              `json:"case_followup_seq" db:"case_followup_seq" yaml:"case_followup_seq"`
	Notes              string            `json:"notes" db:"notes" yaml:"notes"`
	Status             AppointmentStatus `json:"status" db:"status" yaml:"status"`
}

// MatchesSearch checks the patient and doctor full names. Both must be
// populated.
func (a *Appointment) MatchesSearch(query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	if a.Patient != nil && strings.Contains(strings.ToLower(a.Patient.FullName()), q) {
		return true
	}
	return a.Doctor != nil && strings.Contains(strings.ToLower(a.Doctor.FullName()), q)
}

// MatchesTab applies the appointment list tab.
func (a *Appointment) MatchesTab(tab string) bool {
	switch tab {
	case "", TabAll:
		return true
	case TabInitial:
		return a.AppointmentType == AppointmentTypeInitial
	case TabFollowUp:
		return a.AppointmentType == AppointmentTypeFollowUp
	case TabPending:
		return a.Status == AppointmentStatusPending
	case TabCompleted:
		return a.Status == AppointmentStatusCompleted
	case TabCancelled:
		return a.Status == AppointmentStatusCancelled
	}
	return false
}

// AppointmentFilter represents appointment search parameters
type AppointmentFilter struct {
	Search   string            `form:"search"`
	Tab      string            `form:"tab" binding:"omitempty,oneof=all initial follow_up pending completed cancelled"`
	Status   AppointmentStatus `form:"status" binding:"omitempty,oneof=pending completed cancelled"`
	Date     string            `form:"date" binding:"omitempty,day"`
	DoctorID *int64            `form:"-"`
}

// AppointmentStats are the counters shown above the appointment table.
type AppointmentStats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Completed int `json:"completed"`
	Cancelled int `json:"cancelled"`
}

// CreateAppointmentRequest books an initial appointment
type CreateAppointmentRequest struct {
	PatientID       int64     `json:"patient_id" binding:"required"`
	DoctorID        int64     `json:"doctor_id" binding:"required"`
	AppointmentDate time.Time `json:"appointment_date" binding:"required"`
	Notes           string    `json:"notes"`
}

// UpdateAppointmentRequest represents the admin edit dialog
type UpdateAppointmentRequest struct {
	Status          *AppointmentStatus `json:"status" binding:"omitempty,oneof=pending completed cancelled"`
	Notes           *string            `json:"notes"`
	AppointmentDate *time.Time         `json:"appointment_date"`
}

// FollowUpRequest schedules a follow-up within an existing case
type FollowUpRequest struct {
	AppointmentDate time.Time `json:"appointment_date" binding:"required"`
	Notes           string    `json:"notes"`
}
