package model

import "strings"

type Gender string

const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
)

// Patient represents a registered patient
type Patient struct {
	Base             `yaml:",inline"`
	FirstName        string  `json:"first_name" db:"first_name" yaml:"first_name"`
	LastName         string  `json:"last_name" db:"last_name" yaml:"last_name"`
	DateOfBirth      *string `json:"date_of_birth" db:"date_of_birth" yaml:"date_of_birth"`
	Gender           Gender  `json:"gender" db:"gender" yaml:"gender"`
	ContactNumber    string  `json:"contact_number" db:"contact_number" yaml:"contact_number"`
	Address          string  `json:"address" db:"address" yaml:"address"`
	AssignedDoctorID *int64  `json:"-" db:"assigned_doctor_id" yaml:"assigned_doctor"`
	AssignedDoctor   *User   `json:"assigned_doctor" db:"-" yaml:"-"`
	QueueNumber      int     `json:"queue_number" db:"queue_number" yaml:"queue_number"`
	IsSeen           bool    `json:"is_seen" db:"is_seen" yaml:"is_seen"`
}

func (p *Patient) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Matches applies the patient list search: full name (case-insensitive) or
// contact number substring.
func (p *Patient) Matches(query string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.FullName()), strings.ToLower(query)) ||
		strings.Contains(p.ContactNumber, query)
}

// PatientFilter represents patient search parameters
type PatientFilter struct {
	Search     string
	Day        string
	UnseenOnly bool
}

// RegisterPatientRequest is the registration form: payment first, then
// patient details.
type RegisterPatientRequest struct {
	FirstName        string        `json:"first_name" binding:"required"`
	LastName         string        `json:"last_name" binding:"required"`
	DateOfBirth      *string       `json:"date_of_birth"`
	Gender           Gender        `json:"gender" binding:"required,oneof=M F"`
	ContactNumber    string        `json:"contact_number" binding:"required"`
	Address          string        `json:"address"`
	AssignedDoctorID *int64        `json:"assigned_doctor"`
	PaymentMethod    PaymentMethod `json:"payment_method" binding:"required,oneof=cash chapa"`
	Amount           *int64        `json:"amount" binding:"omitempty,gt=0"`
}

// Registration is the outcome of a successful registration.
type Registration struct {
	Patient     *Patient `json:"patient"`
	Payment     *Payment `json:"payment"`
	QueueNumber int      `json:"queue_number"`
}

// UpdatePatientRequest represents patient update parameters
type UpdatePatientRequest struct {
	FirstName        string  `json:"first_name"`
	LastName         string  `json:"last_name"`
	DateOfBirth      *string `json:"date_of_birth"`
	Gender           *Gender `json:"gender" binding:"omitempty,oneof=M F"`
	ContactNumber    *string `json:"contact_number"`
	Address          *string `json:"address"`
	AssignedDoctorID *int64  `json:"assigned_doctor"`
}
