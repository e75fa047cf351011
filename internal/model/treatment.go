package model

import "time"

// Treatment is the doctor's record of an appointment
type Treatment struct {
	ID               int64     `json:"id" db:"id" yaml:"id"`
	PatientID        int64     `json:"-" db:"patient_id" yaml:"patient"`
	Patient          *Patient  `json:"patient" db:"-" yaml:"-"`
	DoctorID         int64     `json:"-" db:"doctor_id" yaml:"doctor"`
	Doctor           *User     `json:"doctor" db:"-" yaml:"-"`
	AppointmentID    int64     `json:"appointment" db:"appointment_id" yaml:"appointment"`
	Notes            string    `json:"notes" db:"notes" yaml:"notes"`
	Prescription     *string   `json:"prescription" db:"prescription" yaml:"prescription"`
	FollowUpRequired bool      `json:"follow_up_required" db:"follow_up_required" yaml:"follow_up_required"`
	CreatedAt        time.Time `json:"created_at" db:"created_at" yaml:"created_at"`
}

// RecordTreatmentRequest represents the treatment form
type RecordTreatmentRequest struct {
	AppointmentID    int64      `json:"appointment" binding:"required"`
	Notes            string     `json:"notes" binding:"required"`
	Prescription     *string    `json:"prescription"`
	FollowUpRequired bool       `json:"follow_up_required"`
	FollowUpDate     *time.Time `json:"follow_up_date"`
	FollowUpNotes    string     `json:"follow_up_notes"`
}

// TreatmentRecord is the outcome of recording a treatment
type TreatmentRecord struct {
	Treatment   *Treatment   `json:"treatment"`
	Appointment *Appointment `json:"appointment"`
	FollowUp    *Appointment `json:"follow_up,omitempty"`
}
