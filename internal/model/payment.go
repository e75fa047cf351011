package model

import "time"

type PaymentMethod string

const (
	PaymentMethodCash  PaymentMethod = "cash"
	PaymentMethodChapa PaymentMethod = "chapa"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// Payment is a fee collected from a patient, in whole ETB
type Payment struct {
	ID            int64         `json:"id" db:"id" yaml:"id"`
	PatientID     int64         `json:"patient" db:"patient_id" yaml:"patient"`
	Amount        int64         `json:"amount" db:"amount" yaml:"amount"`
	PaymentMethod PaymentMethod `json:"payment_method" db:"payment_method" yaml:"payment_method"`
	Reference     string        `json:"reference" db:"reference" yaml:"reference"`
	Status        PaymentStatus `json:"status" db:"status" yaml:"status"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at" yaml:"created_at"`
}

// PaymentFilter represents payment search parameters
type PaymentFilter struct {
	PatientID *int64        `form:"patient"`
	Status    PaymentStatus `form:"status" binding:"omitempty,oneof=pending paid failed"`
	Day       string        `form:"date" binding:"omitempty,day"`
}

// RecordPaymentRequest represents payment creation parameters
type RecordPaymentRequest struct {
	PatientID     int64         `json:"patient" binding:"required"`
	Amount        int64         `json:"amount" binding:"required,gt=0"`
	PaymentMethod PaymentMethod `json:"payment_method" binding:"required,oneof=cash chapa"`
}

// ConfirmPaymentRequest settles a pending checkout
type ConfirmPaymentRequest struct {
	Success *bool `json:"success" binding:"required"`
}

// PaymentSummary totals a day's payments
type PaymentSummary struct {
	Day            string `json:"date"`
	TotalCollected int64  `json:"totalCollected"`
	PendingAmount  int64  `json:"pendingAmount"`
	Count          int    `json:"count"`
}
