package model

import (
	"time"
)

// DateLayout is the calendar date format used for birth dates and day filters.
const DateLayout = "2006-01-02"

// Role is the label attached to every staff account.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleDoctor       Role = "doctor"
	RoleReceptionist Role = "receptionist"
)

// Roles lists every role in display order.
var Roles = []Role{RoleAdmin, RoleDoctor, RoleReceptionist}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDoctor, RoleReceptionist:
		return true
	}
	return false
}

// Base contains common fields for mutable records
type Base struct {
	ID        int64     `json:"id" db:"id" yaml:"id"`
	CreatedAt time.Time `json:"created_at" db:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at" yaml:"updated_at"`
}

// Day returns the UTC calendar date of t.
func Day(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// SameDay reports whether a and b fall on the same UTC calendar date.
func SameDay(a, b time.Time) bool {
	return Day(a) == Day(b)
}

// ParseDay parses a YYYY-MM-DD value as midnight UTC.
func ParseDay(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// JSONMap represents a generic JSON object
type JSONMap map[string]interface{}
