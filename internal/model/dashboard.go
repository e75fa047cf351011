package model

// AdminStats are the admin dashboard counters
type AdminStats struct {
	TotalUsers          int `json:"totalUsers"`
	TotalDoctors        int `json:"totalDoctors"`
	TotalReceptionists  int `json:"totalReceptionists"`
	TotalPatients       int `json:"totalPatients"`
	TodayAppointments   int `json:"todayAppointments"`
	PendingAppointments int `json:"pendingAppointments"`
}

// DoctorStats are the doctor dashboard counters
type DoctorStats struct {
	TodayAppointments   int `json:"todayAppointments"`
	PendingAppointments int `json:"pendingAppointments"`
	CompletedToday      int `json:"completedToday"`
	TotalPatients       int `json:"totalPatients"`
}

// ReceptionistStats are the front desk counters
type ReceptionistStats struct {
	TodayRegistrations int   `json:"todayRegistrations"`
	PendingPayments    int   `json:"pendingPayments"`
	QueueLength        int   `json:"queueLength"`
	TotalCollected     int64 `json:"totalCollected"`
}

// Dashboard is the role specific landing view. Stats holds one of
// AdminStats, DoctorStats or ReceptionistStats.
type Dashboard struct {
	Role                Role           `json:"role"`
	Day                 string         `json:"date"`
	Stats               interface{}    `json:"stats"`
	RecentUsers         []*User        `json:"recent_users,omitempty"`
	RecentAppointments  []*Appointment `json:"recent_appointments,omitempty"`
	PendingAppointments []*Appointment `json:"pending_appointments,omitempty"`
	RecentTreatments    []*Treatment   `json:"recent_treatments,omitempty"`
	WaitingPatients     []*Patient     `json:"waiting_patients,omitempty"`
	RecentPayments      []*Payment     `json:"recent_payments,omitempty"`
}

// NavItem is one sidebar entry
type NavItem struct {
	Path  string `json:"path"`
	Label string `json:"label"`
	Roles []Role `json:"roles"`
}

// AccessDecision is the outcome of resolving a view path for a visitor
type AccessDecision struct {
	Path     string `json:"path"`
	Allowed  bool   `json:"allowed"`
	Redirect string `json:"redirect,omitempty"`
	NotFound bool   `json:"not_found,omitempty"`
}
