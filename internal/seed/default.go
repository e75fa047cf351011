package seed

import (
	"time"

	"github.com/jwalitptl/hms-api/internal/model"
)

// Demo credentials accepted by the built-in dataset.
const (
	AdminUsername        = "admin"
	AdminPassword        = "admin123"
	DoctorUsername       = "dr_abraham"
	DoctorPassword       = "doctor123"
	ReceptionistUsername = "rec_fatima"
	ReceptionistPassword = "reception123"
)

// DefaultRegistrationFee is the fee charged at the front desk, in ETB.
const DefaultRegistrationFee = 500

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func str(s string) *string { return &s }
func id(v int64) *int64    { return &v }
func seq(v int) *int       { return &v }

func user(id int64, username, first, last, email string, role model.Role, specialty *string, password string) UserFixture {
	created := ts("2024-12-01T08:00:00Z")
	return UserFixture{
		User: model.User{
			Base:      model.Base{ID: id, CreatedAt: created, UpdatedAt: created},
			Username:  username,
			FirstName: first,
			LastName:  last,
			Email:     email,
			Role:      role,
			Specialty: specialty,
			IsActive:  true,
		},
		Password: password,
	}
}

func patient(id int64, first, last, dob string, gender model.Gender, phone, address string, doctor int64, queue int, seen bool, created string) model.Patient {
	at := ts(created)
	return model.Patient{
		Base:             model.Base{ID: id, CreatedAt: at, UpdatedAt: at},
		FirstName:        first,
		LastName:         last,
		DateOfBirth:      str(dob),
		Gender:           gender,
		ContactNumber:    phone,
		Address:          address,
		AssignedDoctorID: &doctor,
		QueueNumber:      queue,
		IsSeen:           seen,
	}
}

// Default returns the built-in demo hospital: six staff accounts, five
// patients registered on 2024-12-09, their appointments, one treatment and
// the registration payments.
func Default() *Dataset {
	return &Dataset{
		Users: []UserFixture{
			user(1, AdminUsername, "System", "Admin", "admin@hospital.com", model.RoleAdmin, nil, AdminPassword),
			user(2, DoctorUsername, "Abraham", "Bekele", "abraham@hospital.com", model.RoleDoctor, str("General Medicine"), DoctorPassword),
			user(3, "dr_sara", "Sara", "Hailu", "sara@hospital.com", model.RoleDoctor, str("Internal Medicine"), ""),
			user(4, "dr_michael", "Michael", "Tadesse", "michael@hospital.com", model.RoleDoctor, str("Cardiology"), ""),
			user(5, ReceptionistUsername, "Fatima", "Mohammed", "fatima@hospital.com", model.RoleReceptionist, nil, ReceptionistPassword),
			user(6, "rec_david", "David", "Alemu", "david@hospital.com", model.RoleReceptionist, nil, ""),
		},
		Patients: []model.Patient{
			patient(1, "Meron", "Girma", "1985-03-15", model.GenderFemale, "+251911234567", "Addis Ababa, Bole", 2, 1, true, "2024-12-09T08:00:00Z"),
			patient(2, "Yonas", "Tesfaye", "1990-07-22", model.GenderMale, "+251922345678", "Addis Ababa, Kirkos", 3, 2, false, "2024-12-09T08:30:00Z"),
			patient(3, "Tigist", "Worku", "1978-11-08", model.GenderFemale, "+251933456789", "Addis Ababa, Yeka", 2, 3, false, "2024-12-09T09:00:00Z"),
			patient(4, "Dawit", "Mengistu", "1995-02-28", model.GenderMale, "+251944567890", "Addis Ababa, Nifas Silk", 4, 4, false, "2024-12-09T09:30:00Z"),
			patient(5, "Helen", "Kebede", "1982-09-12", model.GenderFemale, "+251955678901", "Addis Ababa, Lideta", 3, 5, false, "2024-12-09T10:00:00Z"),
		},
		Appointments: []model.Appointment{
			{
				Base:            model.Base{ID: 1, CreatedAt: ts("2024-12-09T08:00:00Z"), UpdatedAt: ts("2024-12-09T09:30:00Z")},
				PatientID:       1,
				DoctorID:        2,
				AppointmentDate: ts("2024-12-09T09:00:00Z"),
				AppointmentType: model.AppointmentTypeInitial,
				TreatmentID:     id(1),
				TypeSeq:         1,
				Notes:           "Initial consultation - headache and fever",
				Status:          model.AppointmentStatusCompleted,
			},
			{
				Base:            model.Base{ID: 2, CreatedAt: ts("2024-12-09T08:30:00Z"), UpdatedAt: ts("2024-12-09T08:30:00Z")},
				PatientID:       2,
				DoctorID:        3,
				AppointmentDate: ts("2024-12-09T10:00:00Z"),
				AppointmentType: model.AppointmentTypeInitial,
				TypeSeq:         2,
				Notes:           "Initial consultation - back pain",
				Status:          model.AppointmentStatusPending,
			},
			{
				Base:            model.Base{ID: 3, CreatedAt: ts("2024-12-09T09:00:00Z"), UpdatedAt: ts("2024-12-09T09:00:00Z")},
				PatientID:       3,
				DoctorID:        2,
				AppointmentDate: ts("2024-12-09T11:00:00Z"),
				AppointmentType: model.AppointmentTypeInitial,
				TypeSeq:         3,
				Notes:           "Initial consultation - routine checkup",
				Status:          model.AppointmentStatusPending,
			},
			{
				Base:            model.Base{ID: 4, CreatedAt: ts("2024-12-09T09:30:00Z"), UpdatedAt: ts("2024-12-09T09:30:00Z")},
				PatientID:       4,
				DoctorID:        4,
				AppointmentDate: ts("2024-12-09T14:00:00Z"),
				AppointmentType: model.AppointmentTypeInitial,
				TypeSeq:         4,
				Notes:           "Initial consultation - chest pain",
				Status:          model.AppointmentStatusPending,
			},
			{
				Base:               model.Base{ID: 5, CreatedAt: ts("2024-12-09T09:30:00Z"), UpdatedAt: ts("2024-12-09T09:30:00Z")},
				PatientID:          1,
				DoctorID:           2,
				AppointmentDate:    ts("2024-12-16T09:00:00Z"),
				AppointmentType:    model.AppointmentTypeFollowUp,
				InitialAppointment: id(1),
				TypeSeq:            1,
				CaseFollowupSeq:    seq(1),
				Notes:              "Follow-up for fever treatment",
				Status:             model.AppointmentStatusPending,
			},
		},
		Treatments: []model.Treatment{
			{
				ID:            1,
				PatientID:     1,
				DoctorID:      2,
				AppointmentID: 1,
				Notes:         "Patient presented with fever (38.5°C) and persistent headache for 3 days. Physical examination normal. Likely viral infection.",
				Prescription: str("Paracetamol 500mg - 1 tablet every 6 hours for pain and fever\n" +
					"Rest and hydration\n" +
					"Return if symptoms persist after 5 days"),
				FollowUpRequired: true,
				CreatedAt:        ts("2024-12-09T09:30:00Z"),
			},
		},
		Payments: []model.Payment{
			{ID: 1, PatientID: 1, Amount: DefaultRegistrationFee, PaymentMethod: model.PaymentMethodCash, Reference: "CASH-001", Status: model.PaymentStatusPaid, CreatedAt: ts("2024-12-09T08:00:00Z")},
			{ID: 2, PatientID: 2, Amount: DefaultRegistrationFee, PaymentMethod: model.PaymentMethodChapa, Reference: "CHP-002", Status: model.PaymentStatusPaid, CreatedAt: ts("2024-12-09T08:30:00Z")},
			{ID: 3, PatientID: 3, Amount: DefaultRegistrationFee, PaymentMethod: model.PaymentMethodCash, Reference: "CASH-003", Status: model.PaymentStatusPaid, CreatedAt: ts("2024-12-09T09:00:00Z")},
			{ID: 4, PatientID: 4, Amount: DefaultRegistrationFee, PaymentMethod: model.PaymentMethodCash, Reference: "CASH-004", Status: model.PaymentStatusPaid, CreatedAt: ts("2024-12-09T09:30:00Z")},
			{ID: 5, PatientID: 5, Amount: DefaultRegistrationFee, PaymentMethod: model.PaymentMethodChapa, Reference: "CHP-005", Status: model.PaymentStatusPending, CreatedAt: ts("2024-12-09T10:00:00Z")},
		},
	}
}
