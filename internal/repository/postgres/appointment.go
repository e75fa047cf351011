package postgres

import (
	"context"
	"fmt"
	"hash/fnv"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository"
)

const appointmentColumns = `id, patient_id, doctor_id, appointment_date, appointment_type,
	initial_appointment_id, treatment_id, type_seq, case_followup_seq, notes, status,
	created_at, updated_at`

type appointmentRepository struct {
	BaseRepository
}

func NewAppointmentRepository(base BaseRepository) repository.AppointmentRepository {
	return &appointmentRepository{base}
}

// seqLockKey derives the advisory lock that serialises sequence numbering
// for one appointment type. Follow-up case numbering shares the follow-up
// lock.
func seqLockKey(t model.AppointmentType) int64 {
	h := fnv.New64a()
	h.Write([]byte("appointment-seq:" + string(t)))
	return int64(h.Sum64())
}

// assignSeq fills in the per-type and per-case sequence numbers the caller
// left unset.
func assignSeq(ctx context.Context, tx *sqlx.Tx, appointment *model.Appointment) error {
	caseSeq := appointment.AppointmentType == model.AppointmentTypeFollowUp &&
		appointment.InitialAppointment != nil && appointment.CaseFollowupSeq == nil
	if appointment.TypeSeq != 0 && !caseSeq {
		return nil
	}

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, seqLockKey(appointment.AppointmentType)); err != nil {
		return fmt.Errorf("failed to lock appointment sequence: %w", err)
	}
	if appointment.TypeSeq == 0 {
		query := `SELECT COUNT(*) + 1 FROM appointments WHERE appointment_type = $1`
		if err := tx.GetContext(ctx, &appointment.TypeSeq, query, appointment.AppointmentType); err != nil {
			return fmt.Errorf("failed to assign type sequence: %w", err)
		}
	}
	if caseSeq {
		var n int
		query := `SELECT COUNT(*) + 1 FROM appointments WHERE initial_appointment_id = $1`
		if err := tx.GetContext(ctx, &n, query, *appointment.InitialAppointment); err != nil {
			return fmt.Errorf("failed to assign case sequence: %w", err)
		}
		appointment.CaseFollowupSeq = &n
	}
	return nil
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) (err error) {
	defer r.track("appointment_create")(&err)

	if appointment.CreatedAt.IsZero() {
		appointment.CreatedAt = utcNow()
	}
	if appointment.UpdatedAt.IsZero() {
		appointment.UpdatedAt = appointment.CreatedAt
	}

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := assignSeq(ctx, tx, appointment); err != nil {
			return err
		}

		if appointment.ID > 0 {
			query := `
				INSERT INTO appointments (` + appointmentColumns + `)
				VALUES (:id, :patient_id, :doctor_id, :appointment_date, :appointment_type,
					:initial_appointment_id, :treatment_id, :type_seq, :case_followup_seq, :notes, :status,
					:created_at, :updated_at)
			`
			if _, err := tx.NamedExecContext(ctx, query, appointment); err != nil {
				return translate(err)
			}
			return syncSequence(ctx, tx, "appointments")
		}

		query := `
			INSERT INTO appointments (patient_id, doctor_id, appointment_date, appointment_type,
				initial_appointment_id, treatment_id, type_seq, case_followup_seq, notes, status,
				created_at, updated_at)
			VALUES (:patient_id, :doctor_id, :appointment_date, :appointment_type,
				:initial_appointment_id, :treatment_id, :type_seq, :case_followup_seq, :notes, :status,
				:created_at, :updated_at)
			RETURNING id
		`
		return insertReturningID(ctx, tx, query, appointment, &appointment.ID)
	})
}

func (r *appointmentRepository) Get(ctx context.Context, id int64) (_ *model.Appointment, err error) {
	defer r.track("appointment_get")(&err)

	var appointment model.Appointment
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`
	if err = translate(r.conn(ctx).GetContext(ctx, &appointment, query, id)); err != nil {
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment) (err error) {
	defer r.track("appointment_update")(&err)

	query := `
		UPDATE appointments SET
			appointment_date = :appointment_date,
			treatment_id = :treatment_id,
			notes = :notes,
			status = :status,
			updated_at = :updated_at
		WHERE id = :id
	`
	res, err := r.conn(ctx).NamedExecContext(ctx, query, appointment)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", translate(err))
	}
	return requireRow(res)
}

func (r *appointmentRepository) List(ctx context.Context, q repository.AppointmentQuery) (_ []*model.Appointment, err error) {
	defer r.track("appointment_list")(&err)

	where, args := appointmentWhere(q)
	query := `SELECT ` + appointmentColumns + ` FROM appointments` + whereClause(where) +
		` ORDER BY appointment_date, id`

	appointments := make([]*model.Appointment, 0)
	if err = r.conn(ctx).SelectContext(ctx, &appointments, r.conn(ctx).Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) Count(ctx context.Context, q repository.AppointmentQuery) (n int, err error) {
	defer r.track("appointment_count")(&err)

	where, args := appointmentWhere(q)
	query := `SELECT COUNT(*) FROM appointments` + whereClause(where)
	if err = r.conn(ctx).GetContext(ctx, &n, r.conn(ctx).Rebind(query), args...); err != nil {
		return 0, fmt.Errorf("failed to count appointments: %w", err)
	}
	return n, nil
}

func appointmentWhere(q repository.AppointmentQuery) ([]string, []interface{}) {
	var (
		where []string
		args  []interface{}
	)
	if q.DoctorID != nil {
		where = append(where, "doctor_id = ?")
		args = append(args, *q.DoctorID)
	}
	if q.PatientID != nil {
		where = append(where, "patient_id = ?")
		args = append(args, *q.PatientID)
	}
	if q.InitialAppointmentID != nil {
		where = append(where, "initial_appointment_id = ?")
		args = append(args, *q.InitialAppointmentID)
	}
	if q.Type != "" {
		where = append(where, "appointment_type = ?")
		args = append(args, q.Type)
	}
	if q.Status != "" {
		where = append(where, "status = ?")
		args = append(args, q.Status)
	}
	if q.Day != "" {
		where = append(where, "TO_CHAR(appointment_date AT TIME ZONE 'UTC', 'YYYY-MM-DD') = ?")
		args = append(args, q.Day)
	}
	return where, args
}
