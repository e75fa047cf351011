package postgres

import (
	"context"
	"fmt"
	"hash/fnv"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository"
)

const patientColumns = `id, first_name, last_name, date_of_birth, gender, contact_number,
	address, assigned_doctor_id, queue_number, is_seen, created_at, updated_at`

// patientDay is the UTC calendar day a patient registered on.
const patientDay = `TO_CHAR(created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD')`

type patientRepository struct {
	BaseRepository
}

func NewPatientRepository(base BaseRepository) repository.PatientRepository {
	return &patientRepository{base}
}

// queueLockKey derives the advisory lock that serialises queue numbering for
// one day.
func queueLockKey(day string) int64 {
	h := fnv.New64a()
	h.Write([]byte("patient-queue:" + day))
	return int64(h.Sum64())
}

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) (err error) {
	defer r.track("patient_create")(&err)

	if patient.CreatedAt.IsZero() {
		patient.CreatedAt = utcNow()
	}
	if patient.UpdatedAt.IsZero() {
		patient.UpdatedAt = patient.CreatedAt
	}

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if patient.QueueNumber == 0 {
			day := model.Day(patient.CreatedAt)
			if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, queueLockKey(day)); err != nil {
				return fmt.Errorf("failed to lock queue: %w", err)
			}
			query := `SELECT COALESCE(MAX(queue_number), 0) + 1 FROM patients WHERE ` + patientDay + ` = $1`
			if err := tx.GetContext(ctx, &patient.QueueNumber, query, day); err != nil {
				return fmt.Errorf("failed to assign queue number: %w", err)
			}
		}

		if patient.ID > 0 {
			query := `
				INSERT INTO patients (` + patientColumns + `)
				VALUES (:id, :first_name, :last_name, :date_of_birth, :gender, :contact_number,
					:address, :assigned_doctor_id, :queue_number, :is_seen, :created_at, :updated_at)
			`
			if _, err := tx.NamedExecContext(ctx, query, patient); err != nil {
				return translate(err)
			}
			return syncSequence(ctx, tx, "patients")
		}

		query := `
			INSERT INTO patients (first_name, last_name, date_of_birth, gender, contact_number,
				address, assigned_doctor_id, queue_number, is_seen, created_at, updated_at)
			VALUES (:first_name, :last_name, :date_of_birth, :gender, :contact_number,
				:address, :assigned_doctor_id, :queue_number, :is_seen, :created_at, :updated_at)
			RETURNING id
		`
		return insertReturningID(ctx, tx, query, patient, &patient.ID)
	})
}

func (r *patientRepository) Get(ctx context.Context, id int64) (_ *model.Patient, err error) {
	defer r.track("patient_get")(&err)

	var patient model.Patient
	query := `SELECT ` + patientColumns + ` FROM patients WHERE id = $1`
	if err = translate(r.conn(ctx).GetContext(ctx, &patient, query, id)); err != nil {
		return nil, err
	}
	return &patient, nil
}

func (r *patientRepository) Update(ctx context.Context, patient *model.Patient) (err error) {
	defer r.track("patient_update")(&err)

	query := `
		UPDATE patients SET
			first_name = :first_name,
			last_name = :last_name,
			date_of_birth = :date_of_birth,
			gender = :gender,
			contact_number = :contact_number,
			address = :address,
			assigned_doctor_id = :assigned_doctor_id,
			is_seen = :is_seen,
			updated_at = :updated_at
		WHERE id = :id
	`
	res, err := r.conn(ctx).NamedExecContext(ctx, query, patient)
	if err != nil {
		return fmt.Errorf("failed to update patient: %w", translate(err))
	}
	return requireRow(res)
}

func (r *patientRepository) List(ctx context.Context, filter model.PatientFilter) (_ []*model.Patient, err error) {
	defer r.track("patient_list")(&err)

	var (
		where []string
		args  []interface{}
	)
	if filter.Day != "" {
		where = append(where, patientDay+" = ?")
		args = append(args, filter.Day)
	}
	if filter.UnseenOnly {
		where = append(where, "NOT is_seen")
	}
	if filter.Search != "" {
		where = append(where, "(TRIM(first_name || ' ' || last_name) ILIKE ? OR contact_number LIKE ?)")
		like := "%" + escapeLike(filter.Search) + "%"
		args = append(args, like, like)
	}

	query := `SELECT ` + patientColumns + ` FROM patients` + whereClause(where) + ` ORDER BY id`

	patients := make([]*model.Patient, 0)
	if err = r.conn(ctx).SelectContext(ctx, &patients, r.conn(ctx).Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}

// insertReturningID runs a named INSERT ... RETURNING id and stores the id.
func insertReturningID(ctx context.Context, tx *sqlx.Tx, query string, arg interface{}, id *int64) error {
	rows, err := sqlx.NamedQueryContext(ctx, tx, query, arg)
	if err != nil {
		return translate(err)
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return err
		}
		return fmt.Errorf("insert returned no id")
	}
	return rows.Scan(id)
}
