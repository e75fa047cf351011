package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository"
)

const treatmentColumns = `id, patient_id, doctor_id, appointment_id, notes, prescription,
	follow_up_required, created_at`

type treatmentRepository struct {
	BaseRepository
}

func NewTreatmentRepository(base BaseRepository) repository.TreatmentRepository {
	return &treatmentRepository{base}
}

func (r *treatmentRepository) Create(ctx context.Context, treatment *model.Treatment) (err error) {
	defer r.track("treatment_create")(&err)

	if treatment.CreatedAt.IsZero() {
		treatment.CreatedAt = utcNow()
	}

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if treatment.ID > 0 {
			query := `
				INSERT INTO treatments (` + treatmentColumns + `)
				VALUES (:id, :patient_id, :doctor_id, :appointment_id, :notes, :prescription,
					:follow_up_required, :created_at)
			`
			if _, err := tx.NamedExecContext(ctx, query, treatment); err != nil {
				return translate(err)
			}
			return syncSequence(ctx, tx, "treatments")
		}

		query := `
			INSERT INTO treatments (patient_id, doctor_id, appointment_id, notes, prescription,
				follow_up_required, created_at)
			VALUES (:patient_id, :doctor_id, :appointment_id, :notes, :prescription,
				:follow_up_required, :created_at)
			RETURNING id
		`
		return insertReturningID(ctx, tx, query, treatment, &treatment.ID)
	})
}

func (r *treatmentRepository) Get(ctx context.Context, id int64) (_ *model.Treatment, err error) {
	defer r.track("treatment_get")(&err)

	var treatment model.Treatment
	query := `SELECT ` + treatmentColumns + ` FROM treatments WHERE id = $1`
	if err = translate(r.conn(ctx).GetContext(ctx, &treatment, query, id)); err != nil {
		return nil, err
	}
	return &treatment, nil
}

func (r *treatmentRepository) List(ctx context.Context, q repository.TreatmentQuery) (_ []*model.Treatment, err error) {
	defer r.track("treatment_list")(&err)

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

	query := `SELECT ` + treatmentColumns + ` FROM treatments` + whereClause(where) + ` ORDER BY id`

	treatments := make([]*model.Treatment, 0)
	if err = r.conn(ctx).SelectContext(ctx, &treatments, r.conn(ctx).Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list treatments: %w", err)
	}
	return treatments, nil
}
