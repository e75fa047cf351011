package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository"
)

const paymentColumns = `id, patient_id, amount, payment_method, reference, status, created_at`

type paymentRepository struct {
	BaseRepository
}

func NewPaymentRepository(base BaseRepository) repository.PaymentRepository {
	return &paymentRepository{base}
}

func (r *paymentRepository) Create(ctx context.Context, payment *model.Payment) (err error) {
	defer r.track("payment_create")(&err)

	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = utcNow()
	}

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if payment.ID > 0 {
			query := `
				INSERT INTO payments (` + paymentColumns + `)
				VALUES (:id, :patient_id, :amount, :payment_method, :reference, :status, :created_at)
			`
			if _, err := tx.NamedExecContext(ctx, query, payment); err != nil {
				return translate(err)
			}
			return syncSequence(ctx, tx, "payments")
		}

		query := `
			INSERT INTO payments (patient_id, amount, payment_method, reference, status, created_at)
			VALUES (:patient_id, :amount, :payment_method, :reference, :status, :created_at)
			RETURNING id
		`
		return insertReturningID(ctx, tx, query, payment, &payment.ID)
	})
}

func (r *paymentRepository) Get(ctx context.Context, id int64) (_ *model.Payment, err error) {
	defer r.track("payment_get")(&err)

	var payment model.Payment
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	if err = translate(r.conn(ctx).GetContext(ctx, &payment, query, id)); err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) Update(ctx context.Context, payment *model.Payment) (err error) {
	defer r.track("payment_update")(&err)

	query := `
		UPDATE payments SET
			amount = :amount,
			reference = :reference,
			status = :status
		WHERE id = :id
	`
	res, err := r.conn(ctx).NamedExecContext(ctx, query, payment)
	if err != nil {
		return fmt.Errorf("failed to update payment: %w", translate(err))
	}
	return requireRow(res)
}

func (r *paymentRepository) List(ctx context.Context, filter model.PaymentFilter) (_ []*model.Payment, err error) {
	defer r.track("payment_list")(&err)

	var (
		where []string
		args  []interface{}
	)
	if filter.PatientID != nil {
		where = append(where, "patient_id = ?")
		args = append(args, *filter.PatientID)
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.Day != "" {
		where = append(where, "TO_CHAR(created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') = ?")
		args = append(args, filter.Day)
	}

	query := `SELECT ` + paymentColumns + ` FROM payments` + whereClause(where) + ` ORDER BY id`

	payments := make([]*model.Payment, 0)
	if err = r.conn(ctx).SelectContext(ctx, &payments, r.conn(ctx).Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}
