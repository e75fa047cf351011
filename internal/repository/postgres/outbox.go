package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository"
)

type outboxRepository struct {
	BaseRepository
}

func NewOutboxRepository(base BaseRepository) repository.OutboxRepository {
	return &outboxRepository{base}
}

func (r *outboxRepository) Create(ctx context.Context, event *model.OutboxEvent) (err error) {
	defer r.track("outbox_create")(&err)

	if event == nil {
		return fmt.Errorf("event cannot be nil")
	}
	if event.Payload == nil {
		return fmt.Errorf("event payload cannot be nil")
	}
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = utcNow()
	}
	if event.Status == "" {
		event.Status = model.OutboxStatusPending
	}

	query := `
		INSERT INTO outbox_events (id, event_type, payload, status, attempts, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = r.conn(ctx).ExecContext(ctx, query,
		event.ID,
		event.EventType,
		[]byte(event.Payload),
		event.Status,
		event.Attempts,
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create outbox event: %w", err)
	}
	return nil
}

func (r *outboxRepository) GetPendingEvents(ctx context.Context, limit int) (_ []*model.OutboxEvent, err error) {
	defer r.track("outbox_get_pending")(&err)

	query := `
		SELECT id, event_type, payload, status, attempts, last_error, created_at, processed_at
		FROM outbox_events
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT $2
	`

	events := make([]*model.OutboxEvent, 0)
	if err = r.conn(ctx).SelectContext(ctx, &events, query, string(model.OutboxStatusPending), limit); err != nil {
		return nil, fmt.Errorf("failed to get pending events: %w", err)
	}
	return events, nil
}

func (r *outboxRepository) MarkProcessed(ctx context.Context, id uuid.UUID) (err error) {
	defer r.track("outbox_mark_processed")(&err)

	query := `
		UPDATE outbox_events
		SET status = $1, attempts = attempts + 1, last_error = NULL, processed_at = $2
		WHERE id = $3
	`
	res, err := r.conn(ctx).ExecContext(ctx, query, string(model.OutboxStatusProcessed), utcNow(), id)
	if err != nil {
		return fmt.Errorf("failed to mark event processed: %w", err)
	}
	return requireRow(res)
}

func (r *outboxRepository) MarkFailed(ctx context.Context, id uuid.UUID, reason string, final bool) (err error) {
	defer r.track("outbox_mark_failed")(&err)

	query := `
		UPDATE outbox_events
		SET attempts = attempts + 1,
			last_error = $1,
			status = CASE WHEN $2 THEN $3 ELSE status END
		WHERE id = $4
	`
	res, err := r.conn(ctx).ExecContext(ctx, query, reason, final, string(model.OutboxStatusFailed), id)
	if err != nil {
		return fmt.Errorf("failed to mark event failed: %w", err)
	}
	return requireRow(res)
}

func (r *outboxRepository) DeleteProcessedBefore(ctx context.Context, before time.Time) (_ int64, err error) {
	defer r.track("outbox_delete_processed")(&err)

	query := `DELETE FROM outbox_events WHERE status = $1 AND processed_at < $2`
	res, err := r.conn(ctx).ExecContext(ctx, query, string(model.OutboxStatusProcessed), before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete processed events: %w", err)
	}
	return res.RowsAffected()
}
