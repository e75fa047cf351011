package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGSERIAL PRIMARY KEY,
		username      TEXT NOT NULL,
		first_name    TEXT NOT NULL,
		last_name     TEXT NOT NULL,
		email         TEXT NOT NULL DEFAULT '',
		role          TEXT NOT NULL CHECK (role IN ('admin', 'doctor', 'receptionist')),
		specialty     TEXT,
		is_active     BOOLEAN NOT NULL DEFAULT TRUE,
		password_hash TEXT NOT NULL DEFAULT '',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_username_key ON users (LOWER(username))`,
	`CREATE TABLE IF NOT EXISTS patients (
		id                 BIGSERIAL PRIMARY KEY,
		first_name         TEXT NOT NULL,
		last_name          TEXT NOT NULL,
		date_of_birth      TEXT,
		gender             TEXT NOT NULL CHECK (gender IN ('M', 'F')),
		contact_number     TEXT NOT NULL,
		address            TEXT NOT NULL DEFAULT '',
		assigned_doctor_id BIGINT REFERENCES users (id),
		queue_number       INT NOT NULL,
		is_seen            BOOLEAN NOT NULL DEFAULT FALSE,
		created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS patients_created_at_idx ON patients (created_at)`,
	`CREATE TABLE IF NOT EXISTS treatments (
		id                 BIGSERIAL PRIMARY KEY,
		patient_id         BIGINT NOT NULL REFERENCES patients (id),
		doctor_id          BIGINT NOT NULL REFERENCES users (id),
		appointment_id     BIGINT NOT NULL,
		notes              TEXT NOT NULL,
		prescription       TEXT,
		follow_up_required BOOLEAN NOT NULL DEFAULT FALSE,
		created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS appointments (
		id                     BIGSERIAL PRIMARY KEY,
		patient_id             BIGINT NOT NULL REFERENCES patients (id),
		doctor_id              BIGINT NOT NULL REFERENCES users (id),
		appointment_date       TIMESTAMPTZ NOT NULL,
		appointment_type       TEXT NOT NULL CHECK (appointment_type IN ('initial', 'follow_up')),
		initial_appointment_id BIGINT REFERENCES appointments (id),
		treatment_id           BIGINT,
		type_seq               INT NOT NULL DEFAULT 1,
		case_followup_seq      INT,
		notes                  TEXT NOT NULL DEFAULT '',
		status                 TEXT NOT NULL CHECK (status IN ('pending', 'completed', 'cancelled')),
		created_at             TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at             TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS appointments_doctor_idx ON appointments (doctor_id, appointment_date)`,
	`CREATE TABLE IF NOT EXISTS payments (
		id             BIGSERIAL PRIMARY KEY,
		patient_id     BIGINT NOT NULL REFERENCES patients (id),
		amount         BIGINT NOT NULL CHECK (amount > 0),
		payment_method TEXT NOT NULL CHECK (payment_method IN ('cash', 'chapa')),
		reference      TEXT NOT NULL DEFAULT '',
		status         TEXT NOT NULL CHECK (status IN ('pending', 'paid', 'failed')),
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS outbox_events (
		id           UUID PRIMARY KEY,
		event_type   TEXT NOT NULL,
		payload      JSONB NOT NULL,
		status       TEXT NOT NULL DEFAULT 'pending',
		attempts     INT NOT NULL DEFAULT 0,
		last_error   TEXT,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		processed_at TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS outbox_events_pending_idx ON outbox_events (created_at) WHERE status = 'pending'`,
}

// Migrate creates the tables when they do not exist yet.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
