package postgresql

import (
	"database/sql"
	"fmt"
)

// Migrate creates the schema when it does not exist yet. The partial unique
// index enforces at most one PARKED session per plate.
func Migrate(db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS parking_slots (
			number     INTEGER PRIMARY KEY,
			status     VARCHAR(20) NOT NULL DEFAULT 'free',
			plate      VARCHAR(32),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS vehicle_sessions (
			id               BIGSERIAL PRIMARY KEY,
			plate            VARCHAR(32) NOT NULL,
			slot_number      INTEGER NOT NULL REFERENCES parking_slots(number),
			entry_time       TIMESTAMPTZ NOT NULL,
			exit_time        TIMESTAMPTZ,
			duration_minutes BIGINT,
			charge           DOUBLE PRECISION,
			status           VARCHAR(10) NOT NULL,
			payment_status   VARCHAR(10) NOT NULL DEFAULT 'pending',
			pin              VARCHAR(6),
			created_at       TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at       TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_vehicle_sessions_plate ON vehicle_sessions (plate)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_vehicle_sessions_one_parked
			ON vehicle_sessions (plate) WHERE status = 'PARKED'`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("running migration: %w", err)
		}
	}
	return nil
}
