package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Amanev2005/SmartParkingSystem/internal/domain"
	"github.com/Amanev2005/SmartParkingSystem/internal/repository"
	"github.com/jackc/pgx/v5/pgconn"
)

type pgSessionRepository struct {
	db *sql.DB
}

func NewPgSessionRepository(db *sql.DB) repository.SessionRepository {
	return &pgSessionRepository{db: db}
}

const sessionColumns = `id, plate, slot_number, entry_time, exit_time, duration_minutes,
	                 charge, status, payment_status, pin, created_at, updated_at`

func (r *pgSessionRepository) Create(ctx context.Context, session *domain.VehicleSession) (*domain.VehicleSession, error) {
	query := `INSERT INTO vehicle_sessions
	           (plate, slot_number, entry_time, status, payment_status, created_at, updated_at)
	           VALUES ($1, $2, $3, $4, $5, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	           RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		session.Plate, session.SlotNumber, session.EntryTime, session.Status, session.PaymentStatus,
	).Scan(&session.ID, &session.CreatedAt, &session.UpdatedAt)

	if err != nil {
		// The partial unique index on (plate) WHERE status = 'PARKED'
		// backs the one-session-per-plate invariant at the store level too.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, fmt.Errorf("%w: plate %s already has a parked session", repository.ErrDuplicateEntry, session.Plate)
		}
		return nil, fmt.Errorf("SessionRepository.Create: %w", err)
	}
	session.CreatedAt = session.CreatedAt.In(time.UTC)
	session.UpdatedAt = session.UpdatedAt.In(time.UTC)
	return session, nil
}

func (r *pgSessionRepository) FindByID(ctx context.Context, id int64) (*domain.VehicleSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM vehicle_sessions WHERE id = $1`

	session, err := r.scanOne(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("SessionRepository.FindByID: %w", err)
	}
	return session, nil
}

func (r *pgSessionRepository) FindActiveByPlate(ctx context.Context, plate string) (*domain.VehicleSession, error) {
	query := `SELECT ` + sessionColumns + `
	           FROM vehicle_sessions
	           WHERE plate = $1 AND status = $2
	           ORDER BY entry_time DESC LIMIT 1`

	session, err := r.scanOne(r.db.QueryRowContext(ctx, query, plate, domain.SessionParked))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNoActiveSession
		}
		return nil, fmt.Errorf("SessionRepository.FindActiveByPlate: %w", err)
	}
	return session, nil
}

func (r *pgSessionRepository) FindAllActive(ctx context.Context) ([]domain.VehicleSession, error) {
	query := `SELECT ` + sessionColumns + `
	           FROM vehicle_sessions WHERE status = $1 ORDER BY entry_time DESC`
	return r.queryMany(ctx, "FindAllActive", query, domain.SessionParked)
}

func (r *pgSessionRepository) FindAll(ctx context.Context) ([]domain.VehicleSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM vehicle_sessions ORDER BY entry_time DESC`
	return r.queryMany(ctx, "FindAll", query)
}

func (r *pgSessionRepository) Update(ctx context.Context, session *domain.VehicleSession) (*domain.VehicleSession, error) {
	query := `UPDATE vehicle_sessions
	           SET exit_time = $1, duration_minutes = $2, charge = $3,
	               status = $4, payment_status = $5, pin = $6,
	               updated_at = CURRENT_TIMESTAMP
	           WHERE id = $7
	           RETURNING updated_at`

	var exitTimeVal sql.NullTime
	if session.ExitTime.Valid {
		exitTimeVal = sql.NullTime{Time: session.ExitTime.Time, Valid: true}
	}
	var durationVal sql.NullInt64
	if session.DurationMinutes.Valid {
		durationVal = sql.NullInt64{Int64: session.DurationMinutes.Int64, Valid: true}
	}
	var chargeVal sql.NullFloat64
	if session.Charge.Valid {
		chargeVal = sql.NullFloat64{Float64: session.Charge.Float64, Valid: true}
	}
	var pinVal sql.NullString
	if session.PIN.Valid {
		pinVal = sql.NullString{String: session.PIN.String, Valid: true}
	}

	err := r.db.QueryRowContext(ctx, query,
		exitTimeVal, durationVal, chargeVal, session.Status, session.PaymentStatus, pinVal, session.ID,
	).Scan(&session.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("SessionRepository.Update: %w", err)
	}
	session.UpdatedAt = session.UpdatedAt.In(time.UTC)
	return session, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *pgSessionRepository) scanOne(row rowScanner) (*domain.VehicleSession, error) {
	session := &domain.VehicleSession{}
	err := row.Scan(
		&session.ID, &session.Plate, &session.SlotNumber, &session.EntryTime, &session.ExitTime,
		&session.DurationMinutes, &session.Charge, &session.Status, &session.PaymentStatus,
		&session.PIN, &session.CreatedAt, &session.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	session.EntryTime = session.EntryTime.In(time.UTC)
	if session.ExitTime.Valid {
		session.ExitTime.Time = session.ExitTime.Time.In(time.UTC)
	}
	session.CreatedAt = session.CreatedAt.In(time.UTC)
	session.UpdatedAt = session.UpdatedAt.In(time.UTC)
	return session, nil
}

func (r *pgSessionRepository) queryMany(ctx context.Context, op, query string, args ...any) ([]domain.VehicleSession, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("SessionRepository.%s: %w", op, err)
	}
	defer rows.Close()

	var sessions []domain.VehicleSession
	for rows.Next() {
		session, err := r.scanOne(rows)
		if err != nil {
			return nil, fmt.Errorf("SessionRepository.%s (scanning row): %w", op, err)
		}
		sessions = append(sessions, *session)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("SessionRepository.%s (rows error): %w", op, err)
	}
	return sessions, nil
}
