package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Amanev2005/SmartParkingSystem/internal/domain"
	"github.com/Amanev2005/SmartParkingSystem/internal/repository"
)

type pgSlotRepository struct {
	db *sql.DB
}

func NewPgSlotRepository(db *sql.DB) repository.SlotRepository {
	return &pgSlotRepository{db: db}
}

func (r *pgSlotRepository) EnsureInventory(ctx context.Context, count int) error {
	query := `INSERT INTO parking_slots (number, status, plate, updated_at)
	           SELECT n, 'free', NULL, CURRENT_TIMESTAMP
	           FROM generate_series(1, $1) AS n
	           ON CONFLICT (number) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, count); err != nil {
		return fmt.Errorf("SlotRepository.EnsureInventory: %w", err)
	}
	return nil
}

func (r *pgSlotRepository) FindAll(ctx context.Context) ([]domain.Slot, error) {
	query := `SELECT number, status, plate, updated_at FROM parking_slots ORDER BY number`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("SlotRepository.FindAll: %w", err)
	}
	defer rows.Close()

	var slots []domain.Slot
	for rows.Next() {
		var slot domain.Slot
		if err := rows.Scan(&slot.Number, &slot.Status, &slot.Plate, &slot.UpdatedAt); err != nil {
			return nil, fmt.Errorf("SlotRepository.FindAll (scanning row): %w", err)
		}
		slot.UpdatedAt = slot.UpdatedAt.In(time.UTC)
		slots = append(slots, slot)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("SlotRepository.FindAll (rows error): %w", err)
	}
	return slots, nil
}

func (r *pgSlotRepository) FindByNumber(ctx context.Context, number int) (*domain.Slot, error) {
	slot := &domain.Slot{}
	query := `SELECT number, status, plate, updated_at FROM parking_slots WHERE number = $1`

	err := r.db.QueryRowContext(ctx, query, number).Scan(&slot.Number, &slot.Status, &slot.Plate, &slot.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("SlotRepository.FindByNumber: %w", err)
	}
	slot.UpdatedAt = slot.UpdatedAt.In(time.UTC)
	return slot, nil
}

func (r *pgSlotRepository) UpdateStatus(ctx context.Context, number int, status domain.SlotStatus, plate *string, at time.Time) error {
	query := `UPDATE parking_slots SET status = $1, plate = $2, updated_at = $3 WHERE number = $4`

	var plateVal sql.NullString
	if plate != nil {
		plateVal = sql.NullString{String: *plate, Valid: true}
	}

	res, err := r.db.ExecContext(ctx, query, status, plateVal, at, number)
	if err != nil {
		return fmt.Errorf("SlotRepository.UpdateStatus: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
