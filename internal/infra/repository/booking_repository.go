package repository

import (
	"context"
	"log/slog"
	"time"

	"rentaldesk/internal/infra"
	"rentaldesk/internal/infra/db"
	"rentaldesk/internal/usecase/shared"

	"github.com/google/uuid"
)

type bookingRepository struct {
	db     db.DBTX
	logger *slog.Logger
}

func NewBookingRepository(dbtx db.DBTX) shared.BookingRepository {
	return &bookingRepository{db: dbtx, logger: slog.Default()}
}

const futureBookingsQuery = `
SELECT id, item_id, customer_id, starts_at, ends_at, status, value_cents, version
FROM bookings
WHERE item_id = $1 AND status IN ($2, $3)
ORDER BY starts_at`

func (r *bookingRepository) FutureBookingsByItem(ctx context.Context, itemID uuid.UUID) ([]shared.BookingSnapshot, error) {
	rows, err := r.db.Query(ctx, futureBookingsQuery, itemID,
		shared.BookingStatusPending, shared.BookingStatusConfirmed)
	if err != nil {
		return nil, wrapDBErr(r.logger, "failed to find bookings", err)
	}
	defer rows.Close()

	var bookings []shared.BookingSnapshot
	for rows.Next() {
		var b shared.BookingSnapshot
		if err := rows.Scan(&b.ID, &b.ItemID, &b.CustomerID, &b.StartsAt, &b.EndsAt,
			&b.Status, &b.ValueCents, &b.Version); err != nil {
			return nil, wrapDBErr(r.logger, "failed to scan booking", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(r.logger, "failed to iterate bookings", err)
	}
	return bookings, nil
}

const findBookingForUpdateQuery = `
SELECT id, item_id, customer_id, starts_at, ends_at, status, value_cents, version
FROM bookings
WHERE id = $1
FOR UPDATE`

func (r *bookingRepository) BookingByIDForUpdate(ctx context.Context, id uuid.UUID) (*shared.BookingSnapshot, error) {
	var b shared.BookingSnapshot
	err := r.db.QueryRow(ctx, findBookingForUpdateQuery, id).Scan(
		&b.ID, &b.ItemID, &b.CustomerID, &b.StartsAt, &b.EndsAt,
		&b.Status, &b.ValueCents, &b.Version)
	if err != nil {
		return nil, wrapDBErr(r.logger, "failed to find booking", err)
	}
	return &b, nil
}

const updateBookingStatusQuery = `
UPDATE bookings
SET status = $2, version = version + 1, updated_at = now()
WHERE id = $1 AND version = $3`

func (r *bookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, expectedVersion int64) error {
	tag, err := r.db.Exec(ctx, updateBookingStatusQuery, id, status, expectedVersion)
	if err != nil {
		return wrapDBErr(r.logger, "failed to update booking status", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr(r.logger, infra.KindVersionConflict, "booking version mismatch", nil)
	}
	return nil
}

const reassignBookingQuery = `
UPDATE bookings
SET item_id = $2, version = version + 1, updated_at = now()
WHERE id = $1 AND version = $3`

func (r *bookingRepository) Reassign(ctx context.Context, id, newItemID uuid.UUID, expectedVersion int64) error {
	tag, err := r.db.Exec(ctx, reassignBookingQuery, id, newItemID, expectedVersion)
	if err != nil {
		return wrapDBErr(r.logger, "failed to reassign booking", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr(r.logger, infra.KindVersionConflict, "booking version mismatch", nil)
	}
	return nil
}

const restoreBookingQuery = `
UPDATE bookings
SET status = $2, item_id = $3, version = version + 1, updated_at = now()
WHERE id = $1 AND version = $4`

func (r *bookingRepository) Restore(ctx context.Context, id uuid.UUID, status string, itemID uuid.UUID, expectedVersion int64) error {
	tag, err := r.db.Exec(ctx, restoreBookingQuery, id, status, itemID, expectedVersion)
	if err != nil {
		return wrapDBErr(r.logger, "failed to restore booking", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr(r.logger, infra.KindVersionConflict, "booking version mismatch", nil)
	}
	return nil
}

const countOverlappingQuery = `
SELECT COUNT(*)
FROM bookings
WHERE item_id = $1 AND status IN ($4, $5) AND starts_at < $3 AND ends_at > $2`

func (r *bookingRepository) CountOverlapping(ctx context.Context, itemID uuid.UUID, startsAt, endsAt time.Time) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, countOverlappingQuery, itemID, startsAt, endsAt,
		shared.BookingStatusPending, shared.BookingStatusConfirmed).Scan(&count)
	if err != nil {
		return 0, wrapDBErr(r.logger, "failed to count overlapping bookings", err)
	}
	return count, nil
}
