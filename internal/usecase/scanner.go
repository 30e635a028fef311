package usecase

import (
	"context"
	"math"
	"time"

	"rentaldesk/internal/domain/conflict"
	"rentaldesk/internal/usecase/shared"

	"github.com/google/uuid"
)

// ConflictScanner detects everything standing in the way of selling an item.
// Scanning is read-only and idempotent: two scans with no intervening writes
// report the same conflict set, up to ordering and detection timestamps.
type ConflictScanner interface {
	Scan(ctx context.Context, tx shared.Tx, transitionID, itemID uuid.UUID, now time.Time) ([]*conflict.Conflict, error)
}

type conflictScannerImpl struct{}

func NewConflictScanner() ConflictScanner {
	return &conflictScannerImpl{}
}

func (s *conflictScannerImpl) Scan(ctx context.Context, tx shared.Tx, transitionID, itemID uuid.UUID, now time.Time) ([]*conflict.Conflict, error) {
	var conflicts []*conflict.Conflict

	rentals, err := tx.Inventory().OpenRentalsByItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	for _, r := range rentals {
		c, err := classifyRental(transitionID, r, now)
		if err != nil {
			return nil, err
		}
		conflicts = append(conflicts, c)
	}

	bookings, err := tx.Bookings().FutureBookingsByItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	for _, b := range bookings {
		if !b.StartsAt.After(now) {
			continue
		}
		c, err := classifyBooking(transitionID, b, now)
		if err != nil {
			return nil, err
		}
		if c != nil {
			conflicts = append(conflicts, c)
		}
	}

	holds, err := tx.Inventory().OpenHoldsByItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	for _, h := range holds {
		customerID := (*uuid.UUID)(nil)
		c, err := conflict.NewConflict(
			transitionID, conflict.TypeInventoryIssue, conflict.SeverityMedium,
			h.ID, customerID, 0, now, time.Time{},
		)
		if err != nil {
			return nil, err
		}
		conflicts = append(conflicts, c)
	}

	return conflicts, nil
}

func classifyRental(transitionID uuid.UUID, r shared.RentalSnapshot, now time.Time) (*conflict.Conflict, error) {
	customerID := r.CustomerID
	if now.After(r.DueAt) {
		// A late rental has no contracted revenue left to lose, but it is the
		// worst obstacle there is: the item is not even on the shelf.
		return conflict.NewConflict(
			transitionID, conflict.TypeLateRental, conflict.SeverityCritical,
			r.ID, &customerID, 0, now, r.DueAt,
		)
	}

	severity := conflict.ActiveRentalSeverity(now, r.DueAt)
	return conflict.NewConflict(
		transitionID, conflict.TypeActiveRental, severity,
		r.ID, &customerID, remainingRevenueCents(r, now), now, r.DueAt,
	)
}

func classifyBooking(transitionID uuid.UUID, b shared.BookingSnapshot, now time.Time) (*conflict.Conflict, error) {
	var ctype conflict.Type
	switch b.Status {
	case shared.BookingStatusConfirmed:
		ctype = conflict.TypeFutureBooking
	case shared.BookingStatusPending:
		ctype = conflict.TypePendingBooking
	default:
		return nil, nil
	}

	customerID := b.CustomerID
	return conflict.NewConflict(
		transitionID, ctype, conflict.BookingSeverity(now, b.StartsAt),
		b.ID, &customerID, b.ValueCents, now, b.EndsAt,
	)
}

// remainingRevenueCents is the revenue still contracted on an open rental:
// full days until the due date times the daily rate.
func remainingRevenueCents(r shared.RentalSnapshot, now time.Time) int64 {
	days := math.Ceil(r.DueAt.Sub(now).Hours() / 24)
	if days < 0 {
		days = 0
	}
	return int64(days) * r.DailyRateCents
}
