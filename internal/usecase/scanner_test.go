//go:build unit

package usecase_test

import (
	"context"
	"testing"
	"time"

	"rentaldesk/internal/domain/conflict"
	"rentaldesk/internal/usecase"
	"rentaldesk/internal/usecase/shared"
	"rentaldesk/tests/common/stub"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScan(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	day := 24 * time.Hour
	scanner := usecase.NewConflictScanner()
	transitionID := uuid.New()
	itemID := uuid.New()

	findByType := func(conflicts []*conflict.Conflict, ctype conflict.Type) *conflict.Conflict {
		for _, c := range conflicts {
			if c.Type() == ctype {
				return c
			}
		}
		return nil
	}

	t.Run("clean item yields no conflicts", func(t *testing.T) {
		tx := stub.NewTx()
		conflicts, err := scanner.Scan(context.Background(), tx, transitionID, itemID, now)
		require.NoError(t, err)
		assert.Empty(t, conflicts)
	})

	t.Run("late rental is critical with zero impact", func(t *testing.T) {
		tx := stub.NewTx()
		rentalID := uuid.New()
		tx.InventoryRepo.Rentals = []shared.RentalSnapshot{{
			ID: rentalID, ItemID: itemID, CustomerID: uuid.New(),
			StartedAt: now.Add(-10 * day), DueAt: now.Add(-2 * day), DailyRateCents: 3000,
		}}

		conflicts, err := scanner.Scan(context.Background(), tx, transitionID, itemID, now)
		require.NoError(t, err)
		require.Len(t, conflicts, 1)

		c := conflicts[0]
		assert.Equal(t, conflict.TypeLateRental, c.Type())
		assert.Equal(t, conflict.SeverityCritical, c.Severity())
		assert.Equal(t, rentalID, c.EntityID())
		assert.Zero(t, c.ImpactCents())
		assert.Equal(t, now.Add(-2*day), c.ClearsAt())
	})

	t.Run("active rental impact is remaining full days times rate", func(t *testing.T) {
		tx := stub.NewTx()
		tx.InventoryRepo.Rentals = []shared.RentalSnapshot{{
			ID: uuid.New(), ItemID: itemID, CustomerID: uuid.New(),
			StartedAt: now.Add(-day), DueAt: now.Add(4*day + 12*time.Hour), DailyRateCents: 2000,
		}}

		conflicts, err := scanner.Scan(context.Background(), tx, transitionID, itemID, now)
		require.NoError(t, err)
		require.Len(t, conflicts, 1)

		c := conflicts[0]
		assert.Equal(t, conflict.TypeActiveRental, c.Type())
		assert.Equal(t, conflict.SeverityHigh, c.Severity())
		assert.Equal(t, int64(5*2000), c.ImpactCents())
	})

	t.Run("returned rental is not a conflict", func(t *testing.T) {
		tx := stub.NewTx()
		returned := now.Add(-day)
		tx.InventoryRepo.Rentals = []shared.RentalSnapshot{{
			ID: uuid.New(), ItemID: itemID, CustomerID: uuid.New(),
			StartedAt: now.Add(-10 * day), DueAt: now.Add(5 * day),
			DailyRateCents: 2000, ReturnedAt: &returned,
		}}

		conflicts, err := scanner.Scan(context.Background(), tx, transitionID, itemID, now)
		require.NoError(t, err)
		assert.Empty(t, conflicts)
	})

	t.Run("bookings classify by status and proximity", func(t *testing.T) {
		tx := stub.NewTx()
		confirmed := &shared.BookingSnapshot{
			ID: uuid.New(), ItemID: itemID, CustomerID: uuid.New(),
			StartsAt: now.Add(10 * day), EndsAt: now.Add(12 * day),
			Status: shared.BookingStatusConfirmed, ValueCents: 15_000, Version: 1,
		}
		pending := &shared.BookingSnapshot{
			ID: uuid.New(), ItemID: itemID, CustomerID: uuid.New(),
			StartsAt: now.Add(2 * day), EndsAt: now.Add(3 * day),
			Status: shared.BookingStatusPending, ValueCents: 8_000, Version: 1,
		}
		tx.BookingRepo.Bookings[confirmed.ID] = confirmed
		tx.BookingRepo.Bookings[pending.ID] = pending

		conflicts, err := scanner.Scan(context.Background(), tx, transitionID, itemID, now)
		require.NoError(t, err)
		require.Len(t, conflicts, 2)

		fb := findByType(conflicts, conflict.TypeFutureBooking)
		require.NotNil(t, fb)
		assert.Equal(t, conflict.SeverityMedium, fb.Severity())
		assert.Equal(t, int64(15_000), fb.ImpactCents())
		assert.Equal(t, confirmed.EndsAt, fb.ClearsAt())

		pb := findByType(conflicts, conflict.TypePendingBooking)
		require.NotNil(t, pb)
		assert.Equal(t, conflict.SeverityCritical, pb.Severity())
	})

	t.Run("booking already underway is skipped", func(t *testing.T) {
		tx := stub.NewTx()
		started := &shared.BookingSnapshot{
			ID: uuid.New(), ItemID: itemID, CustomerID: uuid.New(),
			StartsAt: now.Add(-time.Hour), EndsAt: now.Add(2 * day),
			Status: shared.BookingStatusConfirmed, Version: 1,
		}
		tx.BookingRepo.Bookings[started.ID] = started

		conflicts, err := scanner.Scan(context.Background(), tx, transitionID, itemID, now)
		require.NoError(t, err)
		assert.Empty(t, conflicts)
	})

	t.Run("open maintenance hold never self-clears", func(t *testing.T) {
		tx := stub.NewTx()
		holdID := uuid.New()
		tx.InventoryRepo.Holds = []shared.MaintenanceHoldSnapshot{{
			ID: holdID, ItemID: itemID, Reason: "cracked housing", OpenedAt: now.Add(-day),
		}}

		conflicts, err := scanner.Scan(context.Background(), tx, transitionID, itemID, now)
		require.NoError(t, err)
		require.Len(t, conflicts, 1)

		c := conflicts[0]
		assert.Equal(t, conflict.TypeInventoryIssue, c.Type())
		assert.Equal(t, conflict.SeverityMedium, c.Severity())
		assert.Nil(t, c.CustomerID())
		assert.True(t, c.ClearsAt().IsZero())
	})
}

// conflictKey projects the fields that must be stable across repeated scans.
// Conflict ids and detection timestamps are fresh each run.
type conflictKey struct {
	Type        conflict.Type
	Severity    conflict.Severity
	EntityID    uuid.UUID
	CustomerID  *uuid.UUID
	ImpactCents int64
	ClearsAt    time.Time
}

func TestScanIdempotence(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	day := 24 * time.Hour
	scanner := usecase.NewConflictScanner()
	itemID := uuid.New()

	tx := stub.NewTx()
	customerA := uuid.New()
	customerB := uuid.New()
	tx.InventoryRepo.Rentals = []shared.RentalSnapshot{{
		ID: uuid.New(), ItemID: itemID, CustomerID: customerA,
		StartedAt: now.Add(-2 * day), DueAt: now.Add(4 * day), DailyRateCents: 2000,
	}}
	bookingID := uuid.New()
	tx.BookingRepo.Bookings[bookingID] = &shared.BookingSnapshot{
		ID: bookingID, ItemID: itemID, CustomerID: customerB,
		StartsAt: now.Add(10 * day), EndsAt: now.Add(12 * day),
		Status: shared.BookingStatusConfirmed, ValueCents: 90_000, Version: 1,
	}
	tx.InventoryRepo.Holds = []shared.MaintenanceHoldSnapshot{{
		ID: uuid.New(), ItemID: itemID, Reason: "hydraulic leak",
	}}

	project := func(conflicts []*conflict.Conflict) []conflictKey {
		keys := make([]conflictKey, 0, len(conflicts))
		for _, c := range conflicts {
			keys = append(keys, conflictKey{
				Type:        c.Type(),
				Severity:    c.Severity(),
				EntityID:    c.EntityID(),
				CustomerID:  c.CustomerID(),
				ImpactCents: c.ImpactCents(),
				ClearsAt:    c.ClearsAt(),
			})
		}
		return keys
	}

	first, err := scanner.Scan(context.Background(), tx, uuid.New(), itemID, now)
	require.NoError(t, err)
	require.Len(t, first, 3)

	second, err := scanner.Scan(context.Background(), tx, uuid.New(), itemID, now)
	require.NoError(t, err)

	sortKeys := cmpopts.SortSlices(func(a, b conflictKey) bool {
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		return a.EntityID.String() < b.EntityID.String()
	})
	if diff := cmp.Diff(project(first), project(second), sortKeys); diff != "" {
		t.Errorf("conflict set not stable across scans (-first +second):\n%s", diff)
	}
}
