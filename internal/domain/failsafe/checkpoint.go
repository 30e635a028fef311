package failsafe

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrRollbackExpired   = errors.New("rollback window has expired")
	ErrNoCheckpoint      = errors.New("no checkpoint exists for this transition")
	ErrAlreadyRolledBack = errors.New("transition was already rolled back")
)

// CapturedItem is the item's rental-eligibility state at checkpoint time.
type CapturedItem struct {
	ItemID         uuid.UUID `json:"item_id"`
	RentalEligible bool      `json:"rental_eligible"`
	Version        int64     `json:"version"`
}

// CapturedBooking is one affected booking's state at checkpoint time.
// ItemID is recorded so a transferred booking can be moved back.
type CapturedBooking struct {
	BookingID uuid.UUID `json:"booking_id"`
	ItemID    uuid.UUID `json:"item_id"`
	Status    string    `json:"status"`
	Version   int64     `json:"version"`
}

// Checkpoint is the write-once snapshot taken inside the commit transaction,
// and the sole source of truth for rollback. It is never updated.
type Checkpoint struct {
	id               uuid.UUID
	transitionID     uuid.UUID
	item             CapturedItem
	bookings         []CapturedBooking
	createdAt        time.Time
	rollbackDeadline time.Time
}

func NewCheckpoint(
	transitionID uuid.UUID,
	item CapturedItem,
	bookings []CapturedBooking,
	now time.Time,
	window time.Duration,
) *Checkpoint {
	return &Checkpoint{
		id:               uuid.New(),
		transitionID:     transitionID,
		item:             item,
		bookings:         bookings,
		createdAt:        now,
		rollbackDeadline: now.Add(window),
	}
}

func ReconstructCheckpoint(
	id, transitionID uuid.UUID,
	item CapturedItem,
	bookings []CapturedBooking,
	createdAt, rollbackDeadline time.Time,
) *Checkpoint {
	return &Checkpoint{
		id:               id,
		transitionID:     transitionID,
		item:             item,
		bookings:         bookings,
		createdAt:        createdAt,
		rollbackDeadline: rollbackDeadline,
	}
}

func (c *Checkpoint) ID() uuid.UUID               { return c.id }
func (c *Checkpoint) TransitionID() uuid.UUID     { return c.transitionID }
func (c *Checkpoint) Item() CapturedItem          { return c.item }
func (c *Checkpoint) Bookings() []CapturedBooking { return c.bookings }
func (c *Checkpoint) CreatedAt() time.Time        { return c.createdAt }
func (c *Checkpoint) RollbackDeadline() time.Time { return c.rollbackDeadline }

// Expired reports whether the rollback window has closed.
func (c *Checkpoint) Expired(now time.Time) bool {
	return now.After(c.rollbackDeadline)
}
