package shared

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Booking statuses as the booking collaborator stores them.
const (
	BookingStatusPending   = "PENDING"
	BookingStatusConfirmed = "CONFIRMED"
	BookingStatusCancelled = "CANCELLED"
	BookingStatusConverted = "CONVERTED"
)

// ItemSnapshot is the inventory collaborator's view of one rental item.
type ItemSnapshot struct {
	ID             uuid.UUID
	Name           string
	ValueCents     int64
	RentalEligible bool
	ForSale        bool
	Version        int64
}

// RentalSnapshot is one open rental contract. ReturnedAt is nil while the
// item is still out.
type RentalSnapshot struct {
	ID             uuid.UUID
	ItemID         uuid.UUID
	CustomerID     uuid.UUID
	StartedAt      time.Time
	DueAt          time.Time
	DailyRateCents int64
	ReturnedAt     *time.Time
}

type BookingSnapshot struct {
	ID         uuid.UUID
	ItemID     uuid.UUID
	CustomerID uuid.UUID
	StartsAt   time.Time
	EndsAt     time.Time
	Status     string
	ValueCents int64
	Version    int64
}

type MaintenanceHoldSnapshot struct {
	ID       uuid.UUID
	ItemID   uuid.UUID
	Reason   string
	OpenedAt time.Time
}

// AuditEntry is one append-only audit_log row.
type AuditEntry struct {
	EventType  string
	ActorID    uuid.UUID
	EntityType string
	EntityID   uuid.UUID
	Detail     json.RawMessage
}

// NotificationJob is one queued customer notification. Delivery is a
// separate concern; enqueue failures are logged, never fatal.
type NotificationJob struct {
	Kind       string
	CustomerID uuid.UUID
	Payload    json.RawMessage
}
