package shared

import (
	"context"
	"time"

	"rentaldesk/internal/domain/conflict"
	"rentaldesk/internal/domain/failsafe"
	"rentaldesk/internal/domain/transition"
	"rentaldesk/internal/domain/user"

	"github.com/google/uuid"
)

// UnitOfWork is the transaction boundary for the engine. Within runs fn in a
// read-committed transaction with retry on serialization failures;
// WithinReadOnly runs fn in a read-only transaction for consistent
// multi-table snapshots.
type UnitOfWork interface {
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	WithinReadOnly(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Tx exposes the repositories bound to one transaction. Repositories are
// lazily constructed; all of them share the same underlying connection.
type Tx interface {
	Transitions() TransitionRepository
	Conflicts() ConflictRepository
	Checkpoints() CheckpointRepository
	Inventory() InventoryRepository
	Bookings() BookingRepository
	Audit() AuditRepository
	Notifications() NotificationRepository
	Users() UserRepository
}

type TransitionRepository interface {
	Create(ctx context.Context, req *transition.TransitionRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*transition.TransitionRequest, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*transition.TransitionRequest, error)
	Save(ctx context.Context, req *transition.TransitionRequest) error
	FindIDsByStatus(ctx context.Context, status transition.Status) ([]uuid.UUID, error)
}

type ConflictRepository interface {
	CreateBatch(ctx context.Context, conflicts []*conflict.Conflict) error
	FindByTransitionID(ctx context.Context, transitionID uuid.UUID) ([]*conflict.Conflict, error)
	Save(ctx context.Context, c *conflict.Conflict) error
	DeleteByTransitionID(ctx context.Context, transitionID uuid.UUID) error
}

type CheckpointRepository interface {
	Create(ctx context.Context, cp *failsafe.Checkpoint) error
	FindByTransitionID(ctx context.Context, transitionID uuid.UUID) (*failsafe.Checkpoint, error)
}

// InventoryRepository is the port onto the inventory collaborator: the items
// catalogue, open rentals and maintenance holds.
type InventoryRepository interface {
	ItemByID(ctx context.Context, id uuid.UUID) (*ItemSnapshot, error)
	ItemByIDForUpdate(ctx context.Context, id uuid.UUID) (*ItemSnapshot, error)
	OpenRentalsByItem(ctx context.Context, itemID uuid.UUID) ([]RentalSnapshot, error)
	OpenHoldsByItem(ctx context.Context, itemID uuid.UUID) ([]MaintenanceHoldSnapshot, error)
	// SetItemSaleState flips the item between the rentable and sellable
	// states. The update only applies when the stored version matches
	// expectedVersion; otherwise it fails with VERSION_CONFLICT.
	SetItemSaleState(ctx context.Context, itemID uuid.UUID, rentalEligible, forSale bool, salePriceCents *int64, expectedVersion int64) error
}

// BookingRepository is the port onto the booking collaborator.
type BookingRepository interface {
	FutureBookingsByItem(ctx context.Context, itemID uuid.UUID) ([]BookingSnapshot, error)
	BookingByIDForUpdate(ctx context.Context, id uuid.UUID) (*BookingSnapshot, error)
	// UpdateStatus applies only when the stored version matches
	// expectedVersion; otherwise it fails with VERSION_CONFLICT.
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, expectedVersion int64) error
	Reassign(ctx context.Context, id, newItemID uuid.UUID, expectedVersion int64) error
	// Restore puts a booking back to a checkpointed state.
	Restore(ctx context.Context, id uuid.UUID, status string, itemID uuid.UUID, expectedVersion int64) error
	CountOverlapping(ctx context.Context, itemID uuid.UUID, startsAt, endsAt time.Time) (int64, error)
}

type AuditRepository interface {
	Append(ctx context.Context, entry AuditEntry) error
}

type NotificationRepository interface {
	Enqueue(ctx context.Context, job NotificationJob) error
}

type UserRepository interface {
	UpdateLastLogin(ctx context.Context, userID uuid.UUID) error
	RoleByID(ctx context.Context, userID uuid.UUID) (user.Role, error)
}
