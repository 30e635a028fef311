//go:build unit || e2e

// Package stub provides in-memory unit-of-work and repository fakes for
// exercising the orchestration layer without a database. Version guards and
// the one-in-flight-per-item rule behave like the real store.
package stub

import (
	"context"
	"log/slog"
	"time"

	"rentaldesk/internal/domain/conflict"
	"rentaldesk/internal/domain/failsafe"
	"rentaldesk/internal/domain/transition"
	"rentaldesk/internal/domain/user"
	"rentaldesk/internal/infra"
	"rentaldesk/internal/usecase/shared"

	"github.com/google/uuid"
)

type Tx struct {
	TransitionRepo   *TransitionRepo
	ConflictRepo     *ConflictRepo
	CheckpointRepo   *CheckpointRepo
	InventoryRepo    *InventoryRepo
	BookingRepo      *BookingRepo
	AuditRepo        *AuditRepo
	NotificationRepo *NotificationRepo
	UserRepo         *UserRepo
}

func NewTx() *Tx {
	return &Tx{
		TransitionRepo:   &TransitionRepo{byID: map[uuid.UUID]*transition.TransitionRequest{}},
		ConflictRepo:     &ConflictRepo{byTransition: map[uuid.UUID][]*conflict.Conflict{}},
		CheckpointRepo:   &CheckpointRepo{byTransition: map[uuid.UUID]*failsafe.Checkpoint{}},
		InventoryRepo:    &InventoryRepo{Items: map[uuid.UUID]*shared.ItemSnapshot{}},
		BookingRepo:      &BookingRepo{Bookings: map[uuid.UUID]*shared.BookingSnapshot{}},
		AuditRepo:        &AuditRepo{},
		NotificationRepo: &NotificationRepo{},
		UserRepo:         &UserRepo{Roles: map[uuid.UUID]user.Role{}},
	}
}

func (t *Tx) Transitions() shared.TransitionRepository     { return t.TransitionRepo }
func (t *Tx) Conflicts() shared.ConflictRepository         { return t.ConflictRepo }
func (t *Tx) Checkpoints() shared.CheckpointRepository     { return t.CheckpointRepo }
func (t *Tx) Inventory() shared.InventoryRepository        { return t.InventoryRepo }
func (t *Tx) Bookings() shared.BookingRepository           { return t.BookingRepo }
func (t *Tx) Audit() shared.AuditRepository                { return t.AuditRepo }
func (t *Tx) Notifications() shared.NotificationRepository { return t.NotificationRepo }
func (t *Tx) Users() shared.UserRepository                 { return t.UserRepo }

// UoW hands every callback the same Tx. There is no transactional isolation;
// mutations are visible immediately, which is what single-threaded tests
// want.
type UoW struct {
	Tx *Tx
}

func NewUoW() *UoW {
	return &UoW{Tx: NewTx()}
}

func (u *UoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return fn(ctx, u.Tx)
}

func (u *UoW) WithinReadOnly(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return fn(ctx, u.Tx)
}

func RepoErr(kind infra.RepositoryErrorKind, msg string) error {
	return infra.WrapRepoErr(slog.New(slog.DiscardHandler), kind, msg, nil)
}

type TransitionRepo struct {
	byID map[uuid.UUID]*transition.TransitionRequest

	// Detach makes reads hand out reconstructed copies the way a row scan
	// does, so mutations only land with an explicit Create or Save.
	Detach bool

	FailCreate error
	FailSave   error
}

func (r *TransitionRepo) Create(_ context.Context, req *transition.TransitionRequest) error {
	if r.FailCreate != nil {
		return r.FailCreate
	}
	for _, existing := range r.byID {
		if existing.ItemID() == req.ItemID() && existing.Status().InFlight() {
			return RepoErr(infra.KindDuplicateKey, "duplicate in-flight transition")
		}
	}
	r.byID[req.ID()] = r.store(req)
	return nil
}

func (r *TransitionRepo) FindByID(_ context.Context, id uuid.UUID) (*transition.TransitionRequest, error) {
	req, ok := r.byID[id]
	if !ok {
		return nil, RepoErr(infra.KindNotFound, "transition not found")
	}
	if r.Detach {
		return reconstruct(req), nil
	}
	return req, nil
}

func (r *TransitionRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*transition.TransitionRequest, error) {
	return r.FindByID(ctx, id)
}

func (r *TransitionRepo) Save(_ context.Context, req *transition.TransitionRequest) error {
	if r.FailSave != nil {
		return r.FailSave
	}
	r.byID[req.ID()] = r.store(req)
	return nil
}

func (r *TransitionRepo) store(req *transition.TransitionRequest) *transition.TransitionRequest {
	if r.Detach {
		return reconstruct(req)
	}
	return req
}

func reconstruct(req *transition.TransitionRequest) *transition.TransitionRequest {
	return transition.ReconstructTransitionRequest(
		req.ID(), req.ItemID(), req.SalePriceCents(), req.EffectiveDate(),
		req.RequesterID(), req.Status(), req.RequiredTier(), req.ApproverID(),
		req.FailureReason(), req.RollbackDeadline(), req.CreatedAt(), req.UpdatedAt(),
	)
}

func (r *TransitionRepo) FindIDsByStatus(_ context.Context, status transition.Status) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for id, req := range r.byID {
		if req.Status() == status {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

type ConflictRepo struct {
	byTransition map[uuid.UUID][]*conflict.Conflict
}

func (r *ConflictRepo) CreateBatch(_ context.Context, conflicts []*conflict.Conflict) error {
	for _, c := range conflicts {
		r.byTransition[c.TransitionID()] = append(r.byTransition[c.TransitionID()], c)
	}
	return nil
}

func (r *ConflictRepo) FindByTransitionID(_ context.Context, transitionID uuid.UUID) ([]*conflict.Conflict, error) {
	return r.byTransition[transitionID], nil
}

func (r *ConflictRepo) Save(_ context.Context, c *conflict.Conflict) error {
	return nil
}

func (r *ConflictRepo) DeleteByTransitionID(_ context.Context, transitionID uuid.UUID) error {
	delete(r.byTransition, transitionID)
	return nil
}

type CheckpointRepo struct {
	byTransition map[uuid.UUID]*failsafe.Checkpoint
}

func (r *CheckpointRepo) Create(_ context.Context, cp *failsafe.Checkpoint) error {
	r.byTransition[cp.TransitionID()] = cp
	return nil
}

func (r *CheckpointRepo) FindByTransitionID(_ context.Context, transitionID uuid.UUID) (*failsafe.Checkpoint, error) {
	cp, ok := r.byTransition[transitionID]
	if !ok {
		return nil, RepoErr(infra.KindNotFound, "checkpoint not found")
	}
	return cp, nil
}

type InventoryRepo struct {
	Items   map[uuid.UUID]*shared.ItemSnapshot
	Rentals []shared.RentalSnapshot
	Holds   []shared.MaintenanceHoldSnapshot

	FailItemLookup   error
	FailSetSaleState error
}

func (r *InventoryRepo) ItemByID(_ context.Context, id uuid.UUID) (*shared.ItemSnapshot, error) {
	if r.FailItemLookup != nil {
		return nil, r.FailItemLookup
	}
	item, ok := r.Items[id]
	if !ok {
		return nil, RepoErr(infra.KindNotFound, "item not found")
	}
	copied := *item
	return &copied, nil
}

func (r *InventoryRepo) ItemByIDForUpdate(ctx context.Context, id uuid.UUID) (*shared.ItemSnapshot, error) {
	return r.ItemByID(ctx, id)
}

func (r *InventoryRepo) OpenRentalsByItem(_ context.Context, itemID uuid.UUID) ([]shared.RentalSnapshot, error) {
	var out []shared.RentalSnapshot
	for _, rental := range r.Rentals {
		if rental.ItemID == itemID && rental.ReturnedAt == nil {
			out = append(out, rental)
		}
	}
	return out, nil
}

func (r *InventoryRepo) OpenHoldsByItem(_ context.Context, itemID uuid.UUID) ([]shared.MaintenanceHoldSnapshot, error) {
	var out []shared.MaintenanceHoldSnapshot
	for _, h := range r.Holds {
		if h.ItemID == itemID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (r *InventoryRepo) SetItemSaleState(_ context.Context, itemID uuid.UUID, rentalEligible, forSale bool, salePriceCents *int64, expectedVersion int64) error {
	if r.FailSetSaleState != nil {
		return r.FailSetSaleState
	}
	item, ok := r.Items[itemID]
	if !ok {
		return RepoErr(infra.KindNotFound, "item not found")
	}
	if item.Version != expectedVersion {
		return RepoErr(infra.KindVersionConflict, "item version mismatch")
	}
	item.RentalEligible = rentalEligible
	item.ForSale = forSale
	item.Version++
	return nil
}

type BookingRepo struct {
	Bookings map[uuid.UUID]*shared.BookingSnapshot
}

func (r *BookingRepo) FutureBookingsByItem(_ context.Context, itemID uuid.UUID) ([]shared.BookingSnapshot, error) {
	var out []shared.BookingSnapshot
	for _, b := range r.Bookings {
		if b.ItemID == itemID &&
			(b.Status == shared.BookingStatusPending || b.Status == shared.BookingStatusConfirmed) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *BookingRepo) BookingByIDForUpdate(_ context.Context, id uuid.UUID) (*shared.BookingSnapshot, error) {
	b, ok := r.Bookings[id]
	if !ok {
		return nil, RepoErr(infra.KindNotFound, "booking not found")
	}
	copied := *b
	return &copied, nil
}

func (r *BookingRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string, expectedVersion int64) error {
	b, ok := r.Bookings[id]
	if !ok {
		return RepoErr(infra.KindNotFound, "booking not found")
	}
	if b.Version != expectedVersion {
		return RepoErr(infra.KindVersionConflict, "booking version mismatch")
	}
	b.Status = status
	b.Version++
	return nil
}

func (r *BookingRepo) Reassign(_ context.Context, id, newItemID uuid.UUID, expectedVersion int64) error {
	b, ok := r.Bookings[id]
	if !ok {
		return RepoErr(infra.KindNotFound, "booking not found")
	}
	if b.Version != expectedVersion {
		return RepoErr(infra.KindVersionConflict, "booking version mismatch")
	}
	b.ItemID = newItemID
	b.Version++
	return nil
}

func (r *BookingRepo) Restore(_ context.Context, id uuid.UUID, status string, itemID uuid.UUID, expectedVersion int64) error {
	b, ok := r.Bookings[id]
	if !ok {
		return RepoErr(infra.KindNotFound, "booking not found")
	}
	if b.Version != expectedVersion {
		return RepoErr(infra.KindVersionConflict, "booking version mismatch")
	}
	b.Status = status
	b.ItemID = itemID
	b.Version++
	return nil
}

func (r *BookingRepo) CountOverlapping(_ context.Context, itemID uuid.UUID, startsAt, endsAt time.Time) (int64, error) {
	var count int64
	for _, b := range r.Bookings {
		if b.ItemID != itemID {
			continue
		}
		if b.Status != shared.BookingStatusPending && b.Status != shared.BookingStatusConfirmed {
			continue
		}
		if b.StartsAt.Before(endsAt) && b.EndsAt.After(startsAt) {
			count++
		}
	}
	return count, nil
}

type AuditRepo struct {
	Entries []shared.AuditEntry
}

func (r *AuditRepo) Append(_ context.Context, entry shared.AuditEntry) error {
	r.Entries = append(r.Entries, entry)
	return nil
}

type NotificationRepo struct {
	Jobs []shared.NotificationJob
}

func (r *NotificationRepo) Enqueue(_ context.Context, job shared.NotificationJob) error {
	r.Jobs = append(r.Jobs, job)
	return nil
}

type UserRepo struct {
	Roles map[uuid.UUID]user.Role
}

func (r *UserRepo) UpdateLastLogin(_ context.Context, _ uuid.UUID) error {
	return nil
}

func (r *UserRepo) RoleByID(_ context.Context, userID uuid.UUID) (user.Role, error) {
	role, ok := r.Roles[userID]
	if !ok {
		return "", RepoErr(infra.KindNotFound, "user not found")
	}
	return role, nil
}
