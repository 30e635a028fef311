package commands

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"rentaldesk/internal/domain/conflict"
	"rentaldesk/internal/domain/failsafe"
	"rentaldesk/internal/domain/risk"
	"rentaldesk/internal/domain/transition"
	"rentaldesk/internal/domain/user"
	"rentaldesk/internal/infra"
	"rentaldesk/internal/pkg/clock"
	"rentaldesk/internal/pkg/errs"
	"rentaldesk/internal/usecase"
	"rentaldesk/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrItemNotFound         = errs.New("item not found")
	ErrItemAlreadyForSale   = errs.New("item is already for sale")
	ErrTransitionNotFound   = errs.New("transition not found")
	ErrTransitionInProgress = errs.New("another transition is in progress for this item")
	ErrNotConfirmable       = errs.New("transition cannot be confirmed in its current status")
	ErrUnresolvedConflict   = errs.New("conflict has no resolution")
	ErrCollaboratorDown     = errs.New("collaborator unavailable")
)

const (
	auditInitiated       = "transition.initiated"
	auditApproved        = "transition.approved"
	auditRejected        = "transition.rejected"
	auditCompleted       = "transition.completed"
	auditFailed          = "transition.failed"
	auditRolledBack      = "transition.rolled_back"
	auditApprovalCleared = "transition.approval_cleared"
)

type InitiateInput struct {
	ItemID         uuid.UUID
	SalePriceCents int64
	EffectiveDate  time.Time
	RequesterID    uuid.UUID
	RequesterRole  user.Role
}

type InitiateResult struct {
	Request    *transition.TransitionRequest
	Conflicts  []*conflict.Conflict
	Assessment risk.Assessment
}

type ConfirmInput struct {
	TransitionID   uuid.UUID
	ActorID        uuid.UUID
	ActorRole      user.Role
	Resolutions    map[uuid.UUID]conflict.Resolution
	PostponedUntil *time.Time
}

type BookingRollbackError struct {
	BookingID uuid.UUID
	Reason    string
}

type RollbackResult struct {
	Request          *transition.TransitionRequest
	RestoredBookings int
	Errors           []BookingRollbackError
}

type TransitionCommands interface {
	Initiate(ctx context.Context, in InitiateInput) (*InitiateResult, error)
	Confirm(ctx context.Context, in ConfirmInput) (*transition.TransitionRequest, error)
	Approve(ctx context.Context, transitionID, approverID uuid.UUID, approverRole user.Role) error
	Reject(ctx context.Context, transitionID, approverID uuid.UUID, reason string) error
	Rollback(ctx context.Context, transitionID, actorID uuid.UUID, reason string) (*RollbackResult, error)
	ReevaluateAwaiting(ctx context.Context) (int, error)
}

type transitionCommandsImpl struct {
	uow      shared.UnitOfWork
	scanner  usecase.ConflictScanner
	executor usecase.ResolutionExecutor
	clock    clock.Clock
	cfg      failsafe.Config
}

func NewTransitionCommands(
	uow shared.UnitOfWork,
	scanner usecase.ConflictScanner,
	executor usecase.ResolutionExecutor,
	clk clock.Clock,
	cfg failsafe.Config,
) TransitionCommands {
	return &transitionCommandsImpl{
		uow:      uow,
		scanner:  scanner,
		executor: executor,
		clock:    clk,
		cfg:      cfg,
	}
}

func (c *transitionCommandsImpl) Initiate(ctx context.Context, in InitiateInput) (*InitiateResult, error) {
	now := c.clock.Now()

	req, err := transition.NewTransitionRequest(now, in.ItemID, in.SalePriceCents, in.EffectiveDate, in.RequesterID)
	if err != nil {
		return nil, err
	}

	var result *InitiateResult
	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		item, err := tx.Inventory().ItemByIDForUpdate(ctx, in.ItemID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.Mark(err, ErrItemNotFound)
			}
			return markCollaborator(err)
		}
		if item.ForSale {
			return ErrItemAlreadyForSale
		}

		if err := req.BeginProcessing(); err != nil {
			return err
		}

		conflicts, err := c.scanner.Scan(ctx, tx, req.ID(), in.ItemID, now)
		if err != nil {
			return markCollaborator(err)
		}

		assessment := risk.Evaluate(conflicts, item.ValueCents, in.RequesterRole.SaleAuthorityLimitCents(), c.cfg)
		if assessment.RequiresApproval {
			if err := req.Park(assessment.Tier); err != nil {
				return err
			}
		}

		if err := tx.Transitions().Create(ctx, req); err != nil {
			if infra.IsKind(err, infra.KindDuplicateKey) {
				return errs.Mark(err, ErrTransitionInProgress)
			}
			return err
		}
		if err := tx.Conflicts().CreateBatch(ctx, conflicts); err != nil {
			return err
		}

		if err := appendAudit(ctx, tx, auditInitiated, in.RequesterID, req.ID(), map[string]any{
			"item_id":   in.ItemID,
			"status":    req.Status(),
			"conflicts": len(conflicts),
			"tier":      assessment.Tier.String(),
		}); err != nil {
			return err
		}

		result = &InitiateResult{Request: req, Conflicts: conflicts, Assessment: assessment}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (c *transitionCommandsImpl) Confirm(ctx context.Context, in ConfirmInput) (*transition.TransitionRequest, error) {
	now := c.clock.Now()

	var req *transition.TransitionRequest
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		req, err = c.findForUpdate(ctx, tx, in.TransitionID)
		if err != nil {
			return err
		}

		switch req.Status() {
		case transition.StatusApproved:
			if err := req.BeginProcessing(); err != nil {
				return err
			}
		case transition.StatusProcessing:
		default:
			return ErrNotConfirmable
		}

		if in.PostponedUntil != nil {
			if err := req.Postpone(*in.PostponedUntil); err != nil {
				return err
			}
		}

		conflicts, err := tx.Conflicts().FindByTransitionID(ctx, req.ID())
		if err != nil {
			return err
		}

		// Input validation happens before any mutation: every open conflict
		// needs a well-formed resolution, or the whole call is refused.
		for _, cf := range conflicts {
			if cf.Resolved() {
				continue
			}
			res, ok := in.Resolutions[cf.ID()]
			if !ok {
				return errs.Mark(errs.New("conflict "+cf.ID().String()), ErrUnresolvedConflict)
			}
			if err := res.Validate(); err != nil {
				return err
			}
		}

		item, err := tx.Inventory().ItemByIDForUpdate(ctx, req.ItemID())
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.Mark(err, ErrItemNotFound)
			}
			return markCollaborator(err)
		}

		cp, err := captureCheckpoint(ctx, tx, req, item, conflicts, in.Resolutions, now, c.cfg.RollbackWindow)
		if err != nil {
			return err
		}
		if err := tx.Checkpoints().Create(ctx, cp); err != nil {
			return err
		}

		approvedTier := c.effectiveTier(req, in.ActorRole)
		for _, cf := range conflicts {
			if cf.Resolved() {
				continue
			}
			res := in.Resolutions[cf.ID()]
			if err := c.executor.Execute(ctx, tx, req, cf, res, approvedTier); err != nil {
				return err
			}
			if err := cf.Resolve(res.Action, res.Note); err != nil {
				return err
			}
			if err := tx.Conflicts().Save(ctx, cf); err != nil {
				return err
			}
		}

		price := req.SalePriceCents()
		if err := tx.Inventory().SetItemSaleState(ctx, item.ID, false, true, &price, item.Version); err != nil {
			return err
		}

		if err := req.Complete(now, c.cfg.RollbackWindow); err != nil {
			return err
		}
		if err := tx.Transitions().Save(ctx, req); err != nil {
			return err
		}

		return appendAudit(ctx, tx, auditCompleted, in.ActorID, req.ID(), map[string]any{
			"item_id":            req.ItemID(),
			"resolved_conflicts": len(in.Resolutions),
			"rollback_deadline":  req.RollbackDeadline(),
		})
	})
	if err != nil {
		c.failAfterAbort(ctx, in.TransitionID, in.ActorID, err)
		return nil, err
	}
	return req, nil
}

func (c *transitionCommandsImpl) Approve(ctx context.Context, transitionID, approverID uuid.UUID, approverRole user.Role) error {
	return c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		req, err := c.findForUpdate(ctx, tx, transitionID)
		if err != nil {
			return err
		}

		if err := req.Approve(approverID, risk.TierForRole(approverRole)); err != nil {
			return err
		}
		if err := tx.Transitions().Save(ctx, req); err != nil {
			return err
		}

		return appendAudit(ctx, tx, auditApproved, approverID, req.ID(), map[string]any{
			"required_tier": req.RequiredTier().String(),
			"approver_role": approverRole.String(),
		})
	})
}

func (c *transitionCommandsImpl) Reject(ctx context.Context, transitionID, approverID uuid.UUID, reason string) error {
	return c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		req, err := c.findForUpdate(ctx, tx, transitionID)
		if err != nil {
			return err
		}

		if err := req.Reject(); err != nil {
			return err
		}
		if err := tx.Transitions().Save(ctx, req); err != nil {
			return err
		}

		return appendAudit(ctx, tx, auditRejected, approverID, req.ID(), map[string]any{
			"reason": reason,
		})
	})
}

func (c *transitionCommandsImpl) Rollback(ctx context.Context, transitionID, actorID uuid.UUID, reason string) (*RollbackResult, error) {
	now := c.clock.Now()

	var result *RollbackResult
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		req, err := c.findForUpdate(ctx, tx, transitionID)
		if err != nil {
			return err
		}
		if req.Status() == transition.StatusRolledBack {
			return failsafe.ErrAlreadyRolledBack
		}

		cp, err := tx.Checkpoints().FindByTransitionID(ctx, req.ID())
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.Mark(err, failsafe.ErrNoCheckpoint)
			}
			return err
		}
		if cp.Expired(now) {
			return failsafe.ErrRollbackExpired
		}

		if err := req.MarkRolledBack(); err != nil {
			return err
		}

		// The sale flip bumped the item's version exactly once past the
		// captured value. Anything else means the item moved on and the
		// rollback must not clobber it.
		captured := cp.Item()
		if err := tx.Inventory().SetItemSaleState(ctx, captured.ItemID, captured.RentalEligible, false, nil, captured.Version+1); err != nil {
			return err
		}

		result = &RollbackResult{Request: req}
		for _, b := range cp.Bookings() {
			err := tx.Bookings().Restore(ctx, b.BookingID, b.Status, b.ItemID, b.Version+1)
			if infra.IsKind(err, infra.KindVersionConflict) {
				// Independently modified since the checkpoint: report, never
				// overwrite.
				result.Errors = append(result.Errors, BookingRollbackError{
					BookingID: b.BookingID,
					Reason:    "booking modified since checkpoint",
				})
				continue
			}
			if err != nil {
				return err
			}
			result.RestoredBookings++
		}

		if err := tx.Transitions().Save(ctx, req); err != nil {
			return err
		}

		return appendAudit(ctx, tx, auditRolledBack, actorID, req.ID(), map[string]any{
			"reason":            reason,
			"restored_bookings": result.RestoredBookings,
			"booking_errors":    len(result.Errors),
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ReevaluateAwaiting rescans parked requests. When the conflicts that forced
// an approval have cleared, the request resumes processing on its own.
func (c *transitionCommandsImpl) ReevaluateAwaiting(ctx context.Context) (int, error) {
	var ids []uuid.UUID
	err := c.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		ids, err = tx.Transitions().FindIDsByStatus(ctx, transition.StatusAwaitingApproval)
		return err
	})
	if err != nil {
		return 0, err
	}

	resumed := 0
	for _, id := range ids {
		ok, err := c.reevaluateOne(ctx, id)
		if err != nil {
			slog.Warn("rescan failed for awaiting transition", "transition_id", id, "error", err.Error())
			continue
		}
		if ok {
			resumed++
		}
	}
	return resumed, nil
}

func (c *transitionCommandsImpl) reevaluateOne(ctx context.Context, id uuid.UUID) (bool, error) {
	now := c.clock.Now()

	resumed := false
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		req, err := c.findForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if req.Status() != transition.StatusAwaitingApproval {
			return nil
		}

		item, err := tx.Inventory().ItemByID(ctx, req.ItemID())
		if err != nil {
			return err
		}
		role, err := tx.Users().RoleByID(ctx, req.RequesterID())
		if err != nil {
			return err
		}

		fresh, err := c.scanner.Scan(ctx, tx, req.ID(), req.ItemID(), now)
		if err != nil {
			return markCollaborator(err)
		}

		assessment := risk.Evaluate(fresh, item.ValueCents, role.SaleAuthorityLimitCents(), c.cfg)
		if assessment.RequiresApproval {
			return nil
		}

		if err := tx.Conflicts().DeleteByTransitionID(ctx, req.ID()); err != nil {
			return err
		}
		if err := tx.Conflicts().CreateBatch(ctx, fresh); err != nil {
			return err
		}

		if err := req.BeginProcessing(); err != nil {
			return err
		}
		req.SetRequiredTier(risk.TierNone)
		if err := tx.Transitions().Save(ctx, req); err != nil {
			return err
		}

		resumed = true
		return appendAudit(ctx, tx, auditApprovalCleared, uuid.Nil, req.ID(), map[string]any{
			"remaining_conflicts": len(fresh),
		})
	})
	return resumed, err
}

func (c *transitionCommandsImpl) findForUpdate(ctx context.Context, tx shared.Tx, id uuid.UUID) (*transition.TransitionRequest, error) {
	req, err := tx.Transitions().FindByIDForUpdate(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, ErrTransitionNotFound)
		}
		return nil, err
	}
	return req, nil
}

// effectiveTier is the authority backing this confirm: the actor's own tier,
// raised to the approval tier when the request went through an approval.
func (c *transitionCommandsImpl) effectiveTier(req *transition.TransitionRequest, actorRole user.Role) risk.Tier {
	tier := risk.TierForRole(actorRole)
	if req.ApproverID() != nil && req.RequiredTier() > tier {
		tier = req.RequiredTier()
	}
	return tier
}

// failAfterAbort records the failure on the request in a fresh transaction,
// after the aborted commit pass rolled everything back. Collaborator outages
// and input-validation refusals leave the prior status untouched.
func (c *transitionCommandsImpl) failAfterAbort(ctx context.Context, transitionID, actorID uuid.UUID, cause error) {
	reason, ok := classifyFailure(cause)
	if !ok {
		return
	}

	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		req, err := tx.Transitions().FindByIDForUpdate(ctx, transitionID)
		if err != nil {
			return err
		}
		// The abort also undid the in-transaction BeginProcessing, so a
		// request confirmed out of APPROVED reloads as APPROVED here.
		if req.Status() == transition.StatusApproved {
			if err := req.BeginProcessing(); err != nil {
				return err
			}
		}
		if err := req.Fail(reason); err != nil {
			return err
		}
		if err := tx.Transitions().Save(ctx, req); err != nil {
			return err
		}
		return appendAudit(ctx, tx, auditFailed, actorID, req.ID(), map[string]any{
			"reason": reason.String(),
			"cause":  cause.Error(),
		})
	})
	if err != nil {
		slog.Error("failed to record transition failure", "transition_id", transitionID, "error", err.Error())
	}
}

func classifyFailure(err error) (transition.FailureReason, bool) {
	switch {
	case infra.IsKind(err, infra.KindVersionConflict):
		return transition.FailureConcurrency, true
	case errors.Is(err, usecase.ErrBookingAlreadyConverted),
		errors.Is(err, usecase.ErrAlternativeUnavailable),
		errors.Is(err, usecase.ErrForceSaleTierRequired),
		errors.Is(err, usecase.ErrForceSaleLateRental),
		errors.Is(err, usecase.ErrWaitForReturnOverdue):
		return transition.FailureResolution, true
	default:
		return "", false
	}
}

func markCollaborator(err error) error {
	if infra.IsKind(err, infra.KindDBFailure) {
		return errs.Mark(err, ErrCollaboratorDown)
	}
	return err
}

func captureCheckpoint(
	ctx context.Context,
	tx shared.Tx,
	req *transition.TransitionRequest,
	item *shared.ItemSnapshot,
	conflicts []*conflict.Conflict,
	resolutions map[uuid.UUID]conflict.Resolution,
	now time.Time,
	window time.Duration,
) (*failsafe.Checkpoint, error) {
	capturedItem := failsafe.CapturedItem{
		ItemID:         item.ID,
		RentalEligible: item.RentalEligible,
		Version:        item.Version,
	}

	var bookings []failsafe.CapturedBooking
	for _, cf := range conflicts {
		if cf.Resolved() {
			continue
		}
		res, ok := resolutions[cf.ID()]
		if !ok {
			continue
		}
		if res.Action != conflict.ActionCancelBooking && res.Action != conflict.ActionTransfer {
			continue
		}

		b, err := tx.Bookings().BookingByIDForUpdate(ctx, cf.EntityID())
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, failsafe.CapturedBooking{
			BookingID: b.ID,
			ItemID:    b.ItemID,
			Status:    b.Status,
			Version:   b.Version,
		})
	}

	return failsafe.NewCheckpoint(req.ID(), capturedItem, bookings, now, window), nil
}

func appendAudit(ctx context.Context, tx shared.Tx, eventType string, actorID, entityID uuid.UUID, detail map[string]any) error {
	raw, err := json.Marshal(detail)
	if err != nil {
		return err
	}
	return tx.Audit().Append(ctx, shared.AuditEntry{
		EventType:  eventType,
		ActorID:    actorID,
		EntityType: "transition_request",
		EntityID:   entityID,
		Detail:     raw,
	})
}
