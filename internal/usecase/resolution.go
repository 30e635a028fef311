package usecase

import (
	"context"
	"encoding/json"

	"rentaldesk/internal/domain/conflict"
	"rentaldesk/internal/domain/risk"
	"rentaldesk/internal/domain/transition"
	"rentaldesk/internal/pkg/errs"
	"rentaldesk/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrActionMismatch          = errs.New("action does not apply to this conflict type")
	ErrBookingAlreadyConverted = errs.New("booking already converted")
	ErrAlternativeUnavailable  = errs.New("alternative item cannot take the booking")
	ErrForceSaleTierRequired   = errs.New("force sale requires senior manager approval")
	ErrForceSaleLateRental     = errs.New("force sale is blocked while a rental is overdue")
	ErrWaitForReturnOverdue    = errs.New("wait for return cannot cover an overdue rental")
	ErrPostponementTooShort    = errs.New("sale date does not clear the conflict")
)

// ResolutionExecutor applies one chosen resolution to one conflict inside
// the commit transaction. Any error aborts the whole pass.
type ResolutionExecutor interface {
	Execute(ctx context.Context, tx shared.Tx, req *transition.TransitionRequest, c *conflict.Conflict, res conflict.Resolution, approvedTier risk.Tier) error
}

type resolutionStrategy func(ctx context.Context, tx shared.Tx, req *transition.TransitionRequest, c *conflict.Conflict, res conflict.Resolution, approvedTier risk.Tier) error

type resolutionExecutorImpl struct {
	strategies map[conflict.Action]resolutionStrategy
}

func NewResolutionExecutor() ResolutionExecutor {
	e := &resolutionExecutorImpl{}
	e.strategies = map[conflict.Action]resolutionStrategy{
		conflict.ActionWaitForReturn:     e.waitForReturn,
		conflict.ActionCancelBooking:     e.cancelBooking,
		conflict.ActionTransfer:          e.transferToAlternative,
		conflict.ActionOfferCompensation: e.offerCompensation,
		conflict.ActionPostponeSale:      e.postponeSale,
		conflict.ActionForceSale:         e.forceSale,
	}
	return e
}

func (e *resolutionExecutorImpl) Execute(ctx context.Context, tx shared.Tx, req *transition.TransitionRequest, c *conflict.Conflict, res conflict.Resolution, approvedTier risk.Tier) error {
	strategy, ok := e.strategies[res.Action]
	if !ok {
		return conflict.ErrInvalidAction
	}
	return strategy(ctx, tx, req, c, res, approvedTier)
}

// waitForReturn resolves a rental conflict by letting the contract run out.
// It is only sound when the sale date lies beyond the rental's due date, so
// the request must carry a postponement that covers it. An overdue rental
// has no return point to wait past: its due date is already behind us, and
// any sale date would "clear" it while the item is still out.
func (e *resolutionExecutorImpl) waitForReturn(_ context.Context, _ shared.Tx, req *transition.TransitionRequest, c *conflict.Conflict, _ conflict.Resolution, _ risk.Tier) error {
	switch c.Type() {
	case conflict.TypeActiveRental:
	case conflict.TypeLateRental:
		return ErrWaitForReturnOverdue
	default:
		return ErrActionMismatch
	}
	if !req.EffectiveDate().After(c.ClearsAt()) {
		return ErrPostponementTooShort
	}
	return nil
}

func (e *resolutionExecutorImpl) cancelBooking(ctx context.Context, tx shared.Tx, _ *transition.TransitionRequest, c *conflict.Conflict, res conflict.Resolution, _ risk.Tier) error {
	if !isBookingConflict(c) {
		return ErrActionMismatch
	}

	b, err := tx.Bookings().BookingByIDForUpdate(ctx, c.EntityID())
	if err != nil {
		return err
	}
	if b.Status != shared.BookingStatusConfirmed && b.Status != shared.BookingStatusPending {
		return errs.Wrap(ErrBookingAlreadyConverted, b.Status)
	}

	if err := tx.Bookings().UpdateStatus(ctx, b.ID, shared.BookingStatusCancelled, b.Version); err != nil {
		return err
	}

	return enqueueNotification(ctx, tx, "booking_cancelled", b.CustomerID, map[string]any{
		"booking_id": b.ID,
		"note":       res.Note,
	})
}

func (e *resolutionExecutorImpl) transferToAlternative(ctx context.Context, tx shared.Tx, _ *transition.TransitionRequest, c *conflict.Conflict, res conflict.Resolution, _ risk.Tier) error {
	if !isBookingConflict(c) {
		return ErrActionMismatch
	}

	b, err := tx.Bookings().BookingByIDForUpdate(ctx, c.EntityID())
	if err != nil {
		return err
	}
	if b.Status != shared.BookingStatusConfirmed && b.Status != shared.BookingStatusPending {
		return errs.Wrap(ErrBookingAlreadyConverted, b.Status)
	}

	alt, err := tx.Inventory().ItemByID(ctx, *res.AlternativeItemID)
	if err != nil {
		return err
	}
	if !alt.RentalEligible || alt.ForSale {
		return ErrAlternativeUnavailable
	}
	overlapping, err := tx.Bookings().CountOverlapping(ctx, alt.ID, b.StartsAt, b.EndsAt)
	if err != nil {
		return err
	}
	if overlapping > 0 {
		return ErrAlternativeUnavailable
	}

	if err := tx.Bookings().Reassign(ctx, b.ID, alt.ID, b.Version); err != nil {
		return err
	}

	return enqueueNotification(ctx, tx, "booking_transferred", b.CustomerID, map[string]any{
		"booking_id":          b.ID,
		"alternative_item_id": alt.ID,
	})
}

// offerCompensation records the offer; payout runs in a separate system.
func (e *resolutionExecutorImpl) offerCompensation(ctx context.Context, tx shared.Tx, _ *transition.TransitionRequest, c *conflict.Conflict, res conflict.Resolution, _ risk.Tier) error {
	customerID := c.CustomerID()
	if customerID == nil {
		return ErrActionMismatch
	}
	return enqueueNotification(ctx, tx, "compensation_offered", *customerID, map[string]any{
		"conflict_id":        c.ID(),
		"compensation_cents": *res.CompensationCents,
		"note":               res.Note,
	})
}

// postponeSale succeeds when the (already postponed) sale date clears the
// conflict on its own.
func (e *resolutionExecutorImpl) postponeSale(_ context.Context, _ shared.Tx, req *transition.TransitionRequest, c *conflict.Conflict, _ conflict.Resolution, _ risk.Tier) error {
	if c.ClearsAt().IsZero() || !req.EffectiveDate().After(c.ClearsAt()) {
		return ErrPostponementTooShort
	}
	return nil
}

func (e *resolutionExecutorImpl) forceSale(ctx context.Context, tx shared.Tx, _ *transition.TransitionRequest, c *conflict.Conflict, res conflict.Resolution, approvedTier risk.Tier) error {
	if c.Type() == conflict.TypeLateRental {
		return ErrForceSaleLateRental
	}
	if !approvedTier.Covers(risk.TierSeniorManager) {
		return ErrForceSaleTierRequired
	}

	if customerID := c.CustomerID(); customerID != nil {
		return enqueueNotification(ctx, tx, "sale_forced", *customerID, map[string]any{
			"conflict_id": c.ID(),
			"note":        res.Note,
		})
	}
	return nil
}

func isBookingConflict(c *conflict.Conflict) bool {
	return c.Type() == conflict.TypeFutureBooking || c.Type() == conflict.TypePendingBooking
}

func enqueueNotification(ctx context.Context, tx shared.Tx, kind string, customerID uuid.UUID, payload map[string]any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return tx.Notifications().Enqueue(ctx, shared.NotificationJob{
		Kind:       kind,
		CustomerID: customerID,
		Payload:    raw,
	})
}
