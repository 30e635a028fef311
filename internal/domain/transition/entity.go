package transition

import (
	"errors"
	"time"

	"rentaldesk/internal/domain/risk"

	"github.com/google/uuid"
)

var (
	ErrNonPositivePrice        = errors.New("sale price must be positive")
	ErrEffectiveDateInPast     = errors.New("effective date cannot be in the past")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrNotAwaitingApproval     = errors.New("request is not awaiting approval")
	ErrAlreadyTerminal         = errors.New("request is in a terminal status")
	ErrPostponeNotForward      = errors.New("postponed date must be after the current effective date")
)

// TransitionRequest is one attempt to convert an item from rentable to
// sellable. Only the orchestrator mutates it, and every mutation goes
// through a status-machine guard.
type TransitionRequest struct {
	id               uuid.UUID
	itemID           uuid.UUID
	salePriceCents   int64
	effectiveDate    time.Time
	requesterID      uuid.UUID
	status           Status
	requiredTier     risk.Tier
	approverID       *uuid.UUID
	failureReason    *FailureReason
	rollbackDeadline *time.Time
	createdAt        time.Time
	updatedAt        time.Time
}

func NewTransitionRequest(
	now time.Time,
	itemID uuid.UUID,
	salePriceCents int64,
	effectiveDate time.Time,
	requesterID uuid.UUID,
) (*TransitionRequest, error) {
	if salePriceCents <= 0 {
		return nil, ErrNonPositivePrice
	}
	if effectiveDate.Before(now.Truncate(24 * time.Hour)) {
		return nil, ErrEffectiveDateInPast
	}

	return &TransitionRequest{
		id:             uuid.New(),
		itemID:         itemID,
		salePriceCents: salePriceCents,
		effectiveDate:  effectiveDate,
		requesterID:    requesterID,
		status:         StatusPending,
		requiredTier:   risk.TierNone,
	}, nil
}

func ReconstructTransitionRequest(
	id, itemID uuid.UUID,
	salePriceCents int64,
	effectiveDate time.Time,
	requesterID uuid.UUID,
	status Status,
	requiredTier risk.Tier,
	approverID *uuid.UUID,
	failureReason *FailureReason,
	rollbackDeadline *time.Time,
	createdAt, updatedAt time.Time,
) *TransitionRequest {
	return &TransitionRequest{
		id:               id,
		itemID:           itemID,
		salePriceCents:   salePriceCents,
		effectiveDate:    effectiveDate,
		requesterID:      requesterID,
		status:           status,
		requiredTier:     requiredTier,
		approverID:       approverID,
		failureReason:    failureReason,
		rollbackDeadline: rollbackDeadline,
		createdAt:        createdAt,
		updatedAt:        updatedAt,
	}
}

func (t *TransitionRequest) guard(next Status) error {
	if t.status.IsTerminal() {
		return ErrAlreadyTerminal
	}
	if !t.status.CanTransitionTo(next) {
		return ErrInvalidStatusTransition
	}
	return nil
}

// BeginProcessing moves a fresh or freshly approved request into the active
// scan/resolve phase.
func (t *TransitionRequest) BeginProcessing() error {
	if err := t.guard(StatusProcessing); err != nil {
		return err
	}
	t.status = StatusProcessing
	return nil
}

// Park suspends the request until a principal with at least the given tier
// approves it.
func (t *TransitionRequest) Park(tier risk.Tier) error {
	if err := t.guard(StatusAwaitingApproval); err != nil {
		return err
	}
	t.status = StatusAwaitingApproval
	t.requiredTier = tier
	return nil
}

// SetRequiredTier records the assessment outcome without changing status.
func (t *TransitionRequest) SetRequiredTier(tier risk.Tier) {
	t.requiredTier = tier
}

func (t *TransitionRequest) Approve(approverID uuid.UUID, approverTier risk.Tier) error {
	if t.status != StatusAwaitingApproval {
		return ErrNotAwaitingApproval
	}
	if !approverTier.Covers(t.requiredTier) {
		return risk.ErrInsufficientTier
	}
	t.status = StatusApproved
	id := approverID
	t.approverID = &id
	return nil
}

func (t *TransitionRequest) Reject() error {
	if err := t.guard(StatusRejected); err != nil {
		return err
	}
	t.status = StatusRejected
	return nil
}

// Complete marks the commit pass done and opens the rollback window.
func (t *TransitionRequest) Complete(now time.Time, rollbackWindow time.Duration) error {
	if err := t.guard(StatusCompleted); err != nil {
		return err
	}
	t.status = StatusCompleted
	deadline := now.Add(rollbackWindow)
	t.rollbackDeadline = &deadline
	return nil
}

func (t *TransitionRequest) Fail(reason FailureReason) error {
	if err := t.guard(StatusFailed); err != nil {
		return err
	}
	t.status = StatusFailed
	r := reason
	t.failureReason = &r
	return nil
}

func (t *TransitionRequest) MarkRolledBack() error {
	if err := t.guard(StatusRolledBack); err != nil {
		return err
	}
	t.status = StatusRolledBack
	return nil
}

// Postpone defers the effective sale date. Allowed only while the request is
// still being processed; the date must move forward.
func (t *TransitionRequest) Postpone(until time.Time) error {
	if t.status != StatusProcessing {
		return ErrInvalidStatusTransition
	}
	if !until.After(t.effectiveDate) {
		return ErrPostponeNotForward
	}
	t.effectiveDate = until
	return nil
}

func (t *TransitionRequest) ID() uuid.UUID                  { return t.id }
func (t *TransitionRequest) ItemID() uuid.UUID              { return t.itemID }
func (t *TransitionRequest) SalePriceCents() int64          { return t.salePriceCents }
func (t *TransitionRequest) EffectiveDate() time.Time       { return t.effectiveDate }
func (t *TransitionRequest) RequesterID() uuid.UUID         { return t.requesterID }
func (t *TransitionRequest) Status() Status                 { return t.status }
func (t *TransitionRequest) RequiredTier() risk.Tier        { return t.requiredTier }
func (t *TransitionRequest) ApproverID() *uuid.UUID         { return t.approverID }
func (t *TransitionRequest) FailureReason() *FailureReason  { return t.failureReason }
func (t *TransitionRequest) RollbackDeadline() *time.Time   { return t.rollbackDeadline }
func (t *TransitionRequest) CreatedAt() time.Time           { return t.createdAt }
func (t *TransitionRequest) UpdatedAt() time.Time           { return t.updatedAt }

// RollbackOpen reports whether the completed transition can still be
// reversed at the given instant.
func (t *TransitionRequest) RollbackOpen(now time.Time) bool {
	return t.status == StatusCompleted &&
		t.rollbackDeadline != nil &&
		!now.After(*t.rollbackDeadline)
}
