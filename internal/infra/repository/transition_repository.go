package repository

import (
	"context"
	"log/slog"
	"time"

	"rentaldesk/internal/domain/risk"
	"rentaldesk/internal/domain/transition"
	"rentaldesk/internal/infra"
	"rentaldesk/internal/infra/db"
	"rentaldesk/internal/usecase/shared"

	"github.com/google/uuid"
)

type transitionRepository struct {
	db     db.DBTX
	logger *slog.Logger
}

func NewTransitionRepository(dbtx db.DBTX) shared.TransitionRepository {
	return &transitionRepository{db: dbtx, logger: slog.Default()}
}

const createTransitionQuery = `
INSERT INTO transition_requests (
    id, item_id, sale_price_cents, effective_date, requester_id,
    status, required_tier, approver_id, failure_reason, rollback_deadline
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

func (r *transitionRepository) Create(ctx context.Context, req *transition.TransitionRequest) error {
	_, err := r.db.Exec(ctx, createTransitionQuery,
		req.ID(),
		req.ItemID(),
		req.SalePriceCents(),
		req.EffectiveDate(),
		req.RequesterID(),
		req.Status().String(),
		req.RequiredTier().String(),
		req.ApproverID(),
		failureReasonString(req.FailureReason()),
		req.RollbackDeadline(),
	)
	if err != nil {
		return wrapDBErr(r.logger, "failed to create transition request", err)
	}
	return nil
}

const findTransitionQuery = `
SELECT id, item_id, sale_price_cents, effective_date, requester_id,
       status, required_tier, approver_id, failure_reason, rollback_deadline,
       created_at, updated_at
FROM transition_requests
WHERE id = $1`

func (r *transitionRepository) FindByID(ctx context.Context, id uuid.UUID) (*transition.TransitionRequest, error) {
	return r.scanOne(ctx, findTransitionQuery, id)
}

func (r *transitionRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*transition.TransitionRequest, error) {
	return r.scanOne(ctx, findTransitionQuery+" FOR UPDATE", id)
}

func (r *transitionRepository) scanOne(ctx context.Context, query string, id uuid.UUID) (*transition.TransitionRequest, error) {
	var (
		reqID, itemID, requesterID uuid.UUID
		salePriceCents             int64
		effectiveDate              time.Time
		status, requiredTier       string
		approverID                 *uuid.UUID
		failureReason              *string
		rollbackDeadline           *time.Time
		createdAt, updatedAt       time.Time
	)

	err := r.db.QueryRow(ctx, query, id).Scan(
		&reqID, &itemID, &salePriceCents, &effectiveDate, &requesterID,
		&status, &requiredTier, &approverID, &failureReason, &rollbackDeadline,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, wrapDBErr(r.logger, "failed to find transition request", err)
	}

	tier, err := risk.ParseTier(requiredTier)
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "corrupt required_tier", err)
	}

	var reason *transition.FailureReason
	if failureReason != nil {
		fr := transition.FailureReason(*failureReason)
		reason = &fr
	}

	return transition.ReconstructTransitionRequest(
		reqID, itemID, salePriceCents, effectiveDate, requesterID,
		transition.Status(status), tier, approverID, reason, rollbackDeadline,
		createdAt, updatedAt,
	), nil
}

const saveTransitionQuery = `
UPDATE transition_requests
SET status = $2,
    required_tier = $3,
    approver_id = $4,
    failure_reason = $5,
    rollback_deadline = $6,
    effective_date = $7,
    updated_at = now()
WHERE id = $1`

func (r *transitionRepository) Save(ctx context.Context, req *transition.TransitionRequest) error {
	tag, err := r.db.Exec(ctx, saveTransitionQuery,
		req.ID(),
		req.Status().String(),
		req.RequiredTier().String(),
		req.ApproverID(),
		failureReasonString(req.FailureReason()),
		req.RollbackDeadline(),
		req.EffectiveDate(),
	)
	if err != nil {
		return wrapDBErr(r.logger, "failed to save transition request", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr(r.logger, infra.KindNotFound, "transition request not found", nil)
	}
	return nil
}

const findIDsByStatusQuery = `
SELECT id FROM transition_requests WHERE status = $1 ORDER BY created_at`

func (r *transitionRepository) FindIDsByStatus(ctx context.Context, status transition.Status) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, findIDsByStatusQuery, status.String())
	if err != nil {
		return nil, wrapDBErr(r.logger, "failed to list transition requests", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, wrapDBErr(r.logger, "failed to scan transition id", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(r.logger, "failed to iterate transition ids", err)
	}
	return ids, nil
}

func failureReasonString(r *transition.FailureReason) *string {
	if r == nil {
		return nil
	}
	s := r.String()
	return &s
}
