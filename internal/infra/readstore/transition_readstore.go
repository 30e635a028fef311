package readstore

import (
	"context"
	"log/slog"
	"time"

	"rentaldesk/internal/infra/db"
	"rentaldesk/internal/usecase/queries"

	"github.com/google/uuid"
)

type TransitionReadStore struct {
	db     db.DBTX
	logger *slog.Logger
}

func NewTransitionReadStore(dbtx db.DBTX) *TransitionReadStore {
	return &TransitionReadStore{db: dbtx, logger: slog.Default()}
}

const findTransitionViewQuery = `
SELECT id, item_id, sale_price_cents, effective_date, requester_id,
       status, required_tier, approver_id, failure_reason, rollback_deadline,
       created_at, updated_at
FROM transition_requests
WHERE id = $1`

const findConflictViewsQuery = `
SELECT id, conflict_type, severity, entity_id, customer_id,
       impact_cents, detected_at, clears_at, resolved, action, notes
FROM transition_conflicts
WHERE transition_id = $1
ORDER BY detected_at, id`

func (s *TransitionReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.TransitionView, error) {
	var view queries.TransitionView
	err := s.db.QueryRow(ctx, findTransitionViewQuery, id).Scan(
		&view.ID, &view.ItemID, &view.SalePriceCents, &view.EffectiveDate, &view.RequesterID,
		&view.Status, &view.RequiredTier, &view.ApproverID, &view.FailureReason, &view.RollbackDeadline,
		&view.CreatedAt, &view.UpdatedAt,
	)
	if err != nil {
		return nil, wrapReadErr(s.logger, "failed to find transition", err)
	}

	conflicts, err := s.findConflicts(ctx, id)
	if err != nil {
		return nil, err
	}
	view.Conflicts = conflicts
	return &view, nil
}

func (s *TransitionReadStore) findConflicts(ctx context.Context, transitionID uuid.UUID) ([]queries.ConflictView, error) {
	rows, err := s.db.Query(ctx, findConflictViewsQuery, transitionID)
	if err != nil {
		return nil, wrapReadErr(s.logger, "failed to find transition conflicts", err)
	}
	defer rows.Close()

	views := []queries.ConflictView{}
	for rows.Next() {
		var (
			v        queries.ConflictView
			clearsAt *time.Time
		)
		if err := rows.Scan(&v.ID, &v.Type, &v.Severity, &v.EntityID, &v.CustomerID,
			&v.ImpactCents, &v.DetectedAt, &clearsAt, &v.Resolved, &v.Action, &v.Notes); err != nil {
			return nil, wrapReadErr(s.logger, "failed to scan conflict view", err)
		}
		v.ClearsAt = clearsAt
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapReadErr(s.logger, "failed to iterate conflict views", err)
	}
	return views, nil
}
