package repository

import (
	"context"
	"log/slog"
	"time"

	"rentaldesk/internal/domain/conflict"
	"rentaldesk/internal/infra"
	"rentaldesk/internal/infra/db"
	"rentaldesk/internal/usecase/shared"

	"github.com/google/uuid"
)

type conflictRepository struct {
	db     db.DBTX
	logger *slog.Logger
}

func NewConflictRepository(dbtx db.DBTX) shared.ConflictRepository {
	return &conflictRepository{db: dbtx, logger: slog.Default()}
}

const createConflictQuery = `
INSERT INTO transition_conflicts (
    id, transition_id, conflict_type, severity, entity_id, customer_id,
    impact_cents, detected_at, clears_at, resolved, action, notes
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

func (r *conflictRepository) CreateBatch(ctx context.Context, conflicts []*conflict.Conflict) error {
	for _, c := range conflicts {
		_, err := r.db.Exec(ctx, createConflictQuery,
			c.ID(),
			c.TransitionID(),
			c.Type().String(),
			c.Severity().String(),
			c.EntityID(),
			c.CustomerID(),
			c.ImpactCents(),
			c.DetectedAt(),
			nullableTime(c.ClearsAt()),
			c.Resolved(),
			actionString(c.Action()),
			c.Notes(),
		)
		if err != nil {
			return wrapDBErr(r.logger, "failed to create conflict", err)
		}
	}
	return nil
}

const findConflictsQuery = `
SELECT id, transition_id, conflict_type, severity, entity_id, customer_id,
       impact_cents, detected_at, clears_at, resolved, action, notes
FROM transition_conflicts
WHERE transition_id = $1
ORDER BY detected_at, id`

func (r *conflictRepository) FindByTransitionID(ctx context.Context, transitionID uuid.UUID) ([]*conflict.Conflict, error) {
	rows, err := r.db.Query(ctx, findConflictsQuery, transitionID)
	if err != nil {
		return nil, wrapDBErr(r.logger, "failed to find conflicts", err)
	}
	defer rows.Close()

	var conflicts []*conflict.Conflict
	for rows.Next() {
		var (
			id, txID    uuid.UUID
			ctype       string
			severity    string
			entityID    uuid.UUID
			customerID  *uuid.UUID
			impactCents int64
			detectedAt  time.Time
			clearsAt    *time.Time
			resolved    bool
			action      *string
			notes       string
		)
		if err := rows.Scan(&id, &txID, &ctype, &severity, &entityID, &customerID,
			&impactCents, &detectedAt, &clearsAt, &resolved, &action, &notes); err != nil {
			return nil, wrapDBErr(r.logger, "failed to scan conflict", err)
		}

		var a *conflict.Action
		if action != nil {
			act := conflict.Action(*action)
			a = &act
		}
		var clears time.Time
		if clearsAt != nil {
			clears = *clearsAt
		}

		conflicts = append(conflicts, conflict.ReconstructConflict(
			id, txID, conflict.Type(ctype), conflict.Severity(severity),
			entityID, customerID, impactCents, detectedAt, clears,
			resolved, a, notes,
		))
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(r.logger, "failed to iterate conflicts", err)
	}
	return conflicts, nil
}

const saveConflictQuery = `
UPDATE transition_conflicts
SET resolved = $2, action = $3, notes = $4
WHERE id = $1`

func (r *conflictRepository) Save(ctx context.Context, c *conflict.Conflict) error {
	tag, err := r.db.Exec(ctx, saveConflictQuery,
		c.ID(), c.Resolved(), actionString(c.Action()), c.Notes())
	if err != nil {
		return wrapDBErr(r.logger, "failed to save conflict", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr(r.logger, infra.KindNotFound, "conflict not found", nil)
	}
	return nil
}

const deleteConflictsQuery = `DELETE FROM transition_conflicts WHERE transition_id = $1`

func (r *conflictRepository) DeleteByTransitionID(ctx context.Context, transitionID uuid.UUID) error {
	if _, err := r.db.Exec(ctx, deleteConflictsQuery, transitionID); err != nil {
		return wrapDBErr(r.logger, "failed to delete conflicts", err)
	}
	return nil
}

func actionString(a *conflict.Action) *string {
	if a == nil {
		return nil
	}
	s := a.String()
	return &s
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
