package repository

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"rentaldesk/internal/domain/failsafe"
	"rentaldesk/internal/infra"
	"rentaldesk/internal/infra/db"
	"rentaldesk/internal/usecase/shared"

	"github.com/google/uuid"
)

type checkpointRepository struct {
	db     db.DBTX
	logger *slog.Logger
}

func NewCheckpointRepository(dbtx db.DBTX) shared.CheckpointRepository {
	return &checkpointRepository{db: dbtx, logger: slog.Default()}
}

const createCheckpointQuery = `
INSERT INTO transition_checkpoints (
    id, transition_id, item_state, booking_states, created_at, rollback_deadline
) VALUES ($1, $2, $3, $4, $5, $6)`

func (r *checkpointRepository) Create(ctx context.Context, cp *failsafe.Checkpoint) error {
	itemState, err := json.Marshal(cp.Item())
	if err != nil {
		return infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to encode item state", err)
	}
	bookingStates, err := json.Marshal(cp.Bookings())
	if err != nil {
		return infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to encode booking states", err)
	}

	_, err = r.db.Exec(ctx, createCheckpointQuery,
		cp.ID(), cp.TransitionID(), itemState, bookingStates,
		cp.CreatedAt(), cp.RollbackDeadline())
	if err != nil {
		return wrapDBErr(r.logger, "failed to create checkpoint", err)
	}
	return nil
}

const findCheckpointQuery = `
SELECT id, transition_id, item_state, booking_states, created_at, rollback_deadline
FROM transition_checkpoints
WHERE transition_id = $1`

func (r *checkpointRepository) FindByTransitionID(ctx context.Context, transitionID uuid.UUID) (*failsafe.Checkpoint, error) {
	var (
		id, txID                    uuid.UUID
		itemState, bookingStates    []byte
		createdAt, rollbackDeadline time.Time
	)
	err := r.db.QueryRow(ctx, findCheckpointQuery, transitionID).Scan(
		&id, &txID, &itemState, &bookingStates, &createdAt, &rollbackDeadline)
	if err != nil {
		return nil, wrapDBErr(r.logger, "failed to find checkpoint", err)
	}

	var item failsafe.CapturedItem
	if err := json.Unmarshal(itemState, &item); err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "corrupt item state", err)
	}
	var bookings []failsafe.CapturedBooking
	if err := json.Unmarshal(bookingStates, &bookings); err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "corrupt booking states", err)
	}

	return failsafe.ReconstructCheckpoint(id, txID, item, bookings, createdAt, rollbackDeadline), nil
}
