package repository

import (
	"context"
	"log/slog"

	"rentaldesk/internal/infra/db"
	"rentaldesk/internal/usecase/shared"

	"github.com/google/uuid"
)

type auditRepository struct {
	db     db.DBTX
	logger *slog.Logger
}

func NewAuditRepository(dbtx db.DBTX) shared.AuditRepository {
	return &auditRepository{db: dbtx, logger: slog.Default()}
}

const appendAuditQuery = `
INSERT INTO audit_log (event_type, actor_id, entity_type, entity_id, detail)
VALUES ($1, $2, $3, $4, $5)`

func (r *auditRepository) Append(ctx context.Context, entry shared.AuditEntry) error {
	var actorID *uuid.UUID
	if entry.ActorID != uuid.Nil {
		actorID = &entry.ActorID
	}

	_, err := r.db.Exec(ctx, appendAuditQuery,
		entry.EventType, actorID, entry.EntityType, entry.EntityID, []byte(entry.Detail))
	if err != nil {
		return wrapDBErr(r.logger, "failed to append audit entry", err)
	}
	return nil
}
