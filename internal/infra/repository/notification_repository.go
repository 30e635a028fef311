package repository

import (
	"context"
	"log/slog"

	"rentaldesk/internal/infra/db"
	"rentaldesk/internal/usecase/shared"
)

type notificationRepository struct {
	db     db.DBTX
	logger *slog.Logger
}

func NewNotificationRepository(dbtx db.DBTX) shared.NotificationRepository {
	return &notificationRepository{db: dbtx, logger: slog.Default()}
}

const enqueueNotificationQuery = `
INSERT INTO notification_jobs (kind, customer_id, payload)
VALUES ($1, $2, $3)`

func (r *notificationRepository) Enqueue(ctx context.Context, job shared.NotificationJob) error {
	_, err := r.db.Exec(ctx, enqueueNotificationQuery,
		job.Kind, job.CustomerID, []byte(job.Payload))
	if err != nil {
		return wrapDBErr(r.logger, "failed to enqueue notification job", err)
	}
	return nil
}
