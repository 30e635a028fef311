//go:build unit || e2e

package builder

import (
	"time"

	domconflict "rentaldesk/internal/domain/conflict"

	"github.com/google/uuid"
)

type ConflictBuilder struct {
	TransitionID uuid.UUID
	Type         domconflict.Type
	Severity     domconflict.Severity
	EntityID     uuid.UUID
	CustomerID   *uuid.UUID
	ImpactCents  int64
	DetectedAt   time.Time
	ClearsAt     time.Time
}

func NewConflictBuilder() *ConflictBuilder {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	customerID := uuid.New()
	return &ConflictBuilder{
		TransitionID: uuid.New(),
		Type:         domconflict.TypeFutureBooking,
		Severity:     domconflict.SeverityMedium,
		EntityID:     uuid.New(),
		CustomerID:   &customerID,
		ImpactCents:  40_000,
		DetectedAt:   now,
		ClearsAt:     now.Add(10 * 24 * time.Hour),
	}
}

func (b *ConflictBuilder) With(mutate func(*ConflictBuilder)) *ConflictBuilder {
	mutate(b)
	return b
}

func (b *ConflictBuilder) BuildDomain() (*domconflict.Conflict, error) {
	return domconflict.NewConflict(
		b.TransitionID, b.Type, b.Severity, b.EntityID, b.CustomerID,
		b.ImpactCents, b.DetectedAt, b.ClearsAt,
	)
}
