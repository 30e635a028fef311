//go:build unit || e2e

package builder

import (
	"time"

	domtransition "rentaldesk/internal/domain/transition"

	"github.com/google/uuid"
)

type TransitionBuilder struct {
	Now            time.Time
	ItemID         uuid.UUID
	SalePriceCents int64
	EffectiveDate  time.Time
	RequesterID    uuid.UUID
}

func NewTransitionBuilder() *TransitionBuilder {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	return &TransitionBuilder{
		Now:            now,
		ItemID:         uuid.New(),
		SalePriceCents: 250_000,
		EffectiveDate:  now.Add(72 * time.Hour),
		RequesterID:    uuid.New(),
	}
}

func (b *TransitionBuilder) With(mutate func(*TransitionBuilder)) *TransitionBuilder {
	mutate(b)
	return b
}

func (b *TransitionBuilder) BuildDomain() (*domtransition.TransitionRequest, error) {
	return domtransition.NewTransitionRequest(b.Now, b.ItemID, b.SalePriceCents, b.EffectiveDate, b.RequesterID)
}
