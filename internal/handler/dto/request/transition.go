package request

import (
	"time"

	"rentaldesk/internal/domain/conflict"

	"github.com/google/uuid"
)

type InitiateTransitionRequest struct {
	ItemID         uuid.UUID `json:"item_id" binding:"required"`
	SalePriceCents int64     `json:"sale_price_cents" binding:"required,gt=0"`
	EffectiveDate  time.Time `json:"effective_date" binding:"required"`
}

type ResolutionRequest struct {
	ConflictID        uuid.UUID  `json:"conflict_id" binding:"required"`
	Action            string     `json:"action" binding:"required"`
	AlternativeItemID *uuid.UUID `json:"alternative_item_id,omitempty"`
	CompensationCents *int64     `json:"compensation_cents,omitempty"`
	Note              string     `json:"note,omitempty"`
}

type ConfirmTransitionRequest struct {
	Resolutions    []ResolutionRequest `json:"resolutions"`
	PostponedUntil *time.Time          `json:"postponed_until,omitempty"`
}

// ToDomain maps the posted resolutions by conflict id. Unknown actions are
// refused here, before the orchestrator runs.
func (r *ConfirmTransitionRequest) ToDomain() (map[uuid.UUID]conflict.Resolution, error) {
	resolutions := make(map[uuid.UUID]conflict.Resolution, len(r.Resolutions))
	for _, res := range r.Resolutions {
		action, err := conflict.NewAction(res.Action)
		if err != nil {
			return nil, err
		}
		resolutions[res.ConflictID] = conflict.Resolution{
			Action:            action,
			AlternativeItemID: res.AlternativeItemID,
			CompensationCents: res.CompensationCents,
			Note:              res.Note,
		}
	}
	return resolutions, nil
}

type RejectTransitionRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type RollbackTransitionRequest struct {
	Reason string `json:"reason" binding:"required"`
}
