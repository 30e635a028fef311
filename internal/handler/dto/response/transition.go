package response

import (
	"time"

	"rentaldesk/internal/usecase/commands"
	"rentaldesk/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type TransitionResponse struct {
	ID               uuid.UUID              `json:"id"`
	ItemID           uuid.UUID              `json:"item_id"`
	SalePriceCents   int64                  `json:"sale_price_cents"`
	EffectiveDate    time.Time              `json:"effective_date"`
	Status           string                 `json:"status"`
	RequiredTier     string                 `json:"required_tier"`
	FailureReason    *string                `json:"failure_reason,omitempty"`
	RollbackDeadline *time.Time             `json:"rollback_deadline,omitempty"`
	Conflicts        []queries.ConflictView `json:"conflicts"`
	Assessment       queries.AssessmentView `json:"assessment"`
}

func NewInitiateResponse(result *commands.InitiateResult) TransitionResponse {
	req := result.Request
	resp := TransitionResponse{
		ID:               req.ID(),
		ItemID:           req.ItemID(),
		SalePriceCents:   req.SalePriceCents(),
		EffectiveDate:    req.EffectiveDate(),
		Status:           req.Status().String(),
		RequiredTier:     req.RequiredTier().String(),
		RollbackDeadline: req.RollbackDeadline(),
		Conflicts:        queries.NewConflictViews(result.Conflicts),
		Assessment:       queries.NewAssessmentView(result.Assessment),
	}
	return resp
}

type RollbackErrorResponse struct {
	BookingID uuid.UUID `json:"booking_id"`
	Reason    string    `json:"reason"`
}

type RollbackResponse struct {
	Status           string                  `json:"status"`
	RestoredBookings int                     `json:"restored_bookings"`
	Errors           []RollbackErrorResponse `json:"errors,omitempty"`
}

func NewRollbackResponse(result *commands.RollbackResult) RollbackResponse {
	resp := RollbackResponse{
		Status:           result.Request.Status().String(),
		RestoredBookings: result.RestoredBookings,
	}
	_ = copier.Copy(&resp.Errors, &result.Errors)
	return resp
}
