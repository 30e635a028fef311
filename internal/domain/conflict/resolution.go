package conflict

import "github.com/google/uuid"

// Resolution is the chosen remedy for one conflict, together with the
// parameters the executing strategy needs. It is a value: the outcome of
// executing it lands on the Conflict itself.
type Resolution struct {
	Action            Action
	AlternativeItemID *uuid.UUID
	CompensationCents *int64
	Note              string
}

// Validate checks the parameters the chosen action requires. It does not
// consult any collaborator state.
func (r Resolution) Validate() error {
	if !r.Action.IsValid() {
		return ErrInvalidAction
	}
	switch r.Action {
	case ActionTransfer:
		if r.AlternativeItemID == nil || *r.AlternativeItemID == uuid.Nil {
			return ErrMissingAlternative
		}
	case ActionOfferCompensation:
		if r.CompensationCents == nil || *r.CompensationCents <= 0 {
			return ErrMissingCompensation
		}
	}
	return nil
}
