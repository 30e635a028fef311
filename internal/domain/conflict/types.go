package conflict

type Type string

const (
	TypeActiveRental   Type = "ACTIVE_RENTAL"
	TypeLateRental     Type = "LATE_RENTAL"
	TypeFutureBooking  Type = "FUTURE_BOOKING"
	TypePendingBooking Type = "PENDING_BOOKING"
	TypeInventoryIssue Type = "INVENTORY_ISSUE"
)

func (t Type) String() string {
	return string(t)
}

func (t Type) IsValid() bool {
	switch t {
	case TypeActiveRental, TypeLateRental, TypeFutureBooking, TypePendingBooking, TypeInventoryIssue:
		return true
	default:
		return false
	}
}

type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

func (s Severity) String() string {
	return string(s)
}

func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	default:
		return 0
	}
}

func (s Severity) IsValid() bool {
	return s.Rank() > 0
}

type Action string

const (
	ActionWaitForReturn     Action = "wait_for_return"
	ActionCancelBooking     Action = "cancel_booking"
	ActionTransfer          Action = "transfer_to_alternative"
	ActionOfferCompensation Action = "offer_compensation"
	ActionPostponeSale      Action = "postpone_sale"
	ActionForceSale         Action = "force_sale"
)

func (a Action) String() string {
	return string(a)
}

func (a Action) IsValid() bool {
	switch a {
	case ActionWaitForReturn, ActionCancelBooking, ActionTransfer,
		ActionOfferCompensation, ActionPostponeSale, ActionForceSale:
		return true
	default:
		return false
	}
}

func NewAction(s string) (Action, error) {
	a := Action(s)
	if !a.IsValid() {
		return "", ErrInvalidAction
	}
	return a, nil
}
