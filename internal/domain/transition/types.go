package transition

type Status string

const (
	StatusPending          Status = "PENDING"
	StatusProcessing       Status = "PROCESSING"
	StatusAwaitingApproval Status = "AWAITING_APPROVAL"
	StatusApproved         Status = "APPROVED"
	StatusCompleted        Status = "COMPLETED"
	StatusRejected         Status = "REJECTED"
	StatusFailed           Status = "FAILED"
	StatusRolledBack       Status = "ROLLED_BACK"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusAwaitingApproval, StatusApproved,
		StatusCompleted, StatusRejected, StatusFailed, StatusRolledBack:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the request can never change status again.
// COMPLETED is not terminal: it may still roll back within the window.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusRejected, StatusFailed, StatusRolledBack:
		return true
	default:
		return false
	}
}

// InFlight reports whether the request blocks a new transition for the same
// item. COMPLETED no longer blocks; the item is already sold.
func (s Status) InFlight() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusAwaitingApproval, StatusApproved:
		return true
	default:
		return false
	}
}

var allowedTransitions = map[Status][]Status{
	StatusPending:          {StatusProcessing, StatusRejected},
	StatusProcessing:       {StatusCompleted, StatusAwaitingApproval, StatusFailed},
	StatusAwaitingApproval: {StatusApproved, StatusRejected, StatusProcessing},
	StatusApproved:         {StatusProcessing},
	StatusCompleted:        {StatusRolledBack},
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// FailureReason distinguishes why a commit pass failed, machine-readably.
type FailureReason string

const (
	FailureConcurrency  FailureReason = "CONCURRENCY_CONFLICT"
	FailureValidation   FailureReason = "VALIDATION_ERROR"
	FailureResolution   FailureReason = "RESOLUTION_FAILED"
	FailureCollaborator FailureReason = "COLLABORATOR_UNAVAILABLE"
)

func (r FailureReason) String() string {
	return string(r)
}
