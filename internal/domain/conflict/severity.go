package conflict

import "time"

// Severity windows, expressed as days until the referenced booking starts or
// the rental is due back. Classification is deterministic: the same inputs
// always yield the same severity.
const (
	criticalBookingDays = 3
	highBookingDays     = 7
	mediumBookingDays   = 30
	imminentReturnDays  = 7
)

// BookingSeverity classifies a future or pending booking by how close its
// start date is. Boundary semantics: exactly 3 days out is HIGH, exactly
// 7 days is MEDIUM, exactly 30 days is MEDIUM.
func BookingSeverity(now, startsAt time.Time) Severity {
	days := startsAt.Sub(now).Hours() / 24

	switch {
	case days < criticalBookingDays:
		return SeverityCritical
	case days < highBookingDays:
		return SeverityHigh
	case days <= mediumBookingDays:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// ActiveRentalSeverity classifies an open, not-yet-late rental. A rental due
// back within 7 days sits closer to the sale date and is escalated.
func ActiveRentalSeverity(now, dueAt time.Time) Severity {
	if dueAt.Sub(now).Hours()/24 <= imminentReturnDays {
		return SeverityHigh
	}
	return SeverityMedium
}
