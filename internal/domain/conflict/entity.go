package conflict

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidType         = errors.New("invalid conflict type")
	ErrInvalidSeverity     = errors.New("invalid conflict severity")
	ErrInvalidAction       = errors.New("invalid resolution action")
	ErrAlreadyResolved     = errors.New("conflict is already resolved")
	ErrNegativeImpact      = errors.New("financial impact cannot be negative")
	ErrMissingAlternative  = errors.New("transfer requires an alternative item")
	ErrMissingCompensation = errors.New("compensation requires a positive amount")
)

// Conflict is one detected obstacle to converting an item from rentable to
// sellable. Conflicts are created in bulk by the scanner and mutated only
// when the resolution executor marks them resolved.
type Conflict struct {
	id           uuid.UUID
	transitionID uuid.UUID
	ctype        Type
	severity     Severity
	entityID     uuid.UUID
	customerID   *uuid.UUID
	impactCents  int64
	detectedAt   time.Time
	// clearsAt is when the obstacle clears on its own: a rental's due date or
	// a booking's end. Zero for inventory issues, which never self-clear.
	clearsAt time.Time
	resolved bool
	action   *Action
	notes    string
}

func NewConflict(
	transitionID uuid.UUID,
	ctype Type,
	severity Severity,
	entityID uuid.UUID,
	customerID *uuid.UUID,
	impactCents int64,
	detectedAt time.Time,
	clearsAt time.Time,
) (*Conflict, error) {
	if !ctype.IsValid() {
		return nil, ErrInvalidType
	}
	if !severity.IsValid() {
		return nil, ErrInvalidSeverity
	}
	if impactCents < 0 {
		return nil, ErrNegativeImpact
	}

	return &Conflict{
		id:           uuid.New(),
		transitionID: transitionID,
		ctype:        ctype,
		severity:     severity,
		entityID:     entityID,
		customerID:   customerID,
		impactCents:  impactCents,
		detectedAt:   detectedAt,
		clearsAt:     clearsAt,
	}, nil
}

func ReconstructConflict(
	id, transitionID uuid.UUID,
	ctype Type,
	severity Severity,
	entityID uuid.UUID,
	customerID *uuid.UUID,
	impactCents int64,
	detectedAt, clearsAt time.Time,
	resolved bool,
	action *Action,
	notes string,
) *Conflict {
	return &Conflict{
		id:           id,
		transitionID: transitionID,
		ctype:        ctype,
		severity:     severity,
		entityID:     entityID,
		customerID:   customerID,
		impactCents:  impactCents,
		detectedAt:   detectedAt,
		clearsAt:     clearsAt,
		resolved:     resolved,
		action:       action,
		notes:        notes,
	}
}

// Resolve records the executed action. One-shot: a resolved conflict never
// changes again.
func (c *Conflict) Resolve(action Action, notes string) error {
	if c.resolved {
		return ErrAlreadyResolved
	}
	if !action.IsValid() {
		return ErrInvalidAction
	}
	c.resolved = true
	a := action
	c.action = &a
	c.notes = strings.TrimSpace(notes)
	return nil
}

func (c *Conflict) ID() uuid.UUID           { return c.id }
func (c *Conflict) TransitionID() uuid.UUID { return c.transitionID }
func (c *Conflict) Type() Type              { return c.ctype }
func (c *Conflict) Severity() Severity      { return c.severity }
func (c *Conflict) EntityID() uuid.UUID     { return c.entityID }
func (c *Conflict) CustomerID() *uuid.UUID  { return c.customerID }
func (c *Conflict) ImpactCents() int64      { return c.impactCents }
func (c *Conflict) DetectedAt() time.Time   { return c.detectedAt }
func (c *Conflict) ClearsAt() time.Time     { return c.clearsAt }
func (c *Conflict) Resolved() bool          { return c.resolved }
func (c *Conflict) Action() *Action         { return c.action }
func (c *Conflict) Notes() string           { return c.notes }

// IsBlocking reports whether the conflict still stands in the way of the
// transition completing.
func (c *Conflict) IsBlocking() bool {
	return !c.resolved
}
