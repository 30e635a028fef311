package queries

import (
	"context"
	"time"

	"rentaldesk/internal/domain/conflict"
	"rentaldesk/internal/domain/failsafe"
	"rentaldesk/internal/domain/risk"
	"rentaldesk/internal/domain/user"
	"rentaldesk/internal/infra"
	"rentaldesk/internal/pkg/clock"
	"rentaldesk/internal/pkg/errs"
	"rentaldesk/internal/usecase"
	"rentaldesk/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrTransitionNotFound = errs.New("transition not found")
	ErrItemNotFound       = errs.New("item not found")
)

type ConflictView struct {
	ID          uuid.UUID  `json:"id"`
	Type        string     `json:"type"`
	Severity    string     `json:"severity"`
	EntityID    uuid.UUID  `json:"entity_id"`
	CustomerID  *uuid.UUID `json:"customer_id,omitempty"`
	ImpactCents int64      `json:"impact_cents"`
	DetectedAt  time.Time  `json:"detected_at"`
	ClearsAt    *time.Time `json:"clears_at,omitempty"`
	Resolved    bool       `json:"resolved"`
	Action      *string    `json:"action,omitempty"`
	Notes       string     `json:"notes,omitempty"`
}

type AssessmentView struct {
	RequiresApproval   bool   `json:"requires_approval"`
	RequiredTier       string `json:"required_tier"`
	RevenueImpactCents int64  `json:"revenue_impact_cents"`
	AffectedCustomers  int    `json:"affected_customers"`
	CriticalConflicts  int    `json:"critical_conflicts"`
}

type TransitionView struct {
	ID               uuid.UUID      `json:"id"`
	ItemID           uuid.UUID      `json:"item_id"`
	SalePriceCents   int64          `json:"sale_price_cents"`
	EffectiveDate    time.Time      `json:"effective_date"`
	RequesterID      uuid.UUID      `json:"requester_id"`
	Status           string         `json:"status"`
	RequiredTier     string         `json:"required_tier"`
	ApproverID       *uuid.UUID     `json:"approver_id,omitempty"`
	FailureReason    *string        `json:"failure_reason,omitempty"`
	RollbackDeadline *time.Time     `json:"rollback_deadline,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	Conflicts        []ConflictView `json:"conflicts"`
}

type EligibilityView struct {
	ItemID     uuid.UUID      `json:"item_id"`
	Eligible   bool           `json:"eligible"`
	Conflicts  []ConflictView `json:"conflicts"`
	Assessment AssessmentView `json:"assessment"`
}

type TransitionReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*TransitionView, error)
}

type TransitionQueries interface {
	GetByID(ctx context.Context, id uuid.UUID) (*TransitionView, error)
	CheckEligibility(ctx context.Context, itemID uuid.UUID, actorRole user.Role) (*EligibilityView, error)
}

type transitionQueriesImpl struct {
	readStore TransitionReadStore
	uow       shared.UnitOfWork
	scanner   usecase.ConflictScanner
	clock     clock.Clock
	cfg       failsafe.Config
}

func NewTransitionQueries(
	readStore TransitionReadStore,
	uow shared.UnitOfWork,
	scanner usecase.ConflictScanner,
	clk clock.Clock,
	cfg failsafe.Config,
) TransitionQueries {
	return &transitionQueriesImpl{
		readStore: readStore,
		uow:       uow,
		scanner:   scanner,
		clock:     clk,
		cfg:       cfg,
	}
}

func (q *transitionQueriesImpl) GetByID(ctx context.Context, id uuid.UUID) (*TransitionView, error) {
	view, err := q.readStore.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrTransitionNotFound
		}
		return nil, err
	}
	return view, nil
}

// CheckEligibility reports what stands in the way of selling an item without
// creating a request. The scan runs in a read-only transaction so the
// conflict set and the assessment come from one snapshot.
func (q *transitionQueriesImpl) CheckEligibility(ctx context.Context, itemID uuid.UUID, actorRole user.Role) (*EligibilityView, error) {
	now := q.clock.Now()

	var view *EligibilityView
	err := q.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		item, err := tx.Inventory().ItemByID(ctx, itemID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrItemNotFound
			}
			return err
		}

		conflicts, err := q.scanner.Scan(ctx, tx, uuid.Nil, itemID, now)
		if err != nil {
			return err
		}

		assessment := risk.Evaluate(conflicts, item.ValueCents, actorRole.SaleAuthorityLimitCents(), q.cfg)
		view = &EligibilityView{
			ItemID:     itemID,
			Eligible:   !item.ForSale && len(conflicts) == 0,
			Conflicts:  NewConflictViews(conflicts),
			Assessment: NewAssessmentView(assessment),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func NewConflictViews(conflicts []*conflict.Conflict) []ConflictView {
	views := make([]ConflictView, 0, len(conflicts))
	for _, c := range conflicts {
		views = append(views, NewConflictView(c))
	}
	return views
}

func NewConflictView(c *conflict.Conflict) ConflictView {
	v := ConflictView{
		ID:          c.ID(),
		Type:        c.Type().String(),
		Severity:    c.Severity().String(),
		EntityID:    c.EntityID(),
		CustomerID:  c.CustomerID(),
		ImpactCents: c.ImpactCents(),
		DetectedAt:  c.DetectedAt(),
		Resolved:    c.Resolved(),
		Notes:       c.Notes(),
	}
	if !c.ClearsAt().IsZero() {
		t := c.ClearsAt()
		v.ClearsAt = &t
	}
	if a := c.Action(); a != nil {
		s := a.String()
		v.Action = &s
	}
	return v
}

func NewAssessmentView(a risk.Assessment) AssessmentView {
	return AssessmentView{
		RequiresApproval:   a.RequiresApproval,
		RequiredTier:       a.Tier.String(),
		RevenueImpactCents: a.RevenueImpactCents,
		AffectedCustomers:  a.AffectedCustomers,
		CriticalConflicts:  a.CriticalConflicts,
	}
}
