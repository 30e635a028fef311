//go:build unit

package transition_test

import (
	"testing"
	"time"

	"rentaldesk/internal/domain/risk"
	"rentaldesk/internal/domain/transition"
	"rentaldesk/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTransitionRequest(t *testing.T) {
	t.Run("basic success case", func(t *testing.T) {
		actual, err := builder.NewTransitionBuilder().BuildDomain()
		require.NoError(t, err)
		require.NotNil(t, actual)

		assert.NotEqual(t, uuid.Nil, actual.ID())
		assert.Equal(t, transition.StatusPending, actual.Status())
		assert.Equal(t, risk.TierNone, actual.RequiredTier())
		assert.Nil(t, actual.ApproverID())
		assert.Nil(t, actual.RollbackDeadline())
	})

	cases := []struct {
		name   string
		mutate func(*builder.TransitionBuilder)
		errIs  error
	}{
		{
			name:   "zero sale price",
			mutate: func(b *builder.TransitionBuilder) { b.SalePriceCents = 0 },
			errIs:  transition.ErrNonPositivePrice,
		},
		{
			name:   "negative sale price",
			mutate: func(b *builder.TransitionBuilder) { b.SalePriceCents = -100 },
			errIs:  transition.ErrNonPositivePrice,
		},
		{
			name:   "effective date in the past",
			mutate: func(b *builder.TransitionBuilder) { b.EffectiveDate = b.Now.Add(-48 * time.Hour) },
			errIs:  transition.ErrEffectiveDateInPast,
		},
		{
			name:   "effective date earlier today",
			mutate: func(b *builder.TransitionBuilder) { b.EffectiveDate = b.Now.Add(-time.Hour) },
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := builder.NewTransitionBuilder().With(tc.mutate).BuildDomain()
			if tc.errIs != nil {
				assert.ErrorIs(t, err, tc.errIs)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestStatusMachine(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	window := 24 * time.Hour

	newProcessing := func(t *testing.T) *transition.TransitionRequest {
		req, err := builder.NewTransitionBuilder().BuildDomain()
		require.NoError(t, err)
		require.NoError(t, req.BeginProcessing())
		return req
	}

	t.Run("pending to processing to completed", func(t *testing.T) {
		req := newProcessing(t)
		require.NoError(t, req.Complete(now, window))
		assert.Equal(t, transition.StatusCompleted, req.Status())
		require.NotNil(t, req.RollbackDeadline())
		assert.Equal(t, now.Add(window), *req.RollbackDeadline())
	})

	t.Run("processing to awaiting approval and back via approve", func(t *testing.T) {
		req := newProcessing(t)
		require.NoError(t, req.Park(risk.TierManager))
		assert.Equal(t, transition.StatusAwaitingApproval, req.Status())
		assert.Equal(t, risk.TierManager, req.RequiredTier())

		approver := uuid.New()
		require.NoError(t, req.Approve(approver, risk.TierSeniorManager))
		assert.Equal(t, transition.StatusApproved, req.Status())
		require.NotNil(t, req.ApproverID())
		assert.Equal(t, approver, *req.ApproverID())

		require.NoError(t, req.BeginProcessing())
		assert.Equal(t, transition.StatusProcessing, req.Status())
	})

	t.Run("awaiting approval resumes processing when risk clears", func(t *testing.T) {
		req := newProcessing(t)
		require.NoError(t, req.Park(risk.TierSupervisor))
		require.NoError(t, req.BeginProcessing())
		assert.Equal(t, transition.StatusProcessing, req.Status())
	})

	t.Run("approve rejects insufficient tier", func(t *testing.T) {
		req := newProcessing(t)
		require.NoError(t, req.Park(risk.TierManager))
		err := req.Approve(uuid.New(), risk.TierSupervisor)
		assert.ErrorIs(t, err, risk.ErrInsufficientTier)
		assert.Equal(t, transition.StatusAwaitingApproval, req.Status())
	})

	t.Run("approve requires awaiting approval", func(t *testing.T) {
		req := newProcessing(t)
		err := req.Approve(uuid.New(), risk.TierSeniorManager)
		assert.ErrorIs(t, err, transition.ErrNotAwaitingApproval)
	})

	t.Run("terminal statuses never move again", func(t *testing.T) {
		req := newProcessing(t)
		require.NoError(t, req.Fail(transition.FailureResolution))
		assert.ErrorIs(t, req.BeginProcessing(), transition.ErrAlreadyTerminal)
		assert.ErrorIs(t, req.Complete(now, window), transition.ErrAlreadyTerminal)
		assert.ErrorIs(t, req.Reject(), transition.ErrAlreadyTerminal)
	})

	t.Run("completed cannot restart processing", func(t *testing.T) {
		req := newProcessing(t)
		require.NoError(t, req.Complete(now, window))
		assert.ErrorIs(t, req.BeginProcessing(), transition.ErrInvalidStatusTransition)
	})

	t.Run("completed rolls back exactly once", func(t *testing.T) {
		req := newProcessing(t)
		require.NoError(t, req.Complete(now, window))
		require.NoError(t, req.MarkRolledBack())
		assert.Equal(t, transition.StatusRolledBack, req.Status())
		assert.ErrorIs(t, req.MarkRolledBack(), transition.ErrAlreadyTerminal)
	})
}

func TestPostpone(t *testing.T) {
	t.Run("moves the effective date forward", func(t *testing.T) {
		b := builder.NewTransitionBuilder()
		req, err := b.BuildDomain()
		require.NoError(t, err)
		require.NoError(t, req.BeginProcessing())

		later := b.EffectiveDate.Add(10 * 24 * time.Hour)
		require.NoError(t, req.Postpone(later))
		assert.Equal(t, later, req.EffectiveDate())
	})

	t.Run("rejects a date that does not move forward", func(t *testing.T) {
		b := builder.NewTransitionBuilder()
		req, err := b.BuildDomain()
		require.NoError(t, err)
		require.NoError(t, req.BeginProcessing())

		assert.ErrorIs(t, req.Postpone(b.EffectiveDate), transition.ErrPostponeNotForward)
	})

	t.Run("rejected outside processing", func(t *testing.T) {
		b := builder.NewTransitionBuilder()
		req, err := b.BuildDomain()
		require.NoError(t, err)

		err = req.Postpone(b.EffectiveDate.Add(time.Hour))
		assert.ErrorIs(t, err, transition.ErrInvalidStatusTransition)
	})
}

func TestRollbackOpen(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	window := 24 * time.Hour

	req, err := builder.NewTransitionBuilder().BuildDomain()
	require.NoError(t, err)
	require.NoError(t, req.BeginProcessing())
	require.NoError(t, req.Complete(now, window))

	assert.True(t, req.RollbackOpen(now))
	assert.True(t, req.RollbackOpen(now.Add(window)))
	assert.False(t, req.RollbackOpen(now.Add(window+time.Second)))
}
