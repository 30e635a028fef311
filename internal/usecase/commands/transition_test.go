//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"rentaldesk/internal/domain/conflict"
	"rentaldesk/internal/domain/failsafe"
	"rentaldesk/internal/domain/risk"
	"rentaldesk/internal/domain/transition"
	"rentaldesk/internal/domain/user"
	"rentaldesk/internal/infra"
	"rentaldesk/internal/pkg/clock"
	"rentaldesk/internal/usecase"
	"rentaldesk/internal/usecase/commands"
	"rentaldesk/internal/usecase/shared"
	"rentaldesk/tests/common/stub"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

var day = 24 * time.Hour

type TransitionCommandsTestSuite struct {
	suite.Suite
	uow      *stub.UoW
	clock    *clock.MockClock
	cfg      failsafe.Config
	commands commands.TransitionCommands

	now       time.Time
	itemID    uuid.UUID
	requester uuid.UUID
}

func (s *TransitionCommandsTestSuite) SetupTest() {
	s.now = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	s.uow = stub.NewUoW()
	s.clock = clock.NewMockClock(s.now)
	s.cfg = failsafe.DefaultConfig()
	s.commands = commands.NewTransitionCommands(
		s.uow, usecase.NewConflictScanner(), usecase.NewResolutionExecutor(), s.clock, s.cfg,
	)

	s.itemID = uuid.New()
	s.requester = uuid.New()
	s.uow.Tx.InventoryRepo.Items[s.itemID] = &shared.ItemSnapshot{
		ID: s.itemID, Name: "Camera rig", ValueCents: 400_000,
		RentalEligible: true, Version: 1,
	}
	s.uow.Tx.UserRepo.Roles[s.requester] = user.RoleManager
}

func TestTransitionCommandsSuite(t *testing.T) {
	suite.Run(t, new(TransitionCommandsTestSuite))
}

func (s *TransitionCommandsTestSuite) initiate() *commands.InitiateResult {
	result, err := s.commands.Initiate(context.Background(), commands.InitiateInput{
		ItemID:         s.itemID,
		SalePriceCents: 350_000,
		EffectiveDate:  s.now.Add(3 * day),
		RequesterID:    s.requester,
		RequesterRole:  user.RoleManager,
	})
	s.Require().NoError(err)
	return result
}

func (s *TransitionCommandsTestSuite) TestInitiate() {
	s.Run("clean item moves straight to processing", func() {
		s.SetupTest()
		result := s.initiate()

		s.Equal(transition.StatusProcessing, result.Request.Status())
		s.False(result.Assessment.RequiresApproval)
		s.Empty(result.Conflicts)

		stored, err := s.uow.Tx.TransitionRepo.FindByID(context.Background(), result.Request.ID())
		s.Require().NoError(err)
		s.Equal(transition.StatusProcessing, stored.Status())
		s.Require().Len(s.uow.Tx.AuditRepo.Entries, 1)
		s.Equal("transition.initiated", s.uow.Tx.AuditRepo.Entries[0].EventType)
	})

	s.Run("unknown item", func() {
		s.SetupTest()
		_, err := s.commands.Initiate(context.Background(), commands.InitiateInput{
			ItemID:         uuid.New(),
			SalePriceCents: 350_000,
			EffectiveDate:  s.now.Add(3 * day),
			RequesterID:    s.requester,
			RequesterRole:  user.RoleManager,
		})
		s.ErrorIs(err, commands.ErrItemNotFound)
	})

	s.Run("item already for sale", func() {
		s.SetupTest()
		s.uow.Tx.InventoryRepo.Items[s.itemID].ForSale = true
		_, err := s.commands.Initiate(context.Background(), commands.InitiateInput{
			ItemID:         s.itemID,
			SalePriceCents: 350_000,
			EffectiveDate:  s.now.Add(3 * day),
			RequesterID:    s.requester,
			RequesterRole:  user.RoleManager,
		})
		s.ErrorIs(err, commands.ErrItemAlreadyForSale)
	})

	s.Run("critical conflict parks the request", func() {
		s.SetupTest()
		s.uow.Tx.InventoryRepo.Rentals = []shared.RentalSnapshot{{
			ID: uuid.New(), ItemID: s.itemID, CustomerID: uuid.New(),
			StartedAt: s.now.Add(-10 * day), DueAt: s.now.Add(-day), DailyRateCents: 2000,
		}}

		result := s.initiate()

		s.Equal(transition.StatusAwaitingApproval, result.Request.Status())
		s.True(result.Assessment.RequiresApproval)
		s.Equal(risk.TierManager, result.Request.RequiredTier())
		s.Len(result.Conflicts, 1)
	})

	s.Run("value above requester authority parks at senior manager", func() {
		s.SetupTest()
		result, err := s.commands.Initiate(context.Background(), commands.InitiateInput{
			ItemID:         s.itemID,
			SalePriceCents: 350_000,
			EffectiveDate:  s.now.Add(3 * day),
			RequesterID:    s.requester,
			RequesterRole:  user.RoleStaff,
		})
		s.Require().NoError(err)
		s.Equal(transition.StatusAwaitingApproval, result.Request.Status())
		s.Equal(risk.TierSeniorManager, result.Request.RequiredTier())
	})

	s.Run("second in-flight transition for the same item is refused", func() {
		s.SetupTest()
		s.initiate()
		_, err := s.commands.Initiate(context.Background(), commands.InitiateInput{
			ItemID:         s.itemID,
			SalePriceCents: 350_000,
			EffectiveDate:  s.now.Add(3 * day),
			RequesterID:    s.requester,
			RequesterRole:  user.RoleManager,
		})
		s.ErrorIs(err, commands.ErrTransitionInProgress)
	})

	s.Run("inventory outage surfaces as collaborator down", func() {
		s.SetupTest()
		s.uow.Tx.InventoryRepo.FailItemLookup = stub.RepoErr(infra.KindDBFailure, "connection refused")
		_, err := s.commands.Initiate(context.Background(), commands.InitiateInput{
			ItemID:         s.itemID,
			SalePriceCents: 350_000,
			EffectiveDate:  s.now.Add(3 * day),
			RequesterID:    s.requester,
			RequesterRole:  user.RoleManager,
		})
		s.ErrorIs(err, commands.ErrCollaboratorDown)
	})
}

func (s *TransitionCommandsTestSuite) TestConfirm() {
	s.Run("no conflicts completes and flips the item", func() {
		s.SetupTest()
		result := s.initiate()

		req, err := s.commands.Confirm(context.Background(), commands.ConfirmInput{
			TransitionID: result.Request.ID(),
			ActorID:      s.requester,
			ActorRole:    user.RoleManager,
		})
		s.Require().NoError(err)

		s.Equal(transition.StatusCompleted, req.Status())
		s.Require().NotNil(req.RollbackDeadline())
		s.Equal(s.now.Add(s.cfg.RollbackWindow), *req.RollbackDeadline())

		item := s.uow.Tx.InventoryRepo.Items[s.itemID]
		s.True(item.ForSale)
		s.False(item.RentalEligible)
		s.Equal(int64(2), item.Version)

		_, err = s.uow.Tx.CheckpointRepo.FindByTransitionID(context.Background(), req.ID())
		s.NoError(err)
	})

	s.Run("booking conflict resolved by cancellation", func() {
		s.SetupTest()
		booking := &shared.BookingSnapshot{
			ID: uuid.New(), ItemID: s.itemID, CustomerID: uuid.New(),
			StartsAt: s.now.Add(10 * day), EndsAt: s.now.Add(12 * day),
			Status: shared.BookingStatusConfirmed, ValueCents: 20_000, Version: 1,
		}
		s.uow.Tx.BookingRepo.Bookings[booking.ID] = booking
		result := s.initiate()
		s.Require().Len(result.Conflicts, 1)

		req, err := s.commands.Confirm(context.Background(), commands.ConfirmInput{
			TransitionID: result.Request.ID(),
			ActorID:      s.requester,
			ActorRole:    user.RoleManager,
			Resolutions: map[uuid.UUID]conflict.Resolution{
				result.Conflicts[0].ID(): {Action: conflict.ActionCancelBooking},
			},
		})
		s.Require().NoError(err)

		s.Equal(transition.StatusCompleted, req.Status())
		s.Equal(shared.BookingStatusCancelled, s.uow.Tx.BookingRepo.Bookings[booking.ID].Status)

		cp, err := s.uow.Tx.CheckpointRepo.FindByTransitionID(context.Background(), req.ID())
		s.Require().NoError(err)
		s.Require().Len(cp.Bookings(), 1)
		s.Equal(booking.ID, cp.Bookings()[0].BookingID)
		s.Equal(shared.BookingStatusConfirmed, cp.Bookings()[0].Status)
	})

	s.Run("missing resolution leaves the request retryable", func() {
		s.SetupTest()
		s.uow.Tx.InventoryRepo.Holds = []shared.MaintenanceHoldSnapshot{{
			ID: uuid.New(), ItemID: s.itemID, Reason: "bent frame", OpenedAt: s.now.Add(-day),
		}}
		result := s.initiate()
		s.Require().Len(result.Conflicts, 1)

		_, err := s.commands.Confirm(context.Background(), commands.ConfirmInput{
			TransitionID: result.Request.ID(),
			ActorID:      s.requester,
			ActorRole:    user.RoleManager,
		})
		s.ErrorIs(err, commands.ErrUnresolvedConflict)

		stored, findErr := s.uow.Tx.TransitionRepo.FindByID(context.Background(), result.Request.ID())
		s.Require().NoError(findErr)
		s.Equal(transition.StatusProcessing, stored.Status())
		s.Nil(stored.FailureReason())
	})

	s.Run("strategy refusal fails the request", func() {
		s.SetupTest()
		booking := &shared.BookingSnapshot{
			ID: uuid.New(), ItemID: s.itemID, CustomerID: uuid.New(),
			StartsAt: s.now.Add(10 * day), EndsAt: s.now.Add(12 * day),
			Status: shared.BookingStatusConfirmed, ValueCents: 20_000, Version: 1,
		}
		s.uow.Tx.BookingRepo.Bookings[booking.ID] = booking
		result := s.initiate()
		s.Require().Len(result.Conflicts, 1)

		_, err := s.commands.Confirm(context.Background(), commands.ConfirmInput{
			TransitionID: result.Request.ID(),
			ActorID:      s.requester,
			ActorRole:    user.RoleManager,
			Resolutions: map[uuid.UUID]conflict.Resolution{
				result.Conflicts[0].ID(): {Action: conflict.ActionForceSale},
			},
		})
		s.ErrorIs(err, usecase.ErrForceSaleTierRequired)

		stored, findErr := s.uow.Tx.TransitionRepo.FindByID(context.Background(), result.Request.ID())
		s.Require().NoError(findErr)
		s.Equal(transition.StatusFailed, stored.Status())
		s.Require().NotNil(stored.FailureReason())
		s.Equal(transition.FailureResolution, *stored.FailureReason())
	})

	s.Run("version conflict fails the request as concurrency", func() {
		s.SetupTest()
		result := s.initiate()
		s.uow.Tx.InventoryRepo.FailSetSaleState = stub.RepoErr(infra.KindVersionConflict, "item version mismatch")

		_, err := s.commands.Confirm(context.Background(), commands.ConfirmInput{
			TransitionID: result.Request.ID(),
			ActorID:      s.requester,
			ActorRole:    user.RoleManager,
		})
		s.Require().Error(err)
		s.True(infra.IsKind(err, infra.KindVersionConflict))

		stored, findErr := s.uow.Tx.TransitionRepo.FindByID(context.Background(), result.Request.ID())
		s.Require().NoError(findErr)
		s.Equal(transition.StatusFailed, stored.Status())
		s.Require().NotNil(stored.FailureReason())
		s.Equal(transition.FailureConcurrency, *stored.FailureReason())
	})

	s.Run("commit failure after approval still lands on failed", func() {
		s.SetupTest()
		// Reads return fresh copies, so the rolled-back request reloads
		// as APPROVED when the failure gets recorded.
		s.uow.Tx.TransitionRepo.Detach = true

		result, err := s.commands.Initiate(context.Background(), commands.InitiateInput{
			ItemID:         s.itemID,
			SalePriceCents: 350_000,
			EffectiveDate:  s.now.Add(3 * day),
			RequesterID:    s.requester,
			RequesterRole:  user.RoleStaff,
		})
		s.Require().NoError(err)
		s.Require().Equal(transition.StatusAwaitingApproval, result.Request.Status())
		s.Require().NoError(s.commands.Approve(context.Background(), result.Request.ID(), uuid.New(), user.RoleSeniorManager))

		s.uow.Tx.InventoryRepo.FailSetSaleState = stub.RepoErr(infra.KindVersionConflict, "item version mismatch")
		_, err = s.commands.Confirm(context.Background(), commands.ConfirmInput{
			TransitionID: result.Request.ID(),
			ActorID:      s.requester,
			ActorRole:    user.RoleStaff,
		})
		s.Require().Error(err)
		s.True(infra.IsKind(err, infra.KindVersionConflict))

		stored, findErr := s.uow.Tx.TransitionRepo.FindByID(context.Background(), result.Request.ID())
		s.Require().NoError(findErr)
		s.Equal(transition.StatusFailed, stored.Status())
		s.Require().NotNil(stored.FailureReason())
		s.Equal(transition.FailureConcurrency, *stored.FailureReason())
	})

	s.Run("awaiting approval cannot be confirmed", func() {
		s.SetupTest()
		s.uow.Tx.InventoryRepo.Rentals = []shared.RentalSnapshot{{
			ID: uuid.New(), ItemID: s.itemID, CustomerID: uuid.New(),
			StartedAt: s.now.Add(-10 * day), DueAt: s.now.Add(-day), DailyRateCents: 2000,
		}}
		result := s.initiate()
		s.Require().Equal(transition.StatusAwaitingApproval, result.Request.Status())

		_, err := s.commands.Confirm(context.Background(), commands.ConfirmInput{
			TransitionID: result.Request.ID(),
			ActorID:      s.requester,
			ActorRole:    user.RoleManager,
		})
		s.ErrorIs(err, commands.ErrNotConfirmable)
	})

	s.Run("approval lends its tier to the confirming actor", func() {
		s.SetupTest()
		booking := &shared.BookingSnapshot{
			ID: uuid.New(), ItemID: s.itemID, CustomerID: uuid.New(),
			StartsAt: s.now.Add(10 * day), EndsAt: s.now.Add(12 * day),
			Status: shared.BookingStatusConfirmed, ValueCents: 20_000, Version: 1,
		}
		s.uow.Tx.BookingRepo.Bookings[booking.ID] = booking
		result, err := s.commands.Initiate(context.Background(), commands.InitiateInput{
			ItemID:         s.itemID,
			SalePriceCents: 350_000,
			EffectiveDate:  s.now.Add(3 * day),
			RequesterID:    s.requester,
			RequesterRole:  user.RoleStaff,
		})
		s.Require().NoError(err)
		s.Require().Equal(transition.StatusAwaitingApproval, result.Request.Status())
		s.Require().Equal(risk.TierSeniorManager, result.Request.RequiredTier())

		senior := uuid.New()
		s.Require().NoError(result.Request.Approve(senior, risk.TierSeniorManager))
		s.Require().NoError(s.uow.Tx.TransitionRepo.Save(context.Background(), result.Request))

		req, confirmErr := s.commands.Confirm(context.Background(), commands.ConfirmInput{
			TransitionID: result.Request.ID(),
			ActorID:      s.requester,
			ActorRole:    user.RoleStaff,
			Resolutions: map[uuid.UUID]conflict.Resolution{
				result.Conflicts[0].ID(): {Action: conflict.ActionForceSale},
			},
		})
		s.Require().NoError(confirmErr)
		s.Equal(transition.StatusCompleted, req.Status())
	})
}

func (s *TransitionCommandsTestSuite) TestApproveReject() {
	park := func() *commands.InitiateResult {
		s.uow.Tx.InventoryRepo.Rentals = []shared.RentalSnapshot{{
			ID: uuid.New(), ItemID: s.itemID, CustomerID: uuid.New(),
			StartedAt: s.now.Add(-10 * day), DueAt: s.now.Add(-day), DailyRateCents: 2000,
		}}
		result := s.initiate()
		s.Require().Equal(transition.StatusAwaitingApproval, result.Request.Status())
		return result
	}

	s.Run("manager approves a manager-tier request", func() {
		s.SetupTest()
		result := park()
		approver := uuid.New()

		s.Require().NoError(s.commands.Approve(context.Background(), result.Request.ID(), approver, user.RoleManager))

		stored, err := s.uow.Tx.TransitionRepo.FindByID(context.Background(), result.Request.ID())
		s.Require().NoError(err)
		s.Equal(transition.StatusApproved, stored.Status())
		s.Require().NotNil(stored.ApproverID())
		s.Equal(approver, *stored.ApproverID())
	})

	s.Run("supervisor cannot approve a manager-tier request", func() {
		s.SetupTest()
		result := park()

		err := s.commands.Approve(context.Background(), result.Request.ID(), uuid.New(), user.RoleSupervisor)
		s.ErrorIs(err, risk.ErrInsufficientTier)
	})

	s.Run("reject closes the request", func() {
		s.SetupTest()
		result := park()

		s.Require().NoError(s.commands.Reject(context.Background(), result.Request.ID(), uuid.New(), "item staying in fleet"))

		stored, err := s.uow.Tx.TransitionRepo.FindByID(context.Background(), result.Request.ID())
		s.Require().NoError(err)
		s.Equal(transition.StatusRejected, stored.Status())
	})

	s.Run("unknown transition", func() {
		s.SetupTest()
		err := s.commands.Approve(context.Background(), uuid.New(), uuid.New(), user.RoleManager)
		s.ErrorIs(err, commands.ErrTransitionNotFound)
	})
}

func (s *TransitionCommandsTestSuite) TestRollback() {
	complete := func(withBooking bool) (*transition.TransitionRequest, *shared.BookingSnapshot) {
		var booking *shared.BookingSnapshot
		if withBooking {
			booking = &shared.BookingSnapshot{
				ID: uuid.New(), ItemID: s.itemID, CustomerID: uuid.New(),
				StartsAt: s.now.Add(10 * day), EndsAt: s.now.Add(12 * day),
				Status: shared.BookingStatusConfirmed, ValueCents: 20_000, Version: 1,
			}
			s.uow.Tx.BookingRepo.Bookings[booking.ID] = booking
		}
		result := s.initiate()

		resolutions := map[uuid.UUID]conflict.Resolution{}
		if withBooking {
			s.Require().Len(result.Conflicts, 1)
			resolutions[result.Conflicts[0].ID()] = conflict.Resolution{Action: conflict.ActionCancelBooking}
		}

		req, err := s.commands.Confirm(context.Background(), commands.ConfirmInput{
			TransitionID: result.Request.ID(),
			ActorID:      s.requester,
			ActorRole:    user.RoleManager,
			Resolutions:  resolutions,
		})
		s.Require().NoError(err)
		s.Require().Equal(transition.StatusCompleted, req.Status())
		return req, booking
	}

	s.Run("restores the item and cancelled bookings", func() {
		s.SetupTest()
		req, booking := complete(true)

		result, err := s.commands.Rollback(context.Background(), req.ID(), s.requester, "sold by mistake")
		s.Require().NoError(err)

		s.Equal(transition.StatusRolledBack, result.Request.Status())
		s.Equal(1, result.RestoredBookings)
		s.Empty(result.Errors)

		item := s.uow.Tx.InventoryRepo.Items[s.itemID]
		s.False(item.ForSale)
		s.True(item.RentalEligible)

		restored := s.uow.Tx.BookingRepo.Bookings[booking.ID]
		s.Equal(shared.BookingStatusConfirmed, restored.Status)
		s.Equal(s.itemID, restored.ItemID)
	})

	s.Run("reports a booking modified since the checkpoint", func() {
		s.SetupTest()
		req, booking := complete(true)

		// Third party touches the cancelled booking before the rollback.
		s.uow.Tx.BookingRepo.Bookings[booking.ID].Version++

		result, err := s.commands.Rollback(context.Background(), req.ID(), s.requester, "sold by mistake")
		s.Require().NoError(err)

		s.Equal(0, result.RestoredBookings)
		s.Require().Len(result.Errors, 1)
		s.Equal(booking.ID, result.Errors[0].BookingID)
		s.NotEqual(shared.BookingStatusConfirmed, s.uow.Tx.BookingRepo.Bookings[booking.ID].Status)
	})

	s.Run("window expiry", func() {
		s.SetupTest()
		req, _ := complete(false)

		s.clock.Add(s.cfg.RollbackWindow + time.Minute)
		_, err := s.commands.Rollback(context.Background(), req.ID(), s.requester, "too late")
		s.ErrorIs(err, failsafe.ErrRollbackExpired)
	})

	s.Run("rolls back exactly once", func() {
		s.SetupTest()
		req, _ := complete(false)

		_, err := s.commands.Rollback(context.Background(), req.ID(), s.requester, "first")
		s.Require().NoError(err)
		_, err = s.commands.Rollback(context.Background(), req.ID(), s.requester, "second")
		s.ErrorIs(err, failsafe.ErrAlreadyRolledBack)
	})

	s.Run("never completed means no checkpoint", func() {
		s.SetupTest()
		result := s.initiate()

		_, err := s.commands.Rollback(context.Background(), result.Request.ID(), s.requester, "nothing happened")
		s.ErrorIs(err, failsafe.ErrNoCheckpoint)
	})
}

func (s *TransitionCommandsTestSuite) TestReevaluateAwaiting() {
	s.Run("resumes a request whose conflicts cleared", func() {
		s.SetupTest()
		s.uow.Tx.InventoryRepo.Rentals = []shared.RentalSnapshot{{
			ID: uuid.New(), ItemID: s.itemID, CustomerID: uuid.New(),
			StartedAt: s.now.Add(-10 * day), DueAt: s.now.Add(-day), DailyRateCents: 2000,
		}}
		result := s.initiate()
		s.Require().Equal(transition.StatusAwaitingApproval, result.Request.Status())

		// The late rental comes back.
		s.uow.Tx.InventoryRepo.Rentals = nil

		resumed, err := s.commands.ReevaluateAwaiting(context.Background())
		s.Require().NoError(err)
		s.Equal(1, resumed)

		stored, err := s.uow.Tx.TransitionRepo.FindByID(context.Background(), result.Request.ID())
		s.Require().NoError(err)
		s.Equal(transition.StatusProcessing, stored.Status())
		s.Equal(risk.TierNone, stored.RequiredTier())

		conflicts, err := s.uow.Tx.ConflictRepo.FindByTransitionID(context.Background(), result.Request.ID())
		s.Require().NoError(err)
		s.Empty(conflicts)
	})

	s.Run("still risky request stays parked", func() {
		s.SetupTest()
		s.uow.Tx.InventoryRepo.Rentals = []shared.RentalSnapshot{{
			ID: uuid.New(), ItemID: s.itemID, CustomerID: uuid.New(),
			StartedAt: s.now.Add(-10 * day), DueAt: s.now.Add(-day), DailyRateCents: 2000,
		}}
		result := s.initiate()

		resumed, err := s.commands.ReevaluateAwaiting(context.Background())
		s.Require().NoError(err)
		s.Equal(0, resumed)

		stored, err := s.uow.Tx.TransitionRepo.FindByID(context.Background(), result.Request.ID())
		s.Require().NoError(err)
		s.Equal(transition.StatusAwaitingApproval, stored.Status())
	})
}
