package api

import (
	"errors"
	"net/http"

	"rentaldesk/internal/domain/failsafe"
	"rentaldesk/internal/domain/risk"
	"rentaldesk/internal/domain/transition"
	"rentaldesk/internal/domain/user"
	"rentaldesk/internal/handler/dto/request"
	"rentaldesk/internal/handler/dto/response"
	"rentaldesk/internal/handler/httperr"
	"rentaldesk/internal/handler/middleware"
	"rentaldesk/internal/usecase"
	"rentaldesk/internal/usecase/commands"
	"rentaldesk/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TransitionHandler struct {
	commands commands.TransitionCommands
	queries  queries.TransitionQueries
}

func NewTransitionHandler(cmds commands.TransitionCommands, qs queries.TransitionQueries) *TransitionHandler {
	return &TransitionHandler{
		commands: cmds,
		queries:  qs,
	}
}

// @Summary Check sale eligibility
// @Description Report conflicts and risk for selling an item, without creating a request
// @Tags transitions
// @Security BearerAuth
// @Produce json
// @Param id path string true "Item ID"
// @Success 200 {object} queries.EligibilityView
// @Failure 404 {object} httperr.Response
// @Router /items/{id}/eligibility [get]
func (h *TransitionHandler) CheckEligibility(c *gin.Context) {
	itemID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	_, role, ok := currentActor(c)
	if !ok {
		return
	}

	view, err := h.queries.CheckEligibility(c.Request.Context(), itemID, role)
	if err != nil {
		if errors.Is(err, queries.ErrItemNotFound) {
			httperr.AbortWithError(c, http.StatusNotFound, err, "Item not found", nil)
			return
		}
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}

	c.JSON(http.StatusOK, view)
}

// @Summary Initiate a sale transition
// @Description Create a transition request for an item and scan its conflicts
// @Tags transitions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body request.InitiateTransitionRequest true "Initiate request"
// @Success 201 {object} response.TransitionResponse
// @Failure 409 {object} httperr.Response
// @Router /transitions [post]
func (h *TransitionHandler) Initiate(c *gin.Context) {
	var req request.InitiateTransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}
	actor, role, ok := currentActor(c)
	if !ok {
		return
	}

	result, err := h.commands.Initiate(c.Request.Context(), commands.InitiateInput{
		ItemID:         req.ItemID,
		SalePriceCents: req.SalePriceCents,
		EffectiveDate:  req.EffectiveDate,
		RequesterID:    actor,
		RequesterRole:  role,
	})
	if err != nil {
		h.abortWithTransitionError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.NewInitiateResponse(result))
}

// @Summary Get transition status
// @Tags transitions
// @Security BearerAuth
// @Produce json
// @Param id path string true "Transition ID"
// @Success 200 {object} queries.TransitionView
// @Failure 404 {object} httperr.Response
// @Router /transitions/{id} [get]
func (h *TransitionHandler) GetStatus(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	view, err := h.queries.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, queries.ErrTransitionNotFound) {
			httperr.AbortWithError(c, http.StatusNotFound, err, "Transition not found", nil)
			return
		}
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}

	c.JSON(http.StatusOK, view)
}

// @Summary Confirm a transition
// @Description Run the commit pass with the chosen resolutions
// @Tags transitions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Transition ID"
// @Param request body request.ConfirmTransitionRequest true "Confirm request"
// @Success 200 {object} queries.TransitionView
// @Failure 409 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /transitions/{id}/confirm [post]
func (h *TransitionHandler) Confirm(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req request.ConfirmTransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}
	resolutions, err := req.ToDomain()
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid resolution action", nil)
		return
	}
	actor, role, ok := currentActor(c)
	if !ok {
		return
	}

	result, err := h.commands.Confirm(c.Request.Context(), commands.ConfirmInput{
		TransitionID:   id,
		ActorID:        actor,
		ActorRole:      role,
		Resolutions:    resolutions,
		PostponedUntil: req.PostponedUntil,
	})
	if err != nil {
		h.abortWithTransitionError(c, err)
		return
	}

	view, err := h.queries.GetByID(c.Request.Context(), result.ID())
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}
	c.JSON(http.StatusOK, view)
}

// @Summary Approve a transition
// @Tags transitions
// @Security BearerAuth
// @Produce json
// @Param id path string true "Transition ID"
// @Success 200 {object} queries.TransitionView
// @Failure 403 {object} httperr.Response
// @Router /transitions/{id}/approve [post]
func (h *TransitionHandler) Approve(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	actor, role, ok := currentActor(c)
	if !ok {
		return
	}

	if err := h.commands.Approve(c.Request.Context(), id, actor, role); err != nil {
		h.abortWithTransitionError(c, err)
		return
	}

	h.respondWithView(c, id)
}

// @Summary Reject a transition
// @Tags transitions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Transition ID"
// @Param request body request.RejectTransitionRequest true "Reject request"
// @Success 200 {object} queries.TransitionView
// @Router /transitions/{id}/reject [post]
func (h *TransitionHandler) Reject(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req request.RejectTransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}
	actor, _, ok := currentActor(c)
	if !ok {
		return
	}

	if err := h.commands.Reject(c.Request.Context(), id, actor, req.Reason); err != nil {
		h.abortWithTransitionError(c, err)
		return
	}

	h.respondWithView(c, id)
}

// @Summary Roll back a completed transition
// @Description Restore the checkpointed item and booking state within the rollback window
// @Tags transitions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Transition ID"
// @Param request body request.RollbackTransitionRequest true "Rollback request"
// @Success 200 {object} response.RollbackResponse
// @Failure 409 {object} httperr.Response
// @Failure 410 {object} httperr.Response
// @Router /transitions/{id}/rollback [post]
func (h *TransitionHandler) Rollback(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req request.RollbackTransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}
	actor, _, ok := currentActor(c)
	if !ok {
		return
	}

	result, err := h.commands.Rollback(c.Request.Context(), id, actor, req.Reason)
	if err != nil {
		h.abortWithTransitionError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.NewRollbackResponse(result))
}

func (h *TransitionHandler) respondWithView(c *gin.Context, id uuid.UUID) {
	view, err := h.queries.GetByID(c.Request.Context(), id)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *TransitionHandler) abortWithTransitionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, commands.ErrItemNotFound),
		errors.Is(err, commands.ErrTransitionNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Not found", nil)
	case errors.Is(err, commands.ErrTransitionInProgress):
		httperr.AbortWithError(c, http.StatusConflict, err, "Another transition is in progress for this item", gin.H{"code": "TRANSITION_IN_PROGRESS"})
	case errors.Is(err, commands.ErrItemAlreadyForSale):
		httperr.AbortWithError(c, http.StatusConflict, err, "Item is already for sale", nil)
	case errors.Is(err, risk.ErrInsufficientTier):
		httperr.AbortWithError(c, http.StatusForbidden, err, "Approver tier is insufficient", nil)
	case errors.Is(err, failsafe.ErrRollbackExpired):
		httperr.AbortWithError(c, http.StatusGone, err, "Rollback window has expired", gin.H{"code": "ROLLBACK_EXPIRED"})
	case errors.Is(err, failsafe.ErrNoCheckpoint):
		httperr.AbortWithError(c, http.StatusConflict, err, "Transition was never committed", gin.H{"code": "NO_CHECKPOINT"})
	case errors.Is(err, failsafe.ErrAlreadyRolledBack):
		httperr.AbortWithError(c, http.StatusConflict, err, "Transition was already rolled back", gin.H{"code": "ALREADY_ROLLED_BACK"})
	case errors.Is(err, commands.ErrNotConfirmable),
		errors.Is(err, transition.ErrNotAwaitingApproval),
		errors.Is(err, transition.ErrInvalidStatusTransition),
		errors.Is(err, transition.ErrAlreadyTerminal):
		httperr.AbortWithError(c, http.StatusConflict, err, "Transition is not in a valid status for this operation", nil)
	case errors.Is(err, commands.ErrUnresolvedConflict),
		errors.Is(err, usecase.ErrPostponementTooShort),
		errors.Is(err, usecase.ErrActionMismatch),
		errors.Is(err, usecase.ErrBookingAlreadyConverted),
		errors.Is(err, usecase.ErrAlternativeUnavailable),
		errors.Is(err, usecase.ErrForceSaleTierRequired),
		errors.Is(err, usecase.ErrForceSaleLateRental),
		errors.Is(err, usecase.ErrWaitForReturnOverdue),
		errors.Is(err, transition.ErrPostponeNotForward),
		errors.Is(err, transition.ErrNonPositivePrice),
		errors.Is(err, transition.ErrEffectiveDateInPast):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, err.Error(), nil)
	case errors.Is(err, commands.ErrCollaboratorDown):
		httperr.AbortWithError(c, http.StatusServiceUnavailable, err, "A collaborator system is unavailable", nil)
	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
	}
}

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid id", nil)
		return uuid.Nil, false
	}
	return id, true
}

func currentActor(c *gin.Context) (uuid.UUID, user.Role, bool) {
	actor, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errors.New("user not authenticated"), "User not authenticated", nil)
		return uuid.Nil, "", false
	}
	role, ok := middleware.GetUserRole(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errors.New("user role missing"), "User not authenticated", nil)
		return uuid.Nil, "", false
	}
	return actor, role, true
}
