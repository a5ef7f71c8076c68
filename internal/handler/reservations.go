package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/fleetguard360/busbooking/internal/graphql"
	"github.com/fleetguard360/busbooking/internal/models"
	"github.com/fleetguard360/busbooking/internal/reservations"
	"github.com/fleetguard360/busbooking/internal/session"
)

type ReservationsHandler struct {
	controller *reservations.Controller
	workflow   *reservations.CancelWorkflow
	sessions   session.Store
}

func NewReservationsHandler(controller *reservations.Controller, workflow *reservations.CancelWorkflow, sessions session.Store) *ReservationsHandler {
	return &ReservationsHandler{
		controller: controller,
		workflow:   workflow,
		sessions:   sessions,
	}
}

type reservationView struct {
	models.Reservation
	Cancelable bool `json:"cancelable"`
}

type reservationsPageResponse struct {
	Metadata     models.PageMetadata `json:"metadata"`
	Reservations []reservationView   `json:"reservations"`
}

// List reloads the user's reservations and returns the requested page.
func (h *ReservationsHandler) List(c echo.Context) error {
	sess, userID, err := h.authenticate(c)
	if err != nil {
		return h.authResponse(c, err)
	}

	if _, err := h.controller.Load(c.Request().Context(), &sess, userID); err != nil {
		return h.loadError(c, err)
	}
	if p := c.QueryParam("page"); p != "" {
		page, err := parsePage(p)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "invalid_request",
				Message: "page must be a positive integer",
				Code:    http.StatusBadRequest,
			})
		}
		h.controller.SetPage(page)
	}
	return c.JSON(http.StatusOK, h.page())
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

// BeginCancel opens the confirm step for one eligible reservation.
func (h *ReservationsHandler) BeginCancel(c echo.Context) error {
	if _, _, err := h.authenticate(c); err != nil {
		return h.authResponse(c, err)
	}

	if err := h.workflow.Begin(c.Param("id")); err != nil {
		return h.cancelError(c, err)
	}
	req, _ := h.workflow.Request()
	return c.JSON(http.StatusOK, map[string]any{
		"state":   h.workflow.State().String(),
		"request": req,
	})
}

// ConfirmCancel submits the pending cancellation.
func (h *ReservationsHandler) ConfirmCancel(c echo.Context) error {
	sess, userID, err := h.authenticate(c)
	if err != nil {
		return h.authResponse(c, err)
	}

	var req cancelRequest
	if err := c.Bind(&req); err == nil && req.Reason != "" {
		h.workflow.SetReason(req.Reason)
	}

	if err := h.workflow.Confirm(c.Request().Context(), &sess, userID); err != nil {
		return h.cancelError(c, err)
	}
	return c.JSON(http.StatusOK, h.page())
}

// DeclineCancel abandons the confirm step with no side effect.
func (h *ReservationsHandler) DeclineCancel(c echo.Context) error {
	if _, _, err := h.authenticate(c); err != nil {
		return h.authResponse(c, err)
	}
	h.workflow.Decline()
	return c.JSON(http.StatusOK, map[string]string{"state": h.workflow.State().String()})
}

func (h *ReservationsHandler) page() reservationsPageResponse {
	items, meta := h.controller.Page()
	views := make([]reservationView, len(items))
	for i, r := range items {
		views[i] = reservationView{
			Reservation: r,
			Cancelable:  h.controller.IsCancelable(r),
		}
	}
	return reservationsPageResponse{Metadata: meta, Reservations: views}
}

var (
	errMissingUser = errors.New("user query parameter is required")
	errNoSession   = errors.New("no active session; log in first")
)

// authenticate resolves the caller's stored session. The user query
// parameter names the account; the session must have been acquired through
// the login endpoint.
func (h *ReservationsHandler) authenticate(c echo.Context) (session.Session, string, error) {
	username := c.QueryParam("user")
	if username == "" {
		return session.Session{}, "", errMissingUser
	}
	sess, ok := h.sessions.Get(c.Request().Context(), username)
	if !ok {
		return session.Session{}, "", errNoSession
	}
	userID := sess.PassengerID
	if userID == "" {
		userID = username
	}
	return sess, userID, nil
}

func (h *ReservationsHandler) authResponse(c echo.Context, err error) error {
	if errors.Is(err, errMissingUser) {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: errMissingUser.Error(),
			Code:    http.StatusBadRequest,
		})
	}
	return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
		Error:   "unauthenticated",
		Message: errNoSession.Error(),
		Code:    http.StatusUnauthorized,
	})
}

func (h *ReservationsHandler) loadError(c echo.Context, err error) error {
	var query *graphql.QueryError
	if errors.As(err, &query) {
		return c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Error:   "load_error",
			Message: "Failed to load reservations: " + query.Message,
			Code:    http.StatusBadGateway,
		})
	}
	return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error:   "load_error",
		Message: "Failed to load reservations: " + err.Error(),
		Code:    http.StatusInternalServerError,
	})
}

func (h *ReservationsHandler) cancelError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, reservations.ErrUnknownReservation):
		return c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "not_found",
			Message: err.Error(),
			Code:    http.StatusNotFound,
		})
	case errors.Is(err, reservations.ErrNotCancelable),
		errors.Is(err, reservations.ErrCancelPending),
		errors.Is(err, reservations.ErrCancelInFlight),
		errors.Is(err, reservations.ErrNoPendingCancel):
		return c.JSON(http.StatusConflict, models.ErrorResponse{
			Error:   "cancel_rejected",
			Message: err.Error(),
			Code:    http.StatusConflict,
		})
	}
	var query *graphql.QueryError
	if errors.As(err, &query) {
		return c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Error:   "cancel_error",
			Message: "Failed to cancel reservation: " + query.Message,
			Code:    http.StatusBadGateway,
		})
	}
	return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error:   "cancel_error",
		Message: "Failed to cancel reservation: " + err.Error(),
		Code:    http.StatusInternalServerError,
	})
}

func parsePage(s string) (int, error) {
	page, err := strconv.Atoi(s)
	if err != nil || page < 1 {
		return 0, errors.New("invalid page")
	}
	return page, nil
}
