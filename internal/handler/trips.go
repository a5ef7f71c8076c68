package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/fleetguard360/busbooking/internal/graphql"
	"github.com/fleetguard360/busbooking/internal/models"
	"github.com/fleetguard360/busbooking/internal/trips"
)

type TripsHandler struct {
	controller *trips.Controller
}

func NewTripsHandler(controller *trips.Controller) *TripsHandler {
	return &TripsHandler{controller: controller}
}

type searchRequest struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Date        string `json:"date"`
}

type tripView struct {
	models.Trip
	Availability trips.Availability `json:"availability"`
	CanReserve   bool               `json:"can_reserve"`
}

type tripsPageResponse struct {
	Metadata models.PageMetadata `json:"metadata"`
	Trips    []tripView          `json:"trips"`
}

// Search runs a new trip search and returns the first page of results.
func (h *TripsHandler) Search(c echo.Context) error {
	var req searchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Failed to parse request body: " + err.Error(),
			Code:    http.StatusBadRequest,
		})
	}

	criteria := models.SearchCriteria{
		Origin:      req.Origin,
		Destination: req.Destination,
	}
	if req.Date != "" {
		date, err := time.ParseInLocation("2006-01-02", req.Date, time.Local)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "validation_error",
				Message: "date must be formatted as YYYY-MM-DD",
				Code:    http.StatusBadRequest,
				Fields:  map[string]string{"date": "date must be formatted as YYYY-MM-DD"},
			})
		}
		criteria.Date = date
	}

	if _, err := h.controller.Search(c.Request().Context(), criteria); err != nil {
		return h.searchError(c, err)
	}
	return c.JSON(http.StatusOK, h.page())
}

// Page serves pagination over the most recent search results.
func (h *TripsHandler) Page(c echo.Context) error {
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

func (h *TripsHandler) page() tripsPageResponse {
	items, meta := h.controller.Page()
	views := make([]tripView, len(items))
	for i, t := range items {
		views[i] = tripView{
			Trip:         t,
			Availability: trips.Classify(t),
			CanReserve:   trips.CanReserve(t),
		}
	}
	return tripsPageResponse{Metadata: meta, Trips: views}
}

func (h *TripsHandler) searchError(c echo.Context, err error) error {
	var validation models.ValidationError
	if errors.As(err, &validation) {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: validation.Error(),
			Code:    http.StatusBadRequest,
			Fields:  validation,
		})
	}
	if errors.Is(err, trips.ErrStale) {
		return c.JSON(http.StatusConflict, models.ErrorResponse{
			Error:   "stale_search",
			Message: "A newer search was issued before this one completed",
			Code:    http.StatusConflict,
		})
	}
	var query *graphql.QueryError
	if errors.As(err, &query) {
		return c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Error:   "search_error",
			Message: "Failed to search trips: " + query.Message,
			Code:    http.StatusBadGateway,
		})
	}
	return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error:   "search_error",
		Message: "Failed to search trips: " + err.Error(),
		Code:    http.StatusInternalServerError,
	})
}
