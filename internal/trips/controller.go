package trips

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/fleetguard360/busbooking/internal/graphql"
	"github.com/fleetguard360/busbooking/internal/models"
	"github.com/fleetguard360/busbooking/internal/session"
	"github.com/fleetguard360/busbooking/pkg/pagination"
)

const PageSize = 10

type Executor interface {
	Execute(ctx context.Context, op graphql.Operation, variables map[string]any, sess *session.Session) (json.RawMessage, error)
}

// ErrStale marks a search whose response arrived after a newer search was
// issued; its results are discarded instead of overwriting fresher ones.
var ErrStale = errors.New("search superseded by a newer request")

// Controller runs trip searches and owns the resulting list: validation,
// one logical search operation per call, departure-time ordering and
// pagination over the held results.
type Controller struct {
	exec Executor
	seq  atomic.Uint64

	mu    sync.Mutex
	trips []models.Trip
	pager *pagination.Cursor
}

func NewController(exec Executor) *Controller {
	return &Controller{
		exec:  exec,
		pager: pagination.New(PageSize),
	}
}

// Search validates the criteria, issues the buscarViajes query and replaces
// the held result list, sorted by departure time ascending and reset to
// page 1. On failure the list is left empty.
func (c *Controller) Search(ctx context.Context, criteria models.SearchCriteria) ([]models.Trip, error) {
	if err := criteria.Validate(); err != nil {
		return nil, err
	}

	seq := c.seq.Add(1)

	variables := map[string]any{
		"input": map[string]any{
			"origen":  criteria.Origin,
			"destino": criteria.Destination,
			"fecha":   criteria.Date.Format("2006-01-02"),
		},
	}

	data, err := c.exec.Execute(ctx, graphql.SearchTrips, variables, nil)
	if err != nil {
		c.store(seq, nil)
		return nil, err
	}

	var payload struct {
		Trips []models.Trip `json:"buscarViajes"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		c.store(seq, nil)
		return nil, fmt.Errorf("decode buscarViajes payload: %w", err)
	}

	results := payload.Trips
	sort.Slice(results, func(i, j int) bool {
		// HH:MM compares lexicographically in chronological order.
		return results[i].DepartureTime < results[j].DepartureTime
	})

	if !c.store(seq, results) {
		return nil, ErrStale
	}
	return results, nil
}

// store installs the results of search seq unless a newer search has been
// issued since. Every install resets pagination to page 1.
func (c *Controller) store(seq uint64, results []models.Trip) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.seq.Load() {
		return false
	}
	c.trips = results
	c.pager.Reset()
	c.pager.SetTotal(len(results))
	return true
}

// Page returns the current page window of the held results.
func (c *Controller) Page() ([]models.Trip, models.PageMetadata) {
	c.mu.Lock()
	defer c.mu.Unlock()
	start, end := c.pager.Bounds()
	return c.trips[start:end], models.PageMetadata{
		Page:       c.pager.Page(),
		PageSize:   c.pager.PageSize(),
		TotalItems: c.pager.Total(),
		TotalPages: c.pager.TotalPages(),
	}
}

// SetPage moves to the requested page, clamped to the valid range.
func (c *Controller) SetPage(page int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pager.SetPage(page)
}

// Availability classifies how full a trip is.
type Availability string

const (
	SoldOut   Availability = "Sold out"
	FewSeats  Availability = "Few seats left"
	Available Availability = "Available"
)

func Classify(t models.Trip) Availability {
	if t.AvailableSeats <= 0 {
		return SoldOut
	}
	if t.TotalSeats > 0 && float64(t.AvailableSeats)/float64(t.TotalSeats) < 0.30 {
		return FewSeats
	}
	return Available
}

// CanReserve reports whether the reserve action is allowed for the trip;
// a sold-out trip blocks it entirely.
func CanReserve(t models.Trip) bool {
	return t.AvailableSeats > 0
}
