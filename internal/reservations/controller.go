package reservations

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/fleetguard360/busbooking/internal/graphql"
	"github.com/fleetguard360/busbooking/internal/models"
	"github.com/fleetguard360/busbooking/internal/session"
	"github.com/fleetguard360/busbooking/pkg/pagination"
)

const PageSize = 5

type Executor interface {
	Execute(ctx context.Context, op graphql.Operation, variables map[string]any, sess *session.Session) (json.RawMessage, error)
}

// Controller loads and holds the caller's reservations: active-first
// ordering, cancellation eligibility and pagination. The held list is
// mutated only by Load and by the cancellation workflow's local update.
type Controller struct {
	exec Executor
	now  func() time.Time

	mu    sync.Mutex
	items []models.Reservation
	pager *pagination.Cursor
}

func NewController(exec Executor) *Controller {
	return &Controller{
		exec:  exec,
		now:   time.Now,
		pager: pagination.New(PageSize),
	}
}

// Load fetches the user's reservations and replaces the held list, sorted
// active-first. On failure the list is left empty; calling Load again is
// the retry path.
func (c *Controller) Load(ctx context.Context, sess *session.Session, userID string) ([]models.Reservation, error) {
	data, err := c.exec.Execute(ctx, graphql.ListReservations, map[string]any{"userId": userID}, sess)
	if err != nil {
		c.replace(nil)
		return nil, err
	}

	var payload struct {
		Reservations []models.Reservation `json:"reservas"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		c.replace(nil)
		return nil, fmt.Errorf("decode reservas payload: %w", err)
	}

	items := payload.Reservations
	sortReservations(items)
	c.replace(items)
	return items, nil
}

// sortReservations applies the display order: every Active reservation
// before every non-Active one; Active ascending by departure instant
// (soonest first), non-Active descending (most recent first).
func sortReservations(items []models.Reservation) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		aActive := a.Status == models.StatusActive
		bActive := b.Status == models.StatusActive
		if aActive != bActive {
			return aActive
		}
		at, aErr := a.DepartureInstant()
		bt, bErr := b.DepartureInstant()
		if aErr != nil || bErr != nil {
			return false
		}
		if aActive {
			return at.Before(bt)
		}
		return bt.Before(at)
	})
}

func (c *Controller) replace(items []models.Reservation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = items
	c.pager.Reset()
	c.pager.SetTotal(len(items))
}

// IsCancelable reports whether the reservation can still be cancelled: it
// must be Active and the departure instant must not have passed. There is
// no grace window beyond the scheduled departure.
func (c *Controller) IsCancelable(r models.Reservation) bool {
	if r.Status != models.StatusActive {
		return false
	}
	departure, err := r.DepartureInstant()
	if err != nil {
		return false
	}
	return c.now().Before(departure)
}

// Page returns the current page window of the held list.
func (c *Controller) Page() ([]models.Reservation, models.PageMetadata) {
	c.mu.Lock()
	defer c.mu.Unlock()
	start, end := c.pager.Bounds()
	return c.items[start:end], models.PageMetadata{
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

func (c *Controller) find(id string) (models.Reservation, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range c.items {
		if r.ID == id {
			return r, true
		}
	}
	return models.Reservation{}, false
}

// markCancelled is the workflow's optimistic local update after a
// successful cancellation mutation.
func (c *Controller) markCancelled(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].ID == id {
			c.items[i].Status = models.StatusCancelled
		}
	}
}
