package reservations

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/fleetguard360/busbooking/internal/graphql"
	"github.com/fleetguard360/busbooking/internal/session"
)

// CancelState is the cancellation workflow's position:
// Idle -> Confirming -> Submitting -> Idle.
type CancelState int

const (
	StateIdle CancelState = iota
	StateConfirming
	StateSubmitting
)

func (s CancelState) String() string {
	switch s {
	case StateConfirming:
		return "confirming"
	case StateSubmitting:
		return "submitting"
	default:
		return "idle"
	}
}

var (
	ErrUnknownReservation = errors.New("reservation not found in the loaded list")
	ErrNotCancelable      = errors.New("reservation is not cancelable")
	ErrCancelPending      = errors.New("a cancellation is already awaiting confirmation")
	ErrCancelInFlight     = errors.New("a cancellation is already submitting")
	ErrNoPendingCancel    = errors.New("no cancellation awaiting confirmation")
)

// CancelRequest is the transient confirm-and-submit state; it exists only
// between Begin and the workflow's return to Idle.
type CancelRequest struct {
	ReservationID string `json:"reservationId"`
	Reason        string `json:"reason,omitempty"`
}

// CancelWorkflow confirms user intent, submits the cancellation mutation
// and reconciles the held reservation list with the outcome. At most one
// cancellation may be submitting at a time.
type CancelWorkflow struct {
	list *Controller
	exec Executor

	mu    sync.Mutex
	state CancelState
	req   CancelRequest
}

func NewCancelWorkflow(list *Controller, exec Executor) *CancelWorkflow {
	return &CancelWorkflow{list: list, exec: exec}
}

func (w *CancelWorkflow) State() CancelState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Request returns the transient request while one exists.
func (w *CancelWorkflow) Request() (CancelRequest, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.req, w.state != StateIdle
}

// Begin moves Idle -> Confirming for an eligible reservation, capturing the
// target and resetting the reason text.
func (w *CancelWorkflow) Begin(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch w.state {
	case StateConfirming:
		return ErrCancelPending
	case StateSubmitting:
		return ErrCancelInFlight
	}

	r, ok := w.list.find(id)
	if !ok {
		return ErrUnknownReservation
	}
	if !w.list.IsCancelable(r) {
		return ErrNotCancelable
	}

	w.state = StateConfirming
	w.req = CancelRequest{ReservationID: id}
	return nil
}

// SetReason records the optional free-text reason while confirming.
func (w *CancelWorkflow) SetReason(reason string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == StateConfirming {
		w.req.Reason = reason
	}
}

// Decline moves Confirming -> Idle with no side effect.
func (w *CancelWorkflow) Decline() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == StateConfirming {
		w.state = StateIdle
		w.req = CancelRequest{}
	}
}

// Confirm moves Confirming -> Submitting and invokes the cancellation
// mutation. On success the target is marked Cancelled locally and the list
// reloaded to re-establish ordering; on failure the list is untouched.
// Either way the workflow returns to Idle and the request is cleared.
func (w *CancelWorkflow) Confirm(ctx context.Context, sess *session.Session, userID string) error {
	w.mu.Lock()
	if w.state == StateSubmitting {
		w.mu.Unlock()
		return ErrCancelInFlight
	}
	if w.state != StateConfirming {
		w.mu.Unlock()
		return ErrNoPendingCancel
	}
	w.state = StateSubmitting
	req := w.req
	w.mu.Unlock()

	defer w.reset()

	variables := map[string]any{
		"reservaId": req.ReservationID,
		"motivo":    req.Reason,
	}
	if _, err := w.exec.Execute(ctx, graphql.CancelReservation, variables, sess); err != nil {
		return err
	}

	w.list.markCancelled(req.ReservationID)
	if _, err := w.list.Load(ctx, sess, userID); err != nil {
		// The cancellation itself succeeded; the stale list is the load
		// failure path of the list controller.
		log.Printf("reservations: reload after cancelling %s failed: %v", req.ReservationID, err)
	}
	return nil
}

func (w *CancelWorkflow) reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state = StateIdle
	w.req = CancelRequest{}
}
