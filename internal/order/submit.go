package order

import (
	"context"
	"sync"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// State is the submission controller's position in its lifecycle.
type State int

const (
	// StateIdle accepts a new submission.
	StateIdle State = iota
	// StateSubmitting has exactly one request in flight; further submits
	// are no-ops until it resolves.
	StateSubmitting
	// StateSuccess holds a confirmation until the user acknowledges it.
	StateSuccess
	// StateError holds a user-facing failure message; the draft is intact
	// and the user may retry.
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	}
	return "unknown"
}

// Request is the payload sent to the backend: the selected customer and the
// complete rows only.
type Request struct {
	CustomerID int64
	Items      []RequestItem
}

// RequestItem is one submitted line.
type RequestItem struct {
	ProductID int64
	Quantity  int
}

// Confirmation is the backend's answer to a successful submission. The
// controller owns it until the draft is reset.
type Confirmation struct {
	OrderID     int64
	TotalAmount decimal.Decimal
}

// Placer submits a finalized order to the backend. api.Client implements it.
type Placer interface {
	PlaceOrder(ctx context.Context, req Request) (*Confirmation, error)
}

// UserMessager is implemented by errors carrying a message fit to show the
// user, such as the backend's validation responses.
type UserMessager interface {
	UserMessage() string
}

// genericSubmitMessage is shown when the failure carries no server message.
const genericSubmitMessage = "Failed to create order."

// Controller drives a draft through submission:
//
//	idle → submitting → success
//	       submitting → error → submitting (retry)
//
// At most one submission is in flight per draft; Submit while submitting is a
// no-op, which is what keeps rapid repeated commits from creating duplicate
// orders.
type Controller struct {
	placer Placer

	mu      sync.Mutex
	state   State
	result  *Confirmation
	message string
}

// NewController creates an idle Controller submitting through placer.
func NewController(placer Placer) *Controller {
	return &Controller{placer: placer}
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Result returns the held confirmation after a successful submission.
func (c *Controller) Result() (Confirmation, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.result == nil {
		return Confirmation{}, false
	}
	return *c.result, true
}

// Message returns the user-facing failure message while in StateError.
func (c *Controller) Message() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.message
}

// CanSubmit reports whether the commit action should be enabled: a customer
// is selected, at least one row is valid, and no submission is in flight or
// awaiting acknowledgement.
func (c *Controller) CanSubmit(d *Draft, sum Summary) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateSubmitting || c.state == StateSuccess {
		return false
	}
	return submittable(d, sum)
}

func submittable(d *Draft, sum Summary) bool {
	return d.CustomerID != 0 && sum.ValidItemCount >= 1
}

// Submit serializes the draft and sends it. It returns the resulting state:
// unchanged when the guard rejects the call, StateSuccess or StateError
// otherwise. The draft itself is never modified, so a failed submission can
// be corrected and retried as-is.
func (c *Controller) Submit(ctx context.Context, d *Draft, sum Summary) State {
	c.mu.Lock()
	if c.state == StateSubmitting || c.state == StateSuccess || !submittable(d, sum) {
		state := c.state
		c.mu.Unlock()
		return state
	}
	req := buildRequest(d)
	c.state = StateSubmitting
	c.message = ""
	c.mu.Unlock()

	result, err := c.placer.PlaceOrder(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.message = submitMessage(err)
		c.state = StateError
		return c.state
	}
	c.result = result
	c.state = StateSuccess
	return c.state
}

// Acknowledge completes a successful submission: the draft returns to its
// initial shape, the confirmation is discarded, and the controller is idle
// again. Outside StateSuccess it does nothing.
func (c *Controller) Acknowledge(d *Draft) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateSuccess {
		return
	}
	d.Reset()
	c.result = nil
	c.state = StateIdle
}

// Cancel abandons the composition: the draft is reset and any failure state
// cleared. It does not interrupt an in-flight submission.
func (c *Controller) Cancel(d *Draft) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateSubmitting || c.state == StateSuccess {
		return
	}
	d.Reset()
	c.message = ""
	c.state = StateIdle
}

// buildRequest drops incomplete rows and keeps the integer coercions in one
// place.
func buildRequest(d *Draft) Request {
	req := Request{CustomerID: d.CustomerID}
	for _, item := range d.Items {
		if !item.Complete() {
			continue
		}
		req.Items = append(req.Items, RequestItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}
	return req
}

// submitMessage prefers a server-supplied message over the generic fallback.
func submitMessage(err error) string {
	var um UserMessager
	if errors.As(err, &um) {
		if msg := um.UserMessage(); msg != "" {
			return msg
		}
	}
	return genericSubmitMessage
}
