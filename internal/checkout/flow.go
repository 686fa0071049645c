package checkout

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nairamart/storefront/internal/cart"
	"github.com/nairamart/storefront/internal/orders"
	pkgerrors "github.com/nairamart/storefront/pkg/errors"
	"github.com/nairamart/storefront/pkg/logger"
)

// State identifies where the checkout flow currently is.
type State string

const (
	StateIdle       State = "IDLE"
	StateFormEntry  State = "FORM_ENTRY"
	StateSubmitting State = "SUBMITTING"
)

func (s State) String() string {
	return string(s)
}

// FlowParams groups the dependencies of the checkout flow.
type FlowParams struct {
	Cart     *cart.Store
	Placer   orders.Placer
	Rates    Rates
	Currency string
	Logger   *logger.Logger
}

// Flow drives checkout: Idle → FormEntry → Submitting → {Idle on success,
// FormEntry on failure}. Submission is gated so a second submit cannot start
// while one is outstanding; the gate is released in every path. There is no
// persisted intermediate state, so an interrupted submission leaves the cart
// intact and the order unplaced.
type Flow struct {
	mu       sync.Mutex
	state    State
	cart     *cart.Store
	placer   orders.Placer
	rates    Rates
	currency string
	logg     *logger.Logger
}

// NewFlow builds the checkout flow in the Idle state.
func NewFlow(params FlowParams) (*Flow, error) {
	if params.Cart == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart store is required")
	}
	if params.Placer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order placer is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &Flow{
		state:    StateIdle,
		cart:     params.Cart,
		placer:   params.Placer,
		rates:    params.Rates,
		currency: params.Currency,
		logg:     params.Logger,
	}, nil
}

// State returns the current flow state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Begin opens checkout for a non-empty cart and returns the form state,
// pre-filled with the signed-in user's email when known. An empty cart keeps
// the flow Idle so the caller can navigate away.
func (f *Flow) Begin(userEmail string) (*ShippingDetails, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state == StateSubmitting {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "submission in progress")
	}
	if f.cart.Len() == 0 {
		f.state = StateIdle
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "cart is empty")
	}

	f.state = StateFormEntry
	return &ShippingDetails{Email: userEmail}, nil
}

// Abandon returns the flow to Idle without touching the cart. Discards any
// form state the caller was holding.
func (f *Flow) Abandon() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateSubmitting {
		f.state = StateIdle
	}
}

// Submit validates the form, derives totals from a single cart snapshot and
// hands the order to the placement collaborator exactly once. Success clears
// the cart and returns to Idle; failure surfaces CodePaymentFailed and
// returns to FormEntry with the cart untouched.
func (f *Flow) Submit(ctx context.Context, details ShippingDetails, method orders.PaymentMethod) (*orders.Confirmation, error) {
	snapshot, err := f.enterSubmitting(details, method)
	if err != nil {
		return nil, err
	}

	order := f.buildOrder(snapshot, details, method)

	confirmation, err := f.placer.Place(ctx, order)
	if err != nil {
		f.leaveSubmitting(StateFormEntry)
		return nil, pkgerrors.Wrap(pkgerrors.CodePaymentFailed, err, "order placement failed")
	}

	if err := f.cart.Clear(ctx); err != nil {
		// The order is already placed; a failed clear only affects the
		// next session's restored cart.
		f.logg.Error(f.logg.WithField(ctx, "order_id", order.ID.String()), "clear cart after placement", err)
	}
	f.leaveSubmitting(StateIdle)
	return confirmation, nil
}

func (f *Flow) enterSubmitting(details ShippingDetails, method orders.PaymentMethod) (cart.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state == StateSubmitting {
		return cart.Snapshot{}, pkgerrors.New(pkgerrors.CodeConflict, "submission already in progress")
	}
	if f.state != StateFormEntry {
		return cart.Snapshot{}, pkgerrors.New(pkgerrors.CodeConflict, "checkout is not open")
	}
	if err := ValidationError(details); err != nil {
		return cart.Snapshot{}, err
	}
	if !method.Valid() {
		return cart.Snapshot{}, pkgerrors.New(pkgerrors.CodeValidation, "unsupported payment method")
	}

	snapshot := f.cart.Snapshot()
	if snapshot.Empty() {
		f.state = StateIdle
		return cart.Snapshot{}, pkgerrors.New(pkgerrors.CodeConflict, "cart is empty")
	}

	f.state = StateSubmitting
	return snapshot, nil
}

func (f *Flow) leaveSubmitting(next State) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = next
}

func (f *Flow) buildOrder(snapshot cart.Snapshot, details ShippingDetails, method orders.PaymentMethod) *orders.Order {
	totals := ComputeTotals(snapshot, f.rates)
	trimmed := details.normalized()

	lineItems := make([]orders.LineItem, 0, len(snapshot.Items))
	for _, item := range snapshot.Items {
		lineItems = append(lineItems, orders.LineItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			VendorID:  item.VendorID,
			Quantity:  item.Quantity,
			UnitPrice: item.Price,
			LineTotal: item.LineTotal(),
		})
	}

	return &orders.Order{
		ID:    uuid.New(),
		Items: lineItems,
		Shipping: orders.Shipping{
			FullName:   trimmed.FullName,
			Email:      trimmed.Email,
			Phone:      trimmed.Phone,
			Address:    trimmed.Address,
			City:       trimmed.City,
			State:      trimmed.State,
			PostalCode: trimmed.PostalCode,
		},
		PaymentMethod: method,
		Currency:      f.currency,
		Subtotal:      totals.Subtotal,
		ShippingFee:   totals.Shipping,
		Tax:           totals.Tax,
		Total:         totals.Total,
		CreatedAt:     time.Now().UTC(),
	}
}
