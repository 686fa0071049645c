// Package orders defines the order handed to the external payment and
// order-creation collaborator at checkout, and the interface that
// collaborator sits behind.
package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod enumerates the supported checkout payment options.
type PaymentMethod string

const (
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodBank   PaymentMethod = "bank"
	PaymentMethodWallet PaymentMethod = "wallet"
)

// Valid reports whether the method is one of the supported options.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCard, PaymentMethodBank, PaymentMethodWallet:
		return true
	}
	return false
}

// LineItem is one ordered product row.
type LineItem struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	VendorID  string          `json:"vendor_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// Shipping is the delivery destination captured at checkout.
type Shipping struct {
	FullName   string `json:"full_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code,omitempty"`
}

// Order is the single atomic payload submitted to the collaborator.
type Order struct {
	ID            uuid.UUID       `json:"id"`
	Items         []LineItem      `json:"items"`
	Shipping      Shipping        `json:"shipping"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	Currency      string          `json:"currency"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	ShippingFee   decimal.Decimal `json:"shipping_fee"`
	Tax           decimal.Decimal `json:"tax"`
	Total         decimal.Decimal `json:"total"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Confirmation is returned by the collaborator on successful placement.
type Confirmation struct {
	OrderID   uuid.UUID `json:"order_id"`
	Reference string    `json:"reference"`
	PlacedAt  time.Time `json:"placed_at"`
}

// Placer is the external payment + order-creation collaborator. Placement is
// a single call: it either fully succeeds or fully fails.
type Placer interface {
	Place(ctx context.Context, order *Order) (*Confirmation, error)
}
