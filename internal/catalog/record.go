// Package catalog types the product payloads handed over by the external
// product/order data service. Records are validated once, at the point they
// enter the cart, so downstream code never sees a partial product.
package catalog

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/nairamart/storefront/pkg/errors"
)

// ProductRecord is the externally sourced product descriptor. Stock is the
// availability ceiling snapshotted at the time the record was fetched.
type ProductRecord struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	ImageURL   string          `json:"image_url"`
	Stock      int             `json:"stock"`
	VendorID   string          `json:"vendor_id"`
	VendorName string          `json:"vendor_name"`
}

// Validate rejects malformed records before they can reach the cart.
func (r ProductRecord) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if strings.TrimSpace(r.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if r.Price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "product price cannot be negative")
	}
	if r.Stock < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "product stock cannot be negative")
	}
	return nil
}

// Searcher is the suggestion surface of the product data service.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]ProductRecord, error)
}
