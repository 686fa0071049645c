package cart

import (
	"github.com/shopspring/decimal"

	"github.com/nairamart/storefront/internal/catalog"
)

// LineItem is one product-and-quantity row in the cart. Stock is the
// availability ceiling captured when the product entered the cart; quantity
// never exceeds it and never drops below one while the item exists.
type LineItem struct {
	ProductID  string          `json:"id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Quantity   int             `json:"quantity"`
	ImageURL   string          `json:"image_url"`
	VendorID   string          `json:"vendor_id"`
	VendorName string          `json:"vendor_name"`
	Stock      int             `json:"stock"`
}

// LineTotal returns price × quantity for this row.
func (i LineItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func (i LineItem) valid() bool {
	return i.ProductID != "" && !i.Price.IsNegative() && i.Quantity >= 1 && i.Quantity <= i.Stock
}

// newLineItem converts a validated external product record into a cart row.
func newLineItem(rec catalog.ProductRecord, quantity int) LineItem {
	return LineItem{
		ProductID:  rec.ID,
		Name:       rec.Name,
		Price:      rec.Price,
		Quantity:   quantity,
		ImageURL:   rec.ImageURL,
		VendorID:   rec.VendorID,
		VendorName: rec.VendorName,
		Stock:      rec.Stock,
	}
}

// Snapshot is an immutable copy of the cart state at a point in time.
type Snapshot struct {
	Items []LineItem `json:"items"`
}

// Subtotal returns Σ(price × quantity) over all items.
func (s Snapshot) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.Items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// Count returns Σ(quantity) over all items.
func (s Snapshot) Count() int {
	count := 0
	for _, item := range s.Items {
		count += item.Quantity
	}
	return count
}

// Empty reports whether the snapshot holds no items.
func (s Snapshot) Empty() bool {
	return len(s.Items) == 0
}
