package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nairamart/storefront/internal/cart"
	"github.com/nairamart/storefront/internal/catalog"
	"github.com/nairamart/storefront/internal/orders"
	pkgerrors "github.com/nairamart/storefront/pkg/errors"
	"github.com/nairamart/storefront/pkg/logger"
	"github.com/nairamart/storefront/pkg/storage"
)

type fakePlacer struct {
	fail    bool
	placed  []*orders.Order
	started chan struct{}
	release chan struct{}
}

func (f *fakePlacer) Place(ctx context.Context, order *orders.Order) (*orders.Confirmation, error) {
	if f.started != nil {
		close(f.started)
	}
	if f.release != nil {
		<-f.release
	}
	if f.fail {
		return nil, errors.New("gateway timeout")
	}
	f.placed = append(f.placed, order)
	return &orders.Confirmation{
		OrderID:   order.ID,
		Reference: "REF-001",
		PlacedAt:  time.Now().UTC(),
	}, nil
}

func flowLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})
}

func flowFixture(t *testing.T, placer orders.Placer) (*Flow, *cart.Store, *storage.MemoryStore) {
	t.Helper()
	ctx := context.Background()
	mem := storage.NewMemory()
	cartStore, err := cart.NewStore(ctx, mem, flowLogger())
	require.NoError(t, err)

	flow, err := NewFlow(FlowParams{
		Cart:     cartStore,
		Placer:   placer,
		Rates:    testRates(),
		Currency: "NGN",
		Logger:   flowLogger(),
	})
	require.NoError(t, err)
	return flow, cartStore, mem
}

func fillCart(t *testing.T, cartStore *cart.Store) {
	t.Helper()
	rec := catalog.ProductRecord{
		ID:         "p1",
		Name:       "Solar Lamp",
		Price:      decimal.NewFromInt(20000),
		Stock:      10,
		VendorID:   "vendor-1",
		VendorName: "Lagos Gadgets",
	}
	require.NoError(t, cartStore.Add(context.Background(), rec, 3))
}

func TestSubmitSuccessClearsCart(t *testing.T) {
	placer := &fakePlacer{}
	flow, cartStore, mem := flowFixture(t, placer)
	fillCart(t, cartStore)
	ctx := context.Background()

	details, err := flow.Begin("amina@example.com")
	require.NoError(t, err)
	assert.Equal(t, "amina@example.com", details.Email)
	assert.Equal(t, StateFormEntry, flow.State())

	filled := completeDetails()
	confirmation, err := flow.Submit(ctx, filled, orders.PaymentMethodCard)
	require.NoError(t, err)
	require.NotNil(t, confirmation)

	assert.Equal(t, 0, cartStore.Count())
	assert.Equal(t, StateIdle, flow.State())

	raw, err := mem.Read(ctx, storage.KeyCart)
	require.NoError(t, err)
	var items []cart.LineItem
	require.NoError(t, json.Unmarshal(raw, &items))
	assert.Empty(t, items, "durable storage must reflect the cleared cart")

	require.Len(t, placer.placed, 1)
	order := placer.placed[0]
	assert.True(t, order.Subtotal.Equal(decimal.NewFromInt(60000)))
	assert.True(t, order.ShippingFee.IsZero())
	assert.True(t, order.Tax.Equal(decimal.NewFromInt(4500)))
	assert.True(t, order.Total.Equal(decimal.NewFromInt(64500)))
	assert.Equal(t, "NGN", order.Currency)
}

func TestSubmitFailureLeavesCartIntact(t *testing.T) {
	placer := &fakePlacer{fail: true}
	flow, cartStore, _ := flowFixture(t, placer)
	fillCart(t, cartStore)

	_, err := flow.Begin("")
	require.NoError(t, err)

	before := cartStore.Snapshot()
	_, err = flow.Submit(context.Background(), completeDetails(), orders.PaymentMethodBank)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodePaymentFailed))

	after := cartStore.Snapshot()
	require.Len(t, after.Items, len(before.Items))
	assert.Equal(t, before.Count(), after.Count())
	assert.Equal(t, StateFormEntry, flow.State(), "failure returns to the form for retry")

	// Retry succeeds once the collaborator recovers.
	placer.fail = false
	confirmation, err := flow.Submit(context.Background(), completeDetails(), orders.PaymentMethodBank)
	require.NoError(t, err)
	assert.NotNil(t, confirmation)
	assert.Equal(t, 0, cartStore.Count())
}

func TestBeginWithEmptyCart(t *testing.T) {
	flow, _, _ := flowFixture(t, &fakePlacer{})

	_, err := flow.Begin("")
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeConflict))
	assert.Equal(t, StateIdle, flow.State())
}

func TestSubmitRequiresOpenCheckout(t *testing.T) {
	flow, cartStore, _ := flowFixture(t, &fakePlacer{})
	fillCart(t, cartStore)

	_, err := flow.Submit(context.Background(), completeDetails(), orders.PaymentMethodCard)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeConflict))
}

func TestSubmitRejectsIncompleteShipping(t *testing.T) {
	flow, cartStore, _ := flowFixture(t, &fakePlacer{})
	fillCart(t, cartStore)
	_, err := flow.Begin("")
	require.NoError(t, err)

	details := completeDetails()
	details.Phone = ""
	_, err = flow.Submit(context.Background(), details, orders.PaymentMethodCard)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
	assert.Equal(t, 3, cartStore.Count())
}

func TestSubmitRejectsUnknownPaymentMethod(t *testing.T) {
	flow, cartStore, _ := flowFixture(t, &fakePlacer{})
	fillCart(t, cartStore)
	_, err := flow.Begin("")
	require.NoError(t, err)

	_, err = flow.Submit(context.Background(), completeDetails(), orders.PaymentMethod("cash"))
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestReentrantSubmitIsRejected(t *testing.T) {
	placer := &fakePlacer{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	flow, cartStore, _ := flowFixture(t, placer)
	fillCart(t, cartStore)
	_, err := flow.Begin("")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := flow.Submit(context.Background(), completeDetails(), orders.PaymentMethodWallet)
		done <- err
	}()

	<-placer.started
	_, err = flow.Submit(context.Background(), completeDetails(), orders.PaymentMethodWallet)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeConflict))

	close(placer.release)
	require.NoError(t, <-done)
	assert.Equal(t, StateIdle, flow.State())
}

func TestAbandonReturnsToIdle(t *testing.T) {
	flow, cartStore, _ := flowFixture(t, &fakePlacer{})
	fillCart(t, cartStore)

	_, err := flow.Begin("")
	require.NoError(t, err)
	flow.Abandon()

	assert.Equal(t, StateIdle, flow.State())
	assert.Equal(t, 3, cartStore.Count(), "abandoning checkout keeps the cart")
}
