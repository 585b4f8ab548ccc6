package checkout

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/essyessentials/storefront-backend/pkg/config"
	"github.com/essyessentials/storefront-backend/pkg/logger"
	"github.com/essyessentials/storefront-backend/pkg/metrics"
)

type stockStore interface {
	DecrementStockFloor(ctx context.Context, id uuid.UUID, qty int) (int, error)
	TryDecrementStock(ctx context.Context, id uuid.UUID, qty int) (bool, error)
	FloorDecrementStock(ctx context.Context, id uuid.UUID, qty int) error
}

// StockDecrementer lowers a product's stock after an order is persisted.
// Stock never goes below zero under either policy.
type StockDecrementer interface {
	Decrement(ctx context.Context, productID uuid.UUID, qty int) error
}

// NewStockDecrementer returns the decrementer for the configured policy.
func NewStockDecrementer(policy string, store stockStore, m *metrics.CheckoutMetrics, logg *logger.Logger) (StockDecrementer, error) {
	if store == nil {
		return nil, fmt.Errorf("stock store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	switch policy {
	case "", config.StockPolicyBestEffort:
		return bestEffortStock{store: store}, nil
	case config.StockPolicyAtomic:
		return atomicStock{store: store, metrics: m, logg: logg}, nil
	default:
		return nil, fmt.Errorf("unknown stock policy %q", policy)
	}
}

// bestEffortStock reads the row and writes back max(0, stock-qty).
// Concurrent orders for the last unit can both succeed.
type bestEffortStock struct {
	store stockStore
}

func (b bestEffortStock) Decrement(ctx context.Context, productID uuid.UUID, qty int) error {
	_, err := b.store.DecrementStockFloor(ctx, productID, qty)
	return err
}

// atomicStock uses a conditional update. On shortfall the order still
// stands: the row is clamped to zero and the oversell is recorded. A product
// that no longer exists is not an oversell.
type atomicStock struct {
	store   stockStore
	metrics *metrics.CheckoutMetrics
	logg    *logger.Logger
}

func (a atomicStock) Decrement(ctx context.Context, productID uuid.UUID, qty int) error {
	ok, err := a.store.TryDecrementStock(ctx, productID, qty)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	if err := a.store.FloorDecrementStock(ctx, productID, qty); err != nil {
		return err
	}
	a.metrics.IncOversell()
	a.logg.Warn(a.logg.WithFields(ctx, map[string]any{
		"product_id": productID.String(),
		"quantity":   qty,
	}), "checkout.stock.oversold")
	return nil
}
