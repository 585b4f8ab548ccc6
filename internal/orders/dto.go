package orders

import (
	"github.com/shopspring/decimal"

	"github.com/essyessentials/storefront-backend/pkg/db/models"
	"github.com/essyessentials/storefront-backend/pkg/money"
)

// GainBreakdown is derived from the order's item snapshot, so it reflects
// prices and costs at placement time.
type GainBreakdown struct {
	TotalSales    int64           `json:"total_sales"`
	TotalCost     int64           `json:"total_cost"`
	Gain          int64           `json:"gain"`
	MarginPercent decimal.Decimal `json:"margin_percent"`
}

// Gain computes Σ price×qty − Σ cost×qty over the order's items. Shipping
// fees are not part of the gain.
func Gain(order *models.Order) GainBreakdown {
	var b GainBreakdown
	for _, item := range order.Items {
		b.TotalSales += item.LineTotal()
		b.TotalCost += item.LineCost()
	}
	b.Gain = b.TotalSales - b.TotalCost
	b.MarginPercent = money.MarginPercent(b.Gain, b.TotalSales)
	return b
}

// OrderDetail is the admin view of one order.
type OrderDetail struct {
	Order *models.Order `json:"order"`
	Gain  GainBreakdown `json:"gain"`
}

// OrderListResult is one page of orders.
type OrderListResult struct {
	Orders     []models.Order `json:"orders"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// Summary aggregates every order for the admin dashboard.
type Summary struct {
	OrderCount    int             `json:"order_count"`
	TotalRevenue  int64           `json:"total_revenue"`
	TotalSales    int64           `json:"total_sales"`
	TotalCost     int64           `json:"total_cost"`
	Gain          int64           `json:"gain"`
	MarginPercent decimal.Decimal `json:"margin_percent"`
	ByStatus      map[string]int  `json:"by_status"`
}

func summarize(rows []models.Order) *Summary {
	s := &Summary{ByStatus: map[string]int{}}
	for i := range rows {
		g := Gain(&rows[i])
		s.OrderCount++
		s.TotalRevenue += rows[i].Total
		s.TotalSales += g.TotalSales
		s.TotalCost += g.TotalCost
		s.ByStatus[rows[i].Status.String()]++
	}
	s.Gain = s.TotalSales - s.TotalCost
	s.MarginPercent = money.MarginPercent(s.Gain, s.TotalSales)
	return s
}
