package checkout

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/essyessentials/storefront-backend/pkg/db/models"
	"github.com/essyessentials/storefront-backend/pkg/enums"
	"github.com/essyessentials/storefront-backend/pkg/types"
)

func TestResultJSONOmitsLineCost(t *testing.T) {
	order := &models.Order{
		ID:          uuid.New(),
		OrderNumber: 123456,
		Items:       []types.CartLine{{ProductID: "p1", Name: "Ring", UnitPrice: 1500, UnitCost: 600, Quantity: 2}},
		Subtotal:    3000,
		Total:       3000,
		Status:      enums.OrderStatusAwaitingConfirmation,
	}

	raw, err := json.Marshal(&Result{Order: order, WhatsAppURL: "https://wa.me/1"})
	require.NoError(t, err)

	assert.NotContains(t, string(raw), "unit_cost")
	var decoded struct {
		Order struct {
			OrderNumber int64            `json:"order_number"`
			Items       []map[string]any `json:"items"`
			Total       int64            `json:"total"`
		} `json:"order"`
		WhatsAppURL string `json:"whatsapp_url"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, int64(123456), decoded.Order.OrderNumber)
	assert.Equal(t, int64(3000), decoded.Order.Total)
	require.Len(t, decoded.Order.Items, 1)
	assert.Equal(t, float64(1500), decoded.Order.Items[0]["unit_price"])
	assert.Equal(t, "https://wa.me/1", decoded.WhatsAppURL)

	// the stored row keeps its cost for gain reporting
	assert.Equal(t, int64(600), order.Items[0].UnitCost)
}

func TestResultJSONWithoutOrder(t *testing.T) {
	raw, err := json.Marshal(Result{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"order":null}`, string(raw))
}
