package checkout

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/essyessentials/storefront-backend/pkg/enums"
	"github.com/essyessentials/storefront-backend/pkg/types"
)

// placedOrder is the order as returned to the shopper who placed it. Line
// costs stay on the stored row.
type placedOrder struct {
	ID              uuid.UUID            `json:"id"`
	OrderNumber     int64                `json:"order_number"`
	Items           []types.ShopLine     `json:"items"`
	Subtotal        int64                `json:"subtotal"`
	Shipping        types.ShippingOption `json:"shipping"`
	Total           int64                `json:"total"`
	Customer        types.Customer       `json:"customer"`
	Address         types.Address        `json:"address"`
	PaymentProofURL *string              `json:"payment_proof_url"`
	Status          enums.OrderStatus    `json:"status"`
	CreatedAt       time.Time            `json:"created_at"`
}

func (r Result) MarshalJSON() ([]byte, error) {
	out := struct {
		Order       *placedOrder `json:"order"`
		WhatsAppURL string       `json:"whatsapp_url,omitempty"`
	}{WhatsAppURL: r.WhatsAppURL}
	if o := r.Order; o != nil {
		out.Order = &placedOrder{
			ID:              o.ID,
			OrderNumber:     o.OrderNumber,
			Items:           types.ShopLines(o.Items),
			Subtotal:        o.Subtotal,
			Shipping:        o.Shipping,
			Total:           o.Total,
			Customer:        o.Customer,
			Address:         o.Address,
			PaymentProofURL: o.PaymentProofURL,
			Status:          o.Status,
			CreatedAt:       o.CreatedAt,
		}
	}
	return json.Marshal(out)
}
