package types

// ShippingOption is a selectable fulfillment method. Admin-configured
// shipping blocks use the same shape.
type ShippingOption struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Fee         int64  `json:"fee"`
	Description string `json:"description"`
}
