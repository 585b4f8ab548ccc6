package types

// CartLine is one line of a shopper's cart and, once an order is placed, the
// immutable snapshot of that line on the order.
type CartLine struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	UnitPrice int64   `json:"unit_price"`
	UnitCost  int64   `json:"unit_cost,omitempty"`
	ImageURL  string  `json:"image_url"`
	Quantity  int     `json:"quantity"`
	Color     *string `json:"color"`
	Size      *string `json:"size"`
}

// SameKey reports whether two lines share the (product, color, size) identity.
// An unset option only matches another unset option.
func (l CartLine) SameKey(productID string, color, size *string) bool {
	return l.ProductID == productID && optionEqual(l.Color, color) && optionEqual(l.Size, size)
}

// LineTotal is unit price times quantity.
func (l CartLine) LineTotal() int64 {
	return l.UnitPrice * int64(l.Quantity)
}

// LineCost is unit cost times quantity.
func (l CartLine) LineCost() int64 {
	return l.UnitCost * int64(l.Quantity)
}

// ShopLine is a CartLine as shoppers see it, without the cost price.
type ShopLine struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	UnitPrice int64   `json:"unit_price"`
	ImageURL  string  `json:"image_url"`
	Quantity  int     `json:"quantity"`
	Color     *string `json:"color"`
	Size      *string `json:"size"`
}

func (l CartLine) ShopView() ShopLine {
	return ShopLine{
		ProductID: l.ProductID,
		Name:      l.Name,
		UnitPrice: l.UnitPrice,
		ImageURL:  l.ImageURL,
		Quantity:  l.Quantity,
		Color:     l.Color,
		Size:      l.Size,
	}
}

// ShopLines maps lines to their shopper view. The result is never nil.
func ShopLines(lines []CartLine) []ShopLine {
	out := make([]ShopLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, l.ShopView())
	}
	return out
}

func optionEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
