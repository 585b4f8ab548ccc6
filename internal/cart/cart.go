package cart

import (
	"errors"

	"github.com/essyessentials/storefront-backend/pkg/db/models"
	"github.com/essyessentials/storefront-backend/pkg/types"
)

// PlaceholderImageURL is used for lines whose product has no images.
const PlaceholderImageURL = "https://via.placeholder.com/300x300?text=Product"

// ErrLineIndex is returned when a line index does not address an existing line.
var ErrLineIndex = errors.New("cart line index out of range")

// AddOptions selects the variant and quantity being added.
type AddOptions struct {
	Quantity int
	Color    *string
	Size     *string
}

// Cart is an ordered list of lines. Lines sharing (product, color, size) are
// merged on add, so the list never holds two lines with the same key.
type Cart struct {
	Lines []types.CartLine `json:"lines"`
}

// Add merges into the matching line or appends a new one. Quantities below 1
// are treated as 1.
func (c *Cart) Add(product models.Product, opts AddOptions) {
	qty := opts.Quantity
	if qty < 1 {
		qty = 1
	}
	productID := product.ID.String()

	for i := range c.Lines {
		if c.Lines[i].SameKey(productID, opts.Color, opts.Size) {
			c.Lines[i].Quantity += qty
			return
		}
	}

	image := product.PrimaryImage()
	if image == "" {
		image = PlaceholderImageURL
	}
	c.Lines = append(c.Lines, types.CartLine{
		ProductID: productID,
		Name:      product.Name,
		UnitPrice: product.Price,
		UnitCost:  product.OriginalCost,
		ImageURL:  image,
		Quantity:  qty,
		Color:     cloneOpt(opts.Color),
		Size:      cloneOpt(opts.Size),
	})
}

func (c *Cart) Increment(index int) error {
	if !c.valid(index) {
		return ErrLineIndex
	}
	c.Lines[index].Quantity++
	return nil
}

// Decrement lowers the quantity by one but never below 1. Removing a line is
// always an explicit Remove.
func (c *Cart) Decrement(index int) error {
	if !c.valid(index) {
		return ErrLineIndex
	}
	if c.Lines[index].Quantity > 1 {
		c.Lines[index].Quantity--
	}
	return nil
}

func (c *Cart) Remove(index int) error {
	if !c.valid(index) {
		return ErrLineIndex
	}
	c.Lines = append(c.Lines[:index], c.Lines[index+1:]...)
	return nil
}

func (c *Cart) Clear() {
	c.Lines = []types.CartLine{}
}

func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Count is the sum of quantities.
func (c Cart) Count() int {
	total := 0
	for _, l := range c.Lines {
		total += l.Quantity
	}
	return total
}

// Subtotal is the sum of unit price times quantity.
func (c Cart) Subtotal() int64 {
	var total int64
	for _, l := range c.Lines {
		total += l.LineTotal()
	}
	return total
}

// Snapshot returns a deep copy of the lines, safe to store on an order.
func (c Cart) Snapshot() []types.CartLine {
	out := make([]types.CartLine, len(c.Lines))
	for i, l := range c.Lines {
		l.Color = cloneOpt(l.Color)
		l.Size = cloneOpt(l.Size)
		out[i] = l
	}
	return out
}

func (c Cart) valid(index int) bool {
	return index >= 0 && index < len(c.Lines)
}

func cloneOpt(v *string) *string {
	if v == nil {
		return nil
	}
	s := *v
	return &s
}
