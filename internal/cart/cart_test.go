package cart

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/essyessentials/storefront-backend/pkg/db/models"
	dbtypes "github.com/essyessentials/storefront-backend/pkg/db/types"
)

func strPtr(s string) *string { return &s }

func testProduct(price int64) models.Product {
	return models.Product{
		ID:           uuid.New(),
		Name:         "Shea Butter",
		Price:        price,
		OriginalCost: price / 2,
		Images:       dbtypes.StringList{"https://img/1.png", "https://img/2.png"},
	}
}

func TestAddMergesIdenticalKeys(t *testing.T) {
	p := testProduct(1000)
	var c Cart

	quantities := []int{1, 2, 4}
	for _, q := range quantities {
		c.Add(p, AddOptions{Quantity: q, Color: strPtr("red"), Size: strPtr("M")})
	}

	if len(c.Lines) != 1 {
		t.Fatalf("expected a single merged line, got %d", len(c.Lines))
	}
	if c.Lines[0].Quantity != 7 {
		t.Fatalf("expected quantity 7, got %d", c.Lines[0].Quantity)
	}
	if c.Lines[0].ImageURL != "https://img/1.png" {
		t.Fatalf("expected first product image, got %q", c.Lines[0].ImageURL)
	}
	if c.Lines[0].UnitCost != 500 {
		t.Fatalf("expected unit cost captured, got %d", c.Lines[0].UnitCost)
	}
}

func TestAddKeepsDistinctVariantsApart(t *testing.T) {
	p := testProduct(1000)
	var c Cart

	c.Add(p, AddOptions{Color: strPtr("red")})
	c.Add(p, AddOptions{Color: strPtr("blue")})
	c.Add(p, AddOptions{})
	c.Add(p, AddOptions{Color: strPtr("red"), Size: strPtr("L")})

	if len(c.Lines) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(c.Lines))
	}
	for _, l := range c.Lines {
		if l.Quantity != 1 {
			t.Fatalf("expected default quantity 1, got %d", l.Quantity)
		}
	}
}

func TestAddDefaultsPlaceholderAndMinimumQuantity(t *testing.T) {
	p := testProduct(200)
	p.Images = nil
	var c Cart
	c.Add(p, AddOptions{Quantity: -3})

	if c.Lines[0].ImageURL != PlaceholderImageURL {
		t.Fatalf("expected placeholder image, got %q", c.Lines[0].ImageURL)
	}
	if c.Lines[0].Quantity != 1 {
		t.Fatalf("expected quantity floored to 1, got %d", c.Lines[0].Quantity)
	}
}

func TestAddCopiesOptionPointers(t *testing.T) {
	color := "red"
	var c Cart
	c.Add(testProduct(100), AddOptions{Color: &color})
	color = "green"
	if *c.Lines[0].Color != "red" {
		t.Fatalf("line must not alias caller's option, got %q", *c.Lines[0].Color)
	}
}

func TestDecrementFloorsAtOne(t *testing.T) {
	var c Cart
	c.Add(testProduct(100), AddOptions{Quantity: 2})

	for i := 0; i < 5; i++ {
		if err := c.Decrement(0); err != nil {
			t.Fatalf("decrement: %v", err)
		}
		if c.Lines[0].Quantity < 1 {
			t.Fatalf("quantity dropped below 1")
		}
	}
	if c.Lines[0].Quantity != 1 {
		t.Fatalf("expected quantity 1, got %d", c.Lines[0].Quantity)
	}
	if len(c.Lines) != 1 {
		t.Fatalf("decrement must never remove a line")
	}
}

func TestIncrementRemoveClear(t *testing.T) {
	var c Cart
	a, b := testProduct(1000), testProduct(250)
	c.Add(a, AddOptions{})
	c.Add(b, AddOptions{Quantity: 3})

	if err := c.Increment(0); err != nil {
		t.Fatalf("increment: %v", err)
	}
	if c.Count() != 5 {
		t.Fatalf("expected count 5, got %d", c.Count())
	}
	if c.Subtotal() != 2*1000+3*250 {
		t.Fatalf("unexpected subtotal %d", c.Subtotal())
	}

	if err := c.Remove(0); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(c.Lines) != 1 || c.Lines[0].ProductID != b.ID.String() {
		t.Fatalf("expected only second product to remain")
	}
	if c.Subtotal() != 750 {
		t.Fatalf("subtotal not recomputed after remove: %d", c.Subtotal())
	}

	c.Clear()
	if !c.IsEmpty() || c.Count() != 0 || c.Subtotal() != 0 {
		t.Fatalf("expected empty cart after clear")
	}
}

func TestOutOfRangeIndex(t *testing.T) {
	var c Cart
	c.Add(testProduct(100), AddOptions{})

	for _, idx := range []int{-1, 1, 10} {
		if err := c.Increment(idx); !errors.Is(err, ErrLineIndex) {
			t.Fatalf("increment(%d): expected ErrLineIndex, got %v", idx, err)
		}
		if err := c.Decrement(idx); !errors.Is(err, ErrLineIndex) {
			t.Fatalf("decrement(%d): expected ErrLineIndex, got %v", idx, err)
		}
		if err := c.Remove(idx); !errors.Is(err, ErrLineIndex) {
			t.Fatalf("remove(%d): expected ErrLineIndex, got %v", idx, err)
		}
	}
	if c.Lines[0].Quantity != 1 {
		t.Fatalf("failed operations must not mutate the cart")
	}
}

func TestSnapshotIsIndependent(t *testing.T) {
	var c Cart
	c.Add(testProduct(100), AddOptions{Color: strPtr("red")})
	snap := c.Snapshot()

	_ = c.Increment(0)
	*c.Lines[0].Color = "blue"

	if snap[0].Quantity != 1 || *snap[0].Color != "red" {
		t.Fatalf("snapshot changed with cart: %+v", snap[0])
	}
}
