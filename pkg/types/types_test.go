package types

import "testing"

func strPtr(s string) *string { return &s }

func TestCartLineSameKey(t *testing.T) {
	line := CartLine{ProductID: "p1", Color: strPtr("red"), Size: nil}

	if !line.SameKey("p1", strPtr("red"), nil) {
		t.Fatal("expected identical key to match")
	}
	if line.SameKey("p1", strPtr("red"), strPtr("M")) {
		t.Fatal("unset size must not match a set size")
	}
	if line.SameKey("p1", nil, nil) {
		t.Fatal("set color must not match an unset color")
	}
	if line.SameKey("p2", strPtr("red"), nil) {
		t.Fatal("different product must not match")
	}
}

func TestCartLineTotals(t *testing.T) {
	line := CartLine{UnitPrice: 1000, UnitCost: 600, Quantity: 3}
	if line.LineTotal() != 3000 {
		t.Fatalf("expected 3000, got %d", line.LineTotal())
	}
	if line.LineCost() != 1800 {
		t.Fatalf("expected 1800, got %d", line.LineCost())
	}
}

func TestShopLinesDropCost(t *testing.T) {
	if got := ShopLines(nil); got == nil || len(got) != 0 {
		t.Fatalf("ShopLines(nil) = %#v, want empty slice", got)
	}

	lines := ShopLines([]CartLine{{ProductID: "p1", Name: "Ring", UnitPrice: 1500, UnitCost: 600, Quantity: 2, Size: strPtr("M")}})
	if len(lines) != 1 {
		t.Fatalf("len = %d, want 1", len(lines))
	}
	got := lines[0]
	if got.ProductID != "p1" || got.UnitPrice != 1500 || got.Quantity != 2 || got.Size == nil || *got.Size != "M" {
		t.Fatalf("unexpected view %#v", got)
	}
}

func TestCustomerComplete(t *testing.T) {
	if !(Customer{Name: "Ada", Email: "ada@example.com", Phone: "080"}).Complete() {
		t.Fatal("expected complete customer")
	}
	if (Customer{Name: "Ada", Email: " ", Phone: "080"}).Complete() {
		t.Fatal("blank email must be incomplete")
	}
}

func TestAddressString(t *testing.T) {
	a := Address{Line: "12 Allen Ave", City: "", State: "Lagos"}
	if got := a.String(); got != "12 Allen Ave, Lagos" {
		t.Fatalf("unexpected address %q", got)
	}
}
