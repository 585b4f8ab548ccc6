package shipping

import (
	"testing"

	"github.com/essyessentials/storefront-backend/pkg/db/models"
	"github.com/essyessentials/storefront-backend/pkg/enums"
	"github.com/essyessentials/storefront-backend/pkg/types"
)

func ids(options []types.ShippingOption) []string {
	out := make([]string, len(options))
	for i, o := range options {
		out[i] = o.ID
	}
	return out
}

func assertIDs(t *testing.T, got []types.ShippingOption, want ...string) {
	t.Helper()
	gotIDs := ids(got)
	if len(gotIDs) != len(want) {
		t.Fatalf("expected %v, got %v", want, gotIDs)
	}
	for i := range want {
		if gotIDs[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, gotIDs)
		}
	}
}

func TestResolveOrdering(t *testing.T) {
	settings := models.DefaultStoreSettings()
	settings.ShippingBlocks = []types.ShippingOption{
		{ID: "sb_lekki", Title: "Lekki", Fee: 2500},
		{ID: "sb_ikeja", Title: "Ikeja", Fee: 3000},
	}

	got := Resolve(settings)
	assertIDs(t, got, "pickup", "sb_lekki", "sb_ikeja", "address-not-listed", "stockpile")

	if got[1].Fee != 2500 || got[2].Fee != 3000 {
		t.Fatalf("zone fees not preserved: %+v", got)
	}
}

func TestResolveFlagsOff(t *testing.T) {
	settings := models.DefaultStoreSettings()
	settings.AllowPickup = false
	settings.AllowAddressNotListed = false

	assertIDs(t, Resolve(settings), "stockpile")

	settings.ShippingBlocks = []types.ShippingOption{{ID: "sb_a", Title: "A", Fee: 100}}
	assertIDs(t, Resolve(settings), "sb_a", "stockpile")
}

func TestResolveKeepsIDsUnique(t *testing.T) {
	settings := models.DefaultStoreSettings()
	settings.AllowAddressNotListed = false
	settings.ShippingBlocks = []types.ShippingOption{
		{ID: "stockpile", Title: "Fake", Fee: 10},
		{ID: "sb_a", Title: "A", Fee: 100},
		{ID: "sb_a", Title: "A again", Fee: 200},
		{ID: "address-not-listed", Title: "Sneaky", Fee: 5},
	}

	got := Resolve(settings)
	assertIDs(t, got, "pickup", "sb_a", "stockpile")
	if got[1].Title != "A" {
		t.Fatalf("first configured block should win, got %q", got[1].Title)
	}
	if got[2] != Stockpile {
		t.Fatalf("stockpile must be the built-in option, got %+v", got[2])
	}
}

func TestFind(t *testing.T) {
	options := Resolve(models.DefaultStoreSettings())
	opt, ok := Find(options, "address-not-listed")
	if !ok || opt.Title != "Address not listed" {
		t.Fatalf("expected address-not-listed option, got %+v ok=%v", opt, ok)
	}
	if _, ok := Find(options, "sb_missing"); ok {
		t.Fatal("expected unknown id to be absent")
	}
}

func TestStatusAndProofRules(t *testing.T) {
	cases := []struct {
		id        string
		status    enums.OrderStatus
		proof     bool
		decrement bool
	}{
		{"stockpile", enums.OrderStatusStockpile, false, false},
		{"address-not-listed", enums.OrderStatusPendingDeliveryFee, false, true},
		{"pickup", enums.OrderStatusAwaitingConfirmation, true, true},
		{"sb_lekki", enums.OrderStatusAwaitingConfirmation, true, true},
	}
	for _, c := range cases {
		if got := InitialStatus(c.id); got != c.status {
			t.Fatalf("%s: expected status %q, got %q", c.id, c.status, got)
		}
		if got := RequiresPaymentProof(c.id); got != c.proof {
			t.Fatalf("%s: expected proof required=%v", c.id, c.proof)
		}
		if got := DecrementsStock(c.id); got != c.decrement {
			t.Fatalf("%s: expected decrement=%v", c.id, c.decrement)
		}
	}
}
