// Package shipping derives the selectable fulfillment options from store settings.
package shipping

import (
	"github.com/essyessentials/storefront-backend/pkg/db/models"
	"github.com/essyessentials/storefront-backend/pkg/enums"
	"github.com/essyessentials/storefront-backend/pkg/types"
)

var (
	Pickup = types.ShippingOption{
		ID:          enums.ShippingOptionPickup,
		Title:       "Pickup",
		Fee:         0,
		Description: "Pickup from store",
	}
	AddressNotListed = types.ShippingOption{
		ID:          enums.ShippingOptionAddressNotListed,
		Title:       "Address not listed",
		Fee:         0,
		Description: "Admin will contact you for delivery fee",
	}
	Stockpile = types.ShippingOption{
		ID:          enums.ShippingOptionStockpile,
		Title:       "Stockpile (reserve)",
		Fee:         0,
		Description: "Reserve items and pay later",
	}
)

// Resolve returns Pickup (if allowed), the configured blocks in stored order,
// Address not listed (if allowed) and finally Stockpile. A configured block
// reusing an id already emitted is skipped so ids stay unique.
func Resolve(settings models.StoreSettings) []types.ShippingOption {
	out := make([]types.ShippingOption, 0, len(settings.ShippingBlocks)+3)
	seen := make(map[string]struct{}, cap(out))
	add := func(opt types.ShippingOption) {
		if _, dup := seen[opt.ID]; dup {
			return
		}
		seen[opt.ID] = struct{}{}
		out = append(out, opt)
	}

	// Built-in ids are reserved even when their option is disabled.
	reserved := map[string]struct{}{
		Pickup.ID:           {},
		AddressNotListed.ID: {},
		Stockpile.ID:        {},
	}

	if settings.AllowPickup {
		add(Pickup)
	}
	for _, block := range settings.ShippingBlocks {
		if _, builtin := reserved[block.ID]; builtin || block.ID == "" {
			continue
		}
		add(block)
	}
	if settings.AllowAddressNotListed {
		add(AddressNotListed)
	}
	add(Stockpile)
	return out
}

// Find returns the option with the given id.
func Find(options []types.ShippingOption, id string) (types.ShippingOption, bool) {
	for _, opt := range options {
		if opt.ID == id {
			return opt, true
		}
	}
	return types.ShippingOption{}, false
}

// RequiresPaymentProof is false only for stockpile and address-not-listed,
// where payment is deferred.
func RequiresPaymentProof(optionID string) bool {
	switch optionID {
	case enums.ShippingOptionStockpile, enums.ShippingOptionAddressNotListed:
		return false
	default:
		return true
	}
}

// DecrementsStock is false only for stockpile reservations.
func DecrementsStock(optionID string) bool {
	return optionID != enums.ShippingOptionStockpile
}

// InitialStatus maps the chosen option to the status a new order starts in.
func InitialStatus(optionID string) enums.OrderStatus {
	switch optionID {
	case enums.ShippingOptionStockpile:
		return enums.OrderStatusStockpile
	case enums.ShippingOptionAddressNotListed:
		return enums.OrderStatusPendingDeliveryFee
	default:
		return enums.OrderStatusAwaitingConfirmation
	}
}
