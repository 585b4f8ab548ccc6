package enums

// Built-in shipping option ids. Admin-configured zones use generated ids
// prefixed with ShippingBlockIDPrefix.
const (
	ShippingOptionPickup           = "pickup"
	ShippingOptionAddressNotListed = "address-not-listed"
	ShippingOptionStockpile        = "stockpile"

	ShippingBlockIDPrefix = "sb_"
)
