package checkout

import (
	"github.com/essyessentials/storefront-backend/internal/cart"
	"github.com/essyessentials/storefront-backend/internal/shipping"
	pkgerrors "github.com/essyessentials/storefront-backend/pkg/errors"
	"github.com/essyessentials/storefront-backend/pkg/types"
)

// Rejection reasons surfaced in error details.
const (
	ReasonEmptyCart              = "EmptyCart"
	ReasonIncompleteCustomerInfo = "IncompleteCustomerInfo"
	ReasonNoShippingSelected     = "NoShippingSelected"
	ReasonMissingPaymentProof    = "MissingPaymentProof"
	ReasonInvalidPaymentProof    = "InvalidPaymentProof"
	ReasonUploadFailed           = "UploadFailed"
	ReasonOrderFailed            = "OrderFailed"
)

// validate applies the placement preconditions in order and returns the
// first failure. The resolved shipping option is returned on success.
func validate(c cart.Cart, customer types.Customer, optionID string, options []types.ShippingOption, hasProof bool) (types.ShippingOption, error) {
	if c.IsEmpty() {
		return types.ShippingOption{}, rejection(ReasonEmptyCart, "cart is empty")
	}
	if !customer.Complete() {
		return types.ShippingOption{}, rejection(ReasonIncompleteCustomerInfo, "name, email and phone are required")
	}
	if optionID == "" {
		return types.ShippingOption{}, rejection(ReasonNoShippingSelected, "select a shipping option")
	}
	option, ok := shipping.Find(options, optionID)
	if !ok {
		return types.ShippingOption{}, rejection(ReasonNoShippingSelected, "shipping option is not available").
			WithDetails(map[string]any{"shipping_option_id": optionID})
	}
	if shipping.RequiresPaymentProof(option.ID) && !hasProof {
		return types.ShippingOption{}, rejection(ReasonMissingPaymentProof, "payment proof is required for this shipping option")
	}
	return option, nil
}

func rejection(reason, message string) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeValidation, message).WithReason(reason)
}
