package enums

import (
	"fmt"
	"strings"
)

// OrderStatus is the human-readable order state shown to shoppers and admins.
// The set is open to admins: any named value may follow any other.
type OrderStatus string

const (
	OrderStatusStockpile            OrderStatus = "Stockpile"
	OrderStatusPendingDeliveryFee   OrderStatus = "Pending Delivery Fee"
	OrderStatusAwaitingConfirmation OrderStatus = "Awaiting Confirmation"
	OrderStatusProcessing           OrderStatus = "Processing"
	OrderStatusShipped              OrderStatus = "Shipped"
	OrderStatusOutForDelivery       OrderStatus = "Out for delivery"
	OrderStatusDelivered            OrderStatus = "Delivered"
	OrderStatusCompleted            OrderStatus = "Completed"
	OrderStatusCancelled            OrderStatus = "Cancelled"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusStockpile,
	OrderStatusPendingDeliveryFee,
	OrderStatusAwaitingConfirmation,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusOutForDelivery,
	OrderStatusDelivered,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

// OrderStatuses returns the named statuses in display order.
func OrderStatuses() []OrderStatus {
	out := make([]OrderStatus, len(validOrderStatuses))
	copy(out, validOrderStatuses)
	return out
}

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderStatus.
func (s OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseOrderStatus converts raw input into an OrderStatus. Matching ignores
// case and surrounding whitespace so "shipped" and "Shipped" are equivalent.
func ParseOrderStatus(value string) (OrderStatus, error) {
	trimmed := strings.TrimSpace(value)
	for _, candidate := range validOrderStatuses {
		if strings.EqualFold(string(candidate), trimmed) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
