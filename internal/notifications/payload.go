package notifications

import (
	"strconv"
	"strings"

	"github.com/essyessentials/storefront-backend/pkg/db/models"
	"github.com/essyessentials/storefront-backend/pkg/money"
	"github.com/essyessentials/storefront-backend/pkg/types"
)

// Template variable names shared by every email template.
const (
	VarStoreName       = "store_name"
	VarCustomerName    = "customer_name"
	VarCustomerEmail   = "customer_email"
	VarCustomerPhone   = "customer_phone"
	VarOrderID         = "order_id"
	VarOrderItems      = "order_items"
	VarSubtotalAmount  = "subtotal_amount"
	VarShippingFee     = "shipping_fee"
	VarTotalAmount     = "total_amount"
	VarDeliveryAddress = "delivery_address"
	VarShippingMethod  = "shipping_method"
	VarOrderStatus     = "order_status"
)

// BuildPayload renders an order into the template variables.
func BuildPayload(storeName string, order *models.Order, f money.Formatter) map[string]string {
	return map[string]string{
		VarStoreName:       storeName,
		VarCustomerName:    order.Customer.Name,
		VarCustomerEmail:   order.Customer.Email,
		VarCustomerPhone:   order.Customer.Phone,
		VarOrderID:         strconv.FormatInt(order.OrderNumber, 10),
		VarOrderItems:      ItemsText(order.Items, f),
		VarSubtotalAmount:  f.Format(order.Subtotal),
		VarShippingFee:     f.Format(order.Shipping.Fee),
		VarTotalAmount:     f.Format(order.Total),
		VarDeliveryAddress: order.Address.String(),
		VarShippingMethod:  order.Shipping.Title,
		VarOrderStatus:     order.Status.String(),
	}
}

// ItemsText lists one "Name x2 @ ₦1,000" line per item, with any chosen
// color and size in brackets after the name.
func ItemsText(items []types.CartLine, f money.Formatter) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		var b strings.Builder
		b.WriteString(item.Name)
		if variant := variantLabel(item); variant != "" {
			b.WriteString(" (" + variant + ")")
		}
		b.WriteString(" x" + strconv.Itoa(item.Quantity))
		b.WriteString(" @ " + f.Format(item.UnitPrice))
		lines = append(lines, b.String())
	}
	return strings.Join(lines, "\n")
}

func variantLabel(item types.CartLine) string {
	var parts []string
	if item.Color != nil && strings.TrimSpace(*item.Color) != "" {
		parts = append(parts, strings.TrimSpace(*item.Color))
	}
	if item.Size != nil && strings.TrimSpace(*item.Size) != "" {
		parts = append(parts, strings.TrimSpace(*item.Size))
	}
	return strings.Join(parts, ", ")
}

// WhatsAppText is the pre-filled message for the store's WhatsApp chat.
func WhatsAppText(order *models.Order, f money.Formatter) string {
	var b strings.Builder
	b.WriteString("New Order (#" + strconv.FormatInt(order.OrderNumber, 10) + ")\n\n")
	b.WriteString(ItemsText(order.Items, f))
	b.WriteString("\n\nTotal: " + f.Format(order.Total))
	b.WriteString("\nName: " + order.Customer.Name)
	b.WriteString("\nPhone: " + order.Customer.Phone)
	b.WriteString("\nAddress: " + order.Address.String())
	return b.String()
}
