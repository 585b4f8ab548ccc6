package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/essyessentials/storefront-backend/pkg/enums"
	"github.com/essyessentials/storefront-backend/pkg/pagination"
	"github.com/essyessentials/storefront-backend/pkg/types"
)

// Order is written once by checkout and afterwards only changes status.
// Items and Shipping are snapshots taken at placement time.
type Order struct {
	ID              uuid.UUID            `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	OrderNumber     int64                `gorm:"column:order_number;not null;index" json:"order_number"`
	Items           []types.CartLine     `gorm:"column:items;type:jsonb;serializer:json;not null" json:"items"`
	Subtotal        int64                `gorm:"column:subtotal;not null" json:"subtotal"`
	Shipping        types.ShippingOption `gorm:"column:shipping;type:jsonb;serializer:json;not null" json:"shipping"`
	Total           int64                `gorm:"column:total;not null" json:"total"`
	Customer        types.Customer       `gorm:"column:customer;type:jsonb;serializer:json;not null" json:"customer"`
	Address         types.Address        `gorm:"column:address;type:jsonb;serializer:json;not null" json:"address"`
	PaymentProofURL *string              `gorm:"column:payment_proof_url" json:"payment_proof_url"`
	Status          enums.OrderStatus    `gorm:"column:status;type:text;not null" json:"status"`
	CreatedAt       time.Time            `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`
	UpdatedAt       time.Time            `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

func (o Order) PageKey() pagination.Cursor {
	return pagination.Cursor{CreatedAt: o.CreatedAt, ID: o.ID}
}
