package models

import (
	"time"

	"github.com/essyessentials/storefront-backend/pkg/types"
)

// StoreSettingsID is the primary key of the singleton settings row.
const StoreSettingsID = "store"

// StoreSettings is the singleton store configuration.
type StoreSettings struct {
	ID                    string                 `gorm:"column:id;primaryKey" json:"-"`
	StoreName             string                 `gorm:"column:store_name;not null" json:"store_name"`
	Tagline               string                 `gorm:"column:tagline;not null;default:''" json:"tagline"`
	LogoURL               string                 `gorm:"column:logo_url;not null;default:''" json:"logo_url"`
	ContactEmail          string                 `gorm:"column:contact_email;not null;default:''" json:"contact_email"`
	WhatsAppNumber        string                 `gorm:"column:whatsapp_number;not null;default:''" json:"whatsapp_number"`
	Bank                  types.BankDetails      `gorm:"column:bank;type:jsonb;serializer:json;not null" json:"bank"`
	Announcement          string                 `gorm:"column:announcement;not null;default:''" json:"announcement"`
	Theme                 types.Theme            `gorm:"column:theme;type:jsonb;serializer:json;not null" json:"theme"`
	ShippingBlocks        []types.ShippingOption `gorm:"column:shipping_blocks;type:jsonb;serializer:json;not null" json:"shipping_blocks"`
	AllowPickup           bool                   `gorm:"column:allow_pickup;not null" json:"allow_pickup"`
	AllowAddressNotListed bool                   `gorm:"column:allow_address_not_listed;not null" json:"allow_address_not_listed"`
	UpdatedAt             time.Time              `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// DefaultStoreSettings is used until an admin saves settings for the first time.
func DefaultStoreSettings() StoreSettings {
	return StoreSettings{
		ID:           StoreSettingsID,
		StoreName:    "Essyessentials",
		Announcement: "Welcome to Essyessentials",
		Theme: types.Theme{
			Button:     "#6d28d9",
			Background: "#ffffff",
			Text:       "#0b1220",
		},
		ShippingBlocks:        []types.ShippingOption{},
		AllowPickup:           true,
		AllowAddressNotListed: true,
	}
}

// Clone returns a deep copy safe to hand to another goroutine.
func (s StoreSettings) Clone() StoreSettings {
	out := s
	out.ShippingBlocks = append([]types.ShippingOption(nil), s.ShippingBlocks...)
	if out.ShippingBlocks == nil {
		out.ShippingBlocks = []types.ShippingOption{}
	}
	return out
}
