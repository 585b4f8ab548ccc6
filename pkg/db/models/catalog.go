package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbtypes "github.com/essyessentials/storefront-backend/pkg/db/types"
	"github.com/essyessentials/storefront-backend/pkg/pagination"
)

// Product is a catalog listing. OriginalCost is admin-only and never exposed
// on storefront responses.
type Product struct {
	ID              uuid.UUID          `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name            string             `gorm:"column:name;not null" json:"name"`
	Price           int64              `gorm:"column:price;not null" json:"price"`
	OriginalCost    int64              `gorm:"column:original_cost;not null;default:0" json:"original_cost"`
	Stock           int                `gorm:"column:stock;not null;default:0" json:"stock"`
	Description     string             `gorm:"column:description;not null;default:''" json:"description"`
	Colors          dbtypes.StringList `gorm:"column:colors;type:jsonb;not null" json:"colors"`
	Sizes           dbtypes.StringList `gorm:"column:sizes;type:jsonb;not null" json:"sizes"`
	Images          dbtypes.StringList `gorm:"column:images;type:jsonb;not null" json:"images"`
	CollectionNames dbtypes.StringList `gorm:"column:collection_names;type:jsonb;not null" json:"collection_names"`
	CreatedAt       time.Time          `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time          `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (p Product) PageKey() pagination.Cursor {
	return pagination.Cursor{CreatedAt: p.CreatedAt, ID: p.ID}
}

// PrimaryImage returns the first image URL or "".
func (p Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// Collection is an admin-defined tag used to group products for browsing.
type Collection struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"column:name;not null;uniqueIndex" json:"name"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (c *Collection) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
