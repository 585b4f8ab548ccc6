package product

import (
	"time"

	"github.com/google/uuid"

	"github.com/essyessentials/storefront-backend/pkg/db/models"
)

// ProductDTO is the storefront view of a product. It never carries cost.
type ProductDTO struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Price           int64     `json:"price"`
	Stock           int       `json:"stock"`
	Description     string    `json:"description"`
	Colors          []string  `json:"colors"`
	Sizes           []string  `json:"sizes"`
	Images          []string  `json:"images"`
	CollectionNames []string  `json:"collection_names"`
	CreatedAt       time.Time `json:"created_at"`
}

// AdminProductDTO adds the admin-only fields.
type AdminProductDTO struct {
	ProductDTO
	OriginalCost int64     `json:"original_cost"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ProductListResult is one page of the catalog.
type ProductListResult struct {
	Products   []ProductDTO `json:"products"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

func NewProductDTO(p *models.Product) ProductDTO {
	return ProductDTO{
		ID:              p.ID,
		Name:            p.Name,
		Price:           p.Price,
		Stock:           p.Stock,
		Description:     p.Description,
		Colors:          copyList(p.Colors),
		Sizes:           copyList(p.Sizes),
		Images:          copyList(p.Images),
		CollectionNames: copyList(p.CollectionNames),
		CreatedAt:       p.CreatedAt,
	}
}

func NewAdminProductDTO(p *models.Product) AdminProductDTO {
	return AdminProductDTO{
		ProductDTO:   NewProductDTO(p),
		OriginalCost: p.OriginalCost,
		UpdatedAt:    p.UpdatedAt,
	}
}

func copyList(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
