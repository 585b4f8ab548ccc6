package product

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/essyessentials/storefront-backend/internal/repo"
	"github.com/essyessentials/storefront-backend/pkg/db/models"
	"github.com/essyessentials/storefront-backend/pkg/pagination"
)

// ListFilter narrows the catalog listing. Zero values mean "no filter".
type ListFilter struct {
	Query      string
	Collection string
	Limit      int
	Cursor     *pagination.Cursor
}

// Repository persists catalog products.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.DB(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// List returns up to filter.Limit+1 products ordered newest first so callers
// can detect a following page.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]models.Product, error) {
	query := r.DB(ctx).Model(&models.Product{})

	if q := strings.ToLower(strings.TrimSpace(filter.Query)); q != "" {
		like := "%" + q + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}
	if name := strings.TrimSpace(filter.Collection); name != "" {
		clause, arg, err := r.collectionClause(name)
		if err != nil {
			return nil, err
		}
		query = query.Where(clause, arg)
	}
	if filter.Cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			filter.Cursor.CreatedAt, filter.Cursor.CreatedAt, filter.Cursor.ID,
		)
	}

	var products []models.Product
	err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(filter.Limit)).
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

// ListAll returns every product newest first. Used for live admin snapshots.
func (r *Repository) ListAll(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := r.DB(ctx).Order("created_at DESC").Order("id DESC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *Repository) collectionClause(name string) (string, any, error) {
	if r.Dialect() == "sqlite" {
		return "EXISTS (SELECT 1 FROM json_each(products.collection_names) WHERE json_each.value = ?)", name, nil
	}
	needle, err := json.Marshal([]string{name})
	if err != nil {
		return "", nil, err
	}
	return "collection_names @> ?::jsonb", string(needle), nil
}

func (r *Repository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.DB(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

func (r *Repository) Update(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.DB(ctx).Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// Delete removes the product. Placed orders keep their own snapshot.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.DB(ctx).Where("id = ?", id).Delete(&models.Product{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DecrementStockFloor reads the current stock and writes back
// max(0, stock-qty). Two concurrent callers may both read the same value.
func (r *Repository) DecrementStockFloor(ctx context.Context, id uuid.UUID, qty int) (int, error) {
	product, err := r.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}
	next := product.Stock - qty
	if next < 0 {
		next = 0
	}
	if err := r.DB(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Update("stock", next).Error; err != nil {
		return 0, err
	}
	return next, nil
}

// TryDecrementStock subtracts qty only when enough stock remains. It reports
// false, without error, when the row holds less than qty.
func (r *Repository) TryDecrementStock(ctx context.Context, id uuid.UUID, qty int) (bool, error) {
	res := r.DB(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock >= ?", id, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// FloorDecrementStock subtracts qty in one statement, clamping at zero.
func (r *Repository) FloorDecrementStock(ctx context.Context, id uuid.UUID, qty int) error {
	res := r.DB(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		UpdateColumn("stock", gorm.Expr("CASE WHEN stock > ? THEN stock - ? ELSE 0 END", qty, qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
