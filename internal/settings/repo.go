package settings

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/essyessentials/storefront-backend/internal/repo"
	"github.com/essyessentials/storefront-backend/pkg/db"
	"github.com/essyessentials/storefront-backend/pkg/db/models"
	"github.com/essyessentials/storefront-backend/pkg/types"
)

// Repository reads and writes the singleton settings row.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Load returns the stored settings, or the defaults when none were saved yet.
func (r *Repository) Load(ctx context.Context) (models.StoreSettings, error) {
	var row models.StoreSettings
	err := r.DB(ctx).First(&row, "id = ?", models.StoreSettingsID).Error
	if db.IsNotFound(err) {
		return models.DefaultStoreSettings(), nil
	}
	if err != nil {
		return models.StoreSettings{}, err
	}
	if row.ShippingBlocks == nil {
		row.ShippingBlocks = []types.ShippingOption{}
	}
	return row, nil
}

// Save upserts the singleton row.
func (r *Repository) Save(ctx context.Context, s *models.StoreSettings) error {
	s.ID = models.StoreSettingsID
	return r.DB(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(s).Error
}
