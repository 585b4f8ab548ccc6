package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/essyessentials/storefront-backend/internal/live"
	"github.com/essyessentials/storefront-backend/pkg/db/models"
	dbtypes "github.com/essyessentials/storefront-backend/pkg/db/types"
	pkgerrors "github.com/essyessentials/storefront-backend/pkg/errors"
	"github.com/essyessentials/storefront-backend/pkg/logger"
	"github.com/essyessentials/storefront-backend/pkg/pagination"
)

// Service exposes catalog reads for the storefront and management for admins.
type Service interface {
	List(ctx context.Context, input ListInput) (*ProductListResult, error)
	Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	AdminGet(ctx context.Context, id uuid.UUID) (*AdminProductDTO, error)
	AdminList(ctx context.Context) ([]AdminProductDTO, error)
	Create(ctx context.Context, input CreateProductInput) (*AdminProductDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*AdminProductDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AppendImages(ctx context.Context, id uuid.UUID, urls []string) (*AdminProductDTO, error)
}

// ListInput captures storefront browse parameters.
type ListInput struct {
	Query      string
	Collection string
	Pagination pagination.Params
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Name            string
	Price           int64
	OriginalCost    int64
	Stock           int
	Description     string
	Colors          []string
	Sizes           []string
	Images          []string
	CollectionNames []string
}

// UpdateProductInput holds optional mutation values for a product.
type UpdateProductInput struct {
	Name            *string
	Price           *int64
	OriginalCost    *int64
	Stock           *int
	Description     *string
	Colors          *[]string
	Sizes           *[]string
	Images          *[]string
	CollectionNames *[]string
}

type service struct {
	repo    *Repository
	changes live.Publisher
	logg    *logger.Logger
}

// NewService constructs a product service instance.
func NewService(repo *Repository, changes live.Publisher, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if changes == nil {
		return nil, fmt.Errorf("change publisher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, changes: changes, logg: logg}, nil
}

func (s *service) List(ctx context.Context, input ListInput) (*ProductListResult, error) {
	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(input.Pagination.Limit)

	rows, err := s.repo.List(ctx, ListFilter{
		Query:      input.Query,
		Collection: input.Collection,
		Limit:      limit,
		Cursor:     cursor,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}

	rows, next := pagination.Trim(rows, limit)
	result := &ProductListResult{Products: make([]ProductDTO, 0, len(rows)), NextCursor: next}
	for i := range rows {
		result.Products = append(result.Products, NewProductDTO(&rows[i]))
	}
	return result, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := NewProductDTO(p)
	return &dto, nil
}

func (s *service) AdminGet(ctx context.Context, id uuid.UUID) (*AdminProductDTO, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := NewAdminProductDTO(p)
	return &dto, nil
}

func (s *service) AdminList(ctx context.Context) ([]AdminProductDTO, error) {
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	out := make([]AdminProductDTO, 0, len(rows))
	for i := range rows {
		out = append(out, NewAdminProductDTO(&rows[i]))
	}
	return out, nil
}

func (s *service) Create(ctx context.Context, input CreateProductInput) (*AdminProductDTO, error) {
	product := &models.Product{
		Name:            strings.TrimSpace(input.Name),
		Price:           input.Price,
		OriginalCost:    input.OriginalCost,
		Stock:           input.Stock,
		Description:     strings.TrimSpace(input.Description),
		Colors:          dbtypes.CleanLines(input.Colors),
		Sizes:           dbtypes.CleanLines(input.Sizes),
		Images:          dbtypes.CleanLines(input.Images),
		CollectionNames: dbtypes.CleanLines(input.CollectionNames),
	}
	if err := validateProduct(product); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert product")
	}
	s.publish(ctx)

	dto := NewAdminProductDTO(created)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*AdminProductDTO, error) {
	product, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	applyUpdateToProduct(product, input)
	if err := validateProduct(product); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update product")
	}
	s.publish(ctx)

	dto := NewAdminProductDTO(updated)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete product")
	}
	s.publish(ctx)
	return nil
}

// AppendImages adds uploaded image URLs after the existing ones.
func (s *service) AppendImages(ctx context.Context, id uuid.UUID, urls []string) (*AdminProductDTO, error) {
	product, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	product.Images = append(product.Images, dbtypes.CleanLines(urls)...)

	updated, err := s.repo.Update(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update product images")
	}
	s.publish(ctx)

	dto := NewAdminProductDTO(updated)
	return &dto, nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func (s *service) publish(ctx context.Context) {
	if err := s.changes.Publish(ctx, live.TopicProducts); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "product.change.publish_failed")
	}
}

func applyUpdateToProduct(product *models.Product, input UpdateProductInput) {
	if input.Name != nil {
		product.Name = strings.TrimSpace(*input.Name)
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.OriginalCost != nil {
		product.OriginalCost = *input.OriginalCost
	}
	if input.Stock != nil {
		product.Stock = *input.Stock
	}
	if input.Description != nil {
		product.Description = strings.TrimSpace(*input.Description)
	}
	if input.Colors != nil {
		product.Colors = dbtypes.CleanLines(*input.Colors)
	}
	if input.Sizes != nil {
		product.Sizes = dbtypes.CleanLines(*input.Sizes)
	}
	if input.Images != nil {
		product.Images = dbtypes.CleanLines(*input.Images)
	}
	if input.CollectionNames != nil {
		product.CollectionNames = dbtypes.CleanLines(*input.CollectionNames)
	}
}

func validateProduct(p *models.Product) error {
	switch {
	case p.Name == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	case p.Price <= 0:
		return pkgerrors.New(pkgerrors.CodeValidation, "price must be greater than zero")
	case p.OriginalCost < 0:
		return pkgerrors.New(pkgerrors.CodeValidation, "original_cost cannot be negative")
	case p.Stock < 0:
		return pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}
	return nil
}
