package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/essyessentials/storefront-backend/pkg/db/models"
	pkgerrors "github.com/essyessentials/storefront-backend/pkg/errors"
)

type productReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// AddItemInput identifies the product variant to add. Price, name and image
// always come from the catalog, never from the shopper.
type AddItemInput struct {
	ProductID uuid.UUID
	Quantity  int
	Color     *string
	Size      *string
}

// Service owns cart mutations for a cart token. Every mutation persists the
// full cart before returning.
type Service interface {
	Get(ctx context.Context, token string) (Cart, error)
	AddItem(ctx context.Context, token string, input AddItemInput) (Cart, error)
	Increment(ctx context.Context, token string, index int) (Cart, error)
	Decrement(ctx context.Context, token string, index int) (Cart, error)
	Remove(ctx context.Context, token string, index int) (Cart, error)
	Clear(ctx context.Context, token string) error
}

type service struct {
	store    *Store
	products productReader
}

func NewService(store *Store, products productReader) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if products == nil {
		return nil, fmt.Errorf("product reader required")
	}
	return &service{store: store, products: products}, nil
}

func (s *service) Get(ctx context.Context, token string) (Cart, error) {
	if err := requireToken(token); err != nil {
		return Cart{}, err
	}
	c, err := s.store.Load(ctx, token)
	if err != nil {
		return Cart{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return c, nil
}

func (s *service) AddItem(ctx context.Context, token string, input AddItemInput) (Cart, error) {
	if input.ProductID == uuid.Nil {
		return Cart{}, pkgerrors.New(pkgerrors.CodeValidation, "product_id is required")
	}
	product, err := s.products.GetByID(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Cart{}, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return Cart{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}

	return s.mutate(ctx, token, func(c *Cart) error {
		c.Add(*product, AddOptions{Quantity: input.Quantity, Color: input.Color, Size: input.Size})
		return nil
	})
}

func (s *service) Increment(ctx context.Context, token string, index int) (Cart, error) {
	return s.mutate(ctx, token, func(c *Cart) error { return c.Increment(index) })
}

func (s *service) Decrement(ctx context.Context, token string, index int) (Cart, error) {
	return s.mutate(ctx, token, func(c *Cart) error { return c.Decrement(index) })
}

func (s *service) Remove(ctx context.Context, token string, index int) (Cart, error) {
	return s.mutate(ctx, token, func(c *Cart) error { return c.Remove(index) })
}

func (s *service) Clear(ctx context.Context, token string) error {
	if err := requireToken(token); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, token); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

func (s *service) mutate(ctx context.Context, token string, fn func(*Cart) error) (Cart, error) {
	c, err := s.Get(ctx, token)
	if err != nil {
		return Cart{}, err
	}
	if err := fn(&c); err != nil {
		if errors.Is(err, ErrLineIndex) {
			return Cart{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "cart line does not exist").
				WithDetails(map[string]any{"lines": len(c.Lines)})
		}
		return Cart{}, err
	}
	if err := s.store.Save(ctx, token, c); err != nil {
		return Cart{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
	}
	return c, nil
}

func requireToken(token string) error {
	if token == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart token is required")
	}
	return nil
}
