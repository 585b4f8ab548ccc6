package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/essyessentials/storefront-backend/api/middleware"
	"github.com/essyessentials/storefront-backend/api/responses"
	"github.com/essyessentials/storefront-backend/api/validators"
	cartsvc "github.com/essyessentials/storefront-backend/internal/cart"
	"github.com/essyessentials/storefront-backend/pkg/logger"
	"github.com/essyessentials/storefront-backend/pkg/types"
)

const lineIndexParam = "index"

type cartResponse struct {
	Lines    []types.ShopLine `json:"lines"`
	Count    int              `json:"count"`
	Subtotal int64            `json:"subtotal"`
}

func newCartResponse(c cartsvc.Cart) cartResponse {
	return cartResponse{Lines: types.ShopLines(c.Snapshot()), Count: c.Count(), Subtotal: c.Subtotal()}
}

type addCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"omitempty,gte=1,lte=999"`
	Color     *string   `json:"color"`
	Size      *string   `json:"size"`
}

func CartGet(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := svc.Get(r.Context(), middleware.CartTokenFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(c))
	}
}

// CartAddItem adds a product variant, merging with an existing line for the
// same product, color and size.
func CartAddItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload addCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		c, err := svc.AddItem(r.Context(), middleware.CartTokenFromContext(r.Context()), cartsvc.AddItemInput{
			ProductID: payload.ProductID,
			Quantity:  payload.Quantity,
			Color:     payload.Color,
			Size:      payload.Size,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(c))
	}
}

func CartIncrement(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return lineMutation(svc.Increment, logg)
}

// CartDecrement never drops a line below quantity 1.
func CartDecrement(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return lineMutation(svc.Decrement, logg)
}

func CartRemove(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return lineMutation(svc.Remove, logg)
}

func CartClear(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Clear(r.Context(), middleware.CartTokenFromContext(r.Context())); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(cartsvc.Cart{}))
	}
}

func lineMutation(op func(ctx context.Context, token string, index int) (cartsvc.Cart, error), logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		index, err := validators.ParseIndexParam(r, lineIndexParam)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		c, err := op(r.Context(), middleware.CartTokenFromContext(r.Context()), index)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(c))
	}
}
