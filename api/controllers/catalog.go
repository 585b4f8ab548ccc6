package controllers

import (
	"net/http"
	"strings"

	"github.com/essyessentials/storefront-backend/api/responses"
	"github.com/essyessentials/storefront-backend/api/validators"
	"github.com/essyessentials/storefront-backend/internal/collections"
	product "github.com/essyessentials/storefront-backend/internal/products"
	"github.com/essyessentials/storefront-backend/internal/shipping"
	"github.com/essyessentials/storefront-backend/pkg/db/models"
	"github.com/essyessentials/storefront-backend/pkg/logger"
	"github.com/essyessentials/storefront-backend/pkg/types"
)

const maxSearchLength = 120

// SettingsSource yields the current store settings.
type SettingsSource interface {
	Current() models.StoreSettings
}

// ProductList serves the storefront catalog with optional search and
// collection filters.
func ProductList(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		query := r.URL.Query()
		result, err := svc.List(r.Context(), product.ListInput{
			Query:      validators.SanitizeString(query.Get("q"), maxSearchLength),
			Collection: strings.TrimSpace(query.Get("collection")),
			Pagination: params,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func ProductDetail(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func CollectionList(svc collections.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// publicSettings is what the storefront may see. Shipping blocks are served
// through ShippingOptions instead.
type publicSettings struct {
	StoreName      string            `json:"store_name"`
	Tagline        string            `json:"tagline"`
	LogoURL        string            `json:"logo_url"`
	ContactEmail   string            `json:"contact_email"`
	WhatsAppNumber string            `json:"whatsapp_number"`
	Announcement   string            `json:"announcement"`
	Bank           types.BankDetails `json:"bank"`
	Theme          types.Theme       `json:"theme"`
}

func StoreSettings(provider SettingsSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := provider.Current()
		responses.WriteSuccess(w, publicSettings{
			StoreName:      s.StoreName,
			Tagline:        s.Tagline,
			LogoURL:        s.LogoURL,
			ContactEmail:   s.ContactEmail,
			WhatsAppNumber: s.WhatsAppNumber,
			Announcement:   s.Announcement,
			Bank:           s.Bank,
			Theme:          s.Theme,
		})
	}
}

// ShippingOptions lists the options a shopper may pick, in display order.
func ShippingOptions(provider SettingsSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, shipping.Resolve(provider.Current()))
	}
}
