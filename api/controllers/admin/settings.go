package admin

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/essyessentials/storefront-backend/api/responses"
	"github.com/essyessentials/storefront-backend/api/validators"
	"github.com/essyessentials/storefront-backend/internal/media"
	"github.com/essyessentials/storefront-backend/internal/settings"
	pkgerrors "github.com/essyessentials/storefront-backend/pkg/errors"
	"github.com/essyessentials/storefront-backend/pkg/logger"
	"github.com/essyessentials/storefront-backend/pkg/types"
)

const logoFormField = "logo"

type updateSettingsRequest struct {
	StoreName             string            `json:"store_name" validate:"required,max=120"`
	Tagline               string            `json:"tagline" validate:"max=200"`
	ContactEmail          string            `json:"contact_email" validate:"omitempty,email"`
	WhatsAppNumber        string            `json:"whatsapp_number" validate:"omitempty,phone"`
	Bank                  types.BankDetails `json:"bank"`
	Announcement          string            `json:"announcement" validate:"max=500"`
	Theme                 types.Theme       `json:"theme"`
	AllowPickup           bool              `json:"allow_pickup"`
	AllowAddressNotListed bool              `json:"allow_address_not_listed"`
}

type shippingBlockRequest struct {
	Title       string `json:"title" validate:"required,max=120"`
	Fee         int64  `json:"fee" validate:"gte=0"`
	Description string `json:"description" validate:"max=300"`
}

// SettingsGet returns the full settings document, shipping blocks included.
func SettingsGet(svc settings.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, svc.Get(r.Context()))
	}
}

func SettingsUpdate(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateSettingsRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		updated, err := svc.Update(r.Context(), settings.UpdateInput{
			StoreName:             req.StoreName,
			Tagline:               req.Tagline,
			ContactEmail:          req.ContactEmail,
			WhatsAppNumber:        req.WhatsAppNumber,
			Bank:                  req.Bank,
			Announcement:          req.Announcement,
			Theme:                 req.Theme,
			AllowPickup:           req.AllowPickup,
			AllowAddressNotListed: req.AllowAddressNotListed,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

func ShippingBlockAdd(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req shippingBlockRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		updated, err := svc.AddShippingBlock(r.Context(), settings.ShippingBlockInput{
			Title:       req.Title,
			Fee:         req.Fee,
			Description: req.Description,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, updated)
	}
}

func ShippingBlockRemove(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "blockId"))
		if id == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid blockId"))
			return
		}
		updated, err := svc.RemoveShippingBlock(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

// LogoUpload stores the "logo" file on the image host and saves its URL.
func LogoUpload(svc settings.Service, uploads media.Service, maxBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cleanup, err := parseImageForm(w, r, maxBytes, 1)
		defer cleanup()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		headers := r.MultipartForm.File[logoFormField]
		if len(headers) != 1 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "exactly one logo file is required").
				WithDetails(map[string]any{"field": logoFormField}))
			return
		}
		urls, err := uploadAll(r, uploads, media.KindLogo, headers)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		updated, err := svc.SetLogo(r.Context(), urls[0])
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}
