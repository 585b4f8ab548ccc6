package admin

import (
	"net/http"

	"github.com/essyessentials/storefront-backend/api/responses"
	"github.com/essyessentials/storefront-backend/api/validators"
	"github.com/essyessentials/storefront-backend/internal/media"
	product "github.com/essyessentials/storefront-backend/internal/products"
	pkgerrors "github.com/essyessentials/storefront-backend/pkg/errors"
	"github.com/essyessentials/storefront-backend/pkg/logger"
)

const (
	productIDParam   = "productId"
	productImageForm = "images"
)

type createProductRequest struct {
	Name            string   `json:"name" validate:"required,max=200"`
	Price           int64    `json:"price" validate:"gte=0"`
	OriginalCost    int64    `json:"original_cost" validate:"gte=0"`
	Stock           int      `json:"stock" validate:"gte=0"`
	Description     string   `json:"description" validate:"max=5000"`
	Colors          []string `json:"colors" validate:"omitempty,dive,required"`
	Sizes           []string `json:"sizes" validate:"omitempty,dive,required"`
	Images          []string `json:"images" validate:"omitempty,dive,url"`
	CollectionNames []string `json:"collection_names" validate:"omitempty,dive,required"`
}

type updateProductRequest struct {
	Name            *string   `json:"name" validate:"omitempty,min=1,max=200"`
	Price           *int64    `json:"price" validate:"omitempty,gte=0"`
	OriginalCost    *int64    `json:"original_cost" validate:"omitempty,gte=0"`
	Stock           *int      `json:"stock" validate:"omitempty,gte=0"`
	Description     *string   `json:"description" validate:"omitempty,max=5000"`
	Colors          *[]string `json:"colors"`
	Sizes           *[]string `json:"sizes"`
	Images          *[]string `json:"images"`
	CollectionNames *[]string `json:"collection_names"`
}

func ProductList(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.AdminList(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

func ProductGet(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, productIDParam)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, err := svc.AdminGet(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func ProductCreate(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createProductRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		created, err := svc.Create(r.Context(), product.CreateProductInput{
			Name:            req.Name,
			Price:           req.Price,
			OriginalCost:    req.OriginalCost,
			Stock:           req.Stock,
			Description:     req.Description,
			Colors:          req.Colors,
			Sizes:           req.Sizes,
			Images:          req.Images,
			CollectionNames: req.CollectionNames,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

func ProductUpdate(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, productIDParam)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req updateProductRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		updated, err := svc.Update(r.Context(), id, product.UpdateProductInput{
			Name:            req.Name,
			Price:           req.Price,
			OriginalCost:    req.OriginalCost,
			Stock:           req.Stock,
			Description:     req.Description,
			Colors:          req.Colors,
			Sizes:           req.Sizes,
			Images:          req.Images,
			CollectionNames: req.CollectionNames,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

func ProductDelete(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, productIDParam)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

// ProductUploadImages uploads the "images" files of a multipart form and
// appends their URLs to the product's gallery.
func ProductUploadImages(svc product.Service, uploads media.Service, maxBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, productIDParam)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cleanup, err := parseImageForm(w, r, maxBytes, maxImagesPerPost)
		defer cleanup()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		headers := r.MultipartForm.File[productImageForm]
		switch {
		case len(headers) == 0:
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "at least one image is required").
				WithDetails(map[string]any{"field": productImageForm}))
			return
		case len(headers) > maxImagesPerPost:
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "too many images").
				WithDetails(map[string]any{"max": maxImagesPerPost}))
			return
		}

		urls, err := uploadAll(r, uploads, media.KindProductImage, headers)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		updated, err := svc.AppendImages(r.Context(), id, urls)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}
