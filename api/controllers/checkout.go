package controllers

import (
	"errors"
	"mime"
	"net/http"
	"strings"

	"github.com/essyessentials/storefront-backend/api/middleware"
	"github.com/essyessentials/storefront-backend/api/responses"
	"github.com/essyessentials/storefront-backend/api/validators"
	"github.com/essyessentials/storefront-backend/internal/checkout"
	"github.com/essyessentials/storefront-backend/internal/media"
	pkgerrors "github.com/essyessentials/storefront-backend/pkg/errors"
	"github.com/essyessentials/storefront-backend/pkg/logger"
	"github.com/essyessentials/storefront-backend/pkg/types"
)

const (
	checkoutPayloadField = "payload"
	checkoutProofField   = "proof"
	multipartMemory      = 1 << 20
	// room for the payload field and multipart framing on top of the proof
	multipartOverhead = 1 << 20
)

// checkoutRequest omits validate tags on purpose: the checkout service
// reports missing customer or shipping data with its own ordered reasons.
type checkoutRequest struct {
	Customer         types.Customer `json:"customer"`
	Address          types.Address  `json:"address"`
	ShippingOptionID string         `json:"shipping_option_id"`
}

// Checkout places an order from the caller's cart. It accepts a multipart
// form with a JSON "payload" field and an optional "proof" image, or a bare
// JSON body when no proof is attached.
func Checkout(svc checkout.Service, maxProofBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, proof, cleanup, err := readCheckoutRequest(w, r, maxProofBytes)
		if cleanup != nil {
			defer cleanup()
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.PlaceOrder(r.Context(), checkout.PlaceOrderInput{
			CartToken:        middleware.CartTokenFromContext(r.Context()),
			Customer:         trimCustomer(payload.Customer),
			Address:          payload.Address,
			ShippingOptionID: strings.TrimSpace(payload.ShippingOptionID),
			Proof:            proof,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// CheckoutMaxBodyBytes is the largest checkout request accepted with a proof
// of maxProofBytes attached.
func CheckoutMaxBodyBytes(maxProofBytes int64) int64 {
	return maxProofBytes + multipartOverhead
}

func readCheckoutRequest(w http.ResponseWriter, r *http.Request, maxProofBytes int64) (checkoutRequest, *media.File, func(), error) {
	var payload checkoutRequest

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			return payload, nil, nil, err
		}
		return payload, nil, nil, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, CheckoutMaxBodyBytes(maxProofBytes))
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return payload, nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "payment proof is too large").
				WithReason(checkout.ReasonInvalidPaymentProof).
				WithDetails(map[string]any{"max_bytes": maxProofBytes})
		}
		return payload, nil, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form")
	}
	cleanup := func() { _ = r.MultipartForm.RemoveAll() }

	raw := r.FormValue(checkoutPayloadField)
	if strings.TrimSpace(raw) == "" {
		return payload, nil, cleanup, pkgerrors.New(pkgerrors.CodeValidation, "payload field is required").
			WithDetails(map[string]any{"field": checkoutPayloadField})
	}
	if err := validators.DecodeJSONBytes([]byte(raw), &payload); err != nil {
		return payload, nil, cleanup, err
	}

	file, header, err := r.FormFile(checkoutProofField)
	switch {
	case errors.Is(err, http.ErrMissingFile):
		return payload, nil, cleanup, nil
	case err != nil:
		return payload, nil, cleanup, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read payment proof")
	}
	closeAll := func() {
		_ = file.Close()
		cleanup()
	}
	return payload, &media.File{Filename: header.Filename, Body: file}, closeAll, nil
}

func trimCustomer(c types.Customer) types.Customer {
	return types.Customer{
		Name:  strings.TrimSpace(c.Name),
		Email: strings.TrimSpace(c.Email),
		Phone: strings.TrimSpace(c.Phone),
	}
}
