package middleware

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/essyessentials/storefront-backend/api/responses"
	pkgerrors "github.com/essyessentials/storefront-backend/pkg/errors"
	"github.com/essyessentials/storefront-backend/pkg/logger"
	"github.com/essyessentials/storefront-backend/pkg/security"
)

// CartTokenHeader identifies an anonymous shopper's cart.
const CartTokenHeader = "X-Cart-Token"

const cartTokenLength = 32

var cartTokenPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{16,64}$`)

// CartToken resolves the shopper's cart token. A request without one is
// issued a fresh token, echoed back in the response header so the client
// can keep it.
func CartToken(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := strings.TrimSpace(r.Header.Get(CartTokenHeader))
			switch {
			case token == "":
				issued, err := security.RandomString(cartTokenLength, security.Base36Alphabet)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "issue cart token"))
					return
				}
				token = issued
			case !cartTokenPattern.MatchString(token):
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid cart token").
					WithDetails(map[string]any{"header": CartTokenHeader}))
				return
			}

			w.Header().Set(CartTokenHeader, token)
			ctx := WithCartToken(r.Context(), token)
			if logg != nil {
				ctx = logg.WithCartToken(ctx, token)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
