package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/essyessentials/storefront-backend/api/responses"
	pkgerrors "github.com/essyessentials/storefront-backend/pkg/errors"
	"github.com/essyessentials/storefront-backend/pkg/logger"
	pkgredis "github.com/essyessentials/storefront-backend/pkg/redis"
)

const (
	IdempotencyKeyHeader = "Idempotency-Key"

	defaultIdempotencyTTL = 24 * time.Hour
	defaultMaxBodyBytes   = 1 << 20
	// a claim outlives any sane handler; a crashed instance frees the key after this
	claimTTL = 2 * time.Minute
)

// guardedRoute matches a chi route pattern, or the concrete path when the
// middleware runs ahead of a mounted subrouter.
type guardedRoute struct {
	method, prefix, suffix string
	exact                  bool
}

func (g guardedRoute) matches(method, pattern string) bool {
	if method != g.method {
		return false
	}
	if g.exact {
		return pattern == g.prefix
	}
	return strings.HasPrefix(pattern, g.prefix) && strings.HasSuffix(pattern, g.suffix)
}

var guardedRoutes = []guardedRoute{
	{method: http.MethodPost, prefix: "/api/v1/checkout", exact: true},
	{method: http.MethodPost, prefix: "/api/admin/v1/products", exact: true},
	{method: http.MethodPatch, prefix: "/api/admin/v1/orders/", suffix: "/status"},
}

// storedResponse is what lands in redis under the idempotency key. A claim
// (Pending) is written before the handler runs and replaced by the final
// response afterwards.
type storedResponse struct {
	Pending     bool   `json:"pending,omitempty"`
	Fingerprint string `json:"fingerprint"`
	Status      int    `json:"status,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body,omitempty"`
}

// Idempotency replays the stored response for a repeated Idempotency-Key on
// the guarded routes. A second request arriving while the first still runs
// is rejected. Server failures release the key so the client can retry.
// Bodies are buffered for fingerprinting, so anything over maxBodyBytes is
// refused before the handler runs.
func Idempotency(store pkgredis.IdempotencyStore, ttl time.Duration, maxBodyBytes int64, logg *logger.Logger) func(http.Handler) http.Handler {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	if maxBodyBytes <= 0 {
		maxBodyBytes = defaultMaxBodyBytes
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if store == nil || !guarded(r.Method, routePattern(r)) {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()

			clientKey := strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader))
			if clientKey == "" {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, IdempotencyKeyHeader+" header required"))
				return
			}
			body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body"))
				return
			}
			if int64(len(body)) > maxBodyBytes {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "request body too large").
					WithReason("body_too_large").
					WithDetails(map[string]any{"max_bytes": maxBodyBytes}))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			key := store.IdempotencyKey(callerScope(r), clientKey)
			fingerprint := fingerprint(r.Header.Get("Content-Type"), body)

			if prior, found, err := lookup(r, store, key); err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			} else if found {
				replay(w, r, logg, prior, fingerprint)
				return
			}

			claim, _ := json.Marshal(storedResponse{Pending: true, Fingerprint: fingerprint})
			won, err := store.SetNX(ctx, key, string(claim), claimTTL)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim idempotency key"))
				return
			}
			if !won {
				responses.WriteError(ctx, logg, w, inProgress())
				return
			}

			capture := &responseCapture{ResponseWriter: w}
			next.ServeHTTP(capture, r)

			status := capture.statusOrOK()
			if status >= http.StatusInternalServerError {
				if err := store.Del(ctx, key); err != nil && logg != nil {
					logg.Error(ctx, "idempotency.release_failed", err)
				}
				return
			}
			final, _ := json.Marshal(storedResponse{
				Fingerprint: fingerprint,
				Status:      status,
				ContentType: capture.Header().Get("Content-Type"),
				Body:        capture.body.Bytes(),
			})
			if err := store.Set(ctx, key, string(final), ttl); err != nil && logg != nil {
				logg.Error(ctx, "idempotency.persist_failed", err)
			}
		})
	}
}

func lookup(r *http.Request, store pkgredis.IdempotencyStore, key string) (storedResponse, bool, error) {
	raw, err := store.Get(r.Context(), key)
	if pkgredis.IsNil(err) || (err == nil && raw == "") {
		return storedResponse{}, false, nil
	}
	if err != nil {
		return storedResponse{}, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency key")
	}
	var prior storedResponse
	if err := json.Unmarshal([]byte(raw), &prior); err != nil {
		return storedResponse{}, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode idempotency record")
	}
	return prior, true, nil
}

func replay(w http.ResponseWriter, r *http.Request, logg *logger.Logger, prior storedResponse, fingerprint string) {
	switch {
	case prior.Fingerprint != fingerprint:
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with different request body"))
	case prior.Pending:
		responses.WriteError(r.Context(), logg, w, inProgress())
	default:
		if prior.ContentType != "" {
			w.Header().Set("Content-Type", prior.ContentType)
		}
		w.Header().Set("Idempotent-Replayed", "true")
		w.WriteHeader(prior.Status)
		_, _ = w.Write(prior.Body)
	}
}

func inProgress() error {
	return pkgerrors.New(pkgerrors.CodeIdempotency, "a request with this idempotency key is still in progress").
		WithReason("in_progress")
}

// callerScope keeps keys from different admins or carts apart.
func callerScope(r *http.Request) string {
	caller := AdminIDFromContext(r.Context())
	if caller == "" {
		caller = CartTokenFromContext(r.Context())
	}
	return caller + "|" + r.Method + "|" + r.URL.Path
}

// fingerprint hashes the request body. Multipart boundaries are picked per
// submission by the client, so they are removed before hashing.
func fingerprint(contentType string, body []byte) string {
	if mediaType, params, err := mime.ParseMediaType(contentType); err == nil && strings.HasPrefix(mediaType, "multipart/") {
		if boundary := params["boundary"]; boundary != "" {
			body = bytes.ReplaceAll(body, []byte(boundary), nil)
		}
	}
	sum := sha256.Sum256(body)
	return base64.RawStdEncoding.EncodeToString(sum[:])
}

func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if pattern := rc.RoutePattern(); pattern != "" && !strings.HasSuffix(pattern, "/*") {
			return pattern
		}
	}
	return r.URL.Path
}

func guarded(method, pattern string) bool {
	for _, route := range guardedRoutes {
		if route.matches(method, pattern) {
			return true
		}
	}
	return false
}

type responseCapture struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (c *responseCapture) WriteHeader(code int) {
	if c.status == 0 {
		c.status = code
	}
	c.ResponseWriter.WriteHeader(code)
}

func (c *responseCapture) Write(b []byte) (int, error) {
	if c.status == 0 {
		c.status = http.StatusOK
	}
	c.body.Write(b)
	return c.ResponseWriter.Write(b)
}

func (c *responseCapture) statusOrOK() int {
	if c.status == 0 {
		return http.StatusOK
	}
	return c.status
}
