package controllers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/essyessentials/storefront-backend/api/responses"
	pkgerrors "github.com/essyessentials/storefront-backend/pkg/errors"
	"github.com/essyessentials/storefront-backend/pkg/logger"
)

// Pinger is any dependency readiness can probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

const readinessTimeout = 2 * time.Second

func HealthLive(env string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Storefront-Env", env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every dependency concurrently. Any failure answers
// DEPENDENCY_ERROR with the per-dependency state in the details.
func HealthReady(deps map[string]Pinger, logg *logger.Logger) http.HandlerFunc {
	names := make([]string, 0, len(deps))
	for name := range deps {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		errs := make([]error, len(names))
		var g errgroup.Group
		for i, name := range names {
			g.Go(func() error {
				errs[i] = deps[name].Ping(ctx)
				return nil
			})
		}
		_ = g.Wait()

		state := make(map[string]string, len(names))
		healthy := true
		for i, name := range names {
			if errs[i] != nil {
				healthy = false
				state[name] = "down"
				if logg != nil {
					logg.Error(logg.WithField(r.Context(), "dependency", name), "health.ready.failed", errs[i])
				}
				continue
			}
			state[name] = "up"
		}

		if !healthy {
			responses.WriteError(r.Context(), nil, w, pkgerrors.New(pkgerrors.CodeDependency, "dependencies unavailable").WithDetails(state))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "dependencies": state})
	}
}
