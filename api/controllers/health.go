package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/kodacard/kodacard-backend/api/responses"
	"github.com/kodacard/kodacard-backend/pkg/config"
	"github.com/kodacard/kodacard-backend/pkg/db"
	pkgerrors "github.com/kodacard/kodacard-backend/pkg/errors"
	"github.com/kodacard/kodacard-backend/pkg/logger"
	"github.com/kodacard/kodacard-backend/pkg/redis"
	"github.com/kodacard/kodacard-backend/pkg/storage/gcs"
)

const readyCheckTimeout = 3 * time.Second

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Kodacard-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady probes the wired dependencies. Optional dependencies that were
// never configured are skipped rather than reported as failing.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger, gcsP gcs.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Kodacard-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readyCheckTimeout)
		defer cancel()

		checks := map[string]string{}
		failed := false

		probe := func(name string, ping func(context.Context) error) {
			if err := ping(ctx); err != nil {
				checks[name] = "down"
				failed = true
				if logg != nil {
					logg.Error(logg.WithField(ctx, "dependency", name), "readiness probe failed", err)
				}
				return
			}
			checks[name] = "up"
		}

		if dbP != nil {
			probe("database", dbP.Ping)
		}
		if redisP != nil {
			probe("redis", redisP.Ping)
		}
		if gcsP != nil {
			probe("gcs", gcsP.Ping)
		}

		if failed {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "dependency unavailable"))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
