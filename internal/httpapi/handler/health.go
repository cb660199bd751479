package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// healthResponse is the JSON body for GET /healthz and GET /readyz.
type healthResponse struct {
	Status string `json:"status"`
}

// Pinger reports whether a dependency is reachable. *pgxpool.Pool implements it.
type Pinger interface {
	Ping(ctx context.Context) error
}

const readyTimeout = 2 * time.Second

// Healthz handles GET /healthz.
//
// @Summary      Health check
// @Description  Liveness check. No authentication required.
// @Tags         health
// @Produce      json
// @Success      200  {object}  healthResponse
// @Router       /healthz [get]
func Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, healthResponse{Status: "ok"})
}

// Readyz returns a handler for GET /readyz that pings db. A nil db is always ready.
//
// @Summary      Readiness check
// @Description  Reports whether the database is reachable.
// @Tags         health
// @Produce      json
// @Success      200  {object}  healthResponse
// @Failure      503  {object}  healthResponse
// @Router       /readyz [get]
func Readyz(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				log.Warn().Err(err).Str("request_id", requestID(r)).Msg("readiness ping failed")
				writeJSON(w, r, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
				return
			}
		}
		writeJSON(w, r, http.StatusOK, healthResponse{Status: "ok"})
	}
}
