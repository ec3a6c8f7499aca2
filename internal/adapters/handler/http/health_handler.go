package http

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

const readyTimeout = 2 * time.Second

type HealthHandler struct {
	pinger Pinger
}

func NewHealthHandler(pinger Pinger) *HealthHandler {
	return &HealthHandler{pinger: pinger}
}

type healthResponse struct {
	Status string `json:"status"`
}

// Live godoc
// @Summary      Liveness check
// @Tags         health
// @Success      200
// @Router       /healthz [get]
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, healthResponse{Status: "ok"})
}

// Ready godoc
// @Summary      Readiness check
// @Description  Pings the database.
// @Tags         health
// @Success      200
// @Failure      503
// @Router       /readyz [get]
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.pinger != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()
		if err := h.pinger.PingContext(ctx); err != nil {
			log.Ctx(r.Context()).Warn().Err(err).Msg("storage not ready")
			writeJSON(w, r, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
			return
		}
	}
	writeJSON(w, r, http.StatusOK, healthResponse{Status: "ok"})
}
