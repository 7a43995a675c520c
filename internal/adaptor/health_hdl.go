package adaptor

import (
	"context"
	"net/http"
	"time"

	"reader-hub/internal/data/repository"
	"reader-hub/pkg/utils"

	"go.uber.org/zap"
)

type HealthHandler struct {
	store repository.Pinger
	log   *zap.Logger
}

func NewHealthHandler(store repository.Pinger, log *zap.Logger) *HealthHandler {
	return &HealthHandler{
		store: store,
		log:   log.With(zap.String("handler", "health")),
	}
}

// Check handles GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.log.Error("Store ping failed", zap.Error(err))
		utils.ResponseFail(w, http.StatusServiceUnavailable, localize(r).T("UNHEALTHY"), nil)
		return
	}

	utils.ResponseSuccess(w, localize(r).T("HEALTHY"), map[string]string{"status": "ok"})
}
