// Package plan exposes the advisory plan-usage endpoint. It is read-only and
// idempotent: clients poll it to warn users before they hit a limit, but the
// server-side admission gate remains the enforcement point.
package plan

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/whoamimjg/chef-mike-ai-recipe-manager-sub002/modules/respond"
	"github.com/whoamimjg/chef-mike-ai-recipe-manager-sub002/pkg/identity"
	"github.com/whoamimjg/chef-mike-ai-recipe-manager-sub002/pkg/logger"
	"github.com/whoamimjg/chef-mike-ai-recipe-manager-sub002/pkg/quota"
)

type handlers struct {
	gate quota.Service
	log  *slog.Logger
}

// Router mounts GET /usage. Expects identity middleware upstream.
func Router(gate quota.Service, log *slog.Logger) chi.Router {
	if log == nil {
		log = slog.Default()
	}
	h := &handlers{gate: gate, log: log}

	r := chi.NewRouter()
	r.Get("/usage", h.usage)
	return r
}

func (h *handlers) usage(w http.ResponseWriter, r *http.Request) {
	accountID, ok := identity.AccountID(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	report, err := h.gate.Report(r.Context(), accountID)
	if err != nil {
		switch {
		case errors.Is(err, quota.ErrStoreUnavailable):
			respond.Error(w, http.StatusServiceUnavailable, "usage temporarily unavailable")
		default:
			h.log.ErrorContext(r.Context(), "failed to build usage report", logger.Error(err))
			respond.Error(w, http.StatusInternalServerError, "failed to fetch plan usage")
		}
		return
	}

	respond.JSON(w, http.StatusOK, report)
}
