package suggest

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/whoamimjg/chef-mike-ai-recipe-manager-sub002/modules/respond"
	"github.com/whoamimjg/chef-mike-ai-recipe-manager-sub002/pkg/identity"
	"github.com/whoamimjg/chef-mike-ai-recipe-manager-sub002/pkg/logger"
	"github.com/whoamimjg/chef-mike-ai-recipe-manager-sub002/pkg/quota"
)

type handlers struct {
	recommender Recommender
	gate        quota.Service
	log         *slog.Logger
}

// Router mounts POST /. Expects identity middleware upstream.
func Router(recommender Recommender, gate quota.Service, log *slog.Logger) chi.Router {
	if log == nil {
		log = slog.Default()
	}
	h := &handlers{recommender: recommender, gate: gate, log: log}

	r := chi.NewRouter()
	r.Post("/", h.suggest)
	return r
}

type suggestRequest struct {
	Preferences []string `json:"preferences"`
}

func (h *handlers) suggest(w http.ResponseWriter, r *http.Request) {
	accountID, ok := identity.AccountID(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	// Feature gate first: no model call is made for plans without the
	// feature, regardless of request contents.
	if d := h.gate.CheckFeature(r.Context(), accountID, quota.FeatureAIRecommendations); !d.Allowed {
		respond.Denial(w, d)
		return
	}

	var req suggestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	suggestions, err := h.recommender.Suggest(r.Context(), req.Preferences)
	if err != nil {
		h.log.ErrorContext(r.Context(), "failed to generate suggestions", logger.Error(err))
		respond.Error(w, http.StatusServiceUnavailable, "suggestions temporarily unavailable")
		return
	}
	if suggestions == nil {
		suggestions = []Suggestion{}
	}
	respond.JSON(w, http.StatusOK, map[string][]Suggestion{"suggestions": suggestions})
}
