package recipe

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/whoamimjg/chef-mike-ai-recipe-manager-sub002/modules/respond"
	"github.com/whoamimjg/chef-mike-ai-recipe-manager-sub002/pkg/identity"
	"github.com/whoamimjg/chef-mike-ai-recipe-manager-sub002/pkg/logger"
	"github.com/whoamimjg/chef-mike-ai-recipe-manager-sub002/pkg/quota"
)

type handlers struct {
	store Store
	gate  quota.Service
	log   *slog.Logger
}

// Router mounts the recipe endpoints. Expects identity middleware upstream.
func Router(store Store, gate quota.Service, log *slog.Logger) chi.Router {
	if log == nil {
		log = slog.Default()
	}
	h := &handlers{store: store, gate: gate, log: log}

	r := chi.NewRouter()
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Delete("/{id}", h.delete)
	return r
}

type createRequest struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions"`
	Tags         []string `json:"tags"`
	ImageURL     string   `json:"image_url"`
}

func (h *handlers) create(w http.ResponseWriter, r *http.Request) {
	accountID, ok := identity.AccountID(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" {
		respond.Error(w, http.StatusBadRequest, "title is required")
		return
	}

	// Advisory pre-check: gives the caller a friendly denial without
	// attempting the write. The conditional insert below remains the
	// authoritative cap under concurrency. The allow decision carries the
	// resolved limit, so no second plan lookup is needed.
	d := h.gate.CanCreate(r.Context(), accountID, quota.ResourceRecipes)
	if !d.Allowed {
		respond.Denial(w, d)
		return
	}
	limit := d.Limit

	rec := &Recipe{
		UserID:       accountID,
		Title:        req.Title,
		Description:  req.Description,
		Ingredients:  req.Ingredients,
		Instructions: req.Instructions,
		Tags:         req.Tags,
		ImageURL:     req.ImageURL,
	}
	if err := h.store.CreateUnderLimit(r.Context(), rec, limit); err != nil {
		switch {
		case errors.Is(err, quota.ErrLimitReached):
			// Lost the race for the last slot between pre-check and insert.
			// The exact count at insert time is unknown here, so it is
			// omitted from the denial rather than guessed.
			respond.Denial(w, quota.Decision{
				Reason:   quota.ReasonLimitReached,
				Resource: quota.ResourceRecipes,
				Limit:    limit,
				Current:  -1,
			})
		default:
			h.log.ErrorContext(r.Context(), "failed to create recipe", logger.Error(err))
			respond.Error(w, http.StatusServiceUnavailable, "service temporarily unavailable")
		}
		return
	}

	respond.JSON(w, http.StatusCreated, rec)
}

func (h *handlers) list(w http.ResponseWriter, r *http.Request) {
	accountID, ok := identity.AccountID(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	recipes, err := h.store.List(r.Context(), accountID)
	if err != nil {
		h.log.ErrorContext(r.Context(), "failed to list recipes", logger.Error(err))
		respond.Error(w, http.StatusServiceUnavailable, "service temporarily unavailable")
		return
	}
	if recipes == nil {
		recipes = []Recipe{}
	}
	respond.JSON(w, http.StatusOK, recipes)
}

func (h *handlers) get(w http.ResponseWriter, r *http.Request) {
	accountID, ok := identity.AccountID(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid recipe id")
		return
	}

	rec, err := h.store.Get(r.Context(), accountID, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "recipe not found")
			return
		}
		h.log.ErrorContext(r.Context(), "failed to get recipe", logger.Error(err))
		respond.Error(w, http.StatusServiceUnavailable, "service temporarily unavailable")
		return
	}
	respond.JSON(w, http.StatusOK, rec)
}

func (h *handlers) delete(w http.ResponseWriter, r *http.Request) {
	accountID, ok := identity.AccountID(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid recipe id")
		return
	}

	if err := h.store.Delete(r.Context(), accountID, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "recipe not found")
			return
		}
		h.log.ErrorContext(r.Context(), "failed to delete recipe", logger.Error(err))
		respond.Error(w, http.StatusServiceUnavailable, "service temporarily unavailable")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
