package shoppinglist

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

// Router mounts the shopping-list endpoints. Expects identity middleware
// upstream.
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
	Name  string `json:"name"`
	Items []Item `json:"items"`
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
	if req.Name == "" {
		respond.Error(w, http.StatusBadRequest, "name is required")
		return
	}

	d := h.gate.CanCreate(r.Context(), accountID, quota.ResourceShoppingLists)
	if !d.Allowed {
		respond.Denial(w, d)
		return
	}
	limit := d.Limit

	list := &List{
		UserID: accountID,
		Name:   req.Name,
		Items:  req.Items,
	}
	if err := h.store.CreateUnderLimit(r.Context(), list, limit); err != nil {
		switch {
		case errors.Is(err, quota.ErrLimitReached):
			// Race loser: the count at insert time is unknown, omit it.
			respond.Denial(w, quota.Decision{
				Reason:   quota.ReasonLimitReached,
				Resource: quota.ResourceShoppingLists,
				Limit:    limit,
				Current:  -1,
			})
		default:
			h.log.ErrorContext(r.Context(), "failed to create shopping list", logger.Error(err))
			respond.Error(w, http.StatusServiceUnavailable, "service temporarily unavailable")
		}
		return
	}

	respond.JSON(w, http.StatusCreated, list)
}

func (h *handlers) list(w http.ResponseWriter, r *http.Request) {
	accountID, ok := identity.AccountID(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	lists, err := h.store.ListByAccount(r.Context(), accountID)
	if err != nil {
		h.log.ErrorContext(r.Context(), "failed to list shopping lists", logger.Error(err))
		respond.Error(w, http.StatusServiceUnavailable, "service temporarily unavailable")
		return
	}
	if lists == nil {
		lists = []List{}
	}
	respond.JSON(w, http.StatusOK, lists)
}

func (h *handlers) get(w http.ResponseWriter, r *http.Request) {
	accountID, ok := identity.AccountID(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid shopping list id")
		return
	}

	list, err := h.store.Get(r.Context(), accountID, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "shopping list not found")
			return
		}
		h.log.ErrorContext(r.Context(), "failed to get shopping list", logger.Error(err))
		respond.Error(w, http.StatusServiceUnavailable, "service temporarily unavailable")
		return
	}
	respond.JSON(w, http.StatusOK, list)
}

func (h *handlers) delete(w http.ResponseWriter, r *http.Request) {
	accountID, ok := identity.AccountID(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid shopping list id")
		return
	}

	if err := h.store.Delete(r.Context(), accountID, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "shopping list not found")
			return
		}
		h.log.ErrorContext(r.Context(), "failed to delete shopping list", logger.Error(err))
		respond.Error(w, http.StatusServiceUnavailable, "service temporarily unavailable")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
