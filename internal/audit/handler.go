package audit

import (
	"context"
	"net/http"
	"strconv"

	"github.com/frahmantamala/inventory-management/internal"
	"github.com/frahmantamala/inventory-management/internal/transport"
)

type ServiceAPI interface {
	List(ctx context.Context, actor *internal.Principal, filter Filter) ([]*Entry, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	actor, err := h.Principal(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	filter := Filter{TargetType: TargetType(r.URL.Query().Get("target_type"))}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if l, err := strconv.Atoi(raw); err == nil {
			filter.Limit = l
		}
	}

	entries, err := h.Service.List(r.Context(), actor, filter)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ListResponse{Entries: entries, Limit: filter.normalized().Limit})
}
