package approval

import (
	"context"
	"net/http"

	"github.com/frahmantamala/inventory-management/internal"
	"github.com/frahmantamala/inventory-management/internal/transport"
)

type ServiceAPI interface {
	ListPending(ctx context.Context, actor *internal.Principal) ([]*PendingItem, error)
	Approve(ctx context.Context, actor *internal.Principal, dto DecisionDTO) (*DecisionResponse, error)
	Reject(ctx context.Context, actor *internal.Principal, dto DecisionDTO) (*DecisionResponse, error)
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

	items, err := h.Service.ListPending(r.Context(), actor)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ListResponse{Items: items})
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.Service.Approve)
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.Service.Reject)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, fn func(context.Context, *internal.Principal, DecisionDTO) (*DecisionResponse, error)) {
	actor, err := h.Principal(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	var dto DecisionDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	res, err := fn(r.Context(), actor, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, res)
}
