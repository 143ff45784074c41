package integration

import (
	"context"
	"net/http"

	"github.com/frahmantamala/inventory-management/internal"
	"github.com/frahmantamala/inventory-management/internal/transport"
)

type ServiceAPI interface {
	GetConfig(ctx context.Context, actor *internal.Principal) (*ConfigResponse, error)
	SaveConfig(ctx context.Context, actor *internal.Principal, dto SaveConfigDTO) (*ConfigResponse, error)
	TestConnection(ctx context.Context, actor *internal.Principal, dto TestConnectionDTO) (*TestResult, error)
	Inventory(ctx context.Context, actor *internal.Principal) ([]Device, error)
	Sync(ctx context.Context, actor *internal.Principal) (*SyncResult, error)
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

func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	actor, err := h.Principal(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	cfg, err := h.Service.GetConfig(r.Context(), actor)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, cfg)
}

func (h *Handler) SaveConfig(w http.ResponseWriter, r *http.Request) {
	actor, err := h.Principal(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	var dto SaveConfigDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	cfg, err := h.Service.SaveConfig(r.Context(), actor, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, cfg)
}

// Test accepts an empty body to test the stored credentials.
func (h *Handler) Test(w http.ResponseWriter, r *http.Request) {
	actor, err := h.Principal(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	var dto TestConnectionDTO
	if r.ContentLength != 0 {
		if err := h.DecodeJSON(r, &dto); err != nil {
			h.HandleServiceError(w, r, err)
			return
		}
	}

	res, err := h.Service.TestConnection(r.Context(), actor, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) Inventory(w http.ResponseWriter, r *http.Request) {
	actor, err := h.Principal(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	devices, err := h.Service.Inventory(r.Context(), actor)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, InventoryResponse{Devices: devices})
}

func (h *Handler) Sync(w http.ResponseWriter, r *http.Request) {
	actor, err := h.Principal(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	res, err := h.Service.Sync(r.Context(), actor)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, res)
}
