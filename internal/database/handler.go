package database

import (
	"context"
	"fmt"
	"net/http"

	"github.com/frahmantamala/inventory-management/internal"
	"github.com/frahmantamala/inventory-management/internal/transport"
)

type ServiceAPI interface {
	Status(ctx context.Context, actor *internal.Principal) (*Status, error)
	Backup(ctx context.Context, actor *internal.Principal) (*Snapshot, error)
	Restore(ctx context.Context, actor *internal.Principal, snapshot *Snapshot) error
	Reset(ctx context.Context, actor *internal.Principal) (*ResetResult, error)
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

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	actor, err := h.Principal(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	status, err := h.Service.Status(r.Context(), actor)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, status)
}

func (h *Handler) Backup(w http.ResponseWriter, r *http.Request) {
	actor, err := h.Principal(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	snapshot, err := h.Service.Backup(r.Context(), actor)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	filename := fmt.Sprintf("inventory-backup-%s.json", snapshot.BackupDate.Format("2006-01-02"))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	h.WriteJSON(w, http.StatusOK, snapshot)
}

func (h *Handler) Restore(w http.ResponseWriter, r *http.Request) {
	actor, err := h.Principal(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	var snapshot Snapshot
	if err := h.DecodeJSON(r, &snapshot); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	if err := h.Service.Restore(r.Context(), actor, &snapshot); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "database restored"})
}

func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	actor, err := h.Principal(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	res, err := h.Service.Reset(r.Context(), actor)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, res)
}
