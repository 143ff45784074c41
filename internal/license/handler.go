package license

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/frahmantamala/inventory-management/internal"
	"github.com/frahmantamala/inventory-management/internal/transport"
	"github.com/go-chi/chi"
)

const maxImportBytes = 10 << 20

type ServiceAPI interface {
	List(ctx context.Context, actor *internal.Principal) ([]*License, error)
	Get(ctx context.Context, actor *internal.Principal, id int64) (*License, error)
	Create(ctx context.Context, actor *internal.Principal, dto CreateLicenseDTO) (*License, error)
	Update(ctx context.Context, actor *internal.Principal, id int64, dto UpdateLicenseDTO) (*License, error)
	Delete(ctx context.Context, actor *internal.Principal, id int64) error
	ProductStats(ctx context.Context, actor *internal.Principal) ([]*ProductStat, error)
	SetProductTotal(ctx context.Context, actor *internal.Principal, product string, dto SetTotalDTO) (*Total, error)
	DeleteProductTotal(ctx context.Context, actor *internal.Principal, product string) error
	RenameProduct(ctx context.Context, actor *internal.Principal, dto RenameProductDTO) (*RenameResult, error)
	Import(ctx context.Context, actor *internal.Principal, product string, r io.Reader) (*ImportResult, error)
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

	items, err := h.Service.List(r.Context(), actor)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ListResponse{Licenses: items})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	actor, err := h.Principal(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	item, err := h.Service.Get(r.Context(), actor, id)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := h.Principal(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	var dto CreateLicenseDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	item, err := h.Service.Create(r.Context(), actor, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, item)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	actor, err := h.Principal(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	var dto UpdateLicenseDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	item, err := h.Service.Update(r.Context(), actor, id, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, err := h.Principal(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	if err := h.Service.Delete(r.Context(), actor, id); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	actor, err := h.Principal(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	stats, err := h.Service.ProductStats(r.Context(), actor)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, StatsResponse{Products: stats})
}

func (h *Handler) SetTotal(w http.ResponseWriter, r *http.Request) {
	actor, err := h.Principal(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	var dto SetTotalDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	total, err := h.Service.SetProductTotal(r.Context(), actor, productParam(r), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, total)
}

func (h *Handler) DeleteTotal(w http.ResponseWriter, r *http.Request) {
	actor, err := h.Principal(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	if err := h.Service.DeleteProductTotal(r.Context(), actor, productParam(r)); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) RenameProduct(w http.ResponseWriter, r *http.Request) {
	actor, err := h.Principal(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	var dto RenameProductDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	res, err := h.Service.RenameProduct(r.Context(), actor, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, res)
}

// Import takes the product from the "product" form field or query parameter
// and the CSV from the "file" field or the raw body.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	actor, err := h.Principal(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	body, closeFn, err := transport.UploadedFile(r, "file", maxImportBytes)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	defer closeFn()

	product := r.URL.Query().Get("product")
	if r.MultipartForm != nil {
		if values := r.MultipartForm.Value["product"]; len(values) > 0 {
			product = values[0]
		}
	}

	res, err := h.Service.Import(r.Context(), actor, product, body)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, res)
}

func productParam(r *http.Request) string {
	raw := chi.URLParam(r, "product")
	if product, err := url.PathUnescape(raw); err == nil {
		return product
	}
	return raw
}
