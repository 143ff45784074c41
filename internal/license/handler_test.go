package license_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"

	"github.com/frahmantamala/inventory-management/internal"
	"github.com/frahmantamala/inventory-management/internal/license"
	"github.com/frahmantamala/inventory-management/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type mockService struct {
	license.ServiceAPI
	product    string
	rename     license.RenameProductDTO
	importBody string
	err        error
}

func (m *mockService) ProductStats(_ context.Context, _ *internal.Principal) ([]*license.ProductStat, error) {
	return []*license.ProductStat{{Product: "Office", Total: 2, Used: 3, Available: -1}}, m.err
}

func (m *mockService) SetProductTotal(_ context.Context, _ *internal.Principal, product string, dto license.SetTotalDTO) (*license.Total, error) {
	m.product = product
	if m.err != nil {
		return nil, m.err
	}
	return &license.Total{Product: product, Total: *dto.Total}, nil
}

func (m *mockService) DeleteProductTotal(_ context.Context, _ *internal.Principal, product string) error {
	m.product = product
	return m.err
}

func (m *mockService) RenameProduct(_ context.Context, _ *internal.Principal, dto license.RenameProductDTO) (*license.RenameResult, error) {
	m.rename = dto
	return &license.RenameResult{OldName: dto.OldName, NewName: dto.NewName, Renamed: 4}, m.err
}

func (m *mockService) Import(_ context.Context, _ *internal.Principal, product string, r io.Reader) (*license.ImportResult, error) {
	m.product = product
	data, _ := io.ReadAll(r)
	m.importBody = string(data)
	return &license.ImportResult{Product: product, Imported: 1}, m.err
}

var _ = Describe("License Handler", func() {
	var (
		service *mockService
		handler *license.Handler
	)

	request := func(method, target string, body io.Reader, params map[string]string) *http.Request {
		req := httptest.NewRequest(method, target, body)
		rctx := chi.NewRouteContext()
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
		return req.WithContext(internal.ContextWithUser(ctx, admin))
	}

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = &mockService{}
		handler = license.NewHandler(transport.NewBaseHandler(logger), service)
	})

	It("serves product stats", func() {
		rec := httptest.NewRecorder()
		handler.Stats(rec, request(http.MethodGet, "/licenses/stats", nil, nil))

		Expect(rec.Code).To(Equal(http.StatusOK))
		var body license.StatsResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
		Expect(body.Products[0].Available).To(Equal(-1))
	})

	It("decodes escaped product names in the path", func() {
		rec := httptest.NewRecorder()
		req := request(http.MethodPut, "/licenses/totals/Office%2F365", bytes.NewBufferString(`{"total":5}`),
			map[string]string{"product": "Office%2F365"})
		handler.SetTotal(rec, req)

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(service.product).To(Equal("Office/365"))
	})

	It("answers 204 when a total is deleted", func() {
		rec := httptest.NewRecorder()
		handler.DeleteTotal(rec, request(http.MethodDelete, "/licenses/totals/Visio", nil, map[string]string{"product": "Visio"}))
		Expect(rec.Code).To(Equal(http.StatusNoContent))
		Expect(service.product).To(Equal("Visio"))
	})

	It("renames products", func() {
		rec := httptest.NewRecorder()
		body := bytes.NewBufferString(`{"old_name":"Office","new_name":"Office 365"}`)
		handler.RenameProduct(rec, request(http.MethodPost, "/licenses/rename-product", body, nil))

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(service.rename.NewName).To(Equal("Office 365"))
	})

	It("maps validation errors to 400", func() {
		service.err = internal.NewValidationFieldError("total", "total must be at least 0", internal.ErrCodeNegativeTotal)
		rec := httptest.NewRecorder()
		handler.SetTotal(rec, request(http.MethodPut, "/licenses/totals/Office", bytes.NewBufferString(`{"total":-1}`),
			map[string]string{"product": "Office"}))
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("imports a raw body with the product in the query", func() {
		rec := httptest.NewRecorder()
		req := request(http.MethodPost, "/licenses/import?product=Office", bytes.NewBufferString("CHAVESERIAL\nAAA\n"), nil)
		req.Header.Set("Content-Type", "text/csv")
		handler.Import(rec, req)

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(service.product).To(Equal("Office"))
		Expect(service.importBody).To(Equal("CHAVESERIAL\nAAA\n"))
	})
})
