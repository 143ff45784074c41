package equipment_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"

	"github.com/frahmantamala/inventory-management/internal"
	"github.com/frahmantamala/inventory-management/internal/equipment"
	"github.com/frahmantamala/inventory-management/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type mockService struct {
	items      []*equipment.Equipment
	lastID     int64
	lastUpdate equipment.UpdateEquipmentDTO
	lastCreate equipment.CreateEquipmentDTO
	imported   string
	err        error
}

func (m *mockService) List(_ context.Context, _ *internal.Principal) ([]*equipment.Equipment, error) {
	return m.items, m.err
}

func (m *mockService) Get(_ context.Context, _ *internal.Principal, id int64) (*equipment.Equipment, error) {
	m.lastID = id
	if m.err != nil {
		return nil, m.err
	}
	return &equipment.Equipment{ID: id, Description: "Notebook"}, nil
}

func (m *mockService) History(_ context.Context, _ *internal.Principal, id int64) ([]*equipment.HistoryEntry, error) {
	m.lastID = id
	return []*equipment.HistoryEntry{{EquipmentID: id, Field: "status"}}, m.err
}

func (m *mockService) Create(_ context.Context, _ *internal.Principal, dto equipment.CreateEquipmentDTO) (*equipment.Equipment, error) {
	m.lastCreate = dto
	if m.err != nil {
		return nil, m.err
	}
	return &equipment.Equipment{ID: 7, Description: dto.Description}, nil
}

func (m *mockService) Update(_ context.Context, _ *internal.Principal, id int64, dto equipment.UpdateEquipmentDTO) (*equipment.Equipment, error) {
	m.lastID = id
	m.lastUpdate = dto
	if m.err != nil {
		return nil, m.err
	}
	return &equipment.Equipment{ID: id}, nil
}

func (m *mockService) Delete(_ context.Context, _ *internal.Principal, id int64) error {
	m.lastID = id
	return m.err
}

func (m *mockService) Import(_ context.Context, _ *internal.Principal, r io.Reader) (*equipment.ImportResult, error) {
	data, _ := io.ReadAll(r)
	m.imported = string(data)
	return &equipment.ImportResult{Imported: 1}, m.err
}

var _ = Describe("Equipment Handler", func() {
	var (
		service *mockService
		handler *equipment.Handler
	)

	withUser := func(req *http.Request, params map[string]string) *http.Request {
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
		handler = equipment.NewHandler(transport.NewBaseHandler(logger), service)
	})

	It("lists equipment", func() {
		service.items = []*equipment.Equipment{{ID: 1}, {ID: 2}}
		rec := httptest.NewRecorder()
		handler.List(rec, withUser(httptest.NewRequest(http.MethodGet, "/equipment", nil), nil))

		Expect(rec.Code).To(Equal(http.StatusOK))
		var body equipment.ListResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
		Expect(body.Equipment).To(HaveLen(2))
	})

	It("rejects requests without a principal", func() {
		rec := httptest.NewRecorder()
		handler.List(rec, httptest.NewRequest(http.MethodGet, "/equipment", nil))
		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
	})

	It("rejects a non-numeric id", func() {
		rec := httptest.NewRecorder()
		handler.Get(rec, withUser(httptest.NewRequest(http.MethodGet, "/equipment/abc", nil), map[string]string{"id": "abc"}))
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("maps not found to 404", func() {
		service.err = internal.ErrEquipmentNotFound
		rec := httptest.NewRecorder()
		handler.Get(rec, withUser(httptest.NewRequest(http.MethodGet, "/equipment/9", nil), map[string]string{"id": "9"}))
		Expect(rec.Code).To(Equal(http.StatusNotFound))
		Expect(service.lastID).To(Equal(int64(9)))
	})

	It("creates equipment and answers 201", func() {
		body := bytes.NewBufferString(`{"description":"Notebook","asset_tag":"A-1"}`)
		rec := httptest.NewRecorder()
		handler.Create(rec, withUser(httptest.NewRequest(http.MethodPost, "/equipment", body), nil))

		Expect(rec.Code).To(Equal(http.StatusCreated))
		Expect(service.lastCreate.AssetTag).To(Equal("A-1"))
	})

	It("rejects malformed json", func() {
		rec := httptest.NewRecorder()
		handler.Create(rec, withUser(httptest.NewRequest(http.MethodPost, "/equipment", bytes.NewBufferString("{")), nil))
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("passes only supplied fields on update", func() {
		body := bytes.NewBufferString(`{"status":"Estoque","current_holder":""}`)
		rec := httptest.NewRecorder()
		handler.Update(rec, withUser(httptest.NewRequest(http.MethodPut, "/equipment/3", body), map[string]string{"id": "3"}))

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(*service.lastUpdate.Status).To(Equal("Estoque"))
		Expect(*service.lastUpdate.CurrentHolder).To(BeEmpty())
		Expect(service.lastUpdate.Site).To(BeNil())
	})

	It("answers 204 on delete", func() {
		rec := httptest.NewRecorder()
		handler.Delete(rec, withUser(httptest.NewRequest(http.MethodDelete, "/equipment/3", nil), map[string]string{"id": "3"}))
		Expect(rec.Code).To(Equal(http.StatusNoContent))
	})

	It("maps forbidden to 403", func() {
		service.err = internal.NewForbiddenError("role operator may not delete equipment", internal.ErrCodeAccessDenied)
		rec := httptest.NewRecorder()
		handler.Delete(rec, withUser(httptest.NewRequest(http.MethodDelete, "/equipment/3", nil), map[string]string{"id": "3"}))
		Expect(rec.Code).To(Equal(http.StatusForbidden))
	})

	It("hides unexpected errors", func() {
		service.err = io.ErrUnexpectedEOF
		rec := httptest.NewRecorder()
		handler.List(rec, withUser(httptest.NewRequest(http.MethodGet, "/equipment", nil), nil))
		Expect(rec.Code).To(Equal(http.StatusInternalServerError))
		Expect(rec.Body.String()).NotTo(ContainSubstring("unexpected EOF"))
	})

	It("imports a multipart upload", func() {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		part, err := mw.CreateFormFile("file", "inventory.csv")
		Expect(err).NotTo(HaveOccurred())
		_, _ = part.Write([]byte("EQUIPAMENTO\nNotebook\n"))
		Expect(mw.Close()).To(Succeed())

		req := httptest.NewRequest(http.MethodPost, "/equipment/import", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		rec := httptest.NewRecorder()
		handler.Import(rec, withUser(req, nil))

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(service.imported).To(Equal("EQUIPAMENTO\nNotebook\n"))
	})
})
