package equipment_test

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/frahmantamala/inventory-management/internal"
	"github.com/frahmantamala/inventory-management/internal/audit"
	auditDatamodel "github.com/frahmantamala/inventory-management/internal/core/datamodel/audit"
	equipmentDatamodel "github.com/frahmantamala/inventory-management/internal/core/datamodel/equipment"
	"github.com/frahmantamala/inventory-management/internal/equipment"
	"github.com/frahmantamala/inventory-management/internal/equipment/postgres"
	"github.com/frahmantamala/inventory-management/internal/store/storetest"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

func TestEquipment(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Equipment Suite")
}

func str(s string) *string { return &s }

var (
	admin    = &internal.Principal{ID: 1, Username: "admin", Role: internal.RoleAdmin}
	operator = &internal.Principal{ID: 2, Username: "maria", Role: internal.RoleOperator}
)

var _ = Describe("Equipment Service", func() {
	var (
		db      *gorm.DB
		service *equipment.Service
		ctx     context.Context
	)

	countAudit := func(action audit.Action) int64 {
		var n int64
		Expect(db.Model(&auditDatamodel.AuditLog{}).Where("action = ?", string(action)).Count(&n).Error).To(Succeed())
		return n
	}

	countHistory := func() int64 {
		var n int64
		Expect(db.Model(&equipmentDatamodel.History{}).Count(&n).Error).To(Succeed())
		return n
	}

	BeforeEach(func() {
		var err error
		db, err = storetest.Open()
		Expect(err).NotTo(HaveOccurred())
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = equipment.NewService(postgres.NewEquipmentRepository(db), nil, logger)
		ctx = context.Background()
	})

	AfterEach(func() {
		storetest.Close(db)
	})

	Describe("Create", func() {
		It("approves rows created by an administrator", func() {
			item, err := service.Create(ctx, admin, equipment.CreateEquipmentDTO{Description: "Notebook", AssetTag: "A-1"})
			Expect(err).NotTo(HaveOccurred())
			Expect(item.ID).To(BeNumerically(">", 0))
			Expect(item.ApprovalStatus).To(Equal("approved"))
			Expect(item.QRPayload).To(Equal("A-1"))
			Expect(countAudit(audit.ActionCreate)).To(Equal(int64(1)))
		})

		It("keeps rows created by an operator pending and hidden from operators", func() {
			item, err := service.Create(ctx, operator, equipment.CreateEquipmentDTO{Description: "Monitor", Serial: "SN-9"})
			Expect(err).NotTo(HaveOccurred())
			Expect(item.ApprovalStatus).To(Equal("pending_approval"))
			Expect(item.QRPayload).To(Equal("SN-9"))

			list, err := service.List(ctx, operator)
			Expect(err).NotTo(HaveOccurred())
			Expect(list).To(BeEmpty())

			_, err = service.Get(ctx, operator, item.ID)
			Expect(internal.IsType(err, internal.ErrorTypeNotFound)).To(BeTrue())

			list, err = service.List(ctx, admin)
			Expect(err).NotTo(HaveOccurred())
			Expect(list).To(HaveLen(1))
		})

		It("rejects a missing description", func() {
			_, err := service.Create(ctx, admin, equipment.CreateEquipmentDTO{Description: "   "})
			Expect(internal.IsType(err, internal.ErrorTypeValidation)).To(BeTrue())
		})

		It("reports a duplicate asset tag on the asset_tag field", func() {
			_, err := service.Create(ctx, admin, equipment.CreateEquipmentDTO{Description: "a", AssetTag: "A-1"})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Create(ctx, admin, equipment.CreateEquipmentDTO{Description: "b", AssetTag: "A-1"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeConflict))
			Expect(appErr.Field()).To(Equal("asset_tag"))
		})

		It("allows any number of untagged rows", func() {
			for i := 0; i < 3; i++ {
				_, err := service.Create(ctx, admin, equipment.CreateEquipmentDTO{Description: "cable"})
				Expect(err).NotTo(HaveOccurred())
			}
		})
	})

	Describe("Update", func() {
		var seeded *equipment.Equipment

		BeforeEach(func() {
			var err error
			seeded, err = service.Create(ctx, admin, equipment.CreateEquipmentDTO{
				Description:   "Notebook Dell",
				AssetTag:      "A-1",
				Status:        "Em Uso",
				CurrentHolder: "Carlos",
			})
			Expect(err).NotTo(HaveOccurred())
		})

		It("writes one history row per changed field and one audit entry", func() {
			updated, err := service.Update(ctx, operator, seeded.ID, equipment.UpdateEquipmentDTO{
				Status:        str("Estoque"),
				CurrentHolder: str(""),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Status).To(Equal("Estoque"))
			Expect(updated.CurrentHolder).To(BeEmpty())

			history, err := service.History(ctx, admin, seeded.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(history).To(HaveLen(2))

			byField := map[string]*equipment.HistoryEntry{}
			for _, h := range history {
				byField[h.Field] = h
			}
			Expect(byField["status"].Category).To(Equal(equipment.CategoryStatus))
			Expect(byField["status"].OldValue).To(Equal("Em Uso"))
			Expect(byField["status"].NewValue).To(Equal("Estoque"))
			Expect(byField["current_holder"].Category).To(Equal(equipment.CategoryUser))
			Expect(byField["current_holder"].OldValue).To(Equal("Carlos"))
			Expect(byField["current_holder"].ChangedBy).To(Equal("maria"))

			Expect(countAudit(audit.ActionUpdate)).To(Equal(int64(1)))
		})

		It("writes no history for loosely equal values but still audits", func() {
			_, err := service.Update(ctx, admin, seeded.ID, equipment.UpdateEquipmentDTO{
				Status:     str(" Em Uso "),
				Department: str("  "),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(countHistory()).To(BeZero())

			var entry auditDatamodel.AuditLog
			Expect(db.Where("action = ?", "UPDATE").First(&entry).Error).To(Succeed())
			Expect(entry.Details).To(ContainSubstring("no changes"))
		})

		It("writes no history while the row is pending", func() {
			pending, err := service.Create(ctx, operator, equipment.CreateEquipmentDTO{Description: "Mouse"})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Update(ctx, admin, pending.ID, equipment.UpdateEquipmentDTO{Site: str("SP")})
			Expect(err).NotTo(HaveOccurred())
			Expect(countHistory()).To(BeZero())
		})

		It("returns not found for unknown ids", func() {
			_, err := service.Update(ctx, admin, 999, equipment.UpdateEquipmentDTO{Site: str("SP")})
			Expect(err).To(Equal(internal.ErrEquipmentNotFound))
		})

		It("rolls the update back when the audit entry cannot be written", func() {
			Expect(db.Migrator().DropTable(&auditDatamodel.AuditLog{})).To(Succeed())

			_, err := service.Update(ctx, admin, seeded.ID, equipment.UpdateEquipmentDTO{Status: str("Estoque")})
			Expect(internal.IsType(err, internal.ErrorTypeInternal)).To(BeTrue())

			var row equipmentDatamodel.Equipment
			Expect(db.First(&row, seeded.ID).Error).To(Succeed())
			Expect(row.Status).To(Equal("Em Uso"))
			Expect(countHistory()).To(BeZero())
		})
	})

	Describe("Delete", func() {
		It("is reserved to administrators and removes history", func() {
			item, err := service.Create(ctx, admin, equipment.CreateEquipmentDTO{Description: "Phone", AssetTag: "P-1"})
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Update(ctx, admin, item.ID, equipment.UpdateEquipmentDTO{Site: str("SP")})
			Expect(err).NotTo(HaveOccurred())
			Expect(countHistory()).To(Equal(int64(1)))

			err = service.Delete(ctx, operator, item.ID)
			Expect(internal.IsType(err, internal.ErrorTypeForbidden)).To(BeTrue())

			Expect(service.Delete(ctx, admin, item.ID)).To(Succeed())
			Expect(countHistory()).To(BeZero())
			Expect(countAudit(audit.ActionDelete)).To(Equal(int64(1)))

			err = service.Delete(ctx, admin, item.ID)
			Expect(internal.IsType(err, internal.ErrorTypeNotFound)).To(BeTrue())
		})
	})

	Describe("Import", func() {
		It("upserts by asset tag and skips rows without a description", func() {
			_, err := service.Create(ctx, admin, equipment.CreateEquipmentDTO{Description: "Notebook", AssetTag: "A-1", Site: "RJ"})
			Expect(err).NotTo(HaveOccurred())

			csv := "\ufeffEQUIPAMENTO;PATRIMONIO;Serial;USUÁRIO ATUAL;LOCAL;STATUS\n" +
				"Notebook Dell;A-1;SN1;Ana;SP;Em Uso\n" +
				";A-9;SN9;;;\n" +
				"Monitor;;SN2;;RJ;Estoque\n"

			res, err := service.Import(ctx, admin, strings.NewReader(csv))
			Expect(err).NotTo(HaveOccurred())
			Expect(*res).To(Equal(equipment.ImportResult{Imported: 1, Updated: 1, Skipped: 1}))

			list, err := service.List(ctx, admin)
			Expect(err).NotTo(HaveOccurred())
			Expect(list).To(HaveLen(2))
			Expect(list[0].Site).To(Equal("SP"))
			Expect(list[0].CurrentHolder).To(Equal("Ana"))
			Expect(list[1].QRPayload).To(Equal("SN2"))
			Expect(list[1].ApprovalStatus).To(Equal("approved"))
		})

		It("is reserved to administrators", func() {
			_, err := service.Import(ctx, operator, strings.NewReader("EQUIPAMENTO\nx\n"))
			Expect(internal.IsType(err, internal.ErrorTypeForbidden)).To(BeTrue())
		})

		It("rejects an empty file", func() {
			_, err := service.Import(ctx, admin, strings.NewReader(""))
			Expect(internal.IsType(err, internal.ErrorTypeValidation)).To(BeTrue())
		})
	})

	Describe("Reconcile", func() {
		It("skips untagged records when a tag is required and applies defaults on insert", func() {
			records := []equipment.Record{
				{"description": "Laptop", "asset_tag": "ABS-001", "serial": "S1"},
				{"description": "Ghost"},
			}
			opts := equipment.ReconcileOptions{
				Target:          audit.TargetIntegration,
				Source:          "sync",
				RequireAssetTag: true,
				Defaults:        equipment.Record{"ownership_type": "ABSOLUTE"},
			}

			res, err := service.Reconcile(ctx, internal.SystemPrincipal, records, opts)
			Expect(err).NotTo(HaveOccurred())
			Expect(*res).To(Equal(equipment.ReconcileResult{Added: 1, Skipped: 1}))

			res, err = service.Reconcile(ctx, internal.SystemPrincipal, records, opts)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Added).To(BeZero())
			Expect(res.Updated).To(Equal(1))

			list, err := service.List(ctx, admin)
			Expect(err).NotTo(HaveOccurred())
			Expect(list).To(HaveLen(1))
			Expect(list[0].OwnershipType).To(Equal("ABSOLUTE"))
		})
	})
})
