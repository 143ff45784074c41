package approval_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/frahmantamala/inventory-management/internal"
	"github.com/frahmantamala/inventory-management/internal/approval"
	"github.com/frahmantamala/inventory-management/internal/approval/postgres"
	auditDatamodel "github.com/frahmantamala/inventory-management/internal/core/datamodel/audit"
	equipmentDatamodel "github.com/frahmantamala/inventory-management/internal/core/datamodel/equipment"
	licenseDatamodel "github.com/frahmantamala/inventory-management/internal/core/datamodel/license"
	"github.com/frahmantamala/inventory-management/internal/core/events"
	"github.com/frahmantamala/inventory-management/internal/store"
	"github.com/frahmantamala/inventory-management/internal/store/storetest"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

func TestApproval(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Approval Suite")
}

var _ = Describe("Approval Service", func() {
	var (
		db        *gorm.DB
		service   *approval.Service
		decisions chan *events.ApprovalDecidedEvent
		ctx       context.Context
		admin     *internal.Principal
		pendingEq *equipmentDatamodel.Equipment
		pendingLi *licenseDatamodel.License
	)

	BeforeEach(func() {
		var err error
		db, err = storetest.Open()
		Expect(err).NotTo(HaveOccurred())
		reader, err := store.NewReader(db)
		Expect(err).NotTo(HaveOccurred())

		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		bus := events.NewEventBus(logger)
		decisions = make(chan *events.ApprovalDecidedEvent, 4)
		bus.Subscribe(events.EventTypeApprovalDecided, func(_ context.Context, e events.Event) error {
			decisions <- e.(*events.ApprovalDecidedEvent)
			return nil
		})

		service = approval.NewService(postgres.NewApprovalRepository(db, reader), bus, logger)
		ctx = context.Background()
		admin = &internal.Principal{ID: 1, Username: "admin", Role: internal.RoleAdmin}

		pendingEq = &equipmentDatamodel.Equipment{Description: "Notebook", Notes: "new hire", ApprovalStatus: "pending_approval"}
		Expect(db.Create(pendingEq).Error).To(Succeed())
		Expect(db.Create(&equipmentDatamodel.Equipment{Description: "Old", ApprovalStatus: "approved"}).Error).To(Succeed())
		pendingLi = &licenseDatamodel.License{Product: "Office", AssignedUser: "Ana", ApprovalStatus: "pending_approval"}
		Expect(db.Create(pendingLi).Error).To(Succeed())
	})

	AfterEach(func() {
		storetest.Close(db)
	})

	It("lists pending rows of both entities", func() {
		items, err := service.ListPending(ctx, admin)
		Expect(err).NotTo(HaveOccurred())
		Expect(items).To(HaveLen(2))
		Expect(*items[0]).To(Equal(approval.PendingItem{Entity: approval.EntityEquipment, ID: pendingEq.ID, Name: "Notebook", Notes: "new hire"}))
		Expect(items[1].Entity).To(Equal(approval.EntityLicense))
		Expect(items[1].Name).To(Equal("Office / Ana"))
	})

	It("is reserved to administrators", func() {
		operator := &internal.Principal{ID: 2, Username: "op", Role: internal.RoleOperator}
		_, err := service.ListPending(ctx, operator)
		Expect(internal.IsType(err, internal.ErrorTypeForbidden)).To(BeTrue())

		_, err = service.Approve(ctx, operator, approval.DecisionDTO{Entity: "equipment", ID: pendingEq.ID})
		Expect(internal.IsType(err, internal.ErrorTypeForbidden)).To(BeTrue())
	})

	It("approves a pending row once", func() {
		res, err := service.Approve(ctx, admin, approval.DecisionDTO{Entity: "Equipment", ID: pendingEq.ID})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Decision).To(Equal(approval.DecisionApproved))

		var row equipmentDatamodel.Equipment
		Expect(db.First(&row, pendingEq.ID).Error).To(Succeed())
		Expect(row.ApprovalStatus).To(Equal("approved"))

		var decided *events.ApprovalDecidedEvent
		Eventually(decisions).Should(Receive(&decided))
		Expect(decided.Decision).To(Equal("approved"))

		_, err = service.Approve(ctx, admin, approval.DecisionDTO{Entity: "equipment", ID: pendingEq.ID})
		Expect(err).To(Equal(internal.ErrNotPending))
	})

	It("deletes a rejected row and keeps the reason in the audit log", func() {
		_, err := service.Reject(ctx, admin, approval.DecisionDTO{Entity: "license", ID: pendingLi.ID, Reason: "duplicate"})
		Expect(err).NotTo(HaveOccurred())

		var n int64
		Expect(db.Model(&licenseDatamodel.License{}).Where("id = ?", pendingLi.ID).Count(&n).Error).To(Succeed())
		Expect(n).To(BeZero())

		var entry auditDatamodel.AuditLog
		Expect(db.Where("action = ?", "DELETE").First(&entry).Error).To(Succeed())
		Expect(entry.TargetType).To(Equal("LICENSE"))
		Expect(entry.Details).To(ContainSubstring("duplicate"))
		Expect(entry.Details).To(ContainSubstring("Office"))
	})

	It("cannot approve a row after it was rejected", func() {
		_, err := service.Reject(ctx, admin, approval.DecisionDTO{Entity: "equipment", ID: pendingEq.ID})
		Expect(err).NotTo(HaveOccurred())

		_, err = service.Approve(ctx, admin, approval.DecisionDTO{Entity: "equipment", ID: pendingEq.ID})
		Expect(err).To(Equal(internal.ErrNotPending))
	})

	It("does not reject approved rows", func() {
		var approved equipmentDatamodel.Equipment
		Expect(db.Where("approval_status = ?", "approved").First(&approved).Error).To(Succeed())

		_, err := service.Reject(ctx, admin, approval.DecisionDTO{Entity: "equipment", ID: approved.ID})
		Expect(err).To(Equal(internal.ErrNotPending))
	})

	It("validates the entity", func() {
		_, err := service.Approve(ctx, admin, approval.DecisionDTO{Entity: "user", ID: 1})
		Expect(internal.IsType(err, internal.ErrorTypeValidation)).To(BeTrue())
	})
})
