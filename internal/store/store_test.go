package store_test

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"

	"github.com/frahmantamala/inventory-management/internal"
	equipmentDatamodel "github.com/frahmantamala/inventory-management/internal/core/datamodel/equipment"
	"github.com/frahmantamala/inventory-management/internal/store"
	"github.com/frahmantamala/inventory-management/internal/store/storetest"
	"github.com/jackc/pgx/v5/pgconn"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

func TestStore(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Store Suite")
}

func tag(s string) *string { return &s }

var _ = Describe("TranslateError", func() {
	It("passes nil through", func() {
		Expect(store.TranslateError(nil)).To(BeNil())
	})

	It("keeps application errors untouched", func() {
		err := store.TranslateError(internal.ErrEquipmentNotFound)
		Expect(err).To(BeIdenticalTo(internal.ErrEquipmentNotFound))
	})

	It("maps missing records to not found", func() {
		err := store.TranslateError(gorm.ErrRecordNotFound)
		Expect(internal.IsType(err, internal.ErrorTypeNotFound)).To(BeTrue())
	})

	It("maps unique violations to conflicts", func() {
		err := store.TranslateError(&pgconn.PgError{Code: "23505"})
		Expect(internal.IsType(err, internal.ErrorTypeConflict)).To(BeTrue())
	})

	It("maps lost connections to transient errors", func() {
		Expect(internal.IsType(store.TranslateError(driver.ErrBadConn), internal.ErrorTypeTransient)).To(BeTrue())
		Expect(internal.IsType(store.TranslateError(&pgconn.PgError{Code: "08006"}), internal.ErrorTypeTransient)).To(BeTrue())
		Expect(internal.IsType(store.TranslateError(&pgconn.PgError{Code: "40001"}), internal.ErrorTypeTransient)).To(BeTrue())
	})

	It("hides everything else behind an internal error", func() {
		err := store.TranslateError(errors.New("column does not exist"))
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.Type).To(Equal(internal.ErrorTypeInternal))
		Expect(appErr.Message).To(Equal("unexpected database error"))
	})
})

var _ = Describe("Store with sqlite", func() {
	var db *gorm.DB

	BeforeEach(func() {
		var err error
		db, err = storetest.Open()
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		storetest.Close(db)
	})

	It("detects duplicate asset tags as unique violations", func() {
		Expect(db.Create(&equipmentDatamodel.Equipment{Description: "a", AssetTag: tag("A-1"), ApprovalStatus: "approved"}).Error).To(Succeed())
		err := db.Create(&equipmentDatamodel.Equipment{Description: "b", AssetTag: tag("A-1"), ApprovalStatus: "approved"}).Error
		Expect(store.IsUniqueViolation(err)).To(BeTrue())
	})

	It("allows many equipment rows without an asset tag", func() {
		Expect(db.Create(&equipmentDatamodel.Equipment{Description: "a", ApprovalStatus: "approved"}).Error).To(Succeed())
		Expect(db.Create(&equipmentDatamodel.Equipment{Description: "b", ApprovalStatus: "approved"}).Error).To(Succeed())
	})

	It("rolls back every statement when the callback fails", func() {
		err := store.InTx(context.Background(), db, func(tx *gorm.DB) error {
			if err := tx.Create(&equipmentDatamodel.Equipment{Description: "a", ApprovalStatus: "approved"}).Error; err != nil {
				return err
			}
			return errors.New("boom")
		})
		Expect(err).To(MatchError("boom"))

		var count int64
		Expect(db.Model(&equipmentDatamodel.Equipment{}).Count(&count).Error).To(Succeed())
		Expect(count).To(BeZero())
	})

	It("exposes the pool through sqlx", func() {
		reader, err := store.NewReader(db)
		Expect(err).NotTo(HaveOccurred())
		Expect(reader.DriverName()).To(Equal("sqlite3"))

		var n int
		Expect(reader.Get(&n, "SELECT COUNT(*) FROM equipment")).To(Succeed())
		Expect(n).To(BeZero())
	})
})
