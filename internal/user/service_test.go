package user_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"

	"github.com/frahmantamala/inventory-management/internal"
	auditDatamodel "github.com/frahmantamala/inventory-management/internal/core/datamodel/audit"
	userDatamodel "github.com/frahmantamala/inventory-management/internal/core/datamodel/user"
	"github.com/frahmantamala/inventory-management/internal/store/storetest"
	"github.com/frahmantamala/inventory-management/internal/user"
	"github.com/frahmantamala/inventory-management/internal/user/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func TestUser(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "User Suite")
}

func str(s string) *string { return &s }

var _ = Describe("User Service", func() {
	var (
		db      *gorm.DB
		service *user.Service
		ctx     context.Context
		admin   *internal.Principal
		manager *internal.Principal
	)

	newUser := func(actor *internal.Principal, username string, role internal.Role) *user.User {
		u, err := service.Create(ctx, actor, user.CreateUserDTO{
			RealName: username,
			Username: username,
			Email:    username + "@example.com",
			Password: "secret123",
			Role:     role,
		})
		Expect(err).NotTo(HaveOccurred())
		return u
	}

	BeforeEach(func() {
		var err error
		db, err = storetest.Open()
		Expect(err).NotTo(HaveOccurred())

		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = user.NewService(postgres.NewUserRepository(db), nil, logger, user.Options{
			BCryptCost:        bcrypt.MinCost,
			BootstrapPassword: "admin123",
		})
		ctx = context.Background()

		created, err := service.EnsureBootstrapAdmin(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(created).To(BeTrue())

		var row userDatamodel.User
		Expect(db.Where("username = ?", "admin").First(&row).Error).To(Succeed())
		admin = &internal.Principal{ID: row.ID, Username: row.Username, Role: internal.RoleAdmin}

		m := newUser(admin, "manager", internal.RoleUserManager)
		manager = m.Principal()
	})

	AfterEach(func() {
		storetest.Close(db)
	})

	Describe("EnsureBootstrapAdmin", func() {
		It("does nothing while an administrator exists", func() {
			created, err := service.EnsureBootstrapAdmin(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(created).To(BeFalse())
		})

		It("stores a bcrypt hash of the configured password", func() {
			var row userDatamodel.User
			Expect(db.First(&row, admin.ID).Error).To(Succeed())
			Expect(row.Email).To(Equal("admin@localhost"))
			Expect(bcrypt.CompareHashAndPassword([]byte(row.PasswordHash), []byte("admin123"))).To(Succeed())
		})

		It("refuses to seed without a configured password and never logs one", func() {
			Expect(db.Where("1 = 1").Delete(&userDatamodel.User{}).Error).To(Succeed())

			var logs bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
			unconfigured := user.NewService(postgres.NewUserRepository(db), nil, logger, user.Options{BCryptCost: bcrypt.MinCost})

			created, err := unconfigured.EnsureBootstrapAdmin(ctx)
			Expect(err).To(HaveOccurred())
			Expect(created).To(BeFalse())

			var count int64
			Expect(db.Model(&userDatamodel.User{}).Count(&count).Error).To(Succeed())
			Expect(count).To(BeZero())

			configured := user.NewService(postgres.NewUserRepository(db), nil, logger, user.Options{
				BCryptCost:        bcrypt.MinCost,
				BootstrapPassword: "s3cret-bootstrap",
			})
			created, err = configured.EnsureBootstrapAdmin(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(created).To(BeTrue())
			Expect(logs.String()).To(ContainSubstring("bootstrap administrator created"))
			Expect(logs.String()).NotTo(ContainSubstring("s3cret-bootstrap"))
		})
	})

	Describe("List", func() {
		It("never serializes secrets", func() {
			users, err := service.List(ctx, manager)
			Expect(err).NotTo(HaveOccurred())
			Expect(users).To(HaveLen(2))

			data, err := json.Marshal(users)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).NotTo(ContainSubstring("password"))
			Expect(string(data)).NotTo(ContainSubstring("two_factor_secret"))
		})

		It("is forbidden for operators", func() {
			op := newUser(admin, "op", internal.RoleOperator)
			_, err := service.List(ctx, op.Principal())
			Expect(internal.IsType(err, internal.ErrorTypeForbidden)).To(BeTrue())

			self, err := service.Get(ctx, op.Principal(), op.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(self.Username).To(Equal("op"))
		})
	})

	Describe("Create", func() {
		It("lets only administrators grant the admin role", func() {
			_, err := service.Create(ctx, manager, user.CreateUserDTO{
				RealName: "X", Username: "x", Email: "x@example.com", Password: "secret123", Role: internal.RoleAdmin,
			})
			Expect(internal.IsType(err, internal.ErrorTypeForbidden)).To(BeTrue())

			u := newUser(manager, "operator1", internal.RoleOperator)
			Expect(u.Role).To(Equal(internal.RoleOperator))
		})

		It("names the duplicated field", func() {
			_, err := service.Create(ctx, admin, user.CreateUserDTO{
				RealName: "Other", Username: "manager", Email: "other@example.com", Password: "secret123", Role: internal.RoleOperator,
			})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeConflict))
			Expect(appErr.Field()).To(Equal("username"))

			_, err = service.Create(ctx, admin, user.CreateUserDTO{
				RealName: "Other", Username: "other", Email: "manager@example.com", Password: "secret123", Role: internal.RoleOperator,
			})
			appErr, _ = internal.IsAppError(err)
			Expect(appErr.Field()).To(Equal("email"))
		})

		It("validates the payload", func() {
			_, err := service.Create(ctx, admin, user.CreateUserDTO{Username: "a", Email: "nope", Password: "1", Role: "root"})
			Expect(internal.IsType(err, internal.ErrorTypeValidation)).To(BeTrue())
		})

		It("audits the creation", func() {
			var entry auditDatamodel.AuditLog
			Expect(db.Where("target_type = ? AND details LIKE ?", "USER", "created user manager%").First(&entry).Error).To(Succeed())
			Expect(entry.Username).To(Equal("admin"))
		})
	})

	Describe("Update", func() {
		It("keeps the password when none is given", func() {
			var before userDatamodel.User
			Expect(db.First(&before, manager.ID).Error).To(Succeed())

			u, err := service.Update(ctx, admin, manager.ID, user.UpdateUserDTO{RealName: str("Maria Manager"), Password: str("")})
			Expect(err).NotTo(HaveOccurred())
			Expect(u.RealName).To(Equal("Maria Manager"))

			var after userDatamodel.User
			Expect(db.First(&after, manager.ID).Error).To(Succeed())
			Expect(after.PasswordHash).To(Equal(before.PasswordHash))
		})

		It("stops user managers from touching administrators", func() {
			_, err := service.Update(ctx, manager, admin.ID, user.UpdateUserDTO{RealName: str("x")})
			Expect(internal.IsType(err, internal.ErrorTypeForbidden)).To(BeTrue())
		})

		It("refuses to demote the last administrator", func() {
			role := internal.RoleOperator
			_, err := service.Update(ctx, admin, admin.ID, user.UpdateUserDTO{Role: &role})
			Expect(internal.IsType(err, internal.ErrorTypeConflict)).To(BeTrue())
		})
	})

	Describe("UpdateProfile", func() {
		It("requires the current password to change it", func() {
			_, err := service.UpdateProfile(ctx, manager, user.UpdateProfileDTO{NewPassword: str("newsecret")})
			Expect(internal.IsType(err, internal.ErrorTypeValidation)).To(BeTrue())

			_, err = service.UpdateProfile(ctx, manager, user.UpdateProfileDTO{CurrentPassword: "wrong", NewPassword: str("newsecret")})
			Expect(internal.IsType(err, internal.ErrorTypeValidation)).To(BeTrue())

			_, err = service.UpdateProfile(ctx, manager, user.UpdateProfileDTO{CurrentPassword: "secret123", NewPassword: str("newsecret")})
			Expect(err).NotTo(HaveOccurred())

			var row userDatamodel.User
			Expect(db.First(&row, manager.ID).Error).To(Succeed())
			Expect(bcrypt.CompareHashAndPassword([]byte(row.PasswordHash), []byte("newsecret"))).To(Succeed())
		})
	})

	Describe("Delete", func() {
		It("refuses self deletion", func() {
			err := service.Delete(ctx, admin, admin.ID)
			Expect(internal.IsType(err, internal.ErrorTypeValidation)).To(BeTrue())
		})

		It("refuses to delete the last administrator", func() {
			second := newUser(admin, "admin2", internal.RoleAdmin)
			Expect(service.Delete(ctx, second.Principal(), admin.ID)).To(Succeed())

			ghost := &internal.Principal{ID: 999, Username: "ghost", Role: internal.RoleAdmin}
			err := service.Delete(ctx, ghost, second.ID)
			Expect(internal.IsType(err, internal.ErrorTypeConflict)).To(BeTrue())
		})

		It("is reserved to administrators", func() {
			err := service.Delete(ctx, manager, admin.ID)
			Expect(internal.IsType(err, internal.ErrorTypeForbidden)).To(BeTrue())
		})

		It("returns not found for unknown users", func() {
			err := service.Delete(ctx, admin, 12345)
			Expect(err).To(Equal(internal.ErrUserNotFound))
		})
	})
})
