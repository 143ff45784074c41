package rest

import (
	"database/sql"
	"net/http"

	"github.com/frahmantamala/inventory-management/internal/approval"
	"github.com/frahmantamala/inventory-management/internal/audit"
	"github.com/frahmantamala/inventory-management/internal/auth"
	"github.com/frahmantamala/inventory-management/internal/dashboard"
	"github.com/frahmantamala/inventory-management/internal/database"
	"github.com/frahmantamala/inventory-management/internal/equipment"
	"github.com/frahmantamala/inventory-management/internal/integration"
	"github.com/frahmantamala/inventory-management/internal/license"
	"github.com/frahmantamala/inventory-management/internal/policy"
	"github.com/frahmantamala/inventory-management/internal/setting"
	"github.com/frahmantamala/inventory-management/internal/transport"
	"github.com/frahmantamala/inventory-management/internal/transport/middleware"
	"github.com/frahmantamala/inventory-management/internal/transport/swagger"
	"github.com/frahmantamala/inventory-management/internal/user"
	"github.com/go-chi/chi"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handlers struct {
	Auth        *auth.Handler
	User        *user.Handler
	Equipment   *equipment.Handler
	License     *license.Handler
	Approval    *approval.Handler
	Audit       *audit.Handler
	Database    *database.Handler
	Integration *integration.Handler
	Setting     *setting.Handler
	Dashboard   *dashboard.Handler
}

type Options struct {
	DatabaseDriver string
	AllowedOrigins []string
	MetricsEnabled bool
	MetricsPath    string
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, h Handlers, base *transport.BaseHandler, opts Options) {
	healthHandler := NewHealthHandler(db, opts.DatabaseDriver)
	rbac := auth.NewRBACAuthorization(base)
	can := rbac.Require

	// Apply global middleware
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.TraceHeader},
		ExposedHeaders:   []string{middleware.TraceHeader, "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(base))
	router.Use(middleware.LoggingMiddleware)
	if opts.MetricsEnabled {
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		router.Use(middleware.Metrics)
		router.Handle(path, promhttp.Handler())
	}

	// Serve the OpenAPI document at root (outside API prefix)
	router.Get("/openapi.yml", swagger.SpecHandler)
	// Swagger UI route at root
	router.Handle("/swagger/*", swagger.Handler())

	// Mount API under /api/v1 to match the OpenAPI server url
	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Route("/auth", func(ar chi.Router) {
			ar.Post("/login", h.Auth.Login)
			ar.Post("/2fa/verify", h.Auth.VerifyTwoFactor)
			ar.Post("/refresh", h.Auth.RefreshToken)

			ar.Group(func(sr chi.Router) {
				sr.Use(h.Auth.AuthMiddleware)
				sr.Post("/logout", h.Auth.Logout)
				sr.Get("/me", h.User.GetCurrentUser)
				sr.Post("/2fa/generate", h.Auth.GenerateTwoFactor)
				sr.Post("/2fa/enable", h.Auth.EnableTwoFactor)
				sr.Post("/2fa/disable", h.Auth.DisableTwoFactor)
			})
		})

		// Everything below requires a verified access token.
		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			pr.Route("/equipment", func(er chi.Router) {
				er.With(can(policy.ActionRead, policy.ResourceEquipment)).Get("/", h.Equipment.List)
				er.With(can(policy.ActionCreate, policy.ResourceEquipment)).Post("/", h.Equipment.Create)
				er.With(can(policy.ActionImport, policy.ResourceEquipment)).Post("/import", h.Equipment.Import)
				er.With(can(policy.ActionRead, policy.ResourceEquipment)).Get("/{id}", h.Equipment.Get)
				er.With(can(policy.ActionRead, policy.ResourceEquipment)).Get("/{id}/history", h.Equipment.History)
				er.With(can(policy.ActionUpdate, policy.ResourceEquipment)).Put("/{id}", h.Equipment.Update)
				er.With(can(policy.ActionDelete, policy.ResourceEquipment)).Delete("/{id}", h.Equipment.Delete)
			})

			pr.Route("/licenses", func(lr chi.Router) {
				lr.With(can(policy.ActionRead, policy.ResourceLicense)).Get("/", h.License.List)
				lr.With(can(policy.ActionCreate, policy.ResourceLicense)).Post("/", h.License.Create)
				lr.With(can(policy.ActionImport, policy.ResourceLicense)).Post("/import", h.License.Import)
				lr.With(can(policy.ActionRename, policy.ResourceLicense)).Post("/rename-product", h.License.RenameProduct)
				lr.With(can(policy.ActionRead, policy.ResourceLicenseTotal)).Get("/stats", h.License.Stats)
				lr.With(can(policy.ActionUpdate, policy.ResourceLicenseTotal)).Put("/totals/{product}", h.License.SetTotal)
				lr.With(can(policy.ActionDelete, policy.ResourceLicenseTotal)).Delete("/totals/{product}", h.License.DeleteTotal)
				lr.With(can(policy.ActionRead, policy.ResourceLicense)).Get("/{id}", h.License.Get)
				lr.With(can(policy.ActionUpdate, policy.ResourceLicense)).Put("/{id}", h.License.Update)
				lr.With(can(policy.ActionDelete, policy.ResourceLicense)).Delete("/{id}", h.License.Delete)
			})

			pr.Route("/approvals", func(apr chi.Router) {
				apr.With(can(policy.ActionRead, policy.ResourceApproval)).Get("/", h.Approval.List)
				apr.With(can(policy.ActionApprove, policy.ResourceApproval)).Post("/approve", h.Approval.Approve)
				apr.With(can(policy.ActionReject, policy.ResourceApproval)).Post("/reject", h.Approval.Reject)
			})

			// Self-service and per-user reads are decided by the user service,
			// which lets everyone see and edit their own account.
			pr.Route("/users", func(ur chi.Router) {
				ur.Get("/me", h.User.GetCurrentUser)
				ur.Put("/me", h.User.UpdateProfile)
				ur.With(can(policy.ActionRead, policy.ResourceUser)).Get("/", h.User.List)
				ur.With(can(policy.ActionCreate, policy.ResourceUser)).Post("/", h.User.Create)
				ur.Get("/{id}", h.User.Get)
				ur.With(can(policy.ActionUpdate, policy.ResourceUser)).Put("/{id}", h.User.Update)
				ur.With(can(policy.ActionDelete, policy.ResourceUser)).Delete("/{id}", h.User.Delete)
				ur.With(can(policy.ActionDisable2FA, policy.ResourceUser)).Post("/{id}/disable-2fa", h.Auth.DisableUserTwoFactor)
			})

			pr.With(can(policy.ActionRead, policy.ResourceAuditLog)).Get("/audit-log", h.Audit.List)

			pr.Route("/database", func(dr chi.Router) {
				dr.With(can(policy.ActionRead, policy.ResourceDatabase)).Get("/status", h.Database.Status)
				dr.With(can(policy.ActionBackup, policy.ResourceDatabase)).Post("/backup", h.Database.Backup)
				dr.With(can(policy.ActionRestore, policy.ResourceDatabase)).Post("/restore", h.Database.Restore)
				dr.With(can(policy.ActionReset, policy.ResourceDatabase)).Post("/reset", h.Database.Reset)
			})

			pr.Route("/integrations/absolute", func(ir chi.Router) {
				ir.With(can(policy.ActionRead, policy.ResourceIntegration)).Get("/config", h.Integration.GetConfig)
				ir.With(can(policy.ActionUpdate, policy.ResourceIntegration)).Post("/config", h.Integration.SaveConfig)
				ir.With(can(policy.ActionTest, policy.ResourceIntegration)).Post("/test", h.Integration.Test)
				ir.With(can(policy.ActionRead, policy.ResourceIntegration)).Get("/inventory", h.Integration.Inventory)
				ir.With(can(policy.ActionSync, policy.ResourceIntegration)).Post("/sync", h.Integration.Sync)
			})

			pr.With(can(policy.ActionRead, policy.ResourceSettings)).Get("/settings", h.Setting.Get)
			pr.With(can(policy.ActionUpdate, policy.ResourceSettings)).Put("/settings", h.Setting.Update)

			pr.With(can(policy.ActionRead, policy.ResourceDashboard)).Get("/dashboard", h.Dashboard.Summary)
		})
	})
}
