package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/inventory-management/internal"
	"github.com/frahmantamala/inventory-management/internal/approval"
	approvalPostgres "github.com/frahmantamala/inventory-management/internal/approval/postgres"
	"github.com/frahmantamala/inventory-management/internal/audit"
	auditPostgres "github.com/frahmantamala/inventory-management/internal/audit/postgres"
	"github.com/frahmantamala/inventory-management/internal/auth"
	authPostgres "github.com/frahmantamala/inventory-management/internal/auth/postgres"
	"github.com/frahmantamala/inventory-management/internal/core/events"
	"github.com/frahmantamala/inventory-management/internal/dashboard"
	dashboardPostgres "github.com/frahmantamala/inventory-management/internal/dashboard/postgres"
	"github.com/frahmantamala/inventory-management/internal/database"
	databasePostgres "github.com/frahmantamala/inventory-management/internal/database/postgres"
	"github.com/frahmantamala/inventory-management/internal/equipment"
	equipmentPostgres "github.com/frahmantamala/inventory-management/internal/equipment/postgres"
	"github.com/frahmantamala/inventory-management/internal/integration"
	"github.com/frahmantamala/inventory-management/internal/integration/absolute"
	"github.com/frahmantamala/inventory-management/internal/license"
	licensePostgres "github.com/frahmantamala/inventory-management/internal/license/postgres"
	"github.com/frahmantamala/inventory-management/internal/metrics"
	"github.com/frahmantamala/inventory-management/internal/setting"
	settingPostgres "github.com/frahmantamala/inventory-management/internal/setting/postgres"
	"github.com/frahmantamala/inventory-management/internal/store"
	"github.com/frahmantamala/inventory-management/internal/transport"
	"github.com/frahmantamala/inventory-management/internal/transport/rest"
	"github.com/frahmantamala/inventory-management/internal/transport/swagger"
	"github.com/frahmantamala/inventory-management/internal/user"
	userPostgres "github.com/frahmantamala/inventory-management/internal/user/postgres"
	"github.com/frahmantamala/inventory-management/pkg/logger"

	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *gorm.DB
	Reader *sqlx.DB
	Bus    *events.EventBus
	Logger *slog.Logger

	UserService        *user.Service
	AuthService        *auth.Service
	EquipmentService   *equipment.Service
	LicenseService     *license.Service
	ApprovalService    *approval.Service
	AuditService       *audit.Service
	DatabaseService    *database.Service
	SettingService     *setting.Service
	IntegrationService *integration.Service
	DashboardService   *dashboard.Service
}

func startHTTPServer() {
	cfg := mustLoadConfig()

	deps, err := initializeDependencies(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}
	defer deps.Close()

	if _, err := swagger.Load(context.Background()); err != nil {
		deps.Logger.Error("openapi document is invalid", "error", err)
		os.Exit(1)
	}

	if created, err := deps.UserService.EnsureBootstrapAdmin(context.Background()); err != nil {
		deps.Logger.Error("failed to seed bootstrap admin", "error", err)
		os.Exit(1)
	} else if created {
		deps.Logger.Warn("bootstrap admin created; change its password", "username", user.BootstrapUsername)
	}

	router := chi.NewRouter()
	setupRoutes(deps, router)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	scheduler := integration.NewScheduler(deps.IntegrationService, cfg.Integration.SyncInterval, cfg.Integration.SyncTimeout, deps.Logger)
	go func() {
		_ = scheduler.Run(ctx)
	}()

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		deps.Logger.Info("Received signal, shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
		if err := deps.Bus.Drain(shutdownCtx); err != nil {
			deps.Logger.Warn("event handlers still running at shutdown", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

func setupRoutes(deps *Dependencies, router *chi.Mux) {
	base := transport.NewBaseHandler(deps.Logger)

	handlers := rest.Handlers{
		Auth:        auth.NewHandler(base, deps.AuthService),
		User:        user.NewHandler(base, deps.UserService),
		Equipment:   equipment.NewHandler(base, deps.EquipmentService),
		License:     license.NewHandler(base, deps.LicenseService),
		Approval:    approval.NewHandler(base, deps.ApprovalService),
		Audit:       audit.NewHandler(base, deps.AuditService),
		Database:    database.NewHandler(base, deps.DatabaseService),
		Integration: integration.NewHandler(base, deps.IntegrationService),
		Setting:     setting.NewHandler(base, deps.SettingService),
		Dashboard:   dashboard.NewHandler(base, deps.DashboardService),
	}

	sqlDB, _ := deps.DB.DB()
	rest.RegisterAllRoutes(router, sqlDB, handlers, base, rest.Options{
		DatabaseDriver: deps.Config.Database.Driver,
		AllowedOrigins: deps.Config.Server.Origins(),
		MetricsEnabled: deps.Config.Observability.Metrics.Enabled,
		MetricsPath:    deps.Config.Observability.Metrics.Path,
	})
}

// initializeDependencies opens the database and builds every service. The
// integration scheduler and the HTTP server share the result.
func initializeDependencies(cfg *internal.Config) (*Dependencies, error) {
	lg := logger.LoggerWrapper()

	db, err := store.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if cfg.Database.Driver == internal.DatabaseDriverSQLite {
		// sqlite has no goose migrations; the models define the schema.
		if err := store.AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("failed to migrate sqlite schema: %w", err)
		}
	}

	reader, err := store.NewReader(db)
	if err != nil {
		return nil, err
	}

	bus := events.NewEventBus(lg)
	subscribeEventLog(bus, lg)
	if cfg.Observability.Metrics.Enabled {
		metrics.RegisterEventHandlers(bus)
	}

	userService := user.NewService(userPostgres.NewUserRepository(db), bus, lg, user.Options{
		BCryptCost:        cfg.Security.BCryptCost,
		BootstrapPassword: cfg.Security.BootstrapAdminPassword,
	})

	tokens := auth.NewJWTTokenGenerator(
		cfg.Security.JWTSecret,
		cfg.Security.AccessTokenDuration,
		cfg.Security.RefreshTokenDuration,
		cfg.Security.ChallengeTokenDuration,
	)
	authService := auth.NewService(authPostgres.NewRepository(db), tokens, bus, lg, auth.Options{
		BCryptCost: cfg.Security.BCryptCost,
		TOTPIssuer: cfg.Security.TOTPIssuer,
	})

	equipmentService := equipment.NewService(equipmentPostgres.NewEquipmentRepository(db), bus, lg)
	settingRepo := settingPostgres.NewSettingRepository(db)

	var provider integration.Provider
	switch cfg.Integration.Provider {
	case "absolute":
		provider = absolute.NewStubProvider(lg)
	default:
		return nil, fmt.Errorf("unknown integration provider %q", cfg.Integration.Provider)
	}

	return &Dependencies{
		Config: cfg,
		DB:     db,
		Reader: reader,
		Bus:    bus,
		Logger: lg,

		UserService:        userService,
		AuthService:        authService,
		EquipmentService:   equipmentService,
		LicenseService:     license.NewService(licensePostgres.NewLicenseRepository(db, reader), bus, lg),
		ApprovalService:    approval.NewService(approvalPostgres.NewApprovalRepository(db, reader), bus, lg),
		AuditService:       audit.NewService(auditPostgres.NewAuditRepository(db), lg),
		DatabaseService:    database.NewService(databasePostgres.NewDatabaseRepository(db, reader), userService, lg),
		SettingService:     setting.NewService(settingRepo, lg),
		IntegrationService: integration.NewService(provider, settingRepo, equipmentService, bus, lg),
		DashboardService:   dashboard.NewService(dashboardPostgres.NewDashboardRepository(reader), lg),
	}, nil
}

func (d *Dependencies) Close() {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		d.Logger.Error("Database close error", "error", err)
	}
}
