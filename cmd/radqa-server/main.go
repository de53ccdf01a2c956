package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/sasqart/radqa/internal/config"
	"github.com/sasqart/radqa/internal/domain/catalog"
	"github.com/sasqart/radqa/internal/domain/equipment"
	"github.com/sasqart/radqa/internal/domain/export"
	"github.com/sasqart/radqa/internal/domain/instrument"
	"github.com/sasqart/radqa/internal/domain/org"
	"github.com/sasqart/radqa/internal/domain/report"
	"github.com/sasqart/radqa/internal/domain/source"
	"github.com/sasqart/radqa/internal/domain/trend"
	"github.com/sasqart/radqa/internal/platform/auth"
	"github.com/sasqart/radqa/internal/platform/db"
	"github.com/sasqart/radqa/internal/platform/middleware"
	"github.com/sasqart/radqa/internal/platform/tenancy"
	"github.com/sasqart/radqa/pkg/qacalc"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "radqa-server",
		Short: "Radiation oncology QA tracking API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(tenantCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the QA API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, pool, err := loadWithPool()
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, cfg.MigrationsDir)
			count, err := migrator.Up(context.Background())
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, pool, err := loadWithPool()
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, cfg.MigrationsDir)
			statuses, err := migrator.Status(context.Background())
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	cmd.AddCommand(statusCmd)

	return cmd
}

func tenantCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tenant",
		Short: "Manage organizations",
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new organization",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			ceiling, _ := cmd.Flags().GetInt("max-equipment")
			if name == "" {
				return fmt.Errorf("--name is required")
			}

			cfg, pool, err := loadWithPool()
			if err != nil {
				return err
			}
			defer pool.Close()

			orgSvc := org.NewService(org.NewRepoPG(pool), org.NewAuditRepoPG(pool),
				cfg.DefaultOrg, cfg.MaxEquipmentDefault)
			o, err := orgSvc.CreateOrganization(context.Background(), name, ceiling)
			if err != nil {
				return err
			}
			fmt.Printf("Created organization %s (%s)\n", o.Name, o.ID)
			return nil
		},
	}
	createCmd.Flags().String("name", "", "Organization name")
	createCmd.Flags().Int("max-equipment", 0, "Equipment ceiling (0 = default)")
	cmd.AddCommand(createCmd)

	return cmd
}

func loadWithPool() (*config.Config, *pgxpool.Pool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	pool, err := db.NewPool(context.Background(), cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, nil, err
	}
	return cfg, pool, nil
}

func runServer() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(logger)

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID", "X-Org-ID"},
	}))

	e.GET("/health", db.HealthHandler(pool))

	// Services
	orgRepo := org.NewRepoPG(pool)
	orgSvc := org.NewService(orgRepo, org.NewAuditRepoPG(pool), cfg.DefaultOrg, cfg.MaxEquipmentDefault)

	equipmentSvc := equipment.NewService(equipment.NewRepoPG(pool),
		equipment.NewBaselineRepoPG(pool), orgRepo, logger)

	catalogSvc := catalog.NewService(catalog.NewRepoPG(pool))
	instrumentSvc := instrument.NewService(instrument.NewRepoPG(pool))
	sourceSvc := source.NewService(source.NewRepoPG(pool))
	reportSvc := report.NewService(report.NewRepoPG(pool), equipmentSvc, catalogSvc,
		qacalc.DefaultDecayBands, logger)
	trendSvc := trend.NewService(trend.NewRepoPG(pool), equipmentSvc, catalogSvc)
	exportSvc := export.NewService(orgSvc, equipmentSvc, instrumentSvc, sourceSvc, catalogSvc, reportSvc)

	// Every QA endpoint lives under /api: authenticated, organization-scoped,
	// and audited. /health stays open for probes.
	api := e.Group("/api")
	switch cfg.ResolvedAuthMode() {
	case "development":
		api.Use(auth.DevAuthMiddleware())
	default:
		api.Use(auth.JWTMiddleware(auth.JWTConfig{
			Issuer:   cfg.AuthIssuer,
			Audience: cfg.AuthAudience,
			JWKSURL:  cfg.AuthJWKSURL,
		}))
	}
	api.Use(tenancy.Middleware(orgSvc))
	api.Use(middleware.Audit(logger, orgSvc))

	org.NewHandler(orgSvc).RegisterRoutes(api)
	equipment.NewHandler(equipmentSvc).RegisterRoutes(api)
	catalog.NewHandler(catalogSvc).RegisterRoutes(api)
	instrument.NewHandler(instrumentSvc).RegisterRoutes(api)
	source.NewHandler(sourceSvc).RegisterRoutes(api)
	report.NewHandler(reportSvc).RegisterRoutes(api)
	trend.NewHandler(trendSvc).RegisterRoutes(api)
	export.NewHandler(exportSvc).RegisterRoutes(api)

	// Start server with graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// errorHandler renders every failure as {"error": message} so API clients see
// one uniform failure shape.
func errorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		msg := "internal server error"
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if m, ok := he.Message.(string); ok {
				msg = m
			} else {
				msg = fmt.Sprintf("%v", he.Message)
			}
		}

		if code >= http.StatusInternalServerError {
			logger.Error().Err(err).Str("path", c.Request().URL.Path).Msg("request failed")
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, map[string]string{"error": msg})
	}
}
