package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"archivesys/docs"
	"archivesys/internal/auth"
	"archivesys/internal/config"
	"archivesys/internal/database"
	"archivesys/internal/database/migration"
	handlers "archivesys/internal/http/handler"
	"archivesys/internal/http/middleware"
	"archivesys/internal/i18n"
	"archivesys/internal/logging"
	"archivesys/internal/metrics"
	"archivesys/internal/otel"
	"archivesys/internal/report"
	"archivesys/internal/repository/postgres"
	"archivesys/internal/service"
	"archivesys/internal/storage"
)

// @title Archive Records API
// @version 1.0
// @description Documents, catalogs, audit history and reports of a records archive.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	log := logging.New(os.Stdout, cfg.Location())

	if err := run(cfg, log); err != nil {
		log.WithError(err).Fatal("server_stopped")
	}
}

func run(cfg *config.AppConfig, log *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	// PostgreSQL connection pool via database/sql
	db, err := database.NewPostgres(ctx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	objStore, err := storage.New(cfg.Storage)
	if err != nil {
		return fmt.Errorf("init object storage: %w", err)
	}

	labels, err := i18n.NewBundle(cfg.Locale)
	if err != nil {
		return fmt.Errorf("load labels: %w", err)
	}

	signer, err := auth.NewSigner(cfg.Auth.Secret, cfg.Auth.TokenTTL)
	if err != nil {
		return fmt.Errorf("init token signer: %w", err)
	}

	domainMetrics, err := metrics.New(prometheus.DefaultRegisterer)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}
	httpMetrics, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		return fmt.Errorf("register http metrics: %w", err)
	}

	// Repositories and services
	docRepo := postgres.NewDocumentPostgres(db)
	historyRepo := postgres.NewHistoryPostgres(db)
	categoryRepo := postgres.NewCategoryPostgres(db)
	locationRepo := postgres.NewLocationPostgres(db)

	docSvc := service.NewDocumentService(service.DocumentDeps{
		Documents:  docRepo,
		History:    historyRepo,
		Categories: categoryRepo,
		Locations:  locationRepo,
		Store:      objStore,
		Labels:     labels,
		Metrics:    domainMetrics,
		Log:        log,
	})
	catalogSvc := service.NewCatalogService(categoryRepo, locationRepo)
	reportSvc := service.NewReportService(service.ReportDeps{
		Reports:   postgres.NewReportPostgres(db),
		Documents: docRepo,
		History:   historyRepo,
		Store:     objStore,
		Builder:   report.NewBuilder(labels, cfg.Location()),
		Labels:    labels,
		FontPath:  cfg.Report.FontPath,
		Metrics:   domainMetrics,
		Log:       log,
	})
	userSvc := service.NewUserService(postgres.NewUserPostgres(db), signer, log)

	if err := userSvc.EnsureAdmin(ctx, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword, cfg.Auth.AdminEmail); err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    cfg.BodyLimitMB * 1024 * 1024,
	})

	// RequestID first so every later log line and error body carries it. The
	// metrics middleware wraps the logger, which has already rendered errors, so
	// it records the final status.
	app.Use(middleware.RequestID())
	app.Use(httpMetrics.Handler())
	app.Use(middleware.Logger(log))
	app.Use(recover.New())
	app.Use(otelfiber.Middleware())
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.CORSAllowOrigins}))
	app.Use(middleware.Lang(labels))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Swagger UI with dynamic host and scheme; APP_HOST is used when the request has no Host.
	docs.SwaggerInfo.Host = cfg.AppHost
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		if host := c.Get("Host"); host != "" {
			docs.SwaggerInfo.Host = host
		}
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	handlers.RegisterRoutes(app, handlers.Deps{
		DB:           db,
		Documents:    docSvc,
		Catalog:      catalogSvc,
		Reports:      reportSvc,
		Users:        userSvc,
		Labels:       labels,
		LoginLimiter: middleware.NewIPRateLimiter(cfg.Auth.LoginRate, cfg.Auth.LoginBurst),
	})

	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(sctx); err != nil {
			log.WithError(err).Error("shutdown_failed")
		}
	}()

	addr := ":" + cfg.Port
	log.WithFields(logrus.Fields{"addr": addr, "storage": cfg.Storage.Driver}).Info("server_starting")
	return app.Listen(addr)
}
