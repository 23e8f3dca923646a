package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/aetherhq/aether-engine/pkg/auth"
	"github.com/aetherhq/aether-engine/pkg/config"
	"github.com/aetherhq/aether-engine/pkg/database"
	"github.com/aetherhq/aether-engine/pkg/handlers"
	"github.com/aetherhq/aether-engine/pkg/logging"
	"github.com/aetherhq/aether-engine/pkg/middleware"
	"github.com/aetherhq/aether-engine/pkg/repositories"
	"github.com/aetherhq/aether-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("base_url", cfg.BaseURL),
		zap.Bool("auth_verification", cfg.Auth.EnableVerification),
		zap.String("database_host", cfg.Database.Host),
		zap.String("database_name", cfg.Database.Database))

	ctx := context.Background()

	// Migrations run over database/sql; the app itself uses a pgx pool.
	migrationDB, err := sql.Open("pgx", cfg.Database.ConnectionString())
	if err != nil {
		logger.Fatal("Failed to open migration connection", zap.Error(err))
	}
	if err := database.RunMigrations(migrationDB, cfg.MigrationsPath, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	if err := migrationDB.Close(); err != nil {
		logger.Warn("Failed to close migration connection", zap.Error(err))
	}

	db, err := database.NewConnection(ctx, &database.Config{
		URL:             cfg.Database.ConnectionString(),
		MaxConnections:  cfg.Database.MaxConnections,
		MaxConnLifetime: cfg.Database.ConnMaxLifetime,
		MaxConnIdleTime: cfg.Database.ConnMaxIdleTime,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	jwksClient, err := auth.NewJWKSClient(&auth.JWKSConfig{
		EnableVerification: cfg.Auth.EnableVerification,
		JWKSEndpoints:      cfg.Auth.JWKSEndpoints,
	})
	if err != nil {
		logger.Fatal("Failed to create JWKS client", zap.Error(err))
	}
	authService := auth.NewAuthService(jwksClient, logger)
	authMiddleware := auth.NewMiddleware(authService, logger)
	tenantMiddleware := handlers.TenantMiddleware(database.WithTenantContext(db, logger))

	// Repositories
	uploadRepo := repositories.NewUploadRepository()
	metricRepo := repositories.NewMetricRowRepository()
	entityTypeRepo := repositories.NewEntityTypeRepository()
	entityRepo := repositories.NewEntityRepository()
	relationshipRepo := repositories.NewRelationshipRepository()

	// Services
	projector := services.NewOntologyProjector(entityTypeRepo, entityRepo, relationshipRepo, logger)
	importService := services.NewImportService(uploadRepo, metricRepo, projector, logger)
	ontologyService := services.NewOntologyService(entityTypeRepo, entityRepo, relationshipRepo, logger)
	gapService := services.NewGapService(metricRepo, logger)

	mux := http.NewServeMux()

	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewUploadHandler(importService, logger).RegisterRoutes(mux, authMiddleware, tenantMiddleware)
	handlers.NewGapHandler(gapService, logger).RegisterRoutes(mux, authMiddleware, tenantMiddleware)
	handlers.NewEntityTypeHandler(ontologyService, logger).RegisterRoutes(mux, authMiddleware, tenantMiddleware)
	handlers.NewEntityHandler(ontologyService, logger).RegisterRoutes(mux, authMiddleware, tenantMiddleware)
	handlers.NewRelationshipHandler(ontologyService, logger).RegisterRoutes(mux, authMiddleware, tenantMiddleware)

	handler := middleware.RequestLogger(logger)(mux)

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("Starting aether-engine",
		zap.String("addr", addr),
		zap.String("version", cfg.Version))
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}
