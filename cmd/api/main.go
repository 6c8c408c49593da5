package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/brgyhealth/bhc_api/internal/cache"
	"github.com/brgyhealth/bhc_api/internal/config"
	"github.com/brgyhealth/bhc_api/internal/database"
	"github.com/brgyhealth/bhc_api/internal/handler"
	"github.com/brgyhealth/bhc_api/internal/middleware"
	"github.com/brgyhealth/bhc_api/internal/repository"
	"github.com/brgyhealth/bhc_api/internal/service"
	"github.com/brgyhealth/bhc_api/internal/utils"
	"github.com/brgyhealth/bhc_api/internal/worker"
	"github.com/brgyhealth/bhc_api/pkg/portal"
	"github.com/brgyhealth/bhc_api/pkg/psgc"
)

// main is the application entrypoint for the barangay health center
// registration API.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Msg("starting bhc api")

	utils.SetJWTSecret(cfg.JWTSecret)

	// 3. Connect to Redis
	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.Error().Err(err).Msg("redis connection failed")
		fmt.Fprintf(os.Stderr, "redis connection failed: %v\n", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected successfully")

	geoCache := cache.NewGeoCache(redisClient, cfg.Geo.CacheTTL)

	// 4. Initialize upstream clients
	portalClient := portal.NewClient(cfg.Portal.BaseURL)
	psgcClient := psgc.NewClient(cfg.Geo.BaseURL)

	// 5. Select the geo directory: remote PSGC service or the local mirror.
	// The mirror needs a database connection, migrations, and a sync worker.
	var directory service.GeoDirectory = service.NewRemoteDirectory(psgcClient)
	var geoSyncSvc *service.GeoSyncService

	if cfg.Geo.Source == "mirror" {
		db, err := database.Connect(&cfg.DB)
		if err != nil {
			log.Error().Err(err).Msg("database connection failed")
			fmt.Fprintf(os.Stderr, "database connection failed: %v\n", err)
			os.Exit(1)
		}
		defer db.Close()

		if err := runMigrations(db.DB); err != nil {
			log.Error().Err(err).Msg("migration failed")
			fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
			os.Exit(1)
		}
		log.Info().Msg("migrations completed successfully")

		psgcRepo := repository.NewPSGCRepository(db)
		directory = service.NewMirrorDirectory(psgcRepo)
		geoSyncSvc = service.NewGeoSyncService(psgcClient, psgcRepo)
	}
	cachedDirectory := service.NewCachedDirectory(directory, geoCache)

	// 6. Initialize services
	sessionStore := service.NewSessionStore()
	imageSvc := service.NewImageService()
	scanSvc := service.NewScanService(portalClient)
	resolverSvc := service.NewResolverService(cachedDirectory)
	registrationSvc := service.NewRegistrationService(sessionStore, imageSvc, scanSvc, resolverSvc, portalClient)
	authSvc := service.NewAuthService(portalClient)

	// 7. Initialize handlers
	handlers := &Handlers{
		Health:       handler.NewHealthHandler(sessionStore),
		Auth:         handler.NewAuthHandler(authSvc),
		Registration: handler.NewRegistrationHandler(registrationSvc),
		Address:      handler.NewAddressHandler(resolverSvc),
	}

	// 8. Initialize middleware
	jwtMw := middleware.NewJWTMiddleware()

	// 9. Setup router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.LoggingMiddleware())
	setupRoutes(router, handlers, jwtMw)

	// 10. Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 11. Start workers
	go worker.NewSessionCleanupWorker(sessionStore, cfg.Worker.SessionTTL, cfg.Worker.SessionSweepInterval).Start(ctx)
	if geoSyncSvc != nil {
		go worker.NewGeoSyncWorker(geoSyncSvc, cfg.Worker.GeoSyncInterval).Start(ctx)
	}

	// 12. Start HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 13. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// 14. Cancel context to stop workers
	cancel()

	// 15. Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health       *handler.HealthHandler
	Auth         *handler.AuthHandler
	Registration *handler.RegistrationHandler
	Address      *handler.AddressHandler
}

// setupRoutes registers all routes.
func setupRoutes(router *gin.Engine, handlers *Handlers, jwtMiddleware *middleware.JWTMiddleware) {
	router.GET("/v1/health", handlers.Health.GetHealth)

	// Auth
	auth := router.Group("/v1/auth")
	{
		auth.POST("/login", handlers.Auth.Login)
		auth.POST("/change-password", handlers.Auth.ChangePassword)
	}

	// Registration sessions
	router.GET("/v1/document-types", handlers.Registration.GetDocumentTypes)
	reg := router.Group("/v1/registrations")
	{
		reg.POST("", handlers.Registration.CreateSession)
		reg.GET("/:id", handlers.Registration.GetSession)
		reg.PUT("/:id/document-type", handlers.Registration.SetDocumentType)
		reg.POST("/:id/images/:side", handlers.Registration.AttachImage)
		reg.POST("/:id/scan", handlers.Registration.Scan)
		reg.POST("/:id/skip-scan", handlers.Registration.SkipScan)
		reg.PATCH("/:id/fields", handlers.Registration.UpdateFields)
		reg.PUT("/:id/address/:level", handlers.Registration.SelectLevel)
		reg.POST("/:id/submit", handlers.Registration.Submit)
	}

	// Address reference
	address := router.Group("/v1/address")
	{
		address.GET("/regions", handlers.Address.GetRegions)
		address.GET("/regions/:code/provinces", handlers.Address.GetProvinces)
		address.GET("/regions/:code/cities", handlers.Address.GetCitiesByRegion)
		address.GET("/provinces/:code/cities", handlers.Address.GetCitiesByProvince)
		address.GET("/cities/:code/barangays", handlers.Address.GetBarangays)
	}

	// Authenticated routes (profile of the signed-in account)
	me := router.Group("/v1/me")
	me.Use(jwtMiddleware.Handle())
	{
		me.GET("", func(c *gin.Context) {
			utils.Success(c, http.StatusOK, "Profile retrieved", gin.H{
				"user_id": c.GetInt("user_id"),
				"email":   c.GetString("email"),
				"role":    c.GetString("role"),
				"portal":  c.GetString("portal"),
			})
		})
	}
}

// runMigrations runs database migrations using golang-migrate.
func runMigrations(db *sql.DB) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres", driver)
	if err != nil {
		return fmt.Errorf("could not create migration instance: %w", err)
	}

	// Run migrations
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
