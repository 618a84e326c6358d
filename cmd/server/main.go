package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"syncchat.backend/internal/config"
	"syncchat.backend/internal/infrastructure/mail"
	"syncchat.backend/internal/infrastructure/migrations"
	"syncchat.backend/internal/infrastructure/repositories"
	"syncchat.backend/internal/infrastructure/storage"
	"syncchat.backend/internal/interfaces/http/handlers"
	"syncchat.backend/internal/interfaces/http/middleware"
	"syncchat.backend/internal/usecases"
	"syncchat.backend/pkg/jwt"
	"syncchat.backend/pkg/logger"
	"syncchat.backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openDB     = func(dsn string) (*gorm.DB, error) {
		return gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			TranslateError: true,
		})
	}
	getStdDB   = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
	migrateDB  = migrations.Up
	newMailer  = mail.New
	newStorage = storage.New
	runServer  = func(srv *http.Server) error { return srv.ListenAndServe() }
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	initLog(cfg.Server.Env)
	defer logger.Sync()
	ctx := context.Background()
	logger.Info(ctx, "Logger initialized", zap.String("env", cfg.Server.Env))

	if err := initRedis(cfg.Redis.URL, cfg.Redis.PASSWORD); err != nil {
		logger.Error(ctx, "Failed to initialize Redis", zap.Error(err))
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	defer redis.Close()
	logger.Info(ctx, "Redis initialized")

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := openDB(cfg.Database.URL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()

	if cfg.Database.AutoMigrate {
		if err := migrateDB(ctx, sqlDB); err != nil {
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
		logger.Info(ctx, "Database migrations applied")
	}

	jwtService, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry)
	if err != nil {
		return err
	}

	mailer, err := newMailer(cfg.Mail)
	if err != nil {
		return fmt.Errorf("failed to initialize mailer: %w", err)
	}
	dispatcher := mail.NewDispatcher(mailer, cfg.Mail.SendTimeout)

	fileStorage, err := newStorage(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	userRepo := repositories.NewUserRepository(db)
	verification := usecases.NewVerificationManager(userRepo, dispatcher, cfg.Verification.CodeTTL)
	authUsecase := usecases.NewAuthUsecase(
		userRepo,
		verification,
		jwtService,
		fileStorage,
		redis.NewThrottle("syncchat"),
		cfg.Verification.ResendCooldown,
	)

	r := newRouter(cfg, routeDeps{
		authHandler:    handlers.NewAuthHandler(authUsecase, cfg.Cookie),
		profileHandler: handlers.NewProfileHandler(authUsecase, cfg.Storage.MaxUploadBytes),
		authMiddleware: middleware.AuthMiddleware(jwtService, cfg.Cookie.Name),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-sigCtx.Done()
		logger.Info(ctx, "Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error(ctx, "Server shutdown failed", zap.Error(err))
		}
	}()

	logger.Info(ctx, "SyncChat backend starting", zap.String("port", cfg.Server.Port))
	serveErr := runServer(srv)

	// let queued verification emails go out before exiting
	drainCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := dispatcher.Wait(drainCtx); err != nil {
		logger.Warn(ctx, "Pending emails dropped on shutdown", zap.Error(err))
	}

	if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", serveErr)
	}
	return nil
}
