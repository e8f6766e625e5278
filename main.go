package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/basit/sharelink/auth"
	"github.com/basit/sharelink/auth/Oauth"
	"github.com/basit/sharelink/auth/middleware"
	"github.com/basit/sharelink/config"
	"github.com/basit/sharelink/handlers"
	"github.com/basit/sharelink/initializers"
	"github.com/basit/sharelink/repository"
	"github.com/basit/sharelink/routes"
	"github.com/basit/sharelink/service"
	"github.com/basit/sharelink/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if err := initializers.InitLogger(cfg.LogLevel, cfg.LogProduction, cfg.LogFile); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer initializers.SyncLogger()
	logger := initializers.Log

	if cfg.LogProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := initializers.ConnectToDatabase(cfg.DatabaseURL); err != nil {
		logger.Fatal("Database initialization failed", zap.Error(err))
	}
	defer initializers.CloseDatabase()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := initializers.InitAWS(ctx, cfg); err != nil {
		logger.Fatal("Object storage initialization failed", zap.Error(err))
	}
	gateway := storage.NewS3Gateway(initializers.S3Client, cfg.BucketName)

	files := repository.NewFileRepository(initializers.DB)
	shares := repository.NewShareRepository(initializers.DB)
	users := repository.NewUserRepository(initializers.DB)
	activityRepo := repository.NewActivityRepository(initializers.DB)

	activity := service.NewActivityLogger(activityRepo, files, logger, service.SystemClock)
	resolver := service.NewResolver(files, shares, gateway, activity, cfg.SignedURLTTL, service.SystemClock)
	sharing := service.NewShareService(files, shares, users, activity, service.SystemClock)
	settings := service.NewLinkSettings(files, activity)
	library := service.NewFileLibrary(files, gateway, cfg.MaxUploadBytes, logger, service.SystemClock)

	tokens := auth.NewTokens(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	secureCookies := strings.HasPrefix(cfg.BaseURL, "https://")

	var (
		oauth *Oauth.Handler
		store cookie.Store
	)
	if cfg.OAuthEnabled() {
		store = Oauth.InitStore(cfg)
		oauth = Oauth.NewHandler(users, tokens, cfg.BaseURL, logger)
	} else {
		logger.Info("No OAuth provider configured, only password login is available")
	}

	router := routes.NewRouter(routes.Deps{
		Files:          handlers.NewFileHandler(library, resolver, sharing, settings, activity, cfg.BaseURL, logger),
		Public:         handlers.NewPublicHandler(resolver, cfg.BaseURL, logger),
		Auth:           handlers.NewAuthHandler(users, tokens, secureCookies, logger),
		OAuth:          oauth,
		SessionStore:   store,
		Tokens:         tokens,
		RateLimiter:    middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		CORSOrigins:    cfg.CORSOrigins,
		TrustedProxies: cfg.TrustedProxies,
		Log:            logger,
	})
	// Multipart bodies beyond this spill to temp files.
	router.MaxMultipartMemory = 32 << 20

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
}
