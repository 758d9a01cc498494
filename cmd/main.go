package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/e-learning-backend/config"
	"github.com/vnkhanh/e-learning-backend/logger"
	"github.com/vnkhanh/e-learning-backend/middleware"
	"github.com/vnkhanh/e-learning-backend/repositories"
	"github.com/vnkhanh/e-learning-backend/routes"
	"github.com/vnkhanh/e-learning-backend/services"
	"github.com/vnkhanh/e-learning-backend/storage"
	"github.com/vnkhanh/e-learning-backend/utils"
	"github.com/vnkhanh/e-learning-backend/ws"
)

func main() {
	cfg := config.Load()
	log := logger.Init(cfg.IsDevelopment(), cfg.SentryDSN)
	defer sentry.Flush(2 * time.Second)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := config.OpenDB(cfg)
	if err != nil {
		log.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	notifier, err := services.NewNotifier(services.MailConfig{
		Driver:       cfg.MailDriver,
		SMTPHost:     cfg.SMTPHost,
		SMTPPort:     cfg.SMTPPort,
		SMTPEmail:    cfg.SMTPEmail,
		SMTPPassword: cfg.SMTPPassword,
		ResendAPIKey: cfg.ResendAPIKey,
		From:         cfg.EmailFrom,
	}, log)
	if err != nil {
		log.Error("mail setup failed", "error", err)
		os.Exit(1)
	}

	store, err := storage.New(ctx, storage.Config{
		Driver:         cfg.StorageDriver,
		SupabaseURL:    cfg.SupabaseURL,
		SupabaseKey:    cfg.SupabaseKey,
		SupabaseBucket: cfg.SupabaseBucket,
		S3Region:       cfg.S3Region,
		S3Bucket:       cfg.S3Bucket,
		S3AccessKey:    cfg.S3AccessKey,
		S3SecretKey:    cfg.S3SecretKey,
		S3Endpoint:     cfg.S3Endpoint,
	})
	if err != nil {
		log.Error("storage setup failed", "error", err)
		os.Exit(1)
	}

	var google services.GoogleVerifier
	if cfg.GoogleClientID != "" {
		google = services.NewIDTokenVerifier(cfg.GoogleClientID)
	}

	users := repositories.NewUserRepository(db)
	sessions := services.NewSessionService(services.SessionConfig{
		Secret: []byte(cfg.JWTSecret),
		TTL:    cfg.JWTExpiry,
		Issuer: "e-learning",
	})
	otp := services.NewOTPService(users, notifier, cfg.OTPTTL, log)
	auth := services.NewAuthService(users, services.NewPasswordHasher(), otp, sessions, google,
		services.AuthConfig{AllowAdminSignup: cfg.AllowAdminSignup}, log)

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	limiter.StartCleanup(5*time.Minute, ctx.Done())
	utils.StartCodeSweeper(ctx, users, cfg.OTPRetention, time.Hour)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	r, err := routes.NewEngine(cfg.TrustedProxies)
	if err != nil {
		log.Error("router setup failed", "error", err)
		os.Exit(1)
	}
	r.Use(gin.Recovery(), middleware.RequestLogger(log))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	routes.SetupRouter(r, routes.Deps{
		DB:       db,
		Auth:     auth,
		Sessions: sessions,
		Storage:  store,
		Limiter:  limiter,
		Upgrader: ws.NewUpgrader(cfg.CORSOrigins),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server running", "port", cfg.Port, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}
