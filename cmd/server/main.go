package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/studentversedubai-rgb/website-backend/config"
	"github.com/studentversedubai-rgb/website-backend/internal/email"
	"github.com/studentversedubai-rgb/website-backend/internal/health"
	"github.com/studentversedubai-rgb/website-backend/internal/infrastructure/postgres"
	"github.com/studentversedubai-rgb/website-backend/internal/infrastructure/redisstore"
	ctxlog "github.com/studentversedubai-rgb/website-backend/internal/log"
	"github.com/studentversedubai-rgb/website-backend/internal/metrics"
	"github.com/studentversedubai-rgb/website-backend/internal/otp"
	"github.com/studentversedubai-rgb/website-backend/internal/ratelimit"
	"github.com/studentversedubai-rgb/website-backend/internal/referral"
	"github.com/studentversedubai-rgb/website-backend/internal/sl"
	"github.com/studentversedubai-rgb/website-backend/internal/stats"
	httptransport "github.com/studentversedubai-rgb/website-backend/internal/transport/http"
	"github.com/studentversedubai-rgb/website-backend/internal/transport/http/handler"
	"github.com/studentversedubai-rgb/website-backend/internal/usecase"
)

func main() {
	// optional .env for local runs
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	if cfg.Env == "local" {
		if err := postgres.Migrate(ctx, pool); err != nil {
			log.Fatalf("migrate: %v", err)
		}
	}

	rdb, err := redisstore.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer rdb.Close()

	sender, err := email.NewSender(ctx, email.Settings{
		Env:          cfg.Env,
		Provider:     cfg.EmailProvider,
		ResendAPIKey: cfg.ResendAPIKey,
		ResendFrom:   cfg.ResendFrom,
		AWSRegion:    cfg.AWSRegion,
		SESFrom:      cfg.SESFrom,
		SendRate:     cfg.EmailSendRate,
	}, logger)
	if err != nil {
		log.Fatalf("email: %v", err)
	}
	logger.Info("email sender ready", "provider", sender.Provider())

	limiter := ratelimit.New(rdb)
	userRepo := postgres.NewWaitlistUserRepository(pool)

	// Waitlist
	engine := otp.NewEngine(
		limiter,
		redisstore.NewOTPStore(rdb),
		email.NewCodeMailer(sender, cfg.EmailBrand, cfg.OTPTTL()),
		otp.Config{
			Secret:          []byte(cfg.OTPSecret),
			TTL:             cfg.OTPTTL(),
			MaxAttempts:     cfg.OTPMaxAttempts,
			RequestsPerHour: cfg.OTPRequestsPerHour,
		},
		logger,
	)
	ledger := referral.NewLedger(userRepo, cfg.ReferralThreshold, logger)
	waitlistUsecase := usecase.NewWaitlistUsecase(
		limiter, engine, redisstore.NewPendingSignupStore(rdb), userRepo, ledger,
		cfg.IPRateLimitWindow(), cfg.IPRateLimitMax, logger,
	)

	// Contact
	contactUsecase := usecase.NewContactUsecase(limiter, postgres.NewContactRepository(pool),
		cfg.IPRateLimitWindow(), cfg.IPRateLimitMax, logger)

	// Stats
	statsUsecase := usecase.NewStatsUsecase(userRepo)
	reporter, err := stats.NewReporter(cfg.StatsCron, statsUsecase, logger)
	if err != nil {
		log.Fatalf("stats: %v", err)
	}

	metrics.Register()
	checker := health.NewChecker(logger, prometheus.DefaultRegisterer,
		health.Dependency{Name: "postgres", Pinger: pool},
		health.Dependency{Name: "redis", Pinger: redisstore.Pinger{Client: rdb}},
	)

	router := httptransport.NewRouter(logger, httptransport.Handlers{
		Waitlist: handler.NewWaitlistHandler(waitlistUsecase, logger),
		Contact:  handler.NewContactHandler(contactUsecase, logger),
		Admin:    handler.NewAdminHandler(statsUsecase, logger),
	}, []byte(cfg.AdminJWTSecret))

	srv := http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httptransport.WithCORS(router, cfg.AllowedOrigins),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	go reporter.Start(ctx)

	go func() {
		logger.Info("server started", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", sl.Err(err))
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", sl.Err(err))
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", sl.Err(err))
	}
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
