package main

import (
	"context"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/roomdesk/roomdesk/libs/config"
	"github.com/roomdesk/roomdesk/libs/db"
	"github.com/roomdesk/roomdesk/libs/httpx"
	"github.com/roomdesk/roomdesk/libs/kafkax"
	otelx "github.com/roomdesk/roomdesk/libs/otel"
	"github.com/roomdesk/roomdesk/libs/runtime"
	"github.com/roomdesk/roomdesk/services/auth-service/internal/audit"
	"github.com/roomdesk/roomdesk/services/auth-service/internal/handlers"
	"github.com/roomdesk/roomdesk/services/auth-service/internal/outbox"
	"github.com/roomdesk/roomdesk/services/auth-service/internal/sessions"
	"github.com/roomdesk/roomdesk/services/auth-service/internal/storage"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	service := config.String("SERVICE_NAME", "auth-service")
	port, err := config.Port("PORT", "8081")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		panic(err)
	}
	jwtSecret, err := config.RequiredString("AUTH_JWT_SECRET")
	if err != nil {
		panic(err)
	}

	pool, err := db.Open(ctx, dbURL)
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	userRepo := storage.NewUserRepository(pool)
	auditRepo := audit.NewRepository(pool)
	outboxRepo := outbox.NewRepository(pool)
	refreshRepo := sessions.NewRefreshRepository(pool)
	outboxPublisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   config.String("KAFKA_BROKERS", ""),
		PollEvery: 2 * time.Second,
		BatchSize: 50,
	})
	go outboxPublisher.Run(ctx)

	accessTTLMinutes, err := config.Int("ACCESS_TTL_MINUTES", 60)
	if err != nil || accessTTLMinutes <= 0 {
		logger.Warn("invalid ACCESS_TTL_MINUTES; using 60")
		accessTTLMinutes = 60
	}
	refreshTTLHours, err := config.Int("REFRESH_TTL_HOURS", 720)
	if err != nil || refreshTTLHours <= 0 {
		logger.Warn("invalid REFRESH_TTL_HOURS; using 720")
		refreshTTLHours = 720
	}

	authHandler := handlers.NewAuthHandler(
		jwtSecret,
		time.Duration(accessTTLMinutes)*time.Minute,
		time.Duration(refreshTTLHours)*time.Hour,
		pool,
		userRepo,
		auditRepo,
		outboxRepo,
		refreshRepo,
	)

	loginLimit, err := config.Int("LOGIN_RATE_LIMIT", 10)
	if err != nil || loginLimit < 0 {
		loginLimit = 10
	}
	var limitLogin httpx.Middleware = func(next http.Handler) http.Handler { return next }
	if loginLimit > 0 {
		if addr := config.String("REDIS_ADDR", ""); addr != "" {
			rdb := redis.NewClient(&redis.Options{Addr: addr})
			limitLogin = httpx.NewRedisRateLimiter(rdb, loginLimit, time.Minute, service+":login").Middleware(logger, true)
		} else {
			limitLogin = httpx.NewRateLimiter(loginLimit, time.Minute).Middleware()
		}
	}

	mux := runtime.NewBaseMux(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(config.String("KAFKA_BROKERS", ""))},
	)
	mux.HandleFunc("/api/v1/auth/register", authHandler.Register)
	mux.Handle("/api/v1/auth/login", limitLogin(http.HandlerFunc(authHandler.Login)))
	mux.HandleFunc("/api/v1/auth/refresh", authHandler.Refresh)
	mux.HandleFunc("/api/v1/auth/logout", authHandler.Logout)
	mux.HandleFunc("/api/v1/auth/me", authHandler.Me)

	handler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithBodyLimit(1<<20),
	)
	handler = otelhttp.NewHandler(handler, "auth")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}
