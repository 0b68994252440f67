package main

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/roomdesk/roomdesk/libs/config"
	"github.com/roomdesk/roomdesk/libs/db"
	"github.com/roomdesk/roomdesk/libs/httpx"
	"github.com/roomdesk/roomdesk/libs/kafkax"
	otelx "github.com/roomdesk/roomdesk/libs/otel"
	"github.com/roomdesk/roomdesk/libs/runtime"
	"github.com/roomdesk/roomdesk/services/reservation-service/internal/booking"
	"github.com/roomdesk/roomdesk/services/reservation-service/internal/handlers"
	"github.com/roomdesk/roomdesk/services/reservation-service/internal/outbox"
	"github.com/roomdesk/roomdesk/services/reservation-service/internal/schedule"
	"github.com/roomdesk/roomdesk/services/reservation-service/internal/storage"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func businessHours(logger *slog.Logger) schedule.BusinessHours {
	open, errOpen := config.ClockMinutes("BUSINESS_OPEN", "08:00")
	closeAt, errClose := config.ClockMinutes("BUSINESS_CLOSE", "19:00")
	hours := schedule.BusinessHours{OpenMinute: open, CloseMinute: closeAt}
	if errOpen != nil || errClose != nil || !hours.Valid() {
		logger.Warn("invalid business hours config; using defaults")
		return schedule.DefaultBusinessHours()
	}
	return hours
}

func main() {
	service := config.String("SERVICE_NAME", "reservation-service")
	port, err := config.Port("PORT", "8083")
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

	hours := businessHours(logger)
	slotMinutes, err := config.Int("SLOT_MINUTES", 60)
	if err != nil || slotMinutes <= 0 {
		logger.Warn("invalid SLOT_MINUTES; using 60")
		slotMinutes = 60
	}

	roomRepo := storage.NewRoomRepository(pool)
	resRepo := storage.NewReservationRepository(pool)
	outboxRepo := outbox.NewRepository(pool)

	store := booking.NewPGStore(pool, resRepo, outboxRepo)
	orchestrator := booking.NewOrchestrator(store, hours)

	outboxPublisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   config.String("KAFKA_BROKERS", ""),
		PollEvery: 2 * time.Second,
		BatchSize: 50,
	})
	go outboxPublisher.Run(ctx)

	roomsHandler := handlers.NewRoomsHandler(roomRepo, logger)
	resHandler := handlers.NewReservationHandler(pool, resRepo, roomRepo, outboxRepo, orchestrator, logger, hours, slotMinutes)

	createLimit, err := config.Int("CREATE_RATE_LIMIT", 30)
	if err != nil || createLimit < 0 {
		createLimit = 30
	}
	var limitCreate httpx.Middleware = func(next http.Handler) http.Handler { return next }
	if createLimit > 0 {
		if addr := config.String("REDIS_ADDR", ""); addr != "" {
			rdb := redis.NewClient(&redis.Options{Addr: addr})
			limitCreate = httpx.NewRedisRateLimiter(rdb, createLimit, time.Minute, service+":create").Middleware(logger, true)
		} else {
			limitCreate = httpx.NewRateLimiter(createLimit, time.Minute).Middleware()
		}
	}

	mux := runtime.NewBaseMux(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(config.String("KAFKA_BROKERS", ""))},
	)
	mux.HandleFunc("/api/v1/rooms", roomsHandler.List)
	mux.HandleFunc("/api/v1/reservations/booked", resHandler.Booked)
	mux.HandleFunc("/api/v1/slots", resHandler.Slots)

	createHandler := limitCreate(http.HandlerFunc(resHandler.Create))
	mux.Handle("/api/v1/reservations", handlers.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			createHandler.ServeHTTP(w, r)
			return
		}
		resHandler.List(w, r)
	}), jwtSecret))
	mux.Handle("/api/v1/reservations/delete", handlers.RequireAuth(http.HandlerFunc(resHandler.Delete), jwtSecret))

	httpHandler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithCORS(httpx.CORSPolicy{
			AllowedOrigins: strings.Split(config.String("CORS_ALLOWED_ORIGINS", ""), ","),
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-Id"},
			MaxAge:         10 * time.Minute,
		}),
		httpx.WithBodyLimit(1<<20),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "reservation")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
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
