package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/aisummit/event-booking/internal/config"
	"github.com/aisummit/event-booking/internal/database"
	"github.com/aisummit/event-booking/internal/handler"
	"github.com/aisummit/event-booking/internal/logging"
	"github.com/aisummit/event-booking/internal/notify"
	"github.com/aisummit/event-booking/internal/repository"
	"github.com/aisummit/event-booking/internal/service"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	log, err := logging.New(cfg.Environment)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPool(ctx, cfg.DSN())
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}
	log.Info("database ready", zap.String("db", cfg.DBName))

	// Repositories
	eventRepo := repository.NewEventRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	userRepo := repository.NewUserRepository(pool)

	// Services
	notifier := notify.NewLogNotifier(log)
	tickets := service.NewTicketIssuer(cfg.TicketDir)
	charger := service.NewPaymentSimulator(nil)
	eventSvc := service.NewEventService(eventRepo)
	bookingSvc := service.NewBookingService(bookingRepo, tickets, charger, notifier, log)
	userSvc := service.NewUserService(userRepo, notifier, []byte(cfg.JWTSecret), cfg.TokenTTL)
	adminSvc := service.NewAdminService(bookingRepo, eventRepo, userRepo)

	// Handlers
	authHandler := handler.NewAuthHandler(userSvc)
	eventHandler := handler.NewEventHandler(eventSvc)
	bookingHandler := handler.NewBookingHandler(bookingSvc)
	paymentHandler := handler.NewPaymentHandler(bookingSvc)
	adminHandler := handler.NewAdminHandler(adminSvc, bookingSvc)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(handler.AccessLog(log))

	r.Get("/health", handler.HealthCheck)
	if cfg.EnableMetrics {
		r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	}

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Get("/verify", authHandler.Verify)
		r.Post("/login", authHandler.Login)
	})

	r.Route("/events", func(r chi.Router) {
		r.Get("/", eventHandler.ListEvents)
		r.Get("/{id}", eventHandler.GetEvent)
		r.Get("/{id}/availability", eventHandler.CheckAvailability)

		r.Group(func(r chi.Router) {
			r.Use(handler.Authenticate(userSvc))
			r.Post("/{id}/bookings", bookingHandler.CreateBooking)
		})

		r.Group(func(r chi.Router) {
			r.Use(handler.Authenticate(userSvc), handler.RequireAdmin)
			r.Post("/", eventHandler.CreateEvent)
		})
	})

	r.Route("/bookings", func(r chi.Router) {
		r.Use(handler.Authenticate(userSvc))
		r.Get("/", bookingHandler.ListBookings)
		r.Get("/{id}", bookingHandler.GetBooking)
		r.Delete("/{id}", bookingHandler.CancelBooking)
		r.Post("/{id}/payment", paymentHandler.Pay)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(handler.Authenticate(userSvc), handler.RequireAdmin)
		r.Get("/stats", adminHandler.Stats)
		r.Get("/revenue", adminHandler.Revenue)
		r.Get("/bookings", adminHandler.ListBookings)
		r.Get("/bookings/ref/{reference}", adminHandler.GetBookingByReference)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
	log.Info("server stopped")
}
