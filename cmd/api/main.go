package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fulfillment-tracker/internal/core/cache"
	"fulfillment-tracker/internal/core/config"
	"fulfillment-tracker/internal/core/logger"
	"fulfillment-tracker/internal/core/ratelimit"
	"fulfillment-tracker/internal/core/server"
	orderadapter "fulfillment-tracker/internal/features/orders/adapters"
	orderhandler "fulfillment-tracker/internal/features/orders/handler"
	orderservice "fulfillment-tracker/internal/features/orders/service"
	"fulfillment-tracker/internal/features/tracking/domain"
	trackinghandler "fulfillment-tracker/internal/features/tracking/handler"
	trackingservice "fulfillment-tracker/internal/features/tracking/service"

	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// @title Fulfillment Tracker API
// @version 1.0
// @description Order tracking: status state machine, event log and progress projection.
// @contact.name API Support
// @license.name MIT
// @host localhost:8080
// @BasePath /
func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	l := logger.Get()
	l.Info("Application starting",
		zap.String("environment", cfg.Environment),
		zap.String("log_level", cfg.LogLevel),
		zap.Bool("strict_transitions", cfg.Tracking.StrictTransitions),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Document store
	store, err := cache.NewRedisAdapter(cfg.Redis.URL, time.Duration(cfg.Redis.OpTimeout)*time.Second)
	if err != nil {
		l.Fatal("Invalid Redis configuration", zap.Error(err))
	}
	defer store.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	if err := store.Ping(pingCtx); err != nil {
		cancel()
		l.Fatal("Redis Health Check Failed", zap.Error(err))
	}
	cancel()
	l.Info("Redis connection verified")

	orderRepo := orderadapter.NewRedisOrderRepository(store)

	// Orders
	orderSvc := orderservice.NewOrderService(orderRepo, cfg.Tracking.LeadTime())
	orderHdl := orderhandler.NewOrderHandler(orderSvc)

	// Tracking
	policy := domain.OpenPolicy()
	if cfg.Tracking.StrictTransitions {
		policy = domain.StrictPolicy()
	}
	trackingSvc := trackingservice.NewTrackingService(orderRepo, policy, cfg.Tracking.LeadTime())
	trackingHdl := trackinghandler.NewTrackingHandler(trackingSvc)

	lookupLimiter := ratelimit.New(ctx, cfg.Lookup.RatePerSec, cfg.Lookup.Burst)
	defer lookupLimiter.Shutdown()

	srv := server.New(cfg, store)

	// Register Routes
	srv.App.Post("/orders", orderHdl.PlaceOrder)
	srv.App.Get("/orders/:id", orderHdl.GetOrder)
	srv.App.Get("/orders/:id/tracking", trackingHdl.GetTracking)
	srv.App.Get("/orders/:id/tracking/progress", trackingHdl.GetProgress)
	srv.App.Get("/tracking/:number", lookupLimiter.Handler(), trackingHdl.GetTrackingByNumber)

	admin := srv.App.Group("/admin/orders/:id/tracking")
	admin.Post("/status", trackingHdl.SetStatus)
	admin.Post("/events", trackingHdl.AddEvent)
	admin.Post("/courier", trackingHdl.UpdateCourier)
	admin.Post("/eta", trackingHdl.UpdateExpectedDelivery)

	go func() {
		<-ctx.Done()
		if err := srv.Shutdown(shutdownTimeout); err != nil {
			l.Error("Graceful shutdown failed", zap.Error(err))
		}
	}()

	if err := srv.Run(); err != nil {
		l.Fatal("Server failed to start", zap.Error(err))
	}
}
