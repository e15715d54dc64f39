package server

import (
	"context"
	"fmt"
	"time"

	"fulfillment-tracker/internal/core/config"
	"fulfillment-tracker/internal/core/logger"

	"github.com/goccy/go-json"
	"github.com/gofiber/contrib/fiberzap/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"

	_ "fulfillment-tracker/docs/swagger"
)

const healthTimeout = 2 * time.Second

// Pinger is anything the health check can ping.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server holds the Fiber application and configuration.
type Server struct {
	// App is the main Fiber application instance.
	App *fiber.App
	// cfg holds the application configuration.
	cfg *config.AppConfig
	// store is pinged by /healthz; nil reports healthy.
	store Pinger
}

// New creates a new Server instance with configured middleware.
func New(cfg *config.AppConfig, store Pinger) *Server {
	fiberCfg := fiber.Config{
		DisableStartupMessage: true,
		AppName:               "fulfillment-tracker",
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
	}
	// c.IP() keys the per-client rate limit; behind a proxy it must come
	// from X-Forwarded-For, and only when the peer is a known proxy.
	if proxies := cfg.TrustedProxyList(); len(proxies) > 0 {
		fiberCfg.ProxyHeader = fiber.HeaderXForwardedFor
		fiberCfg.EnableTrustedProxyCheck = true
		fiberCfg.TrustedProxies = proxies
		fiberCfg.EnableIPValidation = true
	}
	app := fiber.New(fiberCfg)

	app.Use(recover.New())

	app.Use(requestid.New(requestid.Config{
		Header: "X-Ray-ID",
	}))

	app.Use(fiberzap.New(fiberzap.Config{
		Logger: logger.Get(),
	}))

	s := &Server{
		App:   app,
		cfg:   cfg,
		store: store,
	}

	app.Get("/healthz", s.health)
	app.Get("/swagger/*", swagger.HandlerDefault)

	return s
}

// health handles GET /healthz.
// @Summary Liveness check
// @Description Reports whether the service and its Redis store are reachable.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /healthz [get]
func (s *Server) health(c *fiber.Ctx) error {
	if s.store != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), healthTimeout)
		defer cancel()

		if err := s.store.Ping(ctx); err != nil {
			logger.Get().Warn("Health check failed", zap.Error(err))
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "unavailable",
			})
		}
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

// Run starts the HTTP server.
func (s *Server) Run() error {
	addr := fmt.Sprintf(":%d", s.cfg.ServerPort)
	logger.Get().Info("Starting server", zap.String("address", addr))
	return s.App.Listen(addr)
}

// Shutdown drains in-flight requests, giving up after timeout.
func (s *Server) Shutdown(timeout time.Duration) error {
	logger.Get().Info("Shutting down server")
	return s.App.ShutdownWithTimeout(timeout)
}
