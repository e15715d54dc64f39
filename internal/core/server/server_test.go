package server

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"fulfillment-tracker/internal/core/config"
	"fulfillment-tracker/internal/core/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(context.Context) error {
	return s.err
}

// TestNew verifies that New creates a Server with the correct configuration.
func TestNew(t *testing.T) {
	cfg := &config.AppConfig{
		ServerPort: 8080,
	}

	logger.Init("development", "debug")
	srv := New(cfg, nil)

	require.NotNil(t, srv)
	assert.NotNil(t, srv.App)
	assert.Equal(t, cfg, srv.cfg)
}

func TestHealth(t *testing.T) {
	logger.Init("development", "error")

	tests := []struct {
		name   string
		store  Pinger
		status int
	}{
		{name: "NoStore", store: nil, status: fiber.StatusOK},
		{name: "StoreUp", store: stubPinger{}, status: fiber.StatusOK},
		{name: "StoreDown", store: stubPinger{err: errors.New("connection refused")}, status: fiber.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := New(&config.AppConfig{}, tt.store)

			resp, err := srv.App.Test(httptest.NewRequest("GET", "/healthz", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.NotEmpty(t, resp.Header.Get("X-Ray-ID"))
		})
	}
}

func TestClientIP(t *testing.T) {
	logger.Init("development", "error")

	tests := []struct {
		name    string
		proxies string
		want    string
	}{
		// app.Test connections come from 0.0.0.0.
		{name: "DirectExposureIgnoresHeader", proxies: "", want: "0.0.0.0"},
		{name: "TrustedProxyHonorsHeader", proxies: "0.0.0.0", want: "203.0.113.7"},
		{name: "UntrustedPeerIgnoresHeader", proxies: "10.0.0.1", want: "0.0.0.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := New(&config.AppConfig{TrustedProxies: tt.proxies}, nil)
			srv.App.Get("/ip", func(c *fiber.Ctx) error {
				return c.SendString(c.IP())
			})

			req := httptest.NewRequest("GET", "/ip", nil)
			req.Header.Set(fiber.HeaderXForwardedFor, "203.0.113.7")
			resp, err := srv.App.Test(req)
			require.NoError(t, err)

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(body))
		})
	}
}

func TestRecover(t *testing.T) {
	logger.Init("development", "error")
	srv := New(&config.AppConfig{}, nil)
	srv.App.Get("/boom", func(c *fiber.Ctx) error {
		panic("boom")
	})

	resp, err := srv.App.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

// TestServer_Run_Error verifies that Run returns an error when binding fails (e.g., privileged port).
func TestServer_Run_Error(t *testing.T) {
	// Privileged port 1 should fail
	cfg := &config.AppConfig{
		ServerPort: 1,
	}
	logger.Init("development", "error")

	srv := New(cfg, nil)

	errCh := make(chan error)
	go func() {
		errCh <- srv.Run()
	}()

	select {
	case err := <-errCh:
		assert.Error(t, err)
	case <-time.After(1 * time.Second):
		srv.App.Shutdown()
		t.Log("Server unexpectedly started or timed out on Error test")
	}
}
