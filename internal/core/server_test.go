package core

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"mcass/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Environment: "local",
		Server: config.ServerConfig{
			Port:           "8080",
			RequestTimeout: 29 * time.Second,
		},
		Security: config.SecurityConfig{
			CorsAllowedOrigins: []string{"*"},
		},
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestNewServer_Success(t *testing.T) {
	srv, err := NewServer(testConfig(), testLogger())
	if err != nil {
		t.Fatalf("NewServer: unexpected error: %v", err)
	}
	if srv == nil {
		t.Fatal("NewServer handed back a nil server")
	}
	if srv.Config == nil {
		t.Error("Config should be set")
	}
	if srv.Logger == nil {
		t.Error("Logger should be set")
	}
	if srv.Validator == nil {
		t.Error("Validator should be initialized")
	}
	if srv.Router() == nil {
		t.Error("router should be initialized")
	}
}

func TestNewServer_NilConfig(t *testing.T) {
	srv, err := NewServer(nil, testLogger())
	if err == nil {
		t.Fatal("nil config must be rejected")
	}
	if srv != nil {
		t.Error("server should be nil on error")
	}
}

func TestNewServer_NilLogger(t *testing.T) {
	srv, err := NewServer(testConfig(), nil)
	if err == nil {
		t.Fatal("nil logger must be rejected")
	}
	if srv != nil {
		t.Error("server should be nil on error")
	}
}

func TestServer_HandlerReturnsRouter(t *testing.T) {
	srv, err := NewServer(testConfig(), testLogger())
	if err != nil {
		t.Fatalf("NewServer: unexpected error: %v", err)
	}

	if srv.Handler() == nil {
		t.Error("Handler should not be nil")
	}
}

func TestServer_Shutdown(t *testing.T) {
	srv, err := NewServer(testConfig(), testLogger())
	if err != nil {
		t.Fatalf("NewServer: unexpected error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown returned error: %v", err)
	}
}
