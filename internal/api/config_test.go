package api

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"NOTIF_LISTEN_ADDR", "NOTIF_LOG_FORMAT", "NOTIF_RATE_LIMIT_TEST", "NOTIF_WEBHOOK_TIMEOUT", "NOTIF_CORS_ALLOWED_ORIGINS"} {
		t.Setenv(k, "")
	}
	cfg := LoadConfig()
	if cfg.ListenAddr != "127.0.0.1:8087" || cfg.LogFormat != "json" || cfg.RateLimitTest != 10 {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.WebhookTimeout != 10*time.Second {
		t.Errorf("webhook timeout = %v", cfg.WebhookTimeout)
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("NOTIF_LISTEN_ADDR", ":9999")
	t.Setenv("NOTIF_LOG_FORMAT", "text")
	t.Setenv("NOTIF_LOG_LEVEL", "debug")
	t.Setenv("NOTIF_RATE_LIMIT_TEST", "3")
	t.Setenv("NOTIF_WEBHOOK_TIMEOUT", "2")
	t.Setenv("NOTIF_SHUTDOWN_TIMEOUT", "5s")
	t.Setenv("NOTIF_CORS_ALLOWED_ORIGINS", "https://a.example.com, ,https://b.example.com")

	cfg := LoadConfig()
	if cfg.ListenAddr != ":9999" || cfg.LogFormat != "text" || cfg.LogLevel != "debug" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.RateLimitTest != 3 || cfg.WebhookTimeout != 2*time.Second || cfg.ShutdownTimeout != 5*time.Second {
		t.Errorf("limits = %+v", cfg)
	}
	if len(cfg.CORSAllowedOrigins) != 2 {
		t.Errorf("origins = %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadConfigIgnoresInvalidNumbers(t *testing.T) {
	t.Setenv("NOTIF_RATE_LIMIT_TEST", "-4")
	t.Setenv("NOTIF_WEBHOOK_TIMEOUT", "soon")
	cfg := LoadConfig()
	if cfg.RateLimitTest != 10 || cfg.WebhookTimeout != 10*time.Second {
		t.Errorf("cfg = %+v", cfg)
	}
}
