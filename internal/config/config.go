package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"

	"github.com/marcus/notif/internal/models"
)

const configFile = ".notif/config.json"
const lockFile = ".notif/config.json.lock"

// Defaults applied when neither the config file nor the environment set a value
const (
	DefaultBundle         = "rhel"
	DefaultListenAddr     = "127.0.0.1:8087"
	DefaultWebhookTimeout = 10
)

// Environment overrides
const (
	EnvBundle         = "NOTIF_BUNDLE"
	EnvWebhookSecret  = "NOTIF_WEBHOOK_SECRET"
	EnvWebhookTimeout = "NOTIF_WEBHOOK_TIMEOUT"
	EnvListenAddr     = "NOTIF_LISTEN_ADDR"
)

// Load reads the config from disk
func Load(baseDir string) (*models.Config, error) {
	configPath := filepath.Join(baseDir, configFile)

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return &models.Config{}, nil
		}
		return nil, err
	}

	var cfg models.Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the config to disk using atomic write (temp file + rename)
func Save(baseDir string, cfg *models.Config) error {
	configPath := filepath.Join(baseDir, configFile)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	// Atomic write: temp file in same dir, then rename
	tmp, err := os.CreateTemp(dir, "config-*.json.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	return os.Rename(tmpName, configPath)
}

// withConfigLock serializes read-modify-write of config.json across processes
func withConfigLock(baseDir string, fn func() error) error {
	lockPath := filepath.Join(baseDir, lockFile)

	if err := os.MkdirAll(filepath.Dir(lockPath), 0755); err != nil {
		return err
	}

	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := lockFd(f.Fd()); err != nil {
		return err
	}
	defer unlockFd(f.Fd())

	return fn()
}

// Update applies fn to the stored config under the config lock
func Update(baseDir string, fn func(cfg *models.Config)) error {
	return withConfigLock(baseDir, func() error {
		cfg, err := Load(baseDir)
		if err != nil {
			return err
		}
		fn(cfg)
		return Save(baseDir, cfg)
	})
}

// GetBundle returns the bundle used when a command does not name one.
// Priority: NOTIF_BUNDLE env > config.json default_bundle > "rhel".
func GetBundle(baseDir string) string {
	if v := os.Getenv(EnvBundle); v != "" {
		return v
	}
	cfg, err := Load(baseDir)
	if err == nil && cfg.DefaultBundle != "" {
		return cfg.DefaultBundle
	}
	return DefaultBundle
}

// SetBundle persists the default bundle
func SetBundle(baseDir, bundle string) error {
	return Update(baseDir, func(cfg *models.Config) {
		cfg.DefaultBundle = bundle
	})
}

// GetListenAddr returns the API listen address.
// Priority: NOTIF_LISTEN_ADDR env > config.json listen_addr > default.
func GetListenAddr(baseDir string) string {
	if v := os.Getenv(EnvListenAddr); v != "" {
		return v
	}
	cfg, err := Load(baseDir)
	if err == nil && cfg.ListenAddr != "" {
		return cfg.ListenAddr
	}
	return DefaultListenAddr
}

// GetWebhookSecret returns the fallback HMAC secret for integrations created
// without one. Priority: NOTIF_WEBHOOK_SECRET env > config.json webhook.secret.
func GetWebhookSecret(baseDir string) string {
	if v := os.Getenv(EnvWebhookSecret); v != "" {
		return v
	}
	cfg, err := Load(baseDir)
	if err != nil || cfg.Webhook == nil {
		return ""
	}
	return cfg.Webhook.Secret
}

// SetWebhookSecret persists the fallback webhook secret
func SetWebhookSecret(baseDir, secret string) error {
	return Update(baseDir, func(cfg *models.Config) {
		if cfg.Webhook == nil {
			cfg.Webhook = &models.WebhookConfig{}
		}
		cfg.Webhook.Secret = secret
	})
}

// GetWebhookTimeout returns the dispatch timeout in seconds
func GetWebhookTimeout(baseDir string) int {
	if v := os.Getenv(EnvWebhookTimeout); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	cfg, err := Load(baseDir)
	if err == nil && cfg.Webhook != nil && cfg.Webhook.TimeoutSeconds > 0 {
		return cfg.Webhook.TimeoutSeconds
	}
	return DefaultWebhookTimeout
}
