package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func TestLoadFromDefaults(t *testing.T) {
	cfg, err := LoadFrom(viper.New())
	if err != nil {
		t.Fatalf("load defaults failed: %v", err)
	}
	if cfg.Server.Addr() != "0.0.0.0:8080" {
		t.Fatalf("unexpected addr: %s", cfg.Server.Addr())
	}
	if cfg.Store.NewProductDays != 7 || cfg.Store.TrendingLimit != 10 {
		t.Fatalf("unexpected store defaults: %+v", cfg.Store)
	}
	if cfg.Cart.SessionHeader != "X-Cart-Session" || cfg.Cart.TTLHours != 0 {
		t.Fatalf("unexpected cart defaults: %+v", cfg.Cart)
	}
	if cfg.Queue.Queues["default"] != 10 {
		t.Fatalf("unexpected queue weights: %+v", cfg.Queue.Queues)
	}
}

func TestLoadFromEnvOverride(t *testing.T) {
	t.Setenv("STORE_WHATSAPP_PHONE", " 15551234567 ")
	t.Setenv("STORE_SITE_ORIGIN", "https://shop.example.com/")
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := LoadFrom(viper.New())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Store.WhatsAppPhone != "15551234567" {
		t.Fatalf("expected trimmed phone, got %q", cfg.Store.WhatsAppPhone)
	}
	if cfg.Store.SiteOrigin != "https://shop.example.com" {
		t.Fatalf("expected origin without trailing slash, got %q", cfg.Store.SiteOrigin)
	}
	if cfg.Server.Port != "9090" {
		t.Fatalf("expected env port, got %q", cfg.Server.Port)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte("store:\n  staff_email: staff@example.com\ncart:\n  ttl_hours: 72\nlog:\n  level: warn\n")
	if err := os.WriteFile(filepath.Join(dir, "config.yml"), content, 0o644); err != nil {
		t.Fatalf("write config failed: %v", err)
	}
	v := viper.New()
	v.SetConfigFile(filepath.Join(dir, "config.yml"))
	if err := v.ReadInConfig(); err != nil {
		t.Fatalf("read config failed: %v", err)
	}
	cfg, err := LoadFrom(v)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Store.StaffEmail != "staff@example.com" || cfg.Cart.TTLHours != 72 {
		t.Fatalf("unexpected values from file: %+v %+v", cfg.Store, cfg.Cart)
	}
	if opts := cfg.Log.ToLoggerOptions(); opts.Level != "warn" {
		t.Fatalf("log level should reach logger options, got %q", opts.Level)
	}
}
