package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(viper.New())
	if err != nil {
		t.Fatalf("load() error = %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %s, want 8080", cfg.Port)
	}
	if cfg.Storage != StorageSQLite {
		t.Errorf("Storage = %s, want %s", cfg.Storage, StorageSQLite)
	}
	if cfg.SessionDuration != time.Hour {
		t.Errorf("SessionDuration = %s, want 1h", cfg.SessionDuration)
	}
	if !cfg.NormalizeRewrite {
		t.Error("NormalizeRewrite should default to true")
	}
	if cfg.InitAdmin.Enabled() {
		t.Error("InitAdmin should be disabled without env")
	}
	if !cfg.IsDevelopment() {
		t.Error("expected development environment")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SLIDEOMNI_PORT", "9000")
	t.Setenv("SLIDEOMNI_STORAGE", "MEMORY")
	t.Setenv("SLIDEOMNI_SESSION_DURATION", "30m")
	t.Setenv("SLIDEOMNI_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("JWT_SECRET", "from-legacy-name")
	t.Setenv("INIT_ADMIN_USER", "root")
	t.Setenv("INIT_ADMIN_PASS", "hunter2")
	t.Setenv("INIT_ADMIN_SUDO", "true")

	cfg, err := load(viper.New())
	if err != nil {
		t.Fatalf("load() error = %v", err)
	}

	if cfg.Port != "9000" {
		t.Errorf("Port = %s, want 9000", cfg.Port)
	}
	if cfg.Storage != StorageMemory {
		t.Errorf("Storage = %s, want %s", cfg.Storage, StorageMemory)
	}
	if cfg.SessionDuration != 30*time.Minute {
		t.Errorf("SessionDuration = %s, want 30m", cfg.SessionDuration)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
	if cfg.SecretKey != "from-legacy-name" {
		t.Errorf("SecretKey = %s, want from-legacy-name", cfg.SecretKey)
	}
	if !cfg.InitAdmin.Enabled() || !cfg.InitAdmin.Sudo || cfg.InitAdmin.Username != "root" {
		t.Errorf("InitAdmin = %+v", cfg.InitAdmin)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Storage: StorageSQLite, SecretKey: "k", SessionDuration: time.Hour}, false},
		{"unknown storage", Config{Storage: "mongo", SecretKey: "k", SessionDuration: time.Hour}, true},
		{"zero session", Config{Storage: StorageMemory, SecretKey: "k"}, true},
		{"empty secret", Config{Storage: StorageMemory, SessionDuration: time.Hour}, true},
		{"dev secret in production", Config{Storage: StorageMemory, SecretKey: devSecretKey, SessionDuration: time.Hour, Environment: "production"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
