package config

import (
	"os"
	"testing"
)

func TestLoad(t *testing.T) {
	// Create a temporary config file
	configContent := `
server:
  port: 9090
minio:
  endpoint: "localhost:9000"
  access_key: "minioadmin"
  secret_key: "minioadmin"
  bucket: "test-bucket"
  use_ssl: false
  expire_days: 14
analysis:
  base_url: "http://analysis.test:5050"
  timeout_seconds: 30
auth:
  jwt_secret: "test-secret"
  token_expire_hours: 48
log:
  level: "debug"
  format: "json"
store:
  max_sessions: 50
users:
  - username: "testuser"
    password: "testpass"
    tenant: "testtenant"
`
	tmpFile, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.WriteString(configContent); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	tmpFile.Close()

	// Test loading config
	cfg, err := Load(tmpFile.Name())
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	// Verify values
	if cfg.Server.Port != 9090 {
		t.Errorf("Expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Minio.Endpoint != "localhost:9000" {
		t.Errorf("Expected endpoint localhost:9000, got %s", cfg.Minio.Endpoint)
	}
	if cfg.Minio.ExpireDays != 14 {
		t.Errorf("Expected expire_days 14, got %d", cfg.Minio.ExpireDays)
	}
	if cfg.Analysis.BaseURL != "http://analysis.test:5050" {
		t.Errorf("Expected analysis base_url, got %s", cfg.Analysis.BaseURL)
	}
	if cfg.Analysis.TimeoutSeconds != 30 {
		t.Errorf("Expected timeout_seconds 30, got %d", cfg.Analysis.TimeoutSeconds)
	}
	if cfg.Auth.TokenExpireHours != 48 {
		t.Errorf("Expected token_expire_hours 48, got %d", cfg.Auth.TokenExpireHours)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Expected log level debug, got %s", cfg.Log.Level)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Expected log format json, got %s", cfg.Log.Format)
	}
	if cfg.Store.MaxSessions != 50 {
		t.Errorf("Expected max_sessions 50, got %d", cfg.Store.MaxSessions)
	}
	if len(cfg.Users) != 1 {
		t.Errorf("Expected 1 user, got %d", len(cfg.Users))
	}
	if cfg.Users[0].Username != "testuser" {
		t.Errorf("Expected username testuser, got %s", cfg.Users[0].Username)
	}
}

func TestLoadDefaults(t *testing.T) {
	// Create minimal config to test defaults
	configContent := `
minio:
  endpoint: "localhost:9000"
  access_key: "test"
  secret_key: "test"
  bucket: "bucket"
`
	tmpFile, err := os.CreateTemp("", "config-defaults-*.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.WriteString(configContent); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	tmpFile.Close()

	cfg, err := Load(tmpFile.Name())
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	// Verify defaults
	if cfg.Server.Port != 8080 {
		t.Errorf("Expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Minio.ExpireDays != 7 {
		t.Errorf("Expected default expire_days 7, got %d", cfg.Minio.ExpireDays)
	}
	if cfg.Auth.TokenExpireHours != 24 {
		t.Errorf("Expected default token_expire_hours 24, got %d", cfg.Auth.TokenExpireHours)
	}
	if cfg.Analysis.BaseURL != "http://localhost:5050" {
		t.Errorf("Expected default analysis base_url, got %s", cfg.Analysis.BaseURL)
	}
	if cfg.Analysis.TimeoutSeconds != 120 {
		t.Errorf("Expected default timeout_seconds 120, got %d", cfg.Analysis.TimeoutSeconds)
	}
	if cfg.Store.MaxSessions != 100 {
		t.Errorf("Expected default max_sessions 100, got %d", cfg.Store.MaxSessions)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Expected default log level info, got %s", cfg.Log.Level)
	}
	if cfg.Log.Format != "text" {
		t.Errorf("Expected default log format text, got %s", cfg.Log.Format)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	configContent := `
auth:
  jwt_secret: "file-secret"
analysis:
  base_url: "http://file.test:5050"
`
	tmpFile, err := os.CreateTemp("", "config-env-*.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.WriteString(configContent); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	tmpFile.Close()

	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("ANALYSIS_BASE_URL", "http://env.test:5050")

	cfg, err := Load(tmpFile.Name())
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Auth.JWTSecret != "env-secret" {
		t.Errorf("Expected env override for jwt_secret, got %s", cfg.Auth.JWTSecret)
	}
	if cfg.Analysis.BaseURL != "http://env.test:5050" {
		t.Errorf("Expected env override for base_url, got %s", cfg.Analysis.BaseURL)
	}
}

func TestLoadNonExistent(t *testing.T) {
	_, err := Load("nonexistent.yaml")
	if err == nil {
		t.Error("Expected error for non-existent file")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	tmpFile, err := os.CreateTemp("", "config-invalid-*.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.WriteString("invalid: yaml: content:"); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	tmpFile.Close()

	_, err = Load(tmpFile.Name())
	if err == nil {
		t.Error("Expected error for invalid YAML")
	}
}

func TestFindUser(t *testing.T) {
	cfg := &Config{
		Users: []User{
			{Username: "user1", Password: "pass1", Tenant: "tenant1"},
			{Username: "user2", Password: "pass2", Tenant: "tenant2"},
		},
	}

	// Test finding existing user
	user := cfg.FindUser("user1")
	if user == nil {
		t.Fatal("Expected to find user1")
	}
	if user.Password != "pass1" {
		t.Errorf("Expected password pass1, got %s", user.Password)
	}

	// Test finding non-existent user
	user = cfg.FindUser("nonexistent")
	if user != nil {
		t.Error("Expected nil for non-existent user")
	}
}
