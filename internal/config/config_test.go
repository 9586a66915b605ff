package config

import (
	"strings"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Setenv("API_AUTH_URL", "http://remote/auth")
	t.Setenv("API_TRANSACTIONS_URL", "http://remote/transactions")
	t.Setenv("API_SUPPORT_URL", "http://remote/support")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %s, want 8080", cfg.Port)
	}
	if cfg.SessionBackend != SessionBackendRedis {
		t.Errorf("SessionBackend = %s, want redis", cfg.SessionBackend)
	}
	if cfg.ProgressSteps != 10 || cfg.ProgressInterval != 200*time.Millisecond {
		t.Errorf("progress = %d steps every %s, want 10 every 200ms", cfg.ProgressSteps, cfg.ProgressInterval)
	}
	if cfg.SessionTTL != 720*time.Hour {
		t.Errorf("SessionTTL = %s", cfg.SessionTTL)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("SESSION_BACKEND", "memory")
	t.Setenv("TELEGRAM_OPERATOR_CHAT_ID", "-100123")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("API_TIMEOUT", "3s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.SessionBackend != SessionBackendMemory {
		t.Errorf("SessionBackend = %s", cfg.SessionBackend)
	}
	if cfg.OperatorChatID != -100123 {
		t.Errorf("OperatorChatID = %d", cfg.OperatorChatID)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
	if cfg.APITimeout != 3*time.Second {
		t.Errorf("APITimeout = %s", cfg.APITimeout)
	}
}

func TestLoadRequiresEndpoints(t *testing.T) {
	t.Setenv("API_AUTH_URL", "")
	t.Setenv("API_TRANSACTIONS_URL", "")
	t.Setenv("API_SUPPORT_URL", "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error without endpoint URLs")
	}
	if !strings.Contains(err.Error(), "API_AUTH_URL") {
		t.Errorf("error should mention API_AUTH_URL: %v", err)
	}
}

func TestValidateProductionSecret(t *testing.T) {
	cfg := &Config{
		Env:             "production",
		AuthURL:         "a",
		TransactionsURL: "t",
		SupportURL:      "s",
		SessionBackend:  SessionBackendRedis,
		JWTSecret:       devJWTSecret,
		BotToken:        "123:token",
		ProgressSteps:   10,
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for development secret in production")
	}

	cfg.JWTSecret = "a-real-secret"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateSessionBackend(t *testing.T) {
	cfg := &Config{
		AuthURL:         "a",
		TransactionsURL: "t",
		SupportURL:      "s",
		SessionBackend:  "file",
		ProgressSteps:   10,
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown session backend")
	}
}

func TestValidateProductionBotToken(t *testing.T) {
	cfg := &Config{
		Env:             "production",
		AuthURL:         "a",
		TransactionsURL: "t",
		SupportURL:      "s",
		SessionBackend:  SessionBackendRedis,
		JWTSecret:       "a-real-secret",
		ProgressSteps:   10,
	}
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "TELEGRAM_BOT_TOKEN") {
		t.Errorf("expected bot token error in production, got %v", err)
	}

	cfg.Env = "development"
	if err := cfg.Validate(); err != nil {
		t.Errorf("development runs without a bot token, got %v", err)
	}
}
