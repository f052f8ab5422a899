package config_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/studentversedubai-rgb/website-backend/config"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/waitlist")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("OTP_SECRET", "0123456789abcdef0123")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.OTPTTL() != 600*time.Second {
		t.Errorf("otp ttl = %s, want 10m", cfg.OTPTTL())
	}
	if cfg.OTPMaxAttempts != 5 {
		t.Errorf("otp max attempts = %d, want 5", cfg.OTPMaxAttempts)
	}
	if cfg.OTPRequestsPerHour != 5 {
		t.Errorf("otp requests per hour = %d, want 5", cfg.OTPRequestsPerHour)
	}
	if cfg.IPRateLimitWindow() != time.Minute {
		t.Errorf("ip window = %s, want 1m", cfg.IPRateLimitWindow())
	}
	if cfg.IPRateLimitMax != 20 {
		t.Errorf("ip max = %d, want 20", cfg.IPRateLimitMax)
	}
	if cfg.ReferralThreshold != 5 {
		t.Errorf("referral threshold = %d, want 5", cfg.ReferralThreshold)
	}
	if cfg.SlogLevel() != slog.LevelInfo {
		t.Errorf("log level = %v, want info", cfg.SlogLevel())
	}
}

func TestLoad_StripsQuotedRedisURL(t *testing.T) {
	setRequired(t)
	t.Setenv("REDIS_URL", `"redis://cache:6379/1"`)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.RedisURL != "redis://cache:6379/1" {
		t.Errorf("redis url = %q", cfg.RedisURL)
	}
}

func TestLoad_MissingSecret_Fails(t *testing.T) {
	setRequired(t)
	t.Setenv("OTP_SECRET", "")

	if _, err := config.Load(); err == nil {
		t.Fatal("expected error for missing OTP_SECRET")
	}
}

func TestLoad_ProductionResendRequiresAPIKey(t *testing.T) {
	setRequired(t)
	t.Setenv("ENV", "production")

	if _, err := config.Load(); err == nil {
		t.Fatal("expected error: production with resend needs RESEND_API_KEY")
	}

	t.Setenv("RESEND_API_KEY", "re_test_key")
	if _, err := config.Load(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoad_AllowedOriginsSplit(t *testing.T) {
	setRequired(t)
	t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("allowed origins = %v", cfg.AllowedOrigins)
	}
}

func TestLoad_ShortAdminSecret_Fails(t *testing.T) {
	setRequired(t)
	t.Setenv("ADMIN_JWT_SECRET", "too-short")

	if _, err := config.Load(); err == nil {
		t.Fatal("expected error for short ADMIN_JWT_SECRET")
	}
}
