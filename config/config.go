package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	Env      string `env:"ENV" envDefault:"local" validate:"required,oneof=local staging production"`
	Port     string `env:"PORT" envDefault:"8080" validate:"required"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`

	DatabaseURL string `env:"DATABASE_URL,required" validate:"required"`
	DBMaxConns  int32  `env:"DB_MAX_CONNS" envDefault:"10" validate:"min=1,max=200"`
	RedisURL    string `env:"REDIS_URL,required" validate:"required"`

	MetricsPort string `env:"METRICS_PORT" envDefault:"9090"`

	OTPSecret          string `env:"OTP_SECRET,required"    validate:"required,min=16"`
	OTPTTLSec          int    `env:"OTP_TTL_SECONDS"        envDefault:"600" validate:"min=60,max=86400"`
	OTPMaxAttempts     int    `env:"OTP_MAX_ATTEMPTS"       envDefault:"5"   validate:"min=1,max=100"`
	OTPRequestsPerHour int    `env:"OTP_REQUESTS_PER_HOUR"  envDefault:"5"   validate:"min=1,max=1000"`

	IPRateLimitWindowSec int `env:"IP_RATE_LIMIT_WINDOW_SECONDS" envDefault:"60" validate:"min=1,max=86400"`
	IPRateLimitMax       int `env:"IP_RATE_LIMIT_MAX_REQUESTS"   envDefault:"20" validate:"min=1,max=100000"`

	ReferralThreshold int `env:"REFERRAL_THRESHOLD" envDefault:"5" validate:"min=1"`

	EmailProvider string  `env:"EMAIL_PROVIDER"   envDefault:"resend" validate:"oneof=resend ses"`
	EmailSendRate float64 `env:"EMAIL_SEND_RATE"  envDefault:"2"      validate:"gt=0"`
	EmailBrand    string  `env:"EMAIL_BRAND"      envDefault:"StudentVerse"`
	ResendAPIKey  string  `env:"RESEND_API_KEY"   validate:"required_if=Env production EmailProvider resend,required_if=Env staging EmailProvider resend"`
	ResendFrom    string  `env:"RESEND_FROM"      envDefault:"onboarding@resend.dev"`
	AWSRegion     string  `env:"AWS_REGION"       validate:"required_if=Env production EmailProvider ses,required_if=Env staging EmailProvider ses"`
	SESFrom       string  `env:"SES_FROM_EMAIL"   validate:"required_if=Env production EmailProvider ses,required_if=Env staging EmailProvider ses"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	AdminJWTSecret string   `env:"ADMIN_JWT_SECRET" validate:"omitempty,min=32"`
	StatsCron      string   `env:"STATS_CRON" envDefault:"@every 1m" validate:"required"`
}

func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	// tolerate accidental quotes around the URL
	cfg.RedisURL = strings.Trim(cfg.RedisURL, `"'`)

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (c *Config) OTPTTL() time.Duration {
	return time.Duration(c.OTPTTLSec) * time.Second
}

func (c *Config) IPRateLimitWindow() time.Duration {
	return time.Duration(c.IPRateLimitWindowSec) * time.Second
}
