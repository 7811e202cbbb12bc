package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Port         string        `env:"PORT" env-default:"8080"`
	ReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"15s"`
	IdleTimeout  time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
	CORSOrigins  []string      `env:"CORS_ORIGINS" env-default:"http://localhost:5173"`

	Timezone string `env:"APP_TIMEZONE" env-default:"Asia/Kolkata"`

	LogLevel  string `env:"LOG_LEVEL" env-default:"info" validate:"oneof=debug info warn error"`
	LogFormat string `env:"LOG_FORMAT" env-default:"text" validate:"oneof=text json"`

	Database Database
	JWT      JWT
	Redis    Redis
	Jobs     Jobs
	SendGrid SendGrid
	Twilio   Twilio
	Stripe   Stripe
	Admin    Admin
}

type Database struct {
	URL          string `env:"DATABASE_URL" validate:"required"`
	MaxOpenConns int    `env:"DB_MAX_OPEN_CONNS" env-default:"20" validate:"min=1"`
	MaxIdleConns int    `env:"DB_MAX_IDLE_CONNS" env-default:"5" validate:"min=0"`
}

type JWT struct {
	Secret string        `env:"JWT_SECRET" validate:"required"`
	TTL    time.Duration `env:"JWT_TTL" env-default:"24h" validate:"gt=0"`
}

// Redis is optional; an empty Addr disables the spot listing cache.
type Redis struct {
	Addr     string        `env:"REDIS_ADDR"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB" env-default:"0"`
	SpotTTL  time.Duration `env:"SPOT_CACHE_TTL" env-default:"30s"`
}

// Jobs configures the overdue booking sweep. An empty schedule disables it.
type Jobs struct {
	SweepSchedule string `env:"SWEEP_SCHEDULE"`
}

type SendGrid struct {
	APIKey    string `env:"SENDGRID_API_KEY"`
	FromEmail string `env:"SENDGRID_FROM_EMAIL"`
	FromName  string `env:"SENDGRID_FROM_NAME" env-default:"ParkEasy"`
}

type Twilio struct {
	AccountSID string `env:"TWILIO_ACCOUNT_SID"`
	AuthToken  string `env:"TWILIO_AUTH_TOKEN"`
	FromNumber string `env:"TWILIO_FROM_NUMBER"`
}

type Stripe struct {
	SecretKey     string `env:"STRIPE_SECRET_KEY"`
	WebhookSecret string `env:"STRIPE_WEBHOOK_SECRET"`
	Currency      string `env:"STRIPE_CURRENCY" env-default:"inr"`
	SuccessURL    string `env:"CHECKOUT_SUCCESS_URL" env-default:"http://localhost:5173/history?payment=success"`
	CancelURL     string `env:"CHECKOUT_CANCEL_URL" env-default:"http://localhost:5173/history?payment=cancelled"`
}

// Admin is the account created at start-up when both fields are set.
type Admin struct {
	Email    string `env:"ADMIN_EMAIL" validate:"omitempty,email"`
	Password string `env:"ADMIN_PASSWORD"`
}

func (s SendGrid) Enabled() bool { return s.APIKey != "" && s.FromEmail != "" }
func (t Twilio) Enabled() bool   { return t.AccountSID != "" && t.AuthToken != "" && t.FromNumber != "" }
func (s Stripe) Enabled() bool   { return s.SecretKey != "" }

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}
	for i, o := range cfg.CORSOrigins {
		cfg.CORSOrigins[i] = strings.TrimSpace(o)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Location resolves Timezone, falling back to IST when the zone database
// does not know it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.FixedZone("IST", 5*60*60+30*60)
	}
	return loc
}

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func (c *Config) NewLogger() *slog.Logger {
	var level slog.Level
	switch c.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
