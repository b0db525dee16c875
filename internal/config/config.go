package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	Database     DatabaseConfig     `env:",prefix=DB_"`
	JWT          JWTConfig          `env:",prefix=JWT_"`
	App          AppConfig          `env:",prefix=APP_"`
	Storage      StorageConfig      `env:",prefix=STORAGE_"`
	OAuth2Google OAuth2GoogleConfig `env:",prefix=GOOGLE_"`
	Cron         CronConfig         `env:",prefix=CRON_"`
	Payroll      PayrollConfig      `env:",prefix=PAYROLL_"`
}

type DatabaseConfig struct {
	Host     string `env:"HOST, default=localhost"`
	Port     int    `env:"PORT, default=5432"`
	User     string `env:"USER, default=postgres"`
	Password string `env:"PASSWORD"`
	Name     string `env:"NAME, default=hris_attendance"`
	SSLMode  string `env:"SSL_MODE, default=disable"`
	MaxConns int32  `env:"MAX_CONNS, default=25"`
	MinConns int32  `env:"MIN_CONNS, default=5"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret            string `env:"SECRET_KEY"`
	RefreshExpiration string `env:"REFRESH_EXPIRATION_TIME, default=168h"`
	AccessExpiration  string `env:"ACCESS_EXPIRATION_TIME, default=1h"`
}

// AppConfig holds application configuration
type AppConfig struct {
	Name        string   `env:"NAME, default=hris-attendance"`
	Version     string   `env:"VERSION, default=v1.0.0"`
	Port        int      `env:"PORT, default=8080"`
	Env         string   `env:"ENV, default=development"`
	LogLevel    string   `env:"LOG_LEVEL, default=info"`
	Timezone    string   `env:"TIMEZONE, default=Asia/Jakarta"`
	FrontendURL string   `env:"FRONTEND_URL, default=http://localhost:3000"`
	CORSOrigins []string `env:"CORS_ORIGINS, default=http://localhost:3000"`
}

type StorageConfig struct {
	Type     string `env:"TYPE, default=local"`
	BasePath string `env:"BASE_PATH, default=./uploads"`
	BaseURL  string `env:"BASE_URL, default=http://localhost:8080/uploads"`
}

type OAuth2GoogleConfig struct {
	ClientID     string   `env:"CLIENT_ID"`
	ClientSecret string   `env:"CLIENT_SECRET"`
	RedirectURL  string   `env:"REDIRECT_URL"`
	Scopes       []string `env:"SCOPES, default=https://www.googleapis.com/auth/userinfo.email"`
}

// Enabled reports whether Google login is configured.
func (c OAuth2GoogleConfig) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

type CronConfig struct {
	Enabled bool `env:"ENABLED, default=true"`
	// Standard 5-field cron expression evaluated in App.Timezone.
	MarkAbsentSchedule string `env:"MARK_ABSENT_SCHEDULE, default=55 23 * * *"`
}

type PayrollConfig struct {
	OvertimeMultiplier string `env:"OVERTIME_MULTIPLIER, default=1.5"`
	MonthlyHours       int    `env:"MONTHLY_HOURS, default=173"`
}

// Load reads .env (if present) and decodes the environment into Config.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file loaded", "error", err)
	}

	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith decodes configuration from the given lookuper.
func LoadWith(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	if c.Database.Password == "" {
		errs = append(errs, errors.New("DB_PASSWORD is required"))
	}
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET_KEY is required"))
	}
	if _, err := time.ParseDuration(c.JWT.AccessExpiration); err != nil {
		errs = append(errs, fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err))
	}
	if _, err := time.ParseDuration(c.JWT.RefreshExpiration); err != nil {
		errs = append(errs, fmt.Errorf("invalid JWT_REFRESH_EXPIRATION_TIME: %w", err))
	}
	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("invalid APP_TIMEZONE: %w", err))
	}
	if m, err := decimal.NewFromString(c.Payroll.OvertimeMultiplier); err != nil || !m.IsPositive() {
		errs = append(errs, fmt.Errorf("invalid PAYROLL_OVERTIME_MULTIPLIER: %q", c.Payroll.OvertimeMultiplier))
	}
	if c.Payroll.MonthlyHours <= 0 {
		errs = append(errs, errors.New("PAYROLL_MONTHLY_HOURS must be positive"))
	}
	if c.Storage.Type != "local" {
		errs = append(errs, fmt.Errorf("unsupported STORAGE_TYPE: %s", c.Storage.Type))
	}

	return errors.Join(errs...)
}

// Multiplier returns the validated overtime multiplier.
func (c PayrollConfig) Multiplier() decimal.Decimal {
	m, err := decimal.NewFromString(c.OvertimeMultiplier)
	if err != nil {
		return decimal.NewFromFloat(1.5)
	}
	return m
}

// Location returns the configured business timezone.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func (c *Config) LogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
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

func (c *Config) DatabaseURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}
