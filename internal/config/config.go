package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port string `mapstructure:"PORT"`
	Env  string `mapstructure:"ENV"`

	DBDSN          string `mapstructure:"DB_DSN"`
	DBMaxOpenConns int    `mapstructure:"DB_MAX_OPEN_CONNS"`

	RedisURL            string        `mapstructure:"REDIS_URL"`
	SessionTTL          time.Duration `mapstructure:"SESSION_TTL"`
	SessionCookieSecure bool          `mapstructure:"SESSION_COOKIE_SECURE"`

	ClinicOwnerEmail string        `mapstructure:"CLINIC_OWNER_EMAIL"`
	EmailUser        string        `mapstructure:"EMAIL_USER"`
	EmailPass        string        `mapstructure:"EMAIL_PASS"`
	SMTPHost         string        `mapstructure:"SMTP_HOST"`
	SMTPPort         int           `mapstructure:"SMTP_PORT"`
	SMTPTimeout      time.Duration `mapstructure:"SMTP_TIMEOUT"`
	EmailFromName    string        `mapstructure:"EMAIL_FROM_NAME"`

	JWTSigningKey string `mapstructure:"JWT_SIGNING_KEY"`

	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`
	AppName   string `mapstructure:"APP_NAME"`
}

var keys = []string{
	"PORT", "ENV",
	"DB_DSN", "DB_MAX_OPEN_CONNS",
	"REDIS_URL", "SESSION_TTL", "SESSION_COOKIE_SECURE",
	"CLINIC_OWNER_EMAIL", "EMAIL_USER", "EMAIL_PASS", "SMTP_HOST", "SMTP_PORT", "SMTP_TIMEOUT", "EMAIL_FROM_NAME",
	"JWT_SIGNING_KEY",
	"REQUEST_TIMEOUT",
	"LOG_LEVEL", "LOG_FORMAT", "APP_NAME",
}

// Load lee env (y .env si existe). DB_DSN y REDIS_URL son opcionales:
// sin ellos el router usa stores in-memory (modo dev).
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("SESSION_TTL", "30m")
	v.SetDefault("SESSION_COOKIE_SECURE", false)
	v.SetDefault("SMTP_HOST", "smtp.gmail.com")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_TIMEOUT", "10s")
	v.SetDefault("EMAIL_FROM_NAME", "Veterinary Clinic Support")
	v.SetDefault("REQUEST_TIMEOUT", "15s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("APP_NAME", "vet-clinic")

	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	// .env es opcional
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) Addr() string {
	return ":" + strings.TrimPrefix(strings.TrimSpace(c.Port), ":")
}

func (c *Config) Validate() error {
	if c.IsProduction() && strings.TrimSpace(c.JWTSigningKey) == "" {
		return fmt.Errorf("JWT_SIGNING_KEY is required in production")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	if c.SMTPTimeout <= 0 {
		return fmt.Errorf("SMTP_TIMEOUT must be positive, got %s", c.SMTPTimeout)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	}
	return nil
}
