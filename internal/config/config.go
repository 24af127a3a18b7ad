// Package config loads the pipeline configuration from a YAML file
// with environment variable overrides, so secrets can live in .env
// locally and in real env vars on ECS.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Server        ServerConfig       `yaml:"server"`
	Tracking      TrackingConfig     `yaml:"tracking"`
	Database      DatabaseConfig     `yaml:"database"`
	Redis         RedisConfig        `yaml:"redis"`
	SES           SESConfig          `yaml:"ses"`
	SMTP          SMTPConfig         `yaml:"smtp"`
	Telnyx        TelnyxConfig       `yaml:"telnyx"`
	Twilio        TwilioConfig       `yaml:"twilio"`
	SMS           SMSConfig          `yaml:"sms"`
	Push          PushConfig         `yaml:"push"`
	RateLimit     RateLimitConfig    `yaml:"rate_limit"`
	Notifications NotificationConfig `yaml:"notifications"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// GetHost returns the server host, with ECS detection.
func (c ServerConfig) GetHost() string {
	// On ECS/container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// Addr returns the host:port listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.GetHost(), c.Port)
}

// TrackingConfig holds the engagement tracking endpoints.
type TrackingConfig struct {
	Enabled bool `yaml:"enabled"`
	// Port for the standalone tracking server; 0 mounts the routes on
	// the main server instead.
	Port int `yaml:"port"`
	// BaseURL is the public URL injected into notification emails.
	BaseURL string `yaml:"base_url"`
	// DefaultRedirect is where click callbacks land when no explicit
	// destination is given.
	DefaultRedirect string `yaml:"default_redirect"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL          string `yaml:"url"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
}

// RedisConfig holds the Redis-backed rate limiter settings. When
// disabled the limiter falls back to in-process windows.
type RedisConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
}

// SESConfig holds AWS SES API configuration.
type SESConfig struct {
	Enabled        bool   `yaml:"enabled"`
	Region         string `yaml:"region"`
	AccessKey      string `yaml:"access_key"`
	SecretKey      string `yaml:"secret_key"`
	FromEmail      string `yaml:"from_email"`
	FromName       string `yaml:"from_name"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the configured timeout as a duration.
func (c SESConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SMTPConfig holds the fallback SMTP transport, also used by the
// email-to-SMS gateway broadcast.
type SMTPConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

// TelnyxConfig holds Telnyx SMS API configuration.
type TelnyxConfig struct {
	Enabled            bool   `yaml:"enabled"`
	APIKey             string `yaml:"api_key"`
	FromNumber         string `yaml:"from_number"`
	MessagingProfileID string `yaml:"messaging_profile_id"`
	TimeoutSeconds     int    `yaml:"timeout_seconds"`
}

// Timeout returns the configured timeout as a duration.
func (c TelnyxConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// TwilioConfig holds Twilio SMS API configuration.
type TwilioConfig struct {
	Enabled        bool   `yaml:"enabled"`
	AccountSID     string `yaml:"account_sid"`
	AuthToken      string `yaml:"auth_token"`
	FromNumber     string `yaml:"from_number"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the configured timeout as a duration.
func (c TwilioConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SMSConfig holds operator SMS delivery settings.
type SMSConfig struct {
	// OperatorNumber receives the lead alert texts.
	OperatorNumber string `yaml:"operator_number"`
	// GatewayEnabled turns on the email-to-SMS carrier broadcast as
	// the last link in the provider chain.
	GatewayEnabled bool `yaml:"gateway_enabled"`
	// Gateways overrides the built-in carrier gateway domains.
	Gateways []string `yaml:"gateways"`
}

// PushConfig holds Firebase Cloud Messaging settings.
type PushConfig struct {
	Enabled         bool   `yaml:"enabled"`
	ProjectID       string `yaml:"project_id"`
	CredentialsFile string `yaml:"credentials_file"`
	TimeoutSeconds  int    `yaml:"timeout_seconds"`
}

// Timeout returns the configured timeout as a duration.
func (c PushConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// RateLimitConfig holds the intake rate limit window.
type RateLimitConfig struct {
	WindowSeconds  int `yaml:"window_seconds"`
	MaxSubmissions int `yaml:"max_submissions"`
}

// Window returns the configured window as a duration.
func (c RateLimitConfig) Window() time.Duration {
	return time.Duration(c.WindowSeconds) * time.Second
}

// NotificationConfig holds who gets notified and how the messages are
// branded.
type NotificationConfig struct {
	AdminEmail   string `yaml:"admin_email"`
	CompanyName  string `yaml:"company_name"`
	CompanyPhone string `yaml:"company_phone"`
}

// Load reads and parses the configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Tracking.DefaultRedirect == "" {
		cfg.Tracking.DefaultRedirect = "https://ekosolar.com"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Redis.URL == "" {
		cfg.Redis.URL = "redis://localhost:6379/0"
	}
	if cfg.SES.TimeoutSeconds == 0 {
		cfg.SES.TimeoutSeconds = 30
	}
	if cfg.SES.Region == "" {
		cfg.SES.Region = "us-east-1"
	}
	if cfg.SMTP.Port == 0 {
		cfg.SMTP.Port = 587
	}
	if cfg.Telnyx.TimeoutSeconds == 0 {
		cfg.Telnyx.TimeoutSeconds = 15
	}
	if cfg.Twilio.TimeoutSeconds == 0 {
		cfg.Twilio.TimeoutSeconds = 15
	}
	if cfg.Push.TimeoutSeconds == 0 {
		cfg.Push.TimeoutSeconds = 10
	}
	if cfg.RateLimit.WindowSeconds == 0 {
		cfg.RateLimit.WindowSeconds = 60
	}
	if cfg.RateLimit.MaxSubmissions == 0 {
		cfg.RateLimit.MaxSubmissions = 3
	}
	if cfg.Notifications.CompanyName == "" {
		cfg.Notifications.CompanyName = "EkoSolar"
	}

	return &cfg, nil
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env
// vars.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Redis.URL = v
		cfg.Redis.Enabled = true
	}
	if v := os.Getenv("AWS_SES_ACCESS_KEY"); v != "" {
		cfg.SES.AccessKey = v
	}
	if v := os.Getenv("AWS_SES_SECRET_KEY"); v != "" {
		cfg.SES.SecretKey = v
	}
	if v := os.Getenv("AWS_SES_REGION"); v != "" {
		cfg.SES.Region = v
	}
	if v := os.Getenv("SMTP_HOST"); v != "" {
		cfg.SMTP.Host = v
	}
	if v := os.Getenv("SMTP_USERNAME"); v != "" {
		cfg.SMTP.Username = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		cfg.SMTP.Password = v
	}
	if v := os.Getenv("TELNYX_API_KEY"); v != "" {
		cfg.Telnyx.APIKey = v
	}
	if v := os.Getenv("TWILIO_ACCOUNT_SID"); v != "" {
		cfg.Twilio.AccountSID = v
	}
	if v := os.Getenv("TWILIO_AUTH_TOKEN"); v != "" {
		cfg.Twilio.AuthToken = v
	}
	if v := os.Getenv("OPERATOR_SMS_NUMBER"); v != "" {
		cfg.SMS.OperatorNumber = v
	}
	if v := os.Getenv("ADMIN_EMAIL"); v != "" {
		cfg.Notifications.AdminEmail = v
	}
	if v := os.Getenv("TRACKING_BASE_URL"); v != "" {
		cfg.Tracking.BaseURL = v
	}
	if v := os.Getenv("FCM_CREDENTIALS_FILE"); v != "" {
		cfg.Push.CredentialsFile = v
		cfg.Push.Enabled = true
	}

	return cfg, nil
}
