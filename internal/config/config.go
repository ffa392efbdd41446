// Package config provides configuration management for the application.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Security   SecurityConfig   `mapstructure:"security"`
	App        AppConfig        `mapstructure:"app"`
	CheckIn    CheckInConfig    `mapstructure:"checkin"`
	RedFlag    RedFlagConfig    `mapstructure:"redflag"`
	Alert      AlertConfig      `mapstructure:"alert"`
	Email      EmailConfig      `mapstructure:"email"`
	SMS        SMSConfig        `mapstructure:"sms"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"`
	Middleware MiddlewareConfig `mapstructure:"middleware"`
}

type ServerConfig struct {
	Port         string `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// SecurityConfig holds shared secrets. The first token secret signs; all of them verify.
type SecurityConfig struct {
	TokenSecrets     []string `mapstructure:"token_secrets"`
	TokenTTLHours    int      `mapstructure:"token_ttl_hours"`
	CronSecret       string   `mapstructure:"cron_secret"`
	InboundSMSSecret string   `mapstructure:"inbound_sms_secret"`
}

type AppConfig struct {
	BaseURL             string `mapstructure:"base_url"`
	ExpandedCareEnabled bool   `mapstructure:"expanded_care_enabled"`
}

type CheckInConfig struct {
	DefaultLimit int `mapstructure:"default_limit"`
	MaxLimit     int `mapstructure:"max_limit"`
	DryRunLimit  int `mapstructure:"dry_run_limit"`
	MaxAttempts  int `mapstructure:"max_attempts"`
	Workers      int `mapstructure:"workers"`
	SendTimeout  int `mapstructure:"send_timeout"`
}

type RedFlagConfig struct {
	CacheTTLMinutes int `mapstructure:"cache_ttl_minutes"`
}

type AlertConfig struct {
	WebhookURL  string `mapstructure:"webhook_url"`
	TimeoutMS   int    `mapstructure:"timeout_ms"`
	DedupeHours int    `mapstructure:"dedupe_hours"`
}

type EmailConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Region  string `mapstructure:"region"`
	From    string `mapstructure:"from"`
	ReplyTo string `mapstructure:"reply_to"`
}

const (
	SMSProviderWebhook = "webhook"
	SMSProviderSNS     = "sns"
)

type SMSConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Provider string        `mapstructure:"provider"`
	Webhook  WebhookConfig `mapstructure:"webhook"`
	Region   string        `mapstructure:"region"`
	SenderID string        `mapstructure:"sender_id"`
}

type WebhookConfig struct {
	URL            string               `mapstructure:"url"`
	AuthKey        string               `mapstructure:"auth_key"`
	Timeout        int                  `mapstructure:"timeout"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

type CircuitBreakerConfig struct {
	MaxRequests      uint32  `mapstructure:"max_requests"`
	Interval         int     `mapstructure:"interval"`
	Timeout          int     `mapstructure:"timeout"`
	FailureRatio     float64 `mapstructure:"failure_ratio"`
	ConsecutiveFails uint32  `mapstructure:"consecutive_fails"`
}

// SchedulerConfig drives the optional in-process dispatch loop. External cron is the
// primary trigger, so it is off by default.
type SchedulerConfig struct {
	Enabled         bool `mapstructure:"enabled"`
	IntervalMinutes int  `mapstructure:"interval_minutes"`
	BatchSize       int  `mapstructure:"batch_size"`
}

type MiddlewareConfig struct {
	RateLimit      int      `mapstructure:"rate_limit"`
	RateLimitBurst int      `mapstructure:"rate_limit_burst"`
	EnableCORS     bool     `mapstructure:"enable_cors"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	RequestTimeout int      `mapstructure:"request_timeout"`
}

// envOnly are keys that usually come from the environment and have no default to let
// AutomaticEnv discover them.
var envOnly = []string{
	"security.token_secrets",
	"security.cron_secret",
	"security.inbound_sms_secret",
	"app.base_url",
	"alert.webhook_url",
	"sms.webhook.url",
	"sms.webhook.auth_key",
	"email.from",
	"database.host",
	"database.user",
	"database.password",
	"database.dbname",
	"redis.host",
	"redis.password",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 30)
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("security.token_ttl_hours", 30*24)
	v.SetDefault("app.expanded_care_enabled", false)
	v.SetDefault("checkin.default_limit", 50)
	v.SetDefault("checkin.max_limit", 1000)
	v.SetDefault("checkin.dry_run_limit", 20)
	v.SetDefault("checkin.max_attempts", 3)
	v.SetDefault("checkin.workers", 4)
	v.SetDefault("checkin.send_timeout", 15)
	v.SetDefault("redflag.cache_ttl_minutes", 60)
	v.SetDefault("alert.timeout_ms", 2000)
	v.SetDefault("alert.dedupe_hours", 24)
	v.SetDefault("email.enabled", true)
	v.SetDefault("email.region", "us-east-1")
	v.SetDefault("sms.enabled", true)
	v.SetDefault("sms.provider", SMSProviderWebhook)
	v.SetDefault("sms.region", "us-east-1")
	v.SetDefault("sms.webhook.timeout", 10)
	v.SetDefault("sms.webhook.circuit_breaker.max_requests", 3)
	v.SetDefault("sms.webhook.circuit_breaker.interval", 60)
	v.SetDefault("sms.webhook.circuit_breaker.timeout", 60)
	v.SetDefault("sms.webhook.circuit_breaker.failure_ratio", 0.6)
	v.SetDefault("sms.webhook.circuit_breaker.consecutive_fails", 5)
	v.SetDefault("scheduler.enabled", false)
	v.SetDefault("scheduler.interval_minutes", 10)
	v.SetDefault("scheduler.batch_size", 50)
	v.SetDefault("middleware.rate_limit", 100)
	v.SetDefault("middleware.rate_limit_burst", 1000)
	v.SetDefault("middleware.enable_cors", true)
	v.SetDefault("middleware.allowed_origins", []string{"*"})
	v.SetDefault("middleware.request_timeout", 60)
}

// DefaultPath is read when CONFIG_PATH is unset.
const DefaultPath = "config.yaml"

// ResolvePath returns CONFIG_PATH or DefaultPath, or "" when that file does not exist so
// defaults and environment alone are used.
func ResolvePath() string {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = DefaultPath
	}
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

func newViper(configPath string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range envOnly {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return v, nil
}

// LoadConfig reads configPath (optional) and applies environment overrides such as
// SECURITY_TOKEN_SECRETS or APP_BASE_URL.
func LoadConfig(configPath string) (*Config, error) {
	v, err := newViper(configPath)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.Security.TokenSecrets = splitSecrets(config.Security.TokenSecrets)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// TriggerConfig is the subset the dispatch cron client needs.
type TriggerConfig struct {
	App      AppConfig      `mapstructure:"app"`
	Security SecurityConfig `mapstructure:"security"`
}

// LoadTriggerConfig reads the app and security sections with the same file and
// environment rules as LoadConfig, requiring only the base URL and cron secret.
func LoadTriggerConfig(configPath string) (*TriggerConfig, error) {
	v, err := newViper(configPath)
	if err != nil {
		return nil, err
	}

	var config TriggerConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	var errs []error
	if err := validateBaseURL(config.App.BaseURL); err != nil {
		errs = append(errs, err)
	}
	if strings.TrimSpace(config.Security.CronSecret) == "" {
		errs = append(errs, errors.New("security.cron_secret is required"))
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return &config, nil
}

func validateBaseURL(raw string) error {
	if u, err := url.Parse(raw); raw == "" || err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("app.base_url must be an absolute URL")
	}
	return nil
}

// splitSecrets accepts both YAML lists and comma-separated env values.
func splitSecrets(in []string) []string {
	var out []string
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if len(c.Security.TokenSecrets) == 0 {
		errs = append(errs, errors.New("security.token_secrets is required"))
	}
	if err := validateBaseURL(c.App.BaseURL); err != nil {
		errs = append(errs, err)
	}
	if c.CheckIn.MaxLimit <= 0 || c.CheckIn.DefaultLimit <= 0 {
		errs = append(errs, errors.New("checkin limits must be positive"))
	}
	if c.CheckIn.MaxAttempts <= 0 {
		errs = append(errs, errors.New("checkin.max_attempts must be positive"))
	}
	if c.SMS.Enabled {
		switch c.SMS.Provider {
		case SMSProviderWebhook:
			if c.SMS.Webhook.URL == "" {
				errs = append(errs, errors.New("sms.webhook.url is required for the webhook provider"))
			}
		case SMSProviderSNS:
		default:
			errs = append(errs, fmt.Errorf("unknown sms.provider %q", c.SMS.Provider))
		}
	}
	if c.Email.Enabled && c.Email.From == "" {
		errs = append(errs, errors.New("email.from is required when email is enabled"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// GetDSN returns PostgreSQL connection string.
func (d *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// Addr returns the host:port Redis address.
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

func (s *SecurityConfig) TokenTTL() time.Duration {
	return time.Duration(s.TokenTTLHours) * time.Hour
}

func (c *CheckInConfig) SendTimeoutDuration() time.Duration {
	return time.Duration(c.SendTimeout) * time.Second
}

func (a *AlertConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutMS) * time.Millisecond
}

func (a *AlertConfig) DedupeWindow() time.Duration {
	return time.Duration(a.DedupeHours) * time.Hour
}

func (r *RedFlagConfig) CacheTTL() time.Duration {
	return time.Duration(r.CacheTTLMinutes) * time.Minute
}
