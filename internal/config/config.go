package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/fjod/order-widget/internal/cart"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. WIDGET_ORDER_ENDPOINT.
const EnvPrefix = "WIDGET"

type Config struct {
	App     AppConfig
	HTTP    HTTPConfig
	Order   OrderConfig
	Session SessionConfig
	Redis   RedisConfig
	Log     LogConfig
}

type AppConfig struct {
	Name string
	Env  string
	Port string
}

type HTTPConfig struct {
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	MaxBodySize     int64
}

// OrderConfig covers the submission guard and the intake endpoint.
type OrderConfig struct {
	Endpoint           string
	Timeout            time.Duration
	RateLimit          time.Duration
	MaxRows            int
	MaxPayloadBytes    int
	MaxQty             int
	PricePolicy        string
	Timezone           string
	BreakerEnabled     bool
	BreakerFailures    int
	BreakerOpenTimeout time.Duration
}

type SessionConfig struct {
	IdleTTL         time.Duration
	CleanupInterval time.Duration
	CookieName      string
	CookieSecure    bool
}

type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

type LogConfig struct {
	Level  string
	Format string
	Output string
}

// Load reads configuration.
// Priority (highest to lowest):
// 1. Environment variables with WIDGET_ prefix (e.g., WIDGET_ORDER_ENDPOINT)
// 2. .env file (outside production)
// 3. config.toml
// 4. Built-in defaults
func Load() (*Config, error) {
	if !strings.EqualFold(os.Getenv(EnvPrefix+"_APP_ENV"), "production") {
		// a missing .env is fine
		_ = godotenv.Load()
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return FromViper(v)
}

// FromViper builds a Config from v, applying defaults and env overrides.
func FromViper(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		HTTP: HTTPConfig{
			RequestTimeout:  v.GetDuration("http.request_timeout"),
			ShutdownTimeout: v.GetDuration("http.shutdown_timeout"),
			ReadTimeout:     v.GetDuration("http.read_timeout"),
			WriteTimeout:    v.GetDuration("http.write_timeout"),
			IdleTimeout:     v.GetDuration("http.idle_timeout"),
			MaxBodySize:     v.GetInt64("http.max_body_size"),
		},
		Order: OrderConfig{
			Endpoint:           v.GetString("order.endpoint"),
			Timeout:            v.GetDuration("order.timeout"),
			RateLimit:          v.GetDuration("order.rate_limit"),
			MaxRows:            v.GetInt("order.max_rows"),
			MaxPayloadBytes:    v.GetInt("order.max_payload_bytes"),
			MaxQty:             v.GetInt("order.max_qty"),
			PricePolicy:        v.GetString("order.price_policy"),
			Timezone:           v.GetString("order.timezone"),
			BreakerEnabled:     v.GetBool("order.breaker_enabled"),
			BreakerFailures:    v.GetInt("order.breaker_failures"),
			BreakerOpenTimeout: v.GetDuration("order.breaker_open_timeout"),
		},
		Session: SessionConfig{
			IdleTTL:         v.GetDuration("session.idle_ttl"),
			CleanupInterval: v.GetDuration("session.cleanup_interval"),
			CookieName:      v.GetString("session.cookie_name"),
			CookieSecure:    v.GetBool("session.cookie_secure"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "order-widget")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")

	v.SetDefault("http.request_timeout", 30*time.Second)
	v.SetDefault("http.shutdown_timeout", 10*time.Second)
	v.SetDefault("http.read_timeout", 10*time.Second)
	v.SetDefault("http.write_timeout", 40*time.Second)
	v.SetDefault("http.idle_timeout", 60*time.Second)
	v.SetDefault("http.max_body_size", 1<<20)

	v.SetDefault("order.timeout", 15*time.Second)
	v.SetDefault("order.rate_limit", 1500*time.Millisecond)
	v.SetDefault("order.max_rows", 50)
	v.SetDefault("order.max_payload_bytes", 16000)
	v.SetDefault("order.max_qty", 99)
	v.SetDefault("order.price_policy", string(cart.PriceLatest))
	v.SetDefault("order.timezone", "Local")
	v.SetDefault("order.breaker_enabled", false)
	v.SetDefault("order.breaker_failures", 5)
	v.SetDefault("order.breaker_open_timeout", 30*time.Second)

	v.SetDefault("session.idle_ttl", 30*time.Minute)
	v.SetDefault("session.cleanup_interval", time.Minute)
	v.SetDefault("session.cookie_name", "order_session")
	v.SetDefault("session.cookie_secure", false)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.output", "stdout")
}

func (c *Config) validate() error {
	if c.Order.Endpoint == "" {
		return errors.New("order.endpoint is required")
	}
	u, err := url.Parse(c.Order.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("order.endpoint must be an absolute http(s) URL, got %q", c.Order.Endpoint)
	}
	if c.Order.Timeout <= 0 {
		return errors.New("order.timeout must be positive")
	}
	if c.Order.RateLimit < 0 {
		return errors.New("order.rate_limit must not be negative")
	}
	if c.Order.MaxRows <= 0 || c.Order.MaxPayloadBytes <= 0 {
		return errors.New("order.max_rows and order.max_payload_bytes must be positive")
	}
	if c.Order.MaxQty <= 0 {
		return errors.New("order.max_qty must be positive")
	}
	if _, err := cart.ParsePricePolicy(c.Order.PricePolicy); err != nil {
		return fmt.Errorf("order.price_policy: %w", err)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("order.timezone: %w", err)
	}
	if c.Session.CookieName == "" {
		return errors.New("session.cookie_name is required")
	}
	return nil
}

// Location resolves the time zone order timestamps are written in.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Order.Timezone)
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
