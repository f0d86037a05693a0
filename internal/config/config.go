package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/bandar-cart/internal/i18n"
	"github.com/noah-isme/bandar-cart/internal/pricing"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	RedisURL           string
	CORSAllowedOrigins []string

	CartStorageKey        string
	CartTTL               time.Duration
	CartIdleTimeout       time.Duration
	DeliveryFee           pricing.Money
	FreeShippingThreshold int
	FeeMode               pricing.FeeMode
	Currency              string
	DefaultLanguage       i18n.Language
	PlaceholderImage      string

	SessionHeader       string
	SessionCookie       string
	SessionCookieSecure bool

	CheckoutChannel     string
	CheckoutKey         string
	CheckoutRedirectURL string
	CheckoutPhone       string
	CheckoutMessageURL  string
	CheckoutSnapshotTTL time.Duration

	EventsStream string

	RateLimitWindow time.Duration
	RateLimitMax    int
	BodyLimitBytes  int64

	Obs Obs
}

// Obs groups logging, metrics and tracing settings.
type Obs struct {
	LogFormat        string
	LogLevel         string
	MetricsNamespace string
	MetricsEnabled   bool
	MetricsBuckets   string
	TracingEnabled   bool
	TracingExporter  string
	OTLPEndpoint     string
	SamplingRatio    float64
	ReadyTimeout     time.Duration
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		RedisURL:           strings.TrimSpace(k.String("REDIS_URL")),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),

		CartStorageKey:        valueOrDefault(k.String("CART_STORAGE_KEY"), "bandarStoreCart"),
		CartTTL:               parseDuration(k.String("CART_TTL"), "720h"),
		CartIdleTimeout:       parseDuration(k.String("CART_IDLE_TIMEOUT"), "30m"),
		FreeShippingThreshold: parseInt(k.String("CART_FREE_SHIPPING_THRESHOLD"), 5),
		Currency:              strings.ToUpper(valueOrDefault(k.String("CART_CURRENCY"), "SAR")),
		DefaultLanguage:       i18n.Parse(k.String("CART_DEFAULT_LANGUAGE"), i18n.Arabic),
		PlaceholderImage:      valueOrDefault(k.String("CART_PLACEHOLDER_IMAGE"), "https://via.placeholder.com/300"),

		SessionHeader:       valueOrDefault(k.String("SESSION_HEADER"), "X-Cart-Session"),
		SessionCookie:       valueOrDefault(k.String("SESSION_COOKIE"), "cart_session"),
		SessionCookieSecure: parseBool(k.String("SESSION_COOKIE_SECURE")),

		CheckoutChannel:     strings.ToLower(valueOrDefault(k.String("CHECKOUT_CHANNEL"), "redirect")),
		CheckoutKey:         valueOrDefault(k.String("CART_CHECKOUT_KEY"), "checkoutData"),
		CheckoutRedirectURL: valueOrDefault(k.String("CHECKOUT_REDIRECT_URL"), "checkout.html"),
		CheckoutPhone:       strings.TrimSpace(k.String("CHECKOUT_MESSAGE_PHONE")),
		CheckoutMessageURL:  valueOrDefault(k.String("CHECKOUT_MESSAGE_URL"), "https://wa.me/"),
		CheckoutSnapshotTTL: parseDuration(k.String("CHECKOUT_SNAPSHOT_TTL"), "30m"),

		EventsStream: valueOrDefault(k.String("EVENTS_STREAM"), "cart:events"),

		RateLimitWindow: parseDuration(k.String("RATE_LIMIT_WINDOW"), "1m"),
		RateLimitMax:    parseInt(k.String("RATE_LIMIT_MAX"), 120),
		BodyLimitBytes:  int64(parseInt(k.String("BODY_LIMIT_BYTES"), 64<<10)),

		Obs: Obs{
			LogFormat:        valueOrDefault(k.String("OBS_LOG_FORMAT"), "json"),
			LogLevel:         valueOrDefault(k.String("OBS_LOG_LEVEL"), "info"),
			MetricsNamespace: valueOrDefault(k.String("OBS_METRICS_NAMESPACE"), "cart"),
			MetricsEnabled:   parseBoolDefault(k.String("OBS_ENABLE_PROMETHEUS"), true),
			MetricsBuckets:   k.String("OBS_METRICS_BUCKETS_MS"),
			TracingEnabled:   parseBoolDefault(k.String("OBS_ENABLE_TRACING"), false),
			TracingExporter:  valueOrDefault(k.String("OBS_TRACING_EXPORTER"), "otlp"),
			OTLPEndpoint:     strings.TrimSpace(k.String("OBS_OTLP_ENDPOINT")),
			SamplingRatio:    parseFloat(k.String("OBS_TRACING_SAMPLING_RATIO"), 1.0),
			ReadyTimeout:     parseDuration(k.String("HEALTH_READY_TIMEOUT"), "300ms"),
		},
	}

	fee, err := decimal.NewFromString(valueOrDefault(k.String("CART_DELIVERY_FEE"), "2"))
	if err != nil {
		return nil, fmt.Errorf("CART_DELIVERY_FEE: %w", err)
	}
	if fee.IsNegative() {
		return nil, errors.New("CART_DELIVERY_FEE must not be negative")
	}
	cfg.DeliveryFee = pricing.NewMoney(fee)

	mode, err := pricing.ParseFeeMode(k.String("CART_FEE_MODE"))
	if err != nil {
		return nil, fmt.Errorf("CART_FEE_MODE: %w", err)
	}
	cfg.FeeMode = mode
	if cfg.FeeMode == pricing.FeeWaived && cfg.FreeShippingThreshold < 1 {
		return nil, errors.New("CART_FREE_SHIPPING_THRESHOLD must be positive")
	}

	switch cfg.CheckoutChannel {
	case "redirect":
	case "message":
		if cfg.CheckoutPhone == "" {
			return nil, errors.New("CHECKOUT_MESSAGE_PHONE is required for the message channel")
		}
	default:
		return nil, fmt.Errorf("CHECKOUT_CHANNEL %q is not supported", cfg.CheckoutChannel)
	}

	return cfg, nil
}

// Policy returns the pricing constants of the cart.
func (c *Config) Policy() pricing.Policy {
	return pricing.Policy{
		DeliveryFee:           c.DeliveryFee,
		FreeShippingThreshold: c.FreeShippingThreshold,
		FeeMode:               c.FeeMode,
	}
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseInt(value string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func parseFloat(value string, fallback float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return f
}

func parseBool(value string) bool {
	return parseBoolDefault(value, false)
}

func parseBoolDefault(value string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "t", "true", "yes", "on":
		return true
	case "0", "f", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

// MustLoad behaves like Load but panics on error. Useful for tests and command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
