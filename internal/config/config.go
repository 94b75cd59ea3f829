package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	defaultHTTPAddr      = ":8080"
	defaultDatabaseURL   = "hubal.db"
	defaultJWTSecret     = "change-me-jwt-secret"
	defaultJWTTTL        = "24h"
	defaultLogLevel      = "info"
	defaultRateRPS       = "20"
	defaultRateBurst     = "40"
	defaultAIGatewayURL  = "https://ai.gateway.lovable.dev/v1/chat/completions"
	defaultAIModel       = "google/gemini-2.5-flash-image-preview"
	defaultAITimeout     = "120s"
	defaultAIRateRPS     = "0.2"
	defaultAIRateBurst   = "3"
	defaultBucket        = "designer-images"
	defaultUploadsDir    = "./uploads"
	defaultUploadsURL    = "/static/uploads"
	defaultOTELService   = "hubal-api"
	defaultOTELEndpoint  = "localhost:4317"
	defaultOTELSampleRat = "1.0"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	DatabaseURL string

	JWTSecret string
	JWTTTL    time.Duration

	// InternalToken guards /metrics and /internal endpoints.
	InternalToken string

	LogLevel  string
	LogPretty bool

	CORSAllowedOrigins []string
	RateRPS            float64
	RateBurst          int

	AI      AIConfig
	Redis   RedisConfig
	Storage StorageConfig
	Search  SearchConfig
	OTEL    OTELConfig
}

type AIConfig struct {
	GatewayURL string
	APIKey     string
	Model      string
	Timeout    time.Duration
	RateRPS    float64
	RateBurst  int
}

type RedisConfig struct {
	URL string
}

type StorageConfig struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	UseSSL     bool
	Bucket     string
	PublicURL  string
	UploadsDir string
	UploadsURL string
}

// UseObjectStore reports whether uploads go to S3-compatible storage
// instead of the local disk.
func (s StorageConfig) UseObjectStore() bool {
	return s.Endpoint != ""
}

type SearchConfig struct {
	MeiliURL    string
	MeiliAPIKey string
}

type OTELConfig struct {
	Enabled     bool
	Endpoint    string
	Insecure    bool
	ServiceName string
	SampleRatio float64
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = strings.TrimSpace(os.Getenv("ENV"))
	}
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.HTTPAddr = strings.TrimSpace(getEnv("HTTP_ADDR", defaultHTTPAddr))
	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseURL))
	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))
	cfg.InternalToken = strings.TrimSpace(os.Getenv("INTERNAL_TOKEN"))
	cfg.LogLevel = strings.TrimSpace(getEnv("LOG_LEVEL", defaultLogLevel))
	cfg.LogPretty = parseBoolEnv("LOG_PRETTY", "false")
	cfg.CORSAllowedOrigins = splitCSV(os.Getenv("CORS_ALLOWED_ORIGINS"))

	var err error
	if cfg.JWTTTL, err = parseDurationEnv("JWT_TTL", defaultJWTTTL); err != nil {
		return nil, err
	}
	if cfg.RateRPS, err = parseFloatEnv("RATE_RPS", defaultRateRPS); err != nil {
		return nil, err
	}
	if cfg.RateBurst, err = parseIntEnv("RATE_BURST", defaultRateBurst); err != nil {
		return nil, err
	}

	cfg.AI.GatewayURL = strings.TrimSpace(getEnv("AI_GATEWAY_URL", defaultAIGatewayURL))
	cfg.AI.APIKey = strings.TrimSpace(os.Getenv("AI_API_KEY"))
	cfg.AI.Model = strings.TrimSpace(getEnv("AI_MODEL", defaultAIModel))
	if cfg.AI.Timeout, err = parseDurationEnv("AI_TIMEOUT", defaultAITimeout); err != nil {
		return nil, err
	}
	if cfg.AI.RateRPS, err = parseFloatEnv("AI_RATE_RPS", defaultAIRateRPS); err != nil {
		return nil, err
	}
	if cfg.AI.RateBurst, err = parseIntEnv("AI_RATE_BURST", defaultAIRateBurst); err != nil {
		return nil, err
	}

	cfg.Redis.URL = strings.TrimSpace(os.Getenv("REDIS_URL"))

	cfg.Storage.Endpoint = strings.TrimSpace(os.Getenv("S3_ENDPOINT"))
	cfg.Storage.AccessKey = strings.TrimSpace(os.Getenv("S3_ACCESS_KEY"))
	cfg.Storage.SecretKey = strings.TrimSpace(os.Getenv("S3_SECRET_KEY"))
	cfg.Storage.UseSSL = parseBoolEnv("S3_USE_SSL", "true")
	cfg.Storage.Bucket = strings.TrimSpace(getEnv("S3_BUCKET", defaultBucket))
	cfg.Storage.PublicURL = strings.TrimRight(strings.TrimSpace(os.Getenv("S3_PUBLIC_URL")), "/")
	cfg.Storage.UploadsDir = strings.TrimSpace(getEnv("UPLOADS_DIR", defaultUploadsDir))
	cfg.Storage.UploadsURL = strings.TrimRight(strings.TrimSpace(getEnv("UPLOADS_URL_BASE", defaultUploadsURL)), "/")

	cfg.Search.MeiliURL = strings.TrimSpace(os.Getenv("MEILI_URL"))
	cfg.Search.MeiliAPIKey = strings.TrimSpace(os.Getenv("MEILI_API_KEY"))

	cfg.OTEL.Enabled = parseBoolEnv("OTEL_ENABLED", "false")
	cfg.OTEL.Endpoint = strings.TrimSpace(getEnv("OTEL_ENDPOINT", defaultOTELEndpoint))
	cfg.OTEL.Insecure = parseBoolEnv("OTEL_INSECURE", "true")
	cfg.OTEL.ServiceName = strings.TrimSpace(getEnv("OTEL_SERVICE_NAME", defaultOTELService))
	if cfg.OTEL.SampleRatio, err = parseFloatEnv("OTEL_SAMPLE_RATIO", defaultOTELSampleRat); err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	log.Info().
		Str("env", cfg.AppEnv).
		Str("addr", cfg.HTTPAddr).
		Bool("redis", cfg.Redis.URL != "").
		Bool("object_store", cfg.Storage.UseObjectStore()).
		Bool("search", cfg.Search.MeiliURL != "").
		Bool("otel", cfg.OTEL.Enabled).
		Msg("config loaded")

	return cfg, nil
}

// MustLoad is Load for main packages.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	return cfg
}

// IsProdLike reports whether the config targets production.
func (c *Config) IsProdLike() bool {
	return isProdLike(c.AppEnv)
}

func validateConfig(cfg *Config) error {
	if cfg.HTTPAddr == "" {
		return fmt.Errorf("HTTP_ADDR must not be empty")
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if cfg.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	if cfg.RateRPS <= 0 {
		return fmt.Errorf("RATE_RPS must be > 0")
	}
	if cfg.RateBurst <= 0 {
		return fmt.Errorf("RATE_BURST must be > 0")
	}
	if cfg.AI.Timeout <= 0 {
		return fmt.Errorf("AI_TIMEOUT must be > 0")
	}
	if cfg.AI.RateRPS <= 0 || cfg.AI.RateBurst <= 0 {
		return fmt.Errorf("AI_RATE_RPS and AI_RATE_BURST must be > 0")
	}
	if cfg.AI.GatewayURL == "" || cfg.AI.Model == "" {
		return fmt.Errorf("AI_GATEWAY_URL and AI_MODEL must not be empty")
	}
	if cfg.Storage.Bucket == "" {
		return fmt.Errorf("S3_BUCKET must not be empty")
	}
	if cfg.Storage.UseObjectStore() && (cfg.Storage.AccessKey == "" || cfg.Storage.SecretKey == "") {
		return fmt.Errorf("S3_ACCESS_KEY and S3_SECRET_KEY are required when S3_ENDPOINT is set")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return fmt.Errorf("OTEL_SAMPLE_RATIO must be within [0,1]")
	}

	if isProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		if cfg.AI.APIKey == "" {
			return fmt.Errorf("in prod/release AI_API_KEY must be set")
		}
		if cfg.InternalToken == "" {
			return fmt.Errorf("in prod/release INTERNAL_TOKEN must be set")
		}
		if len(cfg.CORSAllowedOrigins) == 0 {
			return fmt.Errorf("in prod/release CORS_ALLOWED_ORIGINS must be set")
		}
	}

	return nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseIntEnv(name, fallback string) (int, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return n, nil
}

func parseFloatEnv(name, fallback string) (float64, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return f, nil
}

func parseBoolEnv(name, fallback string) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(name, fallback)))
	return value == "1" || value == "true" || value == "yes" || value == "on"
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
