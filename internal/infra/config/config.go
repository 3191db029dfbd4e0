package config

import (
	"fmt"
	"os"
	"strconv"
	"strings" // For enum normalization
	"time"

	"github.com/joho/godotenv"
)

// Config source backends.
const (
	SourceFiles  = "files"
	SourceEnv    = "env"
	SourceHybrid = "hybrid"
)

// Session store drivers.
const (
	StoreFile     = "file"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

// Supported platforms.
const (
	PlatformInstagram = "instagram"
	PlatformTelegram  = "telegram"
)

// AppConfig holds all configuration for the application.
// It is built once by Load and passed by value-pointer into constructors; nothing mutates it.
type AppConfig struct {
	LogLevel    string
	Environment string

	Platform       string
	PlatformAPIURL string // Empty means the platform default
	RequestTimeout time.Duration

	Source SourceConfig

	DelayMin           time.Duration
	DelayMax           time.Duration
	CycleDelay         time.Duration
	MaxRetries         int
	RateLimitBackoff   time.Duration // Multiplied by the attempt number
	ClientErrorBackoff time.Duration // Flat
	MaxMessageLength   int

	SessionStore SessionStoreConfig

	HealthEnabled bool
	Port          int

	KeepAliveURL  string // Empty disables the pinger
	KeepAliveSpec string
}

// SourceConfig selects where the credential, destinations and message come from.
type SourceConfig struct {
	Backend         string
	CredentialFile  string
	DestinationFile string
	MessageFile     string
	CredentialEnv   string // Values, not variable names
	DestinationsEnv string
	MessageEnv      string
}

// SessionStoreConfig configures persistence of the authenticated session blob.
type SessionStoreConfig struct {
	Driver      string
	FilePath    string
	DatabaseURL string
	RedisAddr   string
	RedisDB     int
	Key         string
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// Attempt to load .env file. Errors are ignored if the file doesn't exist.
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.LogLevel = strings.ToLower(getenv("LOG_LEVEL", "info"))
	cfg.Environment = strings.ToLower(getenv("ENVIRONMENT", "development"))

	cfg.Platform = strings.ToLower(getenv("PLATFORM", PlatformInstagram))
	if cfg.Platform != PlatformInstagram && cfg.Platform != PlatformTelegram {
		return nil, fmt.Errorf("invalid PLATFORM %q: want %s or %s", cfg.Platform, PlatformInstagram, PlatformTelegram)
	}
	cfg.PlatformAPIURL = os.Getenv("PLATFORM_API_URL")
	if cfg.RequestTimeout, err = durationEnv("REQUEST_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}

	cfg.Source = SourceConfig{
		Backend:         strings.ToLower(getenv("CONFIG_SOURCE", SourceFiles)),
		CredentialFile:  getenv("SESSION_ID_FILE", "session.txt"),
		DestinationFile: getenv("THREAD_FILE", "gc.txt"),
		MessageFile:     getenv("MESSAGE_FILE", "msg.txt"),
		CredentialEnv:   os.Getenv("SESSION_ID"),
		DestinationsEnv: os.Getenv("THREAD_IDS"),
		MessageEnv:      os.Getenv("MESSAGE"),
	}
	switch cfg.Source.Backend {
	case SourceFiles, SourceEnv, SourceHybrid:
	default:
		return nil, fmt.Errorf("invalid CONFIG_SOURCE %q", cfg.Source.Backend)
	}

	if cfg.DelayMin, err = durationEnv("DELAY_MIN", 60*time.Second); err != nil {
		return nil, err
	}
	if cfg.DelayMax, err = durationEnv("DELAY_MAX", 120*time.Second); err != nil {
		return nil, err
	}
	if cfg.DelayMin < 0 || cfg.DelayMax < cfg.DelayMin {
		return nil, fmt.Errorf("invalid delay range %s-%s", cfg.DelayMin, cfg.DelayMax)
	}
	if cfg.CycleDelay, err = durationEnv("CYCLE_DELAY", 300*time.Second); err != nil {
		return nil, err
	}
	if cfg.MaxRetries, err = intEnv("MAX_RETRIES", 3); err != nil {
		return nil, err
	}
	if cfg.MaxRetries < 0 {
		return nil, fmt.Errorf("invalid MAX_RETRIES: %d", cfg.MaxRetries)
	}
	if cfg.RateLimitBackoff, err = durationEnv("RATE_LIMIT_BACKOFF", 120*time.Second); err != nil {
		return nil, err
	}
	if cfg.ClientErrorBackoff, err = durationEnv("CLIENT_ERROR_BACKOFF", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.MaxMessageLength, err = intEnv("MAX_MESSAGE_LENGTH", 1000); err != nil {
		return nil, err
	}
	if cfg.MaxMessageLength <= 0 {
		return nil, fmt.Errorf("invalid MAX_MESSAGE_LENGTH: %d", cfg.MaxMessageLength)
	}

	cfg.SessionStore = SessionStoreConfig{
		Driver:      strings.ToLower(getenv("SESSION_STORE", StoreFile)),
		FilePath:    getenv("SESSION_FILE", "session.json"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisAddr:   getenv("REDIS_ADDR", "localhost:6379"),
		Key:         getenv("SESSION_KEY", "default"),
	}
	if cfg.SessionStore.RedisDB, err = intEnv("REDIS_DB", 0); err != nil {
		return nil, err
	}
	switch cfg.SessionStore.Driver {
	case StoreFile:
	case StorePostgres:
		if cfg.SessionStore.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is not set (required by SESSION_STORE=postgres)")
		}
	case StoreRedis:
	default:
		return nil, fmt.Errorf("invalid SESSION_STORE %q", cfg.SessionStore.Driver)
	}

	cfg.HealthEnabled, err = strconv.ParseBool(getenv("HEALTH_ENABLED", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid HEALTH_ENABLED: %w", err)
	}
	if cfg.Port, err = intEnv("PORT", 10000); err != nil {
		return nil, err
	}

	cfg.KeepAliveURL = os.Getenv("KEEPALIVE_URL")
	cfg.KeepAliveSpec = getenv("KEEPALIVE_SPEC", "@every 300s")

	return cfg, nil
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

// durationEnv accepts Go duration strings ("90s", "2m") or bare integers meaning seconds.
func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
