package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App       AppConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Logger    LoggerConfig
	Auth      AuthConfig
	Client    ClientConfig
	RateLimit RateLimitConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines token lifecycle parameters.
type AuthConfig struct {
	JWTSecret         string
	AccessTokenTTLMin int
	WarningWindowMin  int
	CookieName        string
	CookieSecure      bool
	LoginPath         string
	LandingPath       string
}

// ClientConfig tunes the client-side session monitor.
type ClientConfig struct {
	MonitorIntervalSeconds int
	RefreshTimeoutSeconds  int
}

// RateLimitConfig bounds request rates on the auth endpoints.
type RateLimitConfig struct {
	Enabled       bool
	Requests      int
	WindowSeconds int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "flight-auth-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:         getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMin: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 30),
			WarningWindowMin:  getEnvAsInt("AUTH_WARNING_WINDOW_MINUTES", 5),
			CookieName:        getEnv("AUTH_COOKIE_NAME", "access_token"),
			CookieSecure:      getEnvAsBool("AUTH_COOKIE_SECURE", false),
			LoginPath:         getEnv("AUTH_LOGIN_PATH", "/login"),
			LandingPath:       getEnv("AUTH_LANDING_PATH", "/flights"),
		},
		Client: ClientConfig{
			MonitorIntervalSeconds: getEnvAsInt("CLIENT_MONITOR_INTERVAL_SECONDS", 30),
			RefreshTimeoutSeconds:  getEnvAsInt("CLIENT_REFRESH_TIMEOUT_SECONDS", 10),
		},
		RateLimit: RateLimitConfig{
			Enabled:       getEnvAsBool("RATE_LIMIT_ENABLED", true),
			Requests:      getEnvAsInt("RATE_LIMIT_REQUESTS", 30),
			WindowSeconds: getEnvAsInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		},
	}

	if err := cfg.Auth.Validate(cfg.App.Env); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects signing or window misconfiguration. Called at startup;
// these are the only fatal auth errors.
func (a AuthConfig) Validate(env string) error {
	if a.JWTSecret == "" {
		return fmt.Errorf("AUTH_JWT_SECRET must be set")
	}
	if env != "development" && a.JWTSecret == "dev-secret" {
		return fmt.Errorf("AUTH_JWT_SECRET must not use the development default in %s", env)
	}
	if a.AccessTokenTTLMin <= 0 {
		return fmt.Errorf("AUTH_ACCESS_TOKEN_TTL_MINUTES must be positive")
	}
	if a.WarningWindowMin <= 0 || a.WarningWindowMin >= a.AccessTokenTTLMin {
		return fmt.Errorf("AUTH_WARNING_WINDOW_MINUTES must be positive and shorter than the token TTL")
	}
	return nil
}

// TTL returns the access token time-to-live.
func (a AuthConfig) TTL() time.Duration {
	return time.Duration(a.AccessTokenTTLMin) * time.Minute
}

// WarningWindow returns how long before expiry the client should refresh.
func (a AuthConfig) WarningWindow() time.Duration {
	return time.Duration(a.WarningWindowMin) * time.Minute
}

// CookieMaxAge returns the cookie lifetime in seconds, matching the token TTL.
func (a AuthConfig) CookieMaxAge() int {
	return a.AccessTokenTTLMin * 60
}

// MonitorInterval returns the client polling cadence.
func (c ClientConfig) MonitorInterval() time.Duration {
	return time.Duration(c.MonitorIntervalSeconds) * time.Second
}

// RefreshTimeout bounds the client refresh call.
func (c ClientConfig) RefreshTimeout() time.Duration {
	return time.Duration(c.RefreshTimeoutSeconds) * time.Second
}

// Window returns the rate limit window duration.
func (r RateLimitConfig) Window() time.Duration {
	return time.Duration(r.WindowSeconds) * time.Second
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
