package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	pkgstrings "eureka/pkg/platform/strings"
)

// Server captures process-wide configuration.
type Server struct {
	Addr        string
	LogLevel    string
	LogFormat   string
	DatabaseURL string // empty selects in-memory stores

	Auth     AuthConfig
	Redis    RedisConfig
	Realtime RealtimeConfig
}

// AuthConfig configures token issuance and verification.
type AuthConfig struct {
	JWTSigningKey string
	JWTIssuer     string
	JWTAudience   string
	TokenTTL      time.Duration
}

// RedisConfig configures the token revocation store. An empty URL keeps
// revocations in memory.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// RealtimeConfig configures the websocket endpoint.
type RealtimeConfig struct {
	Path           string
	AllowedOrigins []string // empty accepts any origin
	PingInterval   time.Duration
	PongWait       time.Duration
	WriteTimeout   time.Duration
	// SendBuffer is the per-connection outbound queue length. Frames for a
	// connection whose queue is full are dropped.
	SendBuffer int
	// TargetNotifications sends new_notification only to the recipient's
	// connections instead of every connection.
	TargetNotifications bool
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	var errs []string
	dur := func(key string, def time.Duration) time.Duration {
		v := os.Getenv(key)
		if v == "" {
			return def
		}
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			errs = append(errs, fmt.Sprintf("%s: invalid duration %q", key, v))
			return def
		}
		return d
	}
	integer := func(key string, def int) int {
		v := os.Getenv(key)
		if v == "" {
			return def
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			errs = append(errs, fmt.Sprintf("%s: invalid integer %q", key, v))
			return def
		}
		return n
	}

	jwtSigningKey := os.Getenv("JWT_SECRET")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	cfg := Server{
		Addr:        envOr("EUREKA_ADDR", ":8080"),
		LogLevel:    envOr("LOG_LEVEL", "info"),
		LogFormat:   envOr("LOG_FORMAT", "json"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Auth: AuthConfig{
			JWTSigningKey: jwtSigningKey,
			JWTIssuer:     envOr("JWT_ISSUER", "eureka"),
			JWTAudience:   envOr("JWT_AUDIENCE", "eureka"),
			TokenTTL:      dur("TOKEN_TTL", 7*24*time.Hour),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     integer("REDIS_POOL_SIZE", 10),
			MinIdleConns: integer("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  dur("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  dur("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: dur("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Realtime: RealtimeConfig{
			Path:                envOr("REALTIME_PATH", "/ws"),
			AllowedOrigins:      pkgstrings.Dedupe(strings.Split(os.Getenv("REALTIME_ALLOWED_ORIGINS"), ","), pkgstrings.TrimLower),
			PingInterval:        dur("REALTIME_PING_INTERVAL", 30*time.Second),
			WriteTimeout:        dur("REALTIME_WRITE_TIMEOUT", 10*time.Second),
			SendBuffer:          integer("REALTIME_SEND_BUFFER", 64),
			TargetNotifications: os.Getenv("REALTIME_TARGET_NOTIFICATIONS") == "true",
		},
	}
	// a pong must arrive before the next ping is due
	cfg.Realtime.PongWait = cfg.Realtime.PingInterval * 2

	if !strings.HasPrefix(cfg.Realtime.Path, "/") {
		errs = append(errs, fmt.Sprintf("REALTIME_PATH: must start with '/', got %q", cfg.Realtime.Path))
	}
	if len(errs) > 0 {
		return Server{}, fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	return cfg, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
