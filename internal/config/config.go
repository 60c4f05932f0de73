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
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Directory    DirectoryConfig
	Auth         AuthConfig
	Logger       LoggerConfig
	Uploads      UploadConfig
	Assignment   AssignmentConfig
	Notification NotificationConfig
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

// PostgresConfig holds ticket-store connection values.
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

// DirectoryConfig points at the legacy identity store. The service only
// ever reads from it; passwords arrive as AES-CBC blobs produced by the
// PowerBuilder client, so the key and IV must match that deployment.
type DirectoryConfig struct {
	Driver     string
	DSN        string
	CipherKey  string
	CipherIV   string
	TimeoutSec int
}

// AuthConfig defines token parameters for the session layer.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// UploadConfig bounds ticket file attachments and the per-admin
// notification sound clips.
type UploadConfig struct {
	Dir               string
	SoundsDir         string
	MaxSizeBytes      int64
	SoundMaxSizeBytes int64
}

// AssignmentConfig bounds the workload snapshot round trips.
type AssignmentConfig struct {
	SnapshotTimeoutSeconds int
}

// NotificationConfig controls the offline queue and the optional webhook
// mirror of ticket lifecycle events.
type NotificationConfig struct {
	PendingTTLMinutes int
	WebhookURL        string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "helpdesk-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Directory: DirectoryConfig{
			Driver:     getEnv("DIRECTORY_DRIVER", "odbc"),
			DSN:        os.Getenv("DIRECTORY_DSN"),
			CipherKey:  getEnv("DIRECTORY_CIPHER_KEY", "prue Key12345678"),
			CipherIV:   getEnv("DIRECTORY_CIPHER_IV", "prue IV 12345678"),
			TimeoutSec: getEnvAsInt("DIRECTORY_TIMEOUT_SECONDS", 10),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 480),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Uploads: UploadConfig{
			Dir:               getEnv("UPLOAD_DIR", "uploads"),
			SoundsDir:         getEnv("SOUNDS_DIR", "static/notification_sounds"),
			MaxSizeBytes:      int64(getEnvAsInt("UPLOAD_MAX_SIZE_BYTES", 64*1024*1024)),
			SoundMaxSizeBytes: int64(getEnvAsInt("SOUND_MAX_SIZE_BYTES", 8*1024*1024)),
		},
		Assignment: AssignmentConfig{
			SnapshotTimeoutSeconds: getEnvAsInt("ASSIGNMENT_SNAPSHOT_TIMEOUT_SECONDS", 5),
		},
		Notification: NotificationConfig{
			PendingTTLMinutes: getEnvAsInt("NOTIFY_PENDING_TTL_MINUTES", 1440),
			WebhookURL:        getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
	}

	if len(cfg.Directory.CipherKey) != 16 || len(cfg.Directory.CipherIV) != 16 {
		return nil, fmt.Errorf("directory cipher key and IV must be exactly 16 bytes")
	}

	return cfg, nil
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

// SnapshotTimeout bounds the roster and open-count round trips of one
// assignment decision; expiry counts as the dependency being unavailable.
func (a AssignmentConfig) SnapshotTimeout() time.Duration {
	if a.SnapshotTimeoutSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(a.SnapshotTimeoutSeconds) * time.Second
}

// PendingTTL is how long an undelivered notification stays queued.
func (n NotificationConfig) PendingTTL() time.Duration {
	if n.PendingTTLMinutes <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(n.PendingTTLMinutes) * time.Minute
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
