package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates runtime configuration for the media vault.
type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	Upload   UploadConfig
	Postgres PostgresConfig
	Journal  JournalConfig
	Auth     AuthConfig
	CORS     CORSConfig
	Metrics  MetricsConfig
	Log      LogConfig
}

// ServerConfig parameterizes the HTTP server.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	// Domain is the public host used to build object URLs.
	Domain string
}

// Address returns the listen address in host:port form.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// StorageConfig describes the content-addressed file tree.
type StorageConfig struct {
	Root          string
	UseSubDirs    bool
	CreateSymlink bool
	SymlinkDir    string
}

// UploadConfig bounds multipart uploads and image normalization.
type UploadConfig struct {
	MaxFiles           int
	MaxMultipartMemory int64
	ImageMaxBytes      int64
	ImageMaxPasses     int
}

// PostgresConfig contains PostgreSQL connection details.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// DSN returns the PostgreSQL DSN string.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.Database, p.SSLMode)
}

// JournalConfig toggles the Postgres event journal.
type JournalConfig struct {
	Enabled bool
}

// AuthConfig groups authentication-related settings. An empty secret
// disables bearer-token checks.
type AuthConfig struct {
	AccessTokenSecret string
}

// CORSConfig lists the allowed origins; "*" allows any.
type CORSConfig struct {
	AllowedOrigins []string
}

// MetricsConfig groups observability settings.
type MetricsConfig struct {
	PrometheusPath string
}

// LogConfig selects the log level.
type LogConfig struct {
	Level string
}

// Load reads configuration values from environment variables, applying defaults.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host:         getString("MEDIAVAULT_HOST", "0.0.0.0"),
			Port:         getInt("MEDIAVAULT_PORT", 3001),
			ReadTimeout:  getDuration("MEDIAVAULT_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getDuration("MEDIAVAULT_WRITE_TIMEOUT", 0),
			IdleTimeout:  getDuration("MEDIAVAULT_IDLE_TIMEOUT", 60*time.Second),
			Domain:       getString("DOMAIN", "localhost:3001"),
		},
		Storage: StorageConfig{
			Root:          getString("SERVER_DIR", "./drive_files"),
			UseSubDirs:    getBool("USE_SUB_DIR", true),
			CreateSymlink: getBool("CREATE_SYMLINK", false),
			SymlinkDir:    getString("SYMLINK_DIR", "./dist/uploads"),
		},
		Upload: UploadConfig{
			MaxFiles:           getInt("MAX_FILES_PER_UPLOAD", 30),
			MaxMultipartMemory: getInt64("MAX_MULTIPART_MEMORY", 32<<20),
			ImageMaxBytes:      getInt64("IMAGE_MAX_BYTES", 0),
			ImageMaxPasses:     getInt("IMAGE_MAX_PASSES", 5),
		},
		Postgres: PostgresConfig{
			Host:     getString("POSTGRES_HOST", "localhost"),
			Port:     getInt("POSTGRES_PORT", 5432),
			User:     getString("POSTGRES_USER", "mediavault"),
			Password: getString("POSTGRES_PASSWORD", "change-me"),
			Database: getString("POSTGRES_DB", "mediavault"),
			SSLMode:  strings.ToLower(getString("POSTGRES_SSL_MODE", "disable")),
		},
		Journal: JournalConfig{
			Enabled: getBool("JOURNAL_ENABLED", false),
		},
		Auth: AuthConfig{
			AccessTokenSecret: getString("JWT_SECRET", ""),
		},
		CORS: CORSConfig{
			AllowedOrigins: getList("CORS_ORIGINS", []string{"*"}),
		},
		Metrics: MetricsConfig{
			PrometheusPath: getString("MEDIAVAULT_METRICS_PATH", "/metrics"),
		},
		Log: LogConfig{
			Level: getString("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if strings.TrimSpace(c.Storage.Root) == "" {
		return fmt.Errorf("SERVER_DIR must not be empty")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("MEDIAVAULT_PORT out of range: %d", c.Server.Port)
	}
	if c.Upload.MaxFiles < 1 {
		return fmt.Errorf("MAX_FILES_PER_UPLOAD must be positive")
	}
	if c.Upload.ImageMaxPasses < 1 {
		return fmt.Errorf("IMAGE_MAX_PASSES must be positive")
	}
	if !strings.HasPrefix(c.Metrics.PrometheusPath, "/") {
		return fmt.Errorf("MEDIAVAULT_METRICS_PATH must start with /")
	}
	return nil
}

func getString(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getInt64(key string, fallback int64) int64 {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseInt(val, 10, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		val = strings.ToLower(strings.TrimSpace(val))
		switch val {
		case "1", "true", "t", "yes", "y":
			return true
		case "0", "false", "f", "no", "n":
			return false
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getList(key string, fallback []string) []string {
	val, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
