package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

type Config struct {
	// Application
	AppName  string
	AppEnv   string
	Port     string
	LogLevel string

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string

	// Security
	JWTSecret string
	JWTExpiry time.Duration

	// Uploads
	MaxUploadSize    int64
	StorageDriver    string // "local" or "s3"
	ImagesDirectory  string // local driver: where main pictures are written
	UploadsURLPrefix string // local driver: public prefix the files are served under

	// Observability (optional)
	SentryDSN string

	// Storage (S3-compatible: MinIO, AWS S3, Cloudflare R2, DigitalOcean Spaces, etc.)
	S3Region        string
	S3Bucket        string
	S3AccessKey     string
	S3SecretKey     string
	S3Endpoint      string        // Optional: for S3-compatible services
	S3UsePathStyle  bool          // Required by MinIO and most self-hosted services
	S3PresignExpiry time.Duration // Expiry of presigned picture URLs
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		// Application
		AppName:  envString("APP_NAME", "O'Souvenir"),
		AppEnv:   envRequired("APP_ENV"), // Required: 'development' or 'production'
		Port:     envString("PORT", "8090"),
		LogLevel: envString("LOG_LEVEL", ""),

		// Database
		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/souvenirs.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"),

		// Security
		JWTSecret: envRequired("JWT_SECRET"),
		JWTExpiry: envDuration("JWT_EXPIRY", 24*time.Hour),

		// Uploads
		MaxUploadSize:    envInt64("MAX_UPLOAD_SIZE", 5<<20),
		StorageDriver:    envString("STORAGE_DRIVER", StorageLocal),
		ImagesDirectory:  envString("IMAGES_DIRECTORY", "./data/uploads/images"),
		UploadsURLPrefix: envString("UPLOADS_URL_PREFIX", "/uploads"),

		// Observability
		SentryDSN: envString("SENTRY_DSN", ""),

		// Storage
		S3Region:        envString("S3_REGION", ""),
		S3Bucket:        envString("S3_BUCKET", ""),
		S3AccessKey:     envString("S3_ACCESS_KEY", ""),
		S3SecretKey:     envString("S3_SECRET_KEY", ""),
		S3Endpoint:      envString("S3_ENDPOINT", ""),
		S3UsePathStyle:  envBool("S3_USE_PATH_STYLE", os.Getenv("S3_ENDPOINT") != ""),
		S3PresignExpiry: envDuration("S3_PRESIGN_EXPIRY", 168*time.Hour), // 7 days
	}

	validate(cfg)

	return cfg
}

// validate stops the process on combinations that cannot work at runtime.
func validate(cfg *Config) {
	switch cfg.StorageDriver {
	case StorageLocal:
	case StorageS3:
		if cfg.S3Region == "" || cfg.S3Bucket == "" {
			slog.Error("s3 storage requires S3_REGION and S3_BUCKET")
			os.Exit(1)
		}
	default:
		slog.Error("config invalid storage driver", "value", cfg.StorageDriver, "allowed", "local, s3")
		os.Exit(1)
	}

	if cfg.IsProduction() && len(cfg.JWTSecret) < 32 {
		slog.Error("production deployment requires a JWT_SECRET of at least 32 characters")
		os.Exit(1)
	}
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envInt64(key string, def int64) int64 {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		slog.Warn("config invalid integer, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Sanitized returns a copy of the config with only public/safe fields.
// Safe to expose in ctx and templates.
func (c *Config) Sanitized() *Config {
	return &Config{
		AppName:          c.AppName,
		AppEnv:           c.AppEnv,
		Port:             c.Port,
		MaxUploadSize:    c.MaxUploadSize,
		StorageDriver:    c.StorageDriver,
		UploadsURLPrefix: c.UploadsURLPrefix,
		S3Endpoint:       c.S3Endpoint, // Needed for CSP policies
	}
}
