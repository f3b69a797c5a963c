package app

import (
	"time"

	"github.com/yungbote/osteobridge-backend/internal/clients/redis"
	"github.com/yungbote/osteobridge-backend/internal/data/db"
	"github.com/yungbote/osteobridge-backend/internal/observability"
	"github.com/yungbote/osteobridge-backend/internal/platform/envutil"
	"github.com/yungbote/osteobridge-backend/internal/platform/logger"
	"github.com/yungbote/osteobridge-backend/internal/platform/storage"
	"github.com/yungbote/osteobridge-backend/internal/services"
)

var defaultCORSOrigins = []string{"http://localhost:3000", "http://127.0.0.1:3000"}

type Config struct {
	Env     string
	Port    string
	Version string

	JWTSecretKey   string
	AccessTokenTTL time.Duration

	DB db.Config

	MaxUploadBytes   int64
	ImportConfigPath string

	StorageDriver string
	UploadFolder  string
	GCS           storage.GCSConfig

	Redis redis.Config

	MetricsEnabled  bool
	Tracing         observability.TracingConfig
	CORSOrigins     []string
	ShutdownTimeout time.Duration
}

func LoadConfig(log *logger.Logger) Config {
	secret := envutil.String("JWT_SECRET_KEY", "", log)
	if secret == "" {
		secret = envutil.String("SECRET_KEY", "dev-secret-key-change-in-production", log)
	}

	cfg := Config{
		Env:     envutil.String("APP_ENV", "development", log),
		Port:    envutil.String("PORT", "8080", log),
		Version: envutil.String("APP_VERSION", "dev", log),

		JWTSecretKey:   secret,
		AccessTokenTTL: time.Duration(envutil.Int("JWT_EXPIRATION_MINUTES", 30, log)) * time.Minute,

		DB: db.Config{
			Driver:           envutil.String("DB_DRIVER", db.DriverPostgres, log),
			PostgresHost:     envutil.String("DB_HOST", "127.0.0.1", log),
			PostgresPort:     envutil.String("DB_PORT", "5432", log),
			PostgresUser:     envutil.String("DB_USERNAME", "postgres", log),
			PostgresPassword: envutil.String("DB_PASS", "", log),
			PostgresName:     envutil.String("DB_NAME", "osteoarthritis_db", log),
			PostgresSSLMode:  envutil.String("DB_SSLMODE", "disable", log),
			SQLitePath:       envutil.String("SQLITE_PATH", "osteobridge.db", log),
			MaxOpenConns:     envutil.Int("DB_MAX_OPEN_CONNS", 20, log),
			MaxIdleConns:     envutil.Int("DB_MAX_IDLE_CONNS", 5, log),
			SlowQuery:        envutil.Duration("DB_SLOW_QUERY", time.Second, log),
		},

		MaxUploadBytes:   envutil.Int64("MAX_UPLOAD_BYTES", services.DefaultMaxUploadBytes, log),
		ImportConfigPath: envutil.String("IMPORT_CONFIG_PATH", "", log),

		UploadFolder: envutil.String("UPLOAD_FOLDER", "./uploads", log),
		GCS: storage.GCSConfig{
			Bucket:        envutil.String("PDB_GCS_BUCKET", "", log),
			Mode:          envutil.String("OBJECT_STORAGE_MODE", "", log),
			EmulatorHost:  envutil.String("STORAGE_EMULATOR_HOST", "", log),
			Credentials:   envutil.String("GOOGLE_APPLICATION_CREDENTIALS_JSON", envutil.String("GOOGLE_APPLICATION_CREDENTIALS", "", log), log),
			PublicBaseURL: envutil.String("OBJECT_STORAGE_PUBLIC_BASE_URL", "", log),
		},

		Redis: redis.Config{
			Addr:     envutil.String("REDIS_ADDR", "", log),
			Password: envutil.String("REDIS_PASSWORD", "", log),
			DB:       envutil.Int("REDIS_DB", 0, log),
			Prefix:   envutil.String("REDIS_CACHE_PREFIX", "osteobridge:organisms", log),
			TTL:      envutil.Duration("REDIS_CACHE_TTL", 5*time.Minute, log),
		},

		MetricsEnabled: envutil.Bool("METRICS_ENABLED", true),
		Tracing: observability.TracingConfig{
			Enabled:     envutil.Bool("OTEL_ENABLED", false),
			ServiceName: envutil.String("OTEL_SERVICE_NAME", observability.DefaultServiceName, log),
			Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", "", log),
			Headers:     envutil.List("OTEL_EXPORTER_OTLP_HEADERS", nil),
			Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false),
			SampleRatio: envutil.Float64("OTEL_SAMPLER_RATIO", observability.DefaultSampleRatio, log),
		},
		CORSOrigins:     envutil.List("CORS_ORIGINS", defaultCORSOrigins),
		ShutdownTimeout: envutil.Duration("SHUTDOWN_TIMEOUT", 15*time.Second, log),
	}

	cfg.Tracing.Environment = cfg.Env
	cfg.Tracing.Version = cfg.Version

	cfg.StorageDriver = storage.DriverFilesystem
	if cfg.GCS.Bucket != "" {
		cfg.StorageDriver = storage.DriverGCS
	}
	if cfg.AccessTokenTTL <= 0 {
		cfg.AccessTokenTTL = 30 * time.Minute
	}
	return cfg
}
