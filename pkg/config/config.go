package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	SiteAPI      SiteAPIConfig
	Storage      StorageConfig
	GCP          GCPConfig
	GCS          GCSConfig
	S3           S3Config
	PubSub       PubSubConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	Forms        FormsConfig
	Orphans      OrphansConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.SiteAPI.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Storage.validate(cfg); err != nil {
		return nil, err
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags); err != nil {
		return nil, err
	}
	if cfg.PubSub.Enabled() && strings.TrimSpace(cfg.GCP.ProjectID) == "" {
		return nil, fmt.Errorf("%s is required when %s is set", EnvGCPProjectID, EnvPubSubTopic)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CONSOLE_APP_ENV" required:"true"`
	Port         string `envconfig:"CONSOLE_APP_PORT" default:"8090"`
	LogLevel     string `envconfig:"CONSOLE_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"CONSOLE_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"CONSOLE_LOG_WARN_STACK" default:"false"`
	CORSOrigins  string `envconfig:"CONSOLE_CORS_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// AllowedOrigins splits the comma separated CORS origin list.
func (a AppConfig) AllowedOrigins() []string {
	var out []string
	for _, origin := range strings.Split(a.CORSOrigins, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// SiteAPIConfig points at the REST collaborator that owns the website content.
type SiteAPIConfig struct {
	BaseURL string        `envconfig:"CONSOLE_SITE_API_BASE_URL" required:"true"`
	Token   string        `envconfig:"CONSOLE_SITE_API_TOKEN"`
	Timeout time.Duration `envconfig:"CONSOLE_SITE_API_TIMEOUT" default:"15s"`
}

func (s SiteAPIConfig) validate() error {
	parsed, err := url.Parse(strings.TrimSpace(s.BaseURL))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", EnvSiteAPIBaseURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s must be an http(s) url", EnvSiteAPIBaseURL)
	}
	return nil
}

type StorageConfig struct {
	Driver string `envconfig:"CONSOLE_STORAGE_DRIVER" default:"gcs"`
	// PublicBaseURL replaces the provider's default object URL host (CDN in front of the bucket).
	PublicBaseURL string `envconfig:"CONSOLE_STORAGE_PUBLIC_BASE_URL"`
}

func (s StorageConfig) validate(cfg Config) error {
	switch strings.ToLower(strings.TrimSpace(s.Driver)) {
	case StorageDriverGCS:
		if cfg.GCS.BucketName == "" {
			return fmt.Errorf("%s is required when storage driver is gcs", EnvGCSBucket)
		}
	case StorageDriverS3:
		if cfg.S3.Bucket == "" || cfg.S3.Endpoint == "" {
			return fmt.Errorf("%s and %s are required when storage driver is s3", EnvS3Bucket, EnvS3Endpoint)
		}
	default:
		return fmt.Errorf("unsupported storage driver %q", s.Driver)
	}
	return nil
}

// IsS3 reports whether the S3-compatible backend is selected.
func (s StorageConfig) IsS3() bool {
	return strings.EqualFold(strings.TrimSpace(s.Driver), StorageDriverS3)
}

type GCPConfig struct {
	ProjectID              string `envconfig:"CONSOLE_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"CONSOLE_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"CONSOLE_GOOGLE_APPLICATION_CREDENTIALS"`
}

// PubSubConfig names the topic that receives content change events. Empty disables publishing.
type PubSubConfig struct {
	ContentTopic string `envconfig:"CONSOLE_PUBSUB_CONTENT_TOPIC"`
}

// Enabled reports whether change events should be published.
func (p PubSubConfig) Enabled() bool {
	return strings.TrimSpace(p.ContentTopic) != ""
}

type GCSConfig struct {
	BucketName string `envconfig:"CONSOLE_GCS_BUCKET_NAME"`
	// ChunkSizeKB must be a multiple of 256 for resumable uploads.
	ChunkSizeKB int           `envconfig:"CONSOLE_GCS_CHUNK_SIZE_KB" default:"1024"`
	Timeout     time.Duration `envconfig:"CONSOLE_GCS_TIMEOUT" default:"30s"`
}

type S3Config struct {
	Endpoint     string `envconfig:"CONSOLE_S3_ENDPOINT"`
	Region       string `envconfig:"CONSOLE_S3_REGION" default:"us-east-1"`
	AccessKey    string `envconfig:"CONSOLE_S3_ACCESS_KEY"`
	SecretKey    string `envconfig:"CONSOLE_S3_SECRET_KEY"`
	Bucket       string `envconfig:"CONSOLE_S3_BUCKET"`
	UsePathStyle bool   `envconfig:"CONSOLE_S3_USE_PATH_STYLE" default:"true"`
}

type DBConfig struct {
	DSN    string `envconfig:"CONSOLE_DB_DSN"`
	Driver string `envconfig:"CONSOLE_DB_DRIVER" default:"postgres"`

	SQLitePath string `envconfig:"CONSOLE_SQLITE_PATH" default:"console.db"`

	MaxOpenConns    int           `envconfig:"CONSOLE_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"CONSOLE_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"CONSOLE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CONSOLE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CONSOLE_REDIS_URL"`
	Address      string        `envconfig:"CONSOLE_REDIS_ADDR"`
	Password     string        `envconfig:"CONSOLE_REDIS_PASSWORD"`
	DB           int           `envconfig:"CONSOLE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CONSOLE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CONSOLE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CONSOLE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CONSOLE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CONSOLE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether any redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"CONSOLE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"CONSOLE_AUTO_MIGRATE" default:"false"`
}

type FormsConfig struct {
	SessionTTL  time.Duration `envconfig:"CONSOLE_FORM_SESSION_TTL" default:"30m"`
	MaxUploadMB int           `envconfig:"CONSOLE_MAX_UPLOAD_MB" default:"10"`
	// StageRateLimit caps staging requests per client IP per StageRateWindow; 0 disables it.
	StageRateLimit  int           `envconfig:"CONSOLE_STAGE_RATE_LIMIT" default:"60"`
	StageRateWindow time.Duration `envconfig:"CONSOLE_STAGE_RATE_WINDOW" default:"1m"`
	PreviewMaxPx    int           `envconfig:"CONSOLE_PREVIEW_MAX_PX" default:"320"`
}

// MaxUploadBytes converts the configured staging limit to bytes.
func (f FormsConfig) MaxUploadBytes() int64 {
	if f.MaxUploadMB <= 0 {
		return 10 << 20
	}
	return int64(f.MaxUploadMB) << 20
}

type OrphansConfig struct {
	SweepInterval time.Duration `envconfig:"CONSOLE_ORPHAN_SWEEP_INTERVAL" default:"1h"`
	BatchSize     int           `envconfig:"CONSOLE_ORPHAN_BATCH_SIZE" default:"100"`
	MinAge        time.Duration `envconfig:"CONSOLE_ORPHAN_MIN_AGE" default:"10m"`
}

func (db *DBConfig) ensureDSN(flags FeatureFlagsConfig) error {
	if flags.UseSQLite {
		db.Driver = DBDriverSQLite
		if db.DSN == "" {
			db.DSN = db.SQLitePath
		}
		return nil
	}
	if db.DSN == "" {
		return fmt.Errorf("%s is required unless %s is enabled", EnvDBDSN, EnvUseSQLite)
	}
	if db.Driver == "" {
		db.Driver = DBDriverPostgres
	}
	return nil
}
