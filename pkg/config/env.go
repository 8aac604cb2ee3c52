package config

const (
	EnvPrefix = "CONSOLE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	StorageDriverGCS = "gcs"
	StorageDriverS3  = "s3"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

const (
	EnvAppEnv          = "CONSOLE_APP_ENV"
	EnvPort            = "CONSOLE_APP_PORT"
	EnvLogLevel        = "CONSOLE_LOG_LEVEL"
	EnvSiteAPIBaseURL  = "CONSOLE_SITE_API_BASE_URL"
	EnvSiteAPIToken    = "CONSOLE_SITE_API_TOKEN"
	EnvStorageDriver   = "CONSOLE_STORAGE_DRIVER"
	EnvGCSBucket       = "CONSOLE_GCS_BUCKET_NAME"
	EnvS3Bucket        = "CONSOLE_S3_BUCKET"
	EnvS3Endpoint      = "CONSOLE_S3_ENDPOINT"
	EnvDBDSN           = "CONSOLE_DB_DSN"
	EnvUseSQLite       = "CONSOLE_USE_SQLITE"
	EnvRedisURL        = "CONSOLE_REDIS_URL"
	EnvFormSessionTTL  = "CONSOLE_FORM_SESSION_TTL"
	EnvMaxUploadMB     = "CONSOLE_MAX_UPLOAD_MB"
	EnvOrphanBatchSize = "CONSOLE_ORPHAN_BATCH_SIZE"
	EnvGCPProjectID    = "CONSOLE_GCP_PROJECT_ID"
	EnvPubSubTopic     = "CONSOLE_PUBSUB_CONTENT_TOPIC"
)
