package config

// Config contains all application settings
type Config struct {
	BindPort      int    `mapstructure:"PORT" yaml:"port"`
	BindHost      string `mapstructure:"HOST" yaml:"host"`
	LogLevel      string `mapstructure:"LOG_LEVEL" yaml:"log_level"`
	NATSServerURL string `mapstructure:"NATS_URL" yaml:"nats_url"`

	// Storage
	StorageDriver string `mapstructure:"STORAGE_DRIVER" yaml:"storage_driver"`
	DatabaseURL   string `mapstructure:"DATABASE_URL" yaml:"database_url"`
	SQLitePath    string `mapstructure:"SQLITE_PATH" yaml:"sqlite_path"`
	RedisAddr     string `mapstructure:"REDIS_ADDR" yaml:"redis_addr"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD" yaml:"redis_password"`
	RedisDB       int    `mapstructure:"REDIS_DB" yaml:"redis_db"`
	SeedDebug     bool   `mapstructure:"SEED_DEBUG_EVENT" yaml:"seed_debug_event"`

	// Export
	ExportSink     string `mapstructure:"EXPORT_SINK" yaml:"export_sink"`
	ExportDir      string `mapstructure:"EXPORT_DIR" yaml:"export_dir"`
	S3Bucket       string `mapstructure:"S3_BUCKET" yaml:"s3_bucket"`
	S3Region       string `mapstructure:"S3_REGION" yaml:"s3_region"`
	S3Endpoint     string `mapstructure:"S3_ENDPOINT" yaml:"s3_endpoint"`
	S3Prefix       string `mapstructure:"S3_PREFIX" yaml:"s3_prefix"`
	RequestTimeout int    `mapstructure:"REQUEST_TIMEOUT" yaml:"request_timeout"`

	// Version
	BuildVersion string `yaml:"-"`
	BuildHash    string `yaml:"-"`
	BuildTime    string `yaml:"-"`
}
