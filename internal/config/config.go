package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config aggregates application settings that may be sourced from files or environment variables.
type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	MinIO    MinIOConfig    `mapstructure:"minio"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Enhance  EnhanceConfig  `mapstructure:"enhance"`
	Session  SessionConfig  `mapstructure:"session"`
	Upload   UploadConfig   `mapstructure:"upload"`
	Worker   WorkerConfig   `mapstructure:"worker"`
}

// APIConfig contains HTTP server settings.
type APIConfig struct {
	Port            int           `mapstructure:"port"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig contains connection options for PostgreSQL.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`
	Debug    bool   `mapstructure:"debug"`

	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// RedisConfig 包含 Redis 连接配置。
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
}

// Addr 返回 host:port 形式的地址。
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// MinIOConfig contains connection options for MinIO/S3-compatible storage.
type MinIOConfig struct {
	Endpoint         string `mapstructure:"endpoint"`
	PublicEndpoint   string `mapstructure:"public_endpoint"`
	AccessKeyID      string `mapstructure:"access_key_id"`
	SecretAccessKey  string `mapstructure:"secret_access_key"`
	UseSSL           bool   `mapstructure:"use_ssl"`
	Bucket           string `mapstructure:"bucket"`
	Region           string `mapstructure:"region"`
	BucketLookup     string `mapstructure:"bucket_lookup"`
	AutoCreateBucket bool   `mapstructure:"auto_create_bucket"`
}

// AuthConfig 描述外部身份服务签发的令牌如何校验。
// 私钥只被 admin 命令用于签发开发令牌。
type AuthConfig struct {
	PublicKeyPath  string        `mapstructure:"public_key_path"`
	PrivateKeyPath string        `mapstructure:"private_key_path"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
}

// EnhanceConfig 选择 AI 润色的实现方式。
type EnhanceConfig struct {
	// Provider 取值 gemini 或 remote。
	Provider         string        `mapstructure:"provider"`
	GeminiAPIKey     string        `mapstructure:"gemini_api_key"`
	Model            string        `mapstructure:"model"`
	Temperature      float32       `mapstructure:"temperature"`
	RemoteEndpoint   string        `mapstructure:"remote_endpoint"`
	RemoteAPIKey     string        `mapstructure:"remote_api_key"`
	Timeout          time.Duration `mapstructure:"timeout"`
	RateLimitPerHour int           `mapstructure:"rate_limit_per_hour"`
}

// SessionConfig 控制进程内编辑会话的生命周期。
type SessionConfig struct {
	IdleTTL       time.Duration `mapstructure:"idle_ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
	MaxSessions   int           `mapstructure:"max_sessions"`
}

// UploadConfig 约束头像上传。
type UploadConfig struct {
	ClamdAddr     string   `mapstructure:"clamd_addr"`
	MaxBytes      int64    `mapstructure:"max_bytes"`
	MIMEWhitelist []string `mapstructure:"mime_whitelist"`
	MaxPerDay     int      `mapstructure:"max_per_day"`
}

// WorkerConfig 控制预览渲染任务。
type WorkerConfig struct {
	Concurrency   int           `mapstructure:"concurrency"`
	MaxRetry      int           `mapstructure:"max_retry"`
	PreviewURLTTL time.Duration `mapstructure:"preview_url_ttl"`
}

// DSN builds a lib/pq compatible connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host,
		d.Port,
		d.User,
		d.Password,
		d.Name,
		d.SSLMode,
	)
}

// Load reads configuration solely from environment variables (with optional defaults).
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if err := bindEnv(v); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.API.AllowedOrigins = splitList(cfg.API.AllowedOrigins)
	cfg.Upload.MIMEWhitelist = splitList(cfg.Upload.MIMEWhitelist)

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// MustLoad wraps Load and panics on failure.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.allowed_origins", []string{})
	v.SetDefault("api.shutdown_timeout", 10*time.Second)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "resumebuilder")
	v.SetDefault("database.user", "resumebuilder")
	v.SetDefault("database.password", "resumebuilder")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.debug", false)
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("minio.endpoint", "localhost:9000")
	v.SetDefault("minio.public_endpoint", "http://localhost:9000")
	v.SetDefault("minio.use_ssl", false)
	v.SetDefault("minio.bucket", "resumes")
	v.SetDefault("minio.region", "us-east-1")
	v.SetDefault("minio.bucket_lookup", "auto")
	v.SetDefault("minio.auto_create_bucket", true)
	v.SetDefault("auth.public_key_path", "keys/jwt_public.pem")
	v.SetDefault("auth.access_token_ttl", 15*time.Minute)
	v.SetDefault("enhance.provider", "gemini")
	v.SetDefault("enhance.model", "gemini-1.5-flash")
	v.SetDefault("enhance.temperature", 0.4)
	v.SetDefault("enhance.timeout", 30*time.Second)
	v.SetDefault("enhance.rate_limit_per_hour", 60)
	v.SetDefault("session.idle_ttl", 2*time.Hour)
	v.SetDefault("session.sweep_interval", 5*time.Minute)
	v.SetDefault("session.max_sessions", 10000)
	v.SetDefault("upload.max_bytes", 5*1024*1024)
	v.SetDefault("upload.mime_whitelist", []string{"image/png", "image/jpeg", "image/webp"})
	v.SetDefault("upload.max_per_day", 50)
	v.SetDefault("worker.concurrency", 10)
	v.SetDefault("worker.max_retry", 3)
	v.SetDefault("worker.preview_url_ttl", 15*time.Minute)
}

func bindEnv(v *viper.Viper) error {
	mappings := map[string]string{
		"api.port":                    "API_PORT",
		"api.allowed_origins":         "API_ALLOWED_ORIGINS",
		"api.shutdown_timeout":        "API_SHUTDOWN_TIMEOUT",
		"database.host":               "DATABASE_HOST",
		"database.port":               "DATABASE_PORT",
		"database.name":               "POSTGRES_DB",
		"database.user":               "POSTGRES_USER",
		"database.password":           "POSTGRES_PASSWORD",
		"database.sslmode":            "DATABASE_SSLMODE",
		"database.debug":              "DATABASE_DEBUG",
		"database.max_open_conns":     "DATABASE_MAX_OPEN_CONNS",
		"database.max_idle_conns":     "DATABASE_MAX_IDLE_CONNS",
		"database.conn_max_lifetime":  "DATABASE_CONN_MAX_LIFETIME",
		"redis.host":                  "REDIS_HOST",
		"redis.port":                  "REDIS_PORT",
		"redis.password":              "REDIS_PASSWORD",
		"minio.endpoint":              "MINIO_ENDPOINT",
		"minio.public_endpoint":       "MINIO_PUBLIC_ENDPOINT",
		"minio.access_key_id":         "MINIO_ACCESS_KEY_ID",
		"minio.secret_access_key":     "MINIO_SECRET_ACCESS_KEY",
		"minio.use_ssl":               "MINIO_USE_SSL",
		"minio.bucket":                "MINIO_BUCKET",
		"minio.region":                "MINIO_REGION",
		"minio.bucket_lookup":         "MINIO_BUCKET_LOOKUP",
		"minio.auto_create_bucket":    "MINIO_AUTO_CREATE_BUCKET",
		"auth.public_key_path":        "JWT_PUBLIC_KEY_PATH",
		"auth.private_key_path":       "JWT_PRIVATE_KEY_PATH",
		"auth.access_token_ttl":       "JWT_ACCESS_TOKEN_TTL",
		"enhance.provider":            "ENHANCE_PROVIDER",
		"enhance.gemini_api_key":      "GEMINI_API_KEY",
		"enhance.model":               "ENHANCE_MODEL",
		"enhance.temperature":         "ENHANCE_TEMPERATURE",
		"enhance.remote_endpoint":     "ENHANCE_REMOTE_ENDPOINT",
		"enhance.remote_api_key":      "ENHANCE_REMOTE_API_KEY",
		"enhance.timeout":             "ENHANCE_TIMEOUT",
		"enhance.rate_limit_per_hour": "ENHANCE_RATE_LIMIT_PER_HOUR",
		"session.idle_ttl":            "SESSION_IDLE_TTL",
		"session.sweep_interval":      "SESSION_SWEEP_INTERVAL",
		"session.max_sessions":        "SESSION_MAX_SESSIONS",
		"upload.clamd_addr":           "CLAMD_ADDR",
		"upload.max_bytes":            "UPLOAD_MAX_BYTES",
		"upload.mime_whitelist":       "UPLOAD_MIME_WHITELIST",
		"upload.max_per_day":          "UPLOAD_MAX_PER_DAY",
		"worker.concurrency":          "WORKER_CONCURRENCY",
		"worker.max_retry":            "WORKER_MAX_RETRY",
		"worker.preview_url_ttl":      "WORKER_PREVIEW_URL_TTL",
	}

	for key, env := range mappings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind %s to %s: %w", key, env, err)
		}
	}

	return nil
}

// splitList 兼容以逗号分隔的环境变量写法。
func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func validate(cfg Config) error {
	if cfg.API.Port <= 0 {
		return errors.New("api port must be positive")
	}
	if cfg.Database.Host == "" {
		return errors.New("database host is required")
	}
	if cfg.Database.Port <= 0 {
		return errors.New("database port must be positive")
	}
	if cfg.Database.Name == "" {
		return errors.New("database name is required")
	}
	if cfg.Database.User == "" {
		return errors.New("database user is required")
	}
	if cfg.Database.Password == "" {
		return errors.New("database password is required")
	}
	if cfg.Database.SSLMode == "" {
		return errors.New("database sslmode is required")
	}
	if cfg.Redis.Host == "" {
		return errors.New("redis host is required")
	}
	if cfg.Redis.Port <= 0 {
		return errors.New("redis port must be positive")
	}
	if cfg.MinIO.Endpoint == "" {
		return errors.New("minio endpoint is required")
	}
	if cfg.MinIO.AccessKeyID == "" {
		return errors.New("minio access key id is required")
	}
	if cfg.MinIO.SecretAccessKey == "" {
		return errors.New("minio secret access key is required")
	}
	if cfg.MinIO.Bucket == "" {
		return errors.New("minio bucket is required")
	}
	if cfg.Auth.PublicKeyPath == "" {
		return errors.New("jwt public key path is required")
	}
	switch cfg.Enhance.Provider {
	case "gemini":
		if cfg.Enhance.GeminiAPIKey == "" {
			return errors.New("gemini api key is required when enhance provider is gemini")
		}
	case "remote":
		if cfg.Enhance.RemoteEndpoint == "" {
			return errors.New("enhance remote endpoint is required when enhance provider is remote")
		}
	default:
		return fmt.Errorf("unknown enhance provider %q", cfg.Enhance.Provider)
	}
	if cfg.Upload.MaxBytes <= 0 {
		return errors.New("upload max bytes must be positive")
	}
	if cfg.Worker.Concurrency <= 0 {
		return errors.New("worker concurrency must be positive")
	}
	return nil
}
