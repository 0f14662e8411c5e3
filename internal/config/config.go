package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	Engine  EngineConfig
	Input   InputConfig
	Auth    AuthConfig
	DB      DBConfig
	Archive ArchiveConfig
	Log     LogConfig
}

// ModelDirEnvAliases lists the environment variables consulted for the model
// directory, highest precedence first.
var ModelDirEnvAliases = []string{
	"OCRSVC_ENGINE_MODEL_DIR",
	"DOTSOCR_MODEL_DIR",
	"MODEL_DIR",
	"MODEL_PATH",
	"HF_MODEL_DIR",
}

// EngineConfig selects and configures the inference engine provider.
type EngineConfig struct {
	Provider    string `mapstructure:"provider"`
	ModelDir    string `mapstructure:"model_dir"`
	Endpoint    string `mapstructure:"endpoint"`
	APIKey      string `mapstructure:"api_key"`
	Model       string `mapstructure:"model"`
	Language    string `mapstructure:"language"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
	Warmup      bool   `mapstructure:"warmup"`
	Cache       CacheConfig
}

// Timeout returns the engine call timeout, defaulting to 10 minutes.
func (e *EngineConfig) Timeout() time.Duration {
	if e.TimeoutSecs <= 0 {
		return 10 * time.Minute
	}
	return time.Duration(e.TimeoutSecs) * time.Second
}

// CacheConfig holds the shared cache locations for model assets.
type CacheConfig struct {
	HFHome            string `mapstructure:"hf_home"`
	TransformersCache string `mapstructure:"transformers_cache"`
	TorchHome         string `mapstructure:"torch_home"`
}

// Export publishes the configured cache locations to the process environment
// so engine subprocesses and sidecars launched from here share them. Variables
// already present in the environment are left untouched.
func (c *CacheConfig) Export() {
	for env, dir := range map[string]string{
		"HF_HOME":            c.HFHome,
		"TRANSFORMERS_CACHE": c.TransformersCache,
		"TORCH_HOME":         c.TorchHome,
	} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Printf("config.CacheConfig.Export: cannot create %s=%s: %v", env, dir, err)
			continue
		}
		if os.Getenv(env) == "" {
			_ = os.Setenv(env, dir)
		}
	}
}

// InputConfig bounds incoming payloads and controls artifact materialization.
type InputConfig struct {
	MaxPayloadMB int64  `mapstructure:"max_payload_mb"`
	MaxImageSide int    `mapstructure:"max_image_side"`
	TempDir      string `mapstructure:"temp_dir"`
}

// MaxPayloadBytes returns the decoded payload limit in bytes; 0 means unlimited.
func (i *InputConfig) MaxPayloadBytes() int64 {
	return i.MaxPayloadMB * 1024 * 1024
}

// AuthConfig holds bearer-token settings. Auth is disabled when Secret is empty.
type AuthConfig struct {
	Secret   string `mapstructure:"secret"`
	Issuer   string `mapstructure:"issuer"`
	Audience string `mapstructure:"audience"`
}

// Enabled reports whether the OCR routes require a bearer token.
func (a *AuthConfig) Enabled() bool {
	return a.Secret != ""
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings for the request audit log.
type DBConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`

	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// ArchiveConfig holds S3 settings for archiving normalized results.
type ArchiveConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Prefix        string `mapstructure:"prefix"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads configuration from environment variables with the OCRSVC_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("OCRSVC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "60s")
	v.SetDefault("server.write_timeout", "15m")
	v.SetDefault("server.environment", "development")

	// Engine defaults
	v.SetDefault("engine.provider", "dotsocr")
	v.SetDefault("engine.model_dir", "./weights/DotsOCR")
	v.SetDefault("engine.endpoint", "http://127.0.0.1:8000")
	v.SetDefault("engine.model", "")
	v.SetDefault("engine.language", "eng")
	v.SetDefault("engine.timeout_secs", 600)
	v.SetDefault("engine.warmup", false)
	v.SetDefault("engine.cache.hf_home", "")
	v.SetDefault("engine.cache.transformers_cache", "")
	v.SetDefault("engine.cache.torch_home", "")

	// Input defaults
	v.SetDefault("input.max_payload_mb", 50)
	v.SetDefault("input.max_image_side", 0)
	v.SetDefault("input.temp_dir", "")

	// Auth defaults (disabled)
	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.issuer", "ocrsvc")
	v.SetDefault("auth.audience", "ocr")

	// DB defaults
	v.SetDefault("db.enabled", false)
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "ocrsvc")
	v.SetDefault("db.password", "ocrsvc_secret")
	v.SetDefault("db.name", "ocrsvc_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 10)
	v.SetDefault("db.max_idle", 5)
	v.SetDefault("db.conn_max_lifetime", "30m")

	// Archive defaults
	v.SetDefault("archive.enabled", false)
	v.SetDefault("archive.region", "us-east-1")
	v.SetDefault("archive.bucket", "ocrsvc-results")
	v.SetDefault("archive.prefix", "results")
	v.SetDefault("archive.endpoint", "")
	v.SetDefault("archive.presign_expiry", 3600)

	// Log defaults
	v.SetDefault("log.level", "info")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string][]string{
		"server.port":                     {"OCRSVC_SERVER_PORT"},
		"server.read_timeout":             {"OCRSVC_SERVER_READ_TIMEOUT"},
		"server.write_timeout":            {"OCRSVC_SERVER_WRITE_TIMEOUT"},
		"server.environment":              {"OCRSVC_SERVER_ENVIRONMENT"},
		"engine.provider":                 {"OCRSVC_ENGINE_PROVIDER"},
		"engine.model_dir":                ModelDirEnvAliases,
		"engine.endpoint":                 {"OCRSVC_ENGINE_ENDPOINT", "DOTSOCR_ENDPOINT"},
		"engine.api_key":                  {"OCRSVC_ENGINE_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY"},
		"engine.model":                    {"OCRSVC_ENGINE_MODEL"},
		"engine.language":                 {"OCRSVC_ENGINE_LANGUAGE"},
		"engine.timeout_secs":             {"OCRSVC_ENGINE_TIMEOUT_SECS"},
		"engine.warmup":                   {"OCRSVC_ENGINE_WARMUP"},
		"engine.cache.hf_home":            {"OCRSVC_ENGINE_CACHE_HF_HOME", "HF_HOME"},
		"engine.cache.transformers_cache": {"OCRSVC_ENGINE_CACHE_TRANSFORMERS_CACHE", "TRANSFORMERS_CACHE"},
		"engine.cache.torch_home":         {"OCRSVC_ENGINE_CACHE_TORCH_HOME", "TORCH_HOME"},
		"input.max_payload_mb":            {"OCRSVC_INPUT_MAX_PAYLOAD_MB"},
		"input.max_image_side":            {"OCRSVC_INPUT_MAX_IMAGE_SIDE"},
		"input.temp_dir":                  {"OCRSVC_INPUT_TEMP_DIR"},
		"auth.secret":                     {"OCRSVC_AUTH_SECRET"},
		"auth.issuer":                     {"OCRSVC_AUTH_ISSUER"},
		"auth.audience":                   {"OCRSVC_AUTH_AUDIENCE"},
		"db.enabled":                      {"OCRSVC_DB_ENABLED"},
		"db.host":                         {"OCRSVC_DB_HOST"},
		"db.port":                         {"OCRSVC_DB_PORT"},
		"db.user":                         {"OCRSVC_DB_USER"},
		"db.password":                     {"OCRSVC_DB_PASSWORD"},
		"db.name":                         {"OCRSVC_DB_NAME"},
		"db.sslmode":                      {"OCRSVC_DB_SSLMODE"},
		"db.max_open":                     {"OCRSVC_DB_MAX_OPEN"},
		"db.max_idle":                     {"OCRSVC_DB_MAX_IDLE"},
		"db.conn_max_lifetime":            {"OCRSVC_DB_CONN_MAX_LIFETIME"},
		"archive.enabled":                 {"OCRSVC_ARCHIVE_ENABLED"},
		"archive.region":                  {"OCRSVC_ARCHIVE_REGION"},
		"archive.bucket":                  {"OCRSVC_ARCHIVE_BUCKET"},
		"archive.prefix":                  {"OCRSVC_ARCHIVE_PREFIX"},
		"archive.endpoint":                {"OCRSVC_ARCHIVE_ENDPOINT"},
		"archive.access_key":              {"OCRSVC_ARCHIVE_ACCESS_KEY"},
		"archive.secret_key":              {"OCRSVC_ARCHIVE_SECRET_KEY"},
		"archive.presign_expiry":          {"OCRSVC_ARCHIVE_PRESIGN_EXPIRY"},
		"log.level":                       {"OCRSVC_LOG_LEVEL"},
	}
	for key, envs := range envBindings {
		_ = v.BindEnv(append([]string{key}, envs...)...)
	}

	cfg := &Config{}

	// Serverless hosts set a PORT env var. Use it if OCRSVC_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("OCRSVC_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.Engine = EngineConfig{
		Provider:    strings.ToLower(strings.TrimSpace(v.GetString("engine.provider"))),
		ModelDir:    v.GetString("engine.model_dir"),
		Endpoint:    v.GetString("engine.endpoint"),
		APIKey:      v.GetString("engine.api_key"),
		Model:       v.GetString("engine.model"),
		Language:    v.GetString("engine.language"),
		TimeoutSecs: v.GetInt("engine.timeout_secs"),
		Warmup:      v.GetBool("engine.warmup"),
		Cache: CacheConfig{
			HFHome:            v.GetString("engine.cache.hf_home"),
			TransformersCache: v.GetString("engine.cache.transformers_cache"),
			TorchHome:         v.GetString("engine.cache.torch_home"),
		},
	}
	cfg.Input = InputConfig{
		MaxPayloadMB: v.GetInt64("input.max_payload_mb"),
		MaxImageSide: v.GetInt("input.max_image_side"),
		TempDir:      v.GetString("input.temp_dir"),
	}
	cfg.Auth = AuthConfig{
		Secret:   v.GetString("auth.secret"),
		Issuer:   v.GetString("auth.issuer"),
		Audience: v.GetString("auth.audience"),
	}
	cfg.DB = DBConfig{
		Enabled:  v.GetBool("db.enabled"),
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),

		ConnMaxLifetime: v.GetDuration("db.conn_max_lifetime"),
	}
	cfg.Archive = ArchiveConfig{
		Enabled:       v.GetBool("archive.enabled"),
		Region:        v.GetString("archive.region"),
		Bucket:        v.GetString("archive.bucket"),
		Prefix:        strings.Trim(v.GetString("archive.prefix"), "/"),
		Endpoint:      v.GetString("archive.endpoint"),
		AccessKey:     v.GetString("archive.access_key"),
		SecretKey:     v.GetString("archive.secret_key"),
		PresignExpiry: v.GetInt64("archive.presign_expiry"),
	}
	cfg.Log = LogConfig{
		Level: v.GetString("log.level"),
	}

	if cfg.Engine.Provider == "" {
		return nil, fmt.Errorf("engine.provider must not be empty")
	}

	return cfg, nil
}
