package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Store backends
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendSQL    = "sql"
)

type Config struct {
	Server ServerConfig
	Store  StoreConfig
	Mongo  MongoConfig
	Redis  RedisConfig
	SQL    SQLConfig `mapstructure:"sql"`
	AI     AIConfig  `mapstructure:"ai"`
	Log    LogConfig
	CORS   CORSConfig `mapstructure:"cors"`
}

type ServerConfig struct {
	Port     string
	Mode     string // debug or release
	Timezone string // used to render response timestamps
	BaseURL  string `mapstructure:"base_url"` // public URL used in share links
}

type StoreConfig struct {
	Backend   string
	Namespace string // key prefix, e.g. "ai-form-builder"
}

type MongoConfig struct {
	URI      string
	Database string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type SQLConfig struct {
	DSN string
}

type LogConfig struct {
	File string
}

type CORSConfig struct {
	AllowedOrigins string `mapstructure:"allowed_origins"`
}

// Location resolves the configured timezone, falling back to local time
func (c *ServerConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.timezone", "")
	v.SetDefault("server.base_url", "http://localhost:8080/")

	v.SetDefault("store.backend", BackendMemory)
	v.SetDefault("store.namespace", "ai-form-builder")

	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "formbuilder")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("sql.dsn", "")

	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.base_url", "")
	v.SetDefault("ai.model", DefaultGenerationModel)
	v.SetDefault("ai.timeout_ms", 30000)
	v.SetDefault("ai.rate_per_minute", 10)

	v.SetDefault("log.file", "logs/formbuilder.log")

	v.SetDefault("cors.allowed_origins", "*")
}

// Load reads config.yaml from path (if present) and the environment.
// A missing config file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.AddConfigPath(path)
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("FORMBUILDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unprefixed names kept for existing deployments
	v.BindEnv("ai.api_key", "FORMBUILDER_AI_API_KEY", "GEMINI_API_KEY", "API_KEY")
	v.BindEnv("ai.model", "FORMBUILDER_AI_MODEL", "GEMINI_MODEL")
	v.BindEnv("mongo.uri", "FORMBUILDER_MONGO_URI", "MONGO_URI")
	v.BindEnv("redis.addr", "FORMBUILDER_REDIS_ADDR", "REDIS_URI")
	v.BindEnv("server.port", "FORMBUILDER_SERVER_PORT", "PORT")
	v.BindEnv("cors.allowed_origins", "FORMBUILDER_CORS_ALLOWED_ORIGINS", "CORS_ALLOWED_ORIGINS")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	// Remove redis:// prefix if present
	cfg.Redis.Addr = strings.TrimPrefix(cfg.Redis.Addr, "redis://")

	switch cfg.Store.Backend {
	case BackendMemory, BackendRedis, BackendMongo:
	case BackendSQL:
		if cfg.SQL.DSN == "" {
			return nil, errors.New("sql store selected but sql.dsn is empty")
		}
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	return &cfg, nil
}
