package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/certdesk/certdesk/pkg/logger"
)

// Config holds application configuration
type Config struct {
	Server       ServerConfig
	MongoDB      MongoDBConfig
	Redis        RedisConfig
	Keycloak     KeycloakConfig
	MinIO        MinIOConfig
	Templates    TemplatesConfig
	NamedInsured NamedInsuredConfig
	RateLimit    RateLimitConfig
	LogLevel     string
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// MongoDBConfig is optional. An empty URI selects in-memory repositories.
type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Addr returns host:port, or "" when Redis is not configured.
func (r RedisConfig) Addr() string {
	if r.Host == "" {
		return ""
	}
	return r.Host + ":" + r.Port
}

type KeycloakConfig struct {
	URL      string
	Realm    string
	ClientID string
	// Insecure accepts unsigned bearer tokens. Local and integration use only.
	Insecure bool
}

// Issuer returns the realm issuer URL, or "" when Keycloak is not configured.
func (k KeycloakConfig) Issuer() string {
	if k.URL == "" || k.Realm == "" {
		return ""
	}
	return k.URL + "/realms/" + k.Realm
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

type TemplatesConfig struct {
	Dir        string
	InlineBlob bool
}

type NamedInsuredConfig struct {
	BaseURL  string
	Token    string
	Timeout  time.Duration
	CacheTTL time.Duration
}

type RateLimitConfig struct {
	Enabled bool
	RPS     float64
	Burst   int
	Window  time.Duration
}

// LoadConfig loads configuration from environment variables and .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "5001")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_ENVIRONMENT", "development")
	viper.SetDefault("MONGODB_DATABASE", "certdesk")
	viper.SetDefault("MONGODB_TIMEOUT", 10)
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("MINIO_BUCKET", "certdesk")
	viper.SetDefault("TEMPLATES_DIR", "templates")
	viper.SetDefault("TEMPLATES_INLINE_BLOB", true)
	viper.SetDefault("NAMED_INSURED_TIMEOUT_MS", 3000)
	viper.SetDefault("NAMED_INSURED_CACHE_TTL", 600)
	viper.SetDefault("RATE_LIMIT_ENABLED", true)
	viper.SetDefault("RATE_LIMIT_RPS", 5.0)
	viper.SetDefault("RATE_LIMIT_BURST", 10)
	viper.SetDefault("RATE_LIMIT_WINDOW", 1)
	viper.SetDefault("LOG_LEVEL", "info")

	cfg := &Config{
		Server: ServerConfig{
			Port:         viper.GetString("SERVER_PORT"),
			Host:         viper.GetString("SERVER_HOST"),
			Environment:  viper.GetString("SERVER_ENVIRONMENT"),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		MongoDB: MongoDBConfig{
			URI:      viper.GetString("MONGODB_URI"),
			Database: viper.GetString("MONGODB_DATABASE"),
			Timeout:  time.Duration(viper.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Keycloak: KeycloakConfig{
			URL:      viper.GetString("KEYCLOAK_URL"),
			Realm:    viper.GetString("KEYCLOAK_REALM"),
			ClientID: viper.GetString("KEYCLOAK_CLIENT_ID"),
			Insecure: viper.GetBool("KEYCLOAK_INSECURE"),
		},
		MinIO: MinIOConfig{
			Endpoint:  viper.GetString("MINIO_ENDPOINT"),
			AccessKey: viper.GetString("MINIO_ACCESS_KEY"),
			SecretKey: viper.GetString("MINIO_SECRET_KEY"),
			UseSSL:    viper.GetBool("MINIO_USE_SSL"),
			Bucket:    viper.GetString("MINIO_BUCKET"),
		},
		Templates: TemplatesConfig{
			Dir:        viper.GetString("TEMPLATES_DIR"),
			InlineBlob: viper.GetBool("TEMPLATES_INLINE_BLOB"),
		},
		NamedInsured: NamedInsuredConfig{
			BaseURL:  viper.GetString("NAMED_INSURED_BASE_URL"),
			Token:    viper.GetString("NAMED_INSURED_TOKEN"),
			Timeout:  time.Duration(viper.GetInt("NAMED_INSURED_TIMEOUT_MS")) * time.Millisecond,
			CacheTTL: time.Duration(viper.GetInt("NAMED_INSURED_CACHE_TTL")) * time.Second,
		},
		RateLimit: RateLimitConfig{
			Enabled: viper.GetBool("RATE_LIMIT_ENABLED"),
			RPS:     viper.GetFloat64("RATE_LIMIT_RPS"),
			Burst:   viper.GetInt("RATE_LIMIT_BURST"),
			Window:  time.Duration(viper.GetInt("RATE_LIMIT_WINDOW")) * time.Second,
		},
		LogLevel: viper.GetString("LOG_LEVEL"),
	}

	if cfg.MongoDB.URI == "" {
		logger.Warnf("MONGODB_URI is not set; data is kept in memory only")
	}
	if cfg.Keycloak.Insecure && cfg.Server.Environment == "production" {
		logger.Warnf("KEYCLOAK_INSECURE is set in production; bearer token signatures are not checked")
	}
	if !cfg.Templates.InlineBlob && cfg.MinIO.Endpoint == "" {
		logger.Warnf("no template storage capability; templates are served from %s", cfg.Templates.Dir)
	}

	return cfg, nil
}
