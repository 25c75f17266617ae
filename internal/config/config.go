package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Server     ServerConfig
	Log        LogConfig
	Generation GenerationConfig
	QA         QAConfig
	Summary    SummaryConfig
	Store      StoreConfig
	Redis      RedisConfig
	RateLimit  RateLimitConfig
	MongoDB    MongoDBConfig
	MinIO      MinIOConfig
	Auth       AuthConfig
}

type ServerConfig struct {
	Port              string
	QAPort            string
	SummaryPort       string
	Host              string
	Environment       string
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	MaxUploadBytes    int64
	AllowedExtensions []string
}

type LogConfig struct {
	Level  string
	Format string
}

// Generation backend providers.
const (
	ProviderNone      = "none"
	ProviderInference = "inference"
	ProviderOpenAI    = "openai"
)

type GenerationConfig struct {
	Provider      string
	URL           string
	Model         string
	ModelPath     string
	TokenizerPath string
	Timeout       time.Duration
	InputBudget   int
	OpenAIAPIKey  string
	OpenAIBaseURL string
}

type QAConfig struct {
	Strategy        string
	UploadBattery   string
	ServerBattery   string
	BulkConcurrency int
}

type SummaryConfig struct {
	FallbackStrategy string
	UploadStrategy   string
}

type StoreConfig struct {
	MaxSlots  int
	SlotTTL   time.Duration
	SweepSpec string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type RateLimitConfig struct {
	Enabled       bool
	UseRedis      bool
	RPS           float64
	Burst         int
	WindowSeconds int
}

type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

// Auth modes.
const (
	AuthNone = "none"
	AuthJWT  = "jwt"
	AuthOIDC = "oidc"
)

type AuthConfig struct {
	Mode             string
	JWTSecret        string
	KeycloakURL      string
	KeycloakRealm    string
	KeycloakClientID string
}

// LoadConfig loads configuration from environment variables and .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env")

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "5000")
	viper.SetDefault("QA_SERVICE_PORT", "8000")
	viper.SetDefault("SUMMARY_SERVICE_PORT", "8001")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_ENVIRONMENT", "development")
	viper.SetDefault("MAX_UPLOAD_BYTES", 10<<20)
	viper.SetDefault("ALLOWED_EXTENSIONS", ".txt")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "text")

	viper.SetDefault("GENERATION_PROVIDER", ProviderNone)
	viper.SetDefault("GENERATION_URL", "http://localhost:8080")
	viper.SetDefault("GENERATION_MODEL", "t5-small")
	viper.SetDefault("MODEL_PATH", "models/summary_model/epoch10.pth")
	viper.SetDefault("TOKENIZER_PATH", "t5-base")
	viper.SetDefault("GENERATION_TIMEOUT", 60)
	viper.SetDefault("GENERATION_INPUT_BUDGET", 512)

	viper.SetDefault("QA_STRATEGY", "rule_based")
	viper.SetDefault("QA_UPLOAD_BATTERY", "legal15")
	viper.SetDefault("QA_SERVER_BATTERY", "legal8")
	viper.SetDefault("QA_BULK_CONCURRENCY", 2)

	viper.SetDefault("SUMMARY_FALLBACK_STRATEGY", "first_middle_last")
	viper.SetDefault("SUMMARY_UPLOAD_STRATEGY", "lead_trail")

	viper.SetDefault("STORE_MAX_SLOTS", 128)
	viper.SetDefault("STORE_SLOT_TTL", 0)
	viper.SetDefault("STORE_SWEEP_SPEC", "@every 1m")

	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("RATE_LIMIT_RPS", 5.0)
	viper.SetDefault("RATE_LIMIT_BURST", 10)
	viper.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 1)

	viper.SetDefault("MONGODB_DATABASE", "talqs")
	viper.SetDefault("MONGODB_TIMEOUT", 10)
	viper.SetDefault("MINIO_BUCKET", "talqs-models")
	viper.SetDefault("AUTH_MODE", AuthNone)

	cfg := &Config{
		Server: ServerConfig{
			Port:              viper.GetString("SERVER_PORT"),
			QAPort:            viper.GetString("QA_SERVICE_PORT"),
			SummaryPort:       viper.GetString("SUMMARY_SERVICE_PORT"),
			Host:              viper.GetString("SERVER_HOST"),
			Environment:       viper.GetString("SERVER_ENVIRONMENT"),
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      120 * time.Second,
			MaxUploadBytes:    viper.GetInt64("MAX_UPLOAD_BYTES"),
			AllowedExtensions: splitList(viper.GetString("ALLOWED_EXTENSIONS")),
		},
		Log: LogConfig{
			Level:  viper.GetString("LOG_LEVEL"),
			Format: viper.GetString("LOG_FORMAT"),
		},
		Generation: GenerationConfig{
			Provider:      strings.ToLower(viper.GetString("GENERATION_PROVIDER")),
			URL:           viper.GetString("GENERATION_URL"),
			Model:         viper.GetString("GENERATION_MODEL"),
			ModelPath:     viper.GetString("MODEL_PATH"),
			TokenizerPath: viper.GetString("TOKENIZER_PATH"),
			Timeout:       time.Duration(viper.GetInt("GENERATION_TIMEOUT")) * time.Second,
			InputBudget:   viper.GetInt("GENERATION_INPUT_BUDGET"),
			OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
			OpenAIBaseURL: viper.GetString("OPENAI_BASE_URL"),
		},
		QA: QAConfig{
			Strategy:        strings.ToLower(viper.GetString("QA_STRATEGY")),
			UploadBattery:   viper.GetString("QA_UPLOAD_BATTERY"),
			ServerBattery:   viper.GetString("QA_SERVER_BATTERY"),
			BulkConcurrency: viper.GetInt("QA_BULK_CONCURRENCY"),
		},
		Summary: SummaryConfig{
			FallbackStrategy: viper.GetString("SUMMARY_FALLBACK_STRATEGY"),
			UploadStrategy:   viper.GetString("SUMMARY_UPLOAD_STRATEGY"),
		},
		Store: StoreConfig{
			MaxSlots:  viper.GetInt("STORE_MAX_SLOTS"),
			SlotTTL:   time.Duration(viper.GetInt("STORE_SLOT_TTL")) * time.Minute,
			SweepSpec: viper.GetString("STORE_SWEEP_SPEC"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       0,
		},
		RateLimit: RateLimitConfig{
			Enabled:       viper.GetBool("RATE_LIMIT_ENABLED"),
			UseRedis:      viper.GetBool("RATE_LIMIT_USE_REDIS"),
			RPS:           viper.GetFloat64("RATE_LIMIT_RPS"),
			Burst:         viper.GetInt("RATE_LIMIT_BURST"),
			WindowSeconds: viper.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
		MongoDB: MongoDBConfig{
			URI:      os.Getenv("MONGODB_URI"),
			Database: viper.GetString("MONGODB_DATABASE"),
			Timeout:  time.Duration(viper.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		MinIO: MinIOConfig{
			Endpoint:  viper.GetString("MINIO_ENDPOINT"),
			AccessKey: viper.GetString("MINIO_ACCESS_KEY"),
			SecretKey: os.Getenv("MINIO_SECRET_KEY"),
			UseSSL:    viper.GetBool("MINIO_USE_SSL"),
			Bucket:    viper.GetString("MINIO_BUCKET"),
		},
		Auth: AuthConfig{
			Mode:             strings.ToLower(viper.GetString("AUTH_MODE")),
			JWTSecret:        os.Getenv("JWT_SECRET"),
			KeycloakURL:      viper.GetString("KEYCLOAK_URL"),
			KeycloakRealm:    viper.GetString("KEYCLOAK_REALM"),
			KeycloakClientID: viper.GetString("KEYCLOAK_CLIENT_ID"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects unknown provider, auth mode and numeric settings that
// cannot work. Strategy and battery names are checked by the packages that own
// them.
func (c *Config) Validate() error {
	switch c.Generation.Provider {
	case ProviderNone, ProviderInference, ProviderOpenAI:
	default:
		return fmt.Errorf("unknown GENERATION_PROVIDER %q", c.Generation.Provider)
	}
	switch c.Auth.Mode {
	case AuthNone:
	case AuthJWT:
		if c.Auth.JWTSecret == "" {
			return fmt.Errorf("AUTH_MODE=jwt requires JWT_SECRET")
		}
	case AuthOIDC:
		if c.Auth.KeycloakURL == "" || c.Auth.KeycloakClientID == "" {
			return fmt.Errorf("AUTH_MODE=oidc requires KEYCLOAK_URL and KEYCLOAK_CLIENT_ID")
		}
	default:
		return fmt.Errorf("unknown AUTH_MODE %q", c.Auth.Mode)
	}
	if c.Generation.InputBudget <= 0 {
		return fmt.Errorf("GENERATION_INPUT_BUDGET must be positive")
	}
	if c.Generation.Timeout <= 0 {
		return fmt.Errorf("GENERATION_TIMEOUT must be positive")
	}
	if len(c.Server.AllowedExtensions) == 0 {
		return fmt.Errorf("ALLOWED_EXTENSIONS must not be empty")
	}
	return nil
}

// Issuer returns the OIDC issuer URL built from the Keycloak settings.
func (a AuthConfig) Issuer() string {
	if a.KeycloakRealm == "" {
		return a.KeycloakURL
	}
	return strings.TrimRight(a.KeycloakURL, "/") + "/realms/" + a.KeycloakRealm
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if !strings.HasPrefix(p, ".") {
			p = "." + p
		}
		out = append(out, p)
	}
	return out
}
