package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Token store drivers.
const (
	TokenStoreFile  = "file"
	TokenStoreRedis = "redis"
)

type Config struct {
	Env string

	API         APIConfig
	Log         LogConfig
	TokenStore  TokenStoreConfig
	Redis       RedisConfig
	Poll        PollConfig
	Marketplace MarketplaceConfig
	Refresh     RefreshConfig
	Status      StatusConfig
	CORS        CORSConfig
	Export      ExportConfig
	Output      OutputConfig
}

// APIConfig points the client at the CircleEd REST backend.
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

// TokenStoreConfig selects where access_token and the user snapshot live.
type TokenStoreConfig struct {
	Driver string
	Path   string
	Prefix string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// PollConfig controls the watcher's periodic refresh.
type PollConfig struct {
	Interval time.Duration
}

// MarketplaceConfig tunes skill search.
type MarketplaceConfig struct {
	Debounce time.Duration
}

// RefreshConfig sizes the background refresh worker pool.
type RefreshConfig struct {
	Workers    int
	BufferSize int
	Retries    int
	RetryDelay time.Duration
}

// StatusConfig configures the local status API served in watch mode.
type StatusConfig struct {
	Port int
}

type CORSConfig struct {
	AllowedOrigins []string
}

// ExportConfig controls wallet statement exports.
type ExportConfig struct {
	Dir string
}

// OutputConfig controls how CLI results are printed.
type OutputConfig struct {
	JSON bool
}

// Option adjusts the viper instance before values are read.
type Option func(v *viper.Viper) error

// WithFlags binds command-line flags to config keys so a flag given on the
// command line wins over the environment. keys maps flag names to keys;
// unknown flag names are skipped.
func WithFlags(flags *pflag.FlagSet, keys map[string]string) Option {
	return func(v *viper.Viper) error {
		for name, key := range keys {
			flag := flags.Lookup(name)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
		return nil
	}
}

func Load(opts ...Option) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)
	for _, opt := range opts {
		if err := opt(v); err != nil {
			return nil, err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}
	cfg.Env = v.GetString("ENV")

	cfg.API = APIConfig{
		BaseURL: strings.TrimRight(v.GetString("CIRCLEED_API_URL"), "/"),
		Timeout: parseDuration(v.GetString("HTTP_TIMEOUT"), 15*time.Second),
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.TokenStore = TokenStoreConfig{
		Driver: strings.ToLower(v.GetString("TOKEN_STORE")),
		Path:   v.GetString("TOKEN_STORE_PATH"),
		Prefix: v.GetString("TOKEN_STORE_PREFIX"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Poll = PollConfig{
		Interval: parseDuration(v.GetString("POLL_INTERVAL"), 30*time.Second),
	}

	cfg.Marketplace = MarketplaceConfig{
		Debounce: parseDuration(v.GetString("SEARCH_DEBOUNCE"), 300*time.Millisecond),
	}

	cfg.Refresh = RefreshConfig{
		Workers:    v.GetInt("REFRESH_WORKERS"),
		BufferSize: v.GetInt("REFRESH_BUFFER_SIZE"),
		Retries:    v.GetInt("REFRESH_RETRIES"),
		RetryDelay: parseDuration(v.GetString("REFRESH_RETRY_DELAY"), time.Second),
	}

	cfg.Status = StatusConfig{Port: v.GetInt("STATUS_PORT")}
	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}
	cfg.Export = ExportConfig{Dir: v.GetString("EXPORT_DIR")}
	cfg.Output = OutputConfig{JSON: v.GetBool("OUTPUT_JSON")}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("CIRCLEED_API_URL", "http://localhost:8000/api/v1")
	v.SetDefault("HTTP_TIMEOUT", "15s")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	v.SetDefault("TOKEN_STORE", TokenStoreFile)
	v.SetDefault("TOKEN_STORE_PATH", ".circleed/session.json")
	v.SetDefault("TOKEN_STORE_PREFIX", "circleed:")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("POLL_INTERVAL", "30s")
	v.SetDefault("SEARCH_DEBOUNCE", "300ms")

	v.SetDefault("REFRESH_WORKERS", 2)
	v.SetDefault("REFRESH_BUFFER_SIZE", 16)
	v.SetDefault("REFRESH_RETRIES", 0)
	v.SetDefault("REFRESH_RETRY_DELAY", "1s")

	v.SetDefault("STATUS_PORT", 8787)
	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("EXPORT_DIR", "./exports")
	v.SetDefault("OUTPUT_JSON", false)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
