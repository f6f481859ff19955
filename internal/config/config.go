package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	BackendFile = "file"
	BackendSQL  = "sql"

	defaultHTTPAddr  = ":8080"
	defaultDataDir   = "data"
	defaultBackend   = BackendFile
	defaultJWTSecret = "change-me-jwt-secret"
	defaultJWTTTL    = "24h"
	defaultLogLevel  = "info"
	defaultLogFormat = "console"
	defaultSQLiteDSN = "theknife.db"
)

type Config struct {
	AppEnv   string
	HTTPAddr string

	DataDir       string
	CatalogFile   string
	OwnersFile    string
	FavoritesFile string
	ReviewsFile   string

	StoreBackend string
	DatabaseURL  string

	JWTSecret string
	JWTTTL    time.Duration

	LogLevel  string
	LogFormat string

	CORSOrigins []string
}

// Load reads .env when present, then an optional config.yaml from "." or
// "./configs". Environment variables win over the file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{}
	appEnv := strings.TrimSpace(v.GetString("APP_ENV"))
	if appEnv == "" {
		appEnv = strings.TrimSpace(v.GetString("ENV"))
	}
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.HTTPAddr = strings.TrimSpace(v.GetString("HTTP_ADDR"))
	cfg.DataDir = strings.TrimSpace(v.GetString("DATA_DIR"))
	cfg.CatalogFile = dataPath(cfg.DataDir, v.GetString("CATALOG_FILE"))
	cfg.OwnersFile = dataPath(cfg.DataDir, v.GetString("OWNERS_FILE"))
	cfg.FavoritesFile = dataPath(cfg.DataDir, v.GetString("FAVORITES_FILE"))
	cfg.ReviewsFile = dataPath(cfg.DataDir, v.GetString("REVIEWS_FILE"))

	cfg.StoreBackend = strings.ToLower(strings.TrimSpace(v.GetString("STORE_BACKEND")))
	cfg.DatabaseURL = strings.TrimSpace(v.GetString("DATABASE_URL"))

	cfg.JWTSecret = strings.TrimSpace(v.GetString("JWT_SECRET"))
	var err error
	cfg.JWTTTL, err = parseDuration("JWT_TTL", v.GetString("JWT_TTL"))
	if err != nil {
		return nil, err
	}

	cfg.LogLevel = strings.TrimSpace(v.GetString("LOG_LEVEL"))
	cfg.LogFormat = strings.TrimSpace(v.GetString("LOG_FORMAT"))
	cfg.CORSOrigins = parseList(v.GetString("CORS_ORIGINS"))

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("HTTP_ADDR", defaultHTTPAddr)
	v.SetDefault("DATA_DIR", defaultDataDir)
	v.SetDefault("CATALOG_FILE", "michelin_my_maps.csv")
	v.SetDefault("OWNERS_FILE", "ristoratori_ristoranti.csv")
	v.SetDefault("FAVORITES_FILE", "preferiti.csv")
	v.SetDefault("REVIEWS_FILE", "recensioni.csv")
	v.SetDefault("STORE_BACKEND", defaultBackend)
	v.SetDefault("DATABASE_URL", defaultSQLiteDSN)
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_TTL", defaultJWTTTL)
	v.SetDefault("LOG_LEVEL", defaultLogLevel)
	v.SetDefault("LOG_FORMAT", defaultLogFormat)
}

func validateConfig(cfg *Config) error {
	if cfg.HTTPAddr == "" {
		return fmt.Errorf("HTTP_ADDR must not be empty")
	}
	if cfg.StoreBackend != BackendFile && cfg.StoreBackend != BackendSQL {
		return fmt.Errorf("STORE_BACKEND must be one of: file, sql")
	}
	if cfg.StoreBackend == BackendSQL && cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required when STORE_BACKEND=sql")
	}
	if cfg.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	if isProdLike(cfg.AppEnv) && isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
		return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
	}
	return nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

// dataPath resolves a file setting. Relative values sit under dir.
func dataPath(dir, v string) string {
	v = strings.TrimSpace(v)
	if filepath.IsAbs(v) {
		return v
	}
	return filepath.Join(dir, v)
}

func parseDuration(name, value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseList(value string) []string {
	var out []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
