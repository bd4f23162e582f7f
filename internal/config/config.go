package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/nearby-places/internal/pkg/errors"
)

type Config struct {
	Server   ServerConfig
	Mapbox   MapboxConfig
	Redis    RedisConfig
	Cache    CacheConfig
	Search   SearchConfig
	Location LocationConfig
	Session  SessionConfig
	Log      LogConfig
}

type ServerConfig struct {
	Host string
	Port int
	Env  string
	// CORSAllowOrigins - список источников через запятую или "*"
	CORSAllowOrigins string
}

type MapboxConfig struct {
	AccessToken    string
	BaseURL        string
	RequestTimeout time.Duration
	// Debug включает логирование каждого запроса к провайдеру
	Debug bool
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type CacheConfig struct {
	SearchCacheTTL time.Duration
	MaxEntries     int
	// Precision - количество знаков после запятой при округлении координат в ключе кеша
	Precision int
}

type SearchConfig struct {
	MaxRetries    int
	RetryInterval time.Duration
	AutoSearch    bool
}

type LocationConfig struct {
	Timeout time.Duration
}

type SessionConfig struct {
	IdleTTL       time.Duration
	SweepInterval time.Duration
}

type LogConfig struct {
	Level string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("API_HOST", "0.0.0.0")
	v.SetDefault("API_PORT", 8080)
	v.SetDefault("API_ENV", "development")
	v.SetDefault("API_CORS_ALLOW_ORIGINS", "*")
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("MAPBOX_BASE_URL", "https://api.mapbox.com")
	v.SetDefault("MAPBOX_REQUEST_TIMEOUT", 10)
	v.SetDefault("MAPBOX_DEBUG", false)

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("SEARCH_CACHE_TTL", 300)
	v.SetDefault("SEARCH_CACHE_MAX_ENTRIES", 1000)
	v.SetDefault("SEARCH_CACHE_PRECISION", 4)
	v.SetDefault("SEARCH_MAX_RETRIES", 2)
	v.SetDefault("SEARCH_RETRY_INTERVAL_MS", 200)
	v.SetDefault("SEARCH_AUTO", true)

	v.SetDefault("LOCATION_TIMEOUT", 10)

	v.SetDefault("SESSION_IDLE_TTL", 1800)
	v.SetDefault("SESSION_SWEEP_INTERVAL", 60)
}

// Load читает .env (если есть) и переменные окружения.
// Без MAPBOX_ACCESS_TOKEN конфигурация невалидна.
func Load() (*Config, error) {
	// .env опционален: в контейнере всё приходит из окружения
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		Server: ServerConfig{
			Host: v.GetString("API_HOST"),
			Port: v.GetInt("API_PORT"),
			Env:  v.GetString("API_ENV"),

			CORSAllowOrigins: v.GetString("API_CORS_ALLOW_ORIGINS"),
		},
		Mapbox: MapboxConfig{
			AccessToken:    v.GetString("MAPBOX_ACCESS_TOKEN"),
			BaseURL:        v.GetString("MAPBOX_BASE_URL"),
			RequestTimeout: time.Duration(v.GetInt("MAPBOX_REQUEST_TIMEOUT")) * time.Second,
			Debug:          v.GetBool("MAPBOX_DEBUG"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("REDIS_ENABLED"),
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Cache: CacheConfig{
			SearchCacheTTL: time.Duration(v.GetInt("SEARCH_CACHE_TTL")) * time.Second,
			MaxEntries:     v.GetInt("SEARCH_CACHE_MAX_ENTRIES"),
			Precision:      v.GetInt("SEARCH_CACHE_PRECISION"),
		},
		Search: SearchConfig{
			MaxRetries:    v.GetInt("SEARCH_MAX_RETRIES"),
			RetryInterval: time.Duration(v.GetInt("SEARCH_RETRY_INTERVAL_MS")) * time.Millisecond,
			AutoSearch:    v.GetBool("SEARCH_AUTO"),
		},
		Location: LocationConfig{
			Timeout: time.Duration(v.GetInt("LOCATION_TIMEOUT")) * time.Second,
		},
		Session: SessionConfig{
			IdleTTL:       time.Duration(v.GetInt("SESSION_IDLE_TTL")) * time.Second,
			SweepInterval: time.Duration(v.GetInt("SESSION_SWEEP_INTERVAL")) * time.Second,
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate проверяет обязательные параметры
func (c *Config) Validate() error {
	if c.Mapbox.AccessToken == "" {
		return errors.ErrMissingAPIKey
	}
	if c.Mapbox.BaseURL == "" {
		return fmt.Errorf("MAPBOX_BASE_URL must not be empty")
	}
	if c.Search.MaxRetries < 0 {
		return fmt.Errorf("SEARCH_MAX_RETRIES must be >= 0, got %d", c.Search.MaxRetries)
	}
	if c.Cache.Precision < 0 || c.Cache.Precision > 8 {
		return fmt.Errorf("SEARCH_CACHE_PRECISION must be in [0,8], got %d", c.Cache.Precision)
	}
	return nil
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Addr возвращает адрес Redis в формате host:port
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
