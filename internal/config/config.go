package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Cache     CacheConfig
	Log       LogConfig
	Worker    WorkerConfig
	Dataset   DatasetConfig
	Storage   StorageConfig
	Nominatim NominatimConfig
}

type ServerConfig struct {
	Host        string
	Port        int
	Env         string
	CORSOrigins string
}

type DatabaseConfig struct {
	Enabled         bool
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type CacheConfig struct {
	DatasetTTL        time.Duration
	RecentSearchLimit int
}

type LogConfig struct {
	Level string
}

type WorkerConfig struct {
	Enabled           bool
	ConsumerGroup     string
	StreamReadTimeout time.Duration
	BatchSize         int
	MaxRetries        int
	RefreshInterval   time.Duration
}

// DatasetConfig - where postcode boundaries come from
type DatasetConfig struct {
	// Sources lists source names in fallback order: storage, postgres, file.
	Sources []string
	File    string
}

// StorageConfig - object storage holding the boundary file
type StorageConfig struct {
	URL     string
	Key     string
	Bucket  string
	Object  string
	Timeout time.Duration
}

type NominatimConfig struct {
	Enabled     bool
	BaseURL     string
	UserAgent   string
	Email       string
	MinInterval time.Duration
	Timeout     time.Duration
}

// Load reads .env from the working directory when present, then the environment.
func Load() (*Config, error) {
	return LoadFile(".env")
}

// LoadFile is Load with an explicit env file; a missing file is not an error.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:        v.GetString("API_HOST"),
			Port:        v.GetInt("API_PORT"),
			Env:         v.GetString("API_ENV"),
			CORSOrigins: v.GetString("API_CORS_ORIGINS"),
		},
		Database: DatabaseConfig{
			Enabled:         v.GetBool("DB_ENABLED"),
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			DBName:          v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			MaxConns:        v.GetInt("DB_MAX_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: time.Duration(v.GetInt("DB_CONN_MAX_LIFETIME")) * time.Second,
			ConnMaxIdleTime: time.Duration(v.GetInt("DB_CONN_MAX_IDLE_TIME")) * time.Second,
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("REDIS_ENABLED"),
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Cache: CacheConfig{
			DatasetTTL:        time.Duration(v.GetInt("DATASET_CACHE_TTL")) * time.Second,
			RecentSearchLimit: v.GetInt("SEARCH_HISTORY_SIZE"),
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
		Worker: WorkerConfig{
			Enabled:           v.GetBool("WORKER_ENABLED"),
			ConsumerGroup:     v.GetString("WORKER_CONSUMER_GROUP"),
			StreamReadTimeout: time.Duration(v.GetInt("WORKER_STREAM_READ_TIMEOUT")) * time.Millisecond,
			BatchSize:         v.GetInt("WORKER_BATCH_SIZE"),
			MaxRetries:        v.GetInt("WORKER_MAX_RETRIES"),
			RefreshInterval:   time.Duration(v.GetInt("WORKER_REFRESH_INTERVAL")) * time.Second,
		},
		Dataset: DatasetConfig{
			Sources: parseList(v.GetString("DATASET_SOURCES")),
			File:    v.GetString("DATASET_FILE"),
		},
		Storage: StorageConfig{
			URL:     strings.TrimRight(v.GetString("STORAGE_URL"), "/"),
			Key:     v.GetString("STORAGE_KEY"),
			Bucket:  v.GetString("STORAGE_BUCKET"),
			Object:  v.GetString("STORAGE_OBJECT"),
			Timeout: time.Duration(v.GetInt("STORAGE_TIMEOUT")) * time.Second,
		},
		Nominatim: NominatimConfig{
			Enabled:     v.GetBool("NOMINATIM_ENABLED"),
			BaseURL:     v.GetString("NOMINATIM_BASE_URL"),
			UserAgent:   v.GetString("NOMINATIM_USER_AGENT"),
			Email:       v.GetString("NOMINATIM_EMAIL"),
			MinInterval: time.Duration(v.GetInt("NOMINATIM_MIN_INTERVAL")) * time.Millisecond,
			Timeout:     time.Duration(v.GetInt("NOMINATIM_TIMEOUT")) * time.Second,
		},
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("API_HOST", "0.0.0.0")
	v.SetDefault("API_PORT", 8080)
	v.SetDefault("API_ENV", "development")
	v.SetDefault("API_CORS_ORIGINS", "*")

	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 2)
	v.SetDefault("DB_CONN_MAX_LIFETIME", 300)
	v.SetDefault("DB_CONN_MAX_IDLE_TIME", 60)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)

	v.SetDefault("DATASET_CACHE_TTL", 3600)
	v.SetDefault("SEARCH_HISTORY_SIZE", 10)

	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("WORKER_CONSUMER_GROUP", "postcode-reload-workers")
	v.SetDefault("WORKER_STREAM_READ_TIMEOUT", 5000)
	v.SetDefault("WORKER_BATCH_SIZE", 10)
	v.SetDefault("WORKER_MAX_RETRIES", 3)

	v.SetDefault("DATASET_SOURCES", "storage,postgres,file")
	v.SetDefault("DATASET_FILE", "data/vic-postcodes.json")

	v.SetDefault("STORAGE_BUCKET", "geojson-data")
	v.SetDefault("STORAGE_OBJECT", "vic-postcodes.json")
	v.SetDefault("STORAGE_TIMEOUT", 30)

	v.SetDefault("NOMINATIM_BASE_URL", "https://nominatim.openstreetmap.org")
	v.SetDefault("NOMINATIM_USER_AGENT", "postcode-finder/1.0")
	v.SetDefault("NOMINATIM_MIN_INTERVAL", 1000)
	v.SetDefault("NOMINATIM_TIMEOUT", 10)
}

func parseList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.ToLower(strings.TrimSpace(p)); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) GetDatabaseDSN() string {
	return c.Database.DSN()
}

func (c *Config) GetRedisAddr() string {
	return c.Redis.Addr()
}

// DSN renders the key/value connection string accepted by pgx and lib/pq.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// StorageConfigured reports whether the object store can be queried.
func (c *Config) StorageConfigured() bool {
	return c.Storage.URL != "" && c.Storage.Key != ""
}
