package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage backends.
const (
	BackendRedis    = "redis"
	BackendMySQL    = "mysql"
	BackendPostgres = "postgres"
	BackendNone     = "none"
)

type RateLimit struct {
	Capacity        int `yaml:"capacity"`
	RefillPerMinute int `yaml:"refillPerMinute"`
}

type Config struct {
	Server struct {
		Port           int       `yaml:"port"`
		MaxUploadMB    int       `yaml:"maxUploadMB"`
		AllowedOrigins []string  `yaml:"allowedOrigins"`
		RateLimit      RateLimit `yaml:"rateLimit"`
	} `yaml:"server"`

	Log struct {
		Level       string `yaml:"level"`
		Development bool   `yaml:"development"`
	} `yaml:"log"`

	AI struct {
		APIKey         string   `yaml:"apiKey"`
		BaseURL        string   `yaml:"baseURL"`
		Model          string   `yaml:"model"`
		Temperature    *float32 `yaml:"temperature"`
		MaxTokens      int      `yaml:"maxTokens"`
		TimeoutSeconds int      `yaml:"timeoutSeconds"`
		StrictEnums    *bool    `yaml:"strictEnums"`
	} `yaml:"ai"`

	Storage struct {
		Backend   string `yaml:"backend"`
		Prefix    string `yaml:"prefix"`
		ScanCount int    `yaml:"scanCount"`
	} `yaml:"storage"`

	Redis struct {
		URL string `yaml:"url"`
	} `yaml:"redis"`

	Database struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslMode"`
	} `yaml:"database"`

	Minio struct {
		Enabled    bool   `yaml:"enabled"`
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`
}

// Load baca file config.yaml, lalu env override dan default.
// A missing file is fine: everything can come from the environment.
func Load(path string) (*Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	cfg.applyEnv(os.Getenv)
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("GROQ_API_KEY"); v != "" {
		c.AI.APIKey = v
	}
	if v := getenv("AI_API_KEY"); v != "" {
		c.AI.APIKey = v
	}
	if v := getenv("REDIS_URL"); v != "" {
		c.Redis.URL = v
	}
	if v := getenv("SERVER_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.MaxUploadMB <= 0 {
		c.Server.MaxUploadMB = 10
	}
	if c.Server.RateLimit.Capacity == 0 {
		c.Server.RateLimit.Capacity = 10
	}
	if c.Server.RateLimit.RefillPerMinute == 0 {
		c.Server.RateLimit.RefillPerMinute = 5
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.AI.TimeoutSeconds <= 0 {
		c.AI.TimeoutSeconds = 60
	}
	if c.AI.StrictEnums == nil {
		strict := true
		c.AI.StrictEnums = &strict
	}
	if c.Storage.Backend == "" {
		// no explicit backend: use redis when an URL is there
		c.Storage.Backend = BackendNone
		if c.Redis.URL != "" {
			c.Storage.Backend = BackendRedis
		}
	}
	c.Storage.Backend = strings.ToLower(c.Storage.Backend)
	if c.Storage.Prefix == "" {
		c.Storage.Prefix = "grant:analysis:"
	}
	if c.Storage.ScanCount <= 0 {
		c.Storage.ScanCount = 100
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
}

// Validate reports the first configuration error.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.AI.APIKey) == "" {
		return errors.New("ai.apiKey is required (or set AI_API_KEY / GROQ_API_KEY)")
	}
	switch c.Storage.Backend {
	case BackendNone:
	case BackendRedis:
		if c.Redis.URL == "" {
			return errors.New("redis.url is required for the redis backend")
		}
	case BackendMySQL, BackendPostgres:
		if c.Database.Host == "" || c.Database.Name == "" {
			return fmt.Errorf("database.host and database.name are required for the %s backend", c.Storage.Backend)
		}
	default:
		return fmt.Errorf("unknown storage backend %q (allowed: redis, mysql, postgres, none)", c.Storage.Backend)
	}
	if c.Minio.Enabled && (c.Minio.Endpoint == "" || c.Minio.BucketName == "") {
		return errors.New("minio.endpoint and minio.bucketName are required when minio is enabled")
	}
	return nil
}

func (c *Config) StrictEnums() bool { return c.AI.StrictEnums == nil || *c.AI.StrictEnums }

func (c *Config) MaxUploadBytes() int64 { return int64(c.Server.MaxUploadMB) << 20 }

func (c *Config) CompletionTimeout() time.Duration {
	return time.Duration(c.AI.TimeoutSeconds) * time.Second
}

// Helper untuk build DSN MySQL
func (c *Config) MySQLDSN() string {
	port := c.Database.Port
	if port == 0 {
		port = 3306
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		port,
		c.Database.Name,
	)
}

// PostgresDSN builds a lib/pq connection URL.
func (c *Config) PostgresDSN() string {
	port := c.Database.Port
	if port == 0 {
		port = 5432
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Database.User, c.Database.Password),
		Host:     fmt.Sprintf("%s:%d", c.Database.Host, port),
		Path:     "/" + c.Database.Name,
		RawQuery: url.Values{"sslmode": {c.Database.SSLMode}}.Encode(),
	}
	return u.String()
}
