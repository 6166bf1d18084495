package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Guard   GuardConfig   `yaml:"guard"`
	Memory  MemoryConfig  `yaml:"memory"`
	Storage StorageConfig `yaml:"storage"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// GetHost returns the server host, with container detection
func (c ServerConfig) GetHost() string {
	// In a container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// GuardConfig holds quality guard behavior switches.
type GuardConfig struct {
	Enabled bool   `yaml:"enabled"`
	Mode    string `yaml:"mode"` // "hard" blocks, "soft" logs failures but passes
}

// MemoryConfig holds rejection memory retention and bounds.
type MemoryConfig struct {
	RetentionDays   int `yaml:"retention_days"`
	MaxRejections   int `yaml:"max_rejections"`
	MaxSubjects     int `yaml:"max_subjects"`
	MaxFingerprints int `yaml:"max_fingerprints"`
	MaxFeedback     int `yaml:"max_feedback"`
}

// Retention returns the record retention window as a duration.
func (c MemoryConfig) Retention() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}

// StorageConfig holds rejection memory backend configuration.
// Redis is the fast tier; the durable tier is Postgres when DatabaseURL is
// set, otherwise a JSON file store under DataDir.
type StorageConfig struct {
	RedisAddr      string `yaml:"redis_addr"`
	RedisPassword  string `yaml:"redis_password"`
	RedisDB        int    `yaml:"redis_db"`
	DatabaseURL    string `yaml:"database_url"`
	DataDir        string `yaml:"data_dir"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the per-operation storage timeout as a duration
func (c StorageConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// Default returns a configuration with all defaults applied and no file read.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Guard.Mode == "" {
		cfg.Guard.Mode = "hard"
	}
	if cfg.Memory.RetentionDays == 0 {
		cfg.Memory.RetentionDays = 30
	}
	if cfg.Memory.MaxRejections == 0 {
		cfg.Memory.MaxRejections = 2
	}
	if cfg.Memory.MaxSubjects == 0 {
		cfg.Memory.MaxSubjects = 5
	}
	if cfg.Memory.MaxFingerprints == 0 {
		cfg.Memory.MaxFingerprints = 10
	}
	if cfg.Memory.MaxFeedback == 0 {
		cfg.Memory.MaxFeedback = 5
	}
	if cfg.Storage.DataDir == "" {
		cfg.Storage.DataDir = "./data"
	}
	if cfg.Storage.TimeoutSeconds == 0 {
		cfg.Storage.TimeoutSeconds = 5
	}
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so secrets can live in .env locally and in real env vars in deployment.
func LoadFromEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg *Config
	if path != "" {
		loaded, err := Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = Default()
	}

	if v := os.Getenv("GUARD_ENABLED"); v != "" {
		cfg.Guard.Enabled = parseBool(v)
	}
	if v := os.Getenv("GUARD_MODE"); v != "" {
		cfg.Guard.Mode = v
	}
	if v := os.Getenv("REJECTION_RETENTION_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Memory.RetentionDays = n
		}
	}
	if v := os.Getenv("MAX_REJECTIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Memory.MaxRejections = n
		}
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Storage.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Storage.RedisPassword = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Storage.DatabaseURL = v
	}
	if v := os.Getenv("GUARD_DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}

	return cfg, nil
}

func parseBool(v string) bool {
	b, err := strconv.ParseBool(v)
	return err == nil && b
}
