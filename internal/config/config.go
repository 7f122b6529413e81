package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

// TLSConfig holds HTTPS settings
type TLSConfig struct {
	Enabled    bool   `yaml:"enabled"`
	CertFile   string `yaml:"cert_file"`
	KeyFile    string `yaml:"key_file"`
	MinVersion string `yaml:"min_version"`
}

// SyncConfig holds realtime synchronization settings
type SyncConfig struct {
	// ChannelPrefix is prepended to the room identifier to form the
	// channel name used in logs and bridge subjects.
	ChannelPrefix string        `yaml:"channel_prefix"`
	PresenceTTL   time.Duration `yaml:"presence_ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
	SendBuffer    int           `yaml:"send_buffer"`
}

// NATSConfig holds cluster bridge settings. An empty URL disables the bridge.
type NATSConfig struct {
	URL string `yaml:"url"`
}

// DBConfig holds database settings
type DBConfig struct {
	Path string `yaml:"path"`
}

// StaticConfig holds static asset settings
type StaticConfig struct {
	Dir string `yaml:"dir"`
}

// Config is the root configuration
type Config struct {
	Server ServerConfig `yaml:"server"`
	TLS    TLSConfig    `yaml:"tls"`
	Sync   SyncConfig   `yaml:"sync"`
	NATS   NATSConfig   `yaml:"nats"`
	DB     DBConfig     `yaml:"db"`
	Static StaticConfig `yaml:"static"`
}

// LoadConfig builds the configuration from defaults, an optional YAML file
// (CONFIG_PATH, falling back to ./config.yaml) and environment variables, in
// that order. A .env file is loaded first if present.
func LoadConfig() *Config {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	cfg := defaultConfig()

	path := getEnv("CONFIG_PATH", "config.yaml")
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			log.Printf("Failed to parse config file %s, using defaults: %v", path, err)
			cfg = defaultConfig()
		} else {
			log.Printf("Loaded configuration from %s", path)
		}
	}

	cfg.Server.Host = getEnv("SERVER_HOST", cfg.Server.Host)
	cfg.Server.Port = getEnv("SERVER_PORT", cfg.Server.Port)
	cfg.TLS.Enabled = getEnvAsBool("TLS_ENABLED", cfg.TLS.Enabled)
	cfg.TLS.CertFile = getEnv("TLS_CERT_FILE", cfg.TLS.CertFile)
	cfg.TLS.KeyFile = getEnv("TLS_KEY_FILE", cfg.TLS.KeyFile)
	cfg.TLS.MinVersion = getEnv("TLS_MIN_VERSION", cfg.TLS.MinVersion)
	cfg.Sync.ChannelPrefix = getEnv("CHANNEL_PREFIX", cfg.Sync.ChannelPrefix)
	cfg.Sync.PresenceTTL = getEnvAsDuration("PRESENCE_TTL", cfg.Sync.PresenceTTL)
	cfg.Sync.SweepInterval = getEnvAsDuration("PRESENCE_SWEEP_INTERVAL", cfg.Sync.SweepInterval)
	cfg.Sync.SendBuffer = getEnvAsInt("SEND_BUFFER", cfg.Sync.SendBuffer)
	cfg.NATS.URL = getEnv("NATS_URL", cfg.NATS.URL)
	cfg.DB.Path = getEnv("DB_PATH", cfg.DB.Path)
	cfg.Static.Dir = getEnv("STATIC_DIR", cfg.Static.Dir)

	return cfg
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: "8080",
		},
		TLS: TLSConfig{
			Enabled:    false,
			MinVersion: "1.2",
		},
		Sync: SyncConfig{
			ChannelPrefix: "slides:",
			PresenceTTL:   90 * time.Second,
			SweepInterval: 30 * time.Second,
			SendBuffer:    32,
		},
		DB: DBConfig{
			Path: "./data/liveslides.db",
		},
		Static: StaticConfig{
			Dir: "./web",
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
