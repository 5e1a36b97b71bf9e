package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Storage backend names accepted by [StorageConfig.Backend].
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendBolt   = "bolt"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Database DatabaseConfig `toml:"database"`
	Storage  StorageConfig  `toml:"storage"`
	Gateway  GatewayConfig  `toml:"gateway"`
	Tasks    TasksConfig    `toml:"tasks"`
	Server   ServerConfig   `toml:"server"`
	Log      LogConfig      `toml:"log"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// StorageConfig selects the persistence backend behind the gateway.
type StorageConfig struct {
	Backend  string `toml:"backend"`
	BoltPath string `toml:"bolt_path"`
}

// GatewayConfig controls the simulated network cost of gateway calls.
type GatewayConfig struct {
	SimulateLatency   bool          `toml:"simulate_latency"`
	ReadDelay         time.Duration `toml:"read_delay"`
	CreateDelay       time.Duration `toml:"create_delay"`
	UpdateDelay       time.Duration `toml:"update_delay"`
	DeleteDelay       time.Duration `toml:"delete_delay"`
	ReorderDelay      time.Duration `toml:"reorder_delay"`
	RequestsPerSecond float64       `toml:"requests_per_second"`
	FailRate          float64       `toml:"fail_rate"`
}

// TasksConfig contains task defaults.
type TasksConfig struct {
	DefaultCategory string `toml:"default_category"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// Address returns the HTTP listen address.
func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Validate checks for values that would make the application misbehave.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendMemory, BackendSQLite, BackendBolt:
	default:
		return fmt.Errorf("%w: unknown storage backend %q", ErrInvalidConfig, c.Storage.Backend)
	}
	if c.Gateway.FailRate < 0 || c.Gateway.FailRate > 1 {
		return fmt.Errorf("%w: gateway.fail_rate must be between 0 and 1", ErrInvalidConfig)
	}
	if c.Gateway.RequestsPerSecond < 0 {
		return fmt.Errorf("%w: gateway.requests_per_second must not be negative", ErrInvalidConfig)
	}
	if c.Tasks.DefaultCategory == "" {
		return fmt.Errorf("%w: tasks.default_category is required", ErrInvalidConfig)
	}
	return nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s: %w", path, err)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv loads the optional dotenv file at envPath and applies TASKX_* overrides to config.
func ApplyEnv(config *Config, envPath string) error {
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load env file: %w", err)
		}
	}

	if v := os.Getenv("TASKX_STORAGE"); v != "" {
		config.Storage.Backend = v
	}
	if v := os.Getenv("TASKX_DB_PATH"); v != "" {
		config.Database.Path = v
	}
	if v := os.Getenv("TASKX_BOLT_PATH"); v != "" {
		config.Storage.BoltPath = v
	}
	if v := os.Getenv("TASKX_LOG_LEVEL"); v != "" {
		config.Log.Level = v
	}
	if v := os.Getenv("TASKX_SERVER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: TASKX_SERVER_PORT=%q", ErrInvalidConfig, v)
		}
		config.Server.Port = port
	}
	if v := os.Getenv("TASKX_SIMULATE_LATENCY"); v != "" {
		on, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: TASKX_SIMULATE_LATENCY=%q", ErrInvalidConfig, v)
		}
		config.Gateway.SimulateLatency = on
	}

	return config.Validate()
}
