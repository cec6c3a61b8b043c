package vigil

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the configuration for a server Monitor.
//
// All duration fields accept standard Go duration strings like "500ms", "10s", "1m"
// when loaded from YAML.
type Config struct {
	// HeartbeatInterval is the time between heartbeat cycles.
	// Shorter intervals detect state changes faster but increase load on
	// the server. Recommended: 10 seconds.
	HeartbeatInterval time.Duration `yaml:"heartbeatInterval"`

	// HeartbeatTimeout is the budget for one heartbeat cycle. It bounds
	// connection checkout and both status commands together under one
	// sliding deadline. Recommended: 10 seconds.
	HeartbeatTimeout time.Duration `yaml:"heartbeatTimeout"`

	// MinHeartbeatInterval is the floor between consecutive heartbeats
	// when rechecks are forced via RequestCheck or Invalidate. It
	// protects the server from recheck storms while still reacting well
	// below HeartbeatInterval. Recommended: 500 milliseconds.
	MinHeartbeatInterval time.Duration `yaml:"minHeartbeatInterval"`

	// ShutdownTimeout is the maximum time Stop waits for the monitor
	// loop to unwind. Recommended: 10 seconds.
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// DefaultConfig returns a Config with sensible defaults.
//
// Returns:
//   - Config: Configuration with default values
func DefaultConfig() Config {
	return Config{
		HeartbeatInterval:    10 * time.Second,
		HeartbeatTimeout:     10 * time.Second,
		MinHeartbeatInterval: 500 * time.Millisecond,
		ShutdownTimeout:      10 * time.Second,
	}
}

// SetDefaults fills in missing configuration values with production defaults.
//
// Parameters:
//   - cfg: Config to apply defaults to (modified in place)
func SetDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.HeartbeatInterval == 0 {
		cfg.HeartbeatInterval = defaults.HeartbeatInterval
	}
	if cfg.HeartbeatTimeout == 0 {
		cfg.HeartbeatTimeout = defaults.HeartbeatTimeout
	}
	if cfg.MinHeartbeatInterval == 0 {
		cfg.MinHeartbeatInterval = defaults.MinHeartbeatInterval
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = defaults.ShutdownTimeout
	}
}

// Validate checks configuration constraints and returns an error for invalid values.
//
// Hard Validation Rules:
//   - HeartbeatInterval > 0
//   - HeartbeatTimeout > 0
//   - MinHeartbeatInterval > 0
//   - MinHeartbeatInterval <= HeartbeatInterval (floor cannot exceed the schedule)
//
// Returns:
//   - error: Validation error with clear explanation, nil if valid
func (cfg *Config) Validate() error {
	if cfg.HeartbeatInterval <= 0 {
		return fmt.Errorf("HeartbeatInterval must be > 0, got %v", cfg.HeartbeatInterval)
	}

	if cfg.HeartbeatTimeout <= 0 {
		return fmt.Errorf("HeartbeatTimeout must be > 0, got %v", cfg.HeartbeatTimeout)
	}

	if cfg.MinHeartbeatInterval <= 0 {
		return fmt.Errorf("MinHeartbeatInterval must be > 0, got %v", cfg.MinHeartbeatInterval)
	}

	if cfg.MinHeartbeatInterval > cfg.HeartbeatInterval {
		return fmt.Errorf(
			"MinHeartbeatInterval (%v) must be <= HeartbeatInterval (%v)",
			cfg.MinHeartbeatInterval, cfg.HeartbeatInterval,
		)
	}

	return nil
}

// LoadConfigFile reads a YAML configuration file, applies defaults for
// missing values and validates the result.
//
// Parameters:
//   - path: File path of the YAML configuration
//
// Returns:
//   - Config: Parsed, defaulted and validated configuration
//   - error: Read, parse or validation error
//
// Example:
//
//	cfg, err := vigil.LoadConfigFile("monitor.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	mon, err := vigil.NewMonitor("db-1:5432", pool, proto, cfg)
func LoadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	SetDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return cfg, nil
}

// TestConfig returns a configuration optimized for fast test execution.
//
// Test timings are 10-100x faster than production defaults to enable
// rapid iteration without sacrificing test coverage. Use DefaultConfig()
// for production deployments.
//
// Returns:
//   - Config: Configuration with fast timings for tests
func TestConfig() Config {
	return Config{
		HeartbeatInterval:    50 * time.Millisecond,
		HeartbeatTimeout:     500 * time.Millisecond,
		MinHeartbeatInterval: 5 * time.Millisecond,
		ShutdownTimeout:      2 * time.Second,
	}
}
