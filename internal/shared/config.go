package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

const (
	// DefaultMaxMembers is the number of members fetched per list when unset.
	DefaultMaxMembers = 1000
	// MaxMembersLimit is the hard upper bound imposed by the list members API.
	MaxMembersLimit = 5000
	// AccountCount is the number of accounts a sync reconciles.
	AccountCount = 2
)

// Create policies for lists that exist on only one account.
const (
	CreateAsk    = "ask"
	CreateNever  = "never"
	CreateAlways = "always"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Sync     SyncConfig      `toml:"sync"`
	API      APIConfig       `toml:"api"`
	Database DatabaseConfig  `toml:"database"`
	Accounts []AccountConfig `toml:"accounts"`
}

// SyncConfig contains settings for the reconciliation run.
type SyncConfig struct {
	MaxMembers     int           `toml:"max_members"`
	ExclusionsFile string        `toml:"exclusions_file"`
	TrimExclusions bool          `toml:"trim_exclusions"`
	Workers        int           `toml:"workers"`
	RequestTimeout time.Duration `toml:"request_timeout"`
	CreatePolicy   string        `toml:"create_policy"`
	DotEnv         string        `toml:"dotenv"`
}

// APIConfig contains settings for the social network HTTP client.
type APIConfig struct {
	BaseURL   string  `toml:"base_url"`
	RateLimit float64 `toml:"rate_limit"`
	Burst     int     `toml:"burst"`
}

// DatabaseConfig contains database connection settings for run history.
type DatabaseConfig struct {
	Enabled      bool   `toml:"enabled"`
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// AccountConfig describes one side of the sync.
//
// Credentials are read from the environment using EnvSuffix (CONSUMER_KEY_<suffix>, ...).
type AccountConfig struct {
	Label     string `toml:"label"`
	EnvSuffix string `toml:"env_suffix"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Values missing from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	config.Accounts = nil
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}
	if len(config.Accounts) == 0 {
		config.Accounts = DefaultConfig().Accounts
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
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks the configuration and fills zero values with defaults.
func (c *Config) Validate() error {
	if c.Sync.MaxMembers == 0 {
		c.Sync.MaxMembers = DefaultMaxMembers
	}
	if c.Sync.MaxMembers < 0 || c.Sync.MaxMembers > MaxMembersLimit {
		return fmt.Errorf("%w: max_members must be between 1 and %d, got %d", ErrInvalidConfig, MaxMembersLimit, c.Sync.MaxMembers)
	}

	if c.Sync.Workers <= 0 {
		c.Sync.Workers = 1
	}
	if c.Sync.RequestTimeout < 0 {
		return fmt.Errorf("%w: request_timeout must not be negative", ErrInvalidConfig)
	}

	switch c.Sync.CreatePolicy {
	case "":
		c.Sync.CreatePolicy = CreateAsk
	case CreateAsk, CreateNever, CreateAlways:
	default:
		return fmt.Errorf("%w: unknown create_policy %q", ErrInvalidConfig, c.Sync.CreatePolicy)
	}

	if c.API.RateLimit < 0 {
		return fmt.Errorf("%w: rate_limit must not be negative", ErrInvalidConfig)
	}
	if c.API.Burst <= 0 {
		c.API.Burst = 1
	}

	if len(c.Accounts) != AccountCount {
		return fmt.Errorf("%w: expected %d accounts, got %d", ErrInvalidConfig, AccountCount, len(c.Accounts))
	}
	seen := make(map[string]bool, len(c.Accounts))
	for i := range c.Accounts {
		acct := &c.Accounts[i]
		if acct.EnvSuffix == "" {
			return fmt.Errorf("%w: account %d has no env_suffix", ErrInvalidConfig, i+1)
		}
		if seen[acct.EnvSuffix] {
			return fmt.Errorf("%w: duplicate env_suffix %q", ErrInvalidConfig, acct.EnvSuffix)
		}
		seen[acct.EnvSuffix] = true
		if acct.Label == "" {
			acct.Label = fmt.Sprintf("Account %d", i+1)
		}
	}

	return nil
}
