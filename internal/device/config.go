package device

import (
	"fmt"

	"github.com/spf13/viper"
)

// Default tuning values. The search budget follows the original tool's
// practice of reading on the order of a hundred kilobytes from the end of
// the file, rounded up to cover several maximal BGZF blocks.
const (
	DefaultSearchBudgetBytes   = 256 * 1024
	DefaultMaxAccumulateBlocks = 64
	DefaultIntegrityRetryLimit = 3
	DefaultHeaderBudgetBytes   = 8 * 1024 * 1024
	DefaultJobs                = 1
)

// TailConfig holds the tuning surface for tail resolution.
type TailConfig struct {
	// SearchBudgetBytes bounds how far the block locator scans backward
	// before declaring the file corrupt or truncated.
	SearchBudgetBytes int `mapstructure:"search_budget_bytes"`
	// MaxAccumulateBlocks bounds how many trailing blocks one resolve
	// pass decompresses while chasing a record boundary.
	MaxAccumulateBlocks int `mapstructure:"max_accumulate_blocks"`
	// IntegrityRetryLimit caps consecutive corrupt-block retries.
	IntegrityRetryLimit int `mapstructure:"integrity_retry_limit"`
	// HeaderBudgetBytes bounds the decompressed size of the header
	// section when building the reference catalog.
	HeaderBudgetBytes int `mapstructure:"header_budget_bytes"`
	// Jobs is the number of files processed in parallel by the CLI.
	Jobs int `mapstructure:"jobs"`
}

// DefaultTailConfig returns the built-in tuning values without consulting
// any config file or environment.
func DefaultTailConfig() *TailConfig {
	return &TailConfig{
		SearchBudgetBytes:   DefaultSearchBudgetBytes,
		MaxAccumulateBlocks: DefaultMaxAccumulateBlocks,
		IntegrityRetryLimit: DefaultIntegrityRetryLimit,
		HeaderBudgetBytes:   DefaultHeaderBudgetBytes,
		Jobs:                DefaultJobs,
	}
}

// LoadTailConfig loads configuration using Viper. Values come from
// bamtail-config.yaml if present, BAMTAIL_* environment variables, and
// the built-in defaults, in that order of precedence.
func LoadTailConfig() (*TailConfig, error) {
	viper.SetConfigName("bamtail-config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.bamtail")
	viper.AddConfigPath("/etc/bamtail")

	viper.SetDefault("search_budget_bytes", DefaultSearchBudgetBytes)
	viper.SetDefault("max_accumulate_blocks", DefaultMaxAccumulateBlocks)
	viper.SetDefault("integrity_retry_limit", DefaultIntegrityRetryLimit)
	viper.SetDefault("header_budget_bytes", DefaultHeaderBudgetBytes)
	viper.SetDefault("jobs", DefaultJobs)

	// Allow environment variables
	viper.SetEnvPrefix("BAMTAIL")
	viper.AutomaticEnv()

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults
	}

	var config TailConfig
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}
