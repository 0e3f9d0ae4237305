package overhead

import (
	"github.com/hazyhaar/extbench/overhead/internal/config"
)

// Config is the top-level extbench configuration. Re-exported from internal.
type Config = config.Config

// BrowserConfig controls Chrome launch and per-page behaviour.
type BrowserConfig = config.BrowserConfig

// OutputConfig names the persisted JSON documents.
type OutputConfig = config.OutputConfig

// DefaultConfig returns a configuration with all defaults applied.
func DefaultConfig() *Config {
	return config.Default()
}

// LoadConfigFile reads a YAML configuration file.
func LoadConfigFile(path string) (*Config, error) {
	return config.LoadFile(path)
}
