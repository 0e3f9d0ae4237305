// Package config handles extbench configuration from YAML files.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level extbench configuration. Every constant the
// measurement depends on lives here so runs are reproducible from one file.
type Config struct {
	// DomainList is the Tranco-style CSV of crawl targets.
	DomainList string `yaml:"domain_list"`

	// TargetSuccesses is how many error-free queries each session collects
	// before it stops visiting further domains.
	TargetSuccesses int `yaml:"target_successes"`

	Browser BrowserConfig `yaml:"browser"`
	Output  OutputConfig  `yaml:"output"`

	// RunLog is an optional SQLite path archiving raw per-domain outcomes.
	// Empty disables the archive.
	RunLog string `yaml:"run_log"`
}

// BrowserConfig controls Chrome launch and per-page behaviour.
type BrowserConfig struct {
	// ExtensionDir is the unpacked extension folder (must contain
	// manifest.json). Checked before any session launches.
	ExtensionDir string `yaml:"extension_dir"`

	// ProfileWithExtension and ProfileWithoutExtension are the persistent
	// profile directories, destroyed and recreated on every run so no state
	// leaks between sessions.
	ProfileWithExtension    string `yaml:"profile_with_extension"`
	ProfileWithoutExtension string `yaml:"profile_without_extension"`

	// PageTimeout bounds navigation plus the load event per domain.
	PageTimeout time.Duration `yaml:"page_timeout"`

	// ExtensionInitDelay is a fixed pause after launching the with-extension
	// session. Chrome exposes no ready signal for extension background
	// initialisation, so this can race on slow extensions.
	ExtensionInitDelay time.Duration `yaml:"extension_init_delay"`

	// Headless runs Chrome without a window. Extension loading only works
	// headed, so the with-extension session ignores this and always runs
	// headed.
	Headless bool `yaml:"headless"`

	// Stealth applies anti-detection scripts to every page. Off by default:
	// the injected scripts would show up in the measurement.
	Stealth bool `yaml:"stealth"`
}

// OutputConfig names the three persisted JSON documents.
type OutputConfig struct {
	WithExtension    string `yaml:"with_extension"`
	WithoutExtension string `yaml:"without_extension"`
	Correlated       string `yaml:"correlated"`
}

// Default returns a configuration with all defaults applied.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// LoadFile reads a YAML configuration file and applies defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.DomainList == "" {
		c.DomainList = "tranco.csv"
	}
	if c.TargetSuccesses <= 0 {
		c.TargetSuccesses = 50
	}
	if c.Browser.ExtensionDir == "" {
		c.Browser.ExtensionDir = "extension"
	}
	if c.Browser.ProfileWithExtension == "" {
		c.Browser.ProfileWithExtension = ".chrome-profile-with-ext"
	}
	if c.Browser.ProfileWithoutExtension == "" {
		c.Browser.ProfileWithoutExtension = ".chrome-profile-without-ext"
	}
	if c.Browser.PageTimeout <= 0 {
		c.Browser.PageTimeout = 20 * time.Second
	}
	if c.Browser.ExtensionInitDelay <= 0 {
		c.Browser.ExtensionInitDelay = 2 * time.Second
	}
	if c.Output.WithExtension == "" {
		c.Output.WithExtension = "resultsWithExtension.json"
	}
	if c.Output.WithoutExtension == "" {
		c.Output.WithoutExtension = "resultsWithoutExtension.json"
	}
	if c.Output.Correlated == "" {
		c.Output.Correlated = "correlatedResults.json"
	}
}
