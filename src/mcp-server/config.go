// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/H0llyW00dzZ/x509-trust-validator/src/internal/session"
)

// ConfigEnv names the environment variable holding the configuration path.
const ConfigEnv = "MCP_X509_TRUST_CONFIG_FILE"

// configFormat represents supported configuration file formats.
type configFormat int

const (
	// configFormatJSON represents JSON configuration format (.json)
	configFormatJSON configFormat = iota
	// configFormatYAML represents YAML configuration format (.yaml, .yml)
	configFormatYAML
)

// Config represents the MCP server configuration structure.
//
// The configuration can be loaded from a JSON or YAML file specified by the
// MCP_X509_TRUST_CONFIG_FILE environment variable, with defaults applied for
// any missing values. Supported file extensions: .json, .yaml, .yml
type Config struct {
	// Defaults: Default settings for tool calls
	Defaults struct {
		// Timeout: Default timeout in seconds for a validation, including retrieval
		Timeout int `json:"timeoutSeconds" yaml:"timeoutSeconds"`
		// Format: Default report format (json, text or table)
		Format string `json:"format" yaml:"format"`
		// Online: Whether tool calls fetch OCSP responses and CRLs unless told otherwise
		Online bool `json:"online" yaml:"online"`
	} `json:"defaults" yaml:"defaults"`

	// Validation: Validation policy
	Validation struct {
		// PropertiesFile: Path to a validation properties file (YAML or JSON)
		PropertiesFile string `json:"propertiesFile,omitempty" yaml:"propertiesFile,omitempty"`
	} `json:"validation" yaml:"validation"`

	// Trust: Certificate bundles loaded once at startup
	Trust struct {
		General   []string `json:"general,omitempty" yaml:"general,omitempty"`
		CA        []string `json:"ca,omitempty" yaml:"ca,omitempty"`
		OCSP      []string `json:"ocsp,omitempty" yaml:"ocsp,omitempty"`
		CRL       []string `json:"crl,omitempty" yaml:"crl,omitempty"`
		Timestamp []string `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
		Known     []string `json:"known,omitempty" yaml:"known,omitempty"`
	} `json:"trust" yaml:"trust"`

	// Fetch: HTTP retrieval of revocation data
	Fetch struct {
		// RateLimit: Requests per second across all retrievals (0 disables limiting)
		RateLimit float64 `json:"rateLimit" yaml:"rateLimit"`
		// Burst: Burst size for RateLimit
		Burst int `json:"burst" yaml:"burst"`
		// MaxResponseBytes: Upper bound on an OCSP response or CRL body
		MaxResponseBytes int64 `json:"maxResponseBytes" yaml:"maxResponseBytes"`
		// CRLCache: Downloaded CRL cache
		CRLCache struct {
			MaxSize                int `json:"maxSize" yaml:"maxSize"`
			MaxAgeMinutes          int `json:"maxAgeMinutes" yaml:"maxAgeMinutes"`
			CleanupIntervalMinutes int `json:"cleanupIntervalMinutes" yaml:"cleanupIntervalMinutes"`
		} `json:"crlCache" yaml:"crlCache"`
	} `json:"fetch" yaml:"fetch"`
}

// detectConfigFormat determines the configuration file format based on file
// extension, case-insensitively. Anything that is not .yaml or .yml is JSON.
func detectConfigFormat(configPath string) configFormat {
	switch strings.ToLower(filepath.Ext(configPath)) {
	case ".yaml", ".yml":
		return configFormatYAML
	default:
		return configFormatJSON
	}
}

// unmarshalConfig unmarshals configuration data based on the specified format.
func unmarshalConfig(data []byte, config *Config, format configFormat) error {
	switch format {
	case configFormatYAML:
		if err := yaml.Unmarshal(data, config); err != nil {
			return fmt.Errorf("failed to parse YAML config file: %w", err)
		}
	default:
		if err := json.Unmarshal(data, config); err != nil {
			return fmt.Errorf("failed to parse JSON config file: %w", err)
		}
	}
	return nil
}

// defaultConfig returns the built-in configuration.
func defaultConfig() *Config {
	config := &Config{}
	config.Defaults.Timeout = 30
	config.Defaults.Format = "json"
	config.Fetch.Burst = 1
	config.Fetch.CRLCache.MaxSize = 100
	config.Fetch.CRLCache.MaxAgeMinutes = 24 * 60
	config.Fetch.CRLCache.CleanupIntervalMinutes = 60
	return config
}

// loadConfig loads MCP server configuration from a JSON or YAML file or
// applies defaults.
//
// Parameters:
//   - configPath: Path to the configuration file (optional, can be empty)
//     Supported formats: .json, .yaml, .yml
//
// Returns:
//   - A pointer to the loaded Config struct with defaults applied
//   - An error if the configuration file cannot be read or parsed
//
// Configuration Priority:
//  1. Default values are set
//  2. MCP_X509_TRUST_CONFIG_FILE environment variable is checked if configPath is empty
//  3. Config file values override defaults (if file exists and is valid)
//
// Relative bundle and properties paths are resolved against the directory of
// the configuration file.
func loadConfig(configPath string) (*Config, error) {
	config := defaultConfig()

	if configPath == "" {
		configPath = os.Getenv(ConfigEnv)
	}
	if configPath == "" {
		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := unmarshalConfig(data, config, detectConfigFormat(configPath)); err != nil {
		return nil, err
	}

	// Validate and set defaults for invalid values
	defaults := defaultConfig()
	if config.Defaults.Timeout <= 0 {
		config.Defaults.Timeout = defaults.Defaults.Timeout
	}
	switch config.Defaults.Format {
	case session.FormatJSON, session.FormatText, session.FormatTable:
	case "":
		config.Defaults.Format = defaults.Defaults.Format
	default:
		return nil, fmt.Errorf("unknown default format %q", config.Defaults.Format)
	}
	if config.Fetch.RateLimit < 0 {
		return nil, fmt.Errorf("fetch.rateLimit must not be negative")
	}
	if config.Fetch.Burst < 1 {
		config.Fetch.Burst = defaults.Fetch.Burst
	}
	if config.Fetch.CRLCache.MaxAgeMinutes <= 0 {
		config.Fetch.CRLCache.MaxAgeMinutes = defaults.Fetch.CRLCache.MaxAgeMinutes
	}
	if config.Fetch.CRLCache.CleanupIntervalMinutes <= 0 {
		config.Fetch.CRLCache.CleanupIntervalMinutes = defaults.Fetch.CRLCache.CleanupIntervalMinutes
	}

	config.resolvePaths(filepath.Dir(configPath))
	return config, nil
}

func (c *Config) resolvePaths(base string) {
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}
	c.Validation.PropertiesFile = resolve(c.Validation.PropertiesFile)
	for _, list := range []*[]string{
		&c.Trust.General, &c.Trust.CA, &c.Trust.OCSP,
		&c.Trust.CRL, &c.Trust.Timestamp, &c.Trust.Known,
	} {
		for i, p := range *list {
			(*list)[i] = resolve(p)
		}
	}
}
