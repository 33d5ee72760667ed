package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/fmuoria/resume-matcher/internal/results"
)

// Environment variables that override the config file
const (
	EnvEndpoint   = "RESUME_MATCHER_ENDPOINT"
	EnvTimeout    = "RESUME_MATCHER_TIMEOUT"
	EnvConfigPath = "RESUME_MATCHER_CONFIG"
)

// Config holds application configuration
type Config struct {
	// Endpoint is the base URL of the evaluation service
	Endpoint string `json:"endpoint" validate:"required,url"`
	// Timeout bounds one evaluation request, e.g. "2m". Empty means none.
	Timeout              string `json:"timeout,omitempty"`
	DefaultTopN          string `json:"default_top_n" validate:"required"`
	ExportDir            string `json:"export_dir"`
	UploadsDir           string `json:"uploads_dir" validate:"required"`
	GmailCredentialsPath string `json:"gmail_credentials_path,omitempty"`
	GmailTokenPath       string `json:"gmail_token_path,omitempty"`
}

// DefaultConfig returns a new config with default values
func DefaultConfig() *Config {
	return &Config{
		Endpoint:    "http://localhost:5000",
		DefaultTopN: results.DefaultFilter.String(),
		ExportDir:   ".",
		UploadsDir:  "uploads",
	}
}

// GetConfigDir returns the per-user configuration directory
// On Windows: %APPDATA%/ResumeMatcher
// On Unix: ~/.config/ResumeMatcher
func GetConfigDir() (string, error) {
	var configDir string

	if os.Getenv("APPDATA") != "" {
		configDir = filepath.Join(os.Getenv("APPDATA"), "ResumeMatcher")
	} else {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config", "ResumeMatcher")
	}

	return configDir, nil
}

// GetConfigPath returns the path to the configuration file. The
// RESUME_MATCHER_CONFIG variable takes precedence.
func GetConfigPath() (string, error) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p, nil
	}

	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// Load reads .env, the config file and environment overrides
func Load() (*Config, error) {
	// A missing .env is normal
	_ = godotenv.Load()

	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	cfg, err := LoadFrom(configPath)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()

	return cfg, nil
}

// LoadFrom loads configuration from a specific path
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return default config if file doesn't exist
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// Save saves the configuration to the default config path
func (c *Config) Save() (string, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return "", err
	}

	return configPath, c.SaveTo(configPath)
}

// SaveTo saves the configuration to a specific path
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv overrides file values with environment variables
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvEndpoint); v != "" {
		c.Endpoint = v
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		c.Timeout = v
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if _, err := c.RequestTimeout(); err != nil {
		return err
	}

	if _, err := results.ParseFilter(c.DefaultTopN); err != nil {
		return fmt.Errorf("default_top_n: %w", err)
	}

	if c.GmailCredentialsPath != "" {
		if _, err := os.Stat(c.GmailCredentialsPath); err != nil {
			return fmt.Errorf("gmail credentials file not found: %w", err)
		}
	}

	return nil
}

// RequestTimeout parses Timeout. Zero means no timeout.
func (c *Config) RequestTimeout() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid timeout %q", c.Timeout)
	}
	return d, nil
}

// TopN returns the parsed default filter, falling back to the package default
func (c *Config) TopN() results.Filter {
	f, err := results.ParseFilter(c.DefaultTopN)
	if err != nil {
		return results.DefaultFilter
	}
	return f
}

// GmailTokenFile returns the cached OAuth token location
func (c *Config) GmailTokenFile() (string, error) {
	if c.GmailTokenPath != "" {
		return c.GmailTokenPath, nil
	}
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "gmail_token.json"), nil
}
