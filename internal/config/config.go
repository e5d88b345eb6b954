// Package config loads the client configuration: defaults, then the
// YAML file under the maison dot-directory, then environment
// variables. Command-line flags are applied last by the command layer.
package config

import (
	"net/url"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/maisondecor/maison/internal/errors"
)

const (
	// DefaultAPIURL points at a locally running store backend.
	DefaultAPIURL = "http://localhost:4000/api"

	// EnvAPIURL overrides the backend base URL.
	EnvAPIURL = "MAISON_API_URL"

	// dirName is the dot-directory holding config and session state.
	dirName = ".maison"

	configFileName = "config.yaml"
)

// LogConfig configures the structured logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config is the effective client configuration.
type Config struct {
	// APIURL is the base URL of the remote store backend. The single
	// environment-driven setting the session core depends on.
	APIURL string `yaml:"api_url"`

	// StorageDir holds the persisted session and other client state.
	StorageDir string `yaml:"storage_dir"`

	Log LogConfig `yaml:"log"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		APIURL:     DefaultAPIURL,
		StorageDir: defaultStorageDir(),
		Log:        LogConfig{Level: "info", Format: "text"},
	}
}

func defaultStorageDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return dirName
	}
	return filepath.Join(home, dirName)
}

// DefaultPath returns the standard config file location.
func DefaultPath() string {
	return filepath.Join(defaultStorageDir(), configFileName)
}

// Load builds the effective configuration: defaults, overlaid with the
// YAML file at path (missing files are fine), overlaid with
// environment variables.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// No file; defaults + env apply.
	case err != nil:
		return Config{}, errors.Wrap(errors.ErrCodeFileReadFailed, "failed to read config file", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, errors.Wrap(errors.ErrCodeConfigInvalid, "failed to parse config file", err)
		}
	}

	if env := os.Getenv(EnvAPIURL); env != "" {
		cfg.APIURL = env
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for obvious mistakes.
func (c Config) Validate() error {
	if c.APIURL == "" {
		return errors.New(errors.ErrCodeConfigBadURL, "api_url must not be empty")
	}
	parsed, err := url.Parse(c.APIURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return errors.New(errors.ErrCodeConfigBadURL, "api_url must be an absolute http(s) URL")
	}
	if c.StorageDir == "" {
		return errors.NewConfigInvalidError("storage_dir must not be empty")
	}
	return nil
}
