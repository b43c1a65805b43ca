package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds settings for a single upload run.
type Config struct {
	// ServerURL is the scheme and host of the Screeps API.
	ServerURL string `yaml:"server_url"`
	// Token authenticates the upload. It only ever comes from the environment.
	Token string `yaml:"-"`
}

const (
	// TokenEnvVar is the environment variable holding the API token.
	TokenEnvVar = "SCREEPS_TOKEN"

	// DefaultConfigFilename is the settings file read when --config is not given.
	DefaultConfigFilename = "screeps-upload.yaml"

	// DefaultEnvFilename is the dotenv file read when --env-file is not given.
	DefaultEnvFilename = ".env"

	// DefaultServerURL is the official Screeps server.
	DefaultServerURL = "https://screeps.com"
)

var (
	// ErrTokenRequired is returned when SCREEPS_TOKEN is unset or empty.
	ErrTokenRequired = errors.New("environment variable " + TokenEnvVar + " must be set")
	// ErrInvalidServerURL is returned when the server URL is not an absolute http(s) URL.
	ErrInvalidServerURL = errors.New("server url must be an absolute http or https url")
)

// Options select where settings are read from. Empty paths mean the defaults,
// which may be absent; explicit paths must exist.
type Options struct {
	// ConfigPath is the YAML settings file.
	ConfigPath string
	// EnvPath is the dotenv file.
	EnvPath string
	// ServerURL overrides the server from the settings file when non-empty.
	ServerURL string
	// RequireToken makes Load fail with ErrTokenRequired before the settings file is read.
	RequireToken bool
}

// Load reads the dotenv file into the process environment (existing variables win),
// then the YAML settings file, then applies overrides and defaults.
// With RequireToken set, a missing token is reported before any settings file problem.
func Load(opts *Options) (*Config, error) {
	if opts == nil {
		opts = new(Options)
	}

	if err := loadEnvFile(opts.EnvPath); err != nil {
		return nil, err
	}

	token := strings.TrimSpace(os.Getenv(TokenEnvVar))
	if opts.RequireToken && token == "" {
		return nil, ErrTokenRequired
	}

	cfg, err := readFile(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	if opts.ServerURL != "" {
		cfg.ServerURL = opts.ServerURL
	}

	cfg.Token = token

	if err = Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate fills defaults and checks field formats.
func Validate(cfg *Config) error {
	if cfg.ServerURL == "" {
		cfg.ServerURL = DefaultServerURL
	}

	u, err := url.Parse(cfg.ServerURL)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidServerURL, err)
	}

	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidServerURL, cfg.ServerURL)
	}

	cfg.ServerURL = strings.TrimRight(cfg.ServerURL, "/")

	return nil
}

// readFile parses the YAML settings file. A missing default file yields an empty config.
func readFile(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return new(Config), nil
		}

		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err = yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile merges a dotenv file into the environment. A missing default file is ignored.
func loadEnvFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = DefaultEnvFilename
	}

	if _, err := os.Stat(path); err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return nil
		}

		return fmt.Errorf("read env file: %w", err)
	}

	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}

	return nil
}
