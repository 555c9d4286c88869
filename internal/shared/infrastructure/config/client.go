package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

const (
	// AppName is used for the XDG config directory.
	AppName = "snaplabel"

	// ClientConfigFile is the file name looked up under the XDG config directory.
	ClientConfigFile = "config.yaml"
)

var (
	// ErrConfigNotFound is returned when the configuration file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")

	// ErrMissingAPIBase is returned when no API base URL was configured anywhere.
	ErrMissingAPIBase = errors.New("missing API base URL: set --api-base, SNAPLABEL_API_BASE or api_base in the config file")

	// ErrInvalidAPIBase is returned when the API base is not an absolute http(s) URL.
	ErrInvalidAPIBase = errors.New("invalid API base URL: must be an absolute http or https URL")

	// ErrInvalidTimeout is returned for a negative request timeout.
	ErrInvalidTimeout = errors.New("invalid timeout: must be non-negative")

	// ErrInvalidFormat is returned for an unknown output format.
	ErrInvalidFormat = errors.New("invalid output format: must be json or markdown")
)

// Output formats understood by the CLI.
const (
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
)

// ClientConfig is the configuration of the snaplabel CLI. It is resolved once
// at startup and passed down explicitly.
type ClientConfig struct {
	APIBase string        `yaml:"api_base"`
	Token   string        `yaml:"token"`
	Timeout time.Duration `yaml:"timeout"`
	Format  string        `yaml:"format"`
}

// DefaultClientConfigPath returns $XDG_CONFIG_HOME/snaplabel/config.yaml.
func DefaultClientConfigPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, ClientConfigFile)
}

// LoadClientFile reads a YAML client configuration.
func LoadClientFile(path string) (*ClientConfig, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user supplied config path
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg ClientConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &cfg, nil
}

// ResolveClient merges configuration sources. Precedence is flags, then
// environment, then the config file. A missing file is only an error when the
// path was given explicitly.
func ResolveClient(flags ClientConfig, path string, explicit bool) (ClientConfig, error) {
	var file ClientConfig
	if path == "" {
		path = DefaultClientConfigPath()
	}
	loaded, err := LoadClientFile(path)
	switch {
	case err == nil:
		file = *loaded
	case errors.Is(err, ErrConfigNotFound) && !explicit:
	default:
		return ClientConfig{}, err
	}

	env := ClientConfig{
		APIBase: os.Getenv("SNAPLABEL_API_BASE"),
		Token:   os.Getenv("SNAPLABEL_TOKEN"),
		Timeout: parseDuration(os.Getenv("SNAPLABEL_TIMEOUT"), 0),
		Format:  os.Getenv("SNAPLABEL_FORMAT"),
	}

	cfg := ClientConfig{
		APIBase: firstNonEmpty(flags.APIBase, env.APIBase, file.APIBase),
		Token:   firstNonEmpty(flags.Token, env.Token, file.Token),
		Format:  firstNonEmpty(flags.Format, env.Format, file.Format, FormatJSON),
	}
	for _, d := range []time.Duration{flags.Timeout, env.Timeout, file.Timeout} {
		if d != 0 {
			cfg.Timeout = d
			break
		}
	}
	cfg.APIBase = strings.TrimRight(cfg.APIBase, "/")

	if err := cfg.Validate(); err != nil {
		return ClientConfig{}, err
	}
	return cfg, nil
}

// Validate checks the resolved client configuration.
func (c ClientConfig) Validate() error {
	if c.APIBase == "" {
		return ErrMissingAPIBase
	}
	u, err := url.Parse(c.APIBase)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidAPIBase
	}
	if c.Timeout < 0 {
		return ErrInvalidTimeout
	}
	if c.Format != FormatJSON && c.Format != FormatMarkdown {
		return ErrInvalidFormat
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
