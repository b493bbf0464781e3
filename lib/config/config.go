// Package config loads the service configuration from YAML, with
// environment overrides for deployment-time settings.
package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Server       Server   `yaml:"server"`
	DatabasePath string   `yaml:"database_path"`
	CORSOrigins  []string `yaml:"cors_origins"`
	Limits       Limits   `yaml:"limits"`
}

type Server struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type Limits struct {
	DefaultPageSize   int `yaml:"default_page_size"`
	MaxPageSize       int `yaml:"max_page_size"`
	AutocompleteLimit int `yaml:"autocomplete_limit"`
}

func (c *Config) setDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8200
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/emulsion.db"
	}
	if len(c.CORSOrigins) == 0 {
		c.CORSOrigins = []string{"*"}
	}
	c.Limits.setDefaults()
}

func (l *Limits) setDefaults() {
	if l.DefaultPageSize == 0 {
		l.DefaultPageSize = 100
	}
	if l.MaxPageSize == 0 {
		l.MaxPageSize = 1000
	}
	if l.AutocompleteLimit == 0 {
		l.AutocompleteLimit = 10
	}
}

func (c Config) Validate() error {
	var result *multierror.Error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		result = multierror.Append(result, fmt.Errorf("invalid server port %d", c.Server.Port))
	}

	if c.DatabasePath == "" {
		result = multierror.Append(result, fmt.Errorf("database_path not configured"))
	}

	if c.Limits.DefaultPageSize > c.Limits.MaxPageSize {
		result = multierror.Append(result, fmt.Errorf(
			"default_page_size %d exceeds max_page_size %d",
			c.Limits.DefaultPageSize, c.Limits.MaxPageSize))
	}

	return result.ErrorOrNil()
}

// envOverrides are deployment-time settings that take precedence over the
// config file when set.
type envOverrides struct {
	Host         string `env:"EMULSION_HOST"`
	Port         int    `env:"EMULSION_PORT"`
	DatabasePath string `env:"EMULSION_DATABASE_PATH"`
}

// Load reads configuration from a filename, or from inline YAML/JSON when
// the value starts with a brace. Defaults are applied before validation,
// and environment overrides last.
func Load(ctx context.Context, filenameOrData string) (*Config, error) {
	var config Config

	var data []byte

	if strings.HasPrefix(filenameOrData, "{") {
		data = []byte(filenameOrData)
	} else if filenameOrData != "" {
		content, err := os.ReadFile(filenameOrData)
		if err != nil {
			return nil, err
		}
		data = content
	}

	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("error unmarshaling config: %w", err)
		}
	}

	config.setDefaults()

	var overrides envOverrides
	if err := envconfig.Process(ctx, &overrides); err != nil {
		return nil, fmt.Errorf("error reading environment overrides: %w", err)
	}
	if overrides.Host != "" {
		config.Server.Host = overrides.Host
	}
	if overrides.Port != 0 {
		config.Server.Port = overrides.Port
	}
	if overrides.DatabasePath != "" {
		config.DatabasePath = overrides.DatabasePath
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	return &config, nil
}
