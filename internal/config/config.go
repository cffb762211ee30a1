// Package config provides configuration management for find404.
// It defines the configuration structure, default values and validation.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"

	"github.com/masahif/find404/internal/crawler"
	"github.com/masahif/find404/internal/report"
	"github.com/masahif/find404/internal/scope"
)

// AppName is used for the config file name and the XDG config directory
const AppName = "find404"

// ConfigDir returns the XDG config directory searched for find404.yml.
// On Linux: ~/.config/find404
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Config holds the find404 configuration
type Config struct {
	// Crawl parameters
	Workers        int           `mapstructure:"workers" yaml:"workers"`                 // Concurrent fetches per wave
	MaxDepth       int           `mapstructure:"max_depth" yaml:"max_depth"`             // Deepest link distance, negative for unbounded
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"` // Per-request timeout
	UserAgent      string        `mapstructure:"user_agent" yaml:"user_agent"`           // HTTP User-Agent header
	Accept         string        `mapstructure:"accept" yaml:"accept"`                   // HTTP Accept header
	DomainMode     string        `mapstructure:"domain_mode" yaml:"domain_mode"`         // labels or publicsuffix
	Headers        []string      `mapstructure:"headers" yaml:"headers"`                 // Extra request headers, "Name: Value"

	// Report
	MaxSize int64  `mapstructure:"max_size" yaml:"max_size"` // Fail in-domain pages larger than this, 0 disables
	Format  string `mapstructure:"format" yaml:"format"`     // console, jsonl or markdown
	Output  string `mapstructure:"output" yaml:"output"`     // Report file, "-" for stdout

	// Optional SQLite export, empty disables it
	DatabasePath string `mapstructure:"database_path" yaml:"database_path"`

	// Logging
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
	LogFile  string `mapstructure:"log_file" yaml:"log_file"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Workers:        crawler.DefaultMaxWorkers,
		MaxDepth:       crawler.Unbounded,
		RequestTimeout: crawler.DefaultRequestTimeout,
		UserAgent:      crawler.DefaultUserAgent,
		Accept:         crawler.DefaultAccept,
		DomainMode:     string(scope.ModeLabels),
		MaxSize:        0, // disabled
		Format:         report.FormatConsole,
		Output:         "-",
		DatabasePath:   "",
		LogLevel:       "info",
		LogFile:        "",
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}

	if c.RequestTimeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.MaxSize < 0 {
		return ErrInvalidMaxSize
	}

	if !report.IsValidFormat(c.Format) {
		return ErrInvalidFormat
	}

	if _, err := scope.NewClassifier(scope.Mode(c.DomainMode)); err != nil {
		return ErrInvalidDomainMode
	}

	if _, err := c.ParseHeaders(); err != nil {
		return err
	}

	// Any negative depth means unbounded
	if c.MaxDepth < 0 {
		c.MaxDepth = crawler.Unbounded
	}

	return nil
}

// ParseHeaders converts the "Name: Value" header list into a map
func (c *Config) ParseHeaders() (map[string]string, error) {
	headers := make(map[string]string, len(c.Headers))
	for _, h := range c.Headers {
		name, value, ok := strings.Cut(h, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidHeader, h)
		}
		headers[name] = strings.TrimSpace(value)
	}
	return headers, nil
}
