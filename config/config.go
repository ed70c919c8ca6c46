// Package config loads the process-wide server configuration. It is
// read once at startup and shared read-only across every host.
package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all server configuration.
type Config struct {
	// Directory is the content root; each immediate subdirectory is
	// a hostname. Canonical after Load.
	Directory  string `yaml:"directory"`
	Port       int    `yaml:"port"`
	KeepAlive  int    `yaml:"keep_alive"` // seconds
	MaxHeaders int    `yaml:"max_headers"`
	Workers    int    `yaml:"workers"` // per host
	LogDir     string `yaml:"log_dir"`
}

// New loads configuration from the command line.
func New() (*Config, error) {
	return Load(os.Args[1:])
}

// Load parses flags, merges in the optional YAML file named by
// -config, and validates the result. Flags given explicitly win over
// file values. The content directory is the positional argument, or
// the file's `directory` when no argument is given.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	var file string

	fs := flag.NewFlagSet("statichost", flag.ContinueOnError)
	fs.StringVar(&file, "config", "", "optional YAML config file")
	fs.IntVar(&cfg.Port, "port", 8080, "port content is served on")
	fs.IntVar(&cfg.KeepAlive, "keep-alive", 2, "keep-alive timeout (seconds)")
	fs.IntVar(&cfg.MaxHeaders, "max-headers", 512, "maximum number of request headers")
	fs.IntVar(&cfg.Workers, "workers", 4, "concurrent connections per host")
	fs.StringVar(&cfg.LogDir, "log-dir", "logs", "directory for JSON log files")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	cfg.Directory = fs.Arg(0)

	if file != "" {
		given := make(map[string]bool)
		fs.Visit(func(f *flag.Flag) { given[f.Name] = true })
		if err := cfg.mergeFile(file, given); err != nil {
			return nil, err
		}
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string, given map[string]bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	if c.Directory == "" {
		c.Directory = file.Directory
	}
	if !given["port"] && file.Port != 0 {
		c.Port = file.Port
	}
	if !given["keep-alive"] && file.KeepAlive != 0 {
		c.KeepAlive = file.KeepAlive
	}
	if !given["max-headers"] && file.MaxHeaders != 0 {
		c.MaxHeaders = file.MaxHeaders
	}
	if !given["workers"] && file.Workers != 0 {
		c.Workers = file.Workers
	}
	if !given["log-dir"] && file.LogDir != "" {
		c.LogDir = file.LogDir
	}
	return nil
}

func (c *Config) validate() error {
	if c.Directory == "" {
		return fmt.Errorf("no content directory given")
	}
	abs, err := filepath.Abs(c.Directory)
	if err != nil {
		return fmt.Errorf("invalid directory: %w", err)
	}
	canonical, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return fmt.Errorf("invalid directory: %w", err)
	}
	if _, err := os.ReadDir(canonical); err != nil {
		return fmt.Errorf("directory inaccessible: %w", err)
	}
	c.Directory = canonical

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.KeepAlive < 1 {
		return fmt.Errorf("keep-alive must be at least 1 second")
	}
	if c.MaxHeaders < 1 {
		return fmt.Errorf("max-headers must be positive")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive")
	}
	return nil
}

// KeepAliveTimeout returns the keep-alive timeout as a duration.
func (c *Config) KeepAliveTimeout() time.Duration {
	return time.Duration(c.KeepAlive) * time.Second
}
