package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the optional ~/.minilib.yaml file. Command line flags that were
// set explicitly take precedence over it. An empty Backend means sqlite, but
// lets the first interactive run ask.
type Config struct {
	Database string `yaml:"database"`
	Backend  string `yaml:"backend"`
	LogFile  string `yaml:"log_file"`
	Debug    bool   `yaml:"debug"`
}

func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Database: filepath.Join(home, ".minilib.sqlite"),
		LogFile:  filepath.Join(home, ".minilib.log"),
	}
}

func defaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".minilib.yaml")
}

// LoadConfig reads path over the defaults. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(truePath(path))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if cfg.Database == "" {
		cfg.Database = DefaultConfig().Database
	}
	cfg.Database = truePath(cfg.Database)
	if cfg.LogFile != "" {
		cfg.LogFile = truePath(cfg.LogFile)
	}
	return cfg, nil
}

func truePath(path string) string {
	if strings.HasPrefix(path, "~") {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[1:])
	}
	abs, _ := filepath.Abs(path)
	return abs
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
