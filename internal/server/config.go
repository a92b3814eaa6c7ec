package server

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds server configuration options.
type Config struct {
	// MaxProblems limits the number of diagnostics reported per document.
	MaxProblems int `yaml:"max_problems" json:"max_problems"`

	// LogLevel is one of error, warn, notice, info or debug.
	LogLevel string `yaml:"log_level" json:"log_level"`

	// Snippets enables snippet completions when the client supports them.
	Snippets bool `yaml:"snippets" json:"snippets"`

	// Documentation enables documentation comments in hover and completion.
	Documentation bool `yaml:"documentation" json:"documentation"`
}

// DefaultConfig returns the configuration used when no file is found.
func DefaultConfig() *Config {
	return &Config{
		MaxProblems:   100,
		LogLevel:      "error",
		Snippets:      true,
		Documentation: true,
	}
}

// LoadConfig reads a configuration file. Keys missing from the file keep
// their default. A .json extension is decoded as JSON, anything else as
// YAML.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()
	if filepath.Ext(path) == ".json" {
		err = json.Unmarshal(data, config)
	} else {
		err = yaml.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if config.MaxProblems < 0 {
		return nil, fmt.Errorf("parse %s: max_problems must not be negative", path)
	}

	return config, nil
}

var configNames = []string{
	".asp-lsp.yaml",
	".asp-lsp.yml",
	".asp-lsp.json",
}

// FindConfigFile looks for a config file in dir, then in the home
// directory. It returns "" when there is none.
func FindConfigFile(dir string) string {
	dirs := []string{dir}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, home)
	}

	for _, d := range dirs {
		for _, name := range configNames {
			path := filepath.Join(d, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}

	return ""
}
