// Package config loads the slipo CLI profile: endpoint, API key and
// logging preferences, sourced from a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment variables consulted after the profile file.
const (
	EnvURL    = "SLIPO_URL"
	EnvAPIKey = "SLIPO_API_KEY"
)

// Profile captures CLI options sourced from the config file, the
// environment or flags.
type Profile struct {
	// URL is the SLIPO API endpoint.
	URL string `yaml:"url"`

	// APIKey authenticates every request.
	APIKey string `yaml:"api_key"`

	// APIKeyFile points at a file holding the key, used when APIKey is
	// empty. Key material stays out of the profile this way.
	APIKeyFile string `yaml:"api_key_file"`

	// Insecure allows plain-HTTP endpoints.
	Insecure bool `yaml:"insecure"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Default returns the baseline profile used when nothing else specifies
// values.
func Default() Profile {
	return Profile{
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// DefaultPath returns the default profile location, ~/.slipo/config.yml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".slipo", "config.yml")
}

// Load reads the profile at path (or the default location when path is
// empty) and merges environment overrides. A missing file is ignored.
func Load(path string) (Profile, error) {
	p := Default()

	if path == "" {
		path = DefaultPath()
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// No profile file; environment and flags still apply.
		case err != nil:
			return p, fmt.Errorf("read profile %q: %w", path, err)
		default:
			var file Profile
			if err := yaml.Unmarshal(data, &file); err != nil {
				return p, fmt.Errorf("parse profile %q: %w", path, err)
			}
			p = merge(p, file)
		}
	}

	if v := os.Getenv(EnvURL); v != "" {
		p.URL = v
	}
	if v := os.Getenv(EnvAPIKey); v != "" {
		p.APIKey = v
	}

	if p.APIKey == "" && p.APIKeyFile != "" {
		key, err := os.ReadFile(p.APIKeyFile)
		if err != nil {
			return p, fmt.Errorf("read api key file %q: %w", p.APIKeyFile, err)
		}
		p.APIKey = strings.TrimSpace(string(key))
	}

	return p, nil
}

func merge(base, override Profile) Profile {
	out := base
	if override.URL != "" {
		out.URL = override.URL
	}
	if override.APIKey != "" {
		out.APIKey = override.APIKey
	}
	if override.APIKeyFile != "" {
		out.APIKeyFile = override.APIKeyFile
	}
	if override.Insecure {
		out.Insecure = true
	}
	if override.LogLevel != "" {
		out.LogLevel = override.LogLevel
	}
	if override.LogFormat != "" {
		out.LogFormat = override.LogFormat
	}
	return out
}
