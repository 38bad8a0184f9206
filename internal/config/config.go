// Package config handles loading and validation of the curator user
// configuration file.
package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/NielsdaWheelz/curator/internal/errors"
)

// UserConfig represents the parsed and validated user configuration.
type UserConfig struct {
	Version   int          `yaml:"version"`
	Defaults  UserDefaults `yaml:"defaults"`
	RulesFile string       `yaml:"rules_file"`
	Ignore    []string     `yaml:"ignore"`
	LogLevel  string       `yaml:"log_level"`
}

// UserDefaults holds default scan options.
type UserDefaults struct {
	SortBy    string `yaml:"sort_by"`
	SortOrder string `yaml:"sort_order"`
	Recursive bool   `yaml:"recursive"`
}

// DefaultUserConfig returns built-in defaults used when config.yaml is missing.
func DefaultUserConfig() UserConfig {
	return UserConfig{
		Version: 1,
		Defaults: UserDefaults{
			SortBy:    "name",
			SortOrder: "asc",
		},
		Ignore:   []string{},
		LogLevel: "warn",
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/curator/config.yaml, falling back to
// ~/.config/curator/config.yaml. Empty if neither can be determined.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return configPath(os.Getenv("XDG_CONFIG_HOME"), home)
}

func configPath(xdg, home string) string {
	if xdg != "" {
		return filepath.Join(xdg, "curator", "config.yaml")
	}
	if home == "" {
		return ""
	}
	return filepath.Join(home, ".config", "curator", "config.yaml")
}

// LoadUserConfig loads and validates the config at path.
// If the file is missing, returns defaults with found=false.
// If the file exists but is invalid, returns E_INVALID_CONFIG.
func LoadUserConfig(filesystem afero.Fs, path string) (UserConfig, bool, error) {
	if path == "" {
		return DefaultUserConfig(), false, nil
	}
	data, err := afero.ReadFile(filesystem, path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultUserConfig(), false, nil
		}
		return UserConfig{}, false, errors.WrapWithDetails(errors.EInvalidConfig, "failed to read config", err,
			map[string]string{"config": path})
	}

	cfg, err := parseStrict(data)
	if err != nil {
		return UserConfig{}, false, errors.WrapWithDetails(errors.EInvalidConfig, "invalid config: "+err.Error(), err,
			map[string]string{"config": path})
	}
	cfg, err = ValidateUserConfig(cfg)
	if err != nil {
		if ce, ok := errors.AsCuratorError(err); ok {
			return UserConfig{}, false, errors.NewWithDetails(ce.Code, ce.Msg, map[string]string{"config": path})
		}
		return UserConfig{}, false, err
	}
	return cfg, true, nil
}

// parseStrict decodes data over the defaults, rejecting unknown keys.
// An empty document yields the defaults.
func parseStrict(data []byte) (UserConfig, error) {
	cfg := DefaultUserConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return UserConfig{}, err
	}
	if cfg.Ignore == nil {
		cfg.Ignore = []string{}
	}
	return cfg, nil
}
