package config

import (
	"strings"

	"github.com/NielsdaWheelz/curator/internal/errors"
)

var logLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// ValidateUserConfig validates the user config and returns E_INVALID_CONFIG on failure.
func ValidateUserConfig(cfg UserConfig) (UserConfig, error) {
	if cfg.Version != 1 {
		return cfg, errors.New(errors.EInvalidConfig, "version must be 1")
	}
	switch cfg.Defaults.SortBy {
	case "name", "date", "size":
	default:
		return cfg, errors.New(errors.EInvalidConfig, "defaults.sort_by must be one of name, date, size")
	}
	switch cfg.Defaults.SortOrder {
	case "asc", "desc":
	default:
		return cfg, errors.New(errors.EInvalidConfig, "defaults.sort_order must be asc or desc")
	}
	if !logLevels[cfg.LogLevel] {
		return cfg, errors.New(errors.EInvalidConfig, "log_level must be one of debug, info, warn, error")
	}
	for i, pattern := range cfg.Ignore {
		if strings.TrimSpace(pattern) == "" {
			return cfg, errors.New(errors.EInvalidConfig, "ignore entries must be non-empty")
		}
		cfg.Ignore[i] = strings.TrimSpace(pattern)
	}
	return cfg, nil
}
