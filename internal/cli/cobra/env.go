package cobra

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/NielsdaWheelz/curator/internal/commands"
	"github.com/NielsdaWheelz/curator/internal/config"
	"github.com/NielsdaWheelz/curator/internal/errors"
	"github.com/NielsdaWheelz/curator/internal/logging"
	"github.com/NielsdaWheelz/curator/internal/tty"
)

// loadEnv reads the user config, builds the stderr logger, and resolves
// --repo. An explicit --config must exist; the default path may not.
func loadEnv(cmd *cobra.Command) (*commands.Env, error) {
	path := globalOpts.Config
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, found, err := config.LoadUserConfig(afero.NewOsFs(), path)
	if err != nil {
		return nil, err
	}
	if globalOpts.Config != "" && !found {
		return nil, errors.NewWithDetails(errors.EInvalidConfig, "config file not found",
			map[string]string{"config": path})
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	if globalOpts.Verbose {
		level = zerolog.DebugLevel
	}
	stderr := cmd.ErrOrStderr()
	color := false
	if f, ok := stderr.(*os.File); ok {
		color = tty.IsTTY(f)
	}
	logger := logging.New(stderr, level, color)
	logger.Debug().Str("config", path).Bool("found", found).Msg("loaded config")

	env, err := commands.NewEnv(globalOpts.Repo, cfg, logger)
	if err != nil {
		return nil, err
	}
	env.Stdin = cmd.InOrStdin()
	return env, nil
}
