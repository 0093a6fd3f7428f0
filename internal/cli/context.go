package cli

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/artisanexperiences/kiln/internal/config"
	"github.com/artisanexperiences/kiln/internal/logging"
	"github.com/artisanexperiences/kiln/internal/scaffold/types"
	"github.com/artisanexperiences/kiln/internal/ui"
)

// RunContext is what every command needs once flags are parsed: the global
// configuration, a logger at the effective level and the shared flags.
type RunContext struct {
	Config *config.GlobalConfig
	Logger *log.Logger

	DryRun  bool
	Verbose bool
	Quiet   bool
}

type runContextKey struct{}

// OpenRunContext loads the global configuration and applies the persistent
// flags to the ui package.
func OpenRunContext(cmd *cobra.Command) (*RunContext, error) {
	cfg, err := config.LoadGlobal()
	if err != nil {
		return nil, &configError{err: err}
	}

	rc := &RunContext{
		Config:  cfg,
		DryRun:  mustGetBool(cmd, "dry-run"),
		Verbose: mustGetBool(cmd, "verbose"),
		Quiet:   mustGetBool(cmd, "quiet"),
	}

	ui.SetQuiet(rc.Quiet)
	if mustGetBool(cmd, "no-color") || cfg.NoColor || os.Getenv("NO_COLOR") != "" {
		ui.SetNoColor(true)
	}

	rc.Logger = logging.New(cmd.ErrOrStderr(), logging.LevelFor(cfg.LogLevel, rc.Verbose, rc.Quiet))
	rc.Logger.Debug("configuration loaded", "log_level", cfg.LogLevel, "dir_mode", cfg.DirMode, "file_mode", cfg.FileMode)

	return rc, nil
}

// StepOptions converts the shared flags for the generator.
func (rc *RunContext) StepOptions() types.StepOptions {
	return types.StepOptions{
		DryRun:  rc.DryRun,
		Verbose: rc.Verbose,
		Quiet:   rc.Quiet,
	}
}

func withRunContext(ctx context.Context, rc *RunContext) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, runContextKey{}, rc)
}

// runContextFrom returns the context stored by the root command, opening a
// fresh one when a command runs without it.
func runContextFrom(cmd *cobra.Command) (*RunContext, error) {
	if ctx := cmd.Context(); ctx != nil {
		if rc, ok := ctx.Value(runContextKey{}).(*RunContext); ok {
			return rc, nil
		}
	}
	return OpenRunContext(cmd)
}
