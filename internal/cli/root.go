package cli

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/artisanexperiences/kiln/internal/config"
	kilnerrors "github.com/artisanexperiences/kiln/internal/errors"
	"github.com/artisanexperiences/kiln/internal/ui"
)

var rootCmd = &cobra.Command{
	Use:   "kiln",
	Short: "Scaffold new Rust service projects",
	Long: `Kiln is a self-contained binary that creates ready-to-build Rust
service projects from a template bundle compiled into the binary.

Each project gets a Cargo manifest, an HTTP entry point, routing and
processing modules, a Lambda adapter and a Makefile, all named after
the project.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			return usageErrorf("unknown command %q for %q", args[0], cmd.CommandPath())
		}
		return nil
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		rc, err := OpenRunContext(cmd)
		if err != nil {
			return err
		}
		cmd.SetContext(withRunContext(cmd.Context(), rc))
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return usageErrorf("a command is required")
	},
}

var noColor bool

// usageError marks a malformed invocation: wrong argument count, an unknown
// command or a bad flag.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usageErrorf(format string, args ...interface{}) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

// exactArgs is cobra.ExactArgs reporting a usage error.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return usageErrorf("%s accepts %d arg(s), received %d", cmd.CommandPath(), n, len(args))
		}
		return nil
	}
}

func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return usageErrorf("%s takes no arguments, received %q", cmd.CommandPath(), args[0])
	}
	return nil
}

// configError marks a failure to load or save the global configuration.
type configError struct {
	err error
}

func (e *configError) Error() string { return "configuration: " + e.err.Error() }
func (e *configError) Unwrap() error { return e.err }

// ExitCode maps an error returned by Execute to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return config.ExitSuccess
	}

	var usage *usageError
	if errors.As(err, &usage) {
		return config.ExitInvalidArguments
	}
	var cfgErr *configError
	if errors.As(err, &cfgErr) {
		return config.ExitConfigurationError
	}

	switch kilnerrors.KindOf(err) {
	case kilnerrors.ErrValidation:
		return config.ExitValidationFailed
	case kilnerrors.ErrManifest:
		return config.ExitManifestError
	case kilnerrors.ErrIO, kilnerrors.ErrMissingTemplate, kilnerrors.ErrPathEscape:
		return config.ExitScaffoldFailed
	}
	return config.ExitGeneralError
}

func hintFor(err error) string {
	var usage *usageError
	if errors.As(err, &usage) {
		return ""
	}
	if root, ok := kilnerrors.LeftBehind(err); ok {
		return fmt.Sprintf("Rollback could not remove everything. Delete %s by hand before retrying.", root)
	}
	switch kilnerrors.KindOf(err) {
	case kilnerrors.ErrValidation:
		return "Choose a different project name or remove the existing path."
	case kilnerrors.ErrMissingTemplate, kilnerrors.ErrManifest:
		return "The template bundle in this binary is damaged. Run 'kiln manifest --verify'."
	case kilnerrors.ErrIO, kilnerrors.ErrPathEscape:
		return "Nothing was left behind. Check permissions on the parent directory and retry."
	}
	return ""
}

func printBanner() {
	blockLetters := [][]string{
		// K
		{
			"██╗  ██╗",
			"██║ ██╔╝",
			"█████╔╝ ",
			"██╔═██╗ ",
			"██║  ██╗",
			"╚═╝  ╚═╝",
		},
		// I
		{
			"██╗",
			"██║",
			"██║",
			"██║",
			"██║",
			"╚═╝",
		},
		// L
		{
			"██╗     ",
			"██║     ",
			"██║     ",
			"██║     ",
			"███████╗",
			"╚══════╝",
		},
		// N
		{
			"███╗   ██╗",
			"████╗  ██║",
			"██╔██╗ ██║",
			"██║╚██╗██║",
			"██║ ╚████║",
			"╚═╝  ╚═══╝",
		},
	}

	colors := []lipgloss.Color{
		lipgloss.Color("#FDBA74"),
		lipgloss.Color("#FB923C"),
		lipgloss.Color("#EA580C"),
		lipgloss.Color("#C2410C"),
	}

	out := ui.Out()
	for row := 0; row < 6; row++ {
		var lineParts []string
		for letterIdx := 0; letterIdx < len(blockLetters); letterIdx++ {
			style := lipgloss.NewStyle().
				Foreground(colors[letterIdx]).
				Bold(true)
			lineParts = append(lineParts, style.Render(blockLetters[letterIdx][row]))
		}
		fmt.Fprintln(out, lipgloss.JoinHorizontal(lipgloss.Left, lineParts...))
	}

	versionStyle := lipgloss.NewStyle().
		Foreground(ui.ColorMuted).
		MarginTop(1)

	subtitleStyle := lipgloss.NewStyle().
		Foreground(ui.ColorMuted)

	versionLine := fmt.Sprintf("Version %s (commit: %s, built: %s)", Version, Commit, BuildDate)
	fmt.Fprintln(out, versionStyle.Render(versionLine))
	fmt.Fprintln(out, subtitleStyle.Render("Rust Service Scaffolding"))
	fmt.Fprintln(out)
}

// Execute runs the root command and reports any failure on stderr.
// A prompt cancelled by the user is not an error.
func Execute() error {
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true

	cmd, err := rootCmd.ExecuteC()
	if err == nil || ui.IsAbort(err) {
		return nil
	}

	ui.PrintErrorWithHint(err.Error(), hintFor(err))

	var usage *usageError
	if errors.As(err, &usage) && cmd != nil {
		fmt.Fprint(cmd.ErrOrStderr(), cmd.UsageString())
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().Bool("dry-run", false, "Preview operations without executing")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable verbose output")
	rootCmd.PersistentFlags().Bool("quiet", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().Bool("no-interactive", false, "Disable interactive prompts")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	defaultHelp := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if cmd == rootCmd && !noColor && ui.IsInteractive() {
			printBanner()
		}
		defaultHelp(cmd, args)
	})
}

func mustGetString(cmd *cobra.Command, name string) string {
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		panic(fmt.Sprintf("programming error: flag %q not defined: %v", name, err))
	}
	return value
}

func mustGetBool(cmd *cobra.Command, name string) bool {
	value, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic(fmt.Sprintf("programming error: flag %q not defined: %v", name, err))
	}
	return value
}
