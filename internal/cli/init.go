package cli

import (
	"fmt"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/artisanexperiences/kiln/internal/scaffold"
	"github.com/artisanexperiences/kiln/internal/scaffold/types"
	"github.com/artisanexperiences/kiln/internal/ui"
)

var initCmd = &cobra.Command{
	Use:   "init <project-name>",
	Short: "Create a new Rust service project",
	Long: `Creates <project-name> in the current directory (or --dir) from the
template bundle compiled into kiln.

The project name replaces {{project-name}} in the Cargo manifest, the
entry point, the Lambda adapter and the Makefile. Every other file is
copied unchanged. The target must not exist. If any write fails,
everything created by the run is removed again.`,
	Example: `  kiln init orders
  kiln init orders --dir ~/src
  kiln init orders --dry-run`,
	Args: exactArgs(1),
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	rc, err := runContextFrom(cmd)
	if err != nil {
		return err
	}

	req := types.ScaffoldRequest{
		ProjectName: args[0],
		ParentDir:   mustGetString(cmd, "dir"),
	}

	generator := scaffold.NewGenerator(
		scaffold.WithLogger(rc.Logger),
		scaffold.WithModes(rc.Config.DirMode, rc.Config.FileMode),
	)

	var result *types.GenerationResult
	genErr := ui.RunWithSpinner(fmt.Sprintf("Creating %s...", req.ProjectName), func() error {
		var err error
		result, err = generator.Generate(req, rc.StepOptions())
		return err
	})
	if genErr != nil {
		if result != nil && result.RolledBack {
			rc.Logger.Info("removed partially created project", "root", result.ProjectRoot)
		}
		return genErr
	}

	if rc.DryRun {
		ui.PrintDryRun(fmt.Sprintf("would create %d paths", len(result.CreatedPaths)))
		for _, path := range result.CreatedPaths {
			ui.PrintInfo(path)
		}
		return nil
	}

	ui.PrintSuccess(fmt.Sprintf("Project '%s' created successfully!", req.ProjectName))
	printNextSteps(result.ProjectRoot)

	if !cargoAvailable(rc) {
		ui.PrintWarning("cargo not found on PATH; install the Rust toolchain from https://rustup.rs")
	}
	return nil
}

func printNextSteps(root string) {
	ui.PrintInfo("")
	ui.PrintInfo("To get started:")
	ui.PrintCode("cd " + root)
	ui.PrintCode("cargo build")
	ui.PrintCode("cargo run")
	ui.PrintInfo("")
	ui.PrintInfo("To build the Lambda binary:")
	ui.PrintCode("make lambda")
}

// cargoAvailable prefers the path recorded by 'kiln install' and falls back
// to a PATH lookup.
func cargoAvailable(rc *RunContext) bool {
	if tool, ok := rc.Config.Tools["cargo"]; ok && tool.Path != "" {
		return true
	}
	return isCommandAvailable("cargo")
}

func isCommandAvailable(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

func init() {
	initCmd.Flags().String("dir", "", "Parent directory for the new project (default: current directory)")
	rootCmd.AddCommand(initCmd)
}
