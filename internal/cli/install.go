package cli

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/cobra"

	"github.com/artisanexperiences/kiln/internal/config"
	"github.com/artisanexperiences/kiln/internal/ui"
)

// detectedTools are the build tools a generated project relies on.
var detectedTools = []string{"cargo", "rustc", "make", "cargo-lambda"}

// minimumVersions are the oldest toolchains that build the generated project.
var minimumVersions = map[string]string{
	"cargo": "1.75.0",
	"rustc": "1.75.0",
}

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Setup global configuration",
	Long: `Sets up global configuration and detects available tools.

Creates or updates the global kiln.yaml configuration file and records
the Rust build tools found on PATH (cargo, rustc, make, cargo-lambda).`,
	Args: noArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rc, err := runContextFrom(cmd)
		if err != nil {
			return err
		}

		configPath, err := config.GlobalConfigPath()
		if err != nil {
			return &configError{err: err}
		}

		if config.GlobalConfigExists() && !rc.DryRun && ui.ShouldPrompt(cmd, false) {
			overwrite, err := ui.Confirm(fmt.Sprintf("%s already exists. Update it?", configPath))
			if err != nil {
				return err
			}
			if !overwrite {
				ui.PrintInfo("Configuration unchanged")
				return nil
			}
		}

		toolsInfo := make(map[string]config.ToolInfo)
		var toolRows [][]string
		var outdated []string
		for _, tool := range detectedTools {
			path, version, err := detectTool(tool)
			if err != nil || path == "" {
				toolRows = append(toolRows, []string{tool, "✗ not found", "-"})
				continue
			}

			toolsInfo[tool] = config.ToolInfo{
				Path:    path,
				Version: version,
			}
			rc.Logger.Debug("tool detected", "tool", tool, "path", path, "version", version)

			status := "✓ found"
			ok, err := meetsMinimum(tool, version)
			if err != nil {
				rc.Logger.Debug("version not checked", "tool", tool, "err", err)
			} else if !ok {
				status = "! outdated"
				outdated = append(outdated, fmt.Sprintf("%s %s is older than %s", tool, version, minimumVersions[tool]))
			}
			toolRows = append(toolRows, []string{tool, status, version})
		}

		out := cmd.OutOrStdout()
		if !rc.Quiet {
			fmt.Fprintln(out, ui.HeaderStyle.Render("Kiln Installation"))
			fmt.Fprintf(out, "Platform: %s\n", runtime.GOOS)
			fmt.Fprintf(out, "Config: %s\n", configPath)
			fmt.Fprintln(out, ui.RenderStatusTable(toolRows))
		}

		if rc.DryRun {
			ui.PrintDryRun("configuration not saved")
			return nil
		}

		cfg := rc.Config
		cfg.Tools = toolsInfo
		if err := config.SaveGlobal(cfg); err != nil {
			return &configError{err: fmt.Errorf("saving global config: %w", err)}
		}

		ui.PrintDone("Configuration saved")
		if _, ok := toolsInfo["cargo"]; !ok {
			ui.PrintWarning("cargo not found; install the Rust toolchain from https://rustup.rs")
		}
		for _, msg := range outdated {
			ui.PrintWarning(msg + "; run 'rustup update'")
		}
		ui.PrintInfo("Run `kiln init <project-name>` to get started")

		return nil
	},
}

func detectTool(name string) (string, string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", "", fmt.Errorf("not found")
	}

	version, err := getToolVersion(name, path)
	if err != nil || version == "" {
		version = "unknown"
	}

	return path, version, nil
}

// meetsMinimum reports whether version satisfies the minimum for tool. Tools
// without a minimum always pass.
func meetsMinimum(tool, version string) (bool, error) {
	minimum, ok := minimumVersions[tool]
	if !ok {
		return true, nil
	}
	v, err := semver.NewVersion(strings.TrimPrefix(version, "v"))
	if err != nil {
		return false, fmt.Errorf("parsing %s version %q: %w", tool, version, err)
	}
	return !v.LessThan(semver.MustParse(minimum)), nil
}

func getToolVersion(name, path string) (string, error) {
	var cmd *exec.Cmd

	switch name {
	case "cargo", "rustc", "make", "cargo-lambda":
		cmd = exec.Command(path, "--version")
	default:
		return "", fmt.Errorf("unknown tool")
	}

	output, err := cmd.Output()
	if err != nil {
		return "", err
	}

	return extractVersion(string(output), name), nil
}

func extractVersion(output, tool string) string {
	lines := strings.Split(strings.TrimRight(output, "\n"), "\n")
	switch tool {
	case "cargo", "rustc", "cargo-lambda":
		// "cargo 1.80.0 (376290515 2024-07-16)"
		for _, line := range lines {
			parts := strings.Fields(line)
			if len(parts) >= 2 && parts[0] == tool {
				return strings.TrimPrefix(parts[1], "v")
			}
		}
	case "make":
		// "GNU Make 4.3"
		for _, line := range lines {
			if strings.Contains(line, "Make") {
				parts := strings.Fields(line)
				if len(parts) >= 2 {
					return parts[len(parts)-1]
				}
			}
		}
	}

	return ""
}

func init() {
	rootCmd.AddCommand(installCmd)
}
