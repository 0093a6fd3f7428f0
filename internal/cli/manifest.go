package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/artisanexperiences/kiln/internal/scaffold/manifest"
	"github.com/artisanexperiences/kiln/internal/scaffold/types"
	"github.com/artisanexperiences/kiln/internal/templates"
	"github.com/artisanexperiences/kiln/internal/ui"
)

var manifestCmd = &cobra.Command{
	Use:   "manifest",
	Short: "List the entries of the bundled template",
	Long: `Lists every directory and file 'kiln init' creates, in creation order,
with the template it is rendered from and whether the project name is
substituted into it.

With --verify, also checks that every template exists in the bundle and
that substitution is declared exactly for templates containing the
{{project-name}} placeholder.`,
	Args: noArgs,
	RunE: runManifest,
}

func runManifest(cmd *cobra.Command, args []string) error {
	format := mustGetString(cmd, "format")
	if format != "table" && format != "yaml" {
		return usageErrorf("unsupported format %q (want table or yaml)", format)
	}

	m, err := manifest.Default()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(m); err != nil {
			return fmt.Errorf("encoding manifest: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("encoding manifest: %w", err)
		}
	default:
		fmt.Fprintln(out, ui.HeaderStyle.Render(m.Name))
		fmt.Fprintln(out, ui.RenderManifestTable(manifestRows(m.Entries)))
	}

	if !mustGetBool(cmd, "verify") {
		return nil
	}
	if err := manifest.Verify(templates.Bundle, m.Entries); err != nil {
		return err
	}
	ui.PrintSuccess(fmt.Sprintf("%d entries verified", len(m.Entries)))
	return nil
}

func manifestRows(entries []types.ManifestEntry) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		tpl := entry.TemplateRelPath
		if tpl == "" {
			tpl = "-"
		}
		subst := "no"
		if entry.Substitute {
			subst = "yes"
		}
		rows = append(rows, []string{string(entry.Kind), entry.OutputRelPath, tpl, subst})
	}
	return rows
}

func init() {
	manifestCmd.Flags().String("format", "table", "Output format: table or yaml")
	manifestCmd.Flags().Bool("verify", false, "Check templates against the manifest")
	rootCmd.AddCommand(manifestCmd)
}
