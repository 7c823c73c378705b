package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/meysamhadeli/traitgen/constants/lipgloss"
	"github.com/meysamhadeli/traitgen/generator"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func handleGenerateCommand(cmd *cobra.Command, rootDependencies *RootDependencies) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, lipgloss.BoxStyle.Render("STARTING CODEGEN"))

	spinner := pterm.DefaultSpinner.WithStyle(pterm.NewStyle(pterm.FgLightBlue)).WithSequence("⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏").WithDelay(100).WithRemoveWhenDone(true)
	spinnerGenerate, _ := spinner.Start("Checking traits...")

	result, err := rootDependencies.Orchestrator.Run(cmd.Context(), rootDependencies.Root)

	spinnerGenerate.Stop()
	fmt.Fprint(out, "\r")

	if err != nil {
		fmt.Fprintln(out, lipgloss.BoxStyle.Render("ENDING CODEGEN"))
		return err
	}

	printResult(out, result)
	fmt.Fprintln(out, lipgloss.Green.Render("generation process was successful."))
	fmt.Fprintln(out, lipgloss.BoxStyle.Render("ENDING CODEGEN"))
	return nil
}

// printResult reports one orchestrator pass; shared by generate and watch
func printResult(out io.Writer, result *generator.Result) {
	if result.State == generator.StateFresh {
		fmt.Fprintln(out, lipgloss.Info.Render("Using cached output, nothing changed."))
		return
	}

	fmt.Fprintln(out, lipgloss.Info.Render(fmt.Sprintf("Generated module %s with %d traits in %s", result.Project.Module, len(result.Traits), result.Duration.Round(time.Millisecond))))
	for _, trait := range result.Traits {
		fmt.Fprintf(out, "  %3d  %s\n", trait.Id, trait.Name)
	}
	for _, path := range result.Written {
		fmt.Fprintln(out, lipgloss.Green.Render(fmt.Sprintf("✔ wrote %s", relativeTo(result.Project.Root, path))))
	}
	for _, path := range result.Unchanged {
		fmt.Fprintln(out, lipgloss.Gray.Render(fmt.Sprintf("• %s unchanged", relativeTo(result.Project.Root, path))))
	}
	if result.FormatErr != nil {
		fmt.Fprintln(out, lipgloss.Yellow.Render(fmt.Sprintf("Warning: output left unformatted: %v", result.FormatErr)))
	}
}

func relativeTo(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}
