package cmd

import (
	"fmt"

	"github.com/meysamhadeli/traitgen/constants/lipgloss"
	"github.com/meysamhadeli/traitgen/utils"
	"github.com/spf13/cobra"
)

var previewCmd = &cobra.Command{
	Use:   "preview [project-dir]",
	Short: "Render the blueprints to the terminal without writing anything.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rootDependencies, err := handleRootCommand(cmd, args)
		if err != nil {
			return err
		}
		plain, _ := cmd.Flags().GetBool("plain")
		return handlePreviewCommand(cmd, rootDependencies, plain)
	},
}

func init() {
	previewCmd.Flags().Bool("plain", false, "Print without syntax highlighting")
	rootCmd.AddCommand(previewCmd)
}

func handlePreviewCommand(cmd *cobra.Command, rootDependencies *RootDependencies, plain bool) error {
	out := cmd.OutOrStdout()

	files, err := rootDependencies.Orchestrator.Preview(cmd.Context(), rootDependencies.Root)
	if err != nil {
		return err
	}

	for _, f := range files {
		path := f.Blueprint.Output.Path()
		fmt.Fprintln(out, lipgloss.BoxStyle.Render(path))

		if plain {
			fmt.Fprintln(out, string(f.Content))
			continue
		}
		language := utils.DetectLanguageFromPath(path)
		if err := utils.RenderAndPrintCodeWithContext(cmd.Context(), out, string(f.Content), language, rootDependencies.Config.Theme); err != nil {
			return fmt.Errorf("error rendering %s: %w", path, err)
		}
	}
	return nil
}
