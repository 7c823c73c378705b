package cmd

import (
	"bufio"
	"fmt"

	"github.com/meysamhadeli/traitgen/constants/lipgloss"
	"github.com/meysamhadeli/traitgen/utils"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// resetCacheCmd represents the reset-cache command
var resetCacheCmd = &cobra.Command{
	Use:   "reset-cache [project-dir]",
	Short: "Forget the stored modification times of a project",
	Long: `The 'reset-cache' command removes scripts/meta.json, so the next run regenerates the module
even if no trait or blueprint changed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		rootDependencies, err := handleRootCommand(cmd, args)
		if err != nil {
			return err
		}
		return handleResetCacheCommand(cmd, rootDependencies, force)
	},
}

func init() {
	resetCacheCmd.Flags().BoolP("force", "f", false, "Force cache reset without confirmation")

	rootCmd.AddCommand(resetCacheCmd)
}

func handleResetCacheCommand(cmd *cobra.Command, rootDependencies *RootDependencies, force bool) error {
	out := cmd.OutOrStdout()

	if !force {
		reader := bufio.NewReader(cmd.InOrStdin())
		accepted, err := utils.ConfirmPrompt("Are you sure you want to reset the generation cache?", reader, out)
		if err != nil {
			return err
		}
		if !accepted {
			fmt.Fprintln(out, lipgloss.Yellow.Render("Cache reset cancelled."))
			return nil
		}
	}

	spinner, _ := pterm.DefaultSpinner.
		WithStyle(pterm.NewStyle(pterm.FgLightBlue)).
		WithSequence("⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏").
		WithDelay(100).
		WithRemoveWhenDone(true).
		Start("Resetting cache...")

	err := rootDependencies.Orchestrator.ResetCache(rootDependencies.Root)
	spinner.Stop()
	if err != nil {
		return fmt.Errorf("error resetting cache: %w", err)
	}

	fmt.Fprintln(out, lipgloss.Green.Render("✓ Generation cache has been reset!"))
	return nil
}

