package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/meysamhadeli/traitgen/constants/lipgloss"
	"github.com/meysamhadeli/traitgen/generator"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch [project-dir]",
	Short: "Regenerate the module whenever a trait or blueprint changes.",
	Long: `The 'watch' subcommand runs one generation pass and then keeps watching the trait
directories and blueprints, regenerating after every burst of changes until interrupted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rootDependencies, err := handleRootCommand(cmd, args)
		if err != nil {
			return err
		}
		return handleWatchCommand(cmd, rootDependencies)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func handleWatchCommand(cmd *cobra.Command, rootDependencies *RootDependencies) error {
	out := cmd.OutOrStdout()

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	fmt.Fprintln(out, lipgloss.BoxStyle.Render(fmt.Sprintf("Watching %s (Ctrl+C to stop)", rootDependencies.Root)))

	watcher := generator.NewWatcher(rootDependencies.Orchestrator, rootDependencies.Root, rootDependencies.Config.WatchDebounce, func(result *generator.Result, err error) {
		if err != nil {
			fmt.Fprintln(out, lipgloss.Red.Render(fmt.Sprintf("generation failed: %v", err)))
			return
		}
		printResult(out, result)
	})

	if err := watcher.Run(ctx); err != nil {
		return err
	}

	stats := rootDependencies.Orchestrator.Renderer().Stats()
	fmt.Fprintln(out, lipgloss.Gray.Render(fmt.Sprintf("stopped: %d files written, %d unchanged, template cache %d hits / %d misses",
		stats.FilesWritten, stats.FilesUnchanged, stats.TemplateHits, stats.TemplateMisses)))
	return nil
}
