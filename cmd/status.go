package cmd

import (
	"fmt"

	"github.com/meysamhadeli/traitgen/constants/lipgloss"
	"github.com/meysamhadeli/traitgen/generator"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status [project-dir]",
	Short: "Show whether the generated module is up to date and why not.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rootDependencies, err := handleRootCommand(cmd, args)
		if err != nil {
			return err
		}
		return handleStatusCommand(cmd, rootDependencies)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func handleStatusCommand(cmd *cobra.Command, rootDependencies *RootDependencies) error {
	out := cmd.OutOrStdout()

	result, err := rootDependencies.Orchestrator.Status(rootDependencies.Root)
	if err != nil {
		return err
	}

	project := result.Project
	fmt.Fprintf(out, "Module:     %s\n", project.Module)
	fmt.Fprintf(out, "Cache:      %s\n", project.CacheFile.Path())
	fmt.Fprintf(out, "Watching:   %d files\n", project.WatchedSet().Len())
	fmt.Fprintf(out, "Traits:     %d\n", len(result.Traits))
	for _, trait := range result.Traits {
		fmt.Fprintf(out, "  %3d  %s\n", trait.Id, trait.Name)
	}

	if result.State == generator.StateFresh {
		fmt.Fprintln(out, lipgloss.Green.Render("✓ up to date"))
		return nil
	}

	fmt.Fprintln(out, lipgloss.Yellow.Render("✗ stale"))
	for _, change := range result.Changes {
		fmt.Fprintf(out, "  %s (%s)\n", relativeTo(project.Root, change.Path), change.Reason)
	}
	return nil
}
