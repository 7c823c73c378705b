package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/meysamhadeli/traitgen/config"
	"github.com/meysamhadeli/traitgen/constants/lipgloss"
	"github.com/meysamhadeli/traitgen/generator"
	"github.com/pterm/pterm"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// RootDependencies is what every subcommand needs once the project root is known
type RootDependencies struct {
	Root         string
	Config       *config.Config
	Orchestrator *generator.Orchestrator
}

// lenient is set once the configuration is loaded; it decides the exit code on failure
var lenient bool

var rootCmd = &cobra.Command{
	Use:   "traitgen [project-dir]",
	Short: "Generate the trait registry of a project from its blueprints.",
	Long: `traitgen scans include/<Module> and src of a project for trait files and renders
blueprints/object_blueprint.h and blueprints/object_blueprint.cpp into include/<Module>/<Module>.h
and src/<Module>.cpp. Modification times of every input are stored in scripts/meta.json, and
nothing is rendered again until one of them changes.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion, _ := cmd.Flags().GetBool("version"); showVersion {
			fmt.Fprintln(cmd.OutOrStdout(), config.DefaultConfig.Version)
			return nil
		}
		force, _ := cmd.Flags().GetBool("force")

		rootDependencies, err := handleRootCommand(cmd, args, generator.WithForce(force))
		if err != nil {
			return err
		}
		return handleGenerateCommand(cmd, rootDependencies)
	},
}

func init() {
	config.InitFlags(rootCmd)
	rootCmd.Flags().BoolP("force", "f", false, "Regenerate even when nothing changed.")
}

// handleRootCommand resolves the project root, loads the configuration and wires the
// orchestrator with the real filesystem.
func handleRootCommand(cmd *cobra.Command, args []string, opts ...generator.Option) (*RootDependencies, error) {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}

	cfg, err := config.LoadConfigs(cmd.Root(), root)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", generator.ErrConfiguration, err)
	}
	lenient = cfg.Lenient

	if cfg.Verbose {
		pterm.EnableDebugMessages()
	} else {
		pterm.DisableDebugMessages()
	}

	opts = append([]generator.Option{generator.WithLocker(generator.FileLocker{})}, opts...)
	if cfg.EnableFormat && cfg.FormatCommand != "" {
		opts = append(opts, generator.WithFormatter(generator.NewCommandFormatter(cfg.FormatCommand)))
	}

	fs := afero.NewOsFs()
	if cfg.InspectFields {
		opts = append(opts, generator.WithInspector(generator.NewInspector(fs)))
	}

	orchestrator, err := generator.NewOrchestrator(fs, cfg.ToLayout(), opts...)
	if err != nil {
		return nil, err
	}

	return &RootDependencies{
		Root:         root,
		Config:       cfg,
		Orchestrator: orchestrator,
	}, nil
}

// Execute runs the root command and exits with the status the configuration asks for
func Execute() {
	os.Exit(run(context.Background(), os.Args[1:]))
}

func run(ctx context.Context, args []string) int {
	lenient = false
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), lipgloss.Red.Render(fmt.Sprintf("unsuccessful: %v", err)))
	}
	return exitCode(err, lenient)
}

// exitCode maps a command error to a process status. Lenient mode keeps the historical
// behaviour of always reporting success.
func exitCode(err error, lenient bool) int {
	switch {
	case err == nil, lenient:
		return 0
	case errors.Is(err, context.Canceled):
		return 130
	default:
		return 1
	}
}
