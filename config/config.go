package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/meysamhadeli/traitgen/generator"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config represents the structure of the configuration file
type Config struct {
	Version       string        `mapstructure:"version"`
	Module        string        `mapstructure:"module"`
	EnableFormat  bool          `mapstructure:"enable_format"`
	FormatCommand string        `mapstructure:"format_command"`
	InspectFields bool          `mapstructure:"inspect_fields"`
	Lenient       bool          `mapstructure:"lenient"`
	Verbose       bool          `mapstructure:"verbose"`
	Theme         string        `mapstructure:"theme"`
	WatchDebounce time.Duration `mapstructure:"watch_debounce"`
	Layout        LayoutConfig  `mapstructure:"layout"`
}

// LayoutConfig locates the project parts relative to the root
type LayoutConfig struct {
	ScriptsDir     string   `mapstructure:"scripts_dir"`
	IncludeDir     string   `mapstructure:"include_dir"`
	SrcDir         string   `mapstructure:"src_dir"`
	BlueprintsDir  string   `mapstructure:"blueprints_dir"`
	BlueprintName  string   `mapstructure:"blueprint_name"`
	HeaderExt      string   `mapstructure:"header_ext"`
	SourceExt      string   `mapstructure:"source_ext"`
	CacheFile      string   `mapstructure:"cache_file"`
	IncludePattern string   `mapstructure:"include_pattern"`
	SourcePattern  string   `mapstructure:"source_pattern"`
	Ignore         []string `mapstructure:"ignore"`
}

// DefaultConfig values
var DefaultConfig = Config{
	Version:       "1.0.0",
	EnableFormat:  true,
	FormatCommand: generator.DefaultFormatCommand,
	InspectFields: true,
	Lenient:       false,
	Verbose:       false,
	Theme:         "dracula",
	WatchDebounce: generator.DefaultDebounce,
	Layout: LayoutConfig{
		ScriptsDir:     generator.DefaultLayout.ScriptsDir,
		IncludeDir:     generator.DefaultLayout.IncludeDir,
		SrcDir:         generator.DefaultLayout.SrcDir,
		BlueprintsDir:  generator.DefaultLayout.BlueprintsDir,
		BlueprintName:  generator.DefaultLayout.BlueprintName,
		HeaderExt:      generator.DefaultLayout.HeaderExt,
		SourceExt:      generator.DefaultLayout.SourceExt,
		CacheFile:      generator.DefaultLayout.CacheFileName,
		IncludePattern: generator.DefaultLayout.IncludePattern,
		SourcePattern:  generator.DefaultLayout.SourcePattern,
	},
}

// ConfigFileName is looked up in the project root, as .yaml, .yml or .json
const ConfigFileName = "traitgen-config"

// cfgFile holds the path to the configuration file (set via CLI)
var cfgFile string

// LoadConfigs layers defaults, <root>/.env, TRAITGEN_* environment variables, the config
// file and finally CLI flags, and returns the merged config.
func LoadConfigs(rootCmd *cobra.Command, root string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// Values already in the environment win over .env
	_ = godotenv.Load(filepath.Join(root, ".env"))

	v.SetEnvPrefix("TRAITGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	} else {
		v.SetConfigName(ConfigFileName)
		v.AddConfigPath(root)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
			// no config file, continue with defaults
		}
	}

	if rootCmd != nil {
		bindFlags(v, rootCmd)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	return &config, nil
}

// setDefaults sets all default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("version", DefaultConfig.Version)
	v.SetDefault("module", DefaultConfig.Module)
	v.SetDefault("enable_format", DefaultConfig.EnableFormat)
	v.SetDefault("format_command", DefaultConfig.FormatCommand)
	v.SetDefault("inspect_fields", DefaultConfig.InspectFields)
	v.SetDefault("lenient", DefaultConfig.Lenient)
	v.SetDefault("verbose", DefaultConfig.Verbose)
	v.SetDefault("theme", DefaultConfig.Theme)
	v.SetDefault("watch_debounce", DefaultConfig.WatchDebounce)
	v.SetDefault("layout.scripts_dir", DefaultConfig.Layout.ScriptsDir)
	v.SetDefault("layout.include_dir", DefaultConfig.Layout.IncludeDir)
	v.SetDefault("layout.src_dir", DefaultConfig.Layout.SrcDir)
	v.SetDefault("layout.blueprints_dir", DefaultConfig.Layout.BlueprintsDir)
	v.SetDefault("layout.blueprint_name", DefaultConfig.Layout.BlueprintName)
	v.SetDefault("layout.header_ext", DefaultConfig.Layout.HeaderExt)
	v.SetDefault("layout.source_ext", DefaultConfig.Layout.SourceExt)
	v.SetDefault("layout.cache_file", DefaultConfig.Layout.CacheFile)
	v.SetDefault("layout.include_pattern", DefaultConfig.Layout.IncludePattern)
	v.SetDefault("layout.source_pattern", DefaultConfig.Layout.SourcePattern)
	v.SetDefault("layout.ignore", []string{})
}

// bindFlags binds the CLI flags to configuration values.
func bindFlags(v *viper.Viper, rootCmd *cobra.Command) {
	flags := rootCmd.PersistentFlags()
	_ = v.BindPFlag("module", flags.Lookup("module"))
	_ = v.BindPFlag("enable_format", flags.Lookup("enable_format"))
	_ = v.BindPFlag("format_command", flags.Lookup("format_command"))
	_ = v.BindPFlag("inspect_fields", flags.Lookup("inspect_fields"))
	_ = v.BindPFlag("lenient", flags.Lookup("lenient"))
	_ = v.BindPFlag("verbose", flags.Lookup("verbose"))
	_ = v.BindPFlag("theme", flags.Lookup("theme"))
	_ = v.BindPFlag("watch_debounce", flags.Lookup("watch_debounce"))
	_ = v.BindPFlag("layout.blueprint_name", flags.Lookup("blueprint_name"))
}

// InitFlags initializes the flags for the root command.
func InitFlags(rootCmd *cobra.Command) {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Specifies the path to a configuration file (JSON or YAML). Defaults to traitgen-config.{yaml,json} in the project root.")

	rootCmd.PersistentFlags().String("module", DefaultConfig.Module, "Name of the generated module (defaults to the project directory name).")
	rootCmd.PersistentFlags().String("blueprint_name", DefaultConfig.Layout.BlueprintName, "Base name of the blueprint templates in the blueprints directory.")
	rootCmd.PersistentFlags().Bool("enable_format", DefaultConfig.EnableFormat, "Run the formatter over the generated files (failures are only reported).")
	rootCmd.PersistentFlags().String("format_command", DefaultConfig.FormatCommand, "Formatter invoked with each generated file appended.")
	rootCmd.PersistentFlags().Bool("inspect_fields", DefaultConfig.InspectFields, "Parse trait headers and expose their struct fields to blueprints.")
	rootCmd.PersistentFlags().Bool("lenient", DefaultConfig.Lenient, "Always exit with status 0, even when generation fails.")
	rootCmd.PersistentFlags().BoolP("verbose", "V", DefaultConfig.Verbose, "Print why each file triggers regeneration.")
	rootCmd.PersistentFlags().String("theme", DefaultConfig.Theme, "Syntax highlighting theme used by preview (e.g., 'dracula', 'monokai', 'github').")
	rootCmd.PersistentFlags().Duration("watch_debounce", DefaultConfig.WatchDebounce, "Quiet period before watch mode regenerates.")

	rootCmd.Flags().BoolP("version", "v", false, "Specifies the version of the application.")
}

// ToLayout converts the configuration into the generator's layout
func (c *Config) ToLayout() generator.Layout {
	return generator.Layout{
		Module:         c.Module,
		ScriptsDir:     c.Layout.ScriptsDir,
		IncludeDir:     c.Layout.IncludeDir,
		SrcDir:         c.Layout.SrcDir,
		BlueprintsDir:  c.Layout.BlueprintsDir,
		BlueprintName:  c.Layout.BlueprintName,
		HeaderExt:      c.Layout.HeaderExt,
		SourceExt:      c.Layout.SourceExt,
		CacheFileName:  c.Layout.CacheFile,
		IncludePattern: c.Layout.IncludePattern,
		SourcePattern:  c.Layout.SourcePattern,
		Ignore:         c.Layout.Ignore,
	}
}
