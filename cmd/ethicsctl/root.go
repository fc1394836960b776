package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/tjfontaine/ethics-pipeline/internal/logging"
	"github.com/tjfontaine/ethics-pipeline/internal/pkg/config"
	"github.com/tjfontaine/ethics-pipeline/internal/runtime"
)

// version is set at build time via -ldflags.
var version = "dev"

// rootOptions are the flags shared by every command.
type rootOptions struct {
	configPath string
	envFile    string
	logLevel   string
	logFormat  string

	pluginsFile    string
	pluginsFromEnv bool

	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "ethicsctl",
		Short: "Evaluate actions through a pluggable ethics pipeline",
		Long: "ethicsctl loads a pipeline of evaluation plugins from configuration\n" +
			"and runs proposed actions through it, printing the aggregated result.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.setup(cmd)
		},
	}

	f := cmd.PersistentFlags()
	f.StringVarP(&opts.configPath, "config", "c", "ethics.yaml", "Pipeline configuration file")
	f.StringVar(&opts.envFile, "env-file", ".env", "Environment file loaded before configuration")
	f.StringVar(&opts.logLevel, "log-level", "", "Log level override (debug, info, warn, error)")
	f.StringVar(&opts.logFormat, "log-format", "", "Log format override (text, json)")
	f.StringVar(&opts.pluginsFile, "plugins", "", "Load pipeline.plugins from this file instead of --config")
	f.BoolVar(&opts.pluginsFromEnv, "plugins-from-env", false, "Load the plugin list from ETHICS_PLUGINS")
	cmd.MarkFlagsMutuallyExclusive("plugins", "plugins-from-env")

	cmd.AddCommand(
		newRunCmd(opts),
		newStreamCmd(opts),
		newPluginsCmd(opts),
		newValidateCmd(opts),
		newImportCmd(opts),
	)
	return cmd
}

// setup loads the env file and builds the logger. Logs go to stderr so
// stdout carries only results.
func (o *rootOptions) setup(cmd *cobra.Command) error {
	if err := godotenv.Load(o.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", o.envFile, err)
	}

	level, format := o.logLevel, o.logFormat
	if level == "" || format == "" {
		// Logging settings are best effort; config errors surface in the command.
		if cfg, err := config.Load(o.configPath); err == nil {
			if level == "" {
				level = cfg.Logging.Level
			}
			if format == "" {
				format = cfg.Logging.Format
			}
		}
	}

	logger, err := logging.New(cmd.ErrOrStderr(), level, format)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	o.logger = logger
	return nil
}

// loadConfig reads and validates the configuration file.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newRuntime creates a runtime over the configuration file. Hot reload is
// only wanted by long-running commands.
func (o *rootOptions) newRuntime(watch bool, extra ...runtime.Option) (*runtime.Runtime, error) {
	opts := []runtime.Option{
		runtime.WithLogger(o.logger),
		runtime.WithFileConfig(o.configPath),
	}
	if !watch {
		opts = append(opts, runtime.WithoutWatch())
	}
	switch {
	case o.pluginsFile != "":
		opts = append(opts, runtime.WithPluginsFile(o.pluginsFile))
	case o.pluginsFromEnv:
		opts = append(opts, runtime.WithEnvPlugins())
	}
	return runtime.New(append(opts, extra...)...)
}
