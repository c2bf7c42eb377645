// Package cli implements the gworks command line.
package cli

import (
	"github.com/effective-security/gworks/config"
	"github.com/effective-security/gworks/filestore"
	"github.com/effective-security/gworks/tools"
	"github.com/effective-security/gworks/tools/builtin"
	"github.com/effective-security/xlog"
	"github.com/spf13/cobra"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/gworks", "cli")

// NewRootCmd creates the root command with all subcommands.
func NewRootCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gworks",
		Short: "gworks tools CLI",
		Long:  "gworks lists the built-in tools, prints their schema and invokes them locally.",
		// SilenceUsage prevents printing usage on every error
		SilenceUsage:      true,
		PersistentPreRunE: setupLogger,
	}
	cmd.PersistentFlags().String("cfg", "", "Path to configuration file, YAML or JSON")
	cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentFlags().String("locale", "", "Locale of labels: en_US | ja_JP")

	cmd.Version = version
	cmd.SetVersionTemplate("gworks version " + version + "\n")

	cmd.AddCommand(NewToolsCmd())
	cmd.AddCommand(NewInvokeCmd())
	return cmd
}

func setupLogger(cmd *cobra.Command, _ []string) error {
	xlog.SetFormatter(xlog.NewStringFormatter(cmd.ErrOrStderr()))
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		xlog.SetGlobalLogLevel(xlog.DEBUG)
	} else {
		xlog.SetGlobalLogLevel(xlog.WARNING)
	}
	return nil
}

// env is the runtime of a command.
type env struct {
	cfg      *config.Config
	files    filestore.Store
	registry *tools.Registry
}

func loadEnv(cmd *cobra.Command) (*env, error) {
	cfgFile, _ := cmd.Flags().GetString("cfg")
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, exitError(exitValidation, "loading config: %s", err)
	}
	if locale, _ := cmd.Flags().GetString("locale"); locale != "" {
		cfg.Locale = locale
		if err = cfg.Validate(); err != nil {
			return nil, exitError(exitValidation, "%s", err)
		}
	}

	files, err := filestore.New(&cfg.FileStore)
	if err != nil {
		return nil, exitError(exitValidation, "creating file store: %s", err)
	}

	registry, err := builtin.NewRegistry(cfg, files)
	if err != nil {
		return nil, exitError(exitRuntime, "creating tools: %s", err)
	}

	return &env{
		cfg:      cfg,
		files:    files,
		registry: registry,
	}, nil
}
