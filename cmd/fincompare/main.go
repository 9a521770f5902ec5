// Command fincompare prints and exports the comparison dashboard from the
// terminal, using the same data source and configuration as the server.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"findash/internal/app"
	"findash/internal/config"
	"findash/internal/infrastructure"
)

const (
	outputText = "text"
	outputJSON = "json"
)

// cli holds the flags and the components built for one invocation.
type cli struct {
	cfgFile string
	envFile string
	baseDir string
	output  string
	verbose bool

	cfg        *config.Config
	paths      *config.Paths
	logger     *slog.Logger
	components *app.Components
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:   "fincompare",
		Short: "Compare retail company financials from the terminal",
		Long: `fincompare loads the financial workbook (or Google Sheet) configured for
the dashboard server and prints the comparison views for a category,
a set of companies and a reference year, or exports them as files.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "version" || cmd.Name() == "__complete" {
				return nil
			}
			return c.setup(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&c.cfgFile, "config", "", "config file (default: ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&c.envFile, "env-file", ".env", "dotenv file loaded before configuration")
	rootCmd.PersistentFlags().StringVar(&c.baseDir, "base-dir", "", "directory holding data/, logs/ and exports/")
	rootCmd.PersistentFlags().StringVarP(&c.output, "output", "o", outputText, "output format (text|json)")
	rootCmd.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "log debug output to stderr")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{outputText, outputJSON}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newMetaCmd(c))
	rootCmd.AddCommand(newViewsCmd(c))
	rootCmd.AddCommand(newExportCmd(c))
	rootCmd.AddCommand(newExportsCmd(c))

	return rootCmd
}

// setup loads the environment and configuration and builds the service
// graph. Nothing is loaded from the data source until a command asks.
func (c *cli) setup(cmd *cobra.Command) error {
	if c.output != outputText && c.output != outputJSON {
		return fmt.Errorf("unknown output format %q", c.output)
	}

	if c.envFile != "" {
		if err := godotenv.Load(c.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to read env file: %w", err)
		}
	}
	if c.cfgFile != "" {
		if err := os.Setenv(config.EnvPrefix+"_CONFIG_FILE", c.cfgFile); err != nil {
			return err
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if c.baseDir != "" {
		cfg.Paths.BaseDir = c.baseDir
	}

	paths, err := cfg.ResolvePaths()
	if err != nil {
		return fmt.Errorf("failed to resolve paths: %w", err)
	}

	logCfg := cfg.Logging
	logCfg.Format = "text"
	logCfg.Level = "warn"
	if c.verbose {
		logCfg.Level = "debug"
	}
	logger := infrastructure.NewLogger(logCfg, cmd.ErrOrStderr())

	components, err := app.BuildComponents(cmd.Context(), cfg, paths, logger, nil)
	if err != nil {
		return err
	}

	c.cfg, c.paths, c.logger, c.components = cfg, paths, logger, components
	return nil
}
