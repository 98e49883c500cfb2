// Package cli implements the status-bar command line.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jlesster/status-bar/internal/config"
)

// Global flags
var (
	configFlag   string
	logLevelFlag string
	logFileFlag  string
)

var rootCmd = &cobra.Command{
	Use:   "status-bar",
	Short: "A dzen2 statusbar for system metrics",
	Long: `status-bar draws gauges and text for CPU, memory, network, battery,
temperature, the clock and more, one dzen2 window per segment, on every
screen. Bars are rebuilt whenever the screen configuration changes.

The config file is looked up in $XDG_CONFIG_HOME/status-bar/config.toml and
~/.config/status-bar/config.toml unless --config is given. YAML files
(.yaml, .yml) are accepted too.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "config file (TOML or YAML)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "log level: debug, info, warn, error (overrides log_level)")
	rootCmd.PersistentFlags().StringVar(&logFileFlag, "log-file", "", "append logs to this file instead of stderr")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(screensCmd)
	rootCmd.AddCommand(checkCmd)
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads and validates the configuration, applying flag
// overrides. The path is empty when the defaults are used.
func loadConfig() (*config.Config, string, error) {
	cfg, path, err := config.Load(configFlag)
	if err != nil {
		return nil, "", err
	}
	if logLevelFlag != "" {
		cfg.LogLevel = logLevelFlag
	}
	if err := cfg.Validate(); err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// newLogger builds the text logger for cfg. Logs go to --log-file when set
// and to fallback otherwise. The returned func closes the log file.
func newLogger(cfg *config.Config, fallback io.Writer) (*slog.Logger, func(), error) {
	level, err := cfg.Level()
	if err != nil {
		return nil, nil, err
	}

	out, closeFn := fallback, func() {}
	if logFileFlag != "" {
		f, err := os.OpenFile(logFileFlag, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		out, closeFn = f, func() { f.Close() }
	}
	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})), closeFn, nil
}

func describePath(path string) string {
	if path == "" {
		return "built-in defaults"
	}
	return path
}
