package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jlesster/status-bar/internal/bar"
	"github.com/jlesster/status-bar/internal/render"
	"github.com/jlesster/status-bar/internal/screen"
)

// runCmd starts the bars on every screen
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the bars",
	Long: `Start one bar per configured bar and screen, each segment in its own
dzen2 window. Lines piped to standard input are shown by stdin segments.

Examples:
  status-bar run
  conky | status-bar run --config ~/.config/status-bar/conky.toml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBars(cmd.Context())
	},
}

func runBars(ctx context.Context) error {
	cfg, path, err := loadConfig()
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer closeLog()
	logger.Info("config loaded", "from", describePath(path), "bars", len(cfg.Bars))

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg, closeWM := newRegistry(ctx, cfg, stdinInput(), logger)
	defer closeWM()

	fg := cfg.Options().Metrics.Foreground
	backend := &render.Dzen{
		Binary:     cfg.Backend,
		Font:       cfg.Font,
		Background: cfg.Background,
		Foreground: fg.String(),
		Logger:     logger,
	}
	watcher := screen.NewWatcher(enumerator(cfg), cfg.ScreenPoll.Duration, logger)
	manager := bar.NewManager(reg, backend, cfg.Definitions(), cfg.Options(), logger)

	err = manager.Run(ctx, watcher)
	logger.Info("shutting down")
	return err
}
