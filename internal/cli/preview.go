package cli

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jlesster/status-bar/internal/bar"
	"github.com/jlesster/status-bar/internal/colormap"
	"github.com/jlesster/status-bar/internal/preview"
	"github.com/jlesster/status-bar/internal/screen"
)

var previewWidthFlag int

// previewCmd draws the bars in the terminal
var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Draw the bars in the terminal",
	Long: `Run the bars exactly as "run" does, but draw them in the terminal
instead of dzen2 windows, one character per char_width pixels.

With --width the bars are laid out on a single screen of that many pixels
instead of the configured screen source.

Examples:
  status-bar preview
  status-bar preview --width 1920`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return previewBars(cmd.Context())
	},
}

func init() {
	previewCmd.Flags().IntVar(&previewWidthFlag, "width", 0, "lay out on one screen this many pixels wide")
}

func previewBars(ctx context.Context) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	// The terminal belongs to the preview, so logs are only kept with
	// --log-file.
	logger, closeLog, err := newLogger(cfg, io.Discard)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	input := stdinInput()
	programOpts := []tea.ProgramOption{tea.WithAltScreen()}
	if input != nil {
		programOpts = append(programOpts, tea.WithInputTTY())
	}

	opts := cfg.Options()
	model := preview.NewModel(preview.Options{
		CharWidth:  cfg.CharWidth,
		Foreground: opts.Metrics.Foreground,
		Background: colorOr(cfg.Background, colormap.RGB(0, 0, 0)),
	})
	program := tea.NewProgram(model, programOpts...)
	backend := preview.NewBackend(program)

	var src screen.Enumerator = enumerator(cfg)
	if previewWidthFlag > 0 {
		src = screen.Static{{ID: 0, Width: previewWidthFlag, Height: cfg.Height}}
	}

	reg, closeWM := newRegistry(ctx, cfg, input, logger)
	defer closeWM()
	watcher := screen.NewWatcher(backend.Watch(src), cfg.ScreenPoll.Duration, logger)
	manager := bar.NewManager(reg, backend, cfg.Definitions(), opts, logger)

	done := make(chan error, 1)
	go func() {
		err := manager.Run(ctx, watcher)
		if err != nil {
			program.Send(preview.ErrMsg{Err: err})
		}
		done <- err
	}()

	final, runErr := program.Run()
	cancel()
	managerErr := <-done

	if runErr != nil {
		return runErr
	}
	if m, ok := final.(preview.Model); ok && m.Err() != nil {
		return m.Err()
	}
	return managerErr
}
