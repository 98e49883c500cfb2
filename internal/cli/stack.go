package cli

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/jlesster/status-bar/internal/colormap"
	"github.com/jlesster/status-bar/internal/config"
	"github.com/jlesster/status-bar/internal/producer"
	"github.com/jlesster/status-bar/internal/screen"
	"github.com/jlesster/status-bar/internal/wm"
)

// newRegistry creates the producer registry for cfg. Standard input feeds
// the stdin segment unless it is a terminal. Window and workspace segments
// follow Hyprland when it is running. The returned func releases the
// window manager connection.
func newRegistry(ctx context.Context, cfg *config.Config, input io.Reader, logger *slog.Logger) (*producer.Registry, func()) {
	opts := producer.Options{
		Interval: cfg.Interval.Duration,
		Input:    input,
	}
	cleanup := func() {}

	client, err := wm.NewClient(logger)
	switch {
	case err != nil:
		logger.Info("window manager events unavailable", "error", err)
	default:
		if err := client.StartEventListener(); err != nil {
			logger.Warn("cannot listen to window manager events", "error", err)
			break
		}
		// Only a live client goes into the interface; a nil *wm.Client
		// would not compare equal to nil.
		opts.WindowManager = client
		cleanup = client.Close
	}

	return producer.NewRegistry(ctx, opts, logger), cleanup
}

// stdinInput returns standard input when it is piped, nil when it is a
// terminal.
func stdinInput() io.Reader {
	if isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		return nil
	}
	return os.Stdin
}

// enumerator returns the screen source named in cfg.
func enumerator(cfg *config.Config) screen.Enumerator {
	switch cfg.ScreenSource {
	case config.SourceWayland:
		return screen.Wayland{}
	case config.SourceStatic:
		return cfg.StaticScreens()
	}
	return screen.Xrandr{}
}

// colorOr parses hex, falling back to def for an empty or bad value.
func colorOr(hex string, def colormap.Color) colormap.Color {
	if c, err := colormap.ParseHex(hex); err == nil {
		return c
	}
	return def
}
