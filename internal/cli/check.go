package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jlesster/status-bar/internal/bar"
	"github.com/jlesster/status-bar/internal/config"
	"github.com/jlesster/status-bar/internal/producer"
	"github.com/jlesster/status-bar/internal/screen"
)

var (
	checkWidthFlag int
	checkPrintFlag string
)

// checkCmd validates the config and shows the computed layout
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the config and print the layout",
	Long: `Load and validate the configuration, then lay every bar out on the
current screens and print where each segment goes. Nothing is started.

Examples:
  status-bar check
  status-bar check --width 1920
  status-bar check --print yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return checkConfig(cmd.Context(), cmd.OutOrStdout())
	},
}

func init() {
	checkCmd.Flags().IntVar(&checkWidthFlag, "width", 0, "lay out on one screen this many pixels wide")
	checkCmd.Flags().StringVar(&checkPrintFlag, "print", "", "print the effective config as toml or yaml")
}

func checkConfig(ctx context.Context, out io.Writer) error {
	cfg, path, err := loadConfig()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "config ok (%s)\n", describePath(path))

	if checkPrintFlag != "" {
		if err := cfg.Encode(out, config.Format(checkPrintFlag)); err != nil {
			return fmt.Errorf("print config: %w", err)
		}
	}

	var src screen.Enumerator = enumerator(cfg)
	if checkWidthFlag > 0 {
		src = screen.Static{{ID: 0, Width: checkWidthFlag, Height: cfg.Height}}
	}
	screens, err := src.Screens(ctx)
	if err != nil {
		fmt.Fprintf(out, "no screens to lay out on: %v\n", err)
		return nil
	}

	// Planning may need the CPU core count, which starts a sampler.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	reg := producer.NewRegistry(ctx, producer.Options{Interval: cfg.Interval.Duration}, nil)

	for _, s := range screens {
		for i, def := range cfg.Definitions() {
			if !def.AppliesTo(s) {
				continue
			}
			slots, err := bar.Plan(reg, s, def, cfg.Options())
			if err != nil {
				return fmt.Errorf("bar %d: %w", i, err)
			}
			fmt.Fprintf(out, "\nscreen %s, bar %d\n", s, i)
			printSlots(out, slots)
		}
	}
	return nil
}

func printSlots(out io.Writer, slots []bar.Slot) {
	fmt.Fprintf(out, "  %-7s %-11s %6s %6s %5s %5s\n", "REGION", "SEGMENT", "X", "WIDTH", "LEAD", "TRAIL")
	for _, s := range slots {
		fmt.Fprintf(out, "  %-7s %-11s %6d %6d %5d %5d\n",
			s.Region, s.Segment.Kind(), s.X, s.Allocated(), s.Lead, s.Trail)
	}
}
