package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	sberrors "github.com/jlesster/status-bar/internal/errors"
)

// screensCmd lists the screens of the configured source
var screensCmd = &cobra.Command{
	Use:   "screens",
	Short: "List the screens bars would run on",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		screens, err := enumerator(cfg).Screens(cmd.Context())
		if err != nil {
			return sberrors.WrapWithCode(err, sberrors.ErrScreen,
				"cannot list screens from "+cfg.ScreenSource,
				"Set screen_source to xrandr, wayland or static")
		}
		out := cmd.OutOrStdout()
		for _, s := range screens {
			fmt.Fprintln(out, s)
		}
		return nil
	},
}
