package preview

import (
	"github.com/jlesster/status-bar/internal/markup"
	"github.com/jlesster/status-bar/internal/render"
	"github.com/jlesster/status-bar/internal/screen"
)

// DrawMsg carries one draw of one segment target.
type DrawMsg struct {
	ID       int
	Geometry render.Geometry
	Line     markup.Line
}

// CloseMsg removes a target from the preview.
type CloseMsg struct {
	ID int
}

// ScreensMsg reports the screen list the bars are laid out on.
type ScreensMsg struct {
	Screens []screen.Screen
}

// ErrMsg stops the preview with an error.
type ErrMsg struct {
	Err error
}
