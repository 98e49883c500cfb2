package screen

import (
	"context"
	"fmt"
	"sort"

	"github.com/rajveermalviya/go-wayland/wayland/client"
)

// modeCurrent flags the active mode in wl_output.mode events.
const modeCurrent = 0x1

// Wayland enumerates wl_output globals of the running compositor.
type Wayland struct {
	// Display is the socket name; empty means $WAYLAND_DISPLAY.
	Display string
}

type outputState struct {
	id            int
	x, y          int
	width, height int
}

func (w Wayland) Screens(ctx context.Context) ([]Screen, error) {
	display, err := client.Connect(w.Display)
	if err != nil {
		return nil, fmt.Errorf("connect to wayland display: %w", err)
	}

	type result struct {
		screens []Screen
		err     error
	}
	done := make(chan result, 1)
	go func() {
		screens, err := enumerateOutputs(display)
		done <- result{screens, err}
	}()

	select {
	case r := <-done:
		display.Context().Close()
		return r.screens, r.err
	case <-ctx.Done():
		// Closing the connection unblocks the pending dispatch.
		display.Context().Close()
		<-done
		return nil, ctx.Err()
	}
}

func enumerateOutputs(display *client.Display) ([]Screen, error) {
	registry, err := display.GetRegistry()
	if err != nil {
		return nil, fmt.Errorf("get registry: %w", err)
	}

	var outputs []*outputState
	var bindErr error
	registry.SetGlobalHandler(func(e client.RegistryGlobalEvent) {
		if e.Interface != "wl_output" {
			return
		}
		st := &outputState{id: len(outputs)}
		outputs = append(outputs, st)

		output := client.NewOutput(display.Context())
		if err := registry.Bind(e.Name, e.Interface, e.Version, output); err != nil {
			bindErr = fmt.Errorf("bind wl_output %d: %w", e.Name, err)
			return
		}
		output.SetGeometryHandler(func(g client.OutputGeometryEvent) {
			st.x, st.y = int(g.X), int(g.Y)
		})
		output.SetModeHandler(func(m client.OutputModeEvent) {
			if m.Flags&modeCurrent != 0 {
				st.width, st.height = int(m.Width), int(m.Height)
			}
		})
	})

	// The first roundtrip delivers the globals, the second the events of
	// the outputs bound while handling them.
	for i := 0; i < 2; i++ {
		if err := roundtrip(display); err != nil {
			return nil, err
		}
	}
	if bindErr != nil {
		return nil, bindErr
	}

	screens := make([]Screen, 0, len(outputs))
	for _, o := range outputs {
		if o.width == 0 {
			continue
		}
		screens = append(screens, Screen{ID: o.id, X: o.x, Y: o.y, Width: o.width, Height: o.height})
	}
	sort.Slice(screens, func(i, j int) bool { return screens[i].X < screens[j].X })
	if len(screens) == 0 {
		return nil, fmt.Errorf("compositor advertised no usable outputs")
	}
	return screens, nil
}

func roundtrip(display *client.Display) error {
	callback, err := display.Sync()
	if err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	defer callback.Destroy()

	done := false
	callback.SetDoneHandler(func(client.CallbackDoneEvent) { done = true })
	for !done {
		if err := display.Context().Dispatch(); err != nil {
			return fmt.Errorf("dispatch: %w", err)
		}
	}
	return nil
}
