package wm

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"path/filepath"
	"strings"
)

// Event is one line from Hyprland's event socket, "type>>data,data".
type Event struct {
	Type string
	Data []string
}

// Event types that change what the bar shows.
const (
	EventWorkspace        = "workspace"
	EventActiveWindow     = "activewindow"
	EventWindowTitle      = "windowtitle"
	EventFocusedMonitor   = "focusedmon"
	EventOpenWindow       = "openwindow"
	EventCloseWindow      = "closewindow"
	EventCreateWorkspace  = "createworkspace"
	EventDestroyWorkspace = "destroyworkspace"
)

// Relevant reports whether ev can change the window title or workspaces.
func Relevant(ev Event) bool {
	switch ev.Type {
	case EventWorkspace, EventActiveWindow, EventWindowTitle, EventFocusedMonitor,
		EventOpenWindow, EventCloseWindow, EventCreateWorkspace, EventDestroyWorkspace:
		return true
	}
	return false
}

// StartEventListener connects to the event socket and fans events out to
// subscribers until the socket closes.
func (c *Client) StartEventListener() error {
	conn, err := net.Dial("unix", filepath.Join(c.dir, ".socket2.sock"))
	if err != nil {
		return fmt.Errorf("failed to connect to event socket: %w", err)
	}
	c.eventConn = conn

	go c.readEvents(conn)
	c.logger.Debug("connected to hyprland event socket")
	return nil
}

func (c *Client) readEvents(r io.ReadCloser) {
	defer c.closeListeners()
	defer r.Close()

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if event, ok := ParseEvent(scanner.Text()); ok {
			c.dispatchEvent(event)
		}
	}

	if err := scanner.Err(); err != nil {
		c.logger.Warn("reading hyprland event socket", "error", err)
	}
}

// ParseEvent splits an event socket line.
func ParseEvent(line string) (Event, bool) {
	parts := strings.SplitN(line, ">>", 2)
	if len(parts) != 2 || parts[0] == "" {
		return Event{}, false
	}
	return Event{Type: parts[0], Data: strings.Split(parts[1], ",")}, true
}

// dispatchEvent never blocks: a listener whose buffer is full misses the
// event, which is fine because listeners re-query the full state.
func (c *Client) dispatchEvent(event Event) {
	c.eventMux.RLock()
	defer c.eventMux.RUnlock()

	for _, listener := range c.listeners {
		select {
		case listener <- event:
		default:
		}
	}
}

// Subscribe registers a listener. The returned function unsubscribes it.
// The channel is closed when the event socket goes away.
func (c *Client) Subscribe() (<-chan Event, func()) {
	c.eventMux.Lock()
	defer c.eventMux.Unlock()

	ch := make(chan Event, 16)
	c.listeners = append(c.listeners, ch)
	return ch, func() { c.unsubscribe(ch) }
}

func (c *Client) unsubscribe(ch chan Event) {
	c.eventMux.Lock()
	defer c.eventMux.Unlock()

	for i, listener := range c.listeners {
		if listener == ch {
			c.listeners = append(c.listeners[:i], c.listeners[i+1:]...)
			close(ch)
			break
		}
	}
}

func (c *Client) closeListeners() {
	c.eventMux.Lock()
	for _, ch := range c.listeners {
		close(ch)
	}
	c.listeners = nil
	c.eventMux.Unlock()
}

// Close disconnects from the event socket and closes every listener.
func (c *Client) Close() {
	if c.eventConn != nil {
		c.eventConn.Close()
	}
}
