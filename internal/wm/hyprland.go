// Package wm talks to the Hyprland compositor. It is an opaque event source
// for the statusbar: it reports the focused window title and workspaces and
// tells listeners when either may have changed.
package wm

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// ErrNotRunning is returned when no Hyprland instance is reachable.
var ErrNotRunning = fmt.Errorf("not running in hyprland")

// Workspace is the subset of Hyprland's workspace JSON the bar uses.
type Workspace struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Monitor string `json:"monitor"`
	Windows int    `json:"windows"`
}

// Window is the subset of Hyprland's client JSON the bar uses.
type Window struct {
	Address   string `json:"address"`
	Class     string `json:"class"`
	Title     string `json:"title"`
	Workspace struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"workspace"`
}

// State is what the bar displays about the window manager.
type State struct {
	Title      string
	Workspace  int
	Workspaces []int
}

// Client holds the instance signature and the event listener fan-out.
type Client struct {
	dir    string
	logger *slog.Logger

	eventConn net.Conn
	eventMux  sync.RWMutex
	listeners []chan Event
}

// NewClient locates the running Hyprland instance from the environment.
func NewClient(logger *slog.Logger) (*Client, error) {
	signature := os.Getenv("HYPRLAND_INSTANCE_SIGNATURE")
	if signature == "" {
		return nil, ErrNotRunning
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		dir:       socketDir(signature),
		logger:    logger,
		listeners: make([]chan Event, 0),
	}, nil
}

// socketDir prefers $XDG_RUNTIME_DIR/hypr (Hyprland >= 0.40) and falls back
// to the older /tmp/hypr location.
func socketDir(signature string) string {
	if runtime := os.Getenv("XDG_RUNTIME_DIR"); runtime != "" {
		dir := filepath.Join(runtime, "hypr", signature)
		if _, err := os.Stat(dir); err == nil {
			return dir
		}
	}
	return filepath.Join("/tmp/hypr", signature)
}

func (c *Client) sendCommand(command string) ([]byte, error) {
	conn, err := net.Dial("unix", filepath.Join(c.dir, ".socket.sock"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to hyprland: %w", err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte(command)); err != nil {
		return nil, err
	}
	return io.ReadAll(conn)
}

func (c *Client) query(command string, v interface{}) error {
	data, err := c.sendCommand(command)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", command, err)
	}
	return nil
}

// GetActiveWorkspace returns the focused workspace.
func (c *Client) GetActiveWorkspace() (*Workspace, error) {
	var ws Workspace
	if err := c.query("j/activeworkspace", &ws); err != nil {
		return nil, err
	}
	return &ws, nil
}

// GetWorkspaces returns every workspace.
func (c *Client) GetWorkspaces() ([]Workspace, error) {
	var workspaces []Workspace
	if err := c.query("j/workspaces", &workspaces); err != nil {
		return nil, err
	}
	return workspaces, nil
}

// GetActiveWindow returns the focused window.
func (c *Client) GetActiveWindow() (*Window, error) {
	var window Window
	if err := c.query("j/activewindow", &window); err != nil {
		return nil, err
	}
	return &window, nil
}

// State queries the focused window title and workspace list.
func (c *Client) State() (State, error) {
	active, err := c.GetActiveWorkspace()
	if err != nil {
		return State{}, err
	}
	workspaces, err := c.GetWorkspaces()
	if err != nil {
		return State{}, err
	}

	s := State{Workspace: active.ID}
	for _, ws := range workspaces {
		s.Workspaces = append(s.Workspaces, ws.ID)
	}
	sort.Ints(s.Workspaces)

	// An empty workspace has no active window; Hyprland answers "{}".
	if win, err := c.GetActiveWindow(); err == nil {
		s.Title = win.Title
		if s.Title == "" {
			s.Title = win.Class
		}
	}
	return s, nil
}
