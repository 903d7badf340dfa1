// Package tmux adapts the gotmux library to the WindowOpener port.
package tmux

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/GianlucaP106/gotmux/gotmux"
)

// Adapter opens worktree windows through a running tmux server.
type Adapter struct {
	tmux *gotmux.Tmux
}

// NewAdapter creates a tmux adapter bound to the default server.
func NewAdapter() (*Adapter, error) {
	client, err := gotmux.DefaultTmux()
	if err != nil {
		return nil, fmt.Errorf("failed to create tmux client: %w", err)
	}
	return &Adapter{tmux: client}, nil
}

// OpenWindow creates a window named windowName in sessionName, starting in
// dir. The session is created when it does not exist yet.
func (a *Adapter) OpenWindow(sessionName, windowName, dir string) error {
	session, err := a.findSession(sessionName)
	if err != nil {
		return err
	}

	if session == nil {
		session, err = a.tmux.NewSession(&gotmux.SessionOptions{
			Name:           sessionName,
			StartDirectory: dir,
		})
		if err != nil {
			return fmt.Errorf("failed to create session %s: %w", sessionName, err)
		}
		// The fresh session already carries one window; rename it instead
		// of adding a second.
		windows, err := session.ListWindows()
		if err != nil {
			return fmt.Errorf("failed to list windows: %w", err)
		}
		if len(windows) > 0 {
			return windows[0].Rename(windowName)
		}
	}

	_, err = session.NewWindow(&gotmux.NewWindowOptions{
		WindowName:     windowName,
		StartDirectory: dir,
		DoNotAttach:    true,
	})
	if err != nil {
		return fmt.Errorf("failed to create window %s: %w", windowName, err)
	}
	return nil
}

// CurrentSession returns the attached session name, or "" outside tmux.
func (a *Adapter) CurrentSession() string {
	if os.Getenv("TMUX") == "" {
		return ""
	}
	out, err := exec.Command("tmux", "display-message", "-p", "#S").Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

func (a *Adapter) findSession(name string) (*gotmux.Session, error) {
	sessions, err := a.tmux.ListSessions()
	if err != nil {
		// A missing server lists as an error; treat it as no sessions.
		if strings.Contains(err.Error(), "no server running") {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	for _, s := range sessions {
		if s.Name == name {
			return s, nil
		}
	}
	return nil, nil
}
