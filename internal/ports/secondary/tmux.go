package secondary

// WindowOpener defines the secondary port for opening a worktree in a
// terminal multiplexer window.
type WindowOpener interface {
	// OpenWindow opens a new window named windowName in the given session,
	// starting in dir.
	OpenWindow(sessionName, windowName, dir string) error

	// CurrentSession returns the name of the session the process is
	// attached to, or "" when not inside one.
	CurrentSession() string
}
