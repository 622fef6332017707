package registry

import "context"

// ShellOptions describes the shell to start. Dir is already resolved and
// confined by the caller; the registry never starts a shell outside it.
type ShellOptions struct {
	Dir  string
	Env  []string
	Cols int
	Rows int
}

// Shell is the live handle of one interactive shell. Output is closed
// when the shell exits.
type Shell interface {
	Write(p []byte) (int, error)
	Resize(cols, rows int) error
	Output() <-chan []byte
	Close() error
}

// ShellStarter launches shells. The registry owns the returned handle.
type ShellStarter interface {
	Start(ctx context.Context, opts ShellOptions) (Shell, error)
}
