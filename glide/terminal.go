package glide

import (
	"sync"

	"golang.org/x/term"
)

// RawMode is a scoped acquisition of a terminal's raw mode. Restore is
// safe to call from a defer and from signal handlers at the same time;
// the terminal is put back exactly once on whichever exit path runs
// first.
type RawMode struct {
	fd    int
	state *term.State
	once  sync.Once
}

// MakeRaw switches the terminal on fd into raw mode and returns a guard
// that restores it.
func MakeRaw(fd int) (*RawMode, error) {
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}
	return &RawMode{fd: fd, state: state}, nil
}

// Restore puts the terminal back into its original mode. Subsequent calls
// are no-ops.
func (r *RawMode) Restore() error {
	var err error
	r.once.Do(func() {
		err = term.Restore(r.fd, r.state)
	})
	return err
}

// IsTerminal reports whether fd is attached to a terminal.
func IsTerminal(fd int) bool {
	return term.IsTerminal(fd)
}
