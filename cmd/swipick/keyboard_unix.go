//go:build linux || darwin

package main

import (
	"os"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// listen reads single key presses from a terminal. Canonical mode and echo
// are switched off; output processing stays on so log lines still end in \n.
func (k *keyboard) listen(in *os.File) {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return
	}

	oldState, err := unix.IoctlGetTermios(fd, ioctlGetTermios)
	if err != nil {
		return
	}

	newState := *oldState
	newState.Lflag &^= unix.ICANON | unix.ECHO
	newState.Cc[unix.VMIN] = 1
	newState.Cc[unix.VTIME] = 0
	if err := unix.IoctlSetTermios(fd, ioctlSetTermios, &newState); err != nil {
		return
	}
	defer unix.IoctlSetTermios(fd, ioctlSetTermios, oldState)

	k.readKeys(in)
}
