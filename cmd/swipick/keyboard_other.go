//go:build !linux && !darwin

package main

import (
	"os"

	"golang.org/x/term"
)

// listen reads keys line-buffered; terminal modes are left alone here
func (k *keyboard) listen(in *os.File) {
	if !term.IsTerminal(int(in.Fd())) {
		return
	}
	k.readKeys(in)
}
