//go:build linux || darwin

package rlimit

import (
	"syscall"

	"golang.org/x/sys/unix"
)

type osSystem struct{}

// OS returns the System backed by getrlimit(2)/setrlimit(2).
func OS() System {
	return osSystem{}
}

func (osSystem) Get(resource int) (Pair, error) {
	var lim unix.Rlimit
	if err := unix.Getrlimit(resource, &lim); err != nil {
		return Pair{}, err
	}
	return Pair{Soft: lim.Cur, Hard: lim.Max}, nil
}

// Set goes through the syscall package so that a committed RLIMIT_NOFILE
// replaces the soft limit the runtime would otherwise restore in children.
func (osSystem) Set(resource int, p Pair) error {
	lim := syscall.Rlimit{Cur: p.Soft, Max: p.Hard}
	return syscall.Setrlimit(resource, &lim)
}

func (osSystem) Infinity() uint64 {
	return infinity
}
