//go:build linux || darwin

package daemon

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// Redirector installs files on the three standard stream slots.
//
// Files are opened with raw system calls rather than os.OpenFile so the Go
// runtime never registers them with its poller or attaches finalizers.
type Redirector struct {
	Slots  Slots
	Stdin  string
	Stdout string
	Stderr string
}

// SameFile reports whether the stdout and stderr targets are one file.
// The stdout target is created first if missing.
func (r *Redirector) SameFile() (bool, error) {
	var outStat, errStat unix.Stat_t

	err := unix.Stat(r.Stdout, &outStat)
	if errors.Is(err, unix.ENOENT) {
		fd, cerr := unix.Open(r.Stdout, unix.O_WRONLY|unix.O_CREAT|unix.O_CLOEXEC, 0o666)
		if cerr != nil {
			return false, fmt.Errorf("unable to create %s: %w", r.Stdout, cerr)
		}
		_ = unix.Close(fd)
		err = unix.Stat(r.Stdout, &outStat)
	}
	if err != nil {
		return false, fmt.Errorf("unable to stat %s: %w", r.Stdout, err)
	}

	if err := unix.Stat(r.Stderr, &errStat); err != nil {
		if errors.Is(err, unix.ENOENT) {
			return false, nil
		}
		return false, fmt.Errorf("unable to stat %s: %w", r.Stderr, err)
	}

	return outStat.Dev == errStat.Dev && outStat.Ino == errStat.Ino, nil
}

// Redirect closes the three slots and reopens them on the configured files.
// When stdout and stderr are the same file it is truncated exactly once and
// both descriptors append to it. Devices such as /dev/null are never
// truncated.
func (r *Redirector) Redirect() error {
	names := [3]string{"stdin", "stdout", "stderr"}
	for i, slot := range r.Slots {
		if err := unix.Close(slot); err != nil {
			return fmt.Errorf("unable to close %s: %w", names[i], err)
		}
	}

	if err := r.install(r.Slots[0], r.Stdin, unix.O_RDONLY); err != nil {
		return fmt.Errorf("failed to redirect standard input: %w", err)
	}

	shared, err := r.SameFile()
	if err != nil {
		return fmt.Errorf("failed to redirect standard output: %w", err)
	}

	if shared {
		if err := r.install(r.Slots[1], r.Stdout, unix.O_WRONLY|unix.O_APPEND); err != nil {
			return fmt.Errorf("failed to redirect standard output: %w", err)
		}
		if err := truncateRegular(r.Slots[1]); err != nil {
			return fmt.Errorf("failed to truncate %s: %w", r.Stdout, err)
		}
		if err := r.install(r.Slots[2], r.Stderr, unix.O_WRONLY|unix.O_APPEND); err != nil {
			return fmt.Errorf("failed to redirect standard error: %w", err)
		}
		return nil
	}

	if err := r.install(r.Slots[1], r.Stdout, unix.O_WRONLY|unix.O_CREAT|unix.O_TRUNC); err != nil {
		return fmt.Errorf("failed to redirect standard output: %w", err)
	}
	if err := r.install(r.Slots[2], r.Stderr, unix.O_WRONLY|unix.O_CREAT|unix.O_TRUNC); err != nil {
		return fmt.Errorf("failed to redirect standard error: %w", err)
	}
	return nil
}

// install opens path and moves the descriptor onto slot.
func (r *Redirector) install(slot int, path string, flags int) error {
	fd, err := unix.Open(path, flags, 0o666)
	if err != nil {
		return fmt.Errorf("unable to open %s: %w", path, err)
	}
	if fd == slot {
		return nil
	}
	if err := dup2(fd, slot); err != nil {
		_ = unix.Close(fd)
		return fmt.Errorf("unable to install %s on descriptor %d: %w", path, slot, err)
	}
	return unix.Close(fd)
}

// truncateRegular empties fd when it refers to a regular file.
func truncateRegular(fd int) error {
	var st unix.Stat_t
	if err := unix.Fstat(fd, &st); err != nil {
		return err
	}
	if st.Mode&unix.S_IFMT != unix.S_IFREG {
		return nil
	}
	return unix.Ftruncate(fd, 0)
}
