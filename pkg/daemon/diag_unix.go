//go:build linux || darwin

package daemon

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"golang.org/x/sys/unix"
)

// Diagnostics keeps a way to report errors after stderr is redirected.
//
// The preserved duplicate is close-on-exec, so it never reaches the
// daemon. Reporting restores it onto the stderr slot first; when that fails
// nothing is written at all.
type Diagnostics struct {
	target int
	saved  int
	prefix *color.Color
}

// PassThrough returns Diagnostics that write straight to target.
func PassThrough(target int) *Diagnostics {
	return &Diagnostics{target: target, saved: -1, prefix: newPrefix(target)}
}

// Preserve duplicates target onto a close-on-exec descriptor numbered minFD
// or above.
func Preserve(target, minFD int) (*Diagnostics, error) {
	if minFD < 3 {
		minFD = 3
	}
	saved, err := unix.FcntlInt(uintptr(target), unix.F_DUPFD_CLOEXEC, minFD)
	if err != nil {
		return nil, fmt.Errorf("cannot preserve standard error: %w", err)
	}
	return &Diagnostics{target: target, saved: saved, prefix: newPrefix(target)}, nil
}

func newPrefix(fd int) *color.Color {
	c := color.New(color.FgRed, color.Bold)
	if !color.NoColor && isatty.IsTerminal(uintptr(fd)) {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

// CheckStreamPaths verifies stdin is readable and stdout/stderr writable.
// Paths that do not exist yet pass, since redirection creates them.
func CheckStreamPaths(stdin, stdout, stderr string) error {
	checks := []struct {
		path string
		mode uint32
		what string
	}{
		{stdin, unix.R_OK, "stdin file %s is not readable: %w"},
		{stdout, unix.W_OK, "stdout file %s is not writable: %w"},
		{stderr, unix.W_OK, "stderr file %s is not writable: %w"},
	}
	for _, c := range checks {
		if err := unix.Access(c.path, c.mode); err != nil && !errors.Is(err, unix.ENOENT) {
			return fmt.Errorf(c.what, c.path, err)
		}
	}
	return nil
}

// SavedFD returns the preserved duplicate, or -1 when passing through.
func (d *Diagnostics) SavedFD() int {
	return d.saved
}

// Restore puts the preserved descriptor back on the stderr slot.
func (d *Diagnostics) Restore() error {
	if d.saved < 0 {
		return nil
	}
	return dup2(d.saved, d.target)
}

// Report writes "iexec: <err>" on the restored stderr. It returns false when
// the message could not be written.
func (d *Diagnostics) Report(err error) bool {
	if err == nil {
		return true
	}
	if rerr := d.Restore(); rerr != nil {
		return false
	}
	msg := d.prefix.Sprint("iexec:") + " " + err.Error() + "\n"
	return writeAll(d.target, []byte(msg)) == nil
}

// Writer returns a writer on the preserved channel, for log output that must
// not land in the daemon's stderr.
func (d *Diagnostics) Writer() io.Writer {
	fd := d.target
	if d.saved >= 0 {
		fd = d.saved
	}
	return fdWriter(fd)
}

// Close releases the preserved duplicate.
func (d *Diagnostics) Close() error {
	if d.saved < 0 {
		return nil
	}
	err := unix.Close(d.saved)
	d.saved = -1
	return err
}

type fdWriter int

func (w fdWriter) Write(p []byte) (int, error) {
	if err := writeAll(int(w), p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func writeAll(fd int, p []byte) error {
	for len(p) > 0 {
		n, err := unix.Write(fd, p)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return err
		}
		p = p[n:]
	}
	return nil
}
