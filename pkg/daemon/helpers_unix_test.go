//go:build linux || darwin

package daemon

import (
	"os"
	"strings"
	"testing"
	"time"

	"golang.org/x/sys/unix"

	"github.com/inercia/iexec/pkg/common"
)

var testLogger, _ = common.NewLogger("", "", common.LogLevelNone, false)

// openSlot opens path on a descriptor numbered 100 or above, standing in for
// one of the standard streams.
func openSlot(t *testing.T, path string, flags int) int {
	t.Helper()
	fd, err := unix.Open(path, flags|unix.O_CLOEXEC, 0o644)
	if err != nil {
		t.Fatalf("failed to open %s: %v", path, err)
	}
	slot, err := unix.FcntlInt(uintptr(fd), unix.F_DUPFD_CLOEXEC, 100)
	if err != nil {
		t.Fatalf("failed to move %s to a spare descriptor: %v", path, err)
	}
	_ = unix.Close(fd)
	t.Cleanup(func() { _ = unix.Close(slot) })
	return slot
}

// spareSlots returns three descriptors open on the null device.
func spareSlots(t *testing.T) Slots {
	t.Helper()
	return Slots{
		openSlot(t, os.DevNull, unix.O_RDONLY),
		openSlot(t, os.DevNull, unix.O_WRONLY),
		openSlot(t, os.DevNull, unix.O_WRONLY),
	}
}

func writeSlot(t *testing.T, fd int, text string) {
	t.Helper()
	if err := writeAll(fd, []byte(text)); err != nil {
		t.Fatalf("failed to write to descriptor %d: %v", fd, err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

// waitForContent polls path until it holds want, for processes we do not
// wait on.
func waitForContent(t *testing.T, path, want string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	var got string
	for time.Now().Before(deadline) {
		data, err := os.ReadFile(path)
		got = string(data)
		if err == nil && got == want {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("%s holds %q, want %q", path, got, want)
}

func containsAll(s string, parts ...string) bool {
	for _, p := range parts {
		if !strings.Contains(s, p) {
			return false
		}
	}
	return true
}

func readSlot(fd int, buf []byte) (int, error) {
	return unix.Read(fd, buf)
}
