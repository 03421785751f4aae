//go:build !linux && !darwin

package daemon

import (
	"fmt"
	"os"
)

// Diagnostics has no preserved channel on this platform.
type Diagnostics struct{}

// Run always fails: the platform has no sessions to detach into.
func (d *Daemonizer) Run() (int, error) {
	return 0, &FatalError{Stage: StageSpawn, Err: ErrUnsupported}
}

// Report writes err on stderr.
func (d *Daemonizer) Report(err error) bool {
	if err == nil {
		return true
	}
	_, werr := fmt.Fprintf(os.Stderr, "iexec: %v\n", err)
	return werr == nil
}

// Close is a no-op.
func (d *Daemonizer) Close() error {
	return nil
}
