//go:build linux || darwin

package root

import (
	"fmt"
	"os"
	"strconv"

	"golang.org/x/sys/unix"
)

// coreHardEnv asks the helper to lower its hard core limit before running,
// so a larger soft request has a finite ceiling to exceed.
const coreHardEnv = "IEXEC_TEST_CORE_HARD"

func prepareHelper() error {
	value := os.Getenv(coreHardEnv)
	if value == "" {
		return nil
	}
	hard, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", coreHardEnv, err)
	}
	return unix.Setrlimit(unix.RLIMIT_CORE, &unix.Rlimit{Cur: 0, Max: hard})
}
