package config

import (
	"fmt"

	"github.com/google/shlex"
)

// SplitCommand splits a shell-like command line into argv. Quotes and
// backslash escapes are honoured; no expansion is performed.
func SplitCommand(command string) ([]string, error) {
	args, err := shlex.Split(command)
	if err != nil {
		return nil, fmt.Errorf("failed to parse command %q: %w", command, err)
	}
	return args, nil
}
