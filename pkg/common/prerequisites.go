package common

import (
	"errors"
	"os/exec"
)

// CheckExecutableExists checks if a command is available in the system PATH.
//
// Parameters:
//   - executableName: The name of the executable to check
//
// Returns:
//   - true if the executable exists and is accessible, false otherwise
func CheckExecutableExists(executableName string) bool {
	_, err := FindExecutable(executableName)
	return err == nil
}

// FindExecutable resolves name the way execvp(3) does: names containing a
// slash are used as given, anything else is searched in $PATH. Matches found
// through a relative $PATH entry (such as ".") are accepted.
func FindExecutable(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil && errors.Is(err, exec.ErrDot) {
		return path, nil
	}
	return path, err
}
