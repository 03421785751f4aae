package common

import (
	"fmt"
	"os"
	"runtime/debug"
)

// RecoverPanic recovers from a panic, reports it and exits with a failure
// status. It must be deferred directly.
//
// Parameters:
//   - logger: The logger that also receives the stack trace. When nil, the
//     global logger is used.
//
// The message goes to os.Stderr, which by the time a panic happens may already
// point at the daemon's redirected stderr target.
func RecoverPanic(logger *Logger) {
	r := recover()
	if r == nil {
		return
	}

	stackTrace := debug.Stack()
	if logger == nil {
		logger = GetLogger()
	}
	if logger != nil {
		logger.Error("PANIC RECOVERED: %v", r)
		logger.Error("Stack trace:\n%s", stackTrace)
	}

	fmt.Fprintf(os.Stderr, "iexec: panic: %v\n", r)
	if logger != nil && logger.FilePath() != "" {
		fmt.Fprintf(os.Stderr, "Stack trace has been written to the log file: %s\n", logger.FilePath())
	} else {
		fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", stackTrace)
	}
	os.Exit(1)
}
