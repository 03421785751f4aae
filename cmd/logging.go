package root

import (
	"fmt"

	"github.com/inercia/iexec/pkg/common"
)

// initLogger initializes the global logger from the command line flags.
// The log file is appended to, since several launches may share it.
func initLogger(opts *launchOptions) (*common.Logger, error) {
	level := common.LogLevelFromString(opts.logLevel)
	logger, err := common.NewLogger("["+ApplicationName+"] ", opts.logFile, level, false)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	common.SetLogger(logger)
	return logger, nil
}
