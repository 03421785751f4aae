// Package main provides the entry point for iexec, a launcher that starts
// programs as daemons.
package main

import (
	cmdroot "github.com/inercia/iexec/cmd"
	"github.com/inercia/iexec/pkg/common"
)

// main sets up panic recovery at the top level and executes the root command.
func main() {
	defer common.RecoverPanic(nil)

	cmdroot.Execute()
}
