// Package root contains the command-line interface implementation for iexec.
//
// It defines the root command using Cobra, turns flags and launch profiles
// into a config.Config and hands it to the daemon package.
package root

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/inercia/iexec/pkg/common"
	"github.com/inercia/iexec/pkg/daemon"
)

// ApplicationName is the name of the application used in various places
const ApplicationName = "iexec"

// Application version (can be overridden at build time)
var version = "1.1"

// launchOptions holds the command line flags of one invocation.
type launchOptions struct {
	keepOpen   bool
	closeFDs   []int
	pidFile    string
	stdin      string
	stdout     string
	stderr     string
	umask      umaskFlag
	workingDir string
	user       string
	limits     []*limitFlag

	configFile string
	envFiles   []string
	dryRun     bool
	showEnv    bool

	logFile  string
	logLevel string
}

// rootCmd represents the iexec command
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	return newLaunchCommand(&launchOptions{})
}

// newLaunchCommand creates the iexec command storing its flags in opts.
func newLaunchCommand(opts *launchOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   ApplicationName + " [flags] program [args...]",
		Short: "Run a program as a daemon",
		Long: `iexec starts a program as a daemon: the program runs in a new session,
with its standard streams redirected (to the null device by default), an
optional working directory, user, umask, descriptors to close and resource
limits. iexec exits as soon as the program is started, optionally leaving its
pid in a file.

Flag parsing stops at the program name, so the program's own flags are passed
through untouched.`,
		Example: `  iexec --pid /run/web.pid -o /var/log/web.log -e /var/log/web.log -- web --port 8080
  iexec -u nobody -w /srv --rlimit-nofile-soft 4096 sleep 600
  iexec --config nginx --dry-run`,
		Version:       version,
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLaunch(cmd, opts, args)
		},
	}

	cmd.SetVersionTemplate("{{.Version}}\n")
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return fmt.Errorf("%w\nUsage: %s\nRun '%s --help' for more information", err, c.UseLine(), ApplicationName)
	})

	flags := cmd.Flags()
	flags.SetInterspersed(false)

	flags.BoolVarP(&opts.keepOpen, "keep-open", "k", false, "Keep stdin, stdout and stderr open instead of redirecting them")
	flags.IntSliceVarP(&opts.closeFDs, "close", "c", nil, "Close this file descriptor before starting the program (repeatable)")
	flags.StringVarP(&opts.pidFile, "pid", "p", "", "Write the pid of the program to this file")
	flags.StringVarP(&opts.stdin, "stdin", "i", os.DevNull, "Read standard input from this file")
	flags.StringVarP(&opts.stdout, "stdout", "o", os.DevNull, "Write standard output to this file")
	flags.StringVarP(&opts.stderr, "stderr", "e", os.DevNull, "Write standard error to this file")
	flags.Var(&opts.umask, "umask", "Set the umask of the program (octal)")
	flags.StringVarP(&opts.workingDir, "working-dir", "w", "", "Change to this directory before starting the program")
	flags.StringVarP(&opts.user, "user", "u", "", "Run the program as this user")
	opts.limits = registerLimitFlags(cmd)

	flags.StringVar(&opts.configFile, "config", "", "Launch profile: a YAML file, a URL or a profile name")
	flags.StringArrayVar(&opts.envFiles, "env-file", nil, "Load environment variables for the program from a dotenv file (repeatable)")
	flags.BoolVar(&opts.dryRun, "dry-run", false, "Print the resolved configuration and exit without starting anything")
	flags.BoolVar(&opts.showEnv, "show-env", false, "Include the environment in the --dry-run output")

	flags.StringVar(&opts.logFile, "logfile", "", "Path to the log file (optional)")
	flags.StringVar(&opts.logLevel, "log-level", "none", "Log level: none, error, info, debug")

	return cmd
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	rootCmd.SetArgs(os.Args[1:])
	if err := rootCmd.Execute(); err != nil {
		common.GetLogger().Error("Command execution failed: %v", err)
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

// printError writes an error with the iexec prefix. Errors from the daemon
// sequence are reported by the daemon package itself.
func printError(w io.Writer, err error) {
	var fe *daemon.FatalError
	if errors.As(err, &fe) {
		return
	}
	prefix := color.New(color.FgRed, color.Bold).Sprint(ApplicationName + ":")
	fmt.Fprintf(w, "%s %v\n", prefix, err)
}
