package root

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/inercia/iexec/pkg/common"
	"github.com/inercia/iexec/pkg/config"
	"github.com/inercia/iexec/pkg/daemon"
)

// runLaunch builds the configuration and runs the daemon sequence. Nothing
// in the process changes before the configuration is complete and valid.
func runLaunch(cmd *cobra.Command, opts *launchOptions, args []string) error {
	logger, err := initLogger(opts)
	if err != nil {
		return err
	}

	cfg, err := buildConfig(cmd, opts, args, logger)
	if err != nil {
		return err
	}

	if opts.dryRun {
		return daemon.DryRun(cmd.OutOrStdout(), cfg, nil, opts.showEnv)
	}

	d := daemon.New(cfg, daemon.WithLogger(logger))
	pid, err := d.Run()
	if err != nil {
		logger.Error("Launch of %s failed: %v", cfg.Program(), err)
		d.Report(err)
		return err
	}

	logger.Info("Started %s with pid %d", cfg.Program(), pid)
	return nil
}

// buildConfig merges, in increasing order of precedence, the defaults, the
// launch profile and the command line flags.
func buildConfig(cmd *cobra.Command, opts *launchOptions, args []string, logger *common.Logger) (config.Config, error) {
	b := config.NewBuilder(logger)

	var profile *config.Profile
	if opts.configFile != "" {
		p, err := config.LoadProfile(opts.configFile, logger)
		if err != nil {
			return config.Config{}, err
		}
		profile = p
	}

	argv := args
	if len(argv) == 0 && profile != nil {
		pargv, err := profile.Argv()
		if err != nil {
			return config.Config{}, err
		}
		argv = pargv
	}

	data := config.TemplateData{Args: argv, Env: config.EnvMap(os.Environ())}
	if len(argv) > 0 {
		data.Program = argv[0]
	}

	envFiles := opts.envFiles
	envValues := map[string]string{}
	if profile != nil {
		if err := profile.Apply(b, data); err != nil {
			return config.Config{}, err
		}

		files, err := profile.RenderEnvFiles(data)
		if err != nil {
			return config.Config{}, err
		}
		envFiles = append(files, envFiles...)

		values, err := profile.RenderEnv(data)
		if err != nil {
			return config.Config{}, err
		}
		envValues = values
	}

	fromFiles, err := config.LoadEnvFiles(envFiles...)
	if err != nil {
		return config.Config{}, err
	}
	// explicit profile values win over env files
	for k, v := range envValues {
		fromFiles[k] = v
	}

	applyFlags(cmd, opts, b)

	return b.Args(argv...).Env(config.MergeEnv(os.Environ(), fromFiles)).Build()
}

// applyFlags copies the flags given on the command line into b, so flags
// only override the profile when they were set explicitly.
func applyFlags(cmd *cobra.Command, opts *launchOptions, b *config.Builder) {
	changed := cmd.Flags().Changed

	if changed("keep-open") {
		b.KeepOpen(opts.keepOpen)
	}
	if changed("stdin") {
		b.Stdin(opts.stdin)
	}
	if changed("stdout") {
		b.Stdout(opts.stdout)
	}
	if changed("stderr") {
		b.Stderr(opts.stderr)
	}
	if opts.umask.set {
		b.Umask(opts.umask.value)
	}
	if changed("working-dir") {
		b.WorkingDir(opts.workingDir)
	}
	if changed("user") {
		b.User(opts.user)
	}
	if changed("pid") {
		b.PidFile(opts.pidFile)
	}
	b.Close(opts.closeFDs...)
	applyLimitFlags(b, opts.limits)
}
