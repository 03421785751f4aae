// Package config provides the daemonization configuration model.
//
// A Config is produced once by a Builder, after every input (command line
// flags, launch profile, env files) is known, and is read-only afterwards.
// Launch profiles are YAML documents whose string values may use Go templates
// with the sprig function library.
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/inercia/iexec/pkg/common"
	"github.com/inercia/iexec/pkg/rlimit"
)

// NoUmask marks a Config that inherits the caller's umask.
const NoUmask = -1

// ErrNoProgram is returned by Build when there is nothing to launch.
var ErrNoProgram = errors.New("a program and its arguments are required")

// Config is the validated set of daemonization parameters.
type Config struct {
	// Stdin, Stdout and Stderr are the targets for the standard streams
	Stdin  string
	Stdout string
	Stderr string

	// KeepOpen skips stream redirection: the child inherits the streams as they are
	KeepOpen bool

	// Umask is the mask for the child, or NoUmask
	Umask int

	// WorkingDir is the directory to change into (empty: stay)
	WorkingDir string

	// User is the user name to switch to (empty: keep the current identity)
	User string

	// CloseFDs are descriptors closed in order before stream redirection.
	// Duplicates are each attempted.
	CloseFDs []int

	// PidFile receives the child pid (empty: no pid file)
	PidFile string

	// Limits maps a limit kind to the requested soft/hard values
	Limits map[rlimit.Kind]rlimit.Request

	// Args is the program followed by its arguments
	Args []string

	// Env is the environment of the child, as KEY=value entries
	Env []string
}

// Program returns the program to launch.
func (c Config) Program() string {
	if len(c.Args) == 0 {
		return ""
	}
	return c.Args[0]
}

// HasUmask reports whether a umask was requested.
func (c Config) HasUmask() bool {
	return c.Umask != NoUmask
}

// Builder collects daemonization parameters and validates them in Build.
type Builder struct {
	cfg         Config
	constraints []string
	logger      *common.Logger
}

// NewBuilder returns a Builder holding the defaults: all three streams on
// the null device, inherited umask, no limits.
func NewBuilder(logger *common.Logger) *Builder {
	if logger == nil {
		logger = common.GetLogger()
	}
	return &Builder{
		cfg: Config{
			Stdin:  os.DevNull,
			Stdout: os.DevNull,
			Stderr: os.DevNull,
			Umask:  NoUmask,
			Limits: map[rlimit.Kind]rlimit.Request{},
		},
		logger: logger,
	}
}

// Stdin sets the path standard input is read from.
func (b *Builder) Stdin(path string) *Builder {
	b.cfg.Stdin = path
	return b
}

// Stdout sets the path standard output is written to.
func (b *Builder) Stdout(path string) *Builder {
	b.cfg.Stdout = path
	return b
}

// Stderr sets the path standard error is written to.
func (b *Builder) Stderr(path string) *Builder {
	b.cfg.Stderr = path
	return b
}

// KeepOpen leaves the standard streams untouched.
func (b *Builder) KeepOpen(keep bool) *Builder {
	b.cfg.KeepOpen = keep
	return b
}

// Umask sets the child's umask; NoUmask inherits it.
func (b *Builder) Umask(mask int) *Builder {
	b.cfg.Umask = mask
	return b
}

// WorkingDir sets the directory to change into.
func (b *Builder) WorkingDir(dir string) *Builder {
	b.cfg.WorkingDir = dir
	return b
}

// User sets the user to switch to.
func (b *Builder) User(name string) *Builder {
	b.cfg.User = name
	return b
}

// Close appends descriptors to close, keeping order and duplicates.
func (b *Builder) Close(fds ...int) *Builder {
	b.cfg.CloseFDs = append(b.cfg.CloseFDs, fds...)
	return b
}

// PidFile sets the pid file path.
func (b *Builder) PidFile(path string) *Builder {
	b.cfg.PidFile = path
	return b
}

// SoftLimit requests a soft value for k.
func (b *Builder) SoftLimit(k rlimit.Kind, v int64) *Builder {
	req, ok := b.cfg.Limits[k]
	if !ok {
		req = rlimit.NoChange
	}
	req.Soft = v
	b.cfg.Limits[k] = req
	return b
}

// HardLimit requests a hard value for k.
func (b *Builder) HardLimit(k rlimit.Kind, v int64) *Builder {
	req, ok := b.cfg.Limits[k]
	if !ok {
		req = rlimit.NoChange
	}
	req.Hard = v
	b.cfg.Limits[k] = req
	return b
}

// Args sets the program and its arguments.
func (b *Builder) Args(args ...string) *Builder {
	b.cfg.Args = append([]string(nil), args...)
	return b
}

// Env sets the child environment.
func (b *Builder) Env(env []string) *Builder {
	b.cfg.Env = append([]string(nil), env...)
	return b
}

// Constraints adds CEL expressions that must all hold for Build to succeed.
func (b *Builder) Constraints(exprs ...string) *Builder {
	b.constraints = append(b.constraints, exprs...)
	return b
}

// Build validates the collected parameters and returns an independent Config.
func (b *Builder) Build() (Config, error) {
	cfg := b.cfg

	if len(cfg.Args) == 0 || cfg.Args[0] == "" {
		return Config{}, ErrNoProgram
	}

	for _, fd := range cfg.CloseFDs {
		if fd < 0 {
			return Config{}, fmt.Errorf("invalid file descriptor to close: %d", fd)
		}
	}

	if cfg.Umask != NoUmask && (cfg.Umask < 0 || cfg.Umask > 0777) {
		return Config{}, fmt.Errorf("invalid umask %#o", cfg.Umask)
	}

	for k, req := range cfg.Limits {
		if err := validateRequest(k, req); err != nil {
			return Config{}, err
		}
	}

	if !cfg.KeepOpen {
		for name, path := range map[string]string{"stdin": cfg.Stdin, "stdout": cfg.Stdout, "stderr": cfg.Stderr} {
			if path == "" {
				return Config{}, fmt.Errorf("empty path for %s", name)
			}
		}
	}

	if cfg.Env == nil {
		cfg.Env = os.Environ()
	}

	if err := b.checkConstraints(cfg); err != nil {
		return Config{}, err
	}

	// copy everything the caller could still reach through the builder
	cfg.Args = append([]string(nil), cfg.Args...)
	cfg.Env = append([]string(nil), cfg.Env...)
	cfg.CloseFDs = append([]int(nil), cfg.CloseFDs...)
	limits := make(map[rlimit.Kind]rlimit.Request, len(cfg.Limits))
	for k, v := range cfg.Limits {
		if !v.IsZero() {
			limits[k] = v
		}
	}
	cfg.Limits = limits

	b.logger.Debug("Configuration built for %q (%d args, %d limits, %d fds to close)",
		cfg.Program(), len(cfg.Args), len(cfg.Limits), len(cfg.CloseFDs))
	return cfg, nil
}

func validateRequest(k rlimit.Kind, req rlimit.Request) error {
	for half, v := range map[string]int64{"SOFT": req.Soft, "HARD": req.Hard} {
		if v < rlimit.Unchanged {
			return fmt.Errorf("invalid value %d for %s_%s", v, k.Name, half)
		}
	}
	return nil
}

func (b *Builder) checkConstraints(cfg Config) error {
	if len(b.constraints) == 0 {
		return nil
	}

	lc, err := common.NewLaunchConstraints(b.constraints, b.logger)
	if err != nil {
		return err
	}

	failed, err := lc.Evaluate(common.LaunchVars{
		Program:    cfg.Program(),
		Args:       cfg.Args,
		User:       cfg.User,
		WorkingDir: cfg.WorkingDir,
		PidFile:    cfg.PidFile,
		KeepOpen:   cfg.KeepOpen,
		Env:        EnvMap(cfg.Env),
	})
	if err != nil {
		return err
	}
	if len(failed) > 0 {
		return fmt.Errorf("launch refused by constraints: %s", strings.Join(failed, "; "))
	}
	return nil
}

// SortedLimits returns the requested kinds in platform table order.
func (c Config) SortedLimits() []rlimit.Kind {
	order := map[rlimit.Kind]int{}
	for i, k := range rlimit.Kinds() {
		order[k] = i
	}
	out := make([]rlimit.Kind, 0, len(c.Limits))
	for k := range c.Limits {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		return order[out[i]] < order[out[j]]
	})
	return out
}
