// Package daemon turns the current process into a daemon launcher.
//
// A Daemonizer runs a fixed sequence of stages: resource limits, identity
// (user switch and working directory), the diagnostic-channel preserver,
// descriptor closing, stream redirection and finally the spawn of the target
// program in a new session. Every stage either completes or returns a
// *FatalError; nothing is retried or rolled back.
package daemon

import (
	"errors"

	"github.com/inercia/iexec/pkg/common"
	"github.com/inercia/iexec/pkg/config"
	"github.com/inercia/iexec/pkg/rlimit"
)

// Stage names one step of the daemonization sequence.
type Stage string

const (
	StageLimits   Stage = "limits"
	StageIdentity Stage = "identity"
	StagePreserve Stage = "preserve"
	StageClose    Stage = "close"
	StageStreams  Stage = "streams"
	StageSpawn    Stage = "spawn"
	StagePidFile  Stage = "pidfile"
)

// ErrUnsupported is returned by Run on platforms without sessions and
// POSIX descriptors.
var ErrUnsupported = errors.New("daemonization is not supported on this platform")

// FatalError is a failure that must terminate the launcher.
type FatalError struct {
	Stage Stage
	Err   error
}

func (e *FatalError) Error() string {
	return e.Err.Error()
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// Slots are the descriptor numbers treated as stdin, stdout and stderr.
type Slots [3]int

// StandardSlots are the process' real standard streams.
var StandardSlots = Slots{0, 1, 2}

// Option configures a Daemonizer.
type Option func(*Daemonizer)

// WithLogger sets the logger used for stage traces.
func WithLogger(logger *common.Logger) Option {
	return func(d *Daemonizer) {
		d.logger = logger
	}
}

// WithLimitSystem replaces the OS resource limit interface.
func WithLimitSystem(sys rlimit.System) Option {
	return func(d *Daemonizer) {
		d.limitSys = sys
	}
}

// WithSlots makes the Daemonizer treat other descriptors as its standard
// streams. Used to exercise redirection without touching 0, 1 and 2.
func WithSlots(slots Slots) Option {
	return func(d *Daemonizer) {
		d.slots = slots
	}
}

// Daemonizer runs the daemonization sequence for one Config.
type Daemonizer struct {
	cfg      config.Config
	logger   *common.Logger
	limitSys rlimit.System
	slots    Slots
	diag     *Diagnostics
}

// New creates a Daemonizer for cfg.
func New(cfg config.Config, opts ...Option) *Daemonizer {
	d := &Daemonizer{
		cfg:   cfg,
		slots: StandardSlots,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = common.GetLogger()
	}
	return d
}

// Config returns the configuration being launched.
func (d *Daemonizer) Config() config.Config {
	return d.cfg
}
