//go:build linux || darwin

package daemon

import (
	"github.com/inercia/iexec/pkg/rlimit"
)

// Run executes the whole sequence and returns the pid of the daemon.
//
// On success the process handle has been released: the launcher does not
// wait for the daemon and should exit. On failure the error is a
// *FatalError; report it with Report before exiting.
func (d *Daemonizer) Run() (int, error) {
	cfg := d.cfg
	d.diag = PassThrough(d.slots[2])

	if len(cfg.Limits) > 0 {
		d.logger.Debug("Applying %d resource limit requests", len(cfg.Limits))
		adj := rlimit.NewAdjuster(d.limitSys, d.logger)
		if err := adj.Apply(cfg.Limits); err != nil {
			return 0, &FatalError{Stage: StageLimits, Err: err}
		}
	}

	if cfg.User != "" {
		d.logger.Debug("Switching to user %s", cfg.User)
		id, err := LookupIdentity(cfg.User)
		if err != nil {
			return 0, &FatalError{Stage: StageIdentity, Err: err}
		}
		if err := SwitchUser(id); err != nil {
			return 0, &FatalError{Stage: StageIdentity, Err: err}
		}
	}

	if cfg.WorkingDir != "" {
		d.logger.Debug("Changing directory to %s", cfg.WorkingDir)
		if err := ChangeDir(cfg.WorkingDir); err != nil {
			return 0, &FatalError{Stage: StageIdentity, Err: err}
		}
	}

	if !cfg.KeepOpen {
		if err := CheckStreamPaths(cfg.Stdin, cfg.Stdout, cfg.Stderr); err != nil {
			return 0, &FatalError{Stage: StagePreserve, Err: err}
		}
		diag, err := Preserve(d.slots[2], d.minSavedFD())
		if err != nil {
			return 0, &FatalError{Stage: StagePreserve, Err: err}
		}
		d.diag = diag
		d.logger.Redirect(diag.Writer())
		d.logger.Debug("Standard error preserved on descriptor %d", diag.SavedFD())
	}

	if len(cfg.CloseFDs) > 0 {
		d.logger.Debug("Closing descriptors %v", cfg.CloseFDs)
		if err := CloseDescriptors(cfg.CloseFDs); err != nil {
			return 0, &FatalError{Stage: StageClose, Err: err}
		}
	}

	if !cfg.KeepOpen {
		d.logger.Debug("Redirecting streams to %s, %s, %s", cfg.Stdin, cfg.Stdout, cfg.Stderr)
		r := &Redirector{Slots: d.slots, Stdin: cfg.Stdin, Stdout: cfg.Stdout, Stderr: cfg.Stderr}
		if err := r.Redirect(); err != nil {
			return 0, &FatalError{Stage: StageStreams, Err: err}
		}
	}

	proc, err := NewSpawner(cfg, d.slots, d.logger).Start()
	if err != nil {
		return 0, &FatalError{Stage: StageSpawn, Err: err}
	}
	pid := proc.Pid
	d.logger.Debug("Daemon started with pid %d", pid)

	if cfg.PidFile != "" {
		if err := WritePidFile(cfg.PidFile, pid); err != nil {
			_ = proc.Release()
			return 0, &FatalError{Stage: StagePidFile, Err: err}
		}
		d.logger.Debug("Pid %d written to %s", pid, cfg.PidFile)
	}

	if err := proc.Release(); err != nil {
		d.logger.Debug("Failed to release process %d: %v", pid, err)
	}
	return pid, nil
}

// minSavedFD keeps the preserved stderr clear of every descriptor the
// configuration asks to close.
func (d *Daemonizer) minSavedFD() int {
	lowest := 3
	for _, fd := range d.cfg.CloseFDs {
		if fd >= lowest {
			lowest = fd + 1
		}
	}
	for _, slot := range d.slots {
		if slot >= lowest {
			lowest = slot + 1
		}
	}
	return lowest
}

// Report writes err to the diagnostic channel, restoring stderr first when
// it was redirected. It returns false when nothing could be written.
func (d *Daemonizer) Report(err error) bool {
	if d.diag == nil {
		d.diag = PassThrough(d.slots[2])
	}
	return d.diag.Report(err)
}

// Close releases the preserved stderr duplicate, if any.
func (d *Daemonizer) Close() error {
	if d.diag == nil {
		return nil
	}
	return d.diag.Close()
}
