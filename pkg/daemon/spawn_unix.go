//go:build linux || darwin

package daemon

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/inercia/iexec/pkg/common"
	"github.com/inercia/iexec/pkg/config"
)

// Spawner starts the target program as a session leader.
//
// Go cannot fork without exec, so the session is created by the runtime in
// the child between fork and exec. A failure in either step comes back to
// the parent as the error of Start: the child never ran the program.
type Spawner struct {
	Slots  Slots
	Umask  int
	Args   []string
	Env    []string
	logger *common.Logger
}

// NewSpawner creates a Spawner for cfg.
func NewSpawner(cfg config.Config, slots Slots, logger *common.Logger) *Spawner {
	if logger == nil {
		logger = common.GetLogger()
	}
	return &Spawner{
		Slots:  slots,
		Umask:  cfg.Umask,
		Args:   cfg.Args,
		Env:    cfg.Env,
		logger: logger,
	}
}

// Start launches the program and returns its process. The umask is in
// effect only for the duration of the fork.
func (s *Spawner) Start() (*os.Process, error) {
	if len(s.Args) == 0 {
		return nil, config.ErrNoProgram
	}
	program := s.Args[0]

	path, err := common.FindExecutable(program)
	if err != nil {
		return nil, fmt.Errorf("cannot execute %s: %w", program, cause(err))
	}

	files, release := s.stdio()
	defer release()

	attr := &os.ProcAttr{
		Env:   s.Env,
		Files: files,
		Sys:   &syscall.SysProcAttr{Setsid: true},
	}

	if s.Umask != config.NoUmask {
		old := unix.Umask(s.Umask)
		defer unix.Umask(old)
	}

	s.logger.Debug("Starting %s as %s in a new session", program, path)
	proc, err := os.StartProcess(path, s.Args, attr)
	if err != nil {
		return nil, fmt.Errorf("cannot execute %s: %w", program, cause(err))
	}
	return proc, nil
}

// stdio returns the files the child receives as 0, 1 and 2. A closed slot
// is passed as nil, which leaves it closed in the child.
func (s *Spawner) stdio() ([]*os.File, func()) {
	std := [3]*os.File{os.Stdin, os.Stdout, os.Stderr}
	files := make([]*os.File, 3)
	var dups []*os.File

	for i, slot := range s.Slots {
		if _, err := unix.FcntlInt(uintptr(slot), unix.F_GETFD, 0); err != nil {
			continue
		}
		if slot == i {
			files[i] = std[i]
			continue
		}
		// another slot: hand the child a private duplicate
		fd, err := unix.FcntlInt(uintptr(slot), unix.F_DUPFD_CLOEXEC, 3)
		if err != nil {
			continue
		}
		f := os.NewFile(uintptr(fd), "slot"+strconv.Itoa(slot))
		files[i] = f
		dups = append(dups, f)
	}

	return files, func() {
		for _, f := range dups {
			_ = f.Close()
		}
	}
}

// cause strips the wrappers that repeat the program name.
func cause(err error) error {
	var pe *os.PathError
	if errors.As(err, &pe) {
		return pe.Err
	}
	var ee *exec.Error
	if errors.As(err, &ee) {
		return ee.Err
	}
	return err
}

// WritePidFile writes "<pid>\n" to path, creating or truncating it.
func WritePidFile(path string, pid int) error {
	if err := unix.Access(path, unix.W_OK); err != nil && !errors.Is(err, unix.ENOENT) {
		return fmt.Errorf("pid file %s is not writable: %w", path, err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o666)
	if err != nil {
		return fmt.Errorf("unable to write pid file %s: %w", path, err)
	}
	if _, err := fmt.Fprintf(f, "%d\n", pid); err != nil {
		_ = f.Close()
		return fmt.Errorf("unable to write data to pid file %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("unable to close pid file %s: %w", path, err)
	}
	return nil
}

// ReadPidFile reads a pid written by WritePidFile.
func ReadPidFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	if len(data) == 0 || data[len(data)-1] != '\n' {
		return 0, fmt.Errorf("pid file %s is not newline terminated", path)
	}
	pid, err := strconv.Atoi(string(data[:len(data)-1]))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("pid file %s does not hold a pid", path)
	}
	return pid, nil
}
