package rlimit

import (
	"errors"
	"fmt"
	"strings"

	"github.com/inercia/iexec/pkg/common"
)

// ErrUnsupported is returned by systems without resource limit support.
var ErrUnsupported = errors.New("resource limits are not supported on this platform")

// Pair is a committed (soft, hard) limit as the OS sees it.
type Pair struct {
	Soft uint64
	Hard uint64
}

// System reads and writes the limits of the current process.
type System interface {
	Get(resource int) (Pair, error)
	Set(resource int, p Pair) error
	// Infinity is the OS value meaning "no limit"
	Infinity() uint64
}

// ExceedsHardError reports a requested soft limit above the current finite
// hard limit. It is raised before anything is committed for the kind.
type ExceedsHardError struct {
	Kind Kind
	Soft int64
	Hard uint64
}

func (e *ExceedsHardError) Error() string {
	return fmt.Sprintf("specified %s_SOFT=%s exceeds %s_HARD=%d",
		e.Kind.Name, FormatValue(e.Soft), e.Kind.Name, e.Hard)
}

// SetError reports a failed commit, naming each requested half.
type SetError struct {
	Kind    Kind
	Request Request
	Err     error
}

func (e *SetError) Error() string {
	var parts []string
	if e.Request.Soft != Unchanged {
		parts = append(parts, fmt.Sprintf("error setting resource limit %s_SOFT=%s: %v",
			e.Kind.Name, FormatValue(e.Request.Soft), e.Err))
	}
	if e.Request.Hard != Unchanged {
		parts = append(parts, fmt.Sprintf("error setting resource limit %s_HARD=%s: %v",
			e.Kind.Name, FormatValue(e.Request.Hard), e.Err))
	}
	return strings.Join(parts, "; ")
}

func (e *SetError) Unwrap() error {
	return e.Err
}

// Adjuster overlays limit requests on the current limits of the process.
type Adjuster struct {
	sys    System
	kinds  []Kind
	logger *common.Logger
}

// NewAdjuster creates an Adjuster over sys and the platform kind table.
// A nil sys means the real OS.
func NewAdjuster(sys System, logger *common.Logger) *Adjuster {
	if sys == nil {
		sys = OS()
	}
	if logger == nil {
		logger = common.GetLogger()
	}
	return &Adjuster{sys: sys, kinds: Kinds(), logger: logger}
}

// Plan computes the pair that Apply would commit for one kind.
func (a *Adjuster) Plan(k Kind, req Request) (Pair, error) {
	cur, err := a.sys.Get(k.Resource)
	if err != nil {
		return Pair{}, fmt.Errorf("unable to read resource limit %s: %w", k.Name, err)
	}
	inf := a.sys.Infinity()

	next := cur
	if req.Soft > Unchanged {
		soft := a.value(req.Soft)
		if cur.Hard != inf && soft > cur.Hard {
			return Pair{}, &ExceedsHardError{Kind: k, Soft: req.Soft, Hard: cur.Hard}
		}
		next.Soft = soft
	}
	if req.Hard > Unchanged {
		next.Hard = a.value(req.Hard)
	}

	// lowering the hard limit always wins over the soft value
	if next.Hard != inf && next.Soft > next.Hard {
		next.Soft = next.Hard
	}
	return next, nil
}

// Apply commits every request in table order. Kinds without a request are
// neither read nor written. The first failure stops the walk; limits already
// committed stay in place.
func (a *Adjuster) Apply(requests map[Kind]Request) error {
	for k := range requests {
		if !a.known(k) {
			return fmt.Errorf("resource limit %s is not supported on this platform", k.Name)
		}
	}

	for _, k := range a.kinds {
		req, ok := requests[k]
		if !ok || req.IsZero() {
			continue
		}

		next, err := a.Plan(k, req)
		if err != nil {
			return err
		}

		a.logger.Debug("Setting %s soft=%d hard=%d", k.Name, next.Soft, next.Hard)
		if err := a.sys.Set(k.Resource, next); err != nil {
			return &SetError{Kind: k, Request: req, Err: err}
		}
	}
	return nil
}

// Current returns the current pair for k.
func (a *Adjuster) Current(k Kind) (Pair, error) {
	return a.sys.Get(k.Resource)
}

// FormatLimit renders one half of a pair, using "unlimited" for infinity.
func (a *Adjuster) FormatLimit(v uint64) string {
	if v == a.sys.Infinity() {
		return "unlimited"
	}
	return fmt.Sprintf("%d", v)
}

func (a *Adjuster) value(v int64) uint64 {
	if v == Unlimited {
		return a.sys.Infinity()
	}
	return uint64(v)
}

func (a *Adjuster) known(k Kind) bool {
	for _, kk := range a.kinds {
		if kk == k {
			return true
		}
	}
	return false
}
