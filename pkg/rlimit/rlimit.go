// Package rlimit applies soft and hard resource limits to the current process.
//
// Limit kinds come from a per-OS table; kinds the host does not support are
// simply absent from it. Requests are overlaid on the current values and
// committed with a single set call per kind, so the committed pair is always
// consistent (soft <= hard).
package rlimit

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// Unchanged marks a half of a limit that must not be touched.
	Unchanged int64 = -2
	// Unlimited requests the OS infinity value.
	Unlimited int64 = -1
)

// Kind describes one resource limit known to the host OS.
type Kind struct {
	// Name is the C constant name, e.g. RLIMIT_NOFILE
	Name string
	// Flag is the lowercase short name used on the command line, e.g. nofile
	Flag string
	// Resource is the OS identifier passed to getrlimit/setrlimit
	Resource int
}

func (k Kind) String() string {
	return k.Name
}

// Kinds returns the limit kinds supported on this platform, in table order.
func Kinds() []Kind {
	out := make([]Kind, len(kinds))
	copy(out, kinds)
	return out
}

// Lookup finds a kind by its flag name ("nofile") or constant name
// ("RLIMIT_NOFILE"), case-insensitively.
func Lookup(name string) (Kind, bool) {
	for _, k := range kinds {
		if strings.EqualFold(k.Flag, name) || strings.EqualFold(k.Name, name) {
			return k, true
		}
	}
	return Kind{}, false
}

// Request holds the requested soft and hard values for one kind.
type Request struct {
	Soft int64
	Hard int64
}

// NoChange is a request that leaves both halves alone.
var NoChange = Request{Soft: Unchanged, Hard: Unchanged}

// IsZero reports whether the request leaves the limit untouched.
func (r Request) IsZero() bool {
	return r.Soft <= Unchanged && r.Hard <= Unchanged
}

// ParseValue parses a command line limit value: a non-negative integer,
// "unlimited"/"infinity", or -1.
func ParseValue(s string) (int64, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "unlimited", "infinity":
		return Unlimited, nil
	}
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid limit value %q", s)
	}
	if v < Unlimited {
		return 0, fmt.Errorf("invalid limit value %q: must be >= -1", s)
	}
	return v, nil
}

// FormatValue renders a request value the way ParseValue accepts it.
func FormatValue(v int64) string {
	switch {
	case v == Unlimited:
		return "unlimited"
	case v <= Unchanged:
		return "unchanged"
	default:
		return strconv.FormatInt(v, 10)
	}
}
