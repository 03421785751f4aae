package rlimit

import (
	"errors"
	"strings"
	"testing"
)

const fakeInfinity = ^uint64(0)

// fakeSystem keeps limits in memory and records every call
type fakeSystem struct {
	limits map[int]Pair
	gets   []int
	sets   []int
	setErr error
}

func newFakeSystem() *fakeSystem {
	f := &fakeSystem{limits: map[int]Pair{}}
	for _, k := range kinds {
		f.limits[k.Resource] = Pair{Soft: 1024, Hard: 4096}
	}
	return f
}

func (f *fakeSystem) Get(resource int) (Pair, error) {
	f.gets = append(f.gets, resource)
	return f.limits[resource], nil
}

func (f *fakeSystem) Set(resource int, p Pair) error {
	f.sets = append(f.sets, resource)
	if f.setErr != nil {
		return f.setErr
	}
	f.limits[resource] = p
	return nil
}

func (f *fakeSystem) Infinity() uint64 {
	return fakeInfinity
}

func firstKind(t *testing.T) Kind {
	t.Helper()
	if len(kinds) == 0 {
		t.Skip("no resource limits on this platform")
	}
	return kinds[0]
}

func TestPlan(t *testing.T) {
	tests := []struct {
		name    string
		current Pair
		req     Request
		want    Pair
		wantErr bool
	}{
		{
			name:    "soft only",
			current: Pair{Soft: 10, Hard: 100},
			req:     Request{Soft: 50, Hard: Unchanged},
			want:    Pair{Soft: 50, Hard: 100},
		},
		{
			name:    "hard only",
			current: Pair{Soft: 10, Hard: 100},
			req:     Request{Soft: Unchanged, Hard: 80},
			want:    Pair{Soft: 10, Hard: 80},
		},
		{
			name:    "soft above finite hard fails",
			current: Pair{Soft: 1, Hard: 5},
			req:     Request{Soft: 10, Hard: Unchanged},
			wantErr: true,
		},
		{
			name:    "soft checked against current hard, not requested hard",
			current: Pair{Soft: 1, Hard: 5},
			req:     Request{Soft: 10, Hard: 20},
			wantErr: true,
		},
		{
			name:    "unlimited soft above finite hard fails",
			current: Pair{Soft: 1, Hard: 5},
			req:     Request{Soft: Unlimited, Hard: Unchanged},
			wantErr: true,
		},
		{
			name:    "infinite hard accepts any soft",
			current: Pair{Soft: 1, Hard: fakeInfinity},
			req:     Request{Soft: 1 << 40, Hard: Unchanged},
			want:    Pair{Soft: 1 << 40, Hard: fakeInfinity},
		},
		{
			name:    "lowering hard clamps existing soft",
			current: Pair{Soft: 50, Hard: 100},
			req:     Request{Soft: Unchanged, Hard: 20},
			want:    Pair{Soft: 20, Hard: 20},
		},
		{
			name:    "lowering hard clamps requested soft",
			current: Pair{Soft: 10, Hard: 100},
			req:     Request{Soft: 90, Hard: 30},
			want:    Pair{Soft: 30, Hard: 30},
		},
		{
			name:    "unlimited hard",
			current: Pair{Soft: 10, Hard: 100},
			req:     Request{Soft: Unchanged, Hard: Unlimited},
			want:    Pair{Soft: 10, Hard: fakeInfinity},
		},
		{
			name:    "unlimited soft under infinite hard",
			current: Pair{Soft: 10, Hard: fakeInfinity},
			req:     Request{Soft: Unlimited, Hard: Unchanged},
			want:    Pair{Soft: fakeInfinity, Hard: fakeInfinity},
		},
	}

	k := Kind{Name: "RLIMIT_TEST", Flag: "test", Resource: 99}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys := newFakeSystem()
			sys.limits[k.Resource] = tt.current
			a := NewAdjuster(sys, nil)

			got, err := a.Plan(k, tt.req)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Plan() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				var exceeds *ExceedsHardError
				if !errors.As(err, &exceeds) {
					t.Fatalf("Plan() error = %T, want *ExceedsHardError", err)
				}
				if exceeds.Hard != tt.current.Hard {
					t.Errorf("ExceedsHardError.Hard = %d, want %d", exceeds.Hard, tt.current.Hard)
				}
				return
			}
			if got != tt.want {
				t.Errorf("Plan() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestApplyLeavesUnrequestedKindsAlone(t *testing.T) {
	k := firstKind(t)
	sys := newFakeSystem()
	before := make(map[int]Pair, len(sys.limits))
	for r, p := range sys.limits {
		before[r] = p
	}

	a := NewAdjuster(sys, nil)
	if err := a.Apply(map[Kind]Request{k: NoChange}); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if err := a.Apply(nil); err != nil {
		t.Fatalf("Apply(nil) error = %v", err)
	}

	if len(sys.gets) != 0 || len(sys.sets) != 0 {
		t.Errorf("expected no OS access, got gets=%v sets=%v", sys.gets, sys.sets)
	}
	for r, p := range sys.limits {
		if before[r] != p {
			t.Errorf("limit %d changed from %+v to %+v", r, before[r], p)
		}
	}
}

func TestApplyCommitsInTableOrder(t *testing.T) {
	if len(kinds) < 2 {
		t.Skip("need at least two resource limits")
	}
	first, second := kinds[0], kinds[1]
	sys := newFakeSystem()
	a := NewAdjuster(sys, nil)

	err := a.Apply(map[Kind]Request{
		second: {Soft: Unchanged, Hard: 100},
		first:  {Soft: 10, Hard: Unchanged},
	})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if len(sys.sets) != 2 || sys.sets[0] != first.Resource || sys.sets[1] != second.Resource {
		t.Errorf("sets = %v, want [%d %d]", sys.sets, first.Resource, second.Resource)
	}
	if got := sys.limits[second.Resource]; got != (Pair{Soft: 100, Hard: 100}) {
		t.Errorf("second limit = %+v, want clamped {100 100}", got)
	}
}

func TestApplyExceedsHardCommitsNothing(t *testing.T) {
	k := firstKind(t)
	sys := newFakeSystem()
	sys.limits[k.Resource] = Pair{Soft: 5, Hard: 5}
	a := NewAdjuster(sys, nil)

	err := a.Apply(map[Kind]Request{k: {Soft: 10, Hard: Unchanged}})
	var exceeds *ExceedsHardError
	if !errors.As(err, &exceeds) {
		t.Fatalf("Apply() error = %v, want *ExceedsHardError", err)
	}
	want := "specified " + k.Name + "_SOFT=10 exceeds " + k.Name + "_HARD=5"
	if err.Error() != want {
		t.Errorf("error = %q, want %q", err.Error(), want)
	}
	if len(sys.sets) != 0 {
		t.Errorf("nothing should be committed, got sets=%v", sys.sets)
	}
}

func TestApplySetError(t *testing.T) {
	k := firstKind(t)
	sys := newFakeSystem()
	sys.setErr = errors.New("operation not permitted")
	a := NewAdjuster(sys, nil)

	tests := []struct {
		name     string
		req      Request
		contains []string
		excludes []string
	}{
		{
			name:     "soft only",
			req:      Request{Soft: 1, Hard: Unchanged},
			contains: []string{k.Name + "_SOFT=1"},
			excludes: []string{"_HARD="},
		},
		{
			name:     "hard only",
			req:      Request{Soft: Unchanged, Hard: 2},
			contains: []string{k.Name + "_HARD=2"},
			excludes: []string{"_SOFT="},
		},
		{
			name:     "both",
			req:      Request{Soft: 1, Hard: 2},
			contains: []string{k.Name + "_SOFT=1", k.Name + "_HARD=2", "operation not permitted"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := a.Apply(map[Kind]Request{k: tt.req})
			var setErr *SetError
			if !errors.As(err, &setErr) {
				t.Fatalf("Apply() error = %v, want *SetError", err)
			}
			if !errors.Is(err, sys.setErr) {
				t.Error("SetError should unwrap to the OS error")
			}
			for _, s := range tt.contains {
				if !strings.Contains(err.Error(), s) {
					t.Errorf("error %q does not mention %q", err.Error(), s)
				}
			}
			for _, s := range tt.excludes {
				if strings.Contains(err.Error(), s) {
					t.Errorf("error %q should not mention %q", err.Error(), s)
				}
			}
		})
	}
}

func TestApplyUnknownKind(t *testing.T) {
	a := NewAdjuster(newFakeSystem(), nil)
	err := a.Apply(map[Kind]Request{{Name: "RLIMIT_BOGUS", Flag: "bogus", Resource: 1234}: {Soft: 1, Hard: 1}})
	if err == nil {
		t.Fatal("Apply() should reject kinds outside the platform table")
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: "0", want: 0},
		{in: "1024", want: 1024},
		{in: "unlimited", want: Unlimited},
		{in: "INFINITY", want: Unlimited},
		{in: "-1", want: Unlimited},
		{in: "-2", wantErr: true},
		{in: "ten", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseValue(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseValue(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseValue(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestLookup(t *testing.T) {
	k := firstKind(t)
	for _, name := range []string{k.Flag, k.Name, strings.ToLower(k.Name)} {
		got, ok := Lookup(name)
		if !ok || got != k {
			t.Errorf("Lookup(%q) = %v, %v", name, got, ok)
		}
	}
	if _, ok := Lookup("bogus"); ok {
		t.Error("Lookup(bogus) should fail")
	}
}
