//go:build !linux && !darwin

package rlimit

var kinds = []Kind{}

type osSystem struct{}

// OS returns a System that reports ErrUnsupported.
func OS() System {
	return osSystem{}
}

func (osSystem) Get(int) (Pair, error) {
	return Pair{}, ErrUnsupported
}

func (osSystem) Set(int, Pair) error {
	return ErrUnsupported
}

func (osSystem) Infinity() uint64 {
	return ^uint64(0)
}
