package daemon

import "golang.org/x/sys/unix"

// dup2 installs oldfd on newfd. Linux ports such as arm64 only have dup3.
func dup2(oldfd, newfd int) error {
	if oldfd == newfd {
		return nil
	}
	return unix.Dup3(oldfd, newfd, 0)
}
