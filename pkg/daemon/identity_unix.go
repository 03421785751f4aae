//go:build linux || darwin

package daemon

import (
	"fmt"
	"os"
	"os/user"
	"strconv"
	"syscall"

	"golang.org/x/sys/unix"
)

// Identity is a resolved user to switch to.
type Identity struct {
	Name   string
	UID    int
	GID    int
	Groups []int
}

// LookupIdentity resolves a user name, or a numeric uid, to an Identity.
func LookupIdentity(name string) (*Identity, error) {
	u, err := user.Lookup(name)
	if err != nil {
		if _, nerr := strconv.Atoi(name); nerr == nil {
			u, err = user.LookupId(name)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("user not found: %s", name)
	}

	uid, err := strconv.Atoi(u.Uid)
	if err != nil {
		return nil, fmt.Errorf("invalid uid %q for user %s", u.Uid, name)
	}
	gid, err := strconv.Atoi(u.Gid)
	if err != nil {
		return nil, fmt.Errorf("invalid gid %q for user %s", u.Gid, name)
	}

	id := &Identity{Name: u.Username, UID: uid, GID: gid}

	// a missing group database is not fatal, the primary gid still applies
	if ids, err := u.GroupIds(); err == nil {
		for _, g := range ids {
			if n, err := strconv.Atoi(g); err == nil {
				id.Groups = append(id.Groups, n)
			}
		}
	}
	return id, nil
}

// SwitchUser changes the identity of the whole process to id. Supplementary
// groups are only replaced when running as root.
func SwitchUser(id *Identity) error {
	if os.Geteuid() == 0 {
		groups := id.Groups
		if len(groups) == 0 {
			groups = []int{id.GID}
		}
		if err := syscall.Setgroups(groups); err != nil {
			return fmt.Errorf("unable to set supplementary groups for %s: %w", id.Name, err)
		}
	}
	if err := syscall.Setgid(id.GID); err != nil {
		return fmt.Errorf("unable to set gid %d for %s: %w", id.GID, id.Name, err)
	}
	if err := syscall.Setuid(id.UID); err != nil {
		return fmt.Errorf("unable to set uid %d for %s: %w", id.UID, id.Name, err)
	}
	return nil
}

// ChangeDir changes the working directory of the process.
func ChangeDir(dir string) error {
	if err := unix.Chdir(dir); err != nil {
		return fmt.Errorf("unable to change directory to %s: %w", dir, err)
	}
	return nil
}

// CloseDescriptors closes each fd in order. Closing a descriptor that is not
// open is an error like any other.
func CloseDescriptors(fds []int) error {
	for _, fd := range fds {
		if err := unix.Close(fd); err != nil {
			return fmt.Errorf("unable to close file descriptor %d: %w", fd, err)
		}
	}
	return nil
}
