//go:build darwin

package rlimit

import "golang.org/x/sys/unix"

var kinds = []Kind{
	{Name: "RLIMIT_CPU", Flag: "cpu", Resource: unix.RLIMIT_CPU},
	{Name: "RLIMIT_FSIZE", Flag: "fsize", Resource: unix.RLIMIT_FSIZE},
	{Name: "RLIMIT_DATA", Flag: "data", Resource: unix.RLIMIT_DATA},
	{Name: "RLIMIT_STACK", Flag: "stack", Resource: unix.RLIMIT_STACK},
	{Name: "RLIMIT_CORE", Flag: "core", Resource: unix.RLIMIT_CORE},
	// same resource number as RLIMIT_AS on darwin
	{Name: "RLIMIT_RSS", Flag: "rss", Resource: unix.RLIMIT_RSS},
	{Name: "RLIMIT_NOFILE", Flag: "nofile", Resource: unix.RLIMIT_NOFILE},
	{Name: "RLIMIT_AS", Flag: "as", Resource: unix.RLIMIT_AS},
	{Name: "RLIMIT_NPROC", Flag: "nproc", Resource: unix.RLIMIT_NPROC},
	{Name: "RLIMIT_MEMLOCK", Flag: "memlock", Resource: unix.RLIMIT_MEMLOCK},
}

// RLIM_INFINITY from <sys/resource.h>
const infinity = uint64(1<<63 - 1)
