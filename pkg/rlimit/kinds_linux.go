//go:build linux

package rlimit

import "golang.org/x/sys/unix"

var kinds = []Kind{
	{Name: "RLIMIT_CPU", Flag: "cpu", Resource: unix.RLIMIT_CPU},
	{Name: "RLIMIT_FSIZE", Flag: "fsize", Resource: unix.RLIMIT_FSIZE},
	{Name: "RLIMIT_DATA", Flag: "data", Resource: unix.RLIMIT_DATA},
	{Name: "RLIMIT_STACK", Flag: "stack", Resource: unix.RLIMIT_STACK},
	{Name: "RLIMIT_CORE", Flag: "core", Resource: unix.RLIMIT_CORE},
	{Name: "RLIMIT_RSS", Flag: "rss", Resource: unix.RLIMIT_RSS},
	{Name: "RLIMIT_NOFILE", Flag: "nofile", Resource: unix.RLIMIT_NOFILE},
	{Name: "RLIMIT_AS", Flag: "as", Resource: unix.RLIMIT_AS},
	{Name: "RLIMIT_NPROC", Flag: "nproc", Resource: unix.RLIMIT_NPROC},
	{Name: "RLIMIT_MEMLOCK", Flag: "memlock", Resource: unix.RLIMIT_MEMLOCK},
	{Name: "RLIMIT_LOCKS", Flag: "locks", Resource: unix.RLIMIT_LOCKS},
	{Name: "RLIMIT_SIGPENDING", Flag: "sigpending", Resource: unix.RLIMIT_SIGPENDING},
	{Name: "RLIMIT_MSGQUEUE", Flag: "msgqueue", Resource: unix.RLIMIT_MSGQUEUE},
	{Name: "RLIMIT_NICE", Flag: "nice", Resource: unix.RLIMIT_NICE},
	{Name: "RLIMIT_RTPRIO", Flag: "rtprio", Resource: unix.RLIMIT_RTPRIO},
	{Name: "RLIMIT_RTTIME", Flag: "rttime", Resource: unix.RLIMIT_RTTIME},
}

// RLIM_INFINITY as seen through the 64-bit prlimit interface
const infinity = ^uint64(0)
