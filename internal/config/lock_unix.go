//go:build unix

package config

import "golang.org/x/sys/unix"

func lockFd(fd uintptr) error {
	return unix.Flock(int(fd), unix.LOCK_EX)
}

func unlockFd(fd uintptr) error {
	return unix.Flock(int(fd), unix.LOCK_UN)
}
