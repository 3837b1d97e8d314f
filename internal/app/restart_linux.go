//go:build linux

package app

import (
	"syscall"
)

// RestartProcess replaces the current process image, used by the config
// hot-reload path.
func RestartProcess(argv0 string, args []string, env []string) error {
	return syscall.Exec(argv0, args, env)
}
