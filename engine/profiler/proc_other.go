//go:build profile && !windows

package profiler

import "syscall"

func hiddenWindowAttr() *syscall.SysProcAttr { return nil }
