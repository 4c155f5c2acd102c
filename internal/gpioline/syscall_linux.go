//go:build linux

// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package gpioline

import "syscall"

const _IOCTL_FUNCTION = syscall.SYS_IOCTL

func syscall_wrapper(trap, a1, a2, a3 uintptr) (r1, r2 uintptr, err syscall.Errno) {
	return syscall.Syscall(trap, a1, a2, a3)
}

func syscall_close_wrapper(fd int) error {
	return syscall.Close(fd)
}

func syscall_nonblock_wrapper(fd int, nonblocking bool) error {
	return syscall.SetNonblock(fd, nonblocking)
}
