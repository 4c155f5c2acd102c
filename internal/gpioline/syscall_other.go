//go:build !linux

// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.
//
// /dev/gpiochipN and the GPIO v2 ioctl ABI are Linux-only (spec.md §1 scopes
// this module to a Linux host). This stub exists only so the package and its
// tests build on a development machine running another OS; every call fails.

package gpioline

import (
	"errors"
	"syscall"
)

const _IOCTL_FUNCTION = 0

var errUnsupportedOS = errors.New("gpioline: the GPIO character device is only available on linux")

func syscall_wrapper(trap, a1, a2, a3 uintptr) (r1, r2 uintptr, err syscall.Errno) {
	return 0, 0, syscall.Errno(1)
}

func syscall_close_wrapper(fd int) error {
	return errUnsupportedOS
}

func syscall_nonblock_wrapper(fd int, nonblocking bool) error {
	return errUnsupportedOS
}
