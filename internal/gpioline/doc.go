// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.
//
// Package gpioline provides a single-line-at-a-time abstraction over the
// Linux GPIO character-device (cdev) ioctl interface.
//
// https://docs.kernel.org/userspace-api/gpio/index.html
//
// Unlike periph.io/x/host/v3/gpioioctl, which keeps one ioctl-backed line
// request open per line for its entire lifetime, a Line here memoizes a
// single tagged mode (input, output, rising-edge watch, falling-edge watch)
// and transparently drops and re-requests the kernel handle whenever the
// caller asks for a different mode. The v2 ioctl ABI requires this: a line
// request's direction and edge mask are immutable once opened.
package gpioline
