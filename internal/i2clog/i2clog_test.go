// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package i2clog

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug": Debug,
		"DEBUG": Debug,
		"":      Info,
		"info":  Info,
		"warn":  Warn,
		"warning": Warn,
		"error": Error,
		"bogus": Info,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoggerFiltersBelowMinimum(t *testing.T) {
	var buf bytes.Buffer
	lg := New(&buf, Warn)
	lg.Debugf("should not appear")
	lg.Infof("should not appear either")
	lg.Warnf("warn line")
	lg.Errorf("error line")

	out := buf.String()
	if strings.Contains(out, "should not appear") {
		t.Errorf("filtered output still present: %q", out)
	}
	if !strings.Contains(out, "warn line") || !strings.Contains(out, "error line") {
		t.Errorf("expected lines missing: %q", out)
	}
}
