// Package ilog provides the package-level leveled loggers used across the
// codecs and operation interpreter, in the style of pdfcpu's pkg/log:
// Info and Debug are *log.Logger values that default to discarding output
// and can be redirected by the caller.
package ilog

import (
	"io"
	"log"
	"os"
)

// Info logs user-facing progress (one-shot per operation, not per pixel).
var Info = log.New(io.Discard, "INFO: ", 0)

// Debug logs verbose internal detail (per-block codec state, dispatch
// tracing). Off by default.
var Debug = log.New(io.Discard, "DEBUG: ", 0)

// SetDefaultOutput points Info and Debug at stderr, with Debug gated by
// debug.
func SetDefaultOutput(debug bool) {
	Info.SetOutput(os.Stderr)
	if debug {
		Debug.SetOutput(os.Stderr)
	} else {
		Debug.SetOutput(io.Discard)
	}
}

// DisableAll silences both loggers.
func DisableAll() {
	Info.SetOutput(io.Discard)
	Debug.SetOutput(io.Discard)
}
