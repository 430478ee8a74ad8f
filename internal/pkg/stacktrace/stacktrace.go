// Package stacktrace trims goroutine stacks down to this module's frames.
package stacktrace

import (
	"runtime"
	"strconv"
	"strings"
)

const maxDepth = 64

// Internal returns the frames of the calling goroutine whose source lives under
// an internal/ directory, innermost first. Each entry reads
// "internal/<path>.go:<line> <func>". skip counts frames above the caller.
//
// Called from a deferred recover, the panicking frames are still on the stack
// and show up in the result.
func Internal(skip int) []string {
	pcs := make([]uintptr, maxDepth)
	n := runtime.Callers(skip+2, pcs)
	if n == 0 {
		return nil
	}

	var out []string
	frames := runtime.CallersFrames(pcs[:n])
	for {
		f, more := frames.Next()
		if i := strings.Index(f.File, "/internal/"); i >= 0 {
			out = append(out, f.File[i+1:]+":"+strconv.Itoa(f.Line)+" "+shortFunc(f.Function))
		}
		if !more {
			break
		}
	}
	return out
}

// shortFunc drops the import path, keeping "pkg.(*Type).Method".
func shortFunc(name string) string {
	if i := strings.LastIndex(name, "/"); i >= 0 {
		return name[i+1:]
	}
	return name
}
