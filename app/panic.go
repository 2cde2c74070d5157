package app

import (
	"fmt"
	"runtime/debug"
	"strings"

	"dclock/hal"
)

// guardStep writes a panic raised by step and its stack to l before
// letting it continue.
func guardStep(l hal.Logger, step func() error) func() error {
	return func() error {
		defer func() {
			if v := recover(); v != nil {
				logPanic(l, v, debug.Stack())
				panic(v)
			}
		}()
		return step()
	}
}

func logPanic(l hal.Logger, v any, stack []byte) {
	if l == nil {
		return
	}
	l.WriteLineString(fmt.Sprintf("dclock panic: %v", v))
	for _, line := range strings.Split(string(stack), "\n") {
		if line == "" {
			continue
		}
		l.WriteLineString(line)
	}
}
