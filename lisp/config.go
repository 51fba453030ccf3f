package lisp

import (
	"fmt"
	"io"
	"log/slog"
)

// Config is a function that configures a Runtime.
type Config func(rt *Runtime) error

// WithMaximumStackHeight returns a Config that limits call stacks made by
// the runtime to n frames.  Zero removes the limit.
func WithMaximumStackHeight(n int) Config {
	return func(rt *Runtime) error {
		if n < 0 {
			return fmt.Errorf("invalid maximum stack height: %d", n)
		}
		rt.MaxHeight = n
		return nil
	}
}

// WithMissPolicy returns a Config that selects what reading an unbound
// variable does.
func WithMissPolicy(p MissPolicy) Config {
	return func(rt *Runtime) error {
		rt.MissPolicy = p
		return nil
	}
}

// WithReader returns a Config that makes the runtime use r to parse source
// streams.
func WithReader(r Reader) Config {
	return func(rt *Runtime) error {
		rt.Reader = r
		return nil
	}
}

// WithStdout returns a Config that makes the runtime write program output
// to w instead of the default, os.Stdout.
func WithStdout(w io.Writer) Config {
	return func(rt *Runtime) error {
		rt.Stdout = w
		return nil
	}
}

// WithStderr returns a Config that makes the runtime write debugging output
// to w instead of the default, os.Stderr.
func WithStderr(w io.Writer) Config {
	return func(rt *Runtime) error {
		rt.Stderr = w
		return nil
	}
}

// WithLogger returns a Config that makes the runtime log to logger.
func WithLogger(logger *slog.Logger) Config {
	return func(rt *Runtime) error {
		rt.Logger = logger
		rt.Registry.Logger = logger
		return nil
	}
}

// WithLibrary returns a Config that loads a library of builtins with fn.
func WithLibrary(fn func(rt *Runtime) error) Config {
	return fn
}

// ParseMissPolicy parses the name of a MissPolicy, "error" or "nil".
func ParseMissPolicy(name string) (MissPolicy, error) {
	switch name {
	case "", "error":
		return MissError, nil
	case "nil":
		return MissNil, nil
	}
	return MissError, fmt.Errorf("unknown miss policy: %q", name)
}
