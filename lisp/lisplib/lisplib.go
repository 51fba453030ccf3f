// Package lisplib is used to conveniently load the standard library into a
// runtime.
package lisplib

import (
	"github.com/opsit-io/opsit-explang-core-sub000/lisp"
	"github.com/opsit-io/opsit-explang-core-sub000/lisp/lisplib/libmath"
	"github.com/opsit-io/opsit-explang-core-sub000/lisp/lisplib/libregexp"
	"github.com/opsit-io/opsit-explang-core-sub000/lisp/lisplib/libstring"
	"github.com/opsit-io/opsit-explang-core-sub000/lisp/lisplib/libthread"
)

var groups = []func(*lisp.Runtime) error{
	libmath.LoadLibrary,
	libstring.LoadLibrary,
	libregexp.LoadLibrary,
	libthread.LoadLibrary,
}

// LoadLibrary loads every library group into rt.
func LoadLibrary(rt *lisp.Runtime) error {
	for _, load := range groups {
		if err := load(rt); err != nil {
			return err
		}
	}
	return nil
}
