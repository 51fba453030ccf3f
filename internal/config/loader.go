package config

import (
	"errors"
	"os"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// ErrValueNotFound is returned by AssignFirst when no file defines a path.
var ErrValueNotFound = errors.New("value not found")

// Loader reads CUE configuration files.  Files are read and validated once,
// the first time a value is requested.
type Loader struct {
	getRoots func() ([]rootInfo, error)
}

// NewLoader returns a Loader for filePaths.  When schemaSrc is not empty
// every file must unify with the closed struct it declares.
func NewLoader(filePaths []string, schemaSrc string) Loader {
	return Loader{
		getRoots: sync.OnceValues(func() (ret []rootInfo, err error) {
			ctx := cuecontext.New()
			var schema cue.Value
			if schemaSrc != "" {
				schema = ctx.CompileString("close({" + schemaSrc + "})")
				if err := schema.Err(); err != nil {
					return nil, err
				}
			}

			for _, filePath := range filePaths {
				content, err := os.ReadFile(filePath)
				if err != nil {
					return nil, err
				}

				value := ctx.CompileBytes(
					content,
					cue.Filename(filePath),
				)
				if err = value.Err(); err != nil {
					return nil, err
				}

				if schema.Exists() {
					if err := schema.Unify(value).Validate(); err != nil {
						return nil, err
					}
				}

				ret = append(ret, rootInfo{
					value: value,
					path:  filePath,
				})
			}

			return
		}),
	}
}

type rootInfo struct {
	value cue.Value
	path  string
}

// AssignFirst decodes the value at path in the first file defining it into
// target.
func (l Loader) AssignFirst(path string, target any) error {
	roots, err := l.getRoots()
	if err != nil {
		return err
	}

	cuePath := cue.ParsePath(path)
	for _, info := range roots {
		value := info.value.LookupPath(cuePath)
		if err := value.Err(); err == nil && value.Exists() {
			return value.Decode(target)
		}
	}

	return ErrValueNotFound
}

// Files returns the paths of the files the loader reads.
func (l Loader) Files() ([]string, error) {
	roots, err := l.getRoots()
	if err != nil {
		return nil, err
	}
	paths := make([]string, len(roots))
	for i, info := range roots {
		paths[i] = info.path
	}
	return paths, nil
}
