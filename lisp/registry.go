package lisp

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/opsit-io/opsit-explang-core-sub000/parser/token"
)

// EntryKind distinguishes special forms from functions in a Registry.
type EntryKind uint8

// EntryKind values
const (
	EntryFunction EntryKind = iota
	EntrySpecialForm
)

func (k EntryKind) String() string {
	if k == EntrySpecialForm {
		return "special-form"
	}
	return "function"
}

// SpecialForm compiles a special form from its unevaluated arguments.
type SpecialForm func(c *Compiler, args *FormArgs) (Node, error)

// Entry is a named special form or function.
type Entry struct {
	Name string
	Kind EntryKind
	// Spec is the declared lambda list.  For special forms it describes the
	// syntax the form accepts.
	Spec *ParamSpec
	Form SpecialForm
	Fun  *LVal

	Doc     string
	Builtin bool
	Source  *token.Location
	Group   string
}

// Registry is the table of named functions and special forms shared by
// every environment of a Runtime.  Calls look names up when they are
// evaluated, so redefining an entry affects every later call.  A Registry is
// safe for concurrent use.
type Registry struct {
	Logger *slog.Logger

	mut     sync.RWMutex
	entries map[string]*Entry
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		Logger:  discardLogger,
		entries: make(map[string]*Entry),
	}
}

// Lookup returns the entry for name, or nil.
func (r *Registry) Lookup(name string) *Entry {
	r.mut.RLock()
	defer r.mut.RUnlock()
	return r.entries[name]
}

// Define adds e to r, replacing any function with the same name.  Special
// forms cannot be replaced by functions.
func (r *Registry) Define(e *Entry) error {
	r.mut.Lock()
	defer r.mut.Unlock()
	old := r.entries[e.Name]
	if old != nil && old.Kind == EntrySpecialForm && e.Kind != EntrySpecialForm {
		return Errorf("cannot redefine special form: %s", e.Name)
	}
	if old != nil {
		r.Logger.Debug("redefining", "name", e.Name, "kind", e.Kind, "group", e.Group, "previous", old.Source.String())
	}
	r.entries[e.Name] = e
	return nil
}

// Remove deletes the function named name and reports whether it existed.
func (r *Registry) Remove(name string) bool {
	r.mut.Lock()
	defer r.mut.Unlock()
	e := r.entries[name]
	if e == nil || e.Kind == EntrySpecialForm {
		return false
	}
	delete(r.entries, name)
	return true
}

// Entries returns the entries in group, or every entry when group is empty,
// sorted by name.
func (r *Registry) Entries(group string) []*Entry {
	r.mut.RLock()
	var entries []*Entry
	for _, e := range r.entries {
		if group == "" || e.Group == group {
			entries = append(entries, e)
		}
	}
	r.mut.RUnlock()
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries
}

// DefineBuiltin registers a function implemented in Go.  The lambda list is
// given as source text, for example "(x &optional (y 1))".
func (r *Registry) DefineBuiltin(group, name, params string, fn LBuiltin, doc string) error {
	spec, err := ParseParams(params)
	if err != nil {
		return err
	}
	return r.Define(&Entry{
		Name:    name,
		Kind:    EntryFunction,
		Spec:    spec,
		Fun:     Builtin(name, spec, fn),
		Doc:     doc,
		Builtin: true,
		Group:   group,
	})
}

// DefineSpecialForm registers a special form.
func (r *Registry) DefineSpecialForm(group, name, params string, form SpecialForm, doc string) error {
	spec, err := ParseParams(params)
	if err != nil {
		return err
	}
	return r.Define(&Entry{
		Name:    name,
		Kind:    EntrySpecialForm,
		Spec:    spec,
		Form:    form,
		Doc:     doc,
		Builtin: true,
		Group:   group,
	})
}
