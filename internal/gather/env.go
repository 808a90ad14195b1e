// Package gather implements Parameter Gathering (spec.md §4.1, component
// A): the two-pass algorithm that turns a surface item's implicit binders
// (`@n`, `#n`, `x: T`) and explicit scopes into one flat, name-resolved
// parameter environment, ready for the lowering pass to consume.
//
// It is grounded on original_source's
// crates/flux-desugar/src/desugar/gather.rs and its sibling env module
// (not present in the retrieved sources; reconstructed here from
// gather.rs's call sites against it: Env::new, extend, insert, push,
// exit, get_with_scope, scope(id).mark_as_used, filter_map).
package gather

import (
	"fmt"

	"github.com/liquidgo/liquidgo/internal/diagnostics"
)

// ScopeKind discriminates the lexical scopes a gathered item can open.
// Each scope owns the parameters declared directly in it, and tracks
// which of those parameters were actually referenced (spec.md §4.1's
// `x: T` use-checking).
type ScopeKind int

const (
	ScopeTyAlias ScopeKind = iota
	ScopeStruct
	ScopeVariant
	ScopeFnInput
	ScopeFnOutput
	ScopeExists
	ScopeAbs
)

// ScopeID names a scope opened during gathering, tagged by its surface
// node so two scopes of the same kind never collide.
type ScopeID struct {
	Kind   ScopeKind
	NodeID int
}

type binding[P any] struct {
	name  string
	param P
	used  bool
}

type scope[P any] struct {
	id       ScopeID
	bindings []binding[P]
}

func (s *scope[P]) markUsed(name string) {
	for i := range s.bindings {
		if s.bindings[i].name == name {
			s.bindings[i].used = true
			return
		}
	}
}

// Env is the gathering-time parameter environment: a stack of scopes,
// innermost last, plus the stack of scopes currently "open" for lookup
// (`stack`) versus the flat list of every scope ever pushed (`all`), so
// filterMap can walk every binding regardless of whether its scope has
// since been exited.
type Env[P any] struct {
	root  ScopeID
	all   []*scope[P]
	stack []*scope[P]
}

// NewEnv opens a fresh environment rooted at root and pushes it as the
// first open scope.
func NewEnv[P any](root ScopeID) *Env[P] {
	s := &scope[P]{id: root}
	return &Env[P]{root: root, all: []*scope[P]{s}, stack: []*scope[P]{s}}
}

func (e *Env[P]) current() *scope[P] {
	return e.stack[len(e.stack)-1]
}

// Push opens a nested scope, e.g. a function's output scope, an
// existential's scope, or a refinement abstraction's scope. If a scope
// with this id was already created earlier (gathering re-enters the same
// ids during use-checking), that scope is reopened rather than shadowed,
// so MarkUsed during the check pass lands on the same bindings gathering
// declared.
func (e *Env[P]) Push(id ScopeID) {
	for _, s := range e.all {
		if s.id == id {
			e.stack = append(e.stack, s)
			return
		}
	}
	s := &scope[P]{id: id}
	e.all = append(e.all, s)
	e.stack = append(e.stack, s)
}

// Exit closes the innermost open scope.
func (e *Env[P]) Exit() {
	e.stack = e.stack[:len(e.stack)-1]
}

// Insert declares name in the innermost open scope. It reports a
// duplicate-binding error rather than silently shadowing, matching
// gather.rs's `env.insert` (which rejects re-declaration within a
// scope — shadowing across scopes is fine and handled by lookup order).
func (e *Env[P]) Insert(name string, pos diagnostics.Pos, param P) error {
	cur := e.current()
	for _, b := range cur.bindings {
		if b.name == name {
			return fmt.Errorf("%s: %q is already bound in this scope", pos, name)
		}
	}
	cur.bindings = append(cur.bindings, binding[P]{name: name, param: param})
	return nil
}

// NamedParam pairs a name with the parameter it's bound to, for Extend.
type NamedParam[P any] struct {
	Name string
	Pos  diagnostics.Pos
	Param P
}

// Extend inserts a batch of bindings into the current scope, e.g. an
// explicit `<refine n: int, m: int>` generics list or a `RefinedBy`.
func (e *Env[P]) Extend(params []NamedParam[P]) error {
	for _, p := range params {
		if err := e.Insert(p.Name, p.Pos, p.Param); err != nil {
			return err
		}
	}
	return nil
}

// GetWithScope looks up name from the innermost open scope outward,
// returning the scope it was found in alongside the parameter, so a
// caller can mark it used in the right place.
func (e *Env[P]) GetWithScope(name string) (ScopeID, *P, bool) {
	for i := len(e.stack) - 1; i >= 0; i-- {
		s := e.stack[i]
		for j := range s.bindings {
			if s.bindings[j].name == name {
				return s.id, &s.bindings[j].param, true
			}
		}
	}
	var zero P
	return ScopeID{}, &zero, false
}

// MarkUsed records that name, declared in scope id, was referenced.
func (e *Env[P]) MarkUsed(id ScopeID, name string) {
	for _, s := range e.all {
		if s.id == id {
			s.markUsed(name)
			return
		}
	}
}

// FilterMap converts every binding ever declared (across every scope,
// open or already exited) into a final value via f, which also learns
// the surface name and whether the binding was used; f returns false to
// drop the binding entirely (gather.rs drops unused `x: T` params and
// SyntaxError params).
func FilterMap[P any, Out any](e *Env[P], f func(name string, param P, used bool) (Out, bool)) []Out {
	var out []Out
	for _, s := range e.all {
		for _, b := range s.bindings {
			if v, ok := f(b.name, b.param, b.used); ok {
				out = append(out, v)
			}
		}
	}
	return out
}
