// Package diagnostics defines the error taxonomy the checker core reports
// through. It follows the shape funxy's analyzer expects from its
// diagnostics package: a deduplicating collector keyed by position and
// code, and a value type cheap enough to carry around by pointer.
package diagnostics

import (
	"fmt"
	"sort"
)

// ErrorCode namespaces diagnostics by the taxonomy in spec.md §7.
type ErrorCode string

const (
	// ErrResolve covers unknown names, duplicate binders, illegal binder
	// positions and invalid unrefined-param uses (gathering errors).
	ErrResolve ErrorCode = "R001"
	// ErrInference covers an unsolved existential variable during subtyping.
	ErrInference ErrorCode = "C001"
	// ErrOpaqueStruct covers attempts to construct/match an opaque ADT.
	ErrOpaqueStruct ErrorCode = "C002"
	// ErrQuery covers an upstream compiler query failure.
	ErrQuery ErrorCode = "C003"
	// ErrInvalidGenericArg covers a refinement generic-arg mismatch.
	ErrInvalidGenericArg ErrorCode = "C004"
	// ErrSolverCrash covers the solver returning Crash or an I/O error.
	ErrSolverCrash ErrorCode = "F001"
	// ErrUnsafe tags a surviving proof obligation reported back from the solver.
	ErrUnsafe ErrorCode = "U001"
)

// Pos is a source position. It is deliberately smaller than a full token:
// the core only needs enough to render "file:line:col" and to dedupe.
type Pos struct {
	File   string
	Line   int
	Column int
}

func (p Pos) String() string {
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// DiagnosticError is a single reportable error with enough context to
// render a user-facing diagnostic and to map back to a proof obligation.
type DiagnosticError struct {
	Pos     Pos
	Code    ErrorCode
	Message string
	// Reason is an optional human-readable tag, set for obligations that
	// came back from the Horn solver as Unsafe (spec.md §4.5, "Tag").
	Reason string
}

func NewError(code ErrorCode, pos Pos, message string) *DiagnosticError {
	return &DiagnosticError{Pos: pos, Code: code, Message: message}
}

func (e *DiagnosticError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: error[%s]: %s (%s)", e.Pos, e.Code, e.Message, e.Reason)
	}
	return fmt.Sprintf("%s: error[%s]: %s", e.Pos, e.Code, e.Message)
}

// key returns the deduplication key funxy's walker uses: "line:col:code".
func (e *DiagnosticError) key() string {
	return fmt.Sprintf("%d:%d:%s", e.Pos.Line, e.Pos.Column, e.Code)
}

// Collector deduplicates diagnostics the same way funxy's analyzer walker
// does (internal/analyzer.walker.addError/getErrors), then returns them
// sorted by position for deterministic output.
type Collector struct {
	set map[string]*DiagnosticError
}

func NewCollector() *Collector {
	return &Collector{set: make(map[string]*DiagnosticError)}
}

func (c *Collector) Add(err *DiagnosticError) {
	if err == nil {
		return
	}
	if c.set == nil {
		c.set = make(map[string]*DiagnosticError)
	}
	c.set[err.key()] = err
}

func (c *Collector) AddAll(errs []*DiagnosticError) {
	for _, e := range errs {
		c.Add(e)
	}
}

func (c *Collector) Errors() []*DiagnosticError {
	result := make([]*DiagnosticError, 0, len(c.set))
	for _, e := range c.set {
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Pos.Line != result[j].Pos.Line {
			return result[i].Pos.Line < result[j].Pos.Line
		}
		return result[i].Pos.Column < result[j].Pos.Column
	})
	return result
}

func (c *Collector) Len() int { return len(c.set) }
