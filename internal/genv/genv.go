// Package genv is the GlobalEnv boundary (spec.md §1's "a function
// signature resolver, ADT/struct definition lookup, and box-type query"
// external collaborators): a narrow interface the checker core depends
// on instead of importing a concrete compiler frontend, plus a fixed
// in-memory implementation for tests and the CLI driver's own resolved
// state.
//
// Grounded on original_source's crates/flux-refineck/src/checker.rs's
// repeated `genv.fn_sig(...)`, `genv.adt_def(...)`,
// `genv.is_box(...)` calls against a `GlobalEnv` passed into every
// Checker — the GlobalEnv implementation itself lives in flux-middle and
// was not part of the retrieved sources, so this package only fixes the
// call surface checker.rs exercises.
package genv

import (
	"fmt"

	"github.com/liquidgo/liquidgo/internal/rty"
)

// VariantDef is one enum/struct variant's field types, in declaration
// order.
type VariantDef struct {
	Name   string
	Fields []rty.Ty
}

// AdtDef is a resolved ADT's refined definition (spec.md §3's "struct
// and enum definitions"): its variants plus whether it's opaque (spec.md
// §3's ErrOpaqueStruct case — an ADT declared in another crate without
// a refined definition available).
type AdtDef struct {
	Name     string
	Opaque   bool
	Variants []VariantDef
}

// GlobalEnv is the read-only, already-resolved-elsewhere context the
// checker needs to check one function body: other functions' lowered
// signatures, ADT definitions, and which ADTs are the standard library's
// Box (whose single field is always transparently delegated through,
// spec.md §3's box handling).
type GlobalEnv interface {
	FnSig(path string) (*rty.FnSig, error)
	AdtDef(name string) (*AdtDef, error)
	IsBox(name string) bool
}

// Fixed is an in-memory GlobalEnv: what tests and `refinec check` build
// once from a fully elaborated package instead of querying a live
// compiler session.
type Fixed struct {
	Sigs map[string]*rty.FnSig
	Adts map[string]*AdtDef
	Box  string
}

func NewFixed() *Fixed {
	return &Fixed{Sigs: map[string]*rty.FnSig{}, Adts: map[string]*AdtDef{}, Box: "Box"}
}

func (g *Fixed) FnSig(path string) (*rty.FnSig, error) {
	sig, ok := g.Sigs[path]
	if !ok {
		return nil, fmt.Errorf("genv: no signature for %q", path)
	}
	return sig, nil
}

func (g *Fixed) AdtDef(name string) (*AdtDef, error) {
	def, ok := g.Adts[name]
	if !ok {
		return nil, fmt.Errorf("genv: no ADT definition for %q", name)
	}
	return def, nil
}

func (g *Fixed) IsBox(name string) bool { return name == g.Box }
