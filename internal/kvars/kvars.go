// Package kvars implements the KVar store (spec.md §4.5, component I):
// allocation of higher-order predicate placeholders that stand in for
// the "hole" left at each join point during the shape pass, to be
// solved for by the Horn-clause solver during the refine pass.
//
// Grounded on original_source's
// crates/flux-refineck/src/fixpoint_encoding.rs's `KVarStore` (`fresh`,
// `fresh_inner`, `KVarDecl`, `KVarEncoding`).
package kvars

import "github.com/liquidgo/liquidgo/internal/rsort"

// Encoding is recorded on each Decl (spec.md §4.5). internal/fixpoint
// does not read it: every kvar occurrence is encoded as one wire kvar
// over all of its arguments, whichever Encoding its Decl carries.
type Encoding int

const (
	// Single marks a kvar as one wire kvar over every flattened arg.
	Single Encoding = iota
	// Conj marks a kvar whose arguments are independent invariants (e.g.
	// a tuple's fields). The encoder does not split it into a
	// conjunction; it is lowered the same way as Single.
	Conj
)

// KVid names one allocated kvar.
type KVid uint32

// Decl records what a kvar was allocated for: which variables form its
// "self" arguments (always present, e.g. a function's own parameters),
// the flattened first-order sort of every argument (self args first),
// and how to encode it.
type Decl struct {
	SelfArgs int
	Sorts    []rsort.Sort
	Encoding Encoding
	// Orig is a debug label: the place or binder this kvar was
	// generated for, purely for diagnostics and golden-test legibility.
	Orig string
}

// Store allocates and owns every kvar declared while checking one
// function body.
type Store struct {
	decls []Decl
}

func NewStore() *Store { return &Store{} }

func (s *Store) Decl(id KVid) Decl { return s.decls[id] }

func (s *Store) Len() int { return len(s.decls) }

func (s *Store) All() []Decl { return s.decls }

// Leaf is one first-order sort reached by flattening a binder's sort
// list through tuple projection, paired with the De Bruijn variable
// index (within the binder layer) and projection path it came from.
type Leaf struct {
	Sort rsort.Sort
	Var  int
	Proj []uint32
}

// Fresh allocates a kvar scoped over selfSorts (always included as
// arguments) plus the sorts of a fresh binder layer of argSorts,
// flattening both through Sort.Walk to skip Loc/Func sorts and unfold
// tuples, then returns the leaves callers need to build the actual
// rty.KVar expression's argument list (spec.md §4.5 "flattened leaf
// sort"; mirrors fixpoint_encoding.rs's `fresh`/`fresh_inner`).
func (s *Store) Fresh(selfSorts []rsort.Sort, argSorts []rsort.Sort, encoding Encoding, orig string) (KVid, []Leaf) {
	var leaves []Leaf
	flatten := func(sorts []rsort.Sort, baseVar int) {
		for i, sort := range sorts {
			sort.Walk(func(leaf rsort.Sort, proj []uint32) {
				leaves = append(leaves, Leaf{Sort: leaf, Var: baseVar + i, Proj: proj})
			})
		}
	}
	flatten(selfSorts, 0)
	flatten(argSorts, len(selfSorts))

	sorts := make([]rsort.Sort, len(leaves))
	for i, l := range leaves {
		sorts[i] = l.Sort
	}

	id := KVid(len(s.decls))
	s.decls = append(s.decls, Decl{
		SelfArgs: countSelfLeaves(selfSorts),
		Sorts:    sorts,
		Encoding: encoding,
		Orig:     orig,
	})
	return id, leaves
}

func countSelfLeaves(selfSorts []rsort.Sort) int {
	n := 0
	for _, s := range selfSorts {
		s.Walk(func(rsort.Sort, []uint32) { n++ })
	}
	return n
}
