// Package reftree implements the refinement tree and its cursor (spec.md
// §4.2-§4.4, component D): the arena-based log of every variable
// defined and predicate assumed while checking a function body, which
// internal/fixpoint later walks to build the Horn constraint.
//
// Grounded on original_source's
// crates/flux-refineck/src/checker.rs's use of `refine_tree::{RefineCtxt,
// RefineTree, Snapshot}` (define_vars, assume_pred, unpack,
// assume_invariants, snapshot, branch, subtree_at, clear_children,
// scope) — the refine_tree module itself was not part of the retrieved
// sources, so this package is reconstructed from that call surface.
package reftree

import (
	"github.com/liquidgo/liquidgo/internal/rsort"
	"github.com/liquidgo/liquidgo/internal/rty"
)

type nodeKind int

const (
	nodeForAll nodeKind = iota
	nodeGuard
	nodeHead
)

type node struct {
	kind nodeKind

	// nodeForAll
	v    rty.Var
	sort rsort.Sort

	// nodeGuard / nodeHead
	pred rty.Expr
	tag  string

	parent   int
	children []int
}

// Obligation is a proof obligation recorded at a Head node: the
// predicate that must follow from everything assumed on the path from
// the root, tagged for error reporting once the solver reports it
// unsafe (spec.md §4.5 "Tag").
type Obligation struct {
	Node int
	Pred rty.Expr
	Tag  string
}

// Tree is the arena of nodes logged while checking one function body.
type Tree struct {
	nodes   []node
	nextVar uint32
	obligs  []Obligation
}

// New allocates a tree with a single root ForAll-less node (the empty
// scope every function body starts from).
func New() *Tree {
	return &Tree{nodes: []node{{kind: nodeGuard, pred: rty.Lit(rty.True), parent: -1}}}
}

// Ctxt is a cursor into a Tree: the current position on the path from
// the root, the node new children get appended under.
type Ctxt struct {
	tree *Tree
	cur  int
}

// RootCtxt returns a cursor positioned at t's root.
func (t *Tree) RootCtxt() *Ctxt { return &Ctxt{tree: t, cur: 0} }

// Snapshot identifies a cursor position that can be revisited later,
// e.g. to re-enter a dominator block's environment at a join point.
type Snapshot struct {
	node int
}

func (c *Ctxt) Snapshot() Snapshot { return Snapshot{node: c.cur} }

// RefineCtxtAt returns a cursor repositioned at snap.
func (t *Tree) RefineCtxtAt(snap Snapshot) *Ctxt { return &Ctxt{tree: t, cur: snap.node} }

// ClearChildren drops every node appended after snap, so a loop header
// revisited during a fixpoint shape-pass iteration starts clean instead
// of accumulating stale branches (spec.md §5's "re-checking loop
// headers").
func (t *Tree) ClearChildren(snap Snapshot) {
	t.nodes[snap.node].children = nil
}

func (c *Ctxt) push(n node) int {
	n.parent = c.cur
	idx := len(c.tree.nodes)
	c.tree.nodes = append(c.tree.nodes, n)
	c.tree.nodes[c.cur].children = append(c.tree.nodes[c.cur].children, idx)
	c.cur = idx
	return idx
}

// DefineVar binds a fresh free variable of the given sort at the
// current cursor, advancing the cursor under it, and returns the new
// variable (spec.md §4.2).
func (c *Ctxt) DefineVar(sort rsort.Sort) rty.Var {
	c.tree.nextVar++
	v := rty.Free(c.tree.nextVar)
	c.push(node{kind: nodeForAll, v: v, sort: sort})
	return v
}

// AssumePred logs a predicate assumed true at this point (an `if`
// branch's guard, a type's refinement once unpacked, spec.md §4.2).
func (c *Ctxt) AssumePred(p rty.Expr) {
	if p.IsTriviallyTrue() {
		return
	}
	c.push(node{kind: nodeGuard, pred: p})
}

// CheckPred records a proof obligation: p must follow from everything
// assumed on the path to the current cursor (spec.md §4.4's subtyping
// checks, §4.5's "Head" node).
func (c *Ctxt) CheckPred(p rty.Expr, tag string) {
	idx := c.push(node{kind: nodeHead, pred: p, tag: tag})
	c.tree.obligs = append(c.tree.obligs, Obligation{Node: idx, Pred: p, Tag: tag})
}

// Unpack turns an existential type into an indexed one by defining a
// fresh variable for each first-order leaf sort of its base type and
// assuming the existential's predicate with that variable substituted
// for the bound index (spec.md §4.2 "unpacking"). assumeInvariants
// additionally assumes any builtin invariants assumeInvariants implies
// (e.g. unsigned values are non-negative) once unpacked.
func (c *Ctxt) Unpack(ty rty.Ty, assumeInvariants bool) rty.Ty {
	if ty.Kind != rty.TExists {
		return ty
	}
	sort := rsort.Int
	if ty.Base.Kind == rty.BTBool {
		sort = rsort.Bool
	}
	v := c.DefineVar(sort)
	if ty.ExPred.Kind == rty.PredExpr {
		c.AssumePred(substBoundVar(ty.ExPred.Expr, v))
	}
	indexed := rty.Indexed(*ty.Base, rty.VarExpr(v))
	if assumeInvariants {
		c.AssumeInvariants(indexed)
	}
	return indexed
}

// AssumeInvariants assumes the builtin invariants a base type carries
// regardless of its refinement: an unsigned scalar is non-negative. No
// bit-width bounds are assumed for any base type.
func (c *Ctxt) AssumeInvariants(ty rty.Ty) {
	if ty.Kind != rty.TIndexed || ty.Base == nil || len(ty.Indices) == 0 {
		return
	}
	v := ty.Indices[0]
	switch ty.Base.Kind {
	case rty.BTUint:
		c.AssumePred(rty.Bin(rty.OpGe, v, rty.Lit(rty.Zero)))
	}
}

// Branch opens a sibling cursor at the same position as c: pushing
// through b does not affect any other branch taken from the same point
// (spec.md §4.3's "each SwitchInt arm checks under its own guard").
func (c *Ctxt) Branch() *Ctxt { return &Ctxt{tree: c.tree, cur: c.cur} }

// Scope is the ordered list of variables bound on the path from the
// tree's root to a cursor, outermost first — what a kvar's "self
// arguments" are drawn from (spec.md §4.5).
type Scope struct {
	Vars  []rty.Var
	Sorts []rsort.Sort
}

func (c *Ctxt) Scope() Scope {
	var path []int
	for n := c.cur; n != -1; n = c.tree.nodes[n].parent {
		path = append(path, n)
	}
	var s Scope
	for i := len(path) - 1; i >= 0; i-- {
		n := c.tree.nodes[path[i]]
		if n.kind == nodeForAll {
			s.Vars = append(s.Vars, n.v)
			s.Sorts = append(s.Sorts, n.sort)
		}
	}
	return s
}

// Obligations returns every proof obligation recorded anywhere in the
// tree, for internal/fixpoint to encode.
func (t *Tree) Obligations() []Obligation { return t.obligs }

// NodeKind mirrors nodeKind for callers outside this package that need
// to walk a View (internal/fixpoint's encoder).
type NodeKind int

const (
	NodeForAll NodeKind = iota
	NodeGuard
	NodeHead
)

// NodeView is a read-only snapshot of one tree node and its children,
// letting internal/fixpoint recursively render the whole tree into a
// wire Constraint without this package needing to know anything about
// the wire format.
type NodeView struct {
	Kind     NodeKind
	Var      rty.Var
	Sort     rsort.Sort
	Pred     rty.Expr
	Tag      string
	Children []NodeView
}

// View renders t starting from its root.
func (t *Tree) View() NodeView { return t.viewOf(0) }

func (t *Tree) viewOf(idx int) NodeView {
	n := t.nodes[idx]
	v := NodeView{Kind: NodeKind(n.kind), Var: n.v, Sort: n.sort, Pred: n.pred, Tag: n.tag}
	for _, c := range n.children {
		v.Children = append(v.Children, t.viewOf(c))
	}
	return v
}

// substBoundVar substitutes the single De-Bruijn-bound variable ^0 in e
// with v, the way a freshly unpacked existential's predicate needs.
func substBoundVar(e rty.Expr, v rty.Var) rty.Expr {
	switch e.Kind {
	case rty.EVarExpr:
		if e.Var.Kind == rty.VarBound && e.Var.Index == 0 {
			return rty.VarExpr(v)
		}
		return e
	case rty.EBinaryOp:
		l := substBoundVar(*e.L, v)
		r := substBoundVar(*e.R, v)
		return rty.Bin(e.BinOp, l, r)
	case rty.EUnaryOp:
		x := substBoundVar(*e.X, v)
		return rty.Un(e.UnOp, x)
	case rty.EApp:
		args := make([]rty.Expr, len(e.Args))
		for i, a := range e.Args {
			args[i] = substBoundVar(a, v)
		}
		return rty.App(e.Func, args...)
	default:
		return e
	}
}
