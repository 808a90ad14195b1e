// Package checker is the CFG checker (spec.md §4.3, component G, the
// single largest core component): the two-pass abstract interpreter
// that walks a function body's basic blocks depth-first, applying
// statement/terminator semantics against an internal/typeenv.Env and
// internal/reftree.Ctxt, and folds each join point's incoming
// environments into the per-block shape ShapeMode infers and RefineMode
// checks against.
//
// Grounded on original_source's crates/flux-refineck/src/checker.rs's
// `Checker<'a, 'genv, 'tcx, M: Mode>`, its `ShapeMode`/`RefineMode`
// implementations of the `Mode` trait, and its
// check_basic_block/check_statement/check_terminator/check_goto
// functions.
package checker

import (
	"fmt"

	"github.com/liquidgo/liquidgo/internal/kvars"
	"github.com/liquidgo/liquidgo/internal/reftree"
	"github.com/liquidgo/liquidgo/internal/rty"
	"github.com/liquidgo/liquidgo/internal/typeenv"
)

// Mode abstracts the one difference between the shape pass and the
// refine pass (spec.md §4.3's "two-pass" design): how a join point's
// target environment for a given block is obtained. Ghost statements are
// applied the same way in both passes.
type Mode interface {
	// JoinTarget returns the BasicBlockEnv the checker should verify the
	// current env is a subtype of when jumping to block bb, inferring or
	// widening it first if this is the first time bb is reached.
	JoinTarget(bb int, scope reftree.Scope, cur *typeenv.Env) (*typeenv.BasicBlockEnv, bool)
	// RecordShape is called in either mode when the checker first reaches
	// a join point bb (a block with more than one predecessor) that
	// JoinTarget had no environment for, before bb is checked, to record
	// the widened shape that later arrivals at bb are checked against.
	RecordShape(bb int, shape typeenv.Shape)
	// Name identifies the pass for diagnostics ("shape" or "refine").
	Name() string
}

// ShapeMode is the first pass (spec.md §4.3): it widens every join point
// it discovers into a Shape so RefineMode's later pass has somewhere
// concrete to check against. Its holes carry no predicate and so raise no
// obligation, but the Checker still records the obligations its other
// checks (returns, calls) raise during this pass.
type ShapeMode struct {
	shapes map[int]typeenv.Shape
}

func NewShapeMode() *ShapeMode { return &ShapeMode{shapes: map[int]typeenv.Shape{}} }

func (m *ShapeMode) JoinTarget(bb int, scope reftree.Scope, cur *typeenv.Env) (*typeenv.BasicBlockEnv, bool) {
	if shape, ok := m.shapes[bb]; ok {
		return &typeenv.BasicBlockEnv{Scope: shape.Scope, Locals: shape.Locals, Locs: shape.Locs}, true
	}
	shape := cur.IntoShape(scope)
	m.shapes[bb] = shape
	return nil, false
}

func (m *ShapeMode) RecordShape(bb int, shape typeenv.Shape) { m.shapes[bb] = shape }

func (m *ShapeMode) Name() string { return "shape" }

// Shapes exposes what ShapeMode inferred, the input RefineMode needs
// once the shape pass completes (spec.md §4.3's hand-off between
// passes).
func (m *ShapeMode) Shapes() map[int]typeenv.Shape { return m.shapes }

// RefineMode is the second pass (spec.md §4.3): every join point's Shape
// from the preceding ShapeMode run is turned into a concrete
// BasicBlockEnv by allocating a real kvar (via internal/kvars.Store) for
// every hole, and CheckGoto now records real proof obligations.
type RefineMode struct {
	envs  map[int]*typeenv.BasicBlockEnv
	store *kvars.Store
}

func NewRefineMode(shapes map[int]typeenv.Shape, store *kvars.Store) *RefineMode {
	m := &RefineMode{envs: map[int]*typeenv.BasicBlockEnv{}, store: store}
	for bb, shape := range shapes {
		m.envs[bb] = refineShape(shape, store, bb)
	}
	return m
}

func (m *RefineMode) JoinTarget(bb int, scope reftree.Scope, cur *typeenv.Env) (*typeenv.BasicBlockEnv, bool) {
	env, ok := m.envs[bb]
	return env, ok
}

func (m *RefineMode) RecordShape(bb int, shape typeenv.Shape) {
	m.envs[bb] = refineShape(shape, m.store, bb)
}

func (m *RefineMode) Name() string { return "refine" }

// refineShape replaces every existential hole in shape with an
// existential whose predicate is a freshly allocated kvar applied to the scope's self
// arguments (spec.md §4.5's "a kvar stands in for an unsolved join
// invariant").
func refineShape(shape typeenv.Shape, store *kvars.Store, bb int) *typeenv.BasicBlockEnv {
	out := &typeenv.BasicBlockEnv{Scope: shape.Scope, Locals: map[int]rty.Ty{}, Locs: map[string]rty.Ty{}}
	for local, ty := range shape.Locals {
		out.Locals[local] = refineTy(ty, shape.Scope, store, fmt.Sprintf("bb%d._%d", bb, local))
	}
	for loc, ty := range shape.Locs {
		out.Locs[loc] = refineTy(ty, shape.Scope, store, fmt.Sprintf("bb%d.%s", bb, loc))
	}
	return out
}

// refineTy replaces a single existential hole with an existential whose
// predicate is a fresh kvar applied over scope's bound variables (spec.md
// §4.5): the kvar's "self arguments" are exactly the variables bound on
// the path to this join point.
func refineTy(ty rty.Ty, scope reftree.Scope, store *kvars.Store, orig string) rty.Ty {
	if ty.Kind != rty.TExists || ty.ExPred.Kind != rty.PredHole {
		return ty
	}
	id, leaves := store.Fresh(scope.Sorts, nil, kvars.Single, orig)
	args := make([]rty.Var, len(leaves))
	for i, l := range leaves {
		args[i] = scope.Vars[l.Var]
	}
	return rty.Exists(*ty.Base, rty.ExprPred(rty.KVarExpr(uint32(id), args)))
}
