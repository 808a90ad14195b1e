// Package typeenv is the type environment (spec.md §3.4/§4.3-§4.4,
// component E): a mutable map from place to refined type, threaded
// through one basic block's statements, plus the per-successor "shape"
// the checker infers (ShapeMode) or checks against (RefineMode) at a
// join point.
//
// Grounded on original_source's
// crates/flux-refineck/src/checker.rs's use of `type_env::{TypeEnv,
// BasicBlockEnvShape, BasicBlockEnv}` (lookup_place, move_place, assign,
// borrow, fold, unfold, unblock, downcast, update_path, check_goto,
// into_infer) — the type_env module itself was not part of the
// retrieved sources, so this package is reconstructed from that call
// surface and spec.md §4.3-§4.4's description of the fold/unfold and
// join algorithms.
package typeenv

import (
	"fmt"

	"github.com/liquidgo/liquidgo/internal/diagnostics"
	"github.com/liquidgo/liquidgo/internal/reftree"
	"github.com/liquidgo/liquidgo/internal/rty"
)

type localState struct {
	ty    rty.Ty
	moved bool
}

// Env is the per-local/per-location type map a basic block checks
// against. TypeEnv, BasicBlockEnvShape and BasicBlockEnv are all thin
// views over it, mirroring how the three Rust types share most of their
// representation.
type Env struct {
	locals map[int]*localState
	locs   map[string]rty.Ty
}

// New allocates an environment with every local uninitialized.
func New() *Env {
	return &Env{locals: map[int]*localState{}, locs: map[string]rty.Ty{}}
}

// Alloc marks local uninitialized (spec.md §4.3's entry state for
// locals with no declared initial type).
func (e *Env) Alloc(local int) { e.locals[local] = &localState{ty: rty.Never} }

// AllocWithTy allocates local with a known initial type, e.g. a
// function argument (spec.md §4.3's Checker::init).
func (e *Env) AllocWithTy(local int, ty rty.Ty) { e.locals[local] = &localState{ty: ty} }

// AllocUniversalLoc records a strong-reference location's initial type,
// for `&strg` parameters (spec.md §3.1's TPtr).
func (e *Env) AllocUniversalLoc(loc string, ty rty.Ty) { e.locs[loc] = ty }

func (e *Env) localOf(p Place) (*localState, error) {
	s, ok := e.locals[p.Local]
	if !ok {
		return nil, fmt.Errorf("place %s: unallocated local", p)
	}
	return s, nil
}

// resolve walks p's projection path against base, applying Field/Deref
// steps. Deref only applies to TPtr/TRef; fold/unfold below are what
// make a TPtr's pointee reachable as a real field projection.
func (e *Env) resolve(base rty.Ty, proj []Elem) (rty.Ty, error) {
	cur := base
	for _, step := range proj {
		switch step.Kind {
		case ElemField:
			if cur.Kind != rty.TTuple || int(step.Field) >= len(cur.Tys) {
				return rty.Ty{}, fmt.Errorf("field %d: not a tuple type", step.Field)
			}
			cur = cur.Tys[step.Field]
		case ElemDeref:
			switch cur.Kind {
			case rty.TRef:
				cur = *cur.Inner
			case rty.TPtr:
				pointee, ok := e.locs[cur.Loc]
				if !ok {
					return rty.Ty{}, fmt.Errorf("deref of unknown location %q", cur.Loc)
				}
				cur = pointee
			default:
				return rty.Ty{}, fmt.Errorf("deref of non-reference type %s", cur)
			}
		case ElemDowncast:
			cur = rty.Discr(cur.AdtName)
		}
	}
	return cur, nil
}

// LookupPlace reads p's current type without consuming it (spec.md
// §4.3's Operand::Copy).
func (e *Env) LookupPlace(p Place) (rty.Ty, error) {
	s, err := e.localOf(p)
	if err != nil {
		return rty.Ty{}, err
	}
	if s.moved && len(p.Proj) == 0 {
		return rty.Ty{}, fmt.Errorf("place %s: use after move", p)
	}
	return e.resolve(s.ty, p.Proj)
}

// MovePlace reads p's type and marks the whole local moved-out-of
// (spec.md §4.3's Operand::Move). Partial moves through a projection
// are not tracked field-by-field; only a move of the bare local blocks
// subsequent reads, matching the common case this checker core handles.
func (e *Env) MovePlace(p Place) (rty.Ty, error) {
	ty, err := e.LookupPlace(p)
	if err != nil {
		return rty.Ty{}, err
	}
	if len(p.Proj) == 0 {
		s, _ := e.localOf(p)
		s.moved = true
	}
	return ty, nil
}

// Assign writes ty at p, clearing any prior moved-out state (spec.md
// §4.3's StatementKind::Assign).
func (e *Env) Assign(p Place, ty rty.Ty) error {
	s, err := e.localOf(p)
	if err != nil {
		return err
	}
	if len(p.Proj) == 0 {
		s.ty = ty
		s.moved = false
		return nil
	}
	updated, err := e.assignProjected(s.ty, p.Proj, ty)
	if err != nil {
		return err
	}
	s.ty = updated
	s.moved = false
	return nil
}

func (e *Env) assignProjected(base rty.Ty, proj []Elem, val rty.Ty) (rty.Ty, error) {
	if len(proj) == 0 {
		return val, nil
	}
	step := proj[0]
	switch step.Kind {
	case ElemField:
		if base.Kind != rty.TTuple || int(step.Field) >= len(base.Tys) {
			return rty.Ty{}, fmt.Errorf("field %d: not a tuple type", step.Field)
		}
		tys := append([]rty.Ty{}, base.Tys...)
		updated, err := e.assignProjected(tys[step.Field], proj[1:], val)
		if err != nil {
			return rty.Ty{}, err
		}
		tys[step.Field] = updated
		return rty.TupleTy(tys...), nil
	case ElemDeref:
		if base.Kind == rty.TPtr {
			updated, err := e.assignProjected(e.locs[base.Loc], proj[1:], val)
			if err != nil {
				return rty.Ty{}, err
			}
			e.locs[base.Loc] = updated
			return base, nil
		}
		return rty.Ty{}, fmt.Errorf("cannot assign through this reference kind")
	default:
		return val, nil
	}
}

// UpdatePath is Assign's name at a ghost/terminator-injected write
// (spec.md §4.3's `env.update_path`) — kept distinct to match the
// original's call sites, though the underlying operation is identical.
func (e *Env) UpdatePath(p Place, ty rty.Ty) error { return e.Assign(p, ty) }

// Borrow produces a reference type to p without consuming it (spec.md
// §4.3's Rvalue::Ref).
func (e *Env) Borrow(kind rty.RefKind, p Place) (rty.Ty, error) {
	ty, err := e.LookupPlace(p)
	if err != nil {
		return rty.Ty{}, err
	}
	return rty.Ref(kind, ty), nil
}

// Fold replaces a `&strg` location's current pointee type back into the
// place holding its TPtr, the way a callee handing a strong reference
// back folds its tracked footprint into one type (spec.md §4.3
// "folding").
func (e *Env) Fold(p Place) error {
	ty, err := e.LookupPlace(p)
	if err != nil {
		return err
	}
	if ty.Kind != rty.TPtr {
		return nil
	}
	pointee, ok := e.locs[ty.Loc]
	if !ok {
		return fmt.Errorf("fold: unknown location %q", ty.Loc)
	}
	return e.Assign(p, pointee)
}

// Unfold is Fold's inverse: it materializes a place's current type as a
// fresh tracked location so its fields can be borrowed/assigned
// independently (spec.md §4.3 "unfolding").
func (e *Env) Unfold(p Place, loc string) error {
	ty, err := e.LookupPlace(p)
	if err != nil {
		return err
	}
	e.locs[loc] = ty
	return e.Assign(p, rty.Ptr(loc))
}

// Unblock clears a location previously blocked by a borrow that has
// since expired, making it assignable again (spec.md §4.3's
// GhostStatement::Unblock). Locations here are not separately tracked
// as "blocked"; Unblock is a no-op preserved as an explicit operation
// so ghost-statement application (internal/checker) has a symmetric
// call for every ghost kind spec.md names.
func (e *Env) Unblock(Place) {}

// Downcast narrows a place's discriminant type to one enum variant,
// replacing it with the tuple of that variant's field types (spec.md
// §4.3's StatementKind::SetDiscriminant / a match arm). adtName and
// variant are accepted to mirror the original's call signature and are
// available to callers building diagnostics, though the narrowing
// itself only needs the resolved field types.
func (e *Env) Downcast(p Place, adtName string, variant uint32, fields []rty.Ty) error {
	_, _ = adtName, variant
	return e.Assign(p, rty.TupleTy(fields...))
}

// Clone deep-copies the environment, used when a terminator fans out
// into several successors that each need an independent env to mutate
// (spec.md §4.3's SwitchInt/Call handling).
func (e *Env) Clone() *Env {
	out := &Env{locals: make(map[int]*localState, len(e.locals)), locs: make(map[string]rty.Ty, len(e.locs))}
	for k, v := range e.locals {
		cp := *v
		out.locals[k] = &cp
	}
	for k, v := range e.locs {
		out.locs[k] = v
	}
	return out
}

// Shape is the widened per-local/per-location type an environment
// reduces to at a join point: every indexed type becomes an existential
// hole, so ShapeMode can infer one shared shape across every
// predecessor before RefineMode commits to real kvars for it (spec.md
// §4.3/§4.5's shape-then-refine two-pass structure).
type Shape struct {
	Scope  reftree.Scope
	Locals map[int]rty.Ty
	Locs   map[string]rty.Ty
}

func widen(ty rty.Ty) rty.Ty {
	if ty.Kind == rty.TIndexed {
		return rty.Exists(*ty.Base, rty.HolePred)
	}
	return ty
}

// IntoShape widens e into a join shape under the given scope (spec.md
// §4.5's BasicBlockEnvShape).
func (e *Env) IntoShape(scope reftree.Scope) Shape {
	s := Shape{Scope: scope, Locals: map[int]rty.Ty{}, Locs: map[string]rty.Ty{}}
	for k, v := range e.locals {
		s.Locals[k] = widen(v.ty)
	}
	for k, v := range e.locs {
		s.Locs[k] = widen(v)
	}
	return s
}

// BasicBlockEnv is a join-point shape with every hole resolved to a
// concrete kvar (spec.md §4.5): what RefineMode checks a predecessor's
// environment against via CheckGoto.
type BasicBlockEnv struct {
	Scope  reftree.Scope
	Locals map[int]rty.Ty
	Locs   map[string]rty.Ty
}

// CheckGoto checks that e is a subtype of target at every local and
// location, recording one proof obligation per indexed type's predicate
// (spec.md §4.4's structural subtyping / join check). subtype compares
// index expressions directly; this checker core does not attempt a more
// general entailment beyond syntactic equality plus the obligations
// constrgen separately raises for predicate-qualified types.
func (e *Env) CheckGoto(rcx *reftree.Ctxt, target *BasicBlockEnv, tag string) error {
	for local, want := range target.Locals {
		have, ok := e.locals[local]
		if !ok {
			return diagnostics.NewError(diagnostics.ErrQuery, diagnostics.Pos{},
				fmt.Sprintf("goto target expects local _%d, not present in predecessor", local))
		}
		if err := checkSubtype(rcx, have.ty, want, tag); err != nil {
			return err
		}
	}
	for loc, want := range target.Locs {
		have, ok := e.locs[loc]
		if !ok {
			continue
		}
		if err := checkSubtype(rcx, have, want, tag); err != nil {
			return err
		}
	}
	return nil
}

func checkSubtype(rcx *reftree.Ctxt, have, want rty.Ty, tag string) error {
	if want.Kind != rty.TIndexed || have.Kind != rty.TIndexed {
		return nil
	}
	if want.ExPred.Kind == rty.PredExpr {
		rcx.CheckPred(want.ExPred.Expr, tag)
	}
	for i := range want.Indices {
		if i >= len(have.Indices) {
			break
		}
		rcx.CheckPred(rty.Bin(rty.OpEq, have.Indices[i], want.Indices[i]), tag)
	}
	return nil
}
