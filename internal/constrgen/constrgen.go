// Package constrgen is the constraint generator (spec.md §4.4,
// component F): the structural subtyping rules and call-site checks
// that turn a function-call or return's argument/result types into
// proof obligations recorded on an internal/reftree.Ctxt.
//
// Grounded on original_source's crates/flux-refineck/src/checker.rs's
// `check_fn_call`, `check_ret`, and the subtyping it performs through
// `fn_subtyping`/`checker_trait::Sub` (not independently retrieved, so
// reconstructed from checker.rs's call sites), plus constraint.rs's
// shape for what a checked predicate ultimately becomes.
package constrgen

import (
	"fmt"

	"github.com/liquidgo/liquidgo/internal/diagnostics"
	"github.com/liquidgo/liquidgo/internal/reftree"
	"github.com/liquidgo/liquidgo/internal/rsort"
	"github.com/liquidgo/liquidgo/internal/rty"
)

// CheckPred records that p must hold given everything already assumed
// at rcx (spec.md §4.4's most primitive obligation).
func CheckPred(rcx *reftree.Ctxt, p rty.Expr, tag string) {
	rcx.CheckPred(p, tag)
}

// Subtype checks that have is a subtype of want (spec.md §4.4's
// structural subtyping): indexed types require their index expressions
// to satisfy want's refinement predicate; references require their
// pointee types to match by the same rule (covariant for `&`,
// invariant for `&mut`); tuples check element-wise.
func Subtype(rcx *reftree.Ctxt, have, want rty.Ty, tag string) error {
	switch want.Kind {
	case rty.TIndexed:
		if have.Kind != rty.TIndexed {
			return fmt.Errorf("subtype: expected indexed type %s, got %s", want, have)
		}
		if have.Base.Kind != want.Base.Kind {
			return fmt.Errorf("subtype: base mismatch %s vs %s", have.Base, want.Base)
		}
		for i := range want.Indices {
			if i >= len(have.Indices) {
				break
			}
			rcx.CheckPred(rty.Bin(rty.OpEq, have.Indices[i], want.Indices[i]), tag)
		}
		return nil
	case rty.TExists:
		// An existential on the expected side is proven by witnessing its
		// bound variable with have's own index and checking the
		// predicate holds for that witness (spec.md §4.4's
		// "existential introduction" rule) — not by unpacking a fresh,
		// otherwise-unconstrained variable, which would ask the solver to
		// prove an unrelated equality.
		if have.Kind != rty.TIndexed || len(have.Indices) == 0 {
			return fmt.Errorf("subtype: expected an indexed witness for %s, got %s", want, have)
		}
		if want.ExPred.Kind == rty.PredExpr {
			rcx.CheckPred(substWitness(want.ExPred.Expr, have.Indices[0]), tag)
		}
		return nil
	case rty.TRef:
		if have.Kind != rty.TRef {
			return fmt.Errorf("subtype: expected a reference, got %s", have)
		}
		if want.RefKind == rty.RefMut && have.RefKind != rty.RefMut {
			return fmt.Errorf("subtype: expected &mut, got &")
		}
		if err := Subtype(rcx, *have.Inner, *want.Inner, tag); err != nil {
			return err
		}
		if want.RefKind == rty.RefMut {
			return Subtype(rcx, *want.Inner, *have.Inner, tag)
		}
		return nil
	case rty.TTuple:
		if have.Kind != rty.TTuple || len(have.Tys) != len(want.Tys) {
			return fmt.Errorf("subtype: tuple arity mismatch")
		}
		for i := range want.Tys {
			if err := Subtype(rcx, have.Tys[i], want.Tys[i], tag); err != nil {
				return err
			}
		}
		return nil
	case rty.TPtr:
		if have.Kind != rty.TPtr {
			return fmt.Errorf("subtype: expected a strong reference, got %s", have)
		}
		return nil
	case rty.TParam, rty.TNever, rty.TDiscr, rty.TClosure, rty.TGenerator:
		return nil
	default:
		return fmt.Errorf("subtype: unhandled type kind")
	}
}

// substWitness substitutes the De Bruijn-bound variable ^0 in e with
// witness, the same substitution internal/reftree performs when
// unpacking on the producer side, reused here for the consumer-side
// existential-introduction rule Subtype needs.
func substWitness(e rty.Expr, witness rty.Expr) rty.Expr {
	switch e.Kind {
	case rty.EVarExpr:
		if e.Var.Kind == rty.VarBound && e.Var.Index == 0 {
			return witness
		}
		return e
	case rty.EBinaryOp:
		return rty.Bin(e.BinOp, substWitness(*e.L, witness), substWitness(*e.R, witness))
	case rty.EUnaryOp:
		return rty.Un(e.UnOp, substWitness(*e.X, witness))
	case rty.EApp:
		args := make([]rty.Expr, len(e.Args))
		for i, a := range e.Args {
			args[i] = substWitness(a, witness)
		}
		return rty.App(e.Func, args...)
	default:
		return e
	}
}

// substParams replaces sig's bound refinement parameters (referenced by
// De Bruijn index into the signature's own Params list) with the fresh
// free variables rcx.DefineVar minted for each, one per call (spec.md
// §4.2's "instantiate a callee's own forall-bound parameters at the call
// site").
func substParams(e rty.Expr, vars []rty.Var) rty.Expr {
	switch e.Kind {
	case rty.EVarExpr:
		if e.Var.Kind == rty.VarBound && int(e.Var.Index) < len(vars) {
			return rty.VarExpr(vars[e.Var.Index])
		}
		return e
	case rty.EBinaryOp:
		return rty.Bin(e.BinOp, substParams(*e.L, vars), substParams(*e.R, vars))
	case rty.EUnaryOp:
		return rty.Un(e.UnOp, substParams(*e.X, vars))
	case rty.EApp:
		args := make([]rty.Expr, len(e.Args))
		for i, a := range e.Args {
			args[i] = substParams(a, vars)
		}
		return rty.App(e.Func, args...)
	default:
		return e
	}
}

// CheckFnCall checks a call to sig with actual argument types args,
// instantiating sig's refinement parameters as fresh variables, assuming
// its `requires` clauses, checking each argument is a subtype of the
// corresponding (instantiated) formal, and returning the instantiated
// return type (spec.md §4.4 "check_fn_call").
func CheckFnCall(rcx *reftree.Ctxt, sig *rty.FnSig, args []rty.Ty, tag string) (rty.Ty, error) {
	if len(args) != len(sig.Args) {
		return rty.Ty{}, diagnostics.NewError(diagnostics.ErrInvalidGenericArg, diagnostics.Pos{},
			fmt.Sprintf("call expects %d arguments, got %d", len(sig.Args), len(args)))
	}
	vars := make([]rty.Var, len(sig.Params))
	for i, p := range sig.Params {
		vars[i] = rcx.DefineVar(p.Sort)
	}
	for _, req := range sig.Requires {
		if req.Kind == rty.ConstrPred {
			rcx.AssumePred(substParams(req.Pred, vars))
		}
	}
	for i, formal := range sig.Args {
		if err := Subtype(rcx, args[i], substTyParams(formal, vars), tag); err != nil {
			return rty.Ty{}, fmt.Errorf("argument %d: %w", i, err)
		}
	}
	for _, ens := range sig.Ensures {
		if ens.Kind == rty.ConstrPred {
			rcx.AssumePred(substParams(ens.Pred, vars))
		}
	}
	return substTyParams(sig.Ret, vars), nil
}

// substTyParams applies substParams to every index/predicate expression
// reachable from ty, the type-level counterpart substParams needs so a
// formal parameter's own bound refinement variables are instantiated
// exactly like sig.Requires/sig.Ensures are (spec.md §4.2's "instantiate a
// callee's own forall-bound parameters at the call site" applies equally
// to the signature's types, not just its predicate clauses).
func substTyParams(ty rty.Ty, vars []rty.Var) rty.Ty {
	switch ty.Kind {
	case rty.TIndexed:
		indices := make([]rty.Expr, len(ty.Indices))
		for i, idx := range ty.Indices {
			indices[i] = substParams(idx, vars)
		}
		return rty.Indexed(*ty.Base, indices...)
	case rty.TExists:
		if ty.ExPred.Kind != rty.PredExpr {
			return ty
		}
		return rty.Exists(*ty.Base, rty.ExprPred(substParams(ty.ExPred.Expr, vars)))
	case rty.TRef:
		inner := substTyParams(*ty.Inner, vars)
		return rty.Ref(ty.RefKind, inner)
	case rty.TTuple:
		tys := make([]rty.Ty, len(ty.Tys))
		for i, t := range ty.Tys {
			tys[i] = substTyParams(t, vars)
		}
		return rty.TupleTy(tys...)
	default:
		return ty
	}
}

// CheckRet checks that a function's actual return type is a subtype of
// its declared one (spec.md §4.4 "check_ret").
func CheckRet(rcx *reftree.Ctxt, actual, expected rty.Ty, tag string) error {
	return Subtype(rcx, actual, expected, tag)
}

// CheckMkArray checks an array literal's element types against a single
// widened element type, the way an array's type can only carry one
// refinement for every slot (spec.md §3's supplemented array-literal
// feature, grounded on checker.rs's `check_mk_array`). It returns the
// array's element type once every literal element has been checked
// against it.
func CheckMkArray(rcx *reftree.Ctxt, elemBase rty.BaseTy, elems []rty.Ty, tag string) (rty.Ty, error) {
	v := rcx.DefineVar(rsortOf(elemBase))
	widened := rty.Indexed(elemBase, rty.VarExpr(v))
	for i, elem := range elems {
		if err := Subtype(rcx, elem, widened, tag); err != nil {
			return rty.Ty{}, fmt.Errorf("array element %d: %w", i, err)
		}
	}
	return widened, nil
}

// rsortOf is the logical sort a scalar base type's index lives in
// (spec.md §3.2's sort lattice): every integer width shares Int, since
// the lattice itself is untyped by bit width.
func rsortOf(b rty.BaseTy) rsort.Sort {
	switch b.Kind {
	case rty.BTBool:
		return rsort.Bool
	default:
		return rsort.Int
	}
}
