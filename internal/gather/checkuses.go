package gather

import (
	"github.com/liquidgo/liquidgo/internal/diagnostics"
	"github.com/liquidgo/liquidgo/internal/surface"
)

// useChecker replays a gathered item's surface tree looking for variable
// references, so it can mark `x: T` params as used and reject any use of
// a SyntaxError param (spec.md §4.1's "report an error if they are
// used"). Grounded on gather.rs's `CheckParamUses` visitor.
type useChecker struct {
	env *Env[rawParam]
	err error
}

func (u *useChecker) checkUse(id surface.Ident) {
	if u.err != nil {
		return
	}
	scopeID, p, ok := u.env.GetWithScope(id.Name)
	if !ok {
		return
	}
	if p.kind == rawSyntaxError {
		u.err = diagnostics.NewError(diagnostics.ErrResolve, pos(id),
			"value `"+id.Name+"` does not have a valid refinement type to be used as an index")
		return
	}
	u.env.MarkUsed(scopeID, id.Name)
}

func (u *useChecker) visitExpr(e *surface.Expr) {
	if u.err != nil || e == nil {
		return
	}
	switch e.Kind {
	case surface.ExprApp:
		if e.Fun != nil {
			u.checkUse(*e.Fun)
		}
		for i := range e.Args {
			u.visitExpr(&e.Args[i])
		}
	case surface.ExprVar:
		if e.Var != nil {
			u.checkUse(*e.Var)
		}
	case surface.ExprOther:
		for i := range e.Subs {
			u.visitExpr(&e.Subs[i])
		}
	}
}

func (u *useChecker) visitConstraint(c *surface.Constraint) {
	if u.err != nil {
		return
	}
	switch c.Kind {
	case surface.ConstraintType:
		u.checkUse(c.Loc)
	case surface.ConstraintPred:
		u.visitExpr(c.Pred)
	}
}

func (u *useChecker) visitTy(ty *surface.Ty) {
	if u.err != nil || ty == nil {
		return
	}
	switch ty.Kind {
	case surface.TyExists:
		u.env.Push(ScopeID{Kind: ScopeExists, NodeID: identNodeID(ty.ExBind)})
		u.visitBty(ty.BaseTy)
		u.visitExpr(ty.Pred)
		u.env.Exit()
	case surface.TyGeneralExists:
		var firstParam *surface.Ident
		if len(ty.Params) > 0 {
			firstParam = &ty.Params[0].Name
		}
		u.env.Push(ScopeID{Kind: ScopeExists, NodeID: identNodeID(firstParam)})
		u.visitTy(ty.ExTy)
		if ty.Pred != nil {
			u.visitExpr(ty.Pred)
		}
		u.env.Exit()
	case surface.TyIndexed:
		u.visitBty(ty.BaseTy)
		u.visitIndices(ty.Indices)
	case surface.TyBase:
		u.visitBty(ty.BaseTy)
	case surface.TyRef:
		u.visitTy(ty.Inner)
	case surface.TyConstr:
		u.visitTy(ty.ConstrInner)
	case surface.TyTuple, surface.TyArray:
		for i := range ty.Tys {
			u.visitTy(&ty.Tys[i])
		}
	case surface.TyImplTrait:
		for _, b := range ty.Bounds {
			u.visitPath(&b)
		}
	}
}

func (u *useChecker) visitBty(bty *surface.BaseTy) {
	if bty == nil {
		return
	}
	if bty.Slice != nil {
		u.visitTy(bty.Slice)
		return
	}
	u.visitPath(bty.Path)
}

func (u *useChecker) visitPath(path *surface.Path) {
	if path == nil {
		return
	}
	for _, g := range path.Generics {
		if g.Constraint != nil {
			u.visitTy(g.Constraint)
		}
		u.visitTy(g.Ty)
	}
}

func (u *useChecker) visitIndices(idx *surface.Indices) {
	if idx == nil {
		return
	}
	for _, arg := range idx.Args {
		if arg.Kind == surface.RefineExpr {
			u.visitExpr(arg.Expr)
		}
	}
}

func (u *useChecker) visitFunArg(arg *surface.Arg) {
	switch arg.Kind {
	case surface.ArgConstr:
		u.visitPath(arg.Path)
	case surface.ArgStrgRef:
		u.visitTy(arg.Ty)
	case surface.ArgTy:
		u.visitTy(arg.Ty)
	}
}

func checkFnSigUses(env *Env[rawParam], sig *surface.FnSig, fnID int) error {
	u := &useChecker{env: env}
	for _, p := range sig.Predicates {
		u.visitTy(p.BoundedTy)
		for _, b := range p.Bounds {
			u.visitPath(&b)
		}
	}
	if sig.Requires != nil {
		u.visitExpr(sig.Requires)
	}
	for i := range sig.Args {
		u.visitFunArg(&sig.Args[i])
	}

	env.Push(ScopeID{Kind: ScopeFnOutput, NodeID: fnID})
	if sig.Returns.Kind == surface.RetTy {
		u.visitTy(sig.Returns.Ty)
	}
	for i := range sig.Ensures {
		u.visitConstraint(&sig.Ensures[i])
	}
	env.Exit()

	return u.err
}

func checkVariantUses(env *Env[rawParam], def *surface.VariantDef) error {
	u := &useChecker{env: env}
	for i := range def.Fields {
		u.visitTy(&def.Fields[i])
	}
	if def.Ret != nil {
		u.visitPath(&def.Ret.Path)
		u.visitIndices(&def.Ret.Indices)
	}
	return u.err
}
