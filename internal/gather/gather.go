package gather

import (
	"github.com/liquidgo/liquidgo/internal/diagnostics"
	"github.com/liquidgo/liquidgo/internal/rsort"
	"github.com/liquidgo/liquidgo/internal/surface"
)

// TypePos tracks where in a type implicit binders are legal (spec.md
// §4.1). Grounded on gather.rs's `TypePos` enum.
type TypePos int

const (
	// PosInput allows `@n` params: function arguments, enum variant fields.
	PosInput TypePos = iota
	// PosOutput allows `#n` params: return types, `ensures` clauses.
	PosOutput
	// PosField disallows implicit binders entirely: struct fields.
	PosField
	// PosGeneric disallows implicit binders, except inside a Box.
	PosGeneric
	// PosOther disallows implicit binders: tuple/array elements, predicate
	// bounds, existential bodies.
	PosOther
)

func (tp TypePos) isBinderAllowed(bk surface.BindKind) bool {
	switch tp {
	case PosInput:
		return bk == surface.BindAt
	case PosOutput:
		return bk == surface.BindPound
	default:
		return false
	}
}

// BoxResolver answers whether a path resolves to the standard Box type,
// the one generic position (spec.md §4.1, gather.rs's `genv.is_box`)
// that still allows implicit binders in its type argument. This is the
// external-collaborator boundary a compiler frontend satisfies.
type BoxResolver interface {
	IsBox(path *surface.Path) bool
}

// Ctx drives gathering for a single item. SortResolver resolves surface
// sort syntax to rsort.Sort (component B's boundary); Box answers the
// Box-generic special case.
type Ctx struct {
	Sorts rsort.Resolver
	Box   BoxResolver
}

// nodeCounter hands out ScopeIDs a unique NodeID per call, standing in
// for the surface tree's own node ids (which this minimal surface AST
// does not carry, unlike the original's node_id field on every node).
type nodeCounter struct{ next int }

func (c *nodeCounter) id() int {
	c.next++
	return c.next
}

// GatherParamsTypeAlias gathers a type alias's explicit params plus any
// implicit params legal in TyKind::Other position (gather.rs
// `gather_params_type_alias`).
func (c *Ctx) GatherParamsTypeAlias(alias *surface.TyAlias) ([]Param, error) {
	nc := &nodeCounter{}
	env := NewEnv[rawParam](ScopeID{Kind: ScopeTyAlias, NodeID: nc.id()})

	named, err := c.resolveParams(alias.RefinedBy.Params)
	if err != nil {
		return nil, err
	}
	if err := env.Extend(named); err != nil {
		return nil, err
	}

	if err := c.gatherParamsTy(nil, &alias.Ty, PosOther, env); err != nil {
		return nil, err
	}
	return intoDesugarEnv(env), nil
}

// GatherParamsStruct gathers a struct's explicit params plus its
// fields, which disallow implicit binders entirely (gather.rs
// `gather_params_struct`).
func (c *Ctx) GatherParamsStruct(def *surface.StructDef) ([]Param, error) {
	nc := &nodeCounter{}
	env := NewEnv[rawParam](ScopeID{Kind: ScopeStruct, NodeID: nc.id()})

	named, err := c.resolveParams(def.RefinedBy.AllParams())
	if err != nil {
		return nil, err
	}
	if err := env.Extend(named); err != nil {
		return nil, err
	}

	for i := range def.Fields {
		if err := c.gatherParamsTy(nil, &def.Fields[i], PosField, env); err != nil {
			return nil, err
		}
	}
	return intoDesugarEnv(env), nil
}

// GatherParamsVariant gathers an enum variant's fields (Input position,
// so `@n` is legal) and its declared return indices, then checks that
// every `x: T` binder was actually used (gather.rs
// `gather_params_variant`).
func (c *Ctx) GatherParamsVariant(def *surface.VariantDef) ([]Param, error) {
	nc := &nodeCounter{}
	env := NewEnv[rawParam](ScopeID{Kind: ScopeVariant, NodeID: nc.id()})

	for i := range def.Fields {
		if err := c.gatherParamsTy(nil, &def.Fields[i], PosInput, env); err != nil {
			return nil, err
		}
	}
	if def.Ret != nil {
		if err := c.gatherParamsPath(&def.Ret.Path, PosOther, env); err != nil {
			return nil, err
		}
		if err := c.gatherParamsIndices(&def.Ret.Indices, PosOther, env); err != nil {
			return nil, err
		}
	}

	if err := checkVariantUses(env, def); err != nil {
		return nil, err
	}
	return intoDesugarEnv(env), nil
}

// GatherParamsFnSig gathers a function signature's input scope (args,
// generics, where-predicates) and a nested output scope (return type,
// ensures clauses), then checks `x: T` use across the whole signature
// (gather.rs `gather_params_fn_sig`).
func (c *Ctx) GatherParamsFnSig(sig *surface.FnSig) ([]Param, error) {
	nc := &nodeCounter{}
	fnID := nc.id()
	env := NewEnv[rawParam](ScopeID{Kind: ScopeFnInput, NodeID: fnID})

	if err := c.gatherParamsFnSigInput(sig, env); err != nil {
		return nil, err
	}

	env.Push(ScopeID{Kind: ScopeFnOutput, NodeID: fnID})
	if err := c.gatherParamsFnSigOutput(sig, env); err != nil {
		return nil, err
	}
	env.Exit()

	if err := checkFnSigUses(env, sig, fnID); err != nil {
		return nil, err
	}
	return intoDesugarEnv(env), nil
}

func (c *Ctx) gatherParamsFnSigInput(sig *surface.FnSig, env *Env[rawParam]) error {
	for _, g := range sig.Generics {
		if !g.IsRefine {
			continue
		}
		sort, err := c.Sorts.ResolveSort(g.SortName, nil)
		if err != nil {
			return err
		}
		if err := env.Insert(g.Name.Name, pos(g.Name), explicitParam(sort)); err != nil {
			return err
		}
	}
	for i := range sig.Args {
		if err := c.gatherParamsFunArg(&sig.Args[i], env); err != nil {
			return err
		}
	}
	return c.gatherParamsPredicates(sig.Predicates, env)
}

// gatherParamsPredicates traverses `where` bounds purely to surface
// IllegalBinder errors; synthetic parameters can't legally be declared
// there at all (gather.rs's comment on `gather_params_predicates`).
func (c *Ctx) gatherParamsPredicates(preds []surface.WhereBoundPredicate, env *Env[rawParam]) error {
	for _, p := range preds {
		if p.BoundedTy != nil {
			if err := c.gatherParamsTy(nil, p.BoundedTy, PosOther, env); err != nil {
				return err
			}
		}
		for _, bound := range p.Bounds {
			if err := c.gatherParamsPath(&bound, PosOther, env); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Ctx) gatherParamsFnSigOutput(sig *surface.FnSig, env *Env[rawParam]) error {
	if sig.Returns.Kind == surface.RetTy && sig.Returns.Ty != nil {
		if err := c.gatherParamsTy(nil, sig.Returns.Ty, PosOutput, env); err != nil {
			return err
		}
	}
	for _, cstr := range sig.Ensures {
		if cstr.Kind == surface.ConstraintType {
			if err := c.gatherParamsTy(nil, cstr.Ty, PosOutput, env); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Ctx) gatherParamsFunArg(arg *surface.Arg, env *Env[rawParam]) error {
	switch arg.Kind {
	case surface.ArgConstr:
		if err := env.Insert(arg.Bind.Name, pos(arg.Bind), rawParam{kind: rawColon}); err != nil {
			return err
		}
		return c.gatherParamsPath(arg.Path, PosInput, env)
	case surface.ArgStrgRef:
		if err := env.Insert(arg.Loc.Name, pos(*arg.Loc), explicitParam(rsort.Loc)); err != nil {
			return err
		}
		return c.gatherParamsTy(nil, arg.Ty, PosInput, env)
	case surface.ArgTy:
		return c.gatherParamsTy(arg.OptBind, arg.Ty, PosInput, env)
	default:
		return nil
	}
}

func (c *Ctx) gatherParamsTy(bind *surface.Ident, ty *surface.Ty, posn TypePos, env *Env[rawParam]) error {
	if ty == nil {
		return nil
	}

	markSyntaxErrorBind := func() error {
		if bind != nil {
			return env.Insert(bind.Name, pos(*bind), rawParam{kind: rawSyntaxError})
		}
		return nil
	}

	switch ty.Kind {
	case surface.TyIndexed:
		if err := markSyntaxErrorBind(); err != nil {
			return err
		}
		if err := c.gatherParamsIndices(ty.Indices, posn, env); err != nil {
			return err
		}
		return c.gatherParamsBty(ty.BaseTy, posn, env)

	case surface.TyBase:
		if bind != nil {
			if err := env.Insert(bind.Name, pos(*bind), rawParam{kind: rawColon}); err != nil {
				return err
			}
		}
		return c.gatherParamsBty(ty.BaseTy, posn, env)

	case surface.TyRef, surface.TyConstr:
		if err := markSyntaxErrorBind(); err != nil {
			return err
		}
		inner := ty.Inner
		if ty.Kind == surface.TyConstr {
			inner = ty.ConstrInner
		}
		return c.gatherParamsTy(nil, inner, posn, env)

	case surface.TyTuple:
		if err := markSyntaxErrorBind(); err != nil {
			return err
		}
		for i := range ty.Tys {
			if err := c.gatherParamsTy(nil, &ty.Tys[i], posn, env); err != nil {
				return err
			}
		}
		return nil

	case surface.TyArray:
		if err := markSyntaxErrorBind(); err != nil {
			return err
		}
		var elem *surface.Ty
		if len(ty.Tys) > 0 {
			elem = &ty.Tys[0]
		}
		return c.gatherParamsTy(nil, elem, PosOther, env)

	case surface.TyExists:
		if err := markSyntaxErrorBind(); err != nil {
			return err
		}
		env.Push(ScopeID{Kind: ScopeExists, NodeID: identNodeID(ty.ExBind)})
		if err := env.Insert(ty.ExBind.Name, pos(*ty.ExBind), explicitParam(rsort.Wildcard)); err != nil {
			return err
		}
		if err := c.gatherParamsBty(ty.BaseTy, posn, env); err != nil {
			return err
		}
		env.Exit()
		return nil

	case surface.TyGeneralExists:
		if err := markSyntaxErrorBind(); err != nil {
			return err
		}
		env.Push(ScopeID{Kind: ScopeExists, NodeID: identNodeID(&ty.Params[0].Name)})
		named, err := c.resolveParams(ty.Params)
		if err != nil {
			return err
		}
		if err := env.Extend(named); err != nil {
			return err
		}
		// The body is walked in PosOther, so every `@n`/`#n` index binder
		// inside it is an illegal-binder error, whether or not its name is
		// one of Params. gather.rs does the same to sidestep shadowing
		// semantics it hasn't nailed down; we match that rather than invent
		// a resolution. A nested TyExists binder opens its own scope and is
		// not checked against Params.
		// TODO: allow shadowing once scope lookup can disambiguate it.
		if err := c.gatherParamsTy(nil, ty.ExTy, PosOther, env); err != nil {
			return err
		}
		env.Exit()
		return nil

	case surface.TyImplTrait:
		for _, bound := range ty.Bounds {
			if err := c.gatherParamsPath(&bound, PosOther, env); err != nil {
				return err
			}
		}
		return nil

	default:
		return nil
	}
}

func (c *Ctx) gatherParamsIndices(idx *surface.Indices, posn TypePos, env *Env[rawParam]) error {
	if idx == nil {
		return nil
	}
	for i := range idx.Args {
		if err := c.gatherParamsRefineArg(&idx.Args[i], posn, env); err != nil {
			return err
		}
	}
	return nil
}

func (c *Ctx) gatherParamsRefineArg(arg *surface.RefineArg, posn TypePos, env *Env[rawParam]) error {
	switch arg.Kind {
	case surface.RefineBind:
		if !posn.isBinderAllowed(arg.Bk) {
			return illegalBinderErr(arg.Bind, arg.Bk)
		}
		return env.Insert(arg.Bind.Name, pos(arg.Bind), fromBindKind(arg.Bk == surface.BindPound))
	case surface.RefineAbs:
		env.Push(ScopeID{Kind: ScopeAbs, NodeID: identNodeID(&arg.AbsParams[0].Name)})
		named, err := c.resolveParams(arg.AbsParams)
		if err != nil {
			return err
		}
		if err := env.Extend(named); err != nil {
			return err
		}
		env.Exit()
		return nil
	default:
		return nil
	}
}

func (c *Ctx) gatherParamsPath(path *surface.Path, posn TypePos, env *Env[rawParam]) error {
	if path == nil || path.Hole {
		return nil
	}

	for _, arg := range path.Refine {
		if arg.Kind == surface.RefineBind {
			return illegalBinderErr(arg.Bind, arg.Bk)
		}
	}

	argPos := PosGeneric
	if c.Box != nil && c.Box.IsBox(path) {
		argPos = posn
	}
	for _, arg := range path.Generics {
		if err := c.gatherParamsGenericArg(&arg, argPos, env); err != nil {
			return err
		}
	}
	return nil
}

func (c *Ctx) gatherParamsGenericArg(arg *surface.GenericArg, posn TypePos, env *Env[rawParam]) error {
	if arg.Constraint != nil {
		return c.gatherParamsTy(nil, arg.Constraint, posn, env)
	}
	return c.gatherParamsTy(nil, arg.Ty, posn, env)
}

func (c *Ctx) gatherParamsBty(bty *surface.BaseTy, posn TypePos, env *Env[rawParam]) error {
	if bty == nil {
		return nil
	}
	if bty.Slice != nil {
		return c.gatherParamsTy(nil, bty.Slice, PosOther, env)
	}
	return c.gatherParamsPath(bty.Path, posn, env)
}

func (c *Ctx) resolveParams(params []surface.RefineParam) ([]NamedParam[rawParam], error) {
	out := make([]NamedParam[rawParam], 0, len(params))
	for _, p := range params {
		var args []rsort.Sort
		for _, a := range p.SortArgs {
			s, err := c.Sorts.ResolveSort(a, nil)
			if err != nil {
				return nil, err
			}
			args = append(args, s)
		}
		sort, err := c.Sorts.ResolveSort(p.SortName, args)
		if err != nil {
			return nil, err
		}
		out = append(out, NamedParam[rawParam]{Name: p.Name.Name, Pos: pos(p.Name), Param: explicitParam(sort)})
	}
	return out, nil
}

func pos(id surface.Ident) diagnostics.Pos {
	return diagnostics.Pos{Line: id.Line, Column: id.Col}
}

func identNodeID(id *surface.Ident) int {
	if id == nil {
		return 0
	}
	return id.Line*10000 + id.Col
}

func illegalBinderErr(id surface.Ident, bk surface.BindKind) error {
	return diagnostics.NewError(diagnostics.ErrResolve, pos(id),
		"illegal binder `"+bk.String()+id.Name+"` in this position")
}
