// Package surface is the minimal surface syntax tree for refined items —
// the input Parameter Gathering (spec.md §4.1, component A) walks. It
// models the relevant shape of flux_syntax::surface (see
// original_source/crates/flux-desugar/src/desugar/gather.rs) without
// carrying the rest of a surface-language grammar, which belongs to the
// compiler frontend spec.md §1 treats as an external collaborator.
//
// Like internal/rsort.Sort, each node kind is a tagged union rather than a
// family of structs implementing a Node interface: the gatherer and
// lowering passes pervasively pattern-match on shape (spec.md §9 calls
// for "sum types plus an exhaustive visitor"), and a single switch-based
// walker is less boilerplate here than an Accept(visitor) per kind.
package surface

// BindKind distinguishes the two implicit-binder syntaxes (spec.md §3.1).
type BindKind int

const (
	BindAt BindKind = iota
	BindPound
)

func (k BindKind) String() string {
	if k == BindAt {
		return "@"
	}
	return "#"
}

// Ident is a surface identifier with its source position.
type Ident struct {
	Name string
	Line int
	Col  int
}

// TyKind discriminates surface type syntax.
type TyKind int

const (
	TyIndexed TyKind = iota
	TyBase
	TyRef
	TyConstr
	TyTuple
	TyArray
	TyExists
	TyGeneralExists
	TyImplTrait
)

// Ty is a surface type (spec.md §4.1 "recurse into types").
type Ty struct {
	Kind TyKind

	// TyIndexed / TyBase
	BaseTy *BaseTy

	// TyIndexed
	Indices *Indices

	// TyRef
	RefMut bool
	Inner  *Ty

	// TyConstr: a predicate-qualified type `{b: T | p}` desugared so the
	// predicate itself carries no new binder (gather.rs treats it like Ref).
	ConstrInner *Ty

	// TyTuple / TyArray
	Tys []Ty

	// TyExists: `T[@n]` sugar, `bind` is a single implicit index.
	ExBind *Ident

	// TyGeneralExists: `{n: int | p}` with arbitrary declared params.
	// ExTy is the type being refined inside the existential's scope.
	Params []RefineParam
	ExTy   *Ty
	Pred   *Expr

	// TyImplTrait
	Bounds []Path
}

// BaseTy is the head of an indexed or base type.
type BaseTy struct {
	Path  *Path  // BaseTyKind::Path
	Slice *Ty    // BaseTyKind::Slice
}

// Path is a (possibly generic, possibly refined) type path, e.g. `RVec<T>`.
type Path struct {
	Head     string
	IsBox    bool
	Refine   []RefineArg  // refinement args applied directly to the path
	Generics []GenericArg // type-level generic arguments
	Hole     bool         // a type hole `_`, skipped entirely (gather.rs CODESYNC note)
}

// GenericArg is one generic argument to a path.
type GenericArg struct {
	Ty         *Ty
	Constraint *Ty // GenericArg::Constraint(_, ty)
}

// Indices is the index list attached to an TyIndexed, e.g. `i32[@n]`.
type Indices struct {
	Args []RefineArg
}

// RefineArgKind discriminates a single refinement argument.
type RefineArgKind int

const (
	RefineBind RefineArgKind = iota
	RefineAbs
	RefineExpr
)

// RefineArg is one entry in an index list or a path's refinement args.
type RefineArg struct {
	Kind RefineArgKind

	// RefineBind
	Bind Ident
	Bk   BindKind

	// RefineAbs: `|a, b| e` function abstraction introducing its own scope.
	AbsParams []RefineParam

	// RefineExpr
	Expr *Expr
}

// RefineParam is an explicitly-sorted refinement parameter declaration,
// e.g. `n: int` in `fn<refine n: int>(...)`.
type RefineParam struct {
	Name     Ident
	SortName string
	SortArgs []string
}

// RefinedBy lists the explicit refinement parameters of a struct/alias.
type RefinedBy struct {
	Params []RefineParam
}

func (r *RefinedBy) AllParams() []RefineParam {
	if r == nil {
		return nil
	}
	return r.Params
}

// Expr is a surface refinement expression, needed only so the gatherer's
// use-checking pass (spec.md §4.1 Pass 2) can walk it looking for
// applications and variable references.
type ExprKind int

const (
	ExprApp ExprKind = iota
	ExprVar
	ExprOther
)

type Expr struct {
	Kind ExprKind
	Fun  *Ident   // ExprApp
	Args []Expr   // ExprApp
	Var  *Ident   // ExprVar (single-segment qpath)
	Subs []Expr   // ExprOther: generic children to keep walking
}

// ArgKind discriminates a function argument's binding form.
type ArgKind int

const (
	ArgConstr ArgKind = iota
	ArgStrgRef
	ArgTy
)

// Arg is one function-signature argument (spec.md §4.1
// "gather_params_fun_arg").
type Arg struct {
	Kind ArgKind

	// ArgConstr: `x: T` with a predicate constraint, the "Colon" case.
	Bind Ident
	Path *Path

	// ArgStrgRef: `&strg T` introducing a fresh location parameter.
	Loc *Ident
	Ty  *Ty

	// ArgTy: a plain binder `x: T` without a constraint, or no bind at all.
	OptBind *Ident
}

// WhereBoundPredicate is a `where T: Trait` clause.
type WhereBoundPredicate struct {
	BoundedTy *Ty
	Bounds    []Path
}

// ConstraintKind discriminates `ensures` clauses.
type ConstraintKind int

const (
	ConstraintType ConstraintKind = iota
	ConstraintPred
)

type Constraint struct {
	Kind ConstraintKind
	Loc  Ident // ConstraintType
	Ty   *Ty   // ConstraintType
	Pred *Expr // ConstraintPred
}

// FnRetTyKind distinguishes a typed return from a never-returning fn.
type FnRetTyKind int

const (
	RetTy FnRetTyKind = iota
	RetNever
)

type FnRetTy struct {
	Kind FnRetTyKind
	Ty   *Ty
}

// GenericParam is one entry of `fn<refine n: int>`.
type GenericParam struct {
	Name     Ident
	IsRefine bool
	SortName string
}

// FnSig is a function's refinement signature (spec.md §4.1
// "gather_params_fn_sig").
type FnSig struct {
	Generics   []GenericParam
	Requires   *Expr
	Args       []Arg
	Returns    FnRetTy
	Ensures    []Constraint
	Predicates []WhereBoundPredicate
}

// StructDef is a refined struct declaration.
type StructDef struct {
	RefinedBy *RefinedBy
	Fields    []Ty
}

// VariantRet is an enum variant's declared return (index expression).
type VariantRet struct {
	Path    Path
	Indices Indices
}

// VariantDef is one enum variant.
type VariantDef struct {
	Fields []Ty
	Ret    *VariantRet
}

// TyAlias is a refinement type alias.
type TyAlias struct {
	RefinedBy RefinedBy
	Ty        Ty
}
