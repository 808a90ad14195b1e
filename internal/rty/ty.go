package rty

import "fmt"

// BaseTyKind discriminates the head constructor of a base type.
type BaseTyKind int

const (
	BTInt BaseTyKind = iota
	BTUint
	BTBool
	BTFloat
	BTAdt
)

// BaseTy is an unrefined base type (spec.md §3.1): a builtin scalar or
// an application of a user ADT to generic type arguments.
type BaseTy struct {
	Kind BaseTyKind

	// BTAdt
	AdtName string
	Generic []Ty

	// BTInt/BTUint bit width, 0 meaning pointer-sized.
	Width int
}

func Int(width int) BaseTy  { return BaseTy{Kind: BTInt, Width: width} }
func Uint(width int) BaseTy { return BaseTy{Kind: BTUint, Width: width} }
func Bool() BaseTy          { return BaseTy{Kind: BTBool} }
func Adt(name string, generics ...Ty) BaseTy {
	return BaseTy{Kind: BTAdt, AdtName: name, Generic: generics}
}

func (b BaseTy) String() string {
	switch b.Kind {
	case BTInt:
		return fmt.Sprintf("i%d", b.Width)
	case BTUint:
		return fmt.Sprintf("u%d", b.Width)
	case BTBool:
		return "bool"
	case BTFloat:
		return "f64"
	case BTAdt:
		return b.AdtName
	default:
		return "?"
	}
}

// TyKind discriminates the top-level shape of a refined type (spec.md
// §3.1's "Nested tagged types").
type TyKind int

const (
	TIndexed TyKind = iota
	TExists
	TPtr
	TRef
	TParam
	TTuple
	TDiscr
	TClosure
	TGenerator
	TNever
)

// RefKind is Go's version of the original `&`/`&mut` distinction.
type RefKind int

const (
	RefShr RefKind = iota
	RefMut
)

// Pred is a type's refinement predicate: either an unsolved hole the
// shape pass leaves for later, or a concrete expression.
type PredKind int

const (
	PredHole PredKind = iota
	PredExpr
)

type Pred struct {
	Kind PredKind
	Expr Expr
}

var HolePred = Pred{Kind: PredHole}

func ExprPred(e Expr) Pred { return Pred{Kind: PredExpr, Expr: e} }

// Ty is a refinement type (spec.md §3.1).
type Ty struct {
	Kind TyKind

	// TIndexed / TExists
	Base *BaseTy

	// TIndexed: the concrete index expressions applied to Base.
	Indices []Expr

	// TExists: the predicate `{v: Base | Pred}` scopes over the bound
	// variable implicit in Base's index positions.
	ExPred Pred

	// TPtr: a strong reference to a location, tracked precisely in the
	// type environment rather than through its pointee's refinement.
	Loc string

	// TRef
	RefKind RefKind
	Inner   *Ty

	// TParam: a type-parameter placeholder, opaque to the checker.
	ParamName string

	// TTuple
	Tys []Ty

	// TDiscr: an enum discriminant index, carrying the ADT name so
	// pattern-match refinement (spec.md §5's SwitchInt handling) can
	// narrow it per arm.
	AdtName string

	// TClosure / TGenerator: the proof obligations a closure/generator
	// value still owes once it is finally called/resumed (spec.md §3's
	// "sub-checking" obligations, supplementing the distilled spec).
	ObligSig *FnSig
}

func Indexed(base BaseTy, indices ...Expr) Ty {
	return Ty{Kind: TIndexed, Base: &base, Indices: indices}
}

func Exists(base BaseTy, pred Pred) Ty {
	return Ty{Kind: TExists, Base: &base, ExPred: pred}
}

func Ptr(loc string) Ty { return Ty{Kind: TPtr, Loc: loc} }

func Ref(kind RefKind, inner Ty) Ty { return Ty{Kind: TRef, RefKind: kind, Inner: &inner} }

func ParamTy(name string) Ty { return Ty{Kind: TParam, ParamName: name} }

func TupleTy(tys ...Ty) Ty { return Ty{Kind: TTuple, Tys: tys} }

func Discr(adt string) Ty { return Ty{Kind: TDiscr, AdtName: adt} }

func Closure(oblig *FnSig) Ty { return Ty{Kind: TClosure, ObligSig: oblig} }

func Generator(oblig *FnSig) Ty { return Ty{Kind: TGenerator, ObligSig: oblig} }

var Never = Ty{Kind: TNever}

func (t Ty) String() string {
	switch t.Kind {
	case TIndexed:
		return fmt.Sprintf("%s%s", t.Base, joinExprsBracketed(t.Indices))
	case TExists:
		if t.ExPred.Kind == PredHole {
			return fmt.Sprintf("%s{?}", t.Base)
		}
		return fmt.Sprintf("%s{%s}", t.Base, t.ExPred.Expr)
	case TPtr:
		return fmt.Sprintf("ptr(%s)", t.Loc)
	case TRef:
		if t.RefKind == RefMut {
			return fmt.Sprintf("&mut %s", t.Inner)
		}
		return fmt.Sprintf("&%s", t.Inner)
	case TParam:
		return t.ParamName
	case TTuple:
		return fmt.Sprintf("(%s)", joinTys(t.Tys))
	case TDiscr:
		return fmt.Sprintf("discr(%s)", t.AdtName)
	case TClosure:
		return "closure{..}"
	case TGenerator:
		return "generator{..}"
	case TNever:
		return "!"
	default:
		return "?"
	}
}

func joinExprsBracketed(es []Expr) string {
	if len(es) == 0 {
		return ""
	}
	return fmt.Sprintf("[%s]", joinExprs(es))
}

func joinTys(ts []Ty) string {
	out := ""
	for i, t := range ts {
		if i > 0 {
			out += ", "
		}
		out += t.String()
	}
	return out
}

// ConstrKind discriminates a signature-level constraint.
type ConstrKind int

const (
	ConstrType ConstrKind = iota
	ConstrPred
)

// Constr is a `requires`/`ensures` entry (spec.md §3.1's Constr,
// grounded on core.rs's `Constr`).
type Constr struct {
	Kind ConstrKind
	Loc  string
	Ty   Ty
	Pred Expr
}

func TypeConstr(loc string, ty Ty) Constr { return Constr{Kind: ConstrType, Loc: loc, Ty: ty} }
func PredConstr(p Expr) Constr           { return Constr{Kind: ConstrPred, Pred: p} }

// Param is a function-level refinement parameter once lowered: a fresh
// name and its sort, ready to be bound as a ForAll in the refinement
// tree (spec.md §4.2).
type Param struct {
	Name string
	Sort Sort
}

// FnSig is a function's lowered refinement signature (spec.md §3.1,
// core.rs's `FnSig`): what the checker assumes on entry and must
// establish on every return.
type FnSig struct {
	Params   []Param
	Requires []Constr
	Args     []Ty
	Ret      Ty
	Ensures  []Constr
}
