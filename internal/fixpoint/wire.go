// Package fixpoint is the Horn-constraint wire encoder (spec.md §4.5,
// §6, component H): the exact textual format liquid-fixpoint's solver
// binary reads on stdin, plus the encoder that walks a checked
// function's internal/reftree.Tree and internal/kvars.Store to build
// one.
//
// The wire types and their Display syntax are grounded verbatim on
// original_source's crates/flux-fixpoint/src/constraint.rs (read in
// full): Constraint/Sort/Pred/Expr/Func/Proj/Qualifier/BinOp/UnOp/
// Constant and their fmt::Display impls. Go has no generic "Types"
// associated-type trait the way constraint.rs parameterizes
// Constraint<T>; this package fixes Var to string and KVar/Tag to the
// concrete types internal/kvars and internal/diagnostics already use,
// since liquidgo only ever encodes one instantiation of the wire format.
package fixpoint

import (
	"fmt"
	"strings"
)

// BinOp mirrors constraint.rs's BinOp, including its exact Display
// syntax.
type BinOp int

const (
	BinIff BinOp = iota
	BinImp
	BinOr
	BinAnd
	BinEq
	BinNe
	BinGt
	BinGe
	BinLt
	BinLe
	BinAdd
	BinSub
	BinMul
	BinDiv
	BinMod
)

func (op BinOp) String() string {
	names := [...]string{"<=>", "=>", "||", "&&", "=", "/=", ">", ">=", "<", "<=", "+", "-", "*", "/", "mod"}
	if int(op) < len(names) {
		return names[op]
	}
	return "?"
}

type UnOp int

const (
	UnNot UnOp = iota
	UnNeg
)

func (op UnOp) String() string {
	if op == UnNot {
		return "~"
	}
	return "-"
}

// ConstantKind discriminates a wire literal.
type ConstantKind int

const (
	ConstInt ConstantKind = iota
	ConstReal
	ConstBool
)

type Constant struct {
	Kind ConstantKind
	Int  int64
	Real int64
	Bool bool
}

func (c Constant) String() string {
	switch c.Kind {
	case ConstReal:
		return fmt.Sprintf("%d.0", c.Real)
	case ConstBool:
		return fmt.Sprintf("%v", c.Bool)
	default:
		return fmt.Sprintf("%d", c.Int)
	}
}

// SortCtor mirrors constraint.rs's SortCtor, whose Display emits
// liquid-fixpoint's own internal theory names.
type SortCtor int

const (
	CtorSet SortCtor = iota
	CtorMap
)

func (c SortCtor) String() string {
	if c == CtorSet {
		return "Set_Set"
	}
	return "Map_t"
}

// SortKind discriminates the wire Sort union.
type SortKind int

const (
	SInt SortKind = iota
	SBool
	SReal
	SUnit
	SBitVec
	SPair
	SFunc
	SApp
)

type Sort struct {
	Kind SortKind

	// SBitVec
	Width int

	// SPair
	Fst, Snd *Sort

	// SFunc
	Func *PolyFuncSort

	// SApp
	Ctor SortCtor
	Args []Sort
}

var (
	Int  = Sort{Kind: SInt}
	Bool = Sort{Kind: SBool}
	Real = Sort{Kind: SReal}
	Unit = Sort{Kind: SUnit}
)

func BitVec(width int) Sort  { return Sort{Kind: SBitVec, Width: width} }
func Pair(a, b Sort) Sort    { return Sort{Kind: SPair, Fst: &a, Snd: &b} }
func App(c SortCtor, args ...Sort) Sort { return Sort{Kind: SApp, Ctor: c, Args: args} }

// PolyFuncSort is `forall s0..sn. (i0, ..., ik) -> o`, wire-encoded as
// one inputs_and_output vector with the output last (constraint.rs's
// `FuncSort::new`).
type PolyFuncSort struct {
	Params int
	IOs    []Sort // inputs, then output, matching Rust's inputs_and_output
}

func Func(params int, inputs []Sort, output Sort) Sort {
	return Sort{Kind: SFunc, Func: &PolyFuncSort{Params: params, IOs: append(append([]Sort{}, inputs...), output)}}
}

func (s Sort) String() string {
	switch s.Kind {
	case SInt:
		return "int"
	case SBool:
		return "bool"
	case SReal:
		return "real"
	case SUnit:
		return "Unit"
	case SBitVec:
		return fmt.Sprintf("(BitVec Size%d)", s.Width)
	case SPair:
		return fmt.Sprintf("(Pair %s %s)", s.Fst, s.Snd)
	case SFunc:
		return s.Func.String()
	case SApp:
		parts := make([]string, len(s.Args))
		for i, a := range s.Args {
			parts[i] = a.String()
		}
		return fmt.Sprintf("(%s %s)", s.Ctor, strings.Join(parts, " "))
	default:
		return "?"
	}
}

func (f *PolyFuncSort) String() string {
	parts := make([]string, len(f.IOs))
	for i, s := range f.IOs {
		parts[i] = s.String()
	}
	return fmt.Sprintf("(func(%d, [%s]))", f.Params, strings.Join(parts, "; "))
}

// ProjKind is a pair projection.
type ProjKind int

const (
	ProjFst ProjKind = iota
	ProjSnd
)

// FuncRef is a wire Expr application target: either a bound variable of
// function sort, or an interpreted theory function name.
type FuncRef struct {
	IsVar bool
	Var   string
	Itf   string
}

func (f FuncRef) String() string {
	if f.IsVar {
		return f.Var
	}
	return f.Itf
}

// ExprKind discriminates the wire Expr union.
type ExprKind int

const (
	EVar ExprKind = iota
	EConst
	EBinaryOp
	EApp
	EUnaryOp
	EPair
	EProj
	EIfThenElse
	EUnit
)

type Expr struct {
	Kind ExprKind

	Var   string
	Const Constant

	BinOp  BinOp
	L, R   *Expr

	Func FuncRef
	Args []Expr

	UnOp UnOp
	X    *Expr

	Proj ProjKind

	Cond, Then, Else *Expr
}

func VarExpr(name string) Expr           { return Expr{Kind: EVar, Var: name} }
func Lit(c Constant) Expr                { return Expr{Kind: EConst, Const: c} }
func Bin(op BinOp, l, r Expr) Expr       { return Expr{Kind: EBinaryOp, BinOp: op, L: &l, R: &r} }
func Un(op UnOp, x Expr) Expr            { return Expr{Kind: EUnaryOp, UnOp: op, X: &x} }
func Apply(f FuncRef, args ...Expr) Expr { return Expr{Kind: EApp, Func: f, Args: args} }
func PairExpr(a, b Expr) Expr            { return Expr{Kind: EPair, L: &a, R: &b} }
func ProjExpr(e Expr, p ProjKind) Expr   { return Expr{Kind: EProj, L: &e, Proj: p} }
func IfThenElse(c, t, e Expr) Expr {
	return Expr{Kind: EIfThenElse, Cond: &c, Then: &t, Else: &e}
}

var UnitExpr = Expr{Kind: EUnit}

// parenWrap matches constraint.rs's FmtParens: BinaryOp/IfThenElse
// always get wrapped in an extra layer of parens inside a parent
// expression, to dodge liquid-fixpoint's `=` precedence ambiguity.
func parenWrap(e Expr) string {
	if e.Kind == EBinaryOp || e.Kind == EIfThenElse {
		return fmt.Sprintf("(%s)", e)
	}
	return e.String()
}

func (e Expr) String() string {
	switch e.Kind {
	case EVar:
		return e.Var
	case EConst:
		return e.Const.String()
	case EBinaryOp:
		return fmt.Sprintf("%s %s %s", parenWrap(*e.L), e.BinOp, parenWrap(*e.R))
	case EUnaryOp:
		if e.X.Kind == EConst || e.X.Kind == EVar {
			return fmt.Sprintf("%s%s", e.UnOp, e.X)
		}
		return fmt.Sprintf("%s(%s)", e.UnOp, e.X)
	case EPair:
		return fmt.Sprintf("(Pair (%s) (%s))", e.L, e.R)
	case EProj:
		if e.Proj == ProjFst {
			return fmt.Sprintf("(fst %s)", e.L)
		}
		return fmt.Sprintf("(snd %s)", e.L)
	case EUnit:
		return "Unit"
	case EApp:
		parts := make([]string, len(e.Args))
		for i, a := range e.Args {
			parts[i] = parenWrap(a)
		}
		return fmt.Sprintf("(%s %s)", e.Func, strings.Join(parts, " "))
	case EIfThenElse:
		return fmt.Sprintf("if %s then %s else %s", e.Cond, e.Then, e.Else)
	default:
		return "?"
	}
}

// PredKind discriminates the wire Pred union.
type PredKind int

const (
	PAnd PredKind = iota
	PKVar
	PExprP
)

type Pred struct {
	Kind PredKind
	Ands []Pred
	KVid int
	Vars []string
	Expr Expr
}

var TruePred = Pred{Kind: PExprP, Expr: Lit(Constant{Kind: ConstBool, Bool: true})}

func And(ps ...Pred) Pred            { return Pred{Kind: PAnd, Ands: ps} }
func KVarPred(id int, vars []string) Pred { return Pred{Kind: PKVar, KVid: id, Vars: vars} }
func ExprPred(e Expr) Pred           { return Pred{Kind: PExprP, Expr: e} }

func (p Pred) IsTriviallyTrue() bool {
	if p.Kind == PAnd {
		return len(p.Ands) == 0
	}
	return p.Kind == PExprP && p.Expr.Kind == EConst && p.Expr.Const.Kind == ConstBool && p.Expr.Const.Bool
}

func (p Pred) String() string {
	switch p.Kind {
	case PAnd:
		switch len(p.Ands) {
		case 0:
			return "((true))"
		case 1:
			return p.Ands[0].String()
		default:
			parts := make([]string, len(p.Ands))
			for i, a := range p.Ands {
				parts[i] = a.String()
			}
			return fmt.Sprintf("(and %s)", strings.Join(parts, " "))
		}
	case PKVar:
		return fmt.Sprintf("($%d %s)", p.KVid, strings.Join(p.Vars, " "))
	case PExprP:
		return fmt.Sprintf("(%s)", p.Expr)
	default:
		return "?"
	}
}

// predTag renders a head predicate with its optional proof-obligation
// tag, matching constraint.rs's `PredTag` wrapper used at Constraint::Pred.
func predTag(p Pred, tag string) string {
	if p.Kind == PAnd {
		switch len(p.Ands) {
		case 0:
			return "((true))"
		case 1:
			return predTag(p.Ands[0], tag)
		default:
			parts := make([]string, len(p.Ands))
			for i, a := range p.Ands {
				parts[i] = predTag(a, tag)
			}
			return fmt.Sprintf("(and %s)", strings.Join(parts, " "))
		}
	}
	if tag != "" {
		return fmt.Sprintf("(tag %s %q)", p, tag)
	}
	return fmt.Sprintf("(%s)", p)
}

// ConstraintKind discriminates the wire Constraint union.
type ConstraintKind int

const (
	CPred ConstraintKind = iota
	CConj
	CGuard
	CForAll
)

type Constraint struct {
	Kind ConstraintKind

	// CPred
	Pred Pred
	Tag  string

	// CConj
	Conjs []Constraint

	// CGuard
	Body *Constraint

	// CForAll
	Var  string
	Sort Sort
}

var TrueConstraint = Constraint{Kind: CPred, Pred: TruePred}

func PredC(p Pred, tag string) Constraint { return Constraint{Kind: CPred, Pred: p, Tag: tag} }
func Conj(cs ...Constraint) Constraint    { return Constraint{Kind: CConj, Conjs: cs} }
func Guard(p Pred, head Constraint) Constraint {
	return Constraint{Kind: CGuard, Pred: p, Body: &head}
}
func ForAll(v string, sort Sort, body Pred, head Constraint) Constraint {
	return Constraint{Kind: CForAll, Var: v, Sort: sort, Pred: body, Body: &head}
}

// IsConcrete reports whether c has at least one non-trivial head
// predicate, matching constraint.rs's `is_concrete` — a constraint that
// isn't concrete is trivially valid and the solver never needs to run on
// it (spec.md §6's "skip trivial queries").
func (c Constraint) IsConcrete() bool {
	switch c.Kind {
	case CConj:
		for _, sub := range c.Conjs {
			if sub.IsConcrete() {
				return true
			}
		}
		return false
	case CGuard, CForAll:
		return c.Body.IsConcrete()
	case CPred:
		return !c.Pred.IsTriviallyTrue() && predIsConcrete(c.Pred)
	default:
		return false
	}
}

func predIsConcrete(p Pred) bool {
	switch p.Kind {
	case PAnd:
		for _, sub := range p.Ands {
			if predIsConcrete(sub) {
				return true
			}
		}
		return false
	case PKVar:
		return false
	default:
		return true
	}
}

func (c Constraint) String() string {
	switch c.Kind {
	case CPred:
		return predTag(c.Pred, c.Tag)
	case CConj:
		switch len(c.Conjs) {
		case 0:
			return "((true))"
		case 1:
			return c.Conjs[0].String()
		default:
			parts := make([]string, len(c.Conjs))
			for i, sub := range c.Conjs {
				parts[i] = sub.String()
			}
			return fmt.Sprintf("(and\n  %s\n)", strings.Join(parts, "\n  "))
		}
	case CGuard:
		return fmt.Sprintf("(forall ((_ Unit) %s)\n  %s\n)", c.Pred, c.Body)
	case CForAll:
		return fmt.Sprintf("(forall ((%s %s) %s)\n  %s\n)", c.Var, c.Sort, c.Pred, c.Body)
	default:
		return "?"
	}
}

// Qualifier is a user- or default-supplied hint the solver uses to guess
// kvar solutions (spec.md §6).
type Qualifier struct {
	Name   string
	Args   []QualArg
	Body   Expr
	Global bool
}

type QualArg struct {
	Name string
	Sort Sort
}

func (q Qualifier) String() string {
	parts := make([]string, len(q.Args))
	for i, a := range q.Args {
		parts[i] = fmt.Sprintf("(%s %s)", a.Name, a.Sort)
	}
	return fmt.Sprintf("(qualif %s (%s) (%s))", q.Name, strings.Join(parts, " "), q.Body)
}

// DefaultQualifiers mirrors constraint.rs's DEFAULT_QUALIFIERS exactly:
// the five unary zero-comparisons plus the six binary comparisons every
// liquidgo query seeds the solver with (spec.md §6).
var DefaultQualifiers = []Qualifier{
	unaryQual("EqZero", BinEq),
	unaryQual("GtZero", BinGt),
	unaryQual("GeZero", BinGe),
	unaryQual("LtZero", BinLt),
	unaryQual("LeZero", BinLe),
	binaryQual("Eq", BinEq),
	binaryQual("Gt", BinGt),
	binaryQual("Ge", BinGe),
	binaryQual("Lt", BinLt),
	binaryQual("Le", BinLe),
	{
		Name:   "Le1",
		Args:   []QualArg{{Name: "a", Sort: Int}, {Name: "b", Sort: Int}},
		Body:   Bin(BinLe, VarExpr("a"), Bin(BinSub, VarExpr("b"), Lit(Constant{Kind: ConstInt, Int: 1}))),
		Global: true,
	},
}

func unaryQual(name string, op BinOp) Qualifier {
	return Qualifier{
		Name:   name,
		Args:   []QualArg{{Name: "v", Sort: Int}},
		Body:   Bin(op, VarExpr("v"), Lit(Constant{Kind: ConstInt})),
		Global: true,
	}
}

func binaryQual(name string, op BinOp) Qualifier {
	return Qualifier{
		Name:   name,
		Args:   []QualArg{{Name: "a", Sort: Int}, {Name: "b", Sort: Int}},
		Body:   Bin(op, VarExpr("a"), VarExpr("b")),
		Global: true,
	}
}
