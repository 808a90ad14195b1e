// Package rty is the refinement intermediate representation (spec.md
// §3, component C): expressions, refined types and the lightweight
// "constr" constraints that appear in a function signature's `requires`/
// `ensures` clauses. It is grounded on original_source's
// liquid-rust-middle/src/core.rs (Ty/BaseTy/Expr/Constr/Sort) widened to
// the richer shape flux-refineck/src/checker.rs and
// flux-refineck/src/fixpoint_encoding.rs assume (KVar holes, tuples
// nested arbitrarily, a Discr variant for enum discriminants, and
// Closure/Generator obligations carried on a type rather than desugared
// away, per spec.md §3's module list).
//
// Like internal/rsort.Sort this package represents each union as one
// tagged struct rather than an interface hierarchy, for the reasons
// recorded in DESIGN.md under internal/rsort.
package rty

import (
	"fmt"

	"github.com/liquidgo/liquidgo/internal/rsort"
)

// Var is a reference to a refinement variable: De Bruijn-bound inside an
// unresolved binder list, or free once a type has been instantiated at a
// call site or a place in the type environment.
type VarKind int

const (
	VarBound VarKind = iota
	VarFree
	VarEVar // an unification variable, solved away before encoding.
)

type Var struct {
	Kind  VarKind
	Index uint32 // VarBound: De Bruijn index. VarFree/VarEVar: a Name id.
}

func Bound(idx uint32) Var { return Var{Kind: VarBound, Index: idx} }
func Free(name uint32) Var { return Var{Kind: VarFree, Index: name} }
func EVar(id uint32) Var   { return Var{Kind: VarEVar, Index: id} }

func (v Var) String() string {
	switch v.Kind {
	case VarBound:
		return fmt.Sprintf("^%d", v.Index)
	case VarEVar:
		return fmt.Sprintf("?%d", v.Index)
	default:
		return fmt.Sprintf("x%d", v.Index)
	}
}

// BinOp is a binary relation or arithmetic operator over expressions
// (spec.md §3.3). Values line up with the wire encoding's own BinOp so
// internal/fixpoint can translate 1:1 without a lookup table.
type BinOp int

const (
	OpIff BinOp = iota
	OpImp
	OpOr
	OpAnd
	OpEq
	OpNe
	OpGt
	OpGe
	OpLt
	OpLe
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
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
	OpNot UnOp = iota
	OpNeg
)

func (op UnOp) String() string {
	if op == OpNot {
		return "~"
	}
	return "-"
}

// ConstantKind discriminates a literal value.
type ConstantKind int

const (
	ConstInt ConstantKind = iota
	ConstBool
)

type Constant struct {
	Kind ConstantKind
	Int  int64
	Bool bool
}

func IntConst(n int64) Constant  { return Constant{Kind: ConstInt, Int: n} }
func BoolConst(b bool) Constant  { return Constant{Kind: ConstBool, Bool: b} }

var (
	Zero = IntConst(0)
	One  = IntConst(1)
	True = BoolConst(true)
)

func (c Constant) String() string {
	if c.Kind == ConstBool {
		return fmt.Sprintf("%v", c.Bool)
	}
	return fmt.Sprintf("%d", c.Int)
}

// ExprKind discriminates an Expr's shape (spec.md §3.3).
type ExprKind int

const (
	EVarExpr ExprKind = iota
	EConstant
	EBinaryOp
	EUnaryOp
	EApp
	ETuple
	EProj
	EIfThenElse
	EKVar
)

// Expr is a refinement expression: the logical payload that indices and
// predicates are built from.
type Expr struct {
	Kind ExprKind

	// EVarExpr
	Var Var

	// EConstant
	Const Constant

	// EBinaryOp
	BinOp BinOp
	L, R  *Expr

	// EUnaryOp
	UnOp UnOp
	X    *Expr

	// EApp: application of an interpreted theory function or a bound
	// function-sorted variable to arguments.
	Func     string
	FuncVar  *Var
	Args     []Expr

	// ETuple
	Elems []Expr

	// EProj
	Tuple *Expr
	Field uint32

	// EIfThenElse
	Cond, Then, Else *Expr

	// EKVar: an unresolved predicate hole; Args is the kvar's actual
	// argument list at this occurrence (spec.md §4.2, §4.5).
	KVar     uint32
	KVarArgs []Var
}

func VarExpr(v Var) Expr { return Expr{Kind: EVarExpr, Var: v} }
func Lit(c Constant) Expr { return Expr{Kind: EConstant, Const: c} }
func Bin(op BinOp, l, r Expr) Expr { return Expr{Kind: EBinaryOp, BinOp: op, L: &l, R: &r} }
func Un(op UnOp, x Expr) Expr { return Expr{Kind: EUnaryOp, UnOp: op, X: &x} }
func App(fn string, args ...Expr) Expr { return Expr{Kind: EApp, Func: fn, Args: args} }
func Tuple(elems ...Expr) Expr { return Expr{Kind: ETuple, Elems: elems} }
func Proj(t Expr, field uint32) Expr { return Expr{Kind: EProj, Tuple: &t, Field: field} }
func IfThenElse(cond, then, els Expr) Expr {
	return Expr{Kind: EIfThenElse, Cond: &cond, Then: &then, Else: &els}
}
func KVarExpr(kvid uint32, args []Var) Expr { return Expr{Kind: EKVar, KVar: kvid, KVarArgs: args} }

// IsTriviallyTrue reports whether e is literally `true` (spec.md §4.5's
// check for avoiding trivially-satisfiable constraints).
func (e Expr) IsTriviallyTrue() bool {
	return e.Kind == EConstant && e.Const.Kind == ConstBool && e.Const.Bool
}

func (e Expr) String() string {
	switch e.Kind {
	case EVarExpr:
		return e.Var.String()
	case EConstant:
		return e.Const.String()
	case EBinaryOp:
		return fmt.Sprintf("(%s %s %s)", e.L, e.BinOp, e.R)
	case EUnaryOp:
		return fmt.Sprintf("%s(%s)", e.UnOp, e.X)
	case EApp:
		return fmt.Sprintf("(%s %s)", e.Func, joinExprs(e.Args))
	case ETuple:
		return fmt.Sprintf("(%s)", joinExprs(e.Elems))
	case EProj:
		return fmt.Sprintf("(proj%d %s)", e.Field, e.Tuple)
	case EIfThenElse:
		return fmt.Sprintf("if %s then %s else %s", e.Cond, e.Then, e.Else)
	case EKVar:
		return fmt.Sprintf("$%d%s", e.KVar, joinVars(e.KVarArgs))
	default:
		return "?"
	}
}

func joinExprs(es []Expr) string {
	out := ""
	for i, e := range es {
		if i > 0 {
			out += " "
		}
		out += e.String()
	}
	return out
}

func joinVars(vs []Var) string {
	out := ""
	for _, v := range vs {
		out += " " + v.String()
	}
	return out
}

// Sort is re-exported for callers that only need rty's own API surface.
type Sort = rsort.Sort
