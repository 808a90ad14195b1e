package fixpoint

import (
	"fmt"

	"github.com/liquidgo/liquidgo/internal/kvars"
	"github.com/liquidgo/liquidgo/internal/reftree"
	"github.com/liquidgo/liquidgo/internal/rsort"
	"github.com/liquidgo/liquidgo/internal/rty"
)

// Ctx encodes one function's checked reftree.Tree into a wire
// Constraint, given the kvars.Store that allocated every kvar the tree
// references (spec.md §4.5, grounded on
// flux-refineck/src/fixpoint_encoding.rs's `FixpointCtxt`).
type Ctx struct {
	store *kvars.Store
}

func NewCtx(store *kvars.Store) *Ctx { return &Ctx{store: store} }

// Encode walks tree's View and builds the nested ForAll/Guard/Head
// constraint the solver expects (spec.md §4.5's "each ForAll/Guard node
// becomes a binder, each Head node becomes a leaf Pred").
func (c *Ctx) Encode(tree *reftree.Tree) Constraint {
	return c.encodeNode(tree.View())
}

func (c *Ctx) encodeNode(n reftree.NodeView) Constraint {
	children := make([]Constraint, 0, len(n.Children))
	for _, ch := range n.Children {
		children = append(children, c.encodeNode(ch))
	}
	body := Conj(children...)

	switch n.Kind {
	case reftree.NodeForAll:
		return ForAll(varName(n.Var), sortOf(n.Sort), TruePred, body)
	case reftree.NodeGuard:
		return Guard(c.encodePred(n.Pred), body)
	case reftree.NodeHead:
		return PredC(c.encodePred(n.Pred), n.Tag)
	default:
		return body
	}
}

// encodeExpr translates an rty.Expr (possibly containing an EKVar hole)
// into a wire Expr/Pred. A bare EKVar occurrence at the top of a
// predicate position becomes a wire Pred::KVar; anywhere else it has no
// wire Expr equivalent, since liquid-fixpoint's kvars are
// predicate-level, not term-level (spec.md §4.5).
func (c *Ctx) encodeExpr(e rty.Expr) Expr {
	switch e.Kind {
	case rty.EVarExpr:
		return VarExpr(varName(e.Var))
	case rty.EConstant:
		if e.Const.Kind == rty.ConstBool {
			return Lit(Constant{Kind: ConstBool, Bool: e.Const.Bool})
		}
		return Lit(Constant{Kind: ConstInt, Int: e.Const.Int})
	case rty.EBinaryOp:
		return Bin(binOpOf(e.BinOp), c.encodeExpr(*e.L), c.encodeExpr(*e.R))
	case rty.EUnaryOp:
		return Un(unOpOf(e.UnOp), c.encodeExpr(*e.X))
	case rty.EApp:
		args := make([]Expr, len(e.Args))
		for i, a := range e.Args {
			args[i] = c.encodeExpr(a)
		}
		return Apply(FuncRef{IsVar: e.FuncVar != nil, Var: varNameOf(e.FuncVar), Itf: e.Func}, args...)
	case rty.ETuple:
		if len(e.Elems) == 2 {
			return PairExpr(c.encodeExpr(e.Elems[0]), c.encodeExpr(e.Elems[1]))
		}
		// Arbitrary-arity tuples right-nest as pairs, the way a tuple of
		// sorts flattens into leaves elsewhere in this core.
		out := c.encodeExpr(e.Elems[len(e.Elems)-1])
		for i := len(e.Elems) - 2; i >= 0; i-- {
			out = PairExpr(c.encodeExpr(e.Elems[i]), out)
		}
		return out
	case rty.EProj:
		if e.Field == 0 {
			return ProjExpr(c.encodeExpr(*e.Tuple), ProjFst)
		}
		return ProjExpr(c.encodeExpr(*e.Tuple), ProjSnd)
	case rty.EIfThenElse:
		return IfThenElse(c.encodeExpr(*e.Cond), c.encodeExpr(*e.Then), c.encodeExpr(*e.Else))
	case rty.EKVar:
		// A kvar occurring where a term Expr is expected only happens for
		// a degenerate 0-ary boolean kvar; render it as an always-true
		// placeholder term rather than fail the encoding, since the real
		// kvar predicate is emitted as a Pred one level up by encodePred.
		return Lit(Constant{Kind: ConstBool, Bool: true})
	default:
		return Lit(Constant{Kind: ConstBool, Bool: true})
	}
}

func varNameOf(v *rty.Var) string {
	if v == nil {
		return ""
	}
	return varName(*v)
}

// encodePred is the entry point for a node's Pred slot (spec.md §4.5):
// an EKVar at the top level becomes a wire Pred::KVar carrying its
// occurrence's argument names, everything else lowers through
// encodeExpr and wraps as Pred::Expr.
func (c *Ctx) encodePred(e rty.Expr) Pred {
	if e.Kind == rty.EKVar {
		vars := make([]string, len(e.KVarArgs))
		for i, v := range e.KVarArgs {
			vars[i] = varName(v)
		}
		return KVarPred(int(e.KVar), vars)
	}
	return ExprPred(c.encodeExpr(e))
}

func varName(v rty.Var) string {
	switch v.Kind {
	case rty.VarBound:
		return fmt.Sprintf("^%d", v.Index)
	default:
		return fmt.Sprintf("x%d", v.Index)
	}
}

func binOpOf(op rty.BinOp) BinOp {
	switch op {
	case rty.OpIff:
		return BinIff
	case rty.OpImp:
		return BinImp
	case rty.OpOr:
		return BinOr
	case rty.OpAnd:
		return BinAnd
	case rty.OpEq:
		return BinEq
	case rty.OpNe:
		return BinNe
	case rty.OpGt:
		return BinGt
	case rty.OpGe:
		return BinGe
	case rty.OpLt:
		return BinLt
	case rty.OpLe:
		return BinLe
	case rty.OpAdd:
		return BinAdd
	case rty.OpSub:
		return BinSub
	case rty.OpMul:
		return BinMul
	case rty.OpDiv:
		return BinDiv
	default:
		return BinMod
	}
}

func unOpOf(op rty.UnOp) UnOp {
	if op == rty.OpNot {
		return UnNot
	}
	return UnNeg
}

func sortOf(s rsort.Sort) Sort {
	switch s.Kind {
	case rsort.KInt, rsort.KVar, rsort.KParam, rsort.KWildcard:
		return Int
	case rsort.KBool:
		return Bool
	case rsort.KReal:
		return Real
	case rsort.KLoc:
		return Unit
	case rsort.KBitVec:
		return BitVec(int(s.Width))
	case rsort.KApp:
		if s.Ctor == rsort.CtorUser {
			return Int
		}
		ctor := CtorSet
		if s.Ctor == rsort.CtorMap {
			ctor = CtorMap
		}
		args := make([]Sort, len(s.Args))
		for i, a := range s.Args {
			args[i] = sortOf(a)
		}
		return App(ctor, args...)
	case rsort.KTuple:
		if len(s.Elems) == 0 {
			return Unit
		}
		out := sortOf(s.Elems[len(s.Elems)-1])
		for i := len(s.Elems) - 2; i >= 0; i-- {
			out = Pair(sortOf(s.Elems[i]), out)
		}
		return out
	case rsort.KFunc:
		inputs := make([]Sort, len(s.Func.Inputs))
		for i, in := range s.Func.Inputs {
			inputs[i] = sortOf(in)
		}
		return Func(s.Func.NumParams, inputs, sortOf(s.Func.Output))
	default:
		return Int
	}
}

// KVarDecls renders every allocated kvar as a wire-level binder
// declaration line, the `bind`/`constraint (... $k ...)` block
// liquid-fixpoint expects up front listing each kvar's argument sorts
// (spec.md §6).
func KVarDecls(store *kvars.Store) []string {
	out := make([]string, 0, store.Len())
	for i, d := range store.All() {
		parts := make([]string, len(d.Sorts))
		for j, s := range d.Sorts {
			parts[j] = fmt.Sprintf("(a%d %s)", j, sortOf(s))
		}
		out = append(out, fmt.Sprintf("(var $%d (%s)) ; %s", i, joinSpace(parts), d.Orig))
	}
	return out
}

func joinSpace(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += " "
		}
		out += p
	}
	return out
}
