package checker

import (
	"fmt"

	"github.com/liquidgo/liquidgo/internal/constrgen"
	"github.com/liquidgo/liquidgo/internal/diagnostics"
	"github.com/liquidgo/liquidgo/internal/genv"
	"github.com/liquidgo/liquidgo/internal/mir"
	"github.com/liquidgo/liquidgo/internal/reftree"
	"github.com/liquidgo/liquidgo/internal/rty"
	"github.com/liquidgo/liquidgo/internal/typeenv"
)

// Checker drives one pass over a Body (spec.md §4.3's `Checker<Mode>`):
// a depth-first walk from the entry block along terminator successors,
// the per-block environment each terminator forks into its successors,
// and the reftree.Ctxt everything gets checked against. There is no work
// queue: blocks are not ordered by dominance, and a join point is checked
// once, from the first predecessor that reaches it.
type Checker struct {
	genv  genv.GlobalEnv
	body  *mir.Body
	tree  *reftree.Tree
	mode  Mode
	preds [][]int

	ret rty.Ty
	tag string
}

func New(g genv.GlobalEnv, body *mir.Body, ret rty.Ty, mode Mode) *Checker {
	return &Checker{genv: g, body: body, tree: reftree.New(), mode: mode, preds: body.Predecessors(), ret: ret, tag: body.Name}
}

// Run checks every reachable block, depth-first from the entry block,
// given the entry block's initial environment (spec.md §4.3's "check the
// body").
func (c *Checker) Run(entryEnv *typeenv.Env) error {
	rcx := c.tree.RootCtxt()
	return c.checkBlock(rcx, 0, entryEnv)
}

// Tree exposes the refinement tree built while running, for
// internal/fixpoint to encode once every block has been checked.
func (c *Checker) Tree() *reftree.Tree { return c.tree }

func (c *Checker) checkBlock(rcx *reftree.Ctxt, bb int, env *typeenv.Env) error {
	if bb < 0 || bb >= len(c.body.Blocks) {
		return diagnostics.NewError(diagnostics.ErrQuery, diagnostics.Pos{}, fmt.Sprintf("block %d out of range", bb))
	}
	block := c.body.Blocks[bb]
	for _, stmt := range block.Statements {
		if err := c.checkStatement(rcx, env, stmt); err != nil {
			return err
		}
	}
	return c.checkTerminator(rcx, env, bb, block.Terminator)
}

func (c *Checker) checkStatement(rcx *reftree.Ctxt, env *typeenv.Env, stmt mir.Statement) error {
	switch stmt.Kind {
	case mir.StAssign:
		ty, err := c.checkRvalue(rcx, env, stmt.Rval)
		if err != nil {
			return err
		}
		return env.Assign(stmt.Place, ty)
	case mir.StFakeRead, mir.StNop:
		return nil
	case mir.StSetDiscriminant:
		def, err := c.genv.AdtDef(stmt.AdtName)
		if err != nil {
			return err
		}
		if int(stmt.Variant) >= len(def.Variants) {
			return fmt.Errorf("%s: variant %d out of range", stmt.AdtName, stmt.Variant)
		}
		return env.Downcast(stmt.Place, stmt.AdtName, stmt.Variant, def.Variants[stmt.Variant].Fields)
	case mir.StGhostFold:
		return env.Fold(stmt.Place)
	case mir.StGhostUnfold:
		return env.Unfold(stmt.Place, stmt.Loc)
	case mir.StGhostUnblock:
		env.Unblock(stmt.Place)
		return nil
	case mir.StGhostPtrToBorrow:
		ty, err := env.LookupPlace(stmt.Place)
		if err != nil {
			return err
		}
		if ty.Kind != rty.TPtr {
			return nil
		}
		return env.Fold(stmt.Place)
	default:
		return fmt.Errorf("unhandled statement kind")
	}
}

func (c *Checker) checkRvalue(rcx *reftree.Ctxt, env *typeenv.Env, rv mir.Rvalue) (rty.Ty, error) {
	switch rv.Kind {
	case mir.RUse:
		return c.checkOperand(env, rv.Operand)
	case mir.RBinaryOp:
		return c.checkBinaryOp(rcx, env, rv.BinOp, rv.Operands)
	case mir.RUnaryOp:
		operand, err := c.checkOperand(env, rv.Operands[0])
		if err != nil {
			return rty.Ty{}, err
		}
		return widen(operand), nil
	case mir.RRef:
		return env.Borrow(rv.RefKind, rv.Place)
	case mir.RAggregate:
		tys := make([]rty.Ty, len(rv.Fields))
		for i, f := range rv.Fields {
			ty, err := c.checkOperand(env, f)
			if err != nil {
				return rty.Ty{}, err
			}
			tys[i] = ty
		}
		return rty.TupleTy(tys...), nil
	case mir.RLen:
		return rty.Indexed(rty.Uint(64)), nil
	case mir.RCast:
		operand, err := c.checkOperand(env, rv.Operand)
		if err != nil {
			return rty.Ty{}, err
		}
		return widen(operand), nil
	case mir.RDiscriminant:
		ty, err := env.LookupPlace(rv.Place)
		if err != nil {
			return rty.Ty{}, err
		}
		return rty.Discr(ty.AdtName), nil
	default:
		return rty.Ty{}, fmt.Errorf("unhandled rvalue kind")
	}
}

func (c *Checker) checkOperand(env *typeenv.Env, op mir.Operand) (rty.Ty, error) {
	switch op.Kind {
	case mir.OpCopy:
		return env.LookupPlace(op.Place)
	case mir.OpMove:
		return env.MovePlace(op.Place)
	case mir.OpConstantInt:
		return rty.Indexed(rty.Int(64), rty.Lit(rty.IntConst(op.Int))), nil
	case mir.OpConstantBool:
		return rty.Indexed(rty.Bool(), rty.Lit(rty.BoolConst(op.Bool))), nil
	default:
		return rty.Ty{}, fmt.Errorf("unhandled operand kind")
	}
}

func (c *Checker) checkBinaryOp(rcx *reftree.Ctxt, env *typeenv.Env, op string, operands []mir.Operand) (rty.Ty, error) {
	l, err := c.checkOperand(env, operands[0])
	if err != nil {
		return rty.Ty{}, err
	}
	r, err := c.checkOperand(env, operands[1])
	if err != nil {
		return rty.Ty{}, err
	}
	binop, isBool := binOpOf(op)
	if l.Kind != rty.TIndexed || r.Kind != rty.TIndexed || len(l.Indices) == 0 || len(r.Indices) == 0 {
		return widen(l), nil
	}
	result := rty.Bin(binop, l.Indices[0], r.Indices[0])
	if isBool {
		return rty.Indexed(rty.Bool(), result), nil
	}
	return rty.Indexed(*l.Base, result), nil
}

func binOpOf(op string) (rty.BinOp, bool) {
	switch op {
	case "+":
		return rty.OpAdd, false
	case "-":
		return rty.OpSub, false
	case "*":
		return rty.OpMul, false
	case "/":
		return rty.OpDiv, false
	case "%":
		return rty.OpMod, false
	case "==":
		return rty.OpEq, true
	case "!=":
		return rty.OpNe, true
	case ">":
		return rty.OpGt, true
	case ">=":
		return rty.OpGe, true
	case "<":
		return rty.OpLt, true
	case "<=":
		return rty.OpLe, true
	default:
		return rty.OpAdd, false
	}
}

// widen drops ty's concrete index, used whenever an operation's result
// can no longer be precisely tracked (spec.md §5's "widen on unmodeled
// operation").
func widen(ty rty.Ty) rty.Ty {
	if ty.Kind != rty.TIndexed {
		return ty
	}
	return rty.Exists(*ty.Base, rty.HolePred)
}

func (c *Checker) checkTerminator(rcx *reftree.Ctxt, env *typeenv.Env, bb int, term mir.Terminator) error {
	switch term.Kind {
	case mir.TermReturn:
		retPlace := typeenv.Local(0)
		actual, err := env.LookupPlace(retPlace)
		if err != nil {
			return err
		}
		return constrgen.CheckRet(rcx, actual, c.ret, c.tag)

	case mir.TermUnreachable, mir.TermUnwindResume, mir.TermCoroutineDrop:
		// No successors, no obligations: an unreachable/unwind-only path
		// is assumed dead by construction (spec.md decided Open Question).
		return nil

	case mir.TermGoto:
		return c.checkGoto(rcx, env, term.Target)

	case mir.TermYield:
		return c.checkGoto(rcx, env, term.Target)

	case mir.TermSwitchInt:
		discr, err := c.checkOperand(env, term.Discr)
		if err != nil {
			return err
		}
		for _, t := range term.Targets {
			branch := rcx.Branch()
			branchEnv := env.Clone()
			if discr.Kind == rty.TIndexed && len(discr.Indices) > 0 {
				branch.AssumePred(rty.Bin(rty.OpEq, discr.Indices[0], rty.Lit(rty.IntConst(t.Value))))
			}
			if err := c.checkGoto(branch, branchEnv, t.Block); err != nil {
				return err
			}
		}
		branch := rcx.Branch()
		return c.checkGoto(branch, env.Clone(), term.Otherwise)

	case mir.TermCall:
		sig, err := c.genv.FnSig(term.Func)
		if err != nil {
			return err
		}
		args := make([]rty.Ty, len(term.Args))
		for i, a := range term.Args {
			ty, err := c.checkOperand(env, a)
			if err != nil {
				return err
			}
			args[i] = ty
		}
		ret, err := constrgen.CheckFnCall(rcx, sig, args, c.tag)
		if err != nil {
			return err
		}
		if term.CallTarget < 0 {
			return nil
		}
		if err := env.Assign(term.Dest, ret); err != nil {
			return err
		}
		return c.checkGoto(rcx, env, term.CallTarget)

	case mir.TermAssert:
		cond, err := c.checkOperand(env, term.Cond)
		if err != nil {
			return err
		}
		if cond.Kind == rty.TIndexed && len(cond.Indices) > 0 {
			want := cond.Indices[0]
			if !term.Expected {
				want = rty.Un(rty.OpNot, want)
			}
			rcx.CheckPred(want, c.tag)
		}
		return c.checkGoto(rcx, env, term.AssertTarget)

	case mir.TermDrop:
		return c.checkGoto(rcx, env, term.Target)

	case mir.TermFalseEdge:
		return c.checkGoto(rcx, env, term.RealTarget)

	case mir.TermFalseUnwind:
		return c.checkGoto(rcx, env, term.Target)

	default:
		return fmt.Errorf("unhandled terminator kind")
	}
}

// checkGoto is check_goto_join_point (spec.md §4.3): if the Mode already
// has an environment for target, it checks the current env against it
// and stops. Otherwise a block with at most one predecessor is checked
// directly, and a join point has the current env's shape recorded and is
// checked from this first arrival. Later arrivals are only checked
// against that recorded environment; the join point itself is not
// checked again.
func (c *Checker) checkGoto(rcx *reftree.Ctxt, env *typeenv.Env, target int) error {
	scope := rcx.Scope()
	if bbEnv, ok := c.mode.JoinTarget(target, scope, env); ok {
		return env.CheckGoto(rcx, bbEnv, c.tag)
	}
	if len(c.preds[target]) <= 1 {
		return c.checkBlock(rcx, target, env)
	}
	shape := env.IntoShape(scope)
	c.mode.RecordShape(target, shape)
	return c.checkBlock(rcx, target, env)
}
