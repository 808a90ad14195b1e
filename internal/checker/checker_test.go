package checker

import (
	"testing"

	"github.com/liquidgo/liquidgo/internal/genv"
	"github.com/liquidgo/liquidgo/internal/kvars"
	"github.com/liquidgo/liquidgo/internal/mir"
	"github.com/liquidgo/liquidgo/internal/rsort"
	"github.com/liquidgo/liquidgo/internal/rty"
	"github.com/liquidgo/liquidgo/internal/typeenv"
)

// straightLineBody checks `_0 = _1 + _2; return _0` against a return type
// of `i32`, the simplest non-trivial body a Checker can run end to end
// with no join point at all.
func straightLineBody() *mir.Body {
	return &mir.Body{
		Name:      "add",
		NumLocals: 3,
		Blocks: []mir.BasicBlock{
			{
				Statements: []mir.Statement{
					{
						Kind:  mir.StAssign,
						Place: typeenv.Local(0),
						Rval: mir.Rvalue{
							Kind:     mir.RBinaryOp,
							BinOp:    "+",
							Operands: []mir.Operand{mir.Copy(typeenv.Local(1)), mir.Copy(typeenv.Local(2))},
						},
					},
				},
				Terminator: mir.Terminator{Kind: mir.TermReturn},
			},
		},
		Dominators: []int{-1},
	}
}

func entryEnv() *typeenv.Env {
	env := typeenv.New()
	env.AllocWithTy(0, rty.Never)
	env.AllocWithTy(1, rty.Indexed(rty.Int(32), rty.Lit(rty.IntConst(2))))
	env.AllocWithTy(2, rty.Indexed(rty.Int(32), rty.Lit(rty.IntConst(3))))
	return env
}

func TestCheckerRunStraightLine(t *testing.T) {
	g := genv.NewFixed()
	body := straightLineBody()
	ret := rty.Exists(rty.Int(32), rty.ExprPred(rty.Bin(rty.OpGe, rty.VarExpr(rty.Bound(0)), rty.Lit(rty.Zero))))

	c := New(g, body, ret, NewShapeMode())
	if err := c.Run(entryEnv()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(c.Tree().Obligations()) == 0 {
		t.Errorf("checking a return against an existential type should record an obligation")
	}
}

// branchingBody builds `_0 = _1 == 0; switchInt _0 [1: bb1, otherwise: bb2]`
// with both arms returning, exercising checkGoto's first-visit shape
// recording through a join-free fan-out.
func branchingBody() *mir.Body {
	return &mir.Body{
		Name:      "branch",
		NumLocals: 2,
		Blocks: []mir.BasicBlock{
			{
				Statements: []mir.Statement{
					{
						Kind:  mir.StAssign,
						Place: typeenv.Local(0),
						Rval: mir.Rvalue{
							Kind:     mir.RBinaryOp,
							BinOp:    "==",
							Operands: []mir.Operand{mir.Copy(typeenv.Local(1)), mir.ConstInt(0)},
						},
					},
				},
				Terminator: mir.Terminator{
					Kind:      mir.TermSwitchInt,
					Discr:     mir.Copy(typeenv.Local(0)),
					Targets:   []mir.SwitchTarget{{Value: 1, Block: 1}},
					Otherwise: 2,
				},
			},
			{Terminator: mir.Terminator{Kind: mir.TermReturn}},
			{Terminator: mir.Terminator{Kind: mir.TermReturn}},
		},
		Dominators: []int{-1, 0, 0},
	}
}

func TestCheckerRunBranching(t *testing.T) {
	g := genv.NewFixed()
	body := branchingBody()
	ret := rty.Never

	env := typeenv.New()
	env.AllocWithTy(0, rty.Never)
	env.AllocWithTy(1, rty.Indexed(rty.Int(32), rty.Lit(rty.IntConst(1))))

	c := New(g, body, ret, NewShapeMode())
	if err := c.Run(env); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestShapeThenRefineModeHandoff(t *testing.T) {
	g := genv.NewFixed()
	body := straightLineBody()
	ret := rty.Exists(rty.Int(32), rty.HolePred)

	shapeMode := NewShapeMode()
	shapeChecker := New(g, body, ret, shapeMode)
	if err := shapeChecker.Run(entryEnv()); err != nil {
		t.Fatalf("shape Run: %v", err)
	}

	store := kvars.NewStore()
	refineMode := NewRefineMode(shapeMode.Shapes(), store)
	refineChecker := New(g, body, ret, refineMode)
	if err := refineChecker.Run(entryEnv()); err != nil {
		t.Fatalf("refine Run: %v", err)
	}
}

func TestCheckerRunCallResolvesSignature(t *testing.T) {
	g := genv.NewFixed()
	g.Sigs["helper"] = &rty.FnSig{
		Params: []rty.Param{{Name: "x", Sort: rsort.Int}},
		Args:   []rty.Ty{rty.Indexed(rty.Int(32), rty.VarExpr(rty.Bound(0)))},
		Ret:    rty.Indexed(rty.Int(32), rty.VarExpr(rty.Bound(0))),
	}
	body := &mir.Body{
		Name:      "caller",
		NumLocals: 2,
		Blocks: []mir.BasicBlock{
			{
				Terminator: mir.Terminator{
					Kind:       mir.TermCall,
					Func:       "helper",
					Args:       []mir.Operand{mir.Copy(typeenv.Local(1))},
					Dest:       typeenv.Local(0),
					CallTarget: 1,
				},
			},
			{Terminator: mir.Terminator{Kind: mir.TermReturn}},
		},
		Dominators: []int{-1, 0},
	}

	env := typeenv.New()
	env.AllocWithTy(0, rty.Never)
	env.AllocWithTy(1, rty.Indexed(rty.Int(32), rty.Lit(rty.IntConst(9))))

	c := New(g, body, rty.Indexed(rty.Int(32)), NewShapeMode())
	if err := c.Run(env); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestCheckerRunUnknownCallErrors(t *testing.T) {
	g := genv.NewFixed()
	body := &mir.Body{
		NumLocals: 1,
		Blocks: []mir.BasicBlock{
			{Terminator: mir.Terminator{Kind: mir.TermCall, Func: "nope", CallTarget: -1}},
		},
		Dominators: []int{-1},
	}
	env := typeenv.New()
	env.AllocWithTy(0, rty.Never)

	c := New(g, body, rty.Never, NewShapeMode())
	if err := c.Run(env); err == nil {
		t.Errorf("Run should fail when a call targets an unresolvable signature")
	}
}
