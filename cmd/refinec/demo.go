package main

import (
	"github.com/liquidgo/liquidgo/internal/genv"
	"github.com/liquidgo/liquidgo/internal/mir"
	"github.com/liquidgo/liquidgo/internal/rsort"
	"github.com/liquidgo/liquidgo/internal/rty"
	"github.com/liquidgo/liquidgo/internal/typeenv"
)

// demoProgram builds a fixed GlobalEnv and a single function's lowered
// body/signature for fnPath, standing in for what a real frontend would
// otherwise parse, gather, and lower (spec.md §1's frontend/core split —
// internal/mir.Body and internal/genv.GlobalEnv are both named as
// externally-supplied inputs the core only consumes). "safe_div" is the
// one function this demo knows: `fn safe_div(n: {v:int|v>=0}, d:{v:int|
// v>0}) -> {v:int| true}`, checking that dividing a non-negative by a
// positive number type-checks.
func demoProgram(fnPath string) (genv.GlobalEnv, *mir.Body, *rty.FnSig) {
	if fnPath != "safe_div" {
		return nil, nil, nil
	}

	sig := &rty.FnSig{
		Params: []rty.Param{
			{Name: "n", Sort: rsort.Int},
			{Name: "d", Sort: rsort.Int},
		},
		Requires: []rty.Constr{
			rty.PredConstr(rty.Bin(rty.OpGe, rty.VarExpr(rty.Bound(0)), rty.Lit(rty.Zero))),
			rty.PredConstr(rty.Bin(rty.OpGt, rty.VarExpr(rty.Bound(1)), rty.Lit(rty.Zero))),
		},
		Args: []rty.Ty{
			rty.Indexed(rty.Int(32), rty.VarExpr(rty.Bound(0))),
			rty.Indexed(rty.Int(32), rty.VarExpr(rty.Bound(1))),
		},
		Ret: rty.Exists(rty.Int(32), rty.HolePred),
	}

	// _0 = return place, _1 = n, _2 = d
	body := &mir.Body{
		Name:      "safe_div",
		NumLocals: 3,
		Blocks: []mir.BasicBlock{
			{
				Statements: []mir.Statement{
					{
						Kind:  mir.StAssign,
						Place: typeenv.Local(0),
						Rval: mir.Rvalue{
							Kind:    mir.RBinaryOp,
							BinOp:   "/",
							Operands: []mir.Operand{mir.Copy(typeenv.Local(1)), mir.Copy(typeenv.Local(2))},
						},
					},
				},
				Terminator: mir.Terminator{Kind: mir.TermReturn},
			},
		},
		Dominators: []int{-1},
	}

	g := genv.NewFixed()
	g.Sigs["safe_div"] = sig
	return g, body, sig
}
