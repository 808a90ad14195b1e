// Package mir is the control-flow-graph body internal/checker walks
// (spec.md §4, the "lowered MIR" input): basic blocks of statements
// ending in one terminator, plus each block's immediate dominator and
// the ghost statements (fold/unfold/unblock) the frontend
// has already inserted at specific points (spec.md §4.3's supplemented
// "ghost statement" feature).
//
// Grounded on original_source's crates/flux-refineck/src/checker.rs's
// use of `mir::{Body, BasicBlock, Statement, Terminator, Operand,
// Rvalue}` — the mir module itself belongs to rustc and was not part of
// the retrieved sources, so the shapes here are reconstructed from
// checker.rs's match arms over `StatementKind`/`TerminatorKind`.
package mir

import (
	"github.com/liquidgo/liquidgo/internal/rty"
	"github.com/liquidgo/liquidgo/internal/typeenv"
)

// Local names one of a body's local slots (its declared type lives in
// internal/typeenv.Env, allocated by index).
type Local int

// OperandKind discriminates how a Statement/Rvalue consumes a place.
type OperandKind int

const (
	OpCopy OperandKind = iota
	OpMove
	OpConstantInt
	OpConstantBool
)

type Operand struct {
	Kind  OperandKind
	Place typeenv.Place
	Int   int64
	Bool  bool
}

func Copy(p typeenv.Place) Operand { return Operand{Kind: OpCopy, Place: p} }
func Move(p typeenv.Place) Operand { return Operand{Kind: OpMove, Place: p} }
func ConstInt(v int64) Operand     { return Operand{Kind: OpConstantInt, Int: v} }
func ConstBool(v bool) Operand     { return Operand{Kind: OpConstantBool, Bool: v} }

// RvalueKind discriminates the right-hand side of an assignment (spec.md
// §4.3's StatementKind::Assign).
type RvalueKind int

const (
	RUse RvalueKind = iota
	RBinaryOp
	RUnaryOp
	RRef
	RAggregate
	RLen
	RCast
	RDiscriminant
)

type Rvalue struct {
	Kind RvalueKind

	// RUse
	Operand Operand

	// RBinaryOp / RUnaryOp
	BinOp    string
	Operands []Operand

	// RRef
	RefKind rty.RefKind
	Place   typeenv.Place

	// RAggregate
	Fields []Operand

	// RDiscriminant / RLen also reuse Place above.
}

// StatementKind discriminates one non-terminating instruction (spec.md
// §4.3).
type StatementKind int

const (
	StAssign StatementKind = iota
	StFakeRead
	StSetDiscriminant
	StNop
	StGhostFold
	StGhostUnfold
	StGhostUnblock
	StGhostPtrToBorrow
)

// Statement is one CFG instruction, tagged with the ghost kind spec.md
// §4.3 names as a supplemented feature alongside ordinary MIR statements.
type Statement struct {
	Kind StatementKind

	// StAssign / StSetDiscriminant share Place.
	Place typeenv.Place
	Rval  Rvalue

	// StSetDiscriminant
	AdtName string
	Variant uint32

	// StGhostUnfold: the fresh location name to materialize.
	Loc string
}

// TerminatorKind discriminates how a basic block ends (spec.md §4.3's
// terminator semantics, grounded on checker.rs's `TerminatorKind` match).
type TerminatorKind int

const (
	TermReturn TerminatorKind = iota
	TermUnreachable
	TermCoroutineDrop
	TermGoto
	TermYield
	TermSwitchInt
	TermCall
	TermAssert
	TermDrop
	TermFalseEdge
	TermFalseUnwind
	// TermUnwindResume is handled identically to TermUnreachable: per the
	// checker's design, unwinding paths carry no refinement obligations
	// of their own, only the ordinary path does (spec.md open question,
	// decided in DESIGN.md).
	TermUnwindResume
)

// SwitchTarget pairs a SwitchInt discriminant value with the block it
// jumps to; Otherwise is the fallback/default arm.
type SwitchTarget struct {
	Value int64
	Block int
}

type Terminator struct {
	Kind TerminatorKind

	// TermGoto / TermYield / TermDrop / TermFalseUnwind
	Target int

	// TermSwitchInt
	Discr     Operand
	Targets   []SwitchTarget
	Otherwise int

	// TermCall
	Func      string
	Args      []Operand
	Dest      typeenv.Place
	CallTarget int // -1 if diverging

	// TermAssert
	Cond     Operand
	Expected bool
	Msg      string
	AssertTarget int

	// TermFalseEdge
	RealTarget, ImaginaryTarget int

	// TermDrop's place being dropped.
	Place typeenv.Place
}

// BasicBlock is one node of the CFG: a straight-line list of statements
// (ordinary and ghost) ending in one terminator.
type BasicBlock struct {
	Statements []Statement
	Terminator Terminator
}

// Body is one function's full control-flow graph (block 0 is the entry
// block); internal/checker walks it depth-first from block 0 along each
// terminator's successors, not in the order of Blocks.
type Body struct {
	Name   string
	Blocks []BasicBlock
	// NumLocals is the number of local slots to allocate in a fresh
	// internal/typeenv.Env before checking Blocks[0].
	NumLocals int
	// Dominators maps a block index to its immediate dominator, -1 for
	// the entry block. internal/checker does not read it.
	Dominators []int
}

// Predecessors computes, for every block, the list of blocks whose
// terminator can jump to it — used by the checker to tell a join point
// (more than one predecessor) from a block it can check directly.
func (b *Body) Predecessors() [][]int {
	preds := make([][]int, len(b.Blocks))
	addEdge := func(from, to int) {
		if to >= 0 && to < len(preds) {
			preds[to] = append(preds[to], from)
		}
	}
	for i, bb := range b.Blocks {
		switch bb.Terminator.Kind {
		case TermGoto, TermYield, TermDrop, TermFalseUnwind:
			addEdge(i, bb.Terminator.Target)
		case TermSwitchInt:
			for _, t := range bb.Terminator.Targets {
				addEdge(i, t.Block)
			}
			addEdge(i, bb.Terminator.Otherwise)
		case TermCall:
			if bb.Terminator.CallTarget >= 0 {
				addEdge(i, bb.Terminator.CallTarget)
			}
		case TermAssert:
			addEdge(i, bb.Terminator.AssertTarget)
		case TermFalseEdge:
			addEdge(i, bb.Terminator.RealTarget)
			addEdge(i, bb.Terminator.ImaginaryTarget)
		}
	}
	return preds
}
