package typeenv

import (
	"testing"

	"github.com/liquidgo/liquidgo/internal/reftree"
	"github.com/liquidgo/liquidgo/internal/rty"
)

func TestLookupAndMovePlace(t *testing.T) {
	env := New()
	env.AllocWithTy(1, rty.Indexed(rty.Int(32), rty.VarExpr(rty.Free(1))))

	ty, err := env.LookupPlace(Local(1))
	if err != nil || ty.Kind != rty.TIndexed {
		t.Fatalf("LookupPlace = %+v, %v", ty, err)
	}

	if _, err := env.MovePlace(Local(1)); err != nil {
		t.Fatalf("MovePlace: %v", err)
	}
	if _, err := env.LookupPlace(Local(1)); err == nil {
		t.Errorf("LookupPlace after move should fail (use-after-move)")
	}
}

func TestAssignClearsMovedState(t *testing.T) {
	env := New()
	env.AllocWithTy(1, rty.Indexed(rty.Int(32)))
	if _, err := env.MovePlace(Local(1)); err != nil {
		t.Fatalf("MovePlace: %v", err)
	}
	if err := env.Assign(Local(1), rty.Indexed(rty.Int(32))); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if _, err := env.LookupPlace(Local(1)); err != nil {
		t.Errorf("LookupPlace after reassign should succeed, got %v", err)
	}
}

func TestFieldProjectionAssignAndLookup(t *testing.T) {
	env := New()
	env.AllocWithTy(1, rty.TupleTy(rty.Indexed(rty.Int(32)), rty.Indexed(rty.Bool())))

	if err := env.Assign(Local(1).Field(1), rty.Indexed(rty.Bool(), rty.Lit(rty.True))); err != nil {
		t.Fatalf("Assign through field projection: %v", err)
	}
	ty, err := env.LookupPlace(Local(1).Field(1))
	if err != nil {
		t.Fatalf("LookupPlace through field projection: %v", err)
	}
	if ty.Kind != rty.TIndexed || len(ty.Indices) != 1 {
		t.Errorf("field 1's updated type = %+v", ty)
	}
}

func TestUnfoldThenFoldRoundTrips(t *testing.T) {
	env := New()
	original := rty.Indexed(rty.Int(32), rty.VarExpr(rty.Free(1)))
	env.AllocWithTy(1, original)

	if err := env.Unfold(Local(1), "l0"); err != nil {
		t.Fatalf("Unfold: %v", err)
	}
	ty, err := env.LookupPlace(Local(1))
	if err != nil || ty.Kind != rty.TPtr || ty.Loc != "l0" {
		t.Fatalf("after Unfold, place should hold a TPtr(l0), got %+v, %v", ty, err)
	}

	if err := env.Fold(Local(1)); err != nil {
		t.Fatalf("Fold: %v", err)
	}
	folded, err := env.LookupPlace(Local(1))
	if err != nil || folded.Kind != rty.TIndexed {
		t.Fatalf("after Fold, place should hold the indexed type again, got %+v, %v", folded, err)
	}
}

func TestDowncastNarrowsToVariantFields(t *testing.T) {
	env := New()
	env.AllocWithTy(1, rty.Discr("Option"))

	fields := []rty.Ty{rty.Indexed(rty.Int(32))}
	if err := env.Downcast(Local(1), "Option", 1, fields); err != nil {
		t.Fatalf("Downcast: %v", err)
	}
	ty, err := env.LookupPlace(Local(1))
	if err != nil || ty.Kind != rty.TTuple || len(ty.Tys) != 1 {
		t.Fatalf("after Downcast, place should hold the variant's tuple, got %+v, %v", ty, err)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	env := New()
	env.AllocWithTy(1, rty.Indexed(rty.Int(32), rty.Lit(rty.Zero)))
	clone := env.Clone()

	if err := clone.Assign(Local(1), rty.Indexed(rty.Int(32), rty.Lit(rty.One))); err != nil {
		t.Fatalf("Assign on clone: %v", err)
	}

	orig, _ := env.LookupPlace(Local(1))
	cloned, _ := clone.LookupPlace(Local(1))
	if orig.Indices[0].Const.Int == cloned.Indices[0].Const.Int {
		t.Errorf("mutating the clone should not affect the original env")
	}
}

func TestIntoShapeWidensIndexedTypes(t *testing.T) {
	env := New()
	env.AllocWithTy(1, rty.Indexed(rty.Int(32), rty.Lit(rty.Zero)))

	shape := env.IntoShape(reftree.Scope{})
	widened, ok := shape.Locals[1]
	if !ok || widened.Kind != rty.TExists || widened.ExPred.Kind != rty.PredHole {
		t.Fatalf("IntoShape should widen an indexed local to an existential hole, got %+v", widened)
	}
}

func TestCheckGotoChecksIndexEquality(t *testing.T) {
	tree := reftree.New()
	rcx := tree.RootCtxt()

	env := New()
	env.AllocWithTy(1, rty.Indexed(rty.Int(32), rty.Lit(rty.IntConst(7))))

	target := &BasicBlockEnv{
		Locals: map[int]rty.Ty{1: rty.Indexed(rty.Int(32), rty.Lit(rty.IntConst(7)))},
	}

	before := len(tree.Obligations())
	if err := env.CheckGoto(rcx, target, "join"); err != nil {
		t.Fatalf("CheckGoto: %v", err)
	}
	if len(tree.Obligations()) <= before {
		t.Errorf("CheckGoto should record at least one index-equality obligation")
	}
}

func TestCheckGotoMissingLocalErrors(t *testing.T) {
	tree := reftree.New()
	rcx := tree.RootCtxt()
	env := New()

	target := &BasicBlockEnv{Locals: map[int]rty.Ty{2: rty.Indexed(rty.Int(32))}}
	if err := env.CheckGoto(rcx, target, "join"); err == nil {
		t.Errorf("CheckGoto should error when the predecessor lacks a local the target expects")
	}
}
