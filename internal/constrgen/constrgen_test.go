package constrgen

import (
	"testing"

	"github.com/liquidgo/liquidgo/internal/reftree"
	"github.com/liquidgo/liquidgo/internal/rsort"
	"github.com/liquidgo/liquidgo/internal/rty"
)

func TestSubtypeIndexedRequiresBaseMatch(t *testing.T) {
	tree := reftree.New()
	rcx := tree.RootCtxt()

	have := rty.Indexed(rty.Int(32), rty.Lit(rty.Zero))
	want := rty.Indexed(rty.Bool(), rty.Lit(rty.True))

	if err := Subtype(rcx, have, want, "t"); err == nil {
		t.Errorf("Subtype should reject a base-type mismatch")
	}
}

func TestSubtypeIndexedRecordsIndexEquality(t *testing.T) {
	tree := reftree.New()
	rcx := tree.RootCtxt()

	have := rty.Indexed(rty.Int(32), rty.Lit(rty.IntConst(5)))
	want := rty.Indexed(rty.Int(32), rty.VarExpr(rty.Free(1)))

	before := len(tree.Obligations())
	if err := Subtype(rcx, have, want, "t"); err != nil {
		t.Fatalf("Subtype: %v", err)
	}
	if len(tree.Obligations()) != before+1 {
		t.Errorf("Subtype(indexed, indexed) should record one obligation")
	}
}

func TestSubtypeExistentialWitnessesWithHaveIndex(t *testing.T) {
	tree := reftree.New()
	rcx := tree.RootCtxt()

	have := rty.Indexed(rty.Int(32), rty.Lit(rty.IntConst(5)))
	want := rty.Exists(rty.Int(32), rty.ExprPred(
		rty.Bin(rty.OpGe, rty.VarExpr(rty.Bound(0)), rty.Lit(rty.Zero))))

	before := len(tree.Obligations())
	if err := Subtype(rcx, have, want, "t"); err != nil {
		t.Fatalf("Subtype: %v", err)
	}
	obligs := tree.Obligations()
	if len(obligs) != before+1 {
		t.Fatalf("Subtype(indexed, exists) should record one obligation")
	}
	// The witnessed predicate must reference have's own index, not an
	// unrelated bound variable left unsubstituted.
	pred := obligs[len(obligs)-1].Pred
	if pred.Kind != rty.EBinaryOp || pred.L.Kind != rty.EConstant || pred.L.Const.Int != 5 {
		t.Errorf("witnessed predicate = %+v, want have's index (5) substituted for ^0", pred)
	}
}

func TestSubtypeExistentialRejectsNonIndexedHave(t *testing.T) {
	tree := reftree.New()
	rcx := tree.RootCtxt()

	have := rty.Exists(rty.Int(32), rty.HolePred)
	want := rty.Exists(rty.Int(32), rty.ExprPred(rty.Lit(rty.True)))

	if err := Subtype(rcx, have, want, "t"); err == nil {
		t.Errorf("Subtype should require an indexed witness on the producer side")
	}
}

func TestSubtypeRefCovarianceForShared(t *testing.T) {
	tree := reftree.New()
	rcx := tree.RootCtxt()

	have := rty.Ref(rty.RefShr, rty.Indexed(rty.Int(32), rty.Lit(rty.IntConst(1))))
	want := rty.Ref(rty.RefShr, rty.Indexed(rty.Int(32), rty.VarExpr(rty.Free(1))))
	if err := Subtype(rcx, have, want, "t"); err != nil {
		t.Errorf("Subtype(&T, &U): %v", err)
	}
}

func TestSubtypeRefMutRejectsShared(t *testing.T) {
	tree := reftree.New()
	rcx := tree.RootCtxt()

	have := rty.Ref(rty.RefShr, rty.Indexed(rty.Int(32)))
	want := rty.Ref(rty.RefMut, rty.Indexed(rty.Int(32)))
	if err := Subtype(rcx, have, want, "t"); err == nil {
		t.Errorf("Subtype(&T, &mut U) should be rejected")
	}
}

func TestCheckFnCallInstantiatesParamsAndChecksArgs(t *testing.T) {
	tree := reftree.New()
	rcx := tree.RootCtxt()

	sig := &rty.FnSig{
		Params: []rty.Param{{Name: "d", Sort: rsort.Int}},
		Requires: []rty.Constr{
			rty.PredConstr(rty.Bin(rty.OpGt, rty.VarExpr(rty.Bound(0)), rty.Lit(rty.Zero))),
		},
		Args: []rty.Ty{rty.Indexed(rty.Int(32), rty.VarExpr(rty.Bound(0)))},
		Ret:  rty.Indexed(rty.Int(32), rty.VarExpr(rty.Bound(0))),
	}
	args := []rty.Ty{rty.Indexed(rty.Int(32), rty.Lit(rty.IntConst(5)))}

	ret, err := CheckFnCall(rcx, sig, args, "call")
	if err != nil {
		t.Fatalf("CheckFnCall: %v", err)
	}
	if ret.Kind != rty.TIndexed {
		t.Fatalf("CheckFnCall returned ret = %+v", ret)
	}
	if len(tree.Obligations()) == 0 {
		t.Errorf("CheckFnCall should have recorded at least one obligation (the argument subtype check)")
	}
}

func TestCheckFnCallArityMismatch(t *testing.T) {
	tree := reftree.New()
	rcx := tree.RootCtxt()
	sig := &rty.FnSig{Args: []rty.Ty{rty.Indexed(rty.Int(32))}}

	if _, err := CheckFnCall(rcx, sig, nil, "call"); err == nil {
		t.Errorf("CheckFnCall should reject a call with the wrong argument count")
	}
}

func TestCheckMkArrayWidensAndChecksElements(t *testing.T) {
	tree := reftree.New()
	rcx := tree.RootCtxt()

	elems := []rty.Ty{
		rty.Indexed(rty.Int(32), rty.Lit(rty.IntConst(1))),
		rty.Indexed(rty.Int(32), rty.Lit(rty.IntConst(2))),
	}
	widened, err := CheckMkArray(rcx, rty.Int(32), elems, "arr")
	if err != nil {
		t.Fatalf("CheckMkArray: %v", err)
	}
	if widened.Kind != rty.TIndexed || widened.Base.Kind != rty.BTInt {
		t.Errorf("CheckMkArray's element type = %+v", widened)
	}
	if len(tree.Obligations()) != len(elems) {
		t.Errorf("CheckMkArray should check every element, got %d obligations for %d elements",
			len(tree.Obligations()), len(elems))
	}
}
