package fixpoint

import (
	"strings"
	"testing"

	"github.com/liquidgo/liquidgo/internal/kvars"
	"github.com/liquidgo/liquidgo/internal/reftree"
	"github.com/liquidgo/liquidgo/internal/rsort"
	"github.com/liquidgo/liquidgo/internal/rty"
)

func TestEncodeForAllGuardHead(t *testing.T) {
	tree := reftree.New()
	rcx := tree.RootCtxt()

	v := rcx.DefineVar(rsort.Int)
	rcx.AssumePred(rty.Bin(rty.OpGt, rty.VarExpr(v), rty.Lit(rty.Zero)))
	rcx.CheckPred(rty.Bin(rty.OpGe, rty.VarExpr(v), rty.Lit(rty.Zero)), "nonneg")

	c := NewCtx(kvars.NewStore()).Encode(tree)
	got := c.String()

	if !strings.Contains(got, "forall") {
		t.Errorf("encoded constraint should contain a forall binder for the defined var:\n%s", got)
	}
	if !strings.Contains(got, "nonneg") {
		t.Errorf("encoded constraint should carry the obligation's tag:\n%s", got)
	}
	if !strings.Contains(got, ">= 0") {
		t.Errorf("encoded constraint should carry the checked predicate:\n%s", got)
	}
}

func TestEncodeGuardWrapsAssumption(t *testing.T) {
	tree := reftree.New()
	rcx := tree.RootCtxt()

	v := rcx.DefineVar(rsort.Bool)
	rcx.AssumePred(rty.VarExpr(v))
	rcx.CheckPred(rty.Lit(rty.True), "under-guard")

	c := NewCtx(kvars.NewStore()).Encode(tree)
	got := c.String()
	if !strings.Contains(got, "under-guard") {
		t.Errorf("a checked predicate nested under an assumption should still be encoded:\n%s", got)
	}
}

func TestEncodeExprKVarBecomesPredKVar(t *testing.T) {
	tree := reftree.New()
	rcx := tree.RootCtxt()
	store := kvars.NewStore()

	v := rcx.DefineVar(rsort.Int)
	id, _ := store.Fresh([]rsort.Sort{rsort.Int}, nil, kvars.Single, "test")
	rcx.CheckPred(rty.KVarExpr(uint32(id), []rty.Var{v}), "kvar-head")

	c := NewCtx(store).Encode(tree)
	got := c.String()
	if !strings.Contains(got, "$") {
		t.Errorf("a checked kvar hole should encode as a wire Pred::KVar:\n%s", got)
	}
}

func TestKVarDeclsListsEachAllocatedKVar(t *testing.T) {
	store := kvars.NewStore()
	store.Fresh([]rsort.Sort{rsort.Int}, nil, kvars.Single, "v1")
	store.Fresh([]rsort.Sort{rsort.Bool}, nil, kvars.Single, "v2")

	decls := KVarDecls(store)
	if len(decls) != store.Len() {
		t.Fatalf("KVarDecls returned %d entries, store has %d kvars", len(decls), store.Len())
	}
	for i, d := range decls {
		if !strings.Contains(d, "$") {
			t.Errorf("decl %d = %q missing kvar marker", i, d)
		}
	}
}

func TestSortOfScalars(t *testing.T) {
	if got := sortOf(rsort.Int); got.Kind != SInt {
		t.Errorf("sortOf(Int) = %v", got)
	}
	if got := sortOf(rsort.Bool); got.Kind != SBool {
		t.Errorf("sortOf(Bool) = %v", got)
	}
}

func TestSortOfTupleRightNests(t *testing.T) {
	tup := rsort.Tuple(rsort.Bool, rsort.Int, rsort.Bool)
	got := sortOf(tup)
	if got.Kind != SPair {
		t.Fatalf("sortOf(3-tuple) = %v, want a right-nested Pair", got)
	}
}
