package rty

import "testing"

func TestExprString(t *testing.T) {
	tests := []struct {
		name string
		e    Expr
		want string
	}{
		{"var", VarExpr(Bound(0)), "^0"},
		{"const int", Lit(IntConst(3)), "3"},
		{"const bool", Lit(True), "true"},
		{"binop", Bin(OpAdd, VarExpr(Bound(0)), Lit(One)), "(^0 + 1)"},
		{"unop", Un(OpNeg, VarExpr(Bound(0))), "-(^0)"},
		{"app", App("abs", VarExpr(Bound(0))), "(abs ^0)"},
		{"tuple", Tuple(Lit(Zero), Lit(One)), "(0 1)"},
		{"kvar", KVarExpr(3, []Var{Free(1), Free(2)}), "$3 x1 x2"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.e.String(); got != tc.want {
				t.Errorf("String() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestIsTriviallyTrue(t *testing.T) {
	if !Lit(True).IsTriviallyTrue() {
		t.Errorf("Lit(True) should be trivially true")
	}
	if Lit(BoolConst(false)).IsTriviallyTrue() {
		t.Errorf("Lit(false) should not be trivially true")
	}
	if VarExpr(Bound(0)).IsTriviallyTrue() {
		t.Errorf("a bound variable should not be trivially true")
	}
}

func TestVarKinds(t *testing.T) {
	if b := Bound(2); b.Kind != VarBound || b.Index != 2 {
		t.Errorf("Bound(2) = %+v", b)
	}
	if f := Free(5); f.Kind != VarFree || f.Index != 5 {
		t.Errorf("Free(5) = %+v", f)
	}
	if e := EVar(1); e.Kind != VarEVar || e.Index != 1 {
		t.Errorf("EVar(1) = %+v", e)
	}
}
