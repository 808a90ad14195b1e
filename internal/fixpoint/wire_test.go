package fixpoint

import "testing"

func intLit(n int64) Expr  { return Lit(Constant{Kind: ConstInt, Int: n}) }
func boolLit(b bool) Expr  { return Lit(Constant{Kind: ConstBool, Bool: b}) }

func TestExprString(t *testing.T) {
	tests := []struct {
		name string
		e    Expr
		want string
	}{
		{"var", VarExpr("x"), "x"},
		{"int", intLit(3), "3"},
		{"bool", boolLit(true), "true"},
		{"bin", Bin(BinAdd, VarExpr("x"), intLit(1)), "x + 1"},
		{"nested bin wraps child", Bin(BinMul, Bin(BinAdd, VarExpr("x"), intLit(1)), VarExpr("y")), "(x + 1) * y"},
		{"un neg on var", Un(UnNeg, VarExpr("x")), "-x"},
		{"un neg on compound", Un(UnNeg, Bin(BinAdd, VarExpr("x"), VarExpr("y"))), "-(x + y)"},
		{"pair", PairExpr(VarExpr("a"), VarExpr("b")), "(Pair (a) (b))"},
		{"proj fst", ProjExpr(PairExpr(VarExpr("a"), VarExpr("b")), ProjFst), "(fst (Pair (a) (b)))"},
		{"ite", IfThenElse(VarExpr("c"), VarExpr("t"), VarExpr("e")), "if c then t else e"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.e.String(); got != tc.want {
				t.Errorf("String() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestPredString(t *testing.T) {
	p := ExprPred(Bin(BinGt, VarExpr("x"), intLit(0)))
	if got, want := p.String(), "(x > 0)"; got != want {
		t.Errorf("ExprPred.String() = %q, want %q", got, want)
	}

	kv := KVarPred(3, []string{"x", "y"})
	if got, want := kv.String(), "($3 x y)"; got != want {
		t.Errorf("KVarPred.String() = %q, want %q", got, want)
	}
	if !TruePred.IsTriviallyTrue() {
		t.Errorf("TruePred should be trivially true")
	}
	if ExprPred(Bin(BinGt, VarExpr("x"), intLit(0))).IsTriviallyTrue() {
		t.Errorf("a non-trivial predicate should not report trivially true")
	}
}

func TestConstraintForAllString(t *testing.T) {
	c := ForAll("x", Int, ExprPred(Bin(BinGe, VarExpr("x"), intLit(0))),
		PredC(ExprPred(Bin(BinGt, VarExpr("x"), intLit(0))), "pos"))
	got := c.String()
	want := "(forall ((x int) (x >= 0))\n  (tag (x > 0) \"pos\")\n)"
	if got != want {
		t.Errorf("Constraint.String() =\n%s\nwant\n%s", got, want)
	}
}

func TestConstraintConjString(t *testing.T) {
	c := Conj(
		PredC(ExprPred(boolLit(true)), "a"),
		PredC(ExprPred(boolLit(true)), "b"),
	)
	got := c.String()
	want := "(and\n  (tag (true) \"a\")\n  (tag (true) \"b\")\n)"
	if got != want {
		t.Errorf("Conj.String() =\n%s\nwant\n%s", got, want)
	}
}

func TestConstraintConjSingletonSkipsWrapper(t *testing.T) {
	c := Conj(PredC(ExprPred(boolLit(true)), "only"))
	got := c.String()
	want := "(tag (true) \"only\")"
	if got != want {
		t.Errorf("Conj([single]).String() = %q, want %q", got, want)
	}
}

func TestIsConcreteSkipsTrivialPreds(t *testing.T) {
	trivial := PredC(ExprPred(boolLit(true)), "t")
	if trivial.IsConcrete() {
		t.Errorf("a trivially-true predicate constraint should not be concrete")
	}
	real := PredC(ExprPred(Bin(BinGt, VarExpr("x"), intLit(0))), "t")
	if !real.IsConcrete() {
		t.Errorf("a non-trivial predicate constraint should be concrete")
	}
	if TrueConstraint.IsConcrete() {
		t.Errorf("TrueConstraint should not be concrete")
	}
}

func TestIsConcreteKVarIsNotConcreteAlone(t *testing.T) {
	c := PredC(KVarPred(1, []string{"v"}), "k")
	if c.IsConcrete() {
		t.Errorf("a bare kvar predicate should not count as a concrete proof obligation")
	}
}

func TestSortString(t *testing.T) {
	tests := []struct {
		s    Sort
		want string
	}{
		{Int, "int"},
		{Bool, "bool"},
		{BitVec(32), "(BitVec Size32)"},
		{Pair(Int, Bool), "(Pair int bool)"},
	}
	for _, tc := range tests {
		if got := tc.s.String(); got != tc.want {
			t.Errorf("Sort.String() = %q, want %q", got, tc.want)
		}
	}
}

func TestQualifierString(t *testing.T) {
	q := Qualifier{
		Name: "EqZero",
		Args: []QualArg{{Name: "v", Sort: Int}},
		Body: Bin(BinEq, VarExpr("v"), intLit(0)),
	}
	got := q.String()
	want := `(qualif EqZero ((v int)) (v = 0))`
	if got != want {
		t.Errorf("Qualifier.String() = %q, want %q", got, want)
	}
}

func TestDefaultQualifiersNonEmpty(t *testing.T) {
	if len(DefaultQualifiers) == 0 {
		t.Fatalf("DefaultQualifiers should not be empty")
	}
	for _, q := range DefaultQualifiers {
		if q.Name == "" || q.Body.String() == "" {
			t.Errorf("default qualifier %+v looks incomplete", q)
		}
	}
}
