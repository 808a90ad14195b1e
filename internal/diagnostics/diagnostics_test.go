package diagnostics

import "testing"

func TestPosString(t *testing.T) {
	if got, want := (Pos{Line: 3, Column: 5}).String(), "3:5"; got != want {
		t.Errorf("Pos.String() = %q, want %q", got, want)
	}
	if got, want := (Pos{File: "a.go", Line: 3, Column: 5}).String(), "a.go:3:5"; got != want {
		t.Errorf("Pos.String() = %q, want %q", got, want)
	}
}

func TestDiagnosticErrorString(t *testing.T) {
	e := NewError(ErrResolve, Pos{File: "a.go", Line: 1, Column: 2}, "unknown name")
	if got, want := e.Error(), `a.go:1:2: error[R001]: unknown name`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	e.Reason = "overflow"
	if got, want := e.Error(), `a.go:1:2: error[R001]: unknown name (overflow)`; got != want {
		t.Errorf("Error() with Reason = %q, want %q", got, want)
	}
}

func TestCollectorDedupesByPositionAndCode(t *testing.T) {
	c := NewCollector()
	c.Add(NewError(ErrResolve, Pos{Line: 1, Column: 1}, "first"))
	c.Add(NewError(ErrResolve, Pos{Line: 1, Column: 1}, "duplicate"))
	if c.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 after adding two errors at the same position/code", c.Len())
	}
}

func TestCollectorAddNilIsNoop(t *testing.T) {
	c := NewCollector()
	c.Add(nil)
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
}

func TestCollectorErrorsSortedByPosition(t *testing.T) {
	c := NewCollector()
	c.Add(NewError(ErrResolve, Pos{Line: 5, Column: 1}, "later"))
	c.Add(NewError(ErrResolve, Pos{Line: 1, Column: 9}, "earlier"))
	c.Add(NewError(ErrInference, Pos{Line: 1, Column: 1}, "earliest"))

	errs := c.Errors()
	if len(errs) != 3 {
		t.Fatalf("Errors() returned %d, want 3", len(errs))
	}
	if errs[0].Message != "earliest" || errs[1].Message != "earlier" || errs[2].Message != "later" {
		t.Errorf("Errors() not sorted by position: %+v", errs)
	}
}

func TestCollectorAddAll(t *testing.T) {
	c := NewCollector()
	c.AddAll([]*DiagnosticError{
		NewError(ErrResolve, Pos{Line: 1, Column: 1}, "a"),
		NewError(ErrResolve, Pos{Line: 2, Column: 1}, "b"),
	})
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
}
