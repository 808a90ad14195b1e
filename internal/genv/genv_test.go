package genv

import (
	"testing"

	"github.com/liquidgo/liquidgo/internal/rty"
)

func TestFixedFnSig(t *testing.T) {
	g := NewFixed()
	sig := &rty.FnSig{Ret: rty.Indexed(rty.Int(32))}
	g.Sigs["pkg::f"] = sig

	got, err := g.FnSig("pkg::f")
	if err != nil || got != sig {
		t.Fatalf("FnSig(pkg::f) = %v, %v", got, err)
	}
	if _, err := g.FnSig("pkg::missing"); err == nil {
		t.Errorf("FnSig should error for an unknown path")
	}
}

func TestFixedAdtDef(t *testing.T) {
	g := NewFixed()
	g.Adts["Option"] = &AdtDef{
		Name: "Option",
		Variants: []VariantDef{
			{Name: "None"},
			{Name: "Some", Fields: []rty.Ty{rty.Indexed(rty.Int(32))}},
		},
	}
	def, err := g.AdtDef("Option")
	if err != nil || len(def.Variants) != 2 {
		t.Fatalf("AdtDef(Option) = %+v, %v", def, err)
	}
	if _, err := g.AdtDef("Missing"); err == nil {
		t.Errorf("AdtDef should error for an unknown name")
	}
}

func TestFixedIsBox(t *testing.T) {
	g := NewFixed()
	if !g.IsBox("Box") {
		t.Errorf("default Fixed should treat %q as the box type", "Box")
	}
	if g.IsBox("Rc") {
		t.Errorf("IsBox(Rc) should be false")
	}
}
