package formula

import (
	"testing"

	"github.com/MichaelRawson/lerna/internal/symbol"
	"github.com/MichaelRawson/lerna/internal/term"
)

func prd(name string) ID {
	s := symbol.Intern(name, 0)
	return Prd(s)
}

func TestInternIsStructural(t *testing.T) {
	p := prd("internp")
	if Not(p) != Not(p) {
		t.Fatal("structurally identical formulae must intern to the same id")
	}
}

func TestAndOrTrivialCollapse(t *testing.T) {
	if And() != T() {
		t.Fatal("empty And must collapse to T")
	}
	if Or() != F() {
		t.Fatal("empty Or must collapse to F")
	}
	p := prd("singletonp")
	if And(p) != p {
		t.Fatal("singleton And must collapse to its sole child")
	}
	if Or(p) != p {
		t.Fatal("singleton Or must collapse to its sole child")
	}
}

func TestAndOrDedup(t *testing.T) {
	p := prd("dedupp")
	q := prd("dedupq")
	a := And(p, q, p)
	b := And(q, p)
	if a != b {
		t.Fatal("And must dedup and be order-insensitive")
	}
}

func TestEqTrivialCollapse(t *testing.T) {
	c := symbol.Intern("eqc", 0)
	t1 := term.Fn(c)
	if Eq() != T() {
		t.Fatal("Eq with no terms must collapse to T")
	}
	if Eq(t1) != T() {
		t.Fatal("Eq with one term must collapse to T")
	}
}

func TestEqvTrivialCollapse(t *testing.T) {
	p := prd("eqvp")
	if Eqv() != T() {
		t.Fatal("Eqv with no members must collapse to T")
	}
	if Eqv(p) != T() {
		t.Fatal("Eqv with one member must collapse to T")
	}
}

func TestInstantiateSimple(t *testing.T) {
	c := symbol.Intern("instc", 0)
	p := symbol.Intern("instp", 1)
	// All(p(X0)) instantiated with c should give p(c).
	body := Prd(p, term.Var(0))
	got := Instantiate(body, -1, term.Fn(c))
	want := Prd(p, term.Fn(c))
	if got != want {
		t.Fatalf("expected %s, got %s", String(want), String(got))
	}
}

func TestSymbolsCollectsNestedFormula(t *testing.T) {
	f := symbol.Intern("symf", 1)
	p := symbol.Intern("symp", 1)
	body := Prd(p, term.Fn(f, term.Var(0)))
	syms := Symbols(body)
	if !syms.Contains(f) {
		t.Fatal("expected function symbol in formula symbol set")
	}
	if !syms.Contains(p) {
		t.Fatal("expected predicate symbol in formula symbol set")
	}
}
