package simplify

import (
	"testing"

	"github.com/MichaelRawson/lerna/internal/formula"
	"github.com/MichaelRawson/lerna/internal/idset"
	"github.com/MichaelRawson/lerna/internal/symbol"
)

func prd(name string) formula.ID {
	s := symbol.Intern(name, 0)
	return formula.Prd(s)
}

func TestBooleanPropagation(t *testing.T) {
	p := prd("p")
	if got := Simplify(formula.And(p, formula.T())); got != Simplify(p) {
		t.Fatalf("And(p, T) should simplify to p")
	}
	if got := Simplify(formula.Or(p, formula.T())); got != formula.T() {
		t.Fatalf("Or(p, T) should simplify to T, got %s", formula.String(got))
	}
	if got := Simplify(formula.And(p, formula.F())); got != formula.F() {
		t.Fatalf("And(p, F) should simplify to F, got %s", formula.String(got))
	}
}

func TestContradictionImp(t *testing.T) {
	p := prd("p")
	np := formula.Not(p)
	if got := Simplify(formula.Imp(p, np)); got != formula.F() {
		t.Fatalf("Imp(p, ~p) should simplify to F, got %s", formula.String(got))
	}
	if got := Simplify(formula.Imp(np, p)); got != formula.F() {
		t.Fatalf("Imp(~p, p) should simplify to F, got %s", formula.String(got))
	}
}

func TestContradictionAndOr(t *testing.T) {
	p := prd("p")
	np := formula.Not(p)
	if got := Simplify(formula.And(p, np)); got != formula.F() {
		t.Fatalf("And(p, ~p) should simplify to F, got %s", formula.String(got))
	}
	if got := Simplify(formula.Or(p, np)); got != formula.T() {
		t.Fatalf("Or(p, ~p) should simplify to T, got %s", formula.String(got))
	}
}

func TestDoubleNegation(t *testing.T) {
	p := prd("p")
	if got := Simplify(formula.Not(formula.Not(p))); got != Simplify(p) {
		t.Fatalf("~~p should simplify to p, got %s", formula.String(got))
	}
}

func TestAssociativityFlattening(t *testing.T) {
	p, q, r := prd("p"), prd("q"), prd("r")
	nested := formula.And(formula.And(p, q), r)
	flat := formula.And(p, q, r)
	if Simplify(nested) != Simplify(flat) {
		t.Fatalf("nested And should flatten to match the already-flat form")
	}
}

func TestCombineImplicationsIntoEqv(t *testing.T) {
	p, q := prd("p"), prd("q")
	conj := formula.And(formula.Imp(p, q), formula.Imp(q, p))
	want := formula.Eqv(p, q)
	if got := Simplify(conj); got != Simplify(want) {
		t.Fatalf("Imp(p,q) & Imp(q,p) should combine to Eqv(p,q), got %s", formula.String(got))
	}
}

func TestIdempotent(t *testing.T) {
	p, q := prd("p"), prd("q")
	f := formula.And(formula.Imp(p, q), formula.Imp(q, p), formula.T())
	once := Simplify(f)
	twice := Simplify(once)
	if once != twice {
		t.Fatalf("Simplify should be idempotent: %s != %s", formula.String(once), formula.String(twice))
	}
}

func TestSimplifyGoalCollapsesContradictingMembers(t *testing.T) {
	p, q := prd("goalp"), prd("goalq")
	goal := idset.Of(p, q, formula.Not(p))
	got := SimplifyGoal(goal)
	if got.Len() != 1 || !got.Contains(formula.F()) {
		t.Fatalf("a goal with both p and ~p as separate members should collapse to {$false}, got %s", got.String())
	}
}

func TestSimplifyGoalLeavesConsistentGoalAlone(t *testing.T) {
	p, q := prd("goalr"), prd("goals")
	goal := idset.Of(p, q)
	got := SimplifyGoal(goal)
	if !got.Contains(p) || !got.Contains(q) {
		t.Fatalf("a consistent goal should not be rewritten, got %s", got.String())
	}
}
