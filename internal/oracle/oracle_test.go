package oracle

import (
	"context"
	"testing"

	"github.com/MichaelRawson/lerna/internal/formula"
	"github.com/MichaelRawson/lerna/internal/idset"
	"github.com/MichaelRawson/lerna/internal/status"
	"github.com/MichaelRawson/lerna/internal/symbol"
)

func TestConsultShortcutsTrivialGoals(t *testing.T) {
	ctx := context.Background()
	if got := Consult(ctx, Null{}, idset.Of(formula.F())); got != status.Unsat {
		t.Fatalf("a goal containing $false must be Unsat without consulting the oracle, got %s", got)
	}
	if got := Consult(ctx, Null{}, idset.Of(formula.T())); got != status.Sat {
		t.Fatalf("the trivial goal {$true} must be Sat without consulting the oracle, got %s", got)
	}
}

func TestNullIsAlwaysUnknown(t *testing.T) {
	p := formula.Prd(symbol.Intern("oraclep", 0))
	got := Null{}.Consult(context.Background(), idset.Of(p))
	if got != status.Unknown {
		t.Fatalf("Null must always report Unknown, got %s", got)
	}
}

func TestSATDetectsPropositionalContradiction(t *testing.T) {
	p := formula.Prd(symbol.Intern("oracleq", 0))
	goal := idset.Of(p, formula.Not(p))
	got := SAT{}.Consult(context.Background(), goal)
	if got != status.Unsat {
		t.Fatalf("p & ~p is propositionally unsatisfiable, expected Unsat, got %s", got)
	}
}

func TestSATReportsUnknownWhenSatisfiable(t *testing.T) {
	p := formula.Prd(symbol.Intern("oracler", 0))
	goal := idset.Of(p)
	got := SAT{}.Consult(context.Background(), goal)
	if got != status.Unknown {
		t.Fatalf("a satisfiable abstraction must report Unknown (unsound to claim Sat), got %s", got)
	}
}

func TestPoolDelegatesToOracle(t *testing.T) {
	pool := NewPool(Null{}, 2)
	p := formula.Prd(symbol.Intern("oracles", 0))
	got := pool.Consult(context.Background(), idset.Of(p))
	if got != status.Unknown {
		t.Fatalf("pool should delegate to the underlying oracle, got %s", got)
	}
}
