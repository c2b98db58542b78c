package deduce

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

func TestAxiomRuleAddsMissingAxiom(t *testing.T) {
	p := prd("axp")
	goal := idset.Of[formula.ID]()
	axioms := idset.Of(p)
	out := axiomRule{}.Deduce(goal, axioms)
	if len(out) != 1 {
		t.Fatalf("expected one candidate, got %d", len(out))
	}
	if len(out[0]) != 1 || !out[0][0].Contains(p) {
		t.Fatal("expected a single-subgoal inference adding the axiom")
	}
}

func TestAxiomRuleSkipsPresent(t *testing.T) {
	p := prd("axp2")
	goal := idset.Of(p)
	axioms := idset.Of(p)
	out := axiomRule{}.Deduce(goal, axioms)
	if len(out) != 0 {
		t.Fatal("an already-present axiom must not be re-added")
	}
}

func TestCompleteOrSplitsDisjunction(t *testing.T) {
	p, q := prd("compp"), prd("compq")
	goal := idset.Of(formula.Or(p, q))
	out := completeRule{}.Deduce(goal, idset.Of[formula.ID]())
	found := false
	for _, inf := range out {
		if len(inf) != 2 {
			continue
		}
		if (inf[0].Contains(p) && inf[1].Contains(q)) || (inf[0].Contains(q) && inf[1].Contains(p)) {
			found = true
		}
	}
	if !found {
		t.Fatal("p | q should split into two independent subgoals p, q within one inference")
	}
}

func TestCompleteImpSplits(t *testing.T) {
	p, q := prd("compp2"), prd("compq2")
	goal := idset.Of(formula.Imp(p, q))
	out := completeRule{}.Deduce(goal, idset.Of[formula.ID]())
	found := false
	np := formula.Not(p)
	for _, inf := range out {
		if len(inf) != 2 {
			continue
		}
		if inf[0].Contains(np) && inf[1].Contains(q) {
			found = true
		}
	}
	if !found {
		t.Fatal("p => q should split into two independent subgoals ~p, q")
	}
}

func TestCompleteNegatedAndIsOneAndSplitInference(t *testing.T) {
	p, q := prd("compnotandp"), prd("compnotandq")
	goal := idset.Of(formula.Not(formula.And(p, q)))
	out := completeRule{}.Deduce(goal, idset.Of[formula.ID]())
	found := false
	np, nq := formula.Not(p), formula.Not(q)
	for _, inf := range out {
		if len(inf) != 2 {
			continue
		}
		sawNP := inf[0].Contains(np) || inf[1].Contains(np)
		sawNQ := inf[0].Contains(nq) || inf[1].Contains(nq)
		if sawNP && sawNQ {
			found = true
		}
	}
	if !found {
		t.Fatal("~(p & q) should split into two independent subgoals ~p, ~q within one inference")
	}
}

func TestCompleteNegatedImpIsOneMergedSubgoal(t *testing.T) {
	p, q := prd("compnotimpp"), prd("compnotimpq")
	goal := idset.Of(formula.Not(formula.Imp(p, q)))
	out := completeRule{}.Deduce(goal, idset.Of[formula.ID]())
	found := false
	nq := formula.Not(q)
	for _, inf := range out {
		if len(inf) == 1 && inf[0].Contains(formula.And(p, nq)) {
			found = true
		}
	}
	if !found {
		t.Fatal("~(p => q) should produce a single merged subgoal containing p & ~q")
	}
}

func TestWeakeningDropsConjunct(t *testing.T) {
	p, q := prd("weakp"), prd("weakq")
	goal := idset.Of(p, q)
	out := weakeningRule{}.Deduce(goal, idset.Of[formula.ID]())
	found := false
	for _, inf := range out {
		if len(inf) == 1 && inf[0].Len() == 1 && inf[0].Contains(q) {
			found = true
		}
	}
	if !found {
		t.Fatal("weakening should allow dropping a whole conjunct")
	}
}
