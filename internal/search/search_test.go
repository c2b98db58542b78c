package search

import (
	"testing"

	"github.com/MichaelRawson/lerna/internal/formula"
	"github.com/MichaelRawson/lerna/internal/idset"
	"github.com/MichaelRawson/lerna/internal/symbol"
)

func TestRootRefutedByFalse(t *testing.T) {
	goal := idset.Of(formula.F())
	tree := New(goal, idset.Of[formula.ID]())
	if !tree.Complete() {
		t.Fatal("a goal containing $false must be immediately refuted")
	}
	proof := tree.Proof()
	if len(proof.Children) != 0 {
		t.Fatal("an already-refuted leaf has no children")
	}
}

func TestRootSimplifiedBeforeRefutationCheck(t *testing.T) {
	goal := idset.Of(formula.Not(formula.T()))
	tree := New(goal, idset.Of[formula.ID]())
	if !tree.Complete() {
		t.Fatal("~$true should simplify to $false and be immediately refuted")
	}
}

func TestStepExpandsUnrefutedGoal(t *testing.T) {
	p := formula.Prd(symbol.Intern("search-test-p", 0))
	goal := idset.Of(formula.Or(p, formula.Not(p)))
	tree := New(goal, idset.Of[formula.ID]())
	if tree.Complete() {
		t.Fatal("p | ~p should not start out refuted")
	}
	changed := tree.Step()
	if !changed {
		t.Fatal("the first Step on an unexpanded node must expand it")
	}
	if tree.TotalVisits() < 1 {
		t.Fatal("stepping should have recorded at least one visit")
	}
}

func TestOnNewLeafFiresOncePerGoal(t *testing.T) {
	p := formula.Prd(symbol.Intern("search-test-q", 0))
	goal := idset.Of(formula.Or(p, formula.Not(p)))
	tree := New(goal, idset.Of[formula.ID]())

	seen := make(map[string]int)
	tree.OnNewLeaf(func(n *Node) {
		seen[n.Goal().String()]++
	})

	for i := 0; i < 5; i++ {
		tree.Step()
	}
	for key, count := range seen {
		if count != 1 {
			t.Fatalf("goal %s: OnNewLeaf fired %d times, want exactly 1", key, count)
		}
	}
}

func TestExpansionNeverIntroducesAnAncestor(t *testing.T) {
	p := formula.Prd(symbol.Intern("search-test-cycle-p", 0))
	ax := formula.Prd(symbol.Intern("search-test-cycle-ax", 0))
	goal := idset.Of(p)
	axioms := idset.Of(ax)
	tree := New(goal, axioms)

	for i := 0; i < 64 && !tree.Complete(); i++ {
		if !tree.Step() {
			break
		}
	}

	var walk func(n *Node, path map[*Node]bool)
	walk = func(n *Node, path map[*Node]bool) {
		if path[n] {
			t.Fatalf("goal %s occurs among its own descendants", n.Goal().String())
		}
		path[n] = true
		n.mu.RLock()
		children := append([]*inferenceNode(nil), n.children...)
		n.mu.RUnlock()
		for _, c := range children {
			for _, sg := range c.subgoals {
				next := make(map[*Node]bool, len(path)+1)
				for k := range path {
					next[k] = true
				}
				walk(sg, next)
			}
		}
		delete(path, n)
	}
	walk(tree.root, make(map[*Node]bool))
}

func TestAxiomIntroductionRefutesViaContradiction(t *testing.T) {
	p := formula.Prd(symbol.Intern("search-test-axiom-contra", 0))
	goal := idset.Of(formula.Not(p))
	axioms := idset.Of(p)
	tree := New(goal, axioms)

	for i := 0; i < 8 && !tree.Complete(); i++ {
		if !tree.Step() {
			break
		}
	}
	if !tree.Complete() {
		t.Fatal("axiom p against conjecture p should be found a theorem by contradiction alone")
	}
}

func TestAndSplitRequiresBothSubgoalsRefuted(t *testing.T) {
	p := formula.Prd(symbol.Intern("search-test-and-split-p", 0))
	q := formula.Prd(symbol.Intern("search-test-and-split-q", 0))
	goal := idset.Of(formula.Imp(p, q))
	tree := New(goal, idset.Of[formula.ID]())

	tree.Step()
	tree.root.mu.RLock()
	children := append([]*inferenceNode(nil), tree.root.children...)
	tree.root.mu.RUnlock()

	found := false
	for _, c := range children {
		if len(c.subgoals) == 2 {
			found = true
			np := formula.Not(p)
			if !(c.subgoals[0].Goal().Contains(np) || c.subgoals[1].Goal().Contains(np)) {
				t.Fatal("the p => q inference should have ~p among its two subgoals")
			}
		}
	}
	if !found {
		t.Fatal("p => q should expand into a two-subgoal inference (an AND-split), not two single-subgoal ones")
	}
}

func TestSatSubgoalKillsItsInference(t *testing.T) {
	p := formula.Prd(symbol.Intern("search-test-r", 0))
	goal := idset.Of(formula.Or(p, formula.Not(p)))
	tree := New(goal, idset.Of[formula.ID]())
	tree.Step()

	tree.root.mu.RLock()
	children := append([]*inferenceNode(nil), tree.root.children...)
	tree.root.mu.RUnlock()
	if len(children) == 0 {
		t.Fatal("expected at least one inference after stepping")
	}
	children[0].subgoals[0].SetSat()
	children[0].update()
	if !children[0].Dead() {
		t.Fatal("an inference with a Sat subgoal must be marked dead")
	}
}
