// Package deduce implements the two families of sound inference rules a
// goal can be expanded by: complete (equivalence-preserving) rules and
// weakening rules, plus the axiom-introduction rule.
//
// Grounded on original_source/src/deduction/{complete,weakening,axiom}.rs
// for the rule bodies, restructured around a Rule interface collected in
// a slice the way
// operator-framework-operator-lifecycle-manager's
// pkg/controller/registry/resolver/solver/constraints.go groups its
// constraint shapes (one type per shape, applied uniformly by the
// solver loop) — the same SAT-adjacent neighbourhood this prover's own
// oracle package draws gini from.
package deduce

import (
	"github.com/MichaelRawson/lerna/internal/formula"
	"github.com/MichaelRawson/lerna/internal/idset"
	"github.com/MichaelRawson/lerna/internal/symbol"
	"github.com/MichaelRawson/lerna/internal/term"
)

// Goal is the conjunctive set of formulae a deduction step expands.
type Goal = idset.Set[formula.ID]

// Inference is one sound alternative for a goal: a list of independent
// subgoals every one of which must be refuted (an AND-split) for the
// inference to certify the original goal refuted. A single-element
// Inference is the common case (the replacement stays one goal); a
// multi-element one is what original_source/src/inference.rs's
// Inference{add,remove}/Inferred{inferences} calls a genuine case split,
// e.g. p => q splitting into the two independent subgoals ~p and q.
type Inference []Goal

// Rule produces zero or more alternative Inferences, each a sound
// strengthening (complete rules) or broadening (weakening rules) of
// goal, given the axioms available for the Axiom rule.
type Rule interface {
	Deduce(goal Goal, axioms Goal) []Inference
}

// Rules returns every rule the search engine should try at each
// expansion, in the order the original groups them: axiom introduction,
// then the complete rules, then the weakening rules.
func Rules() []Rule {
	return []Rule{
		axiomRule{},
		completeRule{},
		weakeningRule{},
	}
}

// splitMember turns each candidate replacement for f into its own
// Inference: every element of c becomes an independent subgoal (f's
// background plus that one element), all of which must be refuted
// together. This is the AND-split original_source/src/deduction/complete.rs's
// multi-member completions and inference.rs's Inferred require: distinct
// candidates (the outer slice) are alternatives to try (an OR across
// Rule.Deduce's results), but the elements of one candidate (the inner
// slice) are simultaneous obligations, not alternatives to each other.
func splitMember(goal Goal, f formula.ID, candidates [][]formula.ID) []Inference {
	background := goal.Without(f)
	out := make([]Inference, 0, len(candidates))
	for _, c := range candidates {
		inf := make(Inference, len(c))
		for i, replacement := range c {
			inf[i] = background.With(replacement)
		}
		out = append(out, inf)
	}
	return out
}

// --- axiom introduction --------------------------------------------------

type axiomRule struct{}

// Deduce adds each axiom not already present in goal, one at a time.
func (axiomRule) Deduce(goal Goal, axioms Goal) []Inference {
	var out []Inference
	for _, ax := range axioms.Members() {
		if !goal.Contains(ax) {
			out = append(out, Inference{goal.With(ax)})
		}
	}
	return out
}

// --- complete (equivalence-preserving) rules -----------------------------

type completeRule struct{}

func (completeRule) Deduce(goal Goal, _ Goal) []Inference {
	return completeGoal(goal, goalSymbols(goal))
}

func completeGoal(goal Goal, symbols []symbolArity) []Inference {
	var out []Inference
	for _, f := range goal.Members() {
		candidates := completeFormula(f, symbols)
		out = append(out, splitMember(goal, f, candidates)...)
	}
	return out
}

type symbolArity struct {
	Sym   symbol.ID
	Arity int
}

func goalSymbols(goal Goal) []symbolArity {
	seen := make(map[symbol.ID]struct{})
	var out []symbolArity
	for _, f := range goal.Members() {
		for _, s := range formula.Symbols(f).Members() {
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, symbolArity{Sym: s, Arity: symbol.Arity(s)})
		}
	}
	return out
}

// completeFormula mirrors original_source/src/deduction/complete.rs's
// `complete` function: each returned []formula.ID is a set of formulae
// that may replace f in its goal without losing solutions.
func completeFormula(f formula.ID, symbols []symbolArity) [][]formula.ID {
	fm := formula.Lookup(f)
	switch fm.Kind {
	case formula.KindT, formula.KindF, formula.KindPrd, formula.KindEq:
		return nil
	case formula.KindNot:
		return completeNegated(fm.Sub)
	case formula.KindImp:
		return [][]formula.ID{{formula.Not(fm.Left), fm.Right}}
	case formula.KindOr:
		return [][]formula.ID{fm.Children.Members()}
	case formula.KindAnd:
		return completeAnd(fm.Children)
	case formula.KindEqv:
		return completeEqv(fm.Children)
	case formula.KindAll:
		return completeAll(f, fm.Sub, symbols)
	case formula.KindEx:
		return completeEx(fm.Sub)
	default:
		return nil
	}
}

func completeNegated(p formula.ID) [][]formula.ID {
	pf := formula.Lookup(p)
	switch pf.Kind {
	case formula.KindT:
		return [][]formula.ID{{formula.F()}}
	case formula.KindF:
		return [][]formula.ID{{formula.T()}}
	case formula.KindPrd:
		return nil
	case formula.KindEq:
		terms := pf.Terms.Members()
		if len(terms) <= 2 {
			return nil
		}
		var disequalities []formula.ID
		for i := 0; i < len(terms); i++ {
			for j := i + 1; j < len(terms); j++ {
				disequalities = append(disequalities, formula.Not(formula.Eq(terms[i], terms[j])))
			}
		}
		return [][]formula.ID{disequalities}
	case formula.KindNot:
		return [][]formula.ID{{pf.Sub}}
	case formula.KindImp:
		return [][]formula.ID{{formula.And(pf.Left, formula.Not(pf.Right))}}
	case formula.KindOr:
		var negated []formula.ID
		for _, c := range pf.Children.Members() {
			negated = append(negated, formula.Not(c))
		}
		return [][]formula.ID{{formula.And(negated...)}}
	case formula.KindAnd:
		var negated []formula.ID
		for _, c := range pf.Children.Members() {
			negated = append(negated, formula.Not(c))
		}
		return [][]formula.ID{negated}
	case formula.KindEqv:
		members := pf.Children.Members()
		var combined []formula.ID
		for i, p := range members {
			for j, q := range members {
				if i == j {
					continue
				}
				combined = append(combined, formula.And(p, formula.Not(q)))
			}
		}
		return [][]formula.ID{combined}
	case formula.KindAll:
		return [][]formula.ID{{formula.Ex(formula.Not(pf.Sub))}}
	case formula.KindEx:
		return [][]formula.ID{{formula.All(formula.Not(pf.Sub))}}
	default:
		return nil
	}
}

func completeAnd(ps idset.Set[formula.ID]) [][]formula.ID {
	var out [][]formula.ID
	members := ps.Members()
	for _, p := range members {
		background := ps.Without(p)
		for _, sub := range completeFormula(p, nil) {
			combined := make([]formula.ID, 0, len(sub))
			for _, s := range sub {
				combined = append(combined, formula.And(background.With(s).Members()...))
			}
			out = append(out, combined)
		}
	}
	return out
}

func completeEqv(ps idset.Set[formula.ID]) [][]formula.ID {
	members := ps.Members()
	var out [][]formula.ID
	for _, p := range members {
		rest := ps.Without(p)
		for _, q := range rest.Members() {
			restWithoutQ := rest.Without(q)
			positive := formula.And(append(append([]formula.ID{}, restWithoutQ.Members()...), p, q)...)
			negative := formula.And(append(append([]formula.ID{}, restWithoutQ.Members()...), formula.Not(p), formula.Not(q))...)
			out = append(out, []formula.ID{positive, negative})
		}
	}
	return out
}

func completeAll(f, body formula.ID, symbols []symbolArity) [][]formula.ID {
	var out [][]formula.ID
	for _, sa := range symbols {
		args := make([]term.ID, sa.Arity)
		for i := range args {
			args[i] = term.Var(sa.Arity - 1 - i)
		}
		replacement := term.Fn(sa.Sym, args...)
		instantiated := formula.Instantiate(body, sa.Arity-1, replacement)
		for i := 0; i < sa.Arity; i++ {
			instantiated = formula.All(instantiated)
		}
		out = append(out, []formula.ID{formula.And(f, instantiated)})
	}

	intro := symbol.Fresh(0)
	instantiated := formula.Instantiate(body, -1, term.Fn(intro))
	out = append(out, []formula.ID{instantiated})
	return out
}

func completeEx(body formula.ID) [][]formula.ID {
	intro := symbol.Fresh(0)
	instantiated := formula.Instantiate(body, -1, term.Fn(intro))
	return [][]formula.ID{{instantiated}}
}

// --- weakening rules ------------------------------------------------------

type weakeningRule struct{}

func (weakeningRule) Deduce(goal Goal, _ Goal) []Inference {
	var out []Inference
	for _, f := range goal.Members() {
		background := goal.Without(f)
		out = append(out, Inference{background})
		for _, candidate := range weakenFormula(f) {
			out = append(out, Inference{background.With(candidate)})
		}
	}
	return out
}

// weakenFormula mirrors original_source/src/deduction/weakening.rs's
// `weaken`: each returned id is a strictly weaker replacement for f.
func weakenFormula(f formula.ID) []formula.ID {
	fm := formula.Lookup(f)
	switch fm.Kind {
	case formula.KindEq:
		terms := fm.Terms.Members()
		if len(terms) <= 2 {
			return nil
		}
		var out []formula.ID
		for i := range terms {
			rest := make([]term.ID, 0, len(terms)-1)
			for j, t := range terms {
				if j != i {
					rest = append(rest, t)
				}
			}
			out = append(out, formula.Eq(rest...))
		}
		return out
	case formula.KindAnd:
		members := fm.Children.Members()
		var out []formula.ID
		for _, p := range members {
			rest := fm.Children.Without(p)
			out = append(out, formula.And(rest.Members()...))
		}
		for _, p := range members {
			rest := fm.Children.Without(p)
			for _, q := range weakenFormula(p) {
				out = append(out, formula.And(rest.With(q).Members()...))
			}
		}
		return out
	case formula.KindEqv:
		if fm.Children.Len() <= 2 {
			return nil
		}
		var out []formula.ID
		for _, p := range fm.Children.Members() {
			out = append(out, formula.Eqv(fm.Children.Without(p).Members()...))
		}
		return out
	default:
		return nil
	}
}
