// Package simplify rewrites a formula bottom-up into a smaller, logically
// equivalent canonical form, to a fixed point, and rewrites a whole goal
// by simplifying each member and then collapsing it if it is
// self-contradictory.
//
// Simplify is grounded on the most developed of the original snapshots,
// original_source/src/simplification/propositional.rs
// (boolean_propagation / contradiction / combine_equivalence_classes /
// combine_implications / double_negation / lift_associative /
// trivial_nary), superseding the stubbed-out per-goal `simplify_step` in
// original_source/src/simplifications/mod.rs ("fn simplify_step ...
// goal.clone()"). SimplifyGoal's contradiction check is grounded
// separately on that package's sibling file,
// original_source/src/simplifications/contradiction.rs, which is a real
// (non-stub) goal-level function despite living next to simplify_step's
// stub: it scans a goal's members for some f with both f and ~f present
// and, if so, collapses the whole goal to {$false}.
package simplify

import (
	"sync"

	"github.com/MichaelRawson/lerna/internal/formula"
	"github.com/MichaelRawson/lerna/internal/idset"
	"github.com/MichaelRawson/lerna/internal/term"
)

// Goal is the conjunctive set of formulae a goal-level simplification
// rewrites.
type Goal = idset.Set[formula.ID]

// SimplifyGoal simplifies every member of goal to its fixed point, then
// applies the contradiction.rs check: if the resulting set contains both
// some f and its negation, the whole goal collapses to {$false}, since a
// goal containing a literal contradiction is refuted regardless of what
// else it contains.
func SimplifyGoal(goal Goal) Goal {
	members := goal.Members()
	out := make([]formula.ID, len(members))
	for i, f := range members {
		out[i] = Simplify(f)
	}
	simplified := idset.Of(out...)
	for _, f := range simplified.Members() {
		if simplified.Contains(formula.Not(f)) {
			return idset.Of(formula.F())
		}
	}
	return simplified
}

var cache sync.Map // formula.ID -> formula.ID, memoizes the full fixed point

// Simplify rewrites id to a logically equivalent, simpler fixed point.
// Simplify(Simplify(f)) == Simplify(f) always (spec.md §8 property 2):
// after the children are simplified, top-level rewrites repeat until the
// id stops changing, and the result is cached under both id and itself.
func Simplify(id formula.ID) formula.ID {
	if v, ok := cache.Load(id); ok {
		return v.(formula.ID)
	}
	withSimplifiedChildren := simplifyChildren(id)
	result := fixpointTop(withSimplifiedChildren)
	cache.Store(id, result)
	cache.Store(result, result)
	return result
}

// simplifyChildren rebuilds id with every immediate subpart replaced by
// its own fixed point, i.e. performs the "bottom-up" half of spec.md
// §4.2.
func simplifyChildren(id formula.ID) formula.ID {
	f := formula.Lookup(id)
	switch f.Kind {
	case formula.KindT, formula.KindF, formula.KindEq, formula.KindPrd:
		return id
	case formula.KindNot:
		return formula.Not(Simplify(f.Sub))
	case formula.KindImp:
		return formula.Imp(Simplify(f.Left), Simplify(f.Right))
	case formula.KindOr:
		return formula.Or(simplifyMembers(f.Children)...)
	case formula.KindAnd:
		return formula.And(simplifyMembers(f.Children)...)
	case formula.KindEqv:
		return formula.Eqv(simplifyMembers(f.Children)...)
	case formula.KindAll:
		return formula.All(Simplify(f.Sub))
	case formula.KindEx:
		return formula.Ex(Simplify(f.Sub))
	default:
		return id
	}
}

func simplifyMembers(cs interface{ Members() []formula.ID }) []formula.ID {
	members := cs.Members()
	out := make([]formula.ID, len(members))
	for i, m := range members {
		out[i] = Simplify(m)
	}
	return out
}

// fixpointTop repeatedly applies one pass of top-level rewrite rules
// (the children are already simplified fixed points, so only the node's
// own shape can still change) until the id stops changing.
func fixpointTop(id formula.ID) formula.ID {
	for {
		next := rewriteOnce(id)
		if next == id {
			return id
		}
		id = next
	}
}

// rewriteOnce applies, in order: boolean propagation, contradiction
// detection, equivalence-class combination, implication pairing, double
// negation, associativity flattening, and n-ary triviality.
func rewriteOnce(id formula.ID) formula.ID {
	id = booleanPropagation(id)
	id = contradiction(id)
	id = combineEquivalenceClasses(id)
	id = combineImplications(id)
	id = doubleNegation(id)
	id = liftAssociative(id)
	id = trivialNary(id)
	return id
}

func negationOf(a, b formula.ID) bool {
	fb := formula.Lookup(b)
	if fb.Kind == formula.KindNot && fb.Sub == a {
		return true
	}
	fa := formula.Lookup(a)
	if fa.Kind == formula.KindNot && fa.Sub == b {
		return true
	}
	return false
}

func booleanPropagation(id formula.ID) formula.ID {
	f := formula.Lookup(id)
	switch f.Kind {
	case formula.KindNot:
		switch formula.Lookup(f.Sub).Kind {
		case formula.KindT:
			return formula.F()
		case formula.KindF:
			return formula.T()
		}
	case formula.KindImp:
		p, q := formula.Lookup(f.Left).Kind, formula.Lookup(f.Right).Kind
		switch {
		case p == formula.KindT:
			return f.Right
		case p == formula.KindF:
			return formula.T()
		case q == formula.KindT:
			return formula.T()
		case q == formula.KindF:
			return formula.Not(f.Left)
		}
	case formula.KindAnd:
		members := f.Children.Members()
		for _, m := range members {
			if formula.Lookup(m).Kind == formula.KindF {
				return formula.F()
			}
		}
		kept := filterOutKind(members, formula.KindT)
		return formula.And(kept...)
	case formula.KindOr:
		members := f.Children.Members()
		for _, m := range members {
			if formula.Lookup(m).Kind == formula.KindT {
				return formula.T()
			}
		}
		kept := filterOutKind(members, formula.KindF)
		return formula.Or(kept...)
	case formula.KindEqv:
		members := f.Children.Members()
		for _, m := range members {
			if formula.Lookup(m).Kind == formula.KindF {
				negated := make([]formula.ID, 0, len(members)-1)
				for _, o := range members {
					if o == m {
						continue
					}
					negated = append(negated, formula.Not(o))
				}
				return formula.And(negated...)
			}
		}
		kept := filterOutKind(members, formula.KindT)
		return formula.Eqv(kept...)
	}
	return id
}

func filterOutKind(members []formula.ID, kind formula.Kind) []formula.ID {
	out := make([]formula.ID, 0, len(members))
	for _, m := range members {
		if formula.Lookup(m).Kind != kind {
			out = append(out, m)
		}
	}
	return out
}

func contradiction(id formula.ID) formula.ID {
	f := formula.Lookup(id)
	switch f.Kind {
	case formula.KindImp:
		if negationOf(f.Left, f.Right) {
			return formula.F()
		}
	case formula.KindAnd:
		if anyPairNegated(f.Children.Members()) {
			return formula.F()
		}
	case formula.KindOr:
		if anyPairNegated(f.Children.Members()) {
			return formula.T()
		}
	case formula.KindEqv:
		if anyPairNegated(f.Children.Members()) {
			return formula.F()
		}
	}
	return id
}

func anyPairNegated(members []formula.ID) bool {
	for _, a := range members {
		for _, b := range members {
			if a != b && negationOf(a, b) {
				return true
			}
		}
	}
	return false
}

// combineEquivalenceClasses merges, within a conjunction, any Eq classes
// (or any Eqv classes, separately) that share a member, by transitive
// closure.
func combineEquivalenceClasses(id formula.ID) formula.ID {
	f := formula.Lookup(id)
	if f.Kind != formula.KindAnd {
		return id
	}
	members := f.Children.Members()

	eqClasses := collectClasses(members, formula.KindEq)
	eqvClasses := collectClasses(members, formula.KindEqv)
	if len(eqClasses) == 0 && len(eqvClasses) == 0 {
		return id
	}

	mergedEq := mergeOverlapping(eqClasses)
	mergedEqv := mergeOverlapping(eqvClasses)

	out := make([]formula.ID, 0, len(members))
	for _, cls := range mergedEq {
		out = append(out, formula.Eq(toTermIDs(cls)...))
	}
	for _, cls := range mergedEqv {
		out = append(out, formula.Eqv(toFormulaIDs(cls)...))
	}
	for _, m := range members {
		k := formula.Lookup(m).Kind
		if k == formula.KindEq || k == formula.KindEqv {
			continue
		}
		out = append(out, m)
	}
	return formula.And(out...)
}

// classMembers is a generic holder so Eq (term ids) and Eqv (formula
// ids) can share the overlap-merge logic via a uint64 projection.
type classMembers struct {
	raw []uint64
}

func collectClasses(members []formula.ID, kind formula.Kind) []classMembers {
	var classes []classMembers
	for _, m := range members {
		f := formula.Lookup(m)
		if f.Kind != kind {
			continue
		}
		var raw []uint64
		if kind == formula.KindEq {
			for _, t := range f.Terms.Members() {
				raw = append(raw, uint64(t))
			}
		} else {
			for _, c := range f.Children.Members() {
				raw = append(raw, uint64(c))
			}
		}
		classes = append(classes, classMembers{raw: raw})
	}
	return classes
}

func mergeOverlapping(classes []classMembers) [][]uint64 {
	merged := make([][]uint64, len(classes))
	for i, c := range classes {
		merged[i] = append([]uint64(nil), c.raw...)
	}
	changed := true
	for changed {
		changed = false
		for i := 0; i < len(merged); i++ {
			for j := i + 1; j < len(merged); j++ {
				if merged[i] == nil || merged[j] == nil {
					continue
				}
				if overlaps(merged[i], merged[j]) {
					merged[i] = union(merged[i], merged[j])
					merged[j] = nil
					changed = true
				}
			}
		}
	}
	var out [][]uint64
	for _, m := range merged {
		if m != nil {
			out = append(out, m)
		}
	}
	return out
}

func overlaps(a, b []uint64) bool {
	set := make(map[uint64]struct{}, len(a))
	for _, v := range a {
		set[v] = struct{}{}
	}
	for _, v := range b {
		if _, ok := set[v]; ok {
			return true
		}
	}
	return false
}

func union(a, b []uint64) []uint64 {
	set := make(map[uint64]struct{}, len(a)+len(b))
	var out []uint64
	for _, v := range append(append([]uint64{}, a...), b...) {
		if _, ok := set[v]; !ok {
			set[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

func toTermIDs(raw []uint64) []term.ID {
	out := make([]term.ID, len(raw))
	for i, v := range raw {
		out[i] = term.ID(v)
	}
	return out
}

func toFormulaIDs(raw []uint64) []formula.ID {
	out := make([]formula.ID, len(raw))
	for i, v := range raw {
		out[i] = formula.ID(v)
	}
	return out
}

func combineImplications(id formula.ID) formula.ID {
	f := formula.Lookup(id)
	if f.Kind != formula.KindAnd {
		return id
	}
	members := f.Children.Members()
	for _, p := range members {
		pf := formula.Lookup(p)
		if pf.Kind != formula.KindImp {
			continue
		}
		reverse := formula.Imp(pf.Right, pf.Left)
		for _, q := range members {
			if q == reverse {
				eqv := formula.Eqv(pf.Left, pf.Right)
				out := make([]formula.ID, 0, len(members)-1)
				for _, m := range members {
					if m == p || m == reverse {
						continue
					}
					out = append(out, m)
				}
				out = append(out, eqv)
				return formula.And(out...)
			}
		}
	}
	return id
}

func doubleNegation(id formula.ID) formula.ID {
	f := formula.Lookup(id)
	if f.Kind != formula.KindNot {
		return id
	}
	sub := formula.Lookup(f.Sub)
	if sub.Kind == formula.KindNot {
		return sub.Sub
	}
	return id
}

func liftAssociative(id formula.ID) formula.ID {
	f := formula.Lookup(id)
	switch f.Kind {
	case formula.KindAnd:
		return formula.And(flatten(f.Children.Members(), formula.KindAnd)...)
	case formula.KindOr:
		return formula.Or(flatten(f.Children.Members(), formula.KindOr)...)
	}
	return id
}

func flatten(members []formula.ID, kind formula.Kind) []formula.ID {
	out := make([]formula.ID, 0, len(members))
	for _, m := range members {
		mf := formula.Lookup(m)
		if mf.Kind == kind {
			out = append(out, mf.Children.Members()...)
		} else {
			out = append(out, m)
		}
	}
	return out
}

func trivialNary(id formula.ID) formula.ID {
	f := formula.Lookup(id)
	switch f.Kind {
	case formula.KindEq:
		if f.Terms.Len() < 2 {
			return formula.T()
		}
	case formula.KindAnd:
		switch f.Children.Len() {
		case 0:
			return formula.T()
		case 1:
			return f.Children.Members()[0]
		}
	case formula.KindOr:
		switch f.Children.Len() {
		case 0:
			return formula.F()
		case 1:
			return f.Children.Members()[0]
		}
	case formula.KindEqv:
		if f.Children.Len() < 2 {
			return formula.T()
		}
	}
	return id
}
