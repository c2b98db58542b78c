// Package formula implements hash-consed first-order formulae with
// equality, over de Bruijn-indexed quantifiers and n-ary identity-set
// operands for Eq/And/Or/Eqv.
//
// Grounded on original_source/src/formula.rs, generalized per
// SPEC_FULL.md §9 to the n-ary/de-Bruijn/DAG variant, and on the closed
// tagged-union dispatch idiom of go-tony/ir/node.go (a Type enum plus an
// exhaustive switch, rather than open interfaces/polymorphism — spec.md
// §9 asks explicitly for this shape).
package formula

import (
	"fmt"
	"strings"

	"github.com/MichaelRawson/lerna/internal/hashcons"
	"github.com/MichaelRawson/lerna/internal/idset"
	"github.com/MichaelRawson/lerna/internal/symbol"
	"github.com/MichaelRawson/lerna/internal/term"
)

// ID is the stable id of an interned formula.
type ID hashcons.ID

// Kind discriminates the eleven formula variants.
type Kind uint8

const (
	KindT Kind = iota
	KindF
	KindEq
	KindPrd
	KindNot
	KindImp
	KindOr
	KindAnd
	KindEqv
	KindAll
	KindEx
)

func (k Kind) String() string {
	switch k {
	case KindT:
		return "T"
	case KindF:
		return "F"
	case KindEq:
		return "Eq"
	case KindPrd:
		return "Prd"
	case KindNot:
		return "Not"
	case KindImp:
		return "Imp"
	case KindOr:
		return "Or"
	case KindAnd:
		return "And"
	case KindEqv:
		return "Eqv"
	case KindAll:
		return "All"
	case KindEx:
		return "Ex"
	default:
		return "?"
	}
}

// Formula is the canonical representation of an interned formula.
// Exactly the fields relevant to Kind are meaningful.
type Formula struct {
	Kind Kind

	Terms  idset.Set[term.ID] // KindEq: the equated terms, |Terms| >= 2
	Symbol symbol.ID          // KindPrd
	Args   []term.ID          // KindPrd

	Sub      ID // KindNot, KindAll, KindEx: the immediate subformula/body
	Left     ID // KindImp: antecedent
	Right    ID // KindImp: consequent
	Children idset.Set[ID]     // KindOr, KindAnd, KindEqv, |Children| >= 2 for Eqv
}

var store = hashcons.New[string, Formula]()

// Lookup returns the canonical Formula for id.
func Lookup(id ID) Formula {
	return store.Value(hashcons.ID(id))
}

func intern(key string, build func() Formula) ID {
	return ID(store.Intern(key, build))
}

// T interns the constant true.
func T() ID { return intern("T", func() Formula { return Formula{Kind: KindT} }) }

// F interns the constant false.
func F() ID { return intern("F", func() Formula { return Formula{Kind: KindF} }) }

func termSetKey(ts idset.Set[term.ID]) string {
	var b strings.Builder
	for i, t := range ts.Members() {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%d", t)
	}
	return b.String()
}

func idSetKey(ids idset.Set[ID]) string {
	var b strings.Builder
	for i, id := range ids.Members() {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%d", id)
	}
	return b.String()
}

// Eq interns the equivalence class stating that every term in ts is
// equal. Per spec.md §4.2/§8, fewer than two distinct terms trivializes
// to T; callers generally go through simplify.Simplify rather than
// relying on this, but Eq enforces it unconditionally so the invariant
// holds even for raw construction.
func Eq(terms ...term.ID) ID {
	ts := idset.Of(terms...)
	if ts.Len() < 2 {
		return T()
	}
	return intern("Eq("+termSetKey(ts)+")", func() Formula {
		return Formula{Kind: KindEq, Terms: ts}
	})
}

// Prd interns the application of predicate sym to args.
func Prd(sym symbol.ID, args ...term.ID) ID {
	var b strings.Builder
	fmt.Fprintf(&b, "Prd%d(", sym)
	for i, a := range args {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%d", a)
	}
	b.WriteByte(')')
	return intern(b.String(), func() Formula {
		cp := make([]term.ID, len(args))
		copy(cp, args)
		return Formula{Kind: KindPrd, Symbol: sym, Args: cp}
	})
}

// Not interns the negation of p.
func Not(p ID) ID {
	return intern(fmt.Sprintf("Not(%d)", p), func() Formula {
		return Formula{Kind: KindNot, Sub: p}
	})
}

// Imp interns p -> q.
func Imp(p, q ID) ID {
	return intern(fmt.Sprintf("Imp(%d,%d)", p, q), func() Formula {
		return Formula{Kind: KindImp, Left: p, Right: q}
	})
}

// And interns the conjunction of ps. Per spec.md §4.2/§8: empty -> T,
// singleton -> the sole child (enforced here so the invariant holds
// regardless of whether simplify ran).
func And(ps ...ID) ID {
	return andOr(KindAnd, "And", T(), ps)
}

// Or interns the disjunction of ps. Empty -> F, singleton -> the sole
// child.
func Or(ps ...ID) ID {
	return andOr(KindOr, "Or", F(), ps)
}

func andOr(kind Kind, tag string, empty ID, ps []ID) ID {
	cs := idset.Of(ps...)
	switch cs.Len() {
	case 0:
		return empty
	case 1:
		return cs.Members()[0]
	}
	return intern(tag+"("+idSetKey(cs)+")", func() Formula {
		return Formula{Kind: kind, Children: cs}
	})
}

// Eqv interns the n-ary mutual equivalence of ps. Fewer than two
// distinct members -> T.
func Eqv(ps ...ID) ID {
	cs := idset.Of(ps...)
	if cs.Len() < 2 {
		return T()
	}
	return intern("Eqv("+idSetKey(cs)+")", func() Formula {
		return Formula{Kind: KindEqv, Children: cs}
	})
}

// All interns the universal closure of body (body is indexed one binder
// deeper than its caller).
func All(body ID) ID {
	return intern(fmt.Sprintf("All(%d)", body), func() Formula {
		return Formula{Kind: KindAll, Sub: body}
	})
}

// Ex interns the existential closure of body.
func Ex(body ID) ID {
	return intern(fmt.Sprintf("Ex(%d)", body), func() Formula {
		return Formula{Kind: KindEx, Sub: body}
	})
}

// Negated returns Not(id) (a convenience matching the teacher's
// `WithTag`-style fluent helpers).
func Negated(id ID) ID { return Not(id) }

// Symbols returns the set of function and predicate symbols occurring in
// id.
func Symbols(id ID) idset.Set[symbol.ID] {
	into := make(map[symbol.ID]struct{})
	collectSymbols(id, into)
	syms := make([]symbol.ID, 0, len(into))
	for s := range into {
		syms = append(syms, s)
	}
	return idset.Of(syms...)
}

func collectSymbols(id ID, into map[symbol.ID]struct{}) {
	f := Lookup(id)
	switch f.Kind {
	case KindT, KindF:
	case KindEq:
		for _, t := range f.Terms.Members() {
			term.Symbols(t, into)
		}
	case KindPrd:
		into[f.Symbol] = struct{}{}
		for _, t := range f.Args {
			term.Symbols(t, into)
		}
	case KindNot, KindAll, KindEx:
		collectSymbols(f.Sub, into)
	case KindImp:
		collectSymbols(f.Left, into)
		collectSymbols(f.Right, into)
	case KindOr, KindAnd, KindEqv:
		for _, c := range f.Children.Members() {
			collectSymbols(c, into)
		}
	}
}

// Instantiate substitutes the quantifier variable bound immediately
// outside body (de Bruijn index 0 relative to body) with replacement,
// adjusting the enclosing-binder count by delta (see term.Instantiate).
// body must be the Sub of an All or Ex node; the caller is responsible
// for deciding whether/how many new binders to re-wrap the result in.
func Instantiate(body ID, delta int, replacement term.ID) ID {
	return instantiate(body, 0, delta, replacement)
}

func instantiate(id ID, depth, delta int, replacement term.ID) ID {
	f := Lookup(id)
	switch f.Kind {
	case KindT, KindF:
		return id
	case KindEq:
		terms := make([]term.ID, 0, f.Terms.Len())
		for _, t := range f.Terms.Members() {
			terms = append(terms, term.Instantiate(t, depth, delta, replacement))
		}
		return Eq(terms...)
	case KindPrd:
		args := make([]term.ID, len(f.Args))
		for i, t := range f.Args {
			args[i] = term.Instantiate(t, depth, delta, replacement)
		}
		return Prd(f.Symbol, args...)
	case KindNot:
		return Not(instantiate(f.Sub, depth, delta, replacement))
	case KindImp:
		return Imp(instantiate(f.Left, depth, delta, replacement), instantiate(f.Right, depth, delta, replacement))
	case KindOr:
		return Or(instantiateAll(f.Children, depth, delta, replacement)...)
	case KindAnd:
		return And(instantiateAll(f.Children, depth, delta, replacement)...)
	case KindEqv:
		return Eqv(instantiateAll(f.Children, depth, delta, replacement)...)
	case KindAll:
		return All(instantiate(f.Sub, depth+1, delta, replacement))
	case KindEx:
		return Ex(instantiate(f.Sub, depth+1, delta, replacement))
	default:
		panic("formula: unreachable kind in instantiate")
	}
}

func instantiateAll(cs idset.Set[ID], depth, delta int, replacement term.ID) []ID {
	out := make([]ID, 0, cs.Len())
	for _, c := range cs.Members() {
		out = append(out, instantiate(c, depth, delta, replacement))
	}
	return out
}

// String renders id in TPTP-ish infix notation, for diagnostics and for
// internal/output/tptp to build on.
func String(id ID) string {
	f := Lookup(id)
	switch f.Kind {
	case KindT:
		return "$true"
	case KindF:
		return "$false"
	case KindEq:
		return joinTerms(f.Terms.Members(), "=")
	case KindPrd:
		if len(f.Args) == 0 {
			return symbol.Name(f.Symbol)
		}
		parts := make([]string, len(f.Args))
		for i, t := range f.Args {
			parts[i] = term.String(t)
		}
		return symbol.Name(f.Symbol) + "(" + strings.Join(parts, ",") + ")"
	case KindNot:
		return "~(" + String(f.Sub) + ")"
	case KindImp:
		return "(" + String(f.Left) + " => " + String(f.Right) + ")"
	case KindOr:
		return joinFormulae(f.Children.Members(), " | ")
	case KindAnd:
		return joinFormulae(f.Children.Members(), " & ")
	case KindEqv:
		return joinFormulae(f.Children.Members(), " <=> ")
	case KindAll:
		return "![X]: (" + String(f.Sub) + ")"
	case KindEx:
		return "?[X]: (" + String(f.Sub) + ")"
	default:
		return "?"
	}
}

func joinTerms(ts []term.ID, op string) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = term.String(t)
	}
	return strings.Join(parts, " "+op+" ")
}

func joinFormulae(ids []ID, op string) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = "(" + String(id) + ")"
	}
	return strings.Join(parts, op)
}
