// Package term implements hash-consed first-order terms over de Bruijn
// variable indices.
//
// Grounded on original_source/src/term.rs (the Var/Fn variant shape) and
// on internal/hashcons for the structural-interning mechanism.
package term

import (
	"fmt"
	"strings"

	"github.com/MichaelRawson/lerna/internal/hashcons"
	"github.com/MichaelRawson/lerna/internal/symbol"
)

// ID is the stable id of an interned term.
type ID hashcons.ID

// Kind discriminates the two term variants.
type Kind uint8

const (
	KindVar Kind = iota
	KindFn
)

// Term is the canonical representation of an interned term: either a
// de Bruijn variable or an application of a function symbol to child
// terms (also interned ids).
type Term struct {
	Kind     Kind
	Index    int        // valid when Kind == KindVar: 0 = innermost binder
	Symbol   symbol.ID  // valid when Kind == KindFn
	Children []ID       // valid when Kind == KindFn
}

var store = hashcons.New[string, Term]()

func varKey(index int) string {
	return fmt.Sprintf("v%d", index)
}

func fnKey(sym symbol.ID, children []ID) string {
	var b strings.Builder
	fmt.Fprintf(&b, "f%d(", sym)
	for i, c := range children {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%d", c)
	}
	b.WriteByte(')')
	return b.String()
}

// Var interns the de Bruijn variable referring to the binder index
// levels out from its use (0 = innermost).
func Var(index int) ID {
	return ID(store.Intern(varKey(index), func() Term {
		return Term{Kind: KindVar, Index: index}
	}))
}

// Fn interns the application of sym to children.
func Fn(sym symbol.ID, children ...ID) ID {
	key := fnKey(sym, children)
	return ID(store.Intern(key, func() Term {
		cp := make([]ID, len(children))
		copy(cp, children)
		return Term{Kind: KindFn, Symbol: sym, Children: cp}
	}))
}

// Lookup returns the canonical Term for id.
func Lookup(id ID) Term {
	return store.Value(hashcons.ID(id))
}

// Shift adds delta to every free variable index in id that is at or above
// cutoff (the number of binders already crossed), preserving meaning when
// a term is moved under additional binders. delta may be negative.
func Shift(id ID, cutoff, delta int) ID {
	t := Lookup(id)
	switch t.Kind {
	case KindVar:
		if t.Index < cutoff {
			return id
		}
		return Var(t.Index + delta)
	default:
		children := make([]ID, len(t.Children))
		for i, c := range t.Children {
			children[i] = Shift(c, cutoff, delta)
		}
		return Fn(t.Symbol, children...)
	}
}

// Instantiate replaces every occurrence of the variable bound at depth
// (relative to the point of instantiation: depth binders have been
// crossed while descending to this subterm) with replacement, and shifts
// every other free variable above depth by delta. delta is the net
// change in enclosing-binder count caused by the instantiation: -1 when
// a quantifier is simply removed (replaced by one term, no rebinding),
// or arity-1 when the quantifier is replaced by `arity` fresh
// quantifiers (the parametrized-instance rule in deduce). Indices free
// at replacement's own top level are shifted by depth so they still
// refer to the same binder once relocated depth levels deeper.
func Instantiate(id ID, depth, delta int, replacement ID) ID {
	t := Lookup(id)
	switch t.Kind {
	case KindVar:
		switch {
		case t.Index == depth:
			return Shift(replacement, 0, depth)
		case t.Index > depth:
			return Var(t.Index + delta)
		default:
			return id
		}
	default:
		children := make([]ID, len(t.Children))
		for i, c := range t.Children {
			children[i] = Instantiate(c, depth, delta, replacement)
		}
		return Fn(t.Symbol, children...)
	}
}

// Symbols returns the set of function symbols occurring in id, using a
// plain map since there is no ordering requirement on the result here
// (callers that need an idset build one from this).
func Symbols(id ID, into map[symbol.ID]struct{}) {
	t := Lookup(id)
	if t.Kind == KindFn {
		into[t.Symbol] = struct{}{}
		for _, c := range t.Children {
			Symbols(c, into)
		}
	}
}

// String renders id for diagnostics and TPTP output.
func String(id ID) string {
	t := Lookup(id)
	if t.Kind == KindVar {
		return fmt.Sprintf("X%d", t.Index)
	}
	if len(t.Children) == 0 {
		return symbol.Name(t.Symbol)
	}
	var b strings.Builder
	b.WriteString(symbol.Name(t.Symbol))
	b.WriteByte('(')
	for i, c := range t.Children {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(String(c))
	}
	b.WriteByte(')')
	return b.String()
}
