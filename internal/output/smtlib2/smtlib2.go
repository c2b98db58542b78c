// Package smtlib2 renders a goal as an SMT-LIB2 problem: a monomorphic
// "object" sort, one declare-fun per predicate/function symbol in use,
// an assertion per goal member, and a trailing check-sat.
//
// Grounded on original_source/src/output/smtlib2.rs, line for line: the
// same declare-sort/declare-fun signature pass, the same de Bruijn ->
// named-variable translation via a `bound` depth counter, and the same
// degenerate Eq/Eqv-with-one-member -> "true" case.
package smtlib2

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/MichaelRawson/lerna/internal/formula"
	"github.com/MichaelRawson/lerna/internal/idset"
	"github.com/MichaelRawson/lerna/internal/symbol"
	"github.com/MichaelRawson/lerna/internal/term"
)

var invalidIdentChar = regexp.MustCompile(`[^A-Za-z0-9_]`)

func symbolName(s symbol.ID, arity int) string {
	name := invalidIdentChar.ReplaceAllString(symbol.Name(s), "_")
	return fmt.Sprintf("%s_%d_%d", name, arity, s)
}

func collectFormulaSymbols(id formula.ID, preds, fns map[symbol.ID]int) {
	f := formula.Lookup(id)
	switch f.Kind {
	case formula.KindEq:
		for _, t := range f.Terms.Members() {
			collectTermSymbols(t, fns)
		}
	case formula.KindPrd:
		preds[f.Symbol] = len(f.Args)
		for _, t := range f.Args {
			collectTermSymbols(t, fns)
		}
	case formula.KindNot, formula.KindAll, formula.KindEx:
		collectFormulaSymbols(f.Sub, preds, fns)
	case formula.KindImp:
		collectFormulaSymbols(f.Left, preds, fns)
		collectFormulaSymbols(f.Right, preds, fns)
	case formula.KindOr, formula.KindAnd, formula.KindEqv:
		for _, c := range f.Children.Members() {
			collectFormulaSymbols(c, preds, fns)
		}
	}
}

func collectTermSymbols(id term.ID, fns map[symbol.ID]int) {
	t := term.Lookup(id)
	if t.Kind == term.KindFn {
		fns[t.Symbol] = len(t.Children)
		for _, c := range t.Children {
			collectTermSymbols(c, fns)
		}
	}
}

func writeSignature(w io.Writer, goal idset.Set[formula.ID]) error {
	if _, err := fmt.Fprintln(w, "(declare-sort object)"); err != nil {
		return err
	}
	preds := make(map[symbol.ID]int)
	fns := make(map[symbol.ID]int)
	for _, f := range goal.Members() {
		collectFormulaSymbols(f, preds, fns)
	}
	for s, arity := range preds {
		args := strings.TrimSpace(strings.Repeat("object ", arity))
		if _, err := fmt.Fprintf(w, "(declare-fun %s (%s) Bool)\n", symbolName(s, arity), args); err != nil {
			return err
		}
	}
	for s, arity := range fns {
		args := strings.TrimSpace(strings.Repeat("object ", arity))
		if _, err := fmt.Fprintf(w, "(declare-fun %s (%s) object)\n", symbolName(s, arity), args); err != nil {
			return err
		}
	}
	return nil
}

func writeTerm(w io.Writer, id term.ID, bound int) error {
	t := term.Lookup(id)
	if t.Kind == term.KindVar {
		_, err := fmt.Fprintf(w, "X%d", bound-1-t.Index)
		return err
	}
	if len(t.Children) == 0 {
		_, err := fmt.Fprint(w, symbolName(t.Symbol, 0))
		return err
	}
	if _, err := fmt.Fprintf(w, "(%s", symbolName(t.Symbol, len(t.Children))); err != nil {
		return err
	}
	for _, c := range t.Children {
		if _, err := fmt.Fprint(w, " "); err != nil {
			return err
		}
		if err := writeTerm(w, c, bound); err != nil {
			return err
		}
	}
	_, err := fmt.Fprint(w, ")")
	return err
}

func writeFormula(w io.Writer, id formula.ID, bound int) error {
	f := formula.Lookup(id)
	switch f.Kind {
	case formula.KindT:
		_, err := fmt.Fprint(w, "true")
		return err
	case formula.KindF:
		_, err := fmt.Fprint(w, "false")
		return err
	case formula.KindEq:
		terms := f.Terms.Members()
		if len(terms) < 2 {
			_, err := fmt.Fprint(w, "true")
			return err
		}
		if _, err := fmt.Fprint(w, "(="); err != nil {
			return err
		}
		for _, t := range terms {
			if _, err := fmt.Fprint(w, " "); err != nil {
				return err
			}
			if err := writeTerm(w, t, bound); err != nil {
				return err
			}
		}
		_, err := fmt.Fprint(w, ")")
		return err
	case formula.KindPrd:
		if len(f.Args) == 0 {
			_, err := fmt.Fprint(w, symbolName(f.Symbol, 0))
			return err
		}
		if _, err := fmt.Fprintf(w, "(%s", symbolName(f.Symbol, len(f.Args))); err != nil {
			return err
		}
		for _, t := range f.Args {
			if _, err := fmt.Fprint(w, " "); err != nil {
				return err
			}
			if err := writeTerm(w, t, bound); err != nil {
				return err
			}
		}
		_, err := fmt.Fprint(w, ")")
		return err
	case formula.KindNot:
		if _, err := fmt.Fprint(w, "(not "); err != nil {
			return err
		}
		if err := writeFormula(w, f.Sub, bound); err != nil {
			return err
		}
		_, err := fmt.Fprint(w, ")")
		return err
	case formula.KindImp:
		if _, err := fmt.Fprint(w, "(=> "); err != nil {
			return err
		}
		if err := writeFormula(w, f.Left, bound); err != nil {
			return err
		}
		if _, err := fmt.Fprint(w, " "); err != nil {
			return err
		}
		if err := writeFormula(w, f.Right, bound); err != nil {
			return err
		}
		_, err := fmt.Fprint(w, ")")
		return err
	case formula.KindAnd, formula.KindOr:
		op := "and"
		if f.Kind == formula.KindOr {
			op = "or"
		}
		if _, err := fmt.Fprintf(w, "(%s", op); err != nil {
			return err
		}
		for _, c := range f.Children.Members() {
			if _, err := fmt.Fprint(w, " "); err != nil {
				return err
			}
			if err := writeFormula(w, c, bound); err != nil {
				return err
			}
		}
		_, err := fmt.Fprint(w, ")")
		return err
	case formula.KindEqv:
		members := f.Children.Members()
		if len(members) < 2 {
			_, err := fmt.Fprint(w, "true")
			return err
		}
		if _, err := fmt.Fprint(w, "(="); err != nil {
			return err
		}
		for _, c := range members {
			if _, err := fmt.Fprint(w, " "); err != nil {
				return err
			}
			if err := writeFormula(w, c, bound); err != nil {
				return err
			}
		}
		_, err := fmt.Fprint(w, ")")
		return err
	case formula.KindAll, formula.KindEx:
		keyword := "forall"
		if f.Kind == formula.KindEx {
			keyword = "exists"
		}
		if _, err := fmt.Fprintf(w, "(%s ((X%d object)) ", keyword, bound); err != nil {
			return err
		}
		if err := writeFormula(w, f.Sub, bound+1); err != nil {
			return err
		}
		_, err := fmt.Fprint(w, ")")
		return err
	default:
		return fmt.Errorf("smtlib2: unreachable formula kind %v", f.Kind)
	}
}

// WriteProblem renders goal's signature, one assertion per member, and
// a trailing check-sat, to w.
func WriteProblem(w io.Writer, goal idset.Set[formula.ID]) error {
	if err := writeSignature(w, goal); err != nil {
		return err
	}
	for _, f := range goal.Members() {
		if _, err := fmt.Fprint(w, "(assert "); err != nil {
			return err
		}
		if err := writeFormula(w, f, 0); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, ")"); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "(check-sat)")
	return err
}
