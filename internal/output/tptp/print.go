// Package tptp renders hash-consed formulae back out as TPTP fof
// annotated formulae, the inverse of internal/input/tptp: a refutation
// is a sequence of `fof(name, role, formula).` lines.
//
// Grounded on internal/output/smtlib2's de-Bruijn-to-named-variable
// translation via a `bound` depth counter (itself grounded on
// original_source/src/output/smtlib2.rs), adapted to TPTP infix syntax
// instead of S-expressions, and on go-tony/encode/encode.go's shape of
// a single recursive `encode`/`writeX` family of helpers rather than a
// single monolithic formatter.
package tptp

import (
	"fmt"
	"io"

	"github.com/MichaelRawson/lerna/internal/formula"
	"github.com/MichaelRawson/lerna/internal/symbol"
	"github.com/MichaelRawson/lerna/internal/term"
)

func writeTerm(w io.Writer, id term.ID, bound int) error {
	t := term.Lookup(id)
	if t.Kind == term.KindVar {
		_, err := fmt.Fprintf(w, "X%d", bound-1-t.Index)
		return err
	}
	if len(t.Children) == 0 {
		_, err := fmt.Fprint(w, symbol.Name(t.Symbol))
		return err
	}
	if _, err := fmt.Fprintf(w, "%s(", symbol.Name(t.Symbol)); err != nil {
		return err
	}
	for i, c := range t.Children {
		if i > 0 {
			if _, err := fmt.Fprint(w, ","); err != nil {
				return err
			}
		}
		if err := writeTerm(w, c, bound); err != nil {
			return err
		}
	}
	_, err := fmt.Fprint(w, ")")
	return err
}

func writeAtom(w io.Writer, sym symbol.ID, args []term.ID, bound int) error {
	if len(args) == 0 {
		_, err := fmt.Fprint(w, symbol.Name(sym))
		return err
	}
	if _, err := fmt.Fprintf(w, "%s(", symbol.Name(sym)); err != nil {
		return err
	}
	for i, a := range args {
		if i > 0 {
			if _, err := fmt.Fprint(w, ","); err != nil {
				return err
			}
		}
		if err := writeTerm(w, a, bound); err != nil {
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
		_, err := fmt.Fprint(w, "$true")
		return err
	case formula.KindF:
		_, err := fmt.Fprint(w, "$false")
		return err
	case formula.KindEq:
		members := f.Terms.Members()
		if len(members) < 2 {
			_, err := fmt.Fprint(w, "$true")
			return err
		}
		for i, t := range members {
			if i > 0 {
				if _, err := fmt.Fprint(w, " = "); err != nil {
					return err
				}
			}
			if err := writeTerm(w, t, bound); err != nil {
				return err
			}
		}
		return nil
	case formula.KindPrd:
		return writeAtom(w, f.Symbol, f.Args, bound)
	case formula.KindNot:
		if _, err := fmt.Fprint(w, "~("); err != nil {
			return err
		}
		if err := writeFormula(w, f.Sub, bound); err != nil {
			return err
		}
		_, err := fmt.Fprint(w, ")")
		return err
	case formula.KindImp:
		if _, err := fmt.Fprint(w, "("); err != nil {
			return err
		}
		if err := writeFormula(w, f.Left, bound); err != nil {
			return err
		}
		if _, err := fmt.Fprint(w, " => "); err != nil {
			return err
		}
		if err := writeFormula(w, f.Right, bound); err != nil {
			return err
		}
		_, err := fmt.Fprint(w, ")")
		return err
	case formula.KindAnd, formula.KindOr, formula.KindEqv:
		op := " & "
		switch f.Kind {
		case formula.KindOr:
			op = " | "
		case formula.KindEqv:
			op = " <=> "
		}
		members := f.Children.Members()
		if _, err := fmt.Fprint(w, "("); err != nil {
			return err
		}
		for i, c := range members {
			if i > 0 {
				if _, err := fmt.Fprint(w, op); err != nil {
					return err
				}
			}
			if err := writeFormula(w, c, bound); err != nil {
				return err
			}
		}
		_, err := fmt.Fprint(w, ")")
		return err
	case formula.KindAll, formula.KindEx:
		quant := "!"
		if f.Kind == formula.KindEx {
			quant = "?"
		}
		if _, err := fmt.Fprintf(w, "%s[X%d]: (", quant, bound); err != nil {
			return err
		}
		if err := writeFormula(w, f.Sub, bound+1); err != nil {
			return err
		}
		_, err := fmt.Fprint(w, ")")
		return err
	default:
		return fmt.Errorf("output/tptp: unreachable formula kind %v", f.Kind)
	}
}

// WriteAnnotated writes a single `fof(name, role, formula).` line to w.
func WriteAnnotated(w io.Writer, name, role string, id formula.ID) error {
	if _, err := fmt.Fprintf(w, "fof(%s, %s, ", name, role); err != nil {
		return err
	}
	if err := writeFormula(w, id, 0); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, ").")
	return err
}

// WriteRefutation writes axioms (role "axiom") and the negated
// conjecture (role "negated_conjecture") used in a closed derivation,
// one fof(...) line per formula, numbering axioms sequentially.
func WriteRefutation(w io.Writer, axioms []formula.ID, negatedConjecture formula.ID) error {
	for i, ax := range axioms {
		if err := WriteAnnotated(w, fmt.Sprintf("ax%d", i), "axiom", ax); err != nil {
			return err
		}
	}
	return WriteAnnotated(w, "negated_conjecture", "negated_conjecture", negatedConjecture)
}
