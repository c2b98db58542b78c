package tptp

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/MichaelRawson/lerna/internal/errs"
	"github.com/MichaelRawson/lerna/internal/formula"
	"github.com/MichaelRawson/lerna/internal/symbol"
	"github.com/MichaelRawson/lerna/internal/term"
)

func writeFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseFileSimpleConjecture(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "p.p", `
fof(ax1, axiom, ![X]: (p(X) => q(X))).
fof(con, conjecture, ![X]: (p(X) => q(X))).
`)
	p, err := ParseFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Axioms) != 1 {
		t.Fatalf("expected 1 axiom, got %d", len(p.Axioms))
	}
	if p.NegatedConjecture == formula.T() {
		t.Fatal("negated conjecture should not trivialize to T")
	}
}

func TestParseFileNegatedConjectureUsedAsIs(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "p.p", `
fof(con, negated_conjecture, ~(p(a))).
`)
	p, err := ParseFile(path)
	if err != nil {
		t.Fatal(err)
	}
	sym := symbol.Intern("p", 1)
	a := symbol.Intern("a", 0)
	want := formula.Not(formula.Prd(sym, term.Fn(a)))
	if p.NegatedConjecture != want {
		t.Fatal("negated_conjecture should be used verbatim, not double-negated")
	}
}

func TestParseFileRejectsMissingConjecture(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "p.p", `
fof(ax1, axiom, p(a)).
`)
	_, err := ParseFile(path)
	if !errors.Is(err, errs.ErrInput) {
		t.Fatalf("expected ErrInput, got %v", err)
	}
}

func TestParseFileRejectsDuplicateConjecture(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "p.p", `
fof(c1, conjecture, p(a)).
fof(c2, conjecture, p(b)).
`)
	_, err := ParseFile(path)
	if !errors.Is(err, errs.ErrInput) {
		t.Fatalf("expected ErrInput, got %v", err)
	}
}

func TestParseFileCNFImplicitUniversal(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "p.p", `
cnf(cl1, axiom, p(X) | q(Y)).
fof(con, conjecture, p(a)).
`)
	p, err := ParseFile(path)
	if err != nil {
		t.Fatal(err)
	}
	f := formula.Lookup(p.Axioms[0])
	if f.Kind != formula.KindAll {
		t.Fatalf("expected outer All for the implicit universal closure, got %v", f.Kind)
	}
	inner := formula.Lookup(f.Sub)
	if inner.Kind != formula.KindAll {
		t.Fatalf("expected two stacked All binders for p(X) | q(Y), got %v", inner.Kind)
	}
}

func TestParseFileResolvesInclude(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.ax", `fof(ax1, axiom, p(a)).`)
	path := writeFile(t, dir, "top.p", `
include('base.ax').
fof(con, conjecture, p(a)).
`)
	p, err := ParseFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Axioms) != 1 {
		t.Fatalf("expected 1 axiom from include, got %d", len(p.Axioms))
	}
}

func TestParseFileRejectsIncludeSelectionList(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.ax", `fof(ax1, axiom, p(a)).`)
	path := writeFile(t, dir, "top.p", `
include('base.ax', [ax1]).
fof(con, conjecture, p(a)).
`)
	_, err := ParseFile(path)
	if !errors.Is(err, errs.ErrInput) {
		t.Fatalf("expected ErrInput for include selection list, got %v", err)
	}
}

func TestParseFileRejectsUnsupportedRole(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "p.p", `
fof(ax1, plain, p(a)).
fof(con, conjecture, p(a)).
`)
	_, err := ParseFile(path)
	if !errors.Is(err, errs.ErrInput) {
		t.Fatalf("expected ErrInput for unsupported role, got %v", err)
	}
}

func TestParseFileEquality(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "p.p", `
fof(ax1, axiom, ![X]: (f(X) = X)).
fof(con, conjecture, f(a) = a).
`)
	_, err := ParseFile(path)
	if err != nil {
		t.Fatal(err)
	}
}
