package szs

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/MichaelRawson/lerna/internal/errs"
	"github.com/MichaelRawson/lerna/internal/formula"
	"github.com/MichaelRawson/lerna/internal/status"
	"github.com/MichaelRawson/lerna/internal/symbol"
)

func TestFromStatus(t *testing.T) {
	cases := map[status.Status]Code{
		status.Unsat:   Theorem,
		status.Sat:     CounterSatisfiable,
		status.Unknown: GaveUp,
	}
	for s, want := range cases {
		if got := FromStatus(s); got != want {
			t.Fatalf("FromStatus(%v) = %v, want %v", s, got, want)
		}
	}
}

func TestFromError(t *testing.T) {
	if got := FromError(errors.New("input error: bad token")); got != GaveUp {
		t.Fatalf("expected GaveUp for an unwrapped error, got %v", got)
	}
	wrapped := fmtErrorf(errs.ErrInput)
	if got := FromError(wrapped); got != InputError {
		t.Fatalf("expected InputError, got %v", got)
	}
	if got := FromError(errs.ErrTimeOut); got != TimeOut {
		t.Fatalf("expected TimeOut, got %v", got)
	}
	if got := FromError(errs.ErrOS); got != OSError {
		t.Fatalf("expected OSError, got %v", got)
	}
}

func fmtErrorf(err error) error {
	return errors.Join(err, errors.New("context"))
}

func TestExitCode(t *testing.T) {
	for _, c := range []Code{Theorem, Satisfiable, CounterSatisfiable} {
		if c.ExitCode() != 0 {
			t.Fatalf("%v should exit 0", c)
		}
	}
	for _, c := range []Code{TimeOut, OSError, InputError, GaveUp} {
		if c.ExitCode() != 1 {
			t.Fatalf("%v should exit 1", c)
		}
	}
}

func TestWriterStatusUncolored(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.Status("prob", Theorem); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "% SZS status Theorem for prob\n" {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}

func TestWriterRefutation(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	p := symbol.Intern("szsp", 0)
	ax := formula.Prd(p)
	neg := formula.Not(ax)
	if err := w.Refutation("prob", []formula.ID{ax}, neg); err != nil {
		t.Fatal(err)
	}
	got := buf.String()
	if !strings.HasPrefix(got, "% SZS output start Refutation for prob\n") {
		t.Fatalf("missing start marker: %q", got)
	}
	if !strings.HasSuffix(got, "% SZS output end Refutation for prob\n") {
		t.Fatalf("missing end marker: %q", got)
	}
	if !strings.Contains(got, "fof(ax0, axiom,") {
		t.Fatalf("missing axiom line: %q", got)
	}
	if !strings.Contains(got, "fof(negated_conjecture, negated_conjecture,") {
		t.Fatalf("missing negated_conjecture line: %q", got)
	}
}
