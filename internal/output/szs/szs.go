// Package szs prints the SZS result envelope spec.md §6 requires:
// `% SZS status <code> for <id>`, and on a Theorem verdict the
// refutation as a block of `fof(...)` lines bracketed by `% SZS output
// start/end Refutation for <id>`.
//
// Grounded on go-tony/cmd/o/configs.go's `encOpts` color-gating idiom:
// color is used only when writing to an *os.File that
// github.com/mattn/go-isatty confirms is a terminal, exactly as that
// function gates encode.EncodeColors. Status/exit-code classification
// follows spec.md §6/§7's taxonomy directly.
package szs

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/MichaelRawson/lerna/internal/errs"
	"github.com/MichaelRawson/lerna/internal/formula"
	outtptp "github.com/MichaelRawson/lerna/internal/output/tptp"
	"github.com/MichaelRawson/lerna/internal/status"
)

// Code is one of the SZS status words spec.md §6 names.
type Code string

const (
	Theorem            Code = "Theorem"
	CounterSatisfiable Code = "CounterSatisfiable"
	Satisfiable        Code = "Satisfiable"
	TimeOut            Code = "TimeOut"
	OSError            Code = "OSError"
	InputError         Code = "InputError"
	GaveUp             Code = "GaveUp"
)

// ExitCode maps a Code to the process exit code spec.md §6 specifies:
// 0 on Theorem/Satisfiable/CounterSatisfiable, 1 otherwise.
func (c Code) ExitCode() int {
	switch c {
	case Theorem, Satisfiable, CounterSatisfiable:
		return 0
	default:
		return 1
	}
}

// FromStatus maps a closed goal's final status.Status to the matching
// Code: Unsat means the negated conjecture was refuted (Theorem), Sat
// means a countermodel was found (CounterSatisfiable), and Unknown
// (the deadline firing with no verdict) is the caller's to classify via
// FromError instead.
func FromStatus(s status.Status) Code {
	switch s {
	case status.Unsat:
		return Theorem
	case status.Sat:
		return CounterSatisfiable
	default:
		return GaveUp
	}
}

// FromError classifies a fatal error from cmd/lerna's top level into
// the matching Code, per spec.md §7's error taxonomy.
func FromError(err error) Code {
	switch {
	case errors.Is(err, errs.ErrTimeOut):
		return TimeOut
	case errors.Is(err, errs.ErrInput):
		return InputError
	case errors.Is(err, errs.ErrOS), errors.Is(err, errs.ErrProtocol):
		return OSError
	default:
		return GaveUp
	}
}

// Writer prints SZS envelopes to an underlying writer, using color only
// when that writer is a terminal.
type Writer struct {
	w       io.Writer
	colored bool
}

// NewWriter builds a Writer around w, detecting terminal color support
// exactly as go-tony's encOpts does: only *os.File destinations are
// eligible, and only when isatty.IsTerminal confirms one.
func NewWriter(w io.Writer) *Writer {
	colored := false
	if f, ok := w.(*os.File); ok {
		colored = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Writer{w: w, colored: colored}
}

func (sw *Writer) statusColor(c Code) *color.Color {
	switch c {
	case Theorem, Satisfiable, CounterSatisfiable:
		return color.New(color.FgGreen, color.Bold)
	case TimeOut:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgRed, color.Bold)
	}
}

// Status writes the `% SZS status <code> for <id>` line.
func (sw *Writer) Status(id string, c Code) error {
	if !sw.colored {
		_, err := fmt.Fprintf(sw.w, "%% SZS status %s for %s\n", c, id)
		return err
	}
	line := sw.statusColor(c).Sprintf("%s", c)
	_, err := fmt.Fprintf(sw.w, "%% SZS status %s for %s\n", line, id)
	return err
}

// Refutation writes the full Theorem output block: the start marker,
// one fof(...) line per axiom given plus the negated conjecture, and the
// end marker.
func (sw *Writer) Refutation(id string, axioms []formula.ID, negatedConjecture formula.ID) error {
	if _, err := fmt.Fprintf(sw.w, "%% SZS output start Refutation for %s\n", id); err != nil {
		return err
	}
	if err := outtptp.WriteRefutation(sw.w, axioms, negatedConjecture); err != nil {
		return err
	}
	_, err := fmt.Fprintf(sw.w, "%% SZS output end Refutation for %s\n", id)
	return err
}
