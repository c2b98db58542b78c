// Package errs collects the sentinel errors spec.md §7's taxonomy
// distinguishes (input, OS, protocol), in the teacher's style: a flat
// var block of errors.New values that call sites wrap with %w and a
// short, specific message.
//
// Grounded on go-tony/ir/errs.go and go-tony/parse/errs.go, both a bare
// `var ( Err... = errors.New("...") )` block with no hierarchy beyond
// what errors.Is/errors.As already give for free.
package errs

import "errors"

var (
	// ErrInput covers unparseable input, an unsupported role, a missing
	// or duplicate conjecture, or an unbound variable: spec.md §7's
	// "Input error" class.
	ErrInput = errors.New("input error")

	// ErrOS covers subprocess launch, I/O, and socket failures: spec.md
	// §7's "OS error" class.
	ErrOS = errors.New("os error")

	// ErrProtocol covers a malformed oracle or heuristic reply: spec.md
	// §7 files this under the OS error class but gives it its own
	// sentinel since the diagnostic is distinct ("what did they say")
	// from "could we talk to them at all".
	ErrProtocol = errors.New("protocol error")

	// ErrTimeOut marks the wall-clock deadline firing with the root
	// still Unknown: spec.md §7's "Time-out" class.
	ErrTimeOut = errors.New("time out")
)
