// Package status implements the three-valued Sat/Unsat/Unknown lattice and
// its two propagation monoids, grounded on original_source/src/status.rs.
package status

import "fmt"

// Status is the verdict on a goal: whether it is known satisfiable,
// known unsatisfiable (refutable), or neither yet.
type Status uint8

const (
	Unknown Status = iota
	Sat
	Unsat
)

func (s Status) String() string {
	switch s {
	case Sat:
		return "Sat"
	case Unsat:
		return "Unsat"
	default:
		return "Unknown"
	}
}

// Additive combines two child statuses the way a disjunction (the "some
// child inference succeeds" rule) combines its children: Sat is the
// identity (an empty disjunction has no refutation).
//
// Truth table: Unsat dominates (any Unsat child makes the whole Unsat);
// absent an Unsat child, Unknown dominates over Sat; two Sats stay Sat.
func Additive(a, b Status) Status {
	if a == Unsat || b == Unsat {
		return Unsat
	}
	if a == Unknown || b == Unknown {
		return Unknown
	}
	return Sat
}

// Multiplicative combines two child statuses the way a conjunction (an
// inference's members, all of which must be refutable) combines its
// children: Sat dominates (any Sat child makes the whole Sat); absent a
// Sat child, Unknown dominates over Unsat; Unsat is the identity.
func Multiplicative(a, b Status) Status {
	if a == Sat || b == Sat {
		return Sat
	}
	if a == Unknown || b == Unknown {
		return Unknown
	}
	return Unsat
}

// AdditiveIdentity is the identity element of Additive (an empty sum).
const AdditiveIdentity = Sat

// MultiplicativeIdentity is the identity element of Multiplicative (an
// empty product).
const MultiplicativeIdentity = Unsat

// AdditiveFold combines a sequence of statuses with Additive, starting
// from the identity.
func AdditiveFold(ss []Status) Status {
	acc := AdditiveIdentity
	for _, s := range ss {
		acc = Additive(acc, s)
	}
	return acc
}

// MultiplicativeFold combines a sequence of statuses with
// Multiplicative, starting from the identity.
func MultiplicativeFold(ss []Status) Status {
	acc := MultiplicativeIdentity
	for _, s := range ss {
		acc = Multiplicative(acc, s)
	}
	return acc
}

// Known reports whether s is a final verdict (Sat or Unsat), as opposed
// to Unknown.
func (s Status) Known() bool { return s != Unknown }

// Compatible reports whether new can follow old under the monotonicity
// guard in spec.md §4.4.1/§5: a known status can only be reaffirmed, not
// overwritten by a different known status.
func Compatible(old, new Status) bool {
	return !old.Known() || old == new
}

// ErrConflict is returned (informationally, never fatal) when a caller
// observes two incompatible known statuses for the same goal; see
// spec.md §7 "Monotonicity violation".
type ErrConflict struct {
	Old, New Status
}

func (e ErrConflict) Error() string {
	return fmt.Sprintf("status conflict: had %s, got %s", e.Old, e.New)
}
