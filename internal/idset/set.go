// Package idset implements an ordered, deduplicated set of comparable,
// orderable ids — the representation spec.md calls for behind Eq/And/Or/Eqv
// operands: a sorted slice of ids, so that two sets with the same members
// compare equal by value and can themselves be hash-consed.
//
// Grounded on original_source/src/set.rs (Set<T> as a sorted, deduped Vec)
// and the sorted-int-slice idiom in go-tony/ir/tagtree.go.
package idset

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// Set is an immutable sorted, deduplicated sequence of T. The zero value is
// the empty set.
type Set[T cmp.Ordered] struct {
	members []T
}

// Of builds a Set from members, sorting and deduplicating them.
func Of[T cmp.Ordered](members ...T) Set[T] {
	cp := slices.Clone(members)
	slices.Sort(cp)
	cp = slices.Compact(cp)
	return Set[T]{members: cp}
}

// Len reports the number of members.
func (s Set[T]) Len() int { return len(s.members) }

// Members returns the sorted members. The caller must not mutate the
// returned slice.
func (s Set[T]) Members() []T { return s.members }

// Contains reports whether v is a member of s.
func (s Set[T]) Contains(v T) bool {
	_, ok := slices.BinarySearch(s.members, v)
	return ok
}

// With returns s ∪ {v}.
func (s Set[T]) With(v T) Set[T] {
	i, ok := slices.BinarySearch(s.members, v)
	if ok {
		return s
	}
	out := make([]T, 0, len(s.members)+1)
	out = append(out, s.members[:i]...)
	out = append(out, v)
	out = append(out, s.members[i:]...)
	return Set[T]{members: out}
}

// Without returns s \ {v}.
func (s Set[T]) Without(v T) Set[T] {
	i, ok := slices.BinarySearch(s.members, v)
	if !ok {
		return s
	}
	out := make([]T, 0, len(s.members)-1)
	out = append(out, s.members[:i]...)
	out = append(out, s.members[i+1:]...)
	return Set[T]{members: out}
}

// Union returns s ∪ other.
func (s Set[T]) Union(other Set[T]) Set[T] {
	out := make([]T, 0, len(s.members)+len(other.members))
	i, j := 0, 0
	for i < len(s.members) && j < len(other.members) {
		a, b := s.members[i], other.members[j]
		switch {
		case a < b:
			out = append(out, a)
			i++
		case a > b:
			out = append(out, b)
			j++
		default:
			out = append(out, a)
			i++
			j++
		}
	}
	out = append(out, s.members[i:]...)
	out = append(out, other.members[j:]...)
	return Set[T]{members: out}
}

// Difference returns s \ other.
func (s Set[T]) Difference(other Set[T]) Set[T] {
	if other.Len() == 0 {
		return s
	}
	out := make([]T, 0, len(s.members))
	for _, v := range s.members {
		if !other.Contains(v) {
			out = append(out, v)
		}
	}
	return Set[T]{members: out}
}

// Intersects reports whether s and other share any member.
func (s Set[T]) Intersects(other Set[T]) bool {
	i, j := 0, 0
	for i < len(s.members) && j < len(other.members) {
		a, b := s.members[i], other.members[j]
		switch {
		case a < b:
			i++
		case a > b:
			j++
		default:
			return true
		}
	}
	return false
}

// Equal reports whether s and other have identical members.
func (s Set[T]) Equal(other Set[T]) bool {
	return slices.Equal(s.members, other.members)
}

// String renders s as {a,b,...}, formatting each member with fmt's %v;
// the result is a comparable string usable as a map key.
func (s Set[T]) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, m := range s.members {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%v", m)
	}
	b.WriteByte('}')
	return b.String()
}
