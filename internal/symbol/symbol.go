// Package symbol interns globally-identified name/arity pairs.
//
// Grounded on original_source/src/symbol.rs: a process-wide bimap from
// (name, arity) to a small integer, lazily populated and guarded by a
// single mutex, plus an atomic counter for Skolem-fresh symbols.
package symbol

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// ID is the stable integer id of an interned symbol.
type ID uint32

type key struct {
	name  string
	arity int
}

var (
	mu      sync.Mutex
	byKey   = make(map[key]ID)
	names   []key
	freshCt atomic.Uint64
)

// Intern returns the id for (name, arity), creating it on first sight.
// Two symbols are equal iff they share both name and arity: distinct
// arities of the same name intern to distinct ids.
func Intern(name string, arity int) ID {
	k := key{name, arity}
	mu.Lock()
	defer mu.Unlock()
	if id, ok := byKey[k]; ok {
		return id
	}
	id := ID(len(names))
	names = append(names, k)
	byKey[k] = id
	return id
}

// Fresh interns a new symbol of the given arity whose name is guaranteed
// disjoint from any user-supplied name, for use in Skolemization.
func Fresh(arity int) ID {
	n := freshCt.Add(1) - 1
	return Intern(fmt.Sprintf("_k%d", n), arity)
}

// Name returns the interned name of id.
func Name(id ID) string {
	mu.Lock()
	defer mu.Unlock()
	return names[id].name
}

// Arity returns the interned arity of id.
func Arity(id ID) int {
	mu.Lock()
	defer mu.Unlock()
	return names[id].arity
}

// Count reports how many distinct symbols have been interned, for use by
// deduction rules that instantiate a universal over every known function
// symbol.
func Count() int {
	mu.Lock()
	defer mu.Unlock()
	return len(names)
}

// All returns a snapshot of every interned id in creation order.
func All() []ID {
	mu.Lock()
	defer mu.Unlock()
	ids := make([]ID, len(names))
	for i := range names {
		ids[i] = ID(i)
	}
	return ids
}
