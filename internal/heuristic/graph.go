// graph.go flattens a formula into a labelled DAG suitable for sending
// to an external scoring service: one byte-flavour per node plus an
// edge list, both index-addressed and de-duplicated by structural
// identity.
//
// Grounded on original_source/src/graph.rs's Flavour enum and
// from_term/from_formula/flatten functions, ported from its Rc<Node>
// BTreeMap cache to a Go map keyed by a constructed string (Go has no
// equivalent of deriving Ord on an Rc-deduplicated recursive struct
// without a lot of boilerplate; a string key over the same fields it
// would compare by is the direct analogue).
package heuristic

import (
	"fmt"
	"strings"

	"github.com/MichaelRawson/lerna/internal/formula"
	"github.com/MichaelRawson/lerna/internal/term"
)

type flavour uint8

const (
	flavourTrue flavour = iota
	flavourFalse
	flavourVariable
	flavourConstant
	flavourProposition
	flavourFunctionSymbol
	flavourPredicateSymbol
	flavourApplication
	flavourArguments
	flavourEquality
	flavourNegation
	flavourDisjunction
	flavourConjunction
	flavourEquivalence
	flavourUniversal
	flavourExistential
	flavourTop
)

type graphNode struct {
	flavour  flavour
	data     int
	hasData  bool
	children []*graphNode
}

func (n *graphNode) key() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d:", n.flavour)
	if n.hasData {
		fmt.Fprintf(&b, "%d", n.data)
	}
	b.WriteByte('[')
	for _, c := range n.children {
		b.WriteString(c.key())
		b.WriteByte(',')
	}
	b.WriteByte(']')
	return b.String()
}

func leaf(f flavour) *graphNode { return &graphNode{flavour: f} }

func withData(f flavour, data int) *graphNode {
	return &graphNode{flavour: f, data: data, hasData: true}
}

func fromTerm(id term.ID, bound []int) *graphNode {
	t := term.Lookup(id)
	if t.Kind == term.KindVar {
		return withData(flavourVariable, bound[len(bound)-1-t.Index])
	}
	if len(t.Children) == 0 {
		return withData(flavourConstant, int(t.Symbol))
	}
	args := make([]*graphNode, len(t.Children))
	for i, c := range t.Children {
		args[i] = fromTerm(c, bound)
	}
	return &graphNode{
		flavour: flavourApplication,
		children: []*graphNode{
			withData(flavourFunctionSymbol, int(t.Symbol)),
			{flavour: flavourArguments, children: args},
		},
	}
}

func fromFormula(id formula.ID, bound *[]int) *graphNode {
	f := formula.Lookup(id)
	switch f.Kind {
	case formula.KindT:
		return leaf(flavourTrue)
	case formula.KindF:
		return leaf(flavourFalse)
	case formula.KindEq:
		children := make([]*graphNode, 0, f.Terms.Len())
		for _, t := range f.Terms.Members() {
			children = append(children, fromTerm(t, *bound))
		}
		return &graphNode{flavour: flavourEquality, children: children}
	case formula.KindPrd:
		if len(f.Args) == 0 {
			return withData(flavourProposition, int(f.Symbol))
		}
		args := make([]*graphNode, len(f.Args))
		for i, t := range f.Args {
			args[i] = fromTerm(t, *bound)
		}
		return &graphNode{
			flavour: flavourApplication,
			children: []*graphNode{
				withData(flavourPredicateSymbol, int(f.Symbol)),
				{flavour: flavourArguments, children: args},
			},
		}
	case formula.KindNot:
		return &graphNode{flavour: flavourNegation, children: []*graphNode{fromFormula(f.Sub, bound)}}
	case formula.KindImp:
		return &graphNode{flavour: flavourDisjunction, children: []*graphNode{
			{flavour: flavourNegation, children: []*graphNode{fromFormula(f.Left, bound)}},
			fromFormula(f.Right, bound),
		}}
	case formula.KindOr, formula.KindAnd, formula.KindEqv:
		fl := flavourDisjunction
		if f.Kind == formula.KindAnd {
			fl = flavourConjunction
		} else if f.Kind == formula.KindEqv {
			fl = flavourEquivalence
		}
		children := make([]*graphNode, 0, f.Children.Len())
		for _, c := range f.Children.Members() {
			children = append(children, fromFormula(c, bound))
		}
		return &graphNode{flavour: fl, children: children}
	case formula.KindAll, formula.KindEx:
		fl := flavourUniversal
		if f.Kind == formula.KindEx {
			fl = flavourExistential
		}
		*bound = append(*bound, len(*bound))
		body := fromFormula(f.Sub, bound)
		variable := withData(flavourVariable, (*bound)[len(*bound)-1])
		*bound = (*bound)[:len(*bound)-1]
		return &graphNode{flavour: fl, children: []*graphNode{variable, body}}
	default:
		return leaf(flavourTrue)
	}
}

// Graph is the flattened, index-addressed form sent over the wire.
type Graph struct {
	Nodes []uint8    `json:"nodes"`
	Edges [][2]int   `json:"edges"`
}

// FromFormula flattens id into a Graph, deduplicating structurally
// identical subtrees (so sharing introduced by hash-consing is
// preserved rather than re-serialized).
func FromFormula(id formula.ID) Graph {
	top := &graphNode{flavour: flavourTop, children: []*graphNode{fromFormula(id, &[]int{})}}
	var nodes []uint8
	var edges [][2]int
	cache := make(map[string]int)
	flattenStep(top, &nodes, &edges, cache)
	return Graph{Nodes: nodes, Edges: edges}
}

func flattenStep(n *graphNode, nodes *[]uint8, edges *[][2]int, cache map[string]int) int {
	key := n.key()
	if idx, ok := cache[key]; ok {
		return idx
	}
	childIndices := make([]int, len(n.children))
	for i, c := range n.children {
		childIndices[i] = flattenStep(c, nodes, edges, cache)
	}
	index := len(*nodes)
	*nodes = append(*nodes, uint8(n.flavour))
	for _, ci := range childIndices {
		*edges = append(*edges, [2]int{index, ci})
	}
	cache[key] = index
	return index
}
