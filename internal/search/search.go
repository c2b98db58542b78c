// Package search implements the goal DAG: a Monte-Carlo-flavoured
// AND-OR search tree over the deduction rules in internal/deduce, with
// UCT selection, deduction-rule expansion, bottom-up status/distance
// propagation, and refutation-proof extraction.
//
// Grounded on original_source/src/{tree,search,graph}.rs, generalized
// from a tree to a DAG per SPEC_FULL.md §9 (structurally identical
// goals, after simplification, share one node instead of being
// re-expanded): each GoalNode (OR over its InferenceNode children, one
// per deduction-rule candidate) and InferenceNode (AND over its
// subgoals) is exactly as in tree.rs. Each InferenceNode here wraps
// every subgoal its originating deduce.Inference produced, all of which
// must be refuted for the inference to certify its parent refuted: the
// multi-way case split original_source/src/deduction/complete.rs's
// multi-member completions and inference.rs's Inference{add,remove}/
// Inferred types perform (and which stub-only inferences/mod.rs never
// did), not the never-implemented case split that file's stub `inferences`
// was once (inaccurately) cited here as the absence of.
package search

import (
	"math"
	"math/rand"
	"sync"
	"sync/atomic"

	"github.com/MichaelRawson/lerna/internal/deduce"
	"github.com/MichaelRawson/lerna/internal/formula"
	"github.com/MichaelRawson/lerna/internal/idset"
	"github.com/MichaelRawson/lerna/internal/simplify"
	"github.com/MichaelRawson/lerna/internal/status"
)

// Goal is the conjunctive set of formulae remaining to be refuted.
type Goal = idset.Set[formula.ID]

// Proof is an extracted refutation: a goal together with the proofs of
// the subgoals the winning deduction reduced it to. A leaf Proof (no
// Children) is a goal refuted without expansion: one containing $false,
// or one an oracle reported Unsat.
type Proof struct {
	Goal     Goal
	Children []*Proof
}

// ExplorationConstant is the UCB1 exploration coefficient (spec.md §6's
// `-c`/`--exploration` flag); cmd/lerna sets it once before building a
// Tree. 2.0 is the standard UCB1 choice and the package default.
var ExplorationConstant = 2.0

// uct is the standard UCB1 score: an exploitation term plus an
// exploration bonus that shrinks as the child accrues visits.
func uct(score float64, parentVisits, childVisits uint64) float64 {
	n := float64(parentVisits)
	k := float64(childVisits)
	return score + math.Sqrt(ExplorationConstant*math.Log(n)/k)
}

// weightedChoice samples an index from scores, treating them (after
// shifting to be non-negative) as unnormalized weights. Falls back to a
// uniform choice if every score is non-positive.
func weightedChoice(scores []float64) int {
	if len(scores) == 1 {
		return 0
	}
	min, max := scores[0], scores[0]
	for _, s := range scores {
		if s < min {
			min = s
		}
		if s > max {
			max = s
		}
	}
	if max <= 0 {
		return rand.Intn(len(scores))
	}
	shift := 0.0
	if min < 0 {
		shift = -min
	}
	total := 0.0
	for _, s := range scores {
		total += s + shift + 1e-9
	}
	if total <= 0 {
		return rand.Intn(len(scores))
	}
	sample := rand.Float64() * total
	running := 0.0
	for i, s := range scores {
		running += s + shift + 1e-9
		if sample <= running {
			return i
		}
	}
	return len(scores) - 1
}

func equalChoice(n int) int {
	return rand.Intn(n)
}

func simplifyGoal(g Goal) Goal {
	return simplify.SimplifyGoal(g)
}

func isRefuted(g Goal) bool {
	return g.Contains(formula.F())
}

// Node is one vertex of the goal DAG: the disjunction ("OR") of every
// deduction candidate tried against its goal so far.
type Node struct {
	goal Goal

	mu       sync.RWMutex
	children []*inferenceNode

	expanded atomic.Bool
	visits   atomic.Uint64
	distance atomic.Uint32
	st       atomic.Uint32
	score    atomic.Uint64 // math.Float64bits of the heuristic's estimate
}

func newLeaf(goal Goal) *Node {
	n := &Node{goal: goal}
	n.visits.Store(1)
	n.score.Store(math.Float64bits(0.5))
	if isRefuted(goal) {
		n.st.Store(uint32(status.Unsat))
		n.distance.Store(0)
	} else {
		n.st.Store(uint32(status.Unknown))
		n.distance.Store(1)
	}
	return n
}

// Status reports the node's current verdict.
func (n *Node) Status() status.Status { return status.Status(n.st.Load()) }

// Unsat reports whether this goal has been refuted.
func (n *Node) Unsat() bool { return n.Status() == status.Unsat }

// Sat reports whether an oracle has reported this goal satisfiable,
// meaning no inference through it can ever be completed: the goal
// itself has a model, so it can never be shown to have none.
func (n *Node) Sat() bool { return n.Status() == status.Sat }

// SetStatus records a known verdict on this goal, respecting the
// monotonicity guard status.Compatible requires: an Unknown status is a
// no-op, and a known status that conflicts with one already recorded is
// rejected (and reported, never silently overwritten) rather than
// applied.
func (n *Node) SetStatus(s status.Status) error {
	if !s.Known() {
		return nil
	}
	for {
		old := status.Status(n.st.Load())
		if old == s {
			return nil
		}
		if !status.Compatible(old, s) {
			return status.ErrConflict{Old: old, New: s}
		}
		if n.st.CompareAndSwap(uint32(old), uint32(s)) {
			return nil
		}
	}
}

// SetSat records an oracle's Sat verdict on this goal.
func (n *Node) SetSat() error { return n.SetStatus(status.Sat) }

// SetUnsat records an oracle's Unsat verdict on this goal.
func (n *Node) SetUnsat() error { return n.SetStatus(status.Unsat) }

// SetScore records a heuristic's estimate for this goal.
func (n *Node) SetScore(s float64) { n.score.Store(math.Float64bits(s)) }

// Score returns the node's current heuristic estimate, 0.5 (the Null
// heuristic's constant) until a heuristic reports otherwise.
func (n *Node) Score() float64 { return math.Float64frombits(n.score.Load()) }

// Distance is the node's current estimated proof distance.
func (n *Node) Distance() uint32 { return n.distance.Load() }

// Visits is the number of times this node has been updated.
func (n *Node) Visits() uint64 { return n.visits.Load() }

// Goal returns the formula set this node represents.
func (n *Node) Goal() Goal { return n.goal }

// inferenceNode is the conjunction ("AND") of the subgoals one
// deduction candidate produced.
type inferenceNode struct {
	subgoals []*Node

	visits   atomic.Uint64
	distance atomic.Uint32
	st       atomic.Uint32
	dead     atomic.Bool // true once any subgoal is known Sat: can never complete
}

func newInferenceNode(subgoals []*Node) *inferenceNode {
	ic := &inferenceNode{subgoals: subgoals}
	ic.visits.Store(1)
	ic.recompute()
	return ic
}

func (ic *inferenceNode) Unsat() bool { return status.Status(ic.st.Load()) == status.Unsat }

// Dead reports whether this inference can never be completed because
// one of its subgoals has a model (an oracle reported it Sat).
func (ic *inferenceNode) Dead() bool { return ic.dead.Load() }

// recompute refreshes status/dead/distance from the current subgoal
// states without touching visits. Oracle/heuristic replies land on
// subgoal nodes asynchronously via Node.SetStatus/SetScore, with no
// parent back-pointers to push the change up the DAG immediately
// (spec.md's Node.parents field has no counterpart here — see
// DESIGN.md); selectGoal instead calls recompute on every candidate it
// considers, so a stale cached "dead"/"Unsat" flag self-heals on the
// node's very next visit from any parent, rather than only when that
// exact inference is itself selected and traversed.
func (ic *inferenceNode) recompute() {
	complete := true
	dead := false
	var totalDistance uint32
	for _, sg := range ic.subgoals {
		if sg.Sat() {
			dead = true
		}
		if !sg.Unsat() {
			complete = false
			totalDistance += sg.Distance()
		}
	}
	if complete {
		ic.st.Store(uint32(status.Unsat))
	}
	if dead {
		ic.dead.Store(true)
	}
	ic.distance.Store(totalDistance)
}

// update recomputes and records a traversal (a visit) of this inference.
func (ic *inferenceNode) update() {
	ic.recompute()
	ic.visits.Add(1)
}

func (ic *inferenceNode) uctScore(parentVisits uint64, parentDistance uint32) float64 {
	childVisits := ic.visits.Load()
	childDistance := ic.distance.Load()
	diff := float64(int64(parentDistance) - int64(childDistance))
	base := diff / float64(parentDistance)
	var prior float64
	for _, sg := range ic.subgoals {
		prior += sg.Score()
	}
	if len(ic.subgoals) > 0 {
		prior /= float64(len(ic.subgoals))
	}
	return uct(base+prior, parentVisits+1, childVisits)
}

func (ic *inferenceNode) selectSubgoal() *Node {
	if ic.Dead() {
		return nil
	}
	var available []*Node
	for _, sg := range ic.subgoals {
		if !sg.Unsat() && !sg.Sat() {
			available = append(available, sg)
		}
	}
	if len(available) == 0 {
		return nil
	}
	return available[equalChoice(len(available))]
}

func (ic *inferenceNode) proofs() []*Proof {
	out := make([]*Proof, len(ic.subgoals))
	for i, sg := range ic.subgoals {
		out[i] = sg.proof()
	}
	return out
}

// Tree owns the shared node cache (the DAG's structural-sharing table),
// the axioms available to the axiom rule, and the deduction rule set.
type Tree struct {
	axioms Goal
	rules  []deduce.Rule

	cache sync.Map // string (Goal.String()) -> *Node
	root  *Node

	onNewLeaf func(*Node)
}

// New builds a search tree whose root is the simplified fixed point of
// start.
func New(start Goal, axioms Goal) *Tree {
	t := &Tree{axioms: axioms, rules: deduce.Rules()}
	t.root = t.nodeFor(simplifyGoal(start))
	return t
}

// OnNewLeaf registers fn to be called, exactly once, whenever a
// structurally new goal first enters the DAG. internal/pipeline uses
// this to fan the goal out to the oracle and heuristic actors as soon
// as it is created, rather than polling for new nodes.
func (t *Tree) OnNewLeaf(fn func(*Node)) { t.onNewLeaf = fn }

func (t *Tree) nodeFor(goal Goal) *Node {
	key := goal.String()
	if v, ok := t.cache.Load(key); ok {
		return v.(*Node)
	}
	leaf := newLeaf(goal)
	actual, loaded := t.cache.LoadOrStore(key, leaf)
	if !loaded && t.onNewLeaf != nil {
		t.onNewLeaf(actual.(*Node))
	}
	return actual.(*Node)
}

// Complete reports whether the root goal has been refuted.
func (t *Tree) Complete() bool { return t.root.Unsat() }

// Status reports the root goal's current verdict, for callers that need
// to distinguish a Sat countermodel from a still-Unknown root once the
// search loop stops without Complete.
func (t *Tree) Status() status.Status { return t.root.Status() }

// TotalVisits reports the root's visit count, a rough progress metric.
func (t *Tree) TotalVisits() uint64 { return t.root.Visits() }

// Step performs one selection/expansion/update cycle, returning whether
// anything changed.
func (t *Tree) Step() bool {
	return t.stepGoal(t.root, []*Node{t.root})
}

// stepGoal recurses from n towards a frontier node, threading the
// root-to-n path so expandGoal can apply the ancestor filter from
// spec.md §3/§4.4.3: an expansion never introduces a child goal that is
// already on the path from root to the node being expanded, which is
// what keeps the goal DAG acyclic (invariant 6 in spec.md §8).
func (t *Tree) stepGoal(n *Node, path []*Node) bool {
	selected := t.selectGoal(n)
	var changed bool
	if selected != nil {
		changed = t.stepInference(selected, path)
	} else {
		changed = t.expandGoal(n, path)
	}
	if changed {
		t.updateGoal(n)
	}
	return changed
}

func (t *Tree) selectGoal(n *Node) *inferenceNode {
	if !n.expanded.Load() {
		return nil
	}
	n.mu.RLock()
	all := append([]*inferenceNode(nil), n.children...)
	n.mu.RUnlock()

	var children []*inferenceNode
	for _, c := range all {
		c.recompute()
		if !c.Unsat() && !c.Dead() {
			children = append(children, c)
		}
	}
	if len(children) == 0 {
		return nil
	}
	visits := n.visits.Load()
	distance := n.distance.Load()
	scores := make([]float64, len(children))
	for i, c := range children {
		scores[i] = c.uctScore(visits, distance)
	}
	return children[weightedChoice(scores)]
}

func (t *Tree) expandGoal(n *Node, path []*Node) bool {
	if n.Unsat() || n.Sat() {
		return false
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.expanded.Load() {
		return false
	}
	var built []*inferenceNode
	for _, r := range t.rules {
		for _, inf := range r.Deduce(n.goal, t.axioms) {
			subgoals := make([]*Node, 0, len(inf))
			onAncestor := false
			for _, candidate := range inf {
				subgoal := t.nodeFor(simplifyGoal(candidate))
				if onPath(subgoal, path) {
					onAncestor = true
					break
				}
				subgoals = append(subgoals, subgoal)
			}
			if onAncestor || len(subgoals) == 0 {
				continue
			}
			built = append(built, newInferenceNode(subgoals))
		}
	}
	n.children = built
	n.expanded.Store(true)
	return true
}

// onPath reports whether n already occurs somewhere from the root down
// to (and including) the node currently being expanded.
func onPath(n *Node, path []*Node) bool {
	for _, p := range path {
		if p == n {
			return true
		}
	}
	return false
}

func (t *Tree) updateGoal(n *Node) {
	if !n.expanded.Load() {
		return
	}
	n.mu.RLock()
	children := append([]*inferenceNode(nil), n.children...)
	n.mu.RUnlock()

	unsat := false
	var maxDistance uint32
	for _, c := range children {
		c.update()
		if c.Unsat() {
			unsat = true
		}
		if d := c.distance.Load(); d > maxDistance {
			maxDistance = d
		}
	}

	n.visits.Add(1)
	if unsat {
		// An internally-derived refutation can never conflict with a
		// prior oracle Sat verdict in a sound proof search (a node with
		// a complete inference beneath it and a model both would mean
		// the deduction rules are unsound), so the error is deliberately
		// discarded here; pipeline's drainReplies is where externally
		// observed conflicts get surfaced.
		_ = n.SetStatus(status.Unsat)
	}
	n.distance.Store(maxDistance + 1)
}

func (t *Tree) stepInference(ic *inferenceNode, path []*Node) bool {
	selected := ic.selectSubgoal()
	if selected == nil {
		return false
	}
	changed := t.stepGoal(selected, append(path, selected))
	if changed {
		ic.update()
	}
	return changed
}

// Proof extracts the refutation beneath the root. The root must be
// Unsat.
func (t *Tree) Proof() *Proof {
	return t.root.proof()
}

func (n *Node) proof() *Proof {
	if !n.expanded.Load() {
		return &Proof{Goal: n.goal}
	}
	n.mu.RLock()
	children := append([]*inferenceNode(nil), n.children...)
	n.mu.RUnlock()
	for _, c := range children {
		if c.Unsat() {
			return &Proof{Goal: n.goal, Children: c.proofs()}
		}
	}
	panic("search: Proof called on a node with no complete inference")
}
