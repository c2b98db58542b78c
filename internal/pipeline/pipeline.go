// Package pipeline wires the search DAG to the satisfiability oracle
// and the scoring heuristic as three independent actors communicating
// over channels, so a slow oracle consultation or heuristic round trip
// never blocks the search from making progress elsewhere in the tree.
//
// Grounded on original_source/src/prover.rs: a bounded request channel
// per external actor (MAX_QUEUE = 128, so a burst of newly-discovered
// goals applies backpressure rather than growing without limit) and an
// unbounded reply channel per actor (ported here as a generously
// buffered channel, since Go has no direct unbounded-channel primitive
// and the replies are small, fixed-shape records), one goroutine per
// actor in place of crossbeam::thread::scope's scoped threads.
package pipeline

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/MichaelRawson/lerna/internal/formula"
	"github.com/MichaelRawson/lerna/internal/heuristic"
	"github.com/MichaelRawson/lerna/internal/oracle"
	"github.com/MichaelRawson/lerna/internal/search"
	"github.com/MichaelRawson/lerna/internal/status"
)

// maxQueue bounds the search -> oracle and search -> heuristic request
// channels, exactly as original_source/src/prover.rs's MAX_QUEUE does.
const maxQueue = 128

// replyBuffer sizes the actor -> search reply channels generously: a
// reply is only ever a node pointer plus a small verdict, and the
// search loop drains them promptly, so this never approaches crossbeam
// unbounded's actual unbounded growth in practice.
const replyBuffer = 4096

type oracleRequest struct {
	node *search.Node
	goal oracle.Goal
}

type oracleReply struct {
	node   *search.Node
	status status.Status
}

type heuristicRequest struct {
	node *search.Node
}

type heuristicReply struct {
	node  *search.Node
	score float64
}

// Pipeline owns the channels and goroutines connecting a search.Tree to
// an Oracle and a Heuristic.
type Pipeline struct {
	tree      *search.Tree
	oracle    oracle.Oracle
	heuristic heuristic.Heuristic
	log       logrus.FieldLogger

	toOracle    chan oracleRequest
	fromOracle  chan oracleReply
	toHeuristic chan heuristicRequest
	fromHeuristic chan heuristicReply
}

// New builds a Pipeline over an existing search tree. A nil oracle
// defaults to oracle.Null{}; a nil heuristic defaults to
// heuristic.Null{}, exactly as OPTIONS.oracle/OPTIONS.heuristic default
// in the original.
func New(tree *search.Tree, o oracle.Oracle, h heuristic.Heuristic, log logrus.FieldLogger) *Pipeline {
	if o == nil {
		o = oracle.Null{}
	}
	if h == nil {
		h = heuristic.Null{}
	}
	p := &Pipeline{
		tree:          tree,
		oracle:        o,
		heuristic:     h,
		log:           log,
		toOracle:      make(chan oracleRequest, maxQueue),
		fromOracle:    make(chan oracleReply, replyBuffer),
		toHeuristic:   make(chan heuristicRequest, maxQueue),
		fromHeuristic: make(chan heuristicReply, replyBuffer),
	}
	tree.OnNewLeaf(p.onNewLeaf)
	return p
}

func (p *Pipeline) onNewLeaf(n *search.Node) {
	select {
	case p.toOracle <- oracleRequest{node: n, goal: n.Goal()}:
	default:
		p.logf("oracle request queue full, dropping consultation for a goal")
	}
	select {
	case p.toHeuristic <- heuristicRequest{node: n}:
	default:
		p.logf("heuristic request queue full, dropping scoring for a goal")
	}
}

func (p *Pipeline) logf(format string, args ...interface{}) {
	if p.log != nil {
		p.log.Debugf(format, args...)
	}
}

// Run drives the search loop plus the oracle and heuristic actors until
// the root goal is refuted, the deadline passes, or ctx is cancelled.
// It returns true if a proof was found.
func (p *Pipeline) Run(ctx context.Context, deadline time.Duration) bool {
	runCtx := ctx
	var cancel context.CancelFunc
	if deadline > 0 {
		runCtx, cancel = context.WithTimeout(ctx, deadline)
		defer cancel()
	}

	done := make(chan struct{})
	defer close(done)

	go p.runOracle(runCtx, done)
	go p.runHeuristic(runCtx, done)

	for {
		select {
		case <-runCtx.Done():
			return p.tree.Complete()
		default:
		}

		p.drainReplies()

		if p.tree.Complete() {
			return true
		}
		p.tree.Step()
	}
}

func (p *Pipeline) drainReplies() {
	for {
		select {
		case r := <-p.fromOracle:
			if err := r.node.SetStatus(r.status); err != nil {
				p.logf("dropping oracle verdict: %v", err)
			}
		case r := <-p.fromHeuristic:
			r.node.SetScore(r.score)
		default:
			return
		}
	}
}

func (p *Pipeline) runOracle(ctx context.Context, done <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		case req := <-p.toOracle:
			verdict := oracle.Consult(ctx, p.oracle, req.goal)
			reply := oracleReply{node: req.node, status: verdict}
			select {
			case p.fromOracle <- reply:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (p *Pipeline) runHeuristic(ctx context.Context, done <-chan struct{}) {
	const batchSize = 32
	batch := make([]heuristicRequest, 0, batchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		ids := make([]formula.ID, 0, len(batch))
		for _, r := range batch {
			ids = append(ids, representative(r.node))
		}
		scores := p.heuristic.Score(ctx, ids)
		for i, r := range batch {
			s := 0.5
			if i < len(scores) {
				s = float64(scores[i])
			}
			reply := heuristicReply{node: r.node, score: s}
			select {
			case p.fromHeuristic <- reply:
			case <-ctx.Done():
				return
			}
		}
		batch = batch[:0]
	}

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		case req := <-p.toHeuristic:
			batch = append(batch, req)
			if len(batch) >= batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

// representative picks the single formula a node's goal is scored by:
// the conjunction of its members collapses to one id via formula.And,
// which is a faithful stand-in for "the goal" since the heuristic only
// ever needs a structural fingerprint to score against.
func representative(n *search.Node) formula.ID {
	members := n.Goal().Members()
	if len(members) == 0 {
		return formula.T()
	}
	return formula.And(members...)
}
