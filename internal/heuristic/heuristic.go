// Package heuristic scores candidate goals for search prioritization:
// a trivial constant Null scorer, and a Socket scorer that offloads
// scoring to an external process over a persistent connection.
//
// Grounded on original_source/src/heuristic/{mod,null}.rs for the
// Heuristic trait shape and the Null scorer's constant-0.5 behavior.
// Socket has no direct counterpart in original_source (the real system
// scores in-process); its wire shape is grounded on
// go-tony/cmd/tony-lsp/main.go's stdioReadWriteCloser framing idea,
// adapted from jsonrpc2 request/response pairs to fire-and-forget
// JSON-lines records over net.Conn, since scoring is a one-way batched
// query with unordered replies rather than an RPC call/response.
package heuristic

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync"

	"github.com/MichaelRawson/lerna/internal/formula"
	"github.com/MichaelRawson/lerna/internal/score"
)

// Heuristic scores a batch of candidate formulae, one score per input,
// in the same order. Implementations that block on an external
// round-trip (Socket) must return once ctx is done rather than hang
// past the search's deadline.
type Heuristic interface {
	Score(ctx context.Context, batch []formula.ID) []score.Score
}

// Null assigns every candidate the same score, exactly as
// original_source/src/heuristic/null.rs does: useful as a default when
// no trained scorer is configured, reducing search to plain UCT.
type Null struct{}

func (Null) Score(_ context.Context, batch []formula.ID) []score.Score {
	return nullScores(batch)
}

func nullScores(batch []formula.ID) []score.Score {
	out := make([]score.Score, len(batch))
	for i := range out {
		out[i] = score.Of(0.5)
	}
	return out
}

// request is one line sent to the scoring process per candidate.
type request struct {
	ID    uint64 `json:"id"`
	Graph Graph  `json:"graph"`
}

// response is one line read back; replies may arrive out of order or
// batched arbitrarily, matched back up by ID.
type response struct {
	ID    uint64  `json:"id"`
	Score float64 `json:"score"`
}

// Socket scores candidates by sending their flattened graph encoding to
// a persistent external connection and reading scores back, matched by
// a per-request id rather than assumed to come back in request order.
type Socket struct {
	conn   net.Conn
	reader *bufio.Reader
	mu     sync.Mutex
	nextID uint64
}

// Dial opens a Socket scorer over the given network/address (e.g.
// "unix", "/run/lerna-heuristic.sock").
func Dial(network, address string) (*Socket, error) {
	conn, err := net.Dial(network, address)
	if err != nil {
		return nil, fmt.Errorf("heuristic: dial %s %s: %w", network, address, err)
	}
	return &Socket{conn: conn, reader: bufio.NewReader(conn)}, nil
}

// Close releases the underlying connection.
func (s *Socket) Close() error {
	return s.conn.Close()
}

// Score sends one request per candidate and blocks for exactly that
// many responses (or until ctx is done), matching each back to its
// candidate by id so out of order or interleaved replies from the
// remote scorer are handled correctly.
func (s *Socket) Score(ctx context.Context, batch []formula.ID) []score.Score {
	out := make([]score.Score, len(batch))
	if len(batch) == 0 {
		return out
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]uint64, len(batch))
	index := make(map[uint64]int, len(batch))
	enc := json.NewEncoder(s.conn)
	for i, f := range batch {
		id := s.nextID
		s.nextID++
		ids[i] = id
		index[id] = i
		if err := enc.Encode(request{ID: id, Graph: FromFormula(f)}); err != nil {
			// Connection is broken; fall back to Null for this batch
			// rather than block forever waiting on replies that will
			// never arrive.
			return nullScores(batch)
		}
	}

	// ReadBytes blocks on the connection with no way to pass ctx
	// through, so it runs in its own goroutine; a cancelled ctx makes
	// Score return early (with whatever partial scores already arrived)
	// by closing the connection out from under the blocked read, exactly
	// the way pipeline.Run's deadline is meant to bound every blocking
	// external call.
	type lineResult struct {
		line []byte
		err  error
	}
	lines := make(chan lineResult, 1)
	readNext := func() {
		go func() {
			line, err := s.reader.ReadBytes('\n')
			lines <- lineResult{line: line, err: err}
		}()
	}

	remaining := len(batch)
	readNext()
	for remaining > 0 {
		select {
		case <-ctx.Done():
			s.conn.Close()
			return out
		case res := <-lines:
			if len(res.line) > 0 {
				var resp response
				if jsonErr := json.Unmarshal(res.line, &resp); jsonErr == nil {
					if i, ok := index[resp.ID]; ok {
						out[i] = score.Of(resp.Score)
						delete(index, resp.ID)
						remaining--
					}
				}
			}
			if res.err != nil {
				return out
			}
			if remaining > 0 {
				readNext()
			}
		}
	}
	// Any candidate whose response never arrived (broken connection,
	// malformed line, or cancellation) keeps its zero value, the most
	// conservative score.
	return out
}
