package heuristic

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/MichaelRawson/lerna/internal/formula"
	"github.com/MichaelRawson/lerna/internal/symbol"
	"github.com/MichaelRawson/lerna/internal/term"
)

func TestNullScoresConstant(t *testing.T) {
	p := formula.Prd(symbol.Intern("heuristicp", 0))
	q := formula.Prd(symbol.Intern("heuristicq", 0))
	scores := Null{}.Score(context.Background(), []formula.ID{p, q})
	if len(scores) != 2 {
		t.Fatalf("expected 2 scores, got %d", len(scores))
	}
	for _, s := range scores {
		if s != 0.5 {
			t.Fatalf("Null must score every candidate 0.5, got %v", s)
		}
	}
}

func TestNullScoresEmptyBatch(t *testing.T) {
	if got := (Null{}).Score(context.Background(), nil); len(got) != 0 {
		t.Fatalf("empty batch must score to an empty slice, got %v", got)
	}
}

func TestFromFormulaDeduplicatesSharedSubterms(t *testing.T) {
	c := term.Fn(symbol.Intern("heuristicc", 0))
	atom := formula.Prd(symbol.Intern("heuristicr", 2), c, c)
	g := FromFormula(atom)
	// top, application, predicate symbol, argument list, and one node
	// shared by both occurrences of c: five nodes rather than six
	if len(g.Nodes) != 5 {
		t.Fatalf("expected the repeated argument to share one node (5 nodes), got %d", len(g.Nodes))
	}
}

func TestSocketScoreMatchesResponsesByID(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	go func() {
		reader := bufio.NewReader(server)
		var reqs []request
		for i := 0; i < 2; i++ {
			line, err := reader.ReadBytes('\n')
			if err != nil {
				return
			}
			var req request
			if err := json.Unmarshal(line, &req); err != nil {
				return
			}
			reqs = append(reqs, req)
		}
		// reply out of order and with a made-up score keyed off id
		enc := json.NewEncoder(server)
		for i := len(reqs) - 1; i >= 0; i-- {
			enc.Encode(response{ID: reqs[i].ID, Score: float64(reqs[i].ID) + 1})
		}
	}()

	s := &Socket{conn: client, reader: bufio.NewReader(client)}
	p := formula.Prd(symbol.Intern("heuristics", 0))
	q := formula.Prd(symbol.Intern("heuristict", 0))

	done := make(chan []float64, 1)
	go func() {
		scores := s.Score(context.Background(), []formula.ID{p, q})
		done <- []float64{float64(scores[0]), float64(scores[1])}
	}()

	select {
	case got := <-done:
		if got[0] != 1 || got[1] != 2 {
			t.Fatalf("expected scores matched by request id [1 2], got %v", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for Socket.Score")
	}
}
