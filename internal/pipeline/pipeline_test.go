package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/MichaelRawson/lerna/internal/formula"
	"github.com/MichaelRawson/lerna/internal/idset"
	"github.com/MichaelRawson/lerna/internal/oracle"
	"github.com/MichaelRawson/lerna/internal/search"
	"github.com/MichaelRawson/lerna/internal/status"
	"github.com/MichaelRawson/lerna/internal/symbol"
)

func TestRunRefutesAlreadyFalseGoal(t *testing.T) {
	goal := idset.Of(formula.F())
	tree := search.New(goal, idset.Of[formula.ID]())
	p := New(tree, oracle.Null{}, nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if !p.Run(ctx, 0) {
		t.Fatal("a goal containing $false must be refuted immediately")
	}
}

func TestRunStepsUntilDeadline(t *testing.T) {
	p0 := formula.Prd(symbol.Intern("pipeline-test-p", 0))
	goal := idset.Of(formula.Or(p0, formula.Not(p0)))
	tree := search.New(goal, idset.Of[formula.ID]())
	pl := New(tree, oracle.Null{}, nil, nil)

	ctx := context.Background()
	found := pl.Run(ctx, 50*time.Millisecond)
	if found {
		t.Fatal("p | ~p is not refutable under a null oracle, Run must report no proof")
	}
}

func TestSatOracleKillsBranch(t *testing.T) {
	p0 := formula.Prd(symbol.Intern("pipeline-test-q", 0))
	goal := idset.Of(p0)
	tree := search.New(goal, idset.Of[formula.ID]())
	pl := New(tree, alwaysSat{}, nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	pl.Run(ctx, 100*time.Millisecond)

	if tree.Complete() {
		t.Fatal("a goal an oracle reports Sat must never be marked refuted")
	}
}

type alwaysSat struct{}

func (alwaysSat) Consult(context.Context, oracle.Goal) status.Status { return status.Sat }
