// Package oracle implements the external satisfiability checks a goal
// can be referred to: a trivial Null oracle, a fast incomplete SAT
// abstraction, a full Subprocess oracle speaking SMT-LIB2 to an
// external solver, and a Pool that fans a batch of checks out across a
// fixed number of subprocesses.
//
// Grounded on original_source/src/oracle/{mod,z3}.rs for the Oracle
// trait shape and the subprocess wire protocol, and on
// go-tony/schema/formula_builder.go + the vendored gini API surface
// OLM's resolver package exercises for the SAT half.
package oracle

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/go-air/gini"
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"
	"github.com/sirupsen/logrus"

	"github.com/MichaelRawson/lerna/internal/formula"
	"github.com/MichaelRawson/lerna/internal/idset"
	"github.com/MichaelRawson/lerna/internal/output/smtlib2"
	"github.com/MichaelRawson/lerna/internal/status"
)

// Goal is the conjunctive set of formulae an oracle is asked about.
type Goal = idset.Set[formula.ID]

// Oracle reports a sound verdict on whether goal's conjunction is
// satisfiable, or status.Unknown if it cannot decide (within any time
// budget ctx carries).
type Oracle interface {
	Consult(ctx context.Context, goal Goal) status.Status
}

// Consult is the entry point every call site should use: it shortcuts
// the trivial cases ($true is Sat, $false is Unsat) before delegating
// to o, exactly as original_source/src/oracle/mod.rs's free `consult`
// function does ahead of `OPTIONS.oracle.consult`.
func Consult(ctx context.Context, o Oracle, goal Goal) status.Status {
	if goal.Contains(formula.F()) {
		return status.Unsat
	}
	if goal.Len() == 1 && goal.Members()[0] == formula.T() {
		return status.Sat
	}
	return o.Consult(ctx, goal)
}

// Null never commits to a verdict; it is the default when no other
// oracle is configured, matching spec.md §6's "always Unknown" oracle.
type Null struct{}

func (Null) Consult(context.Context, Goal) status.Status { return status.Unknown }

// SAT decides a sound, incomplete propositional abstraction of the
// goal: every atomic formula (predicate application or equality) is
// treated as an opaque boolean, quantifiers are dropped (a universal or
// existential body is abstracted to its own boolean, neither asserted
// nor negated). Since this abstraction is a relaxation of the original
// first-order problem, an Unsat verdict here is sound for the original
// goal; a Sat verdict is not, so it is reported as Unknown.
type SAT struct {
	Log logrus.FieldLogger
}

func (s SAT) Consult(_ context.Context, goal Goal) status.Status {
	c := logic.NewC()
	cache := make(map[formula.ID]z.Lit)
	lits := make([]z.Lit, 0, goal.Len())
	for _, f := range goal.Members() {
		lits = append(lits, abstractLit(c, cache, f))
	}
	whole := c.Ands(lits...)

	g := gini.New()
	c.ToCnf(g)
	g.Assume(whole)
	switch g.Solve() {
	case 1:
		return status.Unknown
	case -1:
		return status.Unsat
	default:
		return status.Unknown
	}
}

func abstractLit(c *logic.C, cache map[formula.ID]z.Lit, id formula.ID) z.Lit {
	if lit, ok := cache[id]; ok {
		return lit
	}
	f := formula.Lookup(id)
	var lit z.Lit
	switch f.Kind {
	case formula.KindT:
		lit = c.T
	case formula.KindF:
		lit = c.F
	case formula.KindNot:
		lit = abstractLit(c, cache, f.Sub).Not()
	case formula.KindImp:
		p := abstractLit(c, cache, f.Left)
		q := abstractLit(c, cache, f.Right)
		lit = c.Ors(p.Not(), q)
	case formula.KindOr:
		children := make([]z.Lit, 0, f.Children.Len())
		for _, m := range f.Children.Members() {
			children = append(children, abstractLit(c, cache, m))
		}
		lit = c.Ors(children...)
	case formula.KindAnd:
		children := make([]z.Lit, 0, f.Children.Len())
		for _, m := range f.Children.Members() {
			children = append(children, abstractLit(c, cache, m))
		}
		lit = c.Ands(children...)
	case formula.KindEqv:
		members := f.Children.Members()
		lit = c.T
		for i := 1; i < len(members); i++ {
			a := abstractLit(c, cache, members[i-1])
			b := abstractLit(c, cache, members[i])
			lit = c.Ands(lit, c.Ands(c.Ors(a.Not(), b), c.Ors(b.Not(), a)))
		}
	default:
		// KindPrd, KindEq, KindAll, KindEx: opaque atoms under this
		// abstraction, each gets its own fresh boolean variable.
		lit = c.Lit()
	}
	cache[id] = lit
	return lit
}

// Subprocess consults an external SMT-LIB2 solver (typically z3) over
// its stdin/stdout, exactly as original_source/src/oracle/z3.rs does:
// a handful of tuning set-options, the problem, then check-sat.
type Subprocess struct {
	Command string // e.g. "z3"
	Timeout time.Duration
	Log     logrus.FieldLogger
}

func (s Subprocess) Consult(ctx context.Context, goal Goal) status.Status {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	cmd := exec.CommandContext(ctx, s.Command, "-in", fmt.Sprintf("-t:%d", timeout.Milliseconds()))
	stdin, err := cmd.StdinPipe()
	if err != nil {
		s.logf("failed to open stdin: %v", err)
		return status.Unknown
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		s.logf("failed to open stdout: %v", err)
		return status.Unknown
	}
	if err := cmd.Start(); err != nil {
		s.logf("failed to launch %s: %v", s.Command, err)
		return status.Unknown
	}

	go func() {
		defer stdin.Close()
		fmt.Fprintln(stdin, "(set-option :smt.auto-config false)")
		fmt.Fprintln(stdin, "(set-option :smt.ematching false)")
		fmt.Fprintln(stdin, "(set-option :smt.mbqi true)")
		fmt.Fprintln(stdin)
		if err := smtlib2.WriteProblem(stdin, goal); err != nil {
			s.logf("failed to write problem: %v", err)
		}
	}()

	scanner := bufio.NewScanner(stdout)
	var verdict string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			verdict = line
			break
		}
	}
	_ = cmd.Wait()

	switch verdict {
	case "sat":
		return status.Sat
	case "unsat":
		return status.Unsat
	default:
		return status.Unknown
	}
}

func (s Subprocess) logf(format string, args ...interface{}) {
	if s.Log != nil {
		s.Log.Warnf(format, args...)
	}
}

// Pool dispatches Consult calls across a fixed number of worker slots,
// so a slow external solver never blocks more than its share of the
// search's concurrency budget.
type Pool struct {
	Oracle  Oracle
	tickets chan struct{}
}

// NewPool builds a Pool with size concurrent oracle consultations.
func NewPool(o Oracle, size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{Oracle: o, tickets: make(chan struct{}, size)}
}

func (p *Pool) Consult(ctx context.Context, goal Goal) status.Status {
	select {
	case p.tickets <- struct{}{}:
	case <-ctx.Done():
		return status.Unknown
	}
	defer func() { <-p.tickets }()
	return p.Oracle.Consult(ctx, goal)
}
