package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/gops/agent"
	"github.com/scott-cotton/cli"
	"github.com/sirupsen/logrus"

	"github.com/MichaelRawson/lerna/internal/config"
	"github.com/MichaelRawson/lerna/internal/errs"
	"github.com/MichaelRawson/lerna/internal/heuristic"
	"github.com/MichaelRawson/lerna/internal/idset"
	"github.com/MichaelRawson/lerna/internal/input/tptp"
	"github.com/MichaelRawson/lerna/internal/oracle"
	"github.com/MichaelRawson/lerna/internal/output/szs"
	"github.com/MichaelRawson/lerna/internal/pipeline"
	"github.com/MichaelRawson/lerna/internal/record"
	"github.com/MichaelRawson/lerna/internal/search"
	"github.com/MichaelRawson/lerna/internal/status"
)

// run is lerna's single command body, following go-tony/cmd/o/o.go's
// oMain/systemUp shape: parse the command's own options out of args,
// validate, then do the work. Every exit happens here, at the top of
// cmd/lerna, never inside an internal package.
func run(cfg *config.Options, cc *cli.Context, args []string) error {
	args, err := cfg.Main.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: exactly one TPTP problem file is required", cli.ErrUsage)
	}
	cfg.Problem = args[0]

	log := newLogger(cfg)

	if cfg.Exploration > 0 {
		search.ExplorationConstant = cfg.Exploration
	}

	if cfg.Gops {
		if err := agent.Listen(agent.Options{}); err != nil {
			log.WithField("component", "lerna").Warnf("gops agent failed to start: %v", err)
		}
	}

	id := strings.TrimSuffix(cfg.Problem, ".p")
	w := szs.NewWriter(cc.Out)

	var rec *record.Recorder
	if cfg.Record != "" {
		r, closer, err := record.Open(cfg.Record, log.WithField("component", "record"))
		if err != nil {
			return fail(w, id, fmt.Errorf("%w: %v", errs.ErrOS, err))
		}
		defer closer.Close()
		rec = r
	}

	problem, err := tptp.ParseFile(cfg.Problem)
	if err != nil {
		return fail(w, id, err)
	}
	if rec != nil {
		rec.Record("parsed", fmt.Sprintf("%d axioms, 1 negated conjecture", len(problem.Axioms)))
	}

	o := buildOracle(cfg, log)
	h, closeHeuristic, err := buildHeuristic(cfg)
	if err != nil {
		return fail(w, id, err)
	}
	if closeHeuristic != nil {
		defer closeHeuristic()
	}

	axioms := idset.Of(problem.Axioms...)
	start := idset.Of(problem.NegatedConjecture)
	tree := search.New(start, axioms)

	p := pipeline.New(tree, o, h, log.WithFields(logrus.Fields{"component": "pipeline", "problem_id": id}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	found := p.Run(ctx, cfg.Deadline())

	code := resultCode(found, tree)
	if rec != nil {
		rec.Record("status", string(code))
	}
	if code == szs.Theorem {
		if err := w.Status(id, code); err != nil {
			return fmt.Errorf("%w: %v", errs.ErrOS, err)
		}
		if err := w.Refutation(id, problem.Axioms, problem.NegatedConjecture); err != nil {
			return fmt.Errorf("%w: %v", errs.ErrOS, err)
		}
	} else if err := w.Status(id, code); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrOS, err)
	}

	os.Exit(code.ExitCode())
	return nil
}

// resultCode turns the search loop's outcome into an SZS Code:
// Pipeline.Run only reports true on an Unsat root (a Theorem), so a Sat
// root (a countermodel) and a deadline with no verdict both need
// classifying here from the tree's own final status.
func resultCode(found bool, tree *search.Tree) szs.Code {
	if found {
		return szs.Theorem
	}
	switch tree.Status() {
	case status.Sat:
		return szs.CounterSatisfiable
	default:
		return szs.TimeOut
	}
}

func fail(w *szs.Writer, id string, err error) error {
	w.Status(id, szs.FromError(err))
	return err
}

// newLogger builds the top-level logrus.Logger every component's
// logrus.FieldLogger derives from: errors and above only when -q is
// given, info and above otherwise, matching spec.md §6's "-q suppresses
// non-SZS output".
func newLogger(cfg *config.Options) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	if cfg.Quiet {
		log.SetLevel(logrus.ErrorLevel)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}
	return log
}

// buildOracle constructs the Oracle spec.md §6's -oracle flag names:
// "null" for oracle.Null, "sat" for the incomplete oracle.SAT
// abstraction, or any other value as an oracle.Subprocess command (e.g.
// z3), optionally pooled across -oraclePool concurrent workers.
func buildOracle(cfg *config.Options, log *logrus.Logger) oracle.Oracle {
	component := log.WithField("component", "oracle")
	var o oracle.Oracle
	switch cfg.Oracle {
	case "", "null":
		return nil
	case "sat":
		o = oracle.SAT{Log: component}
	default:
		o = oracle.Subprocess{
			Command: cfg.Oracle,
			Timeout: cfg.OracleTimeoutDuration(),
			Log:     component,
		}
	}
	if cfg.OraclePool > 1 {
		return oracle.NewPool(o, cfg.OraclePool)
	}
	return o
}

// buildHeuristic dials the scoring socket named by -heuristic, if any;
// an address containing a "/" is treated as a unix socket path,
// otherwise as a TCP host:port, exactly as go-tony's own addr-shaped
// flags (e.g. DocDServeConfig.Addr) are read.
func buildHeuristic(cfg *config.Options) (heuristic.Heuristic, func() error, error) {
	if cfg.HeuristicAddr == "" {
		return nil, nil, nil
	}
	network := "tcp"
	if strings.Contains(cfg.HeuristicAddr, "/") {
		network = "unix"
	}
	s, err := heuristic.Dial(network, cfg.HeuristicAddr)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", errs.ErrOS, err)
	}
	return s, s.Close, nil
}
