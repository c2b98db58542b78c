// Package config builds the single Options struct the CLI surface in
// cmd/lerna binds its flags to, the way go-tony/cmd/o/configs.go builds
// MainConfig: a flat struct of `cli:"name=... desc='...'"` tagged fields
// turned into *cli.Opt values by cli.StructOpts.
package config

import (
	"time"

	"github.com/scott-cotton/cli"
)

// Options holds every tunable named in spec.md §6's CLI surface:
// time budget, oracle selection, oracle subprocess timeout, heuristic
// address, exploration constant, record-output path, and a quiet flag.
type Options struct {
	Problem string `cli:"-"` // positional, filled in by Run, not StructOpts

	Seconds int `cli:"name=t aliases=time desc='time budget in seconds' default=60"`

	Oracle        string `cli:"name=oracle desc='oracle: null, sat, or a subprocess command (e.g. z3)' default=sat"`
	OracleTimeout int    `cli:"name=oracleTimeout desc='oracle subprocess timeout in milliseconds' default=2000"`
	OraclePool    int    `cli:"name=oraclePool desc='number of concurrent oracle workers' default=1"`

	HeuristicAddr string `cli:"name=heuristic desc='heuristic socket address host:port (empty = null heuristic)'"`

	Exploration float64 `cli:"name=c aliases=exploration desc='UCT exploration constant' default=2.0"`

	Record string `cli:"name=record desc='optional path to record the run as JSON lines'"`
	Quiet  bool   `cli:"name=q aliases=quiet desc='suppress non-SZS output'"`
	Gops   bool   `cli:"name=gops desc='start a github.com/google/gops diagnostics agent'"`

	Main *cli.Command
}

// Deadline returns the wall-clock budget as a time.Duration, defaulting
// to 60s exactly as MainConfig's zero-value fields fall back in the
// teacher (spec.md names no default, but a prover that never times out
// by default would hang every CI run that omits -t).
func (o *Options) Deadline() time.Duration {
	if o.Seconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(o.Seconds) * time.Second
}

// OracleTimeoutDuration returns the per-consultation subprocess timeout.
func (o *Options) OracleTimeoutDuration() time.Duration {
	if o.OracleTimeout <= 0 {
		return 2 * time.Second
	}
	return time.Duration(o.OracleTimeout) * time.Millisecond
}
