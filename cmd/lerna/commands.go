package main

import (
	"github.com/scott-cotton/cli"

	"github.com/MichaelRawson/lerna/internal/config"
)

// LernaCommand builds the single top-level command, the way
// go-tony/cmd/o/commands.go's MainCommand builds "o": cli.StructOpts
// turns Options' tagged fields into *cli.Opt values, and WithRun defers
// to a plain function that does the actual work.
func LernaCommand() *cli.Command {
	cfg := &config.Options{}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}

	return cli.NewCommandAt(&cfg.Main, "lerna").
		WithSynopsis("lerna [opts] <problem.p>").
		WithDescription("lerna is a concurrent first-order refutation prover for TPTP problems.").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return run(cfg, cc, args)
		})
}
