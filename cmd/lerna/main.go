// Command lerna is a concurrent, hash-consed first-order refutation
// prover reading TPTP problems and printing an SZS result envelope, per
// spec.md §6's CLI surface.
//
// Grounded on go-tony/cmd/o/main.go's minimal entry point:
// cli.MainContext drives the single top-level command built by
// LernaCommand.
package main

import (
	"context"

	"github.com/scott-cotton/cli"
)

func main() {
	cli.MainContext(context.Background(), LernaCommand())
}
