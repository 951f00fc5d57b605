package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
)

type checkCmd struct{}

func (*checkCmd) Name() string     { return "check" }
func (*checkCmd) Synopsis() string { return "verify that the ledger files parse" }
func (*checkCmd) Usage() string {
	return `check

  Parses every row of the stocks and trades files and reports the counts.
`
}

func (c *checkCmd) SetFlags(f *flag.FlagSet) {}

func (c *checkCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := openStore()
	if err != nil {
		return fail(err)
	}
	trades, instruments, err := s.Check()
	if err != nil {
		return fail(err)
	}
	fmt.Printf("Processed %d trades over %d instruments.\n", trades, instruments)
	return subcommands.ExitSuccess
}
