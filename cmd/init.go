package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
	"github.com/lucabol/lupo"
)

type initCmd struct {
	force bool
}

func (*initCmd) Name() string     { return "init" }
func (*initCmd) Synopsis() string { return "create a new ledger directory" }
func (*initCmd) Usage() string {
	return `init [-f]

  Creates the ledger directory and seeds empty stocks and trades files.
`
}

func (c *initCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.force, "f", false, "wipe existing ledger files first")
}

func (c *initCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := lupo.Create(*homeDir, c.force, Logger())
	if err != nil {
		return fail(err)
	}
	fmt.Printf("Ledger initialized in %s\n", s.Home())
	return subcommands.ExitSuccess
}
