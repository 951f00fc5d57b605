package cmd

import (
	"context"
	"flag"

	"github.com/google/subcommands"
	"github.com/lucabol/lupo/renderer"
)

type tradesCmd struct{}

func (*tradesCmd) Name() string     { return "trades" }
func (*tradesCmd) Synopsis() string { return "list the recorded trade events" }
func (*tradesCmd) Usage() string {
	return `trades [substr]

  Lists trade events in file order, optionally filtered by a case-insensitive
  substring of the instrument name.
`
}

func (c *tradesCmd) SetFlags(f *flag.FlagSet) {}

func (c *tradesCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := openStore()
	if err != nil {
		return fail(err)
	}
	trades, err := s.Trades(f.Arg(0))
	if err != nil {
		return fail(err)
	}
	printMarkdown(renderer.Trades(trades))
	return subcommands.ExitSuccess
}
