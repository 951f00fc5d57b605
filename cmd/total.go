package cmd

import (
	"context"
	"flag"

	"github.com/google/subcommands"
	"github.com/lucabol/lupo"
	"github.com/lucabol/lupo/renderer"
)

type totalCmd struct{}

func (*totalCmd) Name() string     { return "total" }
func (*totalCmd) Synopsis() string { return "display the total portfolio value" }
func (*totalCmd) Usage() string {
	return `total

  Values the open positions and displays the sum in the base currency.
`
}

func (c *totalCmd) SetFlags(f *flag.FlagSet) {}

func (c *totalCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, book, err := loadBook()
	if err != nil {
		return fail(err)
	}
	snap, err := s.Quotes()
	if err != nil {
		return fail(err)
	}

	positions := book.Positions(false)
	lupo.NewValuer(snap, book.Base()).Value(positions)
	printMarkdown(renderer.Total(lupo.Total(positions, book.Base())))
	return subcommands.ExitSuccess
}
