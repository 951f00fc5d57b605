package cmd

import (
	"context"
	"flag"

	"github.com/google/subcommands"
	"github.com/lucabol/lupo"
	"github.com/lucabol/lupo/renderer"
)

type portCmd struct {
	all  bool
	sort string
}

func (*portCmd) Name() string     { return "port" }
func (*portCmd) Synopsis() string { return "display the valued portfolio positions" }
func (*portCmd) Usage() string {
	return `port [-a] [-s field]

  Folds all trades into positions, values them with the latest snapshot and
  displays them as a table.
`
}

func (c *portCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.all, "a", false, "include closed positions")
	f.StringVar(&c.sort, "s", "name", "sort field: name, units, cost, revenue, divs, fees, amount, pct")
}

func (c *portCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, book, err := loadBook()
	if err != nil {
		return fail(err)
	}
	snap, err := s.Quotes()
	if err != nil {
		return fail(err)
	}

	positions := book.Positions(c.all)
	lupo.NewValuer(snap, book.Base()).Value(positions)
	if err := lupo.SortPositions(positions, c.sort); err != nil {
		return fail(err)
	}
	printMarkdown(renderer.Positions(positions))
	return subcommands.ExitSuccess
}
