package cmd

import (
	"context"
	"flag"

	"github.com/google/subcommands"
	"github.com/lucabol/lupo"
	"github.com/lucabol/lupo/renderer"
)

type reportCmd struct {
	by string
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "display the portfolio grouped along a dimension" }
func (*reportCmd) Usage() string {
	return `report [-by dimension]

  Values the open positions and groups the amounts along a dimension.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.by, "by", "currency", "grouping dimension: currency, asset, group, riskyness, tags")
}

func (c *reportCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	dim, err := lupo.ParseDimension(c.by)
	if err != nil {
		return fail(err)
	}

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
	groups := lupo.GroupBy(positions, dim, book.Base())
	printMarkdown(renderer.Groups(dim, groups))
	return subcommands.ExitSuccess
}
