package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
	"github.com/lucabol/lupo"
)

type updateCmd struct {
	limit int
}

func (*updateCmd) Name() string     { return "update" }
func (*updateCmd) Synopsis() string { return "refresh the price snapshot from the quote source" }
func (*updateCmd) Usage() string {
	return `update

  Fetches the latest quote for every open position and currency pair, and
  replaces the price snapshot. Symbols that fail to fetch are skipped.
`
}

func (c *updateCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.limit, "l", lupo.DefaultLimit, "max concurrent quote retrievals")
}

func (c *updateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := openStore()
	if err != nil {
		return fail(err)
	}
	reg, err := s.Instruments()
	if err != nil {
		return fail(err)
	}
	book, err := lupo.Aggregate(s, reg, lupo.BaseCurrency)
	if err != nil {
		return fail(err)
	}

	symbols := lupo.RefreshSymbols(book, reg, book.Base())
	fetcher := lupo.Fetcher{
		Source: lupo.NewYahooSource(lupo.DefaultTimeout),
		Limit:  c.limit,
		Log:    Logger(),
	}
	snap, err := fetcher.Refresh(ctx, symbols, book.Base())
	if err != nil {
		return fail(err)
	}
	if err := s.WriteQuotes(snap); err != nil {
		return fail(err)
	}
	fmt.Printf("Saved %d quotes for %d symbols.\n", snap.Len(), len(symbols))
	return subcommands.ExitSuccess
}
