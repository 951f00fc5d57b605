package cmd

import (
	"context"
	"flag"
	"strings"

	"github.com/google/subcommands"
	"github.com/lucabol/lupo"
	"github.com/lucabol/lupo/renderer"
)

type stocksCmd struct{}

func (*stocksCmd) Name() string     { return "stocks" }
func (*stocksCmd) Synopsis() string { return "list the registered instruments" }
func (*stocksCmd) Usage() string {
	return `stocks [substr]

  Lists registered instruments, optionally filtered by a case-insensitive
  substring of the instrument name.
`
}

func (c *stocksCmd) SetFlags(f *flag.FlagSet) {}

func (c *stocksCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	substr := strings.ToLower(f.Arg(0))

	s, err := openStore()
	if err != nil {
		return fail(err)
	}
	reg, err := s.Instruments()
	if err != nil {
		return fail(err)
	}

	var instruments []lupo.Instrument
	for _, name := range reg.Names() {
		if substr != "" && !strings.Contains(strings.ToLower(name), substr) {
			continue
		}
		ins, _ := reg.Get(name)
		instruments = append(instruments, ins)
	}
	printMarkdown(renderer.Instruments(instruments))
	return subcommands.ExitSuccess
}
