// Package cmd implements the CLI application to manage a personal ledger.
package cmd

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
	"github.com/lucabol/lupo"
	"github.com/rs/zerolog"
)

// Commands lists every subcommand the application registers.
var Commands = []subcommands.Command{
	&initCmd{},
	&checkCmd{},
	&stocksCmd{},
	&tradesCmd{},
	&portCmd{},
	&reportCmd{},
	&totalCmd{},
	&updateCmd{},
	&topicCmd{},
}

// As a CLI application it has a very short lived lifecycle, so it is ok to
// use global variables for the application flags.

var (
	homeDir = flag.String("D", defaultHome(), "directory holding the ledger files")
	verbose = flag.Bool("v", false, "log debug details")
	quiet   = flag.Bool("q", false, "log errors only")
)

func defaultHome() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "lupo"
	}
	return filepath.Join(dir, "lupo")
}

// Logger builds the application logger honoring -v and -q. -q wins.
func Logger() zerolog.Logger {
	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	if *quiet {
		level = zerolog.ErrorLevel
	}
	w := zerolog.ConsoleWriter{Out: os.Stderr}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// openStore opens the ledger directory selected by -D.
func openStore() (*lupo.Store, error) {
	return lupo.Open(*homeDir, Logger())
}

// loadBook opens the store and folds all trades into a book of positions
// valued in the base currency.
func loadBook() (*lupo.Store, *lupo.Book, error) {
	s, err := openStore()
	if err != nil {
		return nil, nil, err
	}
	reg, err := s.Instruments()
	if err != nil {
		return nil, nil, err
	}
	book, err := lupo.Aggregate(s, reg, lupo.BaseCurrency)
	if err != nil {
		return nil, nil, err
	}
	return s, book, nil
}

// printMarkdown renders markdown to the terminal, falling back to the raw
// text when rendering fails (e.g. output is not a terminal).
func printMarkdown(md string) {
	out, err := glamour.Render(md, "auto")
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}

func fail(err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return subcommands.ExitFailure
}
