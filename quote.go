package lupo

import (
	"sort"

	"github.com/lucabol/lupo/date"
)

// Quote is the last known close price for one symbol.
type Quote struct {
	Symbol string
	Price  Quantity
	Date   date.Date
}

// PairSymbol is the synthetic symbol quoting currency against base,
// e.g. "EURUSD=X".
func PairSymbol(currency, base string) string { return currency + base + "=X" }

// Snapshot is the last fetched price per symbol. It has no history: a
// refresh fully replaces the previous snapshot on disk.
type Snapshot struct {
	quotes map[string]Quote
}

// NewSnapshot creates an empty snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{quotes: make(map[string]Quote)}
}

// Get returns the quote stored for symbol.
func (s *Snapshot) Get(symbol string) (Quote, bool) {
	q, ok := s.quotes[symbol]
	return q, ok
}

// Put stores a quote, replacing any previous one for the same symbol.
func (s *Snapshot) Put(q Quote) { s.quotes[q.Symbol] = q }

// Len returns the number of quoted symbols.
func (s *Snapshot) Len() int { return len(s.quotes) }

// Symbols returns the quoted symbols in alphabetical order.
func (s *Snapshot) Symbols() []string {
	symbols := make([]string, 0, len(s.quotes))
	for symbol := range s.quotes {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	return symbols
}
