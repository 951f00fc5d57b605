package lupo

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/lucabol/lupo/date"
	"github.com/rs/zerolog"
)

// File names inside the store home directory.
const (
	TradesFile = "trades.tsv"
	StocksFile = "stocks.tsv"
	PricesFile = "prices.tsv"
)

const (
	tradesHeader = "Account\tDate\tType\tStock\tUnits\tPrice\tFees\tSplit\tCurrency"
	stocksHeader = "Name\tAsset\tGroup\tTags\tRiskyness\tTicker\tTradedCurrency\tCurrencyUnderlying"
	pricesHeader = "ticker\tprice\tdate"
)

// Store reads and writes the three source-of-truth tables of a portfolio:
// the instrument registry, the trade ledger and the price snapshot. All
// files are tab-separated UTF-8 with '#' comment lines.
type Store struct {
	home string
	log  zerolog.Logger
}

// Open opens an existing store home directory.
func Open(home string, log zerolog.Logger) (*Store, error) {
	info, err := os.Stat(home)
	if err != nil {
		return nil, fmt.Errorf("cannot find home directory %q: %w", home, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("home %q is not a directory", home)
	}
	return &Store{home: home, log: log.With().Str("component", "store").Logger()}, nil
}

// Create initializes a store home directory, seeding the registry and
// ledger files with their header rows. With force it wipes any existing
// directory first.
func Create(home string, force bool, log zerolog.Logger) (*Store, error) {
	if force {
		if info, err := os.Stat(home); err == nil && info.IsDir() {
			if err := os.RemoveAll(home); err != nil {
				return nil, fmt.Errorf("could not remove portfolio directory: %w", err)
			}
		}
	}
	if err := os.MkdirAll(home, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create portfolio directory at %q: %w", home, err)
	}

	s := &Store{home: home, log: log.With().Str("component", "store").Logger()}
	if err := s.seed(StocksFile, stocksHeader); err != nil {
		return nil, err
	}
	if err := s.seed(TradesFile, tradesHeader); err != nil {
		return nil, err
	}
	return s, nil
}

// seed creates a file with its header row unless it already exists.
func (s *Store) seed(name, header string) error {
	path := s.path(name)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			s.log.Warn().Str("file", path).Msg("file already exists")
			return nil
		}
		return fmt.Errorf("cannot create file %q: %w", path, err)
	}
	defer f.Close()
	if _, err := fmt.Fprintln(f, header); err != nil {
		return fmt.Errorf("cannot write to file %q: %w", path, err)
	}
	s.log.Info().Str("file", path).Msg("file created")
	return nil
}

// Home returns the store home directory.
func (s *Store) Home() string { return s.home }

func (s *Store) path(name string) string { return filepath.Join(s.home, name) }

// tsvReader configures a reader for the store's tab-separated dialect.
func tsvReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.Comment = '#'
	cr.FieldsPerRecord = -1 // ragged trailing columns are tolerated
	cr.LazyQuotes = true
	// TrimLeadingSpace is left off: with a tab delimiter it swallows empty
	// fields. Fields are trimmed individually instead.
	return cr
}

// header maps lower-cased column names to their index.
type header map[string]int

func readHeader(cr *csv.Reader, file string, columns ...string) (header, error) {
	rec, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: cannot read header row: %v", ErrParse, file, err)
	}
	h := make(header, len(rec))
	for i, name := range rec {
		h[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, col := range columns {
		if _, ok := h[col]; !ok {
			return nil, fmt.Errorf("%w: %s: missing column %q in header", ErrParse, file, col)
		}
	}
	return h, nil
}

// field returns the trimmed value of a named column, or "" when the row is
// too short to hold it.
func (h header) field(rec []string, name string) string {
	i, ok := h[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

// qty parses a decimal field, substituting def when the field is blank.
func qty(s string, def Quantity) (Quantity, error) {
	if s == "" {
		return def, nil
	}
	return ParseQuantity(s)
}

// Instruments loads the registry, keyed by instrument name.
func (s *Store) Instruments() (*Registry, error) {
	f, err := os.Open(s.path(StocksFile))
	if err != nil {
		return nil, fmt.Errorf("cannot open stocks file: %w", err)
	}
	defer f.Close()

	cr := tsvReader(f)
	h, err := readHeader(cr, StocksFile, "name")
	if err != nil {
		return nil, err
	}

	reg := NewRegistry()
	for row := 1; ; row++ {
		rec, err := cr.Read()
		if err == io.EOF {
			return reg, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s row %d: %v", ErrParse, StocksFile, row, err)
		}
		inst := Instrument{
			Name:      h.field(rec, "name"),
			Asset:     h.field(rec, "asset"),
			Group:     h.field(rec, "group"),
			Tags:      h.field(rec, "tags"),
			Riskyness: h.field(rec, "riskyness"),
			Ticker:    h.field(rec, "ticker"),
			Traded:    h.field(rec, "tradedcurrency"),
			Currency:  h.field(rec, "currencyunderlying"),
		}
		if inst.Name == "" {
			return nil, fmt.Errorf("%w: %s row %d: empty instrument name", ErrParse, StocksFile, row)
		}
		if !reg.Add(inst) {
			return nil, fmt.Errorf("%w: %s row %d: duplicate instrument %q", ErrParse, StocksFile, row, inst.Name)
		}
	}
}

// FoldTrades streams the trade ledger in file order, invoking fn on each
// event. The fold stops at the first error returned by fn.
func (s *Store) FoldTrades(fn func(Trade) error) error {
	f, err := os.Open(s.path(TradesFile))
	if err != nil {
		return fmt.Errorf("cannot open trades file: %w", err)
	}
	defer f.Close()

	cr := tsvReader(f)
	h, err := readHeader(cr, TradesFile, "account", "date", "type", "stock", "units")
	if err != nil {
		return err
	}

	one := Q(1)
	for row := 1; ; row++ {
		rec, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %s row %d: %v", ErrParse, TradesFile, row, err)
		}
		if len(rec) == 1 && rec[0] == "" {
			continue // blank line
		}

		var t Trade
		t.Account = h.field(rec, "account")
		t.Stock = h.field(rec, "stock")
		if t.Date, err = date.Parse(h.field(rec, "date")); err != nil {
			return fmt.Errorf("%w: %s row %d: %v", ErrParse, TradesFile, row, err)
		}
		if t.Type, err = ParseTradeType(h.field(rec, "type")); err != nil {
			return fmt.Errorf("%w: %s row %d: %v", ErrParse, TradesFile, row, err)
		}
		if t.Units, err = ParseQuantity(h.field(rec, "units")); err != nil {
			return fmt.Errorf("%w: %s row %d: bad units: %v", ErrParse, TradesFile, row, err)
		}
		if t.Price, err = qty(h.field(rec, "price"), Q(0)); err != nil {
			return fmt.Errorf("%w: %s row %d: bad price: %v", ErrParse, TradesFile, row, err)
		}
		if t.Fees, err = qty(h.field(rec, "fees"), Q(0)); err != nil {
			return fmt.Errorf("%w: %s row %d: bad fees: %v", ErrParse, TradesFile, row, err)
		}
		if t.Ratio, err = qty(h.field(rec, "split"), one); err != nil {
			return fmt.Errorf("%w: %s row %d: bad split: %v", ErrParse, TradesFile, row, err)
		}
		if t.Currency, err = qty(h.field(rec, "currency"), one); err != nil {
			return fmt.Errorf("%w: %s row %d: bad currency: %v", ErrParse, TradesFile, row, err)
		}

		if err := fn(t); err != nil {
			return fmt.Errorf("%s row %d: %w", TradesFile, row, err)
		}
	}
}

// Trades returns the ledger events whose instrument name contains substr,
// case-insensitively. An empty substr returns all events.
func (s *Store) Trades(substr string) ([]Trade, error) {
	substr = strings.ToLower(substr)
	var trades []Trade
	err := s.FoldTrades(func(t Trade) error {
		if strings.Contains(strings.ToLower(t.Stock), substr) {
			trades = append(trades, t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return trades, nil
}

// Check parses both source files fully and returns the number of trade
// events and registered instruments.
func (s *Store) Check() (trades, instruments int, err error) {
	reg, err := s.Instruments()
	if err != nil {
		return 0, 0, err
	}
	err = s.FoldTrades(func(Trade) error {
		trades++
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return trades, reg.Len(), nil
}

// Quotes loads the price snapshot. A missing snapshot file is not an
// error: valuation then runs on an empty snapshot.
func (s *Store) Quotes() (*Snapshot, error) {
	f, err := os.Open(s.path(PricesFile))
	if errors.Is(err, fs.ErrNotExist) {
		s.log.Warn().Str("file", s.path(PricesFile)).Msg("no price snapshot yet, run update")
		return NewSnapshot(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot open prices file: %w", err)
	}
	defer f.Close()

	cr := tsvReader(f)
	h, err := readHeader(cr, PricesFile, "ticker", "price", "date")
	if err != nil {
		return nil, err
	}

	snap := NewSnapshot()
	for row := 1; ; row++ {
		rec, err := cr.Read()
		if err == io.EOF {
			return snap, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s row %d: %v", ErrParse, PricesFile, row, err)
		}
		var q Quote
		q.Symbol = h.field(rec, "ticker")
		if q.Price, err = ParseQuantity(h.field(rec, "price")); err != nil {
			return nil, fmt.Errorf("%w: %s row %d: bad price: %v", ErrParse, PricesFile, row, err)
		}
		if q.Date, err = date.ParseSnapshot(h.field(rec, "date")); err != nil {
			return nil, fmt.Errorf("%w: %s row %d: %v", ErrParse, PricesFile, row, err)
		}
		snap.Put(q)
	}
}

// WriteQuotes replaces the price snapshot on disk. The snapshot is written
// to a fresh file and then renamed over the old one, so a crash mid-write
// never leaves a truncated snapshot behind.
func (s *Store) WriteQuotes(snap *Snapshot) error {
	tmp, err := os.CreateTemp(s.home, PricesFile+".*")
	if err != nil {
		return fmt.Errorf("cannot create snapshot temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	fmt.Fprintln(tmp, pricesHeader)
	for _, symbol := range snap.Symbols() {
		q, _ := snap.Get(symbol)
		fmt.Fprintf(tmp, "%s\t%s\t%s\n", q.Symbol, q.Price, q.Date.Snapshot())
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("cannot flush snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(PricesFile)); err != nil {
		return fmt.Errorf("cannot replace snapshot: %w", err)
	}
	return nil
}
