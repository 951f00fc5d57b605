package lupo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/lucabol/lupo/date"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// QuoteSource retrieves the most recent close price for one symbol.
type QuoteSource interface {
	Latest(ctx context.Context, symbol string) (Quote, error)
}

// YahooSource is a QuoteSource over the Yahoo Finance chart API.
type YahooSource struct {
	// BaseURL overrides the endpoint, for tests. Empty means the real one.
	BaseURL string
	Client  *http.Client
}

const yahooBaseURL = "https://query1.finance.yahoo.com"

// NewYahooSource returns a source with a per-call timeout and a daily
// disk cache, so repeated refreshes within a day do not re-hit Yahoo.
func NewYahooSource(timeout time.Duration) *YahooSource {
	return &YahooSource{Client: dailyClient(timeout)}
}

func (y *YahooSource) base() string {
	if y.BaseURL != "" {
		return y.BaseURL
	}
	return yahooBaseURL
}

// Latest returns the last daily close of the past few days for symbol.
func (y *YahooSource) Latest(ctx context.Context, symbol string) (Quote, error) {
	addr := fmt.Sprintf("%s/v8/finance/chart/%s?range=5d&interval=1d", y.base(), url.PathEscape(symbol))

	var jobj any
	if err := jwget(ctx, y.Client, addr, &jobj); err != nil {
		return Quote{}, fmt.Errorf("error retrieving prices for %s: %w", symbol, err)
	}

	price, err := jpFloat(jobj, "$.chart.result[0].indicators.quote[0].close[-1:]")
	if err != nil {
		return Quote{}, fmt.Errorf("%w for %s: %v", ErrNoQuote, symbol, err)
	}
	ts, err := jpFloat(jobj, "$.chart.result[0].timestamp[-1:]")
	if err != nil {
		return Quote{}, fmt.Errorf("%w for %s: %v", ErrNoQuote, symbol, err)
	}

	on := date.New(time.Unix(int64(ts), 0).UTC().Date())
	return Quote{Symbol: symbol, Price: Q(price), Date: on}, nil
}

// jpFloat extracts a float from a JSON document by jsonpath.
func jpFloat(jobj any, path string) (float64, error) {
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return 0, fmt.Errorf("error evaluating %q: %w", path, err)
	}
	// jsonpath slices come back as a list; keep the first element if any.
	if jlist, ok := jval.([]any); ok {
		if len(jlist) == 0 {
			return 0, fmt.Errorf("empty result for %q", path)
		}
		jval = jlist[0]
	}
	val, ok := jval.(float64)
	if !ok {
		return 0, fmt.Errorf("result for %q is not a number: %v", path, jval)
	}
	return val, nil
}

// Fetcher refreshes the price snapshot: one independent retrieval per
// symbol, all launched together and joined, no retrieval cancelled by
// another's failure. Failed symbols are logged and skipped; the resulting
// partial snapshot is valid.
type Fetcher struct {
	Source  QuoteSource
	Limit   int           // max concurrent retrievals, 0 means DefaultLimit
	Timeout time.Duration // per retrieval, 0 means DefaultTimeout
	Log     zerolog.Logger
}

const (
	// DefaultLimit caps the fan-out so very large instrument sets do not
	// open one connection per symbol at once.
	DefaultLimit = 8
	// DefaultTimeout bounds each retrieval so one stuck call cannot stall
	// the whole refresh.
	DefaultTimeout = 30 * time.Second
)

// RefreshSymbols lists what a refresh must quote: the tickers of the active
// positions plus one pair symbol per foreign currency in the registry.
func RefreshSymbols(book *Book, reg *Registry, base string) []string {
	var symbols []string
	for _, p := range book.Positions(false) {
		if p.Ticker != "" {
			symbols = append(symbols, p.Ticker)
		}
	}
	for _, cur := range reg.Currencies(base) {
		symbols = append(symbols, PairSymbol(cur, base))
	}
	return symbols
}

// Refresh retrieves a quote for every symbol and returns the new snapshot,
// always including the base-currency identity quote at price 1. Only
// symbols that answered are present; per-symbol failures are logged.
func (f *Fetcher) Refresh(ctx context.Context, symbols []string, base string) (*Snapshot, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	timeout := f.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	type outcome struct {
		quote Quote
		err   error
	}
	results := make([]outcome, len(symbols))

	g := new(errgroup.Group)
	g.SetLimit(limit)
	for i, symbol := range symbols {
		i, symbol := i, symbol
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			q, err := f.Source.Latest(cctx, symbol)
			results[i] = outcome{quote: q, err: err}
			// A failed symbol never aborts the batch.
			return nil
		})
	}
	g.Wait()

	snap := NewSnapshot()
	for i, res := range results {
		if res.err != nil {
			f.Log.Warn().Str("symbol", symbols[i]).Err(res.err).Msg("quote retrieval failed, skipped")
			continue
		}
		f.Log.Info().Str("symbol", res.quote.Symbol).Stringer("price", res.quote.Price).Stringer("date", res.quote.Date).Msg("quoted")
		snap.Put(res.quote)
	}

	// The base currency always converts to itself at 1.
	snap.Put(Quote{Symbol: PairSymbol(base, base), Price: Q(1), Date: date.Today()})
	return snap, ctx.Err()
}
