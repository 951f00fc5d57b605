package lupo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lucabol/lupo/date"
	"github.com/rs/zerolog"
)

// fakeSource serves canned quotes and fails for symbols it does not know.
type fakeSource struct {
	quotes map[string]Quote
}

func (f *fakeSource) Latest(_ context.Context, symbol string) (Quote, error) {
	q, ok := f.quotes[symbol]
	if !ok {
		return Quote{}, fmt.Errorf("%w for %s", ErrNoQuote, symbol)
	}
	return q, nil
}

func TestRefreshIsolatesFailures(t *testing.T) {
	// Three symbols, one of which fails: the snapshot must hold quotes for
	// exactly the two that succeeded plus the base identity quote.
	src := &fakeSource{quotes: map[string]Quote{
		"AAA":      {Symbol: "AAA", Price: Q(50), Date: date.Today()},
		"EURUSD=X": {Symbol: "EURUSD=X", Price: Q(1.1), Date: date.Today()},
	}}
	f := &Fetcher{Source: src, Log: zerolog.Nop()}

	snap, err := f.Refresh(context.Background(), []string{"AAA", "GONE", "EURUSD=X"}, BaseCurrency)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if snap.Len() != 3 {
		t.Fatalf("Len() = %d, want 3 (2 quotes + identity)", snap.Len())
	}
	if _, ok := snap.Get("GONE"); ok {
		t.Error("failed symbol present in snapshot")
	}
	id, ok := snap.Get("USDUSD=X")
	if !ok || !id.Price.Equal(Q(1)) {
		t.Errorf("identity quote = %+v, want price 1", id)
	}
}

func TestRefreshEmptySymbolList(t *testing.T) {
	f := &Fetcher{Source: &fakeSource{}, Log: zerolog.Nop()}
	snap, err := f.Refresh(context.Background(), nil, BaseCurrency)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	// Even an empty refresh carries the identity quote.
	if snap.Len() != 1 {
		t.Errorf("Len() = %d, want 1", snap.Len())
	}
}

func TestRefreshSymbols(t *testing.T) {
	reg := testRegistry()
	b := NewBook(reg, BaseCurrency)
	apply(t, b,
		trade(TransferIn, "IB", "AAA", 10, 0, 0, 1, 1),
		// BBB stays closed: its ticker must not be fetched.
	)
	got := RefreshSymbols(b, reg, BaseCurrency)
	want := []string{"AAA", "EURUSD=X"}
	if len(got) != len(want) {
		t.Fatalf("symbols = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("symbols = %v, want %v", got, want)
		}
	}
}

// chartJSON is the shape of the quote source's chart endpoint.
func chartJSON(ts int64, close float64) string {
	return fmt.Sprintf(`{"chart":{"result":[{"timestamp":[%d,%d],"indicators":{"quote":[{"close":[%g,%g]}]}}],"error":null}}`,
		ts-86400, ts, close-1, close)
}

func TestYahooSourceLatest(t *testing.T) {
	ts := time.Date(2024, 6, 10, 21, 0, 0, 0, time.UTC).Unix()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v8/finance/chart/AAA":
			fmt.Fprint(w, chartJSON(ts, 50.5))
		case "/v8/finance/chart/EMPTY":
			fmt.Fprint(w, `{"chart":{"result":[{"timestamp":[],"indicators":{"quote":[{"close":[]}]}}],"error":null}}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	src := &YahooSource{BaseURL: srv.URL, Client: srv.Client()}

	q, err := src.Latest(context.Background(), "AAA")
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if !q.Price.Equal(Q(50.5)) {
		t.Errorf("price = %v, want 50.5", q.Price)
	}
	if q.Date != date.MustParse("2024/06/10") {
		t.Errorf("date = %v, want 2024/06/10", q.Date)
	}

	if _, err := src.Latest(context.Background(), "EMPTY"); !errors.Is(err, ErrNoQuote) {
		t.Errorf("empty prices err = %v, want ErrNoQuote", err)
	}

	if _, err := src.Latest(context.Background(), "MISSING"); err == nil {
		t.Error("404 from the source did not error")
	}
}
