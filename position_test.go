package lupo

import (
	"errors"
	"strings"
	"testing"

	"github.com/lucabol/lupo/date"
)

// testRegistry returns a registry with two quoted stocks and two cash buckets.
func testRegistry() *Registry {
	reg := NewRegistry()
	reg.Add(Instrument{Name: "AAA", Asset: "Stock", Group: "Tech", Riskyness: "H", Ticker: "AAA", Traded: "USD", Currency: "USD"})
	reg.Add(Instrument{Name: "BBB", Asset: "Stock", Group: "Energy", Riskyness: "M", Ticker: "BBB.DE", Traded: "EUR", Currency: "EUR"})
	reg.Add(Instrument{Name: "CashIB", Asset: "Cash", Group: "Cash", Tags: "cash", Riskyness: "L", Traded: "USD", Currency: "USD"})
	reg.Add(Instrument{Name: "CashUB", Asset: "Cash", Group: "Cash", Tags: "cash", Riskyness: "L", Traded: "USD", Currency: "USD"})
	return reg
}

func trade(typ TradeType, account, stock string, units, price, fees, ratio, currency float64) Trade {
	return Trade{
		Account:  account,
		Date:     date.MustParse("2020/01/02"),
		Type:     typ,
		Stock:    stock,
		Units:    Q(units),
		Price:    Q(price),
		Fees:     Q(fees),
		Ratio:    Q(ratio),
		Currency: Q(currency),
	}
}

func apply(t *testing.T, b *Book, trades ...Trade) {
	t.Helper()
	for _, tr := range trades {
		if err := b.Apply(tr); err != nil {
			t.Fatalf("Apply(%+v): %v", tr, err)
		}
	}
}

func TestApplyEffects(t *testing.T) {
	// One case per trade kind, checking the target and linked cash deltas.
	tests := []struct {
		name  string
		trade Trade
		check func(t *testing.T, b *Book)
	}{
		{
			name:  "buy moves units in and cash out",
			trade: trade(Buy, "IB", "AAA", 10, 5, 1, 1, 1),
			check: func(t *testing.T, b *Book) {
				aaa, _ := b.Get("AAA")
				if !aaa.Units.Equal(Q(10)) || !aaa.Cost.Equal(M(50, "USD")) || !aaa.Fees.Equal(M(1, "USD")) {
					t.Errorf("AAA = units %v cost %v fees %v", aaa.Units, aaa.Cost, aaa.Fees)
				}
				cash, _ := b.Get("CashIB")
				if !cash.Units.Equal(Q(-50)) || !cash.Cost.Equal(M(50, "USD")) || !cash.Fees.Equal(M(1, "USD")) {
					t.Errorf("CashIB = units %v cost %v fees %v", cash.Units, cash.Cost, cash.Fees)
				}
			},
		},
		{
			name:  "sell moves units out and cash in",
			trade: trade(Sell, "IB", "AAA", 4, 6, 1, 1, 1),
			check: func(t *testing.T, b *Book) {
				aaa, _ := b.Get("AAA")
				if !aaa.Units.Equal(Q(-4)) || !aaa.Revenue.Equal(M(24, "USD")) || !aaa.Fees.Equal(M(1, "USD")) {
					t.Errorf("AAA = units %v revenue %v fees %v", aaa.Units, aaa.Revenue, aaa.Fees)
				}
				cash, _ := b.Get("CashIB")
				if !cash.Units.Equal(Q(24)) || !cash.Revenue.Equal(M(24, "USD")) {
					t.Errorf("CashIB = units %v revenue %v", cash.Units, cash.Revenue)
				}
			},
		},
		{
			name:  "dividend credits cash without touching target units",
			trade: trade(Dividend, "IB", "AAA", 1, 2, 0, 1, 1),
			check: func(t *testing.T, b *Book) {
				aaa, _ := b.Get("AAA")
				if !aaa.Units.IsZero() || !aaa.Divs.Equal(M(2, "USD")) {
					t.Errorf("AAA = units %v divs %v", aaa.Units, aaa.Divs)
				}
				cash, _ := b.Get("CashIB")
				if !cash.Units.Equal(Q(2)) || !cash.Divs.Equal(M(2, "USD")) {
					t.Errorf("CashIB = units %v divs %v", cash.Units, cash.Divs)
				}
			},
		},
		{
			name:  "transfer in adds units and revenue, no cash",
			trade: trade(TransferIn, "IB", "AAA", 100, 3, 0, 1, 1),
			check: func(t *testing.T, b *Book) {
				aaa, _ := b.Get("AAA")
				if !aaa.Units.Equal(Q(100)) || !aaa.Revenue.Equal(M(300, "USD")) {
					t.Errorf("AAA = units %v revenue %v", aaa.Units, aaa.Revenue)
				}
				cash, _ := b.Get("CashIB")
				if !cash.Units.IsZero() {
					t.Errorf("CashIB units = %v, want 0", cash.Units)
				}
			},
		},
		{
			name:  "transfer out removes units and adds cost, no cash",
			trade: trade(TransferOut, "IB", "AAA", 100, 3, 0, 1, 1),
			check: func(t *testing.T, b *Book) {
				aaa, _ := b.Get("AAA")
				if !aaa.Units.Equal(Q(-100)) || !aaa.Cost.Equal(M(300, "USD")) {
					t.Errorf("AAA = units %v cost %v", aaa.Units, aaa.Cost)
				}
				cash, _ := b.Get("CashIB")
				if !cash.Units.IsZero() {
					t.Errorf("CashIB units = %v, want 0", cash.Units)
				}
			},
		},
		{
			name:  "currency multiplier scales amounts and fees",
			trade: trade(Buy, "IB", "BBB", 10, 5, 2, 1, 1.2),
			check: func(t *testing.T, b *Book) {
				bbb, _ := b.Get("BBB")
				if !bbb.Cost.Equal(M(60, "USD")) || !bbb.Fees.Equal(M(2.4, "USD")) {
					t.Errorf("BBB = cost %v fees %v", bbb.Cost, bbb.Fees)
				}
				cash, _ := b.Get("CashIB")
				if !cash.Units.Equal(Q(-60)) || !cash.Fees.Equal(M(2.4, "USD")) {
					t.Errorf("CashIB = units %v fees %v", cash.Units, cash.Fees)
				}
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := NewBook(testRegistry(), BaseCurrency)
			apply(t, b, tc.trade)
			tc.check(t, b)
		})
	}
}

func TestBuySellRoundTrip(t *testing.T) {
	b := NewBook(testRegistry(), BaseCurrency)
	apply(t, b,
		trade(TransferIn, "IB", "AAA", 7, 0, 0, 1, 1),
		trade(Buy, "IB", "AAA", 10, 5, 1, 1, 1),
		trade(Sell, "IB", "AAA", 10, 5, 1, 1, 1),
	)
	aaa, _ := b.Get("AAA")
	if !aaa.Units.Equal(Q(7)) {
		t.Errorf("units after buy+sell round trip = %v, want 7", aaa.Units)
	}
	// Cash also nets out: -50 on the buy, +50 on the sell.
	cash, _ := b.Get("CashIB")
	if !cash.Units.IsZero() {
		t.Errorf("cash units after round trip = %v, want 0", cash.Units)
	}
}

func TestSplitComposition(t *testing.T) {
	one := NewBook(testRegistry(), BaseCurrency)
	two := NewBook(testRegistry(), BaseCurrency)
	seed := trade(TransferIn, "IB", "AAA", 100, 0, 0, 1, 1)
	apply(t, one, seed, trade(Split, "IB", "AAA", 0, 0, 0, 6, 1))
	apply(t, two, seed,
		trade(Split, "IB", "AAA", 0, 0, 0, 2, 1),
		trade(Split, "IB", "AAA", 0, 0, 0, 3, 1),
	)
	a, _ := one.Get("AAA")
	b, _ := two.Get("AAA")
	if !a.Units.Equal(b.Units) {
		t.Errorf("split(6) = %v units, split(2);split(3) = %v units", a.Units, b.Units)
	}
	if !a.Units.Equal(Q(600)) {
		t.Errorf("units = %v, want 600", a.Units)
	}
}

func TestCashLinkageDoubleEntry(t *testing.T) {
	// For Buy the cash delta is the negative of the traded amount; for
	// Sell and Div it is positive.
	tests := []struct {
		name     string
		trade    Trade
		cashSign int
	}{
		{"buy", trade(Buy, "IB", "AAA", 10, 5, 0, 1, 1), -1},
		{"sell", trade(Sell, "IB", "AAA", 10, 5, 0, 1, 1), +1},
		{"dividend", trade(Dividend, "IB", "AAA", 10, 5, 0, 1, 1), +1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := NewBook(testRegistry(), BaseCurrency)
			apply(t, b, tc.trade)
			cash, _ := b.Get("CashIB")
			want := tc.trade.Amount()
			if tc.cashSign < 0 {
				want = want.Neg()
			}
			if !cash.Units.Equal(want) {
				t.Errorf("cash delta = %v, want %v", cash.Units, want)
			}
		})
	}
}

func TestApplyCashOnCashTrade(t *testing.T) {
	// A trade on a cash bucket itself has no linkage and must not fail
	// even when no cash account matches the trade account.
	b := NewBook(testRegistry(), BaseCurrency)
	apply(t, b, trade(TransferIn, "IB", "CashIB", 1000, 1, 0, 1, 1))
	cash, _ := b.Get("CashIB")
	if !cash.Units.Equal(Q(1000)) || !cash.Revenue.Equal(M(1000, "USD")) {
		t.Errorf("CashIB = units %v revenue %v, want 1000/1000", cash.Units, cash.Revenue)
	}
}

func TestApplyErrors(t *testing.T) {
	b := NewBook(testRegistry(), BaseCurrency)

	err := b.Apply(trade(Buy, "IB", "ZZZ", 1, 1, 0, 1, 1))
	if !errors.Is(err, ErrUnknownInstrument) {
		t.Errorf("unknown stock err = %v, want ErrUnknownInstrument", err)
	}

	err = b.Apply(trade(Buy, "NOPE", "AAA", 1, 1, 0, 1, 1))
	if !errors.Is(err, ErrUnknownCashAccount) {
		t.Errorf("unknown account err = %v, want ErrUnknownCashAccount", err)
	}

	// Split never needs the cash account.
	if err := b.Apply(trade(Split, "NOPE", "AAA", 0, 0, 0, 2, 1)); err != nil {
		t.Errorf("split with unknown account: %v", err)
	}
}

func TestPositionsFilteringLaw(t *testing.T) {
	b := NewBook(testRegistry(), BaseCurrency)
	apply(t, b,
		trade(TransferIn, "IB", "AAA", 10, 0, 0, 1, 1),
		// BBB ends at 0.01 units: closed under the |units| <= 0.01 rule.
		trade(TransferIn, "IB", "BBB", 0.01, 0, 0, 1, 1),
	)

	all := b.Positions(true)
	active := b.Positions(false)
	if len(all) != 4 {
		t.Fatalf("all = %d positions, want 4", len(all))
	}
	if len(active) != 1 || active[0].Name != "AAA" {
		t.Fatalf("active = %+v, want just AAA", active)
	}

	// active is a subset of all, and the difference is exactly the closed set.
	inActive := make(map[string]bool)
	for _, p := range active {
		inActive[p.Name] = true
	}
	for _, p := range all {
		if inActive[p.Name] == p.IsClosed() {
			t.Errorf("%s: closed=%v retained=%v", p.Name, p.IsClosed(), inActive[p.Name])
		}
	}
}

func TestAggregateScenario(t *testing.T) {
	// Single TrIn of 1000 units at price 1 into CashIB: check() counts and
	// the resulting position.
	s := newTestStore(t, map[string]string{
		StocksFile: testStocks,
		TradesFile: "Account\tDate\tType\tStock\tUnits\tPrice\tFees\tSplit\tCurrency\nIB\t2020/01/02\tTrIn\tCashIB\t1000\t1\t\t1\t1\n",
	})
	trades, _, err := s.Check()
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if trades != 1 {
		t.Errorf("Check trades = %d, want 1", trades)
	}

	reg, err := s.Instruments()
	if err != nil {
		t.Fatalf("Instruments: %v", err)
	}
	book, err := Aggregate(s, reg, BaseCurrency)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	cash, _ := book.Get("CashIB")
	if !cash.Units.Equal(Q(1000)) || !cash.Revenue.Equal(M(1000, "USD")) {
		t.Errorf("CashIB = units %v revenue %v, want 1000/1000", cash.Units, cash.Revenue)
	}
}

func TestAggregateUnknownInstrumentNamesRow(t *testing.T) {
	s := newTestStore(t, map[string]string{
		StocksFile: testStocks,
		TradesFile: "Account\tDate\tType\tStock\tUnits\nIB\t2020/01/02\tBuy\tZZZ\t10\n",
	})
	reg, err := s.Instruments()
	if err != nil {
		t.Fatalf("Instruments: %v", err)
	}
	_, err = Aggregate(s, reg, BaseCurrency)
	if !errors.Is(err, ErrUnknownInstrument) {
		t.Fatalf("err = %v, want ErrUnknownInstrument", err)
	}
	if want := "row 1"; !strings.Contains(err.Error(), want) {
		t.Errorf("err = %q, want it to name %q", err, want)
	}
}
