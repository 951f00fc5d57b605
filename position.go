package lupo

import (
	"fmt"
	"sort"
)

// BaseCurrency is the currency all valuations are normalized to.
const BaseCurrency = "USD"

// Position is the current holding and accumulated cost/revenue/dividend/fee
// state for one instrument. Monetary fields are normalized to the book's
// base currency by the trade currency multipliers.
type Position struct {
	Instrument

	Units   Quantity
	Cost    Money
	Revenue Money
	Divs    Money
	Fees    Money

	// Filled in by valuation.
	Price  Quantity
	Amount Money
	Weight Percent
	Err    string // staleness/error annotation, e.g. "PO" or "CN"
}

// IsClosed reports whether the position's holding is near zero.
func (p *Position) IsClosed() bool { return p.Units.IsClosed() }

// Book is the aggregation of a trade ledger: one position per registered
// instrument, keyed by instrument name.
type Book struct {
	base      string
	positions map[string]*Position
}

// NewBook creates a book with one zeroed position per registered instrument.
func NewBook(reg *Registry, base string) *Book {
	b := &Book{base: base, positions: make(map[string]*Position, reg.Len())}
	for _, name := range reg.Names() {
		inst, _ := reg.Get(name)
		b.positions[name] = &Position{
			Instrument: inst,
			Cost:       M(0, base),
			Revenue:    M(0, base),
			Divs:       M(0, base),
			Fees:       M(0, base),
			Amount:     M(0, base),
			Weight:     NoData(),
		}
	}
	return b
}

// Base returns the book's base currency.
func (b *Book) Base() string { return b.base }

func (b *Book) money(q Quantity) Money { return M(q.value, b.base) }

// Apply folds one trade event into the book. The target position and, for
// non-cash instruments, the linked cash position are resolved first and
// both deltas applied together; events are processed strictly sequentially.
func (b *Book) Apply(t Trade) error {
	pos, ok := b.positions[t.Stock]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownInstrument, t.Stock)
	}

	// A non-cash trade is funded by the account's cash bucket. Split never
	// touches cash and needs no linkage.
	var cash *Position
	if !pos.IsCash() && t.Type != Split {
		cash, ok = b.positions[CashName(t.Account)]
		if !ok {
			return fmt.Errorf("%w: %q for account %q", ErrUnknownCashAccount, CashName(t.Account), t.Account)
		}
	}

	amount := t.Amount()
	value := b.money(amount)
	fee := b.money(t.FeeAmount())

	switch t.Type {
	case Dividend:
		pos.Divs = pos.Divs.Add(value)
		if cash != nil {
			cash.Units = cash.Units.Add(amount)
			cash.Divs = cash.Divs.Add(value)
		}
	case Split:
		pos.Units = pos.Units.Mul(t.Ratio)
	case TransferIn:
		pos.Units = pos.Units.Add(t.Units)
		pos.Revenue = pos.Revenue.Add(value)
	case TransferOut:
		pos.Units = pos.Units.Sub(t.Units)
		pos.Cost = pos.Cost.Add(value)
	case Buy:
		pos.Units = pos.Units.Add(t.Units)
		pos.Cost = pos.Cost.Add(value)
		pos.Fees = pos.Fees.Add(fee)
		if cash != nil {
			cash.Units = cash.Units.Sub(amount)
			cash.Cost = cash.Cost.Add(value)
			cash.Fees = cash.Fees.Add(fee)
		}
	case Sell:
		pos.Units = pos.Units.Sub(t.Units)
		pos.Revenue = pos.Revenue.Add(value)
		pos.Fees = pos.Fees.Add(fee)
		if cash != nil {
			cash.Units = cash.Units.Add(amount)
			cash.Revenue = cash.Revenue.Add(value)
			cash.Fees = cash.Fees.Add(fee)
		}
	default:
		return fmt.Errorf("%w: unhandled trade type %v", ErrParse, t.Type)
	}
	return nil
}

// Get returns the position for an instrument name.
func (b *Book) Get(name string) (*Position, bool) {
	p, ok := b.positions[name]
	return p, ok
}

// Len returns the number of positions, closed ones included.
func (b *Book) Len() int { return len(b.positions) }

// Positions returns the positions sorted by instrument name. Unless all is
// set, closed positions (|units| <= 0.01) are excluded.
func (b *Book) Positions(all bool) []*Position {
	list := make([]*Position, 0, len(b.positions))
	for _, p := range b.positions {
		if all || !p.IsClosed() {
			list = append(list, p)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

// Aggregate folds the whole trade ledger of a store into a Book.
func Aggregate(s *Store, reg *Registry, base string) (*Book, error) {
	book := NewBook(reg, base)
	if err := s.FoldTrades(book.Apply); err != nil {
		return nil, err
	}
	return book, nil
}
