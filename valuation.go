package lupo

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lucabol/lupo/date"
	"github.com/shopspring/decimal"
)

// staleDays is the age beyond which a quote or rate counts as stale.
const staleDays = 5

// Annotation flags recorded on a position during valuation.
const (
	FlagStalePrice  = "PO" // instrument quote older than staleDays
	FlagStaleRate   = "CO" // currency rate older than staleDays
	FlagMissingRate = "CN" // currency rate absent, amount left unconverted
)

// Valuer enriches positions with their latest snapshot quote, converts them
// to the base currency and computes portfolio weights. Data-quality issues
// (stale or missing quotes) are recorded as annotations on the position,
// never as errors.
type Valuer struct {
	Snapshot *Snapshot
	Base     string
	Now      date.Date
}

// NewValuer creates a valuer against a snapshot, evaluated as of today.
func NewValuer(snap *Snapshot, base string) Valuer {
	return Valuer{Snapshot: snap, Base: base, Now: date.Today()}
}

// Value fills Price, Amount, Weight and Err on every given position. The
// weight denominator is the sum over exactly the given retained set, so
// callers must filter closed positions before valuing, not after.
func (v Valuer) Value(positions []*Position) {
	for _, p := range positions {
		v.value(p)
	}

	total := decimal.Zero
	for _, p := range positions {
		total = total.Add(p.Amount.value)
	}
	if total.IsZero() {
		// No data to weigh against: report "no data" rather than NaN math.
		for _, p := range positions {
			p.Weight = NoData()
		}
		return
	}
	tf := total.InexactFloat64()
	for _, p := range positions {
		p.Weight = Percent(p.Amount.AsFloat() / tf)
	}
}

func (v Valuer) value(p *Position) {
	p.Err = ""

	// Instrument price: cash equivalents always price at 1.0.
	switch {
	case p.IsCashEquivalent():
		p.Price = Q(1)
	case p.Ticker != "":
		if q, ok := v.Snapshot.Get(p.Ticker); ok {
			p.Price = q.Price
			if q.Date.OlderThan(staleDays, v.Now) {
				p.flag(FlagStalePrice)
			}
		}
	}

	// Currency conversion to base; a missing rate degrades to the
	// unconverted amount instead of failing.
	value := p.Price.Mul(p.Units)
	if rate, ok := v.Snapshot.Get(PairSymbol(p.Currency, v.Base)); ok {
		p.Amount = M(value.Mul(rate.Price).value, v.Base)
		if rate.Date.OlderThan(staleDays, v.Now) {
			p.flag(FlagStaleRate)
		}
	} else {
		p.Amount = M(value.value, v.Base)
		p.flag(FlagMissingRate)
	}
}

// flag appends a valuation annotation to the position.
func (p *Position) flag(f string) {
	if p.Err == "" {
		p.Err = f
		return
	}
	p.Err += " " + f
}

// Total returns the summed base-currency amount of the given positions.
func Total(positions []*Position, base string) Money {
	total := M(0, base)
	for _, p := range positions {
		total = total.Add(p.Amount)
	}
	return total
}

// Dimension is the grouping key of a report.
type Dimension int

const (
	ByCurrency Dimension = iota
	ByAsset
	ByGroup
	ByRiskyness
	ByTags
)

var dimensionNames = map[Dimension]string{
	ByCurrency:  "currency",
	ByAsset:     "asset",
	ByGroup:     "group",
	ByRiskyness: "riskyness",
	ByTags:      "tags",
}

func (d Dimension) String() string {
	if s, ok := dimensionNames[d]; ok {
		return s
	}
	return "unknown"
}

// ParseDimension parses a report dimension name.
func ParseDimension(s string) (Dimension, error) {
	for d, name := range dimensionNames {
		if strings.EqualFold(s, name) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown report dimension %q, want one of currency, asset, group, riskyness, tags", s)
}

// Key returns the position's value along the dimension.
func (d Dimension) Key(p *Position) string {
	switch d {
	case ByCurrency:
		return p.Currency
	case ByAsset:
		return p.Asset
	case ByGroup:
		return p.Group
	case ByRiskyness:
		return p.Riskyness
	case ByTags:
		return p.Tags
	default:
		return ""
	}
}

// GroupLine is one row of a grouped report.
type GroupLine struct {
	Key    string
	Amount Money
	Weight Percent
}

// GroupBy sums valued positions along a dimension. Lines come back sorted
// by key; display ordering beyond that is the caller's business.
func GroupBy(positions []*Position, d Dimension, base string) []GroupLine {
	sums := make(map[string]Money)
	for _, p := range positions {
		key := d.Key(p)
		sum, ok := sums[key]
		if !ok {
			sum = M(0, base)
		}
		sums[key] = sum.Add(p.Amount)
	}

	total := Total(positions, base).AsFloat()
	lines := make([]GroupLine, 0, len(sums))
	for key, sum := range sums {
		w := NoData()
		if total != 0 {
			w = Percent(sum.AsFloat() / total)
		}
		lines = append(lines, GroupLine{Key: key, Amount: sum, Weight: w})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].Key < lines[j].Key })
	return lines
}

// SortField is a named position field usable as a sort key.
var sortFields = map[string]func(a, b *Position) bool{
	"name":    func(a, b *Position) bool { return a.Name < b.Name },
	"units":   func(a, b *Position) bool { return a.Units.LessThan(b.Units) },
	"cost":    func(a, b *Position) bool { return a.Cost.value.LessThan(b.Cost.value) },
	"revenue": func(a, b *Position) bool { return a.Revenue.value.LessThan(b.Revenue.value) },
	"divs":    func(a, b *Position) bool { return a.Divs.value.LessThan(b.Divs.value) },
	"fees":    func(a, b *Position) bool { return a.Fees.value.LessThan(b.Fees.value) },
	"amount":  func(a, b *Position) bool { return a.Amount.value.LessThan(b.Amount.value) },
	"pct":     func(a, b *Position) bool { return a.Weight < b.Weight },
}

// SortPositions orders positions by a named field, descending for numeric
// fields and ascending for name.
func SortPositions(positions []*Position, field string) error {
	field = strings.ToLower(field)
	less, ok := sortFields[field]
	if !ok {
		return fmt.Errorf("unknown sort field %q, want one of name, units, cost, revenue, divs, fees, amount, pct", field)
	}
	if field == "name" {
		sort.Slice(positions, func(i, j int) bool { return less(positions[i], positions[j]) })
		return nil
	}
	sort.Slice(positions, func(i, j int) bool { return less(positions[j], positions[i]) })
	return nil
}
