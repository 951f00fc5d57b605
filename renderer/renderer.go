// Package renderer turns portfolio data into markdown tables. Sorting and
// terminal formatting are the caller's business.
package renderer

import (
	"fmt"
	"strings"

	"github.com/lucabol/lupo"
)

// Positions renders valued positions as a markdown table.
func Positions(positions []*lupo.Position) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Positions\n\n")
	fmt.Fprintln(&b, "| Ticker | Name | Cur | Asset | Group | R | Units | Cost | Revenue | Divs | Fees | Amount | Pct | Err |")
	fmt.Fprintln(&b, "|:---|:---|:---|:---|:---|:---|---:|---:|---:|---:|---:|---:|---:|:---|")
	for _, p := range positions {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s | %s | %s | %s | %s | %s | %s | %s |\n",
			orNA(p.Ticker),
			p.Name,
			p.Currency,
			p.Asset,
			p.Group,
			p.Riskyness,
			p.Units,
			p.Cost,
			p.Revenue,
			p.Divs,
			p.Fees,
			p.Amount,
			p.Weight,
			p.Err,
		)
	}
	return b.String()
}

// Trades renders ledger events as a markdown table.
func Trades(trades []lupo.Trade) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Trades\n\n")
	fmt.Fprintln(&b, "| Account | Date | Type | Stock | Units | Price | Fees |")
	fmt.Fprintln(&b, "|:---|:---|:---|:---|---:|---:|---:|")
	for _, t := range trades {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s |\n",
			t.Account, t.Date, t.Type, t.Stock, t.Units, t.Price, t.Fees)
	}
	return b.String()
}

// Instruments renders registry rows as a markdown table.
func Instruments(instruments []lupo.Instrument) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Instruments\n\n")
	fmt.Fprintln(&b, "| Ticker | Name | Cur | Asset | Group | Tags | R |")
	fmt.Fprintln(&b, "|:---|:---|:---|:---|:---|:---|:---|")
	for _, s := range instruments {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s |\n",
			orNA(s.Ticker), s.Name, s.Currency, s.Asset, s.Group, s.Tags, s.Riskyness)
	}
	return b.String()
}

// Groups renders a grouped report as a markdown table.
func Groups(dim lupo.Dimension, groups []lupo.GroupLine) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# By %s\n\n", dim)
	fmt.Fprintf(&b, "| %s | Amount | Pct |\n", title(dim.String()))
	fmt.Fprintln(&b, "|:---|---:|---:|")
	for _, g := range groups {
		fmt.Fprintf(&b, "| %s | %s | %s |\n", orNA(g.Key), g.Amount, g.Weight)
	}
	return b.String()
}

// Total renders the portfolio value as a one-liner.
func Total(total lupo.Money) string {
	return fmt.Sprintf("Total portfolio value: **%s**\n", total)
}

func orNA(s string) string {
	if s == "" {
		return "<NA>"
	}
	return s
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
