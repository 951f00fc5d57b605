// Package lupo implements a small, local-first personal portfolio ledger.
//
// The ledger lives in a directory of plain TSV files: a registry of
// instruments (stocks.tsv), an append-only list of trade events
// (trades.tsv) and a replaceable snapshot of the latest prices
// (prices.tsv). Trades are folded into per-instrument positions with
// double-entry cash linkage, and positions are valued against the price
// snapshot with currency conversion into the base currency.
//
// This package serves as the foundational logic for the lupo command-line
// tool.
package lupo
