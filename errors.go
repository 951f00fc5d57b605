package lupo

import "errors"

// Error kinds. Structural errors abort the whole command; callers match
// them with errors.Is on the wrapped chain.
var (
	// ErrParse marks a malformed row or field in one of the store files.
	ErrParse = errors.New("parse error")

	// ErrUnknownInstrument marks a trade referencing a name absent from the registry.
	ErrUnknownInstrument = errors.New("unknown instrument")

	// ErrUnknownCashAccount marks a trade whose account has no "Cash<account>"
	// instrument registered.
	ErrUnknownCashAccount = errors.New("unknown cash account")

	// ErrNoQuote marks a symbol for which the quote source returned no data.
	// It is per-symbol and non-fatal during a refresh.
	ErrNoQuote = errors.New("no quote data")
)
