package lupo

import (
	"fmt"
	"strings"

	"github.com/lucabol/lupo/date"
)

// TradeType is the kind of a trade event.
type TradeType int

const (
	Buy TradeType = iota
	Sell
	TransferIn
	TransferOut
	Dividend
	Split
)

// tradeTypeNames maps the wire spelling of each kind.
var tradeTypeNames = map[TradeType]string{
	Buy:         "Buy",
	Sell:        "Sell",
	TransferIn:  "TrIn",
	TransferOut: "TrOut",
	Dividend:    "Div",
	Split:       "Split",
}

func (t TradeType) String() string {
	if s, ok := tradeTypeNames[t]; ok {
		return s
	}
	return "unknown"
}

// ParseTradeType parses the wire spelling of a trade kind.
func ParseTradeType(s string) (TradeType, error) {
	for t, name := range tradeTypeNames {
		if strings.EqualFold(s, name) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unrecognized trade type %q", s)
}

// Trade is one event of the append-only ledger.
type Trade struct {
	Account  string
	Date     date.Date
	Type     TradeType
	Stock    string // instrument name reference
	Units    Quantity
	Price    Quantity // optional unit price, zero when blank
	Fees     Quantity // optional, zero when blank
	Ratio    Quantity // split ratio, neutral 1 when blank
	Currency Quantity // multiplier to the base currency, neutral 1 when blank
}

// Amount is the traded amount normalized to the base currency:
// units x price x currency multiplier.
func (t Trade) Amount() Quantity {
	return t.Units.Mul(t.Price).Mul(t.Currency)
}

// FeeAmount is the fee normalized to the base currency. The currency
// multiplier applies to fees on both the traded position and the linked
// cash position.
func (t Trade) FeeAmount() Quantity {
	return t.Fees.Mul(t.Currency)
}
