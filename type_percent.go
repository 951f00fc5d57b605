package lupo

import (
	"fmt"
	"math"
)

// Percent is a portfolio weight. NoData (NaN) marks a weight computed over
// an empty or zero-valued retained set; it renders as "-" and must never be
// fed back into arithmetic.
type Percent float64

// NoData is the Percent reported when no weight can be computed.
func NoData() Percent { return Percent(math.NaN()) }

// IsNoData reports whether the weight carries no data.
func (p Percent) IsNoData() bool { return math.IsNaN(float64(p)) }

func (p Percent) Equal(q Percent) bool {
	// it has to be compared with some precision
	const precision = 0.0001
	diff := float64(p - q)
	return math.Abs(diff) < precision
}

func (p Percent) String() string {
	if p.IsNoData() {
		return "-"
	}
	return fmt.Sprintf("%.2f%%", float64(p)*100)
}
