package lupo

import (
	"sort"
	"strings"
)

// cashPrefix denotes the cash buckets in the registry. The cash position
// linked to a trade is always named cashPrefix + account.
const cashPrefix = "Cash"

// Instrument is one row of the registry. It is immutable once loaded.
type Instrument struct {
	Name      string // unique key
	Asset     string
	Group     string
	Tags      string // free text
	Riskyness string
	Ticker    string // optional external symbol, "" when not quoted
	Traded    string // trading currency
	Currency  string // underlying valuation currency
}

// IsCash reports whether the instrument is itself a cash bucket.
func (s Instrument) IsCash() bool { return strings.HasPrefix(s.Name, cashPrefix) }

// IsCashEquivalent reports whether the instrument always prices at 1.0
// regardless of the snapshot: cash buckets, and instruments tagged "cash".
func (s Instrument) IsCashEquivalent() bool {
	if s.IsCash() {
		return true
	}
	for _, tag := range strings.Split(s.Tags, ",") {
		if strings.EqualFold(strings.TrimSpace(tag), "cash") {
			return true
		}
	}
	return false
}

// CashName returns the name of the cash position funding trades on account.
func CashName(account string) string { return cashPrefix + account }

// Registry indexes the known instruments by name.
type Registry struct {
	byName map[string]Instrument
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Instrument)}
}

// Add registers an instrument. It reports whether the name was free.
func (r *Registry) Add(s Instrument) bool {
	if _, dup := r.byName[s.Name]; dup {
		return false
	}
	r.byName[s.Name] = s
	return true
}

// Get returns the instrument registered under name.
func (r *Registry) Get(name string) (Instrument, bool) {
	s, ok := r.byName[name]
	return s, ok
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.byName[name]
	return ok
}

// Len returns the number of registered instruments.
func (r *Registry) Len() int { return len(r.byName) }

// Names returns all registered names in alphabetical order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Currencies returns the distinct underlying currencies other than base,
// in alphabetical order. These are the pairs the fetcher must quote.
func (r *Registry) Currencies(base string) []string {
	set := make(map[string]struct{})
	for _, s := range r.byName {
		if s.Currency != "" && s.Currency != base {
			set[s.Currency] = struct{}{}
		}
	}
	curs := make([]string, 0, len(set))
	for c := range set {
		curs = append(curs, c)
	}
	sort.Strings(curs)
	return curs
}
