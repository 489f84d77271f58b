package pipeline

import (
	"strings"

	"github.com/sawpanic/valuescan/internal/models"
)

// nasdaqCodes are the exchange codes accepted when the exchange name is not
// conclusive.
var nasdaqCodes = map[string]bool{
	"NMS": true,
	"NGS": true,
	"NCM": true,
}

// IsNasdaq reports whether the listing is on a NASDAQ venue.
func IsNasdaq(l models.Listing) bool {
	return strings.Contains(strings.ToLower(l.ExchangeName), "nasdaq") ||
		nasdaqCodes[strings.ToUpper(l.ExchangeCode)]
}

// Eligible is the admission test run before any full summary fetch: NASDAQ
// venue and a known price at or above minPrice.
func Eligible(l models.Listing, minPrice float64) bool {
	return IsNasdaq(l) && l.Price != nil && *l.Price >= minPrice
}

// Filters restricts scored symbols to selected sectors and industries. An
// empty list leaves that dimension unrestricted.
type Filters struct {
	Sectors    []string `yaml:"sectors"`
	Industries []string `yaml:"industries"`
}

// Active reports whether any filter is configured.
func (f Filters) Active() bool {
	return len(f.Sectors) > 0 || len(f.Industries) > 0
}

// Match applies both dimensions; a nil summary only matches when no filter is active.
func (f Filters) Match(s *models.Summary) bool {
	if !f.Active() {
		return true
	}
	if s == nil {
		return false
	}
	if len(f.Sectors) > 0 && !containsNormalized(f.Sectors, s.SummaryProfile.Sector) {
		return false
	}
	if len(f.Industries) > 0 && !containsNormalized(f.Industries, s.SummaryProfile.Industry) {
		return false
	}
	return true
}

// NormalizeLabel lower-cases and collapses whitespace.
func NormalizeLabel(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func containsNormalized(set []string, v string) bool {
	v = NormalizeLabel(v)
	if v == "" {
		return false
	}
	for _, s := range set {
		if NormalizeLabel(s) == v {
			return true
		}
	}
	return false
}
