package models

// Tier names how a symbol made it into the final selection.
type Tier string

const (
	TierScored            Tier = "scored"
	TierEligibleBackfill  Tier = "eligible_backfill"
	TierCandidateBackfill Tier = "candidate_backfill"
	TierMetaBackfill      Tier = "meta_backfill"
	TierCandidatePad      Tier = "candidate_pad"
	TierMetaPad           Tier = "meta_pad"
)

// SelectionEntry is one member of the final list.
type SelectionEntry struct {
	Symbol string `json:"symbol"`
	Tier   Tier   `json:"tier"`
}

// Selection is the ordered, size-bounded final list.
type Selection struct {
	Entries []SelectionEntry `json:"entries"`
}

// Symbols returns the selected symbols in order.
func (s Selection) Symbols() []string {
	out := make([]string, len(s.Entries))
	for i, e := range s.Entries {
		out[i] = e.Symbol
	}
	return out
}

// Contains reports whether symbol is already selected.
func (s Selection) Contains(symbol string) bool {
	for _, e := range s.Entries {
		if e.Symbol == symbol {
			return true
		}
	}
	return false
}

// Len returns the number of selected symbols.
func (s Selection) Len() int { return len(s.Entries) }

// TopKRow is the ranked symbol list for one scoring dimension.
type TopKRow struct {
	Dimension string   `json:"dimension"`
	Label     string   `json:"label"`
	Symbols   []string `json:"symbols"`
}

// TopKTable holds one row per scoring dimension.
type TopKTable []TopKRow

// Row returns the row for a dimension, or nil.
func (t TopKTable) Row(dimension string) []string {
	for _, r := range t {
		if r.Dimension == dimension {
			return r.Symbols
		}
	}
	return nil
}
