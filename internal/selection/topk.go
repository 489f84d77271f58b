package selection

import (
	"sort"

	"github.com/sawpanic/valuescan/internal/models"
)

// Dimension is one ranked column of the Top-K table.
type Dimension struct {
	Key   string
	Label string
	Value func(models.ScoredResult) float64
}

// Dimensions are ranked in this order.
var Dimensions = []Dimension{
	{"composite", "Composite", func(r models.ScoredResult) float64 { return r.Composite }},
	{"financials", "Financials", func(r models.ScoredResult) float64 { return r.Aspects.Financials }},
	{"valuation", "Valuation", func(r models.ScoredResult) float64 { return r.Aspects.Valuation }},
	{"growth", "Growth", func(r models.ScoredResult) float64 { return r.Aspects.Growth }},
	{"risk", "Risk", func(r models.ScoredResult) float64 { return r.Aspects.Risk }},
	{"news", "News", func(r models.ScoredResult) float64 { return r.Aspects.News }},
	{"outlook", "Outlook", func(r models.ScoredResult) float64 { return r.Aspects.Outlook }},
	{"buffett", "Buffett", func(r models.ScoredResult) float64 { return r.Aspects.Buffett }},
	{"technical", "Technical", func(r models.ScoredResult) float64 { return r.Aspects.Technical }},
	{"sentiment", "Sentiment", func(r models.ScoredResult) float64 { return r.Aspects.Sentiment }},
	{"composite_st_lr", "ST_LR", func(r models.ScoredResult) float64 { return r.Aspects.CompositeSTLR }},
	{"composite_st", "ST", func(r models.ScoredResult) float64 { return r.Aspects.CompositeST }},
	{"composite_lt_lr", "LT_LR", func(r models.ScoredResult) float64 { return r.Aspects.CompositeLTLR }},
	{"composite_lt", "LT", func(r models.ScoredResult) float64 { return r.Aspects.CompositeLT }},
}

// TopK ranks the selected symbols that have a scored result on every
// dimension and keeps the first k of each. Ties keep selection order.
func TopK(sel models.Selection, results []models.ScoredResult, k int) models.TopKTable {
	bySymbol := make(map[string]models.ScoredResult, len(results))
	for _, r := range results {
		bySymbol[r.Symbol] = r
	}

	var pool []models.ScoredResult
	for _, sym := range sel.Symbols() {
		if r, ok := bySymbol[sym]; ok {
			pool = append(pool, r)
		}
	}

	table := make(models.TopKTable, 0, len(Dimensions))
	for _, dim := range Dimensions {
		ranked := make([]models.ScoredResult, len(pool))
		copy(ranked, pool)
		value := dim.Value
		sort.SliceStable(ranked, func(i, j int) bool {
			return value(ranked[i]) > value(ranked[j])
		})

		n := k
		if n > len(ranked) {
			n = len(ranked)
		}
		row := models.TopKRow{Dimension: dim.Key, Label: dim.Label, Symbols: make([]string, n)}
		for i := 0; i < n; i++ {
			row.Symbols[i] = ranked[i].Symbol
		}
		table = append(table, row)
	}
	return table
}
