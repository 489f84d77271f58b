package models

import "math"

// Unscoreable is the composite sentinel for securities without usable inputs.
var Unscoreable = math.Inf(-1)

// Aspects bundles the nine aspect scores and four composite variants.
//
// Aspect scores are sums of unit-normalized sub-terms, so their range depends on
// the sub-term count: Financials [-1,6], Valuation [0,5], Growth [0,3],
// Risk [0,4], Outlook [0,6], Buffett [0,4]; News, Technical and Sentiment [0,1].
type Aspects struct {
	Financials float64 `json:"financials"`
	Valuation  float64 `json:"valuation"`
	Growth     float64 `json:"growth"`
	Risk       float64 `json:"risk"`
	News       float64 `json:"news"`
	Outlook    float64 `json:"outlook"`
	Buffett    float64 `json:"buffett"`
	Technical  float64 `json:"technical"`
	Sentiment  float64 `json:"sentiment"`

	CompositeSTLR float64 `json:"composite_st_lr"`
	CompositeST   float64 `json:"composite_st"`
	CompositeLTLR float64 `json:"composite_lt_lr"`
	CompositeLT   float64 `json:"composite_lt"`
}

// ScoredResult is one eligible, summarized and scored security.
type ScoredResult struct {
	Symbol    string   `json:"symbol"`
	Summary   *Summary `json:"summary"`
	Composite float64  `json:"composite"`
	Aspects   Aspects  `json:"aspects"`
}

// Scoreable reports whether the composite can take part in score ranking.
func (r ScoredResult) Scoreable() bool {
	return !math.IsInf(r.Composite, 0) && !math.IsNaN(r.Composite)
}
