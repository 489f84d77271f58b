package scoring

import (
	"fmt"
	"math"
)

// Weights are the composite undervaluation weights.
type Weights struct {
	PE            float64 `yaml:"pe" json:"pe"`
	PB            float64 `yaml:"pb" json:"pb"`
	DividendYield float64 `yaml:"dividend_yield" json:"dividend_yield"`
	FCFMargin     float64 `yaml:"fcf_margin" json:"fcf_margin"`
	EPSGrowth     float64 `yaml:"eps_growth" json:"eps_growth"`
	DebtToEquity  float64 `yaml:"debt_to_equity" json:"debt_to_equity"`
}

// DefaultWeights returns the stock composite weights.
func DefaultWeights() Weights {
	return Weights{
		PE:            0.22,
		PB:            0.18,
		DividendYield: 0.12,
		FCFMargin:     0.18,
		EPSGrowth:     0.18,
		DebtToEquity:  0.12,
	}
}

// Sum returns the total weight.
func (w Weights) Sum() float64 {
	return w.PE + w.PB + w.DividendYield + w.FCFMargin + w.EPSGrowth + w.DebtToEquity
}

// Validate rejects negative or all-zero weights.
func (w Weights) Validate() error {
	for name, v := range map[string]float64{
		"pe": w.PE, "pb": w.PB, "dividend_yield": w.DividendYield,
		"fcf_margin": w.FCFMargin, "eps_growth": w.EPSGrowth, "debt_to_equity": w.DebtToEquity,
	} {
		if v < 0 || math.IsNaN(v) {
			return fmt.Errorf("weight %s must be non-negative, got %f", name, v)
		}
	}
	if w.Sum() <= 0 {
		return fmt.Errorf("weights must sum to a positive value")
	}
	return nil
}

// variant is a fixed blend of aspect scores.
type variant struct {
	financials, valuation, growth, risk, news, outlook, buffett, technical float64
}

func (v variant) apply(a aspectSet) float64 {
	return v.financials*a.financials +
		v.valuation*a.valuation +
		v.growth*a.growth +
		v.risk*a.risk +
		v.news*a.news +
		v.outlook*a.outlook +
		v.buffett*a.buffett +
		v.technical*a.technical
}

var (
	// short-term, low risk
	variantSTLR = variant{risk: 0.30, valuation: 0.25, financials: 0.20, technical: 0.10, outlook: 0.10, growth: 0.05}
	// short-term momentum/valuation
	variantST = variant{valuation: 0.25, technical: 0.20, news: 0.15, growth: 0.15, financials: 0.15, risk: 0.10}
	// long-term, low risk
	variantLTLR = variant{financials: 0.30, buffett: 0.25, risk: 0.20, valuation: 0.15, outlook: 0.10}
	// long-term growth/quality
	variantLT = variant{growth: 0.25, outlook: 0.20, financials: 0.20, valuation: 0.15, buffett: 0.10, risk: 0.10}
)
