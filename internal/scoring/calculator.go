package scoring

import (
	"github.com/sawpanic/valuescan/internal/models"
)

// Calibration anchors. Lower-better anchors are (good, bad); higher-better
// anchors are (low, high) of the desirable range.
const (
	peGood, peBad              = 6.0, 35.0
	pbGood, pbBad              = 0.7, 6.0
	evEbitdaGood, evEbitdaBad  = 4.0, 20.0
	d2eGood, d2eBad            = 0.15, 2.0
	d2ePenaltyLo, d2ePenaltyHi = 0.3, 2.0
	betaGood, betaBad          = 0.8, 2.0
	recGood, recBad            = 1.0, 4.0

	grossLo, grossHi           = 0.2, 0.6
	operatingLo, operatingHi   = 0.05, 0.3
	netLo, netHi               = 0.02, 0.25
	roeLo, roeHi               = 0.05, 0.25
	buffettRoeLo, buffettRoeHi = 0.10, 0.30
	currentLo, currentHi       = 1.2, 3.0
	quickLo, quickHi           = 1.0, 2.5
	premiumLo, premiumHi       = 0.05, 0.30
	changeLo, changeHi         = -0.02, 0.05
)

// Policy controls when a composite is considered unscoreable.
type Policy struct {
	// ExcludeNA enables the minimum-available-fields rule.
	ExcludeNA bool `yaml:"exclude_na" json:"exclude_na"`
	// MinFields is the minimum number of composite inputs required when ExcludeNA is set.
	MinFields int `yaml:"min_fields" json:"min_fields"`
}

// Calculator scores summaries.
type Calculator struct {
	weights Weights
	policy  Policy
}

// NewCalculator creates a calculator with the given weights and policy.
func NewCalculator(weights Weights, policy Policy) *Calculator {
	return &Calculator{weights: weights, policy: policy}
}

// Score computes the composite and aspect scores for one summary.
func (c *Calculator) Score(symbol string, s *models.Summary) models.ScoredResult {
	in := ExtractInputs(s)
	return models.ScoredResult{
		Symbol:    symbol,
		Summary:   s,
		Composite: c.Composite(in),
		Aspects:   c.Aspects(in),
	}
}

// compositeTerm is one normalized composite input and its weight.
type compositeTerm struct {
	ok     bool
	value  float64
	weight float64
}

func (c *Calculator) compositeTerms(in Inputs) []compositeTerm {
	return []compositeTerm{
		{present(in.PE), LowerBetter(in.PE, peGood, peBad), c.weights.PE},
		{present(in.PriceToBook), LowerBetter(in.PriceToBook, pbGood, pbBad), c.weights.PB},
		{present(in.DividendYield), Scaled4(in.DividendYield), c.weights.DividendYield},
		{present(in.FCFMargin), Scaled4(in.FCFMargin), c.weights.FCFMargin},
		{present(in.EarningsGrowth), Scaled4(in.EarningsGrowth), c.weights.EPSGrowth},
		{present(in.DebtToEquity), LowerBetter(in.DebtToEquity, d2eGood, d2eBad), c.weights.DebtToEquity},
	}
}

// Composite is the weighted average of the present composite inputs. Missing
// inputs drop out of both numerator and denominator. It returns
// models.Unscoreable when nothing (or, under the policy, too little) is present.
func (c *Calculator) Composite(in Inputs) float64 {
	var sum, weight float64
	available := 0
	for _, t := range c.compositeTerms(in) {
		if !t.ok {
			continue
		}
		available++
		sum += t.value * t.weight
		weight += t.weight
	}
	if available == 0 || weight <= 0 {
		return models.Unscoreable
	}
	if c.policy.ExcludeNA && available < c.policy.MinFields {
		return models.Unscoreable
	}
	return sum / weight
}

// AvailableFields counts the composite inputs present in the summary.
func (c *Calculator) AvailableFields(in Inputs) int {
	n := 0
	for _, t := range c.compositeTerms(in) {
		if t.ok {
			n++
		}
	}
	return n
}
