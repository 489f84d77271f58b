package scoring

import (
	"math"

	"github.com/sawpanic/valuescan/internal/models"
)

type aspectSet struct {
	financials, valuation, growth, risk, news, outlook, buffett, technical, sentiment float64
}

// Aspects computes the nine aspect scores and the four composite variants.
// Missing sub-metrics contribute zero.
func (c *Calculator) Aspects(in Inputs) models.Aspects {
	a := aspectSet{
		financials: HigherBetter(in.GrossMargins, grossLo, grossHi) +
			HigherBetter(in.OperatingMargins, operatingLo, operatingHi) +
			HigherBetter(in.NetMargins, netLo, netHi) +
			Scaled4(in.RevenueGrowth) +
			Scaled4(in.EarningsGrowth) +
			Scaled4(in.FCFMargin) -
			HigherBetter(in.DebtToEquity, d2ePenaltyLo, d2ePenaltyHi),
		valuation: LowerBetter(in.TrailingPE, peGood, peBad) +
			LowerBetter(in.ForwardPE, peGood, peBad) +
			LowerBetter(in.PriceToBook, pbGood, pbBad) +
			LowerBetter(in.EnterpriseToEbitda, evEbitdaGood, evEbitdaBad) +
			Scaled4(in.DividendYield),
		growth: Scaled4(in.EarningsGrowth) +
			Scaled4(in.RevenueGrowth) +
			HigherBetter(in.ReturnOnEquity, roeLo, roeHi),
		risk: LowerBetter(in.DebtToEquity, d2eGood, d2eBad) +
			HigherBetter(in.CurrentRatio, currentLo, currentHi) +
			HigherBetter(in.QuickRatio, quickLo, quickHi) +
			LowerBetter(in.Beta, betaGood, betaBad),
		news:    HigherBetter(in.TargetPremium(), premiumLo, premiumHi),
		outlook: c.outlook(in),
		buffett: Scaled4(in.DividendYield) +
			LowerBetter(in.DebtToEquity, d2eGood, d2eBad) +
			HigherBetter(in.ReturnOnEquity, buffettRoeLo, buffettRoeHi) +
			Scaled4(in.FCFMargin),
		technical: HigherBetter(in.ChangePercent, changeLo, changeHi),
		sentiment: LowerBetter(in.RecommendationMean, recGood, recBad),
	}

	return models.Aspects{
		Financials:    a.financials,
		Valuation:     a.valuation,
		Growth:        a.growth,
		Risk:          a.risk,
		News:          a.news,
		Outlook:       a.outlook,
		Buffett:       a.buffett,
		Technical:     a.technical,
		Sentiment:     a.sentiment,
		CompositeSTLR: variantSTLR.apply(a),
		CompositeST:   variantST.apply(a),
		CompositeLTLR: variantLTLR.apply(a),
		CompositeLT:   variantLT.apply(a),
	}
}

// outlook is the unweighted sum of the six composite sub-terms.
func (c *Calculator) outlook(in Inputs) float64 {
	sum := 0.0
	for _, t := range c.compositeTerms(in) {
		sum += t.value
	}
	return sum
}

// Extras are raw report-only ratios.
type Extras struct {
	FCFYield float64 // free cash flow over market cap
	ROIC     float64 // return on assets, falling back to return on equity
}

// ComputeExtras derives the report-only ratios. Missing values are NaN.
func ComputeExtras(in Inputs) Extras {
	ex := Extras{FCFYield: math.NaN(), ROIC: in.ReturnOnAssets}
	if present(in.FreeCashflow) && present(in.MarketCap) && in.MarketCap != 0 {
		ex.FCFYield = in.FreeCashflow / in.MarketCap
	}
	if !present(ex.ROIC) {
		ex.ROIC = in.ReturnOnEquity
	}
	return ex
}
