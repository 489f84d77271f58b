package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/valuescan/internal/models"
)

func fullSummary() *models.Summary {
	f := models.Float
	return &models.Summary{
		Price: models.PriceModule{
			Symbol:                     "AAA",
			LongName:                   "Alpha Alpha Inc.",
			Exchange:                   "NMS",
			FullExchangeName:           "NasdaqGS",
			RegularMarketPrice:         f(10),
			RegularMarketChangePercent: f(0.015),
			MarketCap:                  f(5e9),
		},
		SummaryDetail: models.SummaryDetail{
			DividendYield: f(0.02),
			Beta:          f(1.1),
		},
		FinancialData: models.FinancialData{
			TargetMeanPrice:    f(12),
			RecommendationMean: f(2.0),
			TotalRevenue:       f(1e9),
			FreeCashflow:       f(1e8),
			DebtToEquity:       f(0.5),
			CurrentRatio:       f(2.0),
			QuickRatio:         f(1.5),
			ReturnOnEquity:     f(0.18),
			ReturnOnAssets:     f(0.09),
			RevenueGrowth:      f(0.12),
			EarningsGrowth:     f(0.15),
			GrossMargins:       f(0.45),
			OperatingMargins:   f(0.2),
			ProfitMargins:      f(0.12),
		},
		DefaultKeyStatistics: models.DefaultKeyStatistics{
			TrailingPE:         f(18),
			ForwardPE:          f(15),
			PriceToBook:        f(2.5),
			EnterpriseToEbitda: f(10),
		},
		SummaryProfile: models.SummaryProfile{Sector: "Technology", Industry: "Software—Infrastructure"},
	}
}

func TestComposite_UnscoreableWithoutInputs(t *testing.T) {
	calc := NewCalculator(DefaultWeights(), Policy{})

	assert.True(t, math.IsInf(calc.Composite(ExtractInputs(nil)), -1))
	assert.True(t, math.IsInf(calc.Composite(ExtractInputs(&models.Summary{})), -1))

	result := calc.Score("EMPTY", &models.Summary{})
	assert.False(t, result.Scoreable())
}

func TestComposite_WeightedAverageOverPresentInputs(t *testing.T) {
	calc := NewCalculator(DefaultWeights(), Policy{})

	// Only P/E present: the score is that single normalized term.
	s := &models.Summary{DefaultKeyStatistics: models.DefaultKeyStatistics{ForwardPE: models.Float(20.5)}}
	assert.InDelta(t, 0.5, calc.Composite(ExtractInputs(s)), 1e-9)

	// P/E and dividend yield present: weights 0.22 and 0.12 renormalize.
	s.SummaryDetail.DividendYield = models.Float(0.25) // scaled to 1.0
	expected := (0.5*0.22 + 1.0*0.12) / (0.22 + 0.12)
	assert.InDelta(t, expected, calc.Composite(ExtractInputs(s)), 1e-9)
}

func TestComposite_ForwardPEPreferredOverTrailing(t *testing.T) {
	calc := NewCalculator(DefaultWeights(), Policy{})

	s := &models.Summary{DefaultKeyStatistics: models.DefaultKeyStatistics{
		TrailingPE: models.Float(35),
		ForwardPE:  models.Float(6),
	}}
	assert.Equal(t, 1.0, calc.Composite(ExtractInputs(s)))

	s.DefaultKeyStatistics.ForwardPE = nil
	assert.Equal(t, 0.0, calc.Composite(ExtractInputs(s)))
}

func TestComposite_StaysInUnitRange(t *testing.T) {
	calc := NewCalculator(DefaultWeights(), Policy{})

	score := calc.Composite(ExtractInputs(fullSummary()))
	assert.Greater(t, score, 0.0)
	assert.LessOrEqual(t, score, 1.0)
	assert.Equal(t, 6, calc.AvailableFields(ExtractInputs(fullSummary())))
}

func TestComposite_MinFieldsPolicy(t *testing.T) {
	s := &models.Summary{
		DefaultKeyStatistics: models.DefaultKeyStatistics{ForwardPE: models.Float(12), PriceToBook: models.Float(1.5)},
		SummaryDetail:        models.SummaryDetail{DividendYield: models.Float(0.01)},
	}
	in := ExtractInputs(s)

	lenient := NewCalculator(DefaultWeights(), Policy{ExcludeNA: false, MinFields: 4})
	assert.False(t, math.IsInf(lenient.Composite(in), -1))

	strict := NewCalculator(DefaultWeights(), Policy{ExcludeNA: true, MinFields: 4})
	assert.True(t, math.IsInf(strict.Composite(in), -1))

	s.FinancialData.DebtToEquity = models.Float(0.4)
	assert.False(t, math.IsInf(strict.Composite(ExtractInputs(s)), -1))
}

func TestComposite_FCFMarginNeedsRevenue(t *testing.T) {
	s := &models.Summary{FinancialData: models.FinancialData{FreeCashflow: models.Float(1e6)}}
	in := ExtractInputs(s)
	assert.True(t, math.IsNaN(in.FCFMargin))

	s.FinancialData.TotalRevenue = models.Float(0)
	assert.True(t, math.IsNaN(ExtractInputs(s).FCFMargin))

	s.FinancialData.TotalRevenue = models.Float(1e7)
	assert.InDelta(t, 0.1, ExtractInputs(s).FCFMargin, 1e-12)
}

func TestAspects_FullSummary(t *testing.T) {
	calc := NewCalculator(DefaultWeights(), Policy{})
	in := ExtractInputs(fullSummary())
	a := calc.Aspects(in)

	expectedGrowth := Scaled4(0.15) + Scaled4(0.12) + HigherBetter(0.18, 0.05, 0.25)
	assert.InDelta(t, expectedGrowth, a.Growth, 1e-9)

	expectedRisk := LowerBetter(0.5, 0.15, 2.0) + HigherBetter(2.0, 1.2, 3.0) +
		HigherBetter(1.5, 1.0, 2.5) + LowerBetter(1.1, 0.8, 2.0)
	assert.InDelta(t, expectedRisk, a.Risk, 1e-9)

	// (12-10)/10 = 20% premium on a 5%..30% scale.
	assert.InDelta(t, 0.6, a.News, 1e-9)
	assert.InDelta(t, HigherBetter(0.015, -0.02, 0.05), a.Technical, 1e-9)
	assert.InDelta(t, LowerBetter(2.0, 1.0, 4.0), a.Sentiment, 1e-9)

	// Financials subtract a leverage penalty.
	expectedFinancials := HigherBetter(0.45, 0.2, 0.6) + HigherBetter(0.2, 0.05, 0.3) +
		HigherBetter(0.12, 0.02, 0.25) + Scaled4(0.12) + Scaled4(0.15) + Scaled4(0.1) -
		HigherBetter(0.5, 0.3, 2.0)
	assert.InDelta(t, expectedFinancials, a.Financials, 1e-9)
}

func TestAspects_OutlookIsUnweightedSum(t *testing.T) {
	calc := NewCalculator(DefaultWeights(), Policy{})
	in := ExtractInputs(fullSummary())

	expected := LowerBetter(15, 6, 35) + LowerBetter(2.5, 0.7, 6) + Scaled4(0.02) +
		Scaled4(0.1) + Scaled4(0.15) + LowerBetter(0.5, 0.15, 2.0)
	assert.InDelta(t, expected, calc.Aspects(in).Outlook, 1e-9)
}

func TestAspects_VariantsAreFixedBlends(t *testing.T) {
	calc := NewCalculator(DefaultWeights(), Policy{})
	a := calc.Aspects(ExtractInputs(fullSummary()))

	stlr := 0.30*a.Risk + 0.25*a.Valuation + 0.20*a.Financials + 0.10*a.Technical + 0.10*a.Outlook + 0.05*a.Growth
	st := 0.25*a.Valuation + 0.20*a.Technical + 0.15*a.News + 0.15*a.Growth + 0.15*a.Financials + 0.10*a.Risk
	ltlr := 0.30*a.Financials + 0.25*a.Buffett + 0.20*a.Risk + 0.15*a.Valuation + 0.10*a.Outlook
	lt := 0.25*a.Growth + 0.20*a.Outlook + 0.20*a.Financials + 0.15*a.Valuation + 0.10*a.Buffett + 0.10*a.Risk

	assert.InDelta(t, stlr, a.CompositeSTLR, 1e-9)
	assert.InDelta(t, st, a.CompositeST, 1e-9)
	assert.InDelta(t, ltlr, a.CompositeLTLR, 1e-9)
	assert.InDelta(t, lt, a.CompositeLT, 1e-9)
}

func TestAspects_EmptySummaryIsZero(t *testing.T) {
	calc := NewCalculator(DefaultWeights(), Policy{})
	a := calc.Aspects(ExtractInputs(&models.Summary{}))
	assert.Equal(t, models.Aspects{}, a)
}

func TestWeights_Validate(t *testing.T) {
	require.NoError(t, DefaultWeights().Validate())
	assert.InDelta(t, 1.0, DefaultWeights().Sum(), 1e-9)

	w := DefaultWeights()
	w.PB = -0.1
	assert.Error(t, w.Validate())

	assert.Error(t, Weights{}.Validate())
}

func TestComputeExtras(t *testing.T) {
	ex := ComputeExtras(ExtractInputs(fullSummary()))
	assert.InDelta(t, 0.02, ex.FCFYield, 1e-12)
	assert.InDelta(t, 0.09, ex.ROIC, 1e-12)

	s := fullSummary()
	s.FinancialData.ReturnOnAssets = nil
	assert.InDelta(t, 0.18, ComputeExtras(ExtractInputs(s)).ROIC, 1e-12)
}
