package scoring

import (
	"math"

	"github.com/sawpanic/valuescan/internal/models"
)

// Inputs are the raw metrics pulled from a summary. Missing values are NaN.
type Inputs struct {
	TrailingPE         float64
	ForwardPE          float64
	PE                 float64 // forward P/E, falling back to trailing
	PriceToBook        float64
	EnterpriseToEbitda float64
	DividendYield      float64
	Beta               float64

	GrossMargins     float64
	OperatingMargins float64
	NetMargins       float64
	RevenueGrowth    float64
	EarningsGrowth   float64
	ReturnOnEquity   float64
	ReturnOnAssets   float64
	DebtToEquity     float64
	CurrentRatio     float64
	QuickRatio       float64
	FCFMargin        float64
	FreeCashflow     float64

	Price              float64
	TargetMeanPrice    float64
	ChangePercent      float64
	RecommendationMean float64
	MarketCap          float64
}

// ExtractInputs flattens the summary modules into scoring inputs.
func ExtractInputs(s *models.Summary) Inputs {
	if s == nil {
		return missingInputs()
	}
	ks, sd, fd, px := s.DefaultKeyStatistics, s.SummaryDetail, s.FinancialData, s.Price

	in := Inputs{
		TrailingPE:         firstPresent(ks.TrailingPE, sd.TrailingPE),
		ForwardPE:          firstPresent(ks.ForwardPE, sd.ForwardPE),
		PriceToBook:        Value(ks.PriceToBook),
		EnterpriseToEbitda: Value(ks.EnterpriseToEbitda),
		DividendYield:      Value(sd.DividendYield),
		Beta:               Value(sd.Beta),
		GrossMargins:       Value(fd.GrossMargins),
		OperatingMargins:   Value(fd.OperatingMargins),
		NetMargins:         Value(fd.ProfitMargins),
		RevenueGrowth:      Value(fd.RevenueGrowth),
		EarningsGrowth:     Value(fd.EarningsGrowth),
		ReturnOnEquity:     Value(fd.ReturnOnEquity),
		ReturnOnAssets:     Value(fd.ReturnOnAssets),
		DebtToEquity:       Value(fd.DebtToEquity),
		CurrentRatio:       Value(fd.CurrentRatio),
		QuickRatio:         Value(fd.QuickRatio),
		FreeCashflow:       Value(fd.FreeCashflow),
		FCFMargin:          math.NaN(),
		Price:              firstPresent(px.RegularMarketPrice, fd.CurrentPrice),
		TargetMeanPrice:    Value(fd.TargetMeanPrice),
		ChangePercent:      Value(px.RegularMarketChangePercent),
		RecommendationMean: Value(fd.RecommendationMean),
		MarketCap:          firstPresent(px.MarketCap, ks.MarketCap, sd.MarketCap),
	}

	in.PE = in.ForwardPE
	if !present(in.PE) {
		in.PE = in.TrailingPE
	}

	revenue := Value(fd.TotalRevenue)
	if present(in.FreeCashflow) && present(revenue) && revenue != 0 {
		in.FCFMargin = in.FreeCashflow / revenue
	}
	return in
}

// TargetPremium is the analyst target's premium over the current price.
func (in Inputs) TargetPremium() float64 {
	if !present(in.TargetMeanPrice) || !present(in.Price) || in.Price == 0 {
		return math.NaN()
	}
	return (in.TargetMeanPrice - in.Price) / in.Price
}

func firstPresent(ps ...*float64) float64 {
	for _, p := range ps {
		if v := Value(p); present(v) {
			return v
		}
	}
	return math.NaN()
}

func missingInputs() Inputs {
	nan := math.NaN()
	return Inputs{
		TrailingPE: nan, ForwardPE: nan, PE: nan, PriceToBook: nan, EnterpriseToEbitda: nan,
		DividendYield: nan, Beta: nan, GrossMargins: nan, OperatingMargins: nan, NetMargins: nan,
		RevenueGrowth: nan, EarningsGrowth: nan, ReturnOnEquity: nan, ReturnOnAssets: nan,
		DebtToEquity: nan, CurrentRatio: nan, QuickRatio: nan, FCFMargin: nan, FreeCashflow: nan,
		Price: nan, TargetMeanPrice: nan, ChangePercent: nan, RecommendationMean: nan, MarketCap: nan,
	}
}
