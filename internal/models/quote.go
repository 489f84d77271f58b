package models

import "strings"

// LightQuote is the cheap quote shape: enough to decide listing venue and price.
type LightQuote struct {
	Symbol             string   `json:"symbol"`
	ShortName          string   `json:"shortName,omitempty"`
	LongName           string   `json:"longName,omitempty"`
	FullExchangeName   string   `json:"fullExchangeName,omitempty"`
	Exchange           string   `json:"exchange,omitempty"`
	RegularMarketPrice *float64 `json:"regularMarketPrice,omitempty"`
	MarketCap          *float64 `json:"marketCap,omitempty"`
}

// Listing returns the exchange metadata carried by the quote.
func (q *LightQuote) Listing() Listing {
	if q == nil {
		return Listing{}
	}
	return Listing{
		ExchangeName: strings.ToLower(q.FullExchangeName),
		ExchangeCode: strings.ToUpper(q.Exchange),
		Price:        q.RegularMarketPrice,
	}
}

// Summary is the full financial snapshot for one symbol.
type Summary struct {
	Price                PriceModule          `json:"price"`
	SummaryDetail        SummaryDetail        `json:"summaryDetail"`
	FinancialData        FinancialData        `json:"financialData"`
	DefaultKeyStatistics DefaultKeyStatistics `json:"defaultKeyStatistics"`
	SummaryProfile       SummaryProfile       `json:"summaryProfile"`
}

type PriceModule struct {
	Symbol                     string   `json:"symbol,omitempty"`
	ShortName                  string   `json:"shortName,omitempty"`
	LongName                   string   `json:"longName,omitempty"`
	Exchange                   string   `json:"exchange,omitempty"`
	ExchangeName               string   `json:"exchangeName,omitempty"`
	FullExchangeName           string   `json:"fullExchangeName,omitempty"`
	RegularMarketPrice         *float64 `json:"regularMarketPrice,omitempty"`
	RegularMarketChangePercent *float64 `json:"regularMarketChangePercent,omitempty"`
	MarketCap                  *float64 `json:"marketCap,omitempty"`
}

type SummaryDetail struct {
	DividendYield *float64 `json:"dividendYield,omitempty"`
	Beta          *float64 `json:"beta,omitempty"`
	TrailingPE    *float64 `json:"trailingPE,omitempty"`
	ForwardPE     *float64 `json:"forwardPE,omitempty"`
	MarketCap     *float64 `json:"marketCap,omitempty"`
}

type FinancialData struct {
	CurrentPrice       *float64 `json:"currentPrice,omitempty"`
	TargetMeanPrice    *float64 `json:"targetMeanPrice,omitempty"`
	RecommendationMean *float64 `json:"recommendationMean,omitempty"`
	TotalRevenue       *float64 `json:"totalRevenue,omitempty"`
	FreeCashflow       *float64 `json:"freeCashflow,omitempty"`
	DebtToEquity       *float64 `json:"debtToEquity,omitempty"`
	CurrentRatio       *float64 `json:"currentRatio,omitempty"`
	QuickRatio         *float64 `json:"quickRatio,omitempty"`
	ReturnOnEquity     *float64 `json:"returnOnEquity,omitempty"`
	ReturnOnAssets     *float64 `json:"returnOnAssets,omitempty"`
	RevenueGrowth      *float64 `json:"revenueGrowth,omitempty"`
	EarningsGrowth     *float64 `json:"earningsGrowth,omitempty"`
	GrossMargins       *float64 `json:"grossMargins,omitempty"`
	OperatingMargins   *float64 `json:"operatingMargins,omitempty"`
	ProfitMargins      *float64 `json:"profitMargins,omitempty"`
}

type DefaultKeyStatistics struct {
	TrailingPE         *float64 `json:"trailingPE,omitempty"`
	ForwardPE          *float64 `json:"forwardPE,omitempty"`
	PriceToBook        *float64 `json:"priceToBook,omitempty"`
	EnterpriseToEbitda *float64 `json:"enterpriseToEbitda,omitempty"`
	ForwardEps         *float64 `json:"forwardEps,omitempty"`
	MarketCap          *float64 `json:"marketCap,omitempty"`
}

type SummaryProfile struct {
	Sector   string `json:"sector,omitempty"`
	Industry string `json:"industry,omitempty"`
}

// Listing returns the exchange metadata carried by the summary's price module.
func (s *Summary) Listing() Listing {
	if s == nil {
		return Listing{}
	}
	name := s.Price.FullExchangeName
	if name == "" {
		name = s.Price.ExchangeName
	}
	return Listing{
		ExchangeName: strings.ToLower(name),
		ExchangeCode: strings.ToUpper(s.Price.Exchange),
		Price:        s.Price.RegularMarketPrice,
	}
}

// DisplayName prefers the long company name.
func (s *Summary) DisplayName() string {
	if s == nil {
		return ""
	}
	if s.Price.LongName != "" {
		return s.Price.LongName
	}
	return s.Price.ShortName
}

// Float returns a pointer to v, for building optional fields.
func Float(v float64) *float64 {
	return &v
}
