package models

// Provenance records which discovery source produced a candidate.
type Provenance string

const (
	SourceScreen   Provenance = "screen"
	SourceTrending Provenance = "trending"
	SourceSalvage  Provenance = "salvage"
	SourceSeed     Provenance = "seed"
	SourceManual   Provenance = "manual"
)

// Listing is the cheap exchange/price metadata used for eligibility.
// ExchangeName is lower-cased, ExchangeCode upper-cased.
type Listing struct {
	ExchangeName string   `json:"exchange_name,omitempty"`
	ExchangeCode string   `json:"exchange_code,omitempty"`
	Price        *float64 `json:"price,omitempty"`
}

// Known reports whether the listing carries a price and an exchange name or
// code, enough to decide eligibility.
func (l Listing) Known() bool {
	return (l.ExchangeName != "" || l.ExchangeCode != "") && l.Price != nil
}

// Empty reports whether the listing carries neither an exchange name nor a price.
func (l Listing) Empty() bool {
	return l.ExchangeName == "" && l.Price == nil
}

// Candidate is a ticker surfaced by discovery. HasMeta is set when the source
// supplied listing metadata alongside the symbol.
type Candidate struct {
	Symbol  string     `json:"symbol"`
	Listing Listing    `json:"listing"`
	Source  Provenance `json:"source"`
	HasMeta bool       `json:"has_meta"`
}
