package discovery

import (
	"context"

	"github.com/sawpanic/valuescan/internal/models"
)

// DefaultSeedFloor is the set size below which the seed list is added.
const DefaultSeedFloor = 500

// SeedSymbols are well-known NASDAQ large caps.
var SeedSymbols = []string{
	"AAPL", "MSFT", "NVDA", "AMZN", "META", "GOOGL", "GOOG", "AVGO", "COST", "ADBE",
	"PEP", "NFLX", "INTC", "CSCO", "AMD", "QCOM", "TXN", "AMAT", "PDD", "PYPL",
	"SBUX", "TMUS", "AMGN", "MDLZ", "GILD", "MU", "ADI", "KLAC", "LRCX", "REGN",
	"VRTX", "MRVL", "PANW", "FTNT", "CDNS", "SNPS", "ORLY", "IDXX", "NXPI", "ROP",
	"MNST", "MELI", "EA", "CTAS", "ROST", "CRWD", "ADSK", "CDW", "ODFL", "PCAR",
	"XEL", "CHTR", "CTSH", "ALGN", "TTWO", "EXC", "PAYX", "VRSK", "SNOW", "TTD",
	"DOCU", "OKTA", "ZS", "DDOG", "NTES", "BIDU", "NTNX", "FSLR", "EPAM", "LKQ",
	"DASH", "BKR", "BLDR", "RIVN", "LCID", "ABNB", "LULU", "MRNA", "BMY", "GFS",
	"A", "PTC", "TER", "HBAN", "UAL", "DAL", "AAL", "EXPE", "CHKP", "ALNY",
	"SFM", "WBA", "FAST", "NTRS", "ZBRA", "AXON", "CELH", "PLTR", "SMCI", "NVCR",
	"SPLK", "ANSS", "MCHP", "MPWR", "QRVO", "SWKS", "MTCH", "KDP", "SIRI", "INTU",
	"GEHC", "VRSN", "BIIB", "EXAS", "PENN", "PCTY", "SGEN", "INO", "NVAX", "RGEN",
	"MNKD",
}

// SeedSource tops up a thin candidate set with SeedSymbols.
type SeedSource struct {
	floor   int
	symbols []string
}

func NewSeedSource(floor int) *SeedSource {
	if floor <= 0 {
		floor = DefaultSeedFloor
	}
	return &SeedSource{floor: floor, symbols: SeedSymbols}
}

func (s *SeedSource) Name() string { return "seed" }

func (s *SeedSource) Discover(_ context.Context, set *CandidateSet) error {
	if set.Len() >= s.floor {
		return nil
	}
	for _, sym := range s.symbols {
		set.Add(models.Candidate{Symbol: sym, Source: models.SourceSeed})
	}
	return nil
}
