package discovery

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/sawpanic/valuescan/internal/models"
)

// SalvageSource harvests the ticker column of earlier report files.
type SalvageSource struct {
	paths []string
}

func NewSalvageSource(paths ...string) *SalvageSource {
	return &SalvageSource{paths: paths}
}

func (s *SalvageSource) Name() string { return "salvage" }

func (s *SalvageSource) Discover(_ context.Context, set *CandidateSet) error {
	var errs []error
	for _, path := range s.paths {
		symbols, err := ReadReportTickers(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, sym := range symbols {
			set.Add(models.Candidate{Symbol: sym, Source: models.SourceSalvage})
		}
		log.Debug().Str("path", path).Int("tickers", len(symbols)).Msg("Salvaged prior output")
	}
	return errors.Join(errs...)
}

// ReadReportTickers returns the second column of every data row, stopping at
// the first blank row or the first Top_ ranking row.
func ReadReportTickers(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	if _, err := r.Read(); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read header of %s: %w", path, err)
	}

	var out []string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return out, fmt.Errorf("failed to read %s: %w", path, err)
		}
		if blankRecord(rec) || strings.HasPrefix(rec[0], "Top_") {
			break
		}
		if len(rec) > 1 {
			if sym := strings.TrimSpace(rec[1]); sym != "" {
				out = append(out, sym)
			}
		}
	}
	return out, nil
}

func blankRecord(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
