// Package report writes the final selection as a CSV file.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/sawpanic/valuescan/internal/scoring"
	"github.com/sawpanic/valuescan/internal/selection"
)

// Header is the column layout of the per-symbol section.
var Header = []string{
	"Company Name", "Ticker", "Tier", "Composite",
	"Financials", "Valuation", "Growth", "Risk", "News", "Outlook", "Buffett", "Technical", "Sentiment",
	"FCF Yield", "ROIC",
	"Composite_ST_LR", "Composite_ST", "Composite_LT_LR", "Composite_LT",
}

// NameFunc resolves a display name for symbols that were selected without a
// scored summary.
type NameFunc func(symbol string) string

// WriteCSV writes res to path, creating parent directories as needed.
func WriteCSV(path string, res *selection.Result, names NameFunc) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	if err := Write(file, res, names); err != nil {
		return err
	}
	log.Info().Str("path", path).Int("rows", res.Selection.Len()).Msg("Report written")
	return file.Close()
}

// Write renders the selection rows, a blank separator and one Top_<Label>
// row per ranking dimension.
func Write(w io.Writer, res *selection.Result, names NameFunc) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(Header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, entry := range res.Selection.Entries {
		record := make([]string, len(Header))
		record[1] = entry.Symbol
		record[2] = string(entry.Tier)

		sr, ok := res.Scored(entry.Symbol)
		if ok {
			record[0] = sr.Summary.DisplayName()
			record[3] = formatScore(sr.Composite)
			a := sr.Aspects
			for i, v := range []float64{a.Financials, a.Valuation, a.Growth, a.Risk, a.News, a.Outlook, a.Buffett, a.Technical, a.Sentiment} {
				record[4+i] = formatScore(v)
			}
			ex := scoring.ComputeExtras(scoring.ExtractInputs(sr.Summary))
			record[13] = formatScore(ex.FCFYield)
			record[14] = formatScore(ex.ROIC)
			for i, v := range []float64{a.CompositeSTLR, a.CompositeST, a.CompositeLTLR, a.CompositeLT} {
				record[15+i] = formatScore(v)
			}
		}
		if record[0] == "" && names != nil {
			record[0] = names(entry.Symbol)
		}

		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	if err := writer.Write([]string{""}); err != nil {
		return fmt.Errorf("failed to write CSV separator: %w", err)
	}
	for _, row := range res.TopK {
		record := append([]string{"Top_" + row.Label}, row.Symbols...)
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write top-k row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// formatScore leaves missing and unscoreable values empty.
func formatScore(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', 4, 64)
}
