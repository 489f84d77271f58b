package report

import (
	"bytes"
	"encoding/csv"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/valuescan/internal/discovery"
	"github.com/sawpanic/valuescan/internal/models"
	"github.com/sawpanic/valuescan/internal/selection"
)

func fixture() *selection.Result {
	results := []models.ScoredResult{
		{
			Symbol:    "AAA",
			Summary:   &models.Summary{Price: models.PriceModule{LongName: "Alpha Corp"}},
			Composite: 0.75,
			Aspects:   models.Aspects{Financials: 2.5, CompositeLT: 1.25},
		},
		{
			Symbol:    "CCC",
			Summary:   &models.Summary{Price: models.PriceModule{ShortName: "Gamma"}},
			Composite: models.Unscoreable,
		},
	}
	sel := models.Selection{Entries: []models.SelectionEntry{
		{Symbol: "AAA", Tier: models.TierScored},
		{Symbol: "BBB", Tier: models.TierMetaPad},
		{Symbol: "CCC", Tier: models.TierEligibleBackfill},
	}}
	return selection.NewResult(sel, selection.TopK(sel, results, 2), results)
}

func TestWrite_Layout(t *testing.T) {
	var buf bytes.Buffer
	names := func(sym string) string { return "name-" + sym }
	require.NoError(t, Write(&buf, fixture(), names))

	r := csv.NewReader(bytes.NewReader(buf.Bytes()))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)

	assert.Equal(t, Header, records[0])

	aaa := records[1]
	assert.Equal(t, []string{"Alpha Corp", "AAA", "scored", "0.7500", "2.5000"}, aaa[:5])
	assert.Equal(t, "", aaa[13], "missing FCF yield stays empty")
	assert.Equal(t, "1.2500", aaa[18])

	bbb := records[2]
	assert.Equal(t, "name-BBB", bbb[0])
	assert.Equal(t, "meta_pad", bbb[2])
	assert.Equal(t, "", bbb[3])

	ccc := records[3]
	assert.Equal(t, "Gamma", ccc[0])
	assert.Equal(t, "", ccc[3], "unscoreable composite is blank")

	assert.Equal(t, []string{""}, records[4])
	assert.Equal(t, []string{"Top_Composite", "AAA", "CCC"}, records[5])
	assert.Len(t, records, 5+len(selection.Dimensions))
}

func TestWriteCSV_SalvageRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "Comprehensive_3_Stock_Analysis.csv")
	require.NoError(t, WriteCSV(path, fixture(), nil))

	tickers, err := discovery.ReadReportTickers(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAA", "BBB", "CCC"}, tickers)
}
