package progress

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/valuescan/internal/providers/guards"
)

func TestReporter_StampsRunIDAndElapsed(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	clock := func() time.Time { return now }
	rec := &Recorder{}
	r := NewReporterWithClock(clock, rec)

	r.Candidates(42, false)
	now = now.Add(1500 * time.Millisecond)
	r.Processing(1, 42, "AAA", guards.Counts{Calls: 2, Successes: 1, Failures: 1})

	events := rec.Events()
	require.Len(t, events, 2)
	assert.Equal(t, r.RunID(), events[0].RunID)
	assert.NotEmpty(t, r.RunID())
	assert.Equal(t, int64(0), events[0].ElapsedMs)
	assert.Equal(t, int64(1500), events[1].ElapsedMs)
	assert.Equal(t, 2, events[1].Calls)
	assert.Equal(t, TypeProcessing, r.Last().Type)
}

func TestJSONLines_Format(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(NewJSONLines(&buf))
	r.Scored(7, 5)

	line := strings.TrimSpace(buf.String())
	require.True(t, strings.HasPrefix(line, LinePrefix))

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, LinePrefix)), &payload))
	assert.Equal(t, "scored", payload["type"])
	assert.Equal(t, float64(7), payload["eligible"])
	assert.Equal(t, float64(5), payload["scored"])
	assert.NotContains(t, payload, "symbol")
}

func TestBar_Render(t *testing.T) {
	var buf bytes.Buffer
	bar := NewBar(&buf)
	bar.Emit(Event{Type: TypeProcessing, Processed: 5, Total: 10, Symbol: "AAA"})
	assert.Contains(t, buf.String(), "5/10 (50.0%) - AAA")
}

func TestRecorder_OfType(t *testing.T) {
	rec := &Recorder{}
	r := NewReporter(rec)
	r.Candidates(3, true)
	r.WritingCSV("out.csv")
	r.Done(3, "out.csv")

	require.Len(t, rec.OfType(TypeDone), 1)
	assert.Equal(t, 3, rec.OfType(TypeDone)[0].Selected)
	assert.True(t, rec.OfType(TypeCandidates)[0].Manual)
}
