package progress

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

// LinePrefix marks progress lines for orchestrators scraping stdout.
const LinePrefix = "PROGRESS: "

// JSONLines writes each event as "PROGRESS: {json}".
type JSONLines struct {
	mu sync.Mutex
	w  io.Writer
}

func NewJSONLines(w io.Writer) *JSONLines {
	return &JSONLines{w: w}
}

func (j *JSONLines) Emit(e Event) {
	b, err := json.Marshal(e)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to encode progress event")
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	fmt.Fprintf(j.w, "%s%s\n", LinePrefix, b)
}

// LogEmitter mirrors events to the debug log.
type LogEmitter struct{}

func (LogEmitter) Emit(e Event) {
	if e.Type == TypeProcessing {
		log.Debug().
			Str("run_id", e.RunID).
			Int("processed", e.Processed).
			Int("total", e.Total).
			Str("symbol", e.Symbol).
			Int("calls", e.Calls).
			Int("failures", e.Failures).
			Msg("Progress")
		return
	}
	log.Info().Str("run_id", e.RunID).Str("event", string(e.Type)).Int64("elapsed_ms", e.ElapsedMs).Msg("Progress")
}

// Recorder keeps every event, for tests and the status endpoint.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Emit(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// OfType returns the recorded events of one type.
func (r *Recorder) OfType(t Type) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// Bar renders processing ticks as a single redrawn terminal line.
type Bar struct {
	mu    sync.Mutex
	w     io.Writer
	width int
}

func NewBar(w io.Writer) *Bar {
	return &Bar{w: w, width: 20}
}

func (b *Bar) Emit(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch e.Type {
	case TypeProcessing:
		fmt.Fprint(b.w, b.render(e))
	case TypeDone:
		fmt.Fprintf(b.w, "\r\033[K✅ done: %d selected (%dms)\n", e.Selected, e.ElapsedMs)
	}
}

func (b *Bar) render(e Event) string {
	var out strings.Builder
	out.WriteString("\r\033[K")
	if e.Total > 0 {
		filled := b.width * e.Processed / e.Total
		out.WriteString("[")
		out.WriteString(strings.Repeat("█", filled))
		out.WriteString(strings.Repeat("░", b.width-filled))
		fmt.Fprintf(&out, "] %d/%d (%.1f%%)", e.Processed, e.Total, float64(e.Processed)/float64(e.Total)*100)
	}
	if e.Symbol != "" {
		out.WriteString(" - ")
		out.WriteString(e.Symbol)
	}
	return out.String()
}
